// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package snapshotter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mchmarny/sdmon/pkg/errors"
	"github.com/mchmarny/sdmon/pkg/snapshot"
)

// Emitter receives one finished snapshot per cycle.
type Emitter interface {
	Serialize(snap *snapshot.Snapshot) error
}

// RunLoop drives the Snapshotter once, or repeatedly on the configured
// refresh interval.
type RunLoop struct {
	Snapshotter *Snapshotter
	Emitter     Emitter

	// Ready, when set, is called once after the first completed cycle.
	Ready func()
}

// Execute runs until one-shot completion, cancellation, or a fatal
// error. In daemon mode each cycle must finish within the refresh
// interval; exceeding it is a misconfiguration, not something to
// silently absorb.
func (r *RunLoop) Execute(ctx context.Context) error {
	cfg := r.Snapshotter.Config

	if !cfg.Agent.Daemon {
		err := r.cycle(ctx)
		if err == nil {
			r.markReady()
		}
		return err
	}

	interval := cfg.Refresh()
	if interval <= 0 {
		return errors.New(errors.ErrCodeConfigFailure,
			fmt.Sprintf("daemon mode requires a positive refresh interval, got %ds", cfg.Agent.RefreshSecs))
	}

	for {
		start := time.Now()
		if err := r.cycle(ctx); err != nil {
			return err
		}
		r.markReady()

		elapsed := time.Since(start)
		sleep := interval - elapsed
		if sleep < 0 {
			return errors.New(errors.ErrCodeConfigFailure,
				fmt.Sprintf("collection took %s, longer than the %s refresh interval",
					elapsed.Round(time.Millisecond), interval))
		}

		// Cancellation is only honored at the sleep boundary; a cycle
		// in flight always completes and emits.
		select {
		case <-ctx.Done():
			slog.Info("shutting down")
			return nil
		case <-time.After(sleep):
		}
	}
}

func (r *RunLoop) markReady() {
	if r.Ready != nil {
		r.Ready()
		r.Ready = nil
	}
}

func (r *RunLoop) cycle(ctx context.Context) error {
	snap, err := r.Snapshotter.Snapshot(ctx)
	if err != nil {
		return err
	}
	return r.Emitter.Serialize(snap)
}
