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

package collector

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/mchmarny/sdmon/pkg/bus"
	"github.com/mchmarny/sdmon/pkg/defaults"
	"github.com/mchmarny/sdmon/pkg/errors"
	"github.com/mchmarny/sdmon/pkg/filter"
	"github.com/mchmarny/sdmon/pkg/snapshot"
)

// VerifyCollector runs systemd-analyze verify against every unit
// admitted by Filter and counts the failures by unit type.
type VerifyCollector struct {
	Endpoint bus.Endpoint
	Filter   filter.Filter

	// Command overrides the verify invocation, used by tests. It
	// receives the unit name and reports whether verification failed.
	Command func(ctx context.Context, unit string) (failed bool, err error)
}

// Collect verifies each unit's files. A unit counts as failing when
// the verify command exits non-zero and wrote to stderr. Errors
// running the command for a single unit are logged and the unit
// skipped.
func (c *VerifyCollector) Collect(ctx context.Context) (*snapshot.VerifyStats, error) {
	units, err := c.Endpoint.ListUnits(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCallFailure, "failed to list units", err)
	}

	verify := c.Command
	if verify == nil {
		verify = runVerify
	}

	stats := &snapshot.VerifyStats{
		ByType: make(map[string]uint64),
	}
	for _, unit := range units {
		if !c.Filter.Include(unit.Name) {
			continue
		}
		failed, err := verify(ctx, unit.Name)
		if err != nil {
			slog.Error("failed to verify unit", "unit", unit.Name, "error", err)
			continue
		}
		if !failed {
			continue
		}
		stats.Total++
		if _, unitType, found := strings.Cut(unit.Name, "."); found {
			stats.ByType[unitType]++
		}
	}
	return stats, nil
}

// runVerify shells out to systemd-analyze. Verification failed when
// the exit code is non-zero and stderr carried diagnostics; a bare
// non-zero exit with silent stderr means the tool itself misbehaved.
func runVerify(ctx context.Context, unit string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaults.VerifyTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "systemd-analyze", "verify", unit)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return false, nil
	}
	if _, ok := err.(*exec.ExitError); ok {
		return stderr.Len() > 0, nil
	}
	return false, err
}
