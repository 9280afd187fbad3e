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
	"context"
	"log/slog"
	"sort"

	"github.com/mchmarny/sdmon/pkg/bus"
	"github.com/mchmarny/sdmon/pkg/errors"
	"github.com/mchmarny/sdmon/pkg/filter"
)

// BootBlameCollector measures per-unit activation time during the last
// boot, the same calculation systemd-analyze blame makes. Only the
// TopN slowest units are kept.
type BootBlameCollector struct {
	Endpoint bus.Endpoint
	Filter   filter.Filter
	TopN     int
}

type blameEntry struct {
	unit    string
	seconds float64
}

// Collect computes activation durations from each unit's state
// transition timestamps. Units with incomplete timestamps are skipped,
// as are units whose property fetch fails.
func (c *BootBlameCollector) Collect(ctx context.Context) (map[string]float64, error) {
	units, err := c.Endpoint.ListUnits(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCallFailure, "failed to list units", err)
	}

	entries := make([]blameEntry, 0, len(units))
	for _, unit := range units {
		if !c.Filter.Include(unit.Name) {
			continue
		}
		props, err := c.Endpoint.UnitProperties(ctx, unit.Name)
		if err != nil {
			slog.Debug("failed to get unit timestamps",
				"unit", unit.Name, "error", err)
			continue
		}

		started := propUint64(props, "InactiveExitTimestamp")
		finished := propUint64(props, "ActiveEnterTimestamp")
		if started == 0 || finished == 0 || finished < started {
			continue
		}
		entries = append(entries, blameEntry{
			unit:    unit.Name,
			seconds: float64(finished-started) / 1e6,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seconds > entries[j].seconds
	})
	if c.TopN > 0 && len(entries) > c.TopN {
		entries = entries[:c.TopN]
	}

	blame := make(map[string]float64, len(entries))
	for _, e := range entries {
		blame[e.unit] = e.seconds
	}
	return blame, nil
}
