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
	"strings"

	"github.com/mchmarny/sdmon/pkg/bus"
	"github.com/mchmarny/sdmon/pkg/errors"
	"github.com/mchmarny/sdmon/pkg/filter"
	"github.com/mchmarny/sdmon/pkg/snapshot"
)

// TimerReport holds per-timer stats plus the two aggregate timer
// counters derived from them.
type TimerReport struct {
	Timers map[string]snapshot.TimerStats

	PersistentUnits   uint64
	RemainAfterElapse uint64
}

// TimersCollector gathers Timer interface properties for every timer
// unit admitted by Filter, along with the state change timestamps of
// the service each timer triggers.
type TimersCollector struct {
	Endpoint bus.Endpoint
	Filter   filter.Filter
}

// Collect lists units and fetches timer properties for each timer.
// Failures on individual timers are logged and the timer skipped.
func (c *TimersCollector) Collect(ctx context.Context) (*TimerReport, error) {
	units, err := c.Endpoint.ListUnits(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCallFailure, "failed to list units", err)
	}

	report := &TimerReport{
		Timers: make(map[string]snapshot.TimerStats),
	}

	for _, unit := range units {
		if !strings.HasSuffix(unit.Name, ".timer") {
			continue
		}
		if !c.Filter.Include(unit.Name) {
			continue
		}

		stats, err := c.timerStats(ctx, unit.Name)
		if err != nil {
			slog.Error("failed to collect timer stats",
				"timer", unit.Name, "error", err)
			continue
		}

		if stats.Persistent {
			report.PersistentUnits++
		}
		if stats.RemainAfterElapse {
			report.RemainAfterElapse++
		}
		report.Timers[unit.Name] = stats
	}
	return report, nil
}

func (c *TimersCollector) timerStats(ctx context.Context, name string) (snapshot.TimerStats, error) {
	props, err := c.Endpoint.UnitTypeProperties(ctx, name, "Timer")
	if err != nil {
		return snapshot.TimerStats{}, err
	}

	stats := snapshot.TimerStats{
		AccuracyUSec:             propUint64(props, "AccuracyUSec"),
		FixedRandomDelay:         propBool(props, "FixedRandomDelay"),
		LastTriggerUSec:          propUint64(props, "LastTriggerUSec"),
		LastTriggerUSecMonotonic: propUint64(props, "LastTriggerUSecMonotonic"),
		NextElapseUSecMonotonic:  propUint64(props, "NextElapseUSecMonotonic"),
		NextElapseUSecRealtime:   propUint64(props, "NextElapseUSecRealtime"),
		Persistent:               propBool(props, "Persistent"),
		RandomizedDelayUSec:      propUint64(props, "RandomizedDelayUSec"),
		RemainAfterElapse:        propBool(props, "RemainAfterElapse"),
	}

	// The triggered service's state change timestamps live on the
	// service unit, not the timer.
	if svc := propString(props, "Unit"); svc != "" {
		svcProps, err := c.Endpoint.UnitProperties(ctx, svc)
		if err != nil {
			slog.Debug("failed to get triggered unit properties",
				"timer", name, "unit", svc, "error", err)
			return stats, nil
		}
		stats.ServiceUnitLastStateChangeUSec = propUint64(svcProps, "StateChangeTimestamp")
		stats.ServiceUnitLastStateChangeUSecMonotonic = propUint64(svcProps, "StateChangeTimestampMonotonic")
	}
	return stats, nil
}
