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
	"time"

	sd "github.com/coreos/go-systemd/v22/dbus"

	"github.com/mchmarny/sdmon/pkg/bus"
	"github.com/mchmarny/sdmon/pkg/errors"
	"github.com/mchmarny/sdmon/pkg/filter"
	"github.com/mchmarny/sdmon/pkg/snapshot"
)

// UnitsCollector walks the full unit list once and produces the unit
// census, optional per-unit state stats, and per-service stats for the
// configured service names.
type UnitsCollector struct {
	Endpoint bus.Endpoint

	// StateStats enables the per-unit state map, subject to StateFilter.
	StateStats  bool
	StateFilter filter.Filter
	// TimeInState adds how long each tracked unit has been in its
	// current state, at the cost of one property fetch per unit.
	TimeInState bool

	// Services names the units to gather detailed service stats for.
	Services []string
}

// Collect lists all units and aggregates counts, states, and service
// stats in a single pass.
func (c *UnitsCollector) Collect(ctx context.Context) (*snapshot.UnitStats, error) {
	units, err := c.Endpoint.ListUnits(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCallFailure, "failed to list units", err)
	}

	services := make(map[string]bool, len(c.Services))
	for _, s := range c.Services {
		services[s] = true
	}

	stats := snapshot.NewUnitStats()
	stats.TotalUnits = uint64(len(units))

	for _, unit := range units {
		countUnit(stats, unit)

		if c.StateStats && c.StateFilter.Include(unit.Name) {
			stats.UnitStates[unit.Name] = c.unitState(ctx, unit)
		}

		if services[unit.Name] {
			svc, err := c.serviceStats(ctx, unit.Name)
			if err != nil {
				slog.Error("failed to collect service stats",
					"unit", unit.Name, "error", err)
				continue
			}
			stats.ServiceStats[unit.Name] = svc
		}
	}
	return stats, nil
}

// countUnit adds one unit to the type, load, active, and job counters.
// Load, active, and job state are counted even for a malformed name
// without a type suffix.
func countUnit(stats *snapshot.UnitStats, unit sd.UnitStatus) {
	switch unit.LoadState {
	case "loaded":
		stats.LoadedUnits++
	case "masked":
		stats.MaskedUnits++
	case "not-found":
		stats.NotFoundUnits++
	}

	switch unit.ActiveState {
	case "active":
		stats.ActiveUnits++
	case "failed":
		stats.FailedUnits++
	case "inactive":
		stats.InactiveUnits++
	}

	if unit.JobId != 0 {
		stats.JobsQueued++
	}

	_, unitType, found := strings.Cut(unit.Name, ".")
	if !found {
		slog.Debug("unit name without type suffix", "unit", unit.Name)
		return
	}

	switch unitType {
	case "automount":
		stats.AutomountUnits++
	case "device":
		stats.DeviceUnits++
	case "mount":
		stats.MountUnits++
	case "path":
		stats.PathUnits++
	case "scope":
		stats.ScopeUnits++
	case "service":
		stats.ServiceUnits++
	case "slice":
		stats.SliceUnits++
	case "socket":
		stats.SocketUnits++
	case "target":
		stats.TargetUnits++
	case "timer":
		stats.TimerUnits++
	default:
		slog.Debug("unhandled unit type", "type", unitType)
	}
}

func (c *UnitsCollector) unitState(ctx context.Context, unit sd.UnitStatus) snapshot.UnitState {
	active := snapshot.ParseUnitActiveState(unit.ActiveState)
	load := snapshot.ParseUnitLoadState(unit.LoadState)

	state := snapshot.UnitState{
		ActiveState: active,
		LoadState:   load,
		Unhealthy:   snapshot.IsUnitUnhealthy(active, load),
	}

	if c.TimeInState {
		props, err := c.Endpoint.UnitProperties(ctx, unit.Name)
		if err != nil {
			slog.Debug("failed to get state change timestamp",
				"unit", unit.Name, "error", err)
			return state
		}
		changed := propUint64(props, "StateChangeTimestamp")
		now := uint64(time.Now().UnixMicro())
		if changed > 0 && changed <= now {
			state.TimeInStateUSecs = now - changed
		}
	}
	return state
}

func (c *UnitsCollector) serviceStats(ctx context.Context, name string) (snapshot.ServiceStats, error) {
	props, err := c.Endpoint.UnitProperties(ctx, name)
	if err != nil {
		return snapshot.ServiceStats{}, err
	}

	processes, err := c.Endpoint.UnitProcesses(ctx, name)
	if err != nil {
		slog.Debug("failed to count unit processes", "unit", name, "error", err)
	}

	return snapshot.ServiceStats{
		ActiveEnterTimestamp:  propUint64(props, "ActiveEnterTimestamp"),
		ActiveExitTimestamp:   propUint64(props, "ActiveExitTimestamp"),
		CPUUsageNSec:          propUint64(props, "CPUUsageNSec"),
		InactiveExitTimestamp: propUint64(props, "InactiveExitTimestamp"),
		IOReadBytes:           propUint64(props, "IOReadBytes"),
		IOReadOperations:      propUint64(props, "IOReadOperations"),
		MemoryAvailable:       propUint64(props, "MemoryAvailable"),
		MemoryCurrent:         propUint64(props, "MemoryCurrent"),
		NRestarts:             propUint32(props, "NRestarts"),
		Processes:             processes,
		RestartUSec:           propUint64(props, "RestartUSec"),
		StateChangeTimestamp:  propUint64(props, "StateChangeTimestamp"),
		StatusErrno:           propInt32(props, "StatusErrno"),
		TasksCurrent:          propUint64(props, "TasksCurrent"),
		TimeoutCleanUSec:      propUint64(props, "TimeoutCleanUSec"),
		WatchdogUSec:          propUint64(props, "WatchdogUSec"),
	}, nil
}
