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
	goerrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mchmarny/sdmon/pkg/bus"
	"github.com/mchmarny/sdmon/pkg/collector"
	"github.com/mchmarny/sdmon/pkg/config"
	"github.com/mchmarny/sdmon/pkg/defaults"
	"github.com/mchmarny/sdmon/pkg/snapshot"
)

// ErrNoCollectors is returned when a cycle produces no data at all.
// A snapshot with nothing in it is not useful output, so the caller
// treats this as fatal.
var ErrNoCollectors = goerrors.New("no collectors produced data")

// Snapshotter runs the enabled collectors against the host endpoint
// and traverses registered machines, merging everything into one
// snapshot per cycle.
type Snapshotter struct {
	Config *config.Config
	Dialer bus.Dialer

	// VerifyCommand overrides the unit verification subprocess,
	// used by tests.
	VerifyCommand func(ctx context.Context, unit string) (bool, error)
}

// target describes one collection destination: the host, or one
// machine seen through its leader process.
type target struct {
	linkStateDir string
	procRoot     string
	pid          int
	// depth is the remaining machine traversal depth.
	depth int
}

// Snapshot runs one full collection cycle. It returns ErrNoCollectors
// when every enabled collector failed; partial results are success.
func (s *Snapshotter) Snapshot(ctx context.Context) (*snapshot.Snapshot, error) {
	runID := uuid.NewString()
	start := time.Now()
	defer func() {
		cycleDuration.Observe(time.Since(start).Seconds())
	}()

	slog.Debug("starting collection cycle", "run_id", runID)

	ep, err := s.Dialer.Dial(ctx, s.Config.Agent.BusAddress)
	if err != nil {
		// Local collectors (networkd, pid1) can still produce data.
		slog.Error("failed to connect to bus, bus collectors skipped",
			"address", s.Config.Agent.BusAddress, "error", err)
		ep = nil
	} else {
		defer ep.Close()
	}

	snap := snapshot.New()
	succeeded := s.collect(ctx, ep, target{
		linkStateDir: s.Config.Networkd.LinkStateDir,
		procRoot:     "/proc",
		pid:          1,
		depth:        s.Config.Machines.MaxDepth,
	}, snap)

	collectorsSucceeded.Set(float64(succeeded))
	if succeeded == 0 {
		cycleTotal.WithLabelValues("error").Inc()
		return nil, ErrNoCollectors
	}
	cycleTotal.WithLabelValues("success").Inc()

	slog.Debug("collection cycle done",
		"run_id", runID,
		"collectors_succeeded", succeeded,
		"duration", time.Since(start).Round(time.Millisecond).String())
	return snap, nil
}

// collect fans out the enabled collectors for one target, each in its
// own goroutine. The mutex guards result installs only, never a
// remote call. Returns the number of collectors that succeeded.
func (s *Snapshotter) collect(ctx context.Context, ep bus.Endpoint, tgt target, snap *snapshot.Snapshot) int {
	cfg := s.Config

	var mu sync.Mutex
	var succeeded int

	// Goroutines never return errors: a collector failure must not
	// cancel its siblings through the group context.
	g, gctx := errgroup.WithContext(ctx)

	run := func(name string, counted bool, fn func(ctx context.Context) error) {
		g.Go(func() error {
			collectorStart := time.Now()
			defer func() {
				collectorDuration.WithLabelValues(name).Observe(time.Since(collectorStart).Seconds())
			}()
			runCtx, cancel := context.WithTimeout(gctx, defaults.CollectorTimeout)
			defer cancel()
			if err := fn(runCtx); err != nil {
				slog.Error("collector failed", "collector", name, "error", err)
				return nil
			}
			if counted {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
			return nil
		})
	}

	if cfg.Units.Enabled && ep != nil {
		run("units", true, func(ctx context.Context) error {
			c := &collector.UnitsCollector{
				Endpoint:    ep,
				StateStats:  cfg.Units.StateStats,
				StateFilter: cfg.Units.StateFilter,
				TimeInState: cfg.Units.TimeInState,
				Services:    cfg.Services,
			}
			stats, err := c.Collect(ctx)
			if err != nil {
				return err
			}
			mu.Lock()
			installUnitCensus(snap, stats)
			mu.Unlock()
			return nil
		})
	}

	if cfg.Timers.Enabled && ep != nil {
		run("timers", true, func(ctx context.Context) error {
			c := &collector.TimersCollector{Endpoint: ep, Filter: cfg.Timers.Filter}
			report, err := c.Collect(ctx)
			if err != nil {
				return err
			}
			mu.Lock()
			installTimers(snap, report)
			mu.Unlock()
			return nil
		})
	}

	if cfg.Networkd.Enabled {
		run("networkd", true, func(_ context.Context) error {
			c := &collector.NetworkdCollector{LinkStateDir: tgt.linkStateDir}
			state, err := c.Collect()
			if err != nil {
				return err
			}
			mu.Lock()
			snap.Networkd = state
			mu.Unlock()
			return nil
		})
	}

	if cfg.Pid1.Enabled {
		run("pid1", true, func(_ context.Context) error {
			c := &collector.Pid1Collector{ProcRoot: tgt.procRoot, PID: tgt.pid}
			stats, err := c.Collect()
			if err != nil {
				return err
			}
			mu.Lock()
			snap.Pid1 = stats
			mu.Unlock()
			return nil
		})
	}

	// Version rides along with every snapshot and does not count
	// toward the ran-collector threshold; system state does.
	if cfg.SystemState.Enabled && ep != nil {
		run("system-state", true, func(ctx context.Context) error {
			c := &collector.SystemStateCollector{Endpoint: ep}
			state, err := c.Collect(ctx)
			if err != nil {
				return err
			}
			mu.Lock()
			snap.SystemState = &state
			mu.Unlock()
			return nil
		})
		run("version", false, func(ctx context.Context) error {
			c := &collector.VersionCollector{Endpoint: ep}
			v, err := c.Collect(ctx)
			if err != nil {
				return err
			}
			mu.Lock()
			snap.Version = v
			mu.Unlock()
			return nil
		})
	}

	if cfg.DBusStats.Enabled && ep != nil {
		run("dbus-stats", true, func(ctx context.Context) error {
			c := &collector.DBusStatsCollector{
				Endpoint:      ep,
				PeerStats:     cfg.DBusStats.PeerStats,
				WellKnownOnly: cfg.DBusStats.PeerWellKnownOnly,
				PeerFilter:    cfg.DBusStats.PeerFilter,
			}
			stats, err := c.Collect(ctx)
			if err != nil {
				return err
			}
			mu.Lock()
			snap.DBus = stats
			mu.Unlock()
			return nil
		})
	}

	if cfg.BootBlame.Enabled && ep != nil {
		run("boot-blame", true, func(ctx context.Context) error {
			c := &collector.BootBlameCollector{
				Endpoint: ep,
				Filter:   cfg.BootBlame.Filter,
				TopN:     cfg.BootBlame.TopN,
			}
			blame, err := c.Collect(ctx)
			if err != nil {
				return err
			}
			mu.Lock()
			snap.BootBlame = blame
			mu.Unlock()
			return nil
		})
	}

	if cfg.Verify.Enabled && ep != nil {
		run("verify", true, func(ctx context.Context) error {
			c := &collector.VerifyCollector{
				Endpoint: ep,
				Filter:   cfg.Verify.Filter,
				Command:  s.VerifyCommand,
			}
			stats, err := c.Collect(ctx)
			if err != nil {
				return err
			}
			mu.Lock()
			snap.Verify = stats
			mu.Unlock()
			return nil
		})
	}

	if cfg.Machines.Enabled && tgt.depth > 0 && ep != nil {
		run("machines", true, func(ctx context.Context) error {
			machines, err := ep.ListMachines(ctx)
			if err != nil {
				return err
			}
			nodes := s.collectMachines(ctx, machines, tgt.depth-1)
			mu.Lock()
			snap.Machines = nodes
			mu.Unlock()
			return nil
		})
	}

	// Goroutines swallow their errors, the join only waits.
	_ = g.Wait()
	return succeeded
}

// collectMachines recurses into each admitted container. An
// unreachable machine is recorded, never propagated.
func (s *Snapshotter) collectMachines(ctx context.Context, machines []bus.Machine, depth int) map[string]*snapshot.MachineSnapshot {
	nodes := make(map[string]*snapshot.MachineSnapshot, len(machines))
	for _, m := range machines {
		if m.Class != "container" {
			continue
		}
		if !s.Config.Machines.Filter.Include(m.Name) {
			continue
		}
		nodes[m.Name] = s.collectMachine(ctx, m, depth)
	}
	return nodes
}

func (s *Snapshotter) collectMachine(ctx context.Context, m bus.Machine, depth int) *snapshot.MachineSnapshot {
	node := &snapshot.MachineSnapshot{Name: m.Name}

	ep, err := s.Dialer.Dial(ctx, bus.MachineAddress(m.Leader))
	if err != nil {
		slog.Warn("machine unreachable", "machine", m.Name, "error", err)
		machinesUnreachable.Inc()
		return node
	}
	defer ep.Close()

	sub := snapshot.New()
	s.collect(ctx, ep, target{
		linkStateDir: fmt.Sprintf("/proc/%d/root%s", m.Leader, s.Config.Networkd.LinkStateDir),
		procRoot:     "/proc",
		pid:          int(m.Leader),
		depth:        depth,
	}, sub)

	node.Reachable = true
	node.Stats = sub
	return node
}

// installUnitCensus grafts the unit census onto whatever the timers
// collector may have installed first.
func installUnitCensus(snap *snapshot.Snapshot, stats *snapshot.UnitStats) {
	if snap.Units != nil {
		stats.TimerStats = snap.Units.TimerStats
		stats.TimerPersistentUnits = snap.Units.TimerPersistentUnits
		stats.TimerRemainAfterElapse = snap.Units.TimerRemainAfterElapse
	}
	snap.Units = stats
}

func installTimers(snap *snapshot.Snapshot, report *collector.TimerReport) {
	if snap.Units == nil {
		snap.Units = snapshot.NewUnitStats()
	}
	snap.Units.TimerStats = report.Timers
	snap.Units.TimerPersistentUnits = report.PersistentUnits
	snap.Units.TimerRemainAfterElapse = report.RemainAfterElapse
}
