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
	"testing"

	sd "github.com/coreos/go-systemd/v22/dbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mchmarny/sdmon/pkg/bus"
	"github.com/mchmarny/sdmon/pkg/config"
	"github.com/mchmarny/sdmon/pkg/errors"
	"github.com/mchmarny/sdmon/pkg/snapshot"
)

type fakeEndpoint struct {
	units       []sd.UnitStatus
	listErr     error
	state       string
	stateErr    error
	version     string
	machines    []bus.Machine
	busStats    map[string]interface{}
	busErr      error
	sawDeadline bool
}

func (f *fakeEndpoint) ListUnits(_ context.Context) ([]sd.UnitStatus, error) {
	return f.units, f.listErr
}

func (f *fakeEndpoint) UnitProperties(_ context.Context, unit string) (map[string]interface{}, error) {
	return map[string]interface{}{}, nil
}

func (f *fakeEndpoint) UnitTypeProperties(_ context.Context, unit, _ string) (map[string]interface{}, error) {
	return map[string]interface{}{}, nil
}

func (f *fakeEndpoint) SystemState(ctx context.Context) (string, error) {
	_, f.sawDeadline = ctx.Deadline()
	return f.state, f.stateErr
}

func (f *fakeEndpoint) Version(_ context.Context) (string, error) {
	if f.version == "" {
		return "256.1.fc40", nil
	}
	return f.version, nil
}

func (f *fakeEndpoint) UnitProcesses(_ context.Context, _ string) (uint32, error) {
	return 0, nil
}

func (f *fakeEndpoint) ListMachines(_ context.Context) ([]bus.Machine, error) {
	return f.machines, nil
}

func (f *fakeEndpoint) NameOwners(_ context.Context) (map[string]string, error) {
	return nil, nil
}

func (f *fakeEndpoint) BusStats(_ context.Context) (map[string]interface{}, error) {
	return f.busStats, f.busErr
}

func (f *fakeEndpoint) Close() {}

// fakeDialer returns a scripted endpoint (or error) per address.
type fakeDialer struct {
	endpoints map[string]*fakeEndpoint
}

func (f *fakeDialer) Dial(_ context.Context, address string) (bus.Endpoint, error) {
	ep, ok := f.endpoints[address]
	if !ok {
		return nil, fmt.Errorf("no endpoint at %s", address)
	}
	return ep, nil
}

// testConfig starts with everything off; tests enable what they need.
func testConfig() *config.Config {
	cfg := config.New()
	cfg.Agent.BusAddress = "test://host"
	cfg.Units.Enabled = false
	cfg.Networkd.Enabled = false
	cfg.Pid1.Enabled = false
	cfg.SystemState.Enabled = false
	cfg.Timers.Enabled = false
	cfg.Machines.Enabled = false
	cfg.DBusStats.Enabled = false
	cfg.BootBlame.Enabled = false
	cfg.Verify.Enabled = false
	return cfg
}

func TestSnapshotPartialFailure(t *testing.T) {
	cfg := testConfig()
	cfg.Units.Enabled = true
	cfg.DBusStats.Enabled = true

	s := &Snapshotter{
		Config: cfg,
		Dialer: &fakeDialer{endpoints: map[string]*fakeEndpoint{
			"test://host": {
				listErr:  goerrors.New("connection reset"),
				busStats: map[string]interface{}{"Serial": uint32(1)},
			},
		}},
	}

	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Nil(t, snap.Units)
	require.NotNil(t, snap.DBus)
	require.NotNil(t, snap.DBus.Serial)
	assert.Equal(t, uint32(1), *snap.DBus.Serial)
}

func TestSnapshotZeroCollectors(t *testing.T) {
	cfg := testConfig()
	cfg.Units.Enabled = true
	cfg.DBusStats.Enabled = true

	s := &Snapshotter{
		Config: cfg,
		Dialer: &fakeDialer{endpoints: map[string]*fakeEndpoint{
			"test://host": {
				listErr: goerrors.New("connection reset"),
				busErr:  goerrors.New("connection reset"),
			},
		}},
	}

	snap, err := s.Snapshot(context.Background())
	assert.ErrorIs(t, err, ErrNoCollectors)
	assert.Nil(t, snap)
}

func TestSnapshotSystemStateCounted(t *testing.T) {
	cfg := testConfig()
	cfg.SystemState.Enabled = true

	s := &Snapshotter{
		Config: cfg,
		Dialer: &fakeDialer{endpoints: map[string]*fakeEndpoint{
			"test://host": {state: "running"},
		}},
	}

	// System state alone satisfies the ran-collector threshold.
	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap.SystemState)
	assert.Equal(t, snapshot.SystemStateRunning, *snap.SystemState)
}

func TestSnapshotCollectorDeadline(t *testing.T) {
	cfg := testConfig()
	cfg.SystemState.Enabled = true

	ep := &fakeEndpoint{state: "running"}
	s := &Snapshotter{
		Config: cfg,
		Dialer: &fakeDialer{endpoints: map[string]*fakeEndpoint{
			"test://host": ep,
		}},
	}

	_, err := s.Snapshot(context.Background())
	require.NoError(t, err)

	// Every collector invocation runs under its own deadline even when
	// the caller's context has none.
	assert.True(t, ep.sawDeadline)
}

func TestSnapshotVersionNotCounted(t *testing.T) {
	cfg := testConfig()
	cfg.SystemState.Enabled = true

	s := &Snapshotter{
		Config: cfg,
		Dialer: &fakeDialer{endpoints: map[string]*fakeEndpoint{
			"test://host": {
				state:    "running",
				stateErr: goerrors.New("call timed out"),
			},
		}},
	}

	// Version still resolves but rides along; with system state
	// failing there is no counted success.
	_, err := s.Snapshot(context.Background())
	assert.ErrorIs(t, err, ErrNoCollectors)
}

func TestSnapshotUnitsAndState(t *testing.T) {
	cfg := testConfig()
	cfg.Units.Enabled = true
	cfg.SystemState.Enabled = true

	s := &Snapshotter{
		Config: cfg,
		Dialer: &fakeDialer{endpoints: map[string]*fakeEndpoint{
			"test://host": {
				units: []sd.UnitStatus{
					{Name: "sshd.service", LoadState: "loaded", ActiveState: "active"},
				},
				state: "degraded",
			},
		}},
	}

	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)

	require.NotNil(t, snap.Units)
	assert.Equal(t, uint64(1), snap.Units.TotalUnits)
	require.NotNil(t, snap.SystemState)
	assert.Equal(t, snapshot.SystemStateDegraded, *snap.SystemState)
	require.NotNil(t, snap.Version)
	assert.Equal(t, uint32(256), snap.Version.Major)
}

func TestMachineTraversalIsolation(t *testing.T) {
	cfg := testConfig()
	cfg.Units.Enabled = true
	cfg.Machines.Enabled = true
	cfg.Machines.MaxDepth = 1

	machines := []bus.Machine{
		{Name: "web", Class: "container", Leader: 100},
		{Name: "db", Class: "container", Leader: 200},
		{Name: "gone", Class: "container", Leader: 300},
		{Name: "vm1", Class: "vm", Leader: 400},
	}
	hostUnits := []sd.UnitStatus{
		{Name: "sshd.service", LoadState: "loaded", ActiveState: "active"},
	}

	s := &Snapshotter{
		Config: cfg,
		Dialer: &fakeDialer{endpoints: map[string]*fakeEndpoint{
			"test://host":           {units: hostUnits, machines: machines},
			bus.MachineAddress(100): {units: hostUnits},
			bus.MachineAddress(200): {units: hostUnits},
			// Leader 300 has no endpoint: dial fails, machine unreachable.
		}},
	}

	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)

	// VMs are not traversed.
	require.Len(t, snap.Machines, 3)

	assert.True(t, snap.Machines["web"].Reachable)
	require.NotNil(t, snap.Machines["web"].Stats)
	assert.Equal(t, uint64(1), snap.Machines["web"].Stats.Units.TotalUnits)
	assert.True(t, snap.Machines["db"].Reachable)

	assert.False(t, snap.Machines["gone"].Reachable)
	assert.Nil(t, snap.Machines["gone"].Stats)

	// Host fields are unaffected by the unreachable machine.
	require.NotNil(t, snap.Units)
	assert.Equal(t, uint64(1), snap.Units.TotalUnits)
}

func TestMachineFilter(t *testing.T) {
	cfg := testConfig()
	cfg.Units.Enabled = true
	cfg.Machines.Enabled = true
	cfg.Machines.MaxDepth = 1
	cfg.Machines.Filter.Block = []string{"db"}

	s := &Snapshotter{
		Config: cfg,
		Dialer: &fakeDialer{endpoints: map[string]*fakeEndpoint{
			"test://host": {
				units: []sd.UnitStatus{{Name: "a.service"}},
				machines: []bus.Machine{
					{Name: "web", Class: "container", Leader: 100},
					{Name: "db", Class: "container", Leader: 200},
				},
			},
			bus.MachineAddress(100): {},
			bus.MachineAddress(200): {},
		}},
	}

	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Machines, 1)
	assert.Contains(t, snap.Machines, "web")
}

func TestSnapshotTimersMerge(t *testing.T) {
	cfg := testConfig()
	cfg.Units.Enabled = true
	cfg.Timers.Enabled = true

	s := &Snapshotter{
		Config: cfg,
		Dialer: &fakeDialer{endpoints: map[string]*fakeEndpoint{
			"test://host": {
				units: []sd.UnitStatus{
					{Name: "fstrim.timer", LoadState: "loaded", ActiveState: "active"},
					{Name: "sshd.service", LoadState: "loaded", ActiveState: "active"},
				},
			},
		}},
	}

	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)

	require.NotNil(t, snap.Units)
	assert.Equal(t, uint64(2), snap.Units.TotalUnits)
	assert.Contains(t, snap.Units.TimerStats, "fstrim.timer")
}

type fakeEmitter struct {
	snaps []*snapshot.Snapshot
	err   error
}

func (f *fakeEmitter) Serialize(snap *snapshot.Snapshot) error {
	f.snaps = append(f.snaps, snap)
	return f.err
}

func TestRunLoopOneShot(t *testing.T) {
	cfg := testConfig()
	cfg.Units.Enabled = true

	emitter := &fakeEmitter{}
	loop := &RunLoop{
		Snapshotter: &Snapshotter{
			Config: cfg,
			Dialer: &fakeDialer{endpoints: map[string]*fakeEndpoint{
				"test://host": {units: []sd.UnitStatus{{Name: "a.service"}}},
			}},
		},
		Emitter: emitter,
	}

	require.NoError(t, loop.Execute(context.Background()))
	assert.Len(t, emitter.snaps, 1)
}

func TestRunLoopDaemonBadInterval(t *testing.T) {
	cfg := testConfig()
	cfg.Agent.Daemon = true
	cfg.Agent.RefreshSecs = 0

	loop := &RunLoop{
		Snapshotter: &Snapshotter{Config: cfg, Dialer: &fakeDialer{}},
		Emitter:     &fakeEmitter{},
	}

	err := loop.Execute(context.Background())
	require.Error(t, err)

	var se *errors.StructuredError
	require.True(t, goerrors.As(err, &se))
	assert.Equal(t, errors.ErrCodeConfigFailure, se.Code)
}
