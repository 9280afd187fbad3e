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

package serializer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mchmarny/sdmon/pkg/snapshot"
)

func testSnapshot() *snapshot.Snapshot {
	state := snapshot.SystemStateDegraded
	units := snapshot.NewUnitStats()
	units.TotalUnits = 3
	units.ServiceUnits = 2
	units.TimerUnits = 1
	units.UnitStates["sshd.service"] = snapshot.UnitState{
		ActiveState: snapshot.UnitActiveStateActive,
		LoadState:   snapshot.UnitLoadStateLoaded,
	}
	units.TimerStats["fstrim.timer"] = snapshot.TimerStats{
		AccuracyUSec: 60000000,
		Persistent:   true,
	}

	return &snapshot.Snapshot{
		Networkd: &snapshot.NetworkdState{
			ManagedInterfaces: 1,
			InterfacesState: []snapshot.InterfaceState{
				{
					Name:              "eth0",
					AdminState:        snapshot.AdminStateConfigured,
					OperState:         snapshot.OperStateRoutable,
					RequiredForOnline: snapshot.BoolStateTrue,
				},
			},
		},
		Pid1: &snapshot.Pid1Stats{
			CPUTimeKernel:    100,
			CPUTimeUser:      200,
			MemoryUsageBytes: 4096,
			FDCount:          32,
			Tasks:            1,
		},
		SystemState: &state,
		Units:       units,
		Version:     &snapshot.Version{Major: 256, Minor: "1", OS: "fc40"},
		BootBlame:   map[string]float64{"slow.service": 5.0, "mid.service": 2.5},
		Machines: map[string]*snapshot.MachineSnapshot{
			"webapp": {
				Name:      "webapp",
				Reachable: true,
				Stats: &snapshot.Snapshot{
					Pid1: &snapshot.Pid1Stats{Tasks: 7},
				},
			},
			"db": {Name: "db", Reachable: false},
		},
	}
}

func flatKeys(entries FlatSnapshot) []string {
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return keys
}

func TestFlattenDeterminism(t *testing.T) {
	snap := testSnapshot()
	first := Flatten(snap, "")
	second := Flatten(snap, "")
	assert.Equal(t, first, second)

	b1, err := json.Marshal(first)
	require.NoError(t, err)
	b2, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
}

func TestFlattenKeyGrammar(t *testing.T) {
	entries := Flatten(testSnapshot(), "")
	keys := flatKeys(entries)

	assert.Contains(t, keys, "networkd.managed_interfaces")
	assert.Contains(t, keys, "networkd.eth0.oper_state")
	assert.Contains(t, keys, "pid1.cpu_time_user")
	assert.Contains(t, keys, "system-state")
	assert.Contains(t, keys, "unit_states.sshd.service.active_state")
	assert.Contains(t, keys, "timers.fstrim.timer.persistent")
	assert.Contains(t, keys, "units.total_units")
	assert.Contains(t, keys, "version")
	assert.Contains(t, keys, "boot_blame.slow.service")
	assert.Contains(t, keys, "machine.webapp.reachable")
	assert.Contains(t, keys, "machine.webapp.pid1.tasks")
	assert.Contains(t, keys, "machine.db.reachable")
	assert.NotContains(t, keys, "machine.db.pid1.tasks")
}

func TestFlattenValues(t *testing.T) {
	entries := Flatten(testSnapshot(), "")
	values := make(map[string]interface{}, len(entries))
	for _, e := range entries {
		values[e.Key] = e.Value
	}

	// Enums as ints, booleans as 0/1.
	assert.Equal(t, uint8(4), values["system-state"])
	assert.Equal(t, uint8(4), values["networkd.eth0.admin_state"])
	assert.Equal(t, uint8(1), values["networkd.eth0.required_for_online"])
	assert.Equal(t, uint8(1), values["timers.fstrim.timer.persistent"])
	assert.Equal(t, uint8(0), values["timers.fstrim.timer.fixed_random_delay"])
	assert.Equal(t, uint8(1), values["machine.webapp.reachable"])
	assert.Equal(t, uint8(0), values["machine.db.reachable"])
	assert.Equal(t, "256.1.fc40", values["version"])
	assert.Equal(t, 5.0, values["boot_blame.slow.service"])
}

func TestFlattenKeyPrefix(t *testing.T) {
	entries := Flatten(testSnapshot(), "sdmon")
	for _, e := range entries {
		assert.True(t, len(e.Key) > len("sdmon."), "key too short: %s", e.Key)
		assert.Equal(t, "sdmon.", e.Key[:len("sdmon.")])
	}

	keys := flatKeys(entries)
	assert.Contains(t, keys, "sdmon.machine.webapp.pid1.tasks")
}

func TestFlattenAbsentSections(t *testing.T) {
	entries := Flatten(&snapshot.Snapshot{}, "")
	assert.Empty(t, entries)
}

func TestFlattenOrdering(t *testing.T) {
	entries := Flatten(testSnapshot(), "")
	keys := flatKeys(entries)

	// Sections follow the snapshot field order.
	assert.Equal(t, "networkd.managed_interfaces", keys[0])

	idx := make(map[string]int, len(keys))
	for i, k := range keys {
		idx[k] = i
	}
	assert.Less(t, idx["networkd.eth0.oper_state"], idx["pid1.cpu_time_kernel"])
	assert.Less(t, idx["pid1.tasks"], idx["system-state"])
	assert.Less(t, idx["system-state"], idx["timers.fstrim.timer.accuracy_usec"])
	assert.Less(t, idx["units.total_units"], idx["version"])
	assert.Less(t, idx["version"], idx["boot_blame.mid.service"])
	// Machine names sort: db before webapp.
	assert.Less(t, idx["machine.db.reachable"], idx["machine.webapp.reachable"])
}

func TestFlatSnapshotMarshalOrder(t *testing.T) {
	flat := FlatSnapshot{
		{Key: "z", Value: 1},
		{Key: "a", Value: 2},
	}
	b, err := json.Marshal(flat)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":2}`, string(b))
}
