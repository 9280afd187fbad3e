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
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/mchmarny/sdmon/pkg/snapshot"
)

// Entry is one flattened key/value pair.
type Entry struct {
	Key   string
	Value interface{}
}

// FlatSnapshot is an ordered flat view of a Snapshot. It marshals to a
// single-level JSON object preserving entry order.
type FlatSnapshot []Entry

// MarshalJSON emits the entries as one object in slice order. The
// standard map marshaller would sort keys, losing the field order the
// flat format guarantees.
func (f FlatSnapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Flatten converts a snapshot into ordered dotted-key entries. Sections
// follow the Snapshot field order; entities within each named
// collection are sorted by name; enumerations emit their integer
// codes; booleans emit 0/1; absent sections emit nothing. A non-empty
// prefix is prepended to every key, machine subtrees included.
func Flatten(snap *snapshot.Snapshot, prefix string) FlatSnapshot {
	b := &flatBuilder{prefix: prefix}
	b.snapshot(snap)
	return b.entries
}

type flatBuilder struct {
	prefix  string
	entries FlatSnapshot
}

func (b *flatBuilder) add(value interface{}, parts ...string) {
	key := strings.Join(parts, ".")
	if b.prefix != "" {
		key = b.prefix + "." + key
	}
	b.entries = append(b.entries, Entry{Key: key, Value: value})
}

func boolBit(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (b *flatBuilder) snapshot(snap *snapshot.Snapshot) {
	if snap == nil {
		return
	}
	b.networkd(snap.Networkd)
	b.pid1(snap.Pid1)
	if snap.SystemState != nil {
		b.add(uint8(*snap.SystemState), "system-state")
	}
	b.units(snap.Units)
	if snap.Version != nil {
		b.add(snap.Version.String(), "version")
	}
	b.dbus(snap.DBus)
	b.bootBlame(snap.BootBlame)
	b.verify(snap.Verify)
	b.machines(snap.Machines)
}

func (b *flatBuilder) networkd(nd *snapshot.NetworkdState) {
	if nd == nil {
		return
	}
	b.add(nd.ManagedInterfaces, "networkd", "managed_interfaces")

	ifaces := make([]snapshot.InterfaceState, len(nd.InterfacesState))
	copy(ifaces, nd.InterfacesState)
	sort.Slice(ifaces, func(i, j int) bool { return ifaces[i].Name < ifaces[j].Name })

	for _, iface := range ifaces {
		b.add(uint8(iface.AddressState), "networkd", iface.Name, "address_state")
		b.add(uint8(iface.AdminState), "networkd", iface.Name, "admin_state")
		b.add(uint8(iface.CarrierState), "networkd", iface.Name, "carrier_state")
		b.add(uint8(iface.IPv4AddressState), "networkd", iface.Name, "ipv4_address_state")
		b.add(uint8(iface.IPv6AddressState), "networkd", iface.Name, "ipv6_address_state")
		b.add(uint8(iface.OperState), "networkd", iface.Name, "oper_state")
		b.add(uint8(iface.RequiredForOnline), "networkd", iface.Name, "required_for_online")
	}
}

func (b *flatBuilder) pid1(p *snapshot.Pid1Stats) {
	if p == nil {
		return
	}
	b.add(p.CPUTimeKernel, "pid1", "cpu_time_kernel")
	b.add(p.CPUTimeUser, "pid1", "cpu_time_user")
	b.add(p.MemoryUsageBytes, "pid1", "memory_usage_bytes")
	b.add(p.FDCount, "pid1", "fd_count")
	b.add(p.Tasks, "pid1", "tasks")
}

func (b *flatBuilder) units(u *snapshot.UnitStats) {
	if u == nil {
		return
	}

	for _, name := range sortedKeys(u.ServiceStats) {
		s := u.ServiceStats[name]
		b.add(s.ActiveEnterTimestamp, "services", name, "active_enter_timestamp")
		b.add(s.ActiveExitTimestamp, "services", name, "active_exit_timestamp")
		b.add(s.CPUUsageNSec, "services", name, "cpuusage_nsec")
		b.add(s.InactiveExitTimestamp, "services", name, "inactive_exit_timestamp")
		b.add(s.IOReadBytes, "services", name, "ioread_bytes")
		b.add(s.IOReadOperations, "services", name, "ioread_operations")
		b.add(s.MemoryAvailable, "services", name, "memory_available")
		b.add(s.MemoryCurrent, "services", name, "memory_current")
		b.add(s.NRestarts, "services", name, "nrestarts")
		b.add(s.Processes, "services", name, "processes")
		b.add(s.RestartUSec, "services", name, "restart_usec")
		b.add(s.StateChangeTimestamp, "services", name, "state_change_timestamp")
		b.add(s.StatusErrno, "services", name, "status_errno")
		b.add(s.TasksCurrent, "services", name, "tasks_current")
		b.add(s.TimeoutCleanUSec, "services", name, "timeout_clean_usec")
		b.add(s.WatchdogUSec, "services", name, "watchdog_usec")
	}

	for _, name := range sortedKeys(u.TimerStats) {
		ts := u.TimerStats[name]
		b.add(ts.AccuracyUSec, "timers", name, "accuracy_usec")
		b.add(boolBit(ts.FixedRandomDelay), "timers", name, "fixed_random_delay")
		b.add(ts.LastTriggerUSec, "timers", name, "last_trigger_usec")
		b.add(ts.LastTriggerUSecMonotonic, "timers", name, "last_trigger_usec_monotonic")
		b.add(ts.NextElapseUSecMonotonic, "timers", name, "next_elapse_usec_monotonic")
		b.add(ts.NextElapseUSecRealtime, "timers", name, "next_elapse_usec_realtime")
		b.add(boolBit(ts.Persistent), "timers", name, "persistent")
		b.add(ts.RandomizedDelayUSec, "timers", name, "randomized_delay_usec")
		b.add(boolBit(ts.RemainAfterElapse), "timers", name, "remain_after_elapse")
		b.add(ts.ServiceUnitLastStateChangeUSec, "timers", name, "service_unit_last_state_change_usec")
		b.add(ts.ServiceUnitLastStateChangeUSecMonotonic, "timers", name, "service_unit_last_state_change_usec_monotonic")
	}

	for _, name := range sortedKeys(u.UnitStates) {
		st := u.UnitStates[name]
		b.add(uint8(st.ActiveState), "unit_states", name, "active_state")
		b.add(uint8(st.LoadState), "unit_states", name, "load_state")
		b.add(boolBit(st.Unhealthy), "unit_states", name, "unhealthy")
		b.add(st.TimeInStateUSecs, "unit_states", name, "time_in_state_usecs")
	}

	b.add(u.ActiveUnits, "units", "active_units")
	b.add(u.AutomountUnits, "units", "automount_units")
	b.add(u.DeviceUnits, "units", "device_units")
	b.add(u.FailedUnits, "units", "failed_units")
	b.add(u.InactiveUnits, "units", "inactive_units")
	b.add(u.JobsQueued, "units", "jobs_queued")
	b.add(u.LoadedUnits, "units", "loaded_units")
	b.add(u.MaskedUnits, "units", "masked_units")
	b.add(u.MountUnits, "units", "mount_units")
	b.add(u.NotFoundUnits, "units", "not_found_units")
	b.add(u.PathUnits, "units", "path_units")
	b.add(u.ScopeUnits, "units", "scope_units")
	b.add(u.ServiceUnits, "units", "service_units")
	b.add(u.SliceUnits, "units", "slice_units")
	b.add(u.SocketUnits, "units", "socket_units")
	b.add(u.TargetUnits, "units", "target_units")
	b.add(u.TimerUnits, "units", "timer_units")
	b.add(u.TimerPersistentUnits, "units", "timer_persistent_units")
	b.add(u.TimerRemainAfterElapse, "units", "timer_remain_after_elapse")
	b.add(u.TotalUnits, "units", "total_units")
}

func (b *flatBuilder) dbus(d *snapshot.DBusStats) {
	if d == nil {
		return
	}
	counters := []struct {
		name  string
		value *uint32
	}{
		{"serial", d.Serial},
		{"active_connections", d.ActiveConnections},
		{"incomplete_connections", d.IncompleteConnections},
		{"bus_names", d.BusNames},
		{"peak_bus_names", d.PeakBusNames},
		{"peak_bus_names_per_connection", d.PeakBusNamesPerConnection},
		{"match_rules", d.MatchRules},
		{"peak_match_rules", d.PeakMatchRules},
		{"peak_match_rules_per_connection", d.PeakMatchRulesPerConnection},
	}
	for _, c := range counters {
		if c.value != nil {
			b.add(*c.value, "dbus", c.name)
		}
	}

	for _, id := range sortedKeys(d.PeerAccounting) {
		peer := d.PeerAccounting[id]
		name := peer.WellKnownName
		if name == "" {
			name = peer.ID
		}
		peerCounters := []struct {
			name  string
			value *uint32
		}{
			{"unix_user_id", peer.UnixUserID},
			{"process_id", peer.ProcessID},
			{"matches", peer.Matches},
			{"match_bytes", peer.MatchBytes},
			{"name_objects", peer.NameObjects},
			{"reply_objects", peer.ReplyObjects},
			{"incoming_bytes", peer.IncomingBytes},
			{"incoming_fds", peer.IncomingFDs},
			{"outgoing_bytes", peer.OutgoingBytes},
			{"outgoing_fds", peer.OutgoingFDs},
		}
		for _, c := range peerCounters {
			if c.value != nil {
				b.add(*c.value, "dbus", "peers", name, c.name)
			}
		}
	}
}

func (b *flatBuilder) bootBlame(blame map[string]float64) {
	for _, unit := range sortedKeys(blame) {
		b.add(blame[unit], "boot_blame", unit)
	}
}

func (b *flatBuilder) verify(v *snapshot.VerifyStats) {
	if v == nil {
		return
	}
	b.add(v.Total, "verify", "total")
	for _, unitType := range sortedKeys(v.ByType) {
		b.add(v.ByType[unitType], "verify", unitType)
	}
}

func (b *flatBuilder) machines(machines map[string]*snapshot.MachineSnapshot) {
	for _, name := range sortedKeys(machines) {
		m := machines[name]
		b.add(boolBit(m.Reachable), "machine", name, "reachable")

		sub := Flatten(m.Stats, "")
		for _, e := range sub {
			b.add(e.Value, "machine", name, e.Key)
		}
	}
}
