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

package snapshot

// Snapshot is the aggregate produced by one collection cycle against a
// single endpoint. Field order matters: the flat serializer walks the
// struct in declaration order to keep output deterministic.
type Snapshot struct {
	Networkd    *NetworkdState              `json:"networkd,omitempty" yaml:"networkd,omitempty"`
	Pid1        *Pid1Stats                  `json:"pid1,omitempty" yaml:"pid1,omitempty"`
	SystemState *SystemState                `json:"system_state,omitempty" yaml:"system_state,omitempty"`
	Units       *UnitStats                  `json:"units,omitempty" yaml:"units,omitempty"`
	Version     *Version                    `json:"version,omitempty" yaml:"version,omitempty"`
	DBus        *DBusStats                  `json:"dbus,omitempty" yaml:"dbus,omitempty"`
	BootBlame   map[string]float64          `json:"boot_blame,omitempty" yaml:"boot_blame,omitempty"`
	Verify      *VerifyStats                `json:"verify,omitempty" yaml:"verify,omitempty"`
	Machines    map[string]*MachineSnapshot `json:"machines,omitempty" yaml:"machines,omitempty"`
}

// New returns an empty Snapshot ready for collectors to install into.
func New() *Snapshot {
	return &Snapshot{}
}

// MachineSnapshot is one nested machine's collection result. A machine
// that could not be dialed is recorded with Reachable=false and a nil
// Stats; it never fails the parent collection.
type MachineSnapshot struct {
	Name      string    `json:"name" yaml:"name"`
	Reachable bool      `json:"reachable" yaml:"reachable"`
	Stats     *Snapshot `json:"stats,omitempty" yaml:"stats,omitempty"`
}

// Pid1Stats holds procfs resource usage for the manager process
// (PID 1 on the host, the leader PID inside a machine).
type Pid1Stats struct {
	CPUTimeKernel    uint64 `json:"cpu_time_kernel" yaml:"cpu_time_kernel"`
	CPUTimeUser      uint64 `json:"cpu_time_user" yaml:"cpu_time_user"`
	MemoryUsageBytes uint64 `json:"memory_usage_bytes" yaml:"memory_usage_bytes"`
	FDCount          uint64 `json:"fd_count" yaml:"fd_count"`
	Tasks            uint64 `json:"tasks" yaml:"tasks"`
}

// VerifyStats aggregates unit file verification failures by unit type.
type VerifyStats struct {
	// Total count of units with verification failures.
	Total uint64 `json:"total" yaml:"total"`
	// ByType counts failing units per type (e.g. "service", "timer").
	// Only types with at least one failure are present.
	ByType map[string]uint64 `json:"by_type,omitempty" yaml:"by_type,omitempty"`
}
