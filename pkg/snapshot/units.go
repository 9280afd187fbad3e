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

// UnitStats holds the unit census for one endpoint: counts of unit
// types, load and active states, queued jobs, plus per-entity maps for
// services, timers and unit states.
type UnitStats struct {
	ActiveUnits            uint64 `json:"active_units" yaml:"active_units"`
	AutomountUnits         uint64 `json:"automount_units" yaml:"automount_units"`
	DeviceUnits            uint64 `json:"device_units" yaml:"device_units"`
	FailedUnits            uint64 `json:"failed_units" yaml:"failed_units"`
	InactiveUnits          uint64 `json:"inactive_units" yaml:"inactive_units"`
	JobsQueued             uint64 `json:"jobs_queued" yaml:"jobs_queued"`
	LoadedUnits            uint64 `json:"loaded_units" yaml:"loaded_units"`
	MaskedUnits            uint64 `json:"masked_units" yaml:"masked_units"`
	MountUnits             uint64 `json:"mount_units" yaml:"mount_units"`
	NotFoundUnits          uint64 `json:"not_found_units" yaml:"not_found_units"`
	PathUnits              uint64 `json:"path_units" yaml:"path_units"`
	ScopeUnits             uint64 `json:"scope_units" yaml:"scope_units"`
	ServiceUnits           uint64 `json:"service_units" yaml:"service_units"`
	SliceUnits             uint64 `json:"slice_units" yaml:"slice_units"`
	SocketUnits            uint64 `json:"socket_units" yaml:"socket_units"`
	TargetUnits            uint64 `json:"target_units" yaml:"target_units"`
	TimerUnits             uint64 `json:"timer_units" yaml:"timer_units"`
	TimerPersistentUnits   uint64 `json:"timer_persistent_units" yaml:"timer_persistent_units"`
	TimerRemainAfterElapse uint64 `json:"timer_remain_after_elapse" yaml:"timer_remain_after_elapse"`
	TotalUnits             uint64 `json:"total_units" yaml:"total_units"`

	ServiceStats map[string]ServiceStats `json:"service_stats,omitempty" yaml:"service_stats,omitempty"`
	TimerStats   map[string]TimerStats   `json:"timer_stats,omitempty" yaml:"timer_stats,omitempty"`
	UnitStates   map[string]UnitState    `json:"unit_states,omitempty" yaml:"unit_states,omitempty"`
}

// NewUnitStats returns a UnitStats with its entity maps initialized.
func NewUnitStats() *UnitStats {
	return &UnitStats{
		ServiceStats: make(map[string]ServiceStats),
		TimerStats:   make(map[string]TimerStats),
		UnitStates:   make(map[string]UnitState),
	}
}

// ServiceStats is the selected subset of per-service properties from
// the org.freedesktop.systemd1 Unit and Service interfaces.
type ServiceStats struct {
	ActiveEnterTimestamp  uint64 `json:"active_enter_timestamp" yaml:"active_enter_timestamp"`
	ActiveExitTimestamp   uint64 `json:"active_exit_timestamp" yaml:"active_exit_timestamp"`
	CPUUsageNSec          uint64 `json:"cpuusage_nsec" yaml:"cpuusage_nsec"`
	InactiveExitTimestamp uint64 `json:"inactive_exit_timestamp" yaml:"inactive_exit_timestamp"`
	IOReadBytes           uint64 `json:"ioread_bytes" yaml:"ioread_bytes"`
	IOReadOperations      uint64 `json:"ioread_operations" yaml:"ioread_operations"`
	MemoryAvailable       uint64 `json:"memory_available" yaml:"memory_available"`
	MemoryCurrent         uint64 `json:"memory_current" yaml:"memory_current"`
	NRestarts             uint32 `json:"nrestarts" yaml:"nrestarts"`
	Processes             uint32 `json:"processes" yaml:"processes"`
	RestartUSec           uint64 `json:"restart_usec" yaml:"restart_usec"`
	StateChangeTimestamp  uint64 `json:"state_change_timestamp" yaml:"state_change_timestamp"`
	StatusErrno           int32  `json:"status_errno" yaml:"status_errno"`
	TasksCurrent          uint64 `json:"tasks_current" yaml:"tasks_current"`
	TimeoutCleanUSec      uint64 `json:"timeout_clean_usec" yaml:"timeout_clean_usec"`
	WatchdogUSec          uint64 `json:"watchdog_usec" yaml:"watchdog_usec"`
}

// TimerStats is the per-timer property set from the
// org.freedesktop.systemd1.Timer interface plus the state change
// timestamps of the service unit the timer triggers.
type TimerStats struct {
	AccuracyUSec                            uint64 `json:"accuracy_usec" yaml:"accuracy_usec"`
	FixedRandomDelay                        bool   `json:"fixed_random_delay" yaml:"fixed_random_delay"`
	LastTriggerUSec                         uint64 `json:"last_trigger_usec" yaml:"last_trigger_usec"`
	LastTriggerUSecMonotonic                uint64 `json:"last_trigger_usec_monotonic" yaml:"last_trigger_usec_monotonic"`
	NextElapseUSecMonotonic                 uint64 `json:"next_elapse_usec_monotonic" yaml:"next_elapse_usec_monotonic"`
	NextElapseUSecRealtime                  uint64 `json:"next_elapse_usec_realtime" yaml:"next_elapse_usec_realtime"`
	Persistent                              bool   `json:"persistent" yaml:"persistent"`
	RandomizedDelayUSec                     uint64 `json:"randomized_delay_usec" yaml:"randomized_delay_usec"`
	RemainAfterElapse                       bool   `json:"remain_after_elapse" yaml:"remain_after_elapse"`
	ServiceUnitLastStateChangeUSec          uint64 `json:"service_unit_last_state_change_usec" yaml:"service_unit_last_state_change_usec"`
	ServiceUnitLastStateChangeUSecMonotonic uint64 `json:"service_unit_last_state_change_usec_monotonic" yaml:"service_unit_last_state_change_usec_monotonic"`
}

// UnitState is one unit's load and active state with a derived
// health flag.
type UnitState struct {
	ActiveState      UnitActiveState `json:"active_state" yaml:"active_state"`
	LoadState        UnitLoadState   `json:"load_state" yaml:"load_state"`
	Unhealthy        bool            `json:"unhealthy" yaml:"unhealthy"`
	TimeInStateUSecs uint64          `json:"time_in_state_usecs" yaml:"time_in_state_usecs"`
}
