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

// SystemState is the overall manager state reported by PID 1,
// equivalent to `systemctl is-system-running`. Integer codes are
// stable and serialize in place of the symbolic names.
type SystemState uint8

const (
	SystemStateUnknown SystemState = iota
	SystemStateInitializing
	SystemStateStarting
	SystemStateRunning
	SystemStateDegraded
	SystemStateMaintenance
	SystemStateStopping
	SystemStateOffline
)

var systemStateNames = map[SystemState]string{
	SystemStateUnknown:      "unknown",
	SystemStateInitializing: "initializing",
	SystemStateStarting:     "starting",
	SystemStateRunning:      "running",
	SystemStateDegraded:     "degraded",
	SystemStateMaintenance:  "maintenance",
	SystemStateStopping:     "stopping",
	SystemStateOffline:      "offline",
}

// String returns the symbolic name for the state.
func (s SystemState) String() string {
	if name, ok := systemStateNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseSystemState maps a manager state string to its enumeration.
// Unrecognized strings map to SystemStateUnknown rather than failing.
func ParseSystemState(s string) SystemState {
	switch s {
	case "initializing":
		return SystemStateInitializing
	case "starting":
		return SystemStateStarting
	case "running":
		return SystemStateRunning
	case "degraded":
		return SystemStateDegraded
	case "maintenance":
		return SystemStateMaintenance
	case "stopping":
		return SystemStateStopping
	case "offline":
		return SystemStateOffline
	default:
		return SystemStateUnknown
	}
}

// UnitActiveState is a unit's high level activation state.
type UnitActiveState uint8

const (
	UnitActiveStateUnknown UnitActiveState = iota
	UnitActiveStateActive
	UnitActiveStateReloading
	UnitActiveStateInactive
	UnitActiveStateFailed
	UnitActiveStateActivating
	UnitActiveStateDeactivating
)

// ParseUnitActiveState maps an ActiveState property string to its
// enumeration, defaulting to unknown.
func ParseUnitActiveState(s string) UnitActiveState {
	switch s {
	case "active":
		return UnitActiveStateActive
	case "reloading":
		return UnitActiveStateReloading
	case "inactive":
		return UnitActiveStateInactive
	case "failed":
		return UnitActiveStateFailed
	case "activating":
		return UnitActiveStateActivating
	case "deactivating":
		return UnitActiveStateDeactivating
	default:
		return UnitActiveStateUnknown
	}
}

// UnitLoadState is whether a unit file has been loaded successfully.
type UnitLoadState uint8

const (
	UnitLoadStateUnknown UnitLoadState = iota
	UnitLoadStateLoaded
	UnitLoadStateError
	UnitLoadStateMasked
	UnitLoadStateNotFound
)

// ParseUnitLoadState maps a LoadState property string to its
// enumeration, defaulting to unknown.
func ParseUnitLoadState(s string) UnitLoadState {
	switch s {
	case "loaded":
		return UnitLoadStateLoaded
	case "error":
		return UnitLoadStateError
	case "masked":
		return UnitLoadStateMasked
	case "not-found":
		return UnitLoadStateNotFound
	default:
		return UnitLoadStateUnknown
	}
}

// IsUnitUnhealthy evaluates a unit's health from its load and active
// states. Only loaded units that are not active count as unhealthy;
// masked units are ignored since an admin masks units on purpose.
// Units in any other load state are unhealthy outright.
func IsUnitUnhealthy(active UnitActiveState, load UnitLoadState) bool {
	switch load {
	case UnitLoadStateLoaded:
		return active != UnitActiveStateActive
	case UnitLoadStateMasked:
		return false
	default:
		return true
	}
}
