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

package bus

import (
	"context"
	"fmt"

	sd "github.com/coreos/go-systemd/v22/dbus"
)

// Machine is one nested environment registered with machined.
type Machine struct {
	// Name is the machine name, e.g. the container name.
	Name string
	// Class is "container" or "vm".
	Class string
	// Service is the integration service that registered the machine.
	Service string
	// Leader is the host PID of the machine's leader process.
	Leader uint32
}

// Endpoint is one connection to a service manager bus. Every method
// maps to a single remote call; implementations apply their own
// per-call timeout on top of the caller's context.
type Endpoint interface {
	// ListUnits returns all currently loaded units.
	ListUnits(ctx context.Context) ([]sd.UnitStatus, error)

	// UnitProperties returns all properties of the named unit.
	UnitProperties(ctx context.Context, unit string) (map[string]interface{}, error)

	// UnitTypeProperties returns the type-scoped properties of the
	// named unit, e.g. the Timer properties of a .timer unit.
	UnitTypeProperties(ctx context.Context, unit, unitType string) (map[string]interface{}, error)

	// SystemState returns the manager's run state string.
	SystemState(ctx context.Context) (string, error)

	// Version returns the manager's raw version string.
	Version(ctx context.Context) (string, error)

	// UnitProcesses returns the number of processes in the named
	// unit's control group.
	UnitProcesses(ctx context.Context, unit string) (uint32, error)

	// ListMachines enumerates machines registered with machined,
	// with leader PIDs resolved.
	ListMachines(ctx context.Context) ([]Machine, error)

	// NameOwners maps unique connection names to the well-known bus
	// names they own.
	NameOwners(ctx context.Context) (map[string]string, error)

	// BusStats returns the bus daemon's Debug.Stats counters with
	// variant values unwrapped.
	BusStats(ctx context.Context) (map[string]interface{}, error)

	// Close releases both underlying connections.
	Close()
}

// Dialer opens Endpoints. The single production implementation dials
// D-Bus; tests substitute fakes.
type Dialer interface {
	Dial(ctx context.Context, address string) (Endpoint, error)
}

// MachineAddress builds the bus address of a machine's service manager
// as seen through its leader process's root.
func MachineAddress(leader uint32) string {
	return fmt.Sprintf("unix:path=/proc/%d/root/run/dbus/system_bus_socket", leader)
}
