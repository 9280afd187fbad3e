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
	"fmt"

	sd "github.com/coreos/go-systemd/v22/dbus"

	"github.com/mchmarny/sdmon/pkg/bus"
)

// fakeEndpoint is a scriptable bus.Endpoint for collector tests.
type fakeEndpoint struct {
	units       []sd.UnitStatus
	unitProps   map[string]map[string]interface{}
	typeProps   map[string]map[string]interface{}
	systemState string
	version     string
	processes   map[string]uint32
	machines    []bus.Machine
	owners      map[string]string
	busStats    map[string]interface{}

	err error
}

func (f *fakeEndpoint) ListUnits(_ context.Context) ([]sd.UnitStatus, error) {
	return f.units, f.err
}

func (f *fakeEndpoint) UnitProperties(_ context.Context, unit string) (map[string]interface{}, error) {
	props, ok := f.unitProps[unit]
	if !ok {
		return nil, fmt.Errorf("no such unit: %s", unit)
	}
	return props, nil
}

func (f *fakeEndpoint) UnitTypeProperties(_ context.Context, unit, _ string) (map[string]interface{}, error) {
	props, ok := f.typeProps[unit]
	if !ok {
		return nil, fmt.Errorf("no such unit: %s", unit)
	}
	return props, nil
}

func (f *fakeEndpoint) SystemState(_ context.Context) (string, error) {
	return f.systemState, f.err
}

func (f *fakeEndpoint) Version(_ context.Context) (string, error) {
	return f.version, f.err
}

func (f *fakeEndpoint) UnitProcesses(_ context.Context, unit string) (uint32, error) {
	return f.processes[unit], nil
}

func (f *fakeEndpoint) ListMachines(_ context.Context) ([]bus.Machine, error) {
	return f.machines, f.err
}

func (f *fakeEndpoint) NameOwners(_ context.Context) (map[string]string, error) {
	return f.owners, nil
}

func (f *fakeEndpoint) BusStats(_ context.Context) (map[string]interface{}, error) {
	return f.busStats, f.err
}

func (f *fakeEndpoint) Close() {}
