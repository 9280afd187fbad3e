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
	"os"
	"strconv"
	"strings"
	"time"

	sd "github.com/coreos/go-systemd/v22/dbus"
	godbus "github.com/godbus/dbus/v5"

	"github.com/mchmarny/sdmon/pkg/defaults"
	"github.com/mchmarny/sdmon/pkg/errors"
)

const (
	machinedDest = "org.freedesktop.machine1"
	machinedPath = "/org/freedesktop/machine1"

	busDest = "org.freedesktop.DBus"
	busPath = "/org/freedesktop/DBus"
)

// DBusDialer opens real D-Bus endpoints. The zero value uses the
// default per-call timeout.
type DBusDialer struct {
	// CallTimeout bounds each remote call made through the endpoint.
	CallTimeout time.Duration
}

// Dial opens both connections to the bus at the given address.
func (d *DBusDialer) Dial(ctx context.Context, address string) (Endpoint, error) {
	timeout := d.CallTimeout
	if timeout <= 0 {
		timeout = defaults.BusCallTimeout
	}

	raw, err := dialRaw(ctx, address)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeConnectionFailure,
			"failed to connect to bus", err,
			map[string]interface{}{"address": address})
	}

	mgr, err := sd.NewConnection(func() (*godbus.Conn, error) {
		return godbus.Dial(address)
	})
	if err != nil {
		raw.Close()
		return nil, errors.WrapWithContext(errors.ErrCodeConnectionFailure,
			"failed to connect to service manager", err,
			map[string]interface{}{"address": address})
	}

	return &endpoint{mgr: mgr, raw: raw, callTimeout: timeout}, nil
}

// dialRaw establishes an authenticated godbus connection for the
// interfaces go-systemd does not cover.
func dialRaw(ctx context.Context, address string) (*godbus.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, defaults.BusDialTimeout)
	defer cancel()

	conn, err := godbus.Dial(address, godbus.WithContext(dialCtx))
	if err != nil {
		return nil, err
	}

	methods := []godbus.Auth{godbus.AuthExternal(strconv.Itoa(os.Getuid()))}
	if err := conn.Auth(methods); err != nil {
		conn.Close()
		return nil, err
	}
	if err := conn.Hello(); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

type endpoint struct {
	mgr         *sd.Conn
	raw         *godbus.Conn
	callTimeout time.Duration
}

func (e *endpoint) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.callTimeout)
}

func (e *endpoint) ListUnits(ctx context.Context) ([]sd.UnitStatus, error) {
	ctx, cancel := e.callCtx(ctx)
	defer cancel()
	return e.mgr.ListUnitsContext(ctx)
}

func (e *endpoint) UnitProperties(ctx context.Context, unit string) (map[string]interface{}, error) {
	ctx, cancel := e.callCtx(ctx)
	defer cancel()
	return e.mgr.GetAllPropertiesContext(ctx, unit)
}

func (e *endpoint) UnitTypeProperties(ctx context.Context, unit, unitType string) (map[string]interface{}, error) {
	ctx, cancel := e.callCtx(ctx)
	defer cancel()
	return e.mgr.GetUnitTypePropertiesContext(ctx, unit, unitType)
}

func (e *endpoint) SystemState(ctx context.Context) (string, error) {
	ctx, cancel := e.callCtx(ctx)
	defer cancel()

	prop, err := e.mgr.SystemStateContext(ctx)
	if err != nil {
		return "", err
	}
	state, ok := prop.Value.Value().(string)
	if !ok {
		return "", errors.New(errors.ErrCodeParseFailure, "system state is not a string")
	}
	return state, nil
}

func (e *endpoint) Version(ctx context.Context) (string, error) {
	ctx, cancel := e.callCtx(ctx)
	defer cancel()

	var version string
	variant, err := e.getProperty(ctx, "org.freedesktop.systemd1",
		"/org/freedesktop/systemd1", "org.freedesktop.systemd1.Manager", "Version")
	if err != nil {
		return "", err
	}
	if err := variant.Store(&version); err != nil {
		return "", errors.Wrap(errors.ErrCodeParseFailure, "manager version is not a string", err)
	}
	return version, nil
}

// getProperty is a context-aware org.freedesktop.DBus.Properties.Get.
func (e *endpoint) getProperty(ctx context.Context, dest string, path godbus.ObjectPath, iface, prop string) (godbus.Variant, error) {
	var variant godbus.Variant
	obj := e.raw.Object(dest, path)
	call := obj.CallWithContext(ctx, "org.freedesktop.DBus.Properties.Get", 0, iface, prop)
	if call.Err != nil {
		return variant, call.Err
	}
	err := call.Store(&variant)
	return variant, err
}

func (e *endpoint) UnitProcesses(ctx context.Context, unit string) (uint32, error) {
	ctx, cancel := e.callCtx(ctx)
	defer cancel()

	var procs [][]interface{}
	obj := e.raw.Object("org.freedesktop.systemd1", "/org/freedesktop/systemd1")
	call := obj.CallWithContext(ctx, "org.freedesktop.systemd1.Manager.GetUnitProcesses", 0, unit)
	if call.Err != nil {
		return 0, call.Err
	}
	if err := call.Store(&procs); err != nil {
		return 0, errors.Wrap(errors.ErrCodeParseFailure, "unexpected process list shape", err)
	}
	return uint32(len(procs)), nil
}

func (e *endpoint) NameOwners(ctx context.Context) (map[string]string, error) {
	ctx, cancel := e.callCtx(ctx)
	defer cancel()

	var names []string
	obj := e.raw.Object(busDest, godbus.ObjectPath(busPath))
	call := obj.CallWithContext(ctx, busDest+".ListNames", 0)
	if call.Err != nil {
		return nil, call.Err
	}
	if err := call.Store(&names); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParseFailure, "unexpected name list shape", err)
	}

	owners := make(map[string]string)
	for _, name := range names {
		if strings.HasPrefix(name, ":") {
			continue
		}
		var owner string
		ownerCall := obj.CallWithContext(ctx, busDest+".GetNameOwner", 0, name)
		if ownerCall.Err != nil {
			continue
		}
		if err := ownerCall.Store(&owner); err != nil {
			continue
		}
		owners[owner] = name
	}
	return owners, nil
}

func (e *endpoint) ListMachines(ctx context.Context) ([]Machine, error) {
	ctx, cancel := e.callCtx(ctx)
	defer cancel()

	var rows [][]interface{}
	obj := e.raw.Object(machinedDest, godbus.ObjectPath(machinedPath))
	call := obj.CallWithContext(ctx, machinedDest+".Manager.ListMachines", 0)
	if call.Err != nil {
		return nil, call.Err
	}
	if err := call.Store(&rows); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParseFailure, "unexpected machine list shape", err)
	}

	machines := make([]Machine, 0, len(rows))
	for _, row := range rows {
		if len(row) < 4 {
			continue
		}
		name, _ := row[0].(string)
		class, _ := row[1].(string)
		service, _ := row[2].(string)
		path, _ := row[3].(godbus.ObjectPath)

		leader, err := e.machineLeader(ctx, path)
		if err != nil {
			return nil, err
		}
		machines = append(machines, Machine{
			Name:    name,
			Class:   class,
			Service: service,
			Leader:  leader,
		})
	}
	return machines, nil
}

func (e *endpoint) machineLeader(ctx context.Context, path godbus.ObjectPath) (uint32, error) {
	var leader uint32
	variant, err := e.getProperty(ctx, machinedDest, path, machinedDest+".Machine", "Leader")
	if err != nil {
		return 0, err
	}
	if err := variant.Store(&leader); err != nil {
		return 0, errors.Wrap(errors.ErrCodeParseFailure, "machine leader is not a pid", err)
	}
	return leader, nil
}

func (e *endpoint) BusStats(ctx context.Context) (map[string]interface{}, error) {
	ctx, cancel := e.callCtx(ctx)
	defer cancel()

	var stats map[string]godbus.Variant
	obj := e.raw.Object(busDest, godbus.ObjectPath(busPath))
	call := obj.CallWithContext(ctx, busDest+".Debug.Stats.GetStats", 0)
	if call.Err != nil {
		return nil, call.Err
	}
	if err := call.Store(&stats); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParseFailure, "unexpected bus stats shape", err)
	}

	out := make(map[string]interface{}, len(stats))
	for k, v := range stats {
		out[k] = v.Value()
	}
	return out, nil
}

func (e *endpoint) Close() {
	e.mgr.Close()
	e.raw.Close()
}
