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
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/mchmarny/sdmon/pkg/collector/file"
	"github.com/mchmarny/sdmon/pkg/errors"
	"github.com/mchmarny/sdmon/pkg/snapshot"
)

// NetworkdCollector reads networkd's per-link state files from
// LinkStateDir. The files are named by interface index and hold
// KEY=VALUE lines.
type NetworkdCollector struct {
	LinkStateDir string

	// ResolveName maps an interface index to its name. When nil the
	// host's interface table is consulted, falling back to the index
	// as a string. Overridable for state directories that belong to
	// another network namespace.
	ResolveName func(index int) string
}

// Collect parses every link state file in LinkStateDir. Unparsable
// files are logged and skipped.
func (c *NetworkdCollector) Collect() (*snapshot.NetworkdState, error) {
	entries, err := os.ReadDir(c.LinkStateDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCallFailure,
			fmt.Sprintf("failed to read link state dir %q", c.LinkStateDir), err)
	}

	parser := file.NewParser(file.WithVTrimChars(`"`))
	state := &snapshot.NetworkdState{
		InterfacesState: make([]snapshot.InterfaceState, 0, len(entries)),
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		index, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}

		kv, err := parser.GetMap(filepath.Join(c.LinkStateDir, entry.Name()))
		if err != nil {
			slog.Error("failed to parse link state file",
				"file", entry.Name(), "error", err)
			continue
		}

		iface := snapshot.InterfaceState{
			AddressState:      snapshot.ParseAddressState(kv["ADDRESS_STATE"]),
			AdminState:        snapshot.ParseAdminState(kv["ADMIN_STATE"]),
			CarrierState:      snapshot.ParseCarrierState(kv["CARRIER_STATE"]),
			IPv4AddressState:  snapshot.ParseAddressState(kv["IPV4_ADDRESS_STATE"]),
			IPv6AddressState:  snapshot.ParseAddressState(kv["IPV6_ADDRESS_STATE"]),
			Name:              c.interfaceName(index),
			NetworkFile:       kv["NETWORK_FILE"],
			OperState:         snapshot.ParseOperState(kv["OPER_STATE"]),
			RequiredForOnline: snapshot.ParseBoolState(kv["REQUIRED_FOR_ONLINE"]),
		}

		if iface.NetworkFile != "" {
			state.ManagedInterfaces++
		}
		state.InterfacesState = append(state.InterfacesState, iface)
	}

	sort.Slice(state.InterfacesState, func(i, j int) bool {
		return state.InterfacesState[i].Name < state.InterfacesState[j].Name
	})
	return state, nil
}

func (c *NetworkdCollector) interfaceName(index int) string {
	if c.ResolveName != nil {
		return c.ResolveName(index)
	}
	if iface, err := net.InterfaceByIndex(index); err == nil {
		return iface.Name
	}
	return strconv.Itoa(index)
}
