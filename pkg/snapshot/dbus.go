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

// DBusStats holds counters exposed by the message bus daemon itself
// via the Debug.Stats interface. Bus implementations (dbus-daemon,
// dbus-broker) and even versions of the same daemon report different
// key sets, so every counter is optional.
type DBusStats struct {
	Serial                      *uint32 `json:"serial,omitempty" yaml:"serial,omitempty"`
	ActiveConnections           *uint32 `json:"active_connections,omitempty" yaml:"active_connections,omitempty"`
	IncompleteConnections       *uint32 `json:"incomplete_connections,omitempty" yaml:"incomplete_connections,omitempty"`
	BusNames                    *uint32 `json:"bus_names,omitempty" yaml:"bus_names,omitempty"`
	PeakBusNames                *uint32 `json:"peak_bus_names,omitempty" yaml:"peak_bus_names,omitempty"`
	PeakBusNamesPerConnection   *uint32 `json:"peak_bus_names_per_connection,omitempty" yaml:"peak_bus_names_per_connection,omitempty"`
	MatchRules                  *uint32 `json:"match_rules,omitempty" yaml:"match_rules,omitempty"`
	PeakMatchRules              *uint32 `json:"peak_match_rules,omitempty" yaml:"peak_match_rules,omitempty"`
	PeakMatchRulesPerConnection *uint32 `json:"peak_match_rules_per_connection,omitempty" yaml:"peak_match_rules_per_connection,omitempty"`

	// PeerAccounting is dbus-broker specific per-peer accounting,
	// present only when peer stats are enabled.
	PeerAccounting map[string]PeerAccounting `json:"peer_accounting,omitempty" yaml:"peer_accounting,omitempty"`
}

// PeerAccounting is one bus peer's accounting record.
type PeerAccounting struct {
	ID            string  `json:"id" yaml:"id"`
	WellKnownName string  `json:"well_known_name,omitempty" yaml:"well_known_name,omitempty"`
	UnixUserID    *uint32 `json:"unix_user_id,omitempty" yaml:"unix_user_id,omitempty"`
	ProcessID     *uint32 `json:"process_id,omitempty" yaml:"process_id,omitempty"`

	Matches       *uint32 `json:"matches,omitempty" yaml:"matches,omitempty"`
	MatchBytes    *uint32 `json:"match_bytes,omitempty" yaml:"match_bytes,omitempty"`
	NameObjects   *uint32 `json:"name_objects,omitempty" yaml:"name_objects,omitempty"`
	ReplyObjects  *uint32 `json:"reply_objects,omitempty" yaml:"reply_objects,omitempty"`
	IncomingBytes *uint32 `json:"incoming_bytes,omitempty" yaml:"incoming_bytes,omitempty"`
	IncomingFDs   *uint32 `json:"incoming_fds,omitempty" yaml:"incoming_fds,omitempty"`
	OutgoingBytes *uint32 `json:"outgoing_bytes,omitempty" yaml:"outgoing_bytes,omitempty"`
	OutgoingFDs   *uint32 `json:"outgoing_fds,omitempty" yaml:"outgoing_fds,omitempty"`
}
