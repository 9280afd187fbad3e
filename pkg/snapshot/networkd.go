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

// NetworkdState holds per-link state parsed from networkd's runtime
// state files plus the count of managed interfaces.
type NetworkdState struct {
	ManagedInterfaces uint64           `json:"managed_interfaces" yaml:"managed_interfaces"`
	InterfacesState   []InterfaceState `json:"interfaces_state" yaml:"interfaces_state"`
}

// InterfaceState is one link's networkd view. State enumerations carry
// the integer codes networkctl uses; names live in the parse tables.
type InterfaceState struct {
	AddressState      AddressState `json:"address_state" yaml:"address_state"`
	AdminState        AdminState   `json:"admin_state" yaml:"admin_state"`
	CarrierState      CarrierState `json:"carrier_state" yaml:"carrier_state"`
	IPv4AddressState  AddressState `json:"ipv4_address_state" yaml:"ipv4_address_state"`
	IPv6AddressState  AddressState `json:"ipv6_address_state" yaml:"ipv6_address_state"`
	Name              string       `json:"name" yaml:"name"`
	NetworkFile       string       `json:"network_file" yaml:"network_file"`
	OperState         OperState    `json:"oper_state" yaml:"oper_state"`
	RequiredForOnline BoolState    `json:"required_for_online" yaml:"required_for_online"`
}

// AddressState is a link's address configuration state.
type AddressState uint8

const (
	AddressStateUnknown AddressState = iota
	AddressStateOff
	AddressStateDegraded
	AddressStateRoutable
)

// ParseAddressState maps an ADDRESS_STATE value, defaulting to unknown.
func ParseAddressState(s string) AddressState {
	switch s {
	case "off":
		return AddressStateOff
	case "degraded":
		return AddressStateDegraded
	case "routable":
		return AddressStateRoutable
	default:
		return AddressStateUnknown
	}
}

// AdminState is networkd's administrative state for a link.
type AdminState uint8

const (
	AdminStateUnknown AdminState = iota
	AdminStatePending
	AdminStateFailed
	AdminStateConfiguring
	AdminStateConfigured
	AdminStateUnmanaged
	AdminStateLinger
)

// ParseAdminState maps an ADMIN_STATE value, defaulting to unknown.
func ParseAdminState(s string) AdminState {
	switch s {
	case "pending":
		return AdminStatePending
	case "failed":
		return AdminStateFailed
	case "configuring":
		return AdminStateConfiguring
	case "configured":
		return AdminStateConfigured
	case "unmanaged":
		return AdminStateUnmanaged
	case "linger":
		return AdminStateLinger
	default:
		return AdminStateUnknown
	}
}

// CarrierState is a link's carrier state.
type CarrierState uint8

const (
	CarrierStateUnknown CarrierState = iota
	CarrierStateOff
	CarrierStateNoCarrier
	CarrierStateDormant
	CarrierStateDegradedCarrier
	CarrierStateCarrier
	CarrierStateEnslaved
)

// ParseCarrierState maps a CARRIER_STATE value, defaulting to unknown.
func ParseCarrierState(s string) CarrierState {
	switch s {
	case "off":
		return CarrierStateOff
	case "no-carrier":
		return CarrierStateNoCarrier
	case "dormant":
		return CarrierStateDormant
	case "degraded-carrier":
		return CarrierStateDegradedCarrier
	case "carrier":
		return CarrierStateCarrier
	case "enslaved":
		return CarrierStateEnslaved
	default:
		return CarrierStateUnknown
	}
}

// OperState is a link's operational state.
type OperState uint8

const (
	OperStateUnknown OperState = iota
	OperStateMissing
	OperStateOff
	OperStateNoCarrier
	OperStateDormant
	OperStateDegradedCarrier
	OperStateCarrier
	OperStateDegraded
	OperStateEnslaved
	OperStateRoutable
)

// ParseOperState maps an OPER_STATE value, defaulting to unknown.
func ParseOperState(s string) OperState {
	switch s {
	case "missing":
		return OperStateMissing
	case "off":
		return OperStateOff
	case "no-carrier":
		return OperStateNoCarrier
	case "dormant":
		return OperStateDormant
	case "degraded-carrier":
		return OperStateDegradedCarrier
	case "carrier":
		return OperStateCarrier
	case "degraded":
		return OperStateDegraded
	case "enslaved":
		return OperStateEnslaved
	case "routable":
		return OperStateRoutable
	default:
		return OperStateUnknown
	}
}

// BoolState is a yes/no state file value serialized as 0/1.
type BoolState uint8

const (
	BoolStateFalse BoolState = iota
	BoolStateTrue
)

// ParseBoolState maps yes/no (and true/false) values.
func ParseBoolState(s string) BoolState {
	switch s {
	case "yes", "true", "1":
		return BoolStateTrue
	default:
		return BoolStateFalse
	}
}
