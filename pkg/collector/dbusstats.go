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
	"log/slog"

	godbus "github.com/godbus/dbus/v5"

	"github.com/mchmarny/sdmon/pkg/bus"
	"github.com/mchmarny/sdmon/pkg/errors"
	"github.com/mchmarny/sdmon/pkg/filter"
	"github.com/mchmarny/sdmon/pkg/snapshot"
)

// peerAccountingKey is the dbus-broker extension carrying per-peer
// accounting records inside the GetStats reply.
const peerAccountingKey = "org.bus1.DBus.Debug.Stats.PeerAccounting"

// DBusStatsCollector reads the bus daemon's Debug.Stats counters.
// Peer accounting is dbus-broker specific and gated by PeerStats.
type DBusStatsCollector struct {
	Endpoint bus.Endpoint

	PeerStats bool
	// WellKnownOnly drops peers that hold no well-known name.
	WellKnownOnly bool
	PeerFilter    filter.Filter
}

// Collect calls GetStats and decodes the counters it recognizes.
// Unknown keys are ignored since key sets differ between bus
// implementations.
func (c *DBusStatsCollector) Collect(ctx context.Context) (*snapshot.DBusStats, error) {
	raw, err := c.Endpoint.BusStats(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCallFailure, "failed to get bus stats", err)
	}

	stats := &snapshot.DBusStats{
		Serial:                      statUint32(raw, "Serial"),
		ActiveConnections:           statUint32(raw, "ActiveConnections"),
		IncompleteConnections:       statUint32(raw, "IncompleteConnections"),
		BusNames:                    statUint32(raw, "BusNames"),
		PeakBusNames:                statUint32(raw, "PeakBusNames"),
		PeakBusNamesPerConnection:   statUint32(raw, "PeakBusNamesPerConnection"),
		MatchRules:                  statUint32(raw, "MatchRules"),
		PeakMatchRules:              statUint32(raw, "PeakMatchRules"),
		PeakMatchRulesPerConnection: statUint32(raw, "PeakMatchRulesPerConnection"),
	}

	if c.PeerStats {
		stats.PeerAccounting = c.peerAccounting(ctx, raw[peerAccountingKey])
	}
	return stats, nil
}

// peerAccounting decodes the dbus-broker peer accounting array. Each
// record is a struct of unique name, credential dict, and counter
// dict. Records that do not match that shape are skipped.
func (c *DBusStatsCollector) peerAccounting(ctx context.Context, raw interface{}) map[string]snapshot.PeerAccounting {
	rows, ok := raw.([]interface{})
	if !ok {
		if raw != nil {
			slog.Debug("unexpected peer accounting shape",
				"type", fmt.Sprintf("%T", raw))
		}
		return nil
	}

	owners, err := c.Endpoint.NameOwners(ctx)
	if err != nil {
		slog.Debug("failed to resolve name owners", "error", err)
	}

	peers := make(map[string]snapshot.PeerAccounting, len(rows))
	for _, row := range rows {
		fields, ok := row.([]interface{})
		if !ok || len(fields) < 3 {
			continue
		}
		id, ok := fields[0].(string)
		if !ok {
			continue
		}

		wellKnown := owners[id]
		if c.WellKnownOnly && wellKnown == "" {
			continue
		}
		if wellKnown != "" && !c.PeerFilter.Include(wellKnown) {
			continue
		}

		creds := statMap(fields[1])
		counters := statMap(fields[2])

		peers[id] = snapshot.PeerAccounting{
			ID:            id,
			WellKnownName: wellKnown,
			UnixUserID:    statUint32(creds, "UnixUserID"),
			ProcessID:     statUint32(creds, "ProcessID"),
			Matches:       statUint32(counters, "Matches"),
			MatchBytes:    statUint32(counters, "MatchBytes"),
			NameObjects:   statUint32(counters, "NameObjects"),
			ReplyObjects:  statUint32(counters, "ReplyObjects"),
			IncomingBytes: statUint32(counters, "IncomingBytes"),
			IncomingFDs:   statUint32(counters, "IncomingFds"),
			OutgoingBytes: statUint32(counters, "OutgoingBytes"),
			OutgoingFDs:   statUint32(counters, "OutgoingFds"),
		}
	}
	return peers
}

// statMap normalizes a nested a{sv} value, which decodes as either a
// variant map or a plain interface map depending on depth.
func statMap(v interface{}) map[string]interface{} {
	switch m := v.(type) {
	case map[string]interface{}:
		return m
	case map[string]godbus.Variant:
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			out[k] = val.Value()
		}
		return out
	default:
		return nil
	}
}

// statUint32 reads an optional uint32 counter, tolerating the integer
// widths different bus daemons use.
func statUint32(m map[string]interface{}, key string) *uint32 {
	v, ok := m[key]
	if !ok {
		return nil
	}
	if variant, ok := v.(godbus.Variant); ok {
		v = variant.Value()
	}
	var out uint32
	switch n := v.(type) {
	case uint32:
		out = n
	case uint64:
		out = uint32(n)
	case int32:
		out = uint32(n)
	case int64:
		out = uint32(n)
	default:
		return nil
	}
	return &out
}
