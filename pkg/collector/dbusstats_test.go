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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mchmarny/sdmon/pkg/filter"
)

func peerRow(id string, uid, pid uint32, counters map[string]interface{}) []interface{} {
	return []interface{}{
		id,
		map[string]interface{}{"UnixUserID": uid, "ProcessID": pid},
		counters,
	}
}

func TestDBusStatsCollectorCounters(t *testing.T) {
	ep := &fakeEndpoint{
		busStats: map[string]interface{}{
			"Serial":            uint32(99),
			"ActiveConnections": uint32(42),
			"MatchRules":        uint32(512),
			"SomeNewCounter":    uint32(7),
		},
	}

	c := &DBusStatsCollector{Endpoint: ep}
	stats, err := c.Collect(context.Background())
	require.NoError(t, err)

	require.NotNil(t, stats.Serial)
	assert.Equal(t, uint32(99), *stats.Serial)
	require.NotNil(t, stats.ActiveConnections)
	assert.Equal(t, uint32(42), *stats.ActiveConnections)
	require.NotNil(t, stats.MatchRules)
	assert.Equal(t, uint32(512), *stats.MatchRules)
	assert.Nil(t, stats.PeakBusNames)
	assert.Nil(t, stats.PeerAccounting)
}

func TestDBusStatsCollectorPeerAccounting(t *testing.T) {
	ep := &fakeEndpoint{
		busStats: map[string]interface{}{
			"Serial": uint32(1),
			peerAccountingKey: []interface{}{
				peerRow(":1.0", 0, 1, map[string]interface{}{
					"Matches":       uint32(10),
					"IncomingBytes": uint32(2048),
				}),
				peerRow(":1.7", 1000, 4242, map[string]interface{}{
					"Matches": uint32(3),
				}),
				"garbage row",
			},
		},
		owners: map[string]string{
			":1.0": "org.freedesktop.systemd1",
		},
	}

	c := &DBusStatsCollector{Endpoint: ep, PeerStats: true}
	stats, err := c.Collect(context.Background())
	require.NoError(t, err)

	require.Len(t, stats.PeerAccounting, 2)
	sysd := stats.PeerAccounting[":1.0"]
	assert.Equal(t, "org.freedesktop.systemd1", sysd.WellKnownName)
	require.NotNil(t, sysd.UnixUserID)
	assert.Equal(t, uint32(0), *sysd.UnixUserID)
	require.NotNil(t, sysd.Matches)
	assert.Equal(t, uint32(10), *sysd.Matches)
	require.NotNil(t, sysd.IncomingBytes)
	assert.Equal(t, uint32(2048), *sysd.IncomingBytes)

	anon := stats.PeerAccounting[":1.7"]
	assert.Empty(t, anon.WellKnownName)
	require.NotNil(t, anon.ProcessID)
	assert.Equal(t, uint32(4242), *anon.ProcessID)
}

func TestDBusStatsCollectorWellKnownOnly(t *testing.T) {
	ep := &fakeEndpoint{
		busStats: map[string]interface{}{
			peerAccountingKey: []interface{}{
				peerRow(":1.0", 0, 1, nil),
				peerRow(":1.7", 1000, 2, nil),
			},
		},
		owners: map[string]string{":1.0": "org.freedesktop.systemd1"},
	}

	c := &DBusStatsCollector{Endpoint: ep, PeerStats: true, WellKnownOnly: true}
	stats, err := c.Collect(context.Background())
	require.NoError(t, err)

	require.Len(t, stats.PeerAccounting, 1)
	assert.Contains(t, stats.PeerAccounting, ":1.0")
}

func TestDBusStatsCollectorPeerFilter(t *testing.T) {
	ep := &fakeEndpoint{
		busStats: map[string]interface{}{
			peerAccountingKey: []interface{}{
				peerRow(":1.0", 0, 1, nil),
				peerRow(":1.1", 0, 2, nil),
			},
		},
		owners: map[string]string{
			":1.0": "org.freedesktop.systemd1",
			":1.1": "org.freedesktop.machine1",
		},
	}

	c := &DBusStatsCollector{
		Endpoint:   ep,
		PeerStats:  true,
		PeerFilter: filter.New(nil, []string{"org.freedesktop.machine1"}),
	}
	stats, err := c.Collect(context.Background())
	require.NoError(t, err)

	require.Len(t, stats.PeerAccounting, 1)
	assert.Contains(t, stats.PeerAccounting, ":1.0")
}
