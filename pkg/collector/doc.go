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

// Package collector implements the individual telemetry collectors.
//
// # Overview
//
// Each collector queries one subsystem and returns one typed result:
//
//   - UnitsCollector - unit census, per-unit states, per-service stats
//   - TimersCollector - per-timer properties and trigger bookkeeping
//   - NetworkdCollector - per-link state from networkd's runtime files
//   - Pid1Collector - manager process resource usage from procfs
//   - SystemStateCollector / VersionCollector - manager run state and version
//   - DBusStatsCollector - bus daemon Debug.Stats counters
//   - BootBlameCollector - slowest units at boot
//   - VerifyCollector - unit file verification failures
//
// Collectors are independent: each either succeeds with a fully typed
// result or fails with an error scoped to itself. The orchestrator in
// pkg/snapshotter runs them concurrently and tolerates any subset
// failing. All collectors support context-based cancellation.
//
// # Endpoint Injection
//
// Bus-backed collectors hold a bus.Endpoint rather than dialing
// themselves, so the same collector runs against the host manager or a
// container's manager, and tests substitute fakes:
//
//	c := &collector.UnitsCollector{Endpoint: ep}
//	stats, err := c.Collect(ctx)
//
// # Error Handling
//
// A collector returns an error when its endpoint call fails or its
// reply cannot be parsed. Per-entity problems inside a collector (one
// unparseable timer among fifty) are logged and skipped, not escalated.
package collector
