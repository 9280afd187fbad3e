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

package defaults

import "time"

// Bus timeouts for D-Bus operations.
const (
	// BusCallTimeout is the default timeout for a single bus method call.
	// Collectors should respect parent context deadlines when shorter.
	BusCallTimeout = 30 * time.Second

	// BusDialTimeout is the timeout for establishing a bus connection,
	// including connections into container buses.
	BusDialTimeout = 5 * time.Second
)

// Collector timeouts for data collection operations.
const (
	// CollectorTimeout caps one collector invocation end to end.
	CollectorTimeout = 60 * time.Second

	// VerifyTimeout caps one unit verification subprocess.
	VerifyTimeout = 30 * time.Second
)

// Run loop defaults.
const (
	// DaemonRefresh is the default interval between collection cycles
	// in daemon mode.
	DaemonRefresh = 30 * time.Second
)

// Ops endpoint timeouts for the embedded metrics and health server.
const (
	ServerReadTimeout     = 10 * time.Second
	ServerWriteTimeout    = 30 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)
