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

// Package snapshotter orchestrates collection cycles.
//
// Each cycle fans the enabled collectors out with errgroup, one
// goroutine per collector, all bound to the same endpoint. Collectors
// fail independently: a failed collector leaves its snapshot field
// absent and is logged, never cancelling its siblings. The shared
// snapshot is guarded by a mutex held only while installing a result,
// never across a remote call.
//
// Machines registered with machined are traversed recursively up to
// the configured depth, each through its own endpoint dialed via the
// leader process's root. An unreachable machine yields a node with
// Reachable=false and does not affect the parent collection.
//
// A cycle where zero counted collectors succeed returns
// ErrNoCollectors, which callers turn into a non-zero exit. The
// RunLoop repeats cycles on the refresh interval in daemon mode and
// treats a cycle outrunning its interval as a configuration error.
package snapshotter
