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

	"github.com/mchmarny/sdmon/pkg/bus"
	"github.com/mchmarny/sdmon/pkg/errors"
	"github.com/mchmarny/sdmon/pkg/snapshot"
)

// SystemStateCollector reads the manager's overall state.
type SystemStateCollector struct {
	Endpoint bus.Endpoint
}

// Collect returns the parsed manager state. Unrecognized values map
// to the unknown state rather than failing.
func (c *SystemStateCollector) Collect(ctx context.Context) (snapshot.SystemState, error) {
	state, err := c.Endpoint.SystemState(ctx)
	if err != nil {
		return snapshot.SystemStateUnknown,
			errors.Wrap(errors.ErrCodeCallFailure, "failed to get system state", err)
	}
	return snapshot.ParseSystemState(state), nil
}

// VersionCollector reads and parses the manager's version string.
type VersionCollector struct {
	Endpoint bus.Endpoint
}

// Collect fetches the Version property and parses it.
func (c *VersionCollector) Collect(ctx context.Context) (*snapshot.Version, error) {
	raw, err := c.Endpoint.Version(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCallFailure, "failed to get version", err)
	}
	v, err := snapshot.ParseVersion(raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeParseFailure, "failed to parse version", err)
	}
	return v, nil
}
