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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sderrors "github.com/mchmarny/sdmon/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sdmon.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultBusAddress, cfg.Agent.BusAddress)
	assert.Equal(t, FormatJSON, cfg.Agent.OutputFormat)
	assert.Equal(t, 30*time.Second, cfg.BusTimeout())
	assert.False(t, cfg.Agent.Daemon)

	assert.True(t, cfg.Units.Enabled)
	assert.False(t, cfg.Units.StateStats)
	assert.True(t, cfg.Units.TimeInState)
	assert.True(t, cfg.Pid1.Enabled)
	assert.True(t, cfg.SystemState.Enabled)
	assert.True(t, cfg.Timers.Enabled)
	assert.True(t, cfg.Machines.Enabled)
	assert.Equal(t, DefaultMachineDepth, cfg.Machines.MaxDepth)
	assert.True(t, cfg.DBusStats.Enabled)

	assert.False(t, cfg.Networkd.Enabled)
	assert.Equal(t, DefaultLinkStateDir, cfg.Networkd.LinkStateDir)
	assert.False(t, cfg.BootBlame.Enabled)
	assert.Equal(t, DefaultBlameTopN, cfg.BootBlame.TopN)
	assert.False(t, cfg.Verify.Enabled)
}

func TestLoadFull(t *testing.T) {
	path := writeConfig(t, `
agent:
  bus_address: unix:path=/tmp/test_bus_socket
  bus_timeout_secs: 5
  daemon: true
  refresh_secs: 10
  key_prefix: sdmon
  output_format: json-flat
units:
  enabled: true
  state_stats: true
  state_stats_filter:
    allow:
      - sshd.service
    block:
      - cron.service
services:
  - sshd.service
  - chronyd.service
networkd:
  enabled: true
  link_state_dir: /tmp/netif/links
machines:
  enabled: true
  max_depth: 2
  filter:
    block:
      - noisy-container
boot_blame:
  enabled: true
  num_slowest_units: 10
verify:
  enabled: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "unix:path=/tmp/test_bus_socket", cfg.Agent.BusAddress)
	assert.Equal(t, 5*time.Second, cfg.BusTimeout())
	assert.True(t, cfg.Agent.Daemon)
	assert.Equal(t, 10*time.Second, cfg.Refresh())
	assert.Equal(t, "sdmon", cfg.Agent.KeyPrefix)
	assert.Equal(t, FormatJSONFlat, cfg.Agent.OutputFormat)

	assert.True(t, cfg.Units.StateStats)
	assert.True(t, cfg.Units.StateFilter.Include("sshd.service"))
	assert.False(t, cfg.Units.StateFilter.Include("cron.service"))
	assert.Equal(t, []string{"sshd.service", "chronyd.service"}, cfg.Services)

	assert.True(t, cfg.Networkd.Enabled)
	assert.Equal(t, "/tmp/netif/links", cfg.Networkd.LinkStateDir)

	assert.Equal(t, 2, cfg.Machines.MaxDepth)
	assert.False(t, cfg.Machines.Filter.Include("noisy-container"))

	assert.True(t, cfg.BootBlame.Enabled)
	assert.Equal(t, 10, cfg.BootBlame.TopN)
	assert.True(t, cfg.Verify.Enabled)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
units:
  enabled: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Units.Enabled)
	assert.True(t, cfg.Pid1.Enabled)
	assert.Equal(t, DefaultBusAddress, cfg.Agent.BusAddress)
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name: "daemon without interval",
			mutate: func(c *Config) {
				c.Agent.Daemon = true
				c.Agent.RefreshSecs = 0
			},
		},
		{
			name: "daemon with negative interval",
			mutate: func(c *Config) {
				c.Agent.Daemon = true
				c.Agent.RefreshSecs = -1
			},
		},
		{
			name: "unknown output format",
			mutate: func(c *Config) {
				c.Agent.OutputFormat = "xml"
			},
		},
		{
			name: "zero bus timeout",
			mutate: func(c *Config) {
				c.Agent.BusTimeoutSecs = 0
			},
		},
		{
			name: "negative machine depth",
			mutate: func(c *Config) {
				c.Machines.MaxDepth = -1
			},
		},
		{
			name: "boot blame with zero units",
			mutate: func(c *Config) {
				c.BootBlame.Enabled = true
				c.BootBlame.TopN = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var serr *sderrors.StructuredError
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, sderrors.ErrCodeConfigFailure, serr.Code)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/sdmon.yaml")
	assert.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeConfig(t, "agent: [not a mapping")
	_, err := Load(path)
	assert.Error(t, err)
}
