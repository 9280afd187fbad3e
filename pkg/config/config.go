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
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mchmarny/sdmon/pkg/defaults"
	"github.com/mchmarny/sdmon/pkg/errors"
	"github.com/mchmarny/sdmon/pkg/filter"
)

// Default connection and output settings.
const (
	DefaultBusAddress   = "unix:path=/run/dbus/system_bus_socket"
	DefaultLinkStateDir = "/run/systemd/netif/links"
	DefaultBusTimeout   = int64(defaults.BusCallTimeout / time.Second)
	DefaultRefreshSecs  = int64(defaults.DaemonRefresh / time.Second)
	DefaultBlameTopN    = 5
	DefaultMachineDepth = 1
)

// Output formats.
const (
	FormatJSON       = "json"
	FormatJSONPretty = "json-pretty"
	FormatJSONFlat   = "json-flat"
)

// AgentConfig holds connection, cadence, and output settings.
type AgentConfig struct {
	// BusAddress is the D-Bus address of the service manager endpoint.
	BusAddress string `yaml:"bus_address"`
	// BusTimeoutSecs bounds each bus method call.
	BusTimeoutSecs int64 `yaml:"bus_timeout_secs"`
	// Daemon repeats collection on an interval instead of running once.
	Daemon bool `yaml:"daemon"`
	// RefreshSecs is the interval between daemon cycles.
	RefreshSecs int64 `yaml:"refresh_secs"`
	// KeyPrefix is prepended to every flat output key.
	KeyPrefix string `yaml:"key_prefix"`
	// OutputFormat is one of json, json-pretty, json-flat.
	OutputFormat string `yaml:"output_format"`
	// OutputPath writes snapshots to a file instead of stdout.
	OutputPath string `yaml:"output_path"`
}

// UnitsConfig controls the unit count and per-unit state collectors.
type UnitsConfig struct {
	Enabled     bool          `yaml:"enabled"`
	StateStats  bool          `yaml:"state_stats"`
	StateFilter filter.Filter `yaml:"state_stats_filter"`
	TimeInState bool          `yaml:"state_stats_time_in_state"`
}

// NetworkdConfig controls the networkd link state collector.
type NetworkdConfig struct {
	Enabled      bool   `yaml:"enabled"`
	LinkStateDir string `yaml:"link_state_dir"`
}

// EnabledConfig is a collector with no settings beyond its switch.
type EnabledConfig struct {
	Enabled bool `yaml:"enabled"`
}

// FilteredConfig is a collector with a switch and an entity filter.
type FilteredConfig struct {
	Enabled bool          `yaml:"enabled"`
	Filter  filter.Filter `yaml:"filter"`
}

// MachinesConfig controls nested machine traversal.
type MachinesConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Filter   filter.Filter `yaml:"filter"`
	MaxDepth int           `yaml:"max_depth"`
}

// DBusStatsConfig controls the bus daemon stats collector.
type DBusStatsConfig struct {
	Enabled bool `yaml:"enabled"`

	PeerStats         bool          `yaml:"peer_stats"`
	PeerWellKnownOnly bool          `yaml:"peer_well_known_names_only"`
	PeerFilter        filter.Filter `yaml:"peer_filter"`
}

// BootBlameConfig controls the slowest-units boot timing collector.
type BootBlameConfig struct {
	Enabled bool          `yaml:"enabled"`
	TopN    int           `yaml:"num_slowest_units"`
	Filter  filter.Filter `yaml:"filter"`
}

// Config is the full agent configuration. Each field maps to one
// top-level section of the YAML config file.
type Config struct {
	Agent       AgentConfig     `yaml:"agent"`
	Units       UnitsConfig     `yaml:"units"`
	Services    []string        `yaml:"services"`
	Networkd    NetworkdConfig  `yaml:"networkd"`
	Pid1        EnabledConfig   `yaml:"pid1"`
	SystemState EnabledConfig   `yaml:"system_state"`
	Timers      FilteredConfig  `yaml:"timers"`
	Machines    MachinesConfig  `yaml:"machines"`
	DBusStats   DBusStatsConfig `yaml:"dbus_stats"`
	BootBlame   BootBlameConfig `yaml:"boot_blame"`
	Verify      FilteredConfig  `yaml:"verify"`
}

// New returns a Config with defaults applied. Collectors that need no
// local privileges or subprocesses default on, the rest default off.
func New() *Config {
	return &Config{
		Agent: AgentConfig{
			BusAddress:     DefaultBusAddress,
			BusTimeoutSecs: DefaultBusTimeout,
			RefreshSecs:    DefaultRefreshSecs,
			OutputFormat:   FormatJSON,
		},
		Units: UnitsConfig{
			Enabled:     true,
			TimeInState: true,
		},
		Networkd: NetworkdConfig{
			LinkStateDir: DefaultLinkStateDir,
		},
		Pid1:        EnabledConfig{Enabled: true},
		SystemState: EnabledConfig{Enabled: true},
		Timers:      FilteredConfig{Enabled: true},
		Machines: MachinesConfig{
			Enabled:  true,
			MaxDepth: DefaultMachineDepth,
		},
		DBusStats: DBusStatsConfig{Enabled: true},
		BootBlame: BootBlameConfig{
			TopN: DefaultBlameTopN,
		},
	}
}

// Load reads a YAML config file over the defaults. An empty path
// returns pure defaults.
func Load(path string) (*Config, error) {
	cfg := New()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigFailure, "failed to read config file", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigFailure, "failed to parse config file", err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the run loop cannot honor.
func (c *Config) Validate() error {
	switch c.Agent.OutputFormat {
	case FormatJSON, FormatJSONPretty, FormatJSONFlat:
	default:
		return errors.New(errors.ErrCodeConfigFailure,
			fmt.Sprintf("unknown output format %q", c.Agent.OutputFormat))
	}
	if c.Agent.Daemon && c.Agent.RefreshSecs <= 0 {
		return errors.New(errors.ErrCodeConfigFailure,
			fmt.Sprintf("daemon mode requires a positive refresh interval, got %d", c.Agent.RefreshSecs))
	}
	if c.Agent.BusTimeoutSecs <= 0 {
		return errors.New(errors.ErrCodeConfigFailure,
			fmt.Sprintf("bus timeout must be positive, got %d", c.Agent.BusTimeoutSecs))
	}
	if c.Machines.MaxDepth < 0 {
		return errors.New(errors.ErrCodeConfigFailure,
			fmt.Sprintf("machine depth must not be negative, got %d", c.Machines.MaxDepth))
	}
	if c.BootBlame.Enabled && c.BootBlame.TopN <= 0 {
		return errors.New(errors.ErrCodeConfigFailure,
			fmt.Sprintf("boot blame requires a positive unit count, got %d", c.BootBlame.TopN))
	}
	return nil
}

// BusTimeout returns the per-call timeout as a duration.
func (c *Config) BusTimeout() time.Duration {
	return time.Duration(c.Agent.BusTimeoutSecs) * time.Second
}

// Refresh returns the daemon cycle interval as a duration.
func (c *Config) Refresh() time.Duration {
	return time.Duration(c.Agent.RefreshSecs) * time.Second
}
