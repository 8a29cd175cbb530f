// Copyright 2026 Blink Labs Software
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
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"time"

	"github.com/blinklabs-io/enshrine/database/plugin"
	"github.com/blinklabs-io/enshrine/legacy"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "enshrine.config"

const (
	DefaultShutdownTimeout = "30s"
	DefaultBlobPlugin      = "badger"
	DefaultMetadataPlugin  = "sqlite"
	DefaultApiPort         = 3000
	DefaultMetricsPort     = 12798
)

// ErrPluginListRequested is returned when the user asks for the available
// plugins instead of naming one
var ErrPluginListRequested = errors.New("plugin list requested")

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type tempConfig struct {
	Config   yaml.Node                 `yaml:"config,omitempty"`
	Database *databaseConfig           `yaml:"database,omitempty"`
	Blob     map[string]map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]map[string]any `yaml:"metadata,omitempty"`
}

type databaseConfig struct {
	Blob     map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

type Config struct {
	DatabasePath         string   `yaml:"databasePath"         split_words:"true"`
	BlobPlugin           string   `yaml:"blobPlugin"           envconfig:"DATABASE_BLOB_PLUGIN"`
	MetadataPlugin       string   `yaml:"metadataPlugin"       envconfig:"DATABASE_METADATA_PLUGIN"`
	BindAddr             string   `yaml:"bindAddr"             split_words:"true"`
	ProgramId            string   `yaml:"programId"            split_words:"true"`
	KeyFile              string   `yaml:"keyFile"              split_words:"true"`
	ShutdownTimeout      string   `yaml:"shutdownTimeout"      split_words:"true"`
	AuraRefreshInterval  string   `yaml:"auraRefreshInterval"  split_words:"true"`
	AuraRefreshAddresses []string `yaml:"auraRefreshAddresses" split_words:"true"`
	ApiPort              uint     `yaml:"apiPort"              split_words:"true"`
	MetricsPort          uint     `yaml:"metricsPort"          split_words:"true"`
	Tracing              bool     `yaml:"tracing"`
	TracingStdout        bool     `yaml:"tracingStdout"        split_words:"true"`
}

// DefaultConfig returns the built-in defaults that files and environment
// variables are layered over
func DefaultConfig() *Config {
	return &Config{
		DatabasePath:    ".enshrine",
		BlobPlugin:      DefaultBlobPlugin,
		MetadataPlugin:  DefaultMetadataPlugin,
		BindAddr:        "0.0.0.0",
		ProgramId:       legacy.DefaultProgramID,
		ShutdownTimeout: DefaultShutdownTimeout,
		ApiPort:         DefaultApiPort,
		MetricsPort:     DefaultMetricsPort,
	}
}

// ShutdownTimeoutDuration parses ShutdownTimeout
func (c *Config) ShutdownTimeoutDuration() (time.Duration, error) {
	if c.ShutdownTimeout == "" {
		return time.ParseDuration(DefaultShutdownTimeout)
	}
	d, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid shutdownTimeout: %w", err)
	}
	return d, nil
}

// AuraRefreshIntervalDuration parses AuraRefreshInterval. Zero disables the
// background refresher.
func (c *Config) AuraRefreshIntervalDuration() (time.Duration, error) {
	if c.AuraRefreshInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.AuraRefreshInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid auraRefreshInterval: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid auraRefreshInterval: %s is negative", d)
	}
	return d, nil
}

// ProgramID parses ProgramId, falling back to the default program
func (c *Config) ProgramID() (legacy.PublicKey, error) {
	if c.ProgramId == "" {
		return legacy.MustPublicKey(legacy.DefaultProgramID), nil
	}
	ret, err := legacy.PublicKeyFromString(c.ProgramId)
	if err != nil {
		return ret, fmt.Errorf("invalid programId: %w", err)
	}
	return ret, nil
}

// RefreshAddresses parses AuraRefreshAddresses
func (c *Config) RefreshAddresses() ([]legacy.PublicKey, error) {
	ret := make([]legacy.PublicKey, 0, len(c.AuraRefreshAddresses))
	for _, tmpAddr := range c.AuraRefreshAddresses {
		addr, err := legacy.PublicKeyFromString(tmpAddr)
		if err != nil {
			return nil, fmt.Errorf(
				"invalid auraRefreshAddresses entry %q: %w",
				tmpAddr,
				err,
			)
		}
		ret = append(ret, addr)
	}
	return ret, nil
}

// Validate checks the fields that are parsed lazily
func (c *Config) Validate() error {
	if _, err := c.ShutdownTimeoutDuration(); err != nil {
		return err
	}
	if _, err := c.AuraRefreshIntervalDuration(); err != nil {
		return err
	}
	if _, err := c.ProgramID(); err != nil {
		return err
	}
	if _, err := c.RefreshAddresses(); err != nil {
		return err
	}
	return nil
}

// findConfigFile returns the first of ~/.enshrine/enshrine.yaml and
// /etc/enshrine/enshrine.yaml that exists
func findConfigFile() string {
	if homeDir, err := os.UserHomeDir(); err == nil {
		userPath := filepath.Join(homeDir, ".enshrine", "enshrine.yaml")
		if _, err := os.Stat(userPath); err == nil {
			return userPath
		}
	}
	systemPath := "/etc/enshrine/enshrine.yaml"
	if _, err := os.Stat(systemPath); err == nil {
		return systemPath
	}
	return ""
}

// LoadConfig builds the config from the defaults, the config file and the
// environment, in that order. Plugin sections in the file and ENSHRINE_*
// plugin variables are applied to the plugin registry.
func LoadConfig(configFile string) (*Config, error) {
	cfg := DefaultConfig()
	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		if err := loadConfigFile(cfg, configFile); err != nil {
			return nil, err
		}
	}
	if err := envconfig.Process("enshrine", cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	if err := plugin.ProcessEnvVars(); err != nil {
		return nil, fmt.Errorf(
			"error processing plugin environment variables: %w",
			err,
		)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadConfigFile(cfg *Config, configFile string) error {
	buf, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	// First unmarshal into temp config to handle plugin sections
	var tempCfg tempConfig
	if err := yaml.Unmarshal(buf, &tempCfg); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}
	if tempCfg.Config.Kind != 0 {
		// Decode the section straight onto the defaults so that keys it
		// omits keep their default values
		if err := tempCfg.Config.Decode(cfg); err != nil {
			return fmt.Errorf("error parsing config section: %w", err)
		}
	} else if err := yaml.Unmarshal(buf, cfg); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}
	pluginConfig := make(map[string]map[string]map[string]any)
	if tempCfg.Blob != nil {
		pluginConfig["blob"] = tempCfg.Blob
	}
	if tempCfg.Metadata != nil {
		pluginConfig["metadata"] = tempCfg.Metadata
	}
	if tempCfg.Database != nil {
		if tempCfg.Database.Blob != nil {
			mergePluginSection(
				pluginConfig,
				"blob",
				tempCfg.Database.Blob,
				&cfg.BlobPlugin,
			)
		}
		if tempCfg.Database.Metadata != nil {
			mergePluginSection(
				pluginConfig,
				"metadata",
				tempCfg.Database.Metadata,
				&cfg.MetadataPlugin,
			)
		}
	}
	if len(pluginConfig) > 0 {
		if err := plugin.ProcessConfig(pluginConfig); err != nil {
			return fmt.Errorf("error processing plugin config: %w", err)
		}
	}
	return nil
}

// mergePluginSection handles a database.blob or database.metadata section.
// The "plugin" key selects the plugin and every map-valued key holds the
// options for the plugin of that name.
func mergePluginSection(
	pluginConfig map[string]map[string]map[string]any,
	pluginType string,
	section map[string]any,
	pluginName *string,
) {
	if pluginVal, ok := section["plugin"].(string); ok {
		*pluginName = pluginVal
	}
	sectionConfig := make(map[string]map[string]any)
	for k, v := range section {
		if k == "plugin" {
			continue
		}
		switch val := v.(type) {
		case map[string]any:
			sectionConfig[k] = val
		case map[any]any:
			stringAnyMap := make(map[string]any)
			for vk, vv := range val {
				if keyStr, ok := vk.(string); ok {
					stringAnyMap[keyStr] = vv
				}
			}
			sectionConfig[k] = stringAnyMap
		default:
			fmt.Fprintf(
				os.Stderr,
				"warning: skipping %s config entry %q: expected map, got %T\n",
				pluginType,
				k,
				v,
			)
		}
	}
	if pluginConfig[pluginType] == nil {
		pluginConfig[pluginType] = sectionConfig
		return
	}
	maps.Copy(pluginConfig[pluginType], sectionConfig)
}
