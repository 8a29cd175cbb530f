// Copyright 2025 Blink Labs Software
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

package plugin

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

type PluginType int

const (
	PluginTypeBlob PluginType = iota + 1
	PluginTypeMetadata
)

func PluginTypeName(pluginType PluginType) string {
	switch pluginType {
	case PluginTypeBlob:
		return "blob"
	case PluginTypeMetadata:
		return "metadata"
	default:
		return "unknown"
	}
}

type PluginOptionType int

const (
	PluginOptionTypeString PluginOptionType = iota + 1
	PluginOptionTypeBool
	PluginOptionTypeInt
	PluginOptionTypeUint
)

type PluginOption struct {
	DefaultValue any
	Dest         any
	Name         string
	Description  string
	// CustomEnvVar is an additional environment variable consulted when the
	// generated ENSHRINE_* variable is not set
	CustomEnvVar string
	Type         PluginOptionType
}

type PluginEntry struct {
	NewFromOptionsFunc func(StartOptions) Plugin
	Name               string
	Description        string
	Options            []PluginOption
	Type               PluginType
}

var pluginEntries []PluginEntry

// Register adds a plugin entry to the registry
func Register(pluginEntry PluginEntry) {
	pluginEntries = append(pluginEntries, pluginEntry)
}

// GetPlugins returns all registered entries of the given type
func GetPlugins(pluginType PluginType) []PluginEntry {
	ret := []PluginEntry{}
	for _, p := range pluginEntries {
		if p.Type == pluginType {
			ret = append(ret, p)
		}
	}
	return ret
}

// GetPlugin instantiates the named plugin, or returns nil if there is no such
// plugin
func GetPlugin(
	pluginType PluginType,
	pluginName string,
	opts StartOptions,
) Plugin {
	for _, p := range pluginEntries {
		if p.Type == pluginType && p.Name == pluginName {
			return p.NewFromOptionsFunc(opts)
		}
	}
	return nil
}

func optionFlagName(p PluginEntry, opt PluginOption) string {
	return fmt.Sprintf(
		"%s-%s-%s",
		PluginTypeName(p.Type),
		p.Name,
		opt.Name,
	)
}

func optionEnvName(p PluginEntry, opt PluginOption) string {
	return strings.ToUpper(
		strings.ReplaceAll(
			"ENSHRINE_"+optionFlagName(p, opt),
			"-",
			"_",
		),
	)
}

// PopulateCmdlineOptions adds a flag for each plugin option to the flag set
func PopulateCmdlineOptions(fs *pflag.FlagSet) error {
	for _, p := range pluginEntries {
		for _, opt := range p.Options {
			flagName := optionFlagName(p, opt)
			switch opt.Type {
			case PluginOptionTypeString:
				dest, ok := opt.Dest.(*string)
				if !ok {
					return fmt.Errorf("invalid destination for flag %s", flagName)
				}
				def, _ := opt.DefaultValue.(string)
				fs.StringVar(dest, flagName, def, opt.Description)
			case PluginOptionTypeBool:
				dest, ok := opt.Dest.(*bool)
				if !ok {
					return fmt.Errorf("invalid destination for flag %s", flagName)
				}
				def, _ := opt.DefaultValue.(bool)
				fs.BoolVar(dest, flagName, def, opt.Description)
			case PluginOptionTypeInt:
				dest, ok := opt.Dest.(*int)
				if !ok {
					return fmt.Errorf("invalid destination for flag %s", flagName)
				}
				def, _ := opt.DefaultValue.(int)
				fs.IntVar(dest, flagName, def, opt.Description)
			case PluginOptionTypeUint:
				dest, ok := opt.Dest.(*uint64)
				if !ok {
					return fmt.Errorf("invalid destination for flag %s", flagName)
				}
				def, _ := opt.DefaultValue.(uint64)
				fs.Uint64Var(dest, flagName, def, opt.Description)
			default:
				return fmt.Errorf("unknown plugin option type %d", opt.Type)
			}
		}
	}
	return nil
}

// ProcessEnvVars applies ENSHRINE_<TYPE>_<PLUGIN>_<OPTION> environment
// variables, or an option's custom variable, to plugin options
func ProcessEnvVars() error {
	for _, p := range pluginEntries {
		for _, opt := range p.Options {
			envName := optionEnvName(p, opt)
			envVal, ok := os.LookupEnv(envName)
			if !ok && opt.CustomEnvVar != "" {
				envName = opt.CustomEnvVar
				envVal, ok = os.LookupEnv(envName)
			}
			if !ok {
				continue
			}
			var value any
			var err error
			switch opt.Type {
			case PluginOptionTypeString:
				value = envVal
			case PluginOptionTypeBool:
				value, err = strconv.ParseBool(envVal)
			case PluginOptionTypeInt:
				value, err = strconv.Atoi(envVal)
			case PluginOptionTypeUint:
				value, err = strconv.ParseUint(envVal, 10, 64)
			}
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", envName, err)
			}
			if err := SetPluginOption(p.Type, p.Name, opt.Name, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// ProcessConfig applies plugin options from the config file. The map is
// keyed by plugin type name, then plugin name, then option name.
func ProcessConfig(pluginConfig map[string]map[string]map[string]any) error {
	for typeName, plugins := range pluginConfig {
		var pluginType PluginType
		switch typeName {
		case "blob":
			pluginType = PluginTypeBlob
		case "metadata":
			pluginType = PluginTypeMetadata
		default:
			return fmt.Errorf("unknown plugin type: %s", typeName)
		}
		for pluginName, options := range plugins {
			for optionName, value := range options {
				if err := SetPluginOption(pluginType, pluginName, optionName, value); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
