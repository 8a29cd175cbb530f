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

package sqlite

import (
	"sync"

	"github.com/blinklabs-io/enshrine/database/plugin"
)

var (
	cmdlineOptions struct {
		cacheSize int
	}
	cmdlineOptionsMutex sync.RWMutex
)

// initCmdlineOptions sets default values for cmdlineOptions
func initCmdlineOptions() {
	cmdlineOptionsMutex.Lock()
	defer cmdlineOptionsMutex.Unlock()
	cmdlineOptions.cacheSize = DefaultCacheSize
}

// Register plugin
func init() {
	initCmdlineOptions()
	plugin.Register(
		plugin.PluginEntry{
			Type:               plugin.PluginTypeMetadata,
			Name:               "sqlite",
			Description:        "SQLite relational database",
			NewFromOptionsFunc: NewFromCmdlineOptions,
			Options: []plugin.PluginOption{
				{
					Name:         "cache-size",
					Type:         plugin.PluginOptionTypeInt,
					Description:  "SQLite page cache size in KiB",
					DefaultValue: DefaultCacheSize,
					Dest:         &(cmdlineOptions.cacheSize),
				},
			},
		},
	)
}

func NewFromCmdlineOptions(startOpts plugin.StartOptions) plugin.Plugin {
	cmdlineOptionsMutex.RLock()
	cacheSize := cmdlineOptions.cacheSize
	cmdlineOptionsMutex.RUnlock()

	p, err := NewWithOptions(
		WithDataDir(startOpts.DataDir),
		WithLogger(startOpts.Logger),
		WithPromRegistry(startOpts.PromRegistry),
		WithCacheSize(cacheSize),
	)
	if err != nil {
		if p != nil {
			_ = p.Close()
		}
		// Return a plugin that defers the error to Start()
		return plugin.NewErrorPlugin(err)
	}
	return p
}
