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

package badger

import (
	"sync"

	"github.com/blinklabs-io/enshrine/database/plugin"
)

type pluginFlags struct {
	blockCacheSize   uint64
	indexCacheSize   uint64
	valueLogFileSize uint64
	gcEnabled        bool
}

var (
	cmdlineOptions      pluginFlags
	cmdlineOptionsMutex sync.RWMutex
)

func defaultPluginFlags() pluginFlags {
	return pluginFlags{
		blockCacheSize:   DefaultBlockCacheSize,
		indexCacheSize:   DefaultIndexCacheSize,
		valueLogFileSize: DefaultValueLogFileSize,
		gcEnabled:        true,
	}
}

func init() {
	cmdlineOptions = defaultPluginFlags()
	defaults := defaultPluginFlags()
	plugin.Register(
		plugin.PluginEntry{
			Type:               plugin.PluginTypeBlob,
			Name:               "badger",
			Description:        "BadgerDB local key-value store",
			NewFromOptionsFunc: NewFromCmdlineOptions,
			Options: []plugin.PluginOption{
				{
					Name:         "block-cache-size",
					Type:         plugin.PluginOptionTypeUint,
					Description:  "Badger block cache size in bytes",
					DefaultValue: defaults.blockCacheSize,
					Dest:         &(cmdlineOptions.blockCacheSize),
				},
				{
					Name:         "index-cache-size",
					Type:         plugin.PluginOptionTypeUint,
					Description:  "Badger index cache size in bytes",
					DefaultValue: defaults.indexCacheSize,
					Dest:         &(cmdlineOptions.indexCacheSize),
				},
				{
					Name:         "value-log-file-size",
					Type:         plugin.PluginOptionTypeUint,
					Description:  "Badger value log file size in bytes",
					DefaultValue: defaults.valueLogFileSize,
					Dest:         &(cmdlineOptions.valueLogFileSize),
				},
				{
					Name:         "gc",
					Type:         plugin.PluginOptionTypeBool,
					Description:  "Run value log garbage collection periodically",
					DefaultValue: defaults.gcEnabled,
					Dest:         &(cmdlineOptions.gcEnabled),
				},
			},
		},
	)
}

// options converts the flag values into store options
func (f pluginFlags) options(startOpts plugin.StartOptions) []BlobStoreBadgerOptionFunc {
	return []BlobStoreBadgerOptionFunc{
		WithDataDir(startOpts.DataDir),
		WithLogger(startOpts.Logger),
		WithPromRegistry(startOpts.PromRegistry),
		WithBlockCacheSize(f.blockCacheSize),
		WithIndexCacheSize(f.indexCacheSize),
		WithValueLogFileSize(int64(f.valueLogFileSize)), // #nosec G115
		WithGc(f.gcEnabled),
	}
}

func NewFromCmdlineOptions(startOpts plugin.StartOptions) plugin.Plugin {
	cmdlineOptionsMutex.RLock()
	flags := cmdlineOptions
	cmdlineOptionsMutex.RUnlock()
	p, err := New(flags.options(startOpts)...)
	if err != nil {
		return plugin.NewErrorPlugin(err)
	}
	return p
}
