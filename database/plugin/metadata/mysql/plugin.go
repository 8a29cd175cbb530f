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

package mysql

import (
	"github.com/blinklabs-io/enshrine/database/plugin"
	"github.com/blinklabs-io/enshrine/database/plugin/metadata/internal/gormstore"
)

// The password has no default; operators must supply their own
var cmdlineOptions gormstore.ServerFlags

// Register plugin
func init() {
	cmdlineOptions.Reset(connDefaults)
	plugin.Register(
		plugin.PluginEntry{
			Type:               plugin.PluginTypeMetadata,
			Name:               "mysql",
			Description:        "MySQL relational database",
			NewFromOptionsFunc: NewFromCmdlineOptions,
			Options: cmdlineOptions.PluginOptions(
				"MySQL",
				"MYSQL",
				connDefaults,
				"MySQL TLS mode (mapped to tls= in DSN)",
			),
		},
	)
}

func NewFromCmdlineOptions(startOpts plugin.StartOptions) plugin.Plugin {
	p, err := NewWithOptions(cmdlineOptions.ConnOptions(startOpts)...)
	if err != nil {
		return plugin.NewErrorPlugin(err)
	}
	return p
}
