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

import "github.com/blinklabs-io/enshrine/database/plugin/metadata/internal/gormstore"

// Connection options accepted by NewWithOptions
var (
	WithLogger       = gormstore.WithLogger
	WithPromRegistry = gormstore.WithPromRegistry
	WithHost         = gormstore.WithHost
	WithPort         = gormstore.WithPort
	WithUser         = gormstore.WithUser
	WithPassword     = gormstore.WithPassword
	WithDatabase     = gormstore.WithDatabase
	WithSSLMode      = gormstore.WithSSLMode
	WithTimeZone     = gormstore.WithTimeZone
	WithDSN          = gormstore.WithDSN
)
