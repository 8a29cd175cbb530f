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

package postgres

import (
	"strconv"
	"strings"

	"github.com/blinklabs-io/enshrine/database/plugin/metadata/internal/gormstore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var connDefaults = gormstore.Conn{
	Host:     "localhost",
	Port:     5432,
	User:     "postgres",
	Database: "enshrine",
	SSLMode:  "disable",
	TimeZone: "UTC",
}

// MetadataStorePostgres stores metadata in Postgres.
type MetadataStorePostgres struct {
	*gormstore.Store
	conn *gormstore.Conn
}

// NewWithOptions creates a new database with options. The connection is
// opened by Start.
func NewWithOptions(opts ...gormstore.ConnOption) (*MetadataStorePostgres, error) {
	return &MetadataStorePostgres{
		conn: gormstore.NewConn(connDefaults, opts...),
	}, nil
}

// connString renders libpq key/value parameters unless a DSN was given
func (d *MetadataStorePostgres) connString() string {
	c := d.conn
	if dsn := strings.TrimSpace(c.DSN); dsn != "" {
		return dsn
	}
	var sb strings.Builder
	for _, kv := range [][2]string{
		{"host", c.Host},
		{"user", c.User},
		{"password", c.Password},
		{"dbname", c.Database},
		{"port", strconv.FormatUint(uint64(c.Port), 10)},
		{"sslmode", c.SSLMode},
		{"TimeZone", c.TimeZone},
	} {
		if kv[0] == "TimeZone" && kv[1] == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(kv[0] + "=" + kv[1])
	}
	return sb.String()
}

// Start implements the plugin.Plugin interface
func (d *MetadataStorePostgres) Start() error {
	db, err := gorm.Open(postgres.Open(d.connString()), gormstore.GormConfig())
	if err != nil {
		return err
	}
	store, err := gormstore.Attach(db, d.conn, "postgres")
	if err != nil {
		_ = gormstore.New(db).Close()
		return err
	}
	d.Store = store
	return nil
}

// Stop implements the plugin.Plugin interface
func (d *MetadataStorePostgres) Stop() error {
	return d.Close()
}
