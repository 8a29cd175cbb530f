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

package gormstore

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/blinklabs-io/enshrine/database/plugin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// Conn describes how to reach a networked SQL server. An explicit DSN
// takes precedence over the individual fields.
type Conn struct {
	PromRegistry prometheus.Registerer
	Logger       *slog.Logger
	Host         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	TimeZone     string
	DSN          string
	Port         uint
}

type ConnOption func(*Conn)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) ConnOption {
	return func(c *Conn) {
		c.Logger = logger
	}
}

// WithPromRegistry specifies the prometheus registry to use for metrics
func WithPromRegistry(registry prometheus.Registerer) ConnOption {
	return func(c *Conn) {
		c.PromRegistry = registry
	}
}

func WithHost(host string) ConnOption {
	return func(c *Conn) {
		c.Host = host
	}
}

func WithPort(port uint) ConnOption {
	return func(c *Conn) {
		c.Port = port
	}
}

func WithUser(user string) ConnOption {
	return func(c *Conn) {
		c.User = user
	}
}

func WithPassword(password string) ConnOption {
	return func(c *Conn) {
		c.Password = password
	}
}

func WithDatabase(database string) ConnOption {
	return func(c *Conn) {
		c.Database = database
	}
}

// WithSSLMode sets the server's TLS mode, in the dialect's own vocabulary
func WithSSLMode(sslMode string) ConnOption {
	return func(c *Conn) {
		c.SSLMode = sslMode
	}
}

func WithTimeZone(timeZone string) ConnOption {
	return func(c *Conn) {
		c.TimeZone = timeZone
	}
}

// WithDSN sets a full connection string, overriding the other fields
func WithDSN(dsn string) ConnOption {
	return func(c *Conn) {
		c.DSN = dsn
	}
}

// NewConn applies opts and then fills any field left empty from defaults
func NewConn(defaults Conn, opts ...ConnOption) *Conn {
	c := &Conn{}
	for _, opt := range opts {
		opt(c)
	}
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&c.Host, defaults.Host)
	fill(&c.User, defaults.User)
	fill(&c.Database, defaults.Database)
	fill(&c.SSLMode, defaults.SSLMode)
	fill(&c.TimeZone, defaults.TimeZone)
	if c.Port == 0 {
		c.Port = defaults.Port
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return c
}

// GormConfig is the gorm configuration every server dialect opens with
func GormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	}
}

// Attach wraps an opened server connection: it sizes the pool, installs
// tracing and pool metrics, and migrates the schema.
func Attach(db *gorm.DB, conn *Conn, dialect string) (*Store, error) {
	conn.Logger.Info(
		"connected to "+dialect+" metadata store",
		"component", "database",
		"host", conn.Host,
		"port", conn.Port,
		"database", conn.Database,
	)
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}
	if conn.PromRegistry != nil {
		if err := conn.PromRegistry.Register(
			collectors.NewDBStatsCollector(sqlDB, "metadata"),
		); err != nil {
			return nil, err
		}
	}
	store := New(db)
	if err := store.Migrate(conn.Logger); err != nil {
		return nil, err
	}
	return store, nil
}

// Close releases the underlying connection pool. It is safe on a nil Store.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

// ServerFlags holds the command line values of a networked metadata plugin
type ServerFlags struct {
	mu       sync.RWMutex
	host     string
	user     string
	password string
	database string
	sslMode  string
	timeZone string
	dsn      string
	port     uint64
}

// Reset restores the registered defaults
func (f *ServerFlags) Reset(defaults Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.host = defaults.Host
	f.port = uint64(defaults.Port)
	f.user = defaults.User
	f.password = ""
	f.database = defaults.Database
	f.sslMode = defaults.SSLMode
	f.timeZone = defaults.TimeZone
	f.dsn = ""
}

// ConnOptions snapshots the current values for NewConn
func (f *ServerFlags) ConnOptions(startOpts plugin.StartOptions) []ConnOption {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return []ConnOption{
		WithHost(f.host),
		WithPort(uint(f.port)),
		WithUser(f.user),
		WithPassword(f.password),
		WithDatabase(f.database),
		WithSSLMode(f.sslMode),
		WithTimeZone(f.timeZone),
		WithDSN(f.dsn),
		WithLogger(startOpts.Logger),
		WithPromRegistry(startOpts.PromRegistry),
	}
}

// PluginOptions describes the flags for product. When envPrefix is set,
// each option also reads <envPrefix>_<NAME> from the environment.
func (f *ServerFlags) PluginOptions(
	product string,
	envPrefix string,
	defaults Conn,
	sslModeDesc string,
) []plugin.PluginOption {
	env := func(name string) string {
		if envPrefix == "" {
			return ""
		}
		return envPrefix + "_" + name
	}
	return []plugin.PluginOption{
		{
			Name:         "host",
			Type:         plugin.PluginOptionTypeString,
			Description:  product + " host",
			DefaultValue: defaults.Host,
			CustomEnvVar: env("HOST"),
			Dest:         &(f.host),
		},
		{
			Name:         "port",
			Type:         plugin.PluginOptionTypeUint,
			Description:  product + " port",
			DefaultValue: uint64(defaults.Port),
			CustomEnvVar: env("PORT"),
			Dest:         &(f.port),
		},
		{
			Name:         "user",
			Type:         plugin.PluginOptionTypeString,
			Description:  product + " user",
			DefaultValue: defaults.User,
			CustomEnvVar: env("USER"),
			Dest:         &(f.user),
		},
		{
			Name:         "password",
			Type:         plugin.PluginOptionTypeString,
			Description:  product + " password (required)",
			DefaultValue: "",
			CustomEnvVar: env("PASSWORD"),
			Dest:         &(f.password),
		},
		{
			Name:         "database",
			Type:         plugin.PluginOptionTypeString,
			Description:  product + " database name",
			DefaultValue: defaults.Database,
			CustomEnvVar: env("DATABASE"),
			Dest:         &(f.database),
		},
		{
			Name:         "ssl-mode",
			Type:         plugin.PluginOptionTypeString,
			Description:  sslModeDesc,
			DefaultValue: defaults.SSLMode,
			CustomEnvVar: env("SSLMODE"),
			Dest:         &(f.sslMode),
		},
		{
			Name:         "timezone",
			Type:         plugin.PluginOptionTypeString,
			Description:  product + " time zone",
			DefaultValue: defaults.TimeZone,
			CustomEnvVar: env("TIMEZONE"),
			Dest:         &(f.timeZone),
		},
		{
			Name:         "dsn",
			Type:         plugin.PluginOptionTypeString,
			Description:  "Full " + product + " DSN (overrides other options when set)",
			DefaultValue: "",
			CustomEnvVar: env("DSN"),
			Dest:         &(f.dsn),
		},
	}
}
