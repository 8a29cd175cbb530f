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

package enshrine

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/enshrine/legacy"
	"github.com/prometheus/client_golang/prometheus"
)

const DefaultShutdownTimeout = 30 * time.Second

type Config struct {
	promRegistry         prometheus.Registerer
	logger               *slog.Logger
	clock                legacy.Clock
	dataDir              string
	blobPlugin           string
	metadataPlugin       string
	apiListenAddress     string
	auraRefreshAddresses []legacy.PublicKey
	shutdownTimeout      time.Duration
	auraRefreshInterval  time.Duration
	programID            legacy.PublicKey
	tracing              bool
	tracingStdout        bool
}

func (n *Node) configValidate() error {
	if n.config.shutdownTimeout < 0 {
		return errors.New("shutdown timeout must not be negative")
	}
	if n.config.auraRefreshInterval < 0 {
		return errors.New("aura refresh interval must not be negative")
	}
	if n.config.auraRefreshInterval == 0 &&
		len(n.config.auraRefreshAddresses) > 0 {
		return errors.New(
			"aura refresh addresses given without a refresh interval",
		)
	}
	return nil
}

// ConfigOptionFunc is a type that represents functions that modify the node config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new node config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger:          slog.New(slog.NewJSONHandler(io.Discard, nil)),
		shutdownTimeout: DefaultShutdownTimeout,
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithDatabasePath specifies the persistent data directory to use. An empty
// path keeps all data in memory
func WithDatabasePath(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithBlobPlugin selects the blob store plugin holding the record accounts
func WithBlobPlugin(plugin string) ConfigOptionFunc {
	return func(c *Config) {
		c.blobPlugin = plugin
	}
}

// WithMetadataPlugin selects the metadata store plugin holding the record
// index and the journal
func WithMetadataPlugin(plugin string) ConfigOptionFunc {
	return func(c *Config) {
		c.metadataPlugin = plugin
	}
}

// WithLogger specifies the logger to use. This defaults to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithPrometheusRegistry specifies a prometheus.Registerer instance to add metrics to. In most cases, prometheus.DefaultRegistry would be
// a good choice to get metrics working
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithTracing enables tracing. By default, spans are submitted to a HTTP(s) endpoint using OTLP. This can be configured
// using the OTEL_EXPORTER_OTLP_* env vars documented in the README for [go.opentelemetry.io/otel/exporters/otlp/otlptrace]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables tracing output to stdout. This also requires tracing to enabled separately. This is mostly useful for debugging
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

// WithShutdownTimeout bounds the time spent stopping the node
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}

// WithApiListenAddress enables the REST API on the given address
func WithApiListenAddress(addr string) ConfigOptionFunc {
	return func(c *Config) {
		c.apiListenAddress = addr
	}
}

// WithProgramID overrides the program identity used for address derivation
func WithProgramID(programID legacy.PublicKey) ConfigOptionFunc {
	return func(c *Config) {
		c.programID = programID
	}
}

// WithClock overrides the wall clock used by the program
func WithClock(clock legacy.Clock) ConfigOptionFunc {
	return func(c *Config) {
		c.clock = clock
	}
}

// WithAuraRefreshInterval enables the background aura refresher
func WithAuraRefreshInterval(interval time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.auraRefreshInterval = interval
	}
}

// WithAuraRefreshAddresses limits the background refresher to the given
// records. With no addresses every known record is refreshed
func WithAuraRefreshAddresses(addrs ...legacy.PublicKey) ConfigOptionFunc {
	return func(c *Config) {
		c.auraRefreshAddresses = addrs
	}
}
