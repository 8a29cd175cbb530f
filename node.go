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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/blinklabs-io/enshrine/api"
	"github.com/blinklabs-io/enshrine/database"
	"github.com/blinklabs-io/enshrine/event"
	"github.com/blinklabs-io/enshrine/legacy"
)

var ErrNodeStarted = errors.New("node already started")

type Node struct {
	config        Config
	eventBus      *event.EventBus
	db            *database.Database
	program       *legacy.Program
	apiServer     *api.Server
	refresher     *auraRefresher
	cancel        context.CancelFunc
	shutdownFuncs []func(context.Context) error
	mu            sync.Mutex
	shutdownOnce  sync.Once
	started       bool
}

func New(cfg Config) (*Node, error) {
	n := &Node{
		config: cfg,
	}
	if n.config.logger == nil {
		n.config.logger = NewConfig().logger
	}
	if n.config.shutdownTimeout == 0 {
		n.config.shutdownTimeout = DefaultShutdownTimeout
	}
	if err := n.configValidate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return n, nil
}

// Start opens the database and starts the configured services. It returns
// once everything is running
func (n *Node) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.started {
		return ErrNodeStarted
	}
	n.started = true
	ctx, n.cancel = context.WithCancel(ctx)
	if err := n.start(ctx); err != nil {
		return errors.Join(err, n.Stop())
	}
	return nil
}

func (n *Node) start(ctx context.Context) error {
	// Configure tracing
	if n.config.tracing {
		if err := n.setupTracing(); err != nil {
			return err
		}
	}
	// Load database
	db, err := database.New(&database.Config{
		DataDir:        n.config.dataDir,
		Logger:         n.config.logger,
		PromRegistry:   n.config.promRegistry,
		BlobPlugin:     n.config.blobPlugin,
		MetadataPlugin: n.config.metadataPlugin,
	})
	if err != nil {
		var dbErr database.CommitTimestampError
		if errors.As(err, &dbErr) {
			n.config.logger.Error(
				"database stores are out of sync, restore both from the same backup",
				"error", dbErr.Error(),
			)
		}
		return fmt.Errorf("failed to open database: %w", err)
	}
	n.db = db
	// Initialize event bus
	n.eventBus = event.NewEventBus(n.config.promRegistry, n.config.logger)
	// Initialize program
	program, err := legacy.NewProgram(legacy.ProgramConfig{
		Database:     n.db,
		EventBus:     n.eventBus,
		Clock:        n.config.clock,
		Logger:       n.config.logger,
		PromRegistry: n.config.promRegistry,
		ProgramID:    n.config.programID,
	})
	if err != nil {
		return fmt.Errorf("failed to create program: %w", err)
	}
	n.program = program
	n.config.logger.Info(
		"program ready",
		"component", "node",
		"program_id", n.program.ProgramID().String(),
		"data_dir", n.config.dataDir,
	)
	// Start API server
	if n.config.apiListenAddress != "" {
		n.apiServer = api.New(
			api.Config{
				ListenAddress:   n.config.apiListenAddress,
				ShutdownTimeout: n.config.shutdownTimeout,
			},
			n.program,
			n.config.logger,
		)
		if err := n.apiServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start API server: %w", err)
		}
	}
	// Start aura refresher
	if n.config.auraRefreshInterval > 0 {
		n.refresher = newAuraRefresher(
			n.program,
			n.db,
			n.config.logger,
			n.config.auraRefreshInterval,
			n.config.auraRefreshAddresses,
		)
		n.refresher.Start(ctx)
	}
	return nil
}

// Run starts the node and blocks until ctx is cancelled, then stops it
func (n *Node) Run(ctx context.Context) error {
	if err := n.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	n.config.logger.Info("shutdown requested", "component", "node")
	return n.Stop()
}

// Stop shuts the node down. It is safe to call more than once
func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
	})
	return err
}

func (n *Node) shutdown() error {
	ctx, cancel := context.WithTimeout(
		context.Background(),
		n.config.shutdownTimeout,
	)
	defer cancel()
	n.config.logger.Debug("starting graceful shutdown", "component", "node")
	var err error
	// Phase 1: stop accepting work
	if n.refresher != nil {
		n.refresher.Stop()
	}
	if n.apiServer != nil {
		if stopErr := n.apiServer.Stop(ctx); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("API server shutdown: %w", stopErr))
		}
	}
	if n.cancel != nil {
		n.cancel()
	}
	// Phase 2: drain events
	if n.eventBus != nil {
		n.eventBus.Stop()
	}
	// Phase 3: close storage
	if n.db != nil {
		if closeErr := n.db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("database close: %w", closeErr))
		}
	}
	// Phase 4: cleanup resources
	for _, fn := range n.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	n.shutdownFuncs = nil
	if err != nil {
		n.config.logger.Error(
			"shutdown completed with errors",
			"component", "node",
			"error", err,
		)
	} else {
		n.config.logger.Debug("graceful shutdown complete", "component", "node")
	}
	return err
}

// Program returns the running program, or nil before Start
func (n *Node) Program() *legacy.Program {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.program
}

// ApiAddr returns the bound address of the API server, or an empty string
// when the API is disabled
func (n *Node) ApiAddr() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.apiServer == nil {
		return ""
	}
	return n.apiServer.Addr()
}

// EventBus returns the node event bus, or nil before Start
func (n *Node) EventBus() *event.EventBus {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.eventBus
}

// Logger returns the configured logger
func (n *Node) Logger() *slog.Logger {
	return n.config.logger
}
