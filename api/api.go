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

// Package api serves the legacy records and accepts signed instructions
// over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

const DefaultListenAddress = ":3000"

type Config struct {
	ListenAddress string
	// ShutdownTimeout bounds the shutdown triggered by context cancellation
	ShutdownTimeout time.Duration
}

// Server is the REST API server
type Server struct {
	config     Config
	logger     *slog.Logger
	program    LegacyProgram
	httpServer *http.Server
	mu         sync.Mutex
}

func New(
	cfg Config,
	program LegacyProgram,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.New(
			slog.NewJSONHandler(io.Discard, nil),
		)
	}
	logger = logger.With("component", "api")
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	return &Server{
		config:  cfg,
		logger:  logger,
		program: program,
	}
}

// Handler returns the routes of the API
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/v0/program", s.handleProgram)
	mux.HandleFunc("GET /api/v0/legacy/{address}", s.handleRecord)
	mux.HandleFunc(
		"GET /api/v0/legacy/{address}/narrative",
		s.handleNarrative,
	)
	mux.HandleFunc(
		"GET /api/v0/legacy/{address}/journal",
		s.handleJournal,
	)
	mux.HandleFunc(
		"GET /api/v0/authority/{authority}/address",
		s.handleAuthorityAddress,
	)
	mux.HandleFunc("POST /api/v0/instructions", s.handleSubmitInstruction)
	return mux
}

// Start binds the listener and serves in a background goroutine
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.httpServer != nil {
		s.mu.Unlock()
		return errors.New("server already started")
	}
	server := &http.Server{
		Addr:              s.config.ListenAddress,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 60 * time.Second,
	}
	s.httpServer = server
	s.mu.Unlock()

	if err := s.startServer(server); err != nil {
		s.mu.Lock()
		s.httpServer = nil
		s.mu.Unlock()
		return err
	}

	s.logger.Info(
		"API listener started on " + s.config.ListenAddress,
	)

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		srv := s.httpServer
		s.httpServer = nil
		s.mu.Unlock()
		if srv == nil {
			return
		}
		s.logger.Debug("context cancelled, shutting down API server")
		//nolint:contextcheck
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			s.config.ShutdownTimeout,
		)
		defer cancel()
		//nolint:contextcheck
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(
				"failed to shutdown API server on context cancellation",
				"error", err,
			)
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.httpServer = nil
	s.mu.Unlock()

	if srv != nil {
		s.logger.Debug("shutting down API server")
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown API server: %w", err)
		}
	}
	return nil
}

// Addr returns the bound listen address while the server is running
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.httpServer == nil {
		return ""
	}
	return s.httpServer.Addr
}

// startServer binds the socket first so port conflicts are reported to the
// caller, then serves in a background goroutine
func (s *Server) startServer(server *http.Server) error {
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen for API server: %w", err)
	}
	server.Addr = ln.Addr().String()
	go func() {
		if err := server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()
	return nil
}
