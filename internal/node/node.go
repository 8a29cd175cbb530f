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

package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	_ "net/http/pprof" // #nosec G108
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/blinklabs-io/enshrine"
	"github.com/blinklabs-io/enshrine/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Run(cfg *config.Config, logger *slog.Logger) error {
	logger.Debug(fmt.Sprintf("config: %+v", cfg), "component", "node")
	shutdownTimeout, err := cfg.ShutdownTimeoutDuration()
	if err != nil {
		return err
	}
	refreshInterval, err := cfg.AuraRefreshIntervalDuration()
	if err != nil {
		return err
	}
	refreshAddresses, err := cfg.RefreshAddresses()
	if err != nil {
		return err
	}
	programID, err := cfg.ProgramID()
	if err != nil {
		return err
	}
	opts := []enshrine.ConfigOptionFunc{
		enshrine.WithLogger(logger),
		enshrine.WithDatabasePath(cfg.DatabasePath),
		enshrine.WithBlobPlugin(cfg.BlobPlugin),
		enshrine.WithMetadataPlugin(cfg.MetadataPlugin),
		enshrine.WithProgramID(programID),
		enshrine.WithShutdownTimeout(shutdownTimeout),
		// Enable metrics with default prometheus registry
		enshrine.WithPrometheusRegistry(prometheus.DefaultRegisterer),
		enshrine.WithTracing(cfg.Tracing),
		enshrine.WithTracingStdout(cfg.TracingStdout),
		enshrine.WithAuraRefreshInterval(refreshInterval),
		enshrine.WithAuraRefreshAddresses(refreshAddresses...),
	}
	if cfg.ApiPort > 0 {
		opts = append(
			opts,
			enshrine.WithApiListenAddress(
				listenAddress(cfg.BindAddr, cfg.ApiPort),
			),
		)
	}
	n, err := enshrine.New(enshrine.NewConfig(opts...))
	if err != nil {
		return err
	}

	// Wait for interrupt/termination signal
	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()

	// Metrics and debug listener
	var metricsServer *http.Server
	errChan := make(chan error, 2)
	if cfg.MetricsPort > 0 {
		http.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:              listenAddress(cfg.BindAddr, cfg.MetricsPort),
			ReadHeaderTimeout: 60 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		}
		logger.Info(
			"serving prometheus metrics on "+metricsServer.Addr,
			"component", "node",
		)
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil &&
				!errors.Is(err, http.ErrServerClosed) {
				errChan <- fmt.Errorf("metrics listener: %w", err)
			}
		}()
	}

	// Run node in goroutine
	go func() {
		errChan <- n.Run(signalCtx)
	}()

	var runErr error
	select {
	case <-signalCtx.Done():
		logger.Info("signal received, initiating graceful shutdown")
		runErr = <-errChan
	case runErr = <-errChan:
		if runErr != nil {
			logger.Error("node error", "error", runErr)
		}
		signalCtxStop()
		if stopErr := n.Stop(); stopErr != nil {
			runErr = errors.Join(runErr, stopErr)
		}
	}
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			shutdownTimeout,
		)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", "error", err)
		}
	}
	if runErr != nil {
		logger.Error("shutdown errors occurred", "error", runErr)
		return runErr
	}
	logger.Info("shutdown complete")
	return nil
}

func listenAddress(bindAddr string, port uint) string {
	return net.JoinHostPort(bindAddr, strconv.FormatUint(uint64(port), 10))
}
