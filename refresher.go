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
	"log/slog"
	"sync"
	"time"

	"github.com/blinklabs-io/enshrine/database"
	"github.com/blinklabs-io/enshrine/legacy"
)

// auraRefresher periodically submits refresh_aura for a set of records so
// that their aura follows the time of day without outside callers
type auraRefresher struct {
	program   *legacy.Program
	db        *database.Database
	logger    *slog.Logger
	stopCh    chan struct{}
	addresses []legacy.PublicKey
	wg        sync.WaitGroup
	interval  time.Duration
	stopOnce  sync.Once
}

func newAuraRefresher(
	program *legacy.Program,
	db *database.Database,
	logger *slog.Logger,
	interval time.Duration,
	addresses []legacy.PublicKey,
) *auraRefresher {
	return &auraRefresher{
		program:   program,
		db:        db,
		logger:    logger.With("component", "refresher"),
		interval:  interval,
		addresses: addresses,
		stopCh:    make(chan struct{}),
	}
}

func (r *auraRefresher) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.refreshAll(ctx)
			case <-r.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	r.logger.Info(
		"aura refresher started",
		"interval", r.interval.String(),
		"addresses", len(r.addresses),
	)
}

func (r *auraRefresher) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
	})
	r.wg.Wait()
}

func (r *auraRefresher) targets() ([]legacy.PublicKey, error) {
	if len(r.addresses) > 0 {
		return r.addresses, nil
	}
	records, err := r.db.GetLegacyRecords(nil)
	if err != nil {
		return nil, err
	}
	ret := make([]legacy.PublicKey, 0, len(records))
	for _, rec := range records {
		addr, err := legacy.PublicKeyFromBytes(rec.Address)
		if err != nil {
			return nil, err
		}
		ret = append(ret, addr)
	}
	return ret, nil
}

func (r *auraRefresher) refreshAll(ctx context.Context) {
	addrs, err := r.targets()
	if err != nil {
		r.logger.Error("failed to list records", "error", err)
		return
	}
	for _, addr := range addrs {
		select {
		case <-r.stopCh:
			return
		default:
		}
		res, err := r.program.RefreshAura(ctx, addr)
		if err != nil {
			var progErr *legacy.ProgramError
			if res != nil && errors.As(err, &progErr) {
				r.logger.Warn(
					"aura refresh rejected",
					"address", addr.String(),
					"error", progErr.Error(),
				)
				continue
			}
			r.logger.Error(
				"aura refresh failed",
				"address", addr.String(),
				"error", err,
			)
			continue
		}
		r.logger.Debug(
			"aura refreshed",
			"address", addr.String(),
			"logs", res.Logs,
		)
	}
}
