// Copyright 2025 Blink Labs Software
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

// Package objectstore implements the blob store contract on top of object
// storage services that have no transactions of their own. Writes are
// buffered in the transaction and flushed on commit, with the commit
// timestamp written last.
package objectstore

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/enshrine/database/sops"
	"github.com/blinklabs-io/enshrine/database/types"
	"github.com/prometheus/client_golang/prometheus"
)

const DefaultTimeout = 60 * time.Second

// Backend is a plain object store. GetObject returns
// types.ErrBlobKeyNotFound for missing keys and DeleteObject treats a
// missing key as success.
type Backend interface {
	GetObject(ctx context.Context, key string) ([]byte, error)
	PutObject(ctx context.Context, key string, data []byte) error
	DeleteObject(ctx context.Context, key string) error
}

type Store struct {
	backend Backend
	logger  *slog.Logger
	metrics *storeMetrics
	timeout time.Duration
	encrypt bool
}

type Option func(*Store)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithTimeout bounds each backend call
func WithTimeout(timeout time.Duration) Option {
	return func(s *Store) {
		s.timeout = timeout
	}
}

// WithEncryption stores every value as a SOPS document
func WithEncryption(encrypt bool) Option {
	return func(s *Store) {
		s.encrypt = encrypt
	}
}

// WithPromRegistry registers read/write counters under the given prefix
func WithPromRegistry(registry prometheus.Registerer, prefix string) Option {
	return func(s *Store) {
		if registry != nil {
			s.metrics = newStoreMetrics(registry, prefix)
		}
	}
}

func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return s
}

func (s *Store) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// NewTransaction starts a buffered transaction
func (s *Store) NewTransaction(readWrite bool) types.Txn {
	return &txn{
		store:     s,
		readWrite: readWrite,
		pending:   make(map[string]pendingWrite),
	}
}

func (s *Store) available() bool {
	return s != nil && s.backend != nil
}

func (s *Store) validateTxn(t types.Txn) (*txn, error) {
	if !s.available() {
		return nil, types.ErrBlobStoreUnavailable
	}
	if t == nil {
		return nil, types.ErrNilTxn
	}
	ret, ok := t.(*txn)
	if !ok || ret.store != s {
		return nil, types.ErrTxnWrongType
	}
	if ret.finished {
		return nil, types.ErrTxnFinished
	}
	return ret, nil
}

// Get returns the value for key, seeing writes buffered in the same
// transaction
func (s *Store) Get(t types.Txn, key []byte) ([]byte, error) {
	tx, err := s.validateTxn(t)
	if err != nil {
		return nil, err
	}
	if pw, ok := tx.pending[string(key)]; ok {
		if pw.deleted {
			return nil, types.ErrBlobKeyNotFound
		}
		return append([]byte(nil), pw.data...), nil
	}
	return s.fetch(string(key))
}

func (s *Store) fetch(key string) ([]byte, error) {
	ctx, cancel := s.opContext()
	defer cancel()
	s.metrics.read()
	data, err := s.backend.GetObject(ctx, key)
	if err != nil {
		if !errors.Is(err, types.ErrBlobKeyNotFound) {
			s.logger.Error(
				"object store read failed",
				"component", "database",
				"key", key,
				"error", err,
			)
		}
		return nil, err
	}
	if !s.encrypt {
		return data, nil
	}
	return sops.Decrypt(data)
}

// Set buffers a write until commit
func (s *Store) Set(t types.Txn, key, val []byte) error {
	tx, err := s.validateTxn(t)
	if err != nil {
		return err
	}
	return tx.buffer(string(key), pendingWrite{data: append([]byte(nil), val...)})
}

// Delete buffers a delete until commit
func (s *Store) Delete(t types.Txn, key []byte) error {
	tx, err := s.validateTxn(t)
	if err != nil {
		return err
	}
	return tx.buffer(string(key), pendingWrite{deleted: true})
}

func (s *Store) flush(key string, pw pendingWrite) error {
	ctx, cancel := s.opContext()
	defer cancel()
	s.metrics.write()
	if pw.deleted {
		return s.backend.DeleteObject(ctx, key)
	}
	data := pw.data
	if s.encrypt {
		var err error
		data, err = sops.Encrypt(data)
		if err != nil {
			return err
		}
	}
	return s.backend.PutObject(ctx, key, data)
}

// GetCommitTimestamp returns the timestamp of the last committed write
func (s *Store) GetCommitTimestamp() (int64, error) {
	if !s.available() {
		return 0, types.ErrBlobStoreUnavailable
	}
	val, err := s.fetch(types.CommitTimestampBlobKey)
	if err != nil {
		return 0, err
	}
	return types.DecodeCommitTimestamp(val), nil
}

func (s *Store) SetCommitTimestamp(timestamp int64, t types.Txn) error {
	if t == nil {
		return types.ErrNilTxn
	}
	return s.Set(
		t,
		[]byte(types.CommitTimestampBlobKey),
		types.EncodeCommitTimestamp(timestamp),
	)
}
