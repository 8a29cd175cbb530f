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

package badger_test

import (
	"testing"

	"github.com/blinklabs-io/enshrine/database/plugin/blob/badger"
	"github.com/blinklabs-io/enshrine/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobStoreInMemory(t *testing.T) {
	store, err := badger.New()
	require.NoError(t, err)
	defer store.Close()

	key := types.LegacyAccountKey([]byte{1, 2, 3})
	txn := store.NewTransaction(true)
	_, err = store.Get(txn, key)
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)
	require.NoError(t, store.Set(txn, key, []byte("account")))
	require.NoError(t, txn.Commit())

	// Finished transactions are rejected
	_, err = store.Get(txn, key)
	require.ErrorIs(t, err, types.ErrTxnFinished)
	// Committing twice is a no-op
	require.NoError(t, txn.Commit())

	readTxn := store.NewTransaction(false)
	val, err := store.Get(readTxn, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("account"), val)
	require.NoError(t, readTxn.Rollback())

	// Rolled back writes are not visible
	txn = store.NewTransaction(true)
	require.NoError(t, store.Delete(txn, key))
	require.NoError(t, txn.Rollback())
	readTxn = store.NewTransaction(false)
	_, err = store.Get(readTxn, key)
	require.NoError(t, err)
	require.NoError(t, readTxn.Rollback())
}

func TestBlobStoreTxnValidation(t *testing.T) {
	store, err := badger.New()
	require.NoError(t, err)
	defer store.Close()
	other, err := badger.New()
	require.NoError(t, err)
	defer other.Close()

	_, err = store.Get(nil, []byte("x"))
	require.ErrorIs(t, err, types.ErrNilTxn)

	foreign := other.NewTransaction(false)
	defer foreign.Rollback() //nolint:errcheck
	_, err = store.Get(foreign, []byte("x"))
	require.ErrorContains(t, err, "different store")
}

func TestBlobStoreCommitTimestamp(t *testing.T) {
	store, err := badger.New()
	require.NoError(t, err)
	defer store.Close()

	_, err = store.GetCommitTimestamp()
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)

	txn := store.NewTransaction(true)
	require.NoError(t, store.SetCommitTimestamp(1700000000123, txn))
	require.NoError(t, txn.Commit())
	ts, err := store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000123), ts)

	require.ErrorIs(t, store.SetCommitTimestamp(1, nil), types.ErrNilTxn)
}

func TestBlobStoreOnDiskWithMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	dataDir := t.TempDir()
	store, err := badger.New(
		badger.WithDataDir(dataDir),
		badger.WithPromRegistry(registry),
		badger.WithGc(true),
	)
	require.NoError(t, err)

	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("k"), []byte("v")))
	require.NoError(t, txn.Commit())

	count, err := testutil.GatherAndCount(registry, "database_blob_writes_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.NoError(t, store.Close())

	// Data survives a reopen
	store, err = badger.New(badger.WithDataDir(dataDir), badger.WithGc(false))
	require.NoError(t, err)
	defer store.Close()
	readTxn := store.NewTransaction(false)
	defer readTxn.Rollback() //nolint:errcheck
	val, err := store.Get(readTxn, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)
}
