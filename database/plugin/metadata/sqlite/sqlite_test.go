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

package sqlite_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/blinklabs-io/enshrine/database/models"
	"github.com/blinklabs-io/enshrine/database/plugin/metadata/sqlite"
	"github.com/blinklabs-io/enshrine/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.MetadataStoreSqlite {
	t.Helper()
	store, err := sqlite.New("", nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func testRecord(seed byte) *models.LegacyRecord {
	return &models.LegacyRecord{
		Address:           bytes.Repeat([]byte{seed}, 32),
		Authority:         bytes.Repeat([]byte{seed + 1}, 32),
		SeedKey:           bytes.Repeat([]byte{seed + 1}, 32),
		Title:             "The Journey",
		Artist:            "Mansour",
		CurrentFamilyHome: "Cairo",
		StoryHash:         "ipfs://story",
		CreationTimestamp: int64(seed) * 1000,
		LastAuraUpdate:    int64(seed) * 1000,
		CurrentAura:       1,
		IsEnshrined:       true,
	}
}

func TestInMemoryStoresAreIsolated(t *testing.T) {
	store1 := newTestStore(t)
	store2 := newTestStore(t)
	require.NoError(t, store1.SetLegacyRecord(testRecord(1), nil))
	_, err := store2.GetLegacyRecord(testRecord(1).Address, nil)
	require.ErrorIs(t, err, models.ErrLegacyRecordNotFound)
}

func TestLegacyRecordUpsert(t *testing.T) {
	store := newTestStore(t)
	rec := testRecord(1)
	_, err := store.GetLegacyRecord(rec.Address, nil)
	require.ErrorIs(t, err, models.ErrLegacyRecordNotFound)

	require.NoError(t, store.SetLegacyRecord(rec, nil))
	got, err := store.GetLegacyRecord(rec.Address, nil)
	require.NoError(t, err)
	assert.Equal(t, "Cairo", got.CurrentFamilyHome)

	// Second save for the same address updates in place
	updated := testRecord(1)
	updated.CurrentFamilyHome = "Alexandria"
	updated.Authority = bytes.Repeat([]byte{9}, 32)
	require.NoError(t, store.SetLegacyRecord(updated, nil))
	got, err = store.GetLegacyRecord(rec.Address, nil)
	require.NoError(t, err)
	assert.Equal(t, "Alexandria", got.CurrentFamilyHome)
	assert.Equal(t, updated.Authority, got.Authority)
	// The seed key is unaffected by authority changes
	bySeed, err := store.GetLegacyRecordBySeedKey(rec.SeedKey, nil)
	require.NoError(t, err)
	assert.Equal(t, rec.Address, bySeed.Address)

	require.NoError(t, store.SetLegacyRecord(testRecord(5), nil))
	all, err := store.GetLegacyRecords(nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, rec.Address, all[0].Address)
}

func TestTransactionRollback(t *testing.T) {
	store := newTestStore(t)
	txn := store.Transaction()
	require.NoError(t, store.SetLegacyRecord(testRecord(2), txn))
	got, err := store.GetLegacyRecord(testRecord(2).Address, txn)
	require.NoError(t, err)
	assert.Equal(t, "The Journey", got.Title)
	require.NoError(t, txn.Rollback())

	_, err = store.GetLegacyRecord(testRecord(2).Address, nil)
	require.ErrorIs(t, err, models.ErrLegacyRecordNotFound)

	// A finished transaction can no longer be used
	_, err = store.GetLegacyRecord(testRecord(2).Address, txn)
	require.ErrorIs(t, err, types.ErrTxnFinished)
	// Rollback and commit after finishing are no-ops
	require.NoError(t, txn.Rollback())
	require.NoError(t, txn.Commit())
}

func TestTransactionFromOtherStore(t *testing.T) {
	store1 := newTestStore(t)
	store2 := newTestStore(t)
	txn := store2.Transaction()
	defer txn.Rollback() //nolint:errcheck
	err := store1.SetLegacyRecord(testRecord(1), txn)
	require.ErrorContains(t, err, "different store")
}

func TestJournal(t *testing.T) {
	store := newTestStore(t)
	addr := bytes.Repeat([]byte{7}, 32)
	txn := store.Transaction()
	for i := range 3 {
		require.NoError(t, store.AddJournalEntry(&models.JournalEntry{
			Address:     addr,
			Instruction: "update_visual_aura",
			Timestamp:   int64(i),
			Success:     i != 1,
		}, txn))
	}
	require.NoError(t, txn.Commit())
	require.NoError(t, store.AddJournalEntry(&models.JournalEntry{
		Address:     bytes.Repeat([]byte{8}, 32),
		Instruction: "initialize_legacy",
	}, nil))

	entries, err := store.GetJournalEntries(addr, 0, nil)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	// Newest first
	assert.Equal(t, int64(2), entries[0].Timestamp)
	assert.False(t, entries[1].Success)

	entries, err = store.GetJournalEntries(addr, 2, nil)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestJournalQuery(t *testing.T) {
	store := newTestStore(t)
	addr := bytes.Repeat([]byte{7}, 32)
	for i := range 5 {
		require.NoError(t, store.AddJournalEntry(&models.JournalEntry{
			Address:     addr,
			Instruction: "update_visual_aura",
			Timestamp:   int64(i),
		}, nil))
	}
	count, err := store.CountJournalEntries(addr, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)

	entries, err := store.QueryJournalEntries(
		addr,
		models.JournalQuery{Offset: 2, Limit: 2},
		nil,
	)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(2), entries[0].Timestamp)
	assert.Equal(t, int64(1), entries[1].Timestamp)

	entries, err = store.QueryJournalEntries(
		addr,
		models.JournalQuery{Offset: 4, Limit: 2, Ascending: true},
		nil,
	)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(4), entries[0].Timestamp)

	count, err = store.CountJournalEntries(bytes.Repeat([]byte{9}, 32), nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestProcessedInstruction(t *testing.T) {
	store := newTestStore(t)
	digest := bytes.Repeat([]byte{3}, 32)
	seen, err := store.HasProcessedInstruction(digest, nil)
	require.NoError(t, err)
	assert.False(t, seen)

	txn := store.Transaction()
	require.NoError(t, store.AddProcessedInstruction(
		&models.ProcessedInstruction{Digest: digest, Timestamp: 1},
		txn,
	))
	require.NoError(t, txn.Rollback())
	seen, err = store.HasProcessedInstruction(digest, nil)
	require.NoError(t, err)
	assert.False(t, seen, "rolled back digest must not count")

	require.NoError(t, store.AddProcessedInstruction(
		&models.ProcessedInstruction{Digest: digest, Timestamp: 2},
		nil,
	))
	seen, err = store.HasProcessedInstruction(digest, nil)
	require.NoError(t, err)
	assert.True(t, seen)
	// The digest is unique
	require.Error(t, store.AddProcessedInstruction(
		&models.ProcessedInstruction{Digest: digest, Timestamp: 3},
		nil,
	))
}

func TestCommitTimestamp(t *testing.T) {
	store := newTestStore(t)
	ts, err := store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Zero(t, ts)

	txn := store.Transaction()
	require.NoError(t, store.SetCommitTimestamp(12345, txn))
	require.NoError(t, txn.Commit())
	ts, err = store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(12345), ts)

	require.NoError(t, store.SetCommitTimestamp(67890, nil))
	ts, err = store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(67890), ts)
}

func TestOnDiskStore(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "meta")
	reg := prometheus.NewRegistry()
	store, err := sqlite.NewWithOptions(
		sqlite.WithDataDir(dataDir),
		sqlite.WithPromRegistry(reg),
		sqlite.WithCacheSize(1024),
	)
	require.NoError(t, err)
	require.NoError(t, store.SetLegacyRecord(testRecord(3), nil))
	require.NoError(t, store.Close())
	assert.FileExists(t, filepath.Join(dataDir, "metadata.sqlite"))

	store, err = sqlite.New(dataDir, nil, nil)
	require.NoError(t, err)
	defer store.Close()
	got, err := store.GetLegacyRecord(testRecord(3).Address, nil)
	require.NoError(t, err)
	assert.Equal(t, "Mansour", got.Artist)
}
