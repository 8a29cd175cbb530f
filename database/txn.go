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

package database

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blinklabs-io/enshrine/database/types"
)

// Txn spans the blob and metadata stores. Read-write commits stamp both
// stores with the same commit timestamp and then commit blob before
// metadata, so an interrupted commit surfaces as a CommitTimestampError on
// the next open.
type Txn struct {
	db          *Database
	blobTxn     types.Txn
	metadataTxn types.Txn
	lock        sync.Mutex
	finished    bool
	readWrite   bool
}

// NewTxn opens a transaction on every store the database has
func NewTxn(db *Database, readWrite bool) *Txn {
	return newTxn(db, readWrite, true)
}

// NewBlobOnlyTxn opens a transaction on the blob store alone
func NewBlobOnlyTxn(db *Database, readWrite bool) *Txn {
	return newTxn(db, readWrite, false)
}

func newTxn(db *Database, readWrite bool, withMetadata bool) *Txn {
	t := &Txn{db: db, readWrite: readWrite}
	if bs := db.Blob(); bs != nil {
		t.blobTxn = bs.NewTransaction(readWrite)
	}
	if ms := db.Metadata(); withMetadata && ms != nil {
		t.metadataTxn = ms.Transaction()
	}
	return t
}

func (t *Txn) DB() *Database {
	return t.db
}

// Metadata returns the metadata transaction, or nil for blob-only
// transactions
func (t *Txn) Metadata() types.Txn {
	return t.metadataTxn
}

func (t *Txn) Blob() types.Txn {
	return t.blobTxn
}

// Do runs fn inside the transaction, committing on success and rolling back
// when fn returns an error
func (t *Txn) Do(fn func(*Txn) error) error {
	if err := fn(t); err != nil {
		if rbErr := t.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := t.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Commit finishes the transaction. Read-only transactions are released
// instead of committed.
func (t *Txn) Commit() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.finished {
		return nil
	}
	if !t.readWrite {
		return t.rollback()
	}
	defer func() { t.finished = true }()
	if t.blobTxn == nil && t.metadataTxn == nil {
		return types.ErrNoStoreAvailable
	}
	if t.blobTxn != nil && t.metadataTxn != nil {
		if err := t.db.updateCommitTimestamp(t, time.Now().UnixMilli()); err != nil {
			t.discard()
			return fmt.Errorf("update commit timestamp: %w", err)
		}
	}
	if t.blobTxn != nil {
		if err := t.blobTxn.Commit(); err != nil {
			if t.metadataTxn != nil {
				_ = t.metadataTxn.Rollback()
			}
			return fmt.Errorf("blob commit: %w", err)
		}
	}
	if t.metadataTxn == nil {
		return nil
	}
	if err := t.metadataTxn.Commit(); err != nil {
		t.db.logger.Error(
			"metadata commit failed after blob commit",
			"component", "database",
			"error", err,
		)
		_ = t.metadataTxn.Rollback()
		return fmt.Errorf("metadata commit after blob commit: %w", err)
	}
	return nil
}

func (t *Txn) Rollback() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.rollback()
}

func (t *Txn) rollback() error {
	if t.finished {
		return nil
	}
	t.finished = true
	var err error
	if t.blobTxn != nil {
		if rbErr := t.blobTxn.Rollback(); rbErr != nil {
			err = errors.Join(err, fmt.Errorf("blob rollback: %w", rbErr))
		}
	}
	if t.metadataTxn != nil {
		if rbErr := t.metadataTxn.Rollback(); rbErr != nil {
			err = errors.Join(err, fmt.Errorf("metadata rollback: %w", rbErr))
		}
	}
	return err
}

// discard drops both sides without reporting errors
func (t *Txn) discard() {
	if t.blobTxn != nil {
		_ = t.blobTxn.Rollback()
	}
	if t.metadataTxn != nil {
		_ = t.metadataTxn.Rollback()
	}
}

// Release rolls back anything not yet committed and only logs failures, for
// use with defer
func (t *Txn) Release() {
	if err := t.Rollback(); err != nil {
		t.db.logger.Debug(
			"transaction release failed",
			"component", "database",
			"error", err,
			"read_write", t.readWrite,
		)
	}
}

// metadataOrNil returns the metadata handle of a possibly nil Txn
func (t *Txn) metadataOrNil() types.Txn {
	if t == nil {
		return nil
	}
	return t.metadataTxn
}
