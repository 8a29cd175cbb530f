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

package gormstore

import (
	"errors"

	"github.com/blinklabs-io/enshrine/database/types"
	"gorm.io/gorm"
)

// gormTxn wraps a gorm transaction and implements types.Txn
type gormTxn struct {
	store    *Store
	db       *gorm.DB
	finished bool
}

// Transaction begins a new metadata transaction
func (s *Store) Transaction() types.Txn {
	return &gormTxn{
		store: s,
		db:    s.DB().Begin(),
	}
}

func (t *gormTxn) Commit() error {
	if t.finished {
		return nil
	}
	t.finished = true
	return t.db.Commit().Error
}

func (t *gormTxn) Rollback() error {
	if t.finished {
		return nil
	}
	t.finished = true
	return t.db.Rollback().Error
}

// resolveDB returns the gorm handle to use for a query. A nil txn runs the
// query outside of any transaction.
func (s *Store) resolveDB(txn types.Txn) (*gorm.DB, error) {
	if txn == nil {
		return s.DB(), nil
	}
	gTxn, ok := txn.(*gormTxn)
	if !ok {
		return nil, types.ErrTxnWrongType
	}
	if gTxn.store != s {
		return nil, errors.New("transaction from different store")
	}
	if gTxn.finished {
		return nil, types.ErrTxnFinished
	}
	if gTxn.db.Error != nil {
		return nil, gTxn.db.Error
	}
	return gTxn.db, nil
}
