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

package objectstore

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/enshrine/database/types"
)

var ErrReadOnlyTxn = errors.New("transaction is read-only")

type pendingWrite struct {
	data    []byte
	deleted bool
}

type txn struct {
	store     *Store
	pending   map[string]pendingWrite
	order     []string
	readWrite bool
	finished  bool
}

func (t *txn) buffer(key string, pw pendingWrite) error {
	if !t.readWrite {
		return ErrReadOnlyTxn
	}
	if _, ok := t.pending[key]; !ok {
		t.order = append(t.order, key)
	}
	t.pending[key] = pw
	return nil
}

// Commit flushes buffered writes in order. The commit timestamp goes last so
// that an interrupted flush shows up as a timestamp mismatch on the next
// open.
func (t *txn) Commit() error {
	if t.finished {
		return nil
	}
	t.finished = true
	var tsWrite *pendingWrite
	for _, key := range t.order {
		pw := t.pending[key]
		if key == types.CommitTimestampBlobKey {
			tsWrite = &pw
			continue
		}
		if err := t.store.flush(key, pw); err != nil {
			return fmt.Errorf("flush %q: %w", key, err)
		}
	}
	if tsWrite != nil {
		if err := t.store.flush(types.CommitTimestampBlobKey, *tsWrite); err != nil {
			return fmt.Errorf("flush commit timestamp: %w", err)
		}
	}
	return nil
}

func (t *txn) Rollback() error {
	t.finished = true
	t.pending = nil
	t.order = nil
	return nil
}
