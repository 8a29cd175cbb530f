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
	"github.com/blinklabs-io/enshrine/database/models"
	"github.com/blinklabs-io/enshrine/database/types"
)

// AddJournalEntry appends an instruction outcome to the journal
func (s *Store) AddJournalEntry(
	entry *models.JournalEntry,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Create(entry).Error
}

// GetJournalEntries returns the journal for address, newest first. A limit
// of 0 or less returns every entry.
func (s *Store) GetJournalEntries(
	address []byte,
	limit int,
	txn types.Txn,
) ([]models.JournalEntry, error) {
	return s.QueryJournalEntries(address, models.JournalQuery{Limit: limit}, txn)
}

// QueryJournalEntries returns one page of the journal for address
func (s *Store) QueryJournalEntries(
	address []byte,
	q models.JournalQuery,
	txn types.Txn,
) ([]models.JournalEntry, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	order := "id DESC"
	if q.Ascending {
		order = "id ASC"
	}
	query := db.Where("address = ?", address).Order(order)
	if q.Limit > 0 {
		query = query.Limit(q.Limit).Offset(max(q.Offset, 0))
	}
	var ret []models.JournalEntry
	if result := query.Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// CountJournalEntries returns the number of journal entries for address
func (s *Store) CountJournalEntries(address []byte, txn types.Txn) (int64, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return 0, err
	}
	var count int64
	result := db.Model(&models.JournalEntry{}).
		Where("address = ?", address).
		Count(&count)
	return count, result.Error
}

// HasProcessedInstruction reports whether an instruction with digest was
// already applied
func (s *Store) HasProcessedInstruction(digest []byte, txn types.Txn) (bool, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return false, err
	}
	var count int64
	result := db.Model(&models.ProcessedInstruction{}).
		Where("digest = ?", digest).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

func (s *Store) AddProcessedInstruction(
	entry *models.ProcessedInstruction,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Create(entry).Error
}
