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
	"fmt"

	"github.com/blinklabs-io/enshrine/database/models"
	"github.com/blinklabs-io/enshrine/database/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetLegacyRecord returns the projection of the record at address
func (s *Store) GetLegacyRecord(
	address []byte,
	txn types.Txn,
) (*models.LegacyRecord, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.LegacyRecord{}
	result := db.Where("address = ?", address).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, models.ErrLegacyRecordNotFound
		}
		return nil, result.Error
	}
	return ret, nil
}

// GetLegacyRecordBySeedKey returns the projection of the record created by
// seedKey, which stays stable across authority transfers
func (s *Store) GetLegacyRecordBySeedKey(
	seedKey []byte,
	txn types.Txn,
) (*models.LegacyRecord, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.LegacyRecord{}
	result := db.Where("seed_key = ?", seedKey).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, models.ErrLegacyRecordNotFound
		}
		return nil, result.Error
	}
	return ret, nil
}

// GetLegacyRecords returns all record projections, oldest first
func (s *Store) GetLegacyRecords(
	txn types.Txn,
) ([]models.LegacyRecord, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.LegacyRecord
	result := db.Order("creation_timestamp, id").Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// SetLegacyRecord creates or replaces the projection for record.Address
func (s *Store) SetLegacyRecord(
	record *models.LegacyRecord,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"authority",
			"title",
			"artist",
			"current_family_home",
			"story_hash",
			"last_aura_update",
			"current_aura",
			"is_enshrined",
		}),
	}).Create(record)
	if result.Error != nil {
		return fmt.Errorf("failed to save legacy record: %w", result.Error)
	}
	return nil
}
