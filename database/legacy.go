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

package database

import (
	"errors"

	"github.com/blinklabs-io/enshrine/database/models"
	"github.com/blinklabs-io/enshrine/database/types"
)

// GetLegacyAccount returns the raw account data of the record at address
func (d *Database) GetLegacyAccount(address []byte, txn *Txn) ([]byte, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	data, err := d.blob.Get(txn.Blob(), types.LegacyAccountKey(address))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return nil, models.ErrLegacyRecordNotFound
		}
		return nil, err
	}
	return data, nil
}

// LegacyAccountExists reports whether an account is stored at address
func (d *Database) LegacyAccountExists(address []byte, txn *Txn) (bool, error) {
	_, err := d.GetLegacyAccount(address, txn)
	if err != nil {
		if errors.Is(err, models.ErrLegacyRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// SetLegacyAccount stores the account data and its queryable projection in
// the same transaction
func (d *Database) SetLegacyAccount(
	address []byte,
	data []byte,
	record *models.LegacyRecord,
	txn *Txn,
) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	if err := d.blob.Set(txn.Blob(), types.LegacyAccountKey(address), data); err != nil {
		return err
	}
	record.Address = address
	return d.metadata.SetLegacyRecord(record, txn.Metadata())
}

// GetLegacyRecord returns the projection of the record at address
func (d *Database) GetLegacyRecord(
	address []byte,
	txn *Txn,
) (*models.LegacyRecord, error) {
	return d.metadata.GetLegacyRecord(address, txn.metadataOrNil())
}

// GetLegacyRecordBySeedKey returns the projection of the record created by
// seedKey
func (d *Database) GetLegacyRecordBySeedKey(
	seedKey []byte,
	txn *Txn,
) (*models.LegacyRecord, error) {
	return d.metadata.GetLegacyRecordBySeedKey(seedKey, txn.metadataOrNil())
}

// GetLegacyRecords returns the projections of all records, oldest first
func (d *Database) GetLegacyRecords(txn *Txn) ([]models.LegacyRecord, error) {
	return d.metadata.GetLegacyRecords(txn.metadataOrNil())
}
