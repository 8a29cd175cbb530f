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
	"github.com/blinklabs-io/enshrine/database/models"
	"github.com/blinklabs-io/enshrine/database/types"
)

// AddJournalEntry records the outcome of an instruction
func (d *Database) AddJournalEntry(entry *models.JournalEntry, txn *Txn) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	return d.metadata.AddJournalEntry(entry, txn.Metadata())
}

// GetJournalEntries returns up to limit journal entries for address, newest
// first. A limit of 0 or less returns everything
func (d *Database) GetJournalEntries(
	address []byte,
	limit int,
	txn *Txn,
) ([]models.JournalEntry, error) {
	return d.metadata.GetJournalEntries(address, limit, txn.metadataOrNil())
}

// QueryJournalEntries returns one page of the journal for address
func (d *Database) QueryJournalEntries(
	address []byte,
	query models.JournalQuery,
	txn *Txn,
) ([]models.JournalEntry, error) {
	return d.metadata.QueryJournalEntries(address, query, txn.metadataOrNil())
}

func (d *Database) CountJournalEntries(address []byte, txn *Txn) (int64, error) {
	return d.metadata.CountJournalEntries(address, txn.metadataOrNil())
}

// InstructionProcessed reports whether the instruction with digest has
// already been applied
func (d *Database) InstructionProcessed(digest []byte, txn *Txn) (bool, error) {
	return d.metadata.HasProcessedInstruction(digest, txn.metadataOrNil())
}

// MarkInstructionProcessed records an applied instruction. It must run in
// the transaction that applies it.
func (d *Database) MarkInstructionProcessed(
	entry *models.ProcessedInstruction,
	txn *Txn,
) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	return d.metadata.AddProcessedInstruction(entry, txn.Metadata())
}
