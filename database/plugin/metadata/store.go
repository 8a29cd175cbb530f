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

package metadata

import (
	"fmt"

	"github.com/blinklabs-io/enshrine/database/models"
	"github.com/blinklabs-io/enshrine/database/plugin"
	"github.com/blinklabs-io/enshrine/database/types"
	"gorm.io/gorm"
)

type MetadataStore interface {
	// Database
	Close() error
	DB() *gorm.DB
	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(int64, types.Txn) error
	Transaction() types.Txn

	// Record projections
	GetLegacyRecord(
		[]byte, // address
		types.Txn,
	) (*models.LegacyRecord, error)
	GetLegacyRecordBySeedKey(
		[]byte, // seed key
		types.Txn,
	) (*models.LegacyRecord, error)
	GetLegacyRecords(types.Txn) ([]models.LegacyRecord, error)
	SetLegacyRecord(*models.LegacyRecord, types.Txn) error

	// Journal
	AddJournalEntry(*models.JournalEntry, types.Txn) error
	GetJournalEntries(
		[]byte, // address
		int, // limit
		types.Txn,
	) ([]models.JournalEntry, error)
	QueryJournalEntries(
		[]byte, // address
		models.JournalQuery,
		types.Txn,
	) ([]models.JournalEntry, error)
	CountJournalEntries([]byte, types.Txn) (int64, error)

	// Replay protection
	HasProcessedInstruction([]byte, types.Txn) (bool, error)
	AddProcessedInstruction(*models.ProcessedInstruction, types.Txn) error
}

// New returns the started metadata plugin selected by name
func New(pluginName string, opts plugin.StartOptions) (MetadataStore, error) {
	p, err := plugin.StartPlugin(plugin.PluginTypeMetadata, pluginName, opts)
	if err != nil {
		return nil, err
	}
	metadataStore, ok := p.(MetadataStore)
	if !ok {
		return nil, fmt.Errorf(
			"plugin '%s' does not implement MetadataStore interface",
			pluginName,
		)
	}
	return metadataStore, nil
}
