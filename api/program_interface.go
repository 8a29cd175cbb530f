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

package api

import (
	"context"

	"github.com/blinklabs-io/enshrine/database/models"
	"github.com/blinklabs-io/enshrine/legacy"
)

// LegacyProgram is the view of the program the API needs. It is
// implemented by *legacy.Program.
type LegacyProgram interface {
	ProgramID() legacy.PublicKey

	// Address derives the record address of a creating identity
	Address(seedKey legacy.PublicKey) (legacy.PublicKey, uint8, error)

	// GetRecord loads a record without journaling the read
	GetRecord(address legacy.PublicKey) (*legacy.Record, error)

	// JournalPage returns one page of an address's journal and the total
	// number of entries
	JournalPage(
		address legacy.PublicKey,
		query models.JournalQuery,
	) ([]models.JournalEntry, int, error)

	Execute(
		ctx context.Context,
		signed *legacy.SignedInstruction,
	) (*legacy.InstructionResult, error)
}
