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

package models

// JournalEntry records the outcome of one submitted instruction
type JournalEntry struct {
	Address     []byte `gorm:"index;size:32"`
	Signer      []byte `gorm:"index;size:32"`
	Instruction string
	Signature   string
	ErrorName   string
	Logs        string
	ID          uint  `gorm:"primarykey"`
	Timestamp   int64 `gorm:"index"`
	ErrorCode   uint32
	Success     bool
}

func (JournalEntry) TableName() string {
	return "journal_entry"
}

// JournalQuery selects a page of one address's journal. Entries are ordered
// newest first unless Ascending is set. Offset only applies together with a
// positive Limit.
type JournalQuery struct {
	Offset    int
	Limit     int
	Ascending bool
}
