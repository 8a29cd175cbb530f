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

import "errors"

var ErrLegacyRecordNotFound = errors.New("legacy record not found")

// LegacyRecord is the queryable projection of a record account. The account
// bytes in the blob store remain the source of truth.
type LegacyRecord struct {
	Address           []byte `gorm:"uniqueIndex;size:32"`
	Authority         []byte `gorm:"index;size:32"`
	SeedKey           []byte `gorm:"uniqueIndex;size:32"`
	Title             string
	Artist            string
	CurrentFamilyHome string
	StoryHash         string
	ID                uint  `gorm:"primarykey"`
	CreationTimestamp int64 `gorm:"index"`
	LastAuraUpdate    int64
	CurrentAura       uint8
	IsEnshrined       bool
}

func (LegacyRecord) TableName() string {
	return "legacy_record"
}
