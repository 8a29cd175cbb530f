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

package legacy

// Maximum lengths, in bytes, of the text fields of a Record
const (
	MaxTitleLen      = 64
	MaxNameLen       = 64
	MaxCityLen       = 128
	MaxHashLen       = 128
	MaxDedicationLen = 256
	MaxStatusLen     = 128
)

const (
	MinArtistAge = 1
	MaxArtistAge = 120
)

const (
	discriminatorSize = 8
	stringPrefixSize  = 4
	int64Size         = 8
	byteSize          = 1
)

// Space is the fixed storage size of a record account. It is computed from
// the field bounds rather than from actual values so no later update can
// outgrow the allocation.
const Space = discriminatorSize +
	PublicKeySize + // authority
	stringPrefixSize + MaxTitleLen + // title
	stringPrefixSize + MaxNameLen + // artist
	byteSize + // artist_age_at_creation
	stringPrefixSize + MaxCityLen + // origin_city
	stringPrefixSize + MaxCityLen + // sanctuary_location
	stringPrefixSize + MaxCityLen + // current_family_home
	int64Size + // creation_timestamp
	stringPrefixSize + MaxHashLen + // story_hash
	stringPrefixSize + MaxDedicationLen + // dedication
	byteSize + // is_enshrined
	stringPrefixSize + MaxStatusLen + // physical_status
	byteSize + // current_aura
	int64Size + // last_aura_update
	byteSize + // bump
	PublicKeySize // seed key

// Record is the provenance record of the painting
type Record struct {
	// Authority may perform gated updates
	Authority           PublicKey `json:"authority"`
	Title               string    `json:"title"`
	Artist              string    `json:"artist"`
	ArtistAgeAtCreation uint8     `json:"artistAgeAtCreation"`
	OriginCity          string    `json:"originCity"`
	// SanctuaryLocation is written once at initialization
	SanctuaryLocation string `json:"sanctuaryLocation"`
	CurrentFamilyHome string `json:"currentFamilyHome"`
	CreationTimestamp int64  `json:"creationTimestamp"`
	// StoryHash references external content; it is never resolved here
	StoryHash      string `json:"storyHash"`
	Dedication     string `json:"dedication"`
	IsEnshrined    bool   `json:"isEnshrined"`
	PhysicalStatus string `json:"physicalStatus"`
	CurrentAura    Aura   `json:"currentAura"`
	LastAuraUpdate int64  `json:"lastAuraUpdate"`
	// Bump and SeedKey reproduce the record address
	Bump    uint8     `json:"bump"`
	SeedKey PublicKey `json:"seedKey"`
}

// InitializeArgs carries the initializer inputs in instruction order
type InitializeArgs struct {
	Title             string `json:"title"`
	Artist            string `json:"artist"`
	ArtistAge         uint8  `json:"artistAge"`
	OriginCity        string `json:"originCity"`
	SanctuaryLocation string `json:"sanctuaryLocation"`
	CurrentFamilyHome string `json:"currentFamilyHome"`
	StoryHash         string `json:"storyHash"`
	Dedication        string `json:"dedication"`
	PhysicalStatus    string `json:"physicalStatus"`
}

// Validate checks every bound of the initializer inputs. Text fields are
// checked in argument order and the age last.
func (a *InitializeArgs) Validate() error {
	checks := []struct {
		err   *ProgramError
		field string
		value string
		max   int
	}{
		{ErrTitleTooLong, "title", a.Title, MaxTitleLen},
		{ErrArtistNameTooLong, "artist", a.Artist, MaxNameLen},
		{ErrCityNameTooLong, "origin_city", a.OriginCity, MaxCityLen},
		{ErrCityNameTooLong, "sanctuary_location", a.SanctuaryLocation, MaxCityLen},
		{ErrCityNameTooLong, "current_family_home", a.CurrentFamilyHome, MaxCityLen},
		{ErrHashTooLong, "story_hash", a.StoryHash, MaxHashLen},
		{ErrDedicationTooLong, "dedication", a.Dedication, MaxDedicationLen},
		{ErrStatusTooLong, "physical_status", a.PhysicalStatus, MaxStatusLen},
	}
	for _, check := range checks {
		if len(check.value) > check.max {
			return fieldTooLong(check.err, check.field, len(check.value))
		}
	}
	return validateAge(a.ArtistAge)
}

func validateAge(age uint8) error {
	if age < MinArtistAge || age > MaxArtistAge {
		return ErrInvalidAge
	}
	return nil
}

func validateFamilyHome(home string) error {
	if len(home) > MaxCityLen {
		return fieldTooLong(ErrCityNameTooLong, "current_family_home", len(home))
	}
	return nil
}

func validateStoryHash(hash string) error {
	if len(hash) > MaxHashLen {
		return fieldTooLong(ErrHashTooLong, "story_hash", len(hash))
	}
	return nil
}
