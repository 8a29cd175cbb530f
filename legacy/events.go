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

import "github.com/blinklabs-io/enshrine/event"

const (
	InitializedEventType          = event.EventType("legacy.initialized")
	AuraRefreshedEventType        = event.EventType("legacy.aura_refreshed")
	NarrativeReadEventType        = event.EventType("legacy.narrative_read")
	FamilyHomeUpdatedEventType    = event.EventType("legacy.family_home_updated")
	StoryHashUpdatedEventType     = event.EventType("legacy.story_hash_updated")
	AuthorityTransferredEventType = event.EventType("legacy.authority_transferred")
)

// EventTypes lists every event the program publishes
var EventTypes = []event.EventType{
	InitializedEventType,
	AuraRefreshedEventType,
	NarrativeReadEventType,
	FamilyHomeUpdatedEventType,
	StoryHashUpdatedEventType,
	AuthorityTransferredEventType,
}

type InitializedEvent struct {
	Address   PublicKey `json:"address"`
	Authority PublicKey `json:"authority"`
	Title     string    `json:"title"`
	Aura      Aura      `json:"aura"`
	Timestamp int64     `json:"timestamp"`
}

type AuraRefreshedEvent struct {
	Address   PublicKey `json:"address"`
	OldAura   Aura      `json:"oldAura"`
	NewAura   Aura      `json:"newAura"`
	Timestamp int64     `json:"timestamp"`
	LocalHour uint8     `json:"localHour"`
}

type NarrativeReadEvent struct {
	Address PublicKey `json:"address"`
}

type FamilyHomeUpdatedEvent struct {
	Address PublicKey `json:"address"`
	OldHome string    `json:"oldHome"`
	NewHome string    `json:"newHome"`
}

type StoryHashUpdatedEvent struct {
	Address PublicKey `json:"address"`
	OldHash string    `json:"oldHash"`
	NewHash string    `json:"newHash"`
}

type AuthorityTransferredEvent struct {
	Address      PublicKey `json:"address"`
	OldAuthority PublicKey `json:"oldAuthority"`
	NewAuthority PublicKey `json:"newAuthority"`
}
