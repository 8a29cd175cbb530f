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

import "github.com/blinklabs-io/enshrine/legacy"

type ErrorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

type HealthResponse struct {
	IsHealthy bool `json:"is_healthy"`
}

type ProgramResponse struct {
	ProgramID legacy.PublicKey `json:"program_id"`
	Space     int              `json:"space"`
}

// RecordResponse is a record with its address and the display label of its
// aura
type RecordResponse struct {
	*legacy.Record

	Address   legacy.PublicKey `json:"address"`
	AuraLabel string           `json:"auraLabel"`
}

type NarrativeResponse struct {
	Address legacy.PublicKey `json:"address"`
	Lines   []string         `json:"lines"`
}

type AuthorityAddressResponse struct {
	Authority   legacy.PublicKey `json:"authority"`
	Address     legacy.PublicKey `json:"address"`
	ProgramID   legacy.PublicKey `json:"program_id"`
	Bump        uint8            `json:"bump"`
	Initialized bool             `json:"initialized"`
}

type JournalEntryResponse struct {
	Signer      *legacy.PublicKey `json:"signer,omitempty"`
	Instruction string            `json:"instruction"`
	Signature   string            `json:"signature,omitempty"`
	ErrorName   string            `json:"error_name,omitempty"`
	Logs        []string          `json:"logs"`
	Timestamp   int64             `json:"timestamp"`
	ErrorCode   uint32            `json:"error_code,omitempty"`
	Success     bool              `json:"success"`
}

// SubmitInstructionRequest carries a signed instruction. Payload and
// signature are standard base64; signer is the base58 public key.
type SubmitInstructionRequest struct {
	Signer    string `json:"signer"`
	Payload   string `json:"payload"`
	Signature string `json:"signature"`
}
