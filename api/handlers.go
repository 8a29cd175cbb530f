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
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/blinklabs-io/enshrine/database/models"
	"github.com/blinklabs-io/enshrine/legacy"
)

const maxInstructionBodySize = 64 * 1024

func writeJSON(
	w http.ResponseWriter,
	status int,
	v any,
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

func writeError(
	w http.ResponseWriter,
	status int,
	message string,
) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
	})
}

// pathKey parses a base58 key from a path segment. It writes a 400 and
// returns false when the value is not a key.
func pathKey(
	w http.ResponseWriter,
	r *http.Request,
	name string,
) (legacy.PublicKey, bool) {
	key, err := legacy.PublicKeyFromString(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name+": "+err.Error())
		return key, false
	}
	return key, true
}

func (s *Server) handleHealth(
	w http.ResponseWriter,
	_ *http.Request,
) {
	writeJSON(w, http.StatusOK, HealthResponse{
		IsHealthy: true,
	})
}

func (s *Server) handleProgram(
	w http.ResponseWriter,
	_ *http.Request,
) {
	writeJSON(w, http.StatusOK, ProgramResponse{
		ProgramID: s.program.ProgramID(),
		Space:     legacy.Space,
	})
}

// loadRecord writes the error response itself and returns nil on failure
func (s *Server) loadRecord(
	w http.ResponseWriter,
	address legacy.PublicKey,
) *legacy.Record {
	rec, err := s.program.GetRecord(address)
	if err == nil {
		return rec
	}
	if errors.Is(err, legacy.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "legacy record not found")
		return nil
	}
	s.logger.Error(
		"failed to load legacy record",
		"address", address.String(),
		"error", err,
	)
	writeError(
		w,
		http.StatusInternalServerError,
		"failed to retrieve legacy record",
	)
	return nil
}

func (s *Server) handleRecord(
	w http.ResponseWriter,
	r *http.Request,
) {
	address, ok := pathKey(w, r, "address")
	if !ok {
		return
	}
	rec := s.loadRecord(w, address)
	if rec == nil {
		return
	}
	writeJSON(w, http.StatusOK, RecordResponse{
		Record:    rec,
		Address:   address,
		AuraLabel: rec.CurrentAura.String(),
	})
}

// handleNarrative renders the narrative of the stored record. It does not
// execute an instruction, so nothing is journaled.
func (s *Server) handleNarrative(
	w http.ResponseWriter,
	r *http.Request,
) {
	address, ok := pathKey(w, r, "address")
	if !ok {
		return
	}
	rec := s.loadRecord(w, address)
	if rec == nil {
		return
	}
	writeJSON(w, http.StatusOK, NarrativeResponse{
		Address: address,
		Lines:   legacy.Narrative(rec),
	})
}

func (s *Server) handleAuthorityAddress(
	w http.ResponseWriter,
	r *http.Request,
) {
	authority, ok := pathKey(w, r, "authority")
	if !ok {
		return
	}
	address, bump, err := s.program.Address(authority)
	if err != nil {
		s.logger.Error("failed to derive address", "error", err)
		writeError(
			w,
			http.StatusInternalServerError,
			"failed to derive record address",
		)
		return
	}
	initialized := true
	if _, err := s.program.GetRecord(address); err != nil {
		if !errors.Is(err, legacy.ErrRecordNotFound) {
			s.logger.Error("failed to load legacy record", "error", err)
			writeError(
				w,
				http.StatusInternalServerError,
				"failed to retrieve legacy record",
			)
			return
		}
		initialized = false
	}
	writeJSON(w, http.StatusOK, AuthorityAddressResponse{
		Authority:   authority,
		Address:     address,
		ProgramID:   s.program.ProgramID(),
		Bump:        bump,
		Initialized: initialized,
	})
}

func (s *Server) handleJournal(
	w http.ResponseWriter,
	r *http.Request,
) {
	address, ok := pathKey(w, r, "address")
	if !ok {
		return
	}
	params, err := ParsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	entries, total, err := s.program.JournalPage(
		address,
		models.JournalQuery{
			Offset:    params.Offset(),
			Limit:     params.Count,
			Ascending: params.Order == DefaultPaginationOrderAsc,
		},
	)
	if err != nil {
		s.logger.Error(
			"failed to load journal",
			"address", address.String(),
			"error", err,
		)
		writeError(
			w,
			http.StatusInternalServerError,
			"failed to retrieve journal",
		)
		return
	}
	SetPaginationHeaders(w, total, params)
	ret := make([]JournalEntryResponse, 0, len(entries))
	for _, entry := range entries {
		ret = append(ret, NewJournalEntryResponse(entry))
	}
	writeJSON(w, http.StatusOK, ret)
}

// NewJournalEntryResponse converts a stored journal entry for display
func NewJournalEntryResponse(entry models.JournalEntry) JournalEntryResponse {
	ret := JournalEntryResponse{
		Instruction: entry.Instruction,
		Signature:   entry.Signature,
		ErrorName:   entry.ErrorName,
		ErrorCode:   entry.ErrorCode,
		Timestamp:   entry.Timestamp,
		Success:     entry.Success,
		Logs:        []string{},
	}
	if signer, err := legacy.PublicKeyFromBytes(entry.Signer); err == nil {
		ret.Signer = &signer
	}
	if entry.Logs != "" {
		ret.Logs = strings.Split(entry.Logs, "\n")
	}
	return ret
}

func (s *Server) handleSubmitInstruction(
	w http.ResponseWriter,
	r *http.Request,
) {
	r.Body = http.MaxBytesReader(w, r.Body, maxInstructionBodySize)
	var req SubmitInstructionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	signed, err := req.signedInstruction()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.program.Execute(r.Context(), signed)
	if err != nil {
		var progErr *legacy.ProgramError
		if !errors.As(err, &progErr) {
			s.logger.Error(
				"failed to execute instruction",
				"signature", signed.SignatureString(),
				"error", err,
			)
			writeError(
				w,
				http.StatusInternalServerError,
				"failed to execute instruction",
			)
			return
		}
		writeJSON(w, programErrorStatus(progErr), res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (req *SubmitInstructionRequest) signedInstruction() (*legacy.SignedInstruction, error) {
	signer, err := legacy.PublicKeyFromString(req.Signer)
	if err != nil {
		return nil, errors.New("invalid signer: " + err.Error())
	}
	payload, err := base64.StdEncoding.DecodeString(req.Payload)
	if err != nil || len(payload) == 0 {
		return nil, errors.New("invalid payload encoding")
	}
	signature, err := base64.StdEncoding.DecodeString(req.Signature)
	if err != nil {
		return nil, errors.New("invalid signature encoding")
	}
	return &legacy.SignedInstruction{
		Signer:    signer,
		Payload:   payload,
		Signature: signature,
	}, nil
}

func programErrorStatus(err *legacy.ProgramError) int {
	switch err {
	case legacy.ErrInvalidSignature:
		return http.StatusUnauthorized
	case legacy.ErrUnauthorized:
		return http.StatusForbidden
	case legacy.ErrRecordNotFound:
		return http.StatusNotFound
	case legacy.ErrRecordExists, legacy.ErrInstructionReplayed:
		return http.StatusConflict
	case legacy.ErrUnknownInstruction, legacy.ErrInstructionDidNotDeserialize:
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}
