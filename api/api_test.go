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
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/blinklabs-io/enshrine/database/models"
	"github.com/blinklabs-io/enshrine/legacy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type mockProgram struct {
	programID legacy.PublicKey
	records   map[legacy.PublicKey]*legacy.Record
	journal   []models.JournalEntry
	lastQuery models.JournalQuery
	loadErr   error
	execute   func(*legacy.SignedInstruction) (*legacy.InstructionResult, error)
}

func (m *mockProgram) ProgramID() legacy.PublicKey {
	return m.programID
}

func (m *mockProgram) Address(seedKey legacy.PublicKey) (legacy.PublicKey, uint8, error) {
	return legacy.FindLegacyAddress(seedKey, m.programID)
}

func (m *mockProgram) GetRecord(address legacy.PublicKey) (*legacy.Record, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	rec, ok := m.records[address]
	if !ok {
		return nil, legacy.ErrRecordNotFound
	}
	return rec, nil
}

// JournalPage pages over journal, which is kept newest first like the
// database returns it
func (m *mockProgram) JournalPage(
	_ legacy.PublicKey,
	query models.JournalQuery,
) ([]models.JournalEntry, int, error) {
	m.lastQuery = query
	entries := slices.Clone(m.journal)
	if query.Ascending {
		slices.Reverse(entries)
	}
	start := min(query.Offset, len(entries))
	end := len(entries)
	if query.Limit > 0 {
		end = min(start+query.Limit, end)
	}
	return entries[start:end], len(m.journal), nil
}

func (m *mockProgram) Execute(
	_ context.Context,
	signed *legacy.SignedInstruction,
) (*legacy.InstructionResult, error) {
	return m.execute(signed)
}

func testKey(seed byte) legacy.PublicKey {
	priv := ed25519.NewKeyFromSeed(bytes.Repeat([]byte{seed}, ed25519.SeedSize))
	var ret legacy.PublicKey
	copy(ret[:], priv.Public().(ed25519.PublicKey))
	return ret
}

func newTestProgram(t *testing.T) (*mockProgram, legacy.PublicKey) {
	t.Helper()
	m := &mockProgram{
		programID: legacy.MustPublicKey(legacy.DefaultProgramID),
		records:   map[legacy.PublicKey]*legacy.Record{},
	}
	owner := testKey(1)
	addr, bump, err := m.Address(owner)
	require.NoError(t, err)
	m.records[addr] = &legacy.Record{
		Authority:           owner,
		Title:               "The Guardian of Cairo",
		Artist:              "Sara",
		ArtistAgeAtCreation: 10,
		OriginCity:          "Cairo",
		SanctuaryLocation:   "Cairo",
		CurrentFamilyHome:   "Stockholm",
		CreationTimestamp:   1700000000,
		StoryHash:           "ipfs://story",
		IsEnshrined:         true,
		CurrentAura:         legacy.AuraGoldenRadiance,
		LastAuraUpdate:      1700000000,
		Bump:                bump,
		SeedKey:             owner,
	}
	return m, addr
}

func serve(s *Server, method string, target string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	recorder := httptest.NewRecorder()
	s.Handler().ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var ret map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &ret))
	return ret
}

func TestStartStop(t *testing.T) {
	program, _ := newTestProgram(t)
	s := New(Config{ListenAddress: "127.0.0.1:0"}, program, nil)
	require.NoError(t, s.Start(t.Context()))
	require.Error(t, s.Start(t.Context()))
	addr := s.Addr()
	require.NotEmpty(t, addr)

	resp, err := http.Get("http://" + addr + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	http.DefaultClient.CloseIdleConnections()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.Empty(t, s.Addr())
	// Stopping again is a no-op
	require.NoError(t, s.Stop(ctx))
}

func TestStopOnContextCancel(t *testing.T) {
	program, _ := newTestProgram(t)
	s := New(Config{ListenAddress: "127.0.0.1:0"}, program, nil)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()
	require.Eventually(t, func() bool {
		return s.Addr() == ""
	}, 5*time.Second, 10*time.Millisecond)
}

func TestDefaults(t *testing.T) {
	s := New(Config{}, nil, nil)
	assert.Equal(t, DefaultListenAddress, s.config.ListenAddress)
	assert.Equal(t, 30*time.Second, s.config.ShutdownTimeout)
	assert.NotNil(t, s.logger)
}

func TestHandleHealth(t *testing.T) {
	program, _ := newTestProgram(t)
	recorder := serve(New(Config{}, program, nil), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, true, decodeBody(t, recorder)["is_healthy"])
}

func TestHandleRecord(t *testing.T) {
	program, addr := newTestProgram(t)
	s := New(Config{}, program, nil)

	recorder := serve(s, http.MethodGet, "/api/v0/legacy/"+addr.String(), "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
	body := decodeBody(t, recorder)
	assert.Equal(t, addr.String(), body["address"])
	assert.Equal(t, "The Guardian of Cairo", body["title"])
	assert.Equal(t, testKey(1).String(), body["authority"])
	assert.Equal(t, "GoldenRadiance", body["currentAura"])
	assert.Equal(t, "Golden Radiance", body["auraLabel"])
	assert.Equal(t, true, body["isEnshrined"])

	recorder = serve(s, http.MethodGet, "/api/v0/legacy/"+testKey(9).String(), "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	recorder = serve(s, http.MethodGet, "/api/v0/legacy/not-a-key", "")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, float64(http.StatusBadRequest), decodeBody(t, recorder)["status_code"])

	program.loadErr = errors.New("disk on fire")
	recorder = serve(s, http.MethodGet, "/api/v0/legacy/"+addr.String(), "")
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "disk on fire")
}

func TestHandleNarrative(t *testing.T) {
	program, addr := newTestProgram(t)
	s := New(Config{}, program, nil)
	recorder := serve(s, http.MethodGet, "/api/v0/legacy/"+addr.String()+"/narrative", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	var resp NarrativeResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, addr, resp.Address)
	assert.Equal(t, legacy.Narrative(program.records[addr]), resp.Lines)
}

func TestHandleAuthorityAddress(t *testing.T) {
	program, addr := newTestProgram(t)
	s := New(Config{}, program, nil)

	recorder := serve(s, http.MethodGet, "/api/v0/authority/"+testKey(1).String()+"/address", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	var resp AuthorityAddressResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, addr, resp.Address)
	assert.Equal(t, program.records[addr].Bump, resp.Bump)
	assert.Equal(t, program.programID, resp.ProgramID)
	assert.True(t, resp.Initialized)

	recorder = serve(s, http.MethodGet, "/api/v0/authority/"+testKey(2).String()+"/address", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.False(t, resp.Initialized)
	assert.NotEqual(t, addr, resp.Address)
}

func TestHandleJournal(t *testing.T) {
	program, addr := newTestProgram(t)
	signer := testKey(1)
	// Newest first, as the database returns them
	program.journal = []models.JournalEntry{
		{Instruction: legacy.InstructionUpdateFamilyHome, Signer: signer[:], Success: false, ErrorCode: 6000, ErrorName: "Unauthorized", Timestamp: 3},
		{Instruction: legacy.InstructionRefreshAura, Success: true, Logs: "Aura updated", Timestamp: 2},
		{Instruction: legacy.InstructionInitialize, Signer: signer[:], Success: true, Logs: "a\nb", Timestamp: 1},
	}
	s := New(Config{}, program, nil)

	recorder := serve(s, http.MethodGet, "/api/v0/legacy/"+addr.String()+"/journal", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "3", recorder.Header().Get("X-Pagination-Count-Total"))
	var entries []JournalEntryResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &entries))
	require.Len(t, entries, 3)
	assert.Equal(
		t,
		models.JournalQuery{Limit: DefaultPaginationCount, Ascending: true},
		program.lastQuery,
	)
	assert.Equal(t, legacy.InstructionInitialize, entries[0].Instruction)
	assert.Equal(t, []string{"a", "b"}, entries[0].Logs)
	require.NotNil(t, entries[0].Signer)
	assert.Equal(t, signer, *entries[0].Signer)
	assert.Nil(t, entries[1].Signer)
	assert.Equal(t, uint32(6000), entries[2].ErrorCode)
	assert.Empty(t, entries[2].Logs)

	recorder = serve(s, http.MethodGet, "/api/v0/legacy/"+addr.String()+"/journal?order=desc&count=2&page=2", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "2", recorder.Header().Get("X-Pagination-Page-Total"))
	assert.Equal(t, "3", recorder.Header().Get("X-Pagination-Count-Total"))
	// The page is selected by the store, not by the handler
	assert.Equal(t, models.JournalQuery{Offset: 2, Limit: 2}, program.lastQuery)
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, legacy.InstructionInitialize, entries[0].Instruction)

	recorder = serve(s, http.MethodGet, "/api/v0/legacy/"+addr.String()+"/journal?order=up", "")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func submitBody(t *testing.T, signed *legacy.SignedInstruction) string {
	t.Helper()
	data, err := json.Marshal(SubmitInstructionRequest{
		Signer:    signed.Signer.String(),
		Payload:   base64.StdEncoding.EncodeToString(signed.Payload),
		Signature: base64.StdEncoding.EncodeToString(signed.Signature),
	})
	require.NoError(t, err)
	return string(data)
}

func TestSubmitInstruction(t *testing.T) {
	program, addr := newTestProgram(t)
	s := New(Config{}, program, nil)
	signer := legacy.NewEd25519Signer(
		ed25519.NewKeyFromSeed(bytes.Repeat([]byte{1}, ed25519.SeedSize)),
	)
	signed, err := legacy.NewRefreshAuraInstruction(addr, 1).Sign(signer)
	require.NoError(t, err)

	var received *legacy.SignedInstruction
	program.execute = func(in *legacy.SignedInstruction) (*legacy.InstructionResult, error) {
		received = in
		return &legacy.InstructionResult{
			Instruction: legacy.InstructionRefreshAura,
			Signature:   in.SignatureString(),
			Address:     addr,
			Logs:        []string{"Aura updated"},
			Success:     true,
		}, nil
	}
	recorder := serve(s, http.MethodPost, "/api/v0/instructions", submitBody(t, signed))
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, signed, received)
	body := decodeBody(t, recorder)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, addr.String(), body["address"])

	program.execute = func(in *legacy.SignedInstruction) (*legacy.InstructionResult, error) {
		res := &legacy.InstructionResult{
			Success:   false,
			ErrorCode: legacy.ErrUnauthorized.Code,
			ErrorName: legacy.ErrUnauthorized.Name,
			Message:   legacy.ErrUnauthorized.Message,
		}
		return res, legacy.ErrUnauthorized
	}
	recorder = serve(s, http.MethodPost, "/api/v0/instructions", submitBody(t, signed))
	require.Equal(t, http.StatusForbidden, recorder.Code)
	body = decodeBody(t, recorder)
	assert.Equal(t, float64(6000), body["errorCode"])
	assert.Equal(t, "Unauthorized", body["errorName"])

	program.execute = func(*legacy.SignedInstruction) (*legacy.InstructionResult, error) {
		return nil, errors.New("commit failed")
	}
	recorder = serve(s, http.MethodPost, "/api/v0/instructions", submitBody(t, signed))
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}

func TestSubmitInstructionBadRequest(t *testing.T) {
	program, _ := newTestProgram(t)
	program.execute = func(*legacy.SignedInstruction) (*legacy.InstructionResult, error) {
		t.Fatal("execute must not be reached")
		return nil, nil
	}
	s := New(Config{}, program, nil)
	signer := testKey(1).String()
	for name, body := range map[string]string{
		"not json":      "{",
		"bad signer":    `{"signer":"0OIl","payload":"AA==","signature":"AA=="}`,
		"bad payload":   `{"signer":"` + signer + `","payload":"%%%","signature":"AA=="}`,
		"empty payload": `{"signer":"` + signer + `","payload":"","signature":"AA=="}`,
		"bad signature": `{"signer":"` + signer + `","payload":"AA==","signature":"%%%"}`,
	} {
		t.Run(name, func(t *testing.T) {
			recorder := serve(s, http.MethodPost, "/api/v0/instructions", body)
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
		})
	}

	recorder := serve(s, http.MethodPost, "/api/v0/instructions", strings.Repeat(" ", maxInstructionBodySize+1)+"{}")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestProgramErrorStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, programErrorStatus(legacy.ErrInvalidSignature))
	assert.Equal(t, http.StatusNotFound, programErrorStatus(legacy.ErrRecordNotFound))
	assert.Equal(t, http.StatusConflict, programErrorStatus(legacy.ErrRecordExists))
	assert.Equal(t, http.StatusConflict, programErrorStatus(legacy.ErrInstructionReplayed))
	assert.Equal(t, http.StatusBadRequest, programErrorStatus(legacy.ErrUnknownInstruction))
	assert.Equal(t, http.StatusUnprocessableEntity, programErrorStatus(legacy.ErrTitleTooLong))
}
