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

package legacy_test

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/blinklabs-io/enshrine/database"
	"github.com/blinklabs-io/enshrine/database/models"
	"github.com/blinklabs-io/enshrine/event"
	"github.com/blinklabs-io/enshrine/legacy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2023-11-14, a day boundary in UTC
const testDay int64 = 86400 * 19675

type testEnv struct {
	db      *database.Database
	bus     *event.EventBus
	program *legacy.Program
	now     atomic.Int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	env := &testEnv{
		db:  db,
		bus: event.NewEventBus(nil, nil),
	}
	env.setLocalHour(9)
	env.program, err = legacy.NewProgram(legacy.ProgramConfig{
		Database: db,
		EventBus: env.bus,
		Clock: legacy.ClockFunc(func() time.Time {
			return time.Unix(env.now.Load(), 0)
		}),
		PromRegistry: prometheus.NewRegistry(),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		env.bus.Stop()
		_ = db.Close()
	})
	return env
}

func (e *testEnv) setLocalHour(hour int64) {
	e.now.Store(testDay + utcForLocalHour(hour))
}

func (e *testEnv) initialize(t *testing.T, signer *legacy.Ed25519Signer) legacy.PublicKey {
	t.Helper()
	res, err := e.program.Initialize(context.Background(), signer.PublicKey(), validArgs())
	require.NoError(t, err)
	return res.Address
}

func (e *testEnv) initializeAddress(t *testing.T, signer *legacy.Ed25519Signer) legacy.PublicKey {
	t.Helper()
	addr, _, err := e.program.Address(signer.PublicKey())
	require.NoError(t, err)
	return addr
}

func (e *testEnv) record(t *testing.T, addr legacy.PublicKey) *legacy.Record {
	t.Helper()
	rec, err := e.program.GetRecord(addr)
	require.NoError(t, err)
	return rec
}

func TestNewProgramRequiresDatabase(t *testing.T) {
	_, err := legacy.NewProgram(legacy.ProgramConfig{})
	require.ErrorIs(t, err, legacy.ErrNilDatabase)
}

func TestInitialize(t *testing.T) {
	env := newTestEnv(t)
	owner := testSigner(1)
	res, err := env.program.Initialize(context.Background(), owner.PublicKey(), validArgs())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Legacy initialized: The Guardian of Cairo", res.Logs[0])
	assert.Equal(t, "Sanctuary: Cairo - Forever enshrined", res.Logs[1])

	expected, _, err := env.program.Address(owner.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, expected, res.Address)

	rec := env.record(t, res.Address)
	assert.Equal(t, owner.PublicKey(), rec.Authority)
	assert.Equal(t, owner.PublicKey(), rec.SeedKey)
	assert.Equal(t, "Sara", rec.Artist)
	assert.Equal(t, uint8(10), rec.ArtistAgeAtCreation)
	assert.True(t, rec.IsEnshrined)
	assert.Equal(t, env.now.Load(), rec.CreationTimestamp)
	assert.Equal(t, env.now.Load(), rec.LastAuraUpdate)
	assert.Equal(t, legacy.AuraSereneDawn, rec.CurrentAura)

	byKey, addr, err := env.program.GetRecordBySeedKey(owner.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, res.Address, addr)
	assert.Equal(t, rec, byKey)

	projection, err := env.db.GetLegacyRecord(res.Address.Bytes(), nil)
	require.NoError(t, err)
	assert.Equal(t, "The Guardian of Cairo", projection.Title)
	assert.Equal(t, uint8(legacy.AuraSereneDawn), projection.CurrentAura)

	journal, err := env.program.Journal(res.Address, 0)
	require.NoError(t, err)
	require.Len(t, journal, 1)
	assert.True(t, journal[0].Success)
	assert.Equal(t, legacy.InstructionInitialize, journal[0].Instruction)
	assert.Equal(t, owner.PublicKey().Bytes(), journal[0].Signer)
}

func TestInitializeTwice(t *testing.T) {
	env := newTestEnv(t)
	owner := testSigner(1)
	addr := env.initialize(t, owner)
	before := env.record(t, addr)

	args := validArgs()
	args.Title = "Another"
	res, err := env.program.Initialize(context.Background(), owner.PublicKey(), args)
	require.ErrorIs(t, err, legacy.ErrRecordExists)
	assert.False(t, res.Success)
	assert.Equal(t, uint32(3000), res.ErrorCode)
	assert.Equal(t, before, env.record(t, addr))

	journal, err := env.program.Journal(addr, 0)
	require.NoError(t, err)
	require.Len(t, journal, 2)
	assert.False(t, journal[0].Success)
	assert.Equal(t, "AccountDiscriminatorAlreadySet", journal[0].ErrorName)
}

func TestInitializeValidationLeavesNoRecord(t *testing.T) {
	env := newTestEnv(t)
	owner := testSigner(1)
	args := validArgs()
	args.Title = strings.Repeat("x", legacy.MaxTitleLen+1)
	res, err := env.program.Initialize(context.Background(), owner.PublicKey(), args)
	require.ErrorIs(t, err, legacy.ErrTitleTooLong)
	assert.Equal(t, uint32(6001), res.ErrorCode)
	assert.Contains(t, res.Message, "title")

	_, err = env.program.GetRecord(res.Address)
	require.ErrorIs(t, err, legacy.ErrRecordNotFound)
	_, err = env.db.GetLegacyRecord(res.Address.Bytes(), nil)
	require.ErrorIs(t, err, models.ErrLegacyRecordNotFound)

	journal, err := env.program.Journal(res.Address, 0)
	require.NoError(t, err)
	require.Len(t, journal, 1)
	assert.Equal(t, uint32(6001), journal[0].ErrorCode)
}

func TestRefreshAura(t *testing.T) {
	env := newTestEnv(t)
	addr := env.initialize(t, testSigner(1))
	before := env.record(t, addr)

	env.setLocalHour(18)
	res, err := env.program.RefreshAura(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(
		t,
		[]string{"Aura updated: Serene Dawn -> Mystical Shadows (local hour: 18)"},
		res.Logs,
	)
	after := env.record(t, addr)
	assert.Equal(t, legacy.AuraMysticalShadows, after.CurrentAura)
	assert.Equal(t, env.now.Load(), after.LastAuraUpdate)

	// Nothing else moved
	expected := *before
	expected.CurrentAura = after.CurrentAura
	expected.LastAuraUpdate = after.LastAuraUpdate
	assert.Equal(t, &expected, after)

	// Same timestamp, same state
	_, err = env.program.RefreshAura(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, after, env.record(t, addr))

	// Later in the same local hour only the update time moves
	env.now.Add(30 * 60)
	_, err = env.program.RefreshAura(context.Background(), addr)
	require.NoError(t, err)
	later := env.record(t, addr)
	assert.Equal(t, legacy.AuraMysticalShadows, later.CurrentAura)
	assert.GreaterOrEqual(t, later.LastAuraUpdate, after.LastAuraUpdate)
	assert.Equal(t, env.now.Load(), later.LastAuraUpdate)
	expected.LastAuraUpdate = later.LastAuraUpdate
	assert.Equal(t, &expected, later)
}

func TestRefreshAuraIsPermissionless(t *testing.T) {
	env := newTestEnv(t)
	addr := env.initialize(t, testSigner(1))
	env.setLocalHour(23)

	signed, err := legacy.NewRefreshAuraInstruction(addr, 1).Sign(testSigner(7))
	require.NoError(t, err)
	res, err := env.program.Execute(context.Background(), signed)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, signed.SignatureString(), res.Signature)
	assert.Equal(t, legacy.AuraSilentGuardian, env.record(t, addr).CurrentAura)
}

func TestRefreshAuraNotFound(t *testing.T) {
	env := newTestEnv(t)
	res, err := env.program.RefreshAura(context.Background(), testSigner(5).PublicKey())
	require.ErrorIs(t, err, legacy.ErrRecordNotFound)
	assert.Equal(t, uint32(3012), res.ErrorCode)
}

func TestReadNarrative(t *testing.T) {
	env := newTestEnv(t)
	addr := env.initialize(t, testSigner(1))
	before := env.record(t, addr)

	res, err := env.program.ReadNarrative(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, "=== THE JOURNEY OF 'The Guardian of Cairo' ===", res.Logs[0])
	assert.Contains(t, res.Logs, "Artist: Sara, age 10 at creation")
	assert.Contains(t, res.Logs, "SANCTUARY: Cairo")
	assert.Contains(t, res.Logs, "Current Aura: Serene Dawn")
	assert.Contains(t, res.Logs, "Enshrined: Forever")
	assert.Equal(t, "Full story: "+validArgs().StoryHash, res.Logs[len(res.Logs)-1])
	assert.Equal(t, before, env.record(t, addr))
}

func TestGatedUpdates(t *testing.T) {
	env := newTestEnv(t)
	owner := testSigner(1)
	stranger := testSigner(2)
	addr := env.initialize(t, owner)
	ctx := context.Background()

	res, err := env.program.UpdateFamilyHome(ctx, owner.PublicKey(), addr, "Gothenburg")
	require.NoError(t, err)
	assert.Equal(t, []string{"Family home updated: Stockholm -> Gothenburg"}, res.Logs)
	_, err = env.program.UpdateStoryHash(ctx, owner.PublicKey(), addr, "ar://new-story")
	require.NoError(t, err)
	rec := env.record(t, addr)
	assert.Equal(t, "Gothenburg", rec.CurrentFamilyHome)
	assert.Equal(t, "ar://new-story", rec.StoryHash)

	// Exactly at the bound is allowed
	_, err = env.program.UpdateFamilyHome(ctx, owner.PublicKey(), addr, strings.Repeat("h", legacy.MaxCityLen))
	require.NoError(t, err)
	rec = env.record(t, addr)

	// Strangers are rejected before any validation
	_, err = env.program.UpdateFamilyHome(ctx, stranger.PublicKey(), addr, "Elsewhere")
	require.ErrorIs(t, err, legacy.ErrUnauthorized)
	_, err = env.program.UpdateStoryHash(ctx, stranger.PublicKey(), addr, strings.Repeat("x", 500))
	require.ErrorIs(t, err, legacy.ErrUnauthorized)

	_, err = env.program.UpdateFamilyHome(ctx, owner.PublicKey(), addr, strings.Repeat("x", legacy.MaxCityLen+1))
	require.ErrorIs(t, err, legacy.ErrCityNameTooLong)
	_, err = env.program.UpdateStoryHash(ctx, owner.PublicKey(), addr, strings.Repeat("x", legacy.MaxHashLen+1))
	require.ErrorIs(t, err, legacy.ErrHashTooLong)

	assert.Equal(t, rec, env.record(t, addr))
}

func TestTransferAuthority(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := testSigner(1)
	heir := testSigner(2)
	addr := env.initialize(t, owner)

	_, err := env.program.TransferAuthority(ctx, heir.PublicKey(), addr, heir.PublicKey())
	require.ErrorIs(t, err, legacy.ErrUnauthorized)
	_, err = env.program.TransferAuthority(ctx, owner.PublicKey(), addr, legacy.PublicKey{})
	require.ErrorIs(t, err, legacy.ErrInvalidAuthority)

	res, err := env.program.TransferAuthority(ctx, owner.PublicKey(), addr, heir.PublicKey())
	require.NoError(t, err)
	assert.Equal(
		t,
		[]string{"Authority transferred: " + owner.PublicKey().String() + " -> " + heir.PublicKey().String()},
		res.Logs,
	)
	rec := env.record(t, addr)
	assert.Equal(t, heir.PublicKey(), rec.Authority)
	assert.Equal(t, owner.PublicKey(), rec.SeedKey)

	// The old authority is locked out and the new one passes the gate
	_, err = env.program.UpdateFamilyHome(ctx, owner.PublicKey(), addr, "Lund")
	require.ErrorIs(t, err, legacy.ErrUnauthorized)
	_, err = env.program.UpdateFamilyHome(ctx, heir.PublicKey(), addr, "Lund")
	require.NoError(t, err)

	// Still addressed by the original seed key
	_, found, err := env.program.GetRecordBySeedKey(owner.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, addr, found)
	_, err = env.program.RefreshAura(ctx, addr)
	require.NoError(t, err)

	// The heir can still create a record of their own
	heirAddr := env.initialize(t, heir)
	assert.NotEqual(t, addr, heirAddr)
}

func TestImmutableFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := testSigner(1)
	heir := testSigner(2)
	addr := env.initialize(t, owner)
	before := env.record(t, addr)

	env.setLocalHour(14)
	_, err := env.program.RefreshAura(ctx, addr)
	require.NoError(t, err)
	_, err = env.program.UpdateFamilyHome(ctx, owner.PublicKey(), addr, "Uppsala")
	require.NoError(t, err)
	_, err = env.program.UpdateStoryHash(ctx, owner.PublicKey(), addr, "ipfs://other")
	require.NoError(t, err)
	_, err = env.program.TransferAuthority(ctx, owner.PublicKey(), addr, heir.PublicKey())
	require.NoError(t, err)

	after := env.record(t, addr)
	assert.Equal(t, before.SanctuaryLocation, after.SanctuaryLocation)
	assert.True(t, after.IsEnshrined)
	assert.Equal(t, before.CreationTimestamp, after.CreationTimestamp)
	assert.Equal(t, before.SeedKey, after.SeedKey)
	assert.Equal(t, before.Bump, after.Bump)
	assert.Equal(t, before.Title, after.Title)
	assert.Equal(t, before.Dedication, after.Dedication)
}

func TestSeedsConstraint(t *testing.T) {
	env := newTestEnv(t)
	addr := env.initialize(t, testSigner(1))
	data, err := env.db.GetLegacyAccount(addr.Bytes(), nil)
	require.NoError(t, err)

	// Place the same account under an address it does not derive to
	other := testSigner(3).PublicKey()
	txn := env.db.Transaction(true)
	require.NoError(t, txn.Do(func(txn *database.Txn) error {
		return env.db.SetLegacyAccount(
			other.Bytes(),
			data,
			&models.LegacyRecord{SeedKey: other.Bytes()},
			txn,
		)
	}))
	res, err := env.program.RefreshAura(context.Background(), other)
	require.ErrorIs(t, err, legacy.ErrSeedsConstraint)
	assert.Equal(t, uint32(2006), res.ErrorCode)
}

func TestExecute(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := testSigner(1)

	inst, err := legacy.NewInitializeInstruction(validArgs(), 1)
	require.NoError(t, err)
	signed, err := inst.Sign(owner)
	require.NoError(t, err)
	res, err := env.program.Execute(ctx, signed)
	require.NoError(t, err)
	addr := res.Address

	inst, err = legacy.NewUpdateStoryHashInstruction(addr, "ipfs://signed", 2)
	require.NoError(t, err)
	signed, err = inst.Sign(owner)
	require.NoError(t, err)
	_, err = env.program.Execute(ctx, signed)
	require.NoError(t, err)
	assert.Equal(t, "ipfs://signed", env.record(t, addr).StoryHash)

	inst, err = legacy.NewTransferAuthorityInstruction(addr, testSigner(2).PublicKey(), 3)
	require.NoError(t, err)
	signed, err = inst.Sign(owner)
	require.NoError(t, err)
	_, err = env.program.Execute(ctx, signed)
	require.NoError(t, err)
	assert.Equal(t, testSigner(2).PublicKey(), env.record(t, addr).Authority)

	signed, err = legacy.NewReadNarrativeInstruction(addr, 4).Sign(testSigner(9))
	require.NoError(t, err)
	res, err = env.program.Execute(ctx, signed)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Logs)

	journal, err := env.program.Journal(addr, 2)
	require.NoError(t, err)
	require.Len(t, journal, 2)
	assert.Equal(t, legacy.InstructionReadNarrative, journal[0].Instruction)
	assert.Equal(t, signed.SignatureString(), journal[0].Signature)
}

func TestExecuteRejectsReplay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := testSigner(1)
	heir := testSigner(2)
	addr := env.initialize(t, owner)

	submit := func(signer *legacy.Ed25519Signer, inst *legacy.Instruction) *legacy.SignedInstruction {
		signed, err := inst.Sign(signer)
		require.NoError(t, err)
		_, err = env.program.Execute(ctx, signed)
		require.NoError(t, err)
		return signed
	}

	inst, err := legacy.NewUpdateFamilyHomeInstruction(addr, "Stockholm", 1)
	require.NoError(t, err)
	toStockholm := submit(owner, inst)
	inst, err = legacy.NewUpdateFamilyHomeInstruction(addr, "Malmo", 2)
	require.NoError(t, err)
	submit(owner, inst)

	res, err := env.program.Execute(ctx, toStockholm)
	require.ErrorIs(t, err, legacy.ErrInstructionReplayed)
	assert.Equal(t, uint32(6009), res.ErrorCode)
	assert.Equal(t, "Malmo", env.record(t, addr).CurrentFamilyHome)

	// A fresh nonce repeats the operation legitimately
	inst, err = legacy.NewUpdateFamilyHomeInstruction(addr, "Stockholm", 3)
	require.NoError(t, err)
	submit(owner, inst)
	assert.Equal(t, "Stockholm", env.record(t, addr).CurrentFamilyHome)

	// Hand the record to the heir and back, then replay the first transfer
	inst, err = legacy.NewTransferAuthorityInstruction(addr, heir.PublicKey(), 4)
	require.NoError(t, err)
	toHeir := submit(owner, inst)
	inst, err = legacy.NewTransferAuthorityInstruction(addr, owner.PublicKey(), 5)
	require.NoError(t, err)
	submit(heir, inst)

	_, err = env.program.Execute(ctx, toHeir)
	require.ErrorIs(t, err, legacy.ErrInstructionReplayed)
	assert.Equal(t, owner.PublicKey(), env.record(t, addr).Authority)

	// The rejected replay is journaled as a failure
	journal, err := env.program.Journal(addr, 1)
	require.NoError(t, err)
	require.Len(t, journal, 1)
	assert.False(t, journal[0].Success)
	assert.Equal(t, toHeir.SignatureString(), journal[0].Signature)
	assert.Equal(t, "InstructionReplayed", journal[0].ErrorName)
}

func TestExecuteFailureDoesNotConsumeInstruction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := testSigner(1)

	// Refreshing a record that does not exist yet fails
	inst := legacy.NewRefreshAuraInstruction(env.initializeAddress(t, owner), 1)
	signed, err := inst.Sign(owner)
	require.NoError(t, err)
	_, err = env.program.Execute(ctx, signed)
	require.ErrorIs(t, err, legacy.ErrRecordNotFound)

	// The same submission succeeds once the record exists
	env.initialize(t, owner)
	res, err := env.program.Execute(ctx, signed)
	require.NoError(t, err)
	assert.True(t, res.Success)
	_, err = env.program.Execute(ctx, signed)
	require.ErrorIs(t, err, legacy.ErrInstructionReplayed)
}

func TestJournalPage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	addr := env.initialize(t, testSigner(1))
	for range 4 {
		_, err := env.program.RefreshAura(ctx, addr)
		require.NoError(t, err)
	}
	entries, total, err := env.program.JournalPage(
		addr,
		models.JournalQuery{Offset: 3, Limit: 10, Ascending: true},
	)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, entries, 2)
	assert.Equal(t, legacy.InstructionRefreshAura, entries[1].Instruction)

	entries, _, err = env.program.JournalPage(
		addr,
		models.JournalQuery{Offset: 4, Limit: 1},
	)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, legacy.InstructionInitialize, entries[0].Instruction)
}

func TestExecuteRejects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	signer := testSigner(1)

	// Signature by someone else
	signed, err := legacy.NewRefreshAuraInstruction(signer.PublicKey(), 1).Sign(signer)
	require.NoError(t, err)
	signed.Signer = testSigner(2).PublicKey()
	res, err := env.program.Execute(ctx, signed)
	require.ErrorIs(t, err, legacy.ErrInvalidSignature)
	assert.Equal(t, uint32(3010), res.ErrorCode)

	// Unknown instruction
	signed, err = (&legacy.Instruction{Name: "burn", Nonce: 1}).Sign(signer)
	require.NoError(t, err)
	res, err = env.program.Execute(ctx, signed)
	require.ErrorIs(t, err, legacy.ErrUnknownInstruction)
	assert.Equal(t, uint32(101), res.ErrorCode)

	// Payload that is not an instruction
	payload := []byte{0xff, 0x00}
	sig, err := signer.Sign(payload)
	require.NoError(t, err)
	res, err = env.program.Execute(ctx, &legacy.SignedInstruction{
		Signer:    signer.PublicKey(),
		Payload:   payload,
		Signature: sig,
	})
	require.ErrorIs(t, err, legacy.ErrInstructionDidNotDeserialize)
	assert.Equal(t, uint32(102), res.ErrorCode)

	// Address of the wrong size
	signed, err = (&legacy.Instruction{
		Name:    legacy.InstructionRefreshAura,
		Address: []byte{1, 2, 3},
	}).Sign(signer)
	require.NoError(t, err)
	_, err = env.program.Execute(ctx, signed)
	require.ErrorIs(t, err, legacy.ErrInstructionDidNotDeserialize)
}

func TestEventsPublishedAfterCommit(t *testing.T) {
	env := newTestEnv(t)
	_, initCh := env.bus.Subscribe(legacy.InitializedEventType)
	_, auraCh := env.bus.Subscribe(legacy.AuraRefreshedEventType)
	owner := testSigner(1)
	addr := env.initialize(t, owner)

	select {
	case evt := <-initCh:
		data, ok := evt.Data.(legacy.InitializedEvent)
		require.True(t, ok)
		assert.Equal(t, addr, data.Address)
		assert.Equal(t, owner.PublicKey(), data.Authority)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for initialized event")
	}

	// A failed instruction publishes nothing
	_, err := env.program.Initialize(context.Background(), owner.PublicKey(), validArgs())
	require.Error(t, err)
	select {
	case <-initCh:
		t.Fatal("unexpected event for failed instruction")
	default:
	}

	env.setLocalHour(13)
	_, err = env.program.RefreshAura(context.Background(), addr)
	require.NoError(t, err)
	select {
	case evt := <-auraCh:
		data, ok := evt.Data.(legacy.AuraRefreshedEvent)
		require.True(t, ok)
		assert.Equal(t, legacy.AuraSereneDawn, data.OldAura)
		assert.Equal(t, legacy.AuraGoldenRadiance, data.NewAura)
		assert.Equal(t, uint8(13), data.LocalHour)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for aura event")
	}
}

func TestConcurrentRefresh(t *testing.T) {
	env := newTestEnv(t)
	addr := env.initialize(t, testSigner(1))
	other := env.initialize(t, testSigner(2))

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			target := addr
			if i%2 == 1 {
				target = other
			}
			_, err := env.program.RefreshAura(context.Background(), target)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	journal, err := env.program.Journal(addr, 0)
	require.NoError(t, err)
	assert.Len(t, journal, 17)
}
