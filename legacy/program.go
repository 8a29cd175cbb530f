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

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/blinklabs-io/enshrine/database"
	"github.com/blinklabs-io/enshrine/database/models"
	"github.com/blinklabs-io/enshrine/event"
	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	lockStripes = 64
	tracerName  = "github.com/blinklabs-io/enshrine/legacy"
)

var ErrNilDatabase = errors.New("legacy: database is required")

type ProgramConfig struct {
	Database     *database.Database
	EventBus     *event.EventBus
	Clock        Clock
	Verifier     Verifier
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	// ProgramID defaults to DefaultProgramID
	ProgramID PublicKey
}

// Program executes instructions against the records in the database
type Program struct {
	db        *database.Database
	eventBus  *event.EventBus
	clock     Clock
	verifier  Verifier
	logger    *slog.Logger
	metrics   *programMetrics
	programID PublicKey
	locks     [lockStripes]sync.Mutex
}

// InstructionResult reports the outcome of one instruction
type InstructionResult struct {
	Err         error     `json:"-"`
	Instruction string    `json:"instruction"`
	Signature   string    `json:"signature,omitempty"`
	ErrorName   string    `json:"errorName,omitempty"`
	Message     string    `json:"message,omitempty"`
	Logs        []string  `json:"logs"`
	Timestamp   int64     `json:"timestamp"`
	Address     PublicKey `json:"address"`
	ErrorCode   uint32    `json:"errorCode,omitempty"`
	Success     bool      `json:"success"`
}

func NewProgram(cfg ProgramConfig) (*Program, error) {
	if cfg.Database == nil {
		return nil, ErrNilDatabase
	}
	p := &Program{
		db:        cfg.Database,
		eventBus:  cfg.EventBus,
		clock:     cfg.Clock,
		verifier:  cfg.Verifier,
		logger:    cfg.Logger,
		programID: cfg.ProgramID,
	}
	if p.clock == nil {
		p.clock = SystemClock{}
	}
	if p.verifier == nil {
		p.verifier = Ed25519Verifier{}
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if p.programID.IsZero() {
		p.programID = MustPublicKey(DefaultProgramID)
	}
	if cfg.PromRegistry != nil {
		p.metrics = newProgramMetrics(cfg.PromRegistry)
	}
	return p, nil
}

// ProgramID returns the identity used for address derivation
func (p *Program) ProgramID() PublicKey {
	return p.programID
}

// Address returns the record address and bump for a creating identity
func (p *Program) Address(seedKey PublicKey) (PublicKey, uint8, error) {
	return FindLegacyAddress(seedKey, p.programID)
}

// GetRecord loads the record at address without journaling the read
func (p *Program) GetRecord(address PublicKey) (*Record, error) {
	txn := p.db.Transaction(false)
	defer txn.Release()
	return p.loadRecord(txn, address)
}

// GetRecordBySeedKey loads the record created by seedKey
func (p *Program) GetRecordBySeedKey(seedKey PublicKey) (*Record, PublicKey, error) {
	addr, _, err := p.Address(seedKey)
	if err != nil {
		return nil, PublicKey{}, err
	}
	rec, err := p.GetRecord(addr)
	return rec, addr, err
}

// Journal returns the most recent instruction outcomes for address
func (p *Program) Journal(address PublicKey, limit int) ([]models.JournalEntry, error) {
	return p.db.GetJournalEntries(address.Bytes(), limit, nil)
}

// JournalPage returns one page of the journal of address and the total
// number of entries it holds
func (p *Program) JournalPage(
	address PublicKey,
	query models.JournalQuery,
) ([]models.JournalEntry, int, error) {
	total, err := p.db.CountJournalEntries(address.Bytes(), nil)
	if err != nil {
		return nil, 0, err
	}
	entries, err := p.db.QueryJournalEntries(address.Bytes(), query, nil)
	if err != nil {
		return nil, 0, err
	}
	return entries, int(total), nil
}

// Execute verifies a signed instruction and runs it with the signer as the
// caller. A signer and payload pair is applied at most once; resubmitting
// it fails with ErrInstructionReplayed, so callers vary the nonce to repeat
// an operation.
func (p *Program) Execute(
	ctx context.Context,
	signed *SignedInstruction,
) (*InstructionResult, error) {
	if err := p.verifier.Verify(signed.Signer, signed.Payload, signed.Signature); err != nil {
		ret := &InstructionResult{
			Signature: signed.SignatureString(),
			Timestamp: p.clock.Now().Unix(),
		}
		ret.setError(err)
		return ret, err
	}
	ec := &execContext{
		caller:    signed.Signer,
		signature: signed.SignatureString(),
		digest:    instructionDigest(signed),
	}
	inst, err := decodeInstruction(signed.Payload)
	if err != nil {
		return p.failed(ctx, ec, err)
	}
	ec.name = inst.Name
	switch inst.Name {
	case InstructionInitialize:
		args, err := inst.initializeArgs()
		if err != nil {
			return p.failed(ctx, ec, err)
		}
		return p.initialize(ctx, ec, args)
	case InstructionRefreshAura, InstructionReadNarrative:
		addr, err := inst.address()
		if err != nil {
			return p.failed(ctx, ec, err)
		}
		ec.address = addr
		if inst.Name == InstructionRefreshAura {
			return p.run(ctx, ec, p.refreshAura)
		}
		return p.run(ctx, ec, p.readNarrative)
	case InstructionUpdateFamilyHome, InstructionUpdateStoryHash:
		addr, err := inst.address()
		if err != nil {
			return p.failed(ctx, ec, err)
		}
		ec.address = addr
		value, err := inst.stringArg()
		if err != nil {
			return p.failed(ctx, ec, err)
		}
		if inst.Name == InstructionUpdateFamilyHome {
			return p.run(ctx, ec, p.updateFamilyHome(value))
		}
		return p.run(ctx, ec, p.updateStoryHash(value))
	case InstructionTransferAuthority:
		addr, err := inst.address()
		if err != nil {
			return p.failed(ctx, ec, err)
		}
		ec.address = addr
		newAuthority, err := inst.keyArg()
		if err != nil {
			return p.failed(ctx, ec, err)
		}
		return p.run(ctx, ec, p.transferAuthority(newAuthority))
	default:
		return p.failed(
			ctx,
			ec,
			fmt.Errorf("%w: %q", ErrUnknownInstruction, inst.Name),
		)
	}
}

// Initialize creates the record of caller
func (p *Program) Initialize(
	ctx context.Context,
	caller PublicKey,
	args InitializeArgs,
) (*InstructionResult, error) {
	ec := &execContext{name: InstructionInitialize, caller: caller}
	return p.initialize(ctx, ec, args)
}

// RefreshAura recomputes the aura of the record at address from the current
// time. Anyone may call it
func (p *Program) RefreshAura(
	ctx context.Context,
	address PublicKey,
) (*InstructionResult, error) {
	ec := &execContext{name: InstructionRefreshAura, address: address}
	return p.run(ctx, ec, p.refreshAura)
}

// ReadNarrative returns the journey narrative of the record at address in
// the result logs
func (p *Program) ReadNarrative(
	ctx context.Context,
	address PublicKey,
) (*InstructionResult, error) {
	ec := &execContext{name: InstructionReadNarrative, address: address}
	return p.run(ctx, ec, p.readNarrative)
}

func (p *Program) UpdateFamilyHome(
	ctx context.Context,
	caller PublicKey,
	address PublicKey,
	newHome string,
) (*InstructionResult, error) {
	ec := &execContext{
		name:    InstructionUpdateFamilyHome,
		caller:  caller,
		address: address,
	}
	return p.run(ctx, ec, p.updateFamilyHome(newHome))
}

func (p *Program) UpdateStoryHash(
	ctx context.Context,
	caller PublicKey,
	address PublicKey,
	newHash string,
) (*InstructionResult, error) {
	ec := &execContext{
		name:    InstructionUpdateStoryHash,
		caller:  caller,
		address: address,
	}
	return p.run(ctx, ec, p.updateStoryHash(newHash))
}

// TransferAuthority hands the gated updates to newAuthority. The record
// keeps its address
func (p *Program) TransferAuthority(
	ctx context.Context,
	caller PublicKey,
	address PublicKey,
	newAuthority PublicKey,
) (*InstructionResult, error) {
	ec := &execContext{
		name:    InstructionTransferAuthority,
		caller:  caller,
		address: address,
	}
	return p.run(ctx, ec, p.transferAuthority(newAuthority))
}

type execContext struct {
	name      string
	signature string
	logs      []string
	events    []event.Event
	now       int64
	caller    PublicKey
	address   PublicKey
	// digest is set for signed submissions only
	digest []byte
}

func (ec *execContext) log(format string, args ...any) {
	ec.logs = append(ec.logs, fmt.Sprintf(format, args...))
}

func (ec *execContext) emit(eventType event.EventType, data any) {
	ec.events = append(ec.events, event.NewEvent(eventType, data))
}

type opFunc func(*database.Txn, *execContext) error

func (p *Program) initialize(
	ctx context.Context,
	ec *execContext,
	args InitializeArgs,
) (*InstructionResult, error) {
	addr, bump, err := p.Address(ec.caller)
	if err != nil {
		return p.failed(ctx, ec, err)
	}
	ec.address = addr
	return p.run(ctx, ec, func(txn *database.Txn, ec *execContext) error {
		exists, err := p.db.LegacyAccountExists(addr.Bytes(), txn)
		if err != nil {
			return err
		}
		if exists {
			return ErrRecordExists
		}
		if err := args.Validate(); err != nil {
			return err
		}
		rec := &Record{
			Authority:           ec.caller,
			Title:               args.Title,
			Artist:              args.Artist,
			ArtistAgeAtCreation: args.ArtistAge,
			OriginCity:          args.OriginCity,
			SanctuaryLocation:   args.SanctuaryLocation,
			CurrentFamilyHome:   args.CurrentFamilyHome,
			CreationTimestamp:   ec.now,
			StoryHash:           args.StoryHash,
			Dedication:          args.Dedication,
			IsEnshrined:         true,
			PhysicalStatus:      args.PhysicalStatus,
			CurrentAura:         AuraAt(ec.now),
			LastAuraUpdate:      ec.now,
			Bump:                bump,
			SeedKey:             ec.caller,
		}
		if err := p.saveRecord(txn, addr, rec); err != nil {
			return err
		}
		ec.log("Legacy initialized: %s", rec.Title)
		ec.log("Sanctuary: %s - Forever enshrined", rec.SanctuaryLocation)
		ec.emit(InitializedEventType, InitializedEvent{
			Address:   addr,
			Authority: rec.Authority,
			Title:     rec.Title,
			Aura:      rec.CurrentAura,
			Timestamp: ec.now,
		})
		return nil
	})
}

func (p *Program) refreshAura(txn *database.Txn, ec *execContext) error {
	rec, err := p.loadRecord(txn, ec.address)
	if err != nil {
		return err
	}
	oldAura := rec.CurrentAura
	hour := LocalHour(ec.now)
	rec.CurrentAura = AuraForHour(hour)
	rec.LastAuraUpdate = ec.now
	if err := p.saveRecord(txn, ec.address, rec); err != nil {
		return err
	}
	ec.log("Aura updated: %s -> %s (local hour: %d)", oldAura, rec.CurrentAura, hour)
	ec.emit(AuraRefreshedEventType, AuraRefreshedEvent{
		Address:   ec.address,
		OldAura:   oldAura,
		NewAura:   rec.CurrentAura,
		Timestamp: ec.now,
		LocalHour: hour,
	})
	return nil
}

func (p *Program) readNarrative(txn *database.Txn, ec *execContext) error {
	rec, err := p.loadRecord(txn, ec.address)
	if err != nil {
		return err
	}
	ec.logs = append(ec.logs, Narrative(rec)...)
	ec.emit(NarrativeReadEventType, NarrativeReadEvent{Address: ec.address})
	return nil
}

func (p *Program) updateFamilyHome(newHome string) opFunc {
	return func(txn *database.Txn, ec *execContext) error {
		rec, err := p.loadAuthorized(txn, ec)
		if err != nil {
			return err
		}
		if err := validateFamilyHome(newHome); err != nil {
			return err
		}
		oldHome := rec.CurrentFamilyHome
		rec.CurrentFamilyHome = newHome
		if err := p.saveRecord(txn, ec.address, rec); err != nil {
			return err
		}
		ec.log("Family home updated: %s -> %s", oldHome, newHome)
		ec.emit(FamilyHomeUpdatedEventType, FamilyHomeUpdatedEvent{
			Address: ec.address,
			OldHome: oldHome,
			NewHome: newHome,
		})
		return nil
	}
}

func (p *Program) updateStoryHash(newHash string) opFunc {
	return func(txn *database.Txn, ec *execContext) error {
		rec, err := p.loadAuthorized(txn, ec)
		if err != nil {
			return err
		}
		if err := validateStoryHash(newHash); err != nil {
			return err
		}
		oldHash := rec.StoryHash
		rec.StoryHash = newHash
		if err := p.saveRecord(txn, ec.address, rec); err != nil {
			return err
		}
		ec.log("Story hash updated: %s -> %s", oldHash, newHash)
		ec.emit(StoryHashUpdatedEventType, StoryHashUpdatedEvent{
			Address: ec.address,
			OldHash: oldHash,
			NewHash: newHash,
		})
		return nil
	}
}

func (p *Program) transferAuthority(newAuthority PublicKey) opFunc {
	return func(txn *database.Txn, ec *execContext) error {
		rec, err := p.loadAuthorized(txn, ec)
		if err != nil {
			return err
		}
		if newAuthority.IsZero() {
			return ErrInvalidAuthority
		}
		oldAuthority := rec.Authority
		rec.Authority = newAuthority
		if err := p.saveRecord(txn, ec.address, rec); err != nil {
			return err
		}
		ec.log("Authority transferred: %s -> %s", oldAuthority, newAuthority)
		ec.emit(AuthorityTransferredEventType, AuthorityTransferredEvent{
			Address:      ec.address,
			OldAuthority: oldAuthority,
			NewAuthority: newAuthority,
		})
		return nil
	}
}

// loadRecord reads and decodes the record at address and checks that the
// stored seed key and bump reproduce it
func (p *Program) loadRecord(txn *database.Txn, address PublicKey) (*Record, error) {
	data, err := p.db.GetLegacyAccount(address.Bytes(), txn)
	if err != nil {
		if errors.Is(err, models.ErrLegacyRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	rec, err := UnmarshalAccount(data)
	if err != nil {
		return nil, err
	}
	derived, err := LegacyAddress(rec.SeedKey, rec.Bump, p.programID)
	if err != nil || derived != address {
		return nil, ErrSeedsConstraint
	}
	return rec, nil
}

func (p *Program) loadAuthorized(txn *database.Txn, ec *execContext) (*Record, error) {
	rec, err := p.loadRecord(txn, ec.address)
	if err != nil {
		return nil, err
	}
	if rec.Authority != ec.caller {
		return nil, ErrUnauthorized
	}
	return rec, nil
}

func (p *Program) saveRecord(txn *database.Txn, address PublicKey, rec *Record) error {
	data, err := MarshalAccount(rec)
	if err != nil {
		return err
	}
	return p.db.SetLegacyAccount(
		address.Bytes(),
		data,
		&models.LegacyRecord{
			Authority:         rec.Authority.Bytes(),
			SeedKey:           rec.SeedKey.Bytes(),
			Title:             rec.Title,
			Artist:            rec.Artist,
			CurrentFamilyHome: rec.CurrentFamilyHome,
			StoryHash:         rec.StoryHash,
			CreationTimestamp: rec.CreationTimestamp,
			LastAuraUpdate:    rec.LastAuraUpdate,
			CurrentAura:       uint8(rec.CurrentAura),
			IsEnshrined:       rec.IsEnshrined,
		},
		txn,
	)
}

func (p *Program) lockFor(address PublicKey) *sync.Mutex {
	idx := binary.LittleEndian.Uint64(address[:8]) % lockStripes
	return &p.locks[idx]
}

// failed records an instruction that was rejected before reaching the
// record
func (p *Program) failed(
	ctx context.Context,
	ec *execContext,
	err error,
) (*InstructionResult, error) {
	return p.run(ctx, ec, func(*database.Txn, *execContext) error {
		return err
	})
}

// run executes op in one transaction under the address lock. A successful
// op is journaled in the same transaction. A failed op is rolled back and
// journaled on its own, so the record is left untouched
func (p *Program) run(
	ctx context.Context,
	ec *execContext,
	op opFunc,
) (*InstructionResult, error) {
	_, span := otel.Tracer(tracerName).Start(ctx, "legacy."+ec.name)
	defer span.End()
	span.SetAttributes(
		attribute.String("legacy.address", ec.address.String()),
		attribute.String("legacy.instruction", ec.name),
	)
	start := time.Now()

	lock := p.lockFor(ec.address)
	lock.Lock()
	ec.now = p.clock.Now().Unix()
	txn := p.db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		if err := p.claimDigest(txn, ec); err != nil {
			return err
		}
		if err := op(txn, ec); err != nil {
			return err
		}
		return p.db.AddJournalEntry(p.journalEntry(ec, nil), txn)
	})
	if err != nil {
		journalTxn := p.db.Transaction(true)
		journalErr := journalTxn.Do(func(txn *database.Txn) error {
			return p.db.AddJournalEntry(p.journalEntry(ec, err), txn)
		})
		if journalErr != nil {
			p.logger.Error(
				"failed to journal instruction failure",
				"component", "legacy",
				"instruction", ec.name,
				"error", journalErr,
			)
		}
	}
	lock.Unlock()

	ret := &InstructionResult{
		Instruction: ec.name,
		Signature:   ec.signature,
		Logs:        ec.logs,
		Timestamp:   ec.now,
		Address:     ec.address,
		Success:     err == nil,
	}
	p.metrics.observe(ec.name, err, time.Since(start).Seconds())
	if err != nil {
		ret.setError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.Debug(
			"instruction failed",
			"component", "legacy",
			"instruction", ec.name,
			"address", ec.address.String(),
			"error", err,
		)
		return ret, err
	}
	if ret.Logs == nil {
		ret.Logs = []string{}
	}
	p.logger.Info(
		"instruction executed",
		"component", "legacy",
		"instruction", ec.name,
		"address", ec.address.String(),
	)
	if p.eventBus != nil {
		for _, evt := range ec.events {
			p.eventBus.Publish(evt.Type, evt)
		}
	}
	return ret, nil
}

// claimDigest rejects a signed instruction that was already applied and
// marks it applied otherwise. The mark commits only with the instruction.
func (p *Program) claimDigest(txn *database.Txn, ec *execContext) error {
	if ec.digest == nil {
		return nil
	}
	seen, err := p.db.InstructionProcessed(ec.digest, txn)
	if err != nil {
		return err
	}
	if seen {
		return ErrInstructionReplayed
	}
	return p.db.MarkInstructionProcessed(
		&models.ProcessedInstruction{
			Digest:    ec.digest,
			Signer:    ec.caller.Bytes(),
			Timestamp: ec.now,
		},
		txn,
	)
}

// instructionDigest identifies a submission by signer and payload, so a
// second signature over the same payload is still a replay
func instructionDigest(signed *SignedInstruction) []byte {
	return lcommon.Blake2b256Hash(
		slices.Concat(signed.Signer[:], signed.Payload),
	).Bytes()
}

func (p *Program) journalEntry(ec *execContext, err error) *models.JournalEntry {
	entry := &models.JournalEntry{
		Address:     ec.address.Bytes(),
		Instruction: ec.name,
		Signature:   ec.signature,
		Logs:        strings.Join(ec.logs, "\n"),
		Timestamp:   ec.now,
		Success:     err == nil,
	}
	if !ec.caller.IsZero() {
		entry.Signer = ec.caller.Bytes()
	}
	if err != nil {
		entry.ErrorCode = ErrorCode(err)
		entry.ErrorName = ErrorName(err)
		// Failed instructions keep no logs
		entry.Logs = ""
	}
	return entry
}

func (r *InstructionResult) setError(err error) {
	r.Err = err
	r.Success = false
	r.Message = err.Error()
	r.ErrorCode = ErrorCode(err)
	r.ErrorName = ErrorName(err)
	r.Logs = nil
}
