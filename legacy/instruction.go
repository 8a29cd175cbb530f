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
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"github.com/blinklabs-io/gouroboros/cbor"
)

// Instruction names, in the order of the operation table
const (
	InstructionInitialize        = "initialize_legacy"
	InstructionRefreshAura       = "update_visual_aura"
	InstructionReadNarrative     = "get_journey_narrative"
	InstructionUpdateFamilyHome  = "update_family_home"
	InstructionUpdateStoryHash   = "update_story_hash"
	InstructionTransferAuthority = "transfer_authority"
)

// Instruction is the unsigned body of a submission. Address is empty for
// initialize, where the target is derived from the signer.
type Instruction struct {
	cbor.StructAsArray
	Name    string
	Address []byte
	Args    []byte
	Nonce   uint64
}

type initializeArgsWire struct {
	cbor.StructAsArray
	Title             string
	Artist            string
	ArtistAge         uint8
	OriginCity        string
	SanctuaryLocation string
	CurrentFamilyHome string
	StoryHash         string
	Dedication        string
	PhysicalStatus    string
}

type stringArgWire struct {
	cbor.StructAsArray
	Value string
}

type keyArgWire struct {
	cbor.StructAsArray
	Key []byte
}

// NewInitializeInstruction builds an initialize_legacy instruction
func NewInitializeInstruction(args InitializeArgs, nonce uint64) (*Instruction, error) {
	argsCbor, err := cbor.Encode(&initializeArgsWire{
		Title:             args.Title,
		Artist:            args.Artist,
		ArtistAge:         args.ArtistAge,
		OriginCity:        args.OriginCity,
		SanctuaryLocation: args.SanctuaryLocation,
		CurrentFamilyHome: args.CurrentFamilyHome,
		StoryHash:         args.StoryHash,
		Dedication:        args.Dedication,
		PhysicalStatus:    args.PhysicalStatus,
	})
	if err != nil {
		return nil, err
	}
	return &Instruction{
		Name:  InstructionInitialize,
		Args:  argsCbor,
		Nonce: nonce,
	}, nil
}

// NewRefreshAuraInstruction builds an update_visual_aura instruction
func NewRefreshAuraInstruction(address PublicKey, nonce uint64) *Instruction {
	return &Instruction{
		Name:    InstructionRefreshAura,
		Address: address.Bytes(),
		Nonce:   nonce,
	}
}

// NewReadNarrativeInstruction builds a get_journey_narrative instruction
func NewReadNarrativeInstruction(address PublicKey, nonce uint64) *Instruction {
	return &Instruction{
		Name:    InstructionReadNarrative,
		Address: address.Bytes(),
		Nonce:   nonce,
	}
}

// NewUpdateFamilyHomeInstruction builds an update_family_home instruction
func NewUpdateFamilyHomeInstruction(
	address PublicKey,
	newHome string,
	nonce uint64,
) (*Instruction, error) {
	return newStringArgInstruction(InstructionUpdateFamilyHome, address, newHome, nonce)
}

// NewUpdateStoryHashInstruction builds an update_story_hash instruction
func NewUpdateStoryHashInstruction(
	address PublicKey,
	newHash string,
	nonce uint64,
) (*Instruction, error) {
	return newStringArgInstruction(InstructionUpdateStoryHash, address, newHash, nonce)
}

// NewTransferAuthorityInstruction builds a transfer_authority instruction
func NewTransferAuthorityInstruction(
	address PublicKey,
	newAuthority PublicKey,
	nonce uint64,
) (*Instruction, error) {
	argsCbor, err := cbor.Encode(&keyArgWire{Key: newAuthority.Bytes()})
	if err != nil {
		return nil, err
	}
	return &Instruction{
		Name:    InstructionTransferAuthority,
		Address: address.Bytes(),
		Args:    argsCbor,
		Nonce:   nonce,
	}, nil
}

func newStringArgInstruction(
	name string,
	address PublicKey,
	value string,
	nonce uint64,
) (*Instruction, error) {
	argsCbor, err := cbor.Encode(&stringArgWire{Value: value})
	if err != nil {
		return nil, err
	}
	return &Instruction{
		Name:    name,
		Address: address.Bytes(),
		Args:    argsCbor,
		Nonce:   nonce,
	}, nil
}

// Signer produces signatures for a single identity
type Signer interface {
	PublicKey() PublicKey
	Sign(message []byte) ([]byte, error)
}

// Sign encodes the instruction and signs it
func (i *Instruction) Sign(signer Signer) (*SignedInstruction, error) {
	payload, err := cbor.Encode(i)
	if err != nil {
		return nil, fmt.Errorf("encode instruction: %w", err)
	}
	sig, err := signer.Sign(payload)
	if err != nil {
		return nil, fmt.Errorf("sign instruction: %w", err)
	}
	return &SignedInstruction{
		Signer:    signer.PublicKey(),
		Payload:   payload,
		Signature: sig,
	}, nil
}

// SignedInstruction is what callers submit to the program
type SignedInstruction struct {
	Signer    PublicKey
	Payload   []byte
	Signature []byte
}

// SignatureString returns the hex form of the signature, used to identify
// the submission in logs and the journal
func (s *SignedInstruction) SignatureString() string {
	return hex.EncodeToString(s.Signature)
}

// Verifier authenticates the caller identity of a signed instruction
type Verifier interface {
	Verify(signer PublicKey, message, signature []byte) error
}

// Ed25519Verifier checks plain ed25519 signatures
type Ed25519Verifier struct{}

func (Ed25519Verifier) Verify(signer PublicKey, message, signature []byte) error {
	if len(signature) != ed25519.SignatureSize {
		return ErrInvalidSignature
	}
	if !ed25519.Verify(ed25519.PublicKey(signer[:]), message, signature) {
		return ErrInvalidSignature
	}
	return nil
}

// Ed25519Signer signs with an in-memory ed25519 private key
type Ed25519Signer struct {
	key ed25519.PrivateKey
}

func NewEd25519Signer(key ed25519.PrivateKey) *Ed25519Signer {
	return &Ed25519Signer{key: key}
}

func (s *Ed25519Signer) PublicKey() PublicKey {
	var ret PublicKey
	pub, ok := s.key.Public().(ed25519.PublicKey)
	if !ok {
		return ret
	}
	copy(ret[:], pub)
	return ret
}

func (s *Ed25519Signer) Sign(message []byte) ([]byte, error) {
	return ed25519.Sign(s.key, message), nil
}

func decodeInstruction(payload []byte) (*Instruction, error) {
	var ret Instruction
	if _, err := cbor.Decode(payload, &ret); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInstructionDidNotDeserialize, err)
	}
	return &ret, nil
}

func (i *Instruction) address() (PublicKey, error) {
	addr, err := PublicKeyFromBytes(i.Address)
	if err != nil {
		return addr, fmt.Errorf("%w: %w", ErrInstructionDidNotDeserialize, err)
	}
	return addr, nil
}

func (i *Instruction) initializeArgs() (InitializeArgs, error) {
	var tmp initializeArgsWire
	if _, err := cbor.Decode(i.Args, &tmp); err != nil {
		return InitializeArgs{}, fmt.Errorf("%w: %w", ErrInstructionDidNotDeserialize, err)
	}
	return InitializeArgs{
		Title:             tmp.Title,
		Artist:            tmp.Artist,
		ArtistAge:         tmp.ArtistAge,
		OriginCity:        tmp.OriginCity,
		SanctuaryLocation: tmp.SanctuaryLocation,
		CurrentFamilyHome: tmp.CurrentFamilyHome,
		StoryHash:         tmp.StoryHash,
		Dedication:        tmp.Dedication,
		PhysicalStatus:    tmp.PhysicalStatus,
	}, nil
}

func (i *Instruction) stringArg() (string, error) {
	var tmp stringArgWire
	if _, err := cbor.Decode(i.Args, &tmp); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInstructionDidNotDeserialize, err)
	}
	return tmp.Value, nil
}

func (i *Instruction) keyArg() (PublicKey, error) {
	var tmp keyArgWire
	if _, err := cbor.Decode(i.Args, &tmp); err != nil {
		return PublicKey{}, fmt.Errorf("%w: %w", ErrInstructionDidNotDeserialize, err)
	}
	key, err := PublicKeyFromBytes(tmp.Key)
	if err != nil {
		return PublicKey{}, fmt.Errorf("%w: %w", ErrInstructionDidNotDeserialize, err)
	}
	return key, nil
}
