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
	"errors"
	"fmt"
	"slices"

	"filippo.io/edwards25519"
	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/btcsuite/btcd/btcutil/base58"
)

const (
	PublicKeySize = 32

	// MaxSeeds and MaxSeedLength bound the inputs to address derivation
	MaxSeeds      = 16
	MaxSeedLength = 32

	programDerivedAddressMarker = "ProgramDerivedAddress"
)

// DefaultProgramID is the program identity used when none is configured
const DefaultProgramID = "DuusvRtdzX2epK2F2WGdDwCktWoCWHaLg6zWXjTmVPqA"

// LegacySeed is the static seed prefix for legacy record addresses
var LegacySeed = []byte("legacy")

var (
	ErrInvalidPublicKey = errors.New("invalid public key")
	ErrMaxSeedsExceeded = errors.New("too many derivation seeds")
	ErrMaxSeedLength    = errors.New("derivation seed too long")
	ErrAddressOnCurve   = errors.New("derived address lies on the ed25519 curve")
	ErrNoViableBumpSeed = errors.New("unable to find a viable bump seed")
)

// PublicKey is a 32-byte ed25519 public key. It is also used for record
// addresses, which share the same size and text form but lie off the curve.
type PublicKey [PublicKeySize]byte

func (k PublicKey) Bytes() []byte {
	return slices.Clone(k[:])
}

// String returns the base58 text form
func (k PublicKey) String() string {
	return base58.Encode(k[:])
}

// IsZero reports whether the key is the all-zero default key
func (k PublicKey) IsZero() bool {
	return k == PublicKey{}
}

func (k PublicKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *PublicKey) UnmarshalText(text []byte) error {
	tmpKey, err := PublicKeyFromString(string(text))
	if err != nil {
		return err
	}
	*k = tmpKey
	return nil
}

// PublicKeyFromBytes copies a 32-byte slice into a PublicKey
func PublicKeyFromBytes(data []byte) (PublicKey, error) {
	var ret PublicKey
	if len(data) != PublicKeySize {
		return ret, fmt.Errorf(
			"%w: expected %d bytes, got %d",
			ErrInvalidPublicKey,
			PublicKeySize,
			len(data),
		)
	}
	copy(ret[:], data)
	return ret, nil
}

// PublicKeyFromString parses the base58 text form of a key
func PublicKeyFromString(s string) (PublicKey, error) {
	data := base58.Decode(s)
	if len(data) == 0 && s != "" {
		return PublicKey{}, fmt.Errorf("%w: bad base58 %q", ErrInvalidPublicKey, s)
	}
	return PublicKeyFromBytes(data)
}

// MustPublicKey is PublicKeyFromString for constants known to be valid
func MustPublicKey(s string) PublicKey {
	k, err := PublicKeyFromString(s)
	if err != nil {
		panic(err)
	}
	return k
}

// CreateProgramAddress hashes the seeds together with the program ID and
// returns the result if it is not a valid curve point. The last seed is
// normally the bump.
func CreateProgramAddress(
	seeds [][]byte,
	programID PublicKey,
) (PublicKey, error) {
	if len(seeds) > MaxSeeds {
		return PublicKey{}, ErrMaxSeedsExceeded
	}
	var buf []byte
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return PublicKey{}, ErrMaxSeedLength
		}
		buf = append(buf, seed...)
	}
	buf = append(buf, programID[:]...)
	buf = append(buf, []byte(programDerivedAddressMarker)...)
	hash := lcommon.Blake2b256Hash(buf)
	if isOnCurve(hash.Bytes()) {
		return PublicKey{}, ErrAddressOnCurve
	}
	return PublicKeyFromBytes(hash.Bytes())
}

// FindProgramAddress searches bump values from 255 down and returns the
// first off-curve address along with the bump that produced it
func FindProgramAddress(
	seeds [][]byte,
	programID PublicKey,
) (PublicKey, uint8, error) {
	for bump := 255; bump >= 0; bump-- {
		tmpSeeds := slices.Concat(seeds, [][]byte{{byte(bump)}})
		addr, err := CreateProgramAddress(tmpSeeds, programID)
		if err == nil {
			return addr, uint8(bump), nil
		}
		if !errors.Is(err, ErrAddressOnCurve) {
			return PublicKey{}, 0, err
		}
	}
	return PublicKey{}, 0, ErrNoViableBumpSeed
}

// FindLegacyAddress derives the canonical record address for a creating
// identity
func FindLegacyAddress(
	seedKey PublicKey,
	programID PublicKey,
) (PublicKey, uint8, error) {
	return FindProgramAddress(
		[][]byte{LegacySeed, seedKey[:]},
		programID,
	)
}

// LegacyAddress recomputes a record address from a stored seed key and bump
func LegacyAddress(
	seedKey PublicKey,
	bump uint8,
	programID PublicKey,
) (PublicKey, error) {
	return CreateProgramAddress(
		[][]byte{LegacySeed, seedKey[:], {bump}},
		programID,
	)
}

func isOnCurve(data []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(data)
	return err == nil
}
