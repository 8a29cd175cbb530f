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
	"crypto/ed25519"
	"testing"

	"github.com/blinklabs-io/enshrine/legacy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSigner(seed byte) *legacy.Ed25519Signer {
	keySeed := make([]byte, ed25519.SeedSize)
	for i := range keySeed {
		keySeed[i] = seed
	}
	return legacy.NewEd25519Signer(ed25519.NewKeyFromSeed(keySeed))
}

func TestFindLegacyAddress(t *testing.T) {
	programID := legacy.MustPublicKey(legacy.DefaultProgramID)
	seedKey := testSigner(1).PublicKey()

	addr, bump, err := legacy.FindLegacyAddress(seedKey, programID)
	require.NoError(t, err)
	assert.False(t, addr.IsZero())
	assert.NotEqual(t, seedKey, addr)

	// Stored seed key and bump reproduce the address
	again, err := legacy.LegacyAddress(seedKey, bump, programID)
	require.NoError(t, err)
	assert.Equal(t, addr, again)

	// Derivation is deterministic and depends on every input
	addr2, bump2, err := legacy.FindLegacyAddress(seedKey, programID)
	require.NoError(t, err)
	assert.Equal(t, addr, addr2)
	assert.Equal(t, bump, bump2)
	other, _, err := legacy.FindLegacyAddress(testSigner(2).PublicKey(), programID)
	require.NoError(t, err)
	assert.NotEqual(t, addr, other)
	otherProgram, _, err := legacy.FindLegacyAddress(seedKey, testSigner(3).PublicKey())
	require.NoError(t, err)
	assert.NotEqual(t, addr, otherProgram)
}

func TestBumpSearchSkipsCurvePoints(t *testing.T) {
	programID := legacy.MustPublicKey(legacy.DefaultProgramID)
	for i := range 20 {
		seedKey := testSigner(byte(i)).PublicKey()
		_, bump, err := legacy.FindLegacyAddress(seedKey, programID)
		require.NoError(t, err)
		// Every higher bump must have produced an on-curve candidate
		for higher := 255; higher > int(bump); higher-- {
			_, err := legacy.LegacyAddress(seedKey, uint8(higher), programID)
			require.ErrorIs(t, err, legacy.ErrAddressOnCurve)
		}
	}
}

func TestCreateProgramAddressLimits(t *testing.T) {
	programID := legacy.MustPublicKey(legacy.DefaultProgramID)
	_, err := legacy.CreateProgramAddress([][]byte{make([]byte, 33)}, programID)
	require.ErrorIs(t, err, legacy.ErrMaxSeedLength)
	_, err = legacy.CreateProgramAddress(make([][]byte, 17), programID)
	require.ErrorIs(t, err, legacy.ErrMaxSeedsExceeded)
}

func TestPublicKeyText(t *testing.T) {
	key := legacy.MustPublicKey(legacy.DefaultProgramID)
	assert.Equal(t, legacy.DefaultProgramID, key.String())
	text, err := key.MarshalText()
	require.NoError(t, err)
	var parsed legacy.PublicKey
	require.NoError(t, parsed.UnmarshalText(text))
	assert.Equal(t, key, parsed)

	_, err = legacy.PublicKeyFromString("0OIl")
	require.ErrorIs(t, err, legacy.ErrInvalidPublicKey)
	_, err = legacy.PublicKeyFromString("abc")
	require.ErrorIs(t, err, legacy.ErrInvalidPublicKey)
	_, err = legacy.PublicKeyFromBytes(make([]byte, 31))
	require.ErrorIs(t, err, legacy.ErrInvalidPublicKey)
	assert.True(t, legacy.PublicKey{}.IsZero())
}
