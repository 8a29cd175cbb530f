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

package keystore

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/blinklabs-io/enshrine/legacy"
	"github.com/blinklabs-io/gouroboros/cbor"
)

// Envelope types written by keygen
const (
	SigningKeyType      = "LegacySigningKey_ed25519"
	VerificationKeyType = "LegacyVerificationKey_ed25519"
)

// keyFileEnvelope is the JSON structure of a key file. It matches the
// text envelope used by cardano-cli.
type keyFileEnvelope struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	CborHex     string `json:"cborHex"`
}

// loadedKey holds the parsed contents of a key file
type loadedKey struct {
	Type        string
	Description string
	// Seed is only set for signing keys
	Seed []byte
	VKey legacy.PublicKey
}

// loadKeyFromFile loads a signing key from path. Returns ErrInsecureFileMode
// if the file is accessible to anyone but its owner.
//
// Permissions are checked on the open handle so the file that is checked is
// the file that is read.
func loadKeyFromFile(path string) (*loadedKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open key file %q: %w", path, err)
	}
	defer f.Close()

	if err := checkOpenFilePermissions(f); err != nil {
		return nil, err
	}

	// Valid key files are a few hundred bytes
	const maxKeyFileSize = 1 << 20
	data, err := io.ReadAll(io.LimitReader(f, maxKeyFileSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read key file %q: %w", path, err)
	}
	key, err := parseKeyEnvelope(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse key file %q: %w", path, err)
	}
	if key.Type != SigningKeyType {
		return nil, fmt.Errorf(
			"key file %q: expected %s, got %s",
			path,
			SigningKeyType,
			key.Type,
		)
	}
	return key, nil
}

// LoadVerificationKey reads a verification key file. Verification keys are
// public so the file mode is not checked.
func LoadVerificationKey(path string) (legacy.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return legacy.PublicKey{}, fmt.Errorf("failed to read key file %q: %w", path, err)
	}
	key, err := parseKeyEnvelope(data)
	if err != nil {
		return legacy.PublicKey{}, fmt.Errorf("failed to parse key file %q: %w", path, err)
	}
	// A signing key carries its verification key too
	return key.VKey, nil
}

func parseKeyEnvelope(fileBytes []byte) (*loadedKey, error) {
	var env keyFileEnvelope
	if err := json.Unmarshal(fileBytes, &env); err != nil {
		return nil, fmt.Errorf("could not parse key file envelope: %w", err)
	}
	cborData, err := hex.DecodeString(env.CborHex)
	if err != nil {
		return nil, fmt.Errorf("could not decode key from hex: %w", err)
	}
	var keyBytes []byte
	if _, err := cbor.Decode(cborData, &keyBytes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal key CBOR: %w", err)
	}
	lk := &loadedKey{
		Type:        env.Type,
		Description: env.Description,
	}
	switch env.Type {
	case SigningKeyType:
		seed, vkey, err := decodeSigningKey(keyBytes)
		if err != nil {
			return nil, err
		}
		lk.Seed = seed
		lk.VKey = vkey
	case VerificationKeyType:
		vkey, err := legacy.PublicKeyFromBytes(keyBytes)
		if err != nil {
			return nil, fmt.Errorf("invalid verification key: %w", err)
		}
		lk.VKey = vkey
	default:
		return nil, fmt.Errorf("unknown key type: %s", env.Type)
	}
	return lk, nil
}

// decodeSigningKey accepts either the bare seed or the seed followed by its
// public key. The public key is always derived from the seed.
func decodeSigningKey(keyBytes []byte) ([]byte, legacy.PublicKey, error) {
	var vkey legacy.PublicKey
	switch len(keyBytes) {
	case ed25519.SeedSize:
	case ed25519.PrivateKeySize:
		derived := ed25519.NewKeyFromSeed(keyBytes[:ed25519.SeedSize])
		if !bytes.Equal(derived.Public().(ed25519.PublicKey), keyBytes[ed25519.SeedSize:]) {
			return nil, vkey, ErrKeyMismatch
		}
	default:
		return nil, vkey, fmt.Errorf(
			"invalid signing key bytes: expected %d or %d, got %d",
			ed25519.SeedSize,
			ed25519.PrivateKeySize,
			len(keyBytes),
		)
	}
	seed := bytes.Clone(keyBytes[:ed25519.SeedSize])
	pub, ok := ed25519.NewKeyFromSeed(seed).Public().(ed25519.PublicKey)
	if !ok {
		return nil, vkey, errors.New("failed to derive public key")
	}
	copy(vkey[:], pub)
	return seed, vkey, nil
}

func encodeKeyEnvelope(keyType, description string, keyBytes []byte) ([]byte, error) {
	cborData, err := cbor.Encode(keyBytes)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(
		keyFileEnvelope{
			Type:        keyType,
			Description: description,
			CborHex:     hex.EncodeToString(cborData),
		},
		"",
		"    ",
	)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// writeKeyFile creates path with the given mode. Existing files are never
// overwritten.
func writeKeyFile(path string, data []byte, mode os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrKeyFileExists, path)
		}
		return fmt.Errorf("failed to create key file %q: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write key file %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write key file %q: %w", path, err)
	}
	return nil
}
