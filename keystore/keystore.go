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

// Package keystore manages the ed25519 identity that signs legacy
// instructions. Keys are stored in JSON text envelopes with a cbor hex
// payload.
package keystore

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/blinklabs-io/enshrine/legacy"
)

var (
	ErrKeyNotLoaded     = errors.New("signing key not loaded")
	ErrInsecureFileMode = errors.New("insecure file permissions")
	ErrKeyFileExists    = errors.New("key file already exists")
	ErrKeyMismatch      = errors.New("public key does not match signing key seed")
)

type KeyStoreConfig struct {
	// SigningKeyPath is the path to the signing key file
	SigningKeyPath string
	Logger         *slog.Logger
}

// KeyStore holds a signing key loaded from disk
type KeyStore struct {
	config KeyStoreConfig
	logger *slog.Logger

	mu   sync.RWMutex
	seed []byte
	vkey legacy.PublicKey
}

func NewKeyStore(config KeyStoreConfig) *KeyStore {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &KeyStore{
		config: config,
		logger: config.Logger.With("component", "keystore"),
	}
}

// LoadFromFile loads the signing key from the configured path. The file
// must not be readable by group or other.
func (ks *KeyStore) LoadFromFile() error {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	key, err := loadKeyFromFile(ks.config.SigningKeyPath)
	if err != nil {
		return fmt.Errorf("failed to load signing key: %w", err)
	}
	ks.seed = key.Seed
	ks.vkey = key.VKey

	ks.logger.Info(
		"signing key loaded",
		"path", ks.config.SigningKeyPath,
		"public_key", ks.vkey.String(),
	)
	return nil
}

func (ks *KeyStore) IsLoaded() bool {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	return ks.seed != nil
}

// PublicKey returns the identity of the loaded key
func (ks *KeyStore) PublicKey() (legacy.PublicKey, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	if ks.seed == nil {
		return legacy.PublicKey{}, ErrKeyNotLoaded
	}
	return ks.vkey, nil
}

// Signer returns a signer for the loaded key, or nil if no key is loaded.
// The signer holds its own copy of the key.
func (ks *KeyStore) Signer() legacy.Signer {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	if ks.seed == nil {
		return nil
	}
	return legacy.NewEd25519Signer(ed25519.NewKeyFromSeed(ks.seed))
}

// GenerateKeyFiles creates a new key pair and writes the signing key to
// skeyPath with mode 0600 and the verification key to vkeyPath. A nil
// random source uses crypto/rand.
func GenerateKeyFiles(
	skeyPath string,
	vkeyPath string,
	random io.Reader,
) (legacy.PublicKey, error) {
	var ret legacy.PublicKey
	if random == nil {
		random = rand.Reader
	}
	pub, priv, err := ed25519.GenerateKey(random)
	if err != nil {
		return ret, fmt.Errorf("failed to generate key: %w", err)
	}
	copy(ret[:], pub)

	skeyData, err := encodeKeyEnvelope(SigningKeyType, "Legacy Signing Key", priv.Seed())
	if err != nil {
		return ret, err
	}
	vkeyData, err := encodeKeyEnvelope(VerificationKeyType, "Legacy Verification Key", pub)
	if err != nil {
		return ret, err
	}
	if err := writeKeyFile(skeyPath, skeyData, 0o600); err != nil {
		return ret, err
	}
	if err := restrictKeyFile(skeyPath); err != nil {
		return ret, fmt.Errorf("failed to restrict key file %q: %w", skeyPath, err)
	}
	if vkeyPath != "" {
		if err := writeKeyFile(vkeyPath, vkeyData, 0o644); err != nil {
			return ret, err
		}
	}
	return ret, nil
}
