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

package enshrine

import (
	"context"
	"crypto/ed25519"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/blinklabs-io/enshrine/legacy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2023-11-14 00:00 UTC
const testDay int64 = 86400 * 19675

type testClock struct {
	now atomic.Int64
}

func (c *testClock) setLocalHour(hour int64) {
	c.now.Store(testDay + hour*3600 - legacy.LocalUTCOffsetSeconds)
}

func (c *testClock) Now() time.Time {
	return time.Unix(c.now.Load(), 0)
}

func testSigner() *legacy.Ed25519Signer {
	seed := make([]byte, ed25519.SeedSize)
	seed[0] = 7
	return legacy.NewEd25519Signer(ed25519.NewKeyFromSeed(seed))
}

func testArgs() legacy.InitializeArgs {
	return legacy.InitializeArgs{
		Title:             "The Guardian of Cairo",
		Artist:            "Sara",
		ArtistAge:         10,
		OriginCity:        "Malmo",
		SanctuaryLocation: "Cairo",
		CurrentFamilyHome: "Stockholm",
		StoryHash:         "ipfs://story",
		Dedication:        "For grandmother",
		PhysicalStatus:    "Framed",
	}
}

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	assert.NotNil(t, cfg.logger)
	assert.Equal(t, DefaultShutdownTimeout, cfg.shutdownTimeout)
	assert.Empty(t, cfg.apiListenAddress)
	assert.Zero(t, cfg.auraRefreshInterval)
}

func TestNewInvalidConfig(t *testing.T) {
	_, err := New(NewConfig(WithAuraRefreshInterval(-time.Second)))
	require.Error(t, err)
	_, err = New(
		NewConfig(WithAuraRefreshAddresses(testSigner().PublicKey())),
	)
	require.Error(t, err)
	_, err = New(NewConfig(WithShutdownTimeout(-time.Second)))
	require.Error(t, err)
}

func TestNodeStartStop(t *testing.T) {
	n, err := New(
		NewConfig(
			WithApiListenAddress("127.0.0.1:0"),
			WithPrometheusRegistry(prometheus.NewRegistry()),
			WithShutdownTimeout(5*time.Second),
		),
	)
	require.NoError(t, err)
	assert.Nil(t, n.Program())
	require.NoError(t, n.Start(context.Background()))
	require.ErrorIs(t, n.Start(context.Background()), ErrNodeStarted)
	require.NotNil(t, n.Program())
	require.NotNil(t, n.EventBus())
	assert.Equal(t, legacy.DefaultProgramID, n.Program().ProgramID().String())

	addr := n.ApiAddr()
	require.NotEmpty(t, addr)
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + addr + "/health")
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	client.CloseIdleConnections()

	require.NoError(t, n.Stop())
	require.NoError(t, n.Stop())
	assert.Empty(t, n.ApiAddr())
}

func TestNodeRunStopsOnCancel(t *testing.T) {
	n, err := New(NewConfig())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- n.Run(ctx)
	}()
	require.Eventually(
		t,
		func() bool { return n.Program() != nil },
		5*time.Second,
		10*time.Millisecond,
	)
	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("node did not stop")
	}
}

func TestNodeStartBadPlugin(t *testing.T) {
	n, err := New(NewConfig(WithBlobPlugin("nosuchplugin")))
	require.NoError(t, err)
	require.Error(t, n.Start(context.Background()))
	// Stopping after a failed start is a no-op
	require.NoError(t, n.Stop())
}

func TestAuraRefresher(t *testing.T) {
	clock := &testClock{}
	clock.setLocalHour(9)
	n, err := New(
		NewConfig(
			WithClock(clock),
			WithAuraRefreshInterval(10*time.Millisecond),
		),
	)
	require.NoError(t, err)
	require.NoError(t, n.Start(context.Background()))
	defer func() {
		require.NoError(t, n.Stop())
	}()

	owner := testSigner()
	res, err := n.Program().Initialize(
		context.Background(),
		owner.PublicKey(),
		testArgs(),
	)
	require.NoError(t, err)
	rec, err := n.Program().GetRecord(res.Address)
	require.NoError(t, err)
	require.Equal(t, legacy.AuraSereneDawn, rec.CurrentAura)

	clock.setLocalHour(18)
	require.Eventually(
		t,
		func() bool {
			rec, err := n.Program().GetRecord(res.Address)
			return err == nil && rec.CurrentAura == legacy.AuraMysticalShadows
		},
		5*time.Second,
		10*time.Millisecond,
	)
	entries, err := n.Program().Journal(res.Address, 0)
	require.NoError(t, err)
	assert.Greater(t, len(entries), 1)
}

func TestAuraRefresherConfiguredAddresses(t *testing.T) {
	clock := &testClock{}
	clock.setLocalHour(9)
	other := legacy.NewEd25519Signer(
		ed25519.NewKeyFromSeed(make([]byte, ed25519.SeedSize)),
	)
	n, err := New(NewConfig(WithClock(clock)))
	require.NoError(t, err)
	require.NoError(t, n.Start(context.Background()))
	defer func() {
		require.NoError(t, n.Stop())
	}()
	ctx := context.Background()
	first, err := n.Program().Initialize(ctx, testSigner().PublicKey(), testArgs())
	require.NoError(t, err)
	second, err := n.Program().Initialize(ctx, other.PublicKey(), testArgs())
	require.NoError(t, err)

	clock.setLocalHour(13)
	r := newAuraRefresher(
		n.Program(),
		n.db,
		n.Logger(),
		time.Hour,
		[]legacy.PublicKey{first.Address},
	)
	r.refreshAll(ctx)
	rec, err := n.Program().GetRecord(first.Address)
	require.NoError(t, err)
	assert.Equal(t, legacy.AuraGoldenRadiance, rec.CurrentAura)
	rec, err = n.Program().GetRecord(second.Address)
	require.NoError(t, err)
	assert.Equal(t, legacy.AuraSereneDawn, rec.CurrentAura)

	// With no addresses every known record is refreshed
	targets, err := newAuraRefresher(
		n.Program(),
		n.db,
		n.Logger(),
		time.Hour,
		nil,
	).targets()
	require.NoError(t, err)
	assert.ElementsMatch(
		t,
		[]legacy.PublicKey{first.Address, second.Address},
		targets,
	)
}
