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

package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	m, err := NewWithOptions(WithUser("portal"))
	require.NoError(t, err)
	assert.Equal(t, "localhost", m.conn.Host)
	assert.Equal(t, uint(5432), m.conn.Port)
	assert.Equal(t, "portal", m.conn.User)
	assert.Equal(t, "disable", m.conn.SSLMode)
	assert.NotNil(t, m.conn.Logger)
}

func TestConnString(t *testing.T) {
	m, err := NewWithOptions(WithPassword("secret"))
	require.NoError(t, err)
	assert.Equal(
		t,
		"host=localhost user=postgres password=secret dbname=enshrine port=5432 sslmode=disable TimeZone=UTC",
		m.connString(),
	)

	// An explicit DSN wins over the individual options
	m, err = NewWithOptions(
		WithHost("ignored"),
		WithDSN("  postgres://u:p@db:5432/enshrine  "),
	)
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/enshrine", m.connString())
}

func TestCloseWithoutStart(t *testing.T) {
	m, err := NewWithOptions()
	require.NoError(t, err)
	require.NoError(t, m.Close())
	require.NoError(t, m.Stop())
}
