//go:build windows

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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/windows"
)

func setDACL(t *testing.T, path string, sddl string) {
	t.Helper()
	sd, err := windows.SecurityDescriptorFromString(sddl)
	require.NoError(t, err)
	dacl, _, err := sd.DACL()
	require.NoError(t, err)
	require.NoError(t, windows.SetNamedSecurityInfo(
		path,
		windows.SE_FILE_OBJECT,
		windows.DACL_SECURITY_INFORMATION,
		nil, nil, dacl, nil,
	))
}

func TestInsecureDACL(t *testing.T) {
	tests := []struct {
		sddl    string
		trustee string
	}{
		{"D:(A;;GR;;;WD)", "Everyone"},
		{"D:(A;;GR;;;BU)", "BUILTIN\\Users"},
		{"D:(A;;GR;;;AU)", "Authenticated Users"},
	}
	for _, test := range tests {
		t.Run(test.trustee, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "test.skey")
			require.NoError(t, os.WriteFile(path, []byte("test"), 0o600))
			setDACL(t, path, test.sddl)
			err := checkFilePermissions(path)
			require.ErrorIs(t, err, ErrInsecureFileMode)
			assert.Contains(t, err.Error(), test.trustee)
		})
	}
}

func TestRestrictKeyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.skey")
	require.NoError(t, os.WriteFile(path, []byte("test"), 0o600))
	// Inherited ACLs usually include BUILTIN\Users
	require.NoError(t, restrictKeyFile(path))
	assert.NoError(t, checkFilePermissions(path))
}

func TestCheckSDDLDenyIgnored(t *testing.T) {
	assert.NoError(t, checkSDDL("x", "D:(D;;GA;;;WD)"))
	assert.ErrorIs(t, checkSDDL("x", "O:BA"), ErrInsecureFileMode)
}
