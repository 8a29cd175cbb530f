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
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/windows"
)

// Trustees that must not be granted access to a signing key, by SDDL
// abbreviation and by SID
var insecureSIDs = map[string]string{
	"WD":           "Everyone",
	"S-1-1-0":      "Everyone",
	"BU":           "BUILTIN\\Users",
	"S-1-5-32-545": "BUILTIN\\Users",
	"AU":           "Authenticated Users",
	"S-1-5-11":     "Authenticated Users",
}

// checkFilePermissions reads the DACL of path as SDDL and rejects it if it
// allows access to a broad group.
//
// The SDDL round trip avoids the unsafe package (see
// https://go.dev/issue/73199). The descriptor is not freed for the same
// reason; this only runs for a key file at startup.
func checkFilePermissions(path string) error {
	sd, err := windows.GetNamedSecurityInfo(
		path,
		windows.SE_FILE_OBJECT,
		windows.DACL_SECURITY_INFORMATION,
	)
	if err != nil {
		return fmt.Errorf("failed to get security info for %q: %w", path, err)
	}
	sddl := sd.String()
	if sddl == "" {
		return fmt.Errorf("failed to read security descriptor for %q", path)
	}
	return checkSDDL(path, sddl)
}

// checkOpenFilePermissions checks by name. NTFS does not allow replacing a
// file that is held open.
func checkOpenFilePermissions(f *os.File) error {
	return checkFilePermissions(f.Name())
}

func checkSDDL(path, sddl string) error {
	daclIdx := strings.Index(sddl, "D:")
	if daclIdx < 0 {
		return fmt.Errorf(
			"key file %q has no DACL (unrestricted access): %w",
			path,
			ErrInsecureFileMode,
		)
	}
	dacl := sddl[daclIdx+2:]
	if idx := strings.Index(dacl, "S:"); idx >= 0 {
		dacl = dacl[:idx]
	}
	for _, ace := range splitACEs(dacl) {
		// type;flags;rights;object;inherit;trustee
		fields := strings.Split(ace, ";")
		if len(fields) < 6 || fields[0] != "A" {
			continue
		}
		if name, ok := insecureSIDs[fields[5]]; ok {
			return fmt.Errorf(
				"key file %q grants access to %s: %w",
				path,
				name,
				ErrInsecureFileMode,
			)
		}
	}
	return nil
}

// splitACEs returns the parenthesised entries of a DACL string
func splitACEs(dacl string) []string {
	var ret []string
	for {
		start := strings.IndexByte(dacl, '(')
		if start < 0 {
			return ret
		}
		end := strings.IndexByte(dacl[start:], ')')
		if end < 0 {
			return ret
		}
		ret = append(ret, dacl[start+1:start+end])
		dacl = dacl[start+end+1:]
	}
}

// restrictKeyFile replaces the inherited DACL of path with one that only
// grants access to the current user
func restrictKeyFile(path string) error {
	var token windows.Token
	if err := windows.OpenProcessToken(
		windows.CurrentProcess(),
		windows.TOKEN_QUERY,
		&token,
	); err != nil {
		return fmt.Errorf("failed to open process token: %w", err)
	}
	defer token.Close()
	tokenUser, err := token.GetTokenUser()
	if err != nil {
		return fmt.Errorf("failed to get token user: %w", err)
	}
	sd, err := windows.SecurityDescriptorFromString(
		fmt.Sprintf("D:P(A;;GA;;;%s)", tokenUser.User.Sid.String()),
	)
	if err != nil {
		return err
	}
	dacl, _, err := sd.DACL()
	if err != nil {
		return err
	}
	return windows.SetNamedSecurityInfo(
		path,
		windows.SE_FILE_OBJECT,
		windows.DACL_SECURITY_INFORMATION|windows.PROTECTED_DACL_SECURITY_INFORMATION,
		nil,
		nil,
		dacl,
		nil,
	)
}
