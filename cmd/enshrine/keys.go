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

package main

import (
	"crypto/rand"
	"errors"

	"github.com/blinklabs-io/enshrine/api"
	"github.com/blinklabs-io/enshrine/keystore"
	"github.com/blinklabs-io/enshrine/legacy"
	"github.com/spf13/cobra"
)

func keygenCommand() *cobra.Command {
	var skeyPath, vkeyPath string
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an authority signing key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := keystore.GenerateKeyFiles(skeyPath, vkeyPath, rand.Reader)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"publicKey":       pub,
				"signingKey":      skeyPath,
				"verificationKey": vkeyPath,
			})
		},
	}
	cmd.Flags().StringVar(&skeyPath, "signing-key", "authority.skey", "path of the signing key file to create")
	cmd.Flags().StringVar(&vkeyPath, "verification-key", "authority.vkey", "path of the verification key file to create, empty to skip")
	return cmd
}

func addressCommand() *cobra.Command {
	var vkeyPath string
	cmd := &cobra.Command{
		Use:   "address [authority]",
		Short: "Derive the record address of an authority",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromCommand(cmd)
			if err != nil {
				return err
			}
			var authority legacy.PublicKey
			switch {
			case len(args) == 1:
				authority, err = legacy.PublicKeyFromString(args[0])
			case vkeyPath != "":
				authority, err = keystore.LoadVerificationKey(vkeyPath)
			default:
				err = errors.New("give an authority key or --verification-key")
			}
			if err != nil {
				return err
			}
			programID, err := cfg.ProgramID()
			if err != nil {
				return err
			}
			addr, bump, err := legacy.FindLegacyAddress(authority, programID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), api.AuthorityAddressResponse{
				Authority: authority,
				Address:   addr,
				ProgramID: programID,
				Bump:      bump,
			})
		},
	}
	cmd.Flags().StringVar(&vkeyPath, "verification-key", "", "read the authority from a verification key file")
	return cmd
}
