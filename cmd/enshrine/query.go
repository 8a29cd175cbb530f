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
	"errors"
	"log/slog"

	"github.com/blinklabs-io/enshrine/api"
	"github.com/blinklabs-io/enshrine/internal/config"
	"github.com/blinklabs-io/enshrine/legacy"
	"github.com/spf13/cobra"
)

func showCommand() *cobra.Command {
	var authorityArg string
	cmd := &cobra.Command{
		Use:   "show [address]",
		Short: "Show a stored record",
		Args:  cobra.MaximumNArgs(1),
		RunE: withProgram(func(cmd *cobra.Command, args []string, _ *config.Config, _ *slog.Logger, lp *localProgram) error {
			var rec *legacy.Record
			var addr legacy.PublicKey
			var err error
			switch {
			case len(args) == 1:
				addr, err = parseAddressArg(args[0])
				if err != nil {
					return err
				}
				rec, err = lp.program.GetRecord(addr)
			case authorityArg != "":
				var authority legacy.PublicKey
				authority, err = legacy.PublicKeyFromString(authorityArg)
				if err != nil {
					return err
				}
				rec, addr, err = lp.program.GetRecordBySeedKey(authority)
			default:
				return errors.New("give a record address or --authority")
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), api.RecordResponse{
				Record:    rec,
				Address:   addr,
				AuraLabel: rec.CurrentAura.String(),
			})
		}),
	}
	cmd.Flags().StringVar(&authorityArg, "authority", "", "look the record up by the key that created it")
	return cmd
}

func journalCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "journal <address>",
		Short: "Show the instructions executed against a record, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: withProgram(func(cmd *cobra.Command, args []string, _ *config.Config, _ *slog.Logger, lp *localProgram) error {
			addr, err := parseAddressArg(args[0])
			if err != nil {
				return err
			}
			entries, err := lp.program.Journal(addr, limit)
			if err != nil {
				return err
			}
			ret := make([]api.JournalEntryResponse, 0, len(entries))
			for _, entry := range entries {
				ret = append(ret, api.NewJournalEntryResponse(entry))
			}
			return printJSON(cmd.OutOrStdout(), ret)
		}),
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of entries, 0 for all")
	return cmd
}
