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
	"log/slog"

	"github.com/blinklabs-io/enshrine/internal/config"
	"github.com/blinklabs-io/enshrine/legacy"
	"github.com/spf13/cobra"
)

func initCommand() *cobra.Command {
	var args legacy.InitializeArgs
	var artistAge uint8
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the legacy record of the signing key",
		Args:  cobra.NoArgs,
		RunE: withProgram(func(cmd *cobra.Command, _ []string, cfg *config.Config, logger *slog.Logger, lp *localProgram) error {
			signer, err := loadSigner(cmd, cfg, logger)
			if err != nil {
				return err
			}
			args.ArtistAge = artistAge
			inst, err := legacy.NewInitializeInstruction(args, instructionNonce())
			if err != nil {
				return err
			}
			return submitInstruction(cmd, lp, signer, inst)
		}),
	}
	addKeyFileFlag(cmd)
	cmd.Flags().StringVar(&args.Title, "title", "", "title of the artwork")
	cmd.Flags().StringVar(&args.Artist, "artist", "", "name of the artist")
	cmd.Flags().Uint8Var(&artistAge, "artist-age", 0, "age of the artist at creation")
	cmd.Flags().StringVar(&args.OriginCity, "origin-city", "", "city the artwork was made in")
	cmd.Flags().StringVar(&args.SanctuaryLocation, "sanctuary", "", "permanent sanctuary location")
	cmd.Flags().StringVar(&args.CurrentFamilyHome, "family-home", "", "current family home")
	cmd.Flags().StringVar(&args.StoryHash, "story-hash", "", "content reference of the story")
	cmd.Flags().StringVar(&args.Dedication, "dedication", "", "dedication text")
	cmd.Flags().StringVar(&args.PhysicalStatus, "physical-status", "", "physical status of the artwork")
	return cmd
}

func refreshAuraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh-aura <address>",
		Short: "Recompute the aura of a record from the current time",
		Long:  "Recompute the aura of a record from the current time. Anyone may refresh a record, so the signing key is optional.",
		Args:  cobra.ExactArgs(1),
		RunE: withProgram(func(cmd *cobra.Command, args []string, cfg *config.Config, logger *slog.Logger, lp *localProgram) error {
			addr, err := parseAddressArg(args[0])
			if err != nil {
				return err
			}
			keyFile, _ := cmd.Flags().GetString("key-file")
			if keyFile == "" && cfg.KeyFile == "" {
				res, err := lp.program.RefreshAura(cmd.Context(), addr)
				return printResult(cmd.OutOrStdout(), res, err)
			}
			signer, err := loadSigner(cmd, cfg, logger)
			if err != nil {
				return err
			}
			return submitInstruction(
				cmd,
				lp,
				signer,
				legacy.NewRefreshAuraInstruction(addr, instructionNonce()),
			)
		}),
	}
	addKeyFileFlag(cmd)
	return cmd
}

func narrativeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "narrative <address>",
		Short: "Read the journey narrative of a record",
		Args:  cobra.ExactArgs(1),
		RunE: withProgram(func(cmd *cobra.Command, args []string, _ *config.Config, _ *slog.Logger, lp *localProgram) error {
			addr, err := parseAddressArg(args[0])
			if err != nil {
				return err
			}
			res, err := lp.program.ReadNarrative(cmd.Context(), addr)
			return printResult(cmd.OutOrStdout(), res, err)
		}),
	}
	return cmd
}

// gatedCommand builds the commands for the updates reserved to the record
// authority. Each takes the record address and one value
func gatedCommand(
	use string,
	short string,
	build func(addr legacy.PublicKey, value string, nonce uint64) (*legacy.Instruction, error),
) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: withProgram(func(cmd *cobra.Command, args []string, cfg *config.Config, logger *slog.Logger, lp *localProgram) error {
			addr, err := parseAddressArg(args[0])
			if err != nil {
				return err
			}
			signer, err := loadSigner(cmd, cfg, logger)
			if err != nil {
				return err
			}
			inst, err := build(addr, args[1], instructionNonce())
			if err != nil {
				return err
			}
			return submitInstruction(cmd, lp, signer, inst)
		}),
	}
	addKeyFileFlag(cmd)
	return cmd
}

func updateHomeCommand() *cobra.Command {
	return gatedCommand(
		"update-home <address> <home>",
		"Update the current family home of a record",
		legacy.NewUpdateFamilyHomeInstruction,
	)
}

func updateStoryCommand() *cobra.Command {
	return gatedCommand(
		"update-story <address> <hash>",
		"Update the story reference of a record",
		legacy.NewUpdateStoryHashInstruction,
	)
}

func transferCommand() *cobra.Command {
	return gatedCommand(
		"transfer <address> <new-authority>",
		"Hand the record authority to another key",
		func(addr legacy.PublicKey, value string, nonce uint64) (*legacy.Instruction, error) {
			newAuthority, err := legacy.PublicKeyFromString(value)
			if err != nil {
				return nil, err
			}
			return legacy.NewTransferAuthorityInstruction(addr, newAuthority, nonce)
		},
	)
}
