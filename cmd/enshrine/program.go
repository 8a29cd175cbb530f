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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/enshrine/database"
	"github.com/blinklabs-io/enshrine/internal/config"
	"github.com/blinklabs-io/enshrine/keystore"
	"github.com/blinklabs-io/enshrine/legacy"
	"github.com/spf13/cobra"
)

var errNoConfig = errors.New("no config found in context")

func configFromCommand(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return nil, errNoConfig
	}
	return cfg, nil
}

// localProgram is a program instance over the configured database, used by
// the one-shot commands
type localProgram struct {
	db      *database.Database
	program *legacy.Program
}

func openProgram(cfg *config.Config, logger *slog.Logger) (*localProgram, error) {
	programID, err := cfg.ProgramID()
	if err != nil {
		return nil, err
	}
	db, err := database.New(&database.Config{
		DataDir:        cfg.DatabasePath,
		Logger:         logger,
		BlobPlugin:     cfg.BlobPlugin,
		MetadataPlugin: cfg.MetadataPlugin,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	program, err := legacy.NewProgram(legacy.ProgramConfig{
		Database:  db,
		Logger:    logger,
		ProgramID: programID,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &localProgram{db: db, program: program}, nil
}

func (l *localProgram) Close() error {
	return l.db.Close()
}

// loadSigner loads the signing key named by the --key-file flag, falling
// back to keyFile from the config
func loadSigner(
	cmd *cobra.Command,
	cfg *config.Config,
	logger *slog.Logger,
) (legacy.Signer, error) {
	keyFile, _ := cmd.Flags().GetString("key-file")
	if keyFile == "" {
		keyFile = cfg.KeyFile
	}
	if keyFile == "" {
		return nil, errors.New("no signing key: use --key-file or set keyFile")
	}
	ks := keystore.NewKeyStore(keystore.KeyStoreConfig{
		SigningKeyPath: keyFile,
		Logger:         logger,
	})
	if err := ks.LoadFromFile(); err != nil {
		return nil, err
	}
	return ks.Signer(), nil
}

func addKeyFileFlag(cmd *cobra.Command) {
	cmd.Flags().String("key-file", "", "path to the signing key file")
}

func parseAddressArg(arg string) (legacy.PublicKey, error) {
	addr, err := legacy.PublicKeyFromString(arg)
	if err != nil {
		return addr, fmt.Errorf("invalid address %q: %w", arg, err)
	}
	return addr, nil
}

// submitInstruction signs inst, executes it and prints the result. A
// rejected instruction is returned as an error after the result is printed
func submitInstruction(
	cmd *cobra.Command,
	lp *localProgram,
	signer legacy.Signer,
	inst *legacy.Instruction,
) error {
	signed, err := inst.Sign(signer)
	if err != nil {
		return err
	}
	res, err := lp.program.Execute(cmd.Context(), signed)
	return printResult(cmd.OutOrStdout(), res, err)
}

func printResult(w io.Writer, res *legacy.InstructionResult, err error) error {
	if res != nil {
		if printErr := printJSON(w, res); printErr != nil {
			return printErr
		}
	}
	return err
}

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func instructionNonce() uint64 {
	return uint64(time.Now().UnixNano()) // #nosec G115
}

// withProgram handles the config, logger and database lifecycle of a
// one-shot command
func withProgram(
	fn func(*cobra.Command, []string, *config.Config, *slog.Logger, *localProgram) error,
) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := configFromCommand(cmd)
		if err != nil {
			return err
		}
		logger := commandLogger()
		lp, err := openProgram(cfg, logger)
		if err != nil {
			return err
		}
		return errors.Join(fn(cmd, args, cfg, logger, lp), lp.Close())
	}
}
