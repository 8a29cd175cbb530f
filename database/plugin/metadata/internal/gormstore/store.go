// Copyright 2025 Blink Labs Software
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

// Package gormstore holds the metadata queries shared by the gorm-backed
// metadata plugins. Each plugin opens its own dialect and embeds a Store.
package gormstore

import (
	"fmt"
	"log/slog"

	"github.com/blinklabs-io/enshrine/database/models"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying GORM database handle
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Migrate creates or updates the table schemas
func (s *Store) Migrate(logger *slog.Logger) error {
	logger.Debug(fmt.Sprintf("creating table: %#v", &CommitTimestamp{}))
	if err := s.db.AutoMigrate(&CommitTimestamp{}); err != nil {
		return err
	}
	for _, model := range models.MigrateModels {
		logger.Debug(fmt.Sprintf("creating table: %#v", model))
		if err := s.db.AutoMigrate(model); err != nil {
			return err
		}
	}
	return nil
}
