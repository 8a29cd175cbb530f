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

package mysql

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/blinklabs-io/enshrine/database/plugin/metadata/internal/gormstore"
	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// MySQL server error for an unknown database
const errUnknownDatabase = 1049

var connDefaults = gormstore.Conn{
	Host:     "localhost",
	Port:     3306,
	User:     "root",
	Database: "enshrine",
	TimeZone: "UTC",
}

// MetadataStoreMysql stores metadata in MySQL.
type MetadataStoreMysql struct {
	*gormstore.Store
	conn *gormstore.Conn
}

// NewWithOptions creates a new database with options. The connection is
// opened by Start.
func NewWithOptions(opts ...gormstore.ConnOption) (*MetadataStoreMysql, error) {
	return &MetadataStoreMysql{
		conn: gormstore.NewConn(connDefaults, opts...),
	}, nil
}

// driverConfig builds the driver config from an explicit DSN or from the
// individual options. Parse time and the session location are always set.
func (d *MetadataStoreMysql) driverConfig() (*mysql.Config, error) {
	c := d.conn
	if dsn := strings.TrimSpace(c.DSN); dsn != "" {
		return mysql.ParseDSN(dsn)
	}
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(c.Host, strconv.FormatUint(uint64(c.Port), 10))
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.DBName = c.Database
	cfg.ParseTime = true
	cfg.AllowNativePasswords = true
	cfg.TLSConfig = c.SSLMode
	if c.TimeZone != "" {
		if loc, err := time.LoadLocation(c.TimeZone); err == nil {
			cfg.Loc = loc
		}
	}
	return cfg, nil
}

// connString returns the explicit DSN verbatim if one was given
func (d *MetadataStoreMysql) connString() string {
	if dsn := strings.TrimSpace(d.conn.DSN); dsn != "" {
		return dsn
	}
	cfg, _ := d.driverConfig()
	return cfg.FormatDSN()
}

// Start implements the plugin.Plugin interface. A missing database is
// created on first start.
func (d *MetadataStoreMysql) Start() error {
	dsn := d.connString()
	db, err := gorm.Open(gormmysql.Open(dsn), gormstore.GormConfig())
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == errUnknownDatabase {
		if err := d.createDatabase(); err != nil {
			return err
		}
		db, err = gorm.Open(gormmysql.Open(dsn), gormstore.GormConfig())
	}
	if err != nil {
		return err
	}
	store, err := gormstore.Attach(db, d.conn, "mysql")
	if err != nil {
		_ = gormstore.New(db).Close()
		return err
	}
	d.Store = store
	return nil
}

func (d *MetadataStoreMysql) createDatabase() error {
	cfg, err := d.driverConfig()
	if err != nil {
		return fmt.Errorf("parse mysql dsn: %w", err)
	}
	name := cfg.DBName
	if name == "" {
		return errors.New("mysql dsn does not name a database")
	}
	cfg.DBName = ""
	admin, err := gorm.Open(gormmysql.Open(cfg.FormatDSN()), gormstore.GormConfig())
	if err != nil {
		return err
	}
	defer gormstore.New(admin).Close() //nolint:errcheck
	d.conn.Logger.Info(
		"creating mysql database",
		"component", "database",
		"database", name,
	)
	return admin.Exec(
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", name),
	).Error
}

// Stop implements the plugin.Plugin interface
func (d *MetadataStoreMysql) Stop() error {
	return d.Close()
}
