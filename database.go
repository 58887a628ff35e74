// Copyright 2018 The ACH Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-kit/kit/log"
	kitprom "github.com/go-kit/kit/metrics/prometheus"
	stdprom "github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	// models holds every table we migrate (in order)
	models = []interface{}{
		&Account{},
		&Recipe{},
	}

	// Metrics
	connections = kitprom.NewGaugeFrom(stdprom.GaugeOpts{
		Name: "database_connections",
		Help: "How many database connections and what status they're in.",
	}, []string{"state"})
)

type promMetricCollector struct {
	interval time.Duration
}

func (p promMetricCollector) run(ctx context.Context, db *sql.DB) {
	if db == nil {
		return
	}
	if p.interval <= 0 {
		p.interval = 10 * time.Second
	}
	t := time.NewTicker(p.interval)
	defer t.Stop()

	for {
		stats := db.Stats()
		connections.With("state", "idle").Set(float64(stats.Idle))
		connections.With("state", "inuse").Set(float64(stats.InUse))
		connections.With("state", "open").Set(float64(stats.OpenConnections))

		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// cleanSqlitePath falls back to recipes.db for empty paths or ones
// trying to escape. Don't filepath.Abs to avoid full-fs reads.
func cleanSqlitePath(path string) string {
	if path == "" || strings.Contains(path, "..") {
		return "recipes.db"
	}
	return path
}

// sqliteDSN enables foreign keys (for ON DELETE CASCADE) and waits on
// locked databases rather than failing concurrent writers immediately.
func sqliteDSN(path string) string {
	return fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=5000", path)
}

func isPostgresURL(u string) bool {
	return strings.HasPrefix(u, "postgres://") || strings.HasPrefix(u, "postgresql://")
}

type database struct {
	db *gorm.DB
}

// openDatabase connects to postgres when DATABASE_URL points at one,
// otherwise to a sqlite file at SQLITE_DB_PATH.
func openDatabase(logger log.Logger, cfg *config) (*database, error) {
	var dialector gorm.Dialector
	if isPostgresURL(cfg.databaseURL) {
		logger.Log("database", "using postgres")
		dialector = postgres.Open(cfg.databaseURL)
	} else {
		path := cleanSqlitePath(cfg.sqlitePath)
		logger.Log("database", fmt.Sprintf("using sqlite at %s", path))
		dialector = sqlite.Open(sqliteDSN(path))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(logger),
	})
	if err != nil {
		err = fmt.Errorf("problem opening database: %v", err)
		logger.Log("database", err)
		return nil, err
	}
	if !isPostgresURL(cfg.databaseURL) {
		// sqlite has one writer at a time. Queue requests on the pool
		// instead of failing them with SQLITE_BUSY.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return &database{db: db}, nil
}

// migrate creates or updates the tables for every model.
func (d *database) migrate(logger log.Logger) error {
	for i := range models {
		if err := d.db.AutoMigrate(models[i]); err != nil {
			return fmt.Errorf("migration #%d (%T) had problem: %v", i, models[i], err)
		}
		logger.Log("database", fmt.Sprintf("migration #%d (%T) done", i, models[i]))
	}
	logger.Log("database", "finished migrations")
	return nil
}

func (d *database) sqlDB() (*sql.DB, error) {
	return d.db.DB()
}

func (d *database) Close() error {
	db, err := d.sqlDB()
	if err != nil {
		return err
	}
	return db.Close()
}

// unitOfWork is the request-scoped view of the store. Everything done
// through its repositories is committed or rolled back together.
type unitOfWork struct {
	tx   *gorm.DB
	done bool

	accounts accountRepository
	recipes  recipeRepository
}

func (d *database) begin(ctx context.Context) (*unitOfWork, error) {
	tx := d.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("problem starting transaction: %v", tx.Error)
	}
	return &unitOfWork{
		tx:       tx,
		accounts: &gormAccountRepository{db: tx},
		recipes:  &gormRecipeRepository{db: tx},
	}, nil
}

func (u *unitOfWork) commit() error {
	if u.done {
		return nil
	}
	u.done = true
	return u.tx.Commit().Error
}

// rollback discards uncommitted changes. It's a no-op after commit,
// so callers can always defer it.
func (u *unitOfWork) rollback() {
	if u.done {
		return
	}
	u.done = true
	u.tx.Rollback()
}
