// Copyright 2018 The ACH Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/moov-io/recipes/pkg/buntdbsession"
	"golang.org/x/crypto/bcrypt"
)

type config struct {
	httpAddr  string
	adminAddr string

	// databaseURL selects postgres when set to a postgres:// URL,
	// otherwise sqlitePath is used.
	databaseURL string
	sqlitePath  string

	sessionPath string
	sessionTTL  time.Duration

	// Domain is the domain to publish cookies under.
	// The path is always set to /.
	domain string

	tlsCert, tlsKey string

	bcryptCost int
}

func (c *config) serveViaTLS() bool {
	return c.tlsCert != "" && c.tlsKey != ""
}

// loadDotEnv reads .env files into the environment. Variables
// already set win, missing files are fine.
func loadDotEnv(filenames ...string) error {
	for _, name := range filenames {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return fmt.Errorf("problem loading %s: %v", name, err)
		}
	}
	return nil
}

func envOr(key, zero string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return zero
}

// readConfig builds a config from flags falling back on environment
// variables, then defaults.
func readConfig(fs *flag.FlagSet, args []string) (*config, error) {
	cfg := &config{}

	fs.StringVar(&cfg.httpAddr, "http.addr", envOr("HTTP_ADDR", ":8080"), "HTTP listen address")
	fs.StringVar(&cfg.adminAddr, "admin.addr", envOr("ADMIN_ADDR", ":9090"), "Admin HTTP listen address")
	fs.StringVar(&cfg.databaseURL, "database.url", os.Getenv("DATABASE_URL"), "Postgres connection URL, sqlite is used when empty")
	fs.StringVar(&cfg.sqlitePath, "sqlite.path", envOr("SQLITE_DB_PATH", "recipes.db"), "Path to sqlite database")
	fs.StringVar(&cfg.sessionPath, "session.path", envOr("SESSION_DB_PATH", ":memory:"), "Path to session database")
	fs.StringVar(&cfg.domain, "cookie.domain", envOr("DOMAIN", "localhost"), "Domain to publish cookies under")
	fs.StringVar(&cfg.tlsCert, "tls.cert", os.Getenv("TLS_CERT"), "TLS certificate file")
	fs.StringVar(&cfg.tlsKey, "tls.key", os.Getenv("TLS_KEY"), "TLS private key file")

	ttl := buntdbsession.DefaultTTL
	if v := os.Getenv("SESSION_TTL"); v != "" {
		dur, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TTL %q: %v", v, err)
		}
		ttl = dur
	}
	fs.DurationVar(&cfg.sessionTTL, "session.ttl", ttl, "How long sessions live, 0 never expires")

	cost := bcrypt.DefaultCost
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid BCRYPT_COST %q: %v", v, err)
		}
		cost = n
	}
	fs.IntVar(&cfg.bcryptCost, "bcrypt.cost", cost, "bcrypt work factor for new passwords")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.bcryptCost < bcrypt.MinCost || cfg.bcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d outside [%d, %d]", cfg.bcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if (cfg.tlsCert == "") != (cfg.tlsKey == "") {
		return nil, fmt.Errorf("both tls.cert and tls.key are required for TLS")
	}
	return cfg, nil
}
