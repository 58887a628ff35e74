// Copyright 2018 The ACH Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moov-io/recipes/admin"
	"github.com/moov-io/recipes/pkg/buntdbsession"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

var (
	// Metrics
	authSuccesses = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Name: "auth_successes",
		Help: "Count of successful authorizations",
	}, []string{"method"})
	authFailures = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Name: "auth_failures",
		Help: "Count of failed authorizations",
	}, []string{"method"})
	authInactivations = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Name: "auth_inactivations",
		Help: "Count of sessions ended by logout",
	}, []string{"method"})

	sessionsCreated = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Name: "auth_sessions_created",
		Help: "Count of sessions created",
	}, nil)
	recipesCreated = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Name: "recipes_created",
		Help: "Count of recipes created",
	}, nil)
	internalServerErrors = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Name: "internal_server_errors",
		Help: "Count of requests which failed on our side",
	}, nil)
)

const Version = "0.1.0-dev"

func main() {
	// Setup logging, default to stderr
	var logger log.Logger
	logger = log.NewLogfmtLogger(os.Stderr)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	logger = log.With(logger, "caller", log.DefaultCaller)

	if err := loadDotEnv(".env"); err != nil {
		logger.Log("config", err)
		os.Exit(1)
	}
	cfg, err := readConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		logger.Log("config", err)
		os.Exit(1)
	}
	bcryptCost = cfg.bcryptCost

	logger.Log("startup", fmt.Sprintf("Starting recipes server version %s", Version))

	if err := admin.Init(logger); err != nil {
		logger.Log("admin", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup storage
	db, err := openDatabase(logger, cfg)
	if err != nil {
		os.Exit(1)
	}
	defer db.Close()
	if err := db.migrate(logger); err != nil {
		logger.Log("database", err)
		os.Exit(1)
	}
	if sqlDB, err := db.sqlDB(); err == nil {
		go promMetricCollector{}.run(ctx, sqlDB)
	}

	store, err := buntdbsession.New(cfg.sessionPath, cfg.sessionTTL)
	if err != nil {
		logger.Log("sessions", fmt.Sprintf("problem opening %s: %v", cfg.sessionPath, err))
		os.Exit(1)
	}
	defer store.Close()

	sessions := &sessionManager{
		store:  store,
		domain: cfg.domain,
		secure: cfg.serveViaTLS(),
		ttl:    cfg.sessionTTL,
	}

	// Listen for application termination.
	errs := make(chan error, 3)
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		errs <- fmt.Errorf("%s", <-c)
	}()

	serve := &http.Server{
		Addr:    cfg.httpAddr,
		Handler: newRouter(logger, db, sessions),
		TLSConfig: &tls.Config{
			InsecureSkipVerify: false,
			MinVersion:         tls.VersionTLS12,
		},
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	adminServer := admin.NewServer(cfg.adminAddr)
	addAdminRoutes(adminServer, logger, db)
	go func() {
		logger.Log("admin", fmt.Sprintf("Starting admin service on %s", adminServer.BindAddress()))
		if err := adminServer.Listen(); err != nil && err != http.ErrServerClosed {
			logger.Log("admin", "shutting down", "error", err)
		}
	}()

	go func() {
		logger.Log("transport", "HTTP", "addr", cfg.httpAddr, "tls", cfg.serveViaTLS())
		if cfg.serveViaTLS() {
			errs <- serve.ListenAndServeTLS(cfg.tlsCert, cfg.tlsKey)
		} else {
			errs <- serve.ListenAndServe()
		}
	}()

	if err := <-errs; err != nil {
		logger.Log("exit", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 10*time.Second)
	defer shutdownCancel()
	adminServer.Shutdown(shutdownCtx)
	if err := serve.Shutdown(shutdownCtx); err != nil {
		logger.Log("shutdown", err)
	}
}
