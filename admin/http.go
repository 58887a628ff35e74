// Copyright 2018 The ACH Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewServer returns an admin Server which binds to addr once Listen
// is called. Metrics, pprof and /ping are always registered.
func NewServer(addr string) *Server {
	timeout := 45 * time.Second
	router := handler()
	return &Server{
		router: router,
		svc: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
			IdleTimeout:  timeout,
		},
	}
}

// Server represents a holder around a net/http Server which
// is used for admin endpoints. (i.e. metrics, healthcheck)
type Server struct {
	router *mux.Router
	svc    *http.Server
}

func (s *Server) BindAddress() string {
	return s.svc.Addr
}

// Handler exposes the admin routes, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// AddHandler registers fn on path. Path may hold gorilla/mux
// variables, i.e. /accounts/{accountId}
func (s *Server) AddHandler(path string, fn http.HandlerFunc) {
	s.router.HandleFunc(path, fn)
}

// Listen brings up the admin HTTP service. This call blocks.
func (s *Server) Listen() error {
	if s == nil || s.svc == nil {
		return nil
	}
	return s.svc.ListenAndServe()
}

// Shutdown unbinds the HTTP server.
func (s *Server) Shutdown(ctx context.Context) {
	if s == nil || s.svc == nil {
		return
	}
	s.svc.Shutdown(ctx)
}

func handler() *mux.Router {
	r := mux.NewRouter()

	// prometheus metrics
	r.Methods("GET").Path("/metrics").Handler(promhttp.Handler())

	r.Methods("GET").Path("/ping").HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("PONG"))
	})

	// add all pprof handlers we've configured
	addPprofRoutes(r)

	return r
}
