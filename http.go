// Copyright 2018 The ACH Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const (
	// maxReadBytes is the number of bytes to read
	// from a request body. It's intended to be used
	// with an io.LimitReader
	maxReadBytes = 1 * 1024 * 1024

	cookieName = "recipes_session"

	requestIDHeader = "X-Request-ID"
)

func newRouter(logger log.Logger, db *database, sessions *sessionManager) *mux.Router {
	router := mux.NewRouter()
	router.Use(logRequests(logger))

	addSignupRoutes(router, logger, db, sessions)
	addLoginRoutes(router, logger, db, sessions)
	addLogoutRoutes(router, logger, sessions)
	addCheckSessionRoutes(router, logger, db, sessions)
	addRecipeRoutes(router, logger, db, sessions)

	return router
}

// read consumes an io.Reader (wrapping with io.LimitReader)
// and returns either the resulting bytes or a non-nil error.
func read(r io.Reader) ([]byte, error) {
	r = io.LimitReader(r, maxReadBytes)
	return io.ReadAll(r)
}

// readJSON decodes the request body into v. Empty and malformed
// bodies are both errors.
func readJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("empty request body")
	}
	bs, err := read(r.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(bs, v)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// encodeError JSON encodes the supplied error with status.
func encodeError(w http.ResponseWriter, status int, err error) {
	if err == nil {
		return
	}
	writeJSON(w, status, map[string]interface{}{
		"error": err.Error(),
	})
}

// internalError records and logs err, then writes it with status.
func internalError(logger log.Logger, w http.ResponseWriter, status int, err error, component string) {
	internalServerErrors.Add(1)
	logger.Log(component, err)
	encodeError(w, status, err)
}

// extractCookie attempts to pull out our cookie from the incoming request.
// We use the contents to find the associated account.
func extractCookie(r *http.Request) *http.Cookie {
	if r == nil {
		return nil
	}
	c, err := r.Cookie(cookieName)
	if err != nil {
		return nil
	}
	return c
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// logRequests tags each request with an ID and logs it once served.
func logRequests(logger log.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, requestID)

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			logger.Log(
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"took", time.Since(start),
				"request_id", requestID,
			)
		})
	}
}
