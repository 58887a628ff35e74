// Copyright 2018 The ACH Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-kit/kit/log"
	"github.com/gorilla/mux"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func addLoginRoutes(router *mux.Router, logger log.Logger, db *database, sessions *sessionManager) {
	router.Methods("POST").Path("/login").HandlerFunc(loginRoute(logger, db, sessions))
}

func loginRoute(logger log.Logger, db *database, sessions *sessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var login loginRequest
		if err := readJSON(r, &login); err != nil || login.Username == "" || login.Password == "" {
			encodeError(w, http.StatusUnauthorized, errMissingCredentials)
			return
		}

		uow, err := db.begin(r.Context())
		if err != nil {
			internalError(logger, w, http.StatusInternalServerError, err, "login")
			return
		}
		defer uow.rollback()

		// find account by username
		a, err := uow.accounts.lookupByUsername(login.Username)
		if err != nil {
			if !errors.Is(err, errNotFound) {
				internalError(logger, w, http.StatusInternalServerError, err, "login")
				return
			}
			// Same response as a bad password so callers can't
			// probe for usernames.
			authFailures.With("method", "web").Add(1)
			encodeError(w, http.StatusUnauthorized, errInvalidLogin)
			return
		}

		if !a.Password.verify(login.Password) {
			authFailures.With("method", "web").Add(1)
			logger.Log("login", fmt.Sprintf("accountId=%d failed: password mismatch", a.ID))
			encodeError(w, http.StatusUnauthorized, errInvalidLogin)
			return
		}

		// success route, let's finish!
		cookie, err := sessions.establish(a.ID)
		if err != nil {
			internalError(logger, w, http.StatusInternalServerError, err, "login")
			return
		}
		if err := sessions.release(r); err != nil {
			logger.Log("login", fmt.Sprintf("dropping previous session: %v", err))
		}
		authSuccesses.With("method", "web").Add(1)

		http.SetCookie(w, cookie)
		if err := writeJSON(w, http.StatusOK, a.view()); err != nil {
			logger.Log("login", err)
		}
	}
}
