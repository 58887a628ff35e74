// Copyright 2018 The ACH Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"net/http"

	"github.com/go-kit/kit/log"
	"github.com/gorilla/mux"
)

func addCheckSessionRoutes(router *mux.Router, logger log.Logger, db *database, sessions *sessionManager) {
	router.Methods("GET").Path("/check_session").HandlerFunc(checkSessionRoute(logger, db, sessions))
}

func checkSessionRoute(logger log.Logger, db *database, sessions *sessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := currentAccount(r, db, sessions)
		if err != nil {
			switch {
			case errors.Is(err, errAuthentication), errors.Is(err, errNotFound):
				// A session outliving its account is no session at all.
				encodeError(w, http.StatusUnauthorized, err)
			default:
				internalError(logger, w, http.StatusInternalServerError, err, "check_session")
			}
			return
		}
		writeJSON(w, http.StatusOK, a.view())
	}
}

// currentAccount resolves the request's session to its Account.
func currentAccount(r *http.Request, db *database, sessions *sessionManager) (*Account, error) {
	_, accountID, err := sessions.current(r)
	if err != nil {
		return nil, err
	}
	uow, err := db.begin(r.Context())
	if err != nil {
		return nil, err
	}
	defer uow.rollback()

	return uow.accounts.lookupByID(accountID)
}
