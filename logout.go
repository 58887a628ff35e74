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

func addLogoutRoutes(router *mux.Router, logger log.Logger, sessions *sessionManager) {
	router.Methods("DELETE").Path("/logout").HandlerFunc(logoutRoute(logger, sessions))
}

func logoutRoute(logger log.Logger, sessions *sessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, _, err := sessions.current(r)
		if err != nil {
			if errors.Is(err, errAuthentication) {
				encodeError(w, http.StatusUnauthorized, err)
				return
			}
			internalError(logger, w, http.StatusInternalServerError, err, "logout")
			return
		}
		if err := sessions.discard(token); err != nil {
			internalError(logger, w, http.StatusInternalServerError, err, "logout")
			return
		}
		authInactivations.With("method", "web").Add(1)

		http.SetCookie(w, sessions.expiredCookie())
		w.WriteHeader(http.StatusNoContent)
	}
}
