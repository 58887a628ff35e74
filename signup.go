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

type signupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`

	// misc profile information
	ImageURL string `json:"image_url"`
	Bio      string `json:"bio"`
}

func addSignupRoutes(router *mux.Router, logger log.Logger, db *database, sessions *sessionManager) {
	router.Methods("POST").Path("/signup").HandlerFunc(signupRoute(logger, db, sessions))
}

func signupRoute(logger log.Logger, db *database, sessions *sessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var signup signupRequest
		if err := readJSON(r, &signup); err != nil || signup.Username == "" || signup.Password == "" {
			encodeError(w, http.StatusUnprocessableEntity, errMissingCredentials)
			return
		}

		account := &Account{
			Username: signup.Username,
			ImageURL: signup.ImageURL,
			Bio:      signup.Bio,
		}
		if err := account.Password.set(signup.Password); err != nil {
			if errors.Is(err, errValidation) {
				encodeError(w, http.StatusUnprocessableEntity, err)
				return
			}
			internalError(logger, w, http.StatusInternalServerError, err, "signup")
			return
		}

		uow, err := db.begin(r.Context())
		if err != nil {
			internalError(logger, w, http.StatusInternalServerError, err, "signup")
			return
		}
		defer uow.rollback()

		if err := uow.accounts.create(account); err != nil {
			uow.rollback()
			if errors.Is(err, errConflict) || errors.Is(err, errValidation) {
				encodeError(w, http.StatusUnprocessableEntity, err)
				return
			}
			internalError(logger, w, http.StatusInternalServerError, err, "signup")
			return
		}

		cookie, err := sessions.establish(account.ID)
		if err != nil {
			internalError(logger, w, http.StatusInternalServerError, err, "signup")
			return
		}
		if err := uow.commit(); err != nil {
			sessions.discard(cookie.Value)
			internalError(logger, w, http.StatusInternalServerError, err, "signup")
			return
		}
		if err := sessions.release(r); err != nil {
			logger.Log("signup", fmt.Sprintf("dropping previous session: %v", err))
		}

		authSuccesses.With("method", "signup").Add(1)
		http.SetCookie(w, cookie)
		writeJSON(w, http.StatusCreated, account.view())
	}
}
