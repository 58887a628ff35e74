// Copyright 2018 The ACH Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/moov-io/recipes/admin"

	"github.com/go-kit/kit/log"
	"github.com/gorilla/mux"
)

func addAdminRoutes(svc *admin.Server, logger log.Logger, db *database) {
	svc.AddHandler("/accounts/{accountId}", deleteAccountRoute(logger, db))
}

// deleteAccountRoute removes an account along with its recipes.
// Sessions still pointing at it resolve as unauthenticated.
func deleteAccountRoute(logger log.Logger, db *database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "DELETE" {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		id, err := strconv.ParseUint(mux.Vars(r)["accountId"], 10, 64)
		if err != nil || id == 0 {
			encodeError(w, http.StatusBadRequest, fmt.Errorf("invalid account id"))
			return
		}

		uow, err := db.begin(r.Context())
		if err != nil {
			internalError(logger, w, http.StatusInternalServerError, err, "admin")
			return
		}
		defer uow.rollback()

		if err := uow.accounts.delete(uint(id)); err != nil {
			if errors.Is(err, errNotFound) {
				encodeError(w, http.StatusNotFound, err)
				return
			}
			internalError(logger, w, http.StatusInternalServerError, err, "admin")
			return
		}
		if err := uow.commit(); err != nil {
			internalError(logger, w, http.StatusInternalServerError, err, "admin")
			return
		}

		logger.Log("admin", fmt.Sprintf("deleted accountId=%d", id))
		w.WriteHeader(http.StatusNoContent)
	}
}
