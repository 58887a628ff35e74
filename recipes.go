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

func addRecipeRoutes(router *mux.Router, logger log.Logger, db *database, sessions *sessionManager) {
	router.Methods("GET").Path("/recipes").HandlerFunc(listRecipesRoute(logger, db, sessions))
	router.Methods("POST").Path("/recipes").HandlerFunc(createRecipeRoute(logger, db, sessions))
}

// listRecipesRoute returns the caller's own recipes.
func listRecipesRoute(logger log.Logger, db *database, sessions *sessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, accountID, err := sessions.current(r)
		if err != nil {
			if errors.Is(err, errAuthentication) {
				encodeError(w, http.StatusUnauthorized, err)
				return
			}
			internalError(logger, w, http.StatusInternalServerError, err, "recipes")
			return
		}

		uow, err := db.begin(r.Context())
		if err != nil {
			internalError(logger, w, http.StatusInternalServerError, err, "recipes")
			return
		}
		defer uow.rollback()

		if _, err := uow.accounts.lookupByID(accountID); err != nil {
			if errors.Is(err, errNotFound) {
				encodeError(w, http.StatusNotFound, err)
				return
			}
			internalError(logger, w, http.StatusInternalServerError, err, "recipes")
			return
		}

		recipes, err := uow.recipes.listByOwner(accountID)
		if err != nil {
			internalError(logger, w, http.StatusInternalServerError, err, "recipes")
			return
		}
		out := make([]recipeView, 0, len(recipes))
		for i := range recipes {
			out = append(out, recipes[i].view())
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func createRecipeRoute(logger log.Logger, db *database, sessions *sessionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, accountID, err := sessions.current(r)
		if err != nil {
			if errors.Is(err, errAuthentication) {
				encodeError(w, http.StatusUnauthorized, err)
				return
			}
			internalError(logger, w, http.StatusInternalServerError, err, "recipes")
			return
		}

		var req recipeRequest
		if err := readJSON(r, &req); err != nil {
			encodeError(w, http.StatusUnprocessableEntity, errMissingFields)
			return
		}

		uow, err := db.begin(r.Context())
		if err != nil {
			internalError(logger, w, http.StatusInternalServerError, err, "recipes")
			return
		}
		defer uow.rollback()

		owner, err := uow.accounts.lookupByID(accountID)
		if err != nil {
			if errors.Is(err, errNotFound) {
				encodeError(w, http.StatusUnauthorized, errUnauthorized)
				return
			}
			internalError(logger, w, http.StatusInternalServerError, err, "recipes")
			return
		}

		recipe, err := newRecipe(owner, req)
		if err != nil {
			encodeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		if err := uow.recipes.create(recipe); err != nil {
			uow.rollback()
			logger.Log("recipes", err)
			encodeError(w, http.StatusUnprocessableEntity, errUnprocessable)
			return
		}
		if err := uow.commit(); err != nil {
			logger.Log("recipes", err)
			encodeError(w, http.StatusUnprocessableEntity, errUnprocessable)
			return
		}

		recipesCreated.Add(1)
		writeJSON(w, http.StatusCreated, recipe.view())
	}
}
