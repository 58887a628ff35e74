// Copyright 2018 The ACH Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// minInstructionsLength is the fewest characters a recipe's
// instructions may have.
const minInstructionsLength = 50

type Recipe struct {
	ID                uint   `gorm:"primaryKey"`
	Title             string `gorm:"not null"`
	Instructions      string `gorm:"not null"`
	MinutesToComplete int    `gorm:"not null"`

	AccountID uint     `gorm:"column:user_id;not null;index"`
	Account   *Account `gorm:"foreignKey:AccountID"`

	CreatedAt time.Time
}

func (Recipe) TableName() string {
	return "recipes"
}

type recipeRequest struct {
	Title             string `json:"title"`
	Instructions      string `json:"instructions"`
	MinutesToComplete *int   `json:"minutes_to_complete"`
}

// validate checks a recipe before it's constructed. Missing fields are
// reported together, constraint violations individually.
func (req recipeRequest) validate() error {
	if strings.TrimSpace(req.Title) == "" || req.Instructions == "" || req.MinutesToComplete == nil {
		return errMissingFields
	}
	if n := utf8.RuneCountInString(req.Instructions); n < minInstructionsLength {
		return validationError("Instructions must be at least %d characters long.", minInstructionsLength)
	}
	if *req.MinutesToComplete <= 0 {
		return validationError("Minutes to complete must be a positive number.")
	}
	return nil
}

// newRecipe validates req and builds a Recipe owned by owner.
func newRecipe(owner *Account, req recipeRequest) (*Recipe, error) {
	if owner == nil {
		return nil, errUnauthorized
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	return &Recipe{
		Title:             req.Title,
		Instructions:      req.Instructions,
		MinutesToComplete: *req.MinutesToComplete,
		AccountID:         owner.ID,
		Account:           owner,
	}, nil
}

type recipeView struct {
	ID                uint        `json:"id"`
	Title             string      `json:"title"`
	Instructions      string      `json:"instructions"`
	MinutesToComplete int         `json:"minutes_to_complete"`
	User              accountView `json:"user"`
}

func (r *Recipe) view() recipeView {
	out := recipeView{
		ID:                r.ID,
		Title:             r.Title,
		Instructions:      r.Instructions,
		MinutesToComplete: r.MinutesToComplete,
	}
	if r.Account != nil {
		out.User = r.Account.view()
	}
	return out
}

type recipeRepository interface {
	// listByOwner returns every recipe owned by accountID with
	// its owner loaded, oldest first.
	listByOwner(accountID uint) ([]Recipe, error)

	create(*Recipe) error
}

type gormRecipeRepository struct {
	db *gorm.DB
}

func (r *gormRecipeRepository) listByOwner(accountID uint) ([]Recipe, error) {
	recipes := make([]Recipe, 0)
	err := r.db.Preload("Account").Where("user_id = ?", accountID).Order("id").Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("listing recipes for account %d: %w", accountID, err)
	}
	return recipes, nil
}

func (r *gormRecipeRepository) create(recipe *Recipe) error {
	return r.db.Omit(clause.Associations).Create(recipe).Error
}
