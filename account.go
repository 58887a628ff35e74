// Copyright 2018 The ACH Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Account is a registered user. Deleting an account deletes its recipes.
type Account struct {
	ID       uint       `gorm:"primaryKey"`
	Username string     `gorm:"uniqueIndex;not null"`
	Password credential `gorm:"column:_password_hash;not null"`
	ImageURL string     `gorm:"column:image_url;not null"`
	Bio      string     `gorm:"not null"`

	CreatedAt time.Time

	Recipes []Recipe `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
}

func (Account) TableName() string {
	return "users"
}

// accountView is the public profile of an Account.
type accountView struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	ImageURL string `json:"image_url"`
	Bio      string `json:"bio"`
}

func (a *Account) view() accountView {
	return accountView{
		ID:       a.ID,
		Username: a.Username,
		ImageURL: a.ImageURL,
		Bio:      a.Bio,
	}
}

type accountRepository interface {
	lookupByID(id uint) (*Account, error)
	lookupByUsername(username string) (*Account, error)

	// create inserts a new account. Username collisions return
	// an error wrapping errConflict.
	create(*Account) error

	// delete removes the account and every recipe it owns.
	delete(id uint) error
}

type gormAccountRepository struct {
	db *gorm.DB
}

func (r *gormAccountRepository) lookupByID(id uint) (*Account, error) {
	var a Account
	if err := r.db.First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errAccountNotFound
		}
		return nil, fmt.Errorf("account %d lookup: %w", id, err)
	}
	return &a, nil
}

func (r *gormAccountRepository) lookupByUsername(username string) (*Account, error) {
	var a Account
	if err := r.db.Where("username = ?", username).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errAccountNotFound
		}
		return nil, fmt.Errorf("account lookup: %w", err)
	}
	return &a, nil
}

func (r *gormAccountRepository) create(a *Account) error {
	if a.Username == "" || !a.Password.isSet() {
		return errMissingCredentials
	}
	if err := r.db.Omit(clause.Associations).Create(a).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errUsernameTaken
		}
		return err
	}
	return nil
}

func (r *gormAccountRepository) delete(id uint) error {
	if _, err := r.lookupByID(id); err != nil {
		return err
	}
	// Recipes go with the account even on stores without
	// foreign key enforcement.
	return r.db.Select(clause.Associations).Delete(&Account{ID: id}).Error
}
