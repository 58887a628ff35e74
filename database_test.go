// Copyright 2018 The ACH Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestDatabase__cleanSqlitePath(t *testing.T) {
	cases := []struct {
		input, expected string
	}{
		{"", "recipes.db"},
		{"../etc/passwd", "recipes.db"},
		{"data/recipes.db", "data/recipes.db"},
	}
	for i := range cases {
		if v := cleanSqlitePath(cases[i].input); v != cases[i].expected {
			t.Errorf("got %q", v)
		}
	}
}

func TestDatabase__isPostgresURL(t *testing.T) {
	cases := map[string]bool{
		"":                               false,
		"recipes.db":                     false,
		"postgres://localhost/recipes":   true,
		"postgresql://localhost/recipes": true,
	}
	for input, expected := range cases {
		if v := isPostgresURL(input); v != expected {
			t.Errorf("%q: got %v", input, v)
		}
	}
}

func TestDatabase__accounts(t *testing.T) {
	db := newTestDatabase(t)

	uow, err := db.begin(context.Background())
	require.NoError(t, err)

	a := &Account{Username: "alice"}
	require.ErrorIs(t, uow.accounts.create(a), errValidation)

	require.NoError(t, a.Password.set("password"))
	require.NoError(t, uow.accounts.create(a))
	require.NotZero(t, a.ID)

	dup := &Account{Username: "alice"}
	dup.Password.set("password")
	require.ErrorIs(t, uow.accounts.create(dup), errConflict)
	uow.rollback()

	// rolled back, nothing stuck
	uow, err = db.begin(context.Background())
	require.NoError(t, err)
	defer uow.rollback()

	_, err = uow.accounts.lookupByUsername("alice")
	require.ErrorIs(t, err, errNotFound)
	_, err = uow.accounts.lookupByID(a.ID)
	require.ErrorIs(t, err, errNotFound)
	require.ErrorIs(t, uow.accounts.delete(a.ID), errNotFound)
}

func TestDatabase__commit(t *testing.T) {
	db := newTestDatabase(t)

	uow, err := db.begin(context.Background())
	require.NoError(t, err)
	a := &Account{Username: "alice", ImageURL: "https://example.com/a.png", Bio: "hi"}
	a.Password.set("password")
	require.NoError(t, uow.accounts.create(a))
	require.NoError(t, uow.commit())
	uow.rollback() // no-op

	uow, err = db.begin(context.Background())
	require.NoError(t, err)
	defer uow.rollback()

	found, err := uow.accounts.lookupByUsername("alice")
	require.NoError(t, err)
	require.Equal(t, a.view(), found.view())
	require.True(t, found.Password.verify("password"))
}

func TestDatabase__cascade(t *testing.T) {
	db := newTestDatabase(t)

	uow, err := db.begin(context.Background())
	require.NoError(t, err)
	alice := &Account{Username: "alice"}
	alice.Password.set("password")
	require.NoError(t, uow.accounts.create(alice))
	bob := &Account{Username: "bob"}
	bob.Password.set("password")
	require.NoError(t, uow.accounts.create(bob))

	for _, owner := range []*Account{alice, alice, bob} {
		r, err := newRecipe(owner, recipeRequest{Title: "Stew", Instructions: instructions(50), MinutesToComplete: intPtr(60)})
		require.NoError(t, err)
		require.NoError(t, uow.recipes.create(r))
	}
	require.NoError(t, uow.commit())

	uow, err = db.begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, uow.accounts.delete(alice.ID))
	require.NoError(t, uow.commit())

	uow, err = db.begin(context.Background())
	require.NoError(t, err)
	defer uow.rollback()

	recipes, err := uow.recipes.listByOwner(alice.ID)
	require.NoError(t, err)
	require.Empty(t, recipes)

	recipes, err = uow.recipes.listByOwner(bob.ID)
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	require.NotNil(t, recipes[0].Account)
	require.Equal(t, "bob", recipes[0].Account.Username)
}

func TestGormLogger(t *testing.T) {
	l := newGormLogger(log.NewNopLogger())

	silent := l.LogMode(gormlogger.Silent)
	if silent.(*gormLogger).level != gormlogger.Silent {
		t.Error("expected silent")
	}
	if l.(*gormLogger).level != gormlogger.Warn {
		t.Error("original logger was modified")
	}

	var logs []interface{}
	rec := &gormLogger{
		logger: log.LoggerFunc(func(kv ...interface{}) error {
			logs = append(logs, kv...)
			return nil
		}),
		level: gormlogger.Error,
	}
	sql := func() (string, int64) { return "SELECT 1", 1 }

	rec.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
	require.Empty(t, logs)

	rec.Trace(context.Background(), time.Now(), sql, errors.New("boom"))
	require.Contains(t, logs, "SELECT 1")
}
