// Copyright 2018 The ACH Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

// buntdbsession stores opaque session tokens and the value they
// map to using BuntDB (https://github.com/tidwall/buntdb).
package buntdbsession

import (
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/buntdb"
)

var (
	// DefaultTTL is the value used as TTL on buntdb.SetOptions
	DefaultTTL time.Duration = 30 * 24 * time.Hour

	// ErrNotFound is returned for tokens that were never set,
	// have been deleted or have expired.
	ErrNotFound = buntdb.ErrNotFound
)

const keyPrefix = "session:"

// New opens a Store at path. ":memory:" keeps everything in memory.
// A ttl of zero or less means sessions never expire.
func New(path string, ttl time.Duration) (*Store, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, err
	}
	return &Store{
		db:  db,
		ttl: ttl,
	}, nil
}

type Store struct {
	db  *buntdb.DB
	ttl time.Duration
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(token string) (string, error) {
	if token == "" {
		return "", ErrNotFound
	}
	var value string
	err := s.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(keyPrefix + token)
		if err != nil {
			return err
		}
		value = v
		return nil
	})
	if err != nil {
		if errors.Is(err, buntdb.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("problem reading session: %v", err)
	}
	return value, nil
}

// Set writes value under token, replacing whatever was there.
func (s *Store) Set(token, value string) error {
	if token == "" {
		return errors.New("buntdbsession: empty token")
	}
	err := s.db.Update(func(tx *buntdb.Tx) error {
		var opts *buntdb.SetOptions
		if s.ttl > 0 {
			opts = &buntdb.SetOptions{
				Expires: true,
				TTL:     s.ttl,
			}
		}
		_, _, err := tx.Set(keyPrefix+token, value, opts)
		return err
	})
	if err != nil {
		return fmt.Errorf("problem writing session: %v", err)
	}
	return nil
}

func (s *Store) Delete(token string) error {
	err := s.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(keyPrefix + token)
		return err
	})
	if err != nil {
		if errors.Is(err, buntdb.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("problem deleting session: %v", err)
	}
	return nil
}

// Len returns how many live sessions are stored.
func (s *Store) Len() (int, error) {
	n := 0
	err := s.db.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys(keyPrefix+"*", func(_, _ string) bool {
			n++
			return true
		})
	})
	return n, err
}
