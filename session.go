// Copyright 2018 The ACH Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/moov-io/recipes/pkg/buntdbsession"
)

// sessionStore holds token -> account id mappings.
// buntdbsession.Store is the implementation.
type sessionStore interface {
	Get(token string) (string, error)
	Set(token, value string) error
	Delete(token string) error
}

// sessionManager moves clients between anonymous and authenticated.
// A client is authenticated when its cookie names a token we hold.
type sessionManager struct {
	store sessionStore

	// cookie settings
	domain string
	secure bool
	ttl    time.Duration
}

// generateID creates a new session token.
// Do no assume anything about these ID's other than
// they are strings. Case matters
func generateID() (string, error) {
	bs := make([]byte, 20)
	n, err := rand.Read(bs)
	if err != nil || n == 0 {
		return "", fmt.Errorf("generateID: n=%d, err=%v", n, err)
	}
	return strings.ToLower(hex.EncodeToString(bs)), nil
}

// establish mints a session for accountID and returns the cookie which
// carries it.
//
// The cookie isn't written so callers can discard the session if
// their own work fails. Any session the request presented is left
// alone until release.
func (m *sessionManager) establish(accountID uint) (*http.Cookie, error) {
	token, err := generateID()
	if err != nil {
		return nil, err
	}
	if err := m.store.Set(token, strconv.FormatUint(uint64(accountID), 10)); err != nil {
		return nil, err
	}
	sessionsCreated.Add(1)
	return m.cookie(token), nil
}

// release drops the session the request presented, if any.
func (m *sessionManager) release(r *http.Request) error {
	if c := extractCookie(r); c != nil && c.Value != "" {
		return m.discard(c.Value)
	}
	return nil
}

// current returns the request's session token and the account id it
// maps to. Requests without a live session get errUnauthorized.
func (m *sessionManager) current(r *http.Request) (string, uint, error) {
	c := extractCookie(r)
	if c == nil || c.Value == "" {
		return "", 0, errUnauthorized
	}
	v, err := m.store.Get(c.Value)
	if err != nil {
		if errors.Is(err, buntdbsession.ErrNotFound) {
			return "", 0, errUnauthorized
		}
		return "", 0, err
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return "", 0, errUnauthorized
	}
	return c.Value, uint(id), nil
}

// discard drops token. Unknown tokens are ignored.
func (m *sessionManager) discard(token string) error {
	err := m.store.Delete(token)
	if err != nil && !errors.Is(err, buntdbsession.ErrNotFound) {
		return err
	}
	return nil
}

func (m *sessionManager) cookie(token string) *http.Cookie {
	c := &http.Cookie{
		Domain:   m.domain,
		HttpOnly: true,
		Name:     cookieName,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		Secure:   m.secure,
		Value:    token,
	}
	if m.ttl > 0 {
		c.Expires = time.Now().Add(m.ttl)
	}
	return c
}

// expiredCookie tells clients to forget their session cookie.
func (m *sessionManager) expiredCookie() *http.Cookie {
	c := m.cookie("")
	c.Expires = time.Time{}
	c.MaxAge = -1
	return c
}
