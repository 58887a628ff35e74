// Copyright 2018 The ACH Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSession__generateID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := generateID()
		if err != nil {
			t.Fatal(err)
		}
		if len(id) != 40 {
			t.Errorf("got %q", id)
		}
		if seen[id] {
			t.Errorf("duplicate %q", id)
		}
		seen[id] = true
	}
}

func TestSession__lifecycle(t *testing.T) {
	sessions, _ := newTestSessions(t)

	// anonymous
	req := httptest.NewRequest("GET", "/", nil)
	if _, _, err := sessions.current(req); !errors.Is(err, errAuthentication) {
		t.Errorf("got %v", err)
	}

	// authenticated
	cookie, err := sessions.establish(12)
	if err != nil {
		t.Fatal(err)
	}
	if cookie.Name != cookieName || !cookie.HttpOnly || cookie.Path != "/" || cookie.Expires.IsZero() {
		t.Errorf("got %#v", cookie)
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookie)
	token, id, err := sessions.current(req)
	if err != nil {
		t.Fatal(err)
	}
	if token != cookie.Value || id != 12 {
		t.Errorf("token=%q id=%d", token, id)
	}

	// the presented session survives until released
	next, err := sessions.establish(13)
	if err != nil {
		t.Fatal(err)
	}
	if _, id, err := sessions.current(req); err != nil || id != 12 {
		t.Errorf("id=%d err=%v", id, err)
	}
	if err := sessions.release(req); err != nil {
		t.Fatal(err)
	}
	if _, _, err := sessions.current(req); !errors.Is(err, errAuthentication) {
		t.Errorf("got %v", err)
	}
	if err := sessions.release(httptest.NewRequest("GET", "/", nil)); err != nil {
		t.Errorf("anonymous release: %v", err)
	}
	req = httptest.NewRequest("GET", "/", nil)
	req.AddCookie(next)
	if _, id, _ := sessions.current(req); id != 13 {
		t.Errorf("got %d", id)
	}

	// anonymous again
	if err := sessions.discard(next.Value); err != nil {
		t.Fatal(err)
	}
	if _, _, err := sessions.current(req); !errors.Is(err, errAuthentication) {
		t.Errorf("got %v", err)
	}
	if err := sessions.discard(next.Value); err != nil {
		t.Errorf("discarding twice: %v", err)
	}
}

func TestSession__expiredCookie(t *testing.T) {
	sessions, _ := newTestSessions(t)

	c := sessions.expiredCookie()
	if c.MaxAge >= 0 || c.Value != "" || c.Name != cookieName {
		t.Errorf("got %#v", c)
	}

	w := httptest.NewRecorder()
	http.SetCookie(w, c)
	if v := w.Header().Get("Set-Cookie"); v == "" {
		t.Error("no Set-Cookie header")
	}
}

func TestSession__corruptValue(t *testing.T) {
	sessions, store := newTestSessions(t)
	store.Set("token", "not-a-number")

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "token"})
	if _, _, err := sessions.current(req); !errors.Is(err, errAuthentication) {
		t.Errorf("got %v", err)
	}
}
