// Copyright 2018 The ACH Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package buntdbsession

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var (
	flagDebug = flag.Bool("debug", false, "Create db inside project dir for tests")
)

func makeStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()

	filename := "sessions_test.db"
	if *flagDebug {
		os.Remove(filename)
	} else {
		filename = filepath.Join(t.TempDir(), filename)
	}
	s, err := New(filename, ttl)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore(t *testing.T) {
	s := makeStore(t, DefaultTTL)

	// get nothing
	if v, err := s.Get("token"); err != ErrNotFound || v != "" {
		t.Errorf("got v=%q err=%#v", v, err)
	}

	// set something
	if err := s.Set("token", "12"); err != nil {
		t.Fatal(err)
	}
	v, err := s.Get("token")
	if err != nil {
		t.Fatal(err)
	}
	if v != "12" {
		t.Errorf("got %q", v)
	}

	// overwrite
	if err := s.Set("token", "13"); err != nil {
		t.Fatal(err)
	}
	if v, _ := s.Get("token"); v != "13" {
		t.Errorf("got %q", v)
	}
}

func TestStore__delete(t *testing.T) {
	s := makeStore(t, 0)

	if err := s.Delete("missing"); err != ErrNotFound {
		t.Errorf("got %#v", err)
	}

	s.Set("a", "1")
	s.Set("b", "2")
	if n, err := s.Len(); err != nil || n != 2 {
		t.Errorf("n=%d err=%v", n, err)
	}

	if err := s.Delete("a"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get("a"); err != ErrNotFound {
		t.Errorf("got %#v", err)
	}
	if v, _ := s.Get("b"); v != "2" {
		t.Errorf("got %q", v)
	}
	if n, _ := s.Len(); n != 1 {
		t.Errorf("got %d", n)
	}
}

func TestStore__empty(t *testing.T) {
	s := makeStore(t, 0)

	if err := s.Set("", "1"); err == nil {
		t.Error("expected error")
	}
	if _, err := s.Get(""); err != ErrNotFound {
		t.Errorf("got %#v", err)
	}
}

func TestStore__expires(t *testing.T) {
	s, err := New(":memory:", 10*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.Set("token", "1"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)

	if _, err := s.Get("token"); err != ErrNotFound {
		t.Errorf("got %#v", err)
	}
}
