// Copyright 2018 The ACH Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the work factor for new password hashes.
// Overridden from BCRYPT_COST and lowered in tests.
var bcryptCost = bcrypt.DefaultCost

var errPasswordNotReadable = errors.New("password is not readable")

// credential holds a salted bcrypt digest. It is write-only: callers can
// set a new password or verify one, but never read the digest back.
// The digest only leaves the type through driver.Valuer when persisted.
type credential struct {
	hash string
}

// set hashes plaintext and replaces the stored digest.
func (c *credential) set(plaintext string) error {
	if plaintext == "" {
		return validationError("Password is required")
	}
	bs, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return validationError("Password is too long")
		}
		return fmt.Errorf("hashing password: %v", err)
	}
	c.hash = string(bs)
	return nil
}

// verify reports if plaintext matches the stored digest.
func (c credential) verify(plaintext string) bool {
	if c.hash == "" || plaintext == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(c.hash), []byte(plaintext)) == nil
}

func (c credential) isSet() bool {
	return c.hash != ""
}

func (c credential) MarshalJSON() ([]byte, error) {
	return nil, errPasswordNotReadable
}

func (c credential) String() string {
	return "[redacted]"
}

func (c credential) GoString() string {
	return "credential{[redacted]}"
}

func (c credential) Value() (driver.Value, error) {
	return c.hash, nil
}

func (c *credential) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		c.hash = ""
	case string:
		c.hash = v
	case []byte:
		c.hash = string(v)
	default:
		return fmt.Errorf("credential: unsupported type %T", src)
	}
	return nil
}

func (credential) GormDataType() string {
	return "string"
}
