// Copyright 2018 The ACH Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
)

// Error kinds handlers switch on. Wrap them through apiError so the
// message written to clients stays free of the kind prefix.
var (
	errValidation     = errors.New("validation error")
	errAuthentication = errors.New("authentication error")
	errNotFound       = errors.New("not found")
	errConflict       = errors.New("conflict")
)

// apiError is an error whose Error() is safe to return to clients
// and which unwraps to one of the error kinds above.
type apiError struct {
	kind error
	msg  string
}

func (e *apiError) Error() string { return e.msg }
func (e *apiError) Unwrap() error { return e.kind }

func newError(kind error, format string, args ...interface{}) error {
	return &apiError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func validationError(format string, args ...interface{}) error {
	return newError(errValidation, format, args...)
}

var (
	errMissingCredentials = newError(errValidation, "Username and password are required")
	errUsernameTaken      = newError(errConflict, "Username already exists")
	errInvalidLogin       = newError(errAuthentication, "Invalid username or password")
	errUnauthorized       = newError(errAuthentication, "Unauthorized")
	errAccountNotFound    = newError(errNotFound, "User not found")
	errMissingFields      = newError(errValidation, "Missing required fields")
	errUnprocessable      = newError(errValidation, "Unprocessable Entity")
)
