// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package errutil

import (
	"errors"
	"strings"
)

// ValidationError collects every problem found in one piece of input so the
// caller can show them all at once.
type ValidationError struct {
	Problems []string
}

// Error joins the problems with a space.
func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, " ")
}

// Add appends a problem message.
func (e *ValidationError) Add(problem string) {
	e.Problems = append(e.Problems, problem)
}

// Check appends err's message when err is non-nil.
func (e *ValidationError) Check(err error) {
	if err != nil {
		e.Add(err.Error())
	}
}

// Empty reports whether no problem was recorded.
func (e *ValidationError) Empty() bool {
	return len(e.Problems) == 0
}

// Err returns e, or nil when no problem was recorded.
func (e *ValidationError) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

// AsValidation unwraps err to a *ValidationError.
func AsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// Problems returns the validation problems carried by err, or nil.
func Problems(err error) []string {
	if verr, ok := AsValidation(err); ok {
		return verr.Problems
	}
	return nil
}
