// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrUsernameTaken is returned by UserRepository.Create when the username is
// already registered.
var ErrUsernameTaken = errors.New("username taken")

// ErrLockoutConflict is returned by the service when the lockout counters
// kept changing underneath it and the retry budget ran out.
var ErrLockoutConflict = errors.New("lockout state changed concurrently")
