// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"github.com/oklog/ulid/v2"
)

// Identity is the payload a caller keeps for an authenticated user.
type Identity struct {
	ID               ulid.ULID
	Username         string
	TwoFactorEnabled bool
}

// Challenge is a pending second-factor check bound to exactly one user.
// It exists only in the caller's session state and is never persisted.
type Challenge struct {
	UserID ulid.ULID
}

// SessionMutation describes what the caller must change in its session
// state after an operation. The zero value changes nothing.
type SessionMutation struct {
	// SetIdentity, when non-nil, marks the session as authenticated.
	SetIdentity *Identity
	// SetChallenge, when non-nil, records a pending second-factor check.
	SetChallenge *Challenge
	// ClearChallenge drops any pending second-factor check.
	ClearChallenge bool
}

// SessionState is the minimal per-session record a transport keeps.
type SessionState struct {
	Identity  *Identity
	Challenge *Challenge
}

// Apply performs m on s. Clearing happens before setting.
func (s *SessionState) Apply(m SessionMutation) {
	if m.ClearChallenge {
		s.Challenge = nil
	}
	if m.SetChallenge != nil {
		c := *m.SetChallenge
		s.Challenge = &c
	}
	if m.SetIdentity != nil {
		id := *m.SetIdentity
		s.Identity = &id
	}
}

// Authenticated reports whether the session carries an identity.
func (s *SessionState) Authenticated() bool {
	return s.Identity != nil
}
