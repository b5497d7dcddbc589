// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"fmt"
	"time"
)

// OutcomeKind classifies the result of a login or second-factor step.
type OutcomeKind string

// Outcome kinds.
const (
	OutcomeAuthenticated      OutcomeKind = "authenticated"
	OutcomeTwoFactorRequired  OutcomeKind = "two-factor-required"
	OutcomeInvalidCredentials OutcomeKind = "invalid-credentials"
	OutcomeLocked             OutcomeKind = "locked"
	OutcomeInvalidCode        OutcomeKind = "invalid-code"
	OutcomeNoPendingChallenge OutcomeKind = "no-pending-challenge"
	OutcomeUserNotFound       OutcomeKind = "user-not-found"
)

// LockTimeLayout formats lock deadlines in outcome messages.
const LockTimeLayout = "2006-01-02 15:04:05"

// User-facing outcome messages.
const (
	MsgInvalidCredentials = "Invalid username or password."
	MsgTwoFactorRequired  = "Enter your 2FA code."
	MsgLoginSucceeded     = "Login successful."
	MsgTwoFactorSucceeded = "2FA OK. Logged in."
	MsgInvalidCode        = "Invalid 2FA code."
	MsgUserNotFound       = "User not found."
	MsgNoPendingChallenge = "No pending 2FA check. Log in first."
)

// Outcome is the result of Authenticate or Verify. Rejections are outcomes,
// not errors; errors are reserved for infrastructure failures.
type Outcome struct {
	Kind    OutcomeKind
	Message string

	// Identity is set for OutcomeAuthenticated.
	Identity *Identity
	// LockUntil is set for OutcomeLocked.
	LockUntil *time.Time
	// Attempt is the failure count reported with OutcomeInvalidCredentials
	// after a wrong password on an existing account.
	Attempt int

	// Session is what the caller must apply to its session state.
	Session SessionMutation
}

// OK reports whether the outcome lets the caller proceed.
func (o Outcome) OK() bool {
	return o.Kind == OutcomeAuthenticated || o.Kind == OutcomeTwoFactorRequired
}

func invalidCredentials() Outcome {
	return Outcome{Kind: OutcomeInvalidCredentials, Message: MsgInvalidCredentials}
}

func failedAttempt(attempt int) Outcome {
	return Outcome{
		Kind:    OutcomeInvalidCredentials,
		Message: fmt.Sprintf("Invalid username or password. Attempt: %d/%d", attempt, MaxFailedAttempts),
		Attempt: attempt,
	}
}

func alreadyLocked(until time.Time) Outcome {
	return Outcome{
		Kind:      OutcomeLocked,
		Message:   "Account is temporarily locked until " + until.Format(LockTimeLayout),
		LockUntil: &until,
	}
}

func lockedNow(until time.Time) Outcome {
	return Outcome{
		Kind:      OutcomeLocked,
		Message:   fmt.Sprintf("%d failed attempts. Account locked until %s", MaxFailedAttempts, until.Format(LockTimeLayout)),
		LockUntil: &until,
		Attempt:   MaxFailedAttempts,
	}
}

func authenticated(id Identity, msg string, clearChallenge bool) Outcome {
	return Outcome{
		Kind:     OutcomeAuthenticated,
		Message:  msg,
		Identity: &id,
		Session:  SessionMutation{SetIdentity: &id, ClearChallenge: clearChallenge},
	}
}

func twoFactorRequired(c Challenge) Outcome {
	return Outcome{
		Kind:    OutcomeTwoFactorRequired,
		Message: MsgTwoFactorRequired,
		Session: SessionMutation{SetChallenge: &c},
	}
}
