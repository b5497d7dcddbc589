// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"time"
)

// Lockout configuration.
const (
	// MaxFailedAttempts is the number of consecutive failures that locks an account.
	MaxFailedAttempts = 3

	// DefaultLockMinutes is how long an account stays locked when not configured.
	DefaultLockMinutes = 10
)

// LockoutState is the persisted pair of failure counter and lock deadline.
type LockoutState struct {
	FailedAttempts int
	LockUntil      *time.Time
}

// LockedAt reports whether the lock deadline is strictly after now.
// An expired deadline is treated as unlocked; it is not cleared here.
func (s LockoutState) LockedAt(now time.Time) bool {
	return s.LockUntil != nil && s.LockUntil.After(now)
}

// Equal compares counters and deadlines by instant.
func (s LockoutState) Equal(other LockoutState) bool {
	if s.FailedAttempts != other.FailedAttempts {
		return false
	}
	if s.LockUntil == nil || other.LockUntil == nil {
		return s.LockUntil == nil && other.LockUntil == nil
	}
	return s.LockUntil.Equal(*other.LockUntil)
}

// LockoutPolicy computes lockout transitions. It has no side effects.
type LockoutPolicy struct {
	LockDuration time.Duration
}

// NewLockoutPolicy returns a policy locking for the given number of minutes.
// Non-positive values fall back to DefaultLockMinutes.
func NewLockoutPolicy(lockMinutes int) LockoutPolicy {
	if lockMinutes <= 0 {
		lockMinutes = DefaultLockMinutes
	}
	return LockoutPolicy{LockDuration: time.Duration(lockMinutes) * time.Minute}
}

// FailureResult is the state transition after a failed password check.
type FailureResult struct {
	Next LockoutState
	// Locked is true when this failure caused the lock.
	Locked bool
}

// OnFailure returns the state after a failed password check on an unlocked
// account. Reaching MaxFailedAttempts clamps the counter and sets the deadline.
func (p LockoutPolicy) OnFailure(current LockoutState, now time.Time) FailureResult {
	failed := current.FailedAttempts + 1
	if failed < MaxFailedAttempts {
		return FailureResult{Next: LockoutState{FailedAttempts: failed}}
	}
	until := now.Add(p.LockDuration)
	return FailureResult{
		Next:   LockoutState{FailedAttempts: MaxFailedAttempts, LockUntil: &until},
		Locked: true,
	}
}

// OnSuccess returns the state after a successful password check: zero failures
// and no lock.
func (p LockoutPolicy) OnSuccess() LockoutState {
	return LockoutState{}
}
