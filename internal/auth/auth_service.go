// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("shoplist/auth")

// Lockout compare-and-swap retry budget.
const (
	lockoutRetries = 5
	lockoutBackoff = 10 * time.Millisecond
)

// dummyPasswordHash is used when a user doesn't exist to prevent timing attacks.
// We still run password verification to make response time consistent.
// This is NOT a real credential - it's a fake hash that will never match any password.
//
//nolint:gosec // G101: This is an intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Service provides password login, the second-factor check and two-factor
// administration.
type Service struct {
	users    UserRepository
	hasher   PasswordHasher
	policy   LockoutPolicy
	matcher  CodeMatcher
	logger   *slog.Logger
	backoff  func() retry.Backoff
	issuerID string
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLockMinutes sets how long an account stays locked.
func WithLockMinutes(minutes int) ServiceOption {
	return func(s *Service) {
		s.policy = NewLockoutPolicy(minutes)
	}
}

// WithCodeMatcher replaces the second-factor code matcher.
func WithCodeMatcher(m CodeMatcher) ServiceOption {
	return func(s *Service) {
		if m != nil {
			s.matcher = m
		}
	}
}

// WithTOTPIssuer sets the issuer shown by authenticator apps for TOTP keys.
func WithTOTPIssuer(issuer string) ServiceOption {
	return func(s *Service) {
		if issuer != "" {
			s.issuerID = issuer
		}
	}
}

// NewAuthService creates a new Service.
func NewAuthService(users UserRepository, hasher PasswordHasher, opts ...ServiceOption) (*Service, error) {
	if users == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("user repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_INVALID_CONFIG").Errorf("password hasher is required")
	}
	s := &Service{
		users:    users,
		hasher:   hasher,
		policy:   NewLockoutPolicy(DefaultLockMinutes),
		matcher:  NewCodeMatcher(),
		logger:   slog.Default(),
		issuerID: "shoplist",
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(lockoutRetries, retry.NewConstant(lockoutBackoff))
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// errLockoutRace marks a lost compare-and-swap inside the retry loop.
var errLockoutRace = errors.New("lockout race")

// Authenticate checks a username and password at time now.
//
// The username is trimmed and then matched exactly. Unknown usernames and
// wrong passwords produce the same generic outcome; a wrong password on an
// existing account also advances the lockout counters. While an account is
// locked every attempt is rejected and the counters are left alone.
func (s *Service) Authenticate(ctx context.Context, username, password string, now time.Time) (out Outcome, err error) {
	username = strings.TrimSpace(username)

	ctx, span := tracer.Start(ctx, "auth.authenticate",
		trace.WithAttributes(attribute.String("auth.username", username)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.String("auth.outcome", string(out.Kind)))
			RecordOutcome(OpLogin, out.Kind)
		}
		span.End()
	}()

	// Password verification is expensive; cache the verdict per stored hash so
	// retries after a lost race only re-read the counters.
	var verifiedHash string
	var verified bool

	err = retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		user, lookupErr := s.users.GetByUsername(ctx, username)
		if lookupErr != nil {
			if errors.Is(lookupErr, ErrNotFound) {
				_, _ = s.hasher.Verify(password, dummyPasswordHash) //nolint:errcheck // timing only
				out = invalidCredentials()
				return nil
			}
			return oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "get user by username").
				Wrap(lookupErr)
		}

		state := user.Lockout()
		if state.LockedAt(now) {
			out = alreadyLocked(*state.LockUntil)
			return nil
		}

		if verifiedHash != user.PasswordHash {
			ok, verifyErr := s.hasher.Verify(password, user.PasswordHash)
			if verifyErr != nil {
				return oops.Code("AUTH_LOGIN_FAILED").
					With("operation", "verify password").
					With("user_id", user.ID.String()).
					Wrap(verifyErr)
			}
			verifiedHash, verified = user.PasswordHash, ok
		}

		if !verified {
			res := s.policy.OnFailure(state, now)
			swapped, casErr := s.users.CompareAndSetLockout(ctx, user.ID, state, res.Next)
			if casErr != nil {
				return oops.Code("AUTH_LOGIN_FAILED").
					With("operation", "record failed attempt").
					With("user_id", user.ID.String()).
					Wrap(casErr)
			}
			if !swapped {
				LockoutConflicts.Inc()
				return retry.RetryableError(errLockoutRace)
			}
			if res.Locked {
				Lockouts.Inc()
				s.logger.WarnContext(ctx, "account locked",
					"user_id", user.ID.String(),
					"lock_until", res.Next.LockUntil)
				out = lockedNow(*res.Next.LockUntil)
				return nil
			}
			out = failedAttempt(res.Next.FailedAttempts)
			return nil
		}

		if err := s.users.ResetLockout(ctx, user.ID); err != nil {
			return oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "reset lockout").
				With("user_id", user.ID.String()).
				Wrap(err)
		}
		s.upgradeHash(ctx, user, password)

		if user.TwoFactorEnabled {
			out = twoFactorRequired(Challenge{UserID: user.ID})
			return nil
		}
		out = authenticated(user.Identity(), MsgLoginSucceeded, false)
		return nil
	})
	if err != nil {
		if errors.Is(err, errLockoutRace) {
			return Outcome{}, oops.Code("AUTH_LOCKOUT_CONFLICT").
				With("username", username).
				Wrap(ErrLockoutConflict)
		}
		return Outcome{}, err
	}

	s.logger.InfoContext(ctx, "login attempt", "username", username, "outcome", string(out.Kind))
	return out, nil
}

// upgradeHash re-hashes a legacy password after a successful check.
// Failure is logged and does not affect the login.
func (s *Service) upgradeHash(ctx context.Context, user *User, password string) {
	if !s.hasher.NeedsUpgrade(user.PasswordHash) {
		return
	}
	newHash, err := s.hasher.Hash(password)
	if err == nil {
		err = s.users.UpdatePasswordHash(ctx, user.ID, newHash)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "password hash upgrade failed",
			"user_id", user.ID.String(),
			"error", err)
		return
	}
	s.logger.InfoContext(ctx, "password hash upgraded", "user_id", user.ID.String())
}
