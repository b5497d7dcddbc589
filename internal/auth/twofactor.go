// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// FallbackTwoFactorCode is accepted when a user has two-factor enabled but no
// stored code. This is a demo/training weakness kept for compatibility with
// existing accounts; do not rely on it.
const FallbackTwoFactorCode = "123456"

// TOTPPrefix marks a stored second-factor secret as a TOTP key.
const TOTPPrefix = "totp:"

// CodeMatcher decides whether a submitted second-factor code matches the
// stored secret.
type CodeMatcher interface {
	Match(stored *string, submitted string, now time.Time) bool
}

type codeMatcher struct {
	opts totp.ValidateOpts
}

// NewCodeMatcher returns the default matcher: static codes are compared in
// constant time, "totp:"-prefixed secrets are validated as RFC 6238 codes with
// one period of skew.
func NewCodeMatcher() CodeMatcher {
	return codeMatcher{opts: totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}}
}

func (m codeMatcher) Match(stored *string, submitted string, now time.Time) bool {
	expected := FallbackTwoFactorCode
	if stored != nil && *stored != "" {
		expected = *stored
	}
	if secret, ok := strings.CutPrefix(expected, TOTPPrefix); ok {
		valid, err := totp.ValidateCustom(submitted, secret, now, m.opts)
		return err == nil && valid
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(submitted)) == 1
}

// Verify checks the second factor for a pending challenge at time now.
//
// A mismatch leaves the challenge in place so the user can try again; there
// is no attempt limit on this step.
func (s *Service) Verify(ctx context.Context, pending *Challenge, code string, now time.Time) (out Outcome, err error) {
	ctx, span := tracer.Start(ctx, "auth.verify_two_factor")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.String("auth.outcome", string(out.Kind)))
			RecordOutcome(OpTwoFactor, out.Kind)
		}
		span.End()
	}()

	if pending == nil {
		return Outcome{Kind: OutcomeNoPendingChallenge, Message: MsgNoPendingChallenge}, nil
	}
	span.SetAttributes(attribute.String("auth.user_id", pending.UserID.String()))

	user, err := s.users.GetByID(ctx, pending.UserID)
	if errors.Is(err, ErrNotFound) {
		return Outcome{Kind: OutcomeUserNotFound, Message: MsgUserNotFound}, nil
	}
	if err != nil {
		return Outcome{}, oops.Code("AUTH_TWOFA_FAILED").
			With("operation", "get user by id").
			With("user_id", pending.UserID.String()).
			Wrap(err)
	}

	if !s.matcher.Match(user.TwoFactorCode, strings.TrimSpace(code), now) {
		s.logger.InfoContext(ctx, "two-factor code rejected", "user_id", user.ID.String())
		return Outcome{Kind: OutcomeInvalidCode, Message: MsgInvalidCode}, nil
	}

	s.logger.InfoContext(ctx, "two-factor check passed", "user_id", user.ID.String())
	return authenticated(user.Identity(), MsgTwoFactorSucceeded, true), nil
}

// TwoFactorMode selects the kind of secret EnableTwoFactor creates.
type TwoFactorMode string

// Two-factor modes.
const (
	TwoFactorStatic TwoFactorMode = "code"
	TwoFactorTOTP   TwoFactorMode = "totp"
)

// TwoFactorSetup is what the user needs to complete enrollment.
type TwoFactorSetup struct {
	// Code is the static code for TwoFactorStatic.
	Code string
	// Secret and URL describe the TOTP key for TwoFactorTOTP.
	Secret string
	URL    string
}

// EnableTwoFactor turns on the second factor for a user and stores a fresh secret.
func (s *Service) EnableTwoFactor(ctx context.Context, userID ulid.ULID, mode TwoFactorMode) (*TwoFactorSetup, error) {
	ctx, span := tracer.Start(ctx, "auth.enable_two_factor",
		trace.WithAttributes(attribute.String("auth.user_id", userID.String())),
	)
	defer span.End()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, oops.Code("AUTH_TWOFA_ENABLE_FAILED").
			With("operation", "get user by id").
			With("user_id", userID.String()).
			Wrap(err)
	}

	var setup TwoFactorSetup
	var stored string
	switch mode {
	case TwoFactorStatic:
		code, genErr := randomDigits(6)
		if genErr != nil {
			return nil, oops.Code("AUTH_TWOFA_ENABLE_FAILED").With("operation", "generate code").Wrap(genErr)
		}
		setup.Code, stored = code, code
	case TwoFactorTOTP:
		key, genErr := totp.Generate(totp.GenerateOpts{Issuer: s.issuerID, AccountName: user.Username})
		if genErr != nil {
			return nil, oops.Code("AUTH_TWOFA_ENABLE_FAILED").With("operation", "generate totp key").Wrap(genErr)
		}
		setup.Secret, setup.URL = key.Secret(), key.URL()
		stored = TOTPPrefix + key.Secret()
	default:
		return nil, oops.Code("AUTH_TWOFA_INVALID_MODE").With("mode", string(mode)).Errorf("unknown two-factor mode %q", mode)
	}

	if err := s.users.UpdateTwoFactor(ctx, userID, true, &stored); err != nil {
		return nil, oops.Code("AUTH_TWOFA_ENABLE_FAILED").
			With("operation", "store two-factor secret").
			With("user_id", userID.String()).
			Wrap(err)
	}
	s.logger.InfoContext(ctx, "two-factor enabled", "user_id", userID.String(), "mode", string(mode))
	return &setup, nil
}

// DisableTwoFactor turns off the second factor and forgets the secret.
func (s *Service) DisableTwoFactor(ctx context.Context, userID ulid.ULID) error {
	if err := s.users.UpdateTwoFactor(ctx, userID, false, nil); err != nil {
		return oops.Code("AUTH_TWOFA_DISABLE_FAILED").
			With("user_id", userID.String()).
			Wrap(err)
	}
	s.logger.InfoContext(ctx, "two-factor disabled", "user_id", userID.String())
	return nil
}

func randomDigits(n int) (string, error) {
	limit := big.NewInt(1)
	for range n {
		limit.Mul(limit, big.NewInt(10))
	}
	v, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", n, v), nil
}
