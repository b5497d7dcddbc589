// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/shoplist/pkg/errutil"
)

// Registration messages that are not produced by a field validator.
const (
	MsgPasswordMismatch = "Passwords do not match."
	MsgUsernameTaken    = "Username already exists."
)

// RegistrationService creates user accounts.
type RegistrationService struct {
	users  UserRepository
	hasher PasswordHasher
	logger *slog.Logger
	now    func() time.Time
}

// NewRegistrationService creates a new RegistrationService.
func NewRegistrationService(users UserRepository, hasher PasswordHasher, logger *slog.Logger) (*RegistrationService, error) {
	if users == nil {
		return nil, oops.Code("REGISTER_INVALID_CONFIG").Errorf("user repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("REGISTER_INVALID_CONFIG").Errorf("password hasher is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RegistrationService{users: users, hasher: hasher, logger: logger, now: time.Now}, nil
}

// Register validates the input and creates an account.
//
// Username format, password length and confirmation are all checked and
// reported together. Uniqueness of the trimmed username is only checked once
// those pass. Failures carry an *errutil.ValidationError.
func (s *RegistrationService) Register(ctx context.Context, username, password, confirm string) (*User, error) {
	ctx, span := tracer.Start(ctx, "auth.register")
	defer span.End()

	username = strings.TrimSpace(username)

	problems := &errutil.ValidationError{}
	problems.Check(ValidateUsername(username))
	problems.Check(ValidatePassword(password))
	if password != confirm {
		problems.Add(MsgPasswordMismatch)
	}
	if !problems.Empty() {
		RecordOutcome(OpRegister, "invalid")
		return nil, oops.Code("REGISTER_INVALID").With("username", username).Wrap(problems)
	}

	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, oops.Code("REGISTER_FAILED").
			With("operation", "check username").
			With("username", username).
			Wrap(err)
	}
	if exists {
		return nil, s.taken(username)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("REGISTER_FAILED").With("operation", "hash password").Wrap(err)
	}

	user := &User{
		ID:           ulid.Make(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration of the same name.
		if errors.Is(err, ErrUsernameTaken) {
			return nil, s.taken(username)
		}
		return nil, oops.Code("REGISTER_FAILED").
			With("operation", "create user").
			With("username", username).
			Wrap(err)
	}

	RecordOutcome(OpRegister, "created")
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID.String(), "username", username)
	return user, nil
}

func (s *RegistrationService) taken(username string) error {
	RecordOutcome(OpRegister, "username-taken")
	return oops.Code("REGISTER_USERNAME_TAKEN").
		With("username", username).
		Wrap(&errutil.ValidationError{Problems: []string{MsgUsernameTaken}})
}
