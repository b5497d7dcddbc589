// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/holomush/shoplist/internal/auth"
	"github.com/holomush/shoplist/pkg/errutil"
)

func TestLogin_PasswordOnly(t *testing.T) {
	env := newTestEnv(t)
	user := newUser("alice")
	env.expectPasswordOK(user, "secret1")

	stdout, _, err := env.run("secret1\n", "login", "-u", "alice", "--password-stdin")
	require.NoError(t, err)
	assert.Contains(t, stdout, auth.MsgLoginSucceeded)
	assert.Contains(t, stdout, "Logged in as alice")
	assert.Equal(t, "postgres://test/shoplist", env.dbURL)
}

func TestLogin_PromptsForUsernameAndPassword(t *testing.T) {
	env := newTestEnv(t)
	user := newUser("alice")
	env.expectPasswordOK(user, "secret1")

	stdout, stderr, err := env.run("alice\nsecret1\n", "login")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Username: ")
	assert.Contains(t, stderr, "Password: ")
	assert.Contains(t, stdout, "Logged in as alice")
}

func TestLogin_TwoFactorRetriesAfterWrongCode(t *testing.T) {
	env := newTestEnv(t)
	user := newUser("alice")
	code := "424242"
	user.TwoFactorEnabled = true
	user.TwoFactorCode = &code
	env.expectPasswordOK(user, "secret1")
	env.store.users.On("GetByID", anyCtx, user.ID).Return(user, nil).Twice()

	stdout, stderr, err := env.run("secret1\n000000\n424242\n", "login", "-u", "alice", "--password-stdin")
	require.NoError(t, err)
	assert.Contains(t, stderr, auth.MsgTwoFactorRequired)
	assert.Contains(t, stderr, auth.MsgInvalidCode)
	assert.Contains(t, stdout, auth.MsgTwoFactorSucceeded)
	assert.Contains(t, stdout, "Logged in as alice")
}

func TestLogin_TwoFactorAbandoned(t *testing.T) {
	tests := []struct {
		name     string
		stdin    string
		wantCode string
	}{
		{name: "empty answer", stdin: "secret1\n\n", wantCode: "LOGIN_ABORTED"},
		{name: "input closed", stdin: "secret1\n", wantCode: "INPUT_CLOSED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			user := newUser("alice")
			user.TwoFactorEnabled = true
			env.expectPasswordOK(user, "secret1")

			stdout, _, err := env.run(tt.stdin, "login", "-u", "alice", "--password-stdin")
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, tt.wantCode)
			assert.NotContains(t, stdout, "Logged in")
		})
	}
}

func TestLogin_WrongPasswordCountsAttempt(t *testing.T) {
	env := newTestEnv(t)
	user := newUser("alice")
	env.store.users.On("GetByUsername", anyCtx, "alice").Return(user, nil).Once()
	env.hasher.On("Verify", "wrong!", user.PasswordHash).Return(false, nil).Once()
	env.store.users.On("CompareAndSetLockout", anyCtx, user.ID,
		auth.LockoutState{}, auth.LockoutState{FailedAttempts: 1}).Return(true, nil).Once()

	_, _, err := env.run("wrong!\n", "login", "-u", "alice", "--password-stdin")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "LOGIN_REJECTED")
	errutil.AssertErrorContext(t, err, "outcome", string(auth.OutcomeInvalidCredentials))
	assert.Contains(t, err.Error(), "Attempt: 1/3")
}

func TestLogin_LockedAccount(t *testing.T) {
	env := newTestEnv(t)
	user := newUser("alice")
	until := testNow.Add(5 * time.Minute)
	user.FailedAttempts = auth.MaxFailedAttempts
	user.LockUntil = &until
	env.store.users.On("GetByUsername", anyCtx, "alice").Return(user, nil).Once()

	_, _, err := env.run("secret1\n", "login", "-u", "alice", "--password-stdin")
	require.Error(t, err)
	errutil.AssertErrorContext(t, err, "outcome", string(auth.OutcomeLocked))
	assert.Contains(t, err.Error(), until.Format(auth.LockTimeLayout))
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	env.store.users.On("ExistsByUsername", anyCtx, "bob").Return(false, nil).Once()
	env.hasher.On("Hash", "secret1").Return("$argon2id$bob", nil).Once()
	env.store.users.On("Create", anyCtx, mock.MatchedBy(func(u *auth.User) bool {
		return u.Username == "bob" && u.PasswordHash == "$argon2id$bob"
	})).Return(nil).Once()

	stdout, stderr, err := env.run("bob\nsecret1\nsecret1\n", "register")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Confirm password: ")
	assert.Contains(t, stdout, "Registered bob")
}

func TestRegister_HelpStatesPasswordRule(t *testing.T) {
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"register", "--help"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), fmt.Sprintf("at least %d characters", auth.MinPasswordLength))
}

func TestRegister_ReportsEveryProblem(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run("bo!\nabc\nxyz\n", "register")
	require.Error(t, err)
	errutil.AssertProblems(t, err,
		"Username may contain only Latin letters, digits and _.",
		"Password must be at least 8 characters.",
		auth.MsgPasswordMismatch,
	)
}

func TestRegister_PasswordStdinConfirmsItself(t *testing.T) {
	env := newTestEnv(t)
	env.store.users.On("ExistsByUsername", anyCtx, "bob").Return(true, nil).Once()

	_, _, err := env.run("secret1\n", "register", "-u", "bob", "--password-stdin")
	require.Error(t, err)
	errutil.AssertProblems(t, err, auth.MsgUsernameTaken)
}

func TestUser_EnableTwoFactor(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantOutput []string
		wantPrefix string
	}{
		{
			name:       "static code",
			args:       []string{"user", "enable-2fa", "-u", "alice", "--password-stdin"},
			wantOutput: []string{"Your 2FA code: "},
		},
		{
			name:       "totp",
			args:       []string{"user", "enable-2fa", "--totp", "-u", "alice", "--password-stdin"},
			wantOutput: []string{"Secret: ", "otpauth://totp/"},
			wantPrefix: auth.TOTPPrefix,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			user := newUser("alice")
			env.expectPasswordOK(user, "secret1")
			env.store.users.On("GetByID", anyCtx, user.ID).Return(user, nil).Once()

			var stored string
			env.store.users.On("UpdateTwoFactor", anyCtx, user.ID, true, mock.AnythingOfType("*string")).
				Run(func(args mock.Arguments) { stored = *args.Get(3).(*string) }).
				Return(nil).Once()

			stdout, _, err := env.run("secret1\n", tt.args...)
			require.NoError(t, err)
			for _, want := range tt.wantOutput {
				assert.Contains(t, stdout, want)
			}
			assert.True(t, strings.HasPrefix(stored, tt.wantPrefix))
			assert.NotEmpty(t, stored)
		})
	}
}

func TestUser_DisableTwoFactor(t *testing.T) {
	env := newTestEnv(t)
	user := newUser("alice")
	env.expectPasswordOK(user, "secret1")
	env.store.users.On("UpdateTwoFactor", anyCtx, user.ID, false, (*string)(nil)).Return(nil).Once()

	stdout, _, err := env.run("secret1\n", "user", "disable-2fa", "-u", "alice", "--password-stdin")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Two-factor authentication disabled")
}
