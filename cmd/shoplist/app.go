// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/holomush/shoplist/internal/auth"
	"github.com/holomush/shoplist/internal/config"
	"github.com/holomush/shoplist/internal/item"
	"github.com/holomush/shoplist/internal/logging"
	"github.com/holomush/shoplist/internal/observability"
	"github.com/holomush/shoplist/pkg/errutil"
)

// app is what one command run works with. The store is opened on first use.
type app struct {
	deps    *Deps
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Recorder
	prompt  *prompter
	store   Store
}

// runCommand loads the configuration, sets up logging and metrics, and runs
// fn under the configured timeout. name labels the run in metrics.
func runCommand(cmd *cobra.Command, deps *Deps, name string, fn func(ctx context.Context, a *app) error) error {
	cfg, err := config.Load(configFile, cmd.Flags(), deps.Getenv)
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := logging.SetDefault(logging.Options{
		Service: "shoplist",
		Version: version,
		Format:  cfg.LogFormat,
		Level:   level,
		Writer:  cmd.ErrOrStderr(),
	})

	a := &app{
		deps:    deps,
		cfg:     cfg,
		logger:  logger,
		metrics: observability.NewRecorder(),
		prompt:  newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()),
	}

	started := deps.Now()
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
	err = fn(ctx, a)
	cancel()
	if a.store != nil {
		a.store.Close()
	}

	a.metrics.ObserveCommand(name, started, deps.Now(), err)
	if werr := a.metrics.WriteTextfile(cfg.MetricsTextfile); werr != nil {
		errutil.LogError(logger, "failed to write metrics textfile", werr)
	}
	if err != nil {
		logger.Debug("command failed", "command", name, "error", err)
	}
	return err
}

// open returns the store, connecting on the first call.
func (a *app) open(ctx context.Context) (Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	if err := a.cfg.RequireDatabase(); err != nil {
		return nil, err
	}
	st, err := a.deps.StoreOpener(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "open store").Wrap(err)
	}
	a.store = st
	return st, nil
}

func (a *app) authService(ctx context.Context) (*auth.Service, error) {
	st, err := a.open(ctx)
	if err != nil {
		return nil, err
	}
	return auth.NewAuthService(st.Users(), a.deps.Hasher,
		auth.WithLogger(a.logger),
		auth.WithLockMinutes(a.cfg.LockMinutes),
	)
}

func (a *app) itemService(ctx context.Context) (*item.Service, error) {
	st, err := a.open(ctx)
	if err != nil {
		return nil, err
	}
	return item.NewService(st.Items(), st.Categories(), a.logger)
}

// credentials are the flags of commands that act as a user.
type credentials struct {
	username      string
	passwordStdin bool
}

func addCredentialFlags(fs *pflag.FlagSet, c *credentials) {
	fs.StringVarP(&c.username, "user", "u", "", "username (prompted when empty)")
	fs.BoolVar(&c.passwordStdin, "password-stdin", false, "read the password from the first line of stdin")
}

func (a *app) username(c credentials) (string, error) {
	if c.username != "" {
		return c.username, nil
	}
	return a.prompt.Line("Username: ")
}

func (a *app) password(c credentials, prompt string) (string, error) {
	if c.passwordStdin {
		return a.prompt.Line("")
	}
	return a.prompt.Password(prompt)
}

// signIn logs the user in, asking for the second factor when the account has
// one. A wrong code is reported and asked again; an empty answer gives up.
// The identity lives only in this process.
func (a *app) signIn(ctx context.Context, cmd *cobra.Command, c credentials) (*auth.Identity, auth.Outcome, error) {
	username, err := a.username(c)
	if err != nil {
		return nil, auth.Outcome{}, err
	}
	password, err := a.password(c, "Password: ")
	if err != nil {
		return nil, auth.Outcome{}, err
	}
	svc, err := a.authService(ctx)
	if err != nil {
		return nil, auth.Outcome{}, err
	}

	var session auth.SessionState
	out, err := svc.Authenticate(ctx, username, password, a.deps.Now())
	if err != nil {
		return nil, out, err
	}
	session.Apply(out.Session)

	for out.Kind == auth.OutcomeTwoFactorRequired || (out.Kind == auth.OutcomeInvalidCode && session.Challenge != nil) {
		cmd.PrintErrln(out.Message)
		code, err := a.prompt.Line("2FA code: ")
		if err != nil {
			return nil, out, err
		}
		if code == "" {
			return nil, out, oops.Code("LOGIN_ABORTED").Errorf("two-factor check abandoned")
		}
		out, err = svc.Verify(ctx, session.Challenge, code, a.deps.Now())
		if err != nil {
			return nil, out, err
		}
		session.Apply(out.Session)
	}

	if !session.Authenticated() {
		return nil, out, oops.Code("LOGIN_REJECTED").
			With("username", username).
			With("outcome", string(out.Kind)).
			Errorf("%s", out.Message)
	}
	return session.Identity, out, nil
}
