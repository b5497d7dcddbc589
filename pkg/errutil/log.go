// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package errutil holds error helpers shared by shoplist packages: structured
// logging of oops errors, aggregated validation errors, and test assertions.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs err at error level. Oops errors contribute their code and
// context as separate attributes; validation errors are logged at warn level
// with their problem list since they describe bad input, not a fault.
func LogError(logger *slog.Logger, msg string, err error) {
	if verr, ok := AsValidation(err); ok {
		logger.Warn(msg, "problems", verr.Problems)
		return
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		logger.Error(msg, "error", err)
		return
	}
	attrs := []any{"error", oopsErr.Error()}
	if code := oopsErr.Code(); code != nil {
		attrs = append(attrs, "code", code)
	}
	if ctx := oopsErr.Context(); len(ctx) > 0 {
		attrs = append(attrs, "context", ctx)
	}
	logger.Error(msg, attrs...)
}
