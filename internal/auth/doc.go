// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package auth provides account registration, password authentication with
// account lockout, and the second-factor check for shoplist.
//
// # Domain Types
//
// User accounts are created through RegistrationService.Register, which
// validates the username and password before anything is persisted. Direct
// struct initialization of User bypasses validation and is meant for
// repositories and tests only.
//
// # Services
//
//   - Service - password login (Authenticate), second-factor check (Verify),
//     and two-factor administration
//   - RegistrationService - account creation
//
// Services never touch transport session state. Every decision is returned as
// an Outcome whose SessionMutation the caller applies to its own SessionState.
//
// # Lockout
//
// Three consecutive failed password checks lock the account for a configurable
// number of minutes. While locked, every attempt is rejected without touching
// the counters. The counters are updated with a compare-and-swap against the
// repository so concurrent failures are never under-counted.
package auth
