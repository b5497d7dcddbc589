// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package item manages a user's shopping list: validating and storing items,
// and moving them in and out of JSON and CSV files.
//
// Every operation on an item is scoped to its owner. Items belonging to
// another user look exactly like items that do not exist.
package item
