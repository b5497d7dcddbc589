// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package item

import "errors"

// ErrNotFound is returned when an item or category does not exist, or the
// item belongs to someone else.
var ErrNotFound = errors.New("not found")
