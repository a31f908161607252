// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package listing

import "strconv"

// Display cursor defaults.
const (
	InitialCount = 9
	Step         = 9
	MaxCursor    = InitialCount + Step*1_000_000
)

// Cursor is the number of filtered results the page displays.
type Cursor int

// ParseCursor reads the "show" parameter. Anything missing, malformed or
// below InitialCount yields InitialCount; other values round up to the
// next multiple of Step and are capped at MaxCursor.
func ParseCursor(s string) Cursor {
	n, err := strconv.Atoi(s)
	if err != nil || n <= InitialCount {
		return InitialCount
	}
	if n >= MaxCursor {
		return MaxCursor
	}
	if rem := (n - InitialCount) % Step; rem != 0 {
		n += Step - rem
	}
	return Cursor(n)
}

// Next returns the cursor after one "load more".
func (c Cursor) Next() Cursor {
	return c + Step
}

// Visible returns how many of total results the cursor shows.
func (c Cursor) Visible(total int) int {
	return max(0, min(int(c), total))
}
