// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the scs session manager used for flash
// messages across the contact form's post/redirect/get cycle.
package session

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// Lifetime is how long an idle visitor session is kept.
const Lifetime = 2 * time.Hour

const flashKey = "flash"

// Flash kinds.
const (
	FlashContactSent = "contact-sent"
)

// New creates a session manager backed by the sessions table.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = sqlite3store.New(db)

	sm.Lifetime = Lifetime
	sm.Cookie.Name = "sitekit_session"
	sm.Cookie.Path = "/"
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev
	if !isDev {
		sm.Cookie.Name = "__Host-session"
	}

	return sm
}

// SetFlash stores a one-shot message for the next request.
func SetFlash(ctx context.Context, sm *scs.SessionManager, kind string) {
	sm.Put(ctx, flashKey, kind)
}

// PopFlash returns and clears the pending flash message, or "".
func PopFlash(ctx context.Context, sm *scs.SessionManager) string {
	return sm.PopString(ctx, flashKey)
}
