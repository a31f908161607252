// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// AccessGateConfig configures the cookie-based access gate.
type AccessGateConfig struct {
	// CookieName holds URL-encoded JSON of the form {"expires": <unix ms>}.
	// A cookie without an expiry does not expire.
	CookieName string
	// LoginURL is where visitors without a valid cookie are sent.
	LoginURL string
	// PublicPrefixes pass through without a cookie. The login path is always public.
	PublicPrefixes []string
	Logger         *slog.Logger
	// Now is used in tests.
	Now func() time.Time
}

// DefaultPublicPrefixes are reachable without a session.
var DefaultPublicPrefixes = []string{"/api/auth", "/static/", "/health", "/robots.txt", "/favicon.ico"}

type accessCookie struct {
	Expires int64 `json:"expires"`
}

// AccessGate lets requests through when the access cookie is present and
// not past its expiry. A missing cookie redirects to the login page; an unreadable or
// expired cookie is deleted first.
func AccessGate(cfg AccessGateConfig) func(http.Handler) http.Handler {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	public := append([]string{cfg.LoginURL}, cfg.PublicPrefixes...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range public {
				if prefix != "" && strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			c, err := r.Cookie(cfg.CookieName)
			if err != nil || c.Value == "" {
				redirectToLogin(w, r, cfg.LoginURL)
				return
			}

			if !validAccessCookie(c.Value, cfg.Now()) {
				cfg.Logger.Info("access cookie rejected", "category", "http", "path", r.URL.Path)
				http.SetCookie(w, &http.Cookie{
					Name:    cfg.CookieName,
					Value:   "",
					Path:    "/",
					MaxAge:  -1,
					Expires: time.Unix(0, 0),
				})
				redirectToLogin(w, r, cfg.LoginURL)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func validAccessCookie(value string, now time.Time) bool {
	raw, err := url.QueryUnescape(value)
	if err != nil {
		return false
	}
	var ac accessCookie
	if err := json.Unmarshal([]byte(raw), &ac); err != nil {
		return false
	}
	return ac.Expires == 0 || now.UnixMilli() <= ac.Expires
}

func redirectToLogin(w http.ResponseWriter, r *http.Request, loginURL string) {
	target := loginURL + "?next=" + url.QueryEscape(r.URL.RequestURI())
	http.Redirect(w, r, target, http.StatusFound)
}
