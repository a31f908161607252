// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package contact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/involv/sitekit/internal/cache"
)

// DefaultGuardWindow is how long a claimed token blocks resubmission.
const DefaultGuardWindow = 10 * time.Minute

// ErrDuplicate is returned when a token was already claimed.
var ErrDuplicate = errors.New("duplicate submission")

// Guard stops the same rendered form from being relayed twice. Claims live
// in the shared cache, so they hold across processes when Redis is used.
type Guard struct {
	cache  cache.Cacher
	window time.Duration
}

// NewGuard creates a guard backed by c.
func NewGuard(c cache.Cacher, window time.Duration) *Guard {
	if window <= 0 {
		window = DefaultGuardWindow
	}
	return &Guard{cache: c, window: window}
}

// NewToken returns a fresh token for one rendering of the form.
func NewToken() string {
	return uuid.NewString()
}

// ValidToken reports whether token looks like one NewToken issued.
func ValidToken(token string) bool {
	_, err := uuid.Parse(token)
	return err == nil
}

// Claim marks token as in flight. It returns ErrDuplicate if the token was
// claimed within the guard window.
func (g *Guard) Claim(ctx context.Context, token string) error {
	ok, err := g.cache.SetNX(ctx, guardKey(token), []byte("1"), g.window)
	if err != nil {
		return fmt.Errorf("claiming submission token: %w", err)
	}
	if !ok {
		return ErrDuplicate
	}
	return nil
}

// Release frees token so a failed submission can be retried.
func (g *Guard) Release(ctx context.Context, token string) error {
	return g.cache.Delete(ctx, guardKey(token))
}

func guardKey(token string) string {
	return "contact:token:" + token
}
