// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a slug does not resolve to a record the
// current site may show. Missing and excluded records are indistinguishable.
var ErrNotFound = errors.New("content not found")

// Source is the boundary to the content store. Implementations return
// records newest first and must not re-sort.
type Source interface {
	// ListRecordsForSite returns every record of kind published for site.
	ListRecordsForSite(ctx context.Context, kind Kind, site string) ([]Record, error)

	// GetRecordBySlug returns the record of kind with slug, regardless of
	// site, or ErrNotFound.
	GetRecordBySlug(ctx context.Context, kind Kind, slug string) (*Record, error)

	// ListPostsForSite returns at most limit posts published for site.
	ListPostsForSite(ctx context.Context, site string, limit int) ([]Record, error)
}
