// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/involv/sitekit/internal/content"
	"github.com/involv/sitekit/internal/util"
)

// ContentSource serves content.Records from the content_records table.
// It backs the sqlite content backend used offline and in development.
type ContentSource struct {
	queries *Queries
}

var _ content.Source = (*ContentSource)(nil)

// NewContentSource returns a ContentSource reading from db.
func NewContentSource(db DBTX) *ContentSource {
	return &ContentSource{queries: New(db)}
}

// ListRecordsForSite implements content.Source.
func (s *ContentSource) ListRecordsForSite(ctx context.Context, kind content.Kind, site string) ([]content.Record, error) {
	return s.list(ctx, kind, site, -1)
}

// GetRecordBySlug implements content.Source.
func (s *ContentSource) GetRecordBySlug(ctx context.Context, kind content.Kind, slug string) (*content.Record, error) {
	row, err := s.queries.GetContentRecordBySlug(ctx, GetContentRecordBySlugParams{
		Kind: string(kind),
		Slug: slug,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, content.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s %q: %w", kind, slug, err)
	}

	rec, err := decodeRecord(row)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListPostsForSite implements content.Source.
func (s *ContentSource) ListPostsForSite(ctx context.Context, site string, limit int) ([]content.Record, error) {
	if limit <= 0 {
		return []content.Record{}, nil
	}
	return s.list(ctx, content.KindPost, site, int64(limit))
}

func (s *ContentSource) list(ctx context.Context, kind content.Kind, site string, limit int64) ([]content.Record, error) {
	rows, err := s.queries.ListContentRecords(ctx, ListContentRecordsParams{
		Kind:  string(kind),
		Site:  site,
		Limit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s for %q: %w", kind, site, err)
	}

	records := make([]content.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := decodeRecord(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// SaveRecord inserts or replaces rec in the mirror. A missing slug is
// derived from the title.
func (s *ContentSource) SaveRecord(ctx context.Context, rec content.Record) error {
	if rec.Slug == "" {
		rec.Slug = util.Slugify(rec.Title)
	}
	if rec.ID == "" || rec.Slug == "" || rec.Title == "" {
		return fmt.Errorf("record requires id, slug and title")
	}
	if rec.Sites == nil {
		rec.Sites = []string{}
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record %s: %w", rec.ID, err)
	}
	sites, err := json.Marshal(rec.Sites)
	if err != nil {
		return fmt.Errorf("encoding sites for %s: %w", rec.ID, err)
	}

	return s.queries.UpsertContentRecord(ctx, UpsertContentRecordParams{
		ID:          rec.ID,
		Kind:        string(rec.Kind),
		Slug:        rec.Slug,
		Title:       rec.Title,
		Sites:       string(sites),
		Data:        string(data),
		PublishedAt: rec.PublishedAt,
		UpdatedAt:   time.Now(),
	})
}

func decodeRecord(row ContentRecord) (content.Record, error) {
	var rec content.Record
	if err := json.Unmarshal([]byte(row.Data), &rec); err != nil {
		return content.Record{}, fmt.Errorf("decoding record %s: %w", row.ID, err)
	}
	// Indexed columns are authoritative.
	rec.ID = row.ID
	rec.Kind = content.Kind(row.Kind)
	rec.Slug = row.Slug
	rec.Title = row.Title
	return rec, nil
}
