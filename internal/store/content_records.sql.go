// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const upsertContentRecord = `-- name: UpsertContentRecord :exec
INSERT INTO content_records (id, kind, slug, title, sites, data, published_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    kind = excluded.kind,
    slug = excluded.slug,
    title = excluded.title,
    sites = excluded.sites,
    data = excluded.data,
    published_at = excluded.published_at,
    updated_at = excluded.updated_at
`

type UpsertContentRecordParams struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Sites       string    `json:"sites"`
	Data        string    `json:"data"`
	PublishedAt time.Time `json:"published_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (q *Queries) UpsertContentRecord(ctx context.Context, arg UpsertContentRecordParams) error {
	_, err := q.db.ExecContext(ctx, upsertContentRecord,
		arg.ID,
		arg.Kind,
		arg.Slug,
		arg.Title,
		arg.Sites,
		arg.Data,
		arg.PublishedAt.UTC(),
		arg.UpdatedAt.UTC(),
	)
	return err
}

const listContentRecords = `-- name: ListContentRecords :many
SELECT id, kind, slug, title, sites, data, published_at, updated_at FROM content_records
WHERE kind = ?
  AND EXISTS (SELECT 1 FROM json_each(content_records.sites) WHERE json_each.value = ?)
ORDER BY published_at DESC, id
LIMIT ?
`

// ListContentRecordsParams selects records of Kind published for Site.
// A negative Limit returns every row.
type ListContentRecordsParams struct {
	Kind  string `json:"kind"`
	Site  string `json:"site"`
	Limit int64  `json:"limit"`
}

func (q *Queries) ListContentRecords(ctx context.Context, arg ListContentRecordsParams) ([]ContentRecord, error) {
	rows, err := q.db.QueryContext(ctx, listContentRecords, arg.Kind, arg.Site, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []ContentRecord
	for rows.Next() {
		var i ContentRecord
		if err := rows.Scan(
			&i.ID,
			&i.Kind,
			&i.Slug,
			&i.Title,
			&i.Sites,
			&i.Data,
			&i.PublishedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getContentRecordBySlug = `-- name: GetContentRecordBySlug :one
SELECT id, kind, slug, title, sites, data, published_at, updated_at FROM content_records
WHERE kind = ? AND slug = ?
`

type GetContentRecordBySlugParams struct {
	Kind string `json:"kind"`
	Slug string `json:"slug"`
}

func (q *Queries) GetContentRecordBySlug(ctx context.Context, arg GetContentRecordBySlugParams) (ContentRecord, error) {
	row := q.db.QueryRowContext(ctx, getContentRecordBySlug, arg.Kind, arg.Slug)
	var i ContentRecord
	err := row.Scan(
		&i.ID,
		&i.Kind,
		&i.Slug,
		&i.Title,
		&i.Sites,
		&i.Data,
		&i.PublishedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const countContentRecords = `-- name: CountContentRecords :one
SELECT COUNT(*) FROM content_records
`

func (q *Queries) CountContentRecords(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countContentRecords)
	var count int64
	err := row.Scan(&count)
	return count, err
}
