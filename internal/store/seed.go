// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/involv/sitekit/internal/content"
)

//go:embed seed/content.json
var seedContent []byte

// SeedRecords returns the embedded sample records.
func SeedRecords() ([]content.Record, error) {
	var records []content.Record
	if err := json.Unmarshal(seedContent, &records); err != nil {
		return nil, fmt.Errorf("decoding seed content: %w", err)
	}
	return records, nil
}

// SeedContent loads the embedded sample records into content_records.
// An already populated mirror is left alone unless force is set.
func SeedContent(ctx context.Context, db *sql.DB, force bool) error {
	queries := New(db)

	count, err := queries.CountContentRecords(ctx)
	if err != nil {
		return fmt.Errorf("counting content records: %w", err)
	}
	if count > 0 && !force {
		slog.Info("content mirror already populated, skipping seed", "records", count)
		return nil
	}

	records, err := SeedRecords()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	src := NewContentSource(tx)
	for _, rec := range records {
		if err := src.SaveRecord(ctx, rec); err != nil {
			return fmt.Errorf("seeding %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed: %w", err)
	}

	slog.Info("seeded content mirror", "records", len(records))
	return nil
}
