// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/involv/sitekit/internal/store"
	"github.com/involv/sitekit/internal/testutil"
)

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

func recentEvents(t *testing.T, db *sql.DB) []store.Event {
	t.Helper()
	events, err := store.New(db).ListRecentEvents(context.Background(), 50)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	return events
}

func TestEventLogHandler_Levels(t *testing.T) {
	tests := []struct {
		name      string
		log       func(*slog.Logger)
		wantCount int
		wantLevel string
	}{
		{"error", func(l *slog.Logger) { l.Error("boom") }, 1, EventLevelError},
		{"warn", func(l *slog.Logger) { l.Warn("careful") }, 1, EventLevelWarning},
		{"info", func(l *slog.Logger) { l.Info("hello") }, 0, ""},
		{"debug", func(l *slog.Logger) { l.Debug("noise") }, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.TestDB(t)
			tt.log(slog.New(NewEventLogHandler(discardHandler{}, db)))

			events := recentEvents(t, db)
			if len(events) != tt.wantCount {
				t.Fatalf("events = %d, want %d", len(events), tt.wantCount)
			}
			if tt.wantCount > 0 && events[0].Level != tt.wantLevel {
				t.Errorf("Level = %q, want %q", events[0].Level, tt.wantLevel)
			}
		})
	}
}

func TestEventLogHandler_CustomLevel(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(NewEventLogHandlerWithLevel(discardHandler{}, db, slog.LevelInfo))

	logger.Info("server started")

	events := recentEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if events[0].Level != EventLevelInfo {
		t.Errorf("Level = %q, want %q", events[0].Level, EventLevelInfo)
	}
}

func TestInferCategory(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"contact form relay failed", CategoryForm},
		{"redis unavailable, falling back to memory cache", CategoryCache},
		{"fetching case studies failed", CategoryContent},
		{"background content refresh failed", CategoryContent},
		{"error rendering template", CategoryHTTP},
		{"shutting down", CategorySystem},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			if got := inferCategory(tt.message); got != tt.want {
				t.Errorf("inferCategory(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestEventLogHandler_ExplicitCategory(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db))

	logger.Warn("something odd", "category", CategoryCache)

	events := recentEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if events[0].Category != CategoryCache {
		t.Errorf("Category = %q, want %q", events[0].Category, CategoryCache)
	}
}

func TestEventLogHandler_WithAttrsCarriesCategoryAndSite(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db)).
		With("site", "assure").
		With("category", CategoryContent)

	logger.Error("refresh failed", "key", "content:assure:list:caseStudy")

	events := recentEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	ev := events[0]
	if ev.Site != "assure" {
		t.Errorf("Site = %q, want %q", ev.Site, "assure")
	}
	if ev.Category != CategoryContent {
		t.Errorf("Category = %q, want %q", ev.Category, CategoryContent)
	}

	var meta map[string]string
	if err := json.Unmarshal([]byte(ev.Metadata), &meta); err != nil {
		t.Fatalf("metadata is not JSON: %v", err)
	}
	if meta["key"] != "content:assure:list:caseStudy" {
		t.Errorf("metadata key = %q", meta["key"])
	}
	if _, ok := meta["category"]; ok {
		t.Error("category should not be duplicated in metadata")
	}
	if _, ok := meta["site"]; ok {
		t.Error("site should not be duplicated in metadata")
	}
}

func TestEventLogHandler_MetadataEscaping(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db))

	logger.Error("relay rejected", "body", "line1\n\"quoted\"")

	events := recentEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}

	var meta map[string]string
	if err := json.Unmarshal([]byte(events[0].Metadata), &meta); err != nil {
		t.Fatalf("metadata is not JSON: %v", err)
	}
	if meta["body"] != "line1\n\"quoted\"" {
		t.Errorf("body = %q", meta["body"])
	}
}

func TestEventLogHandler_Groups(t *testing.T) {
	db := testutil.TestDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db)).WithGroup("req")

	logger.Warn("slow request", "path", "/pricing")

	events := recentEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	var meta map[string]string
	if err := json.Unmarshal([]byte(events[0].Metadata), &meta); err != nil {
		t.Fatalf("metadata is not JSON: %v", err)
	}
	if meta["req.path"] != "/pricing" {
		t.Errorf("metadata = %v, want req.path", meta)
	}
}

func TestEventLogHandler_EmptyMetadata(t *testing.T) {
	db := testutil.TestDB(t)
	slog.New(NewEventLogHandler(discardHandler{}, db)).Warn("plain")

	events := recentEvents(t, db)
	if len(events) != 1 || events[0].Metadata != "{}" {
		t.Errorf("events = %+v, want one with {} metadata", events)
	}
}
