// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"strings"
	"testing"
)

func TestRecord_VisibleOn(t *testing.T) {
	r := &Record{Sites: []string{"safeplay"}}

	if !r.VisibleOn("safeplay") {
		t.Error("VisibleOn(safeplay) = false, want true")
	}
	if r.VisibleOn("assure") {
		t.Error("VisibleOn(assure) = true, want false")
	}

	var nilRecord *Record
	if nilRecord.VisibleOn("safeplay") {
		t.Error("nil record must not be visible")
	}
	if (&Record{}).VisibleOn("safeplay") {
		t.Error("record without sites must not be visible")
	}
}

func TestRecord_HasCategory(t *testing.T) {
	r := &Record{Categories: []Category{{ID: "c1", Title: "AML"}, {ID: "c2", Title: "RSG"}}}

	if !r.HasCategory("RSG") {
		t.Error("HasCategory(RSG) = false")
	}
	if r.HasCategory("rsg") {
		t.Error("HasCategory is an exact match")
	}
}

func TestVisibleOnly_PreservesOrder(t *testing.T) {
	records := []Record{
		{Slug: "a", Sites: []string{"safeplay"}},
		{Slug: "b", Sites: []string{"assure"}},
		{Slug: "c", Sites: []string{"assure", "safeplay"}},
	}

	got := VisibleOnly(records, "safeplay")
	if len(got) != 2 || got[0].Slug != "a" || got[1].Slug != "c" {
		t.Errorf("VisibleOnly() = %v, want [a c]", slugs(got))
	}

	if got := VisibleOnly(nil, "safeplay"); got == nil || len(got) != 0 {
		t.Errorf("VisibleOnly(nil) = %v, want empty non-nil slice", got)
	}
}

func TestReadingTime(t *testing.T) {
	words := func(n int) []Block {
		return []Block{{Type: BlockNormal, Spans: []Span{{Text: strings.TrimSpace(strings.Repeat("word ", n))}}}}
	}

	tests := []struct {
		name   string
		record Record
		want   int
	}{
		{"authored estimate wins", Record{EstimatedReadingTime: 7, Body: words(5000)}, 7},
		{"empty body is one minute", Record{}, 1},
		{"exactly 200 words", Record{Body: words(200)}, 1},
		{"201 words rounds up", Record{Body: words(201)}, 2},
		{"1000 words", Record{Body: words(1000)}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReadingTime(&tt.record); got != tt.want {
				t.Errorf("ReadingTime() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWordCount_SpansAcrossBlocks(t *testing.T) {
	blocks := []Block{
		{Type: BlockH2, Spans: []Span{{Text: "Two "}, {Text: "words"}}},
		{Type: BlockImage, Image: &Image{URL: "https://cdn.example.com/a.jpg"}},
		{Type: "code", Spans: []Span{{Text: "three more words"}}},
	}
	if got := WordCount(blocks); got != 5 {
		t.Errorf("WordCount() = %d, want 5", got)
	}
}

func slugs(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Slug
	}
	return out
}
