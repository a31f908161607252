// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/involv/sitekit/internal/content"
)

func TestFormatDate(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"zero", time.Time{}, ""},
		{"midday", time.Date(2025, 6, 2, 2, 0, 0, 0, time.UTC), "2 June 2025"},
		// 15:00 UTC is the next morning in Sydney.
		{"crosses midnight", time.Date(2025, 5, 20, 15, 0, 0, 0, time.UTC), "21 May 2025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDate(tt.in); got != tt.want {
				t.Errorf("FormatDate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOGImage(t *testing.T) {
	if got := OGImage(nil); got != "" {
		t.Errorf("OGImage(nil) = %q, want empty", got)
	}

	got := OGImage(&content.Image{URL: "/uploads/covers/club.jpg"})
	if got != "/img/1200x630/q80/covers/club.jpg" {
		t.Errorf("OGImage() = %q", got)
	}
}

func TestAuthorName(t *testing.T) {
	withAuthor := &content.Record{Author: &content.Author{Name: "Louise Lane"}}
	blankAuthor := &content.Record{Author: &content.Author{}}

	if got := AuthorName(withAuthor, "SafePlay Team"); got != "Louise Lane" {
		t.Errorf("AuthorName() = %q", got)
	}
	if got := AuthorName(blankAuthor, "SafePlay Team"); got != "SafePlay Team" {
		t.Errorf("AuthorName(blank) = %q", got)
	}
	if got := AuthorName(nil, "SafePlay Team"); got != "SafePlay Team" {
		t.Errorf("AuthorName(nil) = %q", got)
	}
}

func TestFuncs_Dict(t *testing.T) {
	dict := Funcs()["dict"].(func(...any) (map[string]any, error))

	m, err := dict("a", 1, "b", "two")
	if err != nil {
		t.Fatalf("dict() error = %v", err)
	}
	if m["a"] != 1 || m["b"] != "two" {
		t.Errorf("dict() = %v", m)
	}

	if _, err := dict("a"); err == nil {
		t.Error("expected error for odd argument count")
	}
	if _, err := dict(1, 2); err == nil {
		t.Error("expected error for non-string key")
	}
}

func TestFuncs_Truncate(t *testing.T) {
	truncate := Funcs()["truncate"].(func(string, int) string)

	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
	got := truncate("Safer gambling monitoring for venues", 14)
	if !strings.HasSuffix(got, "…") || len([]rune(got)) > 15 {
		t.Errorf("truncate() = %q", got)
	}
}

func TestRichText_UsesDetailRendition(t *testing.T) {
	html := string(RichText([]content.Block{
		{Type: content.BlockImage, Image: &content.Image{URL: "/uploads/body/floor.png", Alt: "Floor"}},
	}))

	if !strings.Contains(html, "/img/800x450/q80/body/floor.png") {
		t.Errorf("RichText() = %q", html)
	}
}
