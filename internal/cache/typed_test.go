// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testEntry struct {
	FetchedAt time.Time `json:"fetched_at"`
	Slugs     []string  `json:"slugs"`
}

func TestTypedCache_RoundTripWithPrefix(t *testing.T) {
	mem := newTestMemoryCache(0)
	defer func() { _ = mem.Close() }()
	ctx := context.Background()

	tc := NewTypedCache[testEntry](mem, "content:", time.Minute)
	in := &testEntry{FetchedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Slugs: []string{"crown", "star"}}

	if err := tc.Set(ctx, "list", in); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// The raw key carries the prefix.
	if has, _ := mem.Has(ctx, "content:list"); !has {
		t.Error("expected prefixed key in underlying cache")
	}

	got, ok := tc.Get(ctx, "list")
	if !ok {
		t.Fatal("Get returned miss")
	}
	if !got.FetchedAt.Equal(in.FetchedAt) || len(got.Slugs) != 2 || got.Slugs[1] != "star" {
		t.Errorf("Get = %+v, want %+v", got, in)
	}

	_ = tc.Delete(ctx, "list")
	if _, ok := tc.Get(ctx, "list"); ok {
		t.Error("Get after Delete should miss")
	}
}

func TestTypedCache_CorruptValueIsMiss(t *testing.T) {
	mem := newTestMemoryCache(0)
	defer func() { _ = mem.Close() }()
	ctx := context.Background()

	_ = mem.Set(ctx, "p:bad", []byte("{not json"), 0)
	tc := NewTypedCache[testEntry](mem, "p:", time.Minute)

	if _, ok := tc.Get(ctx, "bad"); ok {
		t.Error("undecodable value should be reported as a miss")
	}
}

func TestTypedCache_GetOrSet(t *testing.T) {
	mem := newTestMemoryCache(0)
	defer func() { _ = mem.Close() }()
	ctx := context.Background()
	tc := NewTypedCache[testEntry](mem, "", time.Minute)

	calls := 0
	fn := func() (*testEntry, error) {
		calls++
		return &testEntry{Slugs: []string{"a"}}, nil
	}

	for range 3 {
		got, err := tc.GetOrSet(ctx, "k", fn)
		if err != nil {
			t.Fatalf("GetOrSet failed: %v", err)
		}
		if len(got.Slugs) != 1 {
			t.Errorf("GetOrSet = %+v", got)
		}
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
}

func TestTypedCache_GetOrSetError(t *testing.T) {
	mem := newTestMemoryCache(0)
	defer func() { _ = mem.Close() }()
	ctx := context.Background()
	tc := NewTypedCache[testEntry](mem, "", time.Minute)

	wantErr := errors.New("upstream down")
	_, err := tc.GetOrSet(ctx, "k", func() (*testEntry, error) { return nil, wantErr })
	if !errors.Is(err, wantErr) {
		t.Errorf("GetOrSet error = %v, want %v", err, wantErr)
	}
	if has, _ := mem.Has(ctx, "k"); has {
		t.Error("failed computation must not be cached")
	}
}
