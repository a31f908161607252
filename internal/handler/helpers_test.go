// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/involv/sitekit/internal/cache"
	"github.com/involv/sitekit/internal/content"
	"github.com/involv/sitekit/internal/render"
	"github.com/involv/sitekit/internal/seo"
	"github.com/involv/sitekit/internal/site"
	"github.com/involv/sitekit/internal/testutil"
	"github.com/involv/sitekit/web"
)

const testSite = "safeplay"

func discardLogger() *slog.Logger {
	return testutil.TestLoggerSilent()
}

// fakeSource is an in-memory content store.
type fakeSource struct {
	mu      sync.Mutex
	records []content.Record
	err     error
}

func (s *fakeSource) add(records ...content.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
}

func (s *fakeSource) ListRecordsForSite(_ context.Context, kind content.Kind, siteID string) ([]content.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []content.Record
	for _, r := range s.records {
		if r.Kind == kind && r.VisibleOn(siteID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeSource) GetRecordBySlug(_ context.Context, kind content.Kind, slug string) (*content.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, r := range s.records {
		if r.Kind == kind && r.Slug == slug {
			rec := r
			return &rec, nil
		}
	}
	return nil, content.ErrNotFound
}

func (s *fakeSource) ListPostsForSite(ctx context.Context, siteID string, limit int) ([]content.Record, error) {
	posts, err := s.ListRecordsForSite(ctx, content.KindPost, siteID)
	if err != nil {
		return nil, err
	}
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func newTestCache(t *testing.T) cache.Cacher {
	t.Helper()
	c := cache.NewMemoryCache(cache.MemoryCacheOptions{})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func newTestResolver(t *testing.T, src content.Source) *content.Resolver {
	t.Helper()
	r := content.NewResolver(src, newTestCache(t), content.ResolverOptions{
		Site:       testSite,
		Revalidate: time.Minute,
		Logger:     discardLogger(),
	})
	t.Cleanup(r.Close)
	return r
}

func testProfile(t *testing.T) *site.Profile {
	t.Helper()
	p, err := site.Load(testSite, "")
	if err != nil {
		t.Fatalf("loading profile: %v", err)
	}
	return p
}

func newTestPages(t *testing.T) *Pages {
	t.Helper()
	profile := testProfile(t)

	templates, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("templates fs: %v", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS: templates,
		Profile:     profile,
		Logger:      discardLogger(),
	})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	return NewPages(PagesConfig{
		Renderer: renderer,
		Profile:  profile,
		SEO: &seo.SiteConfig{
			SiteName:        profile.Name,
			SiteURL:         profile.BaseURL(),
			SiteDescription: profile.Description,
			DefaultOGImage:  profile.OGImage,
			Logo:            profile.Logo,
		},
		Logger: discardLogger(),
	})
}

func caseStudy(i int, sites ...string) content.Record {
	return content.Record{
		ID:          fmt.Sprintf("cs-%d", i),
		Kind:        content.KindCaseStudy,
		Slug:        fmt.Sprintf("case-%d", i),
		Title:       fmt.Sprintf("Case Study %d", i),
		Excerpt:     "How one venue improved RGO response times.",
		Industry:    "Clubs",
		Client:      fmt.Sprintf("Venue %d", i),
		Sites:       sites,
		PublishedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).Add(-time.Duration(i) * time.Hour),
	}
}

func post(slug string, sites ...string) content.Record {
	return content.Record{
		ID:    "post-" + slug,
		Kind:  content.KindPost,
		Slug:  slug,
		Title: "Post " + slug,
		Body: []content.Block{
			{Type: content.BlockH2, Spans: []content.Span{{Text: "Why monitoring matters"}}},
			{Type: "video-embed", Spans: []content.Span{{Text: "ignored embed"}}},
			{Type: content.BlockNormal, Spans: []content.Span{{Text: "Staff act sooner with evidence."}}},
		},
		Sites:       sites,
		PublishedAt: time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC),
	}
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}
