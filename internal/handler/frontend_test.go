// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/involv/sitekit/internal/site"
)

func newFrontendRouter(t *testing.T, src *fakeSource) http.Handler {
	t.Helper()
	h := NewFrontendHandler(newTestPages(t), newTestResolver(t, src))

	r := chi.NewRouter()
	r.Get("/", h.Home)
	r.Get("/features", h.Features)
	r.Get("/pricing", h.Pricing)
	r.Get("/about", h.About)
	r.Get("/case-studies", h.CaseStudies)
	r.Get("/case-studies/{slug}", h.CaseStudy)
	r.Get("/insights", h.Insights)
	r.Get("/insights/{slug}", h.Insight)
	for _, slug := range []string{"privacy-policy", "terms-of-use", "disclaimer"} {
		r.Get("/"+slug, h.Legal(slug))
	}
	r.NotFound(h.NotFound)
	return r
}

func countCards(body string) int {
	return strings.Count(body, `<article class="content-card">`)
}

func TestFrontendHandler_StaticPages(t *testing.T) {
	router := newFrontendRouter(t, &fakeSource{})
	profile := testProfile(t)

	tests := []struct {
		path string
		want string
	}{
		{"/", profile.Home.Hero.Highlight},
		{"/features", profile.Features.Hero.Lead},
		{"/about", profile.About.Hero.Title},
		{"/pricing", profile.Pricing.Plans[0].Name},
		{"/privacy-policy", "Privacy Policy"},
		{"/terms-of-use", "Terms of Use"},
		{"/disclaimer", "Disclaimer"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := get(t, router, tt.path)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
			assert.Contains(t, w.Body.String(), tt.want)
			assert.Contains(t, w.Body.String(), `<link rel="canonical" href="https://safeplay.involv.com.au`)
		})
	}
}

func TestFrontendHandler_HomeTeasesLatestContent(t *testing.T) {
	src := &fakeSource{}
	for i := 1; i <= 5; i++ {
		src.add(caseStudy(i, testSite))
	}
	src.add(post("first", testSite), post("hidden", "assure"))

	w := get(t, newFrontendRouter(t, src), "/")
	body := w.Body.String()

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, homeLatest+1, countCards(body))
	assert.Contains(t, body, "Post first")
	assert.NotContains(t, body, "Post hidden")
	assert.Contains(t, body, `"@type":"WebSite"`)
}

func TestFrontendHandler_PricingBillingToggle(t *testing.T) {
	router := newFrontendRouter(t, &fakeSource{})
	plan := testProfile(t).Pricing.Plans[0]

	monthly := get(t, router, "/pricing").Body.String()
	assert.Contains(t, monthly, site.FormatPrice(plan.Monthly))

	yearly := get(t, router, "/pricing?billing=yearly").Body.String()
	assert.Contains(t, yearly, site.FormatPrice(plan.Yearly))

	// Unknown cycles fall back to monthly.
	bogus := get(t, router, "/pricing?billing=weekly").Body.String()
	assert.Contains(t, bogus, site.FormatPrice(plan.Monthly))
}

func TestFrontendHandler_CaseStudiesEmptySource(t *testing.T) {
	w := get(t, newFrontendRouter(t, &fakeSource{}), "/case-studies")
	body := w.Body.String()

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body, "No case studies yet")
	assert.NotContains(t, body, "No matches")
	assert.NotContains(t, body, `name="q"`, "controls are hidden when the source is empty")
}

func TestFrontendHandler_CaseStudiesFetchFailureDegrades(t *testing.T) {
	src := &fakeSource{err: errors.New("store unavailable")}

	w := get(t, newFrontendRouter(t, src), "/case-studies")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No case studies yet")
}

func TestFrontendHandler_CaseStudiesSearch(t *testing.T) {
	src := &fakeSource{}
	for i := 1; i <= 12; i++ {
		cs := caseStudy(i, testSite)
		if i == 3 || i == 8 {
			cs.Client = "Riverside Club"
		}
		src.add(cs)
	}

	w := get(t, newFrontendRouter(t, src), "/case-studies?q=RIVERSIDE")
	body := w.Body.String()

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body, "Showing 2 of 2 case studies")
	assert.Equal(t, 2, countCards(body))
	assert.NotContains(t, body, "Load more")
}

func TestFrontendHandler_CaseStudiesNoMatches(t *testing.T) {
	src := &fakeSource{}
	src.add(caseStudy(1, testSite))

	body := get(t, newFrontendRouter(t, src), "/case-studies?industry=Casinos").Body.String()

	assert.Contains(t, body, "No matches")
	assert.NotContains(t, body, "No case studies yet")
	assert.Contains(t, body, `name="q"`)
}

func TestFrontendHandler_CaseStudiesLoadMore(t *testing.T) {
	src := &fakeSource{}
	for i := 1; i <= 25; i++ {
		src.add(caseStudy(i, testSite))
	}
	router := newFrontendRouter(t, src)

	tests := []struct {
		target   string
		want     int
		wantMore bool
	}{
		{"/case-studies", 9, true},
		{"/case-studies?show=18", 18, true},
		{"/case-studies?show=27", 25, false},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			body := get(t, router, tt.target).Body.String()

			assert.Equal(t, tt.want, countCards(body))
			assert.Equal(t, tt.wantMore, strings.Contains(body, "Load more"))
		})
	}
}

func TestFrontendHandler_CaseStudyDetail(t *testing.T) {
	src := &fakeSource{}
	cs := caseStudy(1, testSite)
	cs.Challenge = "Uncarded play hid escalating sessions."
	src.add(cs)

	w := get(t, newFrontendRouter(t, src), "/case-studies/case-1")
	body := w.Body.String()

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body, "Case Study 1")
	assert.Contains(t, body, "Uncarded play hid escalating sessions.")
	assert.Contains(t, body, `"@type":"Article"`)
	assert.Contains(t, body, `<meta property="og:type" content="article">`)
}

func TestFrontendHandler_ExcludedRecordLooksMissing(t *testing.T) {
	src := &fakeSource{}
	src.add(caseStudy(1, "assure"))
	router := newFrontendRouter(t, src)

	excluded := get(t, router, "/case-studies/case-1")
	missing := get(t, router, "/case-studies/case-2")

	assert.Equal(t, http.StatusNotFound, excluded.Code)
	assert.Equal(t, http.StatusNotFound, missing.Code)
	// The bodies differ only by the canonical path.
	assert.Equal(t,
		strings.ReplaceAll(missing.Body.String(), "case-2", "SLUG"),
		strings.ReplaceAll(excluded.Body.String(), "case-1", "SLUG"),
	)
}

func TestFrontendHandler_InsightDetail(t *testing.T) {
	src := &fakeSource{}
	src.add(post("monitoring", testSite))

	w := get(t, newFrontendRouter(t, src), "/insights/monitoring")
	body := w.Body.String()

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body, "<h2>Why monitoring matters</h2>")
	assert.NotContains(t, body, "ignored embed")
	assert.Contains(t, body, testProfile(t).DefaultAuthor)
	assert.Contains(t, body, "20 May 2025")
}

func TestFrontendHandler_InsightsEmpty(t *testing.T) {
	body := get(t, newFrontendRouter(t, &fakeSource{}), "/insights").Body.String()

	assert.Contains(t, body, "No posts yet")
}

func TestFrontendHandler_NotFound(t *testing.T) {
	w := get(t, newFrontendRouter(t, &fakeSource{}), "/does-not-exist")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Page not found")
	assert.Contains(t, w.Body.String(), `content="noindex,nofollow"`)
}

func TestFrontendHandler_UnknownLegalSlug(t *testing.T) {
	h := NewFrontendHandler(newTestPages(t), newTestResolver(t, &fakeSource{}))

	w := get(t, h.Legal("cookie-policy"), "/cookie-policy")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFrontendHandler_LegalWithoutBodyFails(t *testing.T) {
	pages := newTestPages(t)
	pages.profile.Legal = append(pages.profile.Legal, site.LegalPage{Slug: "cookie-policy", Title: "Cookie Policy"})
	h := NewFrontendHandler(pages, newTestResolver(t, &fakeSource{}))

	w := get(t, h.Legal("cookie-policy"), "/cookie-policy")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "Cookie Policy")
}

func TestFrontendHandler_MalformedSlugSkipsLookup(t *testing.T) {
	src := &fakeSource{err: errors.New("should not be called")}

	w := get(t, newFrontendRouter(t, src), "/insights/Not_A_Slug")

	assert.Equal(t, http.StatusNotFound, w.Code)
}
