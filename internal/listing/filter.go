// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package listing implements the case study listing: facet filtering,
// the "load more" display cursor and the empty/no-match/results states.
// Everything here is pure; handlers feed it records from the Resolver.
package listing

import (
	"net/url"
	"slices"
	"strings"

	"github.com/involv/sitekit/internal/content"
	"github.com/involv/sitekit/internal/util"
)

// All is the facet value that matches every record.
const All = "all"

// Query parameter names used by the listing page.
const (
	ParamIndustry = "industry"
	ParamCategory = "category"
	ParamSearch   = "q"
	ParamShow     = "show"
)

// Facets is the user's current filter selection.
type Facets struct {
	Industry string
	Category string
	Search   string
}

// FacetsFromQuery reads facets from URL query values. Missing or blank
// selections become All and the search term is trimmed.
func FacetsFromQuery(q url.Values) Facets {
	f := Facets{
		Industry: strings.TrimSpace(q.Get(ParamIndustry)),
		Category: strings.TrimSpace(q.Get(ParamCategory)),
		Search:   strings.TrimSpace(q.Get(ParamSearch)),
	}
	if f.Industry == "" {
		f.Industry = All
	}
	if f.Category == "" {
		f.Category = All
	}
	return f
}

// Active reports whether any facet narrows the list.
func (f Facets) Active() bool {
	return f.Industry != All || f.Category != All || strings.TrimSpace(f.Search) != ""
}

// Query encodes the facets as URL values, omitting defaults. The display
// cursor is never included, so following a facet link resets it.
func (f Facets) Query() url.Values {
	q := url.Values{}
	if f.Industry != "" && f.Industry != All {
		q.Set(ParamIndustry, f.Industry)
	}
	if f.Category != "" && f.Category != All {
		q.Set(ParamCategory, f.Category)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		q.Set(ParamSearch, s)
	}
	return q
}

// Matches reports whether r passes all three facets.
func Matches(r *content.Record, f Facets) bool {
	if f.Industry != All && r.Industry != f.Industry {
		return false
	}
	if f.Category != All && !r.HasCategory(f.Category) {
		return false
	}
	needle := strings.TrimSpace(f.Search)
	if needle == "" {
		return true
	}
	return util.ContainsFold(r.Title, needle) ||
		util.ContainsFold(r.Client, needle) ||
		util.ContainsFold(r.Excerpt, needle)
}

// Filter returns the records that match f, in input order.
func Filter(records []content.Record, f Facets) []content.Record {
	out := make([]content.Record, 0, len(records))
	for i := range records {
		if Matches(&records[i], f) {
			out = append(out, records[i])
		}
	}
	return out
}

// FilterOptions holds the values offered by the facet dropdowns.
type FilterOptions struct {
	Industries []string
	Categories []string
}

// Options collects the sorted, de-duplicated industries and category
// titles present in records. Empty values are skipped.
func Options(records []content.Record) FilterOptions {
	var industries, categories []string
	for _, r := range records {
		if r.Industry != "" {
			industries = append(industries, r.Industry)
		}
		for _, c := range r.Categories {
			if c.Title != "" {
				categories = append(categories, c.Title)
			}
		}
	}
	slices.Sort(industries)
	slices.Sort(categories)
	return FilterOptions{
		Industries: slices.Compact(industries),
		Categories: slices.Compact(categories),
	}
}
