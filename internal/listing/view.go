// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package listing

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/involv/sitekit/internal/content"
)

// State selects which listing body the page renders.
type State int

const (
	// StateEmptySource means the site has no case studies at all; filter
	// controls are hidden.
	StateEmptySource State = iota
	// StateNoMatches means records exist but none pass the facets.
	StateNoMatches
	// StateResults means at least one record is shown.
	StateResults
)

func (s State) String() string {
	switch s {
	case StateEmptySource:
		return "empty"
	case StateNoMatches:
		return "no-matches"
	case StateResults:
		return "results"
	default:
		return "unknown"
	}
}

// View is the computed listing page.
type View struct {
	State       State
	Facets      Facets
	Options     FilterOptions
	Cursor      Cursor
	Visible     []content.Record
	SourceTotal int
	Matched     int
}

// Build filters records by facets and truncates to the cursor.
func Build(records []content.Record, facets Facets, cursor Cursor) View {
	v := View{
		Facets:      facets,
		Cursor:      cursor,
		SourceTotal: len(records),
	}
	if len(records) == 0 {
		v.State = StateEmptySource
		return v
	}

	v.Options = Options(records)
	filtered := Filter(records, facets)
	v.Matched = len(filtered)
	if v.Matched == 0 {
		v.State = StateNoMatches
		return v
	}

	v.State = StateResults
	v.Visible = filtered[:cursor.Visible(v.Matched)]
	return v
}

// ShowControls reports whether the search and facet controls render.
func (v View) ShowControls() bool {
	return v.State != StateEmptySource
}

// HasMore reports whether "load more" should be offered.
func (v View) HasMore() bool {
	return v.State == StateResults && len(v.Visible) < v.Matched
}

// Summary is the results count line, e.g. "Showing 9 of 25 case studies".
func (v View) Summary() string {
	return fmt.Sprintf("Showing %d of %d case studies", len(v.Visible), v.Matched)
}

// MoreURL is the link for "load more": current facets plus the next cursor.
func (v View) MoreURL(path string) string {
	q := v.Facets.Query()
	q.Set(ParamShow, strconv.Itoa(int(v.Cursor.Next())))
	return path + "?" + q.Encode()
}

// ClearURL drops every facet and the cursor.
func (v View) ClearURL(path string) string {
	return path
}

// FacetURL returns path with one facet replaced, used by the chip links.
// The cursor is omitted, so a facet change resets it.
func (v View) FacetURL(path, param, value string) string {
	f := v.Facets
	switch param {
	case ParamIndustry:
		f.Industry = value
	case ParamCategory:
		f.Category = value
	case ParamSearch:
		f.Search = value
	}
	return withQuery(path, f.Query())
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
