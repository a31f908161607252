// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package richtext renders content blocks to sanitized HTML.
package richtext

import (
	"html"
	"html/template"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/involv/sitekit/internal/content"
)

// ImageURLFunc sizes an inline image URL for display.
type ImageURLFunc func(rawURL string) string

// Options tune rendering.
type Options struct {
	// ImageURL rewrites inline image sources. Nil leaves them unchanged.
	ImageURL ImageURLFunc
}

// policy admits exactly the markup the block rules emit.
var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "h1", "h2", "h3", "blockquote", "ul", "ol", "li", "strong", "em", "figure", "figcaption")
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("href", "target", "rel").OnElements("a")
	p.AllowAttrs("src", "alt", "loading").OnElements("img")
	p.AllowURLSchemes("http", "https", "mailto")
	p.AllowRelativeURLs(true)
	p.RequireParseableURLs(true)
	return p
}

// Render converts blocks to HTML. Unknown block types and marks produce no
// output, and image blocks without a URL are skipped.
func Render(blocks []content.Block, opts Options) template.HTML {
	var sb strings.Builder
	for _, g := range group(blocks) {
		if g.list == "" {
			sb.WriteString(renderBlock(g.items[0], opts))
			continue
		}
		sb.WriteString("<" + g.list + ">")
		for _, item := range g.items {
			sb.WriteString("<li>")
			sb.WriteString(renderSpans(item.Spans))
			sb.WriteString("</li>")
		}
		sb.WriteString("</" + g.list + ">")
	}
	return template.HTML(policy.Sanitize(sb.String())) //nolint:gosec // sanitized by policy
}

// blockGroup is either a single non-list block or a run of list items of
// the same kind.
type blockGroup struct {
	list  string // "ul", "ol" or "" for a single block
	items []content.Block
}

func listTag(blockType string) string {
	switch blockType {
	case content.BlockBulletItem:
		return "ul"
	case content.BlockNumberItem:
		return "ol"
	default:
		return ""
	}
}

// group collects consecutive list items into lists.
func group(blocks []content.Block) []blockGroup {
	var groups []blockGroup
	for _, b := range blocks {
		tag := listTag(b.Type)
		if tag != "" && len(groups) > 0 && groups[len(groups)-1].list == tag {
			last := &groups[len(groups)-1]
			last.items = append(last.items, b)
			continue
		}
		groups = append(groups, blockGroup{list: tag, items: []content.Block{b}})
	}
	return groups
}

// renderBlock maps one non-list block to markup.
func renderBlock(b content.Block, opts Options) string {
	switch b.Type {
	case content.BlockNormal:
		return wrap("p", b.Spans)
	case content.BlockH1:
		return wrap("h1", b.Spans)
	case content.BlockH2:
		return wrap("h2", b.Spans)
	case content.BlockH3:
		return wrap("h3", b.Spans)
	case content.BlockQuote:
		return wrap("blockquote", b.Spans)
	case content.BlockImage:
		return renderImage(b.Image, opts)
	default:
		return ""
	}
}

func wrap(tag string, spans []content.Span) string {
	return "<" + tag + ">" + renderSpans(spans) + "</" + tag + ">"
}

func renderImage(img *content.Image, opts Options) string {
	if img == nil || img.URL == "" {
		return ""
	}
	src := img.URL
	if opts.ImageURL != nil {
		src = opts.ImageURL(src)
	}

	var sb strings.Builder
	sb.WriteString(`<figure class="rt-figure"><img src="`)
	sb.WriteString(html.EscapeString(src))
	sb.WriteString(`" alt="`)
	sb.WriteString(html.EscapeString(img.Alt))
	sb.WriteString(`" loading="lazy">`)
	if img.Caption != "" {
		sb.WriteString("<figcaption>")
		sb.WriteString(html.EscapeString(img.Caption))
		sb.WriteString("</figcaption>")
	}
	sb.WriteString("</figure>")
	return sb.String()
}

func renderSpans(spans []content.Span) string {
	var sb strings.Builder
	for _, s := range spans {
		sb.WriteString(renderSpan(s))
	}
	return sb.String()
}

// renderSpan applies marks innermost-first in the order they are listed.
func renderSpan(s content.Span) string {
	out := html.EscapeString(s.Text)
	for _, m := range s.Marks {
		switch m.Type {
		case content.MarkStrong:
			out = "<strong>" + out + "</strong>"
		case content.MarkEm:
			out = "<em>" + out + "</em>"
		case content.MarkLink:
			if href, ok := safeHref(m.Href); ok {
				out = `<a href="` + html.EscapeString(href) + `" target="_blank" rel="noopener noreferrer">` + out + "</a>"
			}
		}
	}
	return out
}

// safeHref accepts absolute http, https and mailto links.
func safeHref(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "mailto":
		return raw, true
	default:
		return "", false
	}
}

// PlainText joins the text of every text-bearing block with newlines.
func PlainText(blocks []content.Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if t := strings.TrimSpace(b.PlainText()); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}

// WordCount counts words across blocks.
func WordCount(blocks []content.Block) int {
	return content.WordCount(blocks)
}
