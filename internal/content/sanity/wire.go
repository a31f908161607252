// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package sanity

import (
	"time"

	"github.com/involv/sitekit/internal/content"
)

type wireImage struct {
	URL     string `json:"url"`
	Alt     string `json:"alt"`
	Caption string `json:"caption"`
}

func (w *wireImage) toImage() *content.Image {
	if w == nil || w.URL == "" {
		return nil
	}
	return &content.Image{URL: w.URL, Alt: w.Alt, Caption: w.Caption}
}

type wireCategory struct {
	ID    string `json:"_id"`
	Title string `json:"title"`
}

type wireAuthor struct {
	Name  string     `json:"name"`
	Role  string     `json:"role"`
	Image *wireImage `json:"image"`
}

type wireSpan struct {
	Type  string   `json:"_type"`
	Text  string   `json:"text"`
	Marks []string `json:"marks"`
}

type wireMarkDef struct {
	Key  string `json:"_key"`
	Type string `json:"_type"`
	Href string `json:"href"`
}

// wireBlock covers both text blocks and inline image objects.
type wireBlock struct {
	Type     string        `json:"_type"`
	Style    string        `json:"style"`
	ListItem string        `json:"listItem"`
	Children []wireSpan    `json:"children"`
	MarkDefs []wireMarkDef `json:"markDefs"`

	URL     string `json:"url"`
	Alt     string `json:"alt"`
	Caption string `json:"caption"`
}

type wireRecord struct {
	ID                   string         `json:"_id"`
	Title                string         `json:"title"`
	Slug                 string         `json:"slug"`
	Excerpt              string         `json:"excerpt"`
	PublishedAt          string         `json:"publishedAt"`
	Sites                []string       `json:"sites"`
	Tags                 []string       `json:"tags"`
	MainImage            *wireImage     `json:"mainImage"`
	Categories           []wireCategory `json:"categories"`
	Body                 []wireBlock    `json:"body"`
	EstimatedReadingTime int            `json:"estimatedReadingTime"`
	Author               *wireAuthor    `json:"author"`
	Industry             string         `json:"industry"`
	Client               string         `json:"client"`
	Challenge            string         `json:"challenge"`
	Solution             string         `json:"solution"`
	Results              string         `json:"results"`
	Jurisdictions        []string       `json:"jurisdictions"`
}

// decorators are marks that carry no definition.
var decorators = map[string]bool{
	"strong":         true,
	"em":             true,
	"code":           true,
	"underline":      true,
	"strike-through": true,
}

func toRecords(kind content.Kind, wire []wireRecord) []content.Record {
	out := make([]content.Record, 0, len(wire))
	for i := range wire {
		out = append(out, wire[i].toRecord(kind))
	}
	return out
}

func (w *wireRecord) toRecord(kind content.Kind) content.Record {
	rec := content.Record{
		ID:                   w.ID,
		Kind:                 kind,
		Slug:                 w.Slug,
		Title:                w.Title,
		Excerpt:              w.Excerpt,
		Body:                 toBlocks(w.Body),
		MainImage:            w.MainImage.toImage(),
		Tags:                 w.Tags,
		Sites:                w.Sites,
		EstimatedReadingTime: w.EstimatedReadingTime,
		Industry:             w.Industry,
		Client:               w.Client,
		Challenge:            w.Challenge,
		Solution:             w.Solution,
		Results:              w.Results,
		Jurisdictions:        w.Jurisdictions,
	}
	if t, err := time.Parse(time.RFC3339, w.PublishedAt); err == nil {
		rec.PublishedAt = t
	}
	for _, c := range w.Categories {
		if c.Title != "" {
			rec.Categories = append(rec.Categories, content.Category{ID: c.ID, Title: c.Title})
		}
	}
	if w.Author != nil && w.Author.Name != "" {
		rec.Author = &content.Author{Name: w.Author.Name, Role: w.Author.Role, Image: w.Author.Image.toImage()}
	}
	return rec
}

// toBlocks converts portable text into content blocks. Anything that is not
// a recognised block keeps its own type name so the renderer can skip it.
func toBlocks(wire []wireBlock) []content.Block {
	out := make([]content.Block, 0, len(wire))
	for _, w := range wire {
		switch w.Type {
		case "block":
			out = append(out, content.Block{Type: blockType(w), Spans: toSpans(w)})
		case "image":
			out = append(out, content.Block{
				Type:  content.BlockImage,
				Image: &content.Image{URL: w.URL, Alt: w.Alt, Caption: w.Caption},
			})
		default:
			out = append(out, content.Block{Type: w.Type})
		}
	}
	return out
}

func blockType(w wireBlock) string {
	switch w.ListItem {
	case "":
	case "bullet":
		return content.BlockBulletItem
	case "number":
		return content.BlockNumberItem
	default:
		return "list-" + w.ListItem
	}
	if w.Style == "" {
		return content.BlockNormal
	}
	return w.Style
}

func toSpans(w wireBlock) []content.Span {
	defs := make(map[string]wireMarkDef, len(w.MarkDefs))
	for _, d := range w.MarkDefs {
		defs[d.Key] = d
	}

	spans := make([]content.Span, 0, len(w.Children))
	for _, child := range w.Children {
		if child.Type != "" && child.Type != "span" {
			continue
		}
		span := content.Span{Text: child.Text}
		for _, m := range child.Marks {
			if decorators[m] {
				span.Marks = append(span.Marks, content.Mark{Type: m})
				continue
			}
			if def, ok := defs[m]; ok {
				span.Marks = append(span.Marks, content.Mark{Type: def.Type, Href: def.Href})
			}
		}
		spans = append(spans, span)
	}
	return spans
}
