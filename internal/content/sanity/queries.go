// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package sanity

import (
	"fmt"

	"github.com/involv/sitekit/internal/content"
)

const commonProjection = `_id,
  title,
  "slug": slug.current,
  excerpt,
  publishedAt,
  sites,
  tags,
  mainImage{alt, caption, "url": asset->url},
  "categories": categories[]->{_id, title},
  body[]{..., _type == "image" => {..., "url": asset->url}}`

const postProjection = commonProjection + `,
  estimatedReadingTime,
  author->{name, role, image{alt, "url": asset->url}}`

const caseStudyProjection = commonProjection + `,
  industry,
  client,
  challenge,
  solution,
  results,
  jurisdictions`

func projection(kind content.Kind) string {
	if kind == content.KindCaseStudy {
		return caseStudyProjection
	}
	return postProjection
}

// listQuery selects published records of kind for $site, newest first.
// A positive limit slices the result.
func listQuery(kind content.Kind, limit int) string {
	slice := ""
	if limit > 0 {
		slice = fmt.Sprintf(" [0...%d]", limit)
	}
	return fmt.Sprintf(`*[_type == %q && $site in sites && defined(slug.current)] | order(publishedAt desc)%s {
  %s
}`, string(kind), slice, projection(kind))
}

// slugQuery selects the record of kind with slug $slug, regardless of site.
func slugQuery(kind content.Kind) string {
	return fmt.Sprintf(`*[_type == %q && slug.current == $slug][0] {
  %s
}`, string(kind), projection(kind))
}
