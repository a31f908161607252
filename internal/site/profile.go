// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package site describes the identity of the site a process serves: brand
// tokens, navigation, marketing copy and legal pages. Every page template is
// parameterized by a Profile, so one template set renders both brands.
package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

//go:embed profiles/*.yaml
var profileFS embed.FS

//go:embed legal/*.md
var legalFS embed.FS

// Profile is the full identity of one site.
type Profile struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	Company       string `yaml:"company"`
	Domain        string `yaml:"domain"`
	Tagline       string `yaml:"tagline"`
	Description   string `yaml:"description"`
	Logo          string `yaml:"logo"`
	OGImage       string `yaml:"og_image"`
	DefaultAuthor string `yaml:"default_author"`

	Theme       Theme       `yaml:"theme"`
	Nav         []NavItem   `yaml:"nav"`
	Footer      Footer      `yaml:"footer"`
	Home        Home        `yaml:"home"`
	Features    Features    `yaml:"features"`
	Pricing     Pricing     `yaml:"pricing"`
	About       About       `yaml:"about"`
	Contact     Contact     `yaml:"contact"`
	Legal       []LegalPage `yaml:"legal"`
	Testimonial Testimonial `yaml:"testimonial"`

	legalHTML map[string]template.HTML
}

// NavItem is a header navigation link.
type NavItem struct {
	Label string `yaml:"label"`
	Href  string `yaml:"href"`
	// Secondary items render on the right beside the login button.
	Secondary bool `yaml:"secondary"`
}

// IsActive reports whether the item should be highlighted for path.
// The home link matches only "/"; other links match by prefix.
func (n NavItem) IsActive(path string) bool {
	if n.Href == "/" {
		return path == "/"
	}
	return strings.HasPrefix(path, n.Href)
}

// Link is a labelled href.
type Link struct {
	Label    string `yaml:"label"`
	Href     string `yaml:"href"`
	External bool   `yaml:"external"`
}

// FooterColumn is one titled link column in the footer.
type FooterColumn struct {
	Title string `yaml:"title"`
	Links []Link `yaml:"links"`
}

// Footer holds the footer copy and links.
type Footer struct {
	Lines     []string       `yaml:"lines"`
	Columns   []FooterColumn `yaml:"columns"`
	Social    []Link         `yaml:"social"`
	Copyright string         `yaml:"copyright"`
}

// Card is a titled block of copy used across marketing sections.
type Card struct {
	Title       string   `yaml:"title"`
	Subtitle    string   `yaml:"subtitle"`
	Description string   `yaml:"description"`
	Note        string   `yaml:"note"`
	Points      []string `yaml:"points"`
	Highlight   bool     `yaml:"highlight"`
}

// Stat is a headline number.
type Stat struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// Hero is the top section of a page.
type Hero struct {
	Title     string `yaml:"title"`
	Highlight string `yaml:"highlight"`
	Subtitle  string `yaml:"subtitle"`
	Lead      string `yaml:"lead"`
	Primary   Link   `yaml:"primary"`
	Secondary Link   `yaml:"secondary"`
}

// Home is the landing page copy.
type Home struct {
	Title      string   `yaml:"title"`
	Hero       Hero     `yaml:"hero"`
	Challenges []string `yaml:"challenges"`
	Model      Section  `yaml:"model"`
	Benefits   Section  `yaml:"benefits"`
	Stats      []Stat   `yaml:"stats"`
	Closing    Hero     `yaml:"closing"`
}

// Section is a heading, intro and a set of cards.
type Section struct {
	Title string `yaml:"title"`
	Intro string `yaml:"intro"`
	Cards []Card `yaml:"cards"`
}

// Features is the features page copy.
type Features struct {
	Title    string    `yaml:"title"`
	Hero     Hero      `yaml:"hero"`
	Sections []Section `yaml:"sections"`
	Closing  Hero      `yaml:"closing"`
}

// About is the about page copy.
type About struct {
	Title    string    `yaml:"title"`
	Hero     Hero      `yaml:"hero"`
	Stats    []Stat    `yaml:"stats"`
	Sections []Section `yaml:"sections"`
	Team     []Member  `yaml:"team"`
	Closing  Hero      `yaml:"closing"`
}

// Member is a team member on the about page.
type Member struct {
	Name  string `yaml:"name"`
	Role  string `yaml:"role"`
	Image string `yaml:"image"`
}

// Testimonial is a quoted endorsement.
type Testimonial struct {
	Quote  string `yaml:"quote"`
	Source string `yaml:"source"`
	Metric string `yaml:"metric"`
	Detail string `yaml:"detail"`
}

// LegalPage maps a route slug to a markdown document.
type LegalPage struct {
	Slug    string `yaml:"slug"`
	Title   string `yaml:"title"`
	File    string `yaml:"file"`
	Updated string `yaml:"updated"`
}

// Known returns the identifiers of the built-in profiles.
func Known() []string {
	entries, err := profileFS.ReadDir("profiles")
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	slices.Sort(ids)
	return ids
}

// IsKnown reports whether id names a built-in profile.
func IsKnown(id string) bool {
	return slices.Contains(Known(), id)
}

// Load returns the built-in profile id, or the profile in overridePath when set.
func Load(id, overridePath string) (*Profile, error) {
	var (
		data []byte
		err  error
	)
	if overridePath != "" {
		data, err = os.ReadFile(overridePath)
		if err != nil {
			return nil, fmt.Errorf("reading site profile %s: %w", overridePath, err)
		}
	} else {
		data, err = profileFS.ReadFile("profiles/" + id + ".yaml")
		if err != nil {
			return nil, fmt.Errorf("unknown site %q (known: %s)", id, strings.Join(Known(), ", "))
		}
	}

	p, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if p.ID != id {
		return nil, fmt.Errorf("site profile declares id %q, want %q", p.ID, id)
	}
	return p, nil
}

// Parse decodes and validates a YAML profile and renders its legal pages.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("parsing site profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := p.renderLegal(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the fields every page depends on.
func (p *Profile) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("site profile: id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("site profile %s: name is required", p.ID)
	}
	if p.Domain == "" {
		return fmt.Errorf("site profile %s: domain is required", p.ID)
	}

	seen := make(map[string]bool, len(p.Nav))
	for _, item := range p.Nav {
		if item.Href == "" || !strings.HasPrefix(item.Href, "/") {
			return fmt.Errorf("site profile %s: nav item %q needs a local href", p.ID, item.Label)
		}
		if seen[item.Href] {
			return fmt.Errorf("site profile %s: duplicate nav href %q", p.ID, item.Href)
		}
		seen[item.Href] = true
	}

	slugs := make(map[string]bool, len(p.Legal))
	for _, lp := range p.Legal {
		if lp.Slug == "" || lp.File == "" {
			return fmt.Errorf("site profile %s: legal pages need a slug and file", p.ID)
		}
		if slugs[lp.Slug] {
			return fmt.Errorf("site profile %s: duplicate legal slug %q", p.ID, lp.Slug)
		}
		slugs[lp.Slug] = true
	}

	if err := p.Theme.Validate(); err != nil {
		return fmt.Errorf("site profile %s: %w", p.ID, err)
	}
	return nil
}

// BaseURL returns the canonical https origin for the site.
func (p *Profile) BaseURL() string {
	return "https://" + p.Domain
}

// PrimaryNav returns the centre navigation items.
func (p *Profile) PrimaryNav() []NavItem {
	return slices.DeleteFunc(slices.Clone(p.Nav), func(n NavItem) bool { return n.Secondary })
}

// SecondaryNav returns the right-hand navigation items.
func (p *Profile) SecondaryNav() []NavItem {
	return slices.DeleteFunc(slices.Clone(p.Nav), func(n NavItem) bool { return !n.Secondary })
}

// LegalPage returns the legal page registered under slug.
func (p *Profile) LegalPage(slug string) (LegalPage, bool) {
	for _, lp := range p.Legal {
		if lp.Slug == slug {
			return lp, true
		}
	}
	return LegalPage{}, false
}

// LegalHTML returns the rendered body of the legal page slug.
func (p *Profile) LegalHTML(slug string) (template.HTML, bool) {
	html, ok := p.legalHTML[slug]
	return html, ok
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// renderLegal converts each legal markdown file once. Occurrences of
// {{site}}, {{company}} and {{domain}} are replaced with profile values.
func (p *Profile) renderLegal() error {
	replacer := strings.NewReplacer(
		"{{site}}", p.Name,
		"{{company}}", p.Company,
		"{{domain}}", p.Domain,
	)

	p.legalHTML = make(map[string]template.HTML, len(p.Legal))
	for _, lp := range p.Legal {
		src, err := legalFS.ReadFile("legal/" + lp.File)
		if err != nil {
			return fmt.Errorf("site profile %s: legal page %s: %w", p.ID, lp.Slug, err)
		}

		var buf bytes.Buffer
		if err := markdown.Convert([]byte(replacer.Replace(string(src))), &buf); err != nil {
			return fmt.Errorf("site profile %s: rendering %s: %w", p.ID, lp.Slug, err)
		}
		p.legalHTML[lp.Slug] = template.HTML(buf.String()) //nolint:gosec // embedded markdown, raw HTML disabled
	}
	return nil
}

// Option is a select option on the contact form.
type Option struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// Contact is the contact page copy and form configuration.
type Contact struct {
	Title          string   `yaml:"title"`
	Hero           Hero     `yaml:"hero"`
	SubjectPrefix  string   `yaml:"subject_prefix"`
	DefaultInquiry string   `yaml:"default_inquiry"`
	DemoInquiry    string   `yaml:"demo_inquiry"`
	InquiryTypes   []Option `yaml:"inquiry_types"`
	VenueTypes     []Option `yaml:"venue_types"`
	Challenges     []Option `yaml:"challenges"`
	SuccessTitle   string   `yaml:"success_title"`
	SuccessMessage string   `yaml:"success_message"`
	ErrorMessage   string   `yaml:"error_message"`
	Details        []Card   `yaml:"details"`
}

// Subject builds the relay subject line for an inquiry type.
func (c Contact) Subject(inquiryType string) string {
	if inquiryType == "" {
		inquiryType = c.DefaultInquiry
	}
	return c.SubjectPrefix + " – " + inquiryType
}

// IsDemo reports whether inquiryType is the demo request option.
func (c Contact) IsDemo(inquiryType string) bool {
	return c.DemoInquiry != "" && inquiryType == c.DemoInquiry
}
