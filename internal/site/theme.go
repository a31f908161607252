// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package site

import (
	"fmt"
	"html/template"
	"regexp"
	"strings"
)

// Theme holds the brand tokens exposed to stylesheets as CSS variables.
type Theme struct {
	Brand   BrandColors   `yaml:"brand"`
	Neutral NeutralColors `yaml:"neutral"`
	Accent  AccentColors  `yaml:"accent"`
	Fonts   Fonts         `yaml:"fonts"`
	Radii   Scale         `yaml:"radii"`
	Shadows Scale         `yaml:"shadows"`
}

type BrandColors struct {
	Default string `yaml:"default"`
	Light   string `yaml:"light"`
	Medium  string `yaml:"medium"`
	Dark    string `yaml:"dark"`
}

type NeutralColors struct {
	Background string `yaml:"background"`
	Surface    string `yaml:"surface"`
	Muted      string `yaml:"muted"`
	Border     string `yaml:"border"`
	Text       string `yaml:"text"`
	TextMuted  string `yaml:"text_muted"`
	TextInvert string `yaml:"text_invert"`
}

type AccentColors struct {
	Warm  string `yaml:"warm"`
	Amber string `yaml:"amber"`
}

type Fonts struct {
	Sans  string `yaml:"sans"`
	Serif string `yaml:"serif"`
}

// Scale is a small/medium/large token set.
type Scale struct {
	SM string `yaml:"sm"`
	MD string `yaml:"md"`
	LG string `yaml:"lg"`
	XL string `yaml:"xl"`
}

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{3}([0-9A-Fa-f]{3})?$`)

// Validate rejects colors that are not hex and values that could break
// out of a style declaration.
func (t Theme) Validate() error {
	for name, value := range t.vars() {
		if strings.ContainsAny(value, ";{}<>") {
			return fmt.Errorf("theme %s: invalid value %q", name, value)
		}
		if strings.HasPrefix(name, "--color-") && value != "" && !hexColor.MatchString(value) {
			return fmt.Errorf("theme %s: %q is not a hex color", name, value)
		}
	}
	return nil
}

// vars returns the CSS custom properties in declaration order.
func (t Theme) vars() map[string]string {
	return map[string]string{
		"--color-brand":        t.Brand.Default,
		"--color-brand-light":  t.Brand.Light,
		"--color-brand-medium": t.Brand.Medium,
		"--color-brand-dark":   t.Brand.Dark,
		"--color-bg":           t.Neutral.Background,
		"--color-surface":      t.Neutral.Surface,
		"--color-muted":        t.Neutral.Muted,
		"--color-border":       t.Neutral.Border,
		"--color-text":         t.Neutral.Text,
		"--color-text-muted":   t.Neutral.TextMuted,
		"--color-text-invert":  t.Neutral.TextInvert,
		"--color-accent-warm":  t.Accent.Warm,
		"--color-accent-amber": t.Accent.Amber,
		"--font-sans":          t.Fonts.Sans,
		"--font-serif":         t.Fonts.Serif,
		"--radius-sm":          t.Radii.SM,
		"--radius-md":          t.Radii.MD,
		"--radius-lg":          t.Radii.LG,
		"--radius-xl":          t.Radii.XL,
		"--shadow-sm":          t.Shadows.SM,
		"--shadow-md":          t.Shadows.MD,
		"--shadow-lg":          t.Shadows.LG,
	}
}

var varOrder = []string{
	"--color-brand", "--color-brand-light", "--color-brand-medium", "--color-brand-dark",
	"--color-bg", "--color-surface", "--color-muted", "--color-border",
	"--color-text", "--color-text-muted", "--color-text-invert",
	"--color-accent-warm", "--color-accent-amber",
	"--font-sans", "--font-serif",
	"--radius-sm", "--radius-md", "--radius-lg", "--radius-xl",
	"--shadow-sm", "--shadow-md", "--shadow-lg",
}

// CSSVariables renders a :root rule with every non-empty token.
func (t Theme) CSSVariables() template.CSS {
	vars := t.vars()
	var sb strings.Builder
	sb.WriteString(":root{")
	for _, name := range varOrder {
		if v := vars[name]; v != "" {
			sb.WriteString(name)
			sb.WriteByte(':')
			sb.WriteString(v)
			sb.WriteByte(';')
		}
	}
	sb.WriteString("}")
	return template.CSS(sb.String()) //nolint:gosec // values checked by Validate
}
