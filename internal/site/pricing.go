// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package site

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Billing cycles offered on the pricing page.
const (
	BillingMonthly = "monthly"
	BillingYearly  = "yearly"
)

// Pricing is the pricing page copy.
type Pricing struct {
	Title    string    `yaml:"title"`
	Hero     Hero      `yaml:"hero"`
	Currency string    `yaml:"currency"`
	TaxNote  string    `yaml:"tax_note"`
	Plans    []Plan    `yaml:"plans"`
	Compare  []Compare `yaml:"compare"`
	FAQs     []FAQ     `yaml:"faqs"`
	Closing  Hero      `yaml:"closing"`
}

// Plan is one subscription tier.
type Plan struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Monthly     int      `yaml:"monthly"`
	Yearly      int      `yaml:"yearly"`
	Features    []string `yaml:"features"`
	CTA         Link     `yaml:"cta"`
	Popular     bool     `yaml:"popular"`
}

// Compare is a row of the plan comparison table.
type Compare struct {
	Feature string `yaml:"feature"`
	Plans   []bool `yaml:"plans"`
}

// FAQ is a question and answer pair.
type FAQ struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

// NormalizeBilling maps any value other than yearly to monthly.
func NormalizeBilling(cycle string) string {
	if cycle == BillingYearly {
		return BillingYearly
	}
	return BillingMonthly
}

// Price returns the plan price for the billing cycle.
func (p Plan) Price(cycle string) int {
	if NormalizeBilling(cycle) == BillingYearly {
		return p.Yearly
	}
	return p.Monthly
}

// Period returns the display period for the billing cycle.
func Period(cycle string) string {
	if NormalizeBilling(cycle) == BillingYearly {
		return "per year"
	}
	return "per month"
}

var priceFormatter = message.NewPrinter(language.English)

// FormatPrice renders a whole-dollar amount with thousands separators.
func FormatPrice(amount int) string {
	return priceFormatter.Sprintf("$%d", amount)
}
