// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package contact implements the contact form: field validation, the
// external form relay, the duplicate-submit guard and the audit trail.
package contact

import (
	"net/mail"
	"net/url"
	"strings"

	"github.com/involv/sitekit/internal/site"
)

// Form field names. They double as the relay's field names.
const (
	FieldFirstName        = "firstName"
	FieldLastName         = "lastName"
	FieldEmail            = "email"
	FieldCompany          = "company"
	FieldJobTitle         = "jobTitle"
	FieldPhone            = "phone"
	FieldVenueType        = "venueType"
	FieldInquiryType      = "inquiryType"
	FieldCurrentChallenge = "currentChallenge"
	FieldMessage          = "message"

	FieldSubject  = "_subject"
	FieldCC       = "_cc"
	FieldHoneypot = "_gotcha"
	FieldSite     = "site"
	FieldFormType = "form_type"
	FieldToken    = "token"
)

// FormType identifies contact submissions at the relay.
const FormType = "contact"

// MaxFieldLength bounds single-line fields; MaxMessageLength bounds the message.
const (
	MaxFieldLength   = 200
	MaxMessageLength = 5000
)

// Submission holds the values a visitor entered.
type Submission struct {
	FirstName        string
	LastName         string
	Email            string
	Company          string
	JobTitle         string
	Phone            string
	VenueType        string
	InquiryType      string
	CurrentChallenge string
	Message          string

	// Honeypot is the hidden field bots fill in.
	Honeypot string
	// Token identifies one rendering of the form.
	Token string
}

// FromForm reads a submission from posted form values, trimming whitespace.
func FromForm(form url.Values) Submission {
	get := func(key string) string { return strings.TrimSpace(form.Get(key)) }
	return Submission{
		FirstName:        get(FieldFirstName),
		LastName:         get(FieldLastName),
		Email:            get(FieldEmail),
		Company:          get(FieldCompany),
		JobTitle:         get(FieldJobTitle),
		Phone:            get(FieldPhone),
		VenueType:        get(FieldVenueType),
		InquiryType:      get(FieldInquiryType),
		CurrentChallenge: get(FieldCurrentChallenge),
		Message:          get(FieldMessage),
		Honeypot:         get(FieldHoneypot),
		Token:            get(FieldToken),
	}
}

// Values returns the visitor-entered fields keyed by field name, for
// re-rendering the form.
func (s Submission) Values() map[string]string {
	return map[string]string{
		FieldFirstName:        s.FirstName,
		FieldLastName:         s.LastName,
		FieldEmail:            s.Email,
		FieldCompany:          s.Company,
		FieldJobTitle:         s.JobTitle,
		FieldPhone:            s.Phone,
		FieldVenueType:        s.VenueType,
		FieldInquiryType:      s.InquiryType,
		FieldCurrentChallenge: s.CurrentChallenge,
		FieldMessage:          s.Message,
	}
}

// IsSpam reports whether the honeypot was filled in.
func (s Submission) IsSpam() bool {
	return s.Honeypot != ""
}

// Validate returns field errors keyed by field name; an empty map means the
// submission may be relayed. The message is optional for demo requests.
func (s Submission) Validate(cfg site.Contact) map[string]string {
	errs := make(map[string]string)

	required := []struct {
		field, value, label string
	}{
		{FieldInquiryType, s.InquiryType, "Inquiry type"},
		{FieldFirstName, s.FirstName, "First name"},
		{FieldLastName, s.LastName, "Last name"},
		{FieldEmail, s.Email, "Email"},
		{FieldCompany, s.Company, "Company"},
	}
	for _, r := range required {
		if r.value == "" {
			errs[r.field] = r.label + " is required"
		}
	}

	if s.Message == "" && !cfg.IsDemo(s.InquiryType) {
		errs[FieldMessage] = "Message is required"
	}

	if s.Email != "" && !isValidEmail(s.Email) {
		errs[FieldEmail] = "Please enter a valid email address"
	}

	for field, value := range s.Values() {
		limit := MaxFieldLength
		if field == FieldMessage {
			limit = MaxMessageLength
		}
		if len(value) > limit {
			errs[field] = "Too long"
		}
	}

	if s.InquiryType != "" && len(cfg.InquiryTypes) > 0 && !hasOption(cfg.InquiryTypes, s.InquiryType) {
		errs[FieldInquiryType] = "Please choose an inquiry type"
	}
	if s.VenueType != "" && len(cfg.VenueTypes) > 0 && !hasOption(cfg.VenueTypes, s.VenueType) {
		errs[FieldVenueType] = "Please choose a venue type"
	}

	return errs
}

// RelayValues builds the URL-encoded payload sent to the form relay.
func (s Submission) RelayValues(siteID string, cfg site.Contact, cc string) url.Values {
	v := url.Values{}
	for field, value := range s.Values() {
		if value != "" {
			v.Set(field, value)
		}
	}
	v.Set(FieldSubject, cfg.Subject(s.InquiryType))
	if cc != "" {
		v.Set(FieldCC, cc)
	}
	v.Set(FieldSite, siteID)
	v.Set(FieldFormType, FormType)
	return v
}

func isValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	_, domain, ok := strings.Cut(email, "@")
	return ok && strings.Contains(domain, ".")
}

func hasOption(opts []site.Option, value string) bool {
	for _, o := range opts {
		if o.Value == value {
			return true
		}
	}
	return false
}
