// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package contact

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/mileusna/useragent"

	"github.com/involv/sitekit/internal/site"
	"github.com/involv/sitekit/internal/store"
	"github.com/involv/sitekit/internal/util"
)

// Outcome classifies a submission attempt.
type Outcome int

const (
	// OutcomeSent means the relay accepted the submission.
	OutcomeSent Outcome = iota
	// OutcomeInvalid means field validation failed; nothing was relayed.
	OutcomeInvalid
	// OutcomeDuplicate means the form token was already claimed.
	OutcomeDuplicate
	// OutcomeSpam means the honeypot was filled in; nothing was relayed.
	OutcomeSpam
	// OutcomeFailed means the relay rejected the submission or was unreachable.
	OutcomeFailed
)

// Audit statuses stored in form_submissions.
const (
	StatusSent      = "sent"
	StatusFailed    = "failed"
	StatusInvalid   = "invalid"
	StatusDuplicate = "duplicate"
	StatusSpam      = "spam"
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSent:
		return StatusSent
	case OutcomeInvalid:
		return StatusInvalid
	case OutcomeDuplicate:
		return StatusDuplicate
	case OutcomeSpam:
		return StatusSpam
	default:
		return StatusFailed
	}
}

// FormErrorKey holds form-level (not field) errors in Result.Errors.
const FormErrorKey = "_form"

// Result is the outcome of Service.Submit.
type Result struct {
	Outcome    Outcome
	Errors     map[string]string
	StatusCode int
}

// Relayer delivers a submission to the form relay.
type Relayer interface {
	Submit(ctx context.Context, values url.Values) (int, error)
}

// Request is one POST of the contact form.
type Request struct {
	Submission Submission
	IP         string
	UserAgent  string
}

// ServiceConfig wires a Service.
type ServiceConfig struct {
	Site    string
	Contact site.Contact
	CC      string
	Relay   Relayer
	Guard   *Guard
	// DB receives audit rows; nil disables auditing.
	DB     store.DBTX
	Logger *slog.Logger
}

// Service validates, relays and audits contact submissions.
type Service struct {
	site    string
	contact site.Contact
	cc      string
	relay   Relayer
	guard   *Guard
	queries *store.Queries
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a contact service.
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		site:    cfg.Site,
		contact: cfg.Contact,
		cc:      cfg.CC,
		relay:   cfg.Relay,
		guard:   cfg.Guard,
		logger:  logger.With("category", "form"),
		now:     time.Now,
	}
	if cfg.DB != nil {
		s.queries = store.New(cfg.DB)
	}
	return s
}

// Submit runs one submission attempt. It never retries the relay.
func (s *Service) Submit(ctx context.Context, req Request) Result {
	sub := req.Submission

	if sub.IsSpam() {
		s.logger.Info("contact form honeypot triggered", "ip", req.IP)
		s.audit(ctx, req, StatusSpam, 0, nil)
		return Result{Outcome: OutcomeSpam}
	}

	if errs := sub.Validate(s.contact); len(errs) > 0 {
		s.audit(ctx, req, StatusInvalid, 0, nil)
		return Result{Outcome: OutcomeInvalid, Errors: errs}
	}

	if !ValidToken(sub.Token) {
		s.audit(ctx, req, StatusInvalid, 0, nil)
		return Result{Outcome: OutcomeInvalid, Errors: map[string]string{
			FormErrorKey: "This form has expired. Please review your details and send again.",
		}}
	}

	guarded := false
	if s.guard != nil {
		switch err := s.guard.Claim(ctx, sub.Token); {
		case errors.Is(err, ErrDuplicate):
			s.logger.Info("duplicate contact form submission ignored", "token", sub.Token)
			s.audit(ctx, req, StatusDuplicate, 0, nil)
			return Result{Outcome: OutcomeDuplicate}
		case err != nil:
			s.logger.Warn("contact form duplicate guard unavailable", "error", err)
		default:
			guarded = true
		}
	}

	values := sub.RelayValues(s.site, s.contact, s.cc)
	status, err := s.relay.Submit(ctx, values)
	if err != nil {
		if guarded {
			if rerr := s.guard.Release(context.WithoutCancel(ctx), sub.Token); rerr != nil {
				s.logger.Warn("releasing contact form token failed", "error", rerr)
			}
		}

		attrs := []any{"error", err, "status", status, "inquiry_type", sub.InquiryType}
		var relayErr *RelayError
		if errors.As(err, &relayErr) {
			attrs = append(attrs, "body", truncate(relayErr.Body, 500))
		}
		s.logger.Error("contact form relay failed", attrs...)

		s.audit(ctx, req, StatusFailed, status, err)
		return Result{Outcome: OutcomeFailed, StatusCode: status}
	}

	s.logger.Info("contact form sent", "status", status, "inquiry_type", sub.InquiryType)
	s.audit(ctx, req, StatusSent, status, nil)
	return Result{Outcome: OutcomeSent, StatusCode: status}
}

func (s *Service) audit(ctx context.Context, req Request, status string, relayStatus int, relayErr error) {
	if s.queries == nil {
		return
	}

	ua := useragent.Parse(req.UserAgent)
	browser, os := ua.Name, ua.OS
	if browser == "" {
		browser = "Unknown"
	}
	if os == "" {
		os = "Unknown"
	}

	params := store.CreateFormSubmissionParams{
		Token:       req.Submission.Token,
		Site:        s.site,
		FormType:    FormType,
		InquiryType: req.Submission.InquiryType,
		Email:       req.Submission.Email,
		Status:      status,
		IpAddress:   req.IP,
		Browser:     browser,
		Os:          os,
		Device:      deviceType(ua),
		RelayStatus: util.NullInt64(int64(relayStatus)),
		CreatedAt:   s.now(),
	}
	if relayErr != nil {
		params.Error = util.NullString(relayErr.Error())
	}

	if _, err := s.queries.CreateFormSubmission(context.WithoutCancel(ctx), params); err != nil {
		s.logger.Warn("recording contact form submission failed", "error", err)
	}
}

func deviceType(ua useragent.UserAgent) string {
	switch {
	case ua.Mobile:
		return "mobile"
	case ua.Tablet:
		return "tablet"
	case ua.Bot:
		return "bot"
	default:
		return "desktop"
	}
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "…"
}
