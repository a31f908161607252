// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/involv/sitekit/internal/contact"
	"github.com/involv/sitekit/internal/seo"
	"github.com/involv/sitekit/internal/session"
	"github.com/involv/sitekit/internal/site"
	"github.com/involv/sitekit/internal/util"
)

// maxContactBody bounds the posted form size.
const maxContactBody = 64 << 10

// ConfirmationSeconds is how long the sent confirmation shows before the
// page resets to an empty form.
const ConfirmationSeconds = 5

const contactPath = "/contact"

// Submitter runs one contact form submission.
type Submitter interface {
	Submit(ctx context.Context, req contact.Request) contact.Result
}

// ContactHandler serves the contact form.
type ContactHandler struct {
	*Pages
	service  Submitter
	sessions *scs.SessionManager
}

// NewContactHandler creates a new contact handler.
func NewContactHandler(pages *Pages, service Submitter, sessions *scs.SessionManager) *ContactHandler {
	return &ContactHandler{Pages: pages, service: service, sessions: sessions}
}

// ContactData is the contact page template data.
type ContactData struct {
	Form   map[string]string
	Errors map[string]string
	Token  string
	// Sent shows the confirmation instead of the form.
	Sent bool
	// Failed shows the relay error alert above the preserved form.
	Failed bool
}

// IsDemo reports whether the selected inquiry is a demo request.
func (d ContactData) IsDemo(c site.Contact) bool {
	return c.IsDemo(d.Form[contact.FieldInquiryType])
}

// Show handles GET /contact. After a successful post the redirect lands on
// /contact?sent=1 and the confirmation renders once, then refreshes back to
// an empty form.
func (h *ContactHandler) Show(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("sent") == "1" && session.PopFlash(r.Context(), h.sessions) == session.FlashContactSent {
		h.renderContact(w, r, http.StatusOK, ContactData{Sent: true})
		return
	}

	inquiry := h.profile.Contact.DefaultInquiry
	if v := q.Get("inquiry"); hasInquiry(h.profile.Contact, v) {
		inquiry = v
	}

	h.renderContact(w, r, http.StatusOK, ContactData{
		Form:  map[string]string{contact.FieldInquiryType: inquiry},
		Token: contact.NewToken(),
	})
}

// Submit handles POST /contact.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxContactBody)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	sub := contact.FromForm(r.PostForm)
	res := h.service.Submit(r.Context(), contact.Request{
		Submission: sub,
		IP:         util.ClientIP(r),
		UserAgent:  r.UserAgent(),
	})

	token := sub.Token
	if !contact.ValidToken(token) {
		token = contact.NewToken()
	}

	switch res.Outcome {
	case contact.OutcomeSent, contact.OutcomeDuplicate, contact.OutcomeSpam:
		session.SetFlash(r.Context(), h.sessions, session.FlashContactSent)
		http.Redirect(w, r, contactPath+"?sent=1", http.StatusSeeOther)
	case contact.OutcomeInvalid:
		h.renderContact(w, r, http.StatusUnprocessableEntity, ContactData{
			Form:   sub.Values(),
			Errors: res.Errors,
			Token:  token,
		})
	default:
		h.renderContact(w, r, http.StatusBadGateway, ContactData{
			Form:   sub.Values(),
			Token:  token,
			Failed: true,
		})
	}
}

func (h *ContactHandler) renderContact(w http.ResponseWriter, r *http.Request, status int, data ContactData) {
	v := pageView{
		status:   status,
		template: tmplContact,
		page: &seo.PageData{
			Title:       "Contact",
			Description: h.profile.Contact.Hero.Lead,
			Path:        contactPath,
			NoIndex:     data.Sent,
		},
		data: data,
	}
	if data.Sent {
		v.refresh = ConfirmationSeconds
		v.refreshURL = contactPath
	}
	h.render(w, r, v)
}

func hasInquiry(c site.Contact, value string) bool {
	for _, opt := range c.InquiryTypes {
		if opt.Value == value {
			return true
		}
	}
	return false
}
