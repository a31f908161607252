// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

// Event is one row of the event log.
type Event struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Site      string    `json:"site"`
	Message   string    `json:"message"`
	Metadata  string    `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}

// FormSubmission is the audit row for one contact form attempt.
type FormSubmission struct {
	ID          int64          `json:"id"`
	Token       string         `json:"token"`
	Site        string         `json:"site"`
	FormType    string         `json:"form_type"`
	InquiryType string         `json:"inquiry_type"`
	Email       string         `json:"email"`
	Status      string         `json:"status"`
	RelayStatus sql.NullInt64  `json:"relay_status"`
	Error       sql.NullString `json:"error"`
	IpAddress   string         `json:"ip_address"`
	Browser     string         `json:"browser"`
	Os          string         `json:"os"`
	Device      string         `json:"device"`
	CreatedAt   time.Time      `json:"created_at"`
}

// ContentRecord is a mirrored content record. Data holds the full record as JSON.
type ContentRecord struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Sites       string    `json:"sites"`
	Data        string    `json:"data"`
	PublishedAt time.Time `json:"published_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
