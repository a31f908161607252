// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const createFormSubmission = `-- name: CreateFormSubmission :one
INSERT INTO form_submissions (
    token, site, form_type, inquiry_type, email, status, relay_status, error,
    ip_address, browser, os, device, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, token, site, form_type, inquiry_type, email, status, relay_status, error,
    ip_address, browser, os, device, created_at
`

type CreateFormSubmissionParams struct {
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

func (q *Queries) CreateFormSubmission(ctx context.Context, arg CreateFormSubmissionParams) (FormSubmission, error) {
	row := q.db.QueryRowContext(ctx, createFormSubmission,
		arg.Token,
		arg.Site,
		arg.FormType,
		arg.InquiryType,
		arg.Email,
		arg.Status,
		arg.RelayStatus,
		arg.Error,
		arg.IpAddress,
		arg.Browser,
		arg.Os,
		arg.Device,
		arg.CreatedAt.UTC(),
	)
	var i FormSubmission
	err := row.Scan(
		&i.ID,
		&i.Token,
		&i.Site,
		&i.FormType,
		&i.InquiryType,
		&i.Email,
		&i.Status,
		&i.RelayStatus,
		&i.Error,
		&i.IpAddress,
		&i.Browser,
		&i.Os,
		&i.Device,
		&i.CreatedAt,
	)
	return i, err
}

const countFormSubmissions = `-- name: CountFormSubmissions :one
SELECT COUNT(*) FROM form_submissions WHERE site = ? AND status = ?
`

type CountFormSubmissionsParams struct {
	Site   string `json:"site"`
	Status string `json:"status"`
}

func (q *Queries) CountFormSubmissions(ctx context.Context, arg CountFormSubmissionsParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countFormSubmissions, arg.Site, arg.Status)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const deleteFormSubmissionsBefore = `-- name: DeleteFormSubmissionsBefore :execrows
DELETE FROM form_submissions WHERE created_at < ?
`

func (q *Queries) DeleteFormSubmissionsBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteFormSubmissionsBefore, before.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
