// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package sanity implements content.Source over the Sanity HTTP query API.
package sanity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/involv/sitekit/internal/content"
)

const (
	defaultAPIVersion = "2024-01-01"
	defaultTimeout    = 10 * time.Second
	maxErrorBody      = 1024
	userAgent         = "sitekit/1.0"
)

// Config configures a Client.
type Config struct {
	ProjectID  string
	Dataset    string
	APIVersion string // date string, e.g. 2024-01-01
	Token      string // optional read token
	UseCDN     bool   // ignored when Token is set
	BaseURL    string // overrides the derived API host, for tests
	Timeout    time.Duration
}

// Client queries a Sanity dataset with GROQ.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

// New creates a Client.
func New(cfg Config) (*Client, error) {
	if cfg.Dataset == "" {
		return nil, errors.New("sanity: dataset is required")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		if cfg.ProjectID == "" {
			return nil, errors.New("sanity: project ID is required")
		}
		host := "api.sanity.io"
		if cfg.UseCDN && cfg.Token == "" {
			host = "apicdn.sanity.io"
		}
		base = fmt.Sprintf("https://%s.%s", cfg.ProjectID, host)
	}

	return &Client{
		endpoint: fmt.Sprintf("%s/v%s/data/query/%s", base, strings.TrimPrefix(cfg.APIVersion, "v"), url.PathEscape(cfg.Dataset)),
		token:    cfg.Token,
		http:     &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// ListRecordsForSite implements content.Source.
func (c *Client) ListRecordsForSite(ctx context.Context, kind content.Kind, site string) ([]content.Record, error) {
	var wire []wireRecord
	if err := c.query(ctx, listQuery(kind, 0), map[string]any{"site": site}, &wire); err != nil {
		return nil, err
	}
	return toRecords(kind, wire), nil
}

// ListPostsForSite implements content.Source.
func (c *Client) ListPostsForSite(ctx context.Context, site string, limit int) ([]content.Record, error) {
	var wire []wireRecord
	if err := c.query(ctx, listQuery(content.KindPost, limit), map[string]any{"site": site}, &wire); err != nil {
		return nil, err
	}
	return toRecords(content.KindPost, wire), nil
}

// GetRecordBySlug implements content.Source.
func (c *Client) GetRecordBySlug(ctx context.Context, kind content.Kind, slug string) (*content.Record, error) {
	var wire *wireRecord
	if err := c.query(ctx, slugQuery(kind), map[string]any{"slug": slug}, &wire); err != nil {
		return nil, err
	}
	if wire == nil {
		return nil, content.ErrNotFound
	}
	rec := wire.toRecord(kind)
	return &rec, nil
}

// query runs a GROQ query and decodes the "result" member into out.
func (c *Client) query(ctx context.Context, groq string, params map[string]any, out any) error {
	q := url.Values{}
	q.Set("query", groq)
	for name, value := range params {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encoding param %s: %w", name, err)
		}
		q.Set("$"+name, string(encoded))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating sanity request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sanity query failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("sanity query failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decoding sanity response: %w", err)
	}
	if len(envelope.Result) == 0 {
		envelope.Result = json.RawMessage("null")
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("decoding sanity result: %w", err)
	}
	return nil
}

var _ content.Source = (*Client)(nil)
