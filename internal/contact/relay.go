// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package contact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/involv/sitekit/internal/version"
)

// Relay limits.
const (
	DefaultRelayTimeout = 15 * time.Second
	MaxResponseLen      = 10 * 1024
)

// ErrRelayRejected is returned when the relay answers with a non-2xx status.
var ErrRelayRejected = errors.New("form relay rejected submission")

// RelayError carries the relay's response for a rejected submission.
type RelayError struct {
	StatusCode int
	Body       string
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("%s: HTTP %d", ErrRelayRejected, e.StatusCode)
}

func (e *RelayError) Unwrap() error { return ErrRelayRejected }

// Relay posts submissions to an external form service. Each call makes
// exactly one request; failures are never retried.
type Relay struct {
	endpoint string
	client   *http.Client
}

// NewRelay creates a relay for endpoint. A zero timeout uses DefaultRelayTimeout.
func NewRelay(endpoint string, timeout time.Duration) *Relay {
	if timeout <= 0 {
		timeout = DefaultRelayTimeout
	}
	return &Relay{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Submit sends values as a URL-encoded POST. It returns the relay's status
// code when a response arrived, and a *RelayError for non-2xx answers.
func (r *Relay) Submit(ctx context.Context, values url.Values) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("relay request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseLen))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp.StatusCode, nil
	}
	return resp.StatusCode, &RelayError{StatusCode: resp.StatusCode, Body: string(body)}
}
