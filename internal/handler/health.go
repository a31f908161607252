// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/involv/sitekit/internal/cache"
	"github.com/involv/sitekit/internal/scheduler"
	"github.com/involv/sitekit/internal/version"
)

// Check statuses.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// minDiskSpace is the free space below which the disk check degrades.
const minDiskSpace = 100 * 1024 * 1024

const healthCheckTimeout = 2 * time.Second

// JobLister reports the scheduler's registered jobs.
type JobLister interface {
	List() []scheduler.JobInfo
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	db             *sql.DB
	cache          cache.Cacher
	site           string
	contentBackend string
	jobs           JobLister
	uploadsDir     string
	detailed       bool
	startTime      time.Time
}

// HealthConfig wires a HealthHandler.
type HealthConfig struct {
	DB             *sql.DB
	Cache          cache.Cacher
	Site           string
	ContentBackend string
	Jobs           JobLister
	UploadsDir     string
	// Detailed includes check messages and jobs in the response.
	Detailed bool
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(cfg HealthConfig) *HealthHandler {
	return &HealthHandler{
		db:             cfg.DB,
		cache:          cfg.Cache,
		site:           cfg.Site,
		contentBackend: cfg.ContentBackend,
		jobs:           cfg.Jobs,
		uploadsDir:     cfg.UploadsDir,
		detailed:       cfg.Detailed,
		startTime:      time.Now(),
	}
}

// HealthStatus represents the overall health status.
type HealthStatus struct {
	Status    string              `json:"status"`
	Site      string              `json:"site"`
	Timestamp time.Time           `json:"timestamp"`
	Uptime    string              `json:"uptime"`
	Version   string              `json:"version"`
	Checks    map[string]Check    `json:"checks"`
	Jobs      []scheduler.JobInfo `json:"jobs,omitempty"`
	System    *SystemInfo         `json:"system,omitempty"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// SystemInfo contains system-level information.
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutines"`
	NumCPU       int    `json:"num_cpus"`
	MemAlloc     string `json:"mem_alloc"`
	MemSys       string `json:"mem_sys"`
}

// Health handles GET /health. The database gates overall health; cache and
// disk problems only degrade it, since pages still render from the store.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	checks := map[string]Check{
		"database": h.checkDatabase(ctx),
		"cache":    h.checkCache(ctx),
		"disk":     h.checkDiskSpace(),
		"content":  {Status: StatusHealthy, Message: h.contentBackend},
	}

	overall := StatusHealthy
	for name, c := range checks {
		switch {
		case c.Status == StatusUnhealthy && name == "database":
			overall = StatusUnhealthy
		case c.Status != StatusHealthy && overall == StatusHealthy:
			overall = StatusDegraded
		}
	}

	status := HealthStatus{
		Status:    overall,
		Site:      h.site,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   version.Get().Version,
		Checks:    checks,
	}
	if h.detailed {
		if h.jobs != nil {
			status.Jobs = h.jobs.List()
		}
		if r.URL.Query().Get("verbose") == "true" {
			status.System = systemInfo()
		}
	} else {
		for name, c := range checks {
			c.Message = ""
			checks[name] = c
		}
	}

	code := http.StatusOK
	if overall == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

// Liveness handles GET /health/live.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// Readiness handles GET /health/ready.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if h.checkDatabase(ctx).Status != StatusHealthy {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// checkDatabase verifies database connectivity.
func (h *HealthHandler) checkDatabase(ctx context.Context) Check {
	if h.db == nil {
		return Check{Status: StatusUnhealthy, Message: "Not configured"}
	}

	start := time.Now()
	err := h.db.PingContext(ctx)
	latency := time.Since(start)

	if err != nil {
		return Check{Status: StatusUnhealthy, Message: err.Error(), Latency: latency.String()}
	}
	return Check{Status: StatusHealthy, Message: "Connected", Latency: latency.String()}
}

// checkCache writes and reads back a probe key.
func (h *HealthHandler) checkCache(ctx context.Context) Check {
	if h.cache == nil {
		return Check{Status: StatusDegraded, Message: "Not configured"}
	}

	backend := cache.Backend(h.cache)
	start := time.Now()
	const probeKey = "health:probe"
	if err := h.cache.Set(ctx, probeKey, []byte("1"), 10*time.Second); err != nil {
		return Check{Status: StatusDegraded, Message: backend + ": " + err.Error()}
	}
	if _, err := h.cache.Get(ctx, probeKey); err != nil {
		return Check{Status: StatusDegraded, Message: backend + ": " + err.Error()}
	}
	latency := time.Since(start)

	msg := backend
	if sp, ok := h.cache.(cache.StatsProvider); ok && h.detailed {
		stats := sp.Stats()
		msg = fmt.Sprintf("%s: %d items, %.1f%% hit rate", backend, stats.Items, stats.HitRate)
	}
	return Check{Status: StatusHealthy, Message: msg, Latency: latency.String()}
}

// checkDiskSpace checks available disk space in the uploads directory.
func (h *HealthHandler) checkDiskSpace() Check {
	if h.uploadsDir == "" {
		return Check{Status: StatusHealthy, Message: "No uploads directory"}
	}
	if _, err := os.Stat(h.uploadsDir); os.IsNotExist(err) {
		return Check{Status: StatusHealthy, Message: "Uploads directory does not exist yet"}
	}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(h.uploadsDir, &stat); err != nil {
		return Check{Status: StatusDegraded, Message: "Failed to check disk space: " + err.Error()}
	}

	availableBytes := stat.Bavail * uint64(stat.Bsize)
	available := humanize.IBytes(availableBytes)
	if availableBytes < minDiskSpace {
		return Check{Status: StatusDegraded, Message: "Low disk space: " + available + " available"}
	}
	return Check{Status: StatusHealthy, Message: available + " available"}
}

func systemInfo() *SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return &SystemInfo{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     humanize.IBytes(m.Alloc),
		MemSys:       humanize.IBytes(m.Sys),
	}
}
