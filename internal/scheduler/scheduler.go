// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the background jobs: content revalidation and
// housekeeping of the event log and submission audit.
package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/involv/sitekit/internal/store"
)

// Job names.
const (
	JobWarmContent = "warm-content"
	JobPrune       = "prune"
)

// Defaults.
const (
	DefaultRetention   = 30 * 24 * time.Hour
	DefaultJobTimeout  = 2 * time.Minute
	PruneSchedule      = "@daily"
	minWarmGranularity = time.Second
)

// Warmer refreshes cached content.
type Warmer interface {
	Warm(ctx context.Context) error
}

// Options configures the scheduler.
type Options struct {
	// Warmer is refreshed every Revalidate; nil disables the job.
	Warmer     Warmer
	Revalidate time.Duration
	// DB is pruned daily; nil disables the job.
	DB        *sql.DB
	Retention time.Duration
	Logger    *slog.Logger
}

type job struct {
	name        string
	description string
	schedule    string
	entryID     cron.EntryID
	run         func(ctx context.Context) error
}

// JobInfo is the public view of a registered job.
type JobInfo struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Schedule    string    `json:"schedule"`
	LastRun     time.Time `json:"last_run,omitzero"`
	NextRun     time.Time `json:"next_run,omitzero"`
}

// Scheduler owns a cron instance and its registered jobs.
type Scheduler struct {
	cron      *cron.Cron
	logger    *slog.Logger
	retention time.Duration

	mu   sync.RWMutex
	jobs map[string]*job
}

// New creates a scheduler and registers the jobs enabled by opts.
func New(opts Options) (*Scheduler, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	retention := opts.Retention
	if retention <= 0 {
		retention = DefaultRetention
	}

	s := &Scheduler{
		cron:      cron.New(),
		logger:    logger,
		retention: retention,
		jobs:      make(map[string]*job),
	}

	if opts.Warmer != nil {
		if opts.Revalidate < minWarmGranularity {
			return nil, fmt.Errorf("revalidate interval %v is too short", opts.Revalidate)
		}
		warmer := opts.Warmer
		err := s.register(JobWarmContent, "Refresh cached content lists",
			"@every "+opts.Revalidate.String(), warmer.Warm)
		if err != nil {
			return nil, err
		}
	}

	if opts.DB != nil {
		queries := store.New(opts.DB)
		err := s.register(JobPrune, "Delete old events and submission audit rows",
			PruneSchedule, func(ctx context.Context) error {
				return s.prune(ctx, queries)
			})
		if err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Scheduler) register(name, description, schedule string, run func(ctx context.Context) error) error {
	j := &job{name: name, description: description, schedule: schedule, run: run}

	id, err := s.cron.AddFunc(schedule, func() { s.execute(j) })
	if err != nil {
		return fmt.Errorf("registering job %s: %w", name, err)
	}
	j.entryID = id

	s.mu.Lock()
	s.jobs[name] = j
	s.mu.Unlock()

	s.logger.Debug("registered scheduled job", "name", name, "schedule", schedule)
	return nil
}

func (s *Scheduler) execute(j *job) {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultJobTimeout)
	defer cancel()

	start := time.Now()
	if err := j.run(ctx); err != nil {
		s.logger.Error("scheduled job failed", "job", j.name, "error", err)
		return
	}
	s.logger.Debug("scheduled job finished", "job", j.name, "duration", time.Since(start))
}

// Start begins running jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// List returns all registered jobs sorted by name.
func (s *Scheduler) List() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		entry := s.cron.Entry(j.entryID)
		result = append(result, JobInfo{
			Name:        j.name,
			Description: j.description,
			Schedule:    j.schedule,
			LastRun:     entry.Prev,
			NextRun:     entry.Next,
		})
	}

	sort.Slice(result, func(i, k int) bool { return result[i].Name < result[k].Name })
	return result
}

// TriggerNow runs a job synchronously.
func (s *Scheduler) TriggerNow(ctx context.Context, name string) error {
	s.mu.RLock()
	j, ok := s.jobs[name]
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("job not found: %s", name)
	}

	s.logger.Info("manually triggering job", "job", name)
	return j.run(ctx)
}

func (s *Scheduler) prune(ctx context.Context, queries *store.Queries) error {
	cutoff := time.Now().Add(-s.retention)

	events, err := queries.DeleteEventsBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("pruning events: %w", err)
	}
	submissions, err := queries.DeleteFormSubmissionsBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("pruning form submissions: %w", err)
	}

	if events > 0 || submissions > 0 {
		s.logger.Info("pruned old records", "events", events, "submissions", submissions, "before", cutoff)
	}
	return nil
}
