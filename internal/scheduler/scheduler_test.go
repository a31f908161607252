// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/involv/sitekit/internal/store"
	"github.com/involv/sitekit/internal/testutil"
)

type countingWarmer struct {
	calls atomic.Int32
	err   error
}

func (w *countingWarmer) Warm(context.Context) error {
	w.calls.Add(1)
	return w.err
}

func testLogger() *slog.Logger {
	return testutil.TestLoggerSilent()
}

func TestNew_RegistersEnabledJobs(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{"none", Options{}, nil},
		{"warm only", Options{Warmer: &countingWarmer{}, Revalidate: 5 * time.Minute}, []string{JobWarmContent}},
		{"both", Options{Warmer: &countingWarmer{}, Revalidate: time.Minute, DB: testutil.TestDB(t)}, []string{JobPrune, JobWarmContent}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Logger = testLogger()
			s, err := New(tt.opts)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			jobs := s.List()
			if len(jobs) != len(tt.want) {
				t.Fatalf("List() = %d jobs, want %d", len(jobs), len(tt.want))
			}
			for i, name := range tt.want {
				if jobs[i].Name != name {
					t.Errorf("jobs[%d] = %q, want %q", i, jobs[i].Name, name)
				}
			}
		})
	}
}

func TestNew_WarmSchedule(t *testing.T) {
	s, err := New(Options{Warmer: &countingWarmer{}, Revalidate: 5 * time.Minute, Logger: testLogger()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := s.List()[0].Schedule; got != "@every 5m0s" {
		t.Errorf("Schedule = %q, want %q", got, "@every 5m0s")
	}
}

func TestNew_RejectsTinyInterval(t *testing.T) {
	_, err := New(Options{Warmer: &countingWarmer{}, Revalidate: time.Millisecond, Logger: testLogger()})
	if err == nil {
		t.Fatal("New() should reject a sub-second revalidate interval")
	}
}

func TestScheduler_StartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	s, err := New(Options{Warmer: &countingWarmer{}, Revalidate: time.Hour, Logger: testLogger()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	s.Start()
	s.Stop()
}

func TestScheduler_TriggerNow(t *testing.T) {
	w := &countingWarmer{}
	s, err := New(Options{Warmer: w, Revalidate: time.Hour, Logger: testLogger()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := s.TriggerNow(context.Background(), JobWarmContent); err != nil {
		t.Fatalf("TriggerNow() error = %v", err)
	}
	if w.calls.Load() != 1 {
		t.Errorf("Warm called %d times, want 1", w.calls.Load())
	}

	w.err = errors.New("store down")
	if err := s.TriggerNow(context.Background(), JobWarmContent); err == nil {
		t.Error("TriggerNow() should return the job error")
	}

	if err := s.TriggerNow(context.Background(), "missing"); err == nil {
		t.Error("TriggerNow() should fail for an unknown job")
	}
}

func TestScheduler_Prune(t *testing.T) {
	db := testutil.TestDB(t)
	queries := store.New(db)
	ctx := context.Background()
	now := time.Now()

	for _, age := range []time.Duration{40 * 24 * time.Hour, time.Hour} {
		_, err := queries.CreateEvent(ctx, store.CreateEventParams{
			Level:     "warning",
			Category:  "system",
			Site:      "safeplay",
			Message:   "test",
			Metadata:  "{}",
			CreatedAt: now.Add(-age),
		})
		if err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
	}

	s, err := New(Options{DB: db, Logger: testLogger()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := s.TriggerNow(ctx, JobPrune); err != nil {
		t.Fatalf("TriggerNow(prune) error = %v", err)
	}

	events, err := queries.ListRecentEvents(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("events after prune = %d, want 1", len(events))
	}
}
