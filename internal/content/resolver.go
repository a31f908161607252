// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/involv/sitekit/internal/cache"
)

// Defaults applied by NewResolver.
const (
	DefaultRevalidate     = 5 * time.Minute
	DefaultPostLimit      = 20
	DefaultRefreshTimeout = 30 * time.Second

	// hardTTLFactor bounds how long a stale entry may keep being served.
	hardTTLFactor = 12
)

// ResolverOptions configures a Resolver.
type ResolverOptions struct {
	Site           string
	Revalidate     time.Duration
	PostLimit      int
	RefreshTimeout time.Duration
	Logger         *slog.Logger
}

type listEntry struct {
	FetchedAt time.Time `json:"fetched_at"`
	Records   []Record  `json:"records"`
}

type recordEntry struct {
	FetchedAt time.Time `json:"fetched_at"`
	Found     bool      `json:"found"`
	Record    *Record   `json:"record,omitempty"`
}

// Resolver reads through a cache in front of a Source with
// stale-while-revalidate semantics: entries younger than the revalidation
// interval are served as is; older entries are still served while one
// background fetch per key replaces them. A failed background fetch leaves
// the last good entry in place.
//
// Every record leaving the Resolver has been checked against the site.
type Resolver struct {
	source         Source
	lists          *cache.TypedCache[listEntry]
	records        *cache.TypedCache[recordEntry]
	site           string
	revalidate     time.Duration
	postLimit      int
	refreshTimeout time.Duration
	logger         *slog.Logger
	now            func() time.Time

	group    singleflight.Group
	inflight sync.Map // key -> struct{}

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewResolver creates a Resolver for one site.
func NewResolver(source Source, c cache.Cacher, opts ResolverOptions) *Resolver {
	if opts.Revalidate <= 0 {
		opts.Revalidate = DefaultRevalidate
	}
	if opts.PostLimit <= 0 {
		opts.PostLimit = DefaultPostLimit
	}
	if opts.RefreshTimeout <= 0 {
		opts.RefreshTimeout = DefaultRefreshTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	hardTTL := opts.Revalidate * hardTTLFactor
	prefix := "content:" + opts.Site + ":"

	return &Resolver{
		source:         source,
		lists:          cache.NewTypedCache[listEntry](c, prefix+"list:", hardTTL),
		records:        cache.NewTypedCache[recordEntry](c, prefix+"record:", hardTTL),
		site:           opts.Site,
		revalidate:     opts.Revalidate,
		postLimit:      opts.PostLimit,
		refreshTimeout: opts.RefreshTimeout,
		logger:         opts.Logger.With("category", "content"),
		now:            time.Now,
	}
}

// Site returns the site identifier the Resolver filters for.
func (r *Resolver) Site() string {
	return r.site
}

// CaseStudies returns the site's case studies, newest first. A fetch failure
// is logged and yields an empty list.
func (r *Resolver) CaseStudies(ctx context.Context) []Record {
	return r.list(ctx, string(KindCaseStudy), func(ctx context.Context) ([]Record, error) {
		return r.source.ListRecordsForSite(ctx, KindCaseStudy, r.site)
	})
}

// Posts returns up to limit insights posts for the site, newest first.
// A non-positive limit uses the configured default.
func (r *Resolver) Posts(ctx context.Context, limit int) []Record {
	if limit <= 0 {
		limit = r.postLimit
	}
	key := fmt.Sprintf("%s:%d", KindPost, limit)
	return r.list(ctx, key, func(ctx context.Context) ([]Record, error) {
		return r.source.ListPostsForSite(ctx, r.site, limit)
	})
}

// CaseStudy resolves one case study by slug.
func (r *Resolver) CaseStudy(ctx context.Context, slug string) (*Record, error) {
	return r.record(ctx, KindCaseStudy, slug)
}

// Post resolves one insights post by slug.
func (r *Resolver) Post(ctx context.Context, slug string) (*Record, error) {
	return r.record(ctx, KindPost, slug)
}

// Warm fetches the listing entries synchronously, replacing whatever is
// cached. Failures leave existing entries untouched.
func (r *Resolver) Warm(ctx context.Context) error {
	var errs []error
	if _, err := r.storeList(ctx, string(KindCaseStudy), func(ctx context.Context) ([]Record, error) {
		return r.source.ListRecordsForSite(ctx, KindCaseStudy, r.site)
	}); err != nil {
		errs = append(errs, fmt.Errorf("case studies: %w", err))
	}
	postKey := fmt.Sprintf("%s:%d", KindPost, r.postLimit)
	if _, err := r.storeList(ctx, postKey, func(ctx context.Context) ([]Record, error) {
		return r.source.ListPostsForSite(ctx, r.site, r.postLimit)
	}); err != nil {
		errs = append(errs, fmt.Errorf("posts: %w", err))
	}
	return errors.Join(errs...)
}

// Close stops new background refreshes and waits for running ones.
func (r *Resolver) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.wg.Wait()
}

// sharedContext detaches a fetch that other callers may be waiting on from
// the cancellation of the request that started it.
func (r *Resolver) sharedContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), r.refreshTimeout)
}

func (r *Resolver) stale(fetchedAt time.Time) bool {
	return r.now().Sub(fetchedAt) >= r.revalidate
}

type listFetcher func(ctx context.Context) ([]Record, error)

func (r *Resolver) list(ctx context.Context, key string, fetch listFetcher) []Record {
	if e, ok := r.lists.Get(ctx, key); ok {
		if r.stale(e.FetchedAt) {
			r.refresh("list:"+key, func(ctx context.Context) (any, error) {
				return r.storeList(ctx, key, fetch)
			})
		}
		return VisibleOnly(e.Records, r.site)
	}

	v, err, _ := r.group.Do("list:"+key, func() (any, error) {
		ctx, cancel := r.sharedContext(ctx)
		defer cancel()
		return r.storeList(ctx, key, fetch)
	})
	if err != nil {
		r.logger.Warn("content list fetch failed", "site", r.site, "key", key, "error", err)
		return []Record{}
	}
	records, _ := v.([]Record)
	return VisibleOnly(records, r.site)
}

func (r *Resolver) storeList(ctx context.Context, key string, fetch listFetcher) ([]Record, error) {
	records, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []Record{}
	}
	entry := &listEntry{FetchedAt: r.now(), Records: records}
	if err := r.lists.Set(ctx, key, entry); err != nil {
		r.logger.Warn("content cache write failed", "key", key, "error", err)
	}
	return records, nil
}

func (r *Resolver) record(ctx context.Context, kind Kind, slug string) (*Record, error) {
	if slug == "" {
		return nil, ErrNotFound
	}
	key := string(kind) + ":" + slug

	e, ok := r.records.Get(ctx, key)
	if ok {
		if r.stale(e.FetchedAt) {
			r.refresh("record:"+key, func(ctx context.Context) (any, error) {
				return r.storeRecord(ctx, key, kind, slug)
			})
		}
	} else {
		v, err, _ := r.group.Do("record:"+key, func() (any, error) {
			ctx, cancel := r.sharedContext(ctx)
			defer cancel()
			return r.storeRecord(ctx, key, kind, slug)
		})
		if err != nil {
			r.logger.Warn("content record fetch failed", "site", r.site, "kind", kind, "slug", slug, "error", err)
			return nil, ErrNotFound
		}
		e, _ = v.(*recordEntry)
	}

	if e == nil || !e.Found || !e.Record.VisibleOn(r.site) {
		return nil, ErrNotFound
	}
	return e.Record, nil
}

// storeRecord caches a positive or negative lookup result. Fetch errors
// other than ErrNotFound are returned and nothing is cached.
func (r *Resolver) storeRecord(ctx context.Context, key string, kind Kind, slug string) (*recordEntry, error) {
	rec, err := r.source.GetRecordBySlug(ctx, kind, slug)
	entry := &recordEntry{FetchedAt: r.now()}
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return nil, err
	case rec != nil:
		entry.Found = true
		entry.Record = rec
	}
	if err := r.records.Set(ctx, key, entry); err != nil {
		r.logger.Warn("content cache write failed", "key", key, "error", err)
	}
	return entry, nil
}

// refresh runs fn in the background unless a refresh for key is running.
func (r *Resolver) refresh(key string, fn func(ctx context.Context) (any, error)) {
	if _, running := r.inflight.LoadOrStore(key, struct{}{}); running {
		return
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.inflight.Delete(key)
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		defer r.inflight.Delete(key)

		ctx, cancel := context.WithTimeout(context.Background(), r.refreshTimeout)
		defer cancel()

		_, err, _ := r.group.Do(key, func() (any, error) {
			return fn(ctx)
		})
		if err != nil {
			r.logger.Warn("content refresh failed, serving last good entry", "site", r.site, "key", key, "error", err)
			return
		}
		r.logger.Debug("content refreshed", "site", r.site, "key", key)
	}()
}
