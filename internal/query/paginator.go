// Package query drives cursor pagination and write mutations against the
// query cache in package state.
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/five82/gallery/internal/gallery"
	"github.com/five82/gallery/internal/state"
)

// ErrUnknownKey is returned for keys that were never registered.
var ErrUnknownKey = errors.New("unknown query key")

// FetchFunc loads the page after cursor. An empty cursor requests the first page.
type FetchFunc func(ctx context.Context, cursor string) (gallery.Page, error)

// Paginator fetches successive pages for registered keys into a state.Store.
type Paginator struct {
	store  *state.Store
	logger *slog.Logger

	mu       sync.RWMutex
	fetchers map[string]FetchFunc

	starts singleflight.Group
}

// NewPaginator builds a Paginator writing into store. A nil logger discards output.
func NewPaginator(store *state.Store, logger *slog.Logger) *Paginator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Paginator{
		store:    store,
		logger:   logger,
		fetchers: make(map[string]FetchFunc),
	}
}

// Register binds key to the function that fetches its pages.
func (p *Paginator) Register(key string, fetch FetchFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fetchers[key] = fetch
}

// Keys lists registered keys.
func (p *Paginator) Keys() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	keys := make([]string, 0, len(p.fetchers))
	for k := range p.fetchers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Store returns the cache the paginator writes into.
func (p *Paginator) Store() *state.Store {
	return p.store
}

// Start fetches the first page when key is idle (never fetched or invalidated)
// or in error. Otherwise it does nothing. Concurrent callers within one cache
// generation share one request; a caller arriving after Invalidate starts a
// new one. The shared request is detached from any single caller's
// cancellation; a cancelled caller stops waiting and gets ctx.Err().
// The bool reports whether this call observed a fetch.
func (p *Paginator) Start(ctx context.Context, key string) (bool, error) {
	fetch, err := p.fetcher(key)
	if err != nil {
		return false, err
	}
	flight := fmt.Sprintf("%s@%d", key, p.store.Generation(key))
	shared := context.WithoutCancel(ctx)
	ch := p.starts.DoChan(flight, func() (any, error) {
		ticket, ok := p.store.Begin(key, state.FetchFirst)
		if !ok {
			return false, nil
		}
		p.logger.Debug("fetching first page", "key", key, "generation", ticket.Generation)
		return true, p.run(shared, ticket, fetch)
	})

	select {
	case res := <-ch:
		fetched, _ := res.Val.(bool)
		return fetched, res.Err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// LoadMore fetches and appends the page after the last cursor. It is a no-op
// returning false when the query is not settled, has no further cursor, or
// already has a fetch in flight. A failed fetch keeps previous pages and
// returns the error for this call only.
func (p *Paginator) LoadMore(ctx context.Context, key string) (bool, error) {
	fetch, err := p.fetcher(key)
	if err != nil {
		return false, err
	}
	ticket, ok := p.store.Begin(key, state.FetchNext)
	if !ok {
		p.logger.Debug("load more ignored", "key", key, "status", p.store.Get(key).Status.String())
		return false, nil
	}
	p.logger.Debug("fetching next page", "key", key, "cursor", ticket.Cursor)
	return true, p.run(ctx, ticket, fetch)
}

// HasMore reports whether key's last page has a cursor.
func (p *Paginator) HasMore(key string) bool {
	return p.store.Get(key).HasMore()
}

// LoadAll starts key and keeps loading until the last page or limit pages
// (limit <= 0 means no limit). It returns the merged items.
func (p *Paginator) LoadAll(ctx context.Context, key string, limit int) ([]gallery.Item, error) {
	if _, err := p.Start(ctx, key); err != nil {
		return nil, err
	}
	for {
		q := p.store.Get(key)
		if !q.HasMore() || (limit > 0 && len(q.Pages) >= limit) {
			return q.Items(), nil
		}
		if err := ctx.Err(); err != nil {
			return q.Items(), err
		}
		fetched, err := p.LoadMore(ctx, key)
		if err != nil {
			return q.Items(), err
		}
		if !fetched {
			return p.store.Get(key).Items(), nil
		}
	}
}

func (p *Paginator) run(ctx context.Context, ticket state.Ticket, fetch FetchFunc) error {
	page, err := fetch(ctx, ticket.Cursor)
	if err != nil {
		err = fmt.Errorf("fetch %s: %w", ticket.Key, err)
		if !p.store.Fail(ticket, err) {
			p.logger.Debug("dropped stale fetch error", "key", ticket.Key, "error", err)
			return nil
		}
		p.logger.Warn("page fetch failed", "key", ticket.Key, "cursor", ticket.Cursor, "error", err)
		return err
	}
	if !p.store.Complete(ticket, page) {
		p.logger.Debug("dropped stale page", "key", ticket.Key, "generation", ticket.Generation)
		return nil
	}
	p.logger.Info("page loaded", "key", ticket.Key, "items", len(page.Items), "has_more", page.HasMore())
	return nil
}

func (p *Paginator) fetcher(key string) (FetchFunc, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	fetch, ok := p.fetchers[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return fetch, nil
}
