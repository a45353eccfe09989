package state

import (
	"sort"
	"sync"
	"time"

	"github.com/five82/gallery/internal/gallery"
)

// Status is the lifecycle position of a cached query.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoadingMore
	StatusError
	StatusSuccess
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusLoadingMore:
		return "loadingMore"
	case StatusError:
		return "error"
	case StatusSuccess:
		return "success"
	default:
		return "idle"
	}
}

// FetchMode tells Begin which transition a fetch performs.
type FetchMode int

const (
	FetchFirst FetchMode = iota
	FetchNext
)

// Query is a copy of the cached state for one key.
type Query struct {
	Key        string
	Pages      []gallery.Page
	Status     Status
	Err        error // first-load error, or the last failed load-more
	Stale      bool  // invalidated; Pages still hold the previous sequence
	UpdatedAt  time.Time
	Generation uint64
}

// Items returns the pages' items concatenated in fetch order.
func (q Query) Items() []gallery.Item {
	var n int
	for _, p := range q.Pages {
		n += len(p.Items)
	}
	if n == 0 {
		return nil
	}
	items := make([]gallery.Item, 0, n)
	for _, p := range q.Pages {
		items = append(items, p.Items...)
	}
	return items
}

// HasMore reports whether the last fetched page carries a cursor.
func (q Query) HasMore() bool {
	if len(q.Pages) == 0 {
		return false
	}
	return q.Pages[len(q.Pages)-1].HasMore()
}

// LastCursor returns the cursor of the most recent page.
func (q Query) LastCursor() string {
	if len(q.Pages) == 0 {
		return ""
	}
	return q.Pages[len(q.Pages)-1].Cursor
}

// Ticket identifies one in-flight fetch.
type Ticket struct {
	Key        string
	Mode       FetchMode
	Cursor     string
	Generation uint64
}

type entry struct {
	query    Query
	inFlight bool
}

// Store is the query cache shared by the paginator, mutations and the UI.
// The zero value is ready to use.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// Get returns a copy of the query for key, or an idle query if it was never fetched.
func (s *Store) Get(key string) Query {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return Query{Key: key, Status: StatusIdle}
	}
	return cloneQuery(e.query)
}

// Generation returns the invalidation count for key. It changes on every
// Invalidate, so fetches can be grouped by the data they are allowed to write.
func (s *Store) Generation(key string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.entries[key]; ok {
		return e.query.Generation
	}
	return 0
}

// Keys returns every key the store has seen, sorted.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetPage stores page for key. appendMode=false replaces every page (fresh first
// fetch); appendMode=true adds page to the end.
func (s *Store) SetPage(key string, page gallery.Page, appendMode bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setPageLocked(s.entryLocked(key), page, appendMode)
}

// Invalidate marks key for refetch. The next Start fetches from the first page;
// fetches already in flight are discarded when they complete.
func (s *Store) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entryLocked(key)
	e.query.Generation++
	e.query.Status = StatusIdle
	e.query.Stale = len(e.query.Pages) > 0
	e.query.Err = nil
	e.query.UpdatedAt = time.Now()
	e.inFlight = false
}

// Begin claims the single fetch slot for key. It reports false when another
// fetch is in flight or the query is not in a state that allows mode.
func (s *Store) Begin(key string, mode FetchMode) (Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entryLocked(key)
	if e.inFlight {
		return Ticket{}, false
	}
	ticket := Ticket{Key: key, Mode: mode, Generation: e.query.Generation}
	switch mode {
	case FetchFirst:
		if e.query.Status != StatusIdle && e.query.Status != StatusError {
			return Ticket{}, false
		}
		e.query.Status = StatusLoading
	case FetchNext:
		if e.query.Status != StatusSuccess || !e.query.HasMore() {
			return Ticket{}, false
		}
		ticket.Cursor = e.query.LastCursor()
		e.query.Status = StatusLoadingMore
	default:
		return Ticket{}, false
	}
	e.inFlight = true
	e.query.UpdatedAt = time.Now()
	return ticket, true
}

// Complete records the page fetched for t. It reports false, leaving the
// store untouched, when the key was invalidated after t was issued.
func (s *Store) Complete(t Ticket, page gallery.Page) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[t.Key]
	if !ok || e.query.Generation != t.Generation {
		return false
	}
	s.setPageLocked(e, page, t.Mode == FetchNext)
	return true
}

// Fail records err for t. A failed first load moves the query to StatusError;
// a failed load-more keeps the pages and returns to StatusSuccess with err attached.
func (s *Store) Fail(t Ticket, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[t.Key]
	if !ok || e.query.Generation != t.Generation {
		return false
	}
	e.inFlight = false
	e.query.Err = err
	e.query.UpdatedAt = time.Now()
	if t.Mode == FetchNext {
		e.query.Status = StatusSuccess
		return true
	}
	e.query.Status = StatusError
	e.query.Pages = nil
	e.query.Stale = false
	return true
}

func (s *Store) entryLocked(key string) *entry {
	if s.entries == nil {
		s.entries = make(map[string]*entry)
	}
	e, ok := s.entries[key]
	if !ok {
		e = &entry{query: Query{Key: key, Status: StatusIdle}}
		s.entries[key] = e
	}
	return e
}

func (s *Store) setPageLocked(e *entry, page gallery.Page, appendMode bool) {
	page.Items = cloneItems(page.Items)
	if appendMode {
		e.query.Pages = appendPage(e.query.Pages, page)
	} else {
		e.query.Pages = []gallery.Page{page}
	}
	e.query.Status = StatusSuccess
	e.query.Stale = false
	e.query.Err = nil
	e.query.UpdatedAt = time.Now()
	e.inFlight = false
}

func appendPage(pages []gallery.Page, page gallery.Page) []gallery.Page {
	out := make([]gallery.Page, len(pages), len(pages)+1)
	copy(out, pages)
	return append(out, page)
}

func cloneQuery(q Query) Query {
	dup := q
	if len(q.Pages) > 0 {
		dup.Pages = make([]gallery.Page, len(q.Pages))
		for i, p := range q.Pages {
			dup.Pages[i] = gallery.Page{Items: cloneItems(p.Items), Cursor: p.Cursor}
		}
	}
	return dup
}

func cloneItems(items []gallery.Item) []gallery.Item {
	if len(items) == 0 {
		return nil
	}
	dup := make([]gallery.Item, len(items))
	copy(dup, items)
	return dup
}
