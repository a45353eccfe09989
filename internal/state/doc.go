// Package state holds the query cache shared by the paginator, mutations and the UI.
//
// # Overview
//
// Store keeps one Query per logical key (for example "images"). A Query holds
// the pages fetched so far, in fetch order, plus a Status:
//
//	idle ──Begin(FetchFirst)──> loading ──Complete──> success
//	                              │                     │
//	                              └──Fail──> error      ├─Begin(FetchNext)─> loadingMore
//	                                                    │                      │
//	                                                    │<──Complete (append)──┤
//	                                                    │<──Fail (err kept)────┘
//	any ──Invalidate──> idle (stale pages kept until the new first page lands)
//
// # Single flight
//
// Begin hands out at most one Ticket per key at a time. Callers that lose the
// race get false and must treat the call as a no-op, which keeps appends in
// request order.
//
// # Invalidation
//
// Invalidate bumps the key's generation. Complete and Fail compare the
// ticket's generation and drop results from fetches that started earlier, so a
// slow pre-invalidation response can never overwrite fresh data.
//
// # Copies
//
// Get returns deep copies of pages and items. Callers may keep or mutate the
// returned Query freely. The zero Store is ready to use.
package state
