package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/five82/gallery/internal/query"
	"github.com/five82/gallery/internal/state"
)

const defaultRevalidateInterval = 2 * time.Second

// RunRevalidator starts every registered query that is idle, at a fixed
// cadence, until ctx is done. Queries in error are left for an explicit retry.
func RunRevalidator(ctx context.Context, pager *query.Paginator, interval time.Duration, logger *slog.Logger) error {
	if interval <= 0 {
		interval = defaultRevalidateInterval
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		revalidate(ctx, pager, logger)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func revalidate(ctx context.Context, pager *query.Paginator, logger *slog.Logger) {
	store := pager.Store()
	for _, key := range pager.Keys() {
		if ctx.Err() != nil {
			return
		}
		if store.Get(key).Status != state.StatusIdle {
			continue
		}
		if _, err := pager.Start(ctx, key); err != nil {
			logger.Warn("revalidate failed", "key", key, "error", err)
		}
	}
}
