package query

import (
	"context"
	"log/slog"
)

// Invalidator is the part of the cache a mutation touches on success.
type Invalidator interface {
	Invalidate(key string)
}

// Mutation runs one write operation and invalidates related query keys when it succeeds.
type Mutation[In, Out any] struct {
	fn          func(context.Context, In) (Out, error)
	invalidator Invalidator
	keys        []string
	onSuccess   []func(Out)
	logger      *slog.Logger
}

// NewMutation wraps fn. Every key in keys is invalidated after a successful run.
func NewMutation[In, Out any](fn func(context.Context, In) (Out, error), invalidator Invalidator, keys ...string) *Mutation[In, Out] {
	return &Mutation[In, Out]{
		fn:          fn,
		invalidator: invalidator,
		keys:        append([]string(nil), keys...),
		logger:      slog.New(slog.DiscardHandler),
	}
}

// WithLogger sets the logger used for mutation outcomes.
func (m *Mutation[In, Out]) WithLogger(logger *slog.Logger) *Mutation[In, Out] {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// OnSuccess registers fn to run after invalidation on every successful Run.
func (m *Mutation[In, Out]) OnSuccess(fn func(Out)) *Mutation[In, Out] {
	m.onSuccess = append(m.onSuccess, fn)
	return m
}

// Run performs exactly one call to the wrapped function. It never retries.
// Invalidation happens even when ctx was cancelled after the write succeeded.
func (m *Mutation[In, Out]) Run(ctx context.Context, in In) (Out, error) {
	out, err := m.fn(ctx, in)
	if err != nil {
		m.logger.Warn("mutation failed", "invalidates", m.keys, "error", err)
		var zero Out
		return zero, err
	}
	if m.invalidator != nil {
		for _, key := range m.keys {
			m.invalidator.Invalidate(key)
		}
	}
	m.logger.Info("mutation succeeded", "invalidated", m.keys)
	for _, fn := range m.onSuccess {
		fn(out)
	}
	return out, nil
}
