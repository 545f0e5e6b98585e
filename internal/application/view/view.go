// Package view keeps public read models of the content tables fresh. Every
// refresh refetches the whole table; there is no incremental patching.
package view

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/khoahotran/folio/internal/domain/content"
	"github.com/khoahotran/folio/pkg/logger"
)

type Options struct {
	// FallbackEnabled substitutes the fallback rows when a fetch returns
	// nothing or fails.
	FallbackEnabled bool
	// OnRefresh is called after every refresh.
	OnRefresh func(table string, usedFallback bool)
}

type View[T any] struct {
	table    content.Table[T]
	query    content.Query
	fallback []T
	opts     Options
	logger   logger.Logger

	mu           sync.RWMutex
	rows         []T
	usedFallback bool
	refreshedAt  time.Time
}

func New[T any](table content.Table[T], q content.Query, fallback []T, opts Options, log logger.Logger) *View[T] {
	v := &View[T]{
		table:    table,
		query:    q,
		fallback: fallback,
		opts:     opts,
		logger:   log.With(zap.String("view", table.Name())),
	}
	if opts.FallbackEnabled {
		v.rows = v.fallbackCopy()
		v.usedFallback = true
	}
	return v
}

func (v *View[T]) Table() string { return v.table.Name() }

// Rows returns a copy of the current rows.
func (v *View[T]) Rows() []T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]T, len(v.rows))
	copy(out, v.rows)
	return out
}

func (v *View[T]) UsingFallback() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.usedFallback
}

func (v *View[T]) RefreshedAt() time.Time {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.refreshedAt
}

func (v *View[T]) fallbackCopy() []T {
	out := make([]T, len(v.fallback))
	copy(out, v.fallback)
	return out
}

// Refresh refetches the table. The error is returned for logging only; the
// view already holds the fallback rows when it fails.
func (v *View[T]) Refresh(ctx context.Context) error {
	rows, err := v.table.Select(ctx, v.query)
	if err != nil {
		v.logger.Warn("Content fetch failed", zap.Error(err))
	}

	useFallback := v.opts.FallbackEnabled && (err != nil || len(rows) == 0)

	v.mu.Lock()
	switch {
	case useFallback:
		v.rows = v.fallbackCopy()
	case err == nil:
		v.rows = rows
	}
	if err == nil || useFallback {
		v.usedFallback = useFallback
	}
	v.refreshedAt = time.Now()
	v.mu.Unlock()

	if v.opts.OnRefresh != nil {
		v.opts.OnRefresh(v.table.Name(), useFallback)
	}
	return err
}

// Refresher is anything RunAll can keep fresh.
type Refresher interface {
	Table() string
	Refresh(ctx context.Context) error
}

// RunAll refreshes every view once, then again for each change event on
// its table and on every resync tick (if resync > 0). A RELOAD event
// refreshes every view it names. RunAll returns when ctx is done or sub's
// event channel closes.
func RunAll(ctx context.Context, sub content.Subscription, resync time.Duration, views ...Refresher) error {
	byTable := make(map[string][]Refresher, len(views))
	for _, v := range views {
		byTable[v.Table()] = append(byTable[v.Table()], v)
		_ = v.Refresh(ctx)
	}

	var tick <-chan time.Time
	if resync > 0 {
		ticker := time.NewTicker(resync)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-sub.Events():
			if !ok {
				return nil
			}
			for _, v := range byTable[e.Table] {
				_ = v.Refresh(ctx)
			}
		case <-tick:
			for _, v := range views {
				_ = v.Refresh(ctx)
			}
		}
	}
}
