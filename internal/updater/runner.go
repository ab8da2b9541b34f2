// Package updater drives polling cycles over the watchlist: one item at a
// time, rate limited, with progress reporting and cooperative cancellation.
package updater

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"skin-tracker/internal/steam"
	"skin-tracker/internal/store"
)

// Lookup is the remote price source. It is unreliable by contract; every
// error means "skip this item".
type Lookup interface {
	Lookup(ctx context.Context, name string) (steam.Quote, error)
}

// AlertRules answers whether a freshly observed price triggers an alert.
type AlertRules interface {
	Triggered(skin string, price float64) bool
}

// Repository persists successful quotes.
type Repository interface {
	Insert(skin string, m *store.MarketMetrics) error
}

// Hooks receive cycle events. Nil hooks are skipped. They are called from
// the worker goroutine.
type Hooks struct {
	Progress  func(message string, current, total int)
	Data      func(skin string, q steam.Quote)
	Alert     func(skin string, price float64, q steam.Quote)
	Completed func(successful, total int, elapsed time.Duration)
	Failed    func(reason string)
}

type Config struct {
	RequestDelay time.Duration // minimum pause between lookups, default 2s
	StopGrace    time.Duration // bounded wait in Stop, default 3s
}

// Runner executes at most one polling cycle at a time.
type Runner struct {
	lookup Lookup
	repo   Repository
	rules  AlertRules
	hooks  Hooks
	delay  time.Duration
	grace  time.Duration
	log    *slog.Logger

	running atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	autoMu   sync.Mutex
	autoStop chan struct{}
}

func New(lookup Lookup, repo Repository, rules AlertRules, hooks Hooks, cfg Config, log *slog.Logger) *Runner {
	if cfg.RequestDelay < 2*time.Second {
		cfg.RequestDelay = 2 * time.Second
	}
	if cfg.StopGrace <= 0 {
		cfg.StopGrace = 3 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		lookup: lookup,
		repo:   repo,
		rules:  rules,
		hooks:  hooks,
		delay:  cfg.RequestDelay,
		grace:  cfg.StopGrace,
		log:    log,
	}
}

// Running reports whether a cycle is in flight.
func (r *Runner) Running() bool { return r.running.Load() }

// Start launches one polling cycle over a snapshot of items. It returns
// false without doing anything when a cycle is already running or the
// snapshot is empty.
func (r *Runner) Start(items []string, auto bool) bool {
	if len(items) == 0 {
		return false
	}
	if !r.running.CompareAndSwap(false, true) {
		return false
	}

	// Defensive copy: the caller owns the live list.
	snapshot := make([]string, len(items))
	copy(snapshot, items)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	r.mu.Lock()
	r.cancel = cancel
	r.done = done
	r.mu.Unlock()

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				r.log.Error("update cycle panicked", "reason", rec)
				if r.hooks.Failed != nil {
					r.hooks.Failed(fmt.Sprint(rec))
				}
			}
			cancel()
			r.running.Store(false)
			close(done)
		}()
		r.runCycle(ctx, snapshot, auto)
	}()
	return true
}

// Stop requests cooperative cancellation of the running cycle and waits up
// to the configured grace period for it to wind down.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.mu.Unlock()
	if cancel == nil || !r.running.Load() {
		return
	}
	cancel()
	select {
	case <-done:
	case <-time.After(r.grace):
		r.log.Warn("update cycle did not stop within grace period", "grace", r.grace)
	}
}

func (r *Runner) runCycle(ctx context.Context, items []string, auto bool) {
	cycleID := uuid.NewString()
	kind := "manual"
	if auto {
		kind = "auto"
	}
	start := time.Now()
	total := len(items)
	successful := 0

	r.log.Info("update cycle started", "cycle", cycleID, "kind", kind, "items", total)

	for i, skin := range items {
		if ctx.Err() != nil {
			r.log.Info("update cycle cancelled", "cycle", cycleID, "done", i, "total", total)
			break
		}

		if r.hooks.Progress != nil {
			r.hooks.Progress(progressMessage(kind, skin), i+1, total)
		}

		quote, err := r.lookup.Lookup(ctx, skin)
		switch {
		case err != nil:
			// Reasons differ, the handling does not: skip and continue.
			r.log.Warn("lookup failed", "cycle", cycleID, "skin", skin,
				"reason", lookupReason(err), "err", err)
		case !quote.Valid():
			r.log.Warn("no valid market data", "cycle", cycleID, "skin", skin)
		default:
			if err := r.repo.Insert(skin, &store.MarketMetrics{
				LowestPrice:      quote.LowestPrice,
				MedianPrice:      quote.MedianPrice,
				Volume:           quote.Volume,
				SpreadAbsolute:   quote.SpreadAbsolute,
				SpreadPercentage: quote.SpreadPercentage,
			}); err != nil {
				// A failed write for one item does not abort the cycle.
				r.log.Error("store insert failed", "cycle", cycleID, "skin", skin, "err", err)
				continue
			}
			successful++
			if r.hooks.Data != nil {
				r.hooks.Data(skin, quote)
			}
			if r.rules != nil && r.rules.Triggered(skin, quote.LowestPrice) {
				r.log.Info("price alert", "cycle", cycleID, "skin", skin, "price", quote.LowestPrice)
				if r.hooks.Alert != nil {
					r.hooks.Alert(skin, quote.LowestPrice, quote)
				}
			}
		}

		// Rate limiting, skipped after the last item and once a stop has
		// been requested.
		if i < total-1 && ctx.Err() == nil {
			select {
			case <-ctx.Done():
			case <-time.After(r.delay):
			}
		}
	}

	elapsed := time.Since(start)
	r.log.Info("update cycle finished",
		"cycle", cycleID, "kind", kind, "successful", successful, "total", total, "elapsed", elapsed)
	if r.hooks.Completed != nil {
		r.hooks.Completed(successful, total, elapsed)
	}
}

func progressMessage(kind, skin string) string {
	if len(skin) > 30 {
		skin = skin[:30] + "..."
	}
	return fmt.Sprintf("%s update: %s", kind, skin)
}

func lookupReason(err error) string {
	switch {
	case errors.Is(err, steam.ErrTimeout):
		return "timeout"
	case errors.Is(err, steam.ErrHTTPStatus):
		return "http_status"
	case errors.Is(err, steam.ErrBadBody):
		return "malformed_body"
	case errors.Is(err, steam.ErrNotFound):
		return "not_found"
	case errors.Is(err, steam.ErrConnection):
		return "connection"
	default:
		return "unknown"
	}
}
