package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type Config struct {
	DedupWindow time.Duration // suppress repeat alerts per skin, default 1h
	PerMinute   int           // global send rate, <=0 disables limiting
	Burst       int
}

// Dispatcher throttles alert notifications: at most one per skin inside the
// dedup window, globally rate limited. Delivery happens on a separate
// goroutine so polling is never delayed by a slow webhook.
type Dispatcher struct {
	client  *Client
	cfg     Config
	limiter *tokenBucket
	log     *slog.Logger

	mu       sync.Mutex
	lastSent map[string]time.Time
}

func NewDispatcher(client *Client, cfg Config, log *slog.Logger) *Dispatcher {
	if cfg.DedupWindow <= 0 {
		cfg.DedupWindow = time.Hour
	}
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		client:   client,
		cfg:      cfg,
		limiter:  newTokenBucket(cfg.PerMinute, cfg.Burst),
		log:      log,
		lastSent: make(map[string]time.Time),
	}
}

// PriceAlert sends a notification for a triggered threshold. Suppressed or
// failed sends are logged, never surfaced to the caller.
func (d *Dispatcher) PriceAlert(skin string, price, threshold float64) {
	if d.isDeduped(skin) {
		d.log.Debug("alert suppressed by dedup window", "skin", skin)
		return
	}
	if !d.limiter.allow() {
		d.log.Warn("alert dropped by rate limit", "skin", skin)
		return
	}

	payload := Payload{
		Skin:      skin,
		Price:     price,
		Threshold: threshold,
		Timestamp: time.Now().Format("2006-01-02T15:04:05"),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := d.client.Send(ctx, payload); err != nil {
			d.log.Warn("alert notification failed", "skin", skin, "error", err)
		}
	}()
}

func (d *Dispatcher) isDeduped(skin string) bool {
	now := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()
	if last, ok := d.lastSent[skin]; ok && now.Sub(last) <= d.cfg.DedupWindow {
		return true
	}
	d.lastSent[skin] = now
	return false
}

// tokenBucket is a simple global rate limiter.
type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	ratePerS   float64
	burst      float64
	lastRefill time.Time
	disabled   bool
}

func newTokenBucket(perMinute, burst int) *tokenBucket {
	if perMinute <= 0 {
		return &tokenBucket{disabled: true}
	}
	if burst <= 0 {
		burst = perMinute
	}
	return &tokenBucket{
		tokens:     float64(burst),
		ratePerS:   float64(perMinute) / 60.0,
		burst:      float64(burst),
		lastRefill: time.Now(),
	}
}

func (t *tokenBucket) allow() bool {
	if t == nil || t.disabled {
		return true
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.refillLocked()
	if t.tokens >= 1 {
		t.tokens -= 1
		return true
	}
	return false
}

func (t *tokenBucket) refillLocked() {
	now := time.Now()
	elapsed := now.Sub(t.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}
	t.tokens += elapsed * t.ratePerS
	if t.tokens > t.burst {
		t.tokens = t.burst
	}
	t.lastRefill = now
}
