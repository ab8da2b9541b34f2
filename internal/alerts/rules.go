// Package alerts holds the item-to-price-ceiling rules consulted during
// update cycles.
package alerts

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type Rules struct {
	path string

	mu         sync.RWMutex
	thresholds map[string]float64
}

// Load reads the rules file. Missing or malformed content means no alerts
// are configured, never an error.
func Load(path string) *Rules {
	r := &Rules{path: path, thresholds: make(map[string]float64)}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("alert rules unreadable, alerts disabled", "path", path, "err", err)
		}
		return r
	}
	if err := json.Unmarshal(data, &r.thresholds); err != nil {
		slog.Warn("alert rules malformed, alerts disabled", "path", path, "err", err)
		r.thresholds = make(map[string]float64)
	}
	return r
}

// Threshold returns the configured price ceiling for an item.
func (r *Rules) Threshold(skin string) (float64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	limit, ok := r.thresholds[skin]
	return limit, ok
}

// Triggered reports whether price meets or undercuts the item's ceiling.
func (r *Rules) Triggered(skin string, price float64) bool {
	limit, ok := r.Threshold(skin)
	return ok && price > 0 && price <= limit
}

// All returns a copy of every configured rule.
func (r *Rules) All() map[string]float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]float64, len(r.thresholds))
	for k, v := range r.thresholds {
		out[k] = v
	}
	return out
}

// Set stores or replaces an item's ceiling and saves.
func (r *Rules) Set(skin string, limit float64) error {
	skin = strings.TrimSpace(skin)
	if skin == "" {
		return fmt.Errorf("empty item name")
	}
	if limit <= 0 {
		return fmt.Errorf("threshold must be positive")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.thresholds[skin] = limit
	return r.saveLocked()
}

// Remove drops an item's ceiling and saves. Unknown items are a no-op.
func (r *Rules) Remove(skin string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.thresholds[skin]; !ok {
		return false, nil
	}
	delete(r.thresholds, skin)
	return true, r.saveLocked()
}

func (r *Rules) saveLocked() error {
	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create alerts dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(r.thresholds, "", "  ")
	if err != nil {
		return fmt.Errorf("encode alert rules: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write alert rules: %w", err)
	}
	return nil
}
