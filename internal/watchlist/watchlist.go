// Package watchlist persists the ordered set of tracked items as a JSON
// list on disk.
package watchlist

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type List struct {
	path string

	mu    sync.Mutex
	items []string
}

// Load reads the watchlist file. A missing or malformed file yields an
// empty list; the tracker starts fresh rather than failing.
func Load(path string) *List {
	l := &List{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("watchlist unreadable, starting empty", "path", path, "err", err)
		}
		return l
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		slog.Warn("watchlist malformed, starting empty", "path", path, "err", err)
		return l
	}
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			l.items = append(l.items, item)
		}
	}
	return l
}

// Items returns a snapshot copy in watch order.
func (l *List) Items() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.items))
	copy(out, l.items)
	return out
}

func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Add appends a new item and saves. Empty names and duplicates are
// rejected.
func (l *List) Add(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("empty item name")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, existing := range l.items {
		if existing == name {
			return fmt.Errorf("item already watched: %s", name)
		}
	}
	l.items = append(l.items, name)
	return l.saveLocked()
}

// Remove drops an item and saves. Removing an unknown item is a no-op
// returning false.
func (l *List) Remove(name string) (bool, error) {
	name = strings.TrimSpace(name)

	l.mu.Lock()
	defer l.mu.Unlock()
	for i, existing := range l.items {
		if existing == name {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return true, l.saveLocked()
		}
	}
	return false, nil
}

func (l *List) saveLocked() error {
	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create watchlist dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(l.items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode watchlist: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		return fmt.Errorf("write watchlist: %w", err)
	}
	return nil
}
