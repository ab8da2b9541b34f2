package api

import (
	"sync"
	"time"

	"skin-tracker/internal/steam"
)

// Status aggregates update-cycle events for the status endpoint. Its
// methods match the updater hook signatures so main can wire it directly.
type Status struct {
	mu sync.Mutex

	message     string
	current     int
	total       int
	lastSkin    string
	lastPrice   float64
	alerts      []AlertEvent
	completedAt time.Time
	successful  int
	lastTotal   int
	elapsed     time.Duration
	failure     string
}

type AlertEvent struct {
	Skin  string    `json:"skin"`
	Price float64   `json:"price"`
	At    time.Time `json:"at"`
}

func NewStatus() *Status { return &Status{} }

func (s *Status) OnProgress(message string, current, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
	s.current = current
	s.total = total
}

func (s *Status) OnData(skin string, q steam.Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSkin = skin
	s.lastPrice = q.LowestPrice
}

func (s *Status) OnAlert(skin string, price float64, _ steam.Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, AlertEvent{Skin: skin, Price: price, At: time.Now()})
	if len(s.alerts) > 50 {
		s.alerts = s.alerts[len(s.alerts)-50:]
	}
}

func (s *Status) OnCompleted(successful, total int, elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completedAt = time.Now()
	s.successful = successful
	s.lastTotal = total
	s.elapsed = elapsed
	s.failure = ""
	s.message = ""
	s.current = 0
	s.total = 0
}

func (s *Status) OnFailed(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = reason
}

func (s *Status) snapshot(running bool) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]any{
		"running":  running,
		"progress": s.message,
		"current":  s.current,
		"total":    s.total,
	}
	if s.lastSkin != "" {
		out["last_skin"] = s.lastSkin
		out["last_price"] = s.lastPrice
	}
	if !s.completedAt.IsZero() {
		out["completed_at"] = s.completedAt
		out["successful"] = s.successful
		out["cycle_total"] = s.lastTotal
		out["elapsed"] = s.elapsed.String()
	}
	if s.failure != "" {
		out["failure"] = s.failure
	}
	if len(s.alerts) > 0 {
		out["alerts"] = append([]AlertEvent(nil), s.alerts...)
	}
	return out
}
