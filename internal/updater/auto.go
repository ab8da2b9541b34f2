package updater

import (
	"time"
)

// Auto-update interval bounds, 3 minutes to 24 hours.
const (
	minAutoInterval = 3 * time.Minute
	maxAutoInterval = 24 * time.Hour
)

// StartAuto re-triggers a polling cycle on a fixed interval. items is
// called per tick so every cycle sees the current watchlist. A tick that
// lands while a cycle is still running is a no-op. Calling StartAuto again
// replaces the previous timer.
func (r *Runner) StartAuto(interval time.Duration, items func() []string) {
	if interval < minAutoInterval {
		interval = minAutoInterval
	}
	if interval > maxAutoInterval {
		interval = maxAutoInterval
	}

	r.autoMu.Lock()
	if r.autoStop != nil {
		close(r.autoStop)
	}
	stop := make(chan struct{})
	r.autoStop = stop
	r.autoMu.Unlock()

	r.log.Info("auto update enabled", "interval", interval)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				list := items()
				if len(list) == 0 {
					continue
				}
				if !r.Start(list, true) {
					r.log.Debug("auto update tick skipped, cycle still running")
				}
			}
		}
	}()
}

// StopAuto disables the auto-update timer. A running cycle is left to
// finish; use Stop for that.
func (r *Runner) StopAuto() {
	r.autoMu.Lock()
	defer r.autoMu.Unlock()
	if r.autoStop != nil {
		close(r.autoStop)
		r.autoStop = nil
		r.log.Info("auto update disabled")
	}
}
