package service

import (
	"sync"
	"time"
)

// AutoSaver debounces state saves. Schedule arms a timer for the configured
// quiet window; a new mutation inside the window resets the pending timer
// rather than stacking a second one, so only the most recent scheduled save
// fires.
type AutoSaver struct {
	mu    sync.Mutex
	delay time.Duration
	save  func()
	timer *time.Timer
}

// NewAutoSaver creates an auto-saver that invokes save after the debounce
// window elapses without further scheduling.
func NewAutoSaver(delay time.Duration, save func()) *AutoSaver {
	return &AutoSaver{
		delay: delay,
		save:  save,
	}
}

// Schedule arms (or re-arms) the debounce timer
func (a *AutoSaver) Schedule() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.delay, a.save)
}

// Stop cancels any pending save
func (a *AutoSaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}
