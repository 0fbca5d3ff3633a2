package service

import (
	"sort"
	"sync"
	"time"

	"k8s.io/utils/clock"
)

// MinimumWorklog is the shortest amount of work that gets logged
const MinimumWorklog = time.Minute

// Tracker remembers when work started on each issue
type Tracker struct {
	lock    sync.Mutex
	clock   clock.PassiveClock
	started map[string]time.Time
}

// NewTracker creates a tracker that reads time from the given clock
func NewTracker(clk clock.PassiveClock) *Tracker {
	return &Tracker{
		clock:   clk,
		started: map[string]time.Time{},
	}
}

// Start begins tracking work on an issue. Starting an already tracked issue keeps the original start.
func (t *Tracker) Start(key string) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if _, ok := t.started[key]; !ok {
		t.started[key] = t.clock.Now()
	}
}

// Stop ends tracking work on an issue and returns the elapsed time
func (t *Tracker) Stop(key string) (time.Duration, error) {
	start, ok := t.take(key)
	if !ok {
		return 0, ErrNotTracking
	}
	return t.clock.Since(start), nil
}

func (t *Tracker) take(key string) (time.Time, bool) {
	t.lock.Lock()
	defer t.lock.Unlock()
	start, ok := t.started[key]
	delete(t.started, key)
	return start, ok
}

// Elapsed returns for how long work on an issue has been tracked
func (t *Tracker) Elapsed(key string) (time.Duration, bool) {
	t.lock.Lock()
	defer t.lock.Unlock()
	start, ok := t.started[key]
	if !ok {
		return 0, false
	}
	return t.clock.Since(start), true
}

// Tracking returns the keys of all tracked issues, sorted
func (t *Tracker) Tracking() []string {
	t.lock.Lock()
	defer t.lock.Unlock()
	keys := make([]string, 0, len(t.started))
	for key := range t.started {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (t *Tracker) resume(key string, start time.Time) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.started[key] = start
}

// WorklogSeconds rounds the elapsed time up to whole minutes, never less than MinimumWorklog
func WorklogSeconds(elapsed time.Duration) int {
	if elapsed < MinimumWorklog {
		return int(MinimumWorklog / time.Second)
	}
	minutes := elapsed / time.Minute
	if elapsed%time.Minute != 0 {
		minutes++
	}
	return int(minutes * 60)
}
