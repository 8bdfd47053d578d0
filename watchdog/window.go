package watchdog

import (
	"sync"
	"time"
)

// Thresholds decide when a window counts as a cross-channel burst.
type Thresholds struct {
	MinMessages       int
	MinChannels       int
	RequireDuplicates bool
	MinDuplicates     int
}

// Evaluation is the state of one window at evaluation time.
type Evaluation struct {
	Count         int
	Channels      int
	TopDuplicates int // occurrences of the most common non-empty signature
	Met           bool
}

// Tracker keeps a per-(guild, user) sliding window of recent posts. Callers
// serialize access to a single key; the tracker only guards its own map.
type Tracker struct {
	mu      sync.Mutex
	windows map[Key][]PostRecord
}

func NewTracker() *Tracker {
	return &Tracker{windows: make(map[Key][]PostRecord)}
}

// Record appends rec to the key's window.
func (t *Tracker) Record(key Key, rec PostRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.windows[key] = append(t.windows[key], rec)
}

// Prune drops records older than now-window from the front of the key's
// window. Empty windows are removed.
func (t *Tracker) Prune(key Key, now time.Time, window time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pruneLocked(key, now.Add(-window))
}

func (t *Tracker) pruneLocked(key Key, cutoff time.Time) {
	recs := t.windows[key]
	i := 0
	for i < len(recs) && recs[i].Timestamp.Before(cutoff) {
		i++
	}
	if i == len(recs) {
		delete(t.windows, key)
		return
	}
	if i > 0 {
		t.windows[key] = append([]PostRecord(nil), recs[i:]...)
	}
}

// Evaluate checks the key's window against th.
func (t *Tracker) Evaluate(key Key, th Thresholds) Evaluation {
	t.mu.Lock()
	recs := t.windows[key]
	t.mu.Unlock()

	ev := Evaluation{Count: len(recs)}

	channels := make(map[string]struct{}, len(recs))
	sigs := make(map[string]int, len(recs))
	for _, r := range recs {
		channels[r.ChannelID] = struct{}{}
		if r.Signature == "" {
			continue
		}
		sigs[r.Signature]++
		if sigs[r.Signature] > ev.TopDuplicates {
			ev.TopDuplicates = sigs[r.Signature]
		}
	}
	ev.Channels = len(channels)

	ev.Met = ev.Count >= th.MinMessages && ev.Channels >= th.MinChannels
	if ev.Met && th.RequireDuplicates {
		ev.Met = ev.TopDuplicates >= th.MinDuplicates
	}
	return ev
}

// Consume returns the key's window and clears it.
func (t *Tracker) Consume(key Key) []PostRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	recs := t.windows[key]
	delete(t.windows, key)
	return recs
}

// Len returns the number of records held for key.
func (t *Tracker) Len(key Key) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.windows[key])
}

// Sweep prunes every window against now and returns how many keys remain.
// It keeps memory bounded for users who posted once and never again.
func (t *Tracker) Sweep(now time.Time, window time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	cutoff := now.Add(-window)
	for key := range t.windows {
		t.pruneLocked(key, cutoff)
	}
	return len(t.windows)
}
