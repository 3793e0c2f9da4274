package handlers

import (
	"strings"
	"sync"
	"time"
)

// clientLimiter gates anonymous submissions per client key. The contact form
// is the only anonymous write surface, so a fixed window is enough.
type clientLimiter interface {
	Allow(key string) bool
}

type fixedWindowLimiterDeps struct {
	Limit  int
	Window time.Duration
	Clock  func() time.Time
}

// fixedWindowLimiter counts submissions per key and resets the count when the
// window rolls over. Stale windows are dropped whenever a new one opens.
type fixedWindowLimiter struct {
	limit  int
	window time.Duration
	clock  func() time.Time

	mu      sync.Mutex
	windows map[string]submissionWindow
}

type submissionWindow struct {
	used     int
	resetsAt time.Time
}

func newFixedWindowLimiter(deps fixedWindowLimiterDeps) clientLimiter {
	if deps.Limit <= 0 || deps.Window <= 0 {
		return nil
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &fixedWindowLimiter{
		limit:   deps.Limit,
		window:  deps.Window,
		clock:   clock,
		windows: make(map[string]submissionWindow),
	}
}

func (l *fixedWindowLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = "anonymous"
	}

	now := l.clock()
	l.mu.Lock()
	defer l.mu.Unlock()

	current, open := l.windows[key]
	if !open || now.After(current.resetsAt) {
		l.dropStaleWindows(now)
		l.windows[key] = submissionWindow{used: 1, resetsAt: now.Add(l.window)}
		return true
	}
	if current.used >= l.limit {
		return false
	}
	current.used++
	l.windows[key] = current
	return true
}

func (l *fixedWindowLimiter) dropStaleWindows(now time.Time) {
	for key, w := range l.windows {
		if now.After(w.resetsAt) {
			delete(l.windows, key)
		}
	}
}
