package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Memory is an in-process Store. The clock is injectable so expiry can be
// tested without sleeping.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
	log     hclog.Logger

	stopJanitor chan struct{}
	janitorDone chan struct{}
}

// MemoryOption configures a Memory store
type MemoryOption func(*Memory)

// WithClock replaces time.Now
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		m.now = now
	}
}

// WithLogger sets the logger used by the janitor
func WithLogger(log hclog.Logger) MemoryOption {
	return func(m *Memory) {
		m.log = log
	}
}

// NewMemory creates an empty in-process store
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
		log:     hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns a copy of the stored value
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || e.expired(m.now()) {
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

// Set stores a copy of value. Last write wins.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

// Len counts stored entries, expired or not
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Sweep drops expired entries and returns how many were removed
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	expired := 0
	for key, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, key)
			expired++
		}
	}

	if expired > 0 {
		m.log.Debug("Swept expired cache entries",
			"expired", expired,
			"remaining", len(m.entries))
	}
	return expired
}

// StartJanitor sweeps on every tick of interval until Stop is called
func (m *Memory) StartJanitor(interval time.Duration) {
	m.stopJanitor = make(chan struct{})
	m.janitorDone = make(chan struct{})
	go m.janitorLoop(interval)
}

func (m *Memory) janitorLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(m.janitorDone)

	for {
		select {
		case <-ticker.C:
			m.Sweep()
		case <-m.stopJanitor:
			return
		}
	}
}

// Stop stops the janitor goroutine and waits for it to finish
func (m *Memory) Stop() {
	if m.stopJanitor == nil {
		return
	}
	close(m.stopJanitor)
	<-m.janitorDone
	m.stopJanitor = nil
}
