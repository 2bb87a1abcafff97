package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Manager is the in-memory registry of live attempts. Each timed attempt gets
// one ticker goroutine that drives its countdown; the ticker is torn down when
// the attempt is removed (navigation away), reaches a terminal state, or the
// server shuts down. Nothing here persists — that is by contract, not
// omission: drafts are lost with the session.
type Manager struct {
	mu       sync.Mutex
	attempts map[string]*Attempt
	tickers  map[string]chan struct{}

	interval time.Duration
	logger   *slog.Logger
}

func NewManager(interval time.Duration, logger *slog.Logger) *Manager {
	if interval <= 0 {
		interval = time.Second
	}
	return &Manager{
		attempts: make(map[string]*Attempt),
		tickers:  make(map[string]chan struct{}),
		interval: interval,
		logger:   logger,
	}
}

// Add registers an attempt and starts its countdown if the assignment is
// timed.
func (m *Manager) Add(a *Attempt) {
	m.mu.Lock()
	m.attempts[a.ID()] = a
	var done chan struct{}
	if a.Timed() {
		done = make(chan struct{})
		m.tickers[a.ID()] = done
	}
	m.mu.Unlock()

	if done != nil {
		go m.runTicker(a, done)
	}
}

func (m *Manager) Get(id string) (*Attempt, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[id]
	return a, ok
}

// Remove tears the attempt down and cancels its ticker so an expired timer
// cannot fire a submit after the session is gone.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.attempts, id)
	if done, ok := m.tickers[id]; ok {
		close(done)
		delete(m.tickers, id)
	}
}

// Shutdown cancels every ticker. Live attempts are abandoned, matching a page
// navigation away for every open session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, done := range m.tickers {
		close(done)
		delete(m.tickers, id)
	}
	m.attempts = make(map[string]*Attempt)
}

func (m *Manager) runTicker(a *Attempt, done chan struct{}) {
	t := time.NewTicker(m.interval)
	defer t.Stop()

	for {
		select {
		case <-done:
			return
		case <-t.C:
			if !a.Tick(context.Background()) {
				m.logger.Debug("countdown stopped", "session_id", a.ID(), "state", a.State())
				m.clearTicker(a.ID())
				return
			}
		}
	}
}

// clearTicker detaches a ticker that exited on its own, so a later Remove does
// not close its channel twice.
func (m *Manager) clearTicker(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tickers, id)
}
