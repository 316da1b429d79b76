// Package timer runs one countdown per draft session, ticking every second
// and firing an expiry callback exactly once when time runs out.
package timer

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// TickFunc receives the remaining and total countdown on every tick,
// including a final zero-remaining tick before expiry fires.
type TickFunc func(remaining, total time.Duration)

// ExpireFunc runs once when the countdown reaches zero, on the timer
// goroutine. The timer is already disarmed when it runs.
type ExpireFunc func()

// Manager owns the per-session countdowns. At most one countdown is armed
// per session at any time; arming a session replaces its prior countdown.
type Manager struct {
	clock clockwork.Clock

	mu     sync.Mutex
	timers map[uuid.UUID]*countdown
}

type countdown struct {
	start time.Time
	total time.Duration
	stop  chan struct{}
}

// NewManager creates a Manager. Use clockwork.NewRealClock() in production
// and a fake clock in tests.
func NewManager(clock clockwork.Clock) *Manager {
	return &Manager{
		clock:  clock,
		timers: make(map[uuid.UUID]*countdown),
	}
}

// Arm starts a countdown for the session, replacing any prior one. onTick is
// invoked every second with the remaining time; onExpire exactly once when
// the countdown first reaches zero.
func (m *Manager) Arm(sessionID uuid.UUID, total time.Duration, onTick TickFunc, onExpire ExpireFunc) {
	cd := &countdown{
		start: m.clock.Now(),
		total: total,
		stop:  make(chan struct{}),
	}

	m.mu.Lock()
	if prev, ok := m.timers[sessionID]; ok {
		close(prev.stop)
	}
	m.timers[sessionID] = cd
	m.mu.Unlock()

	log.Debug().
		Str("session_id", sessionID.String()).
		Dur("total", total).
		Msg("timer armed")

	go m.run(sessionID, cd, onTick, onExpire)
}

// Disarm cancels the session's countdown if one is armed. Idempotent and
// safe concurrently with an in-flight tick.
func (m *Manager) Disarm(sessionID uuid.UUID) {
	m.mu.Lock()
	cd, ok := m.timers[sessionID]
	if ok {
		close(cd.stop)
		delete(m.timers, sessionID)
	}
	m.mu.Unlock()

	if ok {
		log.Debug().Str("session_id", sessionID.String()).Msg("timer disarmed")
	}
}

// Armed reports whether the session currently has a countdown.
func (m *Manager) Armed(sessionID uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.timers[sessionID]
	return ok
}

// Remaining returns the time left on the session's countdown, or false if
// none is armed.
func (m *Manager) Remaining(sessionID uuid.UUID) (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cd, ok := m.timers[sessionID]
	if !ok {
		return 0, false
	}
	remaining := cd.total - m.clock.Since(cd.start)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

func (m *Manager) run(sessionID uuid.UUID, cd *countdown, onTick TickFunc, onExpire ExpireFunc) {
	ticker := m.clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-cd.stop:
			return
		case <-ticker.Chan():
			remaining := cd.total - m.clock.Since(cd.start)
			if remaining > 0 {
				onTick(remaining, cd.total)
				continue
			}

			// Expire only if this countdown is still the session's current
			// one; a replaced or disarmed timer must never act.
			if !m.claim(sessionID, cd) {
				return
			}
			onTick(0, cd.total)
			onExpire()
			return
		}
	}
}

// claim removes the countdown from the table iff it is still the session's
// current one, making expiry exactly-once under arm/disarm races.
func (m *Manager) claim(sessionID uuid.UUID, cd *countdown) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timers[sessionID] != cd {
		return false
	}
	delete(m.timers, sessionID)
	return true
}
