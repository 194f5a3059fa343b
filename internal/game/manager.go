package game

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Recorder persists finished puzzles. Errors are logged, never surfaced to
// the player.
type Recorder interface {
	Record(ctx context.Context, r Result) error
}

// Manager tracks one Controller per game ID.
type Manager struct {
	mu        sync.RWMutex
	games     map[string]*Controller
	gen       Generator
	recorders []Recorder
	onRemove  []func(id string)
	now       func() time.Time
}

func NewManager(gen Generator, recorders ...Recorder) *Manager {
	return &Manager{games: make(map[string]*Controller), gen: gen, recorders: recorders, now: time.Now}
}

// Create registers a new controller and activates it. Generation runs
// detached from ctx's cancellation so it outlives the calling request.
func (m *Manager) Create(ctx context.Context) (string, *Controller) {
	id := uuid.NewString()
	c := newController(id, m.gen, m.now)
	c.OnFinish(m.record)

	m.mu.Lock()
	m.games[id] = c
	m.mu.Unlock()

	c.Activate(context.WithoutCancel(ctx))
	log.Info().Str("gameId", id).Msg("game created")
	return id, c
}

// Get looks up a game and marks it as active.
func (m *Manager) Get(id string) (*Controller, error) {
	m.mu.RLock()
	c := m.games[id]
	m.mu.RUnlock()
	if c == nil {
		return nil, ErrGameNotFound
	}
	c.touch()
	return c, nil
}

func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	c := m.games[id]
	delete(m.games, id)
	hooks := m.onRemove
	m.mu.Unlock()
	if c == nil {
		return ErrGameNotFound
	}
	c.Close()
	for _, fn := range hooks {
		fn(id)
	}
	return nil
}

// OnRemove registers fn to run after a game has been removed or evicted.
func (m *Manager) OnRemove(fn func(id string)) {
	m.mu.Lock()
	m.onRemove = append(m.onRemove, fn)
	m.mu.Unlock()
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}

// Evict removes every game that has been inactive for longer than idle and
// returns how many were removed.
func (m *Manager) Evict(idle time.Duration) int {
	cutoff := m.now().Add(-idle)
	m.mu.RLock()
	var stale []string
	for id, c := range m.games {
		if c.LastActive().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	n := 0
	for _, id := range stale {
		if m.Remove(id) == nil {
			n++
		}
	}
	if n > 0 {
		log.Info().Int("evicted", n).Int("remaining", m.Len()).Msg("evicted idle games")
	}
	return n
}

// RunJanitor evicts idle games every interval until ctx is done. A
// non-positive idle disables eviction.
func (m *Manager) RunJanitor(ctx context.Context, interval, idle time.Duration) {
	if idle <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Evict(idle)
		}
	}
}

func (m *Manager) record(r Result) {
	for _, rec := range m.recorders {
		if err := rec.Record(context.Background(), r); err != nil {
			log.Error().Err(err).Str("gameId", r.GameID).Msg("failed to record result")
		}
	}
}
