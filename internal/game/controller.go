package game

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/kiliankoe/wordclue/internal/puzzle"
	"github.com/rs/zerolog/log"
)

// MaxAttempts is the guess budget per puzzle.
const MaxAttempts = 3

var (
	ErrNotPlaying   = errors.New("game is not in progress")
	ErrGameNotFound = errors.New("game not found")
)

type Generator interface {
	Generate(ctx context.Context) (puzzle.Puzzle, error)
}

// Controller owns the state of one player's game. All methods are safe for
// concurrent use.
type Controller struct {
	ID  string
	gen Generator
	now func() time.Time

	mu        sync.Mutex
	status    Status
	puzzle    *puzzle.Puzzle
	guessText string
	attempts  int
	revealed  int
	errMsg    string
	startedAt time.Time
	version   uint64
	active    time.Time

	// seq identifies the newest generation request; older completions are dropped.
	seq    uint64
	cancel context.CancelFunc

	activate sync.Once
	initial  <-chan struct{}

	subs     map[int]func(Snapshot)
	nextSub  int
	onFinish func(Result)
}

func NewController(id string, gen Generator) *Controller {
	return newController(id, gen, time.Now)
}

func newController(id string, gen Generator, now func() time.Time) *Controller {
	return &Controller{
		ID:     id,
		gen:    gen,
		now:    now,
		status: StatusStart,
		active: now(),
		subs:   make(map[int]func(Snapshot)),
	}
}

// Activate issues the first generation call. Only the first call has an
// effect; every call returns the channel of that first request.
func (c *Controller) Activate(ctx context.Context) <-chan struct{} {
	c.activate.Do(func() {
		c.initial = c.StartNewGame(ctx)
	})
	return c.initial
}

// StartNewGame switches to loading and asks the generator for a new puzzle
// in the background. A request still in flight is cancelled and its result
// discarded. The returned channel is closed once this request has been
// applied or dropped.
func (c *Controller) StartNewGame(ctx context.Context) <-chan struct{} {
	ctx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.seq++
	seq := c.seq
	c.cancel = cancel
	c.status = StatusLoading
	c.puzzle = nil
	c.errMsg = ""
	c.guessText = ""
	c.attempts = 0
	c.revealed = 0
	snap := c.changedLocked()
	c.mu.Unlock()

	log.Debug().Str("gameId", c.ID).Uint64("seq", seq).Msg("generating puzzle")
	c.notify(snap)

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		p, err := c.gen.Generate(ctx)
		c.finishGeneration(seq, p, err)
	}()
	return done
}

func (c *Controller) finishGeneration(seq uint64, p puzzle.Puzzle, err error) {
	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		log.Debug().Str("gameId", c.ID).Uint64("seq", seq).Msg("discarding stale generation")
		return
	}
	c.cancel = nil
	if err != nil {
		c.status = StatusError
		c.errMsg = err.Error()
	} else {
		p.Clues = append([]string(nil), p.Clues...)
		c.puzzle = &p
		c.guessText = ""
		c.attempts = 0
		c.revealed = 0
		c.startedAt = c.now()
		c.status = StatusPlaying
	}
	snap := c.changedLocked()
	c.mu.Unlock()

	if err != nil {
		log.Error().Err(err).Str("gameId", c.ID).Msg("puzzle generation failed")
	} else {
		log.Info().Str("gameId", c.ID).Msg("puzzle ready")
	}
	c.notify(snap)
}

// RevealClue exposes one more clue, up to the puzzle's clue count.
func (c *Controller) RevealClue() error {
	c.mu.Lock()
	if c.status != StatusPlaying {
		c.mu.Unlock()
		return ErrNotPlaying
	}
	if c.revealed < len(c.puzzle.Clues) {
		c.revealed++
	}
	snap := c.changedLocked()
	c.mu.Unlock()
	c.notify(snap)
	return nil
}

func (c *Controller) SetGuessText(text string) error {
	c.mu.Lock()
	if c.status != StatusPlaying {
		c.mu.Unlock()
		return ErrNotPlaying
	}
	c.guessText = text
	snap := c.changedLocked()
	c.mu.Unlock()
	c.notify(snap)
	return nil
}

// SubmitGuess spends one attempt. An empty text submits the current guess
// text. Matching ignores case and surrounding whitespace.
func (c *Controller) SubmitGuess(text string) error {
	c.mu.Lock()
	if c.status != StatusPlaying {
		c.mu.Unlock()
		return ErrNotPlaying
	}
	if text == "" {
		text = c.guessText
	}
	c.attempts++
	switch {
	case strings.EqualFold(strings.TrimSpace(text), c.puzzle.Word):
		c.status = StatusWon
	case c.attempts >= MaxAttempts:
		c.status = StatusLost
	}
	var res *Result
	if c.status.Finished() {
		res = &Result{
			GameID:        c.ID,
			Word:          c.puzzle.Word,
			Status:        c.status,
			Attempts:      c.attempts,
			CluesRevealed: c.revealed,
			StartedAt:     c.startedAt,
			FinishedAt:    c.now(),
		}
	}
	onFinish := c.onFinish
	snap := c.changedLocked()
	c.mu.Unlock()

	c.notify(snap)
	if res != nil {
		log.Info().Str("gameId", c.ID).Str("status", string(res.Status)).Int("attempts", res.Attempts).Msg("puzzle finished")
		if onFinish != nil {
			onFinish(*res)
		}
	}
	return nil
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every change. fn runs
// on the goroutine that made the change and must not block.
func (c *Controller) Subscribe(fn func(Snapshot)) (cancel func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// OnFinish sets the callback invoked once for every puzzle that ends in
// won or lost.
func (c *Controller) OnFinish(fn func(Result)) {
	c.mu.Lock()
	c.onFinish = fn
	c.mu.Unlock()
}

// LastActive reports when the game last changed or was looked up.
func (c *Controller) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Controller) touch() {
	c.mu.Lock()
	c.active = c.now()
	c.mu.Unlock()
}

// Close cancels any generation still in flight and drops all subscribers.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	clear(c.subs)
}

func (c *Controller) changedLocked() Snapshot {
	c.version++
	c.active = c.now()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	view := ViewFor(c.status)
	s := Snapshot{
		GameID:      c.ID,
		Version:     c.version,
		Status:      c.status,
		View:        view,
		Clues:       []string{},
		Revealed:    c.revealed,
		Attempts:    c.attempts,
		MaxAttempts: MaxAttempts,
		GuessText:   c.guessText,
		Actions:     Actions(view),
	}
	if c.puzzle != nil {
		s.ClueCount = len(c.puzzle.Clues)
		s.Clues = append(s.Clues, c.puzzle.Clues[:c.revealed]...)
		if c.status.Finished() {
			s.Word = c.puzzle.Word
		}
	}
	if c.status == StatusError {
		s.Error = c.errMsg
	}
	return s
}

func (c *Controller) notify(s Snapshot) {
	c.mu.Lock()
	fns := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}
