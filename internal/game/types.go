package game

import (
	"time"
)

type Status string

const (
	StatusStart   Status = "start"
	StatusLoading Status = "loading"
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
	StatusError   Status = "error"
)

// Finished reports whether the status ends a puzzle.
func (s Status) Finished() bool { return s == StatusWon || s == StatusLost }

type View string

const (
	ViewLoading View = "loading"
	ViewError   View = "error"
	ViewPlaying View = "playing"
	ViewWon     View = "won"
	ViewLost    View = "lost"
)

type Action string

const (
	ActionRetry     Action = "retry"
	ActionReveal    Action = "reveal"
	ActionInput     Action = "input"
	ActionGuess     Action = "guess"
	ActionPlayAgain Action = "play_again"
	ActionTryAgain  Action = "try_again"
)

// ViewFor selects the view rendered for a status. Start has no view of its
// own and shows the spinner.
func ViewFor(s Status) View {
	switch s {
	case StatusPlaying:
		return ViewPlaying
	case StatusWon:
		return ViewWon
	case StatusLost:
		return ViewLost
	case StatusError:
		return ViewError
	}
	return ViewLoading
}

func Actions(v View) []Action {
	switch v {
	case ViewError:
		return []Action{ActionRetry}
	case ViewPlaying:
		return []Action{ActionReveal, ActionInput, ActionGuess}
	case ViewWon:
		return []Action{ActionPlayAgain}
	case ViewLost:
		return []Action{ActionTryAgain}
	}
	return []Action{}
}

// Snapshot is a copy of a controller's state that is safe to hand to other
// goroutines. Version increases with every change so clients can drop
// out-of-order updates.
type Snapshot struct {
	GameID      string   `json:"gameId"`
	Version     uint64   `json:"version"`
	Status      Status   `json:"status"`
	View        View     `json:"view"`
	Clues       []string `json:"clues"`
	ClueCount   int      `json:"clueCount"`
	Revealed    int      `json:"revealed"`
	Attempts    int      `json:"attempts"`
	MaxAttempts int      `json:"maxAttempts"`
	GuessText   string   `json:"guessText"`
	Word        string   `json:"word,omitempty"`
	Error       string   `json:"error,omitempty"`
	Actions     []Action `json:"actions"`
}

// Result describes a finished puzzle.
type Result struct {
	GameID        string    `json:"gameId"`
	Word          string    `json:"word"`
	Status        Status    `json:"status"`
	Attempts      int       `json:"attempts"`
	CluesRevealed int       `json:"cluesRevealed"`
	StartedAt     time.Time `json:"startedAt"`
	FinishedAt    time.Time `json:"finishedAt"`
}
