// Package tui renders a game controller in the terminal.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/kiliankoe/wordclue/internal/game"
)

const spinnerTickMs = 120

var spinner = []rune(`|/-\`)

var (
	styleTitle   = tcell.StyleDefault.Foreground(tcell.ColorPurple).Bold(true)
	styleText    = tcell.StyleDefault
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleClue    = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	styleInput   = tcell.StyleDefault.Reverse(true)
	styleWon     = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleProblem = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

// Sounder plays the end-of-game cues.
type Sounder interface {
	Win()
	Lose()
}

type App struct {
	screen tcell.Screen
	ctrl   *game.Controller
	sound  Sounder

	snap  game.Snapshot
	input []rune
	frame int
}

func New(screen tcell.Screen, ctrl *game.Controller, sound Sounder) *App {
	if sound == nil {
		sound = Silent{}
	}
	return &App{screen: screen, ctrl: ctrl, sound: sound, snap: ctrl.Snapshot()}
}

// Run activates the controller and processes terminal events until the
// player quits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	unsubscribe := a.ctrl.Subscribe(func(s game.Snapshot) {
		_ = a.screen.PostEvent(tcell.NewEventInterrupt(s))
	})
	defer unsubscribe()

	go func() {
		ticker := time.NewTicker(spinnerTickMs * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = a.screen.PostEvent(tcell.NewEventInterrupt(nil))
			}
		}
	}()

	a.ctrl.Activate(ctx)
	a.draw()
	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if !a.handle(ctx, ev) {
			return nil
		}
		a.draw()
	}
}

// handle applies one event and reports whether the app keeps running.
func (a *App) handle(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventInterrupt:
		if s, ok := ev.Data().(game.Snapshot); ok {
			a.update(s)
		} else {
			a.frame++
		}
	case *tcell.EventResize:
		a.screen.Sync()
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		a.key(ctx, ev)
		a.update(a.ctrl.Snapshot())
	}
	return true
}

func (a *App) key(ctx context.Context, ev *tcell.EventKey) {
	switch a.snap.View {
	case game.ViewPlaying:
		switch ev.Key() {
		case tcell.KeyRune:
			a.input = append(a.input, ev.Rune())
			_ = a.ctrl.SetGuessText(string(a.input))
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			if len(a.input) > 0 {
				a.input = a.input[:len(a.input)-1]
				_ = a.ctrl.SetGuessText(string(a.input))
			}
		case tcell.KeyTab:
			_ = a.ctrl.RevealClue()
		case tcell.KeyEnter:
			_ = a.ctrl.SubmitGuess(string(a.input))
			a.input = a.input[:0]
			_ = a.ctrl.SetGuessText("")
		}
	case game.ViewError:
		if ev.Key() == tcell.KeyEnter || (ev.Key() == tcell.KeyRune && ev.Rune() == 'r') {
			a.ctrl.StartNewGame(ctx)
		}
	case game.ViewWon, game.ViewLost:
		if ev.Key() == tcell.KeyEnter || (ev.Key() == tcell.KeyRune && ev.Rune() == 'n') {
			a.ctrl.StartNewGame(ctx)
		}
	}
}

// update adopts s unless it is older than what is shown, and plays the cue
// when a puzzle has just ended.
func (a *App) update(s game.Snapshot) {
	if s.Version < a.snap.Version {
		return
	}
	prev := a.snap.Status
	a.snap = s
	if s.Status == prev {
		return
	}
	switch s.Status {
	case game.StatusPlaying:
		a.input = a.input[:0]
	case game.StatusWon:
		go a.sound.Win()
	case game.StatusLost:
		go a.sound.Lose()
	}
}

func (a *App) draw() {
	a.screen.Clear()
	y := 1
	y = a.line(y, "Word Clue", styleTitle) + 1

	s := a.snap
	switch s.View {
	case game.ViewLoading:
		a.line(y, fmt.Sprintf("%c Generating word and clues...", spinner[a.frame%len(spinner)]), styleDim)
	case game.ViewError:
		y = a.line(y, "Generation Error", styleProblem)
		if s.Error != "" {
			y = a.line(y, s.Error, styleDim)
		}
		a.line(y+1, "[r] Retry", styleText)
	case game.ViewPlaying:
		y = a.line(y, "Clues:", styleText)
		for i, c := range s.Clues {
			y = a.line(y, fmt.Sprintf("%d. %s", i+1, c), styleClue)
		}
		y = a.line(y+1, fmt.Sprintf("[Tab] Reveal Clue (%d/%d)", s.Revealed, s.ClueCount), styleText)
		y = a.line(y+1, "> "+string(a.input)+" ", styleInput)
		y = a.line(y, "[Enter] Guess", styleDim)
		a.line(y+1, fmt.Sprintf("Attempts: %d/%d", s.Attempts, s.MaxAttempts), styleText)
	case game.ViewWon:
		y = a.line(y, "Congratulations!", styleWon)
		y = a.line(y, "You guessed the word: "+s.Word, styleText)
		a.line(y+1, "[n] Play Again", styleText)
	case game.ViewLost:
		y = a.line(y, "Game Over", styleProblem)
		y = a.line(y, "The word was: "+s.Word, styleText)
		a.line(y+1, "[n] Try Again", styleText)
	}
	a.screen.Show()
}

// line draws text centered on row y and returns the next row.
func (a *App) line(y int, text string, style tcell.Style) int {
	w, _ := a.screen.Size()
	runes := []rune(text)
	x := (w - len(runes)) / 2
	if x < 0 {
		x = 0
	}
	for i, r := range runes {
		a.screen.SetContent(x+i, y, r, nil, style)
	}
	return y + 1
}
