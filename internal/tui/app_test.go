package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/kiliankoe/wordclue/internal/game"
	"github.com/kiliankoe/wordclue/internal/puzzle"
)

type stubGenerator struct {
	err error
}

func (g stubGenerator) Generate(ctx context.Context) (puzzle.Puzzle, error) {
	if g.err != nil {
		return puzzle.Puzzle{}, g.err
	}
	return puzzle.Puzzle{Word: "OCEAN", Clues: []string{"Large body of water", "Covers most of Earth", "Home to whales"}}, nil
}

type chanSounder struct {
	cues chan string
}

func (s chanSounder) Win()  { s.cues <- "win" }
func (s chanSounder) Lose() { s.cues <- "lose" }

func newApp(t *testing.T, gen game.Generator) (*App, tcell.SimulationScreen, chanSounder) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(80, 24)

	ctrl := game.NewController("tui", gen)
	sound := chanSounder{cues: make(chan string, 4)}
	a := New(screen, ctrl, sound)
	<-ctrl.Activate(context.Background())
	a.update(ctrl.Snapshot())
	a.draw()
	return a, screen, sound
}

func screenText(s tcell.Screen) string {
	w, h := s.Size()
	var sb strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, _, _, _ := s.GetContent(x, y)
			sb.WriteRune(r)
		}
		sb.WriteRune('\n')
	}
	return sb.String()
}

func press(a *App, key tcell.Key, r rune) bool {
	ok := a.handle(context.Background(), tcell.NewEventKey(key, r, tcell.ModNone))
	a.draw()
	return ok
}

func typeText(a *App, text string) {
	for _, r := range text {
		press(a, tcell.KeyRune, r)
	}
}

func waitCue(t *testing.T, s chanSounder, want string) {
	t.Helper()
	select {
	case got := <-s.cues:
		if got != want {
			t.Fatalf("expected %s cue, got %s", want, got)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected %s cue", want)
	}
}

func TestPlayingViewAndWin(t *testing.T) {
	a, screen, sound := newApp(t, stubGenerator{})
	out := screenText(screen)
	if !strings.Contains(out, "Reveal Clue (0/3)") || !strings.Contains(out, "Attempts: 0/3") {
		t.Fatalf("expected playing view, got:\n%s", out)
	}

	press(a, tcell.KeyTab, 0)
	if out := screenText(screen); !strings.Contains(out, "1. Large body of water") {
		t.Fatalf("expected first clue, got:\n%s", out)
	}

	typeText(a, "oceax")
	press(a, tcell.KeyBackspace2, 0)
	typeText(a, "n")
	if got := a.ctrl.Snapshot().GuessText; got != "ocean" {
		t.Fatalf("expected guess text to follow typing, got %q", got)
	}
	press(a, tcell.KeyEnter, 0)
	if out := screenText(screen); !strings.Contains(out, "You guessed the word: OCEAN") {
		t.Fatalf("expected won view, got:\n%s", out)
	}
	waitCue(t, sound, "win")

	press(a, tcell.KeyRune, 'n')
	if s := a.ctrl.Snapshot(); s.Status != game.StatusLoading && s.Status != game.StatusPlaying {
		t.Fatalf("expected a new game, got %s", s.Status)
	}
}

func TestLoseView(t *testing.T) {
	a, screen, sound := newApp(t, stubGenerator{})
	for _, g := range []string{"sea", "lake", "pond"} {
		typeText(a, g)
		press(a, tcell.KeyEnter, 0)
	}
	if out := screenText(screen); !strings.Contains(out, "The word was: OCEAN") || !strings.Contains(out, "Try Again") {
		t.Fatalf("expected lost view, got:\n%s", out)
	}
	waitCue(t, sound, "lose")
}

func TestErrorViewAndQuit(t *testing.T) {
	a, screen, _ := newApp(t, stubGenerator{err: errors.New("missing GEMINI_API_KEY")})
	out := screenText(screen)
	if !strings.Contains(out, "Generation Error") || !strings.Contains(out, "missing GEMINI_API_KEY") {
		t.Fatalf("expected error view, got:\n%s", out)
	}
	if !press(a, tcell.KeyRune, 'x') {
		t.Fatal("unrelated keys must not quit")
	}
	if press(a, tcell.KeyEscape, 0) {
		t.Fatal("escape should quit")
	}
}

func TestStaleSnapshotIgnored(t *testing.T) {
	a, _, _ := newApp(t, stubGenerator{})
	current := a.snap
	old := current
	old.Version = 0
	old.Status = game.StatusLoading
	a.update(old)
	if a.snap.Status != current.Status {
		t.Fatalf("older snapshot must not replace newer one")
	}
}
