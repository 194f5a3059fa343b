package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kiliankoe/wordclue/internal/game"
	"github.com/kiliankoe/wordclue/internal/history"
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

type stubHistory struct{}

func (stubHistory) Recent(ctx context.Context, limit int) ([]game.Result, error) {
	return []game.Result{{GameID: "a", Word: "OCEAN", Status: game.StatusWon, Attempts: limit}}, nil
}

func (stubHistory) Stats(ctx context.Context) (history.Stats, error) {
	return history.Stats{Played: 1, Won: 1}, nil
}

func newRouter(gen game.Generator, hist History) (*gin.Engine, *game.Manager) {
	gin.SetMode(gin.TestMode)
	m := game.NewManager(gen)
	r := gin.New()
	New(m, hist).Mount(r)
	return r, m
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) game.Snapshot {
	t.Helper()
	var s game.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &s); err != nil {
		t.Fatalf("decode state: %v (%s)", err, w.Body.String())
	}
	return s
}

// createGame creates a game and waits for its first puzzle.
func createGame(t *testing.T, r http.Handler, m *game.Manager) string {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/games", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	var out struct {
		GameID string `json:"gameId"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	ctrl, err := m.Get(out.GameID)
	if err != nil {
		t.Fatalf("created game not registered: %v", err)
	}
	<-ctrl.Activate(context.Background())
	return out.GameID
}

func TestHealth(t *testing.T) {
	r, _ := newRouter(stubGenerator{}, nil)
	if w := do(t, r, http.MethodGet, "/health", ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestPlayThroughAPI(t *testing.T) {
	r, m := newRouter(stubGenerator{}, nil)
	id := createGame(t, r, m)

	s := decodeState(t, do(t, r, http.MethodGet, "/api/games/"+id, ""))
	if s.Status != game.StatusPlaying || s.View != game.ViewPlaying {
		t.Fatalf("expected playing, got %+v", s)
	}

	s = decodeState(t, do(t, r, http.MethodPost, "/api/games/"+id+"/reveal", ""))
	if s.Revealed != 1 || len(s.Clues) != 1 || s.Clues[0] != "Large body of water" {
		t.Fatalf("unexpected reveal state %+v", s)
	}

	s = decodeState(t, do(t, r, http.MethodPost, "/api/games/"+id+"/guess", `{"text":"sea"}`))
	if s.Attempts != 1 || s.Status != game.StatusPlaying {
		t.Fatalf("unexpected state after wrong guess %+v", s)
	}

	s = decodeState(t, do(t, r, http.MethodPost, "/api/games/"+id+"/input", `{"text":"Ocean"}`))
	if s.GuessText != "Ocean" {
		t.Fatalf("expected guess text, got %q", s.GuessText)
	}

	s = decodeState(t, do(t, r, http.MethodPost, "/api/games/"+id+"/guess", ""))
	if s.Status != game.StatusWon || s.Word != "OCEAN" {
		t.Fatalf("expected win with revealed word, got %+v", s)
	}

	w := do(t, r, http.MethodPost, "/api/games/"+id+"/guess", `{"text":"ocean"}`)
	if w.Code != http.StatusConflict || !strings.Contains(w.Body.String(), "not_playing") {
		t.Fatalf("expected 409 not_playing, got %d %s", w.Code, w.Body.String())
	}

	s = decodeState(t, do(t, r, http.MethodPost, "/api/games/"+id+"/new", ""))
	if s.Status != game.StatusLoading && s.Status != game.StatusPlaying {
		t.Fatalf("expected a new game to be underway, got %s", s.Status)
	}
}

func TestGenerationErrorState(t *testing.T) {
	r, m := newRouter(stubGenerator{err: errors.New("boom")}, nil)
	id := createGame(t, r, m)
	s := decodeState(t, do(t, r, http.MethodGet, "/api/games/"+id, ""))
	if s.Status != game.StatusError || s.View != game.ViewError || s.Error == "" {
		t.Fatalf("expected error view, got %+v", s)
	}
	if w := do(t, r, http.MethodPost, "/api/games/"+id+"/reveal", ""); w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestErrors(t *testing.T) {
	r, m := newRouter(stubGenerator{}, nil)
	if w := do(t, r, http.MethodGet, "/api/games/missing", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	id := createGame(t, r, m)
	if w := do(t, r, http.MethodPost, "/api/games/"+id+"/input", `{"text":`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if w := do(t, r, http.MethodDelete, "/api/games/"+id, ""); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/api/games/"+id, ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}
}

func TestHistory(t *testing.T) {
	r, _ := newRouter(stubGenerator{}, nil)
	if w := do(t, r, http.MethodGet, "/api/history", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when history is disabled, got %d", w.Code)
	}

	r, _ = newRouter(stubGenerator{}, stubHistory{})
	w := do(t, r, http.MethodGet, "/api/history?limit=5", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var out struct {
		Results []game.Result `json:"results"`
		Stats   history.Stats `json:"stats"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Results) != 1 || out.Results[0].Attempts != 5 || out.Stats.Played != 1 {
		t.Fatalf("unexpected history %+v", out)
	}
}

func TestGuessWithChunkedEmptyBody(t *testing.T) {
	r, m := newRouter(stubGenerator{}, nil)
	id := createGame(t, r, m)
	do(t, r, http.MethodPost, "/api/games/"+id+"/input", `{"text":"ocean"}`)

	req := httptest.NewRequest(http.MethodPost, "/api/games/"+id+"/guess", strings.NewReader(""))
	req.ContentLength = -1
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", w.Code, w.Body.String())
	}
	if s := decodeState(t, w); s.Status != game.StatusWon {
		t.Fatalf("expected stored guess text to win, got %+v", s)
	}

	w = do(t, r, http.MethodPost, "/api/games/"+id+"/new", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	ctrl, _ := m.Get(id)
	deadline := time.Now().Add(time.Second)
	for ctrl.Snapshot().Status != game.StatusPlaying {
		if time.Now().After(deadline) {
			t.Fatal("new puzzle never arrived")
		}
		time.Sleep(time.Millisecond)
	}
	if w := do(t, r, http.MethodPost, "/api/games/"+id+"/guess", `{"text":`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for broken json, got %d", w.Code)
	}
}
