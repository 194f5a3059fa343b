package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kiliankoe/wordclue/internal/game"
	"github.com/kiliankoe/wordclue/internal/history"
	"github.com/rs/zerolog/log"
)

// History is the read side of the result store. A nil History disables
// the /api/history route.
type History interface {
	Recent(ctx context.Context, limit int) ([]game.Result, error)
	Stats(ctx context.Context) (history.Stats, error)
}

type Handler struct {
	Games   *game.Manager
	History History
}

func New(games *game.Manager, hist History) *Handler {
	return &Handler{Games: games, History: hist}
}

type textReq struct {
	Text string `json:"text"`
}

// Mount registers the game routes on r.
func (h *Handler) Mount(r gin.IRouter) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})

	g := r.Group("/api/games")
	g.POST("", func(c *gin.Context) {
		id, ctrl := h.Games.Create(c.Request.Context())
		c.JSON(http.StatusCreated, gin.H{"gameId": id, "state": ctrl.Snapshot()})
	})
	g.GET("/:id", h.withGame(func(c *gin.Context, ctrl *game.Controller) error {
		return nil
	}))
	g.POST("/:id/new", h.withGame(func(c *gin.Context, ctrl *game.Controller) error {
		ctrl.StartNewGame(context.WithoutCancel(c.Request.Context()))
		return nil
	}))
	g.POST("/:id/reveal", h.withGame(func(c *gin.Context, ctrl *game.Controller) error {
		return ctrl.RevealClue()
	}))
	g.POST("/:id/input", h.withGame(func(c *gin.Context, ctrl *game.Controller) error {
		var req textReq
		if err := c.ShouldBindJSON(&req); err != nil {
			return errBadRequest
		}
		return ctrl.SetGuessText(req.Text)
	}))
	g.POST("/:id/guess", h.withGame(func(c *gin.Context, ctrl *game.Controller) error {
		// An empty body submits the stored guess text.
		var req textReq
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
				return errBadRequest
			}
		}
		return ctrl.SubmitGuess(req.Text)
	}))
	g.DELETE("/:id", func(c *gin.Context) {
		if err := h.Games.Remove(c.Param("id")); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	r.GET("/api/history", h.history)
}

var errBadRequest = errors.New("bad request")

// withGame resolves :id, runs fn and answers with the resulting state.
func (h *Handler) withGame(fn func(c *gin.Context, ctrl *game.Controller) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctrl, err := h.Games.Get(c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		if err := fn(c, ctrl); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, ctrl.Snapshot())
	}
}

func (h *Handler) history(c *gin.Context) {
	if h.History == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "history_disabled"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	results, err := h.History.Recent(c.Request.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("load history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history_failed"})
		return
	}
	stats, err := h.History.Stats(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("load stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results, "stats": stats})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, game.ErrGameNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "game_not_found"})
	case errors.Is(err, game.ErrNotPlaying):
		c.JSON(http.StatusConflict, gin.H{"error": "not_playing"})
	case errors.Is(err, errBadRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
	}
}

// Logger logs every request except socket.io polling.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/socket.io") {
			return
		}
		log.Info().Str("method", c.Request.Method).Str("path", path).Int("status", c.Writer.Status()).Dur("dur", time.Since(start)).Msg("http")
	}
}
