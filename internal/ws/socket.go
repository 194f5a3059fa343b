package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/kiliankoe/wordclue/internal/game"
	"github.com/rs/zerolog/log"
)

type ConnCtx struct {
	GameID string
}

type resumeMsg struct {
	GameID string `json:"gameId"`
}

type textMsg struct {
	Text string `json:"text"`
}

// Server exposes game actions as socket.io events and pushes game:state to
// every connection attached to a game.
type Server struct {
	Games *game.Manager

	// push delivers a state change to everyone in the game's room.
	push func(room string, snap game.Snapshot)

	mu      sync.Mutex
	watched map[string]func()
}

func New(games *game.Manager) *Server {
	srv := &Server{Games: games, watched: make(map[string]func())}
	games.OnRemove(srv.forget)
	return srv
}

// Mount attaches the Socket.IO server with handlers to the given Gin engine.
func (srv *Server) Mount(r *gin.Engine) *socketio.Server {
	io := socketio.NewServer(nil)
	srv.push = func(room string, snap game.Snapshot) {
		io.BroadcastToRoom("/", room, "game:state", snap)
	}

	io.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext(&ConnCtx{})
		log.Info().Str("sid", s.ID()).Msg("socket connected")
		return nil
	})

	io.OnEvent("/", "game:create", srv.create)
	io.OnEvent("/", "game:resume", srv.resume)
	io.OnEvent("/", "game:new", srv.newGame)
	io.OnEvent("/", "game:reveal", srv.reveal)
	io.OnEvent("/", "game:input", srv.input)
	io.OnEvent("/", "game:guess", srv.guess)

	io.OnError("/", func(s socketio.Conn, e error) {
		if s == nil {
			log.Error().Err(e).Msg("socket error")
			return
		}
		log.Error().Str("sid", s.ID()).Err(e).Msg("socket error")
	})
	io.OnDisconnect("/", func(s socketio.Conn, reason string) {
		log.Info().Str("sid", s.ID()).Str("reason", reason).Msg("socket disconnected")
	})

	go func() {
		if err := io.Serve(); err != nil {
			log.Error().Err(err).Msg("socket.io serve")
		}
	}()

	r.GET("/socket.io/*any", gin.WrapH(io))
	r.POST("/socket.io/*any", gin.WrapH(io))

	// Basic CORS preflight for Socket.IO POST
	r.OPTIONS("/socket.io/*any", func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Status(http.StatusNoContent)
	})

	return io
}

func (srv *Server) create(s socketio.Conn) map[string]any {
	id, ctrl := srv.Games.Create(context.Background())
	srv.attach(s, id, ctrl)
	log.Info().Str("sid", s.ID()).Str("gameId", id).Msg("game:create")
	return map[string]any{"gameId": id}
}

func (srv *Server) resume(s socketio.Conn, msg resumeMsg) map[string]any {
	ctrl, err := srv.Games.Get(msg.GameID)
	if err != nil {
		return srv.err(s, err)
	}
	srv.attach(s, msg.GameID, ctrl)
	log.Info().Str("sid", s.ID()).Str("gameId", msg.GameID).Msg("game:resume")
	return map[string]any{"ok": true}
}

func (srv *Server) newGame(s socketio.Conn) map[string]any {
	return srv.act(s, "game:new", func(ctrl *game.Controller) error {
		ctrl.StartNewGame(context.Background())
		return nil
	})
}

func (srv *Server) reveal(s socketio.Conn) map[string]any {
	return srv.act(s, "game:reveal", (*game.Controller).RevealClue)
}

func (srv *Server) input(s socketio.Conn, msg textMsg) map[string]any {
	return srv.act(s, "game:input", func(ctrl *game.Controller) error {
		return ctrl.SetGuessText(msg.Text)
	})
}

func (srv *Server) guess(s socketio.Conn, msg textMsg) map[string]any {
	return srv.act(s, "game:guess", func(ctrl *game.Controller) error {
		return ctrl.SubmitGuess(msg.Text)
	})
}

// attach joins s to the game's room, sends it the current state and makes
// sure the game's changes are broadcast to the room.
func (srv *Server) attach(s socketio.Conn, id string, ctrl *game.Controller) {
	if ctx, ok := s.Context().(*ConnCtx); ok && ctx.GameID != "" && ctx.GameID != id {
		s.Leave(ctx.GameID)
	}
	s.SetContext(&ConnCtx{GameID: id})
	s.Join(id)
	srv.watch(id, ctrl)
	s.Emit("game:state", ctrl.Snapshot())
}

func (srv *Server) watch(id string, ctrl *game.Controller) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if _, ok := srv.watched[id]; ok {
		return
	}
	srv.watched[id] = ctrl.Subscribe(func(snap game.Snapshot) {
		if srv.push != nil {
			srv.push(id, snap)
		}
	})
}

// forget drops the subscription of a game that no longer exists.
func (srv *Server) forget(id string) {
	srv.mu.Lock()
	cancel := srv.watched[id]
	delete(srv.watched, id)
	srv.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (srv *Server) act(s socketio.Conn, event string, fn func(*game.Controller) error) map[string]any {
	ctx, _ := s.Context().(*ConnCtx)
	if ctx == nil || ctx.GameID == "" {
		return srv.err(s, errNoGame)
	}
	ctrl, err := srv.Games.Get(ctx.GameID)
	if err != nil {
		if errors.Is(err, game.ErrGameNotFound) {
			s.Leave(ctx.GameID)
			s.SetContext(&ConnCtx{})
		}
		return srv.err(s, err)
	}
	if err := fn(ctrl); err != nil {
		return srv.err(s, err)
	}
	log.Debug().Str("sid", s.ID()).Str("gameId", ctx.GameID).Msg(event)
	return map[string]any{"ok": true}
}

var errNoGame = errors.New("no game attached")

func (srv *Server) err(s socketio.Conn, err error) map[string]any {
	code := ErrorCode(err)
	s.Emit("error", map[string]any{"code": code, "message": err.Error()})
	return map[string]any{"error": code}
}

// ErrorCode maps game errors to the codes sent to clients.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrGameNotFound):
		return "game_not_found"
	case errors.Is(err, game.ErrNotPlaying):
		return "not_playing"
	case errors.Is(err, errNoGame):
		return "no_game"
	}
	return "internal"
}
