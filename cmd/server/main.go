package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/kiliankoe/wordclue/internal/ai"
	"github.com/kiliankoe/wordclue/internal/api"
	"github.com/kiliankoe/wordclue/internal/config"
	"github.com/kiliankoe/wordclue/internal/game"
	"github.com/kiliankoe/wordclue/internal/history"
	"github.com/kiliankoe/wordclue/internal/puzzle"
	"github.com/kiliankoe/wordclue/internal/ws"
	staticserver "github.com/kiliankoe/wordclue/static"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var version = "dev" // Set at build time via -ldflags

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		portFlag    = flag.String("port", "", "Port to listen on (overrides PORT env var)")
	)
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showHelp {
		fmt.Printf(`Word Clue - guess the hidden word from AI-generated clues

Usage: %s [options]

Options:
  -h, --help      Show this help message
  -v, --version   Show version information
  --port PORT     Port to listen on (default: 8080 or PORT env var)

Environment Variables:
  PORT                Port to listen on (default: 8080)
  LOG_LEVEL           trace, debug, info, warn or error (default: info)
  DEFAULT_PROVIDER    AI provider: "gemini", "openai" or "ollama" (default: gemini)
  DEFAULT_MODEL       AI model to use (default depends on provider)
  GEMINI_API_KEY      Gemini API key (required for the Gemini provider)
  OPENAI_API_KEY      OpenAI API key (required for the OpenAI provider)
  OPENAI_BASE_URL     Custom OpenAI API base URL (optional)
  OLLAMA_HOST         Ollama host URL (default: http://localhost:11434)
  AI_TIMEOUT          Timeout for one generation call (default: 20s)
  GAME_IDLE_TTL       Drop games idle for this long (default: 30m)
  HISTORY_DB          SQLite file for finished games, empty disables (default: ./data/wordclue.db)
  EXPORT_ENABLED      Export game results to file (default: true)
  EXPORT_FILE         Path to export game results (default: ./wordclue-results.txt)

Examples:
  %s                  Start server with default settings
  %s --port 3000      Start server on port 3000

Visit http://localhost:8080 after starting the server.
`, os.Args[0], os.Args[0], os.Args[0])
		return
	}

	if *showVersion {
		fmt.Printf("Word Clue %s\n", version)
		return
	}

	_ = godotenv.Load()
	cfg := config.FromEnv()
	if *portFlag != "" {
		cfg.Port = *portFlag
	}

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	provider, err := ai.New(cfg.AI())
	if err != nil {
		log.Fatal().Err(err).Msg("ai provider")
	}
	gen := puzzle.NewGenerator(provider, cfg.DefaultModel, cfg.SystemPrompt)

	var (
		recorders []game.Recorder
		hist      api.History
	)
	if cfg.HistoryDB != "" {
		store, err := history.Open(cfg.HistoryDB)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.HistoryDB).Msg("open history")
		}
		defer store.Close()
		recorders = append(recorders, store)
		hist = store
	}
	if cfg.ExportEnabled {
		recorders = append(recorders, game.NewExporter(cfg.ExportFile))
	}
	games := game.NewManager(gen, recorders...)
	go games.RunJanitor(context.Background(), time.Minute, cfg.GameIdleTTL)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(api.Logger())

	api.New(games, hist).Mount(r)
	io := ws.New(games).Mount(r)
	defer io.Close()

	// Serve frontend for all other routes
	r.NoRoute(func(c *gin.Context) {
		staticserver.Handler().ServeHTTP(c.Writer, c.Request)
	})

	log.Info().Str("port", cfg.Port).Str("provider", cfg.DefaultProvider).Str("model", cfg.DefaultModel).Msg("listening")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server")
	}
}
