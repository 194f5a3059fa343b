package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kiliankoe/wordclue/internal/ai"
	"github.com/kiliankoe/wordclue/internal/config"
	"github.com/kiliankoe/wordclue/internal/game"
	"github.com/kiliankoe/wordclue/internal/history"
	"github.com/kiliankoe/wordclue/internal/puzzle"
	"github.com/kiliankoe/wordclue/internal/tui"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	var (
		providerFlag = flag.String("provider", "", "AI provider (overrides DEFAULT_PROVIDER)")
		modelFlag    = flag.String("model", "", "AI model (overrides DEFAULT_MODEL)")
		muteFlag     = flag.Bool("mute", false, "Disable sound cues")
	)
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.FromEnv()
	if *providerFlag != "" {
		cfg.DefaultProvider = strings.ToLower(*providerFlag)
		if *modelFlag == "" && os.Getenv("DEFAULT_MODEL") == "" {
			cfg.DefaultModel = config.DefaultModel(cfg.DefaultProvider)
		}
	}
	if *modelFlag != "" {
		cfg.DefaultModel = *modelFlag
	}

	// The terminal belongs to the game, so logs go to a file or nowhere.
	var out io.Writer = io.Discard
	if cfg.TUILog != "" {
		f, err := os.OpenFile(cfg.TUILog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	provider, err := ai.New(cfg.AI())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	ctrl := game.NewController(uuid.NewString(), puzzle.NewGenerator(provider, cfg.DefaultModel, cfg.SystemPrompt))

	if cfg.HistoryDB != "" {
		store, err := history.Open(cfg.HistoryDB)
		if err != nil {
			log.Error().Err(err).Msg("open history")
		} else {
			defer store.Close()
			ctrl.OnFinish(func(r game.Result) {
				if err := store.Record(context.Background(), r); err != nil {
					log.Error().Err(err).Msg("failed to record result")
				}
			})
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "init screen: %v\n", err)
		os.Exit(1)
	}

	var sound tui.Sounder = tui.Silent{}
	if !*muteFlag {
		if b, err := tui.NewBeeper(); err != nil {
			log.Warn().Err(err).Msg("audio unavailable")
		} else {
			defer b.Close()
			sound = b
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := tui.New(screen, ctrl, sound).Run(ctx)
	screen.Fini()
	ctrl.Close()
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "%v\n", runErr)
		os.Exit(1)
	}
}
