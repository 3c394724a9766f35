package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/duetchat/duet/internal/backend"
	"github.com/duetchat/duet/internal/chat"
	"github.com/duetchat/duet/internal/config"
	"github.com/duetchat/duet/internal/events"
	"github.com/duetchat/duet/internal/orchestrator"
	"github.com/duetchat/duet/internal/session"
	"github.com/duetchat/duet/internal/tui"
)

func main() {
	// Optional .env for local development; the real environment wins.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Skipping .env: %v", err)
	}

	// Create signal-aware context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	fold, err := backend.FoldByName(cfg.FoldStrategy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	reasoner := backend.NewReasoner(backend.ReasonerConfig{
		URL:         cfg.ReasonerURL,
		APIKey:      cfg.ReasonerAPIKey,
		Model:       cfg.ReasonerModel,
		MaxTokens:   config.ReasonerMaxTokens,
		Temperature: config.ReasonerTemperature,
		Timeout:     cfg.ReasonerTimeout,
	})

	pi, err := backend.NewPi(backend.PiConfig{
		APIKey:      cfg.PiAPIKey,
		Version:     cfg.PiVersion,
		Fold:        fold,
		MaxTokens:   config.PiMaxTokens,
		Temperature: config.PiTemperature,
		Timeout:     cfg.PiTimeout,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Create event bus
	bus := events.NewBus()
	defer bus.Close()

	runner := orchestrator.NewTurnRunner(orchestrator.TurnRunnerConfig{
		Reasoner: reasoner,
		Styler:   pi,
		Bus:      bus,
	})

	transcript := chat.NewTranscript("")

	switch cfg.UI {
	case config.UIPlain:
		err = runPlain(ctx, cfg, runner, transcript)
	default:
		err = runTUI(ctx, stop, cfg, runner, transcript, bus, pi)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runPlain drives the line-oriented session surface on stdio.
func runPlain(ctx context.Context, cfg *config.Config, runner *orchestrator.TurnRunner, transcript *chat.Transcript) error {
	loop, err := session.NewLoop(session.LoopConfig{
		Runner:        runner,
		Transcript:    transcript,
		Input:         os.Stdin,
		Output:        os.Stdout,
		PiVersion:     cfg.PiVersion,
		ShowReasoning: cfg.ShowReasoning,
	})
	if err != nil {
		return err
	}
	return loop.Run(ctx)
}

// runTUI runs the Bubble Tea surface, quitting it cleanly when a
// shutdown signal arrives.
func runTUI(ctx context.Context, stop context.CancelFunc, cfg *config.Config, runner *orchestrator.TurnRunner, transcript *chat.Transcript, bus *events.Bus, pi *backend.PiClient) error {
	model := tui.New(tui.ModelConfig{
		Runner:     runner,
		Transcript: transcript,
		Bus:        bus,
		Settings: tui.Settings{
			PiVersion:     cfg.PiVersion,
			FoldStrategy:  cfg.FoldStrategy,
			ShowReasoning: cfg.ShowReasoning,
		},
		ApplySettings: func(s tui.Settings) error {
			if err := pi.SetVersion(s.PiVersion); err != nil {
				return err
			}
			fold, err := backend.FoldByName(s.FoldStrategy)
			if err != nil {
				return err
			}
			pi.SetFold(fold)
			return nil
		},
	})

	p := tea.NewProgram(model, tea.WithAltScreen())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Releasing the signal context here unblocks the watcher
		// goroutine on a normal TUI exit.
		defer stop()
		_, err := p.Run()
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		p.Quit()
		return nil
	})

	return g.Wait()
}
