package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"

	"github.com/jwebster45206/piously-console/internal/config"
	"github.com/jwebster45206/piously-console/internal/controller"
	"github.com/jwebster45206/piously-console/internal/gateway"
	"github.com/jwebster45206/piously-console/internal/input"
	"github.com/jwebster45206/piously-console/internal/logger"
	"github.com/jwebster45206/piously-console/internal/scheduler"
	"github.com/jwebster45206/piously-console/internal/session"
	"github.com/jwebster45206/piously-console/pkg/game"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, closeLog, err := logger.Setup(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = closeLog() // Ignore error in defer
	}()
	log.Info("Starting piously console", "api_base_url", cfg.APIBaseURL, "environment", cfg.Environment)

	router, err := input.NewRouter(cfg.Keys)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid key bindings: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := session.Open(ctx, cfg.RedisURL, cfg.SnapshotPath, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open session store: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = store.Close() // Ignore error in defer
	}()

	client := &http.Client{Timeout: cfg.HTTPTimeout}
	gw := gateway.NewHTTPGateway(client, cfg.APIBaseURL, log)
	ctl := controller.New(gw, log)
	sched := scheduler.New(clockwork.NewRealClock(), ctl, cfg.PollInterval, cfg.PollMaxTicks, log)
	ctl.AttachSync(sched)

	snap, err := store.Load(ctx)
	if err != nil {
		log.Warn("Failed to load session snapshot", "error", err)
	}
	if snap != nil {
		if err := session.Validate(snap.GameID, snap.EnabledFactions); err != nil {
			log.Warn("Ignoring invalid session snapshot", "error", err)
		} else {
			log.Info("Rejoining saved session", "game_id", snap.GameID)
			ctl.Restore(snap.GameID, snap.EnabledFactions)
		}
	}

	p := tea.NewProgram(NewConsoleUI(ctx, cfg, ctl, sched, router, store, log),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion())

	ctl.OnChange(func(gs game.GameState) { p.Send(stateMsg{state: gs}) })
	sched.OnChange(func(st scheduler.Status) { p.Send(syncMsg{status: st}) })

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}

	cancel()
	sched.Stop()
	log.Info("Console stopped")
}
