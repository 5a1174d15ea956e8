package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/cybershield/intel/internal/config"
	"github.com/cybershield/intel/internal/dashboard"
	"github.com/cybershield/intel/internal/intelclient"
	"github.com/cybershield/intel/internal/logger"
	"github.com/cybershield/intel/internal/samples"
	"github.com/cybershield/intel/internal/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// termui owns the terminal, so logs go to the file only.
	out := logger.FileWriter(cfg.LogDir, "dashboard.log")
	if out == nil {
		out = io.Discard
	}
	logger.Init(cfg.Debug, out)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reloads := make(chan struct{}, 1)
	provider := samples.Static(samples.Default())

	if cfg.SampleDataPath != "" {
		watcher, err := samples.NewWatcher(cfg.SampleDataPath)
		if err != nil {
			log.Fatalf("load sample data: %v", err)
		}
		defer watcher.Close()
		provider = watcher

		go watcher.Run(ctx, func(samples.Dataset) {
			select {
			case reloads <- struct{}{}:
			default:
			}
		})
	}

	status := tui.NewStatusLine()
	client := intelclient.New(cfg.APIBaseURL, intelclient.WithToken(cfg.APIToken))
	app := tui.NewApp(
		dashboard.NewFeedDashboard(client, provider, status),
		dashboard.NewBoard(client, status),
		dashboard.NewPlatform(provider),
		status,
	)

	logger.Log().WithField("api", client.BaseURL()).Info("starting dashboard")
	if err := tui.Run(ctx, app, reloads); err != nil {
		log.Fatalf("dashboard: %v", err)
	}
}
