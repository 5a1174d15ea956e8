package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cybershield/intel/internal/api/middleware"
	"github.com/cybershield/intel/internal/config"
	"github.com/cybershield/intel/internal/database"
	"github.com/cybershield/intel/internal/logger"
	"github.com/cybershield/intel/internal/scheduler"
	"github.com/cybershield/intel/internal/server"
	"github.com/cybershield/intel/internal/version"
)

const (
	defaultTokenTTL  = 24 * time.Hour
	ingestRunTimeout = 2 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Log to both stdout and a rotated file
	logger.Init(cfg.Debug, logger.RotatingWriter(cfg.LogDir, "cybershield.log"))

	// Handle CLI commands
	if len(os.Args) > 1 && os.Args[1] == "issue-token" {
		issueToken(cfg, os.Args[2:])
		return
	}

	logger.Log().WithField("version", version.Full()).Infof("starting %s backend", version.Name)

	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		logger.Log().WithError(err).Fatal("connect database")
	}

	srv, err := server.New(db, cfg)
	if err != nil {
		logger.Log().WithError(err).Fatal("build server")
	}

	sched, err := scheduler.New(cfg.IngestSchedule, srv.Services.Ingest, ingestRunTimeout)
	if err != nil {
		logger.Log().WithError(err).Fatal("configure ingest scheduler")
	}
	sched.Start()
	defer sched.Stop()

	if cfg.JWTSecret == "" {
		logger.Log().Warn("CYBERSHIELD_JWT_SECRET is not set; write endpoints are unauthenticated")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Log().WithError(err).Error("server error")
		os.Exit(1)
	}
	logger.Log().Info("server stopped")
}

// issueToken prints a signed bearer token: issue-token <subject> <role> [ttl].
func issueToken(cfg config.Config, args []string) {
	if len(args) < 2 || len(args) > 3 {
		log.Fatalf("Usage: %s issue-token <subject> <viewer|analyst|admin> [ttl]", os.Args[0])
	}
	if cfg.JWTSecret == "" {
		log.Fatal("CYBERSHIELD_JWT_SECRET must be set to issue tokens")
	}

	ttl := defaultTokenTTL
	if len(args) == 3 {
		parsed, err := time.ParseDuration(args[2])
		if err != nil {
			log.Fatalf("invalid ttl %q: %v", args[2], err)
		}
		ttl = parsed
	}

	token, err := middleware.IssueToken(cfg.JWTSecret, args[0], args[1], ttl)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}
	fmt.Println(token)
}
