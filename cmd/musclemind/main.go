package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/ai"
	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/config"
	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/server"
	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/storage"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	// .env is optional; real config comes from the YAML file plus
	// MUSCLEMIND_* overrides.
	_ = godotenv.Load()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("MuscleMind starting", "version", Version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	ctx := context.Background()
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Single-tenant deployment: make sure the default user row exists.
	if _, err := db.GetOrCreateUser(ctx, "local", "MuscleMind"); err != nil {
		log.Error("ensuring default user", "error", err)
		os.Exit(1)
	}

	// Pending queue: flush anything spooled while the database was down,
	// then keep flushing on the configured schedule.
	queue, err := storage.OpenPendingQueue(cfg.Queue.Dir)
	if err != nil {
		log.Error("opening pending queue", "error", err)
		os.Exit(1)
	}
	defer queue.Close()

	if n, err := queue.Len(); err == nil && n > 0 {
		log.Info("flushing pending workouts from previous runs", "count", n)
		if err := queue.Flush(ctx, db, log); err != nil {
			log.Warn("startup queue flush failed", "error", err)
		}
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Queue.FlushSchedule, func() {
		if err := queue.Flush(context.Background(), db, log); err != nil {
			log.Warn("scheduled queue flush failed", "error", err)
		}
	}); err != nil {
		log.Error("invalid queue flush schedule", "schedule", cfg.Queue.FlushSchedule, "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	aiClient := ai.NewClient(cfg.AI, log)
	saver := &storage.WorkoutSaver{DB: db, Queue: queue, Log: log}

	srv := server.New(server.Config{
		Store:     db,
		Generator: aiClient,
		Saver:     saver,
		Calories:  aiClient,
		APIKey:    cfg.Auth.APIKey,
		Log:       log,
	})

	// Start server — tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
