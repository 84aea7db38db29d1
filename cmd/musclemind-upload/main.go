// Command musclemind-upload pushes locally recorded workouts to a remote
// MuscleMind server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/config"
	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/storage"
	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/upload"
	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	serverURL := flag.String("server", "", "base URL of the remote MuscleMind server (required)")
	apiKey := flag.String("api-key", "", "remote server API key (defaults to auth.api_key from config)")
	stateDir := flag.String("state-dir", "data", "directory for the upload state database")
	dryRun := flag.Bool("dry-run", false, "report what would be uploaded without sending")
	flag.Parse()

	_ = godotenv.Load()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *serverURL == "" {
		fmt.Fprintf(os.Stderr, "Usage: musclemind-upload -config config.yaml -server https://musclemind.example [-api-key KEY] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	key := *apiKey
	if key == "" {
		key = cfg.Auth.APIKey
	}

	ctx := context.Background()
	db, err := storage.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	state, err := upload.OpenStateDB(*stateDir)
	if err != nil {
		log.Error("opening state db", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	userID, err := db.GetOrCreateUser(ctx, "local", "MuscleMind")
	if err != nil {
		log.Error("ensuring default user", "error", err)
		os.Exit(1)
	}

	uploader := upload.New(db, upload.NewClient(*serverURL, key), state, userID, log, *dryRun)
	stats, err := uploader.Run(ctx)
	if err != nil {
		log.Error("upload failed", "error", err)
		os.Exit(1)
	}

	log.Info("upload complete",
		"uploaded", stats.Uploaded,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
	)
}
