// Command musclemind-import loads a workout-history JSON export from the
// hosted app into the local database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/config"
	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/importer"
	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/storage"
	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	exportPath := flag.String("file", "", "path to the exported workout history JSON (required)")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into database")
	flag.Parse()

	_ = godotenv.Load()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: musclemind-import -config config.yaml -file history.json [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

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

	ctx := context.Background()
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	userID, err := db.GetOrCreateUser(ctx, "local", "MuscleMind")
	if err != nil {
		log.Error("ensuring default user", "error", err)
		os.Exit(1)
	}

	if *dryRun {
		log.Info("DRY RUN mode — no data will be written to the database")
	}

	imp := importer.New(db, userID, log, *dryRun)
	stats, err := imp.Import(ctx, *exportPath)
	if err != nil {
		log.Error("import failed", "error", err)
		os.Exit(1)
	}

	log.Info("import complete",
		"inserted", stats.WorkoutsInserted,
		"duplicates", stats.WorkoutsDuplicated,
		"skipped", stats.WorkoutsSkipped,
	)
}
