// Command musclemind-mcp serves the MuscleMind MCP tools over stdio, either
// against the local database or a remote MuscleMind server's REST API.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/config"
	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/mcp"
	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/storage"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	remote := flag.String("remote", "", "base URL of a running MuscleMind server (skips the local database)")
	flag.Parse()

	_ = godotenv.Load()

	// stdout carries the MCP protocol; all logging goes to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource
	if *remote != "" {
		log.Info("MCP server starting", "mode", "remote", "url", *remote)
		ds = mcp.NewHTTPClient(*remote)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		db, err := storage.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		log.Info("MCP server starting", "mode", "local")
		ds = db
	}

	s := mcp.New(ds, Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("stdio server error", "error", err)
		os.Exit(1)
	}
}
