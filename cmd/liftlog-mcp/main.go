// Command liftlog-mcp serves the LiftLog MCP tools over stdio, either
// against the configured store or against a running liftlog server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"github.com/claude/liftlog/internal/backend"
	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/logging"
	liftmcp "github.com/claude/liftlog/internal/mcp"
	"github.com/claude/liftlog/internal/workout"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	remote := flag.String("remote", "", "base URL of a liftlog server; skips the local store")
	token := flag.String("token", os.Getenv("LIFTLOG_TOKEN"), "bearer token for -remote")
	flag.Parse()

	_ = godotenv.Load()

	// stdout carries the protocol, so logs go to stderr.
	log := logging.NewWithWriter(os.Stderr, os.Getenv("LIFTLOG_LOG_LEVEL"), "text")

	if *remote != "" {
		log.Info("serving remote logbook", "url", *remote)
		if err := server.ServeStdio(liftmcp.New(liftmcp.NewHTTPClient(*remote, *token), Version, log)); err != nil {
			log.Error("mcp server stopped", "error", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := serveLocal(cfg, log); err != nil {
		log.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}

func serveLocal(cfg *config.Config, log *slog.Logger) error {
	app, err := backend.Open(context.Background(), cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	user := workout.UserID(cfg.Auth.DevUser)
	log.Info("serving local logbook", "backend", cfg.Storage.Backend, "user", user)
	return server.ServeStdio(liftmcp.New(app.Service, Version, log),
		server.WithStdioContextFunc(func(ctx context.Context) context.Context {
			return liftmcp.WithUser(ctx, user)
		}),
	)
}
