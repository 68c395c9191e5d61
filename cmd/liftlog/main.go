package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"tailscale.com/tsnet"

	"github.com/claude/liftlog/internal/backend"
	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/logging"
	liftmcp "github.com/claude/liftlog/internal/mcp"
	"github.com/claude/liftlog/internal/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "open the store (applying migrations) and exit")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log, logCloser := logging.New(cfg.Logging)
	log.Info("LiftLog starting", "version", Version, "backend", cfg.Storage.Backend, "auth", cfg.Auth.Mode)

	if err := run(cfg, log, *migrateOnly); err != nil {
		log.Error("liftlog stopped", "error", err)
		_ = logCloser.Close()
		os.Exit(1)
	}
	_ = logCloser.Close()
}

func run(cfg *config.Config, log *slog.Logger, migrateOnly bool) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := backend.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, app.Close()) }()

	if migrateOnly {
		log.Info("migrate-only: exiting")
		return nil
	}

	srv := server.New(server.Options{
		Service:  app.Service,
		Auth:     cfg.Auth,
		Metrics:  app.Metrics,
		Gatherer: app.Registry,
		MCP:      liftmcp.New(app.Service, Version, log),
		Log:      log,
	})
	if cfg.Server.StaticDir != "" {
		srv.SetFrontend(os.DirFS(cfg.Server.StaticDir))
		log.Info("serving frontend", "dir", cfg.Server.StaticDir)
	}

	listener, tsServer, err := listen(cfg, srv, log)
	if err != nil {
		return err
	}
	if tsServer != nil {
		defer func() { err = multierr.Append(err, tsServer.Close()) }()
	}

	httpSrv := srv.HTTPServer()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}

// listen opens the tailnet listener when tailscale is enabled, otherwise a
// plain TCP listener on the configured host and port.
func listen(cfg *config.Config, srv *server.Server, log *slog.Logger) (net.Listener, *tsnet.Server, error) {
	if !cfg.Tailscale.Enabled {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return nil, nil, fmt.Errorf("listening on %s: %w", addr, err)
		}
		log.Info("server starting", "addr", addr)
		return ln, nil, nil
	}

	ts := &tsnet.Server{
		Hostname: cfg.Tailscale.Hostname,
		Dir:      cfg.Tailscale.StateDir,
	}
	if err := ts.Start(); err != nil {
		return nil, nil, fmt.Errorf("starting tsnet: %w", err)
	}
	lc, err := ts.LocalClient()
	if err != nil {
		return nil, nil, multierr.Append(fmt.Errorf("tsnet local client: %w", err), ts.Close())
	}
	srv.SetTailscale(lc)

	ln, err := ts.Listen("tcp", ":80")
	if err != nil {
		return nil, nil, multierr.Append(fmt.Errorf("tsnet listen: %w", err), ts.Close())
	}
	log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	return ln, ts, nil
}
