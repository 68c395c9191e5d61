package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/claude/liftlog/internal/backend"
	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/importer"
	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/ingest/alpha"
	"github.com/claude/liftlog/internal/logging"
	"github.com/claude/liftlog/internal/workout"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	user := flag.String("user", "", "user to import into (default: auth.dev_user)")
	unit := flag.String("unit", "", "totalTime unit of legacy JSON exports: seconds or minutes")
	dryRun := flag.Bool("dry-run", false, "parse and report counts without writing")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-import -config config.yaml [-user name] [-unit seconds|minutes] [-dry-run] FILE_OR_DIR...\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log, logCloser := logging.New(cfg.Logging)
	defer logCloser.Close()

	if *user == "" {
		*user = cfg.Auth.DevUser
	}

	var legacy ingest.Provider
	if *unit != "" {
		u, err := importer.ParseUnit(*unit)
		if err != nil {
			log.Error("invalid unit", "error", err)
			os.Exit(1)
		}
		loc, err := cfg.Calendar.Location()
		if err != nil {
			log.Error("invalid timezone", "error", err)
			os.Exit(1)
		}
		legacy = importer.Legacy{Unit: u, Location: loc}
	} else {
		log.Info("no -unit given: legacy JSON files will be skipped")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := backend.Open(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open backend", "error", err)
		os.Exit(1)
	}

	if *dryRun {
		log.Info("DRY RUN mode, no sessions will be written")
	}

	imp := importer.New(app.Service, alpha.NewProvider(app.Service.Location()), legacy, log, *dryRun)
	stats, err := imp.Import(ctx, workout.UserID(*user), flag.Args()...)
	printStats(log, stats)
	if cerr := app.Close(); cerr != nil {
		log.Warn("closing backend", "error", cerr)
	}
	if err != nil {
		log.Error("import failed", "error", err)
		os.Exit(1)
	}
	log.Info("import complete", "user", *user)
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"files_processed", stats.FilesProcessed,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"sessions_received", stats.SessionsReceived,
		"sessions_written", stats.SessionsWritten,
		"sessions_skipped", stats.SessionsSkipped,
		"volume_mismatches", stats.VolumeMismatches,
	)
}

