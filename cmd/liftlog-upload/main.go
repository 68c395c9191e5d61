package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/claude/liftlog/internal/importer"
	"github.com/claude/liftlog/internal/logging"
	"github.com/claude/liftlog/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "liftlog server URL (e.g. https://liftlog.tail1234.ts.net)")
	dir := flag.String("path", "", "directory of export files")
	unit := flag.String("unit", "", "totalTime unit of legacy JSON exports: seconds or minutes")
	dryRun := flag.Bool("dry-run", false, "list what would be sent without sending")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("liftlog-upload", Version)
		return
	}

	_ = godotenv.Load()
	log := logging.NewWithWriter(os.Stdout, os.Getenv("LIFTLOG_LOG_LEVEL"), "text")

	if *dir == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftlog-upload -server <URL> -path <dir> [-unit seconds|minutes] [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if *serverURL == "" && !*dryRun {
		fmt.Fprintf(os.Stderr, "Error: -server is required (or use -dry-run)\n")
		os.Exit(1)
	}
	if *unit != "" {
		if _, err := importer.ParseUnit(*unit); err != nil {
			log.Error("invalid unit", "error", err)
			os.Exit(1)
		}
	}
	*serverURL = strings.TrimRight(*serverURL, "/")

	if info, err := os.Stat(*dir); err != nil || !info.IsDir() {
		log.Error("export directory not found", "path", *dir)
		os.Exit(1)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	state, err := upload.OpenStateDB(filepath.Join(homeDir, ".liftlog-upload"))
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	if *dryRun {
		log.Info("DRY RUN mode, files will be listed but not sent")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := upload.NewClient(*serverURL, os.Getenv("LIFTLOG_TOKEN"), os.Getenv("LIFTLOG_AUTH_API_KEY"))
	stats, err := upload.New(client, state, *dir, *unit, *dryRun, log).Run(ctx)
	log.Info("upload stats",
		"files_total", stats.FilesTotal,
		"files_uploaded", stats.FilesUploaded,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"sessions_written", stats.SessionsWritten,
		"sessions_skipped", stats.SessionsSkipped,
	)
	if err != nil {
		log.Error("upload failed", "error", err)
		os.Exit(1)
	}
}
