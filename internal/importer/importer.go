// Package importer runs batch imports of export files from disk.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/workout"
)

// Stats tracks import progress across files.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	SessionsReceived int
	SessionsWritten  int
	SessionsSkipped  int
	VolumeMismatches int
}

// Importer feeds export files to a sink, picking the provider by extension:
// ".csv" files are Alpha Progression exports, ".json" files legacy exports.
// Either may carry a trailing ".gz".
type Importer struct {
	sink      ingest.Sink
	providers map[string]ingest.Provider
	log       *slog.Logger
	dryRun    bool
	stats     Stats
}

// New creates an Importer. A nil provider disables its file type.
func New(sink ingest.Sink, alphaCSV, legacyJSON ingest.Provider, log *slog.Logger, dryRun bool) *Importer {
	providers := map[string]ingest.Provider{}
	if alphaCSV != nil {
		providers[".csv"] = alphaCSV
	}
	if legacyJSON != nil {
		providers[".json"] = legacyJSON
	}
	return &Importer{sink: sink, providers: providers, log: log, dryRun: dryRun}
}

// Import processes every path. Directories are expanded to the export files
// directly inside them, in name order.
func (imp *Importer) Import(ctx context.Context, user workout.UserID, paths ...string) (*Stats, error) {
	files, err := imp.expand(paths)
	if err != nil {
		return &imp.stats, err
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return &imp.stats, err
		}
		if err := imp.importFile(ctx, user, f); err != nil {
			return &imp.stats, fmt.Errorf("importing %s: %w", filepath.Base(f), err)
		}
	}
	return &imp.stats, nil
}

func (imp *Importer) expand(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		var found []string
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if _, ok := imp.providerFor(e.Name()); ok {
				found = append(found, filepath.Join(p, e.Name()))
			}
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

func (imp *Importer) providerFor(name string) (ingest.Provider, bool) {
	ext := filepath.Ext(strings.TrimSuffix(strings.ToLower(name), ".gz"))
	p, ok := imp.providers[ext]
	return p, ok
}

// importFile parses one file. Parse failures are counted and logged so one
// bad export does not stop a batch; store failures abort.
func (imp *Importer) importFile(ctx context.Context, user workout.UserID, path string) error {
	provider, ok := imp.providerFor(path)
	if !ok {
		imp.log.Info("skipping file (unknown type)", "file", path)
		imp.stats.FilesSkipped++
		return nil
	}

	rc, err := openExport(path)
	if err != nil {
		imp.log.Warn("open failed", "file", path, "error", err)
		imp.stats.FilesErrored++
		return nil
	}
	defer rc.Close()

	sessions, err := provider.Parse(rc)
	if err != nil {
		imp.log.Warn("parse failed", "file", path, "error", err)
		imp.stats.FilesErrored++
		return nil
	}
	if len(sessions) == 0 {
		imp.stats.FilesSkipped++
		return nil
	}

	imp.stats.FilesProcessed++
	imp.stats.SessionsReceived += len(sessions)
	if imp.dryRun {
		imp.log.Info("dry run", "file", path, "source", provider.Name(), "sessions", len(sessions))
		return nil
	}

	res, err := imp.sink.Import(ctx, user, provider.Name(), sessions)
	imp.stats.SessionsWritten += res.Written
	imp.stats.SessionsSkipped += res.Skipped
	imp.stats.VolumeMismatches += res.VolumeMismatches
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		imp.log.Warn("import warning", "file", path, "detail", w)
	}
	return nil
}
