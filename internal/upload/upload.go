// Package upload pushes export files from a local directory to a remote
// liftlog server, skipping files it has already delivered.
package upload

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesErrored  int

	SessionsWritten int
	SessionsSkipped int
}

// Uploader walks a directory of exports and pushes each new file.
// ".csv" files go to the alpha import; ".json" files go to the legacy import
// and are only sent when a unit is configured.
type Uploader struct {
	client *Client
	state  *StateDB
	dir    string
	unit   string
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates an Uploader.
func New(client *Client, state *StateDB, dir, unit string, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{client: client, state: state, dir: dir, unit: unit, dryRun: dryRun, log: log}
}

// Run pushes every new export below the directory, in path order. A file
// the server rejects is counted and logged; the run continues.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	files, err := u.collect()
	if err != nil {
		return &u.stats, err
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return &u.stats, err
		}
		u.pushFile(ctx, f)
	}
	return &u.stats, nil
}

func (u *Uploader) collect() ([]string, error) {
	var files []string
	err := filepath.WalkDir(u.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := u.sourceFor(path); ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", u.dir, err)
	}
	sort.Strings(files)
	return files, nil
}

func (u *Uploader) sourceFor(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "alpha", true
	case ".json":
		return "legacy", true
	}
	return "", false
}

func (u *Uploader) pushFile(ctx context.Context, path string) {
	u.stats.FilesTotal++
	source, _ := u.sourceFor(path)
	if source == "legacy" && u.unit == "" {
		u.log.Info("skipping legacy export (no unit)", "file", path)
		u.stats.FilesSkipped++
		return
	}

	relPath, _ := filepath.Rel(u.dir, path)
	data, err := os.ReadFile(path)
	if err != nil {
		u.log.Warn("read failed", "file", path, "error", err)
		u.stats.FilesErrored++
		return
	}
	hash, err := HashFile(path)
	if err != nil {
		u.log.Warn("hash failed", "file", path, "error", err)
		u.stats.FilesErrored++
		return
	}

	pushed, err := u.state.IsPushed(relPath, int64(len(data)), hash)
	if err != nil {
		u.log.Warn("state check failed", "file", path, "error", err)
		u.stats.FilesErrored++
		return
	}
	if pushed {
		u.stats.FilesSkipped++
		return
	}

	if u.dryRun {
		u.log.Info("would push", "file", relPath, "source", source, "bytes", len(data))
		u.stats.FilesUploaded++
		return
	}

	unit := ""
	if source == "legacy" {
		unit = u.unit
	}
	res, err := u.client.Push(ctx, source, unit, data)
	if err != nil {
		u.log.Warn("push failed", "file", relPath, "error", err)
		u.stats.FilesErrored++
		return
	}
	u.stats.FilesUploaded++
	u.stats.SessionsWritten += res.Written
	u.stats.SessionsSkipped += res.Skipped
	for _, w := range res.Warnings {
		u.log.Warn("server warning", "file", relPath, "warning", w)
	}

	if err := u.state.MarkPushed(relPath, int64(len(data)), hash, source, res.Written); err != nil {
		u.log.Warn("state update failed", "file", relPath, "error", err)
	}
	u.log.Info("pushed", "file", relPath, "source", source, "written", res.Written)
}
