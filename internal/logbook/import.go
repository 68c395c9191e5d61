package logbook

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/workout"
)

// Import statuses recorded in the import log.
const (
	ImportSuccess = "success"
	ImportPartial = "partial"
	ImportFailed  = "error"
)

// ImportResult summarises one batch import.
type ImportResult struct {
	Received         int      `json:"sessions_received"`
	Written          int      `json:"sessions_written"`
	Skipped          int      `json:"sessions_skipped"`
	VolumeMismatches int      `json:"volume_mismatches"`
	Warnings         []string `json:"warnings,omitempty"`
}

// Import writes sessions from an external source for user. Totals are
// recomputed from the sets; a stored total that disagrees is counted, not
// trusted. Sessions with unnamed exercises or invalid sets are skipped. Within one batch the first session of a day wins and later ones
// are skipped. Every batch lands in the import log when the backend keeps one.
func (s *Service) Import(ctx context.Context, user workout.UserID, source string, sessions []workout.Session) (ImportResult, error) {
	start := s.now()
	res := ImportResult{Received: len(sessions)}
	seen := make(map[workout.Day]bool, len(sessions))

	var firstErr error
	for i, sess := range sessions {
		sess.UserID = user
		if sess.Date.IsZero() && sess.CreatedAt.Valid() {
			sess.Date = workout.DayOf(sess.CreatedAt.In(s.cal.Location), s.cal.Location)
		}
		if sess.Date.IsZero() {
			res.Skipped++
			res.Warnings = append(res.Warnings, fmt.Sprintf("session %d: no usable date", i))
			continue
		}
		if err := workout.ValidateExercises(sess.Exercises); err != nil {
			res.Skipped++
			res.Warnings = append(res.Warnings, fmt.Sprintf("session %d: %v", i, err))
			s.log.Warn("skipping invalid imported session",
				"source", source,
				"user", user,
				"date", sess.Date.String(),
				"error", err)
			continue
		}
		if seen[sess.Date] {
			res.Skipped++
			res.Warnings = append(res.Warnings, fmt.Sprintf("session %d: second session on %s skipped", i, sess.Date))
			continue
		}
		seen[sess.Date] = true

		volume := workout.Volume(sess.Exercises)
		if sess.TotalVolume != 0 && math.Abs(sess.TotalVolume-volume) > 1e-6 {
			res.VolumeMismatches++
			s.log.Warn("imported volume disagrees with sets",
				"source", source,
				"user", user,
				"date", sess.Date.String(),
				"stored", sess.TotalVolume,
				"computed", volume)
		}
		sess.TotalVolume = volume
		if sess.TotalTimeSec < 0 {
			sess.TotalTimeSec = 0
		}

		if _, err := s.store.Upsert(ctx, sess); err != nil {
			res.Skipped++
			res.Warnings = append(res.Warnings, fmt.Sprintf("session %d: %v", i, err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		res.Written++
	}

	s.metrics.SessionsImported.WithLabelValues(source).Add(float64(res.Written))
	s.log.Info("import finished",
		"source", source,
		"user", user,
		"received", res.Received,
		"written", res.Written,
		"skipped", res.Skipped,
		"volume_mismatches", res.VolumeMismatches)

	s.recordImport(ctx, user, source, res, start, firstErr)

	if res.Written == 0 && firstErr != nil {
		return res, fmt.Errorf("importing sessions: %w", firstErr)
	}
	return res, nil
}

func (s *Service) recordImport(ctx context.Context, user workout.UserID, source string, res ImportResult, start time.Time, err error) {
	if s.importLog == nil {
		return
	}
	status := ImportSuccess
	if res.Skipped > 0 {
		status = ImportPartial
	}
	var errMsg *string
	if err != nil {
		msg := err.Error()
		errMsg = &msg
		if res.Written == 0 {
			status = ImportFailed
		}
	}
	durationMs := int(s.now().Sub(start).Milliseconds())

	entry := storage.ImportLog{
		UserID:           user,
		Source:           source,
		Status:           status,
		SessionsReceived: res.Received,
		SessionsWritten:  res.Written,
		SessionsSkipped:  res.Skipped,
		DurationMs:       &durationMs,
		ErrorMessage:     errMsg,
		Metadata: map[string]any{
			"volume_mismatches": res.VolumeMismatches,
		},
	}
	if _, logErr := s.importLog.InsertImportLog(ctx, entry); logErr != nil {
		s.log.Warn("writing import log failed", "source", source, "error", logErr)
	}
}

// ImportLogs returns the most recent import log entries for user. Backends
// without an import history return none.
func (s *Service) ImportLogs(ctx context.Context, user workout.UserID, limit int) ([]storage.ImportLog, error) {
	if s.importLog == nil {
		return []storage.ImportLog{}, nil
	}
	if limit <= 0 {
		limit = 20
	}
	logs, err := s.importLog.QueryImportLogs(ctx, user, limit)
	if err != nil {
		return nil, fmt.Errorf("querying import logs: %w", err)
	}
	return logs, nil
}
