package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/importer"
	"github.com/claude/liftlog/internal/ingest"
	"github.com/claude/liftlog/internal/logbook"
	"github.com/claude/liftlog/internal/workout"
)

// maxBody bounds JSON and CSV request bodies.
const maxBody = 8 << 20

func workoutUser(info UserInfo) workout.UserID {
	return workout.UserID(info.Login)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	info, ok := UserInfoFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "no identity"})
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// parseDayParam reads ?date=YYYY-MM-DD. Absent means today.
func parseDayParam(r *http.Request) (workout.Day, error) {
	v := r.URL.Query().Get("date")
	if v == "" {
		return workout.Day{}, nil
	}
	return workout.ParseDay(v)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}
	day, err := parseDayParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	view, err := s.svc.Calendar(r.Context(), user, day)
	if err != nil {
		s.internalError(w, "calendar", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}
	day, err := parseDayParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	stats, err := s.svc.Monthly(r.Context(), user, day)
	if err != nil {
		s.internalError(w, "monthly stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}
	stats, err := s.svc.Profile(r.Context(), user)
	if err != nil {
		s.internalError(w, "profile stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleListSessions returns all sessions oldest first, or with ?limit=N the
// newest N, newest first.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}
	var (
		sessions []workout.Session
		err      error
	)
	if l := r.URL.Query().Get("limit"); l != "" {
		limit, convErr := strconv.Atoi(l)
		if convErr != nil || limit <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		sessions, err = s.svc.RecentSessions(r.Context(), user, limit)
	} else {
		sessions, err = s.svc.ListSessions(r.Context(), user)
	}
	if err != nil {
		s.internalError(w, "list sessions", err)
		return
	}
	if sessions == nil {
		sessions = []workout.Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func dayFromPath(w http.ResponseWriter, r *http.Request) (workout.Day, bool) {
	day, err := workout.ParseDay(chi.URLParam(r, "date"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date, want YYYY-MM-DD"})
		return workout.Day{}, false
	}
	return day, true
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}
	day, ok := dayFromPath(w, r)
	if !ok {
		return
	}
	sess, err := s.svc.SessionOn(r.Context(), user, day)
	if logbook.IsNotFound(err) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no session on " + day.String()})
		return
	}
	if err != nil {
		s.internalError(w, "get session", err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// completeRequest is the body of PUT /api/v1/sessions/{date}.
type completeRequest struct {
	Exercises  []workout.Exercise `json:"exercises"`
	ElapsedSec int64              `json:"elapsed_sec"`
}

func (s *Server) handlePutSession(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}
	day, ok := dayFromPath(w, r)
	if !ok {
		return
	}

	var req completeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	draft := workout.Draft{Exercises: req.Exercises}
	sess, err := s.svc.CompleteWorkout(r.Context(), user, day, draft, time.Duration(req.ElapsedSec)*time.Second)
	switch {
	case errors.Is(err, workout.ErrEmptySession),
		errors.Is(err, workout.ErrInvalidExercise),
		errors.Is(err, workout.ErrInvalidSet):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case err != nil:
		s.internalError(w, "complete workout", err)
	default:
		writeJSON(w, http.StatusOK, sess)
	}
}

func (s *Server) handleExercises(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.Exercises(catalog.Category(r.URL.Query().Get("category"))))
}

func (s *Server) handleRoutines(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, catalog.Routines())
}

func (s *Server) handleRoutineDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := catalog.DraftFromRoutine(chi.URLParam(r, "id"))
	if errors.Is(err, catalog.ErrUnknownRoutine) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		s.internalError(w, "routine draft", err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (s *Server) handleImportAlpha(w http.ResponseWriter, r *http.Request) {
	s.runImport(w, r, s.alpha)
}

func (s *Server) handleImportLegacy(w http.ResponseWriter, r *http.Request) {
	unit, err := importer.ParseUnit(r.URL.Query().Get("unit"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.runImport(w, r, importer.Legacy{Unit: unit, Location: s.svc.Location()})
}

func (s *Server) runImport(w http.ResponseWriter, r *http.Request, p ingest.Provider) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}
	res, err := ingest.Run(r.Context(), s.svc, p, io.LimitReader(r.Body, maxBody), user)
	var parseErr *ingest.ParseError
	switch {
	case errors.As(err, &parseErr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case err != nil:
		s.internalError(w, p.Name()+" import", err)
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	user, ok := mustUser(w, r)
	if !ok {
		return
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	logs, err := s.svc.ImportLogs(r.Context(), user, limit)
	if err != nil {
		s.internalError(w, "import logs", err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.log.Error(op+" failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

// writeJSON encodes v before writing the header, so a value that cannot be
// encoded turns into a 500 instead of a 2xx with an empty body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("encoding response failed", "status", status, "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":"encoding response"}`+"\n")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		slog.Debug("writing response failed", "error", err)
	}
}
