package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/models"
	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/session"
)

// handleSessionStart begins today's workout. Rest days and a missing plan are
// reported as 404 outcomes; an already-running session is a conflict.
func (s *Server) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetPlan(r.Context(), defaultUserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	var profile models.UserProfile
	if stored, err := s.store.GetProfile(r.Context(), defaultUserID); err == nil && stored != nil {
		profile = *stored
	}

	sess, err := s.sessions.Start(session.Config{
		UserID:   defaultUserID,
		Plan:     p,
		Saver:    s.saver,
		Calories: s.calories,
		Profile:  profile,
		Log:      s.log,
		Now:      s.now,
	})
	switch {
	case errors.Is(err, session.ErrNoPlan):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no workout plan"})
		return
	case errors.Is(err, session.ErrRestDay):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "rest_day"})
		return
	case errors.Is(err, session.ErrSessionActive):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	s.log.Info("workout session started", "user", defaultUserID)
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(defaultUserID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleSessionAbandon(w http.ResponseWriter, r *http.Request) {
	s.sessions.Remove(defaultUserID)
	w.WriteHeader(http.StatusNoContent)
}

// handleSessionSet records one completed set. Validation failures come back
// as 422 with the offending field and leave the session untouched.
func (s *Server) handleSessionSet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reps   string `json:"reps"`
		Weight string `json:"weight"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	sess, err := s.sessions.Get(defaultUserID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}

	if err := sess.RecordSet(req.Reps, req.Weight); err != nil {
		var verr *session.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
				"error": verr.Msg,
				"field": verr.Field,
			})
			return
		}
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleSessionSkipRest(w http.ResponseWriter, r *http.Request) {
	s.sessionOp(w, func(sess *session.Session) error { return sess.SkipRest() })
}

func (s *Server) handleSessionPause(w http.ResponseWriter, r *http.Request) {
	s.sessionOp(w, func(sess *session.Session) error { return sess.PauseRest() })
}

func (s *Server) handleSessionResume(w http.ResponseWriter, r *http.Request) {
	s.sessionOp(w, func(sess *session.Session) error { return sess.ResumeRest() })
}

func (s *Server) handleSessionRest(w http.ResponseWriter, r *http.Request) {
	s.sessionOp(w, func(sess *session.Session) error { return sess.StartRest() })
}

// handleSessionNav moves the exercise cursor by delta (negative = back).
// Out-of-range moves are no-ops, mirroring the session semantics.
func (s *Server) handleSessionNav(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Delta == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "delta field required"})
		return
	}
	s.sessionOp(w, func(sess *session.Session) error { return sess.GoToExercise(req.Delta) })
}

// handleSessionFinish completes the session and persists the record. A
// degraded save (record spooled to the pending queue) still returns the
// finished workout, with the save error alongside it.
func (s *Server) handleSessionFinish(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(defaultUserID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}

	record, err := sess.Finish(r.Context())
	if errors.Is(err, session.ErrFinished) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	s.sessions.Remove(defaultUserID)

	resp := map[string]any{"workout": record}
	if err != nil {
		resp["save_error"] = err.Error()
	}
	s.log.Info("workout session finished",
		"workout", record.WorkoutName,
		"duration_min", record.Duration,
		"volume", record.TotalVolume,
	)
	writeJSON(w, http.StatusOK, resp)
}

// sessionOp runs a state-machine operation against the active session,
// mapping the shared error outcomes.
func (s *Server) sessionOp(w http.ResponseWriter, op func(*session.Session) error) {
	sess, err := s.sessions.Get(defaultUserID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	if err := op(sess); err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}
