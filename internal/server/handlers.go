package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/models"
	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/stats"
)

func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var profile models.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := s.store.SaveProfile(r.Context(), defaultUserID, profile); err != nil {
		s.log.Error("saving profile", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.store.GetProfile(r.Context(), defaultUserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if profile == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no profile saved"})
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// handleGeneratePlan creates a fresh plan from the posted profile, or from
// the stored one when the body is empty, and saves both.
func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	var profile models.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		stored, serr := s.store.GetProfile(r.Context(), defaultUserID)
		if serr != nil || stored == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "post a profile or save one first"})
			return
		}
		profile = *stored
	}

	p, err := s.gen.GeneratePlan(r.Context(), profile)
	if err != nil {
		s.log.Error("plan generation failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	if err := s.store.SaveProfile(r.Context(), defaultUserID, profile); err != nil {
		s.log.Error("saving profile", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if err := s.store.SavePlan(r.Context(), defaultUserID, p); err != nil {
		s.log.Error("saving plan", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	s.log.Info("generated workout plan", "days", len(p.Days), "exercises", p.TotalExercises())
	writeJSON(w, http.StatusOK, p)
}

// handleModifyPlan sends the stored plan plus the user's instruction to the
// generator and replaces the plan wholesale with the result.
func (s *Server) handleModifyPlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Request string `json:"request"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Request == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "request field required"})
		return
	}

	current, err := s.store.GetPlan(r.Context(), defaultUserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if current == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no plan to modify"})
		return
	}

	modified, err := s.gen.ModifyPlan(r.Context(), current, req.Request)
	if err != nil {
		s.log.Error("plan modification failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	if err := s.store.SavePlan(r.Context(), defaultUserID, modified); err != nil {
		s.log.Error("saving plan", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	s.log.Info("modified workout plan", "request", req.Request)
	writeJSON(w, http.StatusOK, modified)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetPlan(r.Context(), defaultUserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if p == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no workout plan"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeletePlan(r.Context(), defaultUserID); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleTodaysPlan resolves today's workout by fuzzy day matching. A day with
// no plan entry is a rest day, reported as a 404 with a reason rather than an
// error.
func (s *Server) handleTodaysPlan(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetPlan(r.Context(), defaultUserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if p == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no workout plan"})
		return
	}

	day := p.DayFor(s.now())
	if day == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "rest_day"})
		return
	}

	completed, err := s.store.GetTodaysCompletedWorkout(r.Context(), defaultUserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"workout":   day,
		"completed": completed != nil,
	})
}

// handleSaveWorkout is a direct history write for importers and non-session
// clients. Same-day duplicates are rejected by the store.
func (s *Server) handleSaveWorkout(w http.ResponseWriter, r *http.Request) {
	var workout models.CompletedWorkout
	if err := json.NewDecoder(r.Body).Decode(&workout); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	workout.UserID = defaultUserID

	saved, err := s.store.SaveCompletedWorkout(r.Context(), workout)
	if err != nil {
		s.log.Error("saving workout", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !saved {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "a workout is already recorded for that date"})
		return
	}
	writeJSON(w, http.StatusCreated, workout)
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative number"})
			return
		}
		limit = n
	}

	workouts, err := s.store.GetCompletedWorkouts(r.Context(), defaultUserID, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if workouts == nil {
		workouts = []models.CompletedWorkout{}
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleTodaysWorkout(w http.ResponseWriter, r *http.Request) {
	workout, err := s.store.GetTodaysCompletedWorkout(r.Context(), defaultUserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if workout == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no workout completed today"})
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	history, err := s.store.GetCompletedWorkouts(r.Context(), defaultUserID, 0)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats.Compute(history, s.now()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
