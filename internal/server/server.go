// Package server exposes the workout tracker over HTTP: profile and plan
// management, the live session state machine, history, stats, and the
// progress chart pages.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/ai"
	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/models"
	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/plan"
	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/session"
	"github.com/go-chi/chi/v5"
)

// defaultUserID is the single-tenant user every request operates as. The
// schema is multi-user; the HTTP layer is not, matching the self-hosted
// deployment model.
const defaultUserID = 1

// Store is the persistence surface the handlers need. *storage.DB satisfies
// it; tests use an in-memory fake.
type Store interface {
	SaveProfile(ctx context.Context, userID int, p models.UserProfile) error
	GetProfile(ctx context.Context, userID int) (*models.UserProfile, error)
	SavePlan(ctx context.Context, userID int, p *plan.WorkoutPlan) error
	GetPlan(ctx context.Context, userID int) (*plan.WorkoutPlan, error)
	DeletePlan(ctx context.Context, userID int) error
	SaveCompletedWorkout(ctx context.Context, w models.CompletedWorkout) (bool, error)
	GetCompletedWorkouts(ctx context.Context, userID, limit int) ([]models.CompletedWorkout, error)
	GetTodaysCompletedWorkout(ctx context.Context, userID int) (*models.CompletedWorkout, error)
}

// Config wires a new Server.
type Config struct {
	Store     Store
	Generator ai.Generator
	Saver     session.Saver
	Calories  session.CalorieEstimator
	APIKey    string
	Log       *slog.Logger

	// Now exists for tests; zero value means time.Now.
	Now func() time.Time
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    Store
	gen      ai.Generator
	saver    session.Saver
	calories session.CalorieEstimator
	sessions *session.Manager
	log      *slog.Logger
	apiKey   string
	now      func() time.Time
	router   chi.Router
}

// New creates a new Server with all routes configured.
func New(cfg Config) *Server {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	s := &Server{
		store:    cfg.Store,
		gen:      cfg.Generator,
		saver:    cfg.Saver,
		calories: cfg.Calories,
		sessions: session.NewManager(),
		log:      cfg.Log,
		apiKey:   cfg.APIKey,
		now:      cfg.Now,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/profile", s.handleSaveProfile)
		r.Get("/profile", s.handleGetProfile)

		// Routes that call the AI backend or write history directly
		// (API key required).
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/plan/generate", s.handleGeneratePlan)
			r.Post("/plan/modify", s.handleModifyPlan)
			r.Post("/workouts", s.handleSaveWorkout)
		})

		r.Get("/plan", s.handleGetPlan)
		r.Delete("/plan", s.handleDeletePlan)
		r.Get("/plan/today", s.handleTodaysPlan)

		r.Post("/session/start", s.handleSessionStart)
		r.Get("/session", s.handleSessionState)
		r.Delete("/session", s.handleSessionAbandon)
		r.Post("/session/set", s.handleSessionSet)
		r.Post("/session/skip-rest", s.handleSessionSkipRest)
		r.Post("/session/pause", s.handleSessionPause)
		r.Post("/session/resume", s.handleSessionResume)
		r.Post("/session/rest", s.handleSessionRest)
		r.Post("/session/nav", s.handleSessionNav)
		r.Post("/session/finish", s.handleSessionFinish)

		r.Get("/workouts", s.handleListWorkouts)
		r.Get("/workouts/today", s.handleTodaysWorkout)
		r.Get("/stats", s.handleStats)
	})

	s.router.Get("/charts/volume", s.handleVolumeChart)
	s.router.Get("/charts/muscles", s.handleMuscleChart)
}
