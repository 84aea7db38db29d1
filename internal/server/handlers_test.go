package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/models"
	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/plan"
)

const testAPIKey = "test-key-123"

// fakeStore is an in-memory Store for handler tests.
type fakeStore struct {
	profile  *models.UserProfile
	plan     *plan.WorkoutPlan
	workouts []models.CompletedWorkout
}

func (f *fakeStore) SaveProfile(ctx context.Context, userID int, p models.UserProfile) error {
	f.profile = &p
	return nil
}

func (f *fakeStore) GetProfile(ctx context.Context, userID int) (*models.UserProfile, error) {
	return f.profile, nil
}

func (f *fakeStore) SavePlan(ctx context.Context, userID int, p *plan.WorkoutPlan) error {
	f.plan = p
	return nil
}

func (f *fakeStore) GetPlan(ctx context.Context, userID int) (*plan.WorkoutPlan, error) {
	return f.plan, nil
}

func (f *fakeStore) DeletePlan(ctx context.Context, userID int) error {
	f.plan = nil
	return nil
}

func (f *fakeStore) SaveCompletedWorkout(ctx context.Context, w models.CompletedWorkout) (bool, error) {
	for _, existing := range f.workouts {
		if existing.Date == w.Date {
			return false, nil
		}
	}
	f.workouts = append(f.workouts, w)
	return true, nil
}

func (f *fakeStore) GetCompletedWorkouts(ctx context.Context, userID, limit int) ([]models.CompletedWorkout, error) {
	if limit > 0 && limit < len(f.workouts) {
		return f.workouts[:limit], nil
	}
	return f.workouts, nil
}

func (f *fakeStore) GetTodaysCompletedWorkout(ctx context.Context, userID int) (*models.CompletedWorkout, error) {
	return nil, nil
}

// fakeGenerator returns a canned plan or a fixed error.
type fakeGenerator struct {
	plan *plan.WorkoutPlan
	err  error
}

func (g *fakeGenerator) GeneratePlan(ctx context.Context, profile models.UserProfile) (*plan.WorkoutPlan, error) {
	return g.plan, g.err
}

func (g *fakeGenerator) ModifyPlan(ctx context.Context, current *plan.WorkoutPlan, request string) (*plan.WorkoutPlan, error) {
	return g.plan, g.err
}

// storeSaver persists finished sessions into the fake store.
type storeSaver struct{ store *fakeStore }

func (s *storeSaver) SaveCompletedWorkout(ctx context.Context, w models.CompletedWorkout) error {
	_, err := s.store.SaveCompletedWorkout(ctx, w)
	return err
}

// testNow is a Monday evening.
var testNow = time.Date(2026, 8, 24, 18, 0, 0, 0, time.Local)

func mondayPlan() *plan.WorkoutPlan {
	return &plan.WorkoutPlan{
		Name: "Test Split",
		Days: []plan.WorkoutDay{
			{
				Day:  "Monday",
				Name: "Push Day",
				Exercises: []plan.Exercise{
					{Name: "Bench Press", Sets: 2, Reps: "8", Weight: "60 kg", RestTime: "60 seconds", MuscleGroups: []string{"chest"}},
				},
			},
		},
	}
}

func newTestServer(store *fakeStore, gen *fakeGenerator) *Server {
	return New(Config{
		Store:     store,
		Generator: gen,
		Saver:     &storeSaver{store: store},
		APIKey:    testAPIKey,
		Log:       slog.Default(),
		Now:       func() time.Time { return testNow },
	})
}

func doJSON(t *testing.T, srv *Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func authed() map[string]string {
	return map[string]string{"X-API-Key": testAPIKey}
}

// TestGeneratePlanRequiresAPIKey verifies the AI routes reject missing and
// wrong keys.
func TestGeneratePlanRequiresAPIKey(t *testing.T) {
	srv := newTestServer(&fakeStore{}, &fakeGenerator{plan: mondayPlan()})

	if w := doJSON(t, srv, http.MethodPost, "/api/v1/plan/generate", `{}`, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("no key: status = %d, want 401", w.Code)
	}
	wrong := map[string]string{"X-API-Key": "nope"}
	if w := doJSON(t, srv, http.MethodPost, "/api/v1/plan/generate", `{}`, wrong); w.Code != http.StatusForbidden {
		t.Errorf("wrong key: status = %d, want 403", w.Code)
	}
}

// TestGeneratePlanSavesProfileAndPlan verifies the happy path stores both.
func TestGeneratePlanSavesProfileAndPlan(t *testing.T) {
	store := &fakeStore{}
	srv := newTestServer(store, &fakeGenerator{plan: mondayPlan()})

	w := doJSON(t, srv, http.MethodPost, "/api/v1/plan/generate", `{"name":"Alex","weight":"80"}`, authed())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if store.plan == nil || store.plan.Name != "Test Split" {
		t.Error("plan was not saved")
	}
	if store.profile == nil || store.profile.Name != "Alex" {
		t.Error("profile was not saved")
	}
}

// TestGeneratePlanUpstreamFailure verifies generator errors surface as 502.
func TestGeneratePlanUpstreamFailure(t *testing.T) {
	srv := newTestServer(&fakeStore{}, &fakeGenerator{err: fmt.Errorf("model unavailable")})
	w := doJSON(t, srv, http.MethodPost, "/api/v1/plan/generate", `{"name":"Alex"}`, authed())
	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
}

// TestModifyPlanWithoutPlan verifies modification requires an existing plan.
func TestModifyPlanWithoutPlan(t *testing.T) {
	srv := newTestServer(&fakeStore{}, &fakeGenerator{plan: mondayPlan()})
	w := doJSON(t, srv, http.MethodPost, "/api/v1/plan/modify", `{"request":"more legs"}`, authed())
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

// TestGetPlanNotFound verifies a 404 when no plan is saved.
func TestGetPlanNotFound(t *testing.T) {
	srv := newTestServer(&fakeStore{}, &fakeGenerator{})
	if w := doJSON(t, srv, http.MethodGet, "/api/v1/plan", "", nil); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

// TestTodaysPlanRestDay verifies the rest-day outcome is a reasoned 404, not
// an error.
func TestTodaysPlanRestDay(t *testing.T) {
	store := &fakeStore{plan: &plan.WorkoutPlan{
		Days: []plan.WorkoutDay{{Day: "Wednesday", Name: "Pull", Exercises: []plan.Exercise{{Name: "Rows", Sets: 3}}}},
	}}
	srv := newTestServer(store, &fakeGenerator{})

	w := doJSON(t, srv, http.MethodGet, "/api/v1/plan/today", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] != "rest_day" {
		t.Errorf("error = %q, want rest_day", resp["error"])
	}
}

// TestTodaysPlanMatch verifies the fuzzy day match returns today's workout.
func TestTodaysPlanMatch(t *testing.T) {
	store := &fakeStore{plan: mondayPlan()}
	srv := newTestServer(store, &fakeGenerator{})

	w := doJSON(t, srv, http.MethodGet, "/api/v1/plan/today", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Workout   plan.WorkoutDay `json:"workout"`
		Completed bool            `json:"completed"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Workout.Name != "Push Day" || resp.Completed {
		t.Errorf("today = %+v completed=%v, want Push Day, not completed", resp.Workout, resp.Completed)
	}
}

// TestSessionLifecycle drives a full workout through the HTTP surface:
// start, record sets, skip rest, finish, and verifies the saved record.
func TestSessionLifecycle(t *testing.T) {
	store := &fakeStore{plan: mondayPlan()}
	srv := newTestServer(store, &fakeGenerator{})

	w := doJSON(t, srv, http.MethodPost, "/api/v1/session/start", "", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("start: status = %d, body %s", w.Code, w.Body.String())
	}

	// A second start conflicts.
	if w := doJSON(t, srv, http.MethodPost, "/api/v1/session/start", "", nil); w.Code != http.StatusConflict {
		t.Errorf("second start: status = %d, want 409", w.Code)
	}

	// Invalid set input: 422, session unaffected.
	w = doJSON(t, srv, http.MethodPost, "/api/v1/session/set", `{"reps":"","weight":"60"}`, nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid set: status = %d, want 422", w.Code)
	}
	var verr map[string]string
	json.Unmarshal(w.Body.Bytes(), &verr)
	if verr["field"] != "reps" {
		t.Errorf("field = %q, want reps", verr["field"])
	}

	// Valid set: resting.
	w = doJSON(t, srv, http.MethodPost, "/api/v1/session/set", `{"reps":"8","weight":"60"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("set: status = %d, body %s", w.Code, w.Body.String())
	}
	var snap struct {
		State string `json:"state"`
	}
	json.Unmarshal(w.Body.Bytes(), &snap)
	if snap.State != "resting" {
		t.Errorf("state = %q after set, want resting", snap.State)
	}

	if w := doJSON(t, srv, http.MethodPost, "/api/v1/session/skip-rest", "", nil); w.Code != http.StatusOK {
		t.Fatalf("skip-rest: status = %d", w.Code)
	}

	w = doJSON(t, srv, http.MethodPost, "/api/v1/session/finish", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("finish: status = %d, body %s", w.Code, w.Body.String())
	}
	if len(store.workouts) != 1 {
		t.Fatalf("saved %d workouts, want 1", len(store.workouts))
	}
	if store.workouts[0].TotalVolume != 480 {
		t.Errorf("TotalVolume = %.0f, want 480", store.workouts[0].TotalVolume)
	}

	// The session is gone afterwards.
	if w := doJSON(t, srv, http.MethodGet, "/api/v1/session", "", nil); w.Code != http.StatusNotFound {
		t.Errorf("session after finish: status = %d, want 404", w.Code)
	}
}

// TestSessionStartRestDay verifies a rest day refuses to start a session.
func TestSessionStartRestDay(t *testing.T) {
	store := &fakeStore{plan: &plan.WorkoutPlan{
		Days: []plan.WorkoutDay{{Day: "Friday", Name: "Legs", Exercises: []plan.Exercise{{Name: "Squat", Sets: 3}}}},
	}}
	srv := newTestServer(store, &fakeGenerator{})

	w := doJSON(t, srv, http.MethodPost, "/api/v1/session/start", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] != "rest_day" {
		t.Errorf("error = %q, want rest_day", resp["error"])
	}
}

// TestSessionAbandon verifies DELETE discards the session without saving.
func TestSessionAbandon(t *testing.T) {
	store := &fakeStore{plan: mondayPlan()}
	srv := newTestServer(store, &fakeGenerator{})

	if w := doJSON(t, srv, http.MethodPost, "/api/v1/session/start", "", nil); w.Code != http.StatusCreated {
		t.Fatal("start failed")
	}
	if w := doJSON(t, srv, http.MethodDelete, "/api/v1/session", "", nil); w.Code != http.StatusNoContent {
		t.Errorf("abandon: status = %d, want 204", w.Code)
	}
	if len(store.workouts) != 0 {
		t.Error("abandoned session was saved")
	}
}

// TestSaveWorkoutDuplicate verifies the direct history write rejects a
// second workout on the same date.
func TestSaveWorkoutDuplicate(t *testing.T) {
	store := &fakeStore{}
	srv := newTestServer(store, &fakeGenerator{})

	body := `{"workout_name":"Imported","date":"2026-08-20","exercises":[]}`
	if w := doJSON(t, srv, http.MethodPost, "/api/v1/workouts", body, authed()); w.Code != http.StatusCreated {
		t.Fatalf("first save: status = %d", w.Code)
	}
	if w := doJSON(t, srv, http.MethodPost, "/api/v1/workouts", body, authed()); w.Code != http.StatusConflict {
		t.Errorf("duplicate save: status = %d, want 409", w.Code)
	}
}

// TestListWorkoutsBadLimit verifies limit validation.
func TestListWorkoutsBadLimit(t *testing.T) {
	srv := newTestServer(&fakeStore{}, &fakeGenerator{})
	if w := doJSON(t, srv, http.MethodGet, "/api/v1/workouts?limit=-2", "", nil); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

// TestStatsEndpoint verifies the aggregator runs over the stored history.
func TestStatsEndpoint(t *testing.T) {
	store := &fakeStore{workouts: []models.CompletedWorkout{
		{Date: "2026-08-24", TotalVolume: 500},
		{Date: "2026-08-23", TotalVolume: 300},
	}}
	srv := newTestServer(store, &fakeGenerator{})

	w := doJSON(t, srv, http.MethodGet, "/api/v1/stats", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		TotalWorkouts int     `json:"total_workouts"`
		TotalVolume   float64 `json:"total_volume"`
		CurrentStreak int     `json:"current_streak"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.TotalWorkouts != 2 || resp.TotalVolume != 800 {
		t.Errorf("stats = %+v, want 2 workouts, volume 800", resp)
	}
	if resp.CurrentStreak != 2 {
		t.Errorf("streak = %d, want 2", resp.CurrentStreak)
	}
}
