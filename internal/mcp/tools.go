package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/models"
	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/stats"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolGetWorkoutStats = mcp.NewTool("get_workout_stats",
	mcp.WithDescription("Aggregate training statistics: total workouts, this-month count, current streak, total volume lifted, per-exercise strength progression, and muscle group distribution."),
)

var toolGetWorkouts = mcp.NewTool("get_workouts",
	mcp.WithDescription("Completed workout history, newest first. Each entry includes the exercises performed with every set's reps, weight, and actual rest taken."),
	mcp.WithNumber("limit", mcp.Description("Maximum number of workouts to return. Defaults to all.")),
)

var toolGetWorkoutPlan = mcp.NewTool("get_workout_plan",
	mcp.WithDescription("The user's current weekly workout plan: labelled days with their planned exercises, sets, reps, suggested weights, and rest times."),
)

var toolGetStrengthRecords = mcp.NewTool("get_strength_records",
	mcp.WithDescription("Per-exercise strength records: current max weight, progress since the previous max, the date it was set, and the recent weight trend."),
	mcp.WithString("exercise", mcp.Description("Filter by exercise name (partial match, e.g. 'bench press')")),
)

var toolGetTodaysWorkout = mcp.NewTool("get_todays_workout",
	mcp.WithDescription("Today's planned workout from the weekly plan, and whether a workout has already been completed today. Reports a rest day when the plan has no entry for today."),
)

// --- Tool handlers ---

func (h *handlers) getWorkoutStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	history, err := h.ds.GetCompletedWorkouts(ctx, uid, 0)
	if err != nil {
		h.log.Error("mcp get_workout_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(stats.Compute(history, h.now()))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 0)
	if limit < 0 {
		return mcp.NewToolResultError("limit must be non-negative"), nil
	}
	uid := UserIDFromContext(ctx)

	workouts, err := h.ds.GetCompletedWorkouts(ctx, uid, limit)
	if err != nil {
		h.log.Error("mcp get_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if workouts == nil {
		workouts = []models.CompletedWorkout{}
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkoutPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	p, err := h.ds.GetPlan(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_workout_plan", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if p == nil {
		return mcp.NewToolResultText("No workout plan is saved. The user needs to complete onboarding first."), nil
	}

	result, err := mcp.NewToolResultJSON(p)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getStrengthRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := strings.ToLower(req.GetString("exercise", ""))
	uid := UserIDFromContext(ctx)

	history, err := h.ds.GetCompletedWorkouts(ctx, uid, 0)
	if err != nil {
		h.log.Error("mcp get_strength_records", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	records := stats.Compute(history, h.now()).StrengthProgress
	if filter != "" {
		filtered := map[string]stats.StrengthRecord{}
		for name, rec := range records {
			if strings.Contains(strings.ToLower(name), filter) {
				filtered[name] = rec
			}
		}
		records = filtered
	}

	result, err := mcp.NewToolResultJSON(records)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTodaysWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	p, err := h.ds.GetPlan(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_todays_workout", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if p == nil {
		return mcp.NewToolResultText("No workout plan is saved. The user needs to complete onboarding first."), nil
	}

	day := p.DayFor(h.now())
	if day == nil {
		return mcp.NewToolResultText("Today is a rest day; the plan has no workout scheduled."), nil
	}

	completed, err := h.ds.GetTodaysCompletedWorkout(ctx, uid)
	if err != nil {
		h.log.Warn("mcp get_todays_workout: completion check failed", "error", err)
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"workout":   day,
		"completed": completed != nil,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// --- Resource handlers ---

func (h *handlers) recentWorkouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)

	history, err := h.ds.GetCompletedWorkouts(ctx, uid, 0)
	if err != nil {
		return nil, err
	}

	cutoff := models.LocalDate(h.now().AddDate(0, 0, -14))
	recent := []models.CompletedWorkout{}
	for _, w := range history {
		if w.Date >= cutoff {
			recent = append(recent, w)
		}
	}

	data, err := json.Marshal(recent)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
