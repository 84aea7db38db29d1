package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/models"
	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/plan"
)

// Generator produces and revises weekly workout plans. The HTTP layer depends
// on this interface so tests can swap in a canned generator.
type Generator interface {
	GeneratePlan(ctx context.Context, profile models.UserProfile) (*plan.WorkoutPlan, error)
	ModifyPlan(ctx context.Context, current *plan.WorkoutPlan, request string) (*plan.WorkoutPlan, error)
}

// planSchema is shown to the model verbatim so its output unmarshals straight
// into plan.WorkoutPlan.
const planSchema = `{
  "name": "plan name",
  "duration": "8 weeks",
  "goals": ["primary goal", "secondary goal"],
  "notes": "general guidance",
  "days": [
    {
      "day": "Monday",
      "name": "Push Day",
      "duration": 60,
      "exercises": [
        {
          "name": "Bench Press",
          "sets": 4,
          "reps": "8-10",
          "weight": "60 kg",
          "rest_time": "90 seconds",
          "muscle_groups": ["chest", "triceps"],
          "notes": "optional form cue"
        }
      ]
    }
  ]
}`

// GeneratePlan asks the model for a weekly plan tailored to the profile.
func (c *Client) GeneratePlan(ctx context.Context, profile models.UserProfile) (*plan.WorkoutPlan, error) {
	var sb strings.Builder
	sb.WriteString("You are an expert strength coach. Create a personalized weekly workout plan for this user.\n\n")
	sb.WriteString("User profile:\n")

	profileJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding profile: %w", err)
	}
	sb.Write(profileJSON)

	sb.WriteString("\n\nRules:\n")
	sb.WriteString("1. Schedule workout days on the user's preferred days when given; otherwise spread them sensibly across the week.\n")
	sb.WriteString("2. Suggest starting weights from the user's reported lifts where available; use bodyweight or leave weight empty otherwise.\n")
	sb.WriteString("3. Every exercise needs sets, reps, rest_time and muscle_groups.\n")
	sb.WriteString("4. Respond with ONLY a JSON object matching this schema, no prose and no markdown:\n")
	sb.WriteString(planSchema)

	c.log.Info("generating workout plan", "model", c.model)
	return c.requestPlan(ctx, sb.String())
}

// ModifyPlan asks the model to revise an existing plan per the user's
// request. The current plan is never mutated; a full replacement comes back.
func (c *Client) ModifyPlan(ctx context.Context, current *plan.WorkoutPlan, request string) (*plan.WorkoutPlan, error) {
	currentJSON, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding current plan: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("You are an expert strength coach. Modify the workout plan below according to the user's request, keeping everything they did not ask to change.\n\n")
	sb.WriteString("Current plan:\n")
	sb.Write(currentJSON)
	sb.WriteString("\n\nUser request: ")
	sb.WriteString(request)
	sb.WriteString("\n\nRespond with ONLY the complete modified plan as a JSON object matching this schema, no prose and no markdown:\n")
	sb.WriteString(planSchema)

	c.log.Info("modifying workout plan", "model", c.model)
	return c.requestPlan(ctx, sb.String())
}

// requestPlan runs the prompt and parses the response into a validated plan.
func (c *Client) requestPlan(ctx context.Context, prompt string) (*plan.WorkoutPlan, error) {
	text, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	raw, err := extractJSON(text)
	if err != nil {
		return nil, fmt.Errorf("parsing plan output: %w", err)
	}

	var p plan.WorkoutPlan
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("decoding plan JSON: %w", err)
	}
	if err := validatePlan(&p); err != nil {
		return nil, fmt.Errorf("model produced an invalid plan: %w", err)
	}
	return &p, nil
}

// validatePlan rejects structurally unusable plans before they are saved.
func validatePlan(p *plan.WorkoutPlan) error {
	if len(p.Days) == 0 {
		return fmt.Errorf("plan has no workout days")
	}
	for _, d := range p.Days {
		if d.Day == "" {
			return fmt.Errorf("workout day %q has no day label", d.Name)
		}
		if len(d.Exercises) == 0 {
			return fmt.Errorf("day %q has no exercises", d.Day)
		}
		for _, e := range d.Exercises {
			if e.Name == "" {
				return fmt.Errorf("day %q has an unnamed exercise", d.Day)
			}
			if e.Sets <= 0 {
				return fmt.Errorf("exercise %q has no sets", e.Name)
			}
		}
	}
	return nil
}
