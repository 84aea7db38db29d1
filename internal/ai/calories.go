package ai

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Rushil-19-blr/muscle-mind-motion-track-84/internal/models"
)

// Calorie estimates outside this range are treated as hallucinations and
// replaced with the fallback formula.
const (
	minCalories = 50
	maxCalories = 1500
)

// EstimateCalories asks the model for a calories-burned figure for the
// finished workout. Any failure, including an implausible answer, falls back
// to FallbackCalories so the caller always gets a number.
func (c *Client) EstimateCalories(ctx context.Context, w models.CompletedWorkout, profile models.UserProfile) (int, error) {
	prompt := caloriePrompt(w, profile)

	text, err := c.generate(ctx, prompt)
	if err != nil {
		c.log.Warn("calorie estimate request failed, using fallback", "error", err)
		return FallbackCalories(w.Duration, w.TotalVolume, profile.WeightKg()), nil
	}

	kcal, err := parseCalories(text)
	if err != nil || kcal < minCalories || kcal > maxCalories {
		c.log.Warn("implausible calorie estimate, using fallback", "raw", strings.TrimSpace(text))
		return FallbackCalories(w.Duration, w.TotalVolume, profile.WeightKg()), nil
	}
	return kcal, nil
}

func caloriePrompt(w models.CompletedWorkout, profile models.UserProfile) string {
	var sb strings.Builder
	sb.WriteString("As a fitness expert, estimate the calories burned for this workout session. Be precise and realistic.\n\n")

	fmt.Fprintf(&sb, "User Information:\n- Weight: %.0fkg\n", profile.WeightKg())
	if profile.Age != "" {
		fmt.Fprintf(&sb, "- Age: %s\n", profile.Age)
	}
	if profile.Gender != "" {
		fmt.Fprintf(&sb, "- Gender: %s\n", profile.Gender)
	}

	fmt.Fprintf(&sb, "\nWorkout Details:\n- Duration: %d minutes\n- Total Volume: %.1fkg\n- Exercises performed: %d\n",
		w.Duration, w.TotalVolume, len(w.Exercises))

	sb.WriteString("\nExercise Breakdown:\n")
	for _, ex := range w.Exercises {
		var reps int
		var volume float64
		for _, s := range ex.Sets {
			reps += s.Reps
			volume += s.Volume()
		}
		fmt.Fprintf(&sb, "- %s: %d sets, %d total reps, %.1fkg volume, muscle groups: %s\n",
			ex.Name, len(ex.Sets), reps, volume, strings.Join(ex.MuscleGroups, ", "))
	}

	sb.WriteString("\nConsider muscle groups worked, intensity relative to body weight, rest periods, and duration.\n")
	sb.WriteString("Provide ONLY a single number representing the estimated calories burned. No explanation, just the number.\n")
	return sb.String()
}

// parseCalories reads the first number in the model's answer, so a ranged
// reply like "350-400 kcal" yields 350 rather than the runs mashed together.
func parseCalories(text string) (int, error) {
	start := -1
	for i := 0; i < len(text); i++ {
		if text[i] >= '0' && text[i] <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return strconv.Atoi(text[start:i])
		}
	}
	if start >= 0 {
		return strconv.Atoi(text[start:])
	}
	return 0, fmt.Errorf("no number in calorie output %q", strings.TrimSpace(text))
}

// FallbackCalories is a simple strength-training estimate used when the model
// is unavailable or answers nonsense: a base rate of 6 kcal/min scaled by body
// weight, with an intensity bonus from volume relative to body weight (capped
// at 2x).
func FallbackCalories(durationMin int, totalVolume, weightKg float64) int {
	const baseRate = 6
	intensity := math.Min(totalVolume/(weightKg*100), 2)
	return int(math.Round(float64(durationMin) * baseRate * (weightKg / 70) * (1 + intensity)))
}
