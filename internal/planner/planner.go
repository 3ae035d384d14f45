// Package planner builds daily workout plans from the fixed workout
// catalog, asking the model to pick and the code to verify.
package planner

import (
	"strings"
)

// catalog lists the workouts a plan may reference. Model output that
// names anything else is discarded.
var catalog = []string{
	"20 Min HIIT Fat Loss - No Repeat Workout",
	"Full Body Strength - Week 1",
	"Morning Yoga Flow",
	"HIIT Fat Burn",
	"Upper Body Power",
	"Core & Abs Crusher",
}

type Exercise struct {
	Name     string `json:"name"`
	Duration string `json:"duration"`
	Reason   string `json:"reason"`
}

type Plan struct {
	Summary           string     `json:"summary"`
	Intensity         string     `json:"intensity"`
	TotalBurnEstimate string     `json:"totalBurnEstimate"`
	Advice            string     `json:"advice"`
	Exercises         []Exercise `json:"exercises"`
}

// DefaultPlan is the single-workout plan used when the model answer
// cannot be salvaged but the upstream call itself succeeded.
func DefaultPlan() Plan {
	return Plan{
		Summary:           "Today's workout plan",
		Intensity:         "moderate",
		TotalBurnEstimate: "400 kcal",
		Advice:            "Exercise regularly and eat enough protein!",
		Exercises: []Exercise{
			{Name: "Morning Yoga Flow", Duration: "20 min", Reason: "Gentle warm-up"},
		},
	}
}

// FallbackPlan is served when plan generation fails outright, so the
// endpoint still answers with something usable.
func FallbackPlan() Plan {
	return Plan{
		Summary:           "Today's workout plan (fallback)",
		Intensity:         "moderate",
		TotalBurnEstimate: "350-450 kcal",
		Advice:            "Exercise gently if you haven't consumed enough energy. Drink plenty of water!",
		Exercises: []Exercise{
			{Name: "Morning Yoga Flow", Duration: "20 min", Reason: "Gentle body warm-up"},
			{Name: "20 Min HIIT Fat Loss - No Repeat Workout", Duration: "20 min", Reason: "Effective fat burning"},
		},
	}
}

// canonicalWorkout resolves a model-chosen name to a catalog entry via
// case-insensitive substring match, or "" when nothing matches.
func canonicalWorkout(name string) string {
	if name == "" {
		return ""
	}
	lower := strings.ToLower(name)
	for _, p := range catalog {
		if strings.Contains(strings.ToLower(p), lower) {
			return p
		}
	}
	return ""
}

var intensities = map[string]bool{"light": true, "moderate": true, "intense": true}

// NormalizePlan validates a parsed model answer against the catalog.
// Unknown workouts are dropped, at most three survive, and every field
// falls back to the default plan's value when missing or invalid. An
// answer with no usable exercises collapses to the default plan.
func NormalizePlan(parsed Plan) Plan {
	plan := DefaultPlan()
	if len(parsed.Exercises) == 0 {
		return plan
	}

	var kept []Exercise
	for _, ex := range parsed.Exercises {
		name := canonicalWorkout(ex.Name)
		if name == "" {
			continue
		}
		if ex.Duration == "" {
			ex.Duration = "20 min"
		}
		if ex.Reason == "" {
			ex.Reason = "Suitable for you"
		}
		ex.Name = name
		kept = append(kept, ex)
		if len(kept) == 3 {
			break
		}
	}
	if len(kept) == 0 {
		return plan
	}
	plan.Exercises = kept

	if parsed.Summary != "" {
		plan.Summary = parsed.Summary
	}
	if intensities[parsed.Intensity] {
		plan.Intensity = parsed.Intensity
	}
	if parsed.TotalBurnEstimate != "" {
		plan.TotalBurnEstimate = parsed.TotalBurnEstimate
	}
	if parsed.Advice != "" {
		plan.Advice = parsed.Advice
	}
	return plan
}
