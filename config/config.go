package config

import (
	"os"
	"strconv"
	"time"
)

// GetEnv returns the value of an environment variable, or fallback when unset
// or empty.
func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetEnvInt returns an integer environment variable, or fallback when unset
// or unparseable.
func GetEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// GetEnvDuration returns a duration environment variable (e.g. "30s"), or
// fallback when unset or unparseable.
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

// DefaultAdviceSystemPrompt is the system role handed to the advice model.
// Product copy, not pipeline contract: override with ADVICE_SYSTEM_PROMPT.
const DefaultAdviceSystemPrompt = "You are an expert, friendly nutritionist " +
	"specialized in creating complete personalized diets with detailed recipes " +
	"and specific ingredients."

// DefaultAdvicePrompt is the user prompt template for dietary advice. The
// single %s placeholder receives the rendered nutrition summary. Override
// with ADVICE_PROMPT.
const DefaultAdvicePrompt = `You are an expert nutritionist. Carefully analyze the following weekly
nutrition summary, built from food-photo analysis, and design a complete diet
for the next week (7 days) based EXCLUSIVELY on this data, correcting the
nutritional deficits and excesses it shows.

Weekly nutrition summary:
%s

Requirements:
- Every day (Monday to Sunday) must include breakfast, lunch and dinner.
- No dish may repeat across the week; vary proteins, carbohydrates and
  vegetables.
- For each dish, list every ingredient with an exact quantity (grams, units
  or household measures) chosen to correct the detected deficits.
- Keep the diet practical and easy to follow.

IMPORTANT: provide the COMPLETE diet in a single response. Do not defer any
part of it to a follow-up answer.`
