package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"platelog/config"
	"platelog/llm"
	"platelog/logger"
	"platelog/models"
	"platelog/repository"
)

// ReportPeriod selects how far back a report reaches.
type ReportPeriod string

const (
	PeriodDaily   ReportPeriod = "daily"
	PeriodWeekly  ReportPeriod = "weekly"
	PeriodMonthly ReportPeriod = "monthly"
)

// ParsePeriod maps a request parameter to a period, defaulting to daily.
func ParsePeriod(s string) (ReportPeriod, error) {
	switch ReportPeriod(strings.ToLower(s)) {
	case PeriodDaily, "":
		return PeriodDaily, nil
	case PeriodWeekly:
		return PeriodWeekly, nil
	case PeriodMonthly:
		return PeriodMonthly, nil
	}
	return "", fmt.Errorf("unknown report period %q", s)
}

// ReportService folds logged entries into per-period summaries and turns
// them into dietary advice via the advice capability.
type ReportService struct {
	repo   *repository.EntryRepository
	advice *llm.Client
}

// NewReportService builds a report service over the given store and advice
// client.
func NewReportService(repo *repository.EntryRepository, advice *llm.Client) *ReportService {
	return &ReportService{repo: repo, advice: advice}
}

// Summarize folds entries into a NutritionSummary. An empty input yields the
// zero summary; absent optional nutrients contribute zero to their sums, and
// every summary field is a definite number.
func Summarize(entries []models.FoodEntry) models.NutritionSummary {
	var sum models.NutritionSummary
	orZero := func(v *float64) float64 {
		if v == nil {
			return 0
		}
		return *v
	}
	for _, entry := range entries {
		n := entry.Nutrition
		sum.Calories += n.Calories
		sum.Protein += n.Protein
		sum.Carbohydrates += n.Carbohydrates
		sum.Fat += n.Fat
		sum.Fiber += orZero(n.Fiber)
		sum.Sugar += orZero(n.Sugar)
		sum.Sodium += orZero(n.Sodium)
		sum.Calcium += orZero(n.Calcium)
		sum.Iron += orZero(n.Iron)
		sum.Phosphorus += orZero(n.Phosphorus)
		sum.Potassium += orZero(n.Potassium)
		sum.VitaminA += orZero(n.VitaminA)
		sum.VitaminC += orZero(n.VitaminC)
		sum.EntryCount++
	}
	return sum
}

// Report computes the summary for the given period ending now.
func (s *ReportService) Report(period ReportPeriod) (models.NutritionSummary, error) {
	now := time.Now()
	start := periodStart(period, now)

	entries, err := s.repo.ByRange(start.UnixMilli(), now.UnixMilli())
	if err != nil {
		return models.NutritionSummary{}, err
	}
	return Summarize(entries), nil
}

// Advice renders the period's summary and asks the advice capability for a
// diet plan. A truncated completion propagates llm.ErrTruncated.
func (s *ReportService) Advice(ctx context.Context, period ReportPeriod) (string, error) {
	summary, err := s.Report(period)
	if err != nil {
		return "", err
	}

	systemPrompt := config.GetEnv("ADVICE_SYSTEM_PROMPT", config.DefaultAdviceSystemPrompt)
	template := config.GetEnv("ADVICE_PROMPT", config.DefaultAdvicePrompt)
	userPrompt := fmt.Sprintf(template, SummaryText(period, summary))

	logger.Info("Requesting dietary advice", "period", string(period), "entries", summary.EntryCount)
	return s.advice.Complete(ctx, systemPrompt, userPrompt)
}

// SummaryText renders a summary as the plain-text block handed to the advice
// model and shown in reports.
func SummaryText(period ReportPeriod, sum models.NutritionSummary) string {
	name := map[ReportPeriod]string{
		PeriodDaily:   "Daily",
		PeriodWeekly:  "Weekly",
		PeriodMonthly: "Monthly",
	}[period]

	return fmt.Sprintf(`Nutrition summary (%s):
- Meals logged: %d
- Calories: %.0f kcal
- Protein: %.0f g
- Carbohydrates: %.0f g
- Fat: %.0f g
- Fiber: %.0f g
- Calcium: %.0f mg
- Iron: %.0f mg
- Vitamin C: %.0f mg`,
		name, sum.EntryCount, sum.Calories, sum.Protein, sum.Carbohydrates,
		sum.Fat, sum.Fiber, sum.Calcium, sum.Iron, sum.VitaminC)
}

// periodStart returns the inclusive lower bound of a period ending at now:
// local midnight for daily, seven days back for weekly, one month back for
// monthly.
func periodStart(period ReportPeriod, now time.Time) time.Time {
	switch period {
	case PeriodWeekly:
		return now.AddDate(0, 0, -7)
	case PeriodMonthly:
		return now.AddDate(0, -1, 0)
	default:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}
}
