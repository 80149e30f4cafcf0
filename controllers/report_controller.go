package controllers

import (
	"errors"
	"net/http"

	"platelog/llm"
	"platelog/logger"
	"platelog/services"
)

// GetReport returns the summed nutrition for the requested period
// (daily, weekly or monthly; defaults to daily).
func GetReport(w http.ResponseWriter, r *http.Request) {
	period, err := services.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := getReports().Report(period)
	if err != nil {
		logger.Error("Failed to compute report", "period", string(period), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute report")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"period":  string(period),
		"summary": summary,
		"text":    services.SummaryText(period, summary),
	})
}

// GetAdvice forwards the period's summary to the advice capability. A
// truncated completion is reported as its own failure rather than returned
// as partial text.
func GetAdvice(w http.ResponseWriter, r *http.Request) {
	period, err := services.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	advice, err := getReports().Advice(r.Context(), period)
	if err != nil {
		if errors.Is(err, llm.ErrTruncated) {
			writeError(w, http.StatusBadGateway, "advice response was truncated, try a shorter period")
			return
		}
		logger.Error("Failed to get dietary advice", "error", err)
		writeError(w, http.StatusBadGateway, "failed to get dietary advice")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"period": string(period),
		"advice": advice,
	})
}
