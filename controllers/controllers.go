package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"sync"

	"platelog/config"
	"platelog/imageprep"
	"platelog/llm"
	"platelog/logger"
	"platelog/logmeal"
	"platelog/repository"
	"platelog/services"
)

var (
	pipelineOnce sync.Once
	pipeline     *logmeal.Pipeline

	reportsOnce sync.Once
	reports     *services.ReportService
)

func getPipeline() *logmeal.Pipeline {
	pipelineOnce.Do(func() {
		cacheDir := config.GetEnv("CACHE_DIR", os.TempDir())
		pipeline = logmeal.NewPipeline(logmeal.NewClient(), imageprep.New(cacheDir))
	})
	return pipeline
}

func getReports() *services.ReportService {
	reportsOnce.Do(func() {
		reports = services.NewReportService(repository.Get(), llm.NewClient())
	})
	return reports
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writePipelineError maps pipeline failures to status codes so clients can
// phrase feedback: validation bugs are 400, "nothing usable" outcomes are
// 422, upstream service failures are 502.
func writePipelineError(w http.ResponseWriter, err error) {
	var validation *logmeal.ValidationError
	var state *logmeal.StateError
	var service *logmeal.ServiceError
	switch {
	case errors.As(err, &validation), errors.As(err, &state):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, logmeal.ErrNoDishDetected),
		errors.Is(err, logmeal.ErrNoNutritionData):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &service):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
