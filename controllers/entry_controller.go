package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"platelog/logger"
	"platelog/models"
	"platelog/repository"
)

type createEntryRequest struct {
	Timestamp      int64                `json:"timestamp,omitempty"`
	ImageURI       string               `json:"image_uri"`
	Nutrition      models.NutritionData `json:"nutrition"`
	DishName       *string              `json:"dish_name,omitempty"`
	FoodType       *string              `json:"food_type,omitempty"`
	FoodGroups     []string             `json:"food_groups,omitempty"`
	Recipes        []string             `json:"recipes,omitempty"`
	MealEstimation *string              `json:"meal_estimation,omitempty"`
}

// CreateEntry saves a confirmed analysis as a FoodEntry and returns the
// assigned id.
func CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ImageURI == "" {
		writeError(w, http.StatusBadRequest, "image_uri is required")
		return
	}

	entry := models.FoodEntry{
		Timestamp:      req.Timestamp,
		ImageURI:       req.ImageURI,
		Nutrition:      req.Nutrition,
		DishName:       req.DishName,
		FoodType:       req.FoodType,
		FoodGroups:     marshalLabelList(req.FoodGroups),
		Recipes:        marshalLabelList(req.Recipes),
		MealEstimation: req.MealEstimation,
	}

	id, err := repository.Get().Insert(&entry)
	if err != nil {
		logger.Error("Failed to save food entry", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save entry")
		return
	}

	logger.Info("Food entry saved", "id", id, "calories", entry.Nutrition.Calories)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"id": id})
}

// GetEntries lists entries, newest first. `day` narrows to one calendar day,
// `start`+`end` to a timestamp range; both are epoch milliseconds.
func GetEntries(w http.ResponseWriter, r *http.Request) {
	repo := repository.Get()
	q := r.URL.Query()

	var (
		entries []models.FoodEntry
		err     error
	)
	switch {
	case q.Get("day") != "":
		var day int64
		if day, err = strconv.ParseInt(q.Get("day"), 10, 64); err != nil {
			writeError(w, http.StatusBadRequest, "invalid day timestamp")
			return
		}
		entries, err = repo.ByDay(day)
	case q.Get("start") != "" || q.Get("end") != "":
		var start, end int64
		if start, err = strconv.ParseInt(q.Get("start"), 10, 64); err != nil {
			writeError(w, http.StatusBadRequest, "invalid start timestamp")
			return
		}
		if end, err = strconv.ParseInt(q.Get("end"), 10, 64); err != nil {
			writeError(w, http.StatusBadRequest, "invalid end timestamp")
			return
		}
		entries, err = repo.ByRange(start, end)
	default:
		entries, err = repo.All()
	}
	if err != nil {
		logger.Error("Failed to query food entries", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to query entries")
		return
	}

	if entries == nil {
		entries = []models.FoodEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// GetEntry returns one entry by id.
func GetEntry(w http.ResponseWriter, r *http.Request) {
	id, err := entryID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	entry, err := repository.Get().ByID(id)
	if err != nil {
		logger.Error("Failed to query food entry", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to query entry")
		return
	}
	if entry == nil {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// DeleteEntry removes one entry by id.
func DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := entryID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	if err := repository.Get().Delete(id); err != nil {
		logger.Error("Failed to delete food entry", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete entry")
		return
	}
	logger.Info("Food entry deleted", "id", id)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// DeleteAllEntries clears the log.
func DeleteAllEntries(w http.ResponseWriter, r *http.Request) {
	if err := repository.Get().DeleteAll(); err != nil {
		logger.Error("Failed to delete food entries", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete entries")
		return
	}
	logger.Info("All food entries deleted")
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func entryID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "entry_id"), 10, 32)
	return uint(id), err
}

func marshalLabelList(labels []string) *string {
	if len(labels) == 0 {
		return nil
	}
	b, err := json.Marshal(labels)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}
