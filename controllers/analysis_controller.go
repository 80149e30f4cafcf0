package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"platelog/config"
	"platelog/logger"
)

// maxUploadMemory bounds the in-memory portion of multipart parsing; larger
// parts spill to disk.
const maxUploadMemory = 8 << 20

// AnalyzeImage accepts a multipart image upload, runs the segmentation step
// and returns the per-region dish candidates for selection.
func AnalyzeImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing image field")
		return
	}
	defer file.Close()

	cacheDir := config.GetEnv("CACHE_DIR", os.TempDir())
	path := filepath.Join(cacheDir, "upload_"+uuid.NewString()+filepath.Ext(header.Filename))
	out, err := os.Create(path)
	if err != nil {
		logger.Error("Failed to store upload", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		logger.Error("Failed to store upload", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	out.Close()
	// The server-side copy exists only to feed the segmentation upload.
	defer os.Remove(path)

	analysis := getPipeline().NewAnalysis()
	result, err := analysis.Segment(r.Context(), path)
	if err != nil {
		logger.Warn("Segmentation failed", "error", err)
		writePipelineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type confirmDishRequest struct {
	ImageID          int `json:"image_id"`
	DishID           int `json:"dish_id"`
	FoodItemPosition int `json:"food_item_position"`
}

// ConfirmDish commits one candidate from a prior segmentation and returns
// the normalized nutrition profile with ingredient names merged in.
func ConfirmDish(w http.ResponseWriter, r *http.Request) {
	var req confirmDishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	analysis, err := getPipeline().ResumeSelection(req.ImageID)
	if err != nil {
		writePipelineError(w, err)
		return
	}

	nutrition, err := analysis.ConfirmAndFetchNutrition(r.Context(), req.DishID, req.FoodItemPosition)
	if err != nil {
		logger.Warn("Dish confirmation failed", "image_id", req.ImageID, "error", err)
		writePipelineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"image_id":  req.ImageID,
		"nutrition": nutrition,
	})
}
