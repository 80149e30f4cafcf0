package logmeal

import (
	"context"
	"os"
	"time"

	"platelog/imageprep"
	"platelog/logger"
	"platelog/models"
)

// State is the position of an analysis in the three-call remote workflow.
type State int

const (
	StateIdle State = iota
	StateSegmenting
	StateAwaitingSelection
	StateConfirming
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSegmenting:
		return "segmenting"
	case StateAwaitingSelection:
		return "awaiting_selection"
	case StateConfirming:
		return "confirming"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// confirmSettleDelay gives the service time to register a confirmation before
// the nutrition and ingredient lookups are issued.
const confirmSettleDelay = 500 * time.Millisecond

// Pipeline drives the remote recognition workflow for one image: preprocess
// and upload, surface dish candidates, then confirm a selection and fetch its
// nutrition. Each remote call is attempted once per invocation; retry is the
// caller's decision.
type Pipeline struct {
	client      *Client
	prep        *imageprep.Preprocessor
	settleDelay time.Duration
}

// NewPipeline builds a pipeline over the given client and preprocessor.
func NewPipeline(client *Client, prep *imageprep.Preprocessor) *Pipeline {
	return &Pipeline{
		client:      client,
		prep:        prep,
		settleDelay: confirmSettleDelay,
	}
}

// Analysis threads the workflow state through each step explicitly, so an
// abandoned or retried invocation never leaves partially updated shared
// state behind.
type Analysis struct {
	pipeline *Pipeline

	State  State
	Result *SegmentationResult
}

// NewAnalysis starts a fresh analysis in the idle state.
func (p *Pipeline) NewAnalysis() *Analysis {
	return &Analysis{pipeline: p, State: StateIdle}
}

// ResumeSelection reconstructs an analysis that already has a segmentation
// for the given image id, positioned at the selection step. Used when the
// selection arrives in a later request than the segmentation.
func (p *Pipeline) ResumeSelection(imageID int) (*Analysis, error) {
	if imageID <= 0 {
		return nil, &ValidationError{Field: "imageId", Value: imageID}
	}
	return &Analysis{
		pipeline: p,
		State:    StateAwaitingSelection,
		Result:   &SegmentationResult{ImageID: imageID},
	}, nil
}

// Segment preprocesses the image at path, uploads it, and normalizes the
// response. On success the analysis holds the candidate sets and awaits a
// selection; a result with no usable segment fails with ErrNoDishDetected.
func (a *Analysis) Segment(ctx context.Context, imagePath string) (*SegmentationResult, error) {
	if a.State != StateIdle {
		return nil, &StateError{Op: "segment", State: a.State}
	}
	a.State = StateSegmenting

	upload, err := a.pipeline.prep.Prepare(imagePath)
	if err != nil {
		a.State = StateFailed
		return nil, err
	}
	if upload != imagePath {
		// The compressed copy exists only for this upload.
		defer func() {
			if err := os.Remove(upload); err != nil {
				logger.Warn("Failed to remove compressed copy", "path", upload, "error", err)
			}
		}()
	}

	raw, err := a.pipeline.client.segment(ctx, upload)
	if err != nil {
		a.State = StateFailed
		return nil, err
	}

	result := normalizeSegmentation(raw)
	if result == nil || len(result.Segments) == 0 {
		a.State = StateFailed
		return nil, ErrNoDishDetected
	}

	logger.Info("Image segmented", "image_id", result.ImageID, "segments", len(result.Segments))
	a.Result = result
	a.State = StateAwaitingSelection
	return result, nil
}

// ConfirmAndFetchNutrition commits the selected candidate and retrieves its
// nutrition profile and ingredient names. The identifiers must all be
// positive; they come from a prior successful segmentation, so a non-positive
// value is a caller bug and fails before any network call. A failed
// ingredient lookup degrades to an empty list; a failed nutrition lookup
// fails the step.
func (a *Analysis) ConfirmAndFetchNutrition(ctx context.Context, dishID, foodItemPosition int) (*models.NutritionData, error) {
	if a.State != StateAwaitingSelection {
		return nil, &StateError{Op: "confirm", State: a.State}
	}

	imageID := 0
	if a.Result != nil {
		imageID = a.Result.ImageID
	}
	if imageID <= 0 {
		return nil, &ValidationError{Field: "imageId", Value: imageID}
	}
	if dishID <= 0 {
		return nil, &ValidationError{Field: "dishId", Value: dishID}
	}
	if foodItemPosition <= 0 {
		return nil, &ValidationError{Field: "foodItemPosition", Value: foodItemPosition}
	}

	a.State = StateConfirming
	p := a.pipeline

	if err := p.client.confirmDish(ctx, imageID, dishID, foodItemPosition); err != nil {
		a.State = StateFailed
		return nil, err
	}
	logger.Info("Dish confirmed", "image_id", imageID, "dish_id", dishID, "position", foodItemPosition)

	// Let the server-side confirmation settle before querying its results.
	if p.settleDelay > 0 {
		select {
		case <-ctx.Done():
			a.State = StateFailed
			return nil, ctx.Err()
		case <-time.After(p.settleDelay):
		}
	}

	var ingredients []string
	if ingResp, err := p.client.ingredients(ctx, imageID); err != nil {
		// Non-fatal: the profile is still usable without ingredient names.
		logger.Warn("Ingredient lookup failed, continuing without ingredients",
			"image_id", imageID, "error", err)
	} else {
		ingredients = ingredientNames(ingResp)
	}

	nutResp, err := p.client.nutritionalInfo(ctx, imageID)
	if err != nil {
		a.State = StateFailed
		return nil, err
	}
	if !hasNutritionData(nutResp) {
		a.State = StateFailed
		return nil, ErrNoNutritionData
	}

	data := normalizeNutrition(nutResp)
	data.Ingredients = ingredients

	logger.Info("Nutrition retrieved", "image_id", imageID,
		"calories", data.Calories, "ingredients", len(ingredients))
	a.State = StateComplete
	return &data, nil
}
