package logmeal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"platelog/config"
)

const (
	segmentPath     = "/v2/image/segmentation/complete"
	confirmPath     = "/v2/image/confirm/dish"
	nutritionPath   = "/v2/nutrition/recipe/nutritionalInfo"
	ingredientsPath = "/v2/nutrition/recipe/ingredients"
)

// Client talks to the food-recognition service. All calls are bounded by the
// configured HTTP timeout and authorized with a bearer token; a non-2xx
// status or an empty body surfaces as a *ServiceError.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient builds a recognition client from the environment.
func NewClient() *Client {
	return &Client{
		baseURL: config.GetEnv("LOGMEAL_BASE_URL", "https://api.logmeal.com"),
		token:   config.GetEnv("LOGMEAL_API_TOKEN", ""),
		client: &http.Client{
			Timeout: config.GetEnvDuration("HTTP_TIMEOUT", 30*time.Second),
		},
	}
}

// segment uploads an image file as multipart form data and returns the raw
// segmentation payload.
func (c *Client) segment(ctx context.Context, imagePath string) (*segmentationResponse, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", imagePath, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", filepath.Base(imagePath))
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart request: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", imagePath, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to build multipart request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+segmentPath, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.token)

	var out segmentationResponse
	if err := c.do(req, "segmentation", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// confirmDish commits the chosen candidate for a region so the service can
// resolve nutrition for that specific dish.
func (c *Client) confirmDish(ctx context.Context, imageID, dishID, foodItemPosition int) error {
	body := confirmRequest{
		ImageID:          imageID,
		ConfirmedClass:   []int{dishID},
		Source:           []string{"logmeal"},
		FoodItemPosition: []int{foodItemPosition},
	}
	var out confirmResponse
	return c.postJSON(ctx, confirmPath, "dish confirmation", body, &out)
}

// nutritionalInfo fetches the nutrient payload for a confirmed image.
func (c *Client) nutritionalInfo(ctx context.Context, imageID int) (*nutritionResponse, error) {
	var out nutritionResponse
	err := c.postJSON(ctx, nutritionPath, "nutrition lookup", imageIDRequest{ImageID: imageID}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ingredients fetches the ingredient list for a confirmed image.
func (c *Client) ingredients(ctx context.Context, imageID int) (*ingredientsResponse, error) {
	var out ingredientsResponse
	err := c.postJSON(ctx, ingredientsPath, "ingredient lookup", imageIDRequest{ImageID: imageID}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) postJSON(ctx context.Context, path, op string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	return c.do(req, op, out)
}

func (c *Client) do(req *http.Request, op string, out interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return &ServiceError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ServiceError{Op: op, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ServiceError{Op: op, Status: resp.StatusCode, Body: string(body)}
	}
	if len(body) == 0 {
		return &ServiceError{Op: op, Status: resp.StatusCode, Body: "empty response body"}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &ServiceError{Op: op, Status: resp.StatusCode, Body: string(body), Err: err}
	}
	return nil
}
