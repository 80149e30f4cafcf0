package imageprep

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"

	"platelog/logger"
)

const (
	// maxUploadBytes is the upload ceiling of the recognition service.
	maxUploadBytes = 1 << 20
	// maxDimension bounds the downsampled image: halving stops once either
	// halved dimension would drop below it.
	maxDimension = 1920

	startQuality = 85
	minQuality   = 20
	qualityStep  = 10
)

// Preprocessor shrinks source images under the recognition service's upload
// limit. Results are written to cacheDir; sources already under the limit
// pass through untouched.
type Preprocessor struct {
	cacheDir string
}

// New creates a preprocessor writing compressed files to cacheDir.
func New(cacheDir string) *Preprocessor {
	return &Preprocessor{cacheDir: cacheDir}
}

// Prepare returns a path to an upload-ready version of the image at path.
// Images at or under the size limit are returned as-is. Larger images are
// downsampled by the largest power of two that keeps both halved dimensions
// at or above maxDimension, then re-encoded as JPEG stepping the quality down
// from 85 until the limit is met or quality reaches 20. Whatever exists at
// that point is accepted. If the image cannot be decoded at all, the original
// path is returned unchanged rather than failing the caller.
func (p *Preprocessor) Prepare(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat image %s: %w", path, err)
	}
	if info.Size() <= maxUploadBytes {
		return path, nil
	}

	width, height, err := decodeBounds(path)
	if err != nil {
		logger.Warn("Could not decode image bounds, uploading original", "path", path, "error", err)
		return path, nil
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		logger.Warn("Could not decode image, uploading original", "path", path, "error", err)
		return path, nil
	}

	factor := sampleFactor(width, height)
	if factor > 1 {
		img = imaging.Resize(img, width/factor, height/factor, imaging.Lanczos)
	}

	// The downsampled buffer is reused across quality attempts; re-decoding
	// the source each round would change nothing observable.
	var buf bytes.Buffer
	quality := startQuality
	for {
		buf.Reset()
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			logger.Warn("JPEG encode failed, uploading original", "path", path, "error", err)
			return path, nil
		}
		if buf.Len() <= maxUploadBytes || quality-qualityStep < minQuality {
			break
		}
		quality -= qualityStep
	}

	out := filepath.Join(p.cacheDir, "compressed_"+uuid.NewString()+".jpg")
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write compressed image: %w", err)
	}

	logger.Debug("Image compressed for upload", "path", path, "out", out,
		"factor", factor, "quality", quality, "bytes", buf.Len())
	return out, nil
}

// decodeBounds reads only the image header, no pixel buffer.
func decodeBounds(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("invalid image dimensions %dx%d", cfg.Width, cfg.Height)
	}
	return cfg.Width, cfg.Height, nil
}

// sampleFactor returns the largest power of two such that both half
// dimensions divided by it stay at or above maxDimension.
func sampleFactor(width, height int) int {
	factor := 1
	if width > maxDimension || height > maxDimension {
		halfWidth := width / 2
		halfHeight := height / 2
		for halfWidth/factor >= maxDimension && halfHeight/factor >= maxDimension {
			factor *= 2
		}
	}
	return factor
}
