package library

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/flowdeck-app/flowdeck/log"
	"github.com/gen2brain/heic"
	"golang.org/x/image/draw"

	// Register decoders so image.Decode can handle captured formats
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

const thumbnailQuality = 80

// Thumbnail returns the path of a cached, scaled-down JPEG for a screen,
// generating it on first request. Thumbnails are keyed by the session's
// cache epoch: apply-order recycles filenames, so a new epoch guarantees
// a renamed file never serves the previous occupant's pixels.
func (s *Service) Thumbnail(projectID, filename string, epoch int64) (string, error) {
	srcPath, err := s.ScreenPath(projectID, filename)
	if err != nil {
		return "", err
	}

	cacheDir := filepath.Join(s.cfg.ThumbnailDir(), projectID)
	cachePath := filepath.Join(cacheDir, fmt.Sprintf("%d-%s.jpg", epoch, filename))

	if _, err := os.Stat(cachePath); err == nil {
		return cachePath, nil
	}

	img, err := decodeScreen(srcPath)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", filename, err)
	}

	thumb := scaleToWidth(img, s.cfg.ThumbnailMaxWidth)

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return "", err
	}
	out, err := os.Create(cachePath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if err := jpeg.Encode(out, thumb, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return "", err
	}

	log.Debug().Str("project", projectID).Str("filename", filename).Int64("epoch", epoch).Msg("thumbnail generated")
	return cachePath, nil
}

// InvalidateThumbnails drops a project's cached thumbnails. Safe to call
// even when nothing is cached.
func (s *Service) InvalidateThumbnails(projectID string) {
	dir := filepath.Join(s.cfg.ThumbnailDir(), projectID)
	if err := os.RemoveAll(dir); err != nil {
		log.Warn().Err(err).Str("project", projectID).Msg("failed to clear thumbnail cache")
	}
}

// decodeScreen decodes a screenshot file. HEIC needs its own decoder;
// everything else goes through image.Decode with the registered formats.
func decodeScreen(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".heic" || ext == ".heif" {
		return heic.Decode(f)
	}

	img, _, err := image.Decode(f)
	return img, err
}

// scaleToWidth scales an image down to maxWidth, preserving aspect ratio.
// Images already narrower are returned as-is.
func scaleToWidth(img image.Image, maxWidth int) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() <= maxWidth {
		return img
	}

	height := bounds.Dy() * maxWidth / bounds.Dx()
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
