package library

import (
	"image"
	"testing"
)

func TestScaleToWidth_PreservesAspectRatio(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 800, 600))

	thumb := scaleToWidth(src, 400)
	bounds := thumb.Bounds()
	if bounds.Dx() != 400 {
		t.Errorf("width = %d, want 400", bounds.Dx())
	}
	if bounds.Dy() != 300 {
		t.Errorf("height = %d, want 300", bounds.Dy())
	}
}

func TestScaleToWidth_NarrowImagesUntouched(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 200, 500))

	thumb := scaleToWidth(src, 400)
	if thumb != image.Image(src) {
		t.Error("narrow image should be returned as-is")
	}
}
