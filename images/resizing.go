// Package images - Detection input preparation.
package images

import (
	"image"
	"image/draw"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// DetectionInput is a fixed-resolution RGBA pixel buffer ready to feed a
// detection network, together with the scale factor that was applied when
// the source image was resized into it. Detected coordinates are divided
// by Scale to map them back into source-image space.
type DetectionInput struct {
	// Pixels is the RGBA byte buffer, Width*Height*4 bytes.
	Pixels []byte
	// Width of the buffer in pixels.
	Width int
	// Height of the buffer in pixels.
	Height int
	// Scale is the resize factor applied to the source image.
	Scale float32
}

// ResizeForDetection fits an image into a width x height RGBA buffer while
// preserving its aspect ratio.
//
// The image is scaled so that it fully fits inside the target resolution,
// anchored at the top-left corner; the remainder of the buffer is left
// black. The returned scale is the factor the source was multiplied by, so
// dividing detector output coordinates by it recovers source coordinates.
//
// Arguments:
//   - img: The source image.
//   - width: Target buffer width in pixels.
//   - height: Target buffer height in pixels.
//
// Returns:
//   - *DetectionInput: The prepared buffer and scale factor.
//   - error: An error for empty images or non-positive dimensions.
func ResizeForDetection(img image.Image, width, height int) (*DetectionInput, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid target dimensions %dx%d", width, height)
	}
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW == 0 || srcH == 0 {
		return nil, errors.New("source image is empty")
	}

	scale := min(float32(width)/float32(srcW), float32(height)/float32(srcH))
	newW := int(float32(srcW) * scale)
	newH := int(float32(srcH) * scale)

	resized := resize.Resize(uint(newW), uint(newH), img, resize.Lanczos3)

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, image.Rect(0, 0, newW, newH), resized, resized.Bounds().Min, draw.Src)

	return &DetectionInput{
		Pixels: canvas.Pix,
		Width:  width,
		Height: height,
		Scale:  scale,
	}, nil
}
