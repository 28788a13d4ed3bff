package retinaface

import (
	"github.com/nvr-ai/go-retinaface/images"
	"github.com/nvr-ai/go-retinaface/models/postprocess"
)

func clamp(v, lo, hi float32) float32 {
	return min(max(v, lo), hi)
}

// Rescale maps faces from network-input pixel space back to source-image
// space.
//
// Rect coordinates are clamped to [0, dimension-1] before dividing by the
// scale factor that was applied when the source image was resized into the
// network input. Landmarks are divided without clamping; they may land
// slightly outside the image, matching the network's reference behavior.
//
// Arguments:
//   - faces: Faces in network-input pixel space. Not mutated.
//   - scale: The resize factor applied during preprocessing.
//   - width: The network input width in pixels.
//   - height: The network input height in pixels.
//
// Returns:
//   - []postprocess.Face: New face values in source-image space.
func Rescale(faces []postprocess.Face, scale float32, width, height int) []postprocess.Face {
	maxX := float32(width - 1)
	maxY := float32(height - 1)

	out := make([]postprocess.Face, len(faces))
	for i, f := range faces {
		r := postprocess.Face{
			Box: images.Rect{
				X1: clamp(f.Box.X1, 0, maxX) / scale,
				Y1: clamp(f.Box.Y1, 0, maxY) / scale,
				X2: clamp(f.Box.X2, 0, maxX) / scale,
				Y2: clamp(f.Box.Y2, 0, maxY) / scale,
			},
			Score: f.Score,
		}
		for k, p := range f.Landmarks {
			r.Landmarks[k] = images.Point{X: p.X / scale, Y: p.Y / scale}
		}
		out[i] = r
	}
	return out
}
