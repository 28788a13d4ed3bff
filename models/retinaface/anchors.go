package retinaface

import (
	"github.com/chewxy/math32"
	"github.com/nvr-ai/go-retinaface/images"
)

// GenerateAnchors derives the reference boxes for one feature-map stride
// from base geometry.
//
// For each aspect ratio the base size is reshaped into a rounded
// width/height pair, which each scale then expands into a box centered at
// (baseSize/2, baseSize/2). The result is ordered
// ratioIndex*len(scales)+scaleIndex; the decoder re-derives the same index
// to locate an anchor's score, box, and landmark channel blocks, so the
// ordering is part of the tensor layout contract.
//
// Arguments:
//   - baseSize: The base anchor extent in pixels.
//   - ratios: Anchor aspect ratios, non-empty, positive.
//   - scales: Anchor scale multipliers, positive.
//
// Returns:
//   - []images.Rect: len(ratios)*len(scales) anchors in feature-map-local
//     pixel coordinates.
func GenerateAnchors(baseSize int, ratios, scales []float32) []images.Rect {
	cx := float32(baseSize) / 2
	cy := float32(baseSize) / 2

	anchors := make([]images.Rect, len(ratios)*len(scales))
	for ri, ar := range ratios {
		rw := math32.Round(float32(baseSize) / math32.Sqrt(ar))
		rh := math32.Round(rw * ar)
		for si, s := range scales {
			halfW := rw * s / 2
			halfH := rh * s / 2
			anchors[ri*len(scales)+si] = images.Rect{
				X1: cx - halfW,
				Y1: cy - halfH,
				X2: cx + halfW,
				Y2: cy + halfH,
			}
		}
	}
	return anchors
}
