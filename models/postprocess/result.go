// Package postprocess - Face detection results, sorting, and suppression.
package postprocess

import "github.com/nvr-ai/go-retinaface/images"

// NumLandmarks is the number of facial landmark points per face.
const NumLandmarks = 5

// Face represents a single decoded face candidate.
type Face struct {
	// The bounding box of the face.
	Box images.Rect
	// The five facial landmark points, ordered left eye, right eye, nose,
	// left mouth corner, right mouth corner.
	Landmarks [NumLandmarks]images.Point
	// The face-class probability of the candidate.
	Score float32
}
