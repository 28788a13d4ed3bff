package retinaface

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-retinaface/images"
	"github.com/nvr-ai/go-retinaface/models/postprocess"
)

// featureMap is a validated view over one stride's output tensor: the flat
// channel-major float32 buffer plus the spatial grid it covers.
type featureMap struct {
	data []float32
	w, h int
}

// viewFeatureMap checks that a stride output tensor carries batch 1,
// exactly wantChannels channels, and a backing buffer matching its shape,
// then exposes the flat buffer. Any mismatch is a precondition violation
// and fails fast rather than risking an out-of-bounds or garbage read.
func viewFeatureMap(t *tensor.Dense, wantChannels int, name string) (featureMap, error) {
	if t.Dtype() != tensor.Float32 {
		return featureMap{}, errors.Errorf("output %s: want float32 data, got %v", name, t.Dtype())
	}
	shape := t.Shape()
	if len(shape) != 4 || shape[0] != 1 {
		return featureMap{}, errors.Errorf("output %s: want shape (1,C,H,W), got %v", name, shape)
	}
	if shape[1] != wantChannels {
		return featureMap{}, errors.Errorf("output %s: want %d channels, got %d", name, wantChannels, shape[1])
	}
	data := t.Float32s()
	if len(data) != wantChannels*shape[2]*shape[3] {
		return featureMap{}, errors.Errorf("output %s: buffer holds %d floats, shape %v requires %d",
			name, len(data), shape, wantChannels*shape[2]*shape[3])
	}
	return featureMap{data: data, w: shape[3], h: shape[2]}, nil
}

// DecodeStride walks one stride's feature-map grid and applies
// anchor-relative regression to every cell whose face probability clears
// the threshold.
//
// The tensor layout contract is strict and channel-major:
//   - scores: [background x numAnchors, face x numAnchors] planes, so the
//     face plane of anchor q sits at channel q+numAnchors;
//   - box deltas: four sequential planes (dx, dy, dw, dh) per anchor,
//     starting at channel q*4;
//   - landmark deltas: ten sequential planes per anchor, starting at
//     channel q*10.
//
// The anchor geometry is reused as a spatial template: cell (i, j) shifts
// the anchor by (j*stride, i*stride) and decodes around the shifted
// center. Landmark decoding applies the (extent+1) bias the network was
// trained with, which differs from the box-decode formula on purpose.
//
// Arguments:
//   - anchors: The stride's anchors in GenerateAnchors order.
//   - stride: The pixel step between adjacent grid cells.
//   - scores: Classification tensor, shape (1, 2*numAnchors, h, w).
//   - bboxDeltas: Box regression tensor, shape (1, 4*numAnchors, h, w).
//   - landmarkDeltas: Landmark tensor, shape (1, 10*numAnchors, h, w).
//   - probThreshold: Minimum face probability for a cell to be decoded.
//
// Returns:
//   - []postprocess.Face: Candidates in network-input pixel space.
//   - error: An error when any tensor violates the layout contract.
func DecodeStride(
	anchors []images.Rect,
	stride int,
	scores, bboxDeltas, landmarkDeltas *tensor.Dense,
	probThreshold float32,
) ([]postprocess.Face, error) {
	numAnchors := len(anchors)

	sc, err := viewFeatureMap(scores, scoreChannels*numAnchors, ScoresOutput(stride))
	if err != nil {
		return nil, err
	}
	bb, err := viewFeatureMap(bboxDeltas, bboxChannels*numAnchors, BBoxOutput(stride))
	if err != nil {
		return nil, err
	}
	lm, err := viewFeatureMap(landmarkDeltas, landmarkChannels*numAnchors, LandmarkOutput(stride))
	if err != nil {
		return nil, err
	}
	if bb.w != sc.w || bb.h != sc.h || lm.w != sc.w || lm.h != sc.h {
		return nil, errors.Errorf("stride %d outputs disagree on grid size: scores %dx%d, bbox %dx%d, landmarks %dx%d",
			stride, sc.w, sc.h, bb.w, bb.h, lm.w, lm.h)
	}

	w, h := sc.w, sc.h
	plane := w * h

	var faces []postprocess.Face
	for q := 0; q < numAnchors; q++ {
		anchor := anchors[q]
		aw := anchor.Width()
		ah := anchor.Height()

		scoreBase := (q + numAnchors) * plane
		boxBase := q * bboxChannels * plane
		lmBase := q * landmarkChannels * plane

		for i := 0; i < h; i++ {
			for j := 0; j < w; j++ {
				cell := i*w + j
				score := sc.data[scoreBase+cell]
				if score < probThreshold {
					continue
				}

				// Anchor template shifted to this grid cell.
				cx := anchor.X1 + float32(j*stride) + aw/2
				cy := anchor.Y1 + float32(i*stride) + ah/2

				dx := bb.data[boxBase+cell]
				dy := bb.data[boxBase+plane+cell]
				dw := bb.data[boxBase+2*plane+cell]
				dh := bb.data[boxBase+3*plane+cell]

				pbCx := cx + aw*dx
				pbCy := cy + ah*dy
				pbW := aw * math32.Exp(dw)
				pbH := ah * math32.Exp(dh)

				face := postprocess.Face{
					Box: images.Rect{
						X1: pbCx - pbW/2,
						Y1: pbCy - pbH/2,
						X2: pbCx + pbW/2,
						Y2: pbCy + pbH/2,
					},
					Score: score,
				}
				for k := 0; k < postprocess.NumLandmarks; k++ {
					face.Landmarks[k] = images.Point{
						X: cx + (aw+1)*lm.data[lmBase+(2*k)*plane+cell],
						Y: cy + (ah+1)*lm.data[lmBase+(2*k+1)*plane+cell],
					}
				}
				faces = append(faces, face)
			}
		}
	}
	return faces, nil
}
