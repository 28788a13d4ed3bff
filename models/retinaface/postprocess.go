package retinaface

import (
	"github.com/nvr-ai/go-retinaface/inference"
	"github.com/nvr-ai/go-retinaface/models/postprocess"
)

// Decode runs the proposal decoder once per configured stride and merges
// the results into a single candidate list in stride-table order. Ordering
// beyond that is not meaningful; PostProcess imposes the final order with
// its sort.
//
// Arguments:
//   - outputs: The inference result set, keyed by the stride-qualified
//     output names of OutputSpecs.
//
// Returns:
//   - []postprocess.Face: All candidates in network-input pixel space.
//   - error: An error when an output is missing or malformed.
func (m *RetinaFace) Decode(outputs inference.Outputs) ([]postprocess.Face, error) {
	var faces []postprocess.Face
	for i, s := range m.cfg.Strides {
		scores, err := outputs.Get(ScoresOutput(s.Stride))
		if err != nil {
			return nil, err
		}
		bboxDeltas, err := outputs.Get(BBoxOutput(s.Stride))
		if err != nil {
			return nil, err
		}
		landmarkDeltas, err := outputs.Get(LandmarkOutput(s.Stride))
		if err != nil {
			return nil, err
		}

		decoded, err := DecodeStride(m.anchors[i], s.Stride, scores, bboxDeltas, landmarkDeltas, m.cfg.ProbThreshold)
		if err != nil {
			return nil, err
		}
		faces = append(faces, decoded...)
	}
	return faces, nil
}

// PostProcess decodes all strides and suppresses overlapping candidates,
// returning the surviving faces in descending-confidence order, still in
// network-input pixel space. Rescale maps them back to source-image
// coordinates.
//
// Arguments:
//   - outputs: The inference result set.
//
// Returns:
//   - []postprocess.Face: Kept faces, highest score first.
//   - error: An error when an output is missing or malformed.
func (m *RetinaFace) PostProcess(outputs inference.Outputs) ([]postprocess.Face, error) {
	faces, err := m.Decode(outputs)
	if err != nil {
		return nil, err
	}
	return postprocess.ApplyGreedyNMS(faces, m.cfg.NMSThreshold), nil
}
