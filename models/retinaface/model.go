// Package retinaface - RetinaFace model architecture contract and decoding.
package retinaface

import (
	"fmt"

	"github.com/nvr-ai/go-retinaface/images"
	"github.com/nvr-ai/go-retinaface/inference"
)

// BaseAnchorSize is the base anchor geometry in pixels shared by every
// feature-map stride of the shipped network.
const BaseAnchorSize = 16

// Score, box-delta, and landmark-delta channel counts per anchor.
const (
	scoreChannels    = 2
	bboxChannels     = 4
	landmarkChannels = 10
)

// StrideConfig describes the anchor geometry of one feature-map stride.
type StrideConfig struct {
	// Stride is the pixel step between adjacent feature-map cells.
	Stride int
	// Ratios are the anchor aspect ratios.
	Ratios []float32
	// Scales are the anchor scale multipliers applied to the base size.
	Scales []float32
}

// NumAnchors returns the number of anchors per feature-map cell for this
// stride.
func (s StrideConfig) NumAnchors() int {
	return len(s.Ratios) * len(s.Scales)
}

// FeatureSize returns the feature-map width and height this stride
// produces for a given network input resolution.
func (s StrideConfig) FeatureSize(inputWidth, inputHeight int) (w, h int) {
	return inputWidth / s.Stride, inputHeight / s.Stride
}

// DefaultStrides returns the stride table of the shipped network. The
// table is the model's fixed architecture contract: three strides, one
// aspect ratio, and a scale pair per stride, giving two anchors per cell
// everywhere.
func DefaultStrides() []StrideConfig {
	return []StrideConfig{
		{Stride: 32, Ratios: []float32{1}, Scales: []float32{32, 16}},
		{Stride: 16, Ratios: []float32{1}, Scales: []float32{8, 4}},
		{Stride: 8, Ratios: []float32{1}, Scales: []float32{2, 1}},
	}
}

// ScoresOutput returns the inference output name carrying the
// classification probabilities for a stride.
func ScoresOutput(stride int) string {
	return fmt.Sprintf("face_rpn_cls_prob_reshape_stride%d", stride)
}

// BBoxOutput returns the inference output name carrying the bounding-box
// regression deltas for a stride.
func BBoxOutput(stride int) string {
	return fmt.Sprintf("face_rpn_bbox_pred_stride%d", stride)
}

// LandmarkOutput returns the inference output name carrying the landmark
// regression deltas for a stride.
func LandmarkOutput(stride int) string {
	return fmt.Sprintf("face_rpn_landmark_pred_stride%d", stride)
}

// Config holds the detection parameters of a RetinaFace model instance.
type Config struct {
	// InputWidth is the fixed network input width in pixels.
	InputWidth int
	// InputHeight is the fixed network input height in pixels.
	InputHeight int
	// ProbThreshold is the minimum face probability for a cell to be
	// decoded into a candidate.
	ProbThreshold float32
	// NMSThreshold is the maximum allowed IoU between two kept faces.
	NMSThreshold float32
	// Strides is the per-stride anchor geometry table. Leave nil for the
	// shipped network's table.
	Strides []StrideConfig
}

// DefaultConfig returns the configuration matching the shipped network:
// 640x640 input, probability threshold 0.75, NMS threshold 0.5.
func DefaultConfig() Config {
	return Config{
		InputWidth:    640,
		InputHeight:   640,
		ProbThreshold: 0.75,
		NMSThreshold:  0.5,
		Strides:       DefaultStrides(),
	}
}

// RetinaFace decodes the raw multi-scale outputs of a RetinaFace network
// into face candidates. Anchors are generated once per stride at
// construction and reused as spatial templates by every decode.
type RetinaFace struct {
	cfg     Config
	anchors [][]images.Rect
}

// New creates a RetinaFace decoder for the given configuration.
//
// Arguments:
//   - cfg: The detection configuration. A nil stride table falls back to
//     DefaultStrides.
//
// Returns:
//   - *RetinaFace: The decoder instance.
func New(cfg Config) *RetinaFace {
	if cfg.Strides == nil {
		cfg.Strides = DefaultStrides()
	}
	anchors := make([][]images.Rect, len(cfg.Strides))
	for i, s := range cfg.Strides {
		anchors[i] = GenerateAnchors(BaseAnchorSize, s.Ratios, s.Scales)
	}
	return &RetinaFace{cfg: cfg, anchors: anchors}
}

// Config returns the configuration the decoder was built with.
func (m *RetinaFace) Config() Config {
	return m.cfg
}

// OutputSpecs returns the name and shape of every output tensor the
// network produces, in stride-table order. Sessions use this to allocate
// output tensors matching the model's fixed architecture.
func (m *RetinaFace) OutputSpecs() []inference.OutputSpec {
	specs := make([]inference.OutputSpec, 0, 3*len(m.cfg.Strides))
	for _, s := range m.cfg.Strides {
		w, h := s.FeatureSize(m.cfg.InputWidth, m.cfg.InputHeight)
		a := s.NumAnchors()
		specs = append(specs,
			inference.OutputSpec{
				Name:  ScoresOutput(s.Stride),
				Shape: []int64{1, int64(scoreChannels * a), int64(h), int64(w)},
			},
			inference.OutputSpec{
				Name:  BBoxOutput(s.Stride),
				Shape: []int64{1, int64(bboxChannels * a), int64(h), int64(w)},
			},
			inference.OutputSpec{
				Name:  LandmarkOutput(s.Stride),
				Shape: []int64{1, int64(landmarkChannels * a), int64(h), int64(w)},
			},
		)
	}
	return specs
}
