// Package detector - Top-level face detection pipeline.
package detector

import (
	"context"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-retinaface/inference"
	"github.com/nvr-ai/go-retinaface/models/postprocess"
	"github.com/nvr-ai/go-retinaface/models/retinaface"
)

// Detector wires an inference engine to the RetinaFace decoding pipeline:
// NCHW conversion, forward pass, per-stride proposal decoding, greedy NMS,
// and the final rescale into source-image coordinates.
type Detector struct {
	engine inference.Engine
	model  *retinaface.RetinaFace
}

// New creates a detector on top of an inference engine.
//
// Arguments:
//   - engine: The engine running the network's forward pass. The detector
//     takes ownership; Close releases it.
//   - cfg: The detection configuration.
//
// Returns:
//   - *Detector: The detector instance.
func New(engine inference.Engine, cfg retinaface.Config) *Detector {
	return &Detector{
		engine: engine,
		model:  retinaface.New(cfg),
	}
}

// DefaultSessionConfig returns a session configuration for the shipped
// network, whose graph names its input "data".
//
// Arguments:
//   - modelPath: Path to the ONNX model file.
//   - libraryPath: ONNX Runtime shared library override, empty for the
//     platform default.
//   - useCoreML: Enables the CoreML execution provider.
//
// Returns:
//   - inference.SessionConfig: The session configuration.
func DefaultSessionConfig(modelPath, libraryPath string, useCoreML bool) inference.SessionConfig {
	return inference.SessionConfig{
		ModelPath:   modelPath,
		InputName:   "data",
		LibraryPath: libraryPath,
		UseCoreML:   useCoreML,
	}
}

// NewWithSession creates a detector backed by an ONNX Runtime session for
// the model at cfg.ModelPath, allocating output tensors per the model's
// stride table.
//
// Arguments:
//   - session: The ONNX session configuration. InputWidth/InputHeight are
//     overwritten from cfg so the two cannot disagree.
//   - cfg: The detection configuration.
//
// Returns:
//   - *Detector: The detector instance.
//   - error: An error if the session cannot be created.
func NewWithSession(session inference.SessionConfig, cfg retinaface.Config) (*Detector, error) {
	model := retinaface.New(cfg)
	session.InputWidth = cfg.InputWidth
	session.InputHeight = cfg.InputHeight
	engine, err := inference.NewSession(session, model.OutputSpecs())
	if err != nil {
		return nil, err
	}
	return &Detector{engine: engine, model: model}, nil
}

// Detect runs the full pipeline over one RGBA frame.
//
// The buffer must already be at the network's fixed input resolution (see
// images.ResizeForDetection); a dimension mismatch fails immediately with
// nothing partially processed. Engine failures propagate unchanged. The
// returned faces are in source-image pixel space, landmark coordinates
// unclamped, ordered by descending confidence.
//
// Arguments:
//   - ctx: Bounds the forward pass.
//   - pixels: RGBA bytes, InputWidth*InputHeight*4 long.
//   - scale: The resize factor applied when the source image was fitted
//     into the network input.
//
// Returns:
//   - []postprocess.Face: Detected faces in source-image space.
//   - error: Precondition, tensor-shape, or engine error.
func (d *Detector) Detect(ctx context.Context, pixels []byte, scale float32) ([]postprocess.Face, error) {
	cfg := d.model.Config()
	if len(pixels) != cfg.InputWidth*cfg.InputHeight*4 {
		return nil, errors.Errorf("pixel buffer holds %d bytes, network input %dx%d requires %d",
			len(pixels), cfg.InputWidth, cfg.InputHeight, cfg.InputWidth*cfg.InputHeight*4)
	}

	input := make([]float32, 3*cfg.InputWidth*cfg.InputHeight)
	if err := inference.PrepareInput(pixels, cfg.InputWidth, cfg.InputHeight, input); err != nil {
		return nil, err
	}

	outputs, err := d.engine.Run(ctx, input)
	if err != nil {
		return nil, err
	}

	faces, err := d.model.PostProcess(outputs)
	if err != nil {
		return nil, err
	}
	return retinaface.Rescale(faces, scale, cfg.InputWidth, cfg.InputHeight), nil
}

// Close releases the underlying engine.
func (d *Detector) Close() error {
	return d.engine.Close()
}
