package inference

import (
	"context"
	"os"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"gorgonia.org/tensor"
)

// SessionConfig configures an ONNX Runtime session.
type SessionConfig struct {
	// ModelPath is the path to the ONNX model file.
	ModelPath string
	// InputName is the input node name expected by the model graph.
	InputName string
	// InputWidth is the fixed input width in pixels.
	InputWidth int
	// InputHeight is the fixed input height in pixels.
	InputHeight int
	// LibraryPath optionally overrides the ONNX Runtime shared library
	// location; empty falls back to the platform default.
	LibraryPath string
	// IntraOpThreads parallelizes execution within graph nodes; 0 keeps
	// the runtime default.
	IntraOpThreads int
	// InterOpThreads parallelizes execution across independent graph
	// nodes; 0 keeps the runtime default.
	InterOpThreads int
	// UseCoreML enables the CoreML execution provider on Apple hardware.
	UseCoreML bool
}

// Session is an Engine backed by an ONNX Runtime advanced session with
// preallocated input and output tensors.
type Session struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	outputs []*ort.Tensor[float32]
	specs   []OutputSpec
}

// NewSession loads an ONNX model and binds fixed-shape input and output
// tensors for inference.
//
// Order of operations:
//  1. Library path check: ensures the native runtime is accessible.
//  2. Environment setup: prepares ONNX Runtime internals once per process.
//  3. Tensor allocation: fixed-shape buffers for the input and every
//     declared output.
//  4. Session options: threading and graph optimization, plus execution
//     providers when configured.
//  5. Session creation: loads the model and binds the tensors.
//
// Arguments:
//   - cfg: The session configuration.
//   - outputs: The name and shape of every output tensor the model
//     produces.
//
// Returns:
//   - *Session: The runnable inference session.
//   - error: An error if the native session cannot be created.
func NewSession(cfg SessionConfig, outputs []OutputSpec) (*Session, error) {
	libPath := cfg.LibraryPath
	if libPath == "" {
		libPath = GetSharedLibPath()
	}
	if _, err := os.Stat(libPath); os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "ONNX Runtime library not found at %s", libPath)
	}

	ort.SetSharedLibraryPath(libPath)
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, errors.Wrap(err, "error initializing ORT environment")
		}
	}

	inputTensor, err := ort.NewEmptyTensor[float32](
		ort.NewShape(1, 3, int64(cfg.InputHeight), int64(cfg.InputWidth)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "error creating input tensor")
	}

	outputTensors := make([]*ort.Tensor[float32], 0, len(outputs))
	outputNames := make([]string, 0, len(outputs))
	destroyAll := func() {
		inputTensor.Destroy()
		for _, t := range outputTensors {
			t.Destroy()
		}
	}
	for _, spec := range outputs {
		t, err := ort.NewEmptyTensor[float32](ort.NewShape(spec.Shape...))
		if err != nil {
			destroyAll()
			return nil, errors.Wrapf(err, "error creating output tensor %q", spec.Name)
		}
		outputTensors = append(outputTensors, t)
		outputNames = append(outputNames, spec.Name)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		destroyAll()
		return nil, errors.Wrap(err, "error creating ORT session options")
	}
	defer options.Destroy()

	options.SetIntraOpNumThreads(cfg.IntraOpThreads)
	options.SetInterOpNumThreads(cfg.InterOpThreads)
	options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended)

	if cfg.UseCoreML {
		if err := options.AppendExecutionProviderCoreML(0); err != nil {
			destroyAll()
			return nil, errors.Wrap(err, "error enabling CoreML")
		}
	}

	arbitraryOutputs := make([]ort.ArbitraryTensor, len(outputTensors))
	for i, t := range outputTensors {
		arbitraryOutputs[i] = t
	}

	session, err := ort.NewAdvancedSession(
		cfg.ModelPath,
		[]string{cfg.InputName},
		outputNames,
		[]ort.ArbitraryTensor{inputTensor},
		arbitraryOutputs,
		options,
	)
	if err != nil {
		destroyAll()
		return nil, errors.Wrap(err, "error creating ORT session")
	}

	return &Session{
		session: session,
		input:   inputTensor,
		outputs: outputTensors,
		specs:   outputs,
	}, nil
}

// Run copies the input planes into the bound input tensor, executes the
// model, and snapshots every output into a shaped tensor view.
//
// Arguments:
//   - ctx: Bounds the call; checked before the native run starts.
//   - input: [1,3,H,W] float32 data, length must match the bound tensor.
//
// Returns:
//   - Outputs: Output name to shaped tensor.
//   - error: The runtime error, propagated unchanged apart from wrapping.
func (s *Session) Run(ctx context.Context, input []float32) (Outputs, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	dst := s.input.GetData()
	if len(input) != len(dst) {
		return nil, errors.Errorf("input tensor holds %d floats, got %d", len(dst), len(input))
	}
	copy(dst, input)

	if err := s.session.Run(); err != nil {
		return nil, errors.Wrap(err, "ORT session run failed")
	}

	out := make(Outputs, len(s.specs))
	for i, spec := range s.specs {
		src := s.outputs[i].GetData()
		buf := make([]float32, len(src))
		copy(buf, src)

		shape := make([]int, len(spec.Shape))
		for j, d := range spec.Shape {
			shape[j] = int(d)
		}
		out[spec.Name] = tensor.New(tensor.WithShape(shape...), tensor.WithBacking(buf))
	}
	return out, nil
}

// Close releases the native session and its bound tensors.
func (s *Session) Close() error {
	if s.input != nil {
		s.input.Destroy()
		s.input = nil
	}
	for _, t := range s.outputs {
		t.Destroy()
	}
	s.outputs = nil
	if s.session != nil {
		if err := s.session.Destroy(); err != nil {
			return errors.Wrap(err, "error destroying ORT session")
		}
		s.session = nil
	}
	return nil
}
