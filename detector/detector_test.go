package detector

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-retinaface/inference"
	"github.com/nvr-ai/go-retinaface/models/retinaface"
)

// fakeEngine implements inference.Engine with canned outputs, capturing
// the NCHW input it was handed.
type fakeEngine struct {
	input   []float32
	outputs inference.Outputs
	err     error
	closed  bool
}

func (f *fakeEngine) Run(_ context.Context, input []float32) (inference.Outputs, error) {
	f.input = make([]float32, len(input))
	copy(f.input, input)
	if f.err != nil {
		return nil, f.err
	}
	return f.outputs, nil
}

func (f *fakeEngine) Close() error {
	f.closed = true
	return nil
}

// testConfig shrinks the default architecture to a 64x64 input so the
// stride-8 feature map is 8x8.
func testConfig() retinaface.Config {
	cfg := retinaface.DefaultConfig()
	cfg.InputWidth = 64
	cfg.InputHeight = 64
	return cfg
}

// zeroOutputs allocates a zeroed inference result set matching the
// model's output specs.
func zeroOutputs(m *retinaface.RetinaFace) inference.Outputs {
	out := make(inference.Outputs)
	for _, spec := range m.OutputSpecs() {
		n := 1
		shape := make([]int, len(spec.Shape))
		for i, d := range spec.Shape {
			shape[i] = int(d)
			n *= int(d)
		}
		out[spec.Name] = tensor.New(
			tensor.WithShape(shape...),
			tensor.WithBacking(make([]float32, n)),
		)
	}
	return out
}

// TestDetectEndToEnd validates the full pipeline over a canned forward
// pass: one firing stride-8 cell decodes, survives suppression, and is
// mapped back into source-image coordinates.
//
// Arguments:
//   - t: The testing context for assertions and error reporting.
func TestDetectEndToEnd(t *testing.T) {
	cfg := testConfig()
	model := retinaface.New(cfg)
	outputs := zeroOutputs(model)

	// Stride 8, large anchor (q=0, 32px box), cell (3,3) of the 8x8 grid.
	// Score plane layout: face probabilities start at plane numAnchors, so
	// the index is (0+2)*64 + 3*8 + 3.
	scores := outputs["face_rpn_cls_prob_reshape_stride8"].Float32s()
	scores[2*64+3*8+3] = 0.9

	engine := &fakeEngine{outputs: outputs}
	d := New(engine, cfg)

	pixels := make([]byte, 64*64*4)
	faces, err := d.Detect(context.Background(), pixels, 0.5)
	require.NoError(t, err)
	require.Len(t, faces, 1)

	// Network-space box (16,16,48,48) divided by the 0.5 resize factor.
	assert.Equal(t, float32(32), faces[0].Box.X1)
	assert.Equal(t, float32(32), faces[0].Box.Y1)
	assert.Equal(t, float32(96), faces[0].Box.X2)
	assert.Equal(t, float32(96), faces[0].Box.Y2)
	assert.Equal(t, float32(0.9), faces[0].Score)
	for _, lm := range faces[0].Landmarks {
		assert.Equal(t, float32(64), lm.X)
		assert.Equal(t, float32(64), lm.Y)
	}
}

// TestDetectConvertsPixelsToPlanes validates that the engine receives
// channel-separated float planes rather than interleaved bytes.
//
// Arguments:
//   - t: The testing context for assertions and error reporting.
func TestDetectConvertsPixelsToPlanes(t *testing.T) {
	cfg := testConfig()
	model := retinaface.New(cfg)
	engine := &fakeEngine{outputs: zeroOutputs(model)}
	d := New(engine, cfg)

	pixels := make([]byte, 64*64*4)
	pixels[0], pixels[1], pixels[2], pixels[3] = 10, 20, 30, 255

	_, err := d.Detect(context.Background(), pixels, 1)
	require.NoError(t, err)
	require.Len(t, engine.input, 3*64*64)

	plane := 64 * 64
	assert.Equal(t, float32(10), engine.input[0])
	assert.Equal(t, float32(20), engine.input[plane])
	assert.Equal(t, float32(30), engine.input[2*plane])
}

// TestDetectRejectsWrongBufferSize validates the pixel-buffer
// precondition: a mismatched buffer fails before the engine runs.
//
// Arguments:
//   - t: The testing context for assertions and error reporting.
func TestDetectRejectsWrongBufferSize(t *testing.T) {
	cfg := testConfig()
	engine := &fakeEngine{}
	d := New(engine, cfg)

	_, err := d.Detect(context.Background(), make([]byte, 100), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pixel buffer")
	assert.Nil(t, engine.input, "engine must not run on a bad buffer")
}

// TestDetectPropagatesEngineError validates that forward-pass failures
// surface unchanged.
//
// Arguments:
//   - t: The testing context for assertions and error reporting.
func TestDetectPropagatesEngineError(t *testing.T) {
	cfg := testConfig()
	engineErr := errors.New("session exploded")
	d := New(&fakeEngine{err: engineErr}, cfg)

	_, err := d.Detect(context.Background(), make([]byte, 64*64*4), 1)
	require.Error(t, err)
	assert.Equal(t, engineErr, err)
}

// TestDetectMissingOutput validates the error when the engine result set
// lacks one of the model's outputs.
//
// Arguments:
//   - t: The testing context for assertions and error reporting.
func TestDetectMissingOutput(t *testing.T) {
	cfg := testConfig()
	model := retinaface.New(cfg)
	outputs := zeroOutputs(model)
	delete(outputs, "face_rpn_cls_prob_reshape_stride16")

	d := New(&fakeEngine{outputs: outputs}, cfg)
	_, err := d.Detect(context.Background(), make([]byte, 64*64*4), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing output")
}

// TestCloseReleasesEngine validates engine ownership.
//
// Arguments:
//   - t: The testing context for assertions and error reporting.
func TestCloseReleasesEngine(t *testing.T) {
	engine := &fakeEngine{}
	d := New(engine, testConfig())
	require.NoError(t, d.Close())
	assert.True(t, engine.closed)
}
