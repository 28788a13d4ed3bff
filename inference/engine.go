// Package inference - Inference engine interface and ONNX Runtime session.
package inference

import (
	"context"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// OutputSpec names one output tensor of a model and its fixed shape.
type OutputSpec struct {
	// Name is the output node name expected by the model graph.
	Name string
	// Shape is the tensor shape, batch first (e.g. [1, C, H, W]).
	Shape []int64
}

// Outputs maps an output name to its tensor, shaped as declared by the
// corresponding OutputSpec.
type Outputs map[string]*tensor.Dense

// Get returns the named output tensor.
//
// Arguments:
//   - name: The output node name.
//
// Returns:
//   - *tensor.Dense: The output tensor.
//   - error: An error if the engine did not produce that output.
func (o Outputs) Get(name string) (*tensor.Dense, error) {
	t, ok := o[name]
	if !ok {
		return nil, errors.Errorf("inference result is missing output %q", name)
	}
	return t, nil
}

// Engine runs a forward pass over a fixed-size normalized image tensor and
// returns the model's named output tensors.
type Engine interface {
	// Run executes the model on a [1,3,H,W] float32 input, R,G,B planes in
	// raw pixel range. Retrieval of the outputs may block while data is
	// copied from an accelerator; the context bounds that wait.
	Run(ctx context.Context, input []float32) (Outputs, error)
	// Close releases the engine's native resources.
	Close() error
}
