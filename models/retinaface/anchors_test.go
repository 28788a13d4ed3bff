package retinaface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGenerateAnchorsCountInvariant validates that the generator returns
// exactly len(ratios)*len(scales) anchors for arbitrary configurations.
//
// Arguments:
//   - t: The testing context for assertions and error reporting.
func TestGenerateAnchorsCountInvariant(t *testing.T) {
	cases := []struct {
		name   string
		ratios []float32
		scales []float32
	}{
		{"single ratio, scale pair", []float32{1}, []float32{32, 16}},
		{"single ratio, single scale", []float32{1}, []float32{2}},
		{"two ratios, three scales", []float32{0.5, 1}, []float32{8, 4, 2}},
		{"three ratios, two scales", []float32{0.5, 1, 2}, []float32{4, 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			anchors := GenerateAnchors(BaseAnchorSize, tc.ratios, tc.scales)
			assert.Len(t, anchors, len(tc.ratios)*len(tc.scales))
		})
	}
}

// TestGenerateAnchorsIndexOrder validates the ratio-major indexing,
// anchors[ratio*len(scales)+scale], which the decoder relies on to locate
// channel blocks.
//
// Arguments:
//   - t: The testing context for assertions and error reporting.
func TestGenerateAnchorsIndexOrder(t *testing.T) {
	scales := []float32{4, 1}
	anchors := GenerateAnchors(BaseAnchorSize, []float32{1, 2}, scales)
	require.Len(t, anchors, 4)

	// Within one ratio, a larger scale means a strictly larger anchor, so
	// index ratio*S+0 must outsize index ratio*S+1.
	for ri := 0; ri < 2; ri++ {
		larger := anchors[ri*len(scales)]
		smaller := anchors[ri*len(scales)+1]
		assert.Greater(t, larger.Width(), smaller.Width(),
			"scale order within ratio %d", ri)
	}

	// Ratio 2 makes anchors taller than wide; ratio 1 keeps them square.
	assert.Equal(t, anchors[0].Width(), anchors[0].Height(), "ratio 1 anchor should be square")
	assert.Greater(t, anchors[2].Height(), anchors[2].Width(), "ratio 2 anchor should be tall")
}

// TestGenerateAnchorsGeometry validates the exact geometry of the shipped
// network's stride-32 anchors: base 16, ratio 1, scales 32 and 16 give
// boxes of side 512 and 256 centered at (8, 8).
//
// Arguments:
//   - t: The testing context for assertions and error reporting.
func TestGenerateAnchorsGeometry(t *testing.T) {
	anchors := GenerateAnchors(BaseAnchorSize, []float32{1}, []float32{32, 16})
	require.Len(t, anchors, 2)

	assert.Equal(t, float32(-248), anchors[0].X1)
	assert.Equal(t, float32(-248), anchors[0].Y1)
	assert.Equal(t, float32(264), anchors[0].X2)
	assert.Equal(t, float32(264), anchors[0].Y2)

	assert.Equal(t, float32(-120), anchors[1].X1)
	assert.Equal(t, float32(-120), anchors[1].Y1)
	assert.Equal(t, float32(136), anchors[1].X2)
	assert.Equal(t, float32(136), anchors[1].Y2)

	for _, a := range anchors {
		assert.Equal(t, float32(8), (a.X1+a.X2)/2, "anchors center at baseSize/2")
		assert.Equal(t, float32(8), (a.Y1+a.Y2)/2, "anchors center at baseSize/2")
	}
}

// TestDefaultStridesContract validates the fixed architecture table: three
// strides, one ratio, a scale pair each, two anchors per cell.
//
// Arguments:
//   - t: The testing context for assertions and error reporting.
func TestDefaultStridesContract(t *testing.T) {
	strides := DefaultStrides()
	require.Len(t, strides, 3)

	wantStrides := []int{32, 16, 8}
	wantScales := [][]float32{{32, 16}, {8, 4}, {2, 1}}
	for i, s := range strides {
		assert.Equal(t, wantStrides[i], s.Stride)
		assert.Equal(t, []float32{1}, s.Ratios)
		assert.Equal(t, wantScales[i], s.Scales)
		assert.Equal(t, 2, s.NumAnchors())
	}
}

// TestStrideFeatureSize validates the feature-map resolution derivation.
//
// Arguments:
//   - t: The testing context for assertions and error reporting.
func TestStrideFeatureSize(t *testing.T) {
	s := StrideConfig{Stride: 32, Ratios: []float32{1}, Scales: []float32{32, 16}}
	w, h := s.FeatureSize(640, 640)
	assert.Equal(t, 20, w)
	assert.Equal(t, 20, h)
}
