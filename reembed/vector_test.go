package reembed

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeVector(t *testing.T) {
	tests := []struct {
		name     string
		input    []float32
		expected []float32
	}{
		{
			name:     "already unit length",
			input:    []float32{0.0, 1.0, 0.0},
			expected: []float32{0.0, 1.0, 0.0},
		},
		{
			name:     "scales to unit length",
			input:    []float32{3.0, 4.0},
			expected: []float32{0.6, 0.8},
		},
		{
			name:     "preserves direction of negative components",
			input:    []float32{-2.0, 0.0, 2.0},
			expected: []float32{-1.0 / float32(math.Sqrt2), 0.0, 1.0 / float32(math.Sqrt2)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeVector(tt.input)
			require.Len(t, result, len(tt.expected))

			for i := range result {
				assert.InDelta(t, tt.expected[i], result[i], 1e-6, "element %d", i)
			}
		})
	}
}

func TestNormalizeVector_UnitMagnitude(t *testing.T) {
	result := NormalizeVector([]float32{0.013, -2.7, 41.0, 0.4})

	var sumSquares float64
	for _, v := range result {
		sumSquares += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sumSquares), 1e-6)
}

func TestNormalizeVector_ZeroVector(t *testing.T) {
	result := NormalizeVector([]float32{0.0, 0.0, 0.0})

	require.Len(t, result, 3)
	for i, v := range result {
		assert.Equal(t, float32(0.0), v, "element %d", i)
	}
}

func TestNormalizeVector_Empty(t *testing.T) {
	assert.Empty(t, NormalizeVector(nil))
	assert.Empty(t, NormalizeVector([]float32{}))
}

func TestNormalizeVector_DoesNotMutateInput(t *testing.T) {
	input := []float32{5.0, 0.0}
	_ = NormalizeVector(input)

	assert.Equal(t, []float32{5.0, 0.0}, input)
}
