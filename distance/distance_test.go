package distance

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatures(t *testing.T) {
	Register("test-space", Normalizer{"F2": 1.0, "F4": 2.0})

	tests := []struct {
		name     string
		a, b     map[string]float64
		expected float64
	}{
		{"Identical", map[string]float64{"F2": 0.5}, map[string]float64{"F2": 0.5}, 0},
		{"Simple", map[string]float64{"F2": 0.6}, map[string]float64{"F2": 1.0}, 0.8},
		{"Normalized", map[string]float64{"F4": 0}, map[string]float64{"F4": 4}, 2},
		{"ExtraSampleKeysIgnored", map[string]float64{"F2": 1, "other": 7}, map[string]float64{"F2": 1}, 0},
		{"EmptyTarget", map[string]float64{"F2": 3}, map[string]float64{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Features(tt.a, tt.b, "test-space")
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestFeaturesMissingFeature(t *testing.T) {
	_, err := Features(map[string]float64{"comp": 1}, map[string]float64{"comp": 1, "mem": 2}, SpaceGrewe)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingFeature))

	var mf *MissingFeatureError
	require.ErrorAs(t, err, &mf)
	assert.Equal(t, "mem", mf.Key)
}

func TestFeaturesUnknownSpace(t *testing.T) {
	_, err := Features(nil, map[string]float64{"x": 1}, "nope")
	assert.ErrorIs(t, err, ErrUnknownSpace)
}

func TestFeaturesMissingNormalizer(t *testing.T) {
	_, err := Features(map[string]float64{"bogus": 1}, map[string]float64{"bogus": 1}, SpaceGrewe)
	var mn *MissingNormalizerError
	assert.ErrorAs(t, err, &mn)
}

func TestFeaturesZeroNormalizer(t *testing.T) {
	got, err := Features(
		map[string]float64{"ExtractValue": 1},
		map[string]float64{"ExtractValue": 2},
		SpaceInstCount,
	)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(3), got, 1e-9)
}

func TestFeaturesProperties(t *testing.T) {
	samples := []map[string]float64{
		{"comp": 10, "rational": 3, "mem": 40, "localmem": 0, "coalesced": 20, "atomic": 1, "F2:coalesced/mem": 0.5, "F4:comp/mem": 0.25},
		{"comp": 254, "rational": 61, "mem": 107, "localmem": 104, "coalesced": 100, "atomic": 20, "F2:coalesced/mem": 1, "F4:comp/mem": 1},
		{"comp": 0, "rational": 0, "mem": 0, "localmem": 0, "coalesced": 0, "atomic": 0, "F2:coalesced/mem": 0, "F4:comp/mem": 0},
	}

	for i, a := range samples {
		self, err := Features(a, a, SpaceGrewe)
		require.NoError(t, err)
		assert.Zero(t, self)

		for j, b := range samples {
			d1, err := Features(a, b, SpaceGrewe)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, d1, 0.0, "pair %d,%d", i, j)

			d2, err := Features(a, b, SpaceGrewe)
			require.NoError(t, err)
			assert.Equal(t, math.Float64bits(d1), math.Float64bits(d2))
		}
	}
}

func TestSpaces(t *testing.T) {
	spaces := Spaces()
	assert.Contains(t, spaces, SpaceGrewe)
	assert.Contains(t, spaces, SpaceInstCount)
	assert.Contains(t, spaces, SpaceAutophase)
	assert.IsNonDecreasing(t, spaces)
}
