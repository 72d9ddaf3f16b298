package sink

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/featsearch/model"
)

func TestMemory(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.WriteSamples(ctx, []model.Candidate{{Tokens: []int{1}}, {Tokens: []int{2}}}))
	require.NoError(t, m.WriteSamples(ctx, nil))

	assert.Len(t, m.Samples(), 2)
	assert.Equal(t, 2, m.Writes())
	assert.NoError(t, Discard{}.WriteSamples(ctx, m.Samples()))
}
