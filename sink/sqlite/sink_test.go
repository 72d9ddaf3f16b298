package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/featsearch/internal/sqlitedb"
	"github.com/hupe1980/featsearch/model"
)

type digits struct{}

func (digits) Decode(tokens []int, _ bool) (string, error) {
	out := ""
	for _, t := range tokens {
		if t < 0 {
			return "", errors.New("bad token")
		}
		out += fmt.Sprint(t)
	}
	return out, nil
}

func TestSink(t *testing.T) {
	ctx := context.Background()
	s, err := Open(sqlitedb.Memory, digits{})
	require.NoError(t, err)
	defer s.Close()

	feed := model.NewRootFeed([]int{9}, nil)
	batch := []model.Candidate{
		{Feed: feed, Tokens: []int{1, 2}, Features: model.Features{"comp": 1}, Score: 0.5},
		{Feed: feed, Tokens: []int{3}, Features: model.Features{"comp": 2}, Score: 0.7},
		{Feed: feed, Tokens: []int{1, 2}, Features: model.Features{"comp": 1}, Score: 0.5},
	}
	require.NoError(t, s.WriteSamples(ctx, batch))
	require.NoError(t, s.WriteSamples(ctx, batch[:1]))
	require.NoError(t, s.WriteSamples(ctx, nil))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var text, sampleFeed string
	require.NoError(t, s.db.QueryRow(`SELECT text, sample_feed FROM samples WHERE encoded_text = '3'`).Scan(&text, &sampleFeed))
	assert.Equal(t, "3", text)
	assert.Equal(t, "9", sampleFeed)
}

func TestSinkRollsBackOnDecodeError(t *testing.T) {
	ctx := context.Background()
	s, err := Open(sqlitedb.Memory, digits{})
	require.NoError(t, err)
	defer s.Close()

	err = s.WriteSamples(ctx, []model.Candidate{{Tokens: []int{1}}, {Tokens: []int{-1}}})
	require.Error(t, err)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
