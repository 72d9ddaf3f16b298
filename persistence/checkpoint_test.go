package persistence

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/featsearch/blobstore"
	"github.com/hupe1980/featsearch/codec"
)

type state struct {
	Queue []int          `json:"queue"`
	Rates map[string]int `json:"rates"`
}

func TestFrameRoundTrip(t *testing.T) {
	in := state{Queue: []int{3, 1, 2}, Rates: map[string]int{"0": 7}}

	for _, c := range []codec.Codec{codec.JSON{}, codec.GoJSON{}} {
		for _, comp := range []codec.Compressor{codec.None{}, codec.Zstd{}, codec.LZ4{}} {
			t.Run(c.Name()+"/"+comp.Name(), func(t *testing.T) {
				var buf bytes.Buffer
				require.NoError(t, Encode(&buf, c, comp, in))

				var out state
				h, err := Decode(&buf, &out)
				require.NoError(t, err)
				assert.Equal(t, in, out)
				assert.Equal(t, Version, h.Version)
				assert.Equal(t, c.Name(), h.Codec)
				assert.Equal(t, comp.Name(), h.Compression)
			})
		}
	}
}

func TestDecodeDetectsCorruption(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, nil, nil, state{Queue: []int{1}}))
	frame := buf.Bytes()

	t.Run("checksum", func(t *testing.T) {
		bad := bytes.Clone(frame)
		bad[len(bad)-6] ^= 0xFF
		_, err := Decode(bytes.NewReader(bad), &state{})
		assert.True(t, IsChecksumMismatch(err), "got %v", err)
	})

	t.Run("magic", func(t *testing.T) {
		bad := bytes.Clone(frame)
		bad[0] ^= 0xFF
		_, err := Decode(bytes.NewReader(bad), &state{})
		assert.ErrorIs(t, err, ErrInvalidMagic)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := Decode(bytes.NewReader(frame[:len(frame)-2]), &state{})
		assert.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := Decode(bytes.NewReader(nil), &state{})
		assert.ErrorIs(t, err, ErrTruncated)
	})
}

func TestCheckpointer(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	cp := NewCheckpointer(store, WithCompression(codec.Zstd{}))

	var out state
	ok, err := cp.Load(ctx, "search_state", &out)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cp.Save(ctx, "search_state", state{Queue: []int{1}}))
	require.NoError(t, cp.Save(ctx, "search_state", state{Queue: []int{1, 2}}))

	reader := NewCheckpointer(store, WithCodec(codec.JSON{}))
	ok, err = reader.Load(ctx, "search_state", &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []int{1, 2}, out.Queue)
}

func TestCheckpointerCorruptBlob(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "search_state", []byte("garbage")))

	_, err := NewCheckpointer(store).Load(ctx, "search_state", &state{})
	assert.Error(t, err)
}
