package persistence

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/featsearch/blobstore"
	"github.com/hupe1980/featsearch/codec"
)

// Checkpointer saves and loads whole values as framed blobs.
type Checkpointer struct {
	store blobstore.BlobStore
	codec codec.Codec
	comp  codec.Compressor
}

// Option configures a Checkpointer.
type Option func(*Checkpointer)

// WithCodec sets the codec used for new frames.
func WithCodec(c codec.Codec) Option {
	return func(cp *Checkpointer) { cp.codec = c }
}

// WithCompression sets the compressor used for new frames.
func WithCompression(c codec.Compressor) Option {
	return func(cp *Checkpointer) { cp.comp = c }
}

// NewCheckpointer returns a Checkpointer writing to store.
func NewCheckpointer(store blobstore.BlobStore, opts ...Option) *Checkpointer {
	cp := &Checkpointer{
		store: store,
		codec: codec.Default,
		comp:  codec.None{},
	}
	for _, opt := range opts {
		opt(cp)
	}
	return cp
}

// Store returns the underlying blob store.
func (cp *Checkpointer) Store() blobstore.BlobStore { return cp.store }

// Save overwrites the blob name with v.
func (cp *Checkpointer) Save(ctx context.Context, name string, v any) error {
	var buf bytes.Buffer
	if err := Encode(&buf, cp.codec, cp.comp, v); err != nil {
		return err
	}
	if err := cp.store.Put(ctx, name, buf.Bytes()); err != nil {
		return fmt.Errorf("persistence: save %s: %w", name, err)
	}
	return nil
}

// Load decodes the blob name into v. It reports false when the blob does not exist.
func (cp *Checkpointer) Load(ctx context.Context, name string, v any) (bool, error) {
	data, err := blobstore.ReadAll(ctx, cp.store, name)
	if errors.Is(err, blobstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if _, err := Decode(bytes.NewReader(data), v); err != nil {
		return false, fmt.Errorf("persistence: load %s: %w", name, err)
	}
	return true, nil
}
