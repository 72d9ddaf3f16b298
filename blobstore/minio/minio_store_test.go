package minio

import (
	"context"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/featsearch/blobstore"
)

func TestStoreKey(t *testing.T) {
	s := NewStore(nil, "bucket", "featsearch/")
	assert.Equal(t, "featsearch/search_state", s.key("search_state"))
	assert.Equal(t, "featsearch", s.key(""))
	assert.Equal(t, "search_state", s.name("featsearch/search_state"))
	assert.Equal(t, "runs/a", s.name("featsearch/runs/a"))
}

// TestMinioStore_Integration requires a running MinIO instance.
// Skip if not available.
func TestMinioStore_Integration(t *testing.T) {
	client, err := minio.New("localhost:9000", &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()

	if _, err = client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	bucket := "test-featsearch"
	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := NewStore(client, bucket, "test-prefix/")

	data := []byte("hello minio world")
	require.NoError(t, store.Put(ctx, "search_state", data))

	got, err := blobstore.ReadAll(ctx, store, "search_state")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "search_state")

	require.NoError(t, store.Delete(ctx, "search_state"))

	_, err = store.Open(ctx, "search_state")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
