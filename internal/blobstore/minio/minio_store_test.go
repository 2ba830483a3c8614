package minio

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kernc/internal/blobstore"
)

func TestDialRejectsBadEndpoint(t *testing.T) {
	_, err := Dial(Options{Endpoint: "http://has-a-scheme:9000"})
	assert.Error(t, err)
}

// TestMinioStore_Integration requires a running MinIO instance named by
// KERNC_MINIO_ENDPOINT.
func TestMinioStore_Integration(t *testing.T) {
	endpoint := os.Getenv("KERNC_MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("KERNC_MINIO_ENDPOINT not set")
	}
	client, err := Dial(Options{
		Endpoint:  endpoint,
		AccessKey: envOr("KERNC_MINIO_ACCESS_KEY", "minioadmin"),
		SecretKey: envOr("KERNC_MINIO_SECRET_KEY", "minioadmin"),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	bucket := "kernc-test"
	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := NewStore(client, bucket, "test-prefix/")

	_, err = store.Get(ctx, "runtime/missing.bin")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	require.NoError(t, store.Put(ctx, "runtime/a.bin", []byte("hello minio")))
	data, err := store.Get(ctx, "runtime/a.bin")
	require.NoError(t, err)
	assert.Equal(t, "hello minio", string(data))

	names, err := store.List(ctx, "runtime/")
	require.NoError(t, err)
	assert.Contains(t, names, "runtime/a.bin")

	require.NoError(t, store.Delete(ctx, "runtime/a.bin"))
	require.NoError(t, store.Delete(ctx, "runtime/a.bin"))
	_, err = store.Get(ctx, "runtime/a.bin")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
