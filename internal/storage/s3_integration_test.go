package storage_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"serving-backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/minio"
)

const (
	minioUsername = "admin"
	minioPassword = "password"
	testBucket    = "test-artifacts"
)

func setupMinioContainer(t *testing.T, ctx context.Context) string {
	t.Helper()

	minioContainer, err := minio.Run(
		ctx,
		"minio/minio:RELEASE.2024-01-16T16-07-38Z",
		minio.WithUsername(minioUsername),
		minio.WithPassword(minioPassword),
	)
	require.NoError(t, err, "Failed to start MinIO container")

	t.Cleanup(func() {
		err := minioContainer.Terminate(context.Background())
		require.NoError(t, err, "Failed to terminate MinIO container")
	})

	connStr, err := minioContainer.ConnectionString(ctx)
	require.NoError(t, err, "Failed to get MinIO connection string")

	return "http://" + connStr
}

func setupS3Provider(t *testing.T, ctx context.Context) *storage.S3Provider {
	t.Helper()

	endpoint := setupMinioContainer(t, ctx)

	provider, err := storage.NewS3Provider(storage.S3ProviderConfig{
		EndpointURL:     endpoint,
		AccessKeyID:     minioUsername,
		SecretAccessKey: minioPassword,
		Region:          "us-east-1",
		Bucket:          testBucket,
	})
	require.NoError(t, err)
	require.NoError(t, provider.EnsureBucket(ctx))

	return provider
}

func TestS3PutAndGetObject(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	provider := setupS3Provider(t, ctx)

	content := []byte("model weights")
	require.NoError(t, provider.PutObject(ctx, "models/demo/model.onnx", bytes.NewReader(content)))

	data, err := provider.GetObject(ctx, "models/demo/model.onnx")
	require.NoError(t, err)
	assert.Equal(t, content, data)
}

func TestS3ListObjects(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	provider := setupS3Provider(t, ctx)

	files := map[string][]byte{
		"models/demo/model.onnx":     []byte("weights"),
		"models/demo/tokenizer.json": []byte("{}"),
		"models/other/model.onnx":    []byte("x"),
	}
	for key, content := range files {
		require.NoError(t, provider.PutObject(ctx, key, bytes.NewReader(content)))
	}

	objects, err := provider.ListObjects(ctx, "models/demo")
	require.NoError(t, err)
	assert.ElementsMatch(t, []storage.Object{
		{Name: "models/demo/model.onnx", Size: 7},
		{Name: "models/demo/tokenizer.json", Size: 2},
	}, objects)
}

func TestS3DownloadPrefix(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	provider := setupS3Provider(t, ctx)

	require.NoError(t, provider.PutObject(ctx, "models/demo/model.onnx", bytes.NewReader([]byte("weights"))))
	require.NoError(t, provider.PutObject(ctx, "models/demo/config/labels.txt", bytes.NewReader([]byte("cat\ndog"))))

	destDir := t.TempDir()
	require.NoError(t, storage.DownloadPrefix(ctx, provider, "models/demo", destDir))

	data, err := os.ReadFile(filepath.Join(destDir, "model.onnx"))
	require.NoError(t, err)
	assert.Equal(t, []byte("weights"), data)

	data, err = os.ReadFile(filepath.Join(destDir, "config", "labels.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("cat\ndog"), data)
}

func TestS3EnsureBucketIsIdempotent(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	provider := setupS3Provider(t, ctx)
	require.NoError(t, provider.EnsureBucket(ctx))
}
