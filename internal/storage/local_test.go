package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createLocalProvider(t *testing.T) *LocalProvider {
	t.Helper()

	provider, err := NewLocalProvider(t.TempDir())
	require.NoError(t, err)
	return provider
}

func TestLocalPutAndGet(t *testing.T) {
	provider := createLocalProvider(t)
	ctx := context.Background()

	require.NoError(t, provider.PutObject(ctx, "models/demo/model.onnx", bytes.NewReader([]byte("weights"))))

	data, err := provider.GetObject(ctx, "models/demo/model.onnx")
	require.NoError(t, err)
	assert.Equal(t, []byte("weights"), data)
}

func TestLocalGetMissingObject(t *testing.T) {
	provider := createLocalProvider(t)

	_, err := provider.GetObject(context.Background(), "does/not/exist")
	assert.Error(t, err)
}

func TestLocalListObjects(t *testing.T) {
	provider := createLocalProvider(t)
	ctx := context.Background()

	require.NoError(t, provider.PutObject(ctx, "models/a/model.onnx", bytes.NewReader([]byte("12345"))))
	require.NoError(t, provider.PutObject(ctx, "models/a/tokenizer.json", bytes.NewReader([]byte("{}"))))
	require.NoError(t, provider.PutObject(ctx, "models/b/model.onnx", bytes.NewReader([]byte("x"))))

	objects, err := provider.ListObjects(ctx, "models/a")
	require.NoError(t, err)
	assert.ElementsMatch(t, []Object{
		{Name: "models/a/model.onnx", Size: 5},
		{Name: "models/a/tokenizer.json", Size: 2},
	}, objects)
}

func TestLocalListSingleFilePrefix(t *testing.T) {
	provider := createLocalProvider(t)
	ctx := context.Background()

	require.NoError(t, provider.PutObject(ctx, "models/a/model.onnx", bytes.NewReader([]byte("abc"))))

	objects, err := provider.ListObjects(ctx, "models/a/model.onnx")
	require.NoError(t, err)
	assert.Equal(t, []Object{{Name: "models/a/model.onnx", Size: 3}}, objects)
}

func TestLocalListMissingPrefix(t *testing.T) {
	provider := createLocalProvider(t)

	objects, err := provider.ListObjects(context.Background(), "nothing/here")
	require.NoError(t, err)
	assert.Empty(t, objects)
}

func TestLocalDownloadObject(t *testing.T) {
	provider := createLocalProvider(t)
	ctx := context.Background()

	require.NoError(t, provider.PutObject(ctx, "models/a/model.onnx", bytes.NewReader([]byte("weights"))))

	dest := filepath.Join(t.TempDir(), "nested", "model.onnx")
	require.NoError(t, provider.DownloadObject(ctx, "models/a/model.onnx", dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, []byte("weights"), data)
}

func TestDownloadPrefix(t *testing.T) {
	provider := createLocalProvider(t)
	ctx := context.Background()

	require.NoError(t, provider.PutObject(ctx, "models/demo/model.onnx", bytes.NewReader([]byte("weights"))))
	require.NoError(t, provider.PutObject(ctx, "models/demo/config/labels.txt", bytes.NewReader([]byte("cat\ndog"))))

	destDir := t.TempDir()
	require.NoError(t, DownloadPrefix(ctx, provider, "models/demo", destDir))

	data, err := os.ReadFile(filepath.Join(destDir, "model.onnx"))
	require.NoError(t, err)
	assert.Equal(t, []byte("weights"), data)

	data, err = os.ReadFile(filepath.Join(destDir, "config", "labels.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("cat\ndog"), data)
}

func TestDownloadPrefixEmpty(t *testing.T) {
	provider := createLocalProvider(t)

	err := DownloadPrefix(context.Background(), provider, "models/none", t.TempDir())
	assert.ErrorContains(t, err, "no artifacts found")
}
