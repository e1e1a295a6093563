package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
)

// DownloadPrefix copies every artifact under prefix into destDir, keeping
// relative paths and reporting byte progress.
func DownloadPrefix(ctx context.Context, p Provider, prefix, destDir string) error {
	objects, err := p.ListObjects(ctx, prefix)
	if err != nil {
		return fmt.Errorf("failed to list artifacts under %s: %w", prefix, err)
	}
	if len(objects) == 0 {
		return fmt.Errorf("no artifacts found under prefix %s", prefix)
	}

	var total int64
	for _, obj := range objects {
		total += obj.Size
	}
	bar := progressbar.DefaultBytes(total, "downloading model artifacts")

	for _, obj := range objects {
		rel := strings.TrimPrefix(strings.TrimPrefix(obj.Name, prefix), "/")
		dest := filepath.Join(destDir, filepath.FromSlash(rel))

		if err := os.MkdirAll(filepath.Dir(dest), os.ModePerm); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", dest, err)
		}
		if err := p.DownloadObject(ctx, obj.Name, dest); err != nil {
			return err
		}
		_ = bar.Add64(obj.Size)
	}

	return nil
}
