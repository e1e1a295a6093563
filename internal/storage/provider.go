package storage

import (
	"context"
	"io"
)

type Object struct {
	Name string
	Size int64
}

// Provider fetches and stores model artifacts (weights, labels, tokenizer
// files). Implementations are scoped to one bucket or base directory.
type Provider interface {
	GetObject(ctx context.Context, key string) ([]byte, error)

	DownloadObject(ctx context.Context, key, filename string) error

	PutObject(ctx context.Context, key string, data io.Reader) error

	ListObjects(ctx context.Context, prefix string) ([]Object, error)
}
