package repository

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSArchive stores rendered reports as objects in a Google Cloud Storage
// bucket, mirroring the local archive's path layout under an object prefix.
type GCSArchive struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSArchive creates a GCS-backed archive. Extra client options are passed
// through to the storage client (tests use them to point at a fake server).
func NewGCSArchive(ctx context.Context, bucket, prefix string, opts ...option.ClientOption) (*GCSArchive, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return &GCSArchive{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}, nil
}

func (a *GCSArchive) Store(ctx context.Context, path, content string) error {
	obj := a.client.Bucket(a.bucket).Object(a.prefix + path)

	writer := obj.NewWriter(ctx)
	writer.ContentType = "text/plain; charset=utf-8"

	if _, err := io.WriteString(writer, content); err != nil {
		writer.Close()
		return fmt.Errorf("writing report object %s: %w", path, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing report object %s: %w", path, err)
	}
	return nil
}

func (a *GCSArchive) Load(ctx context.Context, path string) (string, error) {
	obj := a.client.Bucket(a.bucket).Object(a.prefix + path)

	reader, err := obj.NewReader(ctx)
	if err != nil {
		if err == storage.ErrObjectNotExist {
			return "", fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return "", fmt.Errorf("opening report object %s: %w", path, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("reading report object %s: %w", path, err)
	}
	return string(data), nil
}

func (a *GCSArchive) List(ctx context.Context, prefix string) ([]string, error) {
	it := a.client.Bucket(a.bucket).Objects(ctx, &storage.Query{Prefix: a.prefix + prefix})

	var paths []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing report objects: %w", err)
		}
		paths = append(paths, strings.TrimPrefix(attrs.Name, a.prefix))
	}
	return paths, nil
}

func (a *GCSArchive) Close() error {
	return a.client.Close()
}
