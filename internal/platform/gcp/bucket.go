package gcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/yungbote/nexovate-backend/internal/platform/blobstore"
	"github.com/yungbote/nexovate-backend/internal/platform/logger"
)

// ArtifactBucket keeps generated documents in one GCS bucket under an optional prefix.
type ArtifactBucket struct {
	log    *logger.Logger
	client *storage.Client
	bucket string
	prefix string
	mode   blobstore.Mode
}

func NewArtifactBucket(ctx context.Context, log *logger.Logger, cfg blobstore.Config, prefix string) (*ArtifactBucket, error) {
	if err := blobstore.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	client, err := newStorageClientForMode(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	b := &ArtifactBucket{
		log:    log.With("service", "ArtifactBucket"),
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(prefix, "/"),
		mode:   cfg.Mode,
	}
	b.log.Info("Object storage initialized",
		"mode", cfg.Mode,
		"mode_source", cfg.ModeSource(),
		"emulator_host", cfg.EmulatorHost,
		"bucket", cfg.Bucket,
	)
	return b, nil
}

func newStorageClientForMode(ctx context.Context, cfg blobstore.Config) (*storage.Client, error) {
	switch cfg.Mode {
	case blobstore.ModeGCS:
		opts := ClientOptionsFromEnv()
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
		return storage.NewClient(ctx, opts...)
	case blobstore.ModeGCSEmulator:
		// The storage client reads the emulator endpoint from the environment.
		_ = os.Setenv("STORAGE_EMULATOR_HOST", cfg.EmulatorHost)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	default:
		return nil, &blobstore.ConfigError{Code: blobstore.ConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
}

func (b *ArtifactBucket) Mode() blobstore.Mode { return b.mode }

func (b *ArtifactBucket) key(name string) string {
	if b.prefix == "" {
		return name
	}
	return path.Join(b.prefix, name)
}

func (b *ArtifactBucket) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	key := b.key(name)
	w := b.client.Bucket(b.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return fmt.Sprintf("gs://%s/%s", b.bucket, key), nil
}

func (b *ArtifactBucket) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	r, err := b.client.Bucket(b.bucket).Object(b.key(name)).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, blobstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open GCS object %q: %w", name, err)
	}
	return r, nil
}

func (b *ArtifactBucket) Delete(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	err := b.client.Bucket(b.bucket).Object(b.key(name)).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", name, b.bucket, err)
	}
	return nil
}

// ListNames returns object names (without prefix) under the artifact prefix.
func (b *ArtifactBucket) ListNames(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	q := &storage.Query{}
	if b.prefix != "" {
		q.Prefix = b.prefix + "/"
	}
	it := b.client.Bucket(b.bucket).Objects(ctx, q)
	var out []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, strings.TrimPrefix(attrs.Name, q.Prefix))
	}
	return out, nil
}

func (b *ArtifactBucket) Close() error {
	return b.client.Close()
}
