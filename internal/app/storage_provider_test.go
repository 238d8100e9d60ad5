package app

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/yungbote/nexovate-backend/internal/platform/blobstore"
	"github.com/yungbote/nexovate-backend/internal/platform/logger"
)

func TestClassifyStorageProviderBootstrapError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want StorageProviderBootstrapErrorCode
	}{
		{"invalid mode", &blobstore.ConfigError{Code: blobstore.ConfigErrorInvalidMode}, StorageProviderBootstrapErrorInvalidMode},
		{"missing bucket", &blobstore.ConfigError{Code: blobstore.ConfigErrorMissingBucket}, StorageProviderBootstrapErrorMissingBucket},
		{"missing emulator", &blobstore.ConfigError{Code: blobstore.ConfigErrorMissingEmulatorHost}, StorageProviderBootstrapErrorMissingEmulatorHost},
		{"invalid emulator", &blobstore.ConfigError{Code: blobstore.ConfigErrorInvalidEmulatorHost}, StorageProviderBootstrapErrorInvalidEmulatorHost},
		{"connect", errors.New("dial tcp: connection refused"), StorageProviderBootstrapErrorConnectFailed},
	}
	for _, tc := range cases {
		err := classifyStorageProviderBootstrapError(blobstore.Config{Mode: blobstore.ModeGCS}, tc.err)
		var got *StorageProviderBootstrapError
		if !errors.As(err, &got) {
			t.Fatalf("%s: expected StorageProviderBootstrapError, got=%T", tc.name, err)
		}
		if got.Code != tc.want {
			t.Fatalf("%s: code want=%q got=%q", tc.name, tc.want, got.Code)
		}
	}
}

func TestResolveArtifactStoreInvalidMode(t *testing.T) {
	_, closeFn, err := resolveArtifactStore(context.Background(), logger.Nop(), Config{ArtifactStorageMode: "ftp"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if closeFn == nil {
		t.Fatalf("close func must never be nil")
	}
	if code := storageProviderBootstrapErrorCode(err); code != StorageProviderBootstrapErrorInvalidMode {
		t.Fatalf("code: got %q", code)
	}
}

func TestResolveArtifactStoreDefaultsToLocal(t *testing.T) {
	dir := t.TempDir()
	store, closeFn, err := resolveArtifactStore(context.Background(), logger.Nop(), Config{UploadsDir: dir})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	defer closeFn()
	if store.Mode() != blobstore.ModeLocal {
		t.Fatalf("mode: got %q", store.Mode())
	}
}

func TestResolveArtifactStoreGCSRequiresBucket(t *testing.T) {
	_, _, err := resolveArtifactStore(context.Background(), logger.Nop(), Config{ArtifactStorageMode: "gcs"})
	if code := storageProviderBootstrapErrorCode(err); code != StorageProviderBootstrapErrorMissingBucket {
		t.Fatalf("code: got %q (%v)", code, err)
	}
}

func TestResolveArtifactStoreEmulatorFallback(t *testing.T) {
	orig := newArtifactBucket
	t.Cleanup(func() { newArtifactBucket = orig })

	var captured blobstore.Config
	stub := &stubBucket{}
	newArtifactBucket = func(_ context.Context, _ *logger.Logger, cfg blobstore.Config, prefix string) (closableStore, error) {
		captured = cfg
		if prefix != "documents" {
			t.Fatalf("prefix: got %q", prefix)
		}
		return stub, nil
	}

	store, closeFn, err := resolveArtifactStore(context.Background(), logger.Nop(), Config{
		ArtifactBucket:      "artifacts",
		ArtifactPrefix:      "documents",
		StorageEmulatorHost: "http://fake-gcs:4443/",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if store != stub {
		t.Fatalf("expected stub bucket")
	}
	if captured.Mode != blobstore.ModeGCSEmulator || !captured.CompatibilityFallback {
		t.Fatalf("unexpected resolved config: %+v", captured)
	}
	if captured.EmulatorHost != "http://fake-gcs:4443" {
		t.Fatalf("emulator host: got %q", captured.EmulatorHost)
	}
	if err := closeFn(); err != nil || !stub.closed {
		t.Fatalf("close not forwarded: %v", err)
	}
}

type stubBucket struct{ closed bool }

func (s *stubBucket) Save(context.Context, string, string, []byte) (string, error) { return "", nil }
func (s *stubBucket) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}
func (s *stubBucket) Delete(context.Context, string) error { return nil }
func (s *stubBucket) Mode() blobstore.Mode                 { return blobstore.ModeGCSEmulator }
func (s *stubBucket) Close() error {
	s.closed = true
	return nil
}
