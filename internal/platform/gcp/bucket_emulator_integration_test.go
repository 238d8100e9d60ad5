package gcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/nexovate-backend/internal/platform/blobstore"
	"github.com/yungbote/nexovate-backend/internal/platform/logger"
)

func TestArtifactBucketEmulatorLifecycle(t *testing.T) {
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("NX_RUN_GCS_EMULATOR_INTEGRATION")), "true") {
		t.Skip("set NX_RUN_GCS_EMULATOR_INTEGRATION=true to run emulator integration tests")
	}
	host := strings.TrimRight(strings.TrimSpace(os.Getenv("STORAGE_EMULATOR_HOST")), "/")
	if host == "" {
		host = "http://127.0.0.1:4443"
	}
	t.Setenv("STORAGE_EMULATOR_HOST", host)

	bucketName := fmt.Sprintf("nx-it-artifacts-%d", time.Now().UnixNano())
	createBucket(t, host, bucketName)

	ctx := context.Background()
	b, err := NewArtifactBucket(ctx, logger.Nop(), blobstore.Config{
		Mode:         blobstore.ModeGCSEmulator,
		Bucket:       bucketName,
		EmulatorHost: host,
	}, "documents")
	if err != nil {
		t.Fatalf("NewArtifactBucket: %v", err)
	}
	defer b.Close()

	if _, err := b.Save(ctx, "doc_a.pdf", "application/pdf", []byte("%PDF-a")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	rc, err := b.Open(ctx, "doc_a.pdf")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(got) != "%PDF-a" {
		t.Fatalf("content: %q", got)
	}
	names, err := b.ListNames(ctx)
	if err != nil || len(names) != 1 || names[0] != "doc_a.pdf" {
		t.Fatalf("ListNames: %v %v", names, err)
	}
	if err := b.Delete(ctx, "doc_a.pdf"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := b.Open(ctx, "doc_a.pdf"); !errors.Is(err, blobstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func createBucket(t *testing.T, host, name string) {
	t.Helper()
	body := bytes.NewBufferString(fmt.Sprintf(`{"name":%q}`, name))
	resp, err := http.Post(host+"/storage/v1/b?project=test", "application/json", body)
	if err != nil {
		t.Skipf("storage emulator not reachable at %s: %v", host, err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusConflict {
		t.Fatalf("create bucket: status %d", resp.StatusCode)
	}
}
