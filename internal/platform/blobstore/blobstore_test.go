package blobstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	loc, err := s.Save(ctx, "doc_1.pdf", "application/pdf", []byte("%PDF"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Base(loc) != "doc_1.pdf" {
		t.Fatalf("location: %s", loc)
	}
	rc, err := s.Open(ctx, "doc_1.pdf")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	b, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(b) != "%PDF" {
		t.Fatalf("content: %q", b)
	}
	if err := s.Delete(ctx, "doc_1.pdf"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "doc_1.pdf"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if _, err := s.Open(ctx, "doc_1.pdf"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	entries, _ := os.ReadDir(s.root)
	if len(entries) != 0 {
		t.Fatalf("leftover files: %d", len(entries))
	}
}

func TestLocalStoreRejectsEscapes(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"../x.pdf", "a/b.pdf", "", ".."} {
		if _, err := s.Save(context.Background(), name, "", []byte("x")); err == nil {
			t.Fatalf("expected rejection for %q", name)
		}
	}
}

func TestResolve(t *testing.T) {
	cases := []struct {
		name     string
		in       Config
		wantMode Mode
		wantCode ConfigErrorCode
		fallback bool
	}{
		{"default local", Config{LocalRoot: "/data"}, ModeLocal, "", false},
		{"fallback emulator", Config{Bucket: "b", EmulatorHost: "http://fake-gcs:4443/"}, ModeGCSEmulator, "", true},
		{"explicit gcs", Config{Mode: "GCS", Bucket: "b"}, ModeGCS, "", false},
		{"invalid mode", Config{Mode: "s3"}, "", ConfigErrorInvalidMode, false},
		{"local without root", Config{Mode: ModeLocal}, ModeLocal, ConfigErrorMissingLocalRoot, false},
		{"gcs without bucket", Config{Mode: ModeGCS}, ModeGCS, ConfigErrorMissingBucket, false},
		{"emulator without host", Config{Mode: ModeGCSEmulator, Bucket: "b"}, ModeGCSEmulator, ConfigErrorMissingEmulatorHost, false},
		{"emulator bad host", Config{Mode: ModeGCSEmulator, Bucket: "b", EmulatorHost: "fake-gcs:4443"}, ModeGCSEmulator, ConfigErrorInvalidEmulatorHost, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Resolve(tc.in)
			if tc.wantCode != "" {
				var ce *ConfigError
				if !errors.As(err, &ce) || ce.Code != tc.wantCode {
					t.Fatalf("want code %q, got %v", tc.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got.Mode != tc.wantMode || got.CompatibilityFallback != tc.fallback {
				t.Fatalf("got mode=%q fallback=%v", got.Mode, got.CompatibilityFallback)
			}
		})
	}
}
