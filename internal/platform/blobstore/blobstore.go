// Package blobstore stores generated document bytes by name.
package blobstore

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("blob not found")

// Store is keyed by a flat object name. Save overwrites, Delete of a missing
// name succeeds.
type Store interface {
	Save(ctx context.Context, name string, contentType string, data []byte) (location string, err error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
	Mode() Mode
}
