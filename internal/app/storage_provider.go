package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/nexovate-backend/internal/platform/blobstore"
	"github.com/yungbote/nexovate-backend/internal/platform/gcp"
	"github.com/yungbote/nexovate-backend/internal/platform/logger"
)

// closableStore is a blob store that may hold a client connection.
type closableStore interface {
	blobstore.Store
	Close() error
}

var newArtifactBucket = func(ctx context.Context, log *logger.Logger, cfg blobstore.Config, prefix string) (closableStore, error) {
	return gcp.NewArtifactBucket(ctx, log, cfg, prefix)
}

type StorageProviderBootstrapErrorCode string

const (
	StorageProviderBootstrapErrorInvalidMode         StorageProviderBootstrapErrorCode = "invalid_mode"
	StorageProviderBootstrapErrorMissingLocalRoot    StorageProviderBootstrapErrorCode = "missing_local_root"
	StorageProviderBootstrapErrorMissingBucket       StorageProviderBootstrapErrorCode = "missing_bucket"
	StorageProviderBootstrapErrorMissingEmulatorHost StorageProviderBootstrapErrorCode = "missing_emulator_host"
	StorageProviderBootstrapErrorInvalidEmulatorHost StorageProviderBootstrapErrorCode = "invalid_emulator_host"
	StorageProviderBootstrapErrorConnectFailed       StorageProviderBootstrapErrorCode = "connect_failed"
)

type StorageProviderBootstrapError struct {
	Code         StorageProviderBootstrapErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageProviderBootstrapError) Error() string {
	if e == nil {
		return "artifact storage bootstrap failed"
	}
	return fmt.Sprintf(
		"artifact storage bootstrap failed (code=%s mode=%q emulator_host=%q): %v",
		e.Code,
		e.Mode,
		e.EmulatorHost,
		e.Cause,
	)
}

func (e *StorageProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func storageConfig(cfg Config) blobstore.Config {
	return blobstore.Config{
		Mode:         blobstore.Mode(cfg.ArtifactStorageMode),
		LocalRoot:    cfg.UploadsDir,
		Bucket:       cfg.ArtifactBucket,
		EmulatorHost: cfg.StorageEmulatorHost,
	}
}

// resolveArtifactStore picks the local or GCS store. The returned close func is never nil.
func resolveArtifactStore(ctx context.Context, log *logger.Logger, cfg Config) (blobstore.Store, func() error, error) {
	noop := func() error { return nil }
	requested := storageConfig(cfg)

	storageCfg, err := blobstore.Resolve(requested)
	if err != nil {
		classified := classifyStorageProviderBootstrapError(storageCfg, err)
		log.Error("Artifact storage selection failed",
			"mode", requested.Mode,
			"emulator_host", requested.EmulatorHost,
			"error_code", storageProviderBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, noop, classified
	}

	log.Info("Selecting artifact storage provider",
		"mode", storageCfg.Mode,
		"mode_source", storageCfg.ModeSource(),
		"compatibility_fallback", storageCfg.CompatibilityFallback,
		"emulator_host", storageCfg.EmulatorHost,
	)

	if storageCfg.Mode == blobstore.ModeLocal {
		store, err := blobstore.NewLocalStore(storageCfg.LocalRoot)
		if err != nil {
			return nil, noop, classifyStorageProviderBootstrapError(storageCfg, err)
		}
		return store, noop, nil
	}

	bucket, err := newArtifactBucket(ctx, log, storageCfg, cfg.ArtifactPrefix)
	if err != nil {
		classified := classifyStorageProviderBootstrapError(storageCfg, err)
		log.Error("Artifact storage bootstrap failed",
			"mode", storageCfg.Mode,
			"mode_source", storageCfg.ModeSource(),
			"emulator_host", storageCfg.EmulatorHost,
			"error_code", storageProviderBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, noop, classified
	}
	return bucket, bucket.Close, nil
}

func classifyStorageProviderBootstrapError(storageCfg blobstore.Config, err error) error {
	code := StorageProviderBootstrapErrorConnectFailed
	var cfgErr *blobstore.ConfigError
	if errors.As(err, &cfgErr) {
		switch cfgErr.Code {
		case blobstore.ConfigErrorInvalidMode:
			code = StorageProviderBootstrapErrorInvalidMode
		case blobstore.ConfigErrorMissingLocalRoot:
			code = StorageProviderBootstrapErrorMissingLocalRoot
		case blobstore.ConfigErrorMissingBucket:
			code = StorageProviderBootstrapErrorMissingBucket
		case blobstore.ConfigErrorMissingEmulatorHost:
			code = StorageProviderBootstrapErrorMissingEmulatorHost
		case blobstore.ConfigErrorInvalidEmulatorHost:
			code = StorageProviderBootstrapErrorInvalidEmulatorHost
		}
	}
	return &StorageProviderBootstrapError{
		Code:         code,
		Mode:         string(storageCfg.Mode),
		EmulatorHost: storageCfg.EmulatorHost,
		Cause:        err,
	}
}

func storageProviderBootstrapErrorCode(err error) StorageProviderBootstrapErrorCode {
	var bootstrapErr *StorageProviderBootstrapError
	if errors.As(err, &bootstrapErr) && bootstrapErr.Code != "" {
		return bootstrapErr.Code
	}
	return StorageProviderBootstrapErrorConnectFailed
}
