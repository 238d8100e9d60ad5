package blobstore

import (
	"fmt"
	"net/url"
	"strings"
)

type Mode string

const (
	ModeLocal       Mode = "local"
	ModeGCS         Mode = "gcs"
	ModeGCSEmulator Mode = "gcs_emulator"
)

type Config struct {
	Mode         Mode
	LocalRoot    string
	Bucket       string
	EmulatorHost string
	// CompatibilityFallback is set when the mode was inferred from STORAGE_EMULATOR_HOST.
	CompatibilityFallback bool
}

func (cfg Config) ModeSource() string {
	if cfg.CompatibilityFallback {
		return "compatibility_fallback"
	}
	return "explicit_or_default"
}

type ConfigErrorCode string

const (
	ConfigErrorInvalidMode         ConfigErrorCode = "invalid_mode"
	ConfigErrorMissingLocalRoot    ConfigErrorCode = "missing_local_root"
	ConfigErrorMissingBucket       ConfigErrorCode = "missing_bucket"
	ConfigErrorMissingEmulatorHost ConfigErrorCode = "missing_emulator_host"
	ConfigErrorInvalidEmulatorHost ConfigErrorCode = "invalid_emulator_host"
)

type ConfigError struct {
	Code         ConfigErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *ConfigError) Error() string {
	switch e.Code {
	case ConfigErrorInvalidMode:
		return fmt.Sprintf("invalid ARTIFACT_STORAGE_MODE=%q (allowed: %q, %q, %q)", e.Mode, ModeLocal, ModeGCS, ModeGCSEmulator)
	case ConfigErrorMissingLocalRoot:
		return "ARTIFACT_STORAGE_MODE=local requires UPLOADS_DIR"
	case ConfigErrorMissingBucket:
		return fmt.Sprintf("ARTIFACT_STORAGE_MODE=%q requires ARTIFACT_BUCKET", e.Mode)
	case ConfigErrorMissingEmulatorHost:
		return fmt.Sprintf("ARTIFACT_STORAGE_MODE=%q requires STORAGE_EMULATOR_HOST", ModeGCSEmulator)
	case ConfigErrorInvalidEmulatorHost:
		return fmt.Sprintf("invalid STORAGE_EMULATOR_HOST=%q; expected absolute URL like http://fake-gcs:4443", e.EmulatorHost)
	default:
		return "invalid object storage config"
	}
}

func (e *ConfigError) Unwrap() error { return e.Cause }

// Resolve normalizes the mode. An empty mode becomes gcs_emulator when an
// emulator host is set, else local.
func Resolve(cfg Config) (Config, error) {
	cfg.EmulatorHost = strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/")
	raw := strings.TrimSpace(string(cfg.Mode))
	switch Mode(strings.ToLower(raw)) {
	case "":
		if cfg.EmulatorHost != "" {
			cfg.Mode = ModeGCSEmulator
			cfg.CompatibilityFallback = true
		} else {
			cfg.Mode = ModeLocal
		}
	case ModeLocal, ModeGCS, ModeGCSEmulator:
		cfg.Mode = Mode(strings.ToLower(raw))
	default:
		return cfg, &ConfigError{Code: ConfigErrorInvalidMode, Mode: raw}
	}
	return cfg, Validate(cfg)
}

func Validate(cfg Config) error {
	switch cfg.Mode {
	case ModeLocal:
		if strings.TrimSpace(cfg.LocalRoot) == "" {
			return &ConfigError{Code: ConfigErrorMissingLocalRoot, Mode: string(cfg.Mode)}
		}
		return nil
	case ModeGCS, ModeGCSEmulator:
		if strings.TrimSpace(cfg.Bucket) == "" {
			return &ConfigError{Code: ConfigErrorMissingBucket, Mode: string(cfg.Mode)}
		}
	default:
		return &ConfigError{Code: ConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
	if cfg.Mode != ModeGCSEmulator {
		return nil
	}
	if cfg.EmulatorHost == "" {
		return &ConfigError{Code: ConfigErrorMissingEmulatorHost, Mode: string(cfg.Mode)}
	}
	u, err := url.Parse(cfg.EmulatorHost)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &ConfigError{Code: ConfigErrorInvalidEmulatorHost, Mode: string(cfg.Mode), EmulatorHost: cfg.EmulatorHost, Cause: err}
	}
	return nil
}
