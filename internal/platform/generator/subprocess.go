package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/nexovate-backend/internal/platform/logger"
)

const tracerName = "github.com/yungbote/nexovate-backend/internal/platform/generator"

type SubprocessConfig struct {
	// Interpreter runs ScriptPath (e.g. "python3"). Empty executes ScriptPath directly.
	Interpreter string
	ScriptPath  string
	// WorkDir holds request files and is the engine's working directory.
	WorkDir string
	Timeout time.Duration
	// KillGrace bounds how long Wait lingers on inherited pipes after a kill.
	KillGrace time.Duration
	Env       []string
}

// SubprocessEngine writes each request to a private temp file, runs the engine
// script against it, and removes every transport file before returning.
type SubprocessEngine struct {
	cfg    SubprocessConfig
	log    *logger.Logger
	tracer trace.Tracer
}

func NewSubprocessEngine(cfg SubprocessConfig, log *logger.Logger) (*SubprocessEngine, error) {
	if strings.TrimSpace(cfg.ScriptPath) == "" {
		return nil, fmt.Errorf("generator script path required")
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = filepath.Join(os.TempDir(), "nexovate-generator")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Minute
	}
	if cfg.KillGrace <= 0 {
		cfg.KillGrace = 2 * time.Second
	}
	if err := os.MkdirAll(cfg.WorkDir, 0o700); err != nil {
		return nil, fmt.Errorf("create generator work dir: %w", err)
	}
	return &SubprocessEngine{
		cfg:    cfg,
		log:    log.With("client", "SubprocessEngine"),
		tracer: otel.Tracer(tracerName),
	}, nil
}

// AssertReady checks that the interpreter and script can be found.
func (e *SubprocessEngine) AssertReady() error {
	if e.cfg.Interpreter != "" {
		if _, err := exec.LookPath(e.cfg.Interpreter); err != nil {
			return fmt.Errorf("generator interpreter %q not found: %w", e.cfg.Interpreter, err)
		}
	}
	if _, err := os.Stat(e.cfg.ScriptPath); err != nil {
		return fmt.Errorf("generator script %q: %w", e.cfg.ScriptPath, err)
	}
	return nil
}

func (e *SubprocessEngine) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, span := e.tracer.Start(ctx, "generator.subprocess",
		trace.WithAttributes(attribute.String("generator.mode", string(req.Mode))))
	defer span.End()

	res, err := e.run(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return res, err
}

func (e *SubprocessEngine) run(ctx context.Context, req Request) (*Result, error) {
	reqPath, cleanup, err := e.writeRequest(req)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	runCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	name, args := e.argv(reqPath, req.Mode)
	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.Dir = e.cfg.WorkDir
	cmd.Env = append(os.Environ(), e.cfg.Env...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = e.cfg.KillGrace
	configureProcessGroup(cmd)

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	if runErr != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			e.log.Warn("Generation engine timed out", "mode", req.Mode, "user_id", req.UserID, "timeout", e.cfg.Timeout.String())
			return nil, &TimeoutError{Mode: req.Mode, After: e.cfg.Timeout}
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("generation aborted: %w", ctx.Err())
		}
		engineErr := &EngineError{Mode: req.Mode, ExitCode: -1, Stderr: strings.TrimSpace(stderr.String())}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			engineErr.ExitCode = exitErr.ExitCode()
		} else if engineErr.Stderr == "" {
			engineErr.Stderr = runErr.Error()
		}
		e.log.Warn("Generation engine failed",
			"mode", req.Mode,
			"user_id", req.UserID,
			"exit_code", engineErr.ExitCode,
			"duration_ms", elapsed.Milliseconds(),
			"stderr", truncate(engineErr.Stderr, 2000),
		)
		return nil, engineErr
	}

	e.log.Debug("Generation engine finished", "mode", req.Mode, "user_id", req.UserID, "duration_ms", elapsed.Milliseconds())

	out := strings.TrimSpace(stdout.String())
	if req.Mode.IsText() {
		return &Result{Text: out}, nil
	}
	return e.collectDocument(lastLine(out))
}

func (e *SubprocessEngine) argv(reqPath string, mode Mode) (string, []string) {
	args := append([]string{reqPath}, mode.Flags()...)
	if e.cfg.Interpreter == "" {
		return e.cfg.ScriptPath, args
	}
	return e.cfg.Interpreter, append([]string{e.cfg.ScriptPath}, args...)
}

func (e *SubprocessEngine) collectDocument(outPath string) (*Result, error) {
	if outPath == "" {
		return nil, &OutputMissingError{}
	}
	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(e.cfg.WorkDir, outPath)
	}
	info, err := os.Stat(outPath)
	if err != nil || info.IsDir() {
		return nil, &OutputMissingError{Path: outPath}
	}
	defer func() {
		if rmErr := os.Remove(outPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			e.log.Warn("Failed to remove engine output", "path", outPath, "error", rmErr)
		}
	}()
	raw, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("read generation output: %w", err)
	}
	return &Result{Document: raw}, nil
}

// writeRequest creates req_<user>_<uuid>.json; the name is unique per call.
func (e *SubprocessEngine) writeRequest(req Request) (string, func(), error) {
	if err := os.MkdirAll(e.cfg.WorkDir, 0o700); err != nil {
		return "", nil, fmt.Errorf("create generator work dir: %w", err)
	}
	name := fmt.Sprintf("req_%s_%s.json", safeName(req.UserID), uuid.NewString())
	path := filepath.Join(e.cfg.WorkDir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", nil, fmt.Errorf("create request file: %w", err)
	}
	cleanup := func() {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			e.log.Warn("Failed to remove request file", "path", path, "error", rmErr)
		}
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(req); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, fmt.Errorf("encode request file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close request file: %w", err)
	}
	return path, cleanup, nil
}

func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '_'
		}
	}, s)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
