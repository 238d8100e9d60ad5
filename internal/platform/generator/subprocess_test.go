package generator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/nexovate-backend/internal/platform/logger"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func newTestEngine(t *testing.T, script string, timeout time.Duration) (*SubprocessEngine, string) {
	t.Helper()
	workDir := filepath.Join(t.TempDir(), "work")
	eng, err := NewSubprocessEngine(SubprocessConfig{
		ScriptPath: script,
		WorkDir:    workDir,
		Timeout:    timeout,
		KillGrace:  500 * time.Millisecond,
	}, logger.Nop())
	require.NoError(t, err)
	return eng, workDir
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Empty(t, names, "transport files left behind")
}

func draftRequest() Request {
	return Request{
		UserID:     "7f1c",
		Mode:       ModeDraft,
		Answers:    map[string]string{"Project Domain": "AI"},
		ExtraNotes: "mobile first",
		ImageLinks: []string{"https://example.com/a.webp"},
	}
}

func TestSubprocessDraftReadsRequestFile(t *testing.T) {
	script := writeScript(t, `grep -q '"mode": "draft"' "$1" || exit 9
echo "flag=$2"
echo "Recommendation body"`)
	eng, workDir := newTestEngine(t, script, 5*time.Second)

	res, err := eng.Generate(context.Background(), draftRequest())
	require.NoError(t, err)
	assert.Equal(t, "flag=--draft-only\nRecommendation body", res.Text)
	assertEmptyDir(t, workDir)
}

func TestSubprocessRefinePassesFlag(t *testing.T) {
	script := writeScript(t, `grep -q '"modifications": "shorter"' "$1" || exit 9
echo "$2"`)
	eng, _ := newTestEngine(t, script, 5*time.Second)

	req := draftRequest()
	req.Mode = ModeRefine
	req.ExistingText = "old"
	req.Modifications = "shorter"
	res, err := eng.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "--refine", res.Text)
}

func TestSubprocessFailureCarriesStderr(t *testing.T) {
	script := writeScript(t, `echo "model quota exceeded" >&2
exit 3`)
	eng, workDir := newTestEngine(t, script, 5*time.Second)

	_, err := eng.Generate(context.Background(), draftRequest())
	var ee *EngineError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 3, ee.ExitCode)
	assert.Equal(t, "model quota exceeded", ee.Stderr)
	assertEmptyDir(t, workDir)
}

func TestSubprocessTimeoutKillsEngine(t *testing.T) {
	script := writeScript(t, `sleep 30`)
	eng, workDir := newTestEngine(t, script, 200*time.Millisecond)

	start := time.Now()
	_, err := eng.Generate(context.Background(), draftRequest())
	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Less(t, time.Since(start), 10*time.Second)
	assertEmptyDir(t, workDir)
}

func TestSubprocessRenderReadsAndRemovesOutput(t *testing.T) {
	script := writeScript(t, `[ -z "$2" ] || exit 9
printf '%%PDF-1.4 body' > out.pdf
echo "rendering..."
echo out.pdf`)
	eng, workDir := newTestEngine(t, script, 5*time.Second)

	req := draftRequest()
	req.Mode = ModeRender
	req.Text = "final text"
	req.Title = "AI"
	res, err := eng.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 body", string(res.Document))
	assertEmptyDir(t, workDir)
}

func TestSubprocessRenderMissingOutput(t *testing.T) {
	script := writeScript(t, `echo /definitely/not/here.pdf`)
	eng, workDir := newTestEngine(t, script, 5*time.Second)

	req := draftRequest()
	req.Mode = ModeRender
	req.Text = "final text"
	_, err := eng.Generate(context.Background(), req)
	var om *OutputMissingError
	require.ErrorAs(t, err, &om)
	assert.Equal(t, "/definitely/not/here.pdf", om.Path)
	assertEmptyDir(t, workDir)
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	s := "abcé"
	assert.Equal(t, "abc...", truncate(s, 4))
	assert.True(t, utf8.ValidString(truncate("日本語", 4)))
	assert.Equal(t, "short", truncate("short", 10))
}

func TestSubprocessRejectsInvalidRequest(t *testing.T) {
	eng, _ := newTestEngine(t, writeScript(t, "exit 0"), time.Second)
	req := draftRequest()
	req.Mode = ModeRender
	_, err := eng.Generate(context.Background(), req)
	assert.True(t, errors.Is(err, ErrInvalidRequest))
}

func TestSubprocessConcurrentRequestsUseDistinctFiles(t *testing.T) {
	script := writeScript(t, `basename "$1"`)
	eng, workDir := newTestEngine(t, script, 5*time.Second)

	const n = 8
	var (
		mu    sync.Mutex
		seen  = map[string]bool{}
		wg    sync.WaitGroup
		errCh = make(chan error, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := eng.Generate(context.Background(), draftRequest())
			if err != nil {
				errCh <- err
				return
			}
			mu.Lock()
			seen[res.Text] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}
	assert.Len(t, seen, n)
	for name := range seen {
		assert.True(t, strings.HasPrefix(name, "req_7f1c_"), name)
	}
	assertEmptyDir(t, workDir)
}

func TestArgvWithInterpreter(t *testing.T) {
	eng := &SubprocessEngine{cfg: SubprocessConfig{Interpreter: "python3", ScriptPath: "advisor.py"}}
	name, args := eng.argv("/tmp/req.json", ModeRefine)
	assert.Equal(t, "python3", name)
	assert.Equal(t, []string{"advisor.py", "/tmp/req.json", "--refine"}, args)
}
