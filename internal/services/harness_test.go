package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/nexovate-backend/internal/data/repos"
	"github.com/yungbote/nexovate-backend/internal/data/repos/testutil"
	types "github.com/yungbote/nexovate-backend/internal/domain"
	"github.com/yungbote/nexovate-backend/internal/platform/blobstore"
	"github.com/yungbote/nexovate-backend/internal/platform/generator"
	"github.com/yungbote/nexovate-backend/internal/platform/userlock"
)

type fakeEngine struct {
	mu        sync.Mutex
	calls     []generator.Request
	draft     string
	refined   string
	failModes map[generator.Mode]error
}

func (f *fakeEngine) Generate(_ context.Context, req generator.Request) (*generator.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if err := f.failModes[req.Mode]; err != nil {
		return nil, err
	}
	switch req.Mode {
	case generator.ModeDraft:
		return &generator.Result{Text: f.draft}, nil
	case generator.ModeRefine:
		return &generator.Result{Text: f.refined}, nil
	default:
		return &generator.Result{Document: []byte("%PDF-1.4\n" + req.Title + "\n" + req.Text)}, nil
	}
}

func (f *fakeEngine) modes() []generator.Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]generator.Mode, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Mode)
	}
	return out
}

func (f *fakeEngine) last() generator.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

type recordingNotifier struct {
	mu    sync.Mutex
	files []string
	err   error
}

func (n *recordingNotifier) DocumentReady(_ context.Context, _ uuid.UUID, a *types.Artifact, _ []byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.files = append(n.files, a.FileName)
	return n.err
}

// failingBlobs wraps a store and can fail the next Save or Delete.
type failingBlobs struct {
	blobstore.Store
	saveErr   error
	deleteErr error
	deleted   []string
}

func (f *failingBlobs) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	return f.Store.Save(ctx, name, contentType, data)
}

func (f *failingBlobs) Delete(ctx context.Context, name string) error {
	f.deleted = append(f.deleted, name)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.Store.Delete(ctx, name)
}

type failingArtifactRepo struct {
	repos.ArtifactRepo
	createErr error
}

func (f *failingArtifactRepo) Create(ctx context.Context, tx *gorm.DB, a *types.Artifact) error {
	if f.createErr != nil {
		return f.createErr
	}
	return f.ArtifactRepo.Create(ctx, tx, a)
}

type harness struct {
	ctx    context.Context
	tx     *gorm.DB
	user   *types.User
	engine *fakeEngine
	notify *recordingNotifier
	blobs  *failingBlobs

	questionRepo  repos.QuestionRepo
	answerRepo    repos.AnswerRepo
	finalRepo     repos.FinalizationRepo
	selectionRepo repos.TemplateSelectionRepo
	artifactRepo  *failingArtifactRepo

	cache         DraftCache
	gate          FinalizationGate
	questionnaire QuestionnaireService
	assembler     DocumentAssembler
	artifacts     ArtifactStore
	cleanup       CleanupCoordinator
	documents     DocumentService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)

	local, err := blobstore.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	h := &harness{
		ctx:    ctx,
		tx:     tx,
		user:   testutil.SeedUser(t, ctx, tx, fmt.Sprintf("%s@example.com", uuid.NewString()[:8])),
		engine: &fakeEngine{draft: "Build a campus marketplace.", refined: "Build a campus marketplace in Flutter."},
		notify: &recordingNotifier{},
		blobs:  &failingBlobs{Store: local},

		questionRepo:  repos.NewQuestionRepo(tx, log),
		answerRepo:    repos.NewAnswerRepo(tx, log),
		finalRepo:     repos.NewFinalizationRepo(tx, log),
		selectionRepo: repos.NewTemplateSelectionRepo(tx, log),
		artifactRepo:  &failingArtifactRepo{ArtifactRepo: repos.NewArtifactRepo(tx, log)},
	}
	templateRepo := repos.NewTemplateRepo(tx, log)
	locker := userlock.NewMemoryLocker()

	h.cache = NewDBDraftCache(log, repos.NewDraftRepo(tx, log))
	h.gate = NewFinalizationGate(log, h.questionRepo, templateRepo, h.selectionRepo, h.finalRepo)
	h.questionnaire = NewQuestionnaireService(tx, log, locker, h.gate, h.questionRepo, h.answerRepo, h.finalRepo, h.selectionRepo, templateRepo)
	h.assembler = NewDocumentAssembler(log, h.engine, h.cache, h.questionnaire, nil)
	h.artifacts = NewArtifactStore(log, h.blobs, h.artifactRepo, nil)
	h.cleanup = NewCleanupCoordinator(tx, log, locker, h.cache, h.answerRepo, h.selectionRepo, h.finalRepo, h.artifactRepo, nil)
	h.documents = NewDocumentService(tx, log, locker, h.gate, h.finalRepo, h.assembler, h.artifacts, h.cleanup, h.notify)
	return h
}

// seedQuestions creates n required questions; the last one is the project category.
func (h *harness) seedQuestions(t *testing.T, n int) []*types.Question {
	t.Helper()
	var out []*types.Question
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("q%d_%s", i, uuid.NewString()[:6])
		if i == n-1 {
			key = types.KeyProjectCategory
		}
		if i%2 == 0 && key != types.KeyProjectCategory {
			out = append(out, testutil.SeedQuestion(t, h.ctx, h.tx, key, "Web", "Mobile", "Other"))
		} else {
			out = append(out, testutil.SeedQuestion(t, h.ctx, h.tx, key))
		}
	}
	return out
}

func (h *harness) answerAll(t *testing.T, qs []*types.Question) {
	t.Helper()
	for _, q := range qs {
		answer := "free text for " + q.Key
		if q.Type == types.QuestionTypeMultipleChoice {
			answer = fmt.Sprint(q.Options[0].ID)
		}
		if q.Key == types.KeyProjectCategory {
			answer = "Smart Campus"
		}
		require.NoError(t, h.questionnaire.SaveResponse(h.ctx, h.user.ID, q.ID, answer))
	}
}

// finalized seeds n answered questions and one template, then locks the questionnaire.
func (h *harness) finalized(t *testing.T, n int) *types.Template {
	t.Helper()
	qs := h.seedQuestions(t, n)
	h.answerAll(t, qs)
	tpl := testutil.SeedTemplate(t, h.ctx, h.tx, "https://img.example.com/t.png")
	require.NoError(t, h.questionnaire.Finalize(h.ctx, h.user.ID, []uint{tpl.ID}))
	return tpl
}

func readAll(t *testing.T, rc io.ReadCloser) []byte {
	t.Helper()
	defer rc.Close()
	var buf bytes.Buffer
	_, err := io.Copy(&buf, rc)
	require.NoError(t, err)
	return buf.Bytes()
}

var errBoom = errors.New("boom")
