package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/nexovate-backend/internal/data/repos/testutil"
	types "github.com/yungbote/nexovate-backend/internal/domain"
	"github.com/yungbote/nexovate-backend/internal/platform/userlock"
)

// flakyDraftCache fails the next failDeletes calls to Delete.
type flakyDraftCache struct {
	DraftCache
	mu          sync.Mutex
	failDeletes int
}

func (f *flakyDraftCache) Delete(ctx context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	if f.failDeletes > 0 {
		f.failDeletes--
		f.mu.Unlock()
		return errBoom
	}
	f.mu.Unlock()
	return f.DraftCache.Delete(ctx, userID)
}

func TestPurgeClearsCycle(t *testing.T) {
	h := newHarness(t)
	h.finalized(t, 2)
	require.NoError(t, h.cache.Put(h.ctx, h.user.ID, "draft"))

	require.NoError(t, h.cleanup.Purge(h.ctx, h.user.ID))

	answers, err := h.answerRepo.ListByUser(h.ctx, nil, h.user.ID)
	require.NoError(t, err)
	assert.Empty(t, answers)
	ids, err := h.selectionRepo.ListTemplateIDs(h.ctx, nil, h.user.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
	st, err := h.finalRepo.Get(h.ctx, nil, h.user.ID)
	require.NoError(t, err)
	assert.Nil(t, st)
	_, ok, err := h.cache.Get(h.ctx, h.user.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReconcile(t *testing.T) {
	h := newHarness(t)
	now := time.Now().UTC()

	// Cleanup failed after a successful save: locked, with a newer artifact.
	done := testutil.SeedUser(t, h.ctx, h.tx, "done-"+uuid.NewString()[:8]+"@example.com")
	require.NoError(t, h.finalRepo.Lock(h.ctx, nil, done.ID, now.Add(-time.Hour)))
	require.NoError(t, h.artifactRepo.Create(h.ctx, nil, &types.Artifact{
		OwnerID:     done.ID,
		FileName:    "doc_" + done.ID.String() + "_1.pdf",
		FilePath:    "/uploads/x.pdf",
		StorageMode: "local",
		ContentType: ArtifactContentType,
		SizeBytes:   3,
		Status:      types.ArtifactStatusCompleted,
		CreatedAt:   now.Add(-30 * time.Minute),
	}))

	// Locked for two days with nothing produced.
	stale := testutil.SeedUser(t, h.ctx, h.tx, "stale-"+uuid.NewString()[:8]+"@example.com")
	require.NoError(t, h.finalRepo.Lock(h.ctx, nil, stale.ID, now.Add(-48*time.Hour)))

	// Locked recently, still within the grace period.
	fresh := testutil.SeedUser(t, h.ctx, h.tx, "fresh-"+uuid.NewString()[:8]+"@example.com")
	require.NoError(t, h.finalRepo.Lock(h.ctx, nil, fresh.ID, now.Add(-time.Minute)))

	report, err := h.cleanup.Reconcile(h.ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, ReconcileReport{Locked: 3, Purged: 1, Stale: 1}, *report)

	locked, err := h.finalRepo.IsLocked(h.ctx, nil, done.ID)
	require.NoError(t, err)
	assert.False(t, locked)
	locked, err = h.finalRepo.IsLocked(h.ctx, nil, stale.ID)
	require.NoError(t, err)
	assert.True(t, locked, "stale questionnaires are reported, not purged")
}

func TestPurgeDraftFailureKeepsCycleLocked(t *testing.T) {
	h := newHarness(t)
	h.finalized(t, 2)
	cache := &flakyDraftCache{DraftCache: NewMemoryDraftCache(16, 0), failDeletes: 1}
	require.NoError(t, cache.Put(h.ctx, h.user.ID, "draft"))
	cleanup := NewCleanupCoordinator(h.tx, testutil.Logger(t), userlock.NewMemoryLocker(), cache, h.answerRepo, h.selectionRepo, h.finalRepo, h.artifactRepo, nil)

	err := cleanup.Purge(h.ctx, h.user.ID)
	require.Error(t, err)

	locked, err := h.finalRepo.IsLocked(h.ctx, nil, h.user.ID)
	require.NoError(t, err)
	assert.True(t, locked, "a failed draft delete must not unlock the cycle")
	answers, err := h.answerRepo.ListByUser(h.ctx, nil, h.user.ID)
	require.NoError(t, err)
	assert.Len(t, answers, 2)

	require.NoError(t, cleanup.Purge(h.ctx, h.user.ID))
	_, ok, err := cache.Get(h.ctx, h.user.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	locked, err = h.finalRepo.IsLocked(h.ctx, nil, h.user.ID)
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestNextCycleNeverRendersPreviousDraft(t *testing.T) {
	h := newHarness(t)
	log := testutil.Logger(t)
	locker := userlock.NewMemoryLocker()
	cache := &flakyDraftCache{DraftCache: NewMemoryDraftCache(16, 0), failDeletes: 1}
	assembler := NewDocumentAssembler(log, h.engine, cache, h.questionnaire, nil)
	cleanup := NewCleanupCoordinator(h.tx, log, locker, cache, h.answerRepo, h.selectionRepo, h.finalRepo, h.artifactRepo, nil)
	documents := NewDocumentService(h.tx, log, locker, h.gate, h.finalRepo, assembler, h.artifacts, cleanup, h.notify)

	qs := h.seedQuestions(t, 2)
	tpl := testutil.SeedTemplate(t, h.ctx, h.tx, "https://img.example.com/t.png")
	h.answerAll(t, qs)
	require.NoError(t, h.questionnaire.Finalize(h.ctx, h.user.ID, []uint{tpl.ID}))

	_, err := documents.Generate(h.ctx, h.user.ID, GenerateRequest{})
	require.NoError(t, err, "cleanup failures do not fail a saved document")
	locked, err := h.finalRepo.IsLocked(h.ctx, nil, h.user.ID)
	require.NoError(t, err)
	require.True(t, locked)

	report, err := cleanup.Reconcile(h.ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Purged)

	h.engine.draft = "CYCLE TWO DRAFT"
	h.answerAll(t, qs)
	require.NoError(t, h.questionnaire.Finalize(h.ctx, h.user.ID, []uint{tpl.ID}))
	_, err = documents.Generate(h.ctx, h.user.ID, GenerateRequest{})
	require.NoError(t, err)

	assert.Equal(t, "CYCLE TWO DRAFT", h.engine.last().Text)
}
