package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/nexovate-backend/internal/domain"
	apperrors "github.com/yungbote/nexovate-backend/internal/pkg/errors"
	"github.com/yungbote/nexovate-backend/internal/platform/blobstore"
)

func TestArtifactNamesAreUniquePerMillisecond(t *testing.T) {
	h := newHarness(t)
	store := h.artifacts.(*artifactStore)
	fixed := time.UnixMilli(1700000000123).UTC()
	store.now = func() time.Time { return fixed }

	a, err := store.Save(h.ctx, h.user.ID, []byte("%PDF one"), nil)
	require.NoError(t, err)
	b, err := store.Save(h.ctx, h.user.ID, []byte("%PDF two"), nil)
	require.NoError(t, err)

	assert.Equal(t, "doc_"+h.user.ID.String()+"_1700000000123.pdf", a.FileName)
	assert.NotEqual(t, a.FileName, b.FileName)
	assert.Equal(t, string(blobstore.ModeLocal), a.StorageMode)

	list, err := store.List(h.ctx, h.user.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestArtifactFetchChecksOwnership(t *testing.T) {
	h := newHarness(t)
	a, err := h.artifacts.Save(h.ctx, h.user.ID, []byte("%PDF mine"), nil)
	require.NoError(t, err)

	_, _, err = h.artifacts.Fetch(h.ctx, uuid.New(), a.FileName)
	assert.ErrorIs(t, err, apperrors.ErrNotFoundOrForbidden)
	_, _, err = h.artifacts.Fetch(h.ctx, h.user.ID, "doc_missing.pdf")
	assert.ErrorIs(t, err, apperrors.ErrNotFoundOrForbidden)

	_, rc, err := h.artifacts.Fetch(h.ctx, h.user.ID, a.FileName)
	require.NoError(t, err)
	assert.Equal(t, "%PDF mine", string(readAll(t, rc)))
}

func TestArtifactSaveFailures(t *testing.T) {
	h := newHarness(t)

	h.blobs.saveErr = errors.New("disk full")
	_, err := h.artifacts.Save(h.ctx, h.user.ID, []byte("x"), nil)
	assert.Equal(t, apperrors.KindPersistence, apperrors.KindOf(err))
	h.blobs.saveErr = nil

	// Metadata fails and the orphan cleanup fails too; the save still reports the
	// metadata error.
	h.artifactRepo.createErr = errBoom
	h.blobs.deleteErr = errors.New("permission denied")
	_, err = h.artifacts.Save(context.Background(), h.user.ID, []byte("x"), nil)
	assert.ErrorIs(t, err, errBoom)
	assert.Len(t, h.blobs.deleted, 1)
}

func TestArtifactGenerationMetadataRoundTrips(t *testing.T) {
	h := newHarness(t)
	meta := &types.GenerationMetadata{
		Title:       "Smart Campus",
		TemplateIDs: []uint{3, 7},
		ExtraNotes:  true,
		TextSource:  types.TextSourceCached,
	}
	saved, err := h.artifacts.Save(h.ctx, h.user.ID, []byte("%PDF meta"), meta)
	require.NoError(t, err)

	got, rc, err := h.artifacts.Fetch(h.ctx, h.user.ID, saved.FileName)
	require.NoError(t, err)
	rc.Close()
	decoded, err := got.Generation()
	require.NoError(t, err)
	assert.Equal(t, meta, decoded)

	plain, err := h.artifacts.Save(h.ctx, h.user.ID, []byte("%PDF plain"), nil)
	require.NoError(t, err)
	decoded, err = plain.Generation()
	require.NoError(t, err)
	assert.Nil(t, decoded)
}
