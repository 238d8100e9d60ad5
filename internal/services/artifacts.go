package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/nexovate-backend/internal/data/repos"
	types "github.com/yungbote/nexovate-backend/internal/domain"
	"github.com/yungbote/nexovate-backend/internal/observability"
	apperrors "github.com/yungbote/nexovate-backend/internal/pkg/errors"
	"github.com/yungbote/nexovate-backend/internal/platform/blobstore"
	"github.com/yungbote/nexovate-backend/internal/platform/logger"
)

const ArtifactContentType = "application/pdf"

type ArtifactStore interface {
	// Save writes the bytes, then the metadata row. A metadata failure removes the bytes.
	Save(ctx context.Context, userID uuid.UUID, data []byte, meta *types.GenerationMetadata) (*types.Artifact, error)
	List(ctx context.Context, userID uuid.UUID) ([]*types.Artifact, error)
	// Fetch reports ErrNotFoundOrForbidden both for unknown names and for other owners' files.
	Fetch(ctx context.Context, userID uuid.UUID, fileName string) (*types.Artifact, io.ReadCloser, error)
}

type artifactStore struct {
	log     *logger.Logger
	blobs   blobstore.Store
	repo    repos.ArtifactRepo
	metrics *observability.Metrics
	now     func() time.Time
}

func NewArtifactStore(log *logger.Logger, blobs blobstore.Store, repo repos.ArtifactRepo, metrics *observability.Metrics) ArtifactStore {
	return &artifactStore{
		log:     log.With("service", "ArtifactStore", "storage_mode", blobs.Mode()),
		blobs:   blobs,
		repo:    repo,
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func artifactFileName(userID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("doc_%s_%d.pdf", userID, at.UnixMilli())
}

func (s *artifactStore) uniqueName(ctx context.Context, userID uuid.UUID, at time.Time) (string, error) {
	name := artifactFileName(userID, at)
	existing, err := s.repo.GetByFileName(ctx, nil, name)
	if err != nil {
		return "", err
	}
	if existing == nil {
		return name, nil
	}
	return fmt.Sprintf("doc_%s_%d_%s.pdf", userID, at.UnixMilli(), uuid.NewString()[:8]), nil
}

func (s *artifactStore) Save(ctx context.Context, userID uuid.UUID, data []byte, meta *types.GenerationMetadata) (*types.Artifact, error) {
	if len(data) == 0 {
		return nil, apperrors.Persistence("save artifact", errors.New("empty document"))
	}
	now := s.now()
	name, err := s.uniqueName(ctx, userID, now)
	if err != nil {
		return nil, apperrors.Persistence("allocate artifact name", err)
	}

	artifact := &types.Artifact{
		OwnerID:     userID,
		FileName:    name,
		StorageMode: string(s.blobs.Mode()),
		ContentType: ArtifactContentType,
		SizeBytes:   int64(len(data)),
		Status:      types.ArtifactStatusCompleted,
		CreatedAt:   now,
	}
	if meta != nil {
		if err := artifact.SetGeneration(*meta); err != nil {
			return nil, apperrors.Persistence("encode artifact metadata", err)
		}
	}

	location, err := s.blobs.Save(ctx, name, ArtifactContentType, data)
	if err != nil {
		return nil, apperrors.Persistence("write artifact bytes", err)
	}
	artifact.FilePath = location
	if err := s.repo.Create(ctx, nil, artifact); err != nil {
		if delErr := s.blobs.Delete(context.WithoutCancel(ctx), name); delErr != nil {
			cerr := &apperrors.ConsistencyError{Op: "delete orphaned artifact " + name, Err: delErr}
			s.log.Error("Orphaned artifact bytes left behind", "file_name", name, "error", cerr)
		}
		return nil, apperrors.Persistence("record artifact", err)
	}

	s.metrics.IncArtifactSaved()
	s.log.Info("Artifact saved", "user_id", userID, "file_name", name, "size_bytes", len(data))
	return artifact, nil
}

func (s *artifactStore) List(ctx context.Context, userID uuid.UUID) ([]*types.Artifact, error) {
	list, err := s.repo.ListByOwner(ctx, nil, userID)
	if err != nil {
		return nil, apperrors.Persistence("list artifacts", err)
	}
	return list, nil
}

func (s *artifactStore) Fetch(ctx context.Context, userID uuid.UUID, fileName string) (*types.Artifact, io.ReadCloser, error) {
	artifact, err := s.repo.GetByFileName(ctx, nil, fileName)
	if err != nil {
		return nil, nil, apperrors.Persistence("load artifact", err)
	}
	if artifact == nil || artifact.OwnerID != userID {
		return nil, nil, apperrors.ErrNotFoundOrForbidden
	}
	rc, err := s.blobs.Open(ctx, artifact.FileName)
	if errors.Is(err, blobstore.ErrNotFound) {
		s.log.Warn("Artifact bytes missing", "file_name", fileName)
		return nil, nil, apperrors.ErrNotFoundOrForbidden
	}
	if err != nil {
		return nil, nil, apperrors.Persistence("open artifact", err)
	}
	return artifact, rc, nil
}
