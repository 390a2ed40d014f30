package mock

import (
	"context"

	"github.com/sitedex/sitedex"
)

var _ sitedex.ArtifactStore = (*ArtifactStore)(nil)

// ArtifactStore is a mock implementation of sitedex.ArtifactStore.
type ArtifactStore struct {
	SavePageFn      func(ctx context.Context, sessionID string, position int, page sitedex.PageRecord) error
	SaveArtifactFn  func(ctx context.Context, sessionID string, artifact *sitedex.Artifact) (string, error)
	LoadArtifactFn  func(ctx context.Context, filename string) (*sitedex.Artifact, error)
	ListArtifactsFn func(ctx context.Context) ([]string, error)
}

func (s *ArtifactStore) SavePage(ctx context.Context, sessionID string, position int, page sitedex.PageRecord) error {
	return s.SavePageFn(ctx, sessionID, position, page)
}

func (s *ArtifactStore) SaveArtifact(ctx context.Context, sessionID string, artifact *sitedex.Artifact) (string, error) {
	return s.SaveArtifactFn(ctx, sessionID, artifact)
}

func (s *ArtifactStore) LoadArtifact(ctx context.Context, filename string) (*sitedex.Artifact, error) {
	return s.LoadArtifactFn(ctx, filename)
}

func (s *ArtifactStore) ListArtifacts(ctx context.Context) ([]string, error) {
	return s.ListArtifactsFn(ctx)
}
