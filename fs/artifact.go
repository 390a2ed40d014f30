package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sitedex/sitedex"
)

// Ensure ArtifactStore implements sitedex.ArtifactStore at compile time.
var _ sitedex.ArtifactStore = (*ArtifactStore)(nil)

// ArtifactStore implements sitedex.ArtifactStore on the local filesystem.
// Page records are written incrementally under the owning session's
// directory; the combined artifact lands in the shared artifacts directory
// with the session id embedded in its filename.
type ArtifactStore struct {
	dataDir string
}

// NewArtifactStore creates an ArtifactStore rooted at dataDir.
func NewArtifactStore(dataDir string) *ArtifactStore {
	return &ArtifactStore{dataDir: dataDir}
}

func (s *ArtifactStore) artifactsPath() string {
	return filepath.Join(s.dataDir, artifactsDir)
}

// SavePage persists a single page record at the given ordinal position.
func (s *ArtifactStore) SavePage(ctx context.Context, sessionID string, position int, page sitedex.PageRecord) error {
	path := filepath.Join(s.dataDir, sessionsDir, sanitizeName(sessionID), pagesDir, pageFileName(position))
	if err := writeJSONAtomic(path, page); err != nil {
		return sitedex.Errorf(sitedex.EUNAVAILABLE, "saving page record: %v", err)
	}
	return nil
}

// SaveArtifact persists the combined artifact and returns its filename.
func (s *ArtifactStore) SaveArtifact(ctx context.Context, sessionID string, artifact *sitedex.Artifact) (string, error) {
	if err := artifact.Validate(); err != nil {
		return "", err
	}

	filename := sanitizeName(artifact.Domain) + "_" + sanitizeName(sessionID) + ".json"
	if err := writeJSONAtomic(filepath.Join(s.artifactsPath(), filename), artifact); err != nil {
		return "", sitedex.Errorf(sitedex.EUNAVAILABLE, "saving artifact: %v", err)
	}
	return filename, nil
}

// LoadArtifact loads an artifact by filename.
func (s *ArtifactStore) LoadArtifact(ctx context.Context, filename string) (*sitedex.Artifact, error) {
	data, err := os.ReadFile(filepath.Join(s.artifactsPath(), filepath.Base(filename)))
	if os.IsNotExist(err) {
		return nil, sitedex.Errorf(sitedex.ENOTFOUND, "artifact %q not found", filename)
	}
	if err != nil {
		return nil, sitedex.Errorf(sitedex.EUNAVAILABLE, "loading artifact: %v", err)
	}

	var artifact sitedex.Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, sitedex.Errorf(sitedex.EINTERNAL, "decoding artifact %q: %v", filename, err)
	}
	return &artifact, nil
}

// ListArtifacts returns all artifact filenames in lexical order.
func (s *ArtifactStore) ListArtifacts(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.artifactsPath())
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, sitedex.Errorf(sitedex.EUNAVAILABLE, "listing artifacts: %v", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
