package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sitedex/sitedex"
	"github.com/sitedex/sitedex/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactStore_SaveAndLoad(t *testing.T) {
	t.Parallel()

	store := fs.NewArtifactStore(t.TempDir())

	artifact := &sitedex.Artifact{
		Domain:     "ironworks.example.com",
		Collection: "ironworks",
		Pages: []sitedex.PageRecord{
			{PageName: "Home", PageURL: "https://ironworks.example.com/", Markdown: "# Welcome"},
			{PageName: "Pricing", PageURL: "https://ironworks.example.com/pricing", Markdown: "# Plans"},
		},
	}

	filename, err := store.SaveArtifact(context.Background(), "abc-123", artifact)
	require.NoError(t, err)
	assert.Contains(t, filename, "abc-123")
	assert.Contains(t, filename, "ironworks.example.com")

	loaded, err := store.LoadArtifact(context.Background(), filename)
	require.NoError(t, err)
	assert.Equal(t, artifact.Domain, loaded.Domain)
	assert.Equal(t, artifact.Collection, loaded.Collection)
	require.Len(t, loaded.Pages, 2)
	assert.Equal(t, "Pricing", loaded.Pages[1].PageName)
}

func TestArtifactStore_SaveArtifact_Invalid(t *testing.T) {
	t.Parallel()

	store := fs.NewArtifactStore(t.TempDir())

	_, err := store.SaveArtifact(context.Background(), "abc", &sitedex.Artifact{})

	require.Error(t, err)
	assert.Equal(t, sitedex.EINVALID, sitedex.ErrorCode(err))
}

func TestArtifactStore_LoadArtifact_NotFound(t *testing.T) {
	t.Parallel()

	store := fs.NewArtifactStore(t.TempDir())

	_, err := store.LoadArtifact(context.Background(), "missing.json")

	require.Error(t, err)
	assert.Equal(t, sitedex.ENOTFOUND, sitedex.ErrorCode(err))
}

func TestArtifactStore_SavePage_LexicalOrderMatchesPosition(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := fs.NewArtifactStore(dir)

	// Positions straddling 10000 stay lexically ordered, so very large
	// crawls keep discovery order on disk.
	for _, position := range []int{10000, 42, 9999} {
		err := store.SavePage(context.Background(), "sess", position, sitedex.PageRecord{
			PageName: "Page",
			PageURL:  "https://example.com/p",
			Markdown: "# Page",
		})
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "sessions", "sess", "pages"))
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "000042.json", entries[0].Name())
	assert.Equal(t, "009999.json", entries[1].Name())
	assert.Equal(t, "010000.json", entries[2].Name())
}

func TestArtifactStore_ListArtifacts_EmptyAndSorted(t *testing.T) {
	t.Parallel()

	store := fs.NewArtifactStore(t.TempDir())

	names, err := store.ListArtifacts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)

	// Saved artifacts list in lexical order regardless of save order.
	for _, session := range []string{"zz-2", "aa-1"} {
		_, err := store.SaveArtifact(context.Background(), session, &sitedex.Artifact{
			Domain:     "example.com",
			Collection: "example",
		})
		require.NoError(t, err)
	}

	names, err = store.ListArtifacts(context.Background())
	require.NoError(t, err)
	require.Len(t, names, 2)
	assert.Equal(t, "example.com_aa-1.json", names[0])
	assert.Equal(t, "example.com_zz-2.json", names[1])
}
