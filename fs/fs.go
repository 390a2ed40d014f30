// Package fs provides file-based persistence for sessions and artifacts.
// Sessions and artifacts live under a single data directory:
//
//	<data>/sessions/<id>.json        session metadata
//	<data>/sessions/<id>/pages/*.json  per-page records, in discovery order
//	<data>/artifacts/<domain>_<id>.json  combined artifacts for embedding
//
// Metadata writes go through a temp file and rename so a concurrent reader
// observes either the old or the new record, never a torn one.
package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	sessionsDir  = "sessions"
	artifactsDir = "artifacts"
	pagesDir     = "pages"
)

// writeFileAtomic writes data to path via a temp file in the same directory
// followed by a rename.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, path)
}

// writeJSONAtomic marshals v and writes it atomically to path.
func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

// sanitizeName makes s safe for use in a filename.
func sanitizeName(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}

// pageFileName formats an ordinal page-record filename so lexical order
// matches discovery order for any crawl up to a million pages.
func pageFileName(position int) string {
	return fmt.Sprintf("%06d.json", position)
}
