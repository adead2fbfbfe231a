// Package testutil provides common test helpers for the mt project.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// TempConfigFile creates a temporary config.toml with the given content
// and returns its path. The file is automatically cleaned up.
func TempConfigFile(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("TempConfigFile: write failed: %v", err)
	}

	return path
}

// TempBookmarkFile writes the given bookmarks as a JSON object into a
// temporary bookmarks.json and returns its path.
func TempBookmarkFile(t *testing.T, bookmarks map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "bookmarks.json")

	data, err := json.MarshalIndent(bookmarks, "", "  ")
	if err != nil {
		t.Fatalf("TempBookmarkFile: marshal failed: %v", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("TempBookmarkFile: write failed: %v", err)
	}

	return path
}

// ReadBookmarkFile decodes the bookmark file at path.
func ReadBookmarkFile(t *testing.T, path string) map[string]string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadBookmarkFile: read failed: %v", err)
	}
	m := make(map[string]string)
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("ReadBookmarkFile: decode failed: %v", err)
	}
	return m
}

// TempTree creates files under a temporary directory. Keys are slash
// separated relative paths; a key ending in "/" creates a directory.
// Returns the root directory.
func TempTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if rel[len(rel)-1] == '/' {
			if err := os.MkdirAll(p, 0755); err != nil {
				t.Fatalf("TempTree: mkdir failed: %v", err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("TempTree: mkdir failed: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatalf("TempTree: write failed: %v", err)
		}
	}
	return root
}
