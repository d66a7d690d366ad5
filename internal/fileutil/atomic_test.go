package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "nested", "session.json")
	testData := []byte(`{"playerId":"p1"}`)

	if err := WriteFileAtomic(testFile, testData, 0600, 0700); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}

	data, err := os.ReadFile(testFile)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(data) != string(testData) {
		t.Errorf("File content mismatch: got %q, want %q", string(data), string(testData))
	}

	info, err := os.Stat(testFile)
	if err != nil {
		t.Fatalf("Failed to stat file: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("File permissions mismatch: got %o, want %o", info.Mode().Perm(), 0600)
	}

	entries, err := os.ReadDir(filepath.Dir(testFile))
	if err != nil {
		t.Fatalf("Failed to read dir: %v", err)
	}
	for _, entry := range entries {
		if entry.Name() != "session.json" {
			t.Errorf("Unexpected file in directory: %s", entry.Name())
		}
	}
}

func TestWriteFileAtomicOverwrite(t *testing.T) {
	t.Parallel()

	testFile := filepath.Join(t.TempDir(), "session.json")

	if err := WriteFileAtomic(testFile, []byte("initial"), 0600, 0700); err != nil {
		t.Fatalf("Initial write failed: %v", err)
	}
	if err := WriteFileAtomic(testFile, []byte("updated"), 0600, 0700); err != nil {
		t.Fatalf("Overwrite failed: %v", err)
	}

	data, ok, err := ReadFileIfExists(testFile)
	if err != nil || !ok {
		t.Fatalf("ReadFileIfExists: ok=%v err=%v", ok, err)
	}
	if string(data) != "updated" {
		t.Errorf("File content mismatch: got %q", string(data))
	}
}

func TestReadAndRemoveMissingFile(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "missing.json")

	data, ok, err := ReadFileIfExists(missing)
	if err != nil || ok || data != nil {
		t.Errorf("expected missing file to read as absent, got ok=%v err=%v", ok, err)
	}
	if err := RemoveIfExists(missing); err != nil {
		t.Errorf("RemoveIfExists on missing file: %v", err)
	}
}
