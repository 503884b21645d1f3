package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"codeberg.org/snonux/kanavox/internal/testutil"
)

func TestArchiveOutput(t *testing.T) {
	// Create output directory with some audio files
	outputDir := t.TempDir()
	testutil.CreateTestFile(t, filepath.Join(outputDir, "hello.wav"), []byte("RIFF hello"))
	testutil.CreateTestFile(t, filepath.Join(outputDir, "ワールド.wav"), []byte("RIFF world"))
	testutil.CreateTestFile(t, filepath.Join(outputDir, "words.txt"), []byte("hello\n"))

	archivePath, moved, err := ArchiveOutput(outputDir, "wav")
	if err != nil {
		t.Fatalf("ArchiveOutput failed: %v", err)
	}

	if moved != 2 {
		t.Errorf("Expected 2 archived files, got %d", moved)
	}

	// Verify the archive lives below the output directory
	if filepath.Dir(archivePath) != filepath.Join(outputDir, DirName) {
		t.Errorf("Unexpected archive location: %s", archivePath)
	}
	if !strings.HasPrefix(filepath.Base(archivePath), "run-") {
		t.Errorf("Archive directory name doesn't start with 'run-': %s", archivePath)
	}

	testutil.AssertFileNotExists(t, filepath.Join(outputDir, "hello.wav"))
	testutil.AssertFileNotExists(t, filepath.Join(outputDir, "ワールド.wav"))

	// Exactly the audio files are archived, unchanged
	expected := t.TempDir()
	testutil.CreateTestFile(t, filepath.Join(expected, "hello.wav"), []byte("RIFF hello"))
	testutil.CreateTestFile(t, filepath.Join(expected, "ワールド.wav"), []byte("RIFF world"))
	testutil.AssertSameFiles(t, expected, archivePath)

	// Other files stay where they are
	testutil.AssertFileExists(t, filepath.Join(outputDir, "words.txt"))
}

func TestArchiveOutput_NothingToArchive(t *testing.T) {
	outputDir := t.TempDir()

	archivePath, moved, err := ArchiveOutput(outputDir, ".wav")
	if err != nil {
		t.Fatalf("ArchiveOutput failed: %v", err)
	}
	if archivePath != "" || moved != 0 {
		t.Errorf("Expected nothing archived, got %q with %d files", archivePath, moved)
	}
	testutil.AssertFileNotExists(t, filepath.Join(outputDir, DirName))
}

func TestArchiveOutput_NonExistentDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	nonExistentDir := filepath.Join(tmpDir, "nonexistent")

	_, _, err := ArchiveOutput(nonExistentDir, "wav")
	if err == nil {
		t.Fatal("Expected error for non-existent directory")
	}

	if !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("Expected 'does not exist' error, got: %v", err)
	}
}

func TestArchiveOutput_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "out.wav")
	testutil.CreateTestFile(t, file, []byte("x"))

	if _, _, err := ArchiveOutput(file, "wav"); err == nil {
		t.Error("Expected error when output path is a file")
	}
}

func TestArchiveOutput_MultipleArchives(t *testing.T) {
	outputDir := t.TempDir()

	// Archive twice to ensure unique names
	for i := 0; i < 2; i++ {
		testutil.CreateTestFile(t, filepath.Join(outputDir, "test.wav"), []byte("audio"))

		if i == 1 {
			time.Sleep(10 * time.Millisecond)
		}

		if _, _, err := ArchiveOutput(outputDir, "wav"); err != nil {
			t.Fatalf("ArchiveOutput failed on iteration %d: %v", i, err)
		}
	}

	entries, err := os.ReadDir(filepath.Join(outputDir, DirName))
	if err != nil {
		t.Fatalf("Failed to read archive directory: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries in archive directory, got %d", len(entries))
	}

	if entries[0].Name() == entries[1].Name() {
		t.Error("Archive names are not unique")
	}
}
