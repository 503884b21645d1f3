package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DirName is the directory inside the output directory holding the archives
const DirName = "archive"

// ArchiveOutput moves the audio files with extension ext out of outputDir
// into a new timestamped directory below outputDir/archive. It returns the
// archive path and the number of moved files. Nothing is created when there
// is nothing to archive.
func ArchiveOutput(outputDir, ext string) (string, int, error) {
	// Check if output directory exists
	info, err := os.Stat(outputDir)
	if os.IsNotExist(err) {
		return "", 0, fmt.Errorf("output directory does not exist: %s", outputDir)
	}
	if err != nil {
		return "", 0, fmt.Errorf("failed to access output directory: %w", err)
	}
	if !info.IsDir() {
		return "", 0, fmt.Errorf("output path is not a directory: %s", outputDir)
	}

	files, err := filepath.Glob(filepath.Join(outputDir, "*."+strings.TrimPrefix(ext, ".")))
	if err != nil {
		return "", 0, fmt.Errorf("failed to list audio files: %w", err)
	}
	if len(files) == 0 {
		return "", 0, nil
	}

	archiveDir := filepath.Join(outputDir, DirName)

	// Generate timestamp
	timestamp := time.Now().Format("20060102-150405")
	archivePath := filepath.Join(archiveDir, "run-"+timestamp)

	// Check if archive already exists (unlikely but possible)
	if _, err := os.Stat(archivePath); err == nil {
		// Add microseconds to make it unique
		timestamp = time.Now().Format("20060102-150405.000000")
		archivePath = filepath.Join(archiveDir, "run-"+timestamp)
	}

	if err := os.MkdirAll(archivePath, 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create archive directory: %w", err)
	}

	moved := 0
	for _, f := range files {
		if err := os.Rename(f, filepath.Join(archivePath, filepath.Base(f))); err != nil {
			return archivePath, moved, fmt.Errorf("failed to archive %s: %w", filepath.Base(f), err)
		}
		moved++
	}

	return archivePath, moved, nil
}
