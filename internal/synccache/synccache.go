// Package synccache bundles a sync run's artifacts — candidate,
// reference, and output SRT files plus the decision text — into a
// single zip archive under the video's cache directory, for later
// diagnosis of a disputed sync. Grounded on the teacher's
// internal/core/dependencies archive handling, which is the pack's
// only other user of mholt/archiver/v3.
package synccache

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mholt/archiver/v3"
)

// Bundle is one run's worth of artifacts to preserve.
type Bundle struct {
	RunID        string
	CandidatePath string
	ReferencePath string
	OutputPath    string
	DecisionText  string
}

// Write assembles the bundle's files into "{cacheDir}/{runID}.session.zip"
// and returns the archive path. Missing optional paths (empty string)
// are skipped rather than erroring.
func Write(cacheDir string, b Bundle) (string, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return "", fmt.Errorf("synccache: mkdir %s: %w", cacheDir, err)
	}

	stageDir, err := os.MkdirTemp(cacheDir, "session-*")
	if err != nil {
		return "", fmt.Errorf("synccache: stage dir: %w", err)
	}
	defer os.RemoveAll(stageDir)

	var sources []string
	for name, path := range map[string]string{
		"candidate.srt": b.CandidatePath,
		"reference.srt": b.ReferencePath,
		"output.srt":    b.OutputPath,
	} {
		if path == "" {
			continue
		}
		dst := filepath.Join(stageDir, name)
		if err := copyFile(path, dst); err != nil {
			return "", fmt.Errorf("synccache: stage %s: %w", name, err)
		}
		sources = append(sources, dst)
	}

	if b.DecisionText != "" {
		decisionPath := filepath.Join(stageDir, "decision.txt")
		if err := os.WriteFile(decisionPath, []byte(b.DecisionText), 0644); err != nil {
			return "", fmt.Errorf("synccache: write decision.txt: %w", err)
		}
		sources = append(sources, decisionPath)
	}

	archivePath := filepath.Join(cacheDir, b.RunID+".session.zip")
	if len(sources) == 0 {
		return "", fmt.Errorf("synccache: nothing to archive for run %s", b.RunID)
	}
	if err := archiver.Archive(sources, archivePath); err != nil {
		return "", fmt.Errorf("synccache: archive %s: %w", archivePath, err)
	}
	return archivePath, nil
}

// Extract unpacks a previously-written session archive into destDir,
// for inspecting a disputed historical run.
func Extract(archivePath, destDir string) error {
	if err := archiver.Unarchive(archivePath, destDir); err != nil {
		return fmt.Errorf("synccache: unarchive %s: %w", archivePath, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}
