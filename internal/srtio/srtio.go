// Package srtio performs the durable file I/O the core never does for
// itself: writing a caption list to disk through the write-temp-then-
// rename pattern (spec §5, §9 "Deterministic I/O"), with optional
// rotation of the previous file to a .bak sibling.
package srtio

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lsilvatti/bakasync/internal/caption"
)

// ReadFile loads and parses an SRT file from disk.
func ReadFile(path string) (*caption.List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("srtio: read %s: %w", path, err)
	}
	return caption.Parse(data), nil
}

// WriteFile serializes l and writes it to path via write-temp-then-
// rename. If rotateBak is true and path already exists, the existing
// file is preserved as path+".bak" before the new content lands.
func WriteFile(path string, l *caption.List, rotateBak bool) error {
	if rotateBak {
		if _, err := os.Stat(path); err == nil {
			if err := copyFile(path, path+".bak"); err != nil {
				return fmt.Errorf("srtio: rotate backup for %s: %w", path, err)
			}
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, l.Serialize(), 0644); err != nil {
		return fmt.Errorf("srtio: write temp file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("srtio: rename %s to %s: %w", tmp, path, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	dir := filepath.Dir(dst)
	tmp := filepath.Join(dir, ".bak-tmp-"+filepath.Base(dst))
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, dst)
}
