// Package mkvprobe shells out to mkvmerge/mkvextract to supply the two
// things bakasync needs from the source video: its duration (for the
// CLI's --duration tail-check hint, spec §6) and its embedded subtitle
// track (the "EMBEDDED.srt" cache artifact, spec §6). Adapted from the
// teacher's internal/core/media MKVToolNix wrapper, trimmed of the
// translation-specific muxing and attachment-extraction paths this
// domain has no use for.
package mkvprobe

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Track is one track entry from mkvmerge's identify JSON.
type Track struct {
	ID       int
	Type     string // video, audio, subtitles
	Codec    string
	Language string
	Name     string
	Default  bool
	Forced   bool
}

// FileInfo is the subset of mkvmerge -J output bakasync consumes.
type FileInfo struct {
	FileName   string
	Tracks     []Track
	DurationMs int64
}

type mkvMergeJSON struct {
	Container struct {
		Properties struct {
			Duration int64 `json:"duration"`
		} `json:"properties"`
	} `json:"container"`
	Tracks []struct {
		ID         int    `json:"id"`
		Type       string `json:"type"`
		Codec      string `json:"codec"`
		Properties struct {
			Language     string `json:"language"`
			TrackName    string `json:"track_name"`
			DefaultTrack bool   `json:"default_track"`
			ForcedTrack  bool   `json:"forced_track"`
		} `json:"properties"`
	} `json:"tracks"`
}

// BinPath is the directory containing mkvmerge and mkvextract, checked
// before falling back to $PATH.
var BinPath = "./bin"

func binaryPath(name string) string {
	candidate := filepath.Join(BinPath, name)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	if path, err := exec.LookPath(name); err == nil {
		return path
	}
	return name
}

// Analyze runs `mkvmerge -J` against path and returns its duration and
// track list.
func Analyze(path string) (*FileInfo, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("mkvprobe: %w", err)
	}

	cmd := exec.Command(binaryPath("mkvmerge"), "-J", path)
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("mkvprobe: mkvmerge failed: %s", string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("mkvprobe: exec mkvmerge: %w", err)
	}

	var raw mkvMergeJSON
	if err := json.Unmarshal(output, &raw); err != nil {
		return nil, fmt.Errorf("mkvprobe: parse mkvmerge JSON: %w", err)
	}

	info := &FileInfo{
		FileName:   filepath.Base(path),
		DurationMs: raw.Container.Properties.Duration,
		Tracks:     make([]Track, 0, len(raw.Tracks)),
	}
	for _, t := range raw.Tracks {
		info.Tracks = append(info.Tracks, Track{
			ID:       t.ID,
			Type:     t.Type,
			Codec:    t.Codec,
			Language: t.Properties.Language,
			Name:     t.Properties.TrackName,
			Default:  t.Properties.DefaultTrack,
			Forced:   t.Properties.ForcedTrack,
		})
	}
	return info, nil
}

// DurationSeconds converts the probed duration to the unit the
// --duration CLI flag and synccompare.Compare expect.
func (f *FileInfo) DurationSeconds() float64 {
	return float64(f.DurationMs) / 1000
}

// SubtitleTracks filters FileInfo.Tracks down to subtitle streams.
func SubtitleTracks(info *FileInfo) []Track {
	var out []Track
	for _, t := range info.Tracks {
		if t.Type == "subtitles" {
			out = append(out, t)
		}
	}
	return out
}

// TrackByLanguage finds the first subtitle track matching an ISO
// language code, used to pick the embedded candidate reference when
// more than one subtitle stream is present.
func TrackByLanguage(tracks []Track, lang string) (Track, bool) {
	lang = strings.ToLower(lang)
	for _, t := range tracks {
		if strings.ToLower(t.Language) == lang {
			return t, true
		}
	}
	return Track{}, false
}

// ExtractSubtitleTrack pulls one subtitle track out of the container
// via mkvextract, producing the cache dir's EMBEDDED.srt artifact.
func ExtractSubtitleTrack(inputPath string, trackID int, outputPath string) error {
	if _, err := os.Stat(inputPath); err != nil {
		return fmt.Errorf("mkvprobe: %w", err)
	}
	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("mkvprobe: mkdir %s: %w", dir, err)
		}
	}

	spec := fmt.Sprintf("%d:%s", trackID, outputPath)
	cmd := exec.Command(binaryPath("mkvextract"), "tracks", inputPath, spec)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("mkvprobe: mkvextract failed: %s: %w", string(out), err)
	}
	if _, err := os.Stat(outputPath); err != nil {
		return fmt.Errorf("mkvprobe: extraction produced no output: %w", err)
	}
	return nil
}
