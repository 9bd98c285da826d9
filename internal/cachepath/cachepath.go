// Package cachepath knows the filename grammar of the per-video cache
// directory (spec §6): reference/embedded/downloaded subtitle variants
// and quirk marker files. It never interprets a quirk's semantics — the
// core only reads/writes the marker file name, per spec's GLOSSARY.
package cachepath

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// QuirkTag names a quirk marker state, ordered by ascending priority
// (lower wins) as tabulated in spec §6.
type QuirkTag string

const (
	QuirkForeign   QuirkTag = "FOREIGN"
	QuirkIgnore    QuirkTag = "IGNORE"
	QuirkScore     QuirkTag = "SCORE"
	QuirkInternal  QuirkTag = "INTERNAL"
	QuirkAutodefer QuirkTag = "AUTODEFER"
)

var quirkPriority = map[QuirkTag]int{
	QuirkForeign:   0,
	QuirkIgnore:    1,
	QuirkScore:     2,
	QuirkInternal:  3,
	QuirkAutodefer: 4,
}

// Quirk is a parsed quirk marker: its tag and optional two-digit score.
type Quirk struct {
	Tag   QuirkTag
	Score int // -1 if absent
}

// Priority returns the marker's priority (lower wins); unknown tags sort
// last.
func (q Quirk) Priority() int {
	if p, ok := quirkPriority[q.Tag]; ok {
		return p
	}
	return len(quirkPriority)
}

var quirkFileRe = regexp.MustCompile(`^quirk\.([A-Z]+)(?:\.(\d{2}))?$`)

// Paths resolves the cache directory, candidate SRT, reference SRT, and
// any quirk markers for a given video file and subtitle language.
type Paths struct {
	VideoPath string
	Stem      string
	CacheDir  string
	Lang      string
}

// Resolve derives the cache layout for videoPath per spec §6.
func Resolve(videoPath, lang string) Paths {
	dir := filepath.Dir(videoPath)
	base := filepath.Base(videoPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return Paths{
		VideoPath: videoPath,
		Stem:      stem,
		CacheDir:  filepath.Join(dir, stem+".cache"),
		Lang:      lang,
	}
}

// CandidatePath returns the candidate SRT alongside the video.
func (p Paths) CandidatePath() string {
	dir := filepath.Dir(p.VideoPath)
	return filepath.Join(dir, fmt.Sprintf("%s.%s.srt", p.Stem, p.Lang))
}

// ReferencePath returns the primary (REFERENCE) or, if absent, the
// lower-priority AUTOSUB reference path in the cache dir.
func (p Paths) ReferencePath() string {
	primary := filepath.Join(p.CacheDir, p.Stem+".REFERENCE.srt")
	if _, err := os.Stat(primary); err == nil {
		return primary
	}
	return filepath.Join(p.CacheDir, p.Stem+".AUTOSUB.srt")
}

// EmbeddedPath returns the internal subtitle-extraction artifact path.
func (p Paths) EmbeddedPath() string {
	return filepath.Join(p.CacheDir, p.Stem+".EMBEDDED.srt")
}

// TorrentPath returns the downloaded-raw-SRT artifact path.
func (p Paths) TorrentPath() string {
	return filepath.Join(p.CacheDir, p.Stem+".TORRENT.srt")
}

// QuirkMarkerPath returns the marker file path for a given quirk.
func (p Paths) QuirkMarkerPath(q Quirk) string {
	name := "quirk." + string(q.Tag)
	if q.Score >= 0 {
		name += fmt.Sprintf(".%02d", q.Score)
	}
	return filepath.Join(p.CacheDir, name)
}

// WriteQuirk creates (or replaces) the quirk marker as an empty file.
func WriteQuirk(p Paths, q Quirk) error {
	if err := os.MkdirAll(p.CacheDir, 0755); err != nil {
		return fmt.Errorf("cachepath: mkdir %s: %w", p.CacheDir, err)
	}
	path := p.QuirkMarkerPath(q)
	if err := os.WriteFile(path, nil, 0644); err != nil {
		return fmt.Errorf("cachepath: write quirk marker %s: %w", path, err)
	}
	return nil
}

// ReadQuirk scans the cache dir for quirk markers and returns the one
// with the lowest priority (FOREIGN beats IGNORE beats SCORE beats
// INTERNAL beats AUTODEFER), or nil if none exist.
func ReadQuirk(p Paths) (*Quirk, error) {
	entries, err := os.ReadDir(p.CacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("cachepath: read cache dir %s: %w", p.CacheDir, err)
	}

	var found []Quirk
	for _, e := range entries {
		m := quirkFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		q := Quirk{Tag: QuirkTag(m[1]), Score: -1}
		if m[2] != "" {
			if n, err := strconv.Atoi(m[2]); err == nil {
				q.Score = n
			}
		}
		found = append(found, q)
	}
	if len(found) == 0 {
		return nil, nil
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Priority() < found[j].Priority() })
	return &found[0], nil
}
