package cachepath

import (
	"path/filepath"
	"testing"
)

func TestResolvePaths(t *testing.T) {
	p := Resolve("/movies/Some.Movie.2024.mkv", "en")
	if p.Stem != "Some.Movie.2024" {
		t.Errorf("unexpected stem: %q", p.Stem)
	}
	if p.CandidatePath() != "/movies/Some.Movie.2024.en.srt" {
		t.Errorf("unexpected candidate path: %q", p.CandidatePath())
	}
	if p.CacheDir != "/movies/Some.Movie.2024.cache" {
		t.Errorf("unexpected cache dir: %q", p.CacheDir)
	}
}

func TestQuirkWriteReadPriority(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "Movie.mkv")
	p := Resolve(video, "en")

	if err := WriteQuirk(p, Quirk{Tag: QuirkAutodefer, Score: -1}); err != nil {
		t.Fatal(err)
	}
	if err := WriteQuirk(p, Quirk{Tag: QuirkScore, Score: 42}); err != nil {
		t.Fatal(err)
	}

	q, err := ReadQuirk(p)
	if err != nil {
		t.Fatal(err)
	}
	if q == nil {
		t.Fatal("expected a quirk to be found")
	}
	if q.Tag != QuirkScore || q.Score != 42 {
		t.Errorf("expected SCORE.42 to win priority, got %+v", q)
	}
}

func TestReadQuirkMissingCacheDir(t *testing.T) {
	p := Resolve(filepath.Join(t.TempDir(), "NoCache.mkv"), "en")
	q, err := ReadQuirk(p)
	if err != nil {
		t.Fatalf("expected no error for missing cache dir, got %v", err)
	}
	if q != nil {
		t.Errorf("expected nil quirk, got %+v", q)
	}
}

func TestQuirkMarkerPathFormat(t *testing.T) {
	p := Resolve("/x/Movie.mkv", "en")
	got := p.QuirkMarkerPath(Quirk{Tag: QuirkScore, Score: 7})
	want := filepath.Join(p.CacheDir, "quirk.SCORE.07")
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
