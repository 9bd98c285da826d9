package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultMatchesSpecTable(t *testing.T) {
	cfg := Default()
	if cfg.Sync.MaxDevMs != 30000 {
		t.Errorf("max_dev: got %v", cfg.Sync.MaxDevMs)
	}
	if cfg.Sync.MinRefPts != 100 {
		t.Errorf("min_ref_pts: got %v", cfg.Sync.MinRefPts)
	}
	if cfg.Rift.PrefPts != 20 {
		t.Errorf("pref_pts: got %v", cfg.Rift.PrefPts)
	}
	if cfg.Phrase.MinStrLen != 8 || cfg.Phrase.MinWordLen != 5 {
		t.Errorf("phrase params: got %+v", cfg.Phrase)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bakasync.yaml")
	yaml := `
sync_params:
  min_ref_pts: 50
ad_params:
  limit_s: 30
  global_regexes:
    - "(?i)custom-ad"
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Sync.MinRefPts != 50 {
		t.Errorf("expected overridden min_ref_pts=50, got %d", cfg.Sync.MinRefPts)
	}
	if cfg.Ad.LimitS != 30 {
		t.Errorf("expected overridden limit_s=30, got %d", cfg.Ad.LimitS)
	}
}

func TestCompileAdRegistry(t *testing.T) {
	cfg := Default()
	reg, err := CompileAdRegistry(cfg.Ad)
	if err != nil {
		t.Fatalf("CompileAdRegistry failed: %v", err)
	}
	if len(reg.Global) != len(cfg.Ad.GlobalRegexes) {
		t.Errorf("expected %d global patterns compiled, got %d", len(cfg.Ad.GlobalRegexes), len(reg.Global))
	}
}

func TestCompileAdRegistryRejectsBadPattern(t *testing.T) {
	_, err := CompileAdRegistry(AdParams{GlobalRegexes: []string{"(unclosed"}})
	if err == nil {
		t.Fatal("expected error for invalid regex")
	}
}
