// Package config loads the structured configuration the synchronization
// core consumes: sync_params, rift_params, phrase_params, ad_params, and
// score_params. It follows the same viper-backed load/default pattern the
// rest of the toolchain uses for its settings file.
package config

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/spf13/viper"
)

// SyncParams tunes the Synchronizer's accept/reject and variant-preference
// thresholds.
type SyncParams struct {
	MaxDevMs        float64 `mapstructure:"max_dev"`
	MaxOffsetMs     float64 `mapstructure:"max_offset"`
	MaxRatePercent  float64 `mapstructure:"max_rate"`
	MinDeltaDevMs   float64 `mapstructure:"min_deltadev"`
	MinDeltaOffsetMs float64 `mapstructure:"min_deltaoffset"`
	MinRatePercent  float64 `mapstructure:"min_rate"`
	MinDevMs        float64 `mapstructure:"min_dev"`
	MinOffsetMs     float64 `mapstructure:"min_offset"`
	MinRefPts       int     `mapstructure:"min_ref_pts"`
}

// RiftParams tunes the piecewise rift-segmentation search.
type RiftParams struct {
	MinPts          int     `mapstructure:"min_pts"`
	PrefPts         int     `mapstructure:"pref_pts"`
	BorderDiv       int     `mapstructure:"border_div"`
	MaxSlopeDelta   float64 `mapstructure:"max_slope_delta"`
	MaxParallelDelta float64 `mapstructure:"max_parallel_delta"`
	MinDevFrac      float64 `mapstructure:"min_dev_frac"`
	MaxDevFrac      float64 `mapstructure:"max_dev_frac"`
	TrialMins       float64 `mapstructure:"trial_mins"`
	MinTrialSegs    int     `mapstructure:"min_trial_segs"`
}

// PhraseParams tunes phrase-key indexability during correlation.
type PhraseParams struct {
	MinWordLen int     `mapstructure:"min_word_len"`
	MinStrLen  int     `mapstructure:"min_str_len"`
	MinWordMs  float64 `mapstructure:"min_word_ms"`
	MaxWordMs  float64 `mapstructure:"max_word_ms"`
	RateFudge  float64 `mapstructure:"rate_fudge"`
	FarOutMax  int     `mapstructure:"far_out_max"`
}

// AdParams supplies the regexes and proximity window used by ad detection.
type AdParams struct {
	LimitS          int      `mapstructure:"limit_s"`
	LimitedRegexes  []string `mapstructure:"limited_regexes"`
	GlobalRegexes   []string `mapstructure:"global_regexes"`
}

// ScoreParams is consumed by the download ranker, not the solver (spec
// §6); it is carried here only so a single config file covers every
// collaborator that shares this core.
type ScoreParams struct {
	CodeOptionScoreLengths bool `mapstructure:"code_option_score_lengths"`
}

// Config is the full structure handed to the synchronization core.
type Config struct {
	Sync   SyncParams   `mapstructure:"sync_params"`
	Rift   RiftParams   `mapstructure:"rift_params"`
	Phrase PhraseParams `mapstructure:"phrase_params"`
	Ad     AdParams     `mapstructure:"ad_params"`
	Score  ScoreParams  `mapstructure:"score_params"`
}

// Default returns the spec's documented default configuration.
func Default() *Config {
	return &Config{
		Sync: SyncParams{
			MaxDevMs:         30000,
			MaxOffsetMs:      300000,
			MaxRatePercent:   15.0,
			MinDeltaDevMs:    100,
			MinDeltaOffsetMs: 100,
			MinRatePercent:   0.10,
			MinDevMs:         350,
			MinOffsetMs:      100,
			MinRefPts:        100,
		},
		Rift: RiftParams{
			MinPts:           10,
			PrefPts:          20,
			BorderDiv:        6,
			MaxSlopeDelta:    0.025,
			MaxParallelDelta: 0.02,
			MinDevFrac:       0.80,
			MaxDevFrac:       1.25,
			TrialMins:        12.0,
			MinTrialSegs:     3,
		},
		Phrase: PhraseParams{
			MinWordLen: 5,
			MinStrLen:  8,
			MinWordMs:  375,
			MaxWordMs:  600,
			RateFudge:  3.0,
			FarOutMax:  10,
		},
		Ad: AdParams{
			LimitS: 120,
			GlobalRegexes: []string{
				`(?i)subtitles?\s+(downloaded|provided|synced)\s+(from|by)`,
				`(?i)www\.[a-z0-9-]+\.[a-z]{2,}`,
				`(?i)support\s+us\s+and\s+become\s+vip`,
			},
			LimitedRegexes: []string{
				`(?i)advertisement`,
				`(?i)\bsponsor(ed|s)?\b`,
			},
		},
	}
}

// Load reads a YAML/JSON/TOML config file through viper, overlaying the
// documented defaults and allowing BAKASYNC_-prefixed environment
// variables to override any key.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("BAKASYNC")
	v.AutomaticEnv()

	cfg := Default()
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	out := &Config{}
	if err := v.Unmarshal(out); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	return out, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	sections := map[string]interface{}{"sync_params": cfg.Sync, "rift_params": cfg.Rift,
		"phrase_params": cfg.Phrase, "ad_params": cfg.Ad, "score_params": cfg.Score}
	for section, params := range sections {
		rv := reflect.ValueOf(params)
		for i := 0; i < rv.NumField(); i++ {
			v.SetDefault(section+"."+rv.Type().Field(i).Tag.Get("mapstructure"), rv.Field(i).Interface())
		}
	}
}

// Registry holds compiled, immutable ad-detection regexes. It is built
// once per process and handed to callers by reference so the core never
// recompiles a pattern mid-run (spec §9 "Regex caching").
type Registry struct {
	Global  []*regexp.Regexp
	Limited []*regexp.Regexp
	LimitS  int
}

// CompileAdRegistry compiles AdParams into an immutable Registry. An
// invalid pattern is a configuration error and is returned to the caller,
// wrapped with the offending pattern (spec §7 IOError-at-boundary policy).
func CompileAdRegistry(p AdParams) (*Registry, error) {
	reg := &Registry{LimitS: p.LimitS}
	for _, pat := range p.GlobalRegexes {
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, fmt.Errorf("config: compile global ad pattern %q: %w", pat, err)
		}
		reg.Global = append(reg.Global, re)
	}
	for _, pat := range p.LimitedRegexes {
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, fmt.Errorf("config: compile limited ad pattern %q: %w", pat, err)
		}
		reg.Limited = append(reg.Limited, re)
	}
	return reg, nil
}
