// Package syncengine implements the Synchronizer: the top-level
// decision logic that compares the unadjusted, linear-adjusted, and
// rift-adjusted variants of a candidate caption list and picks the best
// one against a reference track (spec §4.5).
package syncengine

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/lsilvatti/bakasync/internal/caption"
	"github.com/lsilvatti/bakasync/internal/config"
	"github.com/lsilvatti/bakasync/internal/phrase"
	"github.com/lsilvatti/bakasync/internal/regression"
	"github.com/lsilvatti/bakasync/internal/rift"
	"github.com/lsilvatti/bakasync/internal/srtio"
)

// Variant names a chosen synchronization path.
type Variant string

const (
	VariantUnadjusted Variant = "unadjusted"
	VariantLinear     Variant = "linear"
	VariantRift       Variant = "rift"
	VariantFallback   Variant = "fallback"
	VariantFailed     Variant = "failed"
)

// Decision is the result of Analyze: the chosen variant, its caption
// list, and a human-readable one-line summary (spec §7).
type Decision struct {
	RunID   string
	Variant Variant
	Chosen  *caption.List
	Text    string

	DevUnadjustedMs float64
	DevLinearMs     float64
	DevRiftMs       float64
	Points          int
}

// score is the per-variant result of the extract→correlate→prune→fit
// pipeline.
type score struct {
	ok      bool
	model   regression.Model
	reduced []phrase.Caption
}

// Analyze runs the full decision procedure. candidate and reference are
// not mutated; Analyze works on internal clones. If fallback is
// non-nil, it represents an already-committed prior sync that wins ties
// per spec §4.5 step 4. If outPath is non-empty, the winning caption
// list is written there.
func Analyze(candidate, reference *caption.List, cfg *config.Config, outPath string, fallback *caption.List) (Decision, error) {
	runID := uuid.NewString()

	candWork := candidate.Clone()
	candWork.Repair()
	refWork := reference.Clone()
	refWork.Repair()

	unadjusted := runPipeline(candWork, refWork, cfg)
	if !unadjusted.ok {
		return Decision{
			RunID:   runID,
			Variant: VariantFailed,
			Chosen:  candWork,
			Text:    fmt.Sprintf("FAIL cannot compute linear regression [pts=%d] run=%s", unadjusted.model.N, runID),
			Points:  unadjusted.model.N,
		}, nil
	}

	if err := rejectOutOfBounds(unadjusted.model, cfg); err != nil {
		return Decision{
			RunID:   runID,
			Variant: VariantUnadjusted,
			Chosen:  candWork,
			Text:    fmt.Sprintf("FAIL %v [pts=%d] run=%s", err, unadjusted.model.N, runID),
			Points:  unadjusted.model.N,
		}, nil
	}

	chosenVariant := VariantUnadjusted
	chosenList := candWork
	chosenModel := unadjusted.model

	var linear, riftScore score
	triggered := shouldAdjust(unadjusted.model, cfg)

	if triggered {
		linearCandidate := candWork.Clone()
		applyGlobalFormula(linearCandidate, unadjusted.model)
		linear = runPipeline(linearCandidate, refWork, cfg)

		if linear.ok && isBetter(unadjusted.model, linear.model, 20, cfg) {
			chosenVariant = VariantLinear
			chosenList = linearCandidate
			chosenModel = linear.model
		}

		if linear.ok && linear.model.N >= cfg.Rift.MinPts*2 {
			riftCandidate := linearCandidate.Clone()
			x, y := phrase.Points(linear.reduced, linearCandidate)
			rifts := rift.Detect(x, y, lastEndMs(linearCandidate), cfg.Rift)
			if len(rifts) > 0 {
				formulas := rift.Assemble(x, y, rifts)
				capNos := matchedCapNos(linear.reduced)
				segments := rift.Place(formulas, capNos, linearCandidate)
				rift.Apply(riftCandidate, segments)
				riftScore = runPipeline(riftCandidate, refWork, cfg)

				if riftScore.ok && isBetter(chosenModel, riftScore.model, cfg.Sync.MinDeltaDevMs, cfg) {
					chosenVariant = VariantRift
					chosenList = riftCandidate
					chosenModel = riftScore.model
				}
			}
		}
	}

	if fallback != nil {
		fallbackScore := runPipeline(fallback, refWork, cfg)
		if fallbackScore.ok && !isBetter(fallbackScore.model, chosenModel, 20, cfg) {
			chosenVariant = VariantFallback
			chosenList = fallback
			chosenModel = fallbackScore.model
		}
	}

	if outPath != "" {
		if err := srtio.WriteFile(outPath, chosenList, false); err != nil {
			return Decision{}, err
		}
	}

	d := Decision{
		RunID:           runID,
		Variant:         chosenVariant,
		Chosen:          chosenList,
		DevUnadjustedMs: unadjusted.model.Stdev,
		Points:          chosenModel.N,
	}
	if linear.ok {
		d.DevLinearMs = linear.model.Stdev
	}
	if riftScore.ok {
		d.DevRiftMs = riftScore.model.Stdev
	}
	d.Text = formatDecision(chosenVariant, chosenModel, d, runID)
	return d, nil
}

func runPipeline(candidate, reference *caption.List, cfg *config.Config) score {
	cw := phrase.ExtractWords(candidate, cfg.Phrase.MinWordMs, cfg.Phrase.MaxWordMs, cfg.Phrase.RateFudge)
	rw := phrase.ExtractWords(reference, cfg.Phrase.MinWordMs, cfg.Phrase.MaxWordMs, cfg.Phrase.RateFudge)

	corr := phrase.NewCorrelator(cfg.Phrase.MinStrLen, cfg.Phrase.MinWordLen, cfg.Phrase.FarOutMax)
	matched := corr.Correlate(cw, rw, len(candidate.Captions))
	reduced := phrase.RemoveOutliers(matched, candidate)

	x, y := phrase.Points(reduced, candidate)
	if len(x) == 0 {
		return score{ok: false}
	}
	model := regression.Fit(x, y)
	return score{ok: true, model: model, reduced: reduced}
}

func shouldAdjust(m regression.Model, cfg *config.Config) bool {
	if m.N < cfg.Sync.MinRefPts {
		return false
	}
	return math.Abs(m.Intercept) >= cfg.Sync.MinOffsetMs || math.Abs(m.Slope)*100 >= cfg.Sync.MinRatePercent
}

func rejectOutOfBounds(m regression.Model, cfg *config.Config) error {
	if m.Stdev > cfg.Sync.MaxDevMs {
		return fmt.Errorf("fit exceeds max_dev (stdev=%.0fms)", m.Stdev)
	}
	if math.Abs(m.Intercept) > cfg.Sync.MaxOffsetMs {
		return fmt.Errorf("fit exceeds max_offset (intercept=%.0fms)", m.Intercept)
	}
	if math.Abs(m.Slope)*100 > cfg.Sync.MaxRatePercent {
		return fmt.Errorf("fit exceeds max_rate (rate=%.2f%%)", math.Abs(m.Slope)*100)
	}
	return nil
}

// isBetter implements spec §4.5 step 3's variant scoring rule.
func isBetter(a, b regression.Model, deltaDev float64, cfg *config.Config) bool {
	if a.Stdev-b.Stdev >= deltaDev {
		return true
	}
	return math.Abs(a.Intercept)-math.Abs(b.Intercept) >= cfg.Sync.MinDeltaOffsetMs
}

// applyGlobalFormula applies a single linear model uniformly across
// every caption, the "single-linear-adjusted" variant.
func applyGlobalFormula(l *caption.List, m regression.Model) {
	for i := range l.Captions {
		c := &l.Captions[i]
		c.BeginMs = c.BeginMs + int64(m.Intercept+m.Slope*float64(c.BeginMs))
		c.EndMs = c.EndMs + int64(m.Intercept+m.Slope*float64(c.EndMs))
	}
}

func matchedCapNos(reduced []phrase.Caption) []int {
	out := make([]int, len(reduced))
	for i, c := range reduced {
		out[i] = c.CapNo
	}
	return out
}

func lastEndMs(l *caption.List) int64 {
	if len(l.Captions) == 0 {
		return 0
	}
	return l.Captions[len(l.Captions)-1].EndMs
}

func formatDecision(v Variant, m regression.Model, d Decision, runID string) string {
	label := ""
	switch v {
	case VariantUnadjusted:
		label = "KEEP unadjusted subs"
	case VariantLinear:
		label = "PICK linear adjusted subs"
	case VariantRift:
		label = fmt.Sprintf("PICK rift adjusted subs %.0f/%.0f/%.0fms", d.DevUnadjustedMs, d.DevLinearMs, d.DevRiftMs)
	case VariantFallback:
		label = "KEEP prior synced subs"
	}
	return fmt.Sprintf("OK dev %.2fs shift %.1fs rate %.2f%% pts %d [%s] run=%s",
		m.Stdev/1000, m.Intercept/1000, m.Slope*100, m.N, label, runID)
}
