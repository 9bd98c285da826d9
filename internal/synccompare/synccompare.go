// Package synccompare implements the Comparator: a non-adjusting
// sync-quality report that aligns a candidate track against a reference
// by clear-text equality (exact, or fuzzy above fuzzyThreshold) and
// summarizes the residual offset/rate
// (spec §4.6). Unlike syncengine, it never rewrites the candidate.
package synccompare

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/lsilvatti/bakasync/internal/caption"
	"github.com/lsilvatti/bakasync/internal/config"
	"github.com/lsilvatti/bakasync/internal/regression"
)

// fuzzyThreshold is the minimum text similarity (1 - normalized edit
// distance) at which two captions are considered the same line despite
// not matching exactly — OCR noise and re-encoding commonly perturb a
// character or two without changing the timing.
const fuzzyThreshold = 0.85

func textsMatch(a, b string) bool {
	if a == b {
		return true
	}
	if a == "" || b == "" {
		return false
	}
	return similarity(a, b) >= fuzzyThreshold
}

func similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}

// Report is the Comparator's output.
type Report struct {
	Dev         float64 // seconds
	ShiftMs     float64
	RatePercent float64
	N           int

	UnmatchedCandidate int
	UnmatchedReference int

	Short         bool // subs end > 5s before the video
	Long          bool // subs end > 180s after the video
	AfterVideoEnd []int
}

// Compare repairs and ad-purges both tracks, aligns captions by exact
// text equality, falling back to levenshtein similarity of at least
// fuzzyThreshold, with a bounded look-ahead, and fits a regression over
// the aligned offsets. durationSec is the video-duration hint from
// spec §6 CLI surface; 0 disables the tail checks.
func Compare(candidate, reference *caption.List, adReg *config.Registry, durationSec float64) Report {
	cand := candidate.Clone()
	ref := reference.Clone()
	cand.Repair()
	ref.Repair()

	if adReg != nil {
		cand.DetectAds(adReg.Global, adReg.Limited, adReg.LimitS)
		cand.PurgeAds()
		ref.DetectAds(adReg.Global, adReg.Limited, adReg.LimitS)
		ref.PurgeAds()
	}

	skipMax := abs(len(cand.Captions)-len(ref.Captions)) + 10

	var xs, ys []float64
	var unmatchedCand, unmatchedRef int

	i, j := 0, 0
	for i < len(cand.Captions) && j < len(ref.Captions) {
		if textsMatch(cand.Captions[i].JoinedText(), ref.Captions[j].JoinedText()) {
			xs = append(xs, float64(ref.Captions[j].BeginMs))
			ys = append(ys, float64(cand.Captions[i].BeginMs-ref.Captions[j].BeginMs))
			i++
			j++
			continue
		}

		foundJ := findAhead(ref.Captions, j, skipMax, cand.Captions[i].JoinedText())
		foundI := findAhead(cand.Captions, i, skipMax, ref.Captions[j].JoinedText())

		switch {
		case foundJ >= 0 && (foundI < 0 || foundJ-j <= foundI-i):
			unmatchedRef += foundJ - j
			j = foundJ
		case foundI >= 0:
			unmatchedCand += foundI - i
			i = foundI
		default:
			unmatchedCand++
			unmatchedRef++
			i++
			j++
		}
	}
	unmatchedCand += len(cand.Captions) - i
	unmatchedRef += len(ref.Captions) - j

	report := Report{UnmatchedCandidate: unmatchedCand, UnmatchedReference: unmatchedRef}
	if len(xs) > 0 {
		model := regression.Fit(xs, ys)
		report.Dev = model.Stdev / 1000
		report.ShiftMs = model.Intercept
		report.RatePercent = model.Slope * 100
		report.N = model.N
	}

	if durationSec > 0 && len(cand.Captions) > 0 {
		videoEndMs := durationSec * 1000
		lastEnd := float64(cand.Captions[len(cand.Captions)-1].EndMs)
		if videoEndMs-lastEnd > 5000 {
			report.Short = true
		}
		if lastEnd-videoEndMs > 180000 {
			report.Long = true
		}
		for idx, c := range cand.Captions {
			if float64(c.EndMs) > videoEndMs {
				report.AfterVideoEnd = append(report.AfterVideoEnd, idx)
			}
		}
	}

	return report
}

func findAhead(captions []caption.Caption, from, limit int, text string) int {
	for k := from + 1; k < len(captions) && k <= from+limit; k++ {
		if textsMatch(captions[k].JoinedText(), text) {
			return k
		}
	}
	return -1
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
