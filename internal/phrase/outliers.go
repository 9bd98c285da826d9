package phrase

import (
	"sort"

	"github.com/lsilvatti/bakasync/internal/caption"
	"github.com/lsilvatti/bakasync/internal/regression"
)

// monotonicDistances are the flanking offsets checked during
// monotonicity pruning, largest first.
var monotonicDistances = []int{5, 4, 3, 2}

// RemoveOutliers applies the three-stage outlier removal pass described
// in spec §4.3: monotonicity pruning, iterative residual pruning, and
// best-match selection. It returns the surviving captions in ascending
// CapNo order, each reduced to at most one Match.
func RemoveOutliers(matched map[int]*Caption, candidate *caption.List) []Caption {
	working := snapshotSorted(matched)
	working = monotonicityPrune(working, candidate)
	working = residualPrune(working, candidate)
	working = selectBestMatch(working)
	return working
}

func snapshotSorted(matched map[int]*Caption) []Caption {
	out := make([]Caption, 0, len(matched))
	for _, c := range matched {
		cp := Caption{CapNo: c.CapNo, Matches: append([]Match(nil), c.Matches...)}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CapNo < out[j].CapNo })
	return out
}

func adjustedTime(candidate *caption.List, capNo int, m Match) float64 {
	return float64(candidate.Captions[capNo].BeginMs) + m.DeltaMs
}

func monotonicityPrune(working []Caption, candidate *caption.List) []Caption {
	byCapNo := make(map[int]Caption, len(working))
	for _, c := range working {
		byCapNo[c.CapNo] = c
	}

	var out []Caption
	for _, c := range working {
		var survivors []Match
		for _, m := range c.Matches {
			if monotonicOK(byCapNo, candidate, c.CapNo, m) {
				survivors = append(survivors, m)
			}
		}
		if len(survivors) > 0 {
			out = append(out, Caption{CapNo: c.CapNo, Matches: survivors})
		}
	}
	return out
}

func monotonicOK(byCapNo map[int]Caption, candidate *caption.List, capNo int, m Match) bool {
	thisTime := adjustedTime(candidate, capNo, m)

	for _, dist := range monotonicDistances {
		if back, ok := byCapNo[capNo-dist]; ok && len(back.Matches) > 0 {
			consistent := false
			for _, bm := range back.Matches {
				if adjustedTime(candidate, capNo-dist, bm) < thisTime {
					consistent = true
					break
				}
			}
			if !consistent {
				return false
			}
		}
		if fwd, ok := byCapNo[capNo+dist]; ok && len(fwd.Matches) > 0 {
			consistent := false
			for _, fm := range fwd.Matches {
				if adjustedTime(candidate, capNo+dist, fm) > thisTime {
					consistent = true
					break
				}
			}
			if !consistent {
				return false
			}
		}
	}
	return true
}

func residualPrune(working []Caption, candidate *caption.List) []Caption {
	for {
		xs, ys := flattenPoints(working, candidate)
		if len(xs) == 0 {
			return working
		}
		model := regression.Fit(xs, ys)
		if model.Stdev == 0 {
			return working
		}

		var next []Caption
		dropped := false
		for _, c := range working {
			var survivors []Match
			for _, m := range c.Matches {
				x := float64(candidate.Captions[c.CapNo].BeginMs)
				residual := model.Residual(x, m.DeltaMs)
				if residual < 0 {
					residual = -residual
				}
				if residual > 3*model.Stdev {
					dropped = true
					continue
				}
				survivors = append(survivors, m)
			}
			if len(survivors) > 0 {
				next = append(next, Caption{CapNo: c.CapNo, Matches: survivors})
			} else {
				dropped = true
			}
		}

		if !dropped {
			return working
		}
		working = next
	}
}

func flattenPoints(working []Caption, candidate *caption.List) ([]float64, []float64) {
	var xs, ys []float64
	for _, c := range working {
		for _, m := range c.Matches {
			xs = append(xs, float64(candidate.Captions[c.CapNo].BeginMs))
			ys = append(ys, m.DeltaMs)
		}
	}
	return xs, ys
}

const bestPhraseMinLen = 30

func selectBestMatch(working []Caption) []Caption {
	for i, c := range working {
		if len(c.Matches) <= 1 {
			continue
		}

		pool := c.Matches
		var long []Match
		for _, m := range c.Matches {
			if len(m.Phrase) >= bestPhraseMinLen {
				long = append(long, m)
			}
		}
		if len(long) > 0 {
			pool = long
		}

		best := pool[0]
		for _, m := range pool[1:] {
			if (m.XPos + m.YPos) < (best.XPos + best.YPos) {
				best = m
			}
		}
		working[i] = Caption{CapNo: c.CapNo, Matches: []Match{best}}
	}
	return working
}

// Points returns parallel (x, y) slices for a reduced match set, ready
// to hand to regression.Fit: x is the candidate caption's begin time, y
// is the recorded delta.
func Points(working []Caption, candidate *caption.List) (x, y []float64) {
	for _, c := range working {
		if len(c.Matches) == 0 {
			continue
		}
		x = append(x, float64(candidate.Captions[c.CapNo].BeginMs))
		y = append(y, c.Matches[0].DeltaMs)
	}
	return x, y
}
