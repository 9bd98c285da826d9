package rift

import (
	"regexp"

	"github.com/lsilvatti/bakasync/internal/caption"
)

// Segment binds a Formula to the candidate caption index range it
// governs (inclusive start, exclusive end via the next segment's start
// or the end of the caption list for the last segment).
type Segment struct {
	StartCapIdx int
	Formula     Formula
}

var twoLetterWordRe = regexp.MustCompile(`[A-Za-z]{2,}`)

func hasTwoLetterWord(c caption.Caption) bool {
	for _, line := range c.Lines {
		if twoLetterWordRe.MatchString(line) {
			return true
		}
	}
	return false
}

// Place maps each formula boundary back into candidate caption-index
// space per spec §4.4 "Rift placement in caption space": between two
// consecutive formulas, the caption that begins the second segment is
// the one preceded by the largest silent gap.
func Place(formulas []Formula, matchedCapNo []int, candidate *caption.List) []Segment {
	if len(formulas) == 0 {
		return nil
	}

	segments := []Segment{{StartCapIdx: 0, Formula: formulas[0]}}

	for k := 0; k < len(formulas)-1; k++ {
		low := matchedCapNo[formulas[k].XTop-1]
		high := matchedCapNo[formulas[k+1].XBot]

		bestIdx := high
		bestGap := int64(-1)
		for i := low + 1; i <= high && i < len(candidate.Captions); i++ {
			oidx := -1
			for j := i - 1; j >= 0; j-- {
				if hasTwoLetterWord(candidate.Captions[j]) {
					oidx = j
					break
				}
			}
			if oidx < 0 {
				continue
			}
			gap := candidate.Captions[i].BeginMs - candidate.Captions[oidx].EndMs
			if gap > bestGap {
				bestGap = gap
				bestIdx = i
			}
		}

		segments = append(segments, Segment{StartCapIdx: bestIdx, Formula: formulas[k+1]})
	}

	return segments
}

// Apply adjusts every caption's begin/end time using the formula of the
// segment it belongs to: t' = t + intercept + slope*t, applied
// independently to BeginMs and EndMs.
func Apply(candidate *caption.List, segments []Segment) {
	if len(segments) == 0 {
		return
	}
	for si, seg := range segments {
		end := len(candidate.Captions)
		if si+1 < len(segments) {
			end = segments[si+1].StartCapIdx
		}
		m := seg.Formula.Model
		for i := seg.StartCapIdx; i < end && i < len(candidate.Captions); i++ {
			c := &candidate.Captions[i]
			c.BeginMs = c.BeginMs + int64(m.Intercept+m.Slope*float64(c.BeginMs))
			c.EndMs = c.EndMs + int64(m.Intercept+m.Slope*float64(c.EndMs))
		}
	}
}
