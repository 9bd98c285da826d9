// Package rift implements the RiftDetector: a piecewise-segmentation
// search over matched correlation points that finds abrupt offset
// discontinuities (typically introduced by ad insertions or cuts) and
// refits a distinct linear correction on each side.
package rift

import (
	"math"

	"github.com/lsilvatti/bakasync/internal/config"
	"github.com/lsilvatti/bakasync/internal/regression"
)

// Rift is one accepted piecewise break.
type Rift struct {
	SplitIndex  int
	GapMs       float64
	JointStdev  float64
	WindowStdev float64
}

// Formula is a half-open index interval over matched points together
// with the OLS model valid across that interval.
type Formula struct {
	XBot, XTop int
	Model      regression.Model
}

// Detect searches x/y (the final matched correlation points, y being
// delta_ms) for piecewise breaks per spec §4.4. lastEndMs is the last
// candidate caption's end time, used to size the trial window count.
func Detect(x, y []float64, lastEndMs int64, p config.RiftParams) []Rift {
	n := len(y)
	if n == 0 {
		return nil
	}

	globalModel := regression.Fit(x, y)
	scanY := y
	if globalModel.Slope < 0 {
		scanY = make([]float64, n)
		for i, v := range y {
			scanY[i] = -v
		}
	}

	trialSegs := p.MinTrialSegs
	if computed := int(math.Ceil(float64(lastEndMs)/(p.TrialMins*60000))) + 1; computed > trialSegs {
		trialSegs = computed
	}
	if trialSegs < 1 {
		trialSegs = 1
	}
	sectionLen := int(math.Ceil(float64(n) / float64(trialSegs)))
	if sectionLen < 1 {
		sectionLen = 1
	}

	var rifts []Rift
	bot := 0
	for bot < n {
		remaining := n - bot
		if remaining < sectionLen/2 {
			break
		}
		top := bot + sectionLen
		if top > n {
			top = n
		}

		window := regression.Fit(x[bot:top], scanY[bot:top])
		yLeft := window.Predict(x[bot])
		yRight := window.Predict(x[top-1])
		if math.Abs(yRight-yLeft) < 300 {
			bot = top
			continue
		}

		split, leftModel, rightModel, ok := bestBreak(x, scanY, bot, top, window.Slope, p)
		if !ok {
			bot = top
			continue
		}

		jointStdev := math.Sqrt((leftModel.SquaresSum + rightModel.SquaresSum) / float64(leftModel.N+rightModel.N))
		accept := jointStdev < p.MinDevFrac*window.Stdev &&
			leftModel.Stdev <= p.MaxDevFrac*window.Stdev &&
			rightModel.Stdev <= p.MaxDevFrac*window.Stdev &&
			math.Abs(leftModel.Slope-rightModel.Slope) <= p.MaxParallelDelta

		if !accept {
			bot = top
			continue
		}

		realLeft := regression.Fit(x[maxInt(split-p.PrefPts, bot):split], y[maxInt(split-p.PrefPts, bot):split])
		realRight := regression.Fit(x[split:minInt(split+p.PrefPts, top)], y[split:minInt(split+p.PrefPts, top)])
		riftX := (x[split-1] + x[split]) / 2
		gap := realLeft.Predict(riftX) - realRight.Predict(riftX)

		rifts = append(rifts, Rift{
			SplitIndex:  split,
			GapMs:       gap,
			JointStdev:  jointStdev,
			WindowStdev: window.Stdev,
		})

		advance := bot + sectionLen*(p.BorderDiv-3)/p.BorderDiv
		if split+1 > advance {
			advance = split + 1
		}
		bot = advance
	}

	return rifts
}

func bestBreak(x, y []float64, bot, top int, nominalSlope float64, p config.RiftParams) (int, regression.Model, regression.Model, bool) {
	borderWid := (top - bot) / p.BorderDiv
	if borderWid < 1 {
		borderWid = 1
	}

	bestMid := -1
	var bestLeft, bestRight regression.Model
	bestRMS := math.Inf(1)

	for mid := bot + borderWid; mid < top-borderWid; mid++ {
		leftStart := maxInt(mid-p.PrefPts, bot)
		rightEnd := minInt(mid+p.PrefPts, top)
		if mid-leftStart < p.MinPts || rightEnd-mid < p.MinPts {
			continue
		}

		left := regression.Fit(x[leftStart:mid], y[leftStart:mid])
		right := regression.Fit(x[mid:rightEnd], y[mid:rightEnd])

		if math.Abs(left.Slope-nominalSlope) > p.MaxSlopeDelta || math.Abs(right.Slope-nominalSlope) > p.MaxSlopeDelta {
			continue
		}

		jointRMS := math.Sqrt((left.SquaresSum + right.SquaresSum) / float64(left.N+right.N))
		if jointRMS < bestRMS {
			bestRMS = jointRMS
			bestMid = mid
			bestLeft = left
			bestRight = right
		}
	}

	if bestMid < 0 {
		return 0, regression.Model{}, regression.Model{}, false
	}
	return bestMid, bestLeft, bestRight, true
}

// Assemble turns the final rift list plus the sentinels 0 and len(y)
// into ascending-xbot Formulas, refitting OLS over each segment.
func Assemble(x, y []float64, rifts []Rift) []Formula {
	bounds := []int{0}
	for _, r := range rifts {
		bounds = append(bounds, r.SplitIndex)
	}
	bounds = append(bounds, len(y))

	var formulas []Formula
	for i := 0; i < len(bounds)-1; i++ {
		xbot, xtop := bounds[i], bounds[i+1]
		if xtop <= xbot {
			continue
		}
		model := regression.Fit(x[xbot:xtop], y[xbot:xtop])
		formulas = append(formulas, Formula{XBot: xbot, XTop: xtop, Model: model})
	}
	return formulas
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
