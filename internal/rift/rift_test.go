package rift

import (
	"testing"

	"github.com/lsilvatti/bakasync/internal/config"
)

func TestDetectFindsSingleRift(t *testing.T) {
	p := config.Default().Rift

	var x, y []float64
	for i := 0; i < 150; i++ {
		xi := float64(i * 5000)
		x = append(x, xi)
		y = append(y, 0)
	}
	for i := 150; i < 300; i++ {
		xi := float64(i * 5000)
		x = append(x, xi)
		y = append(y, -15000)
	}

	lastEnd := int64(x[len(x)-1]) + 5000
	rifts := Detect(x, y, lastEnd, p)

	if len(rifts) != 1 {
		t.Fatalf("expected exactly 1 rift, got %d: %+v", len(rifts), rifts)
	}

	borderWid := (len(y) / p.MinTrialSegs) / p.BorderDiv
	if borderWid < 1 {
		borderWid = 1
	}
	got := rifts[0].SplitIndex
	if got < 150-borderWid*4 || got > 150+borderWid*4 {
		t.Errorf("expected split near index 150, got %d", got)
	}
}

func TestAssembleProducesSegmentsMatchingRiftCount(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4, 5}
	y := []float64{0, 0, 0, 10, 10, 10}
	rifts := []Rift{{SplitIndex: 3}}
	formulas := Assemble(x, y, rifts)
	if len(formulas) != 2 {
		t.Fatalf("expected 2 formulas for 1 rift, got %d", len(formulas))
	}
	if formulas[0].XBot != 0 || formulas[0].XTop != 3 {
		t.Errorf("unexpected first formula bounds: %+v", formulas[0])
	}
	if formulas[1].XBot != 3 || formulas[1].XTop != 6 {
		t.Errorf("unexpected second formula bounds: %+v", formulas[1])
	}
}
