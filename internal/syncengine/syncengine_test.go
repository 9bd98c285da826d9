package syncengine

import (
	"strings"
	"testing"

	"github.com/lsilvatti/bakasync/internal/caption"
	"github.com/lsilvatti/bakasync/internal/config"
)

var sampleSentences = []string{
	"alpha bravo charlie delta echo foxtrot",
	"golf hotel india juliet kilo lima",
	"mike november oscar papa quebec romeo",
	"sierra tango uniform victor whiskey xray",
	"yankee zulu apple banana cherry dragon",
	"eagle falcon gopher hunter igloo jungle",
	"kitten lizard monkey narwhal octopus panther",
	"quokka rabbit salmon turtle urchin vulture",
	"walrus yonder zephyr anchor beacon cobra",
	"dynamo ember flagon gambit harbor island",
}

func buildCaptions(shiftMs int64, rateMul float64) *caption.List {
	var captions []caption.Caption
	var t int64
	for i, text := range sampleSentences {
		begin := int64(float64(t)*rateMul) + shiftMs
		end := begin + 4000
		captions = append(captions, caption.Caption{
			Leader:  i + 1,
			BeginMs: begin,
			EndMs:   end,
			Lines:   []string{text},
		})
		t += 5000
	}
	return caption.FromCaptions(captions)
}

func TestAnalyzeS1NoOp(t *testing.T) {
	candidate := buildCaptions(0, 1.0)
	reference := buildCaptions(0, 1.0)

	d, err := Analyze(candidate, reference, config.Default(), "", nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if d.Variant != VariantUnadjusted {
		t.Errorf("expected unadjusted variant, got %s", d.Variant)
	}
	if !strings.Contains(d.Text, "KEEP unadjusted subs") {
		t.Errorf("expected decision text to mention KEEP unadjusted subs, got %q", d.Text)
	}
	if !strings.Contains(d.Text, "dev 0.00s") {
		t.Errorf("expected dev 0.00s, got %q", d.Text)
	}
	if d.Points != 10 {
		t.Errorf("expected 10 matched points, got %d", d.Points)
	}
}

func TestAnalyzeS2ConstantShift(t *testing.T) {
	candidate := buildCaptions(2000, 1.0)
	reference := buildCaptions(0, 1.0)

	cfg := config.Default()
	cfg.Sync.MinRefPts = 5 // relax so 10 points triggers adjustment evaluation

	d, err := Analyze(candidate, reference, cfg, "", nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if d.Variant != VariantLinear {
		t.Errorf("expected linear variant, got %s (%s)", d.Variant, d.Text)
	}
	if !strings.Contains(d.Text, "PICK linear adjusted subs") {
		t.Errorf("expected PICK linear adjusted subs, got %q", d.Text)
	}
}
