package caption

import (
	"regexp"
	"strings"
	"testing"
)

func TestParseBasic(t *testing.T) {
	srt := `1
00:00:01,000 --> 00:00:04,000
Hello, world!

2
00:00:05,000 --> 00:00:08,000
How are you?

3
00:00:10,000 --> 00:00:15,000
This is a test
with multiple lines.
`
	l := Parse([]byte(srt))

	if len(l.Captions) != 3 {
		t.Fatalf("expected 3 captions, got %d", len(l.Captions))
	}
	if l.Captions[0].BeginMs != 1000 || l.Captions[0].EndMs != 4000 {
		t.Errorf("unexpected first caption times: %+v", l.Captions[0])
	}
	if l.Captions[2].Lines[0] != "This is a test" || l.Captions[2].Lines[1] != "with multiple lines." {
		t.Errorf("unexpected multiline body: %+v", l.Captions[2].Lines)
	}
}

func TestParseDropsEmptyBody(t *testing.T) {
	srt := `1
00:00:01,000 --> 00:00:04,000

2
00:00:05,000 --> 00:00:08,000
Real caption
`
	l := Parse([]byte(srt))
	if len(l.Captions) != 1 {
		t.Fatalf("expected empty-body caption dropped, got %d captions", len(l.Captions))
	}
	if len(l.Anomalies) == 0 {
		t.Errorf("expected an anomaly recorded for the dropped caption")
	}
}

func TestParseEmptyFileIsValid(t *testing.T) {
	l := Parse([]byte(""))
	if len(l.Captions) != 0 {
		t.Fatalf("expected 0 captions, got %d", len(l.Captions))
	}
}

func TestRepairOverlapSplitsProportionally(t *testing.T) {
	l := FromCaptions([]Caption{
		{Leader: 1, BeginMs: 0, EndMs: 5000, Lines: []string{"a", "b"}},
		{Leader: 2, BeginMs: 3000, EndMs: 7000, Lines: []string{"c", "d"}},
	})
	l.Repair()

	if l.Captions[0].EndMs != 3500 {
		t.Errorf("expected first caption end 3500, got %d", l.Captions[0].EndMs)
	}
	if l.Captions[1].BeginMs != 3500 {
		t.Errorf("expected second caption begin 3500, got %d", l.Captions[1].BeginMs)
	}
	if l.Captions[1].EndMs != 7000 {
		t.Errorf("expected second caption end 7000, got %d", l.Captions[1].EndMs)
	}
}

func TestRepairNegativeDurationUsesEndMsGap(t *testing.T) {
	l := FromCaptions([]Caption{
		{Leader: 1, BeginMs: 1000, EndMs: 700, Lines: []string{"x"}}, // genuinely negative duration
		{Leader: 2, BeginMs: 2000, EndMs: 5000, Lines: []string{"y"}},
	})
	l.Repair()

	// Gap must be measured from EndMs (700), not BeginMs (1000): that
	// makes the repaired end overlap the next caption, which then
	// triggers the proportional overlap split.
	if l.Captions[0].EndMs != 3000 {
		t.Errorf("expected first caption end 3000, got %d", l.Captions[0].EndMs)
	}
	if l.Captions[1].BeginMs != 3000 {
		t.Errorf("expected second caption begin 3000, got %d", l.Captions[1].BeginMs)
	}
	if l.Captions[1].EndMs != 5000 {
		t.Errorf("expected second caption end 5000, got %d", l.Captions[1].EndMs)
	}
}

func TestRepairOverlapSplitUsesLargerEnd(t *testing.T) {
	l := FromCaptions([]Caption{
		{Leader: 1, BeginMs: 0, EndMs: 6000, Lines: []string{"a", "b"}},
		{Leader: 2, BeginMs: 3000, EndMs: 5000, Lines: []string{"c"}}, // fully inside caption 1's span
	})
	l.Repair()

	// Joint duration must be max(next.EndMs, c.EndMs) - c.BeginMs, i.e.
	// 6000, not next.EndMs - c.BeginMs (5000); otherwise the split
	// shrinks the track's end time.
	if l.Captions[0].EndMs != 4000 {
		t.Errorf("expected first caption end 4000, got %d", l.Captions[0].EndMs)
	}
	if l.Captions[1].BeginMs != 4000 {
		t.Errorf("expected second caption begin 4000, got %d", l.Captions[1].BeginMs)
	}
	if l.Captions[1].EndMs != 6000 {
		t.Errorf("expected second caption end 6000, got %d", l.Captions[1].EndMs)
	}
}

func TestRepairClampsNegativeBegin(t *testing.T) {
	l := FromCaptions([]Caption{
		{Leader: 1, BeginMs: -500, EndMs: 2000, Lines: []string{"x"}},
	})
	l.Repair()
	if l.Captions[0].BeginMs != 0 {
		t.Errorf("expected begin clamped to 0, got %d", l.Captions[0].BeginMs)
	}
}

func TestRepairDropsFullyNegative(t *testing.T) {
	l := FromCaptions([]Caption{
		{Leader: 1, BeginMs: -500, EndMs: -100, Lines: []string{"x"}},
		{Leader: 2, BeginMs: 1000, EndMs: 2000, Lines: []string{"y"}},
	})
	l.Repair()
	if len(l.Captions) != 1 {
		t.Fatalf("expected fully-negative caption dropped, got %d captions", len(l.Captions))
	}
}

func TestRepairSortsOutOfOrder(t *testing.T) {
	l := FromCaptions([]Caption{
		{Leader: 1, BeginMs: 5000, EndMs: 6000, Lines: []string{"second"}},
		{Leader: 2, BeginMs: 1000, EndMs: 2000, Lines: []string{"first"}},
	})
	l.Repair()
	if l.Captions[0].Lines[0] != "first" {
		t.Errorf("expected captions sorted by begin time, got %+v", l.Captions)
	}
}

func TestRepairRenumbersLeaders(t *testing.T) {
	l := FromCaptions([]Caption{
		{Leader: 9, BeginMs: 0, EndMs: 1000, Lines: []string{"a"}},
		{Leader: 2, BeginMs: 1000, EndMs: 2000, Lines: []string{"b"}},
	})
	l.Repair()
	for i, c := range l.Captions {
		if c.Leader != i+1 {
			t.Errorf("caption %d: expected leader %d, got %d", i, i+1, c.Leader)
		}
	}
}

func TestAdPurgeIdempotent(t *testing.T) {
	l := FromCaptions([]Caption{
		{Leader: 1, BeginMs: 0, EndMs: 1000, Lines: []string{"www.example.org subtitle sync"}},
		{Leader: 2, BeginMs: 1000, EndMs: 2000, Lines: []string{"Real line"}},
	})
	l.Repair()

	global := []*regexp.Regexp{regexp.MustCompile(`www\.\w+\.\w+`)}
	l.DetectAds(global, nil, 0)
	if len(l.Ads) != 1 {
		t.Fatalf("expected 1 ad match, got %d", len(l.Ads))
	}
	l.PurgeAds()
	if l.PurgeAdsCount != 1 {
		t.Fatalf("expected purge count 1, got %d", l.PurgeAdsCount)
	}
	if len(l.Captions) != 1 || l.Captions[0].Lines[0] != "Real line" {
		t.Fatalf("unexpected captions after purge: %+v", l.Captions)
	}

	// Second purge (with nothing flagged) must be a no-op.
	before := l.PurgeAdsCount
	l.DetectAds(global, nil, 0)
	l.PurgeAds()
	if l.PurgeAdsCount != before {
		t.Errorf("purge is not idempotent: count changed from %d to %d", before, l.PurgeAdsCount)
	}
}

func TestDelayRoundTrip(t *testing.T) {
	l := FromCaptions([]Caption{
		{Leader: 1, BeginMs: 1000, EndMs: 2000, Lines: []string{"a"}},
		{Leader: 2, BeginMs: 3000, EndMs: 4000, Lines: []string{"b"}},
	})
	l.Delay(500)
	l.Delay(-500)
	if l.Captions[0].BeginMs != 1000 || l.Captions[1].EndMs != 4000 {
		t.Errorf("delay round trip changed timestamps: %+v", l.Captions)
	}
}

func TestSerializeParseRoundTrip(t *testing.T) {
	l := FromCaptions([]Caption{
		{Leader: 1, BeginMs: 1000, EndMs: 2000, Lines: []string{"Hello"}},
		{Leader: 2, BeginMs: 3000, EndMs: 4000, Lines: []string{"World", "Second line"}},
	})
	out := l.Serialize()
	reparsed := Parse(out)
	if len(reparsed.Captions) != 2 {
		t.Fatalf("expected 2 captions after round trip, got %d", len(reparsed.Captions))
	}
	if !strings.Contains(string(out), "World\nSecond line") {
		t.Errorf("serialized output missing expected body: %s", out)
	}
}
