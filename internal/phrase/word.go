// Package phrase implements the phrase correlation engine: extracting
// temporally anchored word streams from candidate and reference caption
// lists, matching them via phrase keys, and discarding spurious matches.
package phrase

import (
	"regexp"
	"strings"

	"github.com/lsilvatti/bakasync/internal/caption"
)

// Word is an anchored lexical token drawn from a caption's text.
type Word struct {
	Text         string
	CaptionRef   int // index into the owning caption list
	Pos          int // 0-based word position inside its caption
	TimeMs       float64
}

var tagRe = regexp.MustCompile(`<[^>]*>`)
var braceRe = regexp.MustCompile(`\{[^}]*\}`)
var spaceRe = regexp.MustCompile(`\s+`)
var nonAlphaTrim = regexp.MustCompile(`^[^a-zA-Z]+|[^a-zA-Z]+$`)

// ExtractWords walks every caption in l, strips markup, tokenizes, and
// interpolates a timestamp per word. Captions whose implied speaking
// rate falls far outside the configured [minWordMs, maxWordMs] window
// are skipped entirely, matching the spec's outlier-rate rejection.
func ExtractWords(l *caption.List, minWordMs, maxWordMs, rateFudge float64) []Word {
	var words []Word

	for ci, c := range l.Captions {
		tokens := tokenize(c.JoinedText())
		if len(tokens) == 0 {
			continue
		}

		duration := float64(c.EndMs - c.BeginMs)
		msPerWord := duration / float64(len(tokens))

		if msPerWord < minWordMs/rateFudge || msPerWord > maxWordMs*2 {
			continue
		}
		if msPerWord < minWordMs {
			msPerWord = minWordMs
		}
		if msPerWord > maxWordMs {
			msPerWord = maxWordMs
		}

		for pos, tok := range tokens {
			words = append(words, Word{
				Text:       tok,
				CaptionRef: ci,
				Pos:        pos,
				TimeMs:     float64(c.BeginMs) + float64(pos)*msPerWord,
			})
		}
	}

	return words
}

func tokenize(text string) []string {
	text = tagRe.ReplaceAllString(text, "")
	text = braceRe.ReplaceAllString(text, "")
	text = spaceRe.ReplaceAllString(text, " ")

	var out []string
	for _, f := range strings.Fields(text) {
		f = strings.ToLower(f)
		f = nonAlphaTrim.ReplaceAllString(f, "")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
