package phrase

import "strings"

// maxPhraseLen is the longest phrase (in words) ever indexed or probed.
const maxPhraseLen = 16

// maxGapMs is the largest inter-word time gap that still lets a phrase
// extend across the gap.
const maxGapMs = 1000.0

// keyEntry is the tagged union backing a phrase-key map value: either a
// unique starting word index, or the "ambiguous" sentinel meaning more
// than one starting index produced this exact phrase text.
type keyEntry struct {
	index     int
	ambiguous bool
}

// keyMap maps a phrase string to its keyEntry.
type keyMap map[string]keyEntry

func (m keyMap) insert(phrase string, index int) {
	existing, ok := m[phrase]
	if !ok {
		m[phrase] = keyEntry{index: index}
		return
	}
	if existing.ambiguous {
		return
	}
	if existing.index != index {
		m[phrase] = keyEntry{ambiguous: true}
	}
}

// phrasePrefixes returns, for the word run starting at words[start], the
// list of (length, phraseText) pairs for every length 1..maxPhraseLen
// whose consecutive words stay within maxGapMs of each other.
func phrasePrefixes(words []Word, start int) []struct {
	Length int
	Text   string
} {
	var out []struct {
		Length int
		Text   string
	}
	if start >= len(words) {
		return out
	}

	var b strings.Builder
	b.WriteString(words[start].Text)
	out = append(out, struct {
		Length int
		Text   string
	}{1, b.String()})

	for length := 2; length <= maxPhraseLen && start+length-1 < len(words); length++ {
		prev := words[start+length-2]
		cur := words[start+length-1]
		if cur.TimeMs-prev.TimeMs > maxGapMs {
			break
		}
		b.WriteString(" ")
		b.WriteString(cur.Text)
		out = append(out, struct {
			Length int
			Text   string
		}{length, b.String()})
	}
	return out
}

// indexable reports whether a phrase of the given text, drawn from
// words[start:start+length], qualifies for insertion into the candidate
// key map: total length >= minStrLen and at least one token >= minWordLen.
func indexable(words []Word, start, length int, text string, minStrLen, minWordLen int) bool {
	if len(text) < minStrLen {
		return false
	}
	for i := start; i < start+length; i++ {
		if len(words[i].Text) >= minWordLen {
			return true
		}
	}
	return false
}

// buildCandidateKeys constructs the candidate_keys map described in
// spec §4.3: for every starting word index, every indexable phrase
// prefix is inserted, first insert wins a unique index, any later
// collision on the same text becomes ambiguous.
func buildCandidateKeys(words []Word, minStrLen, minWordLen int) keyMap {
	m := make(keyMap)
	for i := range words {
		for _, p := range phrasePrefixes(words, i) {
			if indexable(words, i, p.Length, p.Text, minStrLen, minWordLen) {
				m.insert(p.Text, i)
			}
		}
	}
	return m
}
