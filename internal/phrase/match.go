package phrase

// Match is a single phrase hit recorded against a candidate caption.
type Match struct {
	Phrase  string
	DeltaMs float64
	XPos    int
	YPos    int
	XLen    int
}

// Caption is a sparse match record for one candidate caption (the spec's
// MatchedCaption). CapNo is the caption's index in the owning candidate
// list.
type Caption struct {
	CapNo   int
	Matches []Match
}

// Correlator walks a reference word stream against a candidate's phrase
// keys and accumulates match candidates, one Caption slot per candidate
// caption index.
type Correlator struct {
	minStrLen, minWordLen, farOutMax int
}

// NewCorrelator builds a Correlator with the phrase/far-out thresholds
// from configuration.
func NewCorrelator(minStrLen, minWordLen, farOutMax int) *Correlator {
	return &Correlator{minStrLen: minStrLen, minWordLen: minWordLen, farOutMax: farOutMax}
}

// Correlate matches referenceWords against candidateWords (already
// extracted via ExtractWords) and returns one Caption slot per distinct
// candidate caption index that received at least one match.
func (c *Correlator) Correlate(candidateWords, referenceWords []Word, numCandidateCaptions int) map[int]*Caption {
	keys := buildCandidateKeys(candidateWords, c.minStrLen, c.minWordLen)

	matched := make(map[int]*Caption)
	farOut := make(map[int]bool)

	j := 0
	for j < len(referenceWords) {
		prefixes := phrasePrefixes(referenceWords, j)

		hitLen := 0
		hitIdx := -1
		for k := len(prefixes) - 1; k >= 0; k-- {
			p := prefixes[k]
			entry, ok := keys[p.Text]
			if !ok || entry.ambiguous {
				continue
			}
			hitLen = p.Length
			hitIdx = entry.index
			break
		}

		if hitIdx < 0 {
			j++
			continue
		}

		for w := 0; w < hitLen; w++ {
			if hitIdx+w >= len(candidateWords) || j+w >= len(referenceWords) {
				break
			}
			xword := candidateWords[hitIdx+w]
			yword := referenceWords[j+w]
			capRef := xword.CaptionRef

			if farOut[capRef] {
				continue
			}
			if existing, ok := matched[capRef]; ok && len(existing.Matches) > 0 {
				continue
			}
			if xword.Pos+yword.Pos > c.farOutMax {
				farOut[capRef] = true
				continue
			}

			cap, ok := matched[capRef]
			if !ok {
				cap = &Caption{CapNo: capRef}
				matched[capRef] = cap
			}
			cap.Matches = append(cap.Matches, Match{
				Phrase:  candidatePhraseText(candidateWords, hitIdx, hitLen),
				DeltaMs: yword.TimeMs - xword.TimeMs,
				XPos:    xword.Pos,
				YPos:    yword.Pos,
				XLen:    hitLen,
			})
		}

		j += hitLen - 1
		j++
	}

	_ = numCandidateCaptions
	return matched
}

func candidatePhraseText(words []Word, start, length int) string {
	for _, p := range phrasePrefixes(words, start) {
		if p.Length == length {
			return p.Text
		}
	}
	if start < len(words) {
		return words[start].Text
	}
	return ""
}
