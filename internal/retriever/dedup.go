package retriever

import "github.com/ragworks/docrag/internal/bm25"

// jaccardSimilarity measures token-set overlap between two texts: the size
// of the intersection over the size of the union. Tokenization matches the
// keyword index.
func jaccardSimilarity(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)

	if len(setA) == 0 && len(setB) == 0 {
		return 1
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(text string) map[string]struct{} {
	tokens := bm25.Tokenize(text)
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

// deduplicate drops the lower-ranked member of any candidate pair whose
// text similarity meets the threshold, preserving order otherwise
func deduplicate(candidates []candidate, threshold float64) []candidate {
	if len(candidates) < 2 {
		return candidates
	}

	kept := make([]candidate, 0, len(candidates))
	for _, cand := range candidates {
		dup := false
		for _, existing := range kept {
			if jaccardSimilarity(cand.text, existing.text) >= threshold {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, cand)
		}
	}

	return kept
}
