package retriever

import (
	"sort"

	"github.com/ragworks/docrag/pkg/types"
)

// RRFConstant dampens the contribution of lower ranks in reciprocal rank
// fusion
const RRFConstant = 60

// rankedList is one search path's output in rank order
type rankedList struct {
	ids    []string
	scores map[string]float64
}

// fuse combines the vector and keyword ranked lists into one descending
// fused-score ordering. Either list may be empty.
func fuse(cfg types.RetrievalConfig, vector, keyword rankedList) []scoredID {
	switch cfg.FusionMethod {
	case types.FusionWeighted:
		return weightedFuse(vector, keyword, cfg.VectorWeight, cfg.KeywordWeight)
	case types.FusionMean:
		return meanFuse(vector, keyword)
	default:
		return rrfFuse(vector, keyword)
	}
}

type scoredID struct {
	id    string
	score float64
}

// rrfFuse scores each candidate as the sum over lists of 1/(rank+constant).
// Candidates present in a single list are scored from that list alone.
func rrfFuse(vector, keyword rankedList) []scoredID {
	scores := make(map[string]float64)

	for rank, id := range vector.ids {
		scores[id] += 1.0 / float64(rank+1+RRFConstant)
	}
	for rank, id := range keyword.ids {
		scores[id] += 1.0 / float64(rank+1+RRFConstant)
	}

	return sortScored(scores, vector, keyword)
}

// weightedFuse min-max normalizes each list to [0,1] and combines with the
// given weights. A candidate absent from a list contributes 0 for it.
func weightedFuse(vector, keyword rankedList, vectorWeight, keywordWeight float64) []scoredID {
	vNorm := minMaxNormalize(vector)
	kNorm := minMaxNormalize(keyword)

	scores := make(map[string]float64)
	for _, id := range vector.ids {
		scores[id] += vectorWeight * vNorm[id]
	}
	for _, id := range keyword.ids {
		if _, seen := scores[id]; !seen {
			scores[id] = 0
		}
		scores[id] += keywordWeight * kNorm[id]
	}

	return sortScored(scores, vector, keyword)
}

// meanFuse averages the normalized scores a candidate actually has (one or
// two inputs)
func meanFuse(vector, keyword rankedList) []scoredID {
	vNorm := minMaxNormalize(vector)
	kNorm := minMaxNormalize(keyword)

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, id := range vector.ids {
		sums[id] += vNorm[id]
		counts[id]++
	}
	for _, id := range keyword.ids {
		sums[id] += kNorm[id]
		counts[id]++
	}

	scores := make(map[string]float64, len(sums))
	for id, sum := range sums {
		scores[id] = sum / float64(counts[id])
	}

	return sortScored(scores, vector, keyword)
}

// minMaxNormalize maps a list's scores onto [0,1]. A constant list maps to
// all ones so presence still counts.
func minMaxNormalize(list rankedList) map[string]float64 {
	out := make(map[string]float64, len(list.ids))
	if len(list.ids) == 0 {
		return out
	}

	lo, hi := list.scores[list.ids[0]], list.scores[list.ids[0]]
	for _, id := range list.ids {
		s := list.scores[id]
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}

	for _, id := range list.ids {
		if hi == lo {
			out[id] = 1
			continue
		}
		out[id] = (list.scores[id] - lo) / (hi - lo)
	}
	return out
}

// sortScored orders candidates by descending fused score. Ties prefer
// vector rank, then keyword rank, keeping the ordering deterministic.
func sortScored(scores map[string]float64, vector, keyword rankedList) []scoredID {
	tieRank := make(map[string]int, len(scores))
	next := 0
	for _, id := range vector.ids {
		if _, ok := tieRank[id]; !ok {
			tieRank[id] = next
			next++
		}
	}
	for _, id := range keyword.ids {
		if _, ok := tieRank[id]; !ok {
			tieRank[id] = next
			next++
		}
	}

	out := make([]scoredID, 0, len(scores))
	for id, score := range scores {
		out = append(out, scoredID{id: id, score: score})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return tieRank[out[i].id] < tieRank[out[j].id]
	})

	return out
}
