package bm25

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Default term-frequency saturation and length-normalization parameters
const (
	DefaultK1 = 1.5
	DefaultB  = 0.75
)

// Document is one (id, text) pair fed to an index build
type Document struct {
	ID   string
	Text string
}

// ScoredDocument is one ranked search hit
type ScoredDocument struct {
	ID    string
	Score float64
}

// Index is an immutable BM25 inverted index over one collection. Build it
// with NewIndex; searches may run concurrently.
type Index struct {
	k1 float64
	b  float64

	// term -> document id -> term frequency
	postings map[string]map[string]int

	docLengths map[string]int
	docOrder   map[string]int // insertion order, used for tie-breaking
	docCount   int
	avgLength  float64
}

// NewIndex tokenizes the documents and builds the inverted index with the
// default k1/b parameters
func NewIndex(docs []Document) *Index {
	return NewIndexWithParams(docs, DefaultK1, DefaultB)
}

// NewIndexWithParams builds an index with explicit BM25 parameters
func NewIndexWithParams(docs []Document, k1, b float64) *Index {
	idx := &Index{
		k1:         k1,
		b:          b,
		postings:   make(map[string]map[string]int),
		docLengths: make(map[string]int),
		docOrder:   make(map[string]int),
	}

	totalLen := 0
	for i, doc := range docs {
		tokens := Tokenize(doc.Text)

		idx.docLengths[doc.ID] = len(tokens)
		idx.docOrder[doc.ID] = i
		idx.docCount++
		totalLen += len(tokens)

		for _, term := range tokens {
			if idx.postings[term] == nil {
				idx.postings[term] = make(map[string]int)
			}
			idx.postings[term][doc.ID]++
		}
	}

	if idx.docCount > 0 {
		idx.avgLength = float64(totalLen) / float64(idx.docCount)
	}

	return idx
}

// Search scores every document containing at least one query term and
// returns the top k by descending BM25 score. Ties are broken by document
// insertion order. An empty query or empty index yields an empty result.
func (idx *Index) Search(query string, topK int) []ScoredDocument {
	terms := Tokenize(query)
	if len(terms) == 0 || idx.docCount == 0 || topK <= 0 {
		return nil
	}

	scores := make(map[string]float64)
	for _, term := range terms {
		docs, ok := idx.postings[term]
		if !ok {
			continue
		}

		idf := idx.idf(len(docs))
		for docID, tf := range docs {
			scores[docID] += idf * idx.termScore(tf, idx.docLengths[docID])
		}
	}

	if len(scores) == 0 {
		return nil
	}

	ranked := make([]ScoredDocument, 0, len(scores))
	for docID, score := range scores {
		ranked = append(ranked, ScoredDocument{ID: docID, Score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return idx.docOrder[ranked[i].ID] < idx.docOrder[ranked[j].ID]
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}

// DocCount returns the number of indexed documents
func (idx *Index) DocCount() int {
	return idx.docCount
}

func (idx *Index) idf(docFreq int) float64 {
	n := float64(idx.docCount)
	df := float64(docFreq)
	return math.Log(1 + (n-df+0.5)/(df+0.5))
}

func (idx *Index) termScore(tf, docLen int) float64 {
	f := float64(tf)
	norm := 1 - idx.b + idx.b*float64(docLen)/idx.avgLength
	return f * (idx.k1 + 1) / (f + idx.k1*norm)
}

// Tokenize lower-cases text and splits on word boundaries, dropping
// punctuation
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
