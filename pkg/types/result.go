package types

// RetrievalResult holds a ranked, deduplicated, optionally reranked result
// set. IDs, Documents, Metadata and Scores are parallel sequences with
// index-for-index correspondence; Scores is sorted descending.
type RetrievalResult struct {
	IDs       []string
	Documents []string
	Metadata  []map[string]any
	Scores    []float64

	// Diagnostics, keyed by result id. Nil when the corresponding path or
	// stage did not run.
	VectorScores  map[string]float64
	KeywordScores map[string]float64
	RerankScores  map[string]float64
}

// EmptyRetrievalResult returns a zero-length successful result. An empty
// query yields this, never an error.
func EmptyRetrievalResult() *RetrievalResult {
	return &RetrievalResult{
		IDs:       []string{},
		Documents: []string{},
		Metadata:  []map[string]any{},
		Scores:    []float64{},
	}
}

// Len returns the number of results
func (r *RetrievalResult) Len() int {
	return len(r.IDs)
}

// Validate checks the parallel-sequence and ordering invariants
func (r *RetrievalResult) Validate() error {
	n := len(r.IDs)
	if len(r.Documents) != n || len(r.Metadata) != n || len(r.Scores) != n {
		return ErrResultLengthMismatch
	}

	for i := 1; i < n; i++ {
		if r.Scores[i] > r.Scores[i-1] {
			return ErrResultOrder
		}
	}

	return nil
}
