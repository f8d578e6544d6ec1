package retriever

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJaccardSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, jaccardSimilarity("alpha beta gamma", "gamma beta alpha"))
	assert.Equal(t, 0.0, jaccardSimilarity("alpha beta", "gamma delta"))
	assert.Equal(t, 1.0, jaccardSimilarity("", ""))
	assert.Equal(t, 0.0, jaccardSimilarity("alpha", ""))

	// Case and punctuation insensitive
	assert.Equal(t, 1.0, jaccardSimilarity("Hello, World!", "hello world"))

	sim := jaccardSimilarity("one two three four", "one two three five")
	assert.InDelta(t, 3.0/5.0, sim, 1e-9)
}

func TestDeduplicateKeepsHigherRanked(t *testing.T) {
	candidates := []candidate{
		{id: "a", text: "The payment is due within thirty days of the invoice date.", score: 0.9},
		{id: "b", text: "The payment is due within thirty days of the invoice date!", score: 0.8},
		{id: "c", text: "Termination requires ninety days written notice.", score: 0.7},
	}

	kept := deduplicate(candidates, 0.95)
	require.Len(t, kept, 2)
	assert.Equal(t, "a", kept[0].id)
	assert.Equal(t, "c", kept[1].id)
}

func TestDeduplicateBelowThresholdKeepsAll(t *testing.T) {
	candidates := []candidate{
		{id: "a", text: "Quarterly revenue grew by twelve percent."},
		{id: "b", text: "Annual expenses fell by three percent."},
	}

	kept := deduplicate(candidates, 0.95)
	assert.Len(t, kept, 2)
}

func TestDeduplicateSingleCandidate(t *testing.T) {
	candidates := []candidate{{id: "a", text: "only one"}}
	assert.Len(t, deduplicate(candidates, 0.5), 1)
}
