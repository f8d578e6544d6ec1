package chunker

import (
	"strings"

	"github.com/ragworks/docrag/pkg/types"
)

// detectionWindow is how many leading characters of content the heuristic
// inspects
const detectionWindow = 5000

var typeKeywords = map[types.DocumentType][]string{
	types.DocTypeContract: {
		"contract", "agreement", "clause", "party", "parties", "hereinafter",
		"whereas", "indemnify", "termination", "governing law",
	},
	types.DocTypeReport: {
		"report", "findings", "executive", "analysis", "summary",
		"methodology", "conclusion", "quarterly", "annual",
	},
	types.DocTypeArticle: {
		"article", "blog", "essay", "author", "published", "editor",
	},
}

// DetectType guesses the document type from its file name and the first few
// thousand characters of text. Defaults to general when no keyword set
// matches.
func DetectType(fileName, content string) types.DocumentType {
	if len(content) > detectionWindow {
		content = content[:detectionWindow]
	}

	haystack := strings.ToLower(fileName + " " + content)

	best := types.DocTypeGeneral
	bestScore := 0

	// Fixed evaluation order keeps detection deterministic on ties
	for _, docType := range []types.DocumentType{
		types.DocTypeContract,
		types.DocTypeReport,
		types.DocTypeArticle,
	} {
		score := 0
		for _, kw := range typeKeywords[docType] {
			if strings.Contains(haystack, kw) {
				score++
			}
		}
		if score > bestScore {
			best = docType
			bestScore = score
		}
	}

	return best
}
