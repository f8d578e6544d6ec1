package query

import "strings"

// Closed-class stop words dropped when removal is requested
var defaultStopwords = []string{
	"a", "an", "and", "are", "as", "at", "be", "but", "by", "for", "from",
	"has", "have", "he", "in", "is", "it", "its", "of", "on", "or", "she",
	"that", "the", "this", "to", "was", "were", "will", "with",
}

// Controlled related-term mapping used by Expand
var defaultSynonyms = map[string][]string{
	"contract":  {"agreement", "terms"},
	"agreement": {"contract"},
	"payment":   {"invoice", "billing"},
	"terminate": {"cancel", "end"},
	"liability": {"responsibility", "indemnity"},
	"report":    {"findings", "summary"},
	"revenue":   {"income", "earnings"},
	"employee":  {"staff", "personnel"},
	"policy":    {"procedure", "guideline"},
	"deadline":  {"due date"},
}

// Optimizer normalizes and expands query strings before they reach either
// search path. Both operations are pure; an Optimizer is safe for concurrent
// use.
type Optimizer struct {
	stopwords map[string]struct{}
	synonyms  map[string][]string
}

// New returns an optimizer with the built-in stop-word and synonym tables
func New() *Optimizer {
	return NewWithTables(nil, nil)
}

// NewWithTables returns an optimizer using the given tables, falling back to
// the built-ins for any table passed as nil
func NewWithTables(stopwords []string, synonyms map[string][]string) *Optimizer {
	if stopwords == nil {
		stopwords = defaultStopwords
	}
	if synonyms == nil {
		synonyms = defaultSynonyms
	}

	sw := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		sw[strings.ToLower(w)] = struct{}{}
	}

	return &Optimizer{stopwords: sw, synonyms: synonyms}
}

// Preprocess lower-cases the query and collapses whitespace runs. When
// removeStopwords is set, closed-class stop words are dropped as well.
func (o *Optimizer) Preprocess(query string, removeStopwords bool) string {
	tokens := strings.Fields(strings.ToLower(query))
	if !removeStopwords {
		return strings.Join(tokens, " ")
	}

	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, drop := o.stopwords[tok]; drop {
			continue
		}
		kept = append(kept, tok)
	}

	return strings.Join(kept, " ")
}

// Expand appends related terms for any recognized token. The output token
// count is never below the input's; unrecognized queries pass through
// unchanged.
func (o *Optimizer) Expand(query string) string {
	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) == 0 {
		return query
	}

	present := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		present[tok] = struct{}{}
	}

	expanded := strings.Fields(query)
	for _, tok := range tokens {
		for _, related := range o.synonyms[tok] {
			if _, dup := present[related]; dup {
				continue
			}
			present[related] = struct{}{}
			expanded = append(expanded, related)
		}
	}

	return strings.Join(expanded, " ")
}
