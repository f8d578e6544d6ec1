package reranker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"
)

const (
	defaultJinaModel = "jina-reranker-v2-base-multilingual"
	jinaRerankURL    = "https://api.jina.ai/v1/rerank"
)

// JinaReranker calls the hosted Jina rerank API
type JinaReranker struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewJinaReranker creates a reranker against the Jina API
func NewJinaReranker(apiKey string) (*JinaReranker, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("jina reranker: API key not set")
	}

	return &JinaReranker{
		apiKey: apiKey,
		model:  defaultJinaModel,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (r *JinaReranker) Rerank(ctx context.Context, query string, candidates []Candidate, topN int) ([]Result, error) {
	if len(candidates) == 0 || topN <= 0 {
		return nil, nil
	}

	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Text
	}

	reqBody := map[string]interface{}{
		"model":     r.model,
		"query":     query,
		"documents": texts,
		"top_n":     topN,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", jinaRerankURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: api error %d: %s", ErrUnavailable, resp.StatusCode, string(bodyBytes))
	}

	var apiResp struct {
		Results []struct {
			Index          int     `json:"index"`
			RelevanceScore float64 `json:"relevance_score"`
		} `json:"results"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	results := make([]Result, 0, len(apiResp.Results))
	for _, item := range apiResp.Results {
		if item.Index < 0 || item.Index >= len(candidates) {
			return nil, fmt.Errorf("%w: result index %d out of range", ErrUnavailable, item.Index)
		}
		results = append(results, Result{
			ID:    candidates[item.Index].ID,
			Score: item.RelevanceScore,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topN {
		results = results[:topN]
	}
	return results, nil
}
