package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"back/config"
)

// SearchResult is one web search hit.
type SearchResult struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

type searchResponse struct {
	Data struct {
		WebPages struct {
			Value []SearchResult `json:"value"`
		} `json:"webPages"`
	} `json:"data"`
}

// SearchService queries an external web-search API.
type SearchService struct {
	client *resty.Client
	url    string
	apiKey string
}

// NewSearchService builds a search client from configuration.
func NewSearchService(cfg config.Config) *SearchService {
	return &SearchService{
		client: resty.New(),
		url:    cfg.WebSearchAPIURL,
		apiKey: cfg.WebSearchAPIKey,
	}
}

// Configured reports whether the search API key is set.
func (s *SearchService) Configured() bool {
	return s.apiKey != ""
}

// Search runs one web search and returns up to count results.
func (s *SearchService) Search(ctx context.Context, query string, count int) ([]SearchResult, error) {
	if !s.Configured() {
		return nil, fmt.Errorf("%w: WEB_SEARCH_API_KEY is unset", ErrNotConfigured)
	}
	if count <= 0 {
		count = 10
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+s.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{
			"query":   query,
			"count":   count,
			"summary": false,
		}).
		Post(s.url)
	if err != nil {
		return nil, fmt.Errorf("web search request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("web search returned status %d", resp.StatusCode())
	}

	var result searchResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse web search response: %w", err)
	}
	return result.Data.WebPages.Value, nil
}
