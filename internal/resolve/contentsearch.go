package resolve

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// SearchResult is one candidate document returned by the content-search
// API for a URL: extracted text plus, when requested, the rendered HTML.
type SearchResult struct {
	Title      string
	URL        string
	Content    string
	RawContent string
	Images     []string
}

// ContentSearcher is the third-party content-search fallback: it returns
// page content fetched through the provider's own infrastructure,
// independent of our direct fetch being blocked.
type ContentSearcher interface {
	Search(ctx context.Context, pageURL string) ([]SearchResult, error)
}

// SearchClient talks to a Tavily-compatible search endpoint.
type SearchClient struct {
	endpoint   string
	apiKey     string
	maxResults int
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSearchClient creates a content-search client. The API key is
// validated at startup by config, not here.
func NewSearchClient(endpoint, apiKey string, maxResults int, logger *slog.Logger) *SearchClient {
	if maxResults <= 0 {
		maxResults = 3
	}
	return &SearchClient{
		endpoint:   endpoint,
		apiKey:     apiKey,
		maxResults: maxResults,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

type searchRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	MaxResults    int    `json:"max_results"`
	IncludeRaw    bool   `json:"include_raw_content"`
	IncludeImages bool   `json:"include_images"`
}

type searchResponse struct {
	Results []struct {
		Title      string `json:"title"`
		URL        string `json:"url"`
		Content    string `json:"content"`
		RawContent string `json:"raw_content"`
	} `json:"results"`
	Images []string `json:"images"`
}

// Search queries the provider with the article URL itself. Providers
// resolve it to the canonical page and return its content.
func (c *SearchClient) Search(ctx context.Context, pageURL string) ([]SearchResult, error) {
	payload, err := json.Marshal(searchRequest{
		APIKey:        c.apiKey,
		Query:         pageURL,
		MaxResults:    c.maxResults,
		IncludeRaw:    true,
		IncludeImages: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("content-search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
		return nil, fmt.Errorf("content-search HTTP error: %d (body: %s)", resp.StatusCode, string(body))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse content-search response: %w", err)
	}

	results := make([]SearchResult, 0, len(parsed.Results))
	for i, r := range parsed.Results {
		result := SearchResult{
			Title:      r.Title,
			URL:        r.URL,
			Content:    r.Content,
			RawContent: r.RawContent,
		}
		// Provider-level image list belongs to the best-ranked result
		if i == 0 {
			result.Images = parsed.Images
		}
		results = append(results, result)
	}

	c.logger.Debug("Content-search returned results",
		"url", pageURL,
		"count", len(results),
	)

	return results, nil
}
