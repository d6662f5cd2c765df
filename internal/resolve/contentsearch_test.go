package resolve

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchClientParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req.APIKey != "test-key" {
			t.Errorf("api key = %q", req.APIKey)
		}
		if !req.IncludeRaw || !req.IncludeImages {
			t.Error("raw content and images must be requested")
		}

		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]string{
				{
					"title":       "T",
					"url":         "https://example-news.test/a",
					"content":     "Body text",
					"raw_content": "<html><body>Body</body></html>",
				},
				{"title": "Second", "url": "https://mirror.test/a"},
			},
			"images": []string{"https://cdn/img.jpg"},
		})
	}))
	defer srv.Close()

	client := NewSearchClient(srv.URL, "test-key", 3, slog.Default())
	results, err := client.Search(context.Background(), "https://example-news.test/a")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].Title != "T" || results[0].RawContent == "" {
		t.Errorf("first result = %+v", results[0])
	}
	if len(results[0].Images) != 1 {
		t.Errorf("provider images must attach to the first result, got %v", results[0].Images)
	}
	if len(results[1].Images) != 0 {
		t.Errorf("second result should carry no provider images, got %v", results[1].Images)
	}
}

func TestSearchClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewSearchClient(srv.URL, "test-key", 3, slog.Default())
	if _, err := client.Search(context.Background(), "https://example.com"); err == nil {
		t.Error("expected error for non-200 response")
	}
}
