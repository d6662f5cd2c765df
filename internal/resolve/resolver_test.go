package resolve

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/woai-art/shorts-news-sub001/internal/domain"
	"github.com/woai-art/shorts-news-sub001/internal/engines"
)

type stubFetcher struct {
	html string
	err  error
}

func (s *stubFetcher) Fetch(context.Context, string) (string, error) {
	return s.html, s.err
}

type fakeSearcher struct {
	results []SearchResult
	err     error
	calls   int
}

func (f *fakeSearcher) Search(ctx context.Context, pageURL string) ([]SearchResult, error) {
	f.calls++
	return f.results, f.err
}

func newTestResolver(t *testing.T, fetcher PageFetcher, searcher ContentSearcher) *Resolver {
	t.Helper()
	registry, err := engines.NewDefaultRegistry(slog.Default(), nil)
	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}
	return NewResolver(registry, fetcher, nil, searcher, slog.Default())
}

func TestResolverDirectFetchSuccess(t *testing.T) {
	page := `<html><head>
		<meta property="og:title" content="Local paper headline">
		<meta property="og:image" content="https://cdn.local.test/a.jpg">
	</head><body></body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	fetcher := NewHTTPFetcher(5*time.Second, slog.Default())
	searcher := &fakeSearcher{}
	resolver := newTestResolver(t, fetcher, searcher)

	result, err := resolver.Resolve(context.Background(), srv.URL+"/story")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if result.Title != "Local paper headline" {
		t.Errorf("title = %q", result.Title)
	}
	if searcher.calls != 0 {
		t.Errorf("content-search must not run when direct extraction succeeds, calls=%d", searcher.calls)
	}
}

func TestResolverBlockPageFallsBackToSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>Please verify you are human to continue.</body></html>`))
	}))
	defer srv.Close()

	searcher := &fakeSearcher{
		results: []SearchResult{{
			Title:   "T",
			Content: "Extracted article body.",
			Images:  []string{"https://cdn/img.jpg"},
		}},
	}

	fetcher := NewHTTPFetcher(5*time.Second, slog.Default())
	resolver := newTestResolver(t, fetcher, searcher)

	result, err := resolver.Resolve(context.Background(), srv.URL+"/a")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if result.Title != "T" {
		t.Errorf("title = %q, want T", result.Title)
	}
	if len(result.Images) != 1 || result.Images[0] != "https://cdn/img.jpg" {
		t.Errorf("images = %v", result.Images)
	}
	if len(result.Videos) != 0 {
		t.Errorf("videos = %v, want none", result.Videos)
	}
}

func TestResolverHTTPErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	searcher := &fakeSearcher{
		results: []SearchResult{{Title: "From search"}},
	}
	resolver := newTestResolver(t, NewHTTPFetcher(5*time.Second, slog.Default()), searcher)

	result, err := resolver.Resolve(context.Background(), srv.URL+"/x")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if result.Title != "From search" {
		t.Errorf("title = %q", result.Title)
	}
}

func TestResolverUnresolvedWhenAllStrategiesFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// No title anywhere in the markup.
		w.Write([]byte(`<html><body><p>paywall stub</p></body></html>`))
	}))
	defer srv.Close()

	searcher := &fakeSearcher{err: errors.New("quota exceeded")}
	resolver := newTestResolver(t, NewHTTPFetcher(5*time.Second, slog.Default()), searcher)

	_, err := resolver.Resolve(context.Background(), srv.URL+"/y")
	if !errors.Is(err, domain.ErrUnresolved) {
		t.Errorf("expected ErrUnresolved, got %v", err)
	}
}

func TestResolverGenericHeuristicsLastResort(t *testing.T) {
	// Search yields nothing usable; heuristics on the direct markup must
	// still pick up the plain <title> and a scanned video URL.
	page := `<html><head><title>Heuristic headline</title></head>
		<body><script>s="https://cdn.site.test/v/clip.mp4"</script></body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	searcher := &fakeSearcher{results: []SearchResult{{Content: "no title field"}}}
	resolver := newTestResolver(t, NewHTTPFetcher(5*time.Second, slog.Default()), searcher)

	result, err := resolver.Resolve(context.Background(), srv.URL+"/z")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if result.Title != "Heuristic headline" {
		t.Errorf("title = %q", result.Title)
	}
	if len(result.Videos) != 1 {
		t.Errorf("videos = %v", result.Videos)
	}
}

func TestResolverSearchFallbackKeepsEngineContentType(t *testing.T) {
	tests := []struct {
		name    string
		pageURL string
		want    string
	}{
		{"tweet stays social", "https://x.com/nbcnews/status/17890", domain.ContentTypeSocialPost},
		{"news site stays article", "https://www.politico.com/news/2026/story", domain.ContentTypeArticle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := &fakeSearcher{
				results: []SearchResult{{Title: "Recovered headline", Content: "Recovered body."}},
			}
			resolver := newTestResolver(t, &stubFetcher{err: errors.New("connection reset")}, searcher)

			result, err := resolver.Resolve(context.Background(), tt.pageURL)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if result.ContentType != tt.want {
				t.Errorf("content type = %q, want %q", result.ContentType, tt.want)
			}
		})
	}
}

func TestTruncateKeepsRuneBoundary(t *testing.T) {
	long := "a" + strings.Repeat("д", 300)

	got := truncate(long, 500)
	if !utf8.ValidString(got) {
		t.Errorf("truncated text is not valid UTF-8: %q", got[len(got)-4:])
	}
	if len(got) > 500 {
		t.Errorf("truncated to %d bytes, want at most 500", len(got))
	}
	if !strings.HasPrefix(long, got) {
		t.Error("truncation must yield a prefix of the input")
	}

	if got := truncate("  short  ", 500); got != "short" {
		t.Errorf("short input = %q, want trimmed passthrough", got)
	}
}

func TestIsBlockPage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"captcha challenge", "<html>Complete the CAPTCHA to proceed</html>", true},
		{"press and hold", "please verify you are human", true},
		{"denied", "Access to this page has been denied", true},
		{"normal article", "<html><h1>News headline</h1></html>", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBlockPage(tt.body); got != tt.want {
				t.Errorf("IsBlockPage = %v, want %v", got, tt.want)
			}
		})
	}
}
