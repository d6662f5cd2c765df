package engines

import (
	"log/slog"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/woai-art/shorts-news-sub001/internal/domain"
)

type stubEngine struct {
	name    string
	domains []string
}

func (s *stubEngine) Name() string      { return s.name }
func (s *stubEngine) Domains() []string { return s.domains }
func (s *stubEngine) Extract(string, *goquery.Document) (*domain.ArticleResult, error) {
	return nil, nil
}

func testLogger() *slog.Logger {
	return slog.Default()
}

func TestRegistryDuplicateClaimIsError(t *testing.T) {
	registry := NewRegistry(testLogger())

	if err := registry.Register(&stubEngine{name: "first", domains: []string{"example.com"}}); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	tests := []struct {
		name   string
		claims []string
	}{
		{"exact duplicate", []string{"example.com"}},
		{"broader claim swallows existing", []string{"example.co"}},
		{"narrower claim inside existing", []string{"news.example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := registry.Register(&stubEngine{name: "second", domains: tt.claims})
			if err == nil {
				t.Errorf("expected duplicate claim %v to be rejected", tt.claims)
			}
		})
	}
}

func TestRegistryMatching(t *testing.T) {
	registry, err := NewDefaultRegistry(testLogger(), nil)
	if err != nil {
		t.Fatalf("failed to build default registry: %v", err)
	}

	tests := []struct {
		url        string
		wantEngine string
	}{
		{"https://www.nbcnews.com/politics/some-story", "NBC News"},
		{"https://www.politico.com/news/2025/09/16/story-00566448", "POLITICO"},
		{"https://www.politico.eu/article/eu-story/", "POLITICO"},
		{"https://x.com/someuser/status/1836", "Twitter/X"},
		{"https://twitter.com/someuser/status/1836", "Twitter/X"},
		{"https://t.me/channel/123", "Telegram Post"},
		{"https://abcnews.go.com/US/story?id=1", "ABC News"},
		{"https://www.ft.com/content/abc", "Financial Times"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			engine := registry.ForURL(tt.url)
			if engine == nil {
				t.Fatalf("no engine claimed %s", tt.url)
			}
			if engine.Name() != tt.wantEngine {
				t.Errorf("ForURL(%s) = %s, want %s", tt.url, engine.Name(), tt.wantEngine)
			}
		})
	}
}

func TestRegistryUnclaimedFallsThrough(t *testing.T) {
	registry, err := NewDefaultRegistry(testLogger(), nil)
	if err != nil {
		t.Fatalf("failed to build default registry: %v", err)
	}

	if engine := registry.ForURL("https://example-news.test/a"); engine != nil {
		t.Errorf("unclaimed domain should return nil, got %s", engine.Name())
	}
	if registry.Generic() == nil {
		t.Error("generic fallthrough engine missing")
	}
}

func TestRegistryExtraDomainsFromConfig(t *testing.T) {
	extra := map[string][]string{
		"POLITICO": {"politi.co"},
	}
	registry, err := NewDefaultRegistry(testLogger(), extra)
	if err != nil {
		t.Fatalf("failed to build registry with extra domains: %v", err)
	}

	engine := registry.ForURL("https://politi.co/abc")
	if engine == nil || engine.Name() != "POLITICO" {
		t.Errorf("configured extra domain not claimed, got %v", engine)
	}
}

func TestRegistryExtraDomainOverlapIsFatal(t *testing.T) {
	extra := map[string][]string{
		"WSJ": {"nbcnews.com"},
	}
	if _, err := NewDefaultRegistry(testLogger(), extra); err == nil {
		t.Error("overlapping configured domain must fail registry construction")
	}
}
