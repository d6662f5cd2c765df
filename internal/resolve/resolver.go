// Package resolve turns a bare URL into article metadata by trying
// resolution strategies in strict order: direct fetch with the matching
// site engine, the third-party content-search fallback, then generic
// heuristic extraction.
package resolve

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/woai-art/shorts-news-sub001/internal/domain"
	"github.com/woai-art/shorts-news-sub001/internal/engines"
)

// RenderFetcher is a PageFetcher that knows which hosts it should render.
type RenderFetcher interface {
	PageFetcher
	ShouldRender(pageURL string) bool
}

// Resolver orchestrates the fallback chain. It never lets a strategy
// error escape: the outcome is either a populated ArticleResult or
// domain.ErrUnresolved.
type Resolver struct {
	registry *engines.Registry
	fetcher  PageFetcher
	renderer RenderFetcher
	searcher ContentSearcher
	logger   *slog.Logger
}

// NewResolver wires the strategy chain. renderer may be nil when no
// browser is available; render hosts then go through the plain fetcher.
func NewResolver(
	registry *engines.Registry,
	fetcher PageFetcher,
	renderer RenderFetcher,
	searcher ContentSearcher,
	logger *slog.Logger,
) *Resolver {
	return &Resolver{
		registry: registry,
		fetcher:  fetcher,
		renderer: renderer,
		searcher: searcher,
		logger:   logger,
	}
}

// Resolve runs the strategy chain for pageURL, stopping at the first
// strategy that yields a non-empty title.
func (r *Resolver) Resolve(ctx context.Context, pageURL string) (*domain.ArticleResult, error) {
	engine := r.registry.ForURL(pageURL)

	// Unclaimed domains fall through to the generic heuristic engine.
	extractor := engine
	if extractor == nil {
		extractor = r.registry.Generic()
	}

	// Strategy 1: direct fetch plus the matching engine. The fetched
	// markup is kept for the heuristic pass even when the engine
	// does not match it.
	directHTML := r.fetchDirect(ctx, pageURL)
	if directHTML != "" {
		if result := r.extract(extractor, pageURL, directHTML); result.HasTitle() {
			r.logger.Info("Resolved via direct fetch",
				"url", pageURL,
				"engine", extractor.Name(),
				"title", result.Title,
			)
			return result, nil
		}
		r.logger.Debug("Engine extraction mismatch on direct fetch",
			"url", pageURL,
			"engine", extractor.Name(),
		)
	}

	// Strategy 2: content-search fallback, independent of direct access.
	if result := r.resolveViaSearch(ctx, pageURL, extractor); result.HasTitle() {
		r.logger.Info("Resolved via content-search fallback",
			"url", pageURL,
			"title", result.Title,
		)
		return result, nil
	}

	// Strategy 3: generic heuristic extraction over the direct markup,
	// for pages a claiming engine could not make sense of.
	if directHTML != "" && engine != nil {
		if result := r.extract(r.registry.Generic(), pageURL, directHTML); result.HasTitle() {
			r.logger.Info("Resolved via generic heuristics",
				"url", pageURL,
				"title", result.Title,
			)
			return result, nil
		}
	}

	r.logger.Warn("All resolution strategies exhausted", "url", pageURL)
	return nil, domain.ErrUnresolved
}

// fetchDirect fetches the page, rendering it when the host needs a
// browser. Fetch failures (including block pages) only log: the fallback
// chain continues.
func (r *Resolver) fetchDirect(ctx context.Context, pageURL string) string {
	fetcher := r.fetcher
	if r.renderer != nil && r.renderer.ShouldRender(pageURL) {
		fetcher = r.renderer
	}

	html, err := fetcher.Fetch(ctx, pageURL)
	if err != nil {
		r.logger.Warn("Direct fetch failed, advancing to fallback",
			"url", pageURL,
			"error", err,
		)
		return ""
	}
	return html
}

// extract runs an engine over raw markup, flattening extraction errors
// and mismatches into a nil result.
func (r *Resolver) extract(engine engines.Engine, pageURL, html string) *domain.ArticleResult {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		r.logger.Warn("Failed to parse markup", "url", pageURL, "error", err)
		return nil
	}

	result, err := engine.Extract(pageURL, doc)
	if err != nil {
		r.logger.Warn("Engine extraction error",
			"url", pageURL,
			"engine", engine.Name(),
			"error", err,
		)
		return nil
	}
	return result
}

// resolveViaSearch queries the content-search API and extracts from the
// returned documents: engine extraction against rendered HTML first, the
// provider's own fields second.
func (r *Resolver) resolveViaSearch(ctx context.Context, pageURL string, extractor engines.Engine) *domain.ArticleResult {
	if r.searcher == nil {
		return nil
	}

	results, err := r.searcher.Search(ctx, pageURL)
	if err != nil {
		r.logger.Warn("Content-search fallback failed",
			"url", pageURL,
			"error", err,
		)
		return nil
	}

	for _, sr := range results {
		if sr.RawContent != "" {
			if result := r.extract(extractor, pageURL, sr.RawContent); result.HasTitle() {
				for _, img := range sr.Images {
					result.Images = appendMissing(result.Images, img)
				}
				return result
			}
		}

		if sr.Title == "" {
			continue
		}

		result := &domain.ArticleResult{
			Title:       sr.Title,
			Description: truncate(sr.Content, 500),
			Source:      sourceName(extractor, pageURL),
			ContentType: contentTypeOf(extractor),
			Images:      append([]string{}, sr.Images...),
		}
		for _, v := range engines.ScanVideoURLs(sr.Content + "\n" + sr.RawContent) {
			result.Videos = appendMissing(result.Videos, v)
		}
		return result
	}

	return nil
}

// contentTypeOf asks the matched engine for the content type it claims;
// engines without an opinion produce articles.
func contentTypeOf(engine engines.Engine) string {
	if typed, ok := engine.(interface{ ContentType() string }); ok {
		return typed.ContentType()
	}
	return domain.ContentTypeArticle
}

func sourceName(engine engines.Engine, pageURL string) string {
	if engine != nil && engine.Name() != "Generic" {
		return engine.Name()
	}
	host := pageURL
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexAny(host, "/?#"); i > 0 {
		host = host[:i]
	}
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

// truncate caps s at max bytes without splitting a multi-byte rune.
func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	for len(cut) > 0 {
		if r, size := utf8.DecodeLastRuneInString(cut); r != utf8.RuneError || size != 1 {
			break
		}
		cut = cut[:len(cut)-1]
	}
	return cut
}

func appendMissing(list []string, u string) []string {
	if u == "" {
		return list
	}
	for _, existing := range list {
		if existing == u {
			return list
		}
	}
	return append(list, u)
}
