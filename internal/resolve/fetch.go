package resolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// ErrBlocked marks a response that is recognizably an anti-bot challenge
// page rather than article markup. Block responses are never retried
// against the same strategy.
var ErrBlocked = errors.New("blocked: response is a bot challenge page")

// Block page signatures observed across the supported publishers.
var blockSignatures = []string{
	"please verify you are human",
	"verify you are a human",
	"enable javascript and cookies to continue",
	"captcha",
	"are you a robot",
	"you are blocked",
	"access blocked",
	"request blocked",
	"access to this page has been denied",
}

// Browser-like header set; some publishers reject obvious library defaults.
var browserUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
}

const maxPageBytes = 4 * 1024 * 1024

// PageFetcher retrieves the markup behind a URL.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// HTTPFetcher fetches pages with a plain HTTP client and browser-like
// headers. Transient errors (timeout, connection reset) get one retry with
// backoff; block pages and HTTP errors do not.
type HTTPFetcher struct {
	client  *http.Client
	logger  *slog.Logger
	attempt int // rotates the user agent between requests
}

// NewHTTPFetcher creates a fetcher with the given per-attempt timeout.
func NewHTTPFetcher(timeout time.Duration, logger *slog.Logger) *HTTPFetcher {
	// Several publishers set a session cookie on the first response and
	// serve a challenge page without it.
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		logger: logger,
	}
}

// Fetch retrieves the page body. It returns ErrBlocked for recognizable
// challenge pages so callers advance the fallback chain instead of
// retrying.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	body, err := f.fetchOnce(ctx, pageURL)
	if err != nil && isTransient(err) {
		f.logger.Debug("Transient fetch error, retrying once",
			"url", pageURL,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Second):
		}
		body, err = f.fetchOnce(ctx, pageURL)
	}
	if err != nil {
		return "", err
	}

	if IsBlockPage(body) {
		f.logger.Warn("Direct fetch hit a block page", "url", pageURL)
		return "", ErrBlocked
	}

	return body, nil
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	f.attempt++
	req.Header.Set("User-Agent", browserUserAgents[f.attempt%len(browserUserAgents)])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	return string(data), nil
}

// IsBlockPage reports whether body matches a known challenge signature.
func IsBlockPage(body string) bool {
	lower := strings.ToLower(body)
	for _, sig := range blockSignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}

// isTransient classifies timeout and connection-reset errors, which get a
// single retry. HTTP status errors and block pages are not transient.
func isTransient(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF")
}
