package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// BrowserFetcher renders pages in a headless browser for hosts whose
// markup only exists after JavaScript runs (social posts, hard anti-bot
// fronts). The browser is shared across items; every Fetch opens and
// closes its own page so no per-item state leaks to the next item.
type BrowserFetcher struct {
	logger      *slog.Logger
	renderHosts []string

	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewBrowserFetcher prepares a lazy fetcher; the browser process starts on
// first use so services that never hit a render host pay nothing.
func NewBrowserFetcher(renderHosts []string, logger *slog.Logger) *BrowserFetcher {
	return &BrowserFetcher{
		logger:      logger,
		renderHosts: renderHosts,
	}
}

// ShouldRender reports whether pageURL's host needs browser rendering.
func (f *BrowserFetcher) ShouldRender(pageURL string) bool {
	lower := strings.ToLower(pageURL)
	for _, host := range f.renderHosts {
		if strings.Contains(lower, strings.ToLower(host)) {
			return true
		}
	}
	return false
}

func (f *BrowserFetcher) ensureBrowser() error {
	if f.browser != nil {
		return nil
	}

	f.launcher = launcher.New().
		Headless(true).
		Set("no-sandbox").
		Set("disable-blink-features", "AutomationControlled")

	controlURL, err := f.launcher.Launch()
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		f.launcher.Cleanup()
		f.launcher = nil
		return fmt.Errorf("failed to connect to browser: %w", err)
	}

	f.browser = browser
	f.logger.Info("Headless browser started")
	return nil
}

// Fetch renders the page and returns its final HTML. The page is always
// closed before returning, success or not.
func (f *BrowserFetcher) Fetch(ctx context.Context, pageURL string) (html string, err error) {
	if err := f.ensureBrowser(); err != nil {
		return "", err
	}

	page, err := f.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return "", fmt.Errorf("failed to open page: %w", err)
	}
	defer func() {
		if closeErr := page.Close(); closeErr != nil {
			f.logger.Warn("Failed to close browser page", "error", closeErr)
		}
	}()

	page = page.Context(ctx).Timeout(20 * time.Second)

	if err := page.Navigate(pageURL); err != nil {
		return "", fmt.Errorf("failed to navigate: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("failed waiting for page load: %w", err)
	}

	// Give client-side rendering a beat to attach media elements
	page.WaitRequestIdle(2*time.Second, nil, nil, nil)()

	html, err = page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to read rendered HTML: %w", err)
	}

	if IsBlockPage(html) {
		return "", ErrBlocked
	}

	return html, nil
}

// Close tears the browser down. Safe to call when it never started.
func (f *BrowserFetcher) Close() {
	if f.browser != nil {
		if err := f.browser.Close(); err != nil {
			f.logger.Warn("Failed to close browser", "error", err)
		}
		f.browser = nil
	}
	if f.launcher != nil {
		f.launcher.Cleanup()
		f.launcher = nil
	}
}
