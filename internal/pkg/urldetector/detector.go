// Package urldetector extracts submittable article URLs from free-form
// chat messages.
package urldetector

import (
	"net/url"
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`(?i)https?://[^\s<>"']+`)

// Tracking parameters stripped during normalization. Two shares of the
// same article must collapse to one queue row.
var trackingParams = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_term":     true,
	"utm_content":  true,
	"fbclid":       true,
	"gclid":        true,
}

// Share parameters twitter/x append to copied tweet links. They are
// meaningful on other sites, so they are only stripped on those hosts.
var twitterShareParams = map[string]bool{
	"s": true,
	"t": true,
}

func isTwitterHost(host string) bool {
	host = strings.ToLower(host)
	return host == "twitter.com" || strings.HasSuffix(host, ".twitter.com") ||
		host == "x.com" || strings.HasSuffix(host, ".x.com")
}

// Detector finds and normalizes URLs in message content
type Detector struct{}

// New creates a URL detector
func New() *Detector {
	return &Detector{}
}

// Extract returns the normalized URLs found in content, in order of
// appearance, deduplicated after normalization
func (d *Detector) Extract(content string) []string {
	matches := urlPattern.FindAllString(content, -1)
	if len(matches) == 0 {
		return nil
	}

	var urls []string
	seen := make(map[string]bool)
	for _, match := range matches {
		normalized, ok := Normalize(match)
		if !ok || seen[normalized] {
			continue
		}
		seen[normalized] = true
		urls = append(urls, normalized)
	}
	return urls
}

// Normalize cleans a raw URL match: trailing punctuation from surrounding
// prose is trimmed, the fragment dropped, tracking parameters removed.
// Returns ok=false when the remainder is not a usable http(s) URL.
func Normalize(raw string) (string, bool) {
	raw = strings.TrimRight(raw, ".,!?;:)]}>")

	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", false
	}

	u.Fragment = ""
	if u.RawQuery != "" {
		q := u.Query()
		for param := range q {
			if trackingParams[param] {
				q.Del(param)
			}
			if twitterShareParams[param] && isTwitterHost(u.Hostname()) {
				q.Del(param)
			}
		}
		u.RawQuery = q.Encode()
	}

	return u.String(), true
}
