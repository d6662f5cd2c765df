// Package pipelist encodes ordered URL lists into a single text column.
//
// The separator is '|' because it can never appear unescaped in a URL
// (RFC 3986 requires it percent-encoded), whereas a comma is a legal URL
// character and would not round-trip.
package pipelist

import (
	"fmt"
	"strings"
)

// Separator joins list entries in the persisted column.
const Separator = "|"

// Join serializes urls into a single pipe-delimited string. Entries are
// trimmed; empty entries are dropped. An entry containing a raw '|' is an
// error because it would corrupt the stored list.
func Join(urls []string) (string, error) {
	if len(urls) == 0 {
		return "", nil
	}

	cleaned := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if strings.Contains(u, Separator) {
			return "", fmt.Errorf("url contains reserved separator %q: %s", Separator, u)
		}
		cleaned = append(cleaned, u)
	}

	return strings.Join(cleaned, Separator), nil
}

// Split parses a pipe-delimited column back into the original ordered list.
func Split(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, Separator)
	urls := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			urls = append(urls, p)
		}
	}
	return urls
}
