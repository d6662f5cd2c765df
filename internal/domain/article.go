package domain

// ArticleResult is the outcome of resolving a URL: canonical metadata plus
// the raw media candidates discovered on the page. It carries no lifecycle
// state; the work queue owns that.
type ArticleResult struct {
	Title       string
	Description string
	Source      string
	ContentType string
	Published   string

	// Candidate media URLs in discovery order
	Images []string
	Videos []string

	// Username of the posting account, for social posts
	Username string
}

// HasTitle reports whether the result satisfies the minimum a resolution
// strategy must produce before the resolver stops falling back.
func (r *ArticleResult) HasTitle() bool {
	return r != nil && r.Title != ""
}

// MediaType classifies a candidate URL
type MediaType string

const (
	MediaImage   MediaType = "image"
	MediaVideo   MediaType = "video"
	MediaUnknown MediaType = "unknown"
)

// MediaCandidate is an ephemeral classification of one candidate URL.
// Candidates are never persisted; only the raw URL lists and the final
// selected local paths are.
type MediaCandidate struct {
	URL        string
	Type       MediaType
	Confidence float64
}
