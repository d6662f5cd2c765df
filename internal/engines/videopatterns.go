package engines

import "regexp"

// Video URL pattern families, most specific first. The scan order matters:
// a Brightcove player asset says more about the page than a bare .mp4 link,
// so it is reported first and wins candidate priority downstream.
var videoPatternFamilies = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{
		// Embedded Brightcove player pages, e.g.
		// https://players.brightcove.net/<account>/<player>_default/index.html?videoId=<id>
		name:    "brightcove_player",
		pattern: regexp.MustCompile(`https?://players\.brightcove\.net/[0-9]+/[\w-]+/index\.html\?videoId=[\w:.-]+`),
	},
	{
		// Twitter/X CDN video assets under amplify_video or tweet_video
		name:    "twimg_video",
		pattern: regexp.MustCompile(`https?://video\.twimg\.com/(?:amplify_video|tweet_video|ext_tw_video)/[^\s"'<>\\]+\.mp4[^\s"'<>\\]*`),
	},
	{
		// HLS manifests
		name:    "hls_manifest",
		pattern: regexp.MustCompile(`https?://[^\s"'<>\\]+\.m3u8[^\s"'<>\\]*`),
	},
	{
		// Anything ending in a common video container extension
		name:    "direct_file",
		pattern: regexp.MustCompile(`https?://[^\s"'<>\\]+\.(?:mp4|webm|mov|mkv)(?:\?[^\s"'<>\\]*)?`),
	},
}

// ScanVideoURLs scans raw page text for known video-delivery URL shapes.
// Matches are returned family by family, most specific family first, with
// duplicates removed.
func ScanVideoURLs(raw string) []string {
	var urls []string
	seen := make(map[string]bool)

	for _, family := range videoPatternFamilies {
		for _, match := range family.pattern.FindAllString(raw, -1) {
			if !seen[match] {
				seen[match] = true
				urls = append(urls, match)
			}
		}
	}

	return urls
}
