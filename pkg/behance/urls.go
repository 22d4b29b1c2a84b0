package behance

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedURL is returned when a project URL has no id segment
var ErrMalformedURL = errors.New("malformed project url")

// MakeValidURL returns the canonical form of a site URL: absolute and
// without a query string. Applying it twice gives the same result.
func MakeValidURL(raw string) string {
	u := strings.TrimSpace(raw)
	if !strings.Contains(u, "behance.net/") {
		if !strings.HasPrefix(u, "/") {
			u = "/" + u
		}
		u = BaseURL + u
	}
	if i := strings.Index(u, "?"); i >= 0 {
		u = u[:i]
	}
	return u
}

// FormatForDisplay shortens a URL for status lines: the scheme and host are
// dropped and anything at or over maxLen characters is cut with "...".
// The result is never used as an identifier.
func FormatForDisplay(url string, maxLen int) string {
	parts := strings.Split(url, "/")
	if len(parts) < 5 {
		return url
	}

	short := strings.Join(parts[3:], "/")
	if i := strings.Index(short, "?"); i >= 0 {
		short = short[:i]
	}

	runes := []rune(short)
	if maxLen > 3 && len(runes) >= maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return short
}

// ExtractID returns the project id, the fifth "/"-separated segment of a
// canonical project URL (https://www.behance.net/gallery/<id>/<slug>).
func ExtractID(url string) (string, error) {
	parts := strings.Split(url, "/")
	if len(parts) < 5 || parts[4] == "" {
		return "", fmt.Errorf("%w: %q", ErrMalformedURL, url)
	}
	return parts[4], nil
}

// IsGalleryURL reports whether url points directly at a project
func IsGalleryURL(url string) bool {
	return strings.Contains(url, GalleryPathFragment)
}

// IsMoodboardURL reports whether url is a moodboard listing
func IsMoodboardURL(url string) bool {
	return strings.Contains(url, MoodboardPathFragment)
}

// IsSiteURL reports whether url belongs to the site at all
func IsSiteURL(url string) bool {
	return strings.Contains(strings.ToLower(url), "behance.net")
}
