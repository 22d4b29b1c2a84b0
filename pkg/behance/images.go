package behance

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// SourceTier is the folder name of the original upload
const SourceTier = "source"

// deniedFragments are third-party embed and avatar hosts that show up inside
// project pages but are never project artwork.
var deniedFragments = []string{
	"static.kuula.io",
	"files.kuula.io/users/",
	"files.kuula.io/profiles/",
	"cdn.cp.adobe.io",
}

var allowedExtensions = []string{".jpg", ".jpeg", ".png", ".gif"}

// knownTiers lists the resized-rendition folders the CDN serves under
// /project_modules/. Any of these is rewritten to SourceTier.
var knownTiers = map[string]bool{
	"disp":       true,
	"fs":         true,
	"hd":         true,
	"max_632":    true,
	"max_808":    true,
	"max_1200":   true,
	"max_1240":   true,
	"max_3840":   true,
	"1400":       true,
	"1400_opt_1": true,
	"2800_opt_1": true,
	"3840_opt_1": true,
	"808":        true,
	"600":        true,
	"404":        true,
	"230":        true,
	"202":        true,
	"115":        true,
}

// tierPattern covers numeric renditions not listed above, e.g. 1920 or max_2000_webp
var tierPattern = regexp.MustCompile(`^(max_)?\d+(_opt_\d+)?(_webp)?$`)

const projectModulesFragment = "/project_modules/"

// SelectDownloadableImages filters raw image URLs down to project artwork,
// upgrades each to its original-resolution rendition and removes duplicates.
// Output order follows first occurrence in raw.
func SelectDownloadableImages(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))

	for _, candidate := range raw {
		if !isDownloadable(candidate) {
			continue
		}

		u := UpgradeToSource(stripQuery(candidate))
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}

	return out
}

func isDownloadable(candidate string) bool {
	if candidate == "" {
		return false
	}

	lower := strings.ToLower(candidate)
	if !hasAllowedExtension(stripQuery(lower)) {
		return false
	}
	for _, fragment := range deniedFragments {
		if strings.Contains(lower, fragment) {
			return false
		}
	}
	if strings.Contains(lower, "base64") {
		return false
	}

	return strings.Contains(lower, projectModulesFragment) || !isSiteAsset(candidate)
}

func hasAllowedExtension(lowerPath string) bool {
	for _, ext := range allowedExtensions {
		if strings.HasSuffix(lowerPath, ext) {
			return true
		}
	}
	return false
}

// isSiteAsset reports whether the URL is served from the site's own domains.
// Those are UI chrome unless they live under /project_modules/.
func isSiteAsset(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return IsSiteURL(raw)
	}
	host := strings.ToLower(parsed.Hostname())
	return host == "behance.net" || strings.HasSuffix(host, ".behance.net")
}

func stripQuery(u string) string {
	if i := strings.Index(u, "?"); i >= 0 {
		return u[:i]
	}
	return u
}

// UpgradeToSource rewrites the rendition folder right before the file name
// to SourceTier. URLs outside /project_modules/, already at source, or with
// an unrecognised folder are returned unchanged.
func UpgradeToSource(u string) string {
	if !strings.Contains(strings.ToLower(u), projectModulesFragment) {
		return u
	}

	dir, file := path.Split(u)
	dir = strings.TrimSuffix(dir, "/")
	i := strings.LastIndex(dir, "/")
	if i < 0 || file == "" {
		return u
	}

	tier := dir[i+1:]
	if tier == SourceTier || !IsKnownTier(tier) {
		return u
	}
	return dir[:i+1] + SourceTier + "/" + file
}

// IsKnownTier reports whether folder is a rendition folder name
func IsKnownTier(folder string) bool {
	f := strings.ToLower(folder)
	return knownTiers[f] || tierPattern.MatchString(f)
}
