// Package behance holds what bedownloader knows about the site: URL
// canonicalisation, page selectors, the image filter that turns a page's
// <img> sources into original-resolution artwork URLs, and the HTTP client
// used to fetch those images.
package behance
