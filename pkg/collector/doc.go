// Package collector discovers projects on Behance listing pages and reads
// project pages.
//
// The browser renders and scrolls the page; parsing happens in Go over the
// rendered HTML with goquery, so ParseListing and ParseProject can be used
// on saved pages directly.
package collector
