// Package downloader walks the collected project list and saves every
// project's images, one project and one image at a time.
package downloader
