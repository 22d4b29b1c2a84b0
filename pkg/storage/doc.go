// Package storage writes downloaded images to disk.
//
// File names are derived from the project (first owner and title, both
// transliterated and kebab-cased) plus a two digit image index. Each image
// is streamed to a temp file, checked to decode as an image, stamped with a
// provenance record when it is a JPEG and then moved into place. An
// existing file with the same size is treated as the same image and
// replaced; a different file with the same name is kept and the new one gets
// the next free numeric suffix.
package storage
