package metadata

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"
)

const (
	tagImageDescription = "ImageDescription"
	tagSoftware         = "Software"
	rootIfdPath         = "IFD0"
)

// IsJPEG reports whether path has a JPEG extension
func IsJPEG(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return true
	default:
		return false
	}
}

// EmbedInJPEG writes description into the ImageDescription tag of the JPEG at
// path, keeping any existing EXIF data. When the file had no EXIF block a new
// one is created and software is written to the Software tag as well.
func EmbedInJPEG(path, description, software string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	out, err := embed(data, description, software)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat image: %w", err)
	}
	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}

func embed(data []byte, description, software string) ([]byte, error) {
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		return nil, fmt.Errorf("not a jpeg file")
	}

	parsed, err := jpegstructure.NewJpegMediaParser().ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse jpeg: %w", err)
	}
	sl := parsed.(*jpegstructure.SegmentList)

	rootIb, err := exifBuilder(sl, software)
	if err != nil {
		return nil, err
	}

	ifdIb, err := exif.GetOrCreateIbFromRootIb(rootIb, rootIfdPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open IFD0: %w", err)
	}
	if err := ifdIb.SetStandardWithName(tagImageDescription, description); err != nil {
		return nil, fmt.Errorf("failed to set description tag: %w", err)
	}

	if err := sl.SetExif(rootIb); err != nil {
		return nil, fmt.Errorf("failed to update exif: %w", err)
	}

	var buf bytes.Buffer
	if err := sl.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// exifBuilder returns a builder over the existing EXIF block, or a fresh one
// carrying the Software tag when the file has none
func exifBuilder(sl *jpegstructure.SegmentList, software string) (*exif.IfdBuilder, error) {
	_, _, err := sl.Exif()
	if err == nil {
		rootIb, err := sl.ConstructExifBuilder()
		if err != nil {
			return nil, fmt.Errorf("failed to read exif: %w", err)
		}
		return rootIb, nil
	}
	if !errors.Is(err, exif.ErrNoExif) {
		return nil, fmt.Errorf("failed to read exif: %w", err)
	}

	rootIb, err := newRootBuilder()
	if err != nil {
		return nil, err
	}
	if err := rootIb.SetStandardWithName(tagSoftware, software); err != nil {
		return nil, fmt.Errorf("failed to set software tag: %w", err)
	}
	return rootIb, nil
}

func newRootBuilder() (*exif.IfdBuilder, error) {
	im, err := exifcommon.NewIfdMappingWithStandard()
	if err != nil {
		return nil, fmt.Errorf("failed to create ifd mapping: %w", err)
	}
	ti := exif.NewTagIndex()
	return exif.NewIfdBuilder(im, ti, exifcommon.IfdStandardIfdIdentity, exifcommon.EncodeDefaultByteOrder), nil
}

// ReadJPEGTag returns the string value of a tag in IFD0
func ReadJPEGTag(path, tagName string) (string, error) {
	parsed, err := jpegstructure.NewJpegMediaParser().ParseFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to parse jpeg: %w", err)
	}
	return readTag(parsed.(*jpegstructure.SegmentList), tagName)
}

func readTag(sl *jpegstructure.SegmentList, tagName string) (string, error) {
	rootIfd, _, err := sl.Exif()
	if err != nil {
		return "", fmt.Errorf("no exif data: %w", err)
	}

	results, err := rootIfd.FindTagWithName(tagName)
	if err != nil || len(results) == 0 {
		return "", fmt.Errorf("tag %s not found", tagName)
	}

	value, err := results[0].Value()
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", tagName, err)
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("tag %s is not text", tagName)
	}
	return strings.TrimRight(s, "\x00"), nil
}

// ReadFromJPEG returns the provenance record embedded in a JPEG
func ReadFromJPEG(path string) (*Provenance, error) {
	description, err := ReadJPEGTag(path, tagImageDescription)
	if err != nil {
		return nil, err
	}
	return ParseDescription(description)
}

// ReadFromJPEGBytes is ReadFromJPEG for an image held in memory
func ReadFromJPEGBytes(data []byte) (*Provenance, error) {
	parsed, err := jpegstructure.NewJpegMediaParser().ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse jpeg: %w", err)
	}
	description, err := readTag(parsed.(*jpegstructure.SegmentList), tagImageDescription)
	if err != nil {
		return nil, err
	}
	return ParseDescription(description)
}
