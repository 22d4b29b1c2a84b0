package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"bedownloader/pkg/logger"
	"bedownloader/pkg/metadata"
	"bedownloader/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	payloads map[string][]byte
	calls    []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	f.calls = append(f.calls, url)
	data, ok := f.payloads[url]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func encodeJPEG(t *testing.T, size int, shade uint8) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			img.Set(x, y, color.RGBA{R: shade, G: uint8(x), B: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func encodePNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func newTestManager(t *testing.T, fetcher ImageFetcher) *Manager {
	t.Helper()
	m, err := NewManager(t.TempDir(), fetcher, WithLogger(logger.NewNopLogger()))
	require.NoError(t, err)
	return m
}

var testProject = &models.ProjectData{
	ID:     "42",
	Title:  "Foo",
	Owners: "Jane Doe",
	URL:    "https://www.behance.net/gallery/42/Foo",
}

func TestDownloadJPEGEmbedsProvenance(t *testing.T) {
	url := "https://cdn.example/project_modules/source/a.jpg"
	fetcher := &fakeFetcher{payloads: map[string][]byte{url: encodeJPEG(t, 16, 10)}}
	m := newTestManager(t, fetcher)

	final := m.PathFor(testProject, url, 0)
	written, err := m.Download(context.Background(), testProject, url, final)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(m.GetOutputDir(), "behance-jane-doe-foo-01.jpg"), written)
	assert.NoFileExists(t, filepath.Join(m.GetOutputDir(), "temp-image.jpg"))

	prov, err := metadata.ReadFromJPEG(written)
	require.NoError(t, err)
	assert.Equal(t, "Behance", prov.Site)
	assert.Equal(t, "42", prov.ID)
	assert.Equal(t, url, prov.Image)
}

func TestDownloadPNGWrittenAsIs(t *testing.T) {
	url := "https://cdn.example/b.png"
	payload := encodePNG(t)
	m := newTestManager(t, &fakeFetcher{payloads: map[string][]byte{url: payload}})

	written, err := m.Download(context.Background(), testProject, url, m.PathFor(testProject, url, 1))
	require.NoError(t, err)

	data, err := os.ReadFile(written)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	assert.Equal(t, "behance-jane-doe-foo-02.png", filepath.Base(written))
}

func TestDownloadRejectsNonImagePayload(t *testing.T) {
	url := "https://cdn.example/c.jpg"
	m := newTestManager(t, &fakeFetcher{payloads: map[string][]byte{url: []byte("<html>blocked</html>")}})

	final := m.PathFor(testProject, url, 0)
	_, err := m.Download(context.Background(), testProject, url, final)
	require.Error(t, err)
	assert.NoFileExists(t, final)
	assert.NoFileExists(t, filepath.Join(m.GetOutputDir(), "temp-image.jpg"))
}

func TestDownloadFetchErrorLeavesNothing(t *testing.T) {
	m := newTestManager(t, &fakeFetcher{})

	_, err := m.Download(context.Background(), testProject, "https://cdn.example/missing.jpg", filepath.Join(m.GetOutputDir(), "x-01.jpg"))
	require.Error(t, err)

	entries, err := os.ReadDir(m.GetOutputDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// An upstream image that changed between runs is stored beside the old one.
func TestDownloadCollisionKeepsBothVersions(t *testing.T) {
	url := "https://cdn.example/project_modules/source/a.jpg"
	fetcher := &fakeFetcher{payloads: map[string][]byte{url: encodeJPEG(t, 16, 10)}}
	m := newTestManager(t, fetcher)
	final := m.PathFor(testProject, url, 0)

	first, err := m.Download(context.Background(), testProject, url, final)
	require.NoError(t, err)
	firstData, err := os.ReadFile(first)
	require.NoError(t, err)

	// same bytes again: replaced in place
	again, err := m.Download(context.Background(), testProject, url, final)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	fetcher.payloads[url] = encodeJPEG(t, 64, 200)
	second, err := m.Download(context.Background(), testProject, url, final)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(m.GetOutputDir(), "behance-jane-doe-foo-02.jpg"), second)

	stillFirst, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, firstData, stillFirst)
}

func TestDownloadWithoutValidation(t *testing.T) {
	url := "https://cdn.example/d.gif"
	m, err := NewManager(t.TempDir(), &fakeFetcher{payloads: map[string][]byte{url: []byte("GIF89a-not-really")}},
		WithValidation(false), WithLogger(logger.NewNopLogger()))
	require.NoError(t, err)

	written, err := m.Download(context.Background(), testProject, url, m.PathFor(testProject, url, 0))
	require.NoError(t, err)
	assert.FileExists(t, written)
}
