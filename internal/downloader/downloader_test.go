package downloader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bedownloader/pkg/browser/browsertest"
	"bedownloader/pkg/logger"
	"bedownloader/pkg/models"
	"bedownloader/pkg/ui"
)

type fakeSaver struct {
	mu       sync.Mutex
	saved    []string
	failURLs map[string]bool
	// onDownload runs after each download with the number of calls so far
	onDownload func(calls int)
}

func (f *fakeSaver) PathFor(project *models.ProjectData, imageURL string, index int) string {
	return filepath.Join("/out", fmt.Sprintf("%s-%02d.jpg", project.ID, index+1))
}

func (f *fakeSaver) Download(ctx context.Context, project *models.ProjectData, imageURL, finalPath string) (string, error) {
	f.mu.Lock()
	f.saved = append(f.saved, imageURL)
	calls := len(f.saved)
	hook := f.onDownload
	fail := f.failURLs[imageURL]
	f.mu.Unlock()

	if hook != nil {
		hook(calls)
	}
	if fail {
		return "", errors.New("404")
	}
	return finalPath, nil
}

func (f *fakeSaver) Saved() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.saved...)
}

type fakeHistory struct {
	urls []string
	err  error
}

func (f *fakeHistory) Append(url string) error {
	if f.err != nil {
		return f.err
	}
	f.urls = append(f.urls, url)
	return nil
}

func projectHTML(title string, images ...string) string {
	var b strings.Builder
	b.WriteString(`<html><head><meta property="og:title" content="` + title + `">`)
	b.WriteString(`<meta property="og:owners" content="Jane Doe"></head><body>`)
	for _, img := range images {
		b.WriteString(`<img src="` + img + `">`)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}

func moduleImages(id string, n int) []string {
	images := make([]string, n)
	for i := range images {
		images[i] = fmt.Sprintf("https://mir-s3-cdn-cf.behance.net/project_modules/1400/%s-%d.jpg", id, i)
	}
	return images
}

func zeroDelays() Options {
	opts := DefaultOptions()
	opts.BetweenImagesDelay = 0
	opts.BetweenProjectsDelay = 0
	opts.TurboDelay = 0
	return opts
}

func newState(links ...models.ProjectLink) *models.TaskState {
	state := models.NewTaskState()
	state.SetProjects(links)
	state.UpdateCounters(func(c *models.Counters) { c.Total = len(links) })
	return state
}

const (
	galleryA = "https://www.behance.net/gallery/100/Alpha"
	galleryB = "https://www.behance.net/gallery/200/Beta"
	moduleC  = "https://www.behance.net/gallery/300/Gamma"
)

func TestDownloadAll(t *testing.T) {
	page := browsertest.NewPage(map[string]string{
		galleryA: projectHTML("Alpha", moduleImages("a", 2)...),
		galleryB: projectHTML("Beta", moduleImages("b", 1)...),
		moduleC:  projectHTML("Gamma", moduleImages("c", 5)...),
	})
	saver := &fakeSaver{}
	hist := &fakeHistory{}
	rep := ui.NewRecordingReporter()
	state := newState(
		models.ProjectLink{Variant: models.VariantGallery, URL: galleryA},
		models.ProjectLink{Variant: models.VariantGallery, URL: galleryB},
		models.ProjectLink{
			Variant:    models.VariantSingleImage,
			URL:        moduleC,
			CoverImage: "https://mir-s3-cdn-cf.behance.net/project_modules/disp/cover.jpg",
		},
	)

	d := New(page, saver, hist, rep, zeroDelays(), logger.NewTestLogger())
	require.NoError(t, d.DownloadAll(context.Background(), state))

	assert.Equal(t, []string{
		"https://mir-s3-cdn-cf.behance.net/project_modules/source/a-0.jpg",
		"https://mir-s3-cdn-cf.behance.net/project_modules/source/a-1.jpg",
		"https://mir-s3-cdn-cf.behance.net/project_modules/source/b-0.jpg",
		"https://mir-s3-cdn-cf.behance.net/project_modules/source/cover.jpg",
	}, saver.Saved())

	counters := state.Counters()
	assert.Equal(t, 3, counters.Completed)
	assert.Equal(t, 0, counters.Failed)

	// single images never enter history
	assert.Equal(t, []string{galleryA, galleryB}, hist.urls)
	assert.Equal(t, []string{galleryA, galleryB}, state.History())

	last, ok := rep.LastCounters()
	require.True(t, ok)
	assert.Equal(t, 3, last.Completed)
}

func TestDownloadAllFailedImageStillCompletes(t *testing.T) {
	images := moduleImages("a", 3)
	page := browsertest.NewPage(map[string]string{galleryA: projectHTML("Alpha", images...)})
	saver := &fakeSaver{failURLs: map[string]bool{
		"https://mir-s3-cdn-cf.behance.net/project_modules/source/a-1.jpg": true,
	}}
	log := logger.NewTestLogger()
	state := newState(models.ProjectLink{Variant: models.VariantGallery, URL: galleryA})

	d := New(page, saver, &fakeHistory{}, nil, zeroDelays(), log)
	require.NoError(t, d.DownloadAll(context.Background(), state))

	assert.Len(t, saver.Saved(), 3)
	assert.Equal(t, 1, state.Counters().Completed)
	assert.True(t, log.HasMessage("image download failed"))
}

func TestDownloadAllAccessGatedProjectFails(t *testing.T) {
	page := browsertest.NewPage(map[string]string{
		galleryA: `<html><head></head><body class="is-locked"><img src="https://mir-s3-cdn-cf.behance.net/project_modules/1400/x.jpg"></body></html>`,
		galleryB: projectHTML("Beta", moduleImages("b", 1)...),
	})
	saver := &fakeSaver{}
	hist := &fakeHistory{}
	state := newState(
		models.ProjectLink{Variant: models.VariantGallery, URL: galleryA},
		models.ProjectLink{Variant: models.VariantGallery, URL: galleryB},
	)

	d := New(page, saver, hist, nil, zeroDelays(), nil)
	require.NoError(t, d.DownloadAll(context.Background(), state))

	counters := state.Counters()
	assert.Equal(t, 1, counters.Failed)
	assert.Equal(t, 1, counters.Completed)
	assert.Equal(t, []string{galleryB}, hist.urls)
}

func TestDownloadAllToleratesNavigationErrors(t *testing.T) {
	page := browsertest.NewPage(map[string]string{galleryA: projectHTML("Alpha", moduleImages("a", 1)...)})
	page.NavigateErrors[galleryA] = errors.New("net::ERR_TIMED_OUT")
	state := newState(models.ProjectLink{Variant: models.VariantGallery, URL: galleryA})

	d := New(page, &fakeSaver{}, &fakeHistory{}, nil, zeroDelays(), nil)
	require.NoError(t, d.DownloadAll(context.Background(), state))

	// the page never loaded; it is still read and yields a project without images
	assert.Equal(t, 1, state.Counters().Completed)
}

func TestDownloadAllAbortMidProject(t *testing.T) {
	page := browsertest.NewPage(map[string]string{
		galleryA: projectHTML("Alpha", moduleImages("a", 10)...),
		galleryB: projectHTML("Beta", moduleImages("b", 2)...),
	})
	state := newState(
		models.ProjectLink{Variant: models.VariantGallery, URL: galleryA},
		models.ProjectLink{Variant: models.VariantGallery, URL: galleryB},
	)
	saver := &fakeSaver{onDownload: func(calls int) {
		if calls == 3 {
			state.Abort()
		}
	}}
	hist := &fakeHistory{}

	d := New(page, saver, hist, nil, zeroDelays(), nil)
	require.NoError(t, d.DownloadAll(context.Background(), state))

	assert.Len(t, saver.Saved(), 3)
	assert.Equal(t, 0, state.Counters().Completed)
	assert.Empty(t, hist.urls)
	assert.Equal(t, []string{galleryA}, page.Navigations())
}

func TestDownloadAllAbortSkipsImageDelay(t *testing.T) {
	page := browsertest.NewPage(map[string]string{galleryA: projectHTML("Alpha", moduleImages("a", 3)...)})
	state := newState(models.ProjectLink{Variant: models.VariantGallery, URL: galleryA})
	saver := &fakeSaver{onDownload: func(calls int) {
		if calls == 1 {
			state.Abort()
		}
	}}

	opts := zeroDelays()
	opts.BetweenImagesDelay = time.Hour
	d := New(page, saver, &fakeHistory{}, nil, opts, nil)

	done := make(chan error, 1)
	go func() { done <- d.DownloadAll(context.Background(), state) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("abort waited for the between-images delay")
	}

	assert.Len(t, saver.Saved(), 1)
	assert.Equal(t, 0, state.Counters().Completed)
}

func TestDownloadAllContextCancelIsAbort(t *testing.T) {
	page := browsertest.NewPage(map[string]string{galleryA: projectHTML("Alpha", moduleImages("a", 2)...)})
	state := newState(models.ProjectLink{Variant: models.VariantGallery, URL: galleryA})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := New(page, &fakeSaver{}, &fakeHistory{}, nil, zeroDelays(), nil)
	require.NoError(t, d.DownloadAll(ctx, state))

	assert.True(t, state.IsAborted())
	assert.Empty(t, page.Navigations())
}

func TestDownloadAllHistoryWriteError(t *testing.T) {
	page := browsertest.NewPage(map[string]string{galleryA: projectHTML("Alpha", moduleImages("a", 1)...)})
	state := newState(models.ProjectLink{Variant: models.VariantGallery, URL: galleryA})
	hist := &fakeHistory{err: errors.New("disk full")}

	d := New(page, &fakeSaver{}, hist, nil, zeroDelays(), nil)
	err := d.DownloadAll(context.Background(), state)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestTurboModeSkipsContentWait(t *testing.T) {
	page := browsertest.NewPage(map[string]string{galleryA: projectHTML("Alpha", moduleImages("a", 1)...)})
	page.MissingSelectors["#project-modules, .Project-projectModules-dnc, main img"] = true
	state := newState(models.ProjectLink{Variant: models.VariantGallery, URL: galleryA})
	log := logger.NewTestLogger()

	opts := zeroDelays()
	opts.TurboMode = true
	d := New(page, &fakeSaver{}, &fakeHistory{}, nil, opts, log)
	require.NoError(t, d.DownloadAll(context.Background(), state))

	assert.False(t, log.HasMessage("project content not found"))
	assert.Equal(t, 1, state.Counters().Completed)
}
