package scraper

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bedownloader/pkg/behance"
	"bedownloader/pkg/browser/browsertest"
	"bedownloader/pkg/history"
	"bedownloader/pkg/logger"
	"bedownloader/pkg/metadata"
	"bedownloader/pkg/storage"
	"bedownloader/pkg/ui"
)

const (
	profileURL = "https://www.behance.net/janedoe"
	alphaURL   = "https://www.behance.net/gallery/100/Alpha"
	betaURL    = "https://www.behance.net/gallery/200/Beta"
	gammaURL   = "https://www.behance.net/gallery/300/Gamma"
)

func testJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 80, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func imageServer(t *testing.T) *httptest.Server {
	t.Helper()
	payload := testJPEG(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ".jpg") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(payload)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func listingHTML(links ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="ContentGrid-root-wzR">`)
	for _, l := range links {
		b.WriteString(`<article><div class="ContentGrid-gridItem-XZq"><a href="` + l + `">p</a><img src="https://mir-s3-cdn-cf.behance.net/projects/404/cover.jpg"></div></article>`)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

func projectPageHTML(title string, images ...string) string {
	var b strings.Builder
	b.WriteString(`<html><head><meta property="og:title" content="` + title + `"><meta property="og:owners" content="Jane Doe, Bob"></head><body><div id="project-modules">`)
	for _, img := range images {
		b.WriteString(`<img src="` + img + `">`)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

type harness struct {
	ctrl     *Controller
	page     *browsertest.Page
	launcher *browsertest.Launcher
	reporter *ui.RecordingReporter
	outDir   string
	histPath string
}

func newHarness(t *testing.T, docs map[string]string, opts Options) *harness {
	t.Helper()
	dir := t.TempDir()
	outDir := filepath.Join(dir, "downloads")
	histPath := filepath.Join(dir, "settings", "history.txt")

	log := logger.NewNopLogger()
	client := behance.NewClient(5*time.Second, 1, log)
	saver, err := storage.NewManager(outDir, client, storage.WithLogger(log))
	require.NoError(t, err)

	page := browsertest.NewPage(docs)
	launcher := browsertest.NewLauncher(page)
	rep := ui.NewRecordingReporter()

	opts.Downloader.BetweenImagesDelay = 0
	opts.Downloader.BetweenProjectsDelay = 0
	opts.Downloader.TurboDelay = 0

	ctrl := NewController(Dependencies{
		Launcher: launcher,
		Saver:    saver,
		History:  history.NewStore(histPath, log),
		Reporter: rep,
		Logger:   logger.NewTestLogger(),
	}, opts)

	return &harness{ctrl: ctrl, page: page, launcher: launcher, reporter: rep, outDir: outDir, histPath: histPath}
}

func TestRunEndToEnd(t *testing.T) {
	srv := imageServer(t)
	docs := map[string]string{
		profileURL: listingHTML("/gallery/100/Alpha", "/gallery/200/Beta?from=profile"),
		alphaURL:   projectPageHTML("Alpha", srv.URL+"/a1.jpg", srv.URL+"/a2.jpg", "data:image/png;base64,AAAA"),
		betaURL:    projectPageHTML("Beta", srv.URL+"/b1.jpg"),
	}
	h := newHarness(t, docs, Options{SkipByHistory: true})
	require.NoError(t, history.Append(h.histPath, gammaURL))

	result, err := h.ctrl.Run(context.Background(), []string{profileURL, betaURL, gammaURL})
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, 3, result.Counters.Total)
	assert.Equal(t, 2, result.Counters.Completed)
	assert.Equal(t, 1, result.Counters.Skipped)
	assert.NotEmpty(t, result.RunID)
	assert.False(t, result.Aborted)

	for _, name := range []string{
		"behance-jane-doe-alpha-01.jpg",
		"behance-jane-doe-alpha-02.jpg",
		"behance-jane-doe-beta-01.jpg",
	} {
		assert.FileExists(t, filepath.Join(h.outDir, name))
	}

	prov, err := metadata.ReadFromJPEG(filepath.Join(h.outDir, "behance-jane-doe-alpha-01.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "100", prov.ID)
	assert.Equal(t, alphaURL, prov.URL)

	assert.Equal(t, []string{gammaURL, alphaURL, betaURL}, history.Load(h.histPath))

	assert.True(t, h.launcher.Browser.Closed())
	assert.Equal(t, StateIdle, h.ctrl.State())

	finished := h.reporter.EventsOf(ui.EventFinished)
	require.Len(t, finished, 1)
	assert.Equal(t, StatusSuccess, finished[0].Message)
	assert.Len(t, h.reporter.EventsOf(ui.EventReady), 1)
}

func TestRunSecondPassSkipsEverything(t *testing.T) {
	srv := imageServer(t)
	docs := map[string]string{alphaURL: projectPageHTML("Alpha", srv.URL+"/a1.jpg")}
	h := newHarness(t, docs, Options{SkipByHistory: true})

	first, err := h.ctrl.Run(context.Background(), []string{alphaURL})
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, first.Status)

	second, err := h.ctrl.Run(context.Background(), []string{alphaURL})
	require.NoError(t, err)
	assert.Equal(t, StatusAllSkipped, second.Status)

	entries, err := os.ReadDir(h.outDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRunAuthenticatesWithToken(t *testing.T) {
	token := "eyJ...REAUTH_SCOPE..."
	h := newHarness(t, nil, Options{Token: token})

	result, err := h.ctrl.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, StatusNoProjects, result.Status)

	stored, ok := h.page.LocalStorage(behance.AuthLocalStorageKey)
	require.True(t, ok)
	assert.Equal(t, token, stored)
	assert.Equal(t, 1, h.page.Reloads())
	assert.Equal(t, []string{behance.HomePage}, h.page.Navigations())
}

func TestRunIgnoresTokenWithoutMarker(t *testing.T) {
	h := newHarness(t, nil, Options{Token: "plain-token"})

	_, err := h.ctrl.Run(context.Background(), nil)
	require.NoError(t, err)

	_, ok := h.page.LocalStorage(behance.AuthLocalStorageKey)
	assert.False(t, ok)
	assert.Equal(t, 0, h.page.Reloads())
}

func TestRunLaunchFailure(t *testing.T) {
	h := newHarness(t, nil, Options{})
	h.launcher.Err = errors.New("chrome not found")

	result, err := h.ctrl.Run(context.Background(), []string{alphaURL})
	require.Error(t, err)
	assert.Equal(t, StatusLaunchFailed, result.Status)
	assert.Equal(t, StateIdle, h.ctrl.State())
	assert.Len(t, h.reporter.EventsOf(ui.EventReady), 1)
}

func TestRunAbort(t *testing.T) {
	srv := imageServer(t)
	docs := map[string]string{
		alphaURL: projectPageHTML("Alpha", srv.URL+"/a1.jpg"),
		betaURL:  projectPageHTML("Beta", srv.URL+"/b1.jpg"),
	}
	h := newHarness(t, docs, Options{SkipByHistory: true})
	h.page.OnNavigate = func(url string) {
		if url == alphaURL {
			h.ctrl.Abort()
		}
	}

	result, err := h.ctrl.Run(context.Background(), []string{alphaURL, betaURL})
	require.NoError(t, err)

	assert.Equal(t, StatusAborted, result.Status)
	assert.True(t, result.Aborted)
	assert.Equal(t, 0, result.Counters.Completed)
	assert.True(t, h.launcher.Browser.Closed())
	assert.NotContains(t, h.page.Navigations(), betaURL)
	assert.Empty(t, history.Load(h.histPath))
}

func TestRunContextCancelIsAbort(t *testing.T) {
	docs := map[string]string{alphaURL: projectPageHTML("Alpha")}
	h := newHarness(t, docs, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	h.page.OnNavigate = func(url string) {
		if url == alphaURL {
			cancel()
		}
	}

	result, err := h.ctrl.Run(ctx, []string{alphaURL})
	require.NoError(t, err)
	assert.Equal(t, StatusAborted, result.Status)
}

func TestRunRejectsConcurrentRun(t *testing.T) {
	h := newHarness(t, nil, Options{})
	entered := make(chan struct{})
	release := make(chan struct{})
	h.page.OnNavigate = func(url string) {
		if url == behance.HomePage {
			close(entered)
			<-release
		}
	}

	done := make(chan error, 1)
	go func() {
		_, err := h.ctrl.Run(context.Background(), nil)
		done <- err
	}()

	<-entered
	assert.True(t, h.ctrl.State().IsActive())
	_, err := h.ctrl.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StateIdle, h.ctrl.State())
}

func TestAbortWhenIdleIsNoop(t *testing.T) {
	h := newHarness(t, nil, Options{})
	h.ctrl.Abort()

	result, err := h.ctrl.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, result.Aborted)
}
