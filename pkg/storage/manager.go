package storage

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	"bedownloader/pkg/behance"
	errs "bedownloader/pkg/errors"
	"bedownloader/pkg/logger"
	"bedownloader/pkg/metadata"
	"bedownloader/pkg/models"

	_ "golang.org/x/image/webp"
)

// TempFileBase is the name of the in-progress download in the target folder
const TempFileBase = "temp-image"

// ImageFetcher opens an image body for reading
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// Manager writes downloaded images into the output directory
type Manager struct {
	outputDir string
	fetcher   ImageFetcher
	validate  bool
	logger    logger.Logger
}

// Option configures a Manager
type Option func(*Manager)

// WithValidation enables or disables decoding each payload before it is kept
func WithValidation(enabled bool) Option {
	return func(m *Manager) { m.validate = enabled }
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates the output directory and returns a Manager for it
func NewManager(outputDir string, fetcher ImageFetcher, opts ...Option) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	m := &Manager{
		outputDir: outputDir,
		fetcher:   fetcher,
		validate:  true,
		logger:    logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}

// PathFor returns the destination of the index-th image of project
func (m *Manager) PathFor(project *models.ProjectData, imageURL string, index int) string {
	return BuildPath(project, imageURL, index, m.outputDir)
}

// Download fetches imageURL, embeds provenance into JPEGs and moves the file
// to finalPath following the collision rules of CommitFile. It returns the
// path actually written.
func (m *Manager) Download(ctx context.Context, project *models.ProjectData, imageURL, finalPath string) (string, error) {
	dir := filepath.Dir(finalPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errs.Wrap(errs.ErrorTypeFilesystem, err, "failed to create folder")
	}
	tempPath := filepath.Join(dir, TempFileBase+filepath.Ext(finalPath))

	if err := m.fetchToFile(ctx, imageURL, tempPath); err != nil {
		return "", err
	}

	if m.validate {
		if err := validateImage(tempPath); err != nil {
			os.Remove(tempPath)
			return "", err
		}
	}

	if metadata.IsJPEG(finalPath) {
		m.embedProvenance(project, imageURL, tempPath)
	}

	written, err := CommitFile(tempPath, finalPath)
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeFilesystem, err, "failed to save image")
	}
	if written != finalPath {
		m.logger.InfoWithFields("name taken by a different file, saved with new suffix", map[string]interface{}{
			"wanted": filepath.Base(finalPath),
			"saved":  filepath.Base(written),
		})
	}
	return written, nil
}

func (m *Manager) fetchToFile(ctx context.Context, imageURL, tempPath string) error {
	body, err := m.fetcher.Fetch(ctx, imageURL)
	if err != nil {
		return err
	}
	defer body.Close()

	out, err := os.Create(tempPath)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeFilesystem, err, "failed to create temporary file")
	}

	_, copyErr := io.Copy(out, body)
	syncErr := out.Sync()
	closeErr := out.Close()

	for _, err := range []error{copyErr, syncErr, closeErr} {
		if err != nil {
			os.Remove(tempPath)
			return errs.Wrap(errs.ErrorTypeNetwork, err, "failed to save image data")
		}
	}
	return nil
}

// embedProvenance is best effort: an image without metadata is still kept
func (m *Manager) embedProvenance(project *models.ProjectData, imageURL, path string) {
	desc, err := metadata.NewProvenance(project, imageURL).Description()
	if err == nil {
		err = metadata.EmbedInJPEG(path, desc, behance.SoftwareTag)
	}
	if err != nil {
		m.logger.WithError(err).WarnWithFields("could not embed metadata", map[string]interface{}{
			"image_url": imageURL,
		})
	}
}

func validateImage(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeFilesystem, err, "failed to reopen image")
	}
	defer f.Close()

	if _, _, err := image.DecodeConfig(f); err != nil {
		return errs.Wrap(errs.ErrorTypeParsing, err, "downloaded file is not an image")
	}
	return nil
}
