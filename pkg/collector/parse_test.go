package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bedownloader/pkg/models"
)

const profileListing = `<html><body>
<div class="ContentGrid-root-wzR">
  <article>
    <div class="ContentGrid-gridItem-XZq">
      <a href="/gallery/111/First-Project?tracking=1">First</a>
      <img src="https://mir-s3-cdn-cf.behance.net/projects/404/111.jpg">
    </div>
  </article>
  <section>
    <div class="ContentGrid-gridItem-XZq">
      <a href="https://www.behance.net/gallery/222/Module">Module</a>
      <img src="https://mir-s3-cdn-cf.behance.net/project_modules/disp/222.jpg">
    </div>
  </section>
  <article>
    <div class="ContentGrid-gridItem-XZq">
      <a href="/profile/someone">Not a project</a>
      <img src="https://a.behance.net/avatar.jpg">
    </div>
  </article>
  <article>
    <div class="ContentGrid-gridItem-XZq">
      <a href="/gallery/333/No-Cover">No cover</a>
    </div>
  </article>
</div>
<div class="ContentGrid-root-wzR">
  <article>
    <div class="ContentGrid-gridItem-XZq">
      <a href="/gallery/444/Second-Grid">Second</a>
      <img src="https://mir-s3-cdn-cf.behance.net/projects/404/444.jpg">
    </div>
  </article>
</div>
</body></html>`

func TestParseListing(t *testing.T) {
	links, err := ParseListing(profileListing, "https://www.behance.net/someone/projects", DefaultOptions())
	require.NoError(t, err)

	require.Len(t, links, 3)
	assert.Equal(t, models.ProjectLink{
		Variant:    models.VariantGallery,
		URL:        "https://www.behance.net/gallery/111/First-Project",
		CoverImage: "https://mir-s3-cdn-cf.behance.net/projects/404/111.jpg",
	}, links[0])
	assert.Equal(t, models.VariantSingleImage, links[1].Variant)
	assert.Equal(t, "https://www.behance.net/gallery/222/Module", links[1].URL)
	assert.Equal(t, "https://www.behance.net/gallery/444/Second-Grid", links[2].URL)
}

func TestParseListingMoodboardUsesFirstGrid(t *testing.T) {
	links, err := ParseListing(profileListing, "https://www.behance.net/moodboard/999/Refs", DefaultOptions())
	require.NoError(t, err)

	require.Len(t, links, 2)
	for _, link := range links {
		assert.NotContains(t, link.URL, "/444/")
	}
}

func TestParseListingForceGallery(t *testing.T) {
	opts := DefaultOptions()
	opts.ForceGallery = true

	links, err := ParseListing(profileListing, "https://www.behance.net/someone/projects", opts)
	require.NoError(t, err)
	for _, link := range links {
		assert.Equal(t, models.VariantGallery, link.Variant)
	}
}

func TestParseListingEmptyPage(t *testing.T) {
	links, err := ParseListing("<html><body><p>nothing</p></body></html>", "https://www.behance.net/x", DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, links)
}

const projectPage = `<html>
<head>
  <meta property="og:title" content="Poster Series">
  <meta property="og:owners" content="Jane Doe, John Roe">
</head>
<body>
  <img src="https://mir-s3-cdn-cf.behance.net/project_modules/1400/a.jpg">
  <img src="https://mir-s3-cdn-cf.behance.net/project_modules/max_1200/b.png">
  <img alt="no source">
</body>
</html>`

func TestParseProjectGallery(t *testing.T) {
	link := models.ProjectLink{Variant: models.VariantGallery, URL: "https://www.behance.net/gallery/123/Poster-Series"}

	project, err := ParseProject(projectPage, link)
	require.NoError(t, err)

	assert.Equal(t, "123", project.ID)
	assert.Equal(t, "Poster Series", project.Title)
	assert.Equal(t, "Jane Doe, John Roe", project.Owners)
	assert.Equal(t, link.URL, project.URL)
	assert.Equal(t, []string{
		"https://mir-s3-cdn-cf.behance.net/project_modules/1400/a.jpg",
		"https://mir-s3-cdn-cf.behance.net/project_modules/max_1200/b.png",
	}, project.Images)
}

func TestParseProjectSingleImageUsesCover(t *testing.T) {
	link := models.ProjectLink{
		Variant:    models.VariantSingleImage,
		URL:        "https://www.behance.net/gallery/123/Poster-Series",
		CoverImage: "https://mir-s3-cdn-cf.behance.net/project_modules/disp/cover.jpg",
	}

	project, err := ParseProject(projectPage, link)
	require.NoError(t, err)
	assert.Equal(t, []string{link.CoverImage}, project.Images)
}

func TestParseProjectAccessGated(t *testing.T) {
	html := `<html><head></head><body class="page is-locked"></body></html>`
	link := models.ProjectLink{Variant: models.VariantGallery, URL: "https://www.behance.net/gallery/123/Adult"}

	_, err := ParseProject(html, link)
	assert.ErrorIs(t, err, ErrAccessGated)
}

func TestParseProjectMalformedURL(t *testing.T) {
	_, err := ParseProject(projectPage, models.ProjectLink{URL: "https://www.behance.net/"})
	assert.ErrorIs(t, err, ErrNoProject)
}

func TestParseProjectMissingMeta(t *testing.T) {
	link := models.ProjectLink{Variant: models.VariantGallery, URL: "https://www.behance.net/gallery/7/x"}

	project, err := ParseProject("<html><body></body></html>", link)
	require.NoError(t, err)
	assert.Empty(t, project.Title)
	assert.Empty(t, project.Owners)
	assert.Empty(t, project.Images)
}
