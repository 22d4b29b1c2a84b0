package storage

import (
	"path/filepath"
	"testing"

	"bedownloader/pkg/models"

	"github.com/stretchr/testify/assert"
)

func TestLatinizedKebab(t *testing.T) {
	tests := map[string]string{
		"Foo Bar":          "foo-bar",
		"Café Über!":       "cafe-uber",
		"  --Hello__World": "hello-world",
		"Привет мир":       "privet-mir",
		"":                 "",
	}
	for in, want := range tests {
		assert.Equal(t, want, LatinizedKebab(in), in)
	}
}

func TestFirstOwner(t *testing.T) {
	assert.Equal(t, "Jane Doe", FirstOwner("Jane Doe, John Roe"))
	assert.Equal(t, "Solo", FirstOwner("Solo"))
	assert.Equal(t, "", FirstOwner(""))
}

func TestImageExtension(t *testing.T) {
	assert.Equal(t, "jpg", ImageExtension("https://cdn/project_modules/source/abc.jpg"))
	assert.Equal(t, "png", ImageExtension("https://cdn/a.b/c.png?x=1.gif"))
	assert.Equal(t, "jpg", ImageExtension("https://cdn/noext"))
}

func TestBuildPath(t *testing.T) {
	project := &models.ProjectData{Owners: "Jane Doe, John Roe", Title: "Foo Bar"}

	got := BuildPath(project, "https://cdn/x/abc.jpg", 0, "/out")
	assert.Equal(t, filepath.Join("/out", "behance-jane-doe-foo-bar-01.jpg"), got)

	got = BuildPath(project, "https://cdn/x/abc.png", 11, "/out")
	assert.Equal(t, filepath.Join("/out", "behance-jane-doe-foo-bar-12.png"), got)
}

func TestBuildPathCollapsesEmptyParts(t *testing.T) {
	project := &models.ProjectData{Owners: "", Title: "!!!Title!!!"}
	got := BuildPath(project, "https://cdn/x/abc.jpg", 2, "out")
	assert.Equal(t, filepath.Join("out", "behance-title-03.jpg"), got)
}
