package storage

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"bedownloader/pkg/metadata"
	"bedownloader/pkg/models"
)

// FilePrefix starts every downloaded file name
const FilePrefix = "behance"

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]+`)
	dashRun         = regexp.MustCompile(`-{2,}`)
)

// LatinizedKebab transliterates s to ASCII and turns it into lower-case
// kebab case: "Café Über!" becomes "cafe-uber".
func LatinizedKebab(s string) string {
	out := nonAlphanumeric.ReplaceAllString(metadata.Transliterate(s), "-")
	return strings.ToLower(strings.Trim(out, "-"))
}

// FirstOwner returns the first name of a comma separated owners list
func FirstOwner(owners string) string {
	first, _, _ := strings.Cut(owners, ",")
	return strings.TrimSpace(first)
}

// ImageExtension returns the extension of the file name in imageURL
// without the dot. URLs without one default to jpg.
func ImageExtension(imageURL string) string {
	u := imageURL
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	ext := strings.TrimPrefix(path.Ext(path.Base(u)), ".")
	if ext == "" {
		return "jpg"
	}
	return ext
}

// BuildPath returns the destination of the index-th image (zero based) of a
// project: <destRoot>/behance-<first-owner>-<title>-<NN>.<ext>
func BuildPath(project *models.ProjectData, imageURL string, index int, destRoot string) string {
	name := fmt.Sprintf("%s-%s-%s-%02d",
		FilePrefix,
		LatinizedKebab(FirstOwner(project.Owners)),
		LatinizedKebab(project.Title),
		index+1,
	)
	name = dashRun.ReplaceAllString(name, "-")
	return filepath.Join(destRoot, name+"."+ImageExtension(imageURL))
}
