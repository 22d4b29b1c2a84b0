package metadata

import (
	"encoding/json"
	"fmt"
	"strings"

	"bedownloader/pkg/behance"
	"bedownloader/pkg/models"

	"github.com/gosimple/unidecode"
)

// Provenance is the record embedded in every downloaded JPEG so a file can
// be traced back to its project after it has been renamed or moved.
type Provenance struct {
	Site   string `json:"site"`
	ID     string `json:"id"`
	Title  string `json:"title"`
	Owners string `json:"owners"`
	URL    string `json:"url"`
	Image  string `json:"image"`
}

// NewProvenance builds the record for one image of a project. Title and
// owners are transliterated to Latin characters.
func NewProvenance(project *models.ProjectData, imageURL string) *Provenance {
	return &Provenance{
		Site:   behance.SiteName,
		ID:     project.ID,
		Title:  Transliterate(project.Title),
		Owners: Transliterate(project.Owners),
		URL:    project.URL,
		Image:  imageURL,
	}
}

// Description encodes the record for the EXIF ImageDescription tag
func (p *Provenance) Description() (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to marshal provenance: %w", err)
	}
	return string(data), nil
}

// ParseDescription decodes an ImageDescription value written by Description
func ParseDescription(description string) (*Provenance, error) {
	var p Provenance
	if err := json.Unmarshal([]byte(strings.TrimRight(description, "\x00")), &p); err != nil {
		return nil, fmt.Errorf("description is not a provenance record: %w", err)
	}
	return &p, nil
}

// Transliterate converts s to its closest ASCII rendering
func Transliterate(s string) string {
	return unidecode.Unidecode(s)
}
