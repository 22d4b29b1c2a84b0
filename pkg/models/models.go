package models

// Variant tells the downloader how to treat a project link
type Variant string

const (
	// VariantGallery is a full multi-image project page
	VariantGallery Variant = "gallery"
	// VariantSingleImage is a single module from a moodboard or likes grid.
	// Only its cover image is downloaded and it is never written to history.
	VariantSingleImage Variant = "image"
)

// ProjectLink is one unit of work produced by the collector
type ProjectLink struct {
	Variant    Variant `json:"variant"`
	URL        string  `json:"url"`
	CoverImage string  `json:"cover_image,omitempty"`
}

// ProjectData is extracted from a rendered project page
type ProjectData struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Owners string   `json:"owners"`
	URL    string   `json:"url"`
	Images []string `json:"images"`
}

// Counters are the progress numbers shown to the user
type Counters struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Processed returns how many projects have reached a final outcome
func (c Counters) Processed() int {
	return c.Completed + c.Skipped + c.Failed
}
