package collector

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"bedownloader/pkg/behance"
	"bedownloader/pkg/models"
)

var (
	// ErrAccessGated is returned for project pages that require sign-in
	ErrAccessGated = errors.New("project is access gated")
	// ErrNoProject is returned when a page does not describe a project
	ErrNoProject = errors.New("no project data on page")
)

// ParseListing extracts project links from a rendered listing page. Grids
// are located first and project cards are searched inside them. Moodboard
// pages only use the first grid; later grids are recommendations.
func ParseListing(html, pageURL string, opts Options) ([]models.ProjectLink, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	var grids []*goquery.Selection
	moodboard := behance.IsMoodboardURL(pageURL)
gridLoop:
	for _, sel := range opts.GridSelectors {
		found := doc.Find(sel)
		for i := range found.Nodes {
			grids = append(grids, found.Eq(i))
			if moodboard {
				break gridLoop
			}
		}
	}

	var links []models.ProjectLink
	for _, sel := range opts.ProjectSelectors {
		for _, grid := range grids {
			grid.Find(sel).Each(func(_ int, item *goquery.Selection) {
				if link, ok := linkFromItem(item, opts.ForceGallery); ok {
					links = append(links, link)
				}
			})
		}
	}
	return links, nil
}

func linkFromItem(item *goquery.Selection, forceGallery bool) (models.ProjectLink, bool) {
	parent := item.Parent()
	href, _ := parent.Find("a").First().Attr("href")
	cover, _ := parent.Find("img").First().Attr("src")
	if href == "" || cover == "" || !strings.Contains(href, "/gallery/") {
		return models.ProjectLink{}, false
	}

	variant := models.VariantGallery
	if goquery.NodeName(item) == "div" && goquery.NodeName(parent) != "article" {
		variant = models.VariantSingleImage
	}
	if forceGallery {
		variant = models.VariantGallery
	}

	return models.ProjectLink{
		Variant:    variant,
		URL:        behance.MakeValidURL(href),
		CoverImage: cover,
	}, true
}

// ParseProject reads project metadata and raw image sources from a rendered
// project page. SingleImage links use their cover image instead of the page
// images.
func ParseProject(html string, link models.ProjectLink) (*models.ProjectData, error) {
	id, err := behance.ExtractID(link.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoProject, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoProject, err)
	}
	if doc.Find("body").HasClass(behance.LockedBodyClass) {
		return nil, ErrAccessGated
	}

	project := &models.ProjectData{
		ID:     id,
		Title:  metaProperty(doc, behance.MetaTitle),
		Owners: metaProperty(doc, behance.MetaOwners),
		URL:    link.URL,
	}

	if link.Variant == models.VariantSingleImage {
		if link.CoverImage != "" {
			project.Images = []string{link.CoverImage}
		}
		return project, nil
	}

	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		if src, ok := img.Attr("src"); ok {
			project.Images = append(project.Images, src)
		}
	})
	return project, nil
}

func metaProperty(doc *goquery.Document, property string) string {
	content, _ := doc.Find(fmt.Sprintf(`head meta[property=%q]`, property)).First().Attr("content")
	return strings.TrimSpace(content)
}
