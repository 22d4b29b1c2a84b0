package scraper

import (
	"context"

	"bedownloader/pkg/models"
)

// ListingCollector discovers projects on a listing page
type ListingCollector interface {
	CollectFromListingPage(ctx context.Context, url string) ([]models.ProjectLink, error)
}
