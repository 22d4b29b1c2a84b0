package scraper

import (
	"context"
	"fmt"
	"strings"

	"bedownloader/pkg/behance"
	"bedownloader/pkg/logger"
	"bedownloader/pkg/models"
	"bedownloader/pkg/ui"
)

// BuildProjectList turns seed URLs into the run's project list. Direct
// project links are used as is; every other seed is collected from its
// listing page. A seed that cannot be collected counts as one failed
// project. Duplicates keep their first occurrence. With skipByHistory,
// gallery projects already in history are dropped and counted as skipped.
func BuildProjectList(ctx context.Context, seeds []string, state *models.TaskState, c ListingCollector, skipByHistory bool, reporter ui.Reporter, log logger.Logger) {
	if reporter == nil {
		reporter = ui.NopReporter{}
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	var projects []models.ProjectLink
	seen := make(map[string]bool)
	add := func(link models.ProjectLink) {
		link.URL = behance.MakeValidURL(link.URL)
		if seen[link.URL] {
			return
		}
		seen[link.URL] = true
		projects = append(projects, link)
	}

	for i, seed := range seeds {
		if state.IsAborted() || ctx.Err() != nil {
			break
		}

		seed = strings.TrimSpace(seed)
		if seed == "" {
			continue
		}

		switch {
		case behance.IsGalleryURL(seed):
			add(models.ProjectLink{Variant: models.VariantGallery, URL: seed})

		case !behance.IsSiteURL(seed):
			log.WarnWithFields("not a Behance url", map[string]interface{}{"url": seed})
			state.UpdateCounters(func(c *models.Counters) { c.Failed++ })

		default:
			reporter.StatusUpdate(fmt.Sprintf("[%d/%d] collecting projects from %s", i+1, len(seeds), behance.FormatForDisplay(seed, 60)))
			links, err := c.CollectFromListingPage(ctx, seed)
			if err != nil {
				log.WithError(err).WarnWithFields("listing page failed", map[string]interface{}{"url": seed})
				state.UpdateCounters(func(c *models.Counters) { c.Failed++ })
				break
			}
			for _, link := range links {
				add(link)
			}
		}

		counters := state.UpdateCounters(func(c *models.Counters) { c.Total = len(projects) })
		reporter.CompletedUpdate(counters)
	}

	kept := projects
	if skipByHistory {
		kept = make([]models.ProjectLink, 0, len(projects))
		for _, link := range projects {
			if link.Variant == models.VariantGallery && state.InHistory(link.URL) {
				continue
			}
			kept = append(kept, link)
		}
	}

	state.SetProjects(kept)
	counters := state.UpdateCounters(func(c *models.Counters) {
		c.Total = len(projects)
		c.Skipped = c.Total - len(kept)
	})
	reporter.CompletedUpdate(counters)

	log.InfoWithFields("project list built", map[string]interface{}{
		"seeds":   len(seeds),
		"total":   counters.Total,
		"skipped": counters.Skipped,
		"failed":  counters.Failed,
	})
}
