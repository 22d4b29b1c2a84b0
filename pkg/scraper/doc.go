// Package scraper runs Behance download tasks.
//
// A Controller owns one browser for the length of a run and moves through
// a fixed sequence of states:
//
//	idle -> launching -> (authenticating) -> building_list -> downloading -> finalizing -> idle
//
// BuildProjectList expands seed URLs (profiles, likes, moodboards or direct
// project links) into a deduplicated project list and drops projects that
// are already in the download history. The downloader then visits each
// project and saves its images.
//
// Usage:
//
//	ctrl := scraper.NewController(scraper.Dependencies{
//	    Launcher: browser.NewChromeLauncher(log),
//	    Saver:    storageManager,
//	    History:  history.NewStore(cfg.History.File, log),
//	    Reporter: ui.NewConsoleReporter(os.Stdout, nil),
//	    Logger:   log,
//	}, scraper.OptionsFromConfig(cfg, workDir))
//
//	result, err := ctrl.Run(ctx, []string{"https://www.behance.net/someone"})
//
// Abort, or cancelling the context, stops the run at the next project or
// image boundary. The final status is derived from the counters with
// FinalStatus.
package scraper
