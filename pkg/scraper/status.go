package scraper

import "bedownloader/pkg/models"

// Final status lines shown when a run ends
const (
	StatusAborted      = "process is aborted by user"
	StatusNoProjects   = "no projects to download"
	StatusAllSkipped   = "all projects skipped by download history"
	StatusSuccess      = "all projects were downloaded successfully!"
	StatusSomeFailed   = "some projects were failed to download"
	StatusUnknown      = "unknown error..."
	StatusLaunchFailed = "browser failed to launch"
)

// FinalStatus classifies a finished run. The first matching rule wins:
// aborted, nothing found, everything skipped, everything done, any failure.
func FinalStatus(c models.Counters, aborted bool) string {
	switch {
	case aborted:
		return StatusAborted
	case c.Total == 0:
		return StatusNoProjects
	case c.Total == c.Skipped:
		return StatusAllSkipped
	case c.Total == c.Completed+c.Skipped:
		return StatusSuccess
	case c.Failed > 0:
		return StatusSomeFailed
	default:
		return StatusUnknown
	}
}
