package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bedownloader/pkg/behance"
	"bedownloader/pkg/logger"
	"bedownloader/pkg/metadata"
	"bedownloader/pkg/ui"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.jpg|url>...",
	Short: "Show where a downloaded image came from",
	Long: `Print the project record embedded in the EXIF data of downloaded JPEGs.

Arguments starting with http:// or https:// are fetched first, so images
shared online can be traced as well.`,
	Args: cobra.MinimumNArgs(1),
	Run:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) {
	var client *behance.Client
	failed := false

	for _, target := range args {
		var (
			p   *metadata.Provenance
			err error
		)
		if isRemote(target) {
			if client == nil {
				client = behance.NewClient(30*time.Second, 2, logger.GetLogger())
			}
			p, err = inspectRemote(cmd.Context(), client, target)
		} else {
			p, err = metadata.ReadFromJPEG(target)
		}
		if err != nil {
			ui.PrintError(os.Stderr, target, err.Error())
			failed = true
			continue
		}

		fmt.Println(ui.Magenta(target))
		ui.PrintInfo(os.Stdout, "  Site", p.Site)
		ui.PrintInfo(os.Stdout, "  Project", p.ID)
		ui.PrintInfo(os.Stdout, "  Title", p.Title)
		ui.PrintInfo(os.Stdout, "  Owners", p.Owners)
		ui.PrintInfo(os.Stdout, "  URL", p.URL)
		ui.PrintInfo(os.Stdout, "  Image", p.Image)
	}
	if failed {
		os.Exit(1)
	}
}

func isRemote(target string) bool {
	lower := strings.ToLower(target)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func inspectRemote(ctx context.Context, client *behance.Client, url string) (*metadata.Provenance, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	data, err := client.FetchBytes(ctx, url)
	if err != nil {
		return nil, err
	}
	return metadata.ReadFromJPEGBytes(data)
}
