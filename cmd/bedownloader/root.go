package main

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"bedownloader/pkg/config"
	"bedownloader/pkg/logger"
	"bedownloader/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	logFile    string
	noLogo     bool
)

// rootCmd runs a download when given URLs and shows help otherwise
var rootCmd = &cobra.Command{
	Use:   "bedownloader [url...]",
	Short: "Download Behance projects, moodboards and likes",
	Long: `bedownloader downloads the full resolution images of Behance projects.

Accepted URLs:
  - project pages     https://www.behance.net/gallery/<id>/<name>
  - profiles          https://www.behance.net/<user>
  - appreciated lists https://www.behance.net/<user>/appreciated
  - moodboards        https://www.behance.net/moodboard/<id>/<name>

Listing pages are scrolled to the end in a headless Chrome. Every project is
saved into its own folder and recorded in a history file so later runs only
fetch what is new.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	Args:    cobra.ArbitraryArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if !noLogo && cmd.Name() != "version" && cmd.Name() != "help" && !useTUI {
			ui.PrintLogo(os.Stdout)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 && inputFile == "" {
			_ = cmd.Help()
			return
		}
		runDownload(cmd, args)
	},
}

// Execute adds all child commands to the root command and runs it
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file, .ini or .yaml (default is settings/config.ini)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "append JSON logs to this file")
	rootCmd.PersistentFlags().BoolVar(&noLogo, "no-logo", false, "do not print the banner")

	addDownloadFlags(rootCmd)

	rootCmd.SetVersionTemplate(`bedownloader {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig loads configuration with the flags the user set on cmd,
// prints its warnings and initialises the global logger
func loadConfig(cmd *cobra.Command) *config.Config {
	flags := collectFlags(cmd)

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError(os.Stderr, "Failed to load configuration", err.Error())
		os.Exit(1)
	}
	if logFile != "" {
		cfg.Logging.File = logFile
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError(os.Stderr, "Failed to initialize logger", err.Error())
		os.Exit(1)
	}
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}
	return cfg
}

// collectFlags returns only the flags that were changed on the command line
func collectFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	cmd.Flags().Visit(func(f *pflag.Flag) {
		switch f.Value.Type() {
		case "bool":
			v, err := strconv.ParseBool(f.Value.String())
			if err == nil {
				flags[f.Name] = v
			}
		case "string":
			flags[f.Name] = f.Value.String()
		}
	})
	return flags
}
