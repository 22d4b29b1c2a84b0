package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"bedownloader/pkg/auth"
	"bedownloader/pkg/behance"
	"bedownloader/pkg/browser"
	"bedownloader/pkg/config"
	"bedownloader/pkg/history"
	"bedownloader/pkg/logger"
	"bedownloader/pkg/retry"
	"bedownloader/pkg/scraper"
	"bedownloader/pkg/storage"
	"bedownloader/pkg/ui"
	"bedownloader/pkg/ui/tui"
)

var (
	// Download flags, shared by the root and run commands
	outputDir          string
	token              string
	profile            string
	inputFile          string
	historyFile        string
	chromePath         string
	skipHistory        bool
	modulesAsGalleries bool
	showBrowser        bool
	turbo              bool
	useTUI             bool
)

// runCmd downloads every project reachable from the given URLs
var runCmd = &cobra.Command{
	Use:   "run <url>...",
	Short: "Download projects from Behance URLs",
	Long: `Download every project reachable from the given URLs.

Project URLs are downloaded directly. Profile, appreciated and moodboard URLs
are scrolled to the end first to collect their projects. Projects already in
the history file are skipped unless --skip-history=false is given.

A session token makes projects visible that require sign-in. It is read from
--token, BEDOWNLOADER_TOKEN, the config file or the stored session (see
'bedownloader auth login'), in that order.`,
	Example: `  # Download a single project
  bedownloader run https://www.behance.net/gallery/123456/Some-Project

  # Download a whole moodboard into ./boards with the interactive UI
  bedownloader run https://www.behance.net/moodboard/987/Refs --output ./boards --tui

  # Read URLs from a file and ignore the history
  bedownloader run --input urls.txt --skip-history=false`,
	Args: cobra.ArbitraryArgs,
	Run:  runDownload,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addDownloadFlags(runCmd)
}

func addDownloadFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "download folder (default ./downloads)")
	cmd.Flags().StringVar(&token, "token", "", "Behance session token from localStorage")
	cmd.Flags().StringVar(&profile, "profile", auth.DefaultProfile, "stored session to use when no token is given")
	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "file with one URL per line")
	cmd.Flags().StringVar(&historyFile, "history-file", "", "download history file (default settings/history.txt)")
	cmd.Flags().StringVar(&chromePath, "chrome-path", "", "Chrome executable to use")
	cmd.Flags().BoolVar(&skipHistory, "skip-history", true, "skip projects already in the download history")
	cmd.Flags().BoolVar(&modulesAsGalleries, "modules-as-galleries", false, "download moodboard and likes items as full projects")
	cmd.Flags().BoolVar(&showBrowser, "show-browser", false, "show the Chrome window")
	cmd.Flags().BoolVar(&turbo, "turbo", false, "do not wait for project content to render")
	cmd.Flags().BoolVar(&useTUI, "tui", false, "use the interactive terminal UI")
}

func runDownload(cmd *cobra.Command, args []string) {
	seeds, err := collectSeeds(args, inputFile)
	if err != nil {
		ui.PrintError(os.Stderr, "Failed to read input file", err.Error())
		os.Exit(1)
	}
	if len(seeds) == 0 {
		ui.PrintError(os.Stderr, "No URLs given", "Pass URLs as arguments or with --input")
		os.Exit(1)
	}

	cfg := loadConfig(cmd)
	if cfg.Behance.LocalStorageToken == "" {
		cfg.Behance.LocalStorageToken = storedToken(profile)
	}
	if cfg.Behance.LocalStorageToken != "" && !auth.HasAuthScope(cfg.Behance.LocalStorageToken) {
		logger.Warn("session token has no " + behance.AuthTokenMarker + " and will be ignored")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if useTUI {
		runWithTUI(ctx, cfg, seeds)
		return
	}

	ui.PrintInfo(os.Stdout, "Output", cfg.Download.Folder)
	ui.PrintInfo(os.Stdout, "URLs", fmt.Sprintf("%d", len(seeds)))

	var notifier *ui.Notifier
	if cfg.Notifications.Enabled {
		notifier = ui.NewNotifier(cfg.Notifications.NotificationType)
	}
	reporter := ui.NewConsoleReporter(os.Stdout, notifier)

	ctrl, err := newController(cfg, reporter, logger.GetLogger())
	if err != nil {
		ui.PrintError(os.Stderr, "Failed to initialize", err.Error())
		os.Exit(1)
	}

	result, err := ctrl.Run(ctx, seeds)
	if err != nil {
		ui.PrintError(os.Stderr, "Download stopped", err.Error())
		os.Exit(1)
	}
	if result.Status == scraper.StatusSomeFailed {
		os.Exit(2)
	}
}

// runWithTUI runs the controller in the background while the terminal UI
// owns the screen. Log lines are routed into the UI's log pane.
func runWithTUI(ctx context.Context, cfg *config.Config, seeds []string) {
	var ctrl *scraper.Controller
	t := tui.NewTUI(func() {
		if ctrl != nil {
			ctrl.Abort()
		}
	})

	zlog := zerolog.New(zerolog.ConsoleWriter{
		Out:        t.LogWriter(),
		NoColor:    true,
		TimeFormat: "15:04:05",
	}).With().Timestamp().Logger()
	log := logger.NewFromZerolog(zlog)
	logger.SetLogger(log)

	ctrl, err := newController(cfg, t, log)
	if err != nil {
		ui.PrintError(os.Stderr, "Failed to initialize", err.Error())
		os.Exit(1)
	}

	type outcome struct {
		result *scraper.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := ctrl.Run(ctx, seeds)
		done <- outcome{result, err}
	}()

	if err := t.Run(); err != nil {
		ctrl.Abort()
		ui.PrintError(os.Stderr, "Terminal UI failed", err.Error())
	}

	res := <-done
	switch {
	case res.err != nil:
		ui.PrintError(os.Stderr, "Download stopped", res.err.Error())
		os.Exit(1)
	case res.result == nil:
		return
	case res.result.Status == scraper.StatusSomeFailed:
		ui.PrintWarning(os.Stdout, res.result.Status)
		os.Exit(2)
	default:
		ui.PrintSuccess(os.Stdout, fmt.Sprintf("%s (%s)", res.result.Status, res.result.Duration.Round(time.Second)))
	}
}

// newController wires the storage, history, client and browser launcher
// described by cfg
func newController(cfg *config.Config, reporter ui.Reporter, log logger.Logger) (*scraper.Controller, error) {
	client := behance.NewClient(cfg.Download.DownloadTimeout, cfg.Download.RetryAttempts, log)
	client.SetHeader("User-Agent", cfg.Behance.UserAgent)
	client.SetHeader("Referer", behance.HomePage)
	client.SetBackoff(retryBackoff(cfg.Download.RetryDelay))

	saver, err := storage.NewManager(cfg.Download.Folder, client,
		storage.WithLogger(log),
		storage.WithValidation(cfg.Download.ValidateImages),
	)
	if err != nil {
		return nil, err
	}

	log.InfoWithFields("download folder ready", map[string]interface{}{"path": saver.GetOutputDir()})

	workDir, err := os.Getwd()
	if err != nil {
		workDir = "."
	}

	deps := scraper.Dependencies{
		Launcher: browser.NewChromeLauncher(log),
		Saver:    saver,
		History:  history.NewStore(cfg.History.File, log),
		Reporter: reporter,
		Logger:   log,
	}
	return scraper.NewController(deps, scraper.OptionsFromConfig(cfg, workDir)), nil
}

// retryBackoff doubles delay on every image retry, capped at 30 times
// delay. A zero delay retries immediately.
func retryBackoff(delay time.Duration) retry.BackoffStrategy {
	if delay <= 0 {
		return &retry.ConstantBackoff{}
	}
	return &retry.ExponentialBackoff{
		BaseDelay:    delay,
		MaxDelay:     30 * delay,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}
}

// storedToken returns the token saved by 'auth login', or "" when none
func storedToken(profile string) string {
	manager, err := auth.NewManager("")
	if err != nil {
		logger.WithError(err).Debug("credential store unavailable")
		return ""
	}
	return manager.Token(profile)
}

// collectSeeds merges positional URLs with the lines of an input file.
// Blank lines and lines starting with # are ignored.
func collectSeeds(args []string, path string) ([]string, error) {
	var seeds []string
	for _, a := range args {
		if a = strings.TrimSpace(a); a != "" {
			seeds = append(seeds, a)
		}
	}
	if path == "" {
		return seeds, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		seeds = append(seeds, line)
	}
	return seeds, scanner.Err()
}
