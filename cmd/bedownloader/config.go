package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"bedownloader/pkg/auth"
	"bedownloader/pkg/config"
	"bedownloader/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage bedownloader configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (BEDOWNLOADER_*)
  - .env file
  - Configuration file, INI or YAML
  - Default values (lowest priority)`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a settings file with the default values",
	Long: `Create an INI settings file with the default values.

The file is written to settings/config.ini unless a different path is given
with --config. A path ending in .yaml writes YAML instead.`,
	Run: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show the configuration after merging every source.

The session token is masked.`,
	Run: runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Run:   runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	path := configFile
	if path == "" {
		path = filepath.Join(config.DefaultSettingsDir, "config.ini")
	}

	if _, err := os.Stat(path); err == nil {
		ui.PrintError(os.Stderr, "Configuration file already exists", path)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", path)
		os.Exit(1)
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		ui.PrintError(os.Stderr, "Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess(os.Stdout, "Configuration file created: "+path)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit the file, or store a session with 'bedownloader auth login'")
	fmt.Println("2. Run 'bedownloader config validate' to check it")
	fmt.Println("3. Start downloading with 'bedownloader run <url>'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)

	display := *cfg
	if display.Behance.LocalStorageToken != "" {
		display.Behance.LocalStorageToken = auth.MaskToken(display.Behance.LocalStorageToken)
	}

	data, err := yaml.Marshal(&display)
	if err != nil {
		ui.PrintError(os.Stderr, "Failed to format configuration", err.Error())
		os.Exit(1)
	}

	fmt.Println(ui.Magenta("Current Configuration"))
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (BEDOWNLOADER_*)")
	fmt.Println("3. .env file")
	if configFile != "" {
		fmt.Printf("4. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("4. Configuration file: (default locations)")
	}
	fmt.Println("5. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError(os.Stderr, "Configuration validation failed", err.Error())
		os.Exit(1)
	}

	warnings := append([]string{}, cfg.Warnings...)
	var problems []string

	if token := cfg.Behance.LocalStorageToken; token != "" && !auth.HasAuthScope(token) {
		warnings = append(warnings, "session token has no REAUTH_SCOPE and will be ignored")
	}
	if err := os.MkdirAll(cfg.Download.Folder, 0755); err != nil {
		problems = append(problems, fmt.Sprintf("Cannot create download folder: %v", err))
	}
	if err := os.MkdirAll(filepath.Dir(cfg.History.File), 0755); err != nil {
		problems = append(problems, fmt.Sprintf("Cannot create history directory: %v", err))
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			problems = append(problems, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}

	if len(problems) > 0 {
		ui.PrintError(os.Stderr, "Configuration has errors:")
		for _, p := range problems {
			fmt.Printf("  - %s\n", p)
		}
		os.Exit(1)
	}

	if len(warnings) > 0 {
		ui.PrintWarning(os.Stdout, "Configuration warnings:")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
		fmt.Println()
	}

	ui.PrintSuccess(os.Stdout, "Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Download folder: %s\n", cfg.Download.Folder)
	fmt.Printf("  History file: %s\n", cfg.History.File)
	fmt.Printf("  Skip by history: %t\n", cfg.Download.SkipProjectsByHistory)
	fmt.Printf("  Turbo mode: %t\n", cfg.Download.TurboMode)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}
