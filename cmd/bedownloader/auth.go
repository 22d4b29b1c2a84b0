package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"bedownloader/pkg/auth"
	"bedownloader/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the Behance session token",
	Long: `Manage stored Behance session tokens.

Tokens are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - BEDOWNLOADER_TOKEN environment variable (read only)

Never share your token or config files!`,
}

var loginCmd = &cobra.Command{
	Use:   "login [profile]",
	Short: "Store a session token securely",
	Example: `  # Store the default session
  bedownloader auth login

  # Store a second session
  bedownloader auth login work`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout [profile]",
	Short: "Remove a stored session token",
	Args:  cobra.MaximumNArgs(1),
	Run:   runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List stored sessions with masked tokens",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)
}

func newAuthManager() *auth.Manager {
	manager, err := auth.NewManager("")
	if err != nil {
		ui.PrintError(os.Stderr, "Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}
	return manager
}

func runLogin(cmd *cobra.Command, args []string) {
	manager := newAuthManager()

	name := auth.DefaultProfile
	if len(args) > 0 {
		name = args[0]
	}

	reader := bufio.NewReader(os.Stdin)
	auth.ShowTokenExtractionGuide(os.Stdout)

	if existing, _ := manager.Retrieve(name); existing != nil {
		fmt.Printf("\nSession '%s' already exists. Replace it? (y/N): ", name)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	var value string
	for {
		fmt.Print("\nToken (hidden): ")
		input, err := readPassword(reader)
		if err != nil {
			ui.PrintError(os.Stderr, "Failed to read token", err.Error())
			os.Exit(1)
		}
		value = strings.TrimSpace(input)

		if auth.HasAuthScope(value) {
			break
		}
		fmt.Println("\nThat does not look like a session token: it has no REAUTH_SCOPE.")
		fmt.Print("Try again? (Y/n): ")
		retry, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(retry)) == "n" {
			os.Exit(1)
		}
	}

	if err := manager.Store(&auth.Session{Profile: name, Token: value}); err != nil {
		ui.PrintError(os.Stderr, "Failed to store token", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess(os.Stdout, fmt.Sprintf("Session saved: %s (%s)", name, auth.MaskToken(value)))
	fmt.Println("\nUse it with:")
	if name == auth.DefaultProfile {
		fmt.Println("  bedownloader run <url>")
	} else {
		fmt.Printf("  bedownloader run <url> --profile %s\n", name)
	}
}

func runLogout(cmd *cobra.Command, args []string) {
	manager := newAuthManager()

	name := auth.DefaultProfile
	if len(args) > 0 {
		name = args[0]
	}

	if err := manager.Delete(name); err != nil {
		ui.PrintError(os.Stderr, "Failed to remove session", err.Error())
		os.Exit(1)
	}
	ui.PrintSuccess(os.Stdout, "Session removed: "+name)
}

func runStatus(cmd *cobra.Command, args []string) {
	manager := newAuthManager()

	sessions, err := manager.List()
	if err != nil {
		ui.PrintError(os.Stderr, "Failed to list sessions", err.Error())
		os.Exit(1)
	}

	if len(sessions) == 0 {
		ui.PrintInfo(os.Stdout, "No stored sessions", "Use 'bedownloader auth login' to add one")
		return
	}

	fmt.Println(ui.Magenta("Stored Sessions"))
	fmt.Println()
	for i, s := range sessions {
		sanitized := auth.SanitizeSession(s)
		fmt.Printf("%d. Profile: %s\n", i+1, sanitized.Profile)
		fmt.Printf("   Token: %s\n", sanitized.Token)
		fmt.Printf("   Usable: %t\n", auth.HasAuthScope(s.Token))
		if !s.LastModified.IsZero() {
			fmt.Printf("   Last Modified: %s\n", s.LastModified.Format("2006-01-02 15:04:05"))
		}
		fmt.Println()
	}
}

// readPassword reads a line from stdin without echo when it is a terminal
func readPassword(reader *bufio.Reader) (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return string(password), nil
		}
	}
	return reader.ReadString('\n')
}
