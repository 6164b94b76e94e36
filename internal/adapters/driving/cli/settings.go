package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/streamtrack/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage application settings",
	Long: `View and configure the status backend and the remote API.

Use subcommands to change individual settings.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runConfigShow,
}

var configBackendCmd = &cobra.Command{
	Use:   "backend [name]",
	Short: "Select the status backend",
	Long: `Select where stream statuses are reported.

Available backends:
  http   - Remote stream status API (requires api.base_url)
  sqlite - Local SQLite ledger (default)
  memory - Dry run, nothing persisted

Without an argument, a numbered menu is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigBackend,
}

var configAPIFlags struct {
	url   string
	token string
}

var configAPICmd = &cobra.Command{
	Use:   "api",
	Short: "Configure the remote stream status API",
	Long: `Set the base URL of the stream status API and the bearer token sent
with each call. If --token is omitted on a terminal, the token is prompted for.`,
	Args: cobra.NoArgs,
	RunE: runConfigAPI,
}

func init() {
	configAPICmd.Flags().StringVar(&configAPIFlags.url, "url", "", "API base URL")
	configAPICmd.Flags().StringVar(&configAPIFlags.token, "token", "", "bearer token")
	_ = configAPICmd.MarkFlagRequired("url")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configBackendCmd)
	configCmd.AddCommand(configAPICmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Backend]")
	cmd.Printf("  Backend: %s\n", settings.Backend.Description())
	cmd.Println()

	cmd.Println("[API]")
	if settings.API.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.API.BaseURL)
	} else {
		cmd.Printf("  Base URL: (not set)\n")
	}
	if settings.API.Token != "" {
		cmd.Printf("  Token: %s\n", maskAPIKey(settings.API.Token))
	} else {
		cmd.Printf("  Token: (not set)\n")
	}
	cmd.Printf("  Rate limit: %g calls/s\n", settings.API.RateLimit)
	cmd.Printf("  Timeout: %s\n", settings.API.Timeout)
	cmd.Println()

	cmd.Println("[Storage]")
	if settings.Storage.DataDir != "" {
		cmd.Printf("  Data dir: %s\n", settings.Storage.DataDir)
	} else {
		cmd.Printf("  Data dir: (default)\n")
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'streamtrack config api' or 'streamtrack config backend' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runConfigBackend(cmd *cobra.Command, args []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	var backend domain.Backend
	if len(args) == 1 {
		backend = domain.Backend(strings.ToLower(args[0]))
	} else {
		backends := domain.AllBackends()
		cmd.Println("Select Backend")
		cmd.Println("--------------")
		for i, b := range backends {
			cmd.Printf("  %d. %s\n", i+1, b.Description())
		}
		cmd.Print("\nEnter choice [2]: ")
		choice := parseChoice(readLine(bufio.NewReader(cmd.InOrStdin())), len(backends), 2)
		backend = backends[choice-1]
	}

	if err := settingsService.SetBackend(backend); err != nil {
		return fmt.Errorf("failed to set backend: %w", err)
	}
	cmd.Printf("Backend set to: %s\n", backend.Description())
	return nil
}

func runConfigAPI(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	token := configAPIFlags.token
	if token == "" && !cmd.Flags().Changed("token") {
		cmd.Print("Token (leave empty for none): ")
		token = readPassword(cmd.InOrStdin())
		cmd.Println()
	}

	if err := settingsService.SetAPI(configAPIFlags.url, token); err != nil {
		return fmt.Errorf("failed to configure API: %w", err)
	}
	cmd.Printf("API configured: %s\n", configAPIFlags.url)
	return nil
}

// Helper functions.

// maskAPIKey masks a secret, keeping four characters at each end.
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is a terminal.
func readPassword(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(bufio.NewReader(in))
}
