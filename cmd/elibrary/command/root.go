package command

// root.go defines the root command of the elibrary binary and the setup
// shared by every subcommand.

import (
	"fmt"
	"log/slog"
	"os"

	"elibrary/cmd/elibrary/command/client"
	"elibrary/internal/config"
	"elibrary/internal/logger"

	"github.com/spf13/cobra"
)

var (
	apiURL string // Global flag for API server URL, used by the client commands
	token  string // Identity Provider bearer token
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "elibrary",
	Short: "elibrary - library catalog backend",
	Long: `elibrary serves the library catalog API: books with borrow and return,
and user registration, login and username checks.

Configuration comes from the environment (and an optional .env file).
Use "elibrary [command] --help" to see the flags of each command.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, checkCmd, booksCmd, usersCmd)

	// Global persistent flags = available to all subcommands
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Identity Provider bearer token")
}

func newAPIClient() *client.HTTPClient {
	c := client.NewHTTPClient(apiURL)
	c.SetToken(token)
	return c
}

// bootstrap loads and validates the configuration and installs the default logger.
func bootstrap() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, logger.SetupDefault(os.Stdout, cfg.LogFormat, cfg.LogLevel), nil
}
