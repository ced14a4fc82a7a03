package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = &Config{Output: outputPlain}

	rootCmd := &cobra.Command{
		Use:   "cpmcli",
		Short: "CLI tool for the CPM account proxy API",
		Long: `cpmcli is a CLI tool for interacting with the CPM account proxy API.

It supports signing in with a tool account or access key, inspecting a game
account and its cars, changing the account's local ID, cloning an account
onto another one, and (for admins) managing access keys and reviewing the
operation log.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Resolve(); err != nil {
				return err
			}
			client = NewClient(cfg.Server, cfg.Token)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.Server, "server", cfg.Server, "Server URL (env: CPMCLI_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "Session token (env: CPMCLI_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "Token file path (env: CPMCLI_TOKEN_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: plain, json")

	// Add subcommands
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newAccountCmd())
	rootCmd.AddCommand(newKeyCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
