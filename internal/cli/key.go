package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Access key management commands (admin)",
	}

	cmd.AddCommand(newKeyCreateCmd())
	cmd.AddCommand(newKeyListCmd())
	cmd.AddCommand(newKeyDeleteCmd())
	cmd.AddCommand(newKeyOperationsCmd())

	return cmd
}

func newKeyCreateCmd() *cobra.Command {
	var tier string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Issue a new one-time access key",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"tier": tier}
			var result AccessKey

			if err := client.Post("/api/v1/keys", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&tier, "tier", "hour", "Key tier: hour, full")

	return cmd
}

func newKeyListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List issued access keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []AccessKey
			if err := client.Get("/api/v1/keys", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newKeyDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <code>",
		Short: "Delete an access key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete("/api/v1/keys/" + args[0]); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Key deleted")
			return nil
		},
	}
}

func newKeyOperationsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "operations",
		Short: "Show the recent operation log",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/operations"
			if limit > 0 {
				path = fmt.Sprintf("%s?limit=%d", path, limit)
			}

			var result []OperationLogEntry
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum entries to return")

	return cmd
}
