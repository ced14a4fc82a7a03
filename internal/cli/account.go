package cli

import (
	"github.com/spf13/cobra"
)

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Game account commands",
	}

	cmd.AddCommand(newAccountLoginCmd())
	cmd.AddCommand(newAccountShowCmd())
	cmd.AddCommand(newAccountCarsCmd())
	cmd.AddCommand(newAccountChangeIDCmd())
	cmd.AddCommand(newAccountCloneCmd())

	return cmd
}

func newAccountLoginCmd() *cobra.Command {
	var email, pass string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to a game account and print its auth token",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"email":    email,
				"password": pass,
			}
			var result GameLogin

			if err := client.Post("/api/v1/login", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Game account email (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Game account password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newAccountShowCmd() *cobra.Command {
	var authToken string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Fetch and summarize a game account",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"auth_token": authToken}
			var result Account

			if err := client.Post("/api/v1/account", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&authToken, "auth", "", "Game auth token (required)")
	_ = cmd.MarkFlagRequired("auth")

	return cmd
}

func newAccountCarsCmd() *cobra.Command {
	var authToken string

	cmd := &cobra.Command{
		Use:   "cars",
		Short: "List the cars on a game account",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"auth_token": authToken}
			var result Cars

			if err := client.Post("/api/v1/cars", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&authToken, "auth", "", "Game auth token (required)")
	_ = cmd.MarkFlagRequired("auth")

	return cmd
}

func newAccountChangeIDCmd() *cobra.Command {
	var authToken, email, pass, newID, name, money string

	cmd := &cobra.Command{
		Use:   "change-id",
		Short: "Change a game account's local ID across account and cars",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"new_local_id": newID}
			if authToken != "" {
				req["auth_token"] = authToken
			}
			if email != "" {
				req["email"] = email
				req["password"] = pass
			}
			if name != "" {
				req["name"] = name
			}
			if money != "" {
				req["money"] = money
			}

			var result OperationResult
			if err := client.Post("/api/v1/change-localid", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&authToken, "auth", "", "Game auth token")
	cmd.Flags().StringVar(&email, "email", "", "Game account email (alternative to --auth)")
	cmd.Flags().StringVar(&pass, "pass", "", "Game account password (with --email)")
	cmd.Flags().StringVar(&newID, "new-id", "", "New local ID (required)")
	cmd.Flags().StringVar(&name, "name", "", "New display name (optional)")
	cmd.Flags().StringVar(&money, "money", "", "New money value (optional)")
	_ = cmd.MarkFlagRequired("new-id")

	return cmd
}

func newAccountCloneCmd() *cobra.Command {
	var sourceAuth, targetEmail, targetPass, customID string

	cmd := &cobra.Command{
		Use:   "clone",
		Short: "Clone a game account onto another one",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"source_auth":     sourceAuth,
				"target_email":    targetEmail,
				"target_password": targetPass,
			}
			if customID != "" {
				req["custom_local_id"] = customID
			}

			var result OperationResult
			if err := client.Post("/api/v1/clone-account", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceAuth, "source-auth", "", "Auth token of the source account (required)")
	cmd.Flags().StringVar(&targetEmail, "target-email", "", "Email of the target account (required)")
	cmd.Flags().StringVar(&targetPass, "target-pass", "", "Password of the target account (required)")
	cmd.Flags().StringVar(&customID, "custom-id", "", "Local ID for the clone (random if omitted)")
	_ = cmd.MarkFlagRequired("source-auth")
	_ = cmd.MarkFlagRequired("target-email")
	_ = cmd.MarkFlagRequired("target-pass")

	return cmd
}
