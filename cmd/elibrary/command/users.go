package command

import (
	"fmt"

	"elibrary/internal/microservices/http-api/dto"

	"github.com/spf13/cobra"
)

// usersCmd represents the users command for identity related subcommands
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Register, log in and check usernames through the API",
	Long: `Register, log in and check usernames through the API.
The --password value is the hash produced by the Identity Provider; it is sent as is.`,
}

var usersRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := newAPIClient().Register(cmd.Context(), credentialsFromFlags(cmd))
		if err != nil {
			return fmt.Errorf("registration process failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Registration successful!")
		fmt.Fprintf(cmd.OutOrStdout(), "UserID: %d\n", resp.UserID)
		return nil
	},
}

var usersLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Check credentials for an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := newAPIClient().Login(cmd.Context(), credentialsFromFlags(cmd))
		if err != nil {
			return fmt.Errorf("login process failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Logged in as %s (id %d, admin %t)\n", resp.Username, resp.UserID, resp.IsAdmin)
		return nil
	},
}

var usersCheckCmd = &cobra.Command{
	Use:   "check <username>",
	Short: "Report whether a username is taken",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := newAPIClient().CheckUsername(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if resp.Exists {
			fmt.Fprintf(cmd.OutOrStdout(), "%s is taken\n", resp.Username)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s is available\n", resp.Username)
		}
		return nil
	},
}

func init() {
	usersCmd.AddCommand(usersRegisterCmd, usersLoginCmd, usersCheckCmd)

	for _, c := range []*cobra.Command{usersRegisterCmd, usersLoginCmd} {
		c.Flags().StringP("username", "u", "", "Username for the account")
		c.Flags().StringP("password", "p", "", "Password hash for the account")
		c.MarkFlagRequired("username")
		c.MarkFlagRequired("password")
	}
}

func credentialsFromFlags(cmd *cobra.Command) dto.CredentialsRequest {
	var req dto.CredentialsRequest
	req.Username, _ = cmd.Flags().GetString("username")
	req.Password, _ = cmd.Flags().GetString("password")
	return req
}
