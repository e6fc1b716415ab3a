package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cleancal/internal/config"
)

var loginAddr string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to Google Calendar",
	Long: `Sign in to Google Calendar with read-only access.

The consent link is printed; after approving, Google redirects to a local
callback server and the token is stored at google.token_file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, loc, err := loadConfig()
		if err != nil {
			return err
		}
		c, err := newGoogleClient(cfg, loc)
		if err != nil {
			return err
		}
		if c.SignedIn() {
			fmt.Fprintln(cmd.OutOrStdout(), "Already signed in; continuing replaces the stored token.")
		}
		if err := c.Login(cmd.Context(), loginAddr, cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("login: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed in.")
		if cfg.Provider != config.ProviderGoogle {
			fmt.Fprintf(cmd.OutOrStdout(), "Note: provider is %q in %s; set it to %q to show this calendar.\n",
				cfg.Provider, configPath, config.ProviderGoogle)
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginAddr, "addr", "127.0.0.1:8085", "address of the local OAuth callback server")
}
