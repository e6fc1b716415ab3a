package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cleancal/internal/model"
	"cleancal/internal/prefs"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Show or change the default view",
}

var viewGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the stored default view",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPrefs(func(s prefs.Store) error {
			fmt.Fprintln(cmd.OutOrStdout(), prefs.DefaultView(cmd.Context(), s))
			return nil
		})
	},
}

var viewSetCmd = &cobra.Command{
	Use:       "set VIEW",
	Short:     "Store the default view",
	Long:      "Store the default view. A running server picks it up on its next refresh.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"one-day", "three-day", "two-week", "month"},
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := model.ParseViewType(args[0])
		if err != nil {
			return err
		}
		return withPrefs(func(s prefs.Store) error {
			if err := prefs.SetDefaultView(cmd.Context(), s, view); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "default view: %s\n", view)
			return nil
		})
	},
}

func init() {
	viewCmd.AddCommand(viewGetCmd)
	viewCmd.AddCommand(viewSetCmd)
}

func withPrefs(fn func(prefs.Store) error) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := prefs.Open(cfg.PrefsPath)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}
