package main

import (
	"context"

	"github.com/spf13/cobra"

	"cleancal/internal/termview"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Page through the calendar interactively in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		// Log lines would tear the alternate screen.
		quiet()

		a.refresher.RefreshNow(cmd.Context())
		m := termview.NewModel(a.ctrl, a.loc, func(ctx context.Context) bool {
			_, ran := a.refresher.RefreshNow(ctx)
			return ran
		})
		return termview.Run(cmd.Context(), m)
	},
}
