package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"cleancal/internal/model"
	"cleancal/internal/termview"
)

var (
	showView   string
	showOffset int
	showDate   string
	showWidth  int
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a calendar page to the terminal",
	Long: `Print one page of the calendar.

By default the page containing today in the stored default view is shown.
--offset pages forward (or backward when negative) from there and --date
shows the page containing that day instead.`,
	Example: `  cleancal show
  cleancal show --view month --offset -1
  cleancal show --view one-day --date 2024-03-15`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if showView != "" {
			view, err := model.ParseViewType(showView)
			if err != nil {
				return err
			}
			a.ctrl.SwitchViewType(view)
		}

		a.refresher.RefreshNow(cmd.Context())

		if showDate != "" {
			d, err := model.ParseDate(showDate)
			if err != nil {
				return fmt.Errorf("--date: %w", err)
			}
			a.ctrl.JumpTo(d)
		} else if showOffset != 0 {
			a.ctrl.Scroll(showOffset)
		}

		p := a.ctrl.CurrentPageLayout()
		width := showWidth
		if width == 0 {
			width = termview.FitCellWidth(p.View, terminalWidth())
		}
		out := termview.Render(p, termview.Options{
			CellWidth: width,
			Today:     model.Today(a.loc),
		})
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	showCmd.Flags().StringVar(&showView, "view", "", "view to show (one-day, three-day, two-week, month)")
	showCmd.Flags().IntVar(&showOffset, "offset", 0, "pages from today's page")
	showCmd.Flags().StringVar(&showDate, "date", "", "show the page containing this date (YYYY-MM-DD)")
	showCmd.Flags().IntVar(&showWidth, "width", 0, "cell width in columns (0 fits the terminal)")
	showCmd.MarkFlagsMutuallyExclusive("offset", "date")
}

// terminalWidth is the column count of stdout, or 0 when it is not a
// terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return w
}
