package main

import (
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/spf13/cobra"

	"cleancal/internal/capture"
	"cleancal/internal/config"
	appLog "cleancal/internal/log"
	"cleancal/internal/model"
)

var (
	snapOut    string
	snapURL    string
	snapView   string
	snapOffset int
	snapWidth  int
	snapHeight int
	snapChrome string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save a PNG of a calendar page",
	Long: `Save a PNG of a calendar page using headless Chromium.

Without --url an in-process server is started on a free loopback port.
With --url the page of an already running cleancal server is captured.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if snapOut == "" {
			return errors.New("--out is required")
		}
		var (
			cfg  *config.Config
			base = snapURL
		)
		if base == "" {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()
			cfg = a.cfg
			a.refresher.RefreshNow(cmd.Context())

			ln, err := net.Listen("tcp", "127.0.0.1:0")
			if err != nil {
				return err
			}
			srv := newHTTPServer(a, ln.Addr().String())
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					appLog.Error("snapshot server", err)
				}
			}()
			defer srv.Close()
			base = "http://" + ln.Addr().String()
		} else {
			c, _, err := loadConfig()
			if err != nil {
				return err
			}
			cfg = c
		}

		var page *model.PageIndex
		if snapOffset != 0 {
			p := model.CenterIndex + model.PageIndex(snapOffset)
			page = &p
		}
		target, err := capture.PageURL(base, snapView, page)
		if err != nil {
			return err
		}

		opts := capture.Options{
			URL:      target,
			Width:    snapWidth,
			Height:   snapHeight,
			ExecPath: snapChrome,
		}
		if cfg.BasicAuth != nil {
			opts.Username = cfg.BasicAuth.Username
			opts.Password = cfg.BasicAuth.Password
		}
		if err := capture.SnapshotToFile(cmd.Context(), opts, snapOut); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", snapOut)
		return nil
	},
}

func init() {
	snapshotCmd.Flags().StringVarP(&snapOut, "out", "o", "calendar.png", "output PNG path")
	snapshotCmd.Flags().StringVar(&snapURL, "url", "", "base URL of a running cleancal server")
	snapshotCmd.Flags().StringVar(&snapView, "view", "", "view to capture")
	snapshotCmd.Flags().IntVar(&snapOffset, "offset", 0, "pages from today's page")
	snapshotCmd.Flags().IntVar(&snapWidth, "width", capture.DefaultWidth, "viewport width")
	snapshotCmd.Flags().IntVar(&snapHeight, "height", capture.DefaultHeight, "viewport height")
	snapshotCmd.Flags().StringVar(&snapChrome, "chrome", "", "path to the Chromium binary")
}
