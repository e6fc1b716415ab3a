package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	appLog "cleancal/internal/log"
	"cleancal/internal/web"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the calendar and its JSON API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "HTTP listen address (overrides config if set)")
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	listen := a.cfg.Listen
	if serveListen != "" {
		listen = serveListen
	}

	a.refresher.RefreshNow(ctx)
	if err := a.refresher.Start(a.cfg.RefreshCron); err != nil {
		return err
	}

	srv := newHTTPServer(a, listen)
	errCh := make(chan error, 1)
	go func() {
		appLog.Info("http server listening", "addr", listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		appLog.Info("signal received, shutting down")
	case err := <-errCh:
		if err != nil {
			a.refresher.Stop(context.Background())
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("http shutdown", err)
	}
	a.refresher.Stop(shutdownCtx)
	appLog.Info("cleancal exiting")
	return nil
}

func newHTTPServer(a *app, addr string) *http.Server {
	s := web.NewServer(a.ctrl,
		web.WithPrefs(a.prefs),
		web.WithRefresher(a.refresher),
		web.WithBasicAuth(a.cfg.BasicAuth),
	)
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
