package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"cleancal/internal/config"
	"cleancal/internal/google"
	"cleancal/internal/ics"
	appLog "cleancal/internal/log"
	"cleancal/internal/model"
	"cleancal/internal/pager"
	"cleancal/internal/prefs"
	"cleancal/internal/provider"
	"cleancal/internal/refresh"
)

// app is everything a command needs once the config has been read.
type app struct {
	cfg       *config.Config
	loc       *time.Location
	prefs     *prefs.SQLite
	ctrl      *pager.Controller
	refresher *refresh.Refresher
}

func loadConfig() (*config.Config, *time.Location, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config %s: %w", configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config %s: %w", configPath, err)
	}

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	if l, ok := appLog.ParseLevel(level); ok {
		appLog.SetLevel(l)
	} else {
		appLog.Warn("unknown log level, using info", "log_level", level)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}
	return cfg, loc, nil
}

// openApp reads the config, opens the preference store and builds the
// controller on today with the stored default view. Events are not loaded
// yet; call a.refresher.RefreshNow.
func openApp() (*app, error) {
	cfg, loc, err := loadConfig()
	if err != nil {
		return nil, err
	}

	store, err := prefs.Open(cfg.PrefsPath)
	if err != nil {
		return nil, err
	}

	policy, err := pager.ParseSwitchPolicy(cfg.SwitchPolicy)
	if err != nil {
		store.Close()
		return nil, err
	}

	p, err := newProvider(cfg, loc)
	if err != nil {
		store.Close()
		return nil, err
	}

	view := prefs.DefaultView(context.Background(), store)
	ctrl := pager.New(model.Today(loc), view, pager.WithSwitchPolicy(policy))
	r := refresh.New(ctrl, provider.NewLoader(p, loc), store, view, refresh.Options{
		Location:    loc,
		MonthsBack:  cfg.FetchMonthsBack,
		MonthsAhead: cfg.FetchMonthsAhead,
	})

	appLog.Info("effective config",
		"config", configPath,
		"timezone", loc.String(),
		"provider", cfg.Provider,
		"default_view", view,
		"switch_policy", policy,
		"refresh", cfg.RefreshCron,
	)
	return &app{cfg: cfg, loc: loc, prefs: store, ctrl: ctrl, refresher: r}, nil
}

func (a *app) Close() {
	if err := a.prefs.Close(); err != nil {
		appLog.Error("close prefs", err)
	}
}

// newProvider picks the event source. A nil provider (with a nil error)
// means sample events.
func newProvider(cfg *config.Config, loc *time.Location) (provider.Provider, error) {
	switch cfg.Provider {
	case config.ProviderGoogle:
		c, err := newGoogleClient(cfg, loc)
		if err != nil {
			return nil, err
		}
		if !c.SignedIn() {
			appLog.Warn("google provider selected but not signed in, run `cleancal login`")
		}
		return c, nil
	case config.ProviderICS:
		subs := make([]ics.Subscription, 0, len(cfg.ICS))
		for _, s := range cfg.ICS {
			subs = append(subs, ics.Subscription{ID: s.ID, Name: s.Name, URL: s.URL})
		}
		return ics.New(subs, cfg.ICSCacheDir, loc), nil
	default:
		return nil, nil
	}
}

func newGoogleClient(cfg *config.Config, loc *time.Location) (*google.Client, error) {
	cred, err := os.ReadFile(cfg.Google.CredentialsFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("google credentials %s not found, download an OAuth client JSON from the Cloud console", cfg.Google.CredentialsFile)
	}
	if err != nil {
		return nil, err
	}
	return google.NewClient(cred, cfg.Google.TokenFile, cfg.Google.CalendarID, loc)
}
