// Package refresh reloads the event set on a cron schedule and hands it to
// the pager.
package refresh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"cleancal/internal/events"
	appLog "cleancal/internal/log"
	"cleancal/internal/model"
	"cleancal/internal/pager"
	"cleancal/internal/prefs"
	"cleancal/internal/provider"
)

type Options struct {
	Location    *time.Location
	MonthsBack  int
	MonthsAhead int

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Refresher runs one load at a time; a tick that arrives while a load is
// still running is skipped.
type Refresher struct {
	ctrl   *pager.Controller
	loader *provider.Loader
	prefs  prefs.Store
	opts   Options

	running sync.Mutex

	mu          sync.Mutex
	lastDefault model.ViewType
	lastRun     time.Time
	cron        *cron.Cron
}

// New wires a refresher. prefsStore may be nil. initialDefault is the
// default view the controller was created with.
func New(ctrl *pager.Controller, loader *provider.Loader, prefsStore prefs.Store, initialDefault model.ViewType, opts Options) *Refresher {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Refresher{
		ctrl:        ctrl,
		loader:      loader,
		prefs:       prefsStore,
		opts:        opts,
		lastDefault: initialDefault,
	}
}

// Range is the date range a refresh fetches right now.
func (r *Refresher) Range() (from, to model.Date) {
	today := model.DateOf(r.opts.Now().In(r.opts.Location))
	return provider.Range(today, r.opts.MonthsBack, r.opts.MonthsAhead)
}

// RefreshNow loads events and installs them in the controller. It also
// follows a default-view change made elsewhere since the last refresh.
// It returns false when another refresh was already running. A load cut
// short by ctx leaves the installed store in place.
func (r *Refresher) RefreshNow(ctx context.Context) (*events.Store, bool) {
	if !r.running.TryLock() {
		appLog.Debug("refresh already running, skipped")
		return r.ctrl.Store(), false
	}
	defer r.running.Unlock()

	from, to := r.Range()
	started := time.Now()
	store := r.loader.Load(ctx, from, to)
	if store == nil {
		appLog.Warn("refresh abandoned, keeping current events", "err", ctx.Err())
		return r.ctrl.Store(), true
	}
	r.ctrl.UpdateEvents(store)

	r.followDefaultView(ctx)

	r.mu.Lock()
	r.lastRun = r.opts.Now()
	r.mu.Unlock()

	appLog.Info("refresh done",
		"origin", store.Origin(),
		"events", store.Len(),
		"from", from,
		"to", to,
		"took", time.Since(started).Round(time.Millisecond),
	)
	return store, true
}

func (r *Refresher) followDefaultView(ctx context.Context) {
	if r.prefs == nil {
		return
	}
	view := prefs.DefaultView(ctx, r.prefs)

	r.mu.Lock()
	changed := view != r.lastDefault
	r.lastDefault = view
	r.mu.Unlock()

	if changed {
		appLog.Info("default view changed, switching", "view", view)
		r.ctrl.SwitchViewType(view)
	}
}

// NoteDefaultView records a default the caller has just stored and applied
// itself, so the next refresh does not switch again.
func (r *Refresher) NoteDefaultView(view model.ViewType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastDefault = view
}

func (r *Refresher) LastRun() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastRun
}

// Start schedules RefreshNow on spec, a standard five-field cron
// expression evaluated in the configured location.
func (r *Refresher) Start(spec string) error {
	c := cron.New(cron.WithLocation(r.opts.Location))
	if _, err := c.AddFunc(spec, func() { r.RefreshNow(context.Background()) }); err != nil {
		return fmt.Errorf("refresh schedule %q: %w", spec, err)
	}

	r.mu.Lock()
	r.cron = c
	r.mu.Unlock()

	c.Start()
	appLog.Info("refresh scheduled", "spec", spec)
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish or
// ctx to end.
func (r *Refresher) Stop(ctx context.Context) {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()
	if c == nil {
		return
	}
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
}
