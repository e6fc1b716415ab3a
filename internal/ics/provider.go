// Package ics reads events from ICS subscriptions. Feeds are fetched with
// conditional requests, parsed with golang-ical and their recurrences are
// expanded with rrule-go before the events reach the rest of the program.
package ics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	appLog "cleancal/internal/log"
	"cleancal/internal/model"
)

// Provider merges a set of ICS subscriptions into one event list.
type Provider struct {
	subs        []Subscription
	fetcher     *fetcher
	loc         *time.Location
	maxPerEvent int
}

type Option func(*Provider)

// WithHTTPClient replaces the default client (15s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.fetcher.client = c }
}

// WithMaxOccurrences caps the instances of a single recurring event.
func WithMaxOccurrences(n int) Option {
	return func(p *Provider) { p.maxPerEvent = n }
}

// New returns a provider over subs. cacheDir holds the last good copy of
// every feed; empty disables the disk cache. Floating times are read in
// loc and every event is reported in loc.
func New(subs []Subscription, cacheDir string, loc *time.Location, opts ...Option) *Provider {
	if loc == nil {
		loc = time.Local
	}
	p := &Provider{
		subs:        subs,
		fetcher:     newFetcher(nil, cacheDir),
		loc:         loc,
		maxPerEvent: defaultMaxPerEvent,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FetchEvents returns the instances of every subscription starting in
// [start, end]. A failing feed is skipped; the call fails only when no feed
// could be read at all.
func (p *Provider) FetchEvents(ctx context.Context, start, end time.Time) ([]model.CalendarEvent, error) {
	if len(p.subs) == 0 {
		return nil, errors.New("ics: no subscriptions configured")
	}

	var (
		parsed []vevent
		errs   []error
		ok     int
	)
	for _, sub := range p.subs {
		body, fromCache, err := p.fetcher.fetch(ctx, sub)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sub.ID, err))
			continue
		}
		evs, err := parseFeed(sub, body, p.loc)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: parse: %w", sub.ID, err))
			continue
		}
		appLog.Debug("ics feed ready", "id", sub.ID, "vevents", len(evs), "from_cache", fromCache)
		parsed = append(parsed, evs...)
		ok++
	}
	if ok == 0 {
		return nil, errors.Join(errs...)
	}
	for _, err := range errs {
		appLog.Warn("ics feed skipped", "err", err)
	}

	occs, truncated := expand(parsed, start, end, p.maxPerEvent)
	if len(truncated) > 0 {
		appLog.Warn("ics recurrences capped", "events", len(truncated), "uids", strings.Join(truncated, ","), "cap", p.maxPerEvent)
	}
	sort.SliceStable(occs, func(i, j int) bool { return occs[i].start.Before(occs[j].start) })

	out := make([]model.CalendarEvent, 0, len(occs))
	for _, o := range occs {
		out = append(out, toEvent(o, p.loc))
	}
	return out, nil
}

func toEvent(o occurrence, loc *time.Location) model.CalendarEvent {
	start, end := o.start.In(loc), o.end.In(loc)
	if o.allDay {
		// Whole days in the feed's own calendar; keep the wall date.
		start, end = o.start, o.end.Add(-time.Minute)
	}
	return model.NewEvent(o.key(), o.summary, start, end, model.CategoryForTitle(o.summary), o.description)
}
