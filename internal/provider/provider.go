// Package provider defines the source of remote events and the loader that
// falls back to sample data whenever that source has nothing to offer.
package provider

import (
	"context"
	"time"

	"cleancal/internal/events"
	appLog "cleancal/internal/log"
	"cleancal/internal/model"
	"cleancal/internal/sample"
)

// Provider fetches the events whose start lies in [start, end].
type Provider interface {
	FetchEvents(ctx context.Context, start, end time.Time) ([]model.CalendarEvent, error)
}

// Func adapts a plain function to Provider.
type Func func(ctx context.Context, start, end time.Time) ([]model.CalendarEvent, error)

func (f Func) FetchEvents(ctx context.Context, start, end time.Time) ([]model.CalendarEvent, error) {
	return f(ctx, start, end)
}

// Loader turns a fetch range into an event store. A nil provider means no
// calendar is connected.
type Loader struct {
	provider Provider
	loc      *time.Location
}

func NewLoader(p Provider, loc *time.Location) *Loader {
	if loc == nil {
		loc = time.Local
	}
	return &Loader{provider: p, loc: loc}
}

// Load fetches [from, to] from the provider. An error, an empty result or a
// missing provider yields the sample store instead. Load returns nil when
// ctx ended during the fetch; the caller keeps what it had.
func (l *Loader) Load(ctx context.Context, from, to model.Date) *events.Store {
	if l.provider == nil {
		appLog.Info("no calendar connected, showing sample events", "from", from, "to", to)
		return l.sample(from, to)
	}

	start := from.In(l.loc)
	end := to.AddDays(1).In(l.loc).Add(-time.Second)

	list, err := l.provider.FetchEvents(ctx, start, end)
	if err != nil && ctx.Err() != nil {
		appLog.Warn("fetch events abandoned", "err", err, "from", from, "to", to)
		return nil
	}
	if err != nil {
		appLog.Error("fetch events failed, showing sample events", err, "from", from, "to", to)
		return l.sample(from, to)
	}
	if len(list) == 0 {
		appLog.Info("calendar returned no events, showing sample events", "from", from, "to", to)
		return l.sample(from, to)
	}

	appLog.Info("events loaded", "count", len(list), "from", from, "to", to)
	return events.New(list, events.OriginRemote)
}

func (l *Loader) sample(from, to model.Date) *events.Store {
	return events.New(sample.Generate(from, to, l.loc), events.OriginSample)
}

// Range is the fetch range around today: monthsBack months before it to
// monthsAhead months after it, keeping the day of month where it exists.
// Negative counts are treated as zero.
func Range(today model.Date, monthsBack, monthsAhead int) (from, to model.Date) {
	return shiftMonths(today, -max(monthsBack, 0)), shiftMonths(today, max(monthsAhead, 0))
}

// shiftMonths moves d by n months, clamping the day to the target month's
// length (Mar 31 - 1 month = Feb 29 in a leap year).
func shiftMonths(d model.Date, n int) model.Date {
	first := d.AddMonths(n)
	return model.NewDate(first.Year(), first.Month(), min(d.Day(), first.DaysInMonth()))
}
