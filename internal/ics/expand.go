package ics

import (
	"time"

	"github.com/teambition/rrule-go"

	appLog "cleancal/internal/log"
)

// defaultMaxPerEvent caps the instances produced for a single UID.
const defaultMaxPerEvent = 5000

// occurrence is one concrete instance of a vevent.
type occurrence struct {
	sub         Subscription
	uid         string
	summary     string
	description string
	allDay      bool
	start, end  time.Time
}

// key identifies the instance across refreshes.
func (o occurrence) key() string {
	return o.sub.ID + ":" + o.uid + "@" + o.start.UTC().Format(time.RFC3339)
}

// expand turns vevents into the occurrences starting in [from, to]. RRULE,
// EXDATE and RECURRENCE-ID overrides are applied per UID. It returns the
// UIDs that hit maxPerEvent.
func expand(evs []vevent, from, to time.Time, maxPerEvent int) ([]occurrence, []string) {
	if maxPerEvent <= 0 {
		maxPerEvent = defaultMaxPerEvent
	}
	if to.Before(from) {
		return nil, nil
	}

	masters := make(map[string][]vevent)
	overrides := make(map[string][]vevent)
	var order []string
	for _, ev := range evs {
		k := ev.sub.ID + "\x00" + ev.uid
		if ev.isOverride() {
			overrides[k] = append(overrides[k], ev)
			continue
		}
		if _, seen := masters[k]; !seen {
			order = append(order, k)
		}
		masters[k] = append(masters[k], ev)
	}

	var (
		out       []occurrence
		truncated []string
	)
	for _, k := range order {
		for _, ev := range masters[k] {
			occ, capped := expandOne(ev, overrides[k], from, to, maxPerEvent)
			out = append(out, occ...)
			if capped {
				truncated = append(truncated, ev.uid)
				appLog.Debug("ics recurrence truncated", "uid", ev.uid, "cap", maxPerEvent)
			}
		}
	}
	return out, truncated
}

func expandOne(ev vevent, overrides []vevent, from, to time.Time, maxPerEvent int) ([]occurrence, bool) {
	if ev.rrule == "" {
		start, end, src := ev.start, ev.end, ev
		if o, ok := overrideFor(overrides, start); ok {
			start, end, src = o.start, o.end, o
		}
		if !inRange(start, from, to) {
			return nil, false
		}
		return []occurrence{newOccurrence(src, start, end)}, false
	}

	r, err := rrule.StrToRRule(ev.rrule)
	if err != nil {
		appLog.Warn("ics rrule rejected", "uid", ev.uid, "rrule", ev.rrule, "err", err)
		return nil, false
	}
	r.DTStart(ev.start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.exdates {
		set.ExDate(ex.In(ev.start.Location()))
	}

	// Overrides can move an instance into the range from outside it, so
	// search a little wider and filter on the final start.
	dur := ev.end.Sub(ev.start)
	slack := 24*time.Hour + dur
	times := set.Between(from.Add(-slack).In(ev.start.Location()), to.Add(slack).In(ev.start.Location()), true)

	capped := false
	if len(times) > maxPerEvent {
		times = times[:maxPerEvent]
		capped = true
	}

	out := make([]occurrence, 0, len(times))
	for _, t := range times {
		start, end, src := t, t.Add(dur), ev
		if o, ok := overrideFor(overrides, t); ok {
			start, end, src = o.start, o.end, o
		}
		if !inRange(start, from, to) {
			continue
		}
		out = append(out, newOccurrence(src, start, end))
	}
	return out, capped
}

// overrideFor finds the override whose RECURRENCE-ID is the instance start.
func overrideFor(overrides []vevent, start time.Time) (vevent, bool) {
	for _, o := range overrides {
		if o.recurrenceID.Equal(start) {
			return o, true
		}
	}
	return vevent{}, false
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

func newOccurrence(ev vevent, start, end time.Time) occurrence {
	if end.Before(start) {
		end = start
	}
	return occurrence{
		sub:         ev.sub,
		uid:         ev.uid,
		summary:     ev.summary,
		description: ev.description,
		allDay:      ev.allDay,
		start:       start,
		end:         end,
	}
}
