package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "cleancal/internal/log"
)

// vevent is a VEVENT reduced to what the calendar shows. Recurrences are
// not expanded here.
type vevent struct {
	sub Subscription

	uid         string
	summary     string
	description string

	start, end time.Time
	allDay     bool

	rrule        string
	exdates      []time.Time
	recurrenceID *time.Time
}

func (e vevent) isOverride() bool {
	return e.recurrenceID != nil
}

// parseFeed parses one ICS payload. Broken VEVENTs are logged and skipped;
// only an unreadable calendar is an error. Floating and all-day values are
// read in loc.
func parseFeed(sub Subscription, body []byte, loc *time.Location) ([]vevent, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var out []vevent
	for _, ve := range cal.Events() {
		ev, err := parseVEvent(sub, ve, loc)
		if err != nil {
			appLog.Warn("ics vevent skipped", "id", sub.ID, "err", err)
			continue
		}
		out = append(out, ev)
	}

	appLog.Debug("ics parsed", "id", sub.ID, "vevents", len(out))
	return out, nil
}

func parseVEvent(sub Subscription, ve *ical.VEvent, loc *time.Location) (vevent, error) {
	ev := vevent{sub: sub}

	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		return ev, errors.New("missing UID")
	}
	ev.uid = uid.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		ev.summary = unescapeText(p.Value)
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		ev.description = unescapeText(p.Value)
	}

	dtstart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtstart == nil {
		return ev, errors.New("missing DTSTART")
	}
	ev.allDay = isDateValue(dtstart)

	if ev.allDay {
		start, err := parseValue(dtstart.Value, loc)
		if err != nil {
			return ev, err
		}
		ev.start = start
		ev.end = start.AddDate(0, 0, 1)
		if p := ve.GetProperty(ical.ComponentPropertyDtEnd); p != nil {
			if end, err := parseValue(p.Value, loc); err == nil && end.After(start) {
				ev.end = end
			}
		}
	} else {
		start, err := ve.GetStartAt()
		if err != nil {
			return ev, err
		}
		ev.start = start
		ev.end = start
		if end, err := ve.GetEndAt(); err == nil {
			ev.end = end
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		ev.rrule = p.Value
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			if t, err := parseValue(part, paramLocation(p, loc)); err == nil {
				ev.exdates = append(ev.exdates, t)
			}
		}
	}

	if p := ve.GetProperty(ical.ComponentProperty("RECURRENCE-ID")); p != nil {
		if t, err := parseValue(p.Value, paramLocation(p, loc)); err == nil {
			ev.recurrenceID = &t
		}
	}

	return ev, nil
}

func isDateValue(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// paramLocation honours a TZID parameter, falling back to def.
func paramLocation(p *ical.IANAProperty, def *time.Location) *time.Location {
	if tzs, ok := p.ICalParameters["TZID"]; ok && len(tzs) > 0 {
		if loc, err := time.LoadLocation(tzs[0]); err == nil {
			return loc
		}
	}
	return def
}

// parseValue reads the DATE, DATE-TIME and UTC DATE-TIME forms.
func parseValue(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return time.Time{}, errors.New("empty time value")
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, loc)
	}
	return time.ParseInLocation("20060102", v, loc)
}

var textUnescaper = strings.NewReplacer(`\n`, "\n", `\N`, "\n", `\,`, ",", `\;`, ";", `\\`, `\`)

func unescapeText(s string) string {
	return textUnescaper.Replace(s)
}
