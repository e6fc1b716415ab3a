package model

import (
	"fmt"
	"strings"
	"time"
)

// Category is the closed set of event tags. Each tag has a display color.
type Category int

const (
	Work Category = iota
	Personal
	Birthday
	Reminder
	Holiday
)

var categories = [...]struct {
	name  string
	color uint32
}{
	Work:     {"Work", 0xFF2196F3},
	Personal: {"Personal", 0xFF4CAF50},
	Birthday: {"Birthday", 0xFFFF5722},
	Reminder: {"Reminder", 0xFFFF9800},
	Holiday:  {"Holiday", 0xFF9C27B0},
}

// Categories lists every category in declaration order.
func Categories() []Category {
	return []Category{Work, Personal, Birthday, Reminder, Holiday}
}

func (c Category) valid() bool {
	return c >= Work && c <= Holiday
}

func (c Category) String() string {
	if !c.valid() {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categories[c].name
}

// Color returns the ARGB display color.
func (c Category) Color() uint32 {
	if !c.valid() {
		return categories[Personal].color
	}
	return categories[c].color
}

// Hex returns the color as a CSS "#RRGGBB" string.
func (c Category) Hex() string {
	return fmt.Sprintf("#%06X", c.Color()&0xFFFFFF)
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	for _, cat := range Categories() {
		if strings.EqualFold(cat.String(), string(b)) {
			*c = cat
			return nil
		}
	}
	return fmt.Errorf("unknown category %q", string(b))
}

// CategoryForTitle guesses a category from an event title. Remote calendars
// carry no tag of their own, so keywords decide.
func CategoryForTitle(title string) Category {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "birthday"):
		return Birthday
	case strings.Contains(t, "holiday"):
		return Holiday
	case strings.Contains(t, "reminder"), strings.Contains(t, "task"):
		return Reminder
	case strings.Contains(t, "meeting"), strings.Contains(t, "work"),
		strings.Contains(t, "call"), strings.Contains(t, "standup"):
		return Work
	default:
		return Personal
	}
}

// CalendarEvent is a single event as shown by the viewer. Values are never
// mutated once built; use NewEvent to get a normalized one.
type CalendarEvent struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Category    Category  `json:"category"`
	Description string    `json:"description,omitempty"`
}

// NewEvent builds an event, clamping an end before start to start.
func NewEvent(id, title string, start, end time.Time, cat Category, description string) CalendarEvent {
	if end.Before(start) {
		end = start
	}
	return CalendarEvent{
		ID:          id,
		Title:       title,
		Start:       start,
		End:         end,
		Category:    cat,
		Description: description,
	}
}

// StartDate is the day the event is attributed to. Multi-day events are
// shown on their start day only.
func (e CalendarEvent) StartDate() Date {
	return DateOf(e.Start)
}

func (e CalendarEvent) Duration() time.Duration {
	return e.End.Sub(e.Start)
}
