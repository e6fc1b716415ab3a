package termview

import (
	"strings"
	"testing"
	"time"

	"cleancal/internal/events"
	"cleancal/internal/model"
	"cleancal/internal/pager"
)

var anchor = model.NewDate(2024, time.March, 15)

func at(day, hour int, title string, cat model.Category) model.CalendarEvent {
	s := time.Date(2024, time.March, day, hour, 0, 0, 0, time.UTC)
	return model.NewEvent(title, title, s, s.Add(time.Hour), cat, "")
}

func TestRenderMonthCapsDots(t *testing.T) {
	var list []model.CalendarEvent
	for h := 8; h < 15; h++ {
		list = append(list, at(15, h, "Slot", model.Work))
	}
	p := pager.Build(model.Month, model.CenterIndex, anchor, events.New(list, events.OriginRemote))

	out := Render(p, Options{Today: anchor})
	if !strings.Contains(out, "March 2024") {
		t.Fatal("missing title")
	}
	if got := strings.Count(out, "●"); got != pager.MaxMonthDots {
		t.Fatalf("dots = %d, want %d", got, pager.MaxMonthDots)
	}
	if !strings.Contains(out, "+2") {
		t.Fatal("missing overflow marker")
	}
	if !strings.Contains(out, "31") || !strings.Contains(out, "Sun") {
		t.Fatal("grid incomplete")
	}
}

func TestRenderTwoWeekShowsTitles(t *testing.T) {
	store := events.New([]model.CalendarEvent{
		at(15, 9, "Team Meeting", model.Work),
		at(16, 10, "Grocery Shopping", model.Personal),
	}, events.OriginSample)
	p := pager.Build(model.TwoWeek, model.CenterIndex, anchor, store)

	out := Render(p, Options{CellWidth: 20})
	for _, want := range []string{"Team Meeting", "Grocery Shopping", "sample events", "Fri"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRenderDayViewsUseHourRows(t *testing.T) {
	store := events.New([]model.CalendarEvent{
		at(15, 14, "Project Review", model.Work),
		at(17, 10, "Meal Prep", model.Personal),
	}, events.OriginRemote)

	p := pager.Build(model.ThreeDay, model.CenterIndex, anchor, store)
	out := Render(p, Options{})
	if !strings.Contains(out, "00:00") || !strings.Contains(out, "23:00") {
		t.Fatal("missing hour axis")
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Project Review") && !strings.Contains(line, "14:00") {
			t.Errorf("event not on its hour row: %q", line)
		}
	}
	if !strings.Contains(out, "Sun Mar 17") {
		t.Error("missing third column header")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		w    int
		want string
	}{
		{"Gym", 10, "Gym"},
		{"Lunch with Sarah", 8, "Lunch w…"},
		{"Lunch", 1, "…"},
		{"Lunch", 0, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.w); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.w, got, tt.want)
		}
	}
}
