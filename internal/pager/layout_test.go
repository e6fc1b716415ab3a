package pager

import (
	"reflect"
	"testing"
	"time"

	"cleancal/internal/events"
	"cleancal/internal/model"
)

func meeting() model.CalendarEvent {
	return model.NewEvent("1", "Team Meeting",
		time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC),
		model.Work, "")
}

func TestLayOutSingleEvent(t *testing.T) {
	store := events.New([]model.CalendarEvent{meeting()}, events.OriginRemote)

	cells := LayOut(model.DateWindow{Start: anchor, Length: 1}, store)
	if len(cells) != 1 || len(cells[0].Events) != 1 {
		t.Fatalf("cells = %+v, want one cell with one event", cells)
	}
	if !cells[0].Date.Equal(anchor) || cells[0].Events[0].Title != "Team Meeting" {
		t.Fatalf("unexpected cell %+v", cells[0])
	}

	next := LayOut(model.DateWindow{Start: anchor.AddDays(1), Length: 1}, store)
	if len(next) != 1 || len(next[0].Events) != 0 {
		t.Fatalf("2024-03-16 cells = %+v, want one empty cell", next)
	}
}

func TestLayOutEmptyStore(t *testing.T) {
	cells := LayOut(model.DateWindow{Start: anchor, Length: 14}, events.Empty())
	if len(cells) != 14 {
		t.Fatalf("got %d cells, want 14", len(cells))
	}
	for _, c := range cells {
		if c.Events == nil || len(c.Events) != 0 {
			t.Fatalf("cell %s has events %#v", c.Date, c.Events)
		}
	}
}

func TestLayOutMultiDayEventOnStartOnly(t *testing.T) {
	trip := model.NewEvent("trip", "Conference",
		time.Date(2024, time.March, 15, 18, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 17, 12, 0, 0, 0, time.UTC),
		model.Work, "")
	cells := LayOut(model.DateWindow{Start: anchor, Length: 3}, events.New([]model.CalendarEvent{trip}, events.OriginRemote))
	if len(cells[0].Events) != 1 || len(cells[1].Events) != 0 || len(cells[2].Events) != 0 {
		t.Fatalf("multi-day event spread: %d/%d/%d", len(cells[0].Events), len(cells[1].Events), len(cells[2].Events))
	}
}

func TestLayOutOrdersWithinDay(t *testing.T) {
	late := model.NewEvent("b", "Project Review", time.Date(2024, time.March, 15, 14, 0, 0, 0, time.UTC), time.Date(2024, time.March, 15, 15, 30, 0, 0, time.UTC), model.Work, "")
	early := model.NewEvent("c", "Pay Bills", time.Date(2024, time.March, 15, 8, 0, 0, 0, time.UTC), time.Date(2024, time.March, 15, 8, 30, 0, 0, time.UTC), model.Reminder, "")
	store := events.New([]model.CalendarEvent{late, meeting(), early}, events.OriginSample)

	cells := LayOut(model.DateWindow{Start: anchor, Length: 1}, store)
	var got []string
	for _, e := range cells[0].Events {
		got = append(got, e.Title)
	}
	want := []string{"Pay Bills", "Team Meeting", "Project Review"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestLayOutIsIdempotent(t *testing.T) {
	store := events.New([]model.CalendarEvent{meeting()}, events.OriginRemote)
	w := WindowFor(model.TwoWeek, model.CenterIndex, anchor)
	if a, b := LayOut(w, store), LayOut(w, store); !reflect.DeepEqual(a, b) {
		t.Fatal("LayOut is not deterministic")
	}
}

func TestLeadingBlanks(t *testing.T) {
	tests := []struct {
		month model.Date
		want  int
	}{
		{model.NewDate(2024, time.May, 1), 3},       // Wednesday
		{model.NewDate(2024, time.September, 1), 0}, // Sunday
		{model.NewDate(2024, time.June, 1), 6},      // Saturday
		{model.NewDate(2024, time.March, 1), 5},     // Friday
	}
	for _, tt := range tests {
		w := model.DateWindow{Start: tt.month, Length: tt.month.DaysInMonth()}
		if got := LeadingBlanks(w); got != tt.want {
			t.Errorf("LeadingBlanks(%s) = %d, want %d", tt.month, got, tt.want)
		}
	}
}

func TestBuildPerView(t *testing.T) {
	store := events.New([]model.CalendarEvent{meeting()}, events.OriginRemote)

	month := Build(model.Month, model.CenterIndex, anchor, store)
	if month.LeadingBlanks != 5 || len(month.Cells) != 31 || month.GridCells() != 36 {
		t.Fatalf("month page blanks=%d cells=%d grid=%d", month.LeadingBlanks, len(month.Cells), month.GridCells())
	}
	if month.Hours != nil {
		t.Fatal("month page should not carry an hour axis")
	}
	if month.Title != "March 2024" || month.Origin != events.OriginRemote {
		t.Fatalf("month title/origin = %q/%q", month.Title, month.Origin)
	}
	rows := month.Rows()
	if len(rows) != 6 || rows[0][4] != nil || rows[0][5].Date.Day() != 1 {
		t.Fatalf("month rows misaligned: %d rows", len(rows))
	}

	day := Build(model.OneDay, model.CenterIndex, anchor, store)
	if len(day.Hours) != 24 || day.Hours[0] != "00:00" || day.Hours[23] != "23:00" {
		t.Fatalf("hour axis = %v", day.Hours)
	}
	if day.Title != "Friday, March 15, 2024" {
		t.Fatalf("day title = %q", day.Title)
	}

	three := Build(model.ThreeDay, model.CenterIndex, anchor, store)
	if three.Title != "Mar 15 - Mar 17" || len(three.Hours) != 24 {
		t.Fatalf("three-day page = %q hours=%d", three.Title, len(three.Hours))
	}

	two := Build(model.TwoWeek, model.CenterIndex, anchor, store)
	if two.Title != "Mar 15, 2024 - Mar 28, 2024" || two.LeadingBlanks != 0 || len(two.Rows()) != 2 {
		t.Fatalf("two-week page = %q blanks=%d rows=%d", two.Title, two.LeadingBlanks, len(two.Rows()))
	}
}
