package sample

import (
	"reflect"
	"testing"
	"time"

	"cleancal/internal/model"
)

func titlesOn(list []model.CalendarEvent, d model.Date) []string {
	var out []string
	for _, e := range list {
		if e.StartDate().Equal(d) {
			out = append(out, e.Title)
		}
	}
	return out
}

func TestGenerateWeek(t *testing.T) {
	// 2024-03-11 is a Monday.
	from := model.NewDate(2024, time.March, 11)
	to := model.NewDate(2024, time.March, 17)
	list := Generate(from, to, time.UTC)

	tests := []struct {
		day  int
		want []string
	}{
		{11, []string{"Team Meeting", "Project Review", "Pay Bills"}},
		{12, []string{"Client Call", "Gym"}},
		{13, []string{"Department Sync", "Lunch with Sarah"}},
		{14, []string{"Sprint Planning", "Code Review"}},
		{15, []string{"Weekly Standup", "Happy Hour", "John's Birthday"}},
		{16, []string{"Grocery Shopping", "Family Dinner"}},
		{17, []string{"Meal Prep"}},
	}
	for _, tt := range tests {
		got := titlesOn(list, model.NewDate(2024, time.March, tt.day))
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("March %d: got %v, want %v", tt.day, got, tt.want)
		}
	}
}

func TestGenerateIDsAndTimes(t *testing.T) {
	d := model.NewDate(2024, time.March, 11)
	list := Generate(d, d, time.UTC)
	if len(list) != 3 {
		t.Fatalf("got %d events", len(list))
	}
	for i, e := range list {
		if want := []string{"1", "2", "3"}[i]; e.ID != want {
			t.Errorf("event %d id = %q, want %q", i, e.ID, want)
		}
	}
	review := list[1]
	if review.Start.Hour() != 14 || review.End.Hour() != 15 || review.End.Minute() != 30 {
		t.Errorf("Project Review = %v - %v", review.Start, review.End)
	}
	if list[2].Category != model.Reminder {
		t.Errorf("Pay Bills category = %v", list[2].Category)
	}
}

func TestGenerateHolidaysAndBirthdays(t *testing.T) {
	tests := []struct {
		date  model.Date
		title string
		cat   model.Category
	}{
		{model.NewDate(2024, time.December, 25), "Christmas Day", model.Holiday},
		{model.NewDate(2025, time.January, 1), "New Year's Day", model.Holiday},
		{model.NewDate(2024, time.July, 4), "Independence Day", model.Holiday},
		{model.NewDate(2024, time.April, 5), "Mom's Birthday", model.Birthday},
	}
	for _, tt := range tests {
		list := Generate(tt.date, tt.date, time.UTC)
		found := false
		for _, e := range list {
			if e.Title == tt.title {
				found = true
				if e.Category != tt.cat || e.Start.Hour() != 0 || e.End.Hour() != 23 || e.End.Minute() != 59 {
					t.Errorf("%s: %+v", tt.title, e)
				}
			}
		}
		if !found {
			t.Errorf("%s missing on %s", tt.title, tt.date)
		}
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	from := model.NewDate(2024, time.January, 1)
	to := model.NewDate(2024, time.March, 31)
	if !reflect.DeepEqual(Generate(from, to, time.UTC), Generate(from, to, time.UTC)) {
		t.Fatal("two runs differ")
	}
	if got := Generate(to, from, time.UTC); len(got) != 0 {
		t.Fatalf("reversed range produced %d events", len(got))
	}
}

func TestGenerateUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	d := model.NewDate(2024, time.March, 12)
	list := Generate(d, d, loc)
	if len(list) == 0 || list[0].Start.Location() != loc {
		t.Fatal("events not generated in the requested location")
	}
	if !list[0].StartDate().Equal(d) {
		t.Fatalf("start date = %s", list[0].StartDate())
	}
}
