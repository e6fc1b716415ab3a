// Package sample generates the deterministic placeholder events shown when
// no calendar is connected or a fetch comes back empty.
package sample

import (
	"strconv"
	"time"

	"cleancal/internal/model"
)

type slot struct {
	title      string
	start, end [2]int // hour, minute
	category   model.Category
}

var allDay = [2][2]int{{0, 0}, {23, 59}}

func day(title string, cat model.Category) slot {
	return slot{title: title, start: allDay[0], end: allDay[1], category: cat}
}

var weekly = map[time.Weekday][]slot{
	time.Monday: {
		{"Team Meeting", [2]int{9, 0}, [2]int{10, 0}, model.Work},
		{"Project Review", [2]int{14, 0}, [2]int{15, 30}, model.Work},
	},
	time.Tuesday: {
		{"Client Call", [2]int{10, 0}, [2]int{11, 0}, model.Work},
		{"Gym", [2]int{18, 0}, [2]int{19, 0}, model.Personal},
	},
	time.Wednesday: {
		{"Department Sync", [2]int{11, 0}, [2]int{12, 0}, model.Work},
		{"Lunch with Sarah", [2]int{12, 30}, [2]int{13, 30}, model.Personal},
	},
	time.Thursday: {
		{"Sprint Planning", [2]int{9, 0}, [2]int{10, 30}, model.Work},
		{"Code Review", [2]int{15, 0}, [2]int{16, 0}, model.Work},
	},
	time.Friday: {
		{"Weekly Standup", [2]int{9, 30}, [2]int{10, 0}, model.Work},
		{"Happy Hour", [2]int{17, 0}, [2]int{19, 0}, model.Personal},
	},
	time.Saturday: {
		{"Grocery Shopping", [2]int{10, 0}, [2]int{11, 30}, model.Personal},
		{"Family Dinner", [2]int{18, 0}, [2]int{20, 0}, model.Personal},
	},
	time.Sunday: {
		{"Meal Prep", [2]int{10, 0}, [2]int{12, 0}, model.Personal},
	},
}

var birthdays = map[int]slot{
	5:  day("Mom's Birthday", model.Birthday),
	15: day("John's Birthday", model.Birthday),
}

var payBills = slot{"Pay Bills", [2]int{8, 0}, [2]int{8, 30}, model.Reminder}

type monthDay struct {
	month time.Month
	day   int
}

var holidays = map[monthDay]slot{
	{time.December, 25}: day("Christmas Day", model.Holiday),
	{time.January, 1}:   day("New Year's Day", model.Holiday),
	{time.July, 4}:      day("Independence Day", model.Holiday),
}

// Generate returns the sample events for every day in [from, to], both ends
// inclusive, with wall-clock times in loc. IDs count up from "1" in
// generation order, so the same range always yields the same events.
func Generate(from, to model.Date, loc *time.Location) []model.CalendarEvent {
	if loc == nil {
		loc = time.Local
	}

	var out []model.CalendarEvent
	id := 1
	add := func(d model.Date, s slot) {
		start := time.Date(d.Year(), d.Month(), d.Day(), s.start[0], s.start[1], 0, 0, loc)
		end := time.Date(d.Year(), d.Month(), d.Day(), s.end[0], s.end[1], 0, 0, loc)
		out = append(out, model.NewEvent(strconv.Itoa(id), s.title, start, end, s.category, ""))
		id++
	}

	for d := from; !d.After(to); d = d.AddDays(1) {
		for _, s := range weekly[d.Weekday()] {
			add(d, s)
		}
		if s, ok := birthdays[d.Day()]; ok {
			add(d, s)
		}
		if d.Weekday() == time.Monday {
			add(d, payBills)
		}
		if s, ok := holidays[monthDay{d.Month(), d.Day()}]; ok {
			add(d, s)
		}
	}
	return out
}
