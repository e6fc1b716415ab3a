package pager

import (
	"fmt"

	"cleancal/internal/events"
	"cleancal/internal/model"
)

// MaxMonthDots is how many category markers a month cell shows. Renderers
// may use it; the cells themselves are never truncated.
const MaxMonthDots = 5

// Page is everything a render surface needs to draw one page.
type Page struct {
	View   model.ViewType   `json:"view"`
	Index  model.PageIndex  `json:"page"`
	Title  string           `json:"title"`
	Window model.DateWindow `json:"window"`
	Cells  []model.Cell     `json:"cells"`

	// LeadingBlanks pads a month grid so that day 1 lands under its weekday
	// column (Sunday first). Zero for the other views.
	LeadingBlanks int `json:"leading_blanks"`

	// Hours labels the 24-hour axis of the day views.
	Hours []string `json:"hours,omitempty"`

	Origin events.Origin `json:"origin"`
}

// LayOut returns one cell per day of w. Each cell holds the events whose
// start falls on that day, in store order. Events spanning several days
// appear on their start day only.
func LayOut(w model.DateWindow, store *events.Store) []model.Cell {
	cells := make([]model.Cell, 0, w.Length)
	for _, d := range w.Days() {
		cells = append(cells, model.Cell{
			Date:   d,
			Events: store.OnDate(d),
		})
	}
	return cells
}

// LeadingBlanks is the weekday of the first of w's month, Sunday = 0.
func LeadingBlanks(w model.DateWindow) int {
	return int(w.Start.FirstOfMonth().Weekday()) % 7
}

// HourLabels returns "00:00" through "23:00".
func HourLabels() []string {
	hours := make([]string, 24)
	for h := range hours {
		hours[h] = fmt.Sprintf("%02d:00", h)
	}
	return hours
}

// Build lays out page under view.
func Build(view model.ViewType, page model.PageIndex, anchor model.Date, store *events.Store) Page {
	w := WindowFor(view, page, anchor)
	p := Page{
		View:   view,
		Index:  page,
		Title:  Title(view, w),
		Window: w,
		Cells:  LayOut(w, store),
		Origin: store.Origin(),
	}

	switch view {
	case model.OneDay, model.ThreeDay:
		p.Hours = HourLabels()
	case model.TwoWeek:
	case model.Month:
		p.LeadingBlanks = LeadingBlanks(w)
	}
	return p
}

// Title is the page header text.
func Title(view model.ViewType, w model.DateWindow) string {
	switch view {
	case model.OneDay:
		return w.Start.Format("Monday, January 2, 2006")
	case model.ThreeDay:
		return w.Start.Format("Jan 2") + " - " + w.Last().Format("Jan 2")
	case model.TwoWeek:
		return w.Start.Format("Jan 2, 2006") + " - " + w.Last().Format("Jan 2, 2006")
	case model.Month:
		return w.Start.Format("January 2006")
	}
	return w.Start.String()
}

// GridCells is the total number of slots of a month grid.
func (p Page) GridCells() int {
	return p.LeadingBlanks + len(p.Cells)
}

// Rows splits the page into rows of seven slots for grid renderers. Month
// pages get blank (nil) slots before day 1 and after the last day; the other
// views are chunked as they are.
func (p Page) Rows() [][]*model.Cell {
	slots := make([]*model.Cell, 0, p.GridCells()+6)
	for i := 0; i < p.LeadingBlanks; i++ {
		slots = append(slots, nil)
	}
	for i := range p.Cells {
		slots = append(slots, &p.Cells[i])
	}
	if p.View == model.Month {
		for len(slots)%7 != 0 {
			slots = append(slots, nil)
		}
	}

	var rows [][]*model.Cell
	for len(slots) > 0 {
		n := min(7, len(slots))
		rows = append(rows, slots[:n])
		slots = slots[n:]
	}
	return rows
}
