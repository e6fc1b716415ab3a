// Package pager maps the virtual page axis onto calendar windows, lays events
// out into per-day cells and tracks which page and view are on screen.
package pager

import (
	"fmt"

	"cleancal/internal/model"
)

// WindowFor returns the window shown at page for the given view, with the
// center page anchored on anchor. It is total over every page index.
//
//   - OneDay, ThreeDay, TwoWeek: anchor + (page-center)*stride days
//   - Month: first of anchor's month shifted by (page-center) months
func WindowFor(view model.ViewType, page model.PageIndex, anchor model.Date) model.DateWindow {
	offset := int(page - model.CenterIndex)

	switch view {
	case model.OneDay, model.ThreeDay, model.TwoWeek:
		stride := view.StrideDays()
		return model.DateWindow{
			Start:  anchor.AddDays(offset * stride),
			Length: stride,
		}
	case model.Month:
		start := anchor.AddMonths(offset)
		return model.DateWindow{
			Start:  start,
			Length: start.DaysInMonth(),
		}
	}
	panic(fmt.Sprintf("pager: unhandled view type %v", view))
}

// PageFor is the inverse of WindowFor: it returns the page whose window
// contains d.
func PageFor(view model.ViewType, d model.Date, anchor model.Date) model.PageIndex {
	switch view {
	case model.OneDay, model.ThreeDay, model.TwoWeek:
		return model.CenterIndex + model.PageIndex(floorDiv(anchor.DaysUntil(d), view.StrideDays()))
	case model.Month:
		return model.CenterIndex + model.PageIndex(anchor.MonthsUntil(d))
	}
	panic(fmt.Sprintf("pager: unhandled view type %v", view))
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
