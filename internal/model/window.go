package model

// PageIndex is a position on the virtual paging axis. One unit is one window
// of the active view type.
type PageIndex int64

const (
	// PageCount bounds the virtual axis. At two-week stride the center sits
	// about twenty million years from either edge, so scrolling never gets
	// there in practice and no wraparound is handled.
	PageCount PageIndex = 1 << 30

	// CenterIndex is the page showing the anchor date.
	CenterIndex = PageCount / 2
)

// DateWindow is a contiguous run of days shown by one page.
type DateWindow struct {
	Start  Date `json:"start"`
	Length int  `json:"length"`
}

// End is the first day after the window.
func (w DateWindow) End() Date {
	return w.Start.AddDays(w.Length)
}

// Last is the final day inside the window.
func (w DateWindow) Last() Date {
	return w.Start.AddDays(w.Length - 1)
}

func (w DateWindow) Contains(d Date) bool {
	return !d.Before(w.Start) && d.Before(w.End())
}

// Days lists every day of the window in order.
func (w DateWindow) Days() []Date {
	days := make([]Date, w.Length)
	for i := range days {
		days[i] = w.Start.AddDays(i)
	}
	return days
}

// Cell holds the events that start on Date, ordered by start time.
type Cell struct {
	Date   Date            `json:"date"`
	Events []CalendarEvent `json:"events"`
}
