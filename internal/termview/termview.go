// Package termview draws a laid-out page for the terminal.
package termview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"cleancal/internal/events"
	"cleancal/internal/model"
	"cleancal/internal/pager"
)

var (
	muted   = lipgloss.Color("#9E9E9E")
	primary = lipgloss.Color("#1565C0")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(primary).Padding(0, 1)
	originStyle = lipgloss.NewStyle().Foreground(muted).Italic(true)
	headStyle   = lipgloss.NewStyle().Foreground(muted).Align(lipgloss.Center)
	hourStyle   = lipgloss.NewStyle().Foreground(muted).Width(6)
	todayStyle  = lipgloss.NewStyle().Bold(true).Foreground(primary)
	blankStyle  = lipgloss.NewStyle().Foreground(muted)
)

var weekdays = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

type Options struct {
	// CellWidth is the width of one grid cell or day column.
	CellWidth int
	// Today is highlighted when it is on the page.
	Today model.Date
}

func (o Options) cellWidth(view model.ViewType) int {
	if o.CellWidth > 0 {
		return o.CellWidth
	}
	switch view {
	case model.OneDay:
		return 40
	case model.ThreeDay:
		return 24
	}
	return 14
}

// FitCellWidth picks a cell width so a page of view fills cols terminal
// columns. It returns 0 (the per-view default) when cols is unknown.
func FitCellWidth(view model.ViewType, cols int) int {
	if cols <= 0 {
		return 0
	}
	avail := cols - 2
	var w int
	switch view {
	case model.OneDay, model.ThreeDay:
		w = (avail - hourStyle.GetWidth()) / view.StrideDays()
	default:
		w = avail / 7
	}
	return max(w, 8)
}

// Render draws p: grids for Month and TwoWeek, hour rows for the day views.
func Render(p pager.Page, opts Options) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(p.Title))
	if p.Origin == events.OriginSample {
		b.WriteString(originStyle.Render("  (sample events)"))
	}
	b.WriteString("\n\n")

	w := opts.cellWidth(p.View)
	switch p.View {
	case model.Month, model.TwoWeek:
		b.WriteString(renderGrid(p, w, opts.Today))
	default:
		b.WriteString(renderDays(p, w, opts.Today))
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(b.String())
}

func renderGrid(p pager.Page, w int, today model.Date) string {
	first := 0
	if p.View != model.Month && len(p.Cells) > 0 {
		first = int(p.Cells[0].Date.Weekday())
	}

	head := make([]string, 7)
	for i := range head {
		head[i] = headStyle.Width(w).Render(weekdays[(first+i)%7])
	}

	rows := []string{lipgloss.JoinHorizontal(lipgloss.Top, head...)}
	for _, row := range p.Rows() {
		cells := make([]string, 0, 7)
		for _, c := range row {
			cells = append(cells, renderCell(p.View, c, w, today))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func cellStyle(w int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(w).
		Height(3).
		Border(lipgloss.NormalBorder(), false, true, true, false).
		BorderForeground(muted)
}

func renderCell(view model.ViewType, c *model.Cell, w int, today model.Date) string {
	style := cellStyle(w - 1)
	if c == nil {
		return style.Render(blankStyle.Render(""))
	}

	num := fmt.Sprintf("%2d", c.Date.Day())
	if c.Date.Equal(today) {
		num = todayStyle.Render(num)
	}

	lines := []string{num}
	if view == model.Month {
		lines = append(lines, dots(c.Events))
	} else {
		for i, e := range c.Events {
			if i == 2 {
				lines = append(lines, blankStyle.Render(fmt.Sprintf("+%d more", len(c.Events)-2)))
				break
			}
			lines = append(lines, eventLine(e, w-2))
		}
	}
	return style.Render(strings.Join(lines, "\n"))
}

// dots draws one marker per event, capped at pager.MaxMonthDots.
func dots(evs []model.CalendarEvent) string {
	var b strings.Builder
	for i, e := range evs {
		if i == pager.MaxMonthDots {
			b.WriteString(blankStyle.Render(fmt.Sprintf("+%d", len(evs)-pager.MaxMonthDots)))
			break
		}
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(e.Category.Hex())).Render("●"))
	}
	return b.String()
}

func eventLine(e model.CalendarEvent, w int) string {
	bar := lipgloss.NewStyle().Foreground(lipgloss.Color(e.Category.Hex())).Render("▎")
	return bar + truncate(e.Title, w-1)
}

func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	if w == 1 {
		return "…"
	}
	return string(r[:w-1]) + "…"
}

// renderDays draws one column per day and one row per hour. An event sits
// in the row of its start hour.
func renderDays(p pager.Page, w int, today model.Date) string {
	colStyle := lipgloss.NewStyle().Width(w).PaddingLeft(1)

	header := []string{hourStyle.Render("")}
	for _, c := range p.Cells {
		label := c.Date.Format("Mon Jan 2")
		if c.Date.Equal(today) {
			label = todayStyle.Render(label)
		}
		header = append(header, colStyle.Render(label))
	}
	rows := []string{lipgloss.JoinHorizontal(lipgloss.Top, header...)}

	hours := p.Hours
	if len(hours) == 0 {
		hours = pager.HourLabels()
	}
	for h, label := range hours {
		line := []string{hourStyle.Render(label)}
		for _, c := range p.Cells {
			var entries []string
			for _, e := range c.Events {
				if e.Start.Hour() == h {
					entries = append(entries, eventLine(e, w-1))
				}
			}
			line = append(line, colStyle.Render(strings.Join(entries, "\n")))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, line...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
