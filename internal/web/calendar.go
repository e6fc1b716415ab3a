package web

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	appLog "cleancal/internal/log"
	"cleancal/internal/model"
	"cleancal/internal/pager"
)

//go:embed templates/calendar.html
var templatesFS embed.FS

const minutesPerDay = 24 * 60

var calendarTmpl = template.Must(template.New("calendar.html").Funcs(template.FuncMap{
	"clock": func(t time.Time) string { return t.Format("15:04") },
	"dots": func(evs []model.CalendarEvent) []model.CalendarEvent {
		return evs[:min(len(evs), pager.MaxMonthDots)]
	},
	"extra": func(evs []model.CalendarEvent) int {
		return max(len(evs)-pager.MaxMonthDots, 0)
	},
	"top": func(e model.CalendarEvent) float64 {
		return percentOfDay(e.Start.Hour()*60 + e.Start.Minute())
	},
	"height": func(e model.CalendarEvent) float64 {
		startMin := e.Start.Hour()*60 + e.Start.Minute()
		mins := min(int(e.Duration().Minutes()), minutesPerDay-startMin)
		return max(percentOfDay(mins), 2)
	},
	"css": func(s string) template.CSS { return template.CSS(s) },
	// isToday is replaced per request.
	"isToday": func(model.Date) bool { return false },
}).ParseFS(templatesFS, "templates/calendar.html"))

func percentOfDay(minutes int) float64 {
	return float64(minutes) * 100 / minutesPerDay
}

var weekdays = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

type viewLink struct {
	View   model.ViewType
	Label  string
	Active bool
}

type calendarPage struct {
	Page     pager.Page
	Grid     bool
	Month    bool
	Rows     [][]*model.Cell
	Weekdays []string

	Prev, Next, Start model.PageIndex
	Views             []viewLink
}

// handleCalendar renders a page as HTML. ?view= switches the layout first
// (without touching the stored default); ?page= / ?offset= pick the page.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	if v := r.URL.Query().Get("view"); v != "" {
		view, err := model.ParseViewType(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.ctrl.SwitchViewType(view)
	}

	idx, err := s.pageParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	p := s.ctrl.Page(idx)

	data := calendarPage{
		Page:     p,
		Grid:     p.View == model.TwoWeek || p.View == model.Month,
		Month:    p.View == model.Month,
		Weekdays: weekdays,
		Prev:     idx - 1,
		Next:     idx + 1,
		Start:    s.ctrl.StartPage(),
	}
	if data.Grid {
		data.Rows = p.Rows()
		if p.View == model.TwoWeek {
			data.Weekdays = rotate(weekdays, int(p.Window.Start.Weekday()))
		}
	}
	for _, v := range model.ViewTypes() {
		data.Views = append(data.Views, viewLink{View: v, Label: v.Label(), Active: v == p.View})
	}

	anchor := s.ctrl.Anchor()
	tmpl, err := calendarTmpl.Clone()
	if err != nil {
		appLog.Error("calendar template clone failed", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	tmpl.Funcs(template.FuncMap{"isToday": anchor.Equal})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		appLog.Error("calendar render failed", err, "page", idx)
	}
}

// rotate returns names starting at index first.
func rotate(names []string, first int) []string {
	out := make([]string, 0, len(names))
	for i := range names {
		out = append(out, names[(first+i)%len(names)])
	}
	return out
}
