package termview

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cleancal/internal/model"
	"cleancal/internal/pager"
)

var (
	helpStyle   = lipgloss.NewStyle().Foreground(muted).Padding(0, 1)
	statusStyle = lipgloss.NewStyle().Foreground(primary).Padding(0, 1)
)

const helpText = "←/→ page · t today · 1 day · 3 three days · 2 two weeks · m month · r refresh · q quit"

// RefreshFunc reloads events into the controller and reports whether it
// ran.
type RefreshFunc func(ctx context.Context) bool

type refreshedMsg struct {
	ran  bool
	took time.Duration
}

// Model is an interactive pager over a Controller.
type Model struct {
	ctrl    *pager.Controller
	loc     *time.Location
	refresh RefreshFunc

	cols    int
	status  string
	loading bool
}

// NewModel wraps ctrl. refresh may be nil, which disables the r key.
func NewModel(ctrl *pager.Controller, loc *time.Location, refresh RefreshFunc) Model {
	if loc == nil {
		loc = time.Local
	}
	return Model{ctrl: ctrl, loc: loc, refresh: refresh}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols = msg.Width

	case refreshedMsg:
		m.loading = false
		if msg.ran {
			m.status = fmt.Sprintf("refreshed in %s", msg.took.Round(time.Millisecond))
		} else {
			m.status = "refresh already running"
		}

	case tea.KeyMsg:
		m.status = ""
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h", "pgup":
			m.ctrl.Scroll(-1)
		case "right", "l", "pgdown", " ":
			m.ctrl.Scroll(1)
		case "t", "home":
			m.ctrl.JumpTo(model.Today(m.loc))
		case "1":
			m.ctrl.SwitchViewType(model.OneDay)
		case "3":
			m.ctrl.SwitchViewType(model.ThreeDay)
		case "2", "w":
			m.ctrl.SwitchViewType(model.TwoWeek)
		case "m", "4":
			m.ctrl.SwitchViewType(model.Month)
		case "r":
			if m.refresh != nil && !m.loading {
				m.loading = true
				m.status = "refreshing..."
				return m, m.refreshCmd()
			}
		}
	}
	return m, nil
}

func (m Model) refreshCmd() tea.Cmd {
	refresh := m.refresh
	return func() tea.Msg {
		started := time.Now()
		ran := refresh(context.Background())
		return refreshedMsg{ran: ran, took: time.Since(started)}
	}
}

func (m Model) View() string {
	p := m.ctrl.CurrentPageLayout()

	var b strings.Builder
	b.WriteString(Render(p, Options{
		CellWidth: FitCellWidth(p.View, m.cols),
		Today:     model.Today(m.loc),
	}))
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(helpText))
	return b.String()
}

// Run starts the interactive pager on the alternate screen and blocks
// until the user quits.
func Run(ctx context.Context, m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
