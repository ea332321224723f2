// internal/tui/app.go
//
// Interactive browser over a dataset resolution. It uses bubbletea, which
// follows The Elm Architecture:
//
// 1. Model: the resolution and the table showing one view of it
// 2. Update: key presses switch views or move the cursor
// 3. View: the table, the paths of the selected row and a footer
//
// When stdout is not a terminal, Summary renders the same information once.

package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tzwi/fcncmva/internal/dataset"
)

type view int

const (
	viewSignal view = iota
	viewBackground
	viewSkipped
	numViews
)

func (v view) title() string {
	switch v {
	case viewSignal:
		return "Signal"
	case viewBackground:
		return "Background"
	default:
		return "Skipped"
	}
}

const maxPathLines = 6

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B")).MarginBottom(1)
	tabStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B"))

	activeTab = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF")).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(lipgloss.Color("#5B8DEF")).
			Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

// Option customizes the browser.
type Option func(*App)

// WithTitle sets the header line.
func WithTitle(title string) Option {
	return func(a *App) {
		if strings.TrimSpace(title) != "" {
			a.title = title
		}
	}
}

// WithNote adds a line under the header, for example the split quota.
func WithNote(note string) Option {
	return func(a *App) {
		a.note = strings.TrimSpace(note)
	}
}

// App is the browser model.
type App struct {
	result dataset.Result
	title  string
	note   string

	current view
	table   table.Model

	width  int
	height int
}

// NewApp creates a browser over res, starting on the signal view.
func NewApp(res dataset.Result, opts ...Option) *App {
	t := table.New(table.WithFocused(true), table.WithHeight(12))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#5B8DEF"))
	t.SetStyles(styles)

	a := &App{result: res, title: "FCNC dataset resolution", table: t}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	a.showView(viewSignal)
	return a
}

// Run starts the interactive program.
func Run(res dataset.Result, opts ...Option) error {
	_, err := tea.NewProgram(NewApp(res, opts...), tea.WithAltScreen()).Run()
	return err
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.table.SetWidth(max(20, msg.Width-4))
		a.table.SetHeight(max(3, msg.Height-maxPathLines-12))
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return a, tea.Quit
		case "tab":
			a.showView((a.current + 1) % numViews)
			return a, nil
		case "shift+tab":
			a.showView((a.current + numViews - 1) % numViews)
			return a, nil
		}
	}

	var cmd tea.Cmd
	a.table, cmd = a.table.Update(msg)
	return a, cmd
}

func (a *App) showView(v view) {
	a.current = v
	// Rows must be cleared before the columns change or the table renders
	// rows against the wrong column count.
	a.table.SetRows(nil)
	a.table.SetColumns(columns(v))
	a.table.SetRows(rows(a.result, v))
	a.table.GotoTop()
}

// View implements tea.Model.
func (a *App) View() string {
	sections := []string{headerStyle.Render("⬡ " + a.title)}
	if a.note != "" {
		sections = append(sections, mutedStyle.Render(a.note))
	}
	sections = append(sections, a.renderTabs(), boxStyle.Render(a.table.View()))
	if detail := a.renderSelection(); detail != "" {
		sections = append(sections, detail)
	}
	sections = append(sections, mutedStyle.Render("tab: switch view · ↑/↓: move · q/esc: quit"))
	return strings.Join(sections, "\n")
}

func (a *App) renderTabs() string {
	tabs := make([]string, 0, numViews)
	for v := viewSignal; v < numViews; v++ {
		label := fmt.Sprintf("%s (%d)", v.title(), count(a.result, v))
		if v == a.current {
			tabs = append(tabs, activeTab.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)
}

func (a *App) renderSelection() string {
	entries := a.entries()
	idx := a.table.Cursor()
	if idx < 0 || idx >= len(entries) {
		return ""
	}
	e := entries[idx]
	lines := []string{mutedStyle.Render(e.Pattern)}
	if len(e.Paths) == 0 {
		lines = append(lines, warnStyle.Render("no directories match this pattern"))
	}
	for i, p := range e.Paths {
		if i == maxPathLines {
			lines = append(lines, mutedStyle.Render(fmt.Sprintf("… %d more", len(e.Paths)-maxPathLines)))
			break
		}
		lines = append(lines, p)
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (a *App) entries() []dataset.Entry {
	switch a.current {
	case viewSignal:
		return a.result.Signal
	case viewBackground:
		return a.result.Background
	}
	return nil
}

func count(res dataset.Result, v view) int {
	switch v {
	case viewSignal:
		return len(res.Signal)
	case viewBackground:
		return len(res.Background)
	}
	return len(res.Skipped)
}

func columns(v view) []table.Column {
	if v == viewSkipped {
		return []table.Column{
			{Title: "Mode", Width: 8},
			{Title: "Process", Width: 28},
			{Title: "Dataset group", Width: 48},
		}
	}
	return []table.Column{
		{Title: "Mode", Width: 8},
		{Title: "Process", Width: 24},
		{Title: "Match", Width: 10},
		{Title: "Dataset", Width: 52},
		{Title: "Dirs", Width: 5},
		{Title: "Weight", Width: 10},
	}
}

func rows(res dataset.Result, v view) []table.Row {
	if v == viewSkipped {
		out := make([]table.Row, 0, len(res.Skipped))
		for _, s := range res.Skipped {
			out = append(out, table.Row{s.Mode.String(), s.Process, s.DatasetGroup})
		}
		return out
	}
	entries := res.Signal
	if v == viewBackground {
		entries = res.Background
	}
	out := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryRow(e))
	}
	return out
}

func entryRow(e dataset.Entry) table.Row {
	return table.Row{
		e.Mode.String(),
		e.Process,
		e.Match,
		dataset.TransformName(e.DatasetName),
		strconv.Itoa(len(e.Paths)),
		strconv.FormatFloat(e.Weight, 'g', 6, 64),
	}
}
