package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sydleither/spatial-egt/internal/experiment"
	"github.com/sydleither/spatial-egt/internal/sim"
	"github.com/sydleither/spatial-egt/internal/storage"
)

// Runs browser layout constants
const (
	maxRuns       = 200 // Max runs to load
	detailLines   = 6   // Lines reserved below the table
	runsChromeTop = 2   // Title and blank line
)

var detailStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240")).
	Padding(0, 1)

// RunsModel is the Bubble Tea model for browsing stored runs.
type RunsModel struct {
	store    *storage.Store
	runs     []storage.Run
	table    table.Model
	help     help.Model
	keys     RunsKeyMap
	detail   string
	width    int
	height   int
	quitting bool
	err      error
}

// NewRunsModel loads the most recent runs from store.
func NewRunsModel(store *storage.Store, width, height int) RunsModel {
	m := RunsModel{
		store:  store,
		help:   help.New(),
		keys:   DefaultRunsKeyMap(),
		width:  width,
		height: height,
	}

	runs, err := store.RecentRuns(maxRuns)
	if err != nil {
		m.err = err
	}
	m.runs = runs
	m.table = m.createTable()
	m.refreshDetail()

	return m
}

// createTable creates the runs table with one row per run.
func (m *RunsModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Experiment", Width: max(m.width-60, 16)},
		{Title: "Dim", Width: 4},
		{Title: "Rep", Width: 4},
		{Title: "Days", Width: 6},
		{Title: "Game", Width: 15},
		{Title: "Done", Width: 5},
	}

	rows := make([]table.Row, 0, len(m.runs))
	for _, r := range m.runs {
		done := "no"
		if r.Completed {
			done = "yes"
		}
		rows = append(rows, table.Row{
			strconv.FormatInt(r.ID, 10),
			r.ExpDir + "/" + r.ExpName,
			r.Dimension,
			r.Rep,
			strconv.Itoa(r.NumDays),
			r.Game,
			done,
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-runsChromeTop-detailLines-2, 3)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// Selected returns the run under the cursor, or nil when there are none.
func (m RunsModel) Selected() *storage.Run {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.runs) {
		return nil
	}
	return &m.runs[i]
}

// refreshDetail recomputes the summary of the selected run.
func (m *RunsModel) refreshDetail() {
	r := m.Selected()
	if r == nil {
		m.detail = "no runs recorded"
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "run %d  seed %d  created %s  took %s\n",
		r.ID, r.Seed, r.CreatedAt.Format("2006-01-02 15:04"), r.Duration)

	series, err := m.store.Series(r.ID)
	if err != nil {
		b.WriteString("cannot load populations: " + err.Error())
		m.detail = b.String()
		return
	}
	if len(series) > 0 {
		last := series[len(series)-1]
		fmt.Fprintf(&b, "final day %d:", last.Tick)
		for _, p := range sim.Policies {
			c := last.Of(p)
			fmt.Fprintf(&b, "  %s S%d R%d", p, c.Sensitive, c.Resistant)
		}
		b.WriteString("\n")
	}

	b.WriteString("progression:")
	for _, p := range sim.Policies {
		tick, ok := experiment.ProgressionTime(series, p, experiment.ProgressionFactor)
		if ok {
			fmt.Fprintf(&b, "  %s day %d", p, tick)
		} else {
			fmt.Fprintf(&b, "  %s never", p)
		}
	}

	m.detail = b.String()
}

// Init satisfies tea.Model.
func (m RunsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model state.
func (m RunsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		cursor := m.table.Cursor()
		m.table = m.createTable()
		m.table.SetCursor(cursor)
		m.help.Width = msg.Width
		return m, nil
	}

	prev := m.table.Cursor()
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	if m.table.Cursor() != prev {
		m.refreshDetail()
	}
	return m, cmd
}

// View renders the runs browser.
func (m RunsModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Recorded runs"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString("Error: " + m.err.Error() + "\n")
	}
	b.WriteString(m.table.View())
	b.WriteString("\n")
	b.WriteString(detailStyle.Width(max(m.width-4, 20)).Render(m.detail))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// Detail returns the summary text of the selected run.
func (m RunsModel) Detail() string {
	return m.detail
}

// RunRuns starts the runs browser in the terminal.
func RunRuns(store *storage.Store, width, height int) error {
	p := tea.NewProgram(
		NewRunsModel(store, width, height),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
