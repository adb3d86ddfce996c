package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sydleither/spatial-egt/internal/config"
	"github.com/sydleither/spatial-egt/internal/core"
	"github.com/sydleither/spatial-egt/internal/experiment"
	"github.com/sydleither/spatial-egt/internal/sim"
)

// Viewer layout constants
const (
	headerLines = 2 // Title and per-model counts
	footerLines = 2 // Progress bar and help
	maxSpeed    = 64
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	drugOnStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	sensStyle   = colorStyles[core.ColorPink]
	resStyle    = colorStyles[core.ColorSeaGreen]
)

// WatchModel is the Bubble Tea model for watching the three policy models
// of an experiment evolve live.
type WatchModel struct {
	exp      *config.Experiment
	topology string
	config   core.RuntimeConfig
	models   experiment.Models
	screen   *core.Screen
	keys     WatchKeyMap
	help     help.Model
	progress progress.Model
	day      int
	speed    int // Days simulated per tick
	paused   bool
	quitting bool
	err      error
}

// NewWatchModel builds the models of exp on topology and returns a viewer.
func NewWatchModel(exp *config.Experiment, topology string, cfg core.RuntimeConfig) (WatchModel, error) {
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	models, err := experiment.Build(exp, topology, cfg.Seed)
	if err != nil {
		return WatchModel{}, err
	}

	m := WatchModel{
		exp:      exp,
		topology: topology,
		config:   cfg,
		models:   models,
		screen:   core.NewScreen(cfg.ScreenW, max(cfg.ScreenH-headerLines-footerLines, 1)),
		keys:     DefaultWatchKeyMap(),
		help:     help.New(),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		speed:    1,
	}
	m.resize(cfg.ScreenW, cfg.ScreenH)
	return m, nil
}

// Init starts the tick loop.
func (m WatchModel) Init() tea.Cmd {
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case TickMsg:
		if !m.paused {
			m.advance(m.speed)
		}
		return m, tickCmd(m.config.TickRate)
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m WatchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused

	case key.Matches(msg, m.keys.Step):
		m.advance(1)

	case key.Matches(msg, m.keys.Faster):
		m.speed = min(m.speed*2, maxSpeed)

	case key.Matches(msg, m.keys.Slower):
		m.speed = max(m.speed/2, 1)

	case key.Matches(msg, m.keys.Restart):
		m.config.Seed = time.Now().UnixNano()
		models, err := experiment.Build(m.exp, m.topology, m.config.Seed)
		if err != nil {
			m.err = err
			m.quitting = true
			return m, tea.Quit
		}
		m.models = models
		m.day = 0

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

// advance simulates up to n days, stopping at the end of the experiment.
func (m *WatchModel) advance(n int) {
	for i := 0; i < n && m.day < m.exp.NumDays; i++ {
		for _, model := range m.models {
			model.Step()
		}
		m.day++
	}
}

func (m *WatchModel) resize(width, height int) {
	m.config.ScreenW = width
	m.config.ScreenH = height
	m.screen.Resize(width, max(height-headerLines-footerLines, 1))
	m.progress.Width = max(width-12, 10)
	m.help.Width = width
}

// Day returns the number of simulated days.
func (m WatchModel) Day() int {
	return m.day
}

// Paused reports whether the viewer is paused.
func (m WatchModel) Paused() bool {
	return m.paused
}

// Speed returns the days simulated per tick.
func (m WatchModel) Speed() int {
	return m.speed
}

// Models returns the models being viewed.
func (m WatchModel) Models() experiment.Models {
	return m.models
}

// Err returns the error that ended the session, if any.
func (m WatchModel) Err() error {
	return m.err
}

// View renders the current state to a string for display.
func (m WatchModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	status := fmt.Sprintf("day %d/%d  x%d  seed %d", m.day, m.exp.NumDays, m.speed, m.config.Seed)
	if m.paused {
		status += "  [paused]"
	}
	b.WriteString(titleStyle.Render(m.topology+" null vs adaptive vs continuous") + "  " + mutedStyle.Render(status))
	b.WriteString("\n")
	b.WriteString(m.countsLine())
	b.WriteString("\n")

	m.screen.Clear()
	DrawModels(m.screen, m.models, core.NewRect(0, 0, m.screen.Width(), m.screen.Height()))
	b.WriteString(RenderScreen(m.screen))
	b.WriteString("\n")

	done := float64(m.day) / float64(max(m.exp.NumDays, 1))
	b.WriteString(m.progress.ViewAs(done))
	b.WriteString(mutedStyle.Render(fmt.Sprintf(" %3.0f%%", done*100)))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// countsLine summarises each model's population and drug state.
func (m WatchModel) countsLine() string {
	parts := make([]string, 0, len(m.models))
	for i, model := range m.models {
		c := model.Counts()
		part := fmt.Sprintf("%s %s %s", sim.Policies[i],
			sensStyle.Render(fmt.Sprintf("S:%d", c.Sensitive)),
			resStyle.Render(fmt.Sprintf("R:%d", c.Resistant)))
		if model.DrugOn() {
			part += " " + drugOnStyle.Render("drug")
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "   ")
}

// RunWatch starts the live viewer in the terminal.
func RunWatch(exp *config.Experiment, topology string, cfg core.RuntimeConfig) error {
	model, err := NewWatchModel(exp, topology, cfg)
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	final, err := p.Run()
	if err != nil {
		return err
	}
	if wm, ok := final.(WatchModel); ok && wm.Err() != nil {
		return wm.Err()
	}
	return nil
}
