package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/sim"
)

var (
	menuCursor = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuActive = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuDesc   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	menuIdle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
)

const (
	stateMenu = iota
	stateSim
)

// Menu lists the built-in scenarios and opens the live view on the
// selected one.
type Menu struct {
	state     int
	cursor    int
	scenarios []string
	simOpts   sim.Options
	liveOpts  LiveOptions
	live      LiveModel
	err       error
	width     int
	height    int
}

func NewMenu(simOpts sim.Options, liveOpts LiveOptions) Menu {
	return Menu{
		scenarios: config.ListScenarios(),
		simOpts:   simOpts,
		liveOpts:  liveOpts,
	}
}

func (m Menu) Init() tea.Cmd { return nil }

func (m Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
			m.state = stateMenu
			return m, nil
		}
		if ws, ok := msg.(tea.WindowSizeMsg); ok {
			m.width, m.height = ws.Width, ws.Height
		}
		next, cmd := m.live.Update(msg)
		m.live = next.(LiveModel)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.scenarios)-1 {
				m.cursor++
			}
		case "enter", " ":
			return m.start()
		}
	}
	return m, nil
}

// start builds a fresh simulation for the highlighted scenario.
func (m Menu) start() (tea.Model, tea.Cmd) {
	name := m.scenarios[m.cursor]
	sc, err := config.GetScenario(name)
	if err != nil {
		m.err = err
		return m, nil
	}
	s, err := sim.New(m.simOpts)
	if err != nil {
		m.err = err
		return m, nil
	}
	if err := s.LoadScenario(sc.Bodies); err != nil {
		m.err = err
		return m, nil
	}

	m.err = nil
	m.live = NewLiveModel(s, name, m.liveOpts)
	if m.width > 0 {
		next, _ := m.live.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
		m.live = next.(LiveModel)
	}
	m.state = stateSim
	return m, m.live.Init()
}

func (m Menu) View() string {
	if m.state == stateSim {
		return m.live.View()
	}

	var b strings.Builder
	b.WriteString("\n\n    " + Title.Render("GRAVSIM") + "\n    " + Subtle.Render("n-body gravity") + "\n    " + Separator(25) + "\n\n")
	for i, name := range m.scenarios {
		desc := config.Scenarios[name].Description
		if len(desc) > 40 {
			desc = desc[:37] + "..."
		}
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", menuCursor.Render("▸"), menuActive.Render(fmt.Sprintf("%-16s", name)), menuDesc.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", menuIdle.Render(fmt.Sprintf("%-16s", name)), Subtle.Render(desc)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + StatusError.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + Hints("j/k", "navigate", "enter", "select", "esc", "back", "q", "quit") + "\n")
	return b.String()
}

// RunInteractive opens the scenario menu.
func RunInteractive(simOpts sim.Options, liveOpts LiveOptions) error {
	_, err := tea.NewProgram(NewMenu(simOpts, liveOpts), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
