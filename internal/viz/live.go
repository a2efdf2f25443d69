package viz

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/logging"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/sim"
)

const (
	width           = 80
	height          = 24
	panelWidth      = 40
	historyCapacity = 600
	maxStepsPerTick = 4096
)

// masses offered for bodies added from the keyboard or mouse
var addMasses = []float64{1e18, 1e20, 1e22, 1e24, 1e26}

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

type LiveOptions struct {
	StepsPerTick int
	Theme        string
	TrailLength  int
	// RecordPath is where 'g' writes the GIF. Empty means gravsim.gif.
	RecordPath string
	Logger     *logging.Logger
}

// LiveModel is a bubbletea model that drives a simulation at 60 ticks per
// second and draws it on a braille canvas next to a stats panel.
type LiveModel struct {
	sim     *sim.Simulation
	initial []dynamo.Body
	name    string
	log     *logging.Logger

	scene         *Scene
	width, height int
	cursorX       int
	cursorY       int
	follow        bool

	running      bool
	stepsPerTick int
	massIdx      int
	showHelp     bool

	e0       float64
	energy   []float64
	lastErr  error
	errCount int

	recorder   *Recorder
	recordPath string
}

// NewLiveModel wraps s. The current bodies of s become the state that
// reset returns to.
func NewLiveModel(s *sim.Simulation, name string, opts LiveOptions) LiveModel {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	spt := opts.StepsPerTick
	if spt <= 0 {
		spt = 1
	}
	path := opts.RecordPath
	if path == "" {
		path = "gravsim.gif"
	}

	scene := NewScene(width-panelWidth, height-2)
	scene.Theme = GetTheme(opts.Theme)
	if opts.TrailLength != 0 {
		scene.trailLen = opts.TrailLength
	}
	m := LiveModel{
		sim:          s,
		initial:      s.Snapshot(),
		name:         name,
		log:          log,
		scene:        scene,
		width:        width,
		height:       height,
		running:      true,
		follow:       true,
		stepsPerTick: spt,
		massIdx:      2,
		energy:       make([]float64, 0, historyCapacity),
		recordPath:   path,
	}
	m.centerCursor()
	m.fit()
	m.e0 = s.Energy()
	return m
}

func (m LiveModel) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.cursorX, m.cursorY = msg.X*2, (msg.Y-1)*4
			m.addBody(msg.Shift)
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.scene.Resize(max(msg.Width-panelWidth, 10), max(msg.Height-2, 4))
		m.centerCursor()
	case TickMsg:
		if m.running {
			m.step()
		}
		if m.recorder != nil {
			m.draw()
			m.recorder.Capture(m.scene.Canvas)
		}
		return m, tick()
	}
	return m, nil
}

func (m LiveModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cam := m.scene.Camera
	switch msg.String() {
	case "q", "ctrl+c":
		if m.recorder != nil {
			m.saveRecording()
		}
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "b":
		m.sim.SetBounce(!m.sim.Bounce())
	case "r":
		m.reset()
	case "c":
		m.follow = false
		m.fit()
	case "f":
		m.follow = !m.follow
	case "+", "=":
		cam.ZoomIn()
	case "-", "_":
		cam.ZoomOut()
	case "up", "k":
		m.cursorY -= 4
	case "down", "j":
		m.cursorY += 4
	case "left", "h":
		m.cursorX -= 2
	case "right", "l":
		m.cursorX += 2
	case "K":
		m.follow = false
		cam.Pan(0, -8)
	case "J":
		m.follow = false
		cam.Pan(0, 8)
	case "H":
		m.follow = false
		cam.Pan(-8, 0)
	case "L":
		m.follow = false
		cam.Pan(8, 0)
	case "a":
		m.addBody(false)
	case "A":
		m.addBody(true)
	case "m":
		m.massIdx = (m.massIdx + 1) % len(addMasses)
	case ">", ".":
		m.stepsPerTick = min(m.stepsPerTick*2, maxStepsPerTick)
	case "<", ",":
		m.stepsPerTick = max(m.stepsPerTick/2, 1)
	case "t":
		m.scene.Theme = nextTheme(m.scene.Theme)
	case "g":
		if m.recorder != nil {
			m.saveRecording()
		} else {
			m.recorder = NewRecorder()
		}
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

// step advances the simulation by stepsPerTick ticks.
func (m *LiveModel) step() {
	var res dynamo.StepResult
	stepped := false
	for i := 0; i < m.stepsPerTick; i++ {
		before := m.sim.Steps()
		r, err := m.sim.Step()
		if err != nil {
			m.lastErr = err
			m.errCount++
			m.log.Warn(context.Background(), "tick failed", "scenario", m.name, "error", err.Error())
		}
		if m.sim.Steps() != before {
			res, stepped = r, true
		}
	}

	bodies := m.sim.Bodies()
	m.scene.Record(bodies)
	if m.follow {
		m.scene.Camera.Center, _ = physics.CenterOfMass(bodies)
	}

	if !stepped {
		return
	}
	m.energy = append(m.energy, res.Energy)
	if len(m.energy) > historyCapacity {
		m.energy = m.energy[1:]
	}
}

// addBody drops a body at the cursor with the selected mass.
func (m *LiveModel) addBody(randomOrientation bool) {
	c := m.scene.Canvas
	pos := m.scene.Camera.Unproject(m.cursorX, m.cursorY, c.SubWidth(), c.SubHeight())
	mass := addMasses[m.massIdx]
	idx, err := m.sim.AddBody(pos, mass, randomOrientation)
	if err != nil {
		m.lastErr = err
		m.errCount++
		m.log.Warn(context.Background(), "add body failed", "x", pos.X, "y", pos.Y, "error", err.Error())
		return
	}
	m.log.Debug(context.Background(), "body added", "index", idx, "mass", mass, "x", pos.X, "y", pos.Y)
}

// reset reloads the bodies the model started with.
func (m *LiveModel) reset() {
	if err := m.sim.LoadScenario(m.initial); err != nil {
		m.lastErr = err
		return
	}
	m.scene.ResetTrails()
	m.energy = m.energy[:0]
	m.lastErr, m.errCount = nil, 0
	m.e0 = m.sim.Energy()
	m.fit()
}

func (m *LiveModel) fit() {
	c := m.scene.Canvas
	m.scene.Camera.Fit(m.sim.Bodies(), c.SubWidth(), c.SubHeight())
}

func (m *LiveModel) centerCursor() {
	c := m.scene.Canvas
	m.cursorX, m.cursorY = c.SubWidth()/2, c.SubHeight()/2
}

func (m *LiveModel) saveRecording() {
	rec := m.recorder
	m.recorder = nil
	if rec.Len() == 0 {
		return
	}
	f, err := os.Create(m.recordPath)
	if err != nil {
		m.lastErr = err
		return
	}
	defer f.Close()
	if err := rec.Encode(f); err != nil {
		m.lastErr = err
		return
	}
	m.log.Info(context.Background(), "recording saved", "path", m.recordPath, "frames", rec.Len())
}

// draw renders bodies, trails and the placement cursor.
func (m *LiveModel) draw() {
	m.scene.Draw(m.sim.Bodies())
	accent := string(m.scene.Theme.Accent)
	for d := -2; d <= 2; d++ {
		if d != 0 {
			m.scene.Canvas.SetColor(m.cursorX+d, m.cursorY, accent)
			m.scene.Canvas.SetColor(m.cursorX, m.cursorY+d, accent)
		}
	}
}

// View renders the TUI interface.
func (m LiveModel) View() string {
	m.draw()
	th := m.scene.Theme

	status := StatusRunning.Render("RUNNING")
	if !m.running {
		status = StatusPaused.Render("PAUSED")
	}
	if m.recorder != nil {
		status += " " + StatusError.Render("● REC")
	}
	header := GradientText(strings.ToUpper(m.name), th.Primary, th.Accent) + "  " + status

	var s strings.Builder
	bodies := m.sim.Bodies()
	e := m.sim.Energy()
	drift := 0.0
	if m.e0 != 0 {
		drift = (e - m.e0) / m.e0
	}
	bounce := "off"
	if m.sim.Bounce() {
		bounce = "on"
	}

	s.WriteString(Metric("time", fmt.Sprintf("%.0f", m.sim.Time())) + "\n")
	s.WriteString(Metric("steps", fmt.Sprintf("%d ×%d", m.sim.Steps(), m.stepsPerTick)) + "\n")
	s.WriteString(Metric("bodies", fmt.Sprintf("%d", len(bodies))) + "\n")
	s.WriteString(Metric("energy", fmt.Sprintf("%.4g", e)) + "\n")
	s.WriteString(Metric("drift", fmt.Sprintf("%+.2e", drift)) + "\n")
	s.WriteString(Metric("|p|", fmt.Sprintf("%.3g", physics.Momentum(bodies).Len())) + "\n")
	s.WriteString(Metric("bounce", bounce) + "\n")
	s.WriteString(Metric("stepper", m.sim.Stepper().Name()) + "\n")
	s.WriteString(Metric("add mass", fmt.Sprintf("%.0e", addMasses[m.massIdx])) + "\n")
	if m.errCount > 0 {
		s.WriteString(MetricLabel.Render("errors") + StatusError.Render(fmt.Sprintf("%d", m.errCount)) + "\n")
		if m.lastErr != nil {
			s.WriteString(Subtle.Width(panelWidth-4).Render(m.lastErr.Error()) + "\n")
		}
	}

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(panelWidth-12), asciigraph.Caption("energy"))
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(th.Graph).Render(chart) + "\n")
	}

	s.WriteString("\n" + Hints("spc", "pause", "b", "bounce", "?", "help", "q", "quit"))
	panel := Panel.Width(panelWidth - 2).Render(s.String())
	main := lipgloss.JoinHorizontal(lipgloss.Top, m.scene.Canvas.Render(), panel)

	view := header + "\n" + main
	if m.showHelp {
		view += "\n" + helpText()
	}
	return view
}

func helpText() string {
	return strings.Join([]string{
		Hints("space", "pause/resume", "r", "reset", "q", "quit"),
		Hints("hjkl", "move cursor", "HJKL", "pan", "+/-", "zoom"),
		Hints("a", "add orbiting body", "A", "add, random heading", "m", "cycle mass"),
		Hints("click", "add at pointer", "b", "toggle bounce", "f", "follow centre of mass"),
		Hints("c", "fit view", "</>", "speed", "t", "theme", "g", "record gif"),
	}, "\n")
}

// RunLive runs the live view until the user quits.
func RunLive(s *sim.Simulation, name string, opts LiveOptions) error {
	_, err := tea.NewProgram(NewLiveModel(s, name, opts), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
