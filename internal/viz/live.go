package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/fieldsim/internal/body"
	"github.com/san-kum/fieldsim/internal/engine"
	"github.com/san-kum/fieldsim/internal/vecmath"
)

const (
	width           = 70
	height          = 22
	historyCapacity = 300
	maxEvents       = 4

	// canvas origin inside the rendered view, from canvasStyle padding
	canvasLeft = 2
	canvasTop  = 1
)

type TickMsg time.Time

// Model is the live viewer. It owns the simulation; every command it issues
// is applied between frames.
type Model struct {
	sim    *engine.Simulation
	name   string
	dt     float64
	tick   time.Duration
	proj   Projection
	canvas *Canvas
	theme  Theme

	cursorCol, cursorRow int

	snap          engine.Snapshot
	energyHistory []float64
	events        []string
	running       bool
	showHelp      bool
}

// NewModel wraps sim in a viewer showing bounds, stepping at fps frames per
// second of simulated and wall time.
func NewModel(sim *engine.Simulation, name string, bounds vecmath.Rect, fps int) Model {
	if fps <= 0 {
		fps = 30
	}
	return Model{
		sim:           sim,
		name:          name,
		dt:            1 / float64(fps),
		tick:          time.Second / time.Duration(fps),
		proj:          Projection{Bounds: bounds, Width: width, Height: height},
		canvas:        NewCanvas(width, height),
		theme:         ThemeClassic,
		cursorCol:     width / 2,
		cursorRow:     height / 2,
		snap:          sim.Snapshot(),
		energyHistory: make([]float64, 0, historyCapacity),
		running:       true,
	}
}

func (m Model) Init() tea.Cmd {
	return m.nextTick()
}

func (m Model) nextTick() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		if m.showHelp || msg.Action != tea.MouseActionPress {
			return m, nil
		}
		col, row := msg.X-canvasLeft, msg.Y-canvasTop
		if col < 0 || row < 0 || col >= width || row >= height {
			return m, nil
		}
		m.cursorCol, m.cursorRow = col, row
		switch msg.Button {
		case tea.MouseButtonLeft:
			m.addStatic(1)
		case tea.MouseButtonRight:
			m.addStatic(-1)
		}
		m.snap = m.sim.Snapshot()
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.nextTick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.sim.Settings()
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "?":
		m.showHelp = !m.showHelp
	case "T":
		m.theme = NextTheme(m.theme)
	case "up", "k":
		m.moveCursor(0, -1)
	case "down", "j":
		m.moveCursor(0, 1)
	case "left", "h":
		m.moveCursor(-1, 0)
	case "right", "l":
		m.moveCursor(1, 0)
	case "+", "=":
		m.addStatic(1)
	case "-", "_":
		m.addStatic(-1)
	case "p":
		m.spawn(body.KindPoint)
	case "d":
		m.spawn(body.KindDipole)
	case "x":
		m.sim.ClearDynamics()
	case "s":
		m.sim.ClearStatics()
	case "c":
		m.sim.ClearAll()
		m.energyHistory = m.energyHistory[:0]
		m.events = m.events[:0]
	case "i":
		m.sim.SetDynamicInteraction(!st.Interaction)
	case "a":
		m.sim.SetArrowsEnabled(!st.ArrowsEnabled)
	case "m":
		if st.MarkMode == engine.MarksByDistance {
			m.sim.SetMarkMode(engine.MarksByPotential)
		} else {
			m.sim.SetMarkMode(engine.MarksByDistance)
		}
	case "]":
		m.sim.SetTracerDensity(st.Density + 1)
	case "[":
		m.sim.SetTracerDensity(st.Density - 1)
	case "}":
		m.sim.SetArrowSpacing(markSpacing(st) * 1.25)
	case "{":
		m.sim.SetArrowSpacing(markSpacing(st) / 1.25)
	case "r":
		m.sim.ResetTracers()
	default:
		return m, nil
	}
	m.snap = m.sim.Snapshot()
	return m, nil
}

func markSpacing(st engine.Settings) float64 {
	if st.MarkMode == engine.MarksByPotential {
		return st.VoltSpacing
	}
	return st.ArrowSpacing
}

func (m *Model) moveCursor(dc, dr int) {
	m.cursorCol = min(max(m.cursorCol+dc, 0), width-1)
	m.cursorRow = min(max(m.cursorRow+dr, 0), height-1)
}

// Cursor is the world position under the cursor.
func (m Model) Cursor() vecmath.Vec2 {
	return m.proj.World(m.cursorCol, m.cursorRow)
}

func (m *Model) addStatic(sign float64) {
	p := m.Cursor()
	m.sim.AddStaticCharge(p.X, p.Y, sign)
}

func (m *Model) spawn(kind body.Kind) {
	p := m.Cursor()
	if _, err := m.sim.AddDynamicBody(kind, p.X, p.Y, body.DefaultParams(kind)); err != nil {
		m.pushEvent(err.Error())
	}
}

func (m *Model) pushEvent(s string) {
	m.events = append(m.events, s)
	if len(m.events) > maxEvents {
		m.events = m.events[len(m.events)-maxEvents:]
	}
}

// step advances the simulation one frame.
func (m *Model) step() {
	m.snap = m.sim.StepFrame(m.dt)
	for _, r := range m.snap.Removed {
		m.pushEvent(r.Err.Error())
	}
	m.energyHistory = append(m.energyHistory, m.snap.KineticEnergy)
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}
}

func (m *Model) draw() {
	c, p := m.canvas, m.proj
	c.Clear()

	arrows := m.sim.Settings().ArrowsEnabled
	for _, s := range m.snap.Streamlines {
		p.Polyline(c, s.Points)
		if arrows {
			for _, mk := range s.Marks {
				p.Line(c, mk.A, mk.B)
			}
		}
	}

	pos := lipgloss.NewStyle().Foreground(m.theme.Positive).Bold(true)
	neg := lipgloss.NewStyle().Foreground(m.theme.Negative).Bold(true)
	charge := func(at vecmath.Vec2, q float64, plus, minus rune) {
		col, row := p.Cell(at)
		if q < 0 {
			c.Put(col, row, minus, neg)
		} else {
			c.Put(col, row, plus, pos)
		}
	}

	for _, s := range m.snap.Statics {
		charge(s.Pos, s.Q, '+', '−')
	}
	bodyStyle := lipgloss.NewStyle().Foreground(m.theme.Body)
	for _, b := range m.snap.Bodies {
		switch b.Kind {
		case body.KindDipole:
			if len(b.Charges) == 2 {
				p.Line(c, b.Charges[0].Pos, b.Charges[1].Pos)
			}
			for _, q := range b.Charges {
				charge(q.Pos, q.Q, '⊕', '⊖')
			}
		default:
			col, row := p.Cell(b.Pos)
			c.Put(col, row, '●', bodyStyle)
		}
	}

	c.Put(m.cursorCol, m.cursorRow, '✛', lipgloss.NewStyle().Foreground(m.theme.Cursor))
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()

	th := m.theme
	canvasStyle := lipgloss.NewStyle().Padding(canvasTop, canvasLeft)
	statsStyle := lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(th.Muted).Padding(1, 2).Width(44)
	headerStyle := lipgloss.NewStyle().Foreground(th.Accent).Bold(true).MarginBottom(1)
	labelStyle := lipgloss.NewStyle().Foreground(th.Muted).Width(12)
	valueStyle := lipgloss.NewStyle().Foreground(th.Text)
	graphStyle := lipgloss.NewStyle().Foreground(th.Accent).Padding(1, 0)
	eventStyle := lipgloss.NewStyle().Foreground(th.Warning)
	helpStyle := lipgloss.NewStyle().Foreground(th.Muted).MarginTop(1)

	canvasView := canvasStyle.Render(m.canvas.Render(lipgloss.NewStyle().Foreground(th.Lines)))

	st := m.sim.Settings()
	row := func(label, format string, args ...any) string {
		return labelStyle.Render(label) + valueStyle.Render(fmt.Sprintf(format, args...)) + "\n"
	}
	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")
	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	s.WriteString(status + "\n\n")

	s.WriteString(row("Time", "%.2fs (frame %d)", m.snap.Time, m.snap.Frame))
	s.WriteString(row("Statics", "%d", len(m.snap.Statics)))
	s.WriteString(row("Bodies", "%d", len(m.snap.Bodies)))
	s.WriteString(row("Tracers", "%d/%d active", m.sim.ActiveTracers(), len(m.snap.Streamlines)))
	s.WriteString(row("Density", "%d per charge", st.Density))
	s.WriteString(row("Marks", "%s, %s every %.3g", onOff(st.ArrowsEnabled), st.MarkMode, markSpacing(st)))
	s.WriteString(row("Interact", "%s", onOff(st.Interaction)))
	s.WriteString(row("Kinetic", "%.3e J", m.snap.KineticEnergy))

	cur := m.Cursor()
	probe := m.sim.Probe(cur.X, cur.Y)
	s.WriteString(row("Cursor", "(%.2f, %.2f) m", cur.X, cur.Y))
	s.WriteString(row("|E|", "%.3e N/C", probe.E.Len()))
	s.WriteString(row("V", "%.3e V", probe.V))

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	for _, e := range m.events {
		s.WriteString(eventStyle.Render(e) + "\n")
	}

	s.WriteString(helpStyle.Render("\n─────────────────────\n+/-:Charge P/D:Spawn C:Clear\nSP:Pause Q:Quit ?:Help"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))

	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

const helpOverlay = `
╔══════════════════════════════════════════╗
║             KEYBOARD SHORTCUTS           ║
╠══════════════════════════════════════════╣
║  Arrows/hjkl - Move cursor               ║
║  + / -       - Static charge at cursor   ║
║  P / D       - Spawn particle / dipole   ║
║  X / S / C   - Clear bodies/statics/all  ║
║  I           - Toggle interaction        ║
║  A           - Toggle direction marks    ║
║  M           - Distance / potential marks║
║  [ ]         - Streamline density        ║
║  { }         - Mark spacing              ║
║  R           - Reseed streamlines        ║
║  Space       - Pause/Resume              ║
║  T           - Cycle themes              ║
║  Q           - Quit                      ║
╚══════════════════════════════════════════╝`

// Run starts the live viewer and blocks until the user quits.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
