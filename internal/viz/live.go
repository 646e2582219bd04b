package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/galaxysim/internal/compute"
	"github.com/san-kum/galaxysim/internal/galaxy"
	"github.com/san-kum/galaxysim/internal/history"
	"github.com/san-kum/galaxysim/internal/metrics"
	"github.com/san-kum/galaxysim/internal/sim"
)

const (
	width          = 80
	height         = 24
	panelWidth     = 46
	energyCapacity = 120
	// energyEvery sets how many frames pass between energy samples; the
	// potential is a full pair sum.
	energyEvery   = 10
	frameInterval = time.Second / 30
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model is the live view of one controller. It is the single caller
// driving the controller: one Tick per frame while running.
type Model struct {
	ctl    *sim.Controller
	rec    *history.Recorder
	cfgs   []galaxy.Config
	params compute.Params
	title  string

	canvas *Canvas
	camera *Camera
	follow bool

	width, height int
	frame         int
	visible       int
	energy        []float64
	initialEnergy float64
	err           error
	showHelp      bool
}

// NewModel wraps an initialized controller. cfgs are used to regenerate
// the System on reset.
func NewModel(ctl *sim.Controller, cfgs []galaxy.Config, p compute.Params, title string) Model {
	m := Model{
		ctl:    ctl,
		rec:    history.NewRecorder(ctl, energyCapacity),
		cfgs:   cfgs,
		params: p,
		title:  title,
		canvas: NewCanvas(width, height),
		camera: NewCamera(),
		width:  width,
		height: height,
		energy: make([]float64, 0, energyCapacity),
	}
	m.camera.Fit(ctl.PositionsBuffer())
	m.sampleEnergy()
	m.initialEnergy = m.energy[0]
	return m
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		if m.ctl.State() == sim.Running {
			m.advance(func() error { return m.ctl.Tick(m.ctl.Timestep()) })
		}
		m.frame++
		m.draw()
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.togglePause()
	case "n":
		if m.ctl.State() != sim.Running {
			m.advance(func() error { return m.ctl.StepOnce(m.ctl.Timestep()) })
		}
	case "b":
		if m.ctl.State() != sim.Running {
			if _, err := m.rec.Back(); err != nil {
				m.err = err
			}
		}
	case "r":
		m.reset()
	case ".":
		m.err = m.ctl.SetTimestep(m.ctl.Timestep() * 2)
	case ",":
		m.err = m.ctl.SetTimestep(m.ctl.Timestep() / 2)
	case "x":
		m.camera.RotateX(0.1)
	case "X":
		m.camera.RotateX(-0.1)
	case "y":
		m.camera.RotateY(0.1)
	case "Y":
		m.camera.RotateY(-0.1)
	case "+", "=":
		m.camera.ZoomIn()
	case "-", "_":
		m.camera.ZoomOut()
	case "c":
		m.follow = !m.follow
	case "f":
		m.camera.Fit(m.ctl.PositionsBuffer())
	case "t":
		NextTheme()
	case "?":
		m.showHelp = !m.showHelp
	}
	m.draw()
	return m, nil
}

func (m *Model) togglePause() {
	var err error
	if m.ctl.State() == sim.Running {
		err = m.ctl.Pause()
	} else {
		m.err = nil
		err = m.ctl.Resume()
	}
	if err != nil {
		m.err = err
	}
}

// advance runs one recorded step. A failed step leaves the controller's
// System as it was; the view pauses and shows the error.
func (m *Model) advance(step func() error) {
	if err := m.rec.Step(step); err != nil {
		m.err = err
		_ = m.ctl.Pause()
		return
	}
	if m.frame%energyEvery == 0 {
		m.sampleEnergy()
	}
}

func (m *Model) sampleEnergy() {
	e := metrics.Total(m.ctl.System(), m.params)
	m.energy = append(m.energy, e)
	if len(m.energy) > energyCapacity {
		m.energy = m.energy[1:]
	}
}

func (m *Model) reset() {
	if err := m.ctl.Reset(m.cfgs); err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.rec.Clear()
	m.energy = m.energy[:0]
	m.sampleEnergy()
	m.initialEnergy = m.energy[0]
	m.camera.Fit(m.ctl.PositionsBuffer())
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	cw := w - panelWidth - 2
	ch := h - 1
	if cw < 10 {
		cw = 10
	}
	if ch < 5 {
		ch = 5
	}
	m.canvas.Resize(cw, ch)
}

func (m *Model) draw() {
	if m.follow {
		m.camera.Center = m.ctl.System().CenterOfMass()
	}
	m.visible = Render(m.canvas, m.ctl.PositionsBuffer(), m.camera)
}

func (m Model) status(st styles) string {
	switch {
	case m.err != nil:
		return st.failed.Render("ERROR")
	case m.ctl.State() == sim.Running:
		return st.running.Render("RUNNING")
	case m.ctl.State() == sim.Paused:
		return st.paused.Render("PAUSED")
	default:
		return st.paused.Render("IDLE")
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	st := currentStyles()
	canvasView := st.canvas.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.status(st) + "\n\n")

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	sys := m.ctl.System()
	row("Time", fmt.Sprintf("%.4g", m.ctl.SimTime()))
	row("Steps", fmt.Sprintf("%d", m.ctl.Steps()))
	row("dt", fmt.Sprintf("%.4g", m.ctl.Timestep()))
	row("Stars", fmt.Sprintf("%d (%d shown)", sys.Len(), m.visible))
	row("History", fmt.Sprintf("%d", m.rec.Len()))
	if len(m.energy) > 0 {
		e := m.energy[len(m.energy)-1]
		row("Energy", fmt.Sprintf("%.4g", e))
		if m.initialEnergy != 0 {
			row("Drift", fmt.Sprintf("%.2e", (e-m.initialEnergy)/m.initialEnergy))
		}
	}
	row("Zoom", fmt.Sprintf("%.2fx", m.camera.Zoom))

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}
	if m.err != nil {
		s.WriteString(st.failed.Width(panelWidth-4).Render(m.err.Error()) + "\n")
	}

	s.WriteString(st.help.Render("SP:Pause N:Step B:Back R:Reset\nX/Y:Rotate +/-:Zoom ,/.:dt ?:Help Q:Quit"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.panel.Render(s.String()))

	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space  - Pause/Resume               ║
║  N      - Step once while paused     ║
║  B      - Step back while paused     ║
║  R      - Regenerate galaxies        ║
║  , .    - Halve/double timestep      ║
║  X Y    - Rotate (shift reverses)    ║
║  + -    - Zoom                       ║
║  C      - Follow center of mass      ║
║  F      - Fit view to stars          ║
║  T      - Cycle themes               ║
║  Q      - Quit                       ║
╚══════════════════════════════════════╝`
