package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/curvsim/internal/sim"
)

const (
	historyCapacity = 600
	frameRate       = 30
	maxSpeed        = 64
)

type TickMsg time.Time

// Model holds the live session and the chart history.
type Model struct {
	sim     *sim.Simulator
	cfg     sim.Config
	session *sim.Session
	title   string

	running bool
	speed   int
	desired []float64
	output  []float64
	last    sim.Cycle
	resets  int
	err     error
}

func NewModel(s *sim.Simulator, cfg sim.Config, title string) (Model, error) {
	ss, err := s.NewSession(cfg)
	if err != nil {
		return Model{}, err
	}
	return Model{
		sim:     s,
		cfg:     cfg,
		session: ss,
		title:   title,
		running: true,
		speed:   1,
		desired: make([]float64, 0, historyCapacity),
		output:  make([]float64, 0, historyCapacity),
	}, nil
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

// Err is the error that stopped the session, if any.
func (m Model) Err() error { return m.err }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if m.session.Done() {
				m.restart()
			} else {
				m.running = !m.running
			}
		case "r":
			m.sim.Controller().Reset()
			m.resets++
		case "+", "=":
			if m.speed < maxSpeed {
				m.speed *= 2
			}
		case "-", "_":
			if m.speed > 1 {
				m.speed /= 2
			}
		}
	case TickMsg:
		if m.running && m.err == nil {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) advance() {
	for i := 0; i < m.speed && !m.session.Done(); i++ {
		c, err := m.session.Step()
		if err != nil {
			m.err = err
			m.running = false
			return
		}
		m.last = c
		m.desired = push(m.desired, c.Setpoint.DesiredCurvature)
		m.output = push(m.output, c.Output.Curvature)
	}
	if m.session.Done() {
		m.running = false
	}
}

func (m *Model) restart() {
	ss, err := m.sim.NewSession(m.cfg)
	if err != nil {
		m.err = err
		return
	}
	m.session = ss
	m.desired = m.desired[:0]
	m.output = m.output[:0]
	m.last = sim.Cycle{}
	m.running = true
}

func push(buf []float64, v float64) []float64 {
	if len(buf) == historyCapacity {
		copy(buf, buf[1:])
		buf = buf[:len(buf)-1]
	}
	return append(buf, v)
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return statusAlert.Render("ERROR: " + m.err.Error())
	case m.session.Done():
		return statusPaused.Render("FINISHED")
	case !m.running:
		return statusPaused.Render("PAUSED")
	case m.last.Output.Saturated:
		return statusAlert.Render("SATURATED")
	case !m.last.Output.State.Active:
		return statusInactive.Render("INACTIVE")
	}
	return statusRunning.Render("RUNNING")
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value) + "\n"
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.status() + "\n\n")

	if len(m.output) > 1 {
		chart := Plot(m.desired, m.output, 60, 10, "desired (cyan) / output (yellow), 1/m")
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	limit := m.sim.Controller().Config().Limit
	c := m.last
	progress := 0.0
	if n := m.session.Steps(); n > 0 {
		progress = float64(m.session.Cycles()) / float64(n)
	}
	s.WriteString(row("Time", fmt.Sprintf("%.2fs  %s", m.session.Time(), ProgressBar(progress, 20))))
	s.WriteString(row("Speed", fmt.Sprintf("%.1f m/s", c.Setpoint.Speed)))
	s.WriteString(row("Desired", fmt.Sprintf("%+.5f", c.Setpoint.DesiredCurvature)))
	s.WriteString(row("Output", fmt.Sprintf("%+.5f %s", c.Output.Curvature, UsageBar(c.Output.Curvature, limit, 12))))
	s.WriteString(row("Error", fmt.Sprintf("%+.6f", c.Output.State.Error)))
	s.WriteString(row("Integral", fmt.Sprintf("%+.6f", c.Integral)))
	s.WriteString(row("Offset", fmt.Sprintf("%+.3f m", c.LateralOffset)))
	s.WriteString(row("Frozen", fmt.Sprintf("%v", c.Frozen)))
	s.WriteString(row("Cycles/frame", fmt.Sprintf("%d", m.speed)))
	s.WriteString(row("Resets", fmt.Sprintf("%d", m.resets)))

	s.WriteString(helpStyle.Render("SP:Pause R:Reset ctrl +/-:Speed Q:Quit"))
	return panelStyle.Render(s.String())
}
