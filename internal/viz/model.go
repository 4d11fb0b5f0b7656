package viz

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/fieldsim/internal/config"
	"github.com/san-kum/fieldsim/internal/host"
	"github.com/san-kum/fieldsim/internal/sim"
)

const (
	defaultCols     = 80
	defaultRows     = 24
	historyCapacity = 120

	// headerRows sit above the canvas; chromeRows is everything that is not
	// canvas.
	headerRows = 2
	chromeRows = 11

	// DefaultDotSize is the number of logical pixels one braille dot covers.
	DefaultDotSize = 8.0
)

type TickMsg time.Time

// Model is a bubbletea program that hosts one particle layer in the terminal.
// Every tick advances a headless host.Loop by one frame; the layer draws into
// a Braille context that View prints.
type Model struct {
	cfg     *config.Config
	variant host.Variant
	seed    int64
	dot     float64

	acq   *BrailleAcquirer
	loop  *host.Loop
	layer *host.Layer

	cols, rows int
	running    bool
	theme      Theme
	styles     Styles
	edges      []float64
	err        error
}

type Option func(*Model)

// WithDotSize sets how many logical pixels one dot covers.
func WithDotSize(px float64) Option {
	return func(m *Model) {
		if px > 0 {
			m.dot = px
		}
	}
}

// WithSize sets the initial terminal size before the first WindowSizeMsg.
func WithSize(cols, rows int) Option {
	return func(m *Model) { m.cols, m.rows = cols, rows }
}

// NewModel mounts the configured layer onto a terminal-sized loop. A layer
// that cannot be mounted leaves the model running without one; Err reports why.
func NewModel(cfg *config.Config, opts ...Option) (Model, error) {
	if err := cfg.Validate(); err != nil {
		return Model{}, err
	}
	if err := CheckTheme(cfg.Theme); err != nil {
		return Model{}, err
	}
	variant, err := cfg.HostVariant()
	if err != nil {
		return Model{}, err
	}

	m := Model{
		cfg:     cfg,
		variant: variant,
		seed:    cfg.Seed,
		dot:     DefaultDotSize,
		acq:     &BrailleAcquirer{},
		cols:    defaultCols,
		rows:    defaultRows,
		running: true,
		theme:   GetTheme(cfg.Theme),
		edges:   make([]float64, 0, historyCapacity),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.styles = NewStyles(m.theme)
	m.loop = host.NewLoop(m.viewport(), m.acq, host.WithFrameInterval(cfg.FrameInterval()))
	m.mount()
	return m, nil
}

// viewport maps the canvas area to logical pixels. DPR 1/dot makes the
// backing store exactly one device pixel per dot.
func (m Model) viewport() host.Viewport {
	canvasRows := max(m.rows-chromeRows, 1)
	return host.Viewport{
		Width:  float64(max(m.cols, 1)*2) * m.dot,
		Height: float64(canvasRows*4) * m.dot,
		DPR:    1 / m.dot,
	}
}

func (m *Model) mount() {
	layer, err := host.Mount(m.loop, m.variant, m.cfg.Opacity,
		host.WithSimOptions(
			sim.WithParams(m.cfg.SimParams()),
			sim.WithRand(rand.New(rand.NewSource(m.seed))),
		),
		host.WithActiveWindow(m.cfg.Physics.ActiveWindow),
		host.WithOrigin(0, headerRows*4*m.dot),
	)
	m.layer, m.err = layer, err
	m.edges = m.edges[:0]
}

func (m *Model) unmount() {
	if m.layer != nil {
		m.layer.Unmount()
		m.layer = nil
	}
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick(m.cfg.FrameInterval())
}

// Update handles input events and advances the layer one frame per tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.unmount()
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "t":
			m.theme = NextTheme(m.theme.Name)
			m.styles = NewStyles(m.theme)
		case "v":
			m.unmount()
			m.variant = (m.variant + 1) % (host.Trail + 1)
			m.mount()
		case "r":
			m.unmount()
			m.seed++
			m.mount()
		}
	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height
		m.loop.Resize(m.viewport())
		if m.layer != nil {
			m.err = m.layer.Err()
		}
	case tea.MouseMsg:
		m.loop.Move(m.toGlobal(msg.X, msg.Y))
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, tick(m.cfg.FrameInterval())
	}
	return m, nil
}

func (m *Model) step() {
	if m.layer == nil {
		return
	}
	before := m.layer.Frames()
	m.loop.Advance()
	if m.layer.Frames() == before {
		return
	}
	if len(m.edges) == historyCapacity {
		copy(m.edges, m.edges[1:])
		m.edges = m.edges[:historyCapacity-1]
	}
	m.edges = append(m.edges, float64(m.layer.LastFrame().Edges))
}

// toGlobal maps a terminal cell to the pixel under its centre, counting from
// the top of the terminal. The layer sits headerRows below that.
func (m Model) toGlobal(x, y int) (float64, float64) {
	return (float64(x) + 0.5) * 2 * m.dot, (float64(y) + 0.5) * 4 * m.dot
}

func (m Model) View() string {
	var s strings.Builder

	status := m.styles.Running.Render("RUNNING")
	if !m.running {
		status = m.styles.Paused.Render("PAUSED")
	}
	title := GradientText("fieldsim", m.theme.Primary, m.theme.Secondary)
	s.WriteString(m.styles.Header.Render(fmt.Sprintf("%s  %s  %s", title, m.variant, status)) + "\n")

	if m.acq.Last != nil {
		s.WriteString(m.acq.Last.Canvas.ColorString(m.styles.CanvasColor, m.theme.Background))
	}

	if len(m.edges) > 1 {
		width := min(max(m.cols-12, 10), historyCapacity)
		chart := asciigraph.Plot(m.edges, asciigraph.Height(4), asciigraph.Width(width), asciigraph.Caption("edges"))
		s.WriteString(m.styles.Graph.Render(chart) + "\n")
	}

	s.WriteString(m.stats() + "\n")
	if m.err != nil {
		s.WriteString(m.styles.Error.Render(m.err.Error()) + "\n")
	}
	s.WriteString(m.styles.KeyHint.Render("space pause · v variant · r reseed · t theme · q quit"))
	return s.String()
}

func (m Model) stats() string {
	if m.layer == nil {
		return m.styles.Label.Render("layer") + m.styles.Value.Render("none")
	}
	last := m.layer.LastFrame()
	cells := []string{
		m.styles.Label.Render("frames") + m.styles.Value.Render(fmt.Sprint(m.layer.Frames())),
		m.styles.Label.Render("discs") + m.styles.Value.Render(fmt.Sprint(last.Discs)),
		m.styles.Label.Render("edges") + m.styles.Value.Render(fmt.Sprint(last.Edges)),
		m.styles.Label.Render("pointer") + m.styles.Value.Render(fmt.Sprint(last.Active)),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

// Layer returns the mounted layer, or nil if mounting failed.
func (m Model) Layer() *host.Layer { return m.layer }

// Loop exposes the headless host the model drives.
func (m Model) Loop() *host.Loop { return m.loop }

func (m Model) Canvas() *Canvas {
	if m.acq.Last == nil {
		return nil
	}
	return m.acq.Last.Canvas
}

func (m Model) Running() bool         { return m.running }
func (m Model) Theme() Theme          { return m.theme }
func (m Model) Variant() host.Variant { return m.variant }
func (m Model) Err() error            { return m.err }

// Run starts the terminal program with mouse motion reporting enabled.
func Run(cfg *config.Config, opts ...Option) error {
	m, err := NewModel(cfg, opts...)
	if err != nil {
		return err
	}
	if m.err != nil {
		slog.Warn("terminal layer unavailable", "variant", m.variant, "err", m.err)
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
	return err
}
