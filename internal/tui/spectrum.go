// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"strings"
	"time"

	"vocoder/internal/config"
	"vocoder/internal/control"
	"vocoder/internal/dsp"
	"vocoder/internal/fabric"
	"vocoder/internal/log"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"gonum.org/v1/gonum/floats"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	chromeLines   = 9 // title, status block, help and spacing
	minBarRows    = 4
	minColumns    = 8
)

var barChars = []rune(" ▁▂▃▄▅▆▇█")

type tickMsg time.Time

func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type keyMap struct {
	Quit     key.Binding
	Output   key.Binding
	Printing key.Binding
	Effect   key.Binding
	Up       key.Binding
	Down     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Effect, k.Down, k.Up, k.Output, k.Printing, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:     key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"), key.WithHelp("q", "quit")),
		Output:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "audio output")),
		Printing: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "print peak")),
		Effect:   key.NewBinding(key.WithKeys("f", " "), key.WithHelp("f", "effect")),
		Up:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "+1 st")),
		Down:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "-1 st")),
	}
}

// SpectrumModel is the Bubble Tea model of the live view. It polls the
// visual channel on a fixed tick, smooths the bar heights with a spring and
// writes key presses into the control state.
type SpectrumModel struct {
	control   *control.State
	visual    *fabric.Lossy[dsp.Spectrum]
	snapshots *fabric.Pool[dsp.Spectrum]

	sampleRate float64
	interval   time.Duration

	keys keyMap
	help help.Model

	spring  harmonica.Spring
	pos     []float64
	vel     []float64
	targets []float64
	mags    []float64

	peakBin int
	peakHz  float64
	frames  uint64

	width, height int
}

// NewSpectrumModel creates the live view. snapshots may be nil, in which
// case consumed spectra are left to the garbage collector.
func NewSpectrumModel(
	cfg *config.Config,
	ctl *control.State,
	visual *fabric.Lossy[dsp.Spectrum],
	snapshots *fabric.Pool[dsp.Spectrum],
) SpectrumModel {
	return SpectrumModel{
		control:    ctl,
		visual:     visual,
		snapshots:  snapshots,
		sampleRate: cfg.Audio.SampleRate,
		interval:   cfg.FrameInterval(),
		keys:       defaultKeyMap(),
		help:       help.New(),
		spring:     harmonica.NewSpring(harmonica.FPS(cfg.UI.FPS), 8.0, 0.9),
		width:      defaultWidth,
		height:     defaultHeight,
	}
}

// Init starts the frame ticker.
func (m SpectrumModel) Init() tea.Cmd {
	return tick(m.interval)
}

// Update handles ticks, window resizes and key presses.
func (m SpectrumModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width

	case tickMsg:
		if m.control.Exiting() {
			return m, tea.Quit
		}
		m.poll()
		m.animate()
		m.frames++
		return m, tick(m.interval)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.control.RequestExit()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Output):
			log.Infof("audio output: %v", m.control.ToggleOutput())
		case key.Matches(msg, m.keys.Printing):
			m.control.TogglePrinting()
		case key.Matches(msg, m.keys.Effect):
			log.Infof("effect: %v", m.control.ToggleEffect())
		case key.Matches(msg, m.keys.Up):
			log.Infof("pitch: %+d semitones", m.control.Shift(1))
		case key.Matches(msg, m.keys.Down):
			log.Infof("pitch: %+d semitones", m.control.Shift(-1))
		}
	}
	return m, nil
}

// poll takes the newest pending spectrum, recycling any older ones.
func (m *SpectrumModel) poll() {
	var latest dsp.Spectrum
	for {
		s, ok := m.visual.TryPop()
		if !ok {
			break
		}
		if latest != nil {
			m.recycle(latest)
		}
		latest = s
	}
	if latest == nil {
		return
	}
	defer m.recycle(latest)

	m.mags = latest.Magnitudes(m.mags)
	if peak := floats.Max(m.mags); peak > 0 {
		floats.Scale(1/peak, m.mags)
	}
	m.peakBin = latest.Peak()
	m.peakHz = latest.FrequencyHz(m.peakBin, m.sampleRate)
	if m.control.Printing() {
		log.Infof("dominant frequency: %.1f Hz (bin %d)", m.peakHz, m.peakBin)
	}

	cols := m.columns()
	if len(m.targets) != cols {
		m.targets = make([]float64, cols)
		m.pos = make([]float64, cols)
		m.vel = make([]float64, cols)
	}
	bucket(m.targets, m.mags)
}

func (m *SpectrumModel) recycle(s dsp.Spectrum) {
	if m.snapshots != nil {
		m.snapshots.Put(s)
	}
}

// bucket folds mags into len(dst) columns, keeping the maximum of each.
func bucket(dst, mags []float64) {
	clear(dst)
	if len(mags) == 0 {
		return
	}
	for i, v := range mags {
		c := i * len(dst) / len(mags)
		dst[c] = max(dst[c], v)
	}
}

func (m *SpectrumModel) animate() {
	for i, target := range m.targets {
		m.pos[i], m.vel[i] = m.spring.Update(m.pos[i], m.vel[i], target)
	}
}

func (m SpectrumModel) columns() int {
	cols := m.width - 2
	if len(m.mags) > 0 {
		cols = min(cols, len(m.mags))
	}
	return max(cols, minColumns)
}

// View renders the status block, the spectrum bars and the key help.
func (m SpectrumModel) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Phase Vocoder"))
	sb.WriteString("\n\n")

	s := m.control.Semitones()
	fmt.Fprintf(&sb, "%s Printing: %s\n", dimStyle.Render("[P]"), onOff(m.control.Printing()))
	fmt.Fprintf(&sb, "%s Audio output: %s\n", dimStyle.Render("[A]"), onOff(m.control.OutputEnabled()))
	fmt.Fprintf(&sb, "%s Effect: %s  %s\n", dimStyle.Render("[F]"), onOff(m.control.EffectEnabled()),
		infoStyle.Render(fmt.Sprintf("%+d semitones (x%.3f)", s, control.SemitoneRatio(s))))
	fmt.Fprintf(&sb, "Dominant: %s\n\n", highlightStyle.Render(fmt.Sprintf("%.1f Hz (bin %d)", m.peakHz, m.peakBin)))

	sb.WriteString(barStyle.Render(m.renderBars(max(m.height-chromeLines, minBarRows))))
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

// renderBars draws the smoothed column heights with eighth-block glyphs.
func (m SpectrumModel) renderBars(rows int) string {
	if len(m.pos) == 0 {
		return strings.Repeat("\n", rows-1)
	}

	lines := make([]string, rows)
	var line strings.Builder
	for row := range rows {
		line.Reset()
		fromBottom := float64(rows - 1 - row)
		for _, p := range m.pos {
			level := max(p, 0) * float64(rows)
			idx := 0
			switch {
			case level >= fromBottom+1:
				idx = len(barChars) - 1
			case level > fromBottom:
				idx = int((level - fromBottom) * float64(len(barChars)-1))
			}
			line.WriteRune(barChars[idx])
		}
		lines[row] = line.String()
	}
	return strings.Join(lines, "\n")
}

// Frames returns the number of ticks rendered.
func (m SpectrumModel) Frames() uint64 {
	return m.frames
}

// PeakHz returns the dominant frequency of the last spectrum drawn.
func (m SpectrumModel) PeakHz() float64 {
	return m.peakHz
}

// Run starts the live view and blocks until it exits.
func Run(model SpectrumModel) error {
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
