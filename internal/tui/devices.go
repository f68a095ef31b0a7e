// SPDX-License-Identifier: MIT
package tui

import (
	"fmt"
	"strings"

	"vocoder/internal/audio"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ScreenType defines which screen is currently active
type ScreenType int

const (
	ListScreen ScreenType = iota
	DetailScreen
)

// DeviceListModel is the interactive device browser of the list command.
// The detail screen shows whether a device can run the vocoder's mono
// duplex stream at the configured sample rate.
type DeviceListModel struct {
	devices       []audio.Device
	selectedIndex int
	viewport      viewport.Model
	ready         bool
	err           error
	activeScreen  ScreenType

	sampleRate float64
	fetch      func() ([]audio.Device, error)
}

type devicesMsg struct {
	devices []audio.Device
}

type errMsg struct {
	err error
}

// NewDeviceListModel creates a browser that checks devices against
// sampleRate. PortAudio must be initialized.
func NewDeviceListModel(sampleRate float64) DeviceListModel {
	return DeviceListModel{
		activeScreen: ListScreen,
		sampleRate:   sampleRate,
		fetch:        audio.HostDevices,
	}
}

// Init fetches the device list.
func (m DeviceListModel) Init() tea.Cmd {
	fetch := m.fetch
	return func() tea.Msg {
		devices, err := fetch()
		if err != nil {
			return errMsg{err}
		}
		return devicesMsg{devices}
	}
}

// Update handles input and updates the model
func (m DeviceListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.viewport.Style = lipgloss.NewStyle()
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}
		m.refresh()

	case devicesMsg:
		m.devices = msg.devices
		m.refresh()

	case errMsg:
		m.err = msg.err

	case tea.KeyMsg:
		if key.Matches(msg, key.NewBinding(key.WithKeys("q", "ctrl+c"))) {
			return m, tea.Quit
		}

		switch m.activeScreen {
		case ListScreen:
			switch {
			case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
				if m.selectedIndex > 0 {
					m.selectedIndex--
				}
			case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
				if m.selectedIndex < len(m.devices)-1 {
					m.selectedIndex++
				}
			case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
				if len(m.devices) > 0 {
					m.activeScreen = DetailScreen
				}
			}
		case DetailScreen:
			if key.Matches(msg, key.NewBinding(key.WithKeys("esc"))) {
				m.activeScreen = ListScreen
			}
		}
		m.refresh()
	}

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m *DeviceListModel) refresh() {
	if !m.ready {
		return
	}
	if m.activeScreen == DetailScreen && len(m.devices) > 0 {
		m.viewport.SetContent(m.renderDetail())
		return
	}
	m.viewport.SetContent(m.renderDevices())
}

// View renders the UI
func (m DeviceListModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to exit.", m.err)
	}

	var title, help string
	if m.activeScreen == ListScreen {
		title = titleStyle.Render("Audio Device List")
		help = infoStyle.Render("↑/↓: Navigate • Enter: Details • q: Quit")
	} else {
		title = titleStyle.Render("Device Details")
		help = infoStyle.Render("Esc: Back • q: Quit")
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.viewport.View(), help)
}

// renderDevices formats the device list
func (m DeviceListModel) renderDevices() string {
	if len(m.devices) == 0 {
		return "No audio devices found."
	}

	var sb strings.Builder
	for i, device := range m.devices {
		info := fmt.Sprintf("[%d] %s (%s)\n", device.ID, device.Name, device.Type())
		info += fmt.Sprintf("    Input channels: %d, Output channels: %d\n",
			device.MaxInputChannels, device.MaxOutputChannels)
		if device.Duplex() {
			info += "    Duplex capable\n"
		}

		if i == m.selectedIndex {
			info = highlightStyle.Render(info)
		}
		sb.WriteString(info)
		sb.WriteString("\n")
	}
	return sb.String()
}

// renderDetail formats the detail screen of the selected device.
func (m DeviceListModel) renderDetail() string {
	d := m.devices[m.selectedIndex]

	var sb strings.Builder
	fmt.Fprintf(&sb, "Device: %s\n\n", highlightStyle.Render(d.Name))
	fmt.Fprintf(&sb, "Default sample rate: %.0f Hz\n", d.DefaultSampleRate)
	fmt.Fprintf(&sb, "Input latency:  low %.2fms, high %.2fms\n",
		d.LowInputLatency.Seconds()*1000, d.HighInputLatency.Seconds()*1000)
	fmt.Fprintf(&sb, "Output latency: low %.2fms, high %.2fms\n\n",
		d.LowOutputLatency.Seconds()*1000, d.HighOutputLatency.Seconds()*1000)

	fmt.Fprintf(&sb, "Mono duplex:   %s\n", yesNo(d.Duplex()))
	fmt.Fprintf(&sb, "Preferred:     %s\n", yesNo(d.Name == audio.PreferredDeviceName))
	fmt.Fprintf(&sb, "Native %.0f Hz: %s\n", m.sampleRate, yesNo(d.DefaultSampleRate == m.sampleRate))
	return sb.String()
}

func yesNo(v bool) string {
	if v {
		return highlightStyle.Render("yes")
	}
	return dimStyle.Render("no")
}

// StartDeviceListUI launches the Bubble Tea TUI for listing devices
func StartDeviceListUI(sampleRate float64) error {
	p := tea.NewProgram(
		NewDeviceListModel(sampleRate),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
