// SPDX-License-Identifier: MIT
package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065"))
)

// onOff renders a flag the way the status block shows it.
func onOff(v bool) string {
	if v {
		return highlightStyle.Render("on")
	}
	return dimStyle.Render("off")
}
