package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func renderStatusBar(currentDesktop uint32, haveDesktop bool, count int, status string, isErr bool, width int) string {
	dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
	parts := []string{dot + fmt.Sprintf(" %d windows", count)}
	if haveDesktop {
		parts = append(parts, fmt.Sprintf("current desktop: %d", currentDesktop))
	}
	if status != "" {
		color := lipgloss.Color("250")
		if isErr {
			color = lipgloss.Color("203")
		}
		parts = append(parts, lipgloss.NewStyle().Foreground(color).Render(status))
	}

	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(strings.Join(parts, "  "))
}

func renderHelpBar(editing bool, width int) string {
	help := "enter: focus  /: filter  s: save as target  r: refresh  q/esc: quit"
	if editing {
		help = "enter: next/confirm  esc: cancel"
	}
	style := lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	return style.Render(help)
}
