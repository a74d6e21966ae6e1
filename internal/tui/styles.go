package tui

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252"))

	panelTitleFocusStyle = panelTitleStyle.
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("60"))

	trayItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	trayItemSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	sidebarStyle = lipgloss.NewStyle().
			Width(sidebarWidth - 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(lipgloss.Color("240"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	composeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229"))

	reportLineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("117"))
)
