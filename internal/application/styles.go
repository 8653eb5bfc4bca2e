package application

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#E8A33D") // amber, like an old label
	colorMuted   = lipgloss.Color("#777777")
	colorDanger  = lipgloss.Color("#FF5252")
	colorText    = lipgloss.Color("#EEEEEE")
	colorSurface = lipgloss.Color("#1E1E2E")
)

var (
	styleTitle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	stylePane = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)

	stylePaneFocused = stylePane.
				BorderForeground(colorPrimary)

	styleCursor = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleError = lipgloss.NewStyle().
			Foreground(colorDanger)

	styleStatusBar = lipgloss.NewStyle().
			Background(colorSurface).
			Foreground(colorText).
			Padding(0, 1)

	styleMenu = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 2)
)

const cursorMark = "▸ "
