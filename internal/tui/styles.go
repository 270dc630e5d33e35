package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Base palette — dark pit-lane neutrals with a racing red accent.
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e10600")).
			Bold(true)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f87171"))

	// Tracker status colors.
	foundStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80"))

	missingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f87171"))

	// Rookie-card badge.
	rookieStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a844")).
			Bold(true)

	// Money figures.
	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80"))

	// Help bar.
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Form input.
	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#e10600")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))

	// Active tab in the header.
	tabActiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true).
			Underline(true)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))
)

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// checkbox renders an on/off toggle for filter rows.
func checkbox(label string, on bool) string {
	if on {
		return accentStyle.Render("[x] ") + normalStyle.Render(label)
	}
	return metaStyle.Render("[ ] " + label)
}
