package ui

import "github.com/charmbracelet/lipgloss"

// Colors used throughout the TUI.
var (
	ColorRed     = lipgloss.Color("#FF6B6B")
	ColorGreen   = lipgloss.Color("#00C9A7")
	ColorYellow  = lipgloss.Color("#FFC75F")
	ColorPurple  = lipgloss.Color("#6C63FF")
	ColorCyan    = lipgloss.Color("#00FFFF")
	ColorGray    = lipgloss.Color("#666666")
	ColorDimGray = lipgloss.Color("#444444")
	ColorWhite   = lipgloss.Color("#FFFFFF")
	ColorBlack   = lipgloss.Color("#000000")
	ColorMagenta = lipgloss.Color("#FF00FF")
)

// Base styles reused by UI components.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorCyan)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	SectionTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorWhite)

	RecordingDotStyle = lipgloss.NewStyle().
				Foreground(ColorRed).
				Bold(true)

	IdleDotStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true)

	LiveTextStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	InputStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Underline(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	FooterKeyStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	FooterDescStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	DividerStyle = lipgloss.NewStyle().
			Foreground(ColorDimGray)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta)

	QuestionBadgeStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorPurple)

	QuestionTextStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorWhite)

	ProgressFillStyle = lipgloss.NewStyle().
				Foreground(ColorPurple)

	ProgressTrackStyle = lipgloss.NewStyle().
				Foreground(ColorDimGray)

	TimerStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	StrengthStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true)

	WeaknessStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	TipStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorDimGray).
			Padding(0, 1)

	RecordingCardStyle = CardStyle.
				BorderForeground(ColorRed)
)

// Per-score colors of the evaluation scorecard.
var (
	TechnicalColor = ColorPurple
	ClarityColor   = ColorGreen
	StructureColor = ColorRed
	RelevanceColor = ColorYellow
)

// ScoreColor bands an overall 0-100 score.
func ScoreColor(score float64) lipgloss.Color {
	switch {
	case score >= 75:
		return ColorGreen
	case score >= 50:
		return ColorYellow
	default:
		return ColorRed
	}
}

// RecommendationColor colors a hire recommendation label. Unknown labels
// get the default accent.
func RecommendationColor(rec string) lipgloss.Color {
	switch rec {
	case "Strongly Recommend":
		return ColorGreen
	case "Recommend":
		return ColorPurple
	case "Consider":
		return ColorYellow
	case "Do Not Recommend":
		return ColorRed
	}
	return ColorPurple
}

// BadgeStyle renders a label on a colored background.
func BadgeStyle(bg lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorBlack).
		Background(bg).
		Padding(0, 1)
}
