package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorPlayerA = lipgloss.Color("#E06C75")
	ColorPlayerB = lipgloss.Color("#E5C07B")
	ColorBoard   = lipgloss.Color("#61AFEF")
	ColorMuted   = lipgloss.Color("#636B78")
	ColorAccent  = lipgloss.Color("#C678DD")
	ColorGreen   = lipgloss.Color("#98C379")
	ColorBorder  = lipgloss.Color("#3F4451")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			PaddingLeft(1)

	StatusStyle = lipgloss.NewStyle().
			Bold(true).
			PaddingLeft(1)

	GameOverStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true).
			PaddingLeft(1)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(ColorPlayerA).
			Italic(true).
			PaddingLeft(1)

	FrameStyle = lipgloss.NewStyle().Foreground(ColorBoard)

	DiscAStyle = lipgloss.NewStyle().Foreground(ColorPlayerA).Bold(true)
	DiscBStyle = lipgloss.NewStyle().Foreground(ColorPlayerB).Bold(true)
	EmptyStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	CursorStyle = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)

	RulesStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1).
			MarginLeft(4)

	RulesTitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)
)
