package styles

import (
	"github.com/charmbracelet/lipgloss"

	"geolog/internal/domain"
)

var (
	// Colors
	Primary   = lipgloss.Color("#0EA5E9") // Sky
	Secondary = lipgloss.Color("#10B981") // Green
	Muted     = lipgloss.Color("#6B7280") // Gray
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Error     = lipgloss.Color("#EF4444") // Red
	White     = lipgloss.Color("#FFFFFF")

	// Category colors
	CategoryLightColor        = lipgloss.Color("#FACC15") // Yellow
	CategoryTreeColor         = lipgloss.Color("#22C55E") // Green
	CategoryMicroclimateColor = lipgloss.Color("#F97316") // Orange
	CategorySidewalkColor     = lipgloss.Color("#A8A29E") // Stone
	CategoryCustomColor       = lipgloss.Color("#A78BFA") // Violet

	App = lipgloss.NewStyle().
		Padding(1, 2)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	// Record list
	RecordSelected = lipgloss.NewStyle().
			Background(Primary).
			Foreground(White).
			Bold(true)

	RecordMarked = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	// Status bar
	StatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("#1F2937")).
			Foreground(White).
			Padding(0, 1)

	StatusKey = lipgloss.NewStyle().
			Background(Primary).
			Foreground(White).
			Padding(0, 1).
			MarginRight(1)

	StatusGood = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	StatusWarn = lipgloss.NewStyle().
			Foreground(Warning)

	StatusBad = lipgloss.NewStyle().
			Foreground(Error)

	// Input styles
	InputLabel = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	InputField = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1)

	InputFocused = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Secondary).
			Padding(0, 1)

	// Help styles
	HelpKey = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	HelpDesc = lipgloss.NewStyle().
			Foreground(Muted)

	HelpSeparator = lipgloss.NewStyle().
			Foreground(Muted).
			SetString(" • ")

	// Message styles
	Success = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	ErrorMsg = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	MutedText = lipgloss.NewStyle().
			Foreground(Muted)
)

// CategoryColor returns the accent color of a category
func CategoryColor(c domain.Category) lipgloss.Color {
	switch c {
	case domain.CategoryLight:
		return CategoryLightColor
	case domain.CategoryTree:
		return CategoryTreeColor
	case domain.CategoryMicroclimate:
		return CategoryMicroclimateColor
	case domain.CategorySidewalk:
		return CategorySidewalkColor
	case domain.CategoryCustom:
		return CategoryCustomColor
	default:
		return Primary
	}
}

// CategoryBadge renders a category label in its color
func CategoryBadge(c domain.Category) string {
	return lipgloss.NewStyle().Foreground(CategoryColor(c)).Bold(true).Render(c.Label())
}
