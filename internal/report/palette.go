package report

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Cyan    = lipgloss.Color("#00E5FF") // Primary highlight
	Magenta = lipgloss.Color("#FF1B6B") // Accent
	Yellow  = lipgloss.Color("#FFB500") // Warnings
	Green   = lipgloss.Color("#2AFFAA") // Success
	Red     = lipgloss.Color("#FF5555") // Errors
	Blue    = lipgloss.Color("#3B82F6") // Info / links

	Base01 = lipgloss.Color("#6C7280") // Muted text
	Base2  = lipgloss.Color("#ECEFF4") // Primary text
	Base1  = lipgloss.Color("#B4BCC8") // Secondary text
)

// Palette provides a centralized color management
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
	Warning   lipgloss.Color
	Info      lipgloss.Color

	Text          lipgloss.Color
	TextMuted     lipgloss.Color
	TextSecondary lipgloss.Color
}

// DefaultPalette returns the default color palette
func DefaultPalette() Palette {
	return Palette{
		Primary:   Cyan,
		Secondary: Magenta,
		Success:   Green,
		Error:     Red,
		Warning:   Yellow,
		Info:      Blue,

		Text:          Base2,
		TextMuted:     Base01,
		TextSecondary: Base1,
	}
}

// Styles used by the report.
type Styles struct {
	Banner  lipgloss.Style
	Box     lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Failure lipgloss.Style
	Warning lipgloss.Style
	Link    lipgloss.Style
}

// NewStyles creates report styles with the given palette
func NewStyles(palette Palette) Styles {
	return Styles{
		Banner: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(palette.Secondary).
			Padding(0, 2),

		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary).
			Padding(0, 1),

		Label: lipgloss.NewStyle().
			Foreground(palette.TextSecondary).
			Width(20),

		Value: lipgloss.NewStyle().
			Foreground(palette.Text),

		Muted: lipgloss.NewStyle().
			Foreground(palette.TextMuted),

		Success: lipgloss.NewStyle().
			Foreground(palette.Success).
			Bold(true),

		Failure: lipgloss.NewStyle().
			Foreground(palette.Error).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(palette.Warning),

		Link: lipgloss.NewStyle().
			Foreground(palette.Info).
			Underline(true),
	}
}
