package theme

import "github.com/charmbracelet/lipgloss"

// Color palette: terminal-green accent with neutral grays.
var (
	ColorAccent    = lipgloss.Color("#3FB950")
	ColorAccentDim = lipgloss.Color("#2A7A36")
	ColorWhite     = lipgloss.Color("#FAFAFA")
	ColorGray      = lipgloss.Color("#7D7D7D")
	ColorDarkGray  = lipgloss.Color("#3A3A3A")
	ColorBg        = lipgloss.Color("#0D1117")
	ColorBgLight   = lipgloss.Color("#161B22")
	ColorGreen     = lipgloss.Color("#73D216")
	ColorYellow    = lipgloss.Color("#E3B341")
	ColorRed       = lipgloss.Color("#EF2929")
	ColorBlue      = lipgloss.Color("#729FCF")
)

// Layout constants
const (
	SidebarMinWidth = 22
	SidebarMaxWidth = 34
	SidebarRatio    = 0.25 // 25% of terminal width
)

// Shared styles
var (
	// Border styles
	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorDarkGray)

	ActiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorAccent)

	// Text styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	// Header bar
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite).
			Background(ColorAccentDim).
			Padding(0, 1)

	// Help bar
	HelpBarStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			Padding(0, 1)

	// Selection indicator
	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(ColorAccent).
				Bold(true)

	NormalItemStyle = lipgloss.NewStyle().
			Foreground(ColorWhite)

	// Terminal pane
	LogConsoleBg = ColorBg

	LogConsoleHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorAccent).
				Background(ColorBg)
	LogTimestampStyle = lipgloss.NewStyle().
				Foreground(ColorGray).
				Background(ColorBg)
	LogDataStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Background(ColorBg)
	LogSystemStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Background(ColorBg).
			Italic(true)

	// Clickable controls ([Clear], [Follow])
	ButtonStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Background(ColorBg)
	ButtonActiveStyle = lipgloss.NewStyle().
				Foreground(ColorBg).
				Background(ColorAccent).
				Bold(true)

	// Connection state badges
	BadgeConnectingStyle = lipgloss.NewStyle().Foreground(ColorBg).Background(ColorYellow).Padding(0, 1)
	BadgeLiveStyle       = lipgloss.NewStyle().Foreground(ColorBg).Background(ColorGreen).Padding(0, 1)
	BadgeErrorStyle      = lipgloss.NewStyle().Foreground(ColorWhite).Background(ColorRed).Padding(0, 1)
	BadgeIdleStyle       = lipgloss.NewStyle().Foreground(ColorWhite).Background(ColorDarkGray).Padding(0, 1)
)
