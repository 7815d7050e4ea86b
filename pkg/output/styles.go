package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Color definitions using AdaptiveColor for automatic light/dark mode switching
var (
	StatusColor = lipgloss.AdaptiveColor{
		Light: "#007ACC", // Blue
		Dark:  "#3D9EFF",
	}

	SuccessColor = lipgloss.AdaptiveColor{
		Light: "#28A745", // Green
		Dark:  "#4CDD76",
	}

	ErrorColor = lipgloss.AdaptiveColor{
		Light: "#DC3545", // Red
		Dark:  "#FF6B7D",
	}

	WarningColor = lipgloss.AdaptiveColor{
		Light: "#FFC107", // Amber
		Dark:  "#FFD54F",
	}

	HeadingColor = lipgloss.AdaptiveColor{
		Light: "#212529",
		Dark:  "#F8F9FA",
	}

	MutedColor = lipgloss.AdaptiveColor{
		Light: "#6C757D",
		Dark:  "#A0A8B0",
	}
)

// Styles groups the styles of one output stream
type Styles struct {
	Title   lipgloss.Style
	Status  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Muted   lipgloss.Style
}

// NewStyles builds styles bound to w. FormatText strips all color.
func NewStyles(w io.Writer, format Format) Styles {
	r := lipgloss.NewRenderer(w)
	if format == FormatText {
		r.SetColorProfile(termenv.Ascii)
	}

	return Styles{
		Title: r.NewStyle().
			Foreground(HeadingColor).
			Bold(true),
		Status: r.NewStyle().
			Foreground(StatusColor).
			Bold(true),
		Success: r.NewStyle().
			Foreground(SuccessColor).
			Bold(true),
		Error: r.NewStyle().
			Foreground(ErrorColor).
			Bold(true),
		Warning: r.NewStyle().
			Foreground(WarningColor),
		Muted: r.NewStyle().
			Foreground(MutedColor),
	}
}
