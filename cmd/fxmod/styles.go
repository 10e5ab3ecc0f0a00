// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Color palette - shared hex colors for consistent theming across all CLI output.
// These colors are designed for dark terminal backgrounds with good contrast.
const (
	// ColorPrimary is purple - used for titles and primary emphasis.
	ColorPrimary = lipgloss.Color("#7C3AED")

	// ColorMuted is gray - used for subtitles and de-emphasized content.
	ColorMuted = lipgloss.Color("#6B7280")

	// ColorSuccess is green - used for fully synchronized results.
	ColorSuccess = lipgloss.Color("#10B981")

	// ColorError is red - used for out-of-sync results and failures.
	ColorError = lipgloss.Color("#EF4444")
)

// Base styles - reusable lipgloss styles built from the color palette.
var (
	// TitleStyle is for primary headers.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary headers and descriptions.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle is for fully synchronized summaries.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle is for failure summaries.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)
)
