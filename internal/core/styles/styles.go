// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette defines a minimal semantic theme palette.
type Palette struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Background lipgloss.Color
	Surface    lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Exported color aliases for convenience.
var (
	ColorPrimary    lipgloss.Color
	ColorSecondary  lipgloss.Color
	ColorForeground lipgloss.Color
	ColorMuted      lipgloss.Color
	ColorBackground lipgloss.Color
	ColorSurface    lipgloss.Color
	ColorSuccess    lipgloss.Color
	ColorWarning    lipgloss.Color
	ColorError      lipgloss.Color
)

// Style exports.
var (
	// CLI styles.
	CommandHeaderStyle lipgloss.Style
	CommandStyle       lipgloss.Style
	DividerStyle       lipgloss.Style

	// Task list styles.
	CategoryHeaderStyle lipgloss.Style
	CategoryCountStyle  lipgloss.Style
	TaskStyle           lipgloss.Style
	TaskSelectedStyle   lipgloss.Style
	TaskMarkedStyle     lipgloss.Style
	TaskCompletedStyle  lipgloss.Style
	TaskOverdueStyle    lipgloss.Style
	TaskDueStyle        lipgloss.Style
	TaskMetaStyle       lipgloss.Style
	PriorityHighStyle   lipgloss.Style
	PriorityMediumStyle lipgloss.Style
	PriorityLowStyle    lipgloss.Style

	// Filter bar styles.
	FilterChipStyle       lipgloss.Style
	FilterChipActiveStyle lipgloss.Style
	FilterCountStyle      lipgloss.Style
	SearchPromptStyle     lipgloss.Style

	// Modal and form styles.
	ModalStyle               lipgloss.Style
	ModalTitleStyle          lipgloss.Style
	ModalHelpStyle           lipgloss.Style
	ModalButtonStyle         lipgloss.Style
	ModalButtonSelectedStyle lipgloss.Style
	FormTitleStyle           lipgloss.Style
	FormFieldStyle           lipgloss.Style
	FormFieldFocusedStyle    lipgloss.Style
	FormErrorStyle           lipgloss.Style
	FormHelpStyle            lipgloss.Style

	// Toast styles.
	ToastInfoStyle    lipgloss.Style
	ToastSuccessStyle lipgloss.Style
	ToastErrorStyle   lipgloss.Style
	ToastUndoStyle    lipgloss.Style

	// Status bar styles.
	StatusBarStyle    lipgloss.Style
	StatusKeyStyle    lipgloss.Style
	StatusSyncedStyle lipgloss.Style
	StatusDirtyStyle  lipgloss.Style
)

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	ColorPrimary = p.Primary
	ColorSecondary = p.Secondary
	ColorForeground = p.Foreground
	ColorMuted = p.Muted
	ColorBackground = p.Background
	ColorSurface = p.Surface
	ColorSuccess = p.Success
	ColorWarning = p.Warning
	ColorError = p.Error

	CommandHeaderStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	CommandStyle = lipgloss.NewStyle().
		Foreground(ColorForeground)
	DividerStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)

	CategoryHeaderStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary).
		Bold(true).
		MarginTop(1)
	CategoryCountStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	TaskStyle = lipgloss.NewStyle().
		Foreground(ColorForeground)
	TaskSelectedStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	TaskMarkedStyle = lipgloss.NewStyle().
		Foreground(ColorWarning)
	TaskCompletedStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		Strikethrough(true)
	TaskOverdueStyle = lipgloss.NewStyle().
		Foreground(ColorError)
	TaskDueStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary)
	TaskMetaStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	PriorityHighStyle = lipgloss.NewStyle().
		Foreground(ColorError).
		Bold(true)
	PriorityMediumStyle = lipgloss.NewStyle().
		Foreground(ColorWarning)
	PriorityLowStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)

	FilterChipStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(ColorSurface).
		Foreground(ColorMuted)
	FilterChipActiveStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(ColorPrimary).
		Foreground(ColorBackground).
		Bold(true)
	FilterCountStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	SearchPromptStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary)

	ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 2)
	ModalTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorForeground)
	ModalHelpStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		MarginTop(1)
	ModalButtonStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(ColorSurface).
		Foreground(ColorMuted)
	ModalButtonSelectedStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(ColorPrimary).
		Foreground(ColorBackground).
		Bold(true)

	FormTitleStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	FormFieldStyle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(ColorMuted).
		PaddingLeft(1)
	FormFieldFocusedStyle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(ColorPrimary).
		PaddingLeft(1)
	FormErrorStyle = lipgloss.NewStyle().
		Foreground(ColorError)
	FormHelpStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)

	ToastInfoStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(ColorSurface).
		Foreground(ColorForeground)
	ToastSuccessStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(ColorSurface).
		Foreground(ColorSuccess)
	ToastErrorStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(ColorSurface).
		Foreground(ColorError)
	ToastUndoStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(ColorSurface).
		Foreground(ColorWarning).
		Bold(true)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	StatusKeyStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary)
	StatusSyncedStyle = lipgloss.NewStyle().
		Foreground(ColorSuccess)
	StatusDirtyStyle = lipgloss.NewStyle().
		Foreground(ColorWarning)
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}
