package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/taskdeck/taskdeck/internal/core/styles"
)

type toastTickMsg time.Time

func scheduleToastTick() tea.Cmd {
	return tea.Tick(toastTickInterval, func(t time.Time) tea.Msg {
		return toastTickMsg(t)
	})
}

// ToastView renders the toast stack, oldest at top, newest at bottom.
type ToastView struct {
	controller *ToastController
}

func NewToastView(controller *ToastController) *ToastView {
	return &ToastView{controller: controller}
}

// View renders all active toasts as a vertical stack.
func (v *ToastView) View() string {
	toasts := v.controller.Toasts()
	if len(toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(toasts))
	for _, t := range toasts {
		rendered = append(rendered, renderToast(t))
	}
	return strings.Join(rendered, "\n")
}

// Footer right-aligns the toast stack into a block of the given width,
// for placing above the status bar.
func (v *ToastView) Footer(width int) string {
	content := v.View()
	if content == "" {
		return ""
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, content)
}

func renderToast(t toast) string {
	var icon string
	var style lipgloss.Style

	switch t.level {
	case ToastError:
		icon = "✗"
		style = styles.ToastErrorStyle
	case ToastSuccess:
		icon = "✓"
		style = styles.ToastSuccessStyle
	case ToastUndo:
		icon = "↩"
		style = styles.ToastUndoStyle
	default:
		icon = "•"
		style = styles.ToastInfoStyle
	}

	return style.Width(toastWidth).Render(icon + " " + t.message)
}
