package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/taskdeck/taskdeck/internal/core/styles"
	"github.com/taskdeck/taskdeck/internal/core/task"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderFilterBar())
	b.WriteString("\n\n")
	b.WriteString(m.renderSections())

	if m.engine.HasMore() {
		b.WriteString("\n")
		b.WriteString(styles.TaskMetaStyle.Render("  … press L to load more"))
		b.WriteString("\n")
	}

	if footer := m.toastView.Footer(m.width); footer != "" {
		b.WriteString("\n")
		b.WriteString(footer)
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	return b.String()
}

func (m *Model) renderHeader() string {
	title := styles.CommandHeaderStyle.Render("taskdeck")

	counts := m.engine.Counts()
	summary := styles.TaskMetaStyle.Render(
		fmt.Sprintf("%d open · %d done", counts.Todo, counts.Done),
	)

	if m.state == stateSearching {
		return title + "  " + m.searchInput.View()
	}
	if q := m.engine.SearchQuery(); q != "" {
		return title + "  " + styles.SearchPromptStyle.Render("/"+q) + "  " + summary
	}
	if m.state == stateSavingView {
		return title + "  " + m.viewInput.View()
	}
	return title + "  " + summary
}

// renderFilterBar shows either the active selection (normal mode) or the
// full toggle list with a cursor (filter mode).
func (m *Model) renderFilterBar() string {
	if m.state != stateFiltering {
		var active []string
		for _, c := range m.chips {
			if m.chipActive(c) {
				active = append(active, m.renderChip(c, false))
			}
		}
		if len(active) == 0 {
			return styles.TaskMetaStyle.Render("  no filters · f to filter")
		}
		return "  " + strings.Join(active, " ")
	}

	var rendered []string
	for i, c := range m.chips {
		rendered = append(rendered, m.renderChip(c, i == m.chipCursor))
	}
	return "  " + strings.Join(rendered, " ")
}

func (m *Model) chipActive(c chip) bool {
	sel := m.engine.Selection()
	if c.isDynamic() {
		return sel.HasDynamic(c.dynamic.ID)
	}
	return sel.Has(c.tag)
}

func (m *Model) renderChip(c chip, cursor bool) string {
	var label string
	if c.isDynamic() {
		label = c.dynamic.Icon + " " + c.dynamic.DisplayName
		if n := m.engine.TagCount(c.dynamic.ID); n > 0 {
			label += styles.FilterCountStyle.Render(fmt.Sprintf(" %d", n))
		}
	} else {
		label = c.tag.Icon() + " " + c.tag.DisplayName()
	}

	style := styles.FilterChipStyle
	if m.chipActive(c) {
		style = styles.FilterChipActiveStyle
	}
	if cursor {
		style = style.Underline(true)
	}
	return style.Render(label)
}

func (m *Model) renderSections() string {
	sections := m.engine.Sections()
	if len(sections) == 0 {
		if m.nav.State() == NavInlineCreating {
			return "  " + m.entryInput.View() + "\n"
		}
		return styles.TaskMetaStyle.Render("  nothing here · enter to add a task") + "\n"
	}

	var b strings.Builder
	for _, s := range sections {
		header := styles.CategoryHeaderStyle.Render(s.Category.String())
		count := styles.CategoryCountStyle.Render(fmt.Sprintf(" %d", len(s.Tasks)))
		b.WriteString(header + count + "\n")

		if m.nav.State() == NavInlineCreating && m.nav.AfterID() == "" && s.Category == task.CategoryToday {
			b.WriteString("    " + m.entryInput.View() + "\n")
		}

		for _, tk := range s.Tasks {
			if m.nav.EditingID() == tk.ID {
				b.WriteString("    " + m.entryInput.View() + "\n")
			} else {
				b.WriteString(m.renderTask(tk) + "\n")
			}
			if m.nav.State() == NavInlineCreating && m.nav.AfterID() == tk.ID {
				b.WriteString("    " + m.entryInput.View() + "\n")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderTask(tk task.Task) string {
	cursor := "  "
	if m.nav.SelectedID() == tk.ID {
		cursor = styles.TaskSelectedStyle.Render("▸ ")
	}

	box := "[ ]"
	if tk.Completed {
		box = "[x]"
	}

	indent := strings.Repeat("  ", tk.Indent())

	desc := tk.Description
	style := styles.TaskStyle
	switch {
	case m.engine.IsMarked(tk.ID):
		style = styles.TaskMarkedStyle
	case tk.Completed:
		style = styles.TaskCompletedStyle
	case m.nav.SelectedID() == tk.ID:
		style = styles.TaskSelectedStyle
	}

	line := cursor + indent + box + " " + style.Render(desc)

	if tk.Priority != nil {
		line += " " + renderPriority(*tk.Priority)
	}
	if tk.DueAt != nil {
		line += " " + renderDue(*tk.DueAt)
	}
	if tk.IsLocal() {
		line += " " + styles.StatusDirtyStyle.Render("⋯")
	}
	return line
}

func renderPriority(p task.Priority) string {
	switch p {
	case task.PriorityHigh:
		return styles.PriorityHighStyle.Render("●")
	case task.PriorityMedium:
		return styles.PriorityMediumStyle.Render("●")
	default:
		return styles.PriorityLowStyle.Render("●")
	}
}

func renderDue(due time.Time) string {
	label := due.Format("Jan 2")
	if due.Before(time.Now()) {
		return styles.TaskOverdueStyle.Render(label)
	}
	return styles.TaskDueStyle.Render(label)
}

func (m *Model) renderStatusBar() string {
	var parts []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts,
			styles.StatusKeyStyle.Render(h.Key)+" "+styles.TaskMetaStyle.Render(h.Desc))
	}
	help := strings.Join(parts, "  ")

	if marked := len(m.engine.Marked()); marked > 0 {
		help = styles.StatusDirtyStyle.Render(fmt.Sprintf("%d marked", marked)) + "  " + help
	}

	bar := styles.StatusBarStyle.Render(" " + help)
	if m.width > 0 {
		bar = lipgloss.PlaceHorizontal(m.width, lipgloss.Left, bar)
	}
	return bar
}
