package ui

import (
	"fmt"
	"strings"

	"github.com/bnema/twm/internal/ipc"
	"github.com/charmbracelet/lipgloss"
)

var windowColumns = []string{"", "ID", "TITLE", "GEOMETRY", "STATE"}

// RenderStatus renders a status snapshot as a summary box followed by the
// window table, topmost window first.
func RenderStatus(status *ipc.Status, width int) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("twm"))
	b.WriteString(" ")
	b.WriteString(FormatStatus(true, fmt.Sprintf("%s backend, up %s", status.Backend, status.Uptime)))
	b.WriteString("\n\n")

	summary := []string{
		field("Seat", status.Seat),
		field("Output", fmt.Sprintf("%s %s", status.Output, status.Mode)),
		field("Pointer", fmt.Sprintf("%.0f,%.0f", status.PointerX, status.PointerY)),
		field("Grab", status.Grab),
		field("Frames", fmt.Sprintf("%d", status.Frames)),
	}
	box := BoxStyle
	if width > 0 {
		box = box.Width(width - 2)
	}
	b.WriteString(box.Render(strings.Join(summary, "\n")))
	b.WriteString("\n\n")

	b.WriteString(SubheaderStyle.Render(fmt.Sprintf("Windows (%d)", len(status.Windows))))
	b.WriteString("\n")
	if len(status.Windows) == 0 {
		b.WriteString(MutedStyle.Render("  no windows mapped"))
		b.WriteString("\n")
	} else {
		b.WriteString(renderWindowTable(status.Windows))
	}

	if len(status.Bindings) > 0 {
		b.WriteString("\n")
		b.WriteString(SubheaderStyle.Render("Bindings"))
		b.WriteString("\n")
		for _, binding := range status.Bindings {
			b.WriteString(FormatListItem(binding, false))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func field(name, value string) string {
	return SubtleStyle.Render(fmt.Sprintf("%-8s", name)) + " " + TextStyle.Render(value)
}

func renderWindowTable(windows []ipc.WindowStatus) string {
	rows := make([][]string, 0, len(windows))
	for _, w := range windows {
		marker := ""
		if w.Focused {
			marker = IconFocus
		}
		rows = append(rows, []string{
			marker,
			fmt.Sprintf("%d", w.ID),
			w.Title,
			fmt.Sprintf("%dx%d+%d+%d", w.Width, w.Height, w.X, w.Y),
			windowState(w),
		})
	}

	widths := make([]int, len(windowColumns))
	for i, c := range windowColumns {
		widths[i] = lipgloss.Width(c)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	line := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = TableCellStyle.Render(style.Width(widths[i]).Render(cell))
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	}

	var b strings.Builder
	b.WriteString(line(windowColumns, TableHeaderStyle))
	b.WriteString("\n")
	for i, row := range rows {
		style := TableRowStyle
		if windows[i].Focused {
			style = TableActiveRowStyle
		}
		b.WriteString(line(row, style))
		b.WriteString("\n")
	}
	return b.String()
}

func windowState(w ipc.WindowStatus) string {
	var states []string
	if w.Activated {
		states = append(states, "activated")
	}
	if w.Fullscreen {
		states = append(states, "fullscreen")
	}
	if w.Maximized {
		states = append(states, "maximized")
	}
	if len(states) == 0 {
		return "-"
	}
	return strings.Join(states, ",")
}
