package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/cleardep/internal/core/domain"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.Viewport.Height == 0 {
		return "Initializing..."
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, m.taskList(), m.logPane()),
		m.footer(),
	)
}

func (m *Model) taskList() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("TASKS") + "\n\n")

	for _, task := range m.Tasks {
		var style lipgloss.Style
		var icon string

		switch task.Status {
		case domain.VertexStatusRunning:
			style, icon = taskRunningStyle, "●"
		case domain.VertexStatusCompleted:
			style, icon = taskDoneStyle, "✓"
		case domain.VertexStatusFailed:
			style, icon = taskErrorStyle, "✗"
		case domain.VertexStatusCached:
			style, icon = taskCachedStyle, "="
		case domain.VertexStatusSkipped:
			style, icon = taskCachedStyle, "-"
		default:
			style, icon = taskPendingStyle, "○"
		}

		line := fmt.Sprintf("%s %s", icon, task.Name)
		if task.Name == m.ActiveTask {
			line = "> " + line
		} else {
			line = "  " + line
		}
		s.WriteString(style.Render(line) + "\n")
	}

	return listStyle.Render(s.String())
}

func (m *Model) logPane() string {
	header := titleStyle.Render("LOGS (Waiting...)")
	if m.ActiveTask != "" {
		header = titleStyle.Render("LOGS: " + m.ActiveTask)
	}
	return logStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, m.Viewport.View()))
}

func (m *Model) footer() string {
	finished := 0
	for _, t := range m.Tasks {
		if t.Status.IsTerminal() {
			finished++
		}
	}
	return footerStyle.Render(fmt.Sprintf("%d/%d tasks finished  q: quit", finished, len(m.Tasks)))
}
