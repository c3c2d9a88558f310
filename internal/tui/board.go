package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-wetta-dashboard/internal/view"
)

// RenderBoard draws the current-conditions grid: the station title, the
// header tiles and one box per section, wrapped to fit width.
func RenderBoard(title string, layout view.Layout, board *view.Board, width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	for _, tile := range layout.Header {
		b.WriteString(mutedStyle.Render(board.Text(tile.WidgetID)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	boxes := make([]string, 0, len(layout.Sections))
	for _, section := range layout.Sections {
		boxes = append(boxes, renderSection(section, board))
	}

	perRow := 1
	if boxWidth := sectionWidth + 2; width > boxWidth {
		perRow = width / boxWidth
	}
	for start := 0; start < len(boxes); start += perRow {
		end := min(start+perRow, len(boxes))
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes[start:end]...))
		b.WriteString("\n")
	}
	return b.String()
}

func renderSection(section view.Section, board *view.Board) string {
	lines := []string{sectionTitleStyle.Render(section.Category)}
	for _, tile := range section.Tiles {
		text := board.Text(tile.WidgetID)
		value := valueStyle.Render(text)
		if tile.Unit != "" && text != view.Placeholder {
			value += " " + tile.Unit
		}
		lines = append(lines, tile.Label+": "+value)
	}
	return sectionStyle.Render(strings.Join(lines, "\n"))
}
