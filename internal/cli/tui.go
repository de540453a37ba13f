package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/caldwen/spellweave/pkg/shape"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// shapeBlurbs gives each silhouette a one-line description for the picker.
var shapeBlurbs = map[string]string{
	"organic":   "loose natural scatter",
	"mountain":  "wide base tapering to a peak",
	"tree":      "trunk, branches and canopy",
	"explosion": "dense core with satellite clusters",
	"cloud":     "billowing band, frayed edges",
	"grid":      "strict rows, no jitter",
	"ring":      "hollow center",
	"spiral":    "single winding arm",
}

// =============================================================================
// ShapeAssignModel - Interactive shape selection per school
// =============================================================================

// ShapeAssignModel is the bubbletea model for assigning a silhouette to each
// school before a build. Schools are presented one at a time; enter confirms
// the highlighted shape and advances to the next school.
type ShapeAssignModel struct {
	Schools  []string
	Shapes   []string
	Cursor   int
	Index    int
	Assigned map[string]string
	Done     bool
}

// NewShapeAssignModel creates a shape picker for the given schools.
func NewShapeAssignModel(schools []string) ShapeAssignModel {
	return ShapeAssignModel{
		Schools:  schools,
		Shapes:   shape.Names(),
		Assigned: make(map[string]string, len(schools)),
	}
}

func (m ShapeAssignModel) Init() tea.Cmd {
	return nil
}

func (m ShapeAssignModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Shapes)-1 {
				m.Cursor++
			}
		case "enter":
			m.Assigned[m.Schools[m.Index]] = m.Shapes[m.Cursor]
			m.Index++
			if m.Index >= len(m.Schools) {
				m.Done = true
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m ShapeAssignModel) View() string {
	if m.Index >= len(m.Schools) {
		return ""
	}

	var b strings.Builder

	b.WriteString(StyleTitle.Render("Choose shape for " + m.Schools[m.Index]))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("arrows: navigate  enter: select  q: quit"))
	b.WriteString("\n\n")

	for i, name := range m.Shapes {
		cursor := "  "
		if i == m.Cursor {
			cursor = "> "
		}

		line := fmt.Sprintf("%s%-10s  %s", cursor, name, listDimStyle.Render(shapeBlurbs[name]))

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(strings.Repeat("-", 40)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  school %d of %d", m.Index+1, len(m.Schools))))
	b.WriteString("\n")

	return b.String()
}

// pickShapes runs the interactive shape picker and returns the chosen
// shape per school. A nil map means the user aborted.
func pickShapes(schools []string) (map[string]string, error) {
	model := NewShapeAssignModel(schools)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return nil, fmt.Errorf("run shape picker: %w", err)
	}
	result, ok := final.(ShapeAssignModel)
	if !ok || !result.Done {
		return nil, nil
	}
	return result.Assigned, nil
}
