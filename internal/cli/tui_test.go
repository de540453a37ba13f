package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestShapeAssignModel_Navigation(t *testing.T) {
	m := NewShapeAssignModel([]string{"Destruction"})

	// Cursor does not move above the first entry.
	next, _ := m.Update(keyMsg("up"))
	m = next.(ShapeAssignModel)
	if m.Cursor != 0 {
		t.Errorf("cursor = %d after up at top, want 0", m.Cursor)
	}

	next, _ = m.Update(keyMsg("down"))
	m = next.(ShapeAssignModel)
	if m.Cursor != 1 {
		t.Errorf("cursor = %d after down, want 1", m.Cursor)
	}

	next, _ = m.Update(keyMsg("k"))
	m = next.(ShapeAssignModel)
	if m.Cursor != 0 {
		t.Errorf("cursor = %d after k, want 0", m.Cursor)
	}

	// Cursor stops at the last entry.
	for range m.Shapes {
		next, _ = m.Update(keyMsg("j"))
		m = next.(ShapeAssignModel)
	}
	if m.Cursor != len(m.Shapes)-1 {
		t.Errorf("cursor = %d, want %d", m.Cursor, len(m.Shapes)-1)
	}
}

func TestShapeAssignModel_AssignAdvances(t *testing.T) {
	m := NewShapeAssignModel([]string{"Destruction", "Restoration"})

	next, cmd := m.Update(keyMsg("enter"))
	m = next.(ShapeAssignModel)
	if cmd != nil {
		t.Error("first enter should not quit")
	}
	if m.Index != 1 {
		t.Errorf("index = %d after first enter, want 1", m.Index)
	}
	if m.Assigned["Destruction"] != m.Shapes[0] {
		t.Errorf("Destruction = %q, want %q", m.Assigned["Destruction"], m.Shapes[0])
	}

	// Pick the second shape for the second school; the run ends.
	next, _ = m.Update(keyMsg("down"))
	m = next.(ShapeAssignModel)
	next, cmd = m.Update(keyMsg("enter"))
	m = next.(ShapeAssignModel)
	if !m.Done {
		t.Error("model should be done after the last school")
	}
	if cmd == nil {
		t.Error("last enter should quit")
	}
	if m.Assigned["Restoration"] != m.Shapes[1] {
		t.Errorf("Restoration = %q, want %q", m.Assigned["Restoration"], m.Shapes[1])
	}
}

func TestShapeAssignModel_Quit(t *testing.T) {
	m := NewShapeAssignModel([]string{"Destruction"})
	next, cmd := m.Update(keyMsg("q"))
	m = next.(ShapeAssignModel)
	if cmd == nil {
		t.Error("q should quit")
	}
	if m.Done {
		t.Error("quit without assignment should not mark the model done")
	}
}

func TestShapeAssignModel_View(t *testing.T) {
	m := NewShapeAssignModel([]string{"Destruction", "Restoration"})
	view := m.View()

	if !strings.Contains(view, "Destruction") {
		t.Error("view missing current school")
	}
	for _, name := range m.Shapes {
		if !strings.Contains(view, name) {
			t.Errorf("view missing shape %q", name)
		}
	}
	if !strings.Contains(view, "school 1 of 2") {
		t.Error("view missing progress footer")
	}

	// View goes blank when every school is assigned.
	m.Index = len(m.Schools)
	if m.View() != "" {
		t.Error("finished model should render nothing")
	}
}

func TestShapeBlurbsCoverAllShapes(t *testing.T) {
	m := NewShapeAssignModel(nil)
	for _, name := range m.Shapes {
		if shapeBlurbs[name] == "" {
			t.Errorf("shape %q has no blurb", name)
		}
	}
}
