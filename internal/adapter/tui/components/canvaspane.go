package components

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"canvas-ai/internal/adapter/tui/theme"
)

// CanvasPaneModel shows the character-grid rendering of the canvas in a
// bordered, scrollable pane.
type CanvasPaneModel struct {
	Viewport viewport.Model
	Title    string
	Busy     bool
	content  string
	ready    bool
	width    int
	height   int
}

// NewCanvasPane creates a canvas pane.
func NewCanvasPane() CanvasPaneModel {
	return CanvasPaneModel{Title: "Canvas"}
}

// SetSize sets the outer pane dimensions, header and border included.
func (m *CanvasPaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	cols, rows := m.GridSize()
	if !m.ready {
		m.Viewport = viewport.New(cols, rows)
		m.Viewport.MouseWheelEnabled = true
		m.ready = true
	} else {
		m.Viewport.Width = cols
		m.Viewport.Height = rows
	}
	m.refreshContent()
}

// GridSize returns the cells available for drawing inside the border.
func (m CanvasPaneModel) GridSize() (cols, rows int) {
	return max(m.width-2, 1), max(m.height-3, 1)
}

// SetCanvas updates the displayed grid.
func (m *CanvasPaneModel) SetCanvas(title, content string) {
	m.Title = title
	m.content = content
	m.refreshContent()
}

// Update handles viewport scrolling.
func (m CanvasPaneModel) Update(msg tea.Msg) (CanvasPaneModel, tea.Cmd) {
	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

// View renders the canvas pane.
func (m CanvasPaneModel) View() string {
	if !m.ready {
		return ""
	}
	border := theme.CanvasBorder
	header := theme.TextInfo.Render(" "+theme.SymbolCanvas) + " " + theme.Bold.Render(m.Title)
	if m.Busy {
		border = theme.CanvasBorderBusy
		header += " " + theme.TextMuted.Render(theme.SymbolPending+" drawing")
	}
	return header + "\n" + border.Render(m.Viewport.View())
}

func (m *CanvasPaneModel) refreshContent() {
	if !m.ready {
		return
	}
	if m.content == "" {
		m.Viewport.SetContent(theme.TextMuted.Render("  Nothing drawn yet. Describe something below."))
		return
	}
	m.Viewport.SetContent(m.content)
}
