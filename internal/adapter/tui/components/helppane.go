package components

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

// HelpPaneModel shows markdown help rendered with glamour.
type HelpPaneModel struct {
	Viewport viewport.Model
	Visible  bool
	markdown string
	rendered string
	renderer *glamour.TermRenderer
	ready    bool
	width    int
}

// NewHelpPane creates a hidden help pane for markdown.
func NewHelpPane(markdown string) HelpPaneModel {
	return HelpPaneModel{markdown: markdown}
}

// SetSize sets the pane dimensions. The markdown is re-wrapped when the width changes.
func (m *HelpPaneModel) SetSize(w, h int) {
	if !m.ready {
		m.Viewport = viewport.New(w, h)
		m.Viewport.MouseWheelEnabled = true
		m.ready = true
	} else {
		m.Viewport.Width = w
		m.Viewport.Height = h
	}
	if w != m.width {
		m.width = w
		m.renderer = nil
		m.rendered = ""
	}
	m.Viewport.SetContent(m.render())
}

// Toggle shows or hides the pane.
func (m *HelpPaneModel) Toggle() {
	m.Visible = !m.Visible
	if m.Visible && m.ready {
		m.Viewport.GotoTop()
	}
}

// Update handles viewport scrolling.
func (m HelpPaneModel) Update(msg tea.Msg) (HelpPaneModel, tea.Cmd) {
	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

// View renders the pane.
func (m HelpPaneModel) View() string {
	if !m.ready {
		return ""
	}
	return m.Viewport.View()
}

func (m *HelpPaneModel) render() string {
	if m.rendered != "" {
		return m.rendered
	}
	if m.renderer == nil {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(max(m.width-2, 20)),
		)
		if err != nil {
			return m.markdown
		}
		m.renderer = r
	}
	out, err := m.renderer.Render(m.markdown)
	if err != nil {
		return m.markdown
	}
	m.rendered = out
	return out
}
