package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"canvas-ai/internal/adapter/tui/theme"
)

// KeyHint represents a single keybinding hint shown in the status bar.
type KeyHint struct {
	Key  string // e.g. "Enter"
	Desc string // e.g. "Draw"
}

// StatusBarModel renders a bottom status bar with keybinding hints and
// connection info.
type StatusBarModel struct {
	Hints    []KeyHint
	Endpoint string
	Objects  int
	Extra    string // e.g. "Drawing..."
	width    int
}

// NewStatusBar creates an empty status bar.
func NewStatusBar() StatusBarModel {
	return StatusBarModel{}
}

// SetWidth updates the available width.
func (m *StatusBarModel) SetWidth(w int) {
	m.width = w
}

// View renders the status bar as a single line.
func (m StatusBarModel) View() string {
	var hints []string
	for _, h := range m.Hints {
		hints = append(hints, theme.StatusKey.Render(h.Key)+": "+h.Desc)
	}
	left := strings.Join(hints, "  "+theme.Dim.Render("|")+"  ")

	parts := []string{}
	if m.Endpoint != "" {
		parts = append(parts, m.Endpoint)
	}
	parts = append(parts, pluralObjects(m.Objects))
	right := theme.TextMuted.Render(strings.Join(parts, " "+theme.SymbolBullet+" "))
	if m.Extra != "" {
		right += "  " + theme.TextInfo.Render(m.Extra)
	}

	// Padding counts toward Width, so the gap is measured inside it.
	inner := m.width - theme.StatusBar.GetHorizontalFrameSize()
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return theme.StatusBar.Width(m.width).MaxHeight(1).Render(bar)
}

func pluralObjects(n int) string {
	if n == 1 {
		return "1 object"
	}
	return strconv.Itoa(n) + " objects"
}
