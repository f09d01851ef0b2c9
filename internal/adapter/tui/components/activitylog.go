package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"canvas-ai/internal/adapter/tui/theme"
)

const maxLogEntries = 200

// LogLevel styles an activity log entry.
type LogLevel int

const (
	LogInfo LogLevel = iota
	LogSuccess
	LogWarn
	LogError
)

// LogEntry is one line (or block) of the activity log.
type LogEntry struct {
	Time  time.Time
	Level LogLevel
	Text  string
}

// ActivityLogModel is a short scrollable log under the canvas with smart
// auto-scroll.
type ActivityLogModel struct {
	Viewport viewport.Model
	entries  []LogEntry
	ready    bool
	atBottom bool
	width    int
	height   int
}

// NewActivityLog creates an empty log.
func NewActivityLog() ActivityLogModel {
	return ActivityLogModel{atBottom: true}
}

// SetSize sets the viewport dimensions.
func (m *ActivityLogModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	if !m.ready {
		m.Viewport = viewport.New(w, h)
		m.Viewport.MouseWheelEnabled = true
		m.ready = true
	} else {
		m.Viewport.Width = w
		m.Viewport.Height = h
	}
	m.refreshContent()
}

// Add appends an entry and auto-scrolls if at bottom.
func (m *ActivityLogModel) Add(level LogLevel, text string) {
	m.entries = append(m.entries, LogEntry{Time: time.Now(), Level: level, Text: text})
	if len(m.entries) > maxLogEntries {
		m.entries = m.entries[len(m.entries)-maxLogEntries:]
	}
	m.refreshContent()
	if m.atBottom && m.ready {
		m.Viewport.GotoBottom()
	}
}

// Entries returns the retained entries, oldest first.
func (m ActivityLogModel) Entries() []LogEntry {
	return m.entries
}

// Update handles viewport scrolling.
func (m ActivityLogModel) Update(msg tea.Msg) (ActivityLogModel, tea.Cmd) {
	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	m.atBottom = m.Viewport.AtBottom()
	return m, cmd
}

// View renders the log.
func (m ActivityLogModel) View() string {
	if !m.ready {
		return ""
	}
	return m.Viewport.View()
}

func (m *ActivityLogModel) refreshContent() {
	if !m.ready {
		return
	}
	var sb strings.Builder
	for _, e := range m.entries {
		var marker string
		switch e.Level {
		case LogSuccess:
			marker = theme.TextSuccess.Render(theme.SymbolSuccess)
		case LogWarn:
			marker = theme.TextWarning.Render(theme.SymbolWarning)
		case LogError:
			marker = theme.TextError.Render(theme.SymbolError)
		default:
			marker = theme.TextInfo.Render(theme.SymbolInfo)
		}
		sb.WriteString(" " + theme.Dim.Render(e.Time.Format("15:04:05")) + " " + marker + " " + e.Text + "\n")
	}
	m.Viewport.SetContent(strings.TrimSuffix(sb.String(), "\n"))
}

// Divider renders a horizontal rule of the given width.
func Divider(width int) string {
	return theme.Dim.Render(strings.Repeat("─", max(width, 0)))
}
