package studio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"canvas-ai/internal/adapter/surface/cells"
	"canvas-ai/internal/adapter/tui/components"
	"canvas-ai/internal/adapter/tui/theme"
	"canvas-ai/internal/adapter/tui/uxerror"
	"canvas-ai/internal/domain"
	"canvas-ai/internal/usecase/canvas"
)

const maxLogHeight = 5

// ModelDeps are dependencies injected into the studio model.
type ModelDeps struct {
	Session  *canvas.Session
	Endpoint string
	// CanvasWidth and CanvasHeight size the PNG written by /save.
	CanvasWidth  int
	CanvasHeight int
	Background   color.NRGBA
	Logger       *slog.Logger
}

// Model is the root Bubble Tea model: the canvas on top, a short activity
// log, the prompt input and a status bar.
type Model struct {
	deps ModelDeps

	canvas    components.CanvasPaneModel
	help      components.HelpPaneModel
	log       components.ActivityLogModel
	input     components.InputAreaModel
	statusBar components.StatusBarModel
	spinner   spinner.Model

	waiting  bool
	quitting bool
	width    int
	height   int
	cols     int
	rows     int

	// gen is bumped on every prompt and cancel; PromptDoneMsg with an
	// older gen is discarded.
	gen      uint64
	cancelFn context.CancelFunc
}

// NewModel creates the root model.
func NewModel(deps ModelDeps) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.ColorInfo)

	sb := components.NewStatusBar()
	sb.Endpoint = deps.Endpoint
	sb.Objects = len(deps.Session.Objects())
	sb.Hints = defaultHints()

	input := components.NewInputArea()
	input.Autocomplete = components.NewAutocomplete(components.CanvasCommands)

	return Model{
		deps:      deps,
		canvas:    components.NewCanvasPane(),
		help:      components.NewHelpPane(helpMarkdown()),
		log:       components.NewActivityLog(),
		input:     input,
		statusBar: sb,
		spinner:   s,
	}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		if m.help.Visible {
			m.help, cmd = m.help.Update(msg)
		} else {
			m.canvas, cmd = m.canvas.Update(msg)
		}
		return m, cmd

	case components.InputSubmitMsg:
		return m.handleSubmit(msg.Value)

	case PromptDoneMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		return m.handleDone(msg)

	case FeedCanvasMsg:
		return m.handleFeed(msg)

	case FeedStateMsg:
		if msg.Connected {
			m.log.Add(components.LogInfo, "Live feed connected.")
		} else {
			m.log.Add(components.LogWarn, "Live feed disconnected, retrying.")
		}
		return m, nil

	case QuitMsg:
		m.quitting = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	if !m.waiting {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View renders the whole UI.
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	if m.width == 0 {
		return "  Initializing..."
	}

	main := m.canvas.View()
	if m.help.Visible {
		main = theme.Bold.Render(" Help") + "\n" + m.help.View()
	}

	inputView := m.input.View()
	if m.waiting {
		inputView = m.spinner.View() + " " + theme.Dim.Render("Drawing... Ctrl+C cancels")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		main,
		m.log.View(),
		components.Divider(m.width),
		inputView,
		m.statusBar.View(),
	)
}

// layout resizes every sub-model and, when the grid changed, gives the
// session a fresh character surface so the canvas is redrawn at the new size.
func (m *Model) layout() {
	const statusH, inputH, dividerH = 1, 1, 1
	logH := theme.Clamp(m.height/6, 1, maxLogHeight)
	canvasH := max(m.height-statusH-inputH-dividerH-logH, 5)

	m.canvas.SetSize(m.width, canvasH)
	m.help.SetSize(m.width, canvasH-1)
	m.log.SetSize(m.width, logH)
	m.input.SetWidth(m.width)
	m.statusBar.SetWidth(m.width)

	cols, rows := m.canvas.GridSize()
	if cols == m.cols && rows == m.rows {
		return
	}
	m.cols, m.rows = cols, rows
	surf := cells.New(cols, rows, cells.WithBackground(m.deps.Background))
	if err := m.deps.Session.Resize(surf); err != nil {
		m.log.Add(components.LogError, uxerror.Humanize(err).Render())
	}
	m.refreshCanvas()
}

// refreshCanvas copies the session's grid into the canvas pane.
func (m *Model) refreshCanvas() {
	var content string
	m.deps.Session.Inspect(func(s domain.Surface) {
		if grid, ok := s.(*cells.Surface); ok {
			content = grid.String()
		}
	})
	n := len(m.deps.Session.Objects())
	if n == 0 {
		content = ""
	}
	m.canvas.SetCanvas(fmt.Sprintf("Canvas %dx%d", m.cols, m.rows), content)
	m.statusBar.Objects = n
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if isMouseEscapeLeak(msg.String()) {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.waiting {
			m.cancelRequest("Drawing cancelled.")
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case tea.KeyF1:
		m.toggleHelp()
		return m, nil

	case tea.KeyEsc:
		if m.help.Visible {
			m.toggleHelp()
			return m, nil
		}

	case tea.KeyCtrlL:
		if !m.waiting {
			return m.handleSlashCommand("/clear", nil)
		}
		return m, nil

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		if m.help.Visible {
			m.help, cmd = m.help.Update(msg)
		} else {
			m.canvas, cmd = m.canvas.Update(msg)
		}
		return m, cmd
	}

	if m.waiting {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleSubmit starts a prompt, or runs a slash command.
func (m Model) handleSubmit(value string) (tea.Model, tea.Cmd) {
	if cmd, args, ok := components.ParseSlashCommand(value); ok {
		m.input.Reset()
		return m.handleSlashCommand(cmd, args)
	}
	if m.waiting {
		return m, nil
	}

	if m.cancelFn != nil {
		m.cancelFn()
	}
	m.gen++
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelFn = cancel

	m.waiting = true
	m.canvas.Busy = true
	m.input.SetEnabled(false)
	m.statusBar.Extra = "Drawing" + theme.SymbolEllipsis
	m.statusBar.Hints = waitingHints()
	m.log.Add(components.LogInfo, theme.SymbolArrowR+" "+value)

	return m, submitCmd(ctx, m.deps.Session, value, m.gen)
}

// handleDone settles a prompt. The input is cleared whatever the outcome.
func (m Model) handleDone(msg PromptDoneMsg) (tea.Model, tea.Cmd) {
	if m.cancelFn != nil {
		m.cancelFn()
		m.cancelFn = nil
	}
	m.settle()
	m.refreshCanvas()

	switch {
	case msg.Err == nil:
		m.log.Add(components.LogSuccess, fmt.Sprintf("Canvas updated with %d object(s).", msg.Objects))
	case errors.Is(msg.Err, context.Canceled):
		// The cancel was already logged.
	default:
		m.logger().Error("prompt failed", "error", msg.Err)
		m.log.Add(components.LogError, uxerror.Humanize(msg.Err).Render())
	}
	return m, nil
}

// handleFeed applies a canvas pushed by the server. Pushes are ignored while
// this client's own prompt is in flight; its reply will replace the canvas.
func (m Model) handleFeed(msg FeedCanvasMsg) (tea.Model, tea.Cmd) {
	if m.waiting {
		return m, nil
	}
	applied, err := m.deps.Session.ReplaceIfIdle(msg.Objects)
	if err != nil {
		m.log.Add(components.LogError, uxerror.Humanize(err).Render())
	}
	if !applied {
		return m, nil
	}
	m.refreshCanvas()
	m.log.Add(components.LogInfo, fmt.Sprintf("Live update: %d object(s).", len(msg.Objects)))
	return m, nil
}

func (m Model) handleSlashCommand(cmd string, args []string) (tea.Model, tea.Cmd) {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}

	switch cmd {
	case "/help":
		m.toggleHelp()

	case "/quit", "/exit":
		m.quitting = true
		return m, tea.Quit

	case "/clear", "/redraw", "/load":
		if m.waiting {
			m.log.Add(components.LogError, uxerror.Humanize(domain.ErrBusy).Render())
			return m, nil
		}
		m.runCanvasCommand(cmd, arg)

	case "/save":
		path, err := m.savePNG(arg)
		if err != nil {
			m.log.Add(components.LogError, "Save failed: "+err.Error())
			return m, nil
		}
		m.log.Add(components.LogSuccess, "Saved "+path)

	case "/export":
		path, err := exportJSON(m.deps.Session, arg)
		if err != nil {
			m.log.Add(components.LogError, "Export failed: "+err.Error())
			return m, nil
		}
		m.log.Add(components.LogSuccess, "Exported objects to "+path)

	default:
		m.log.Add(components.LogError, fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}
	return m, nil
}

// runCanvasCommand handles the commands that change the drawn objects.
func (m *Model) runCanvasCommand(cmd, arg string) {
	switch cmd {
	case "/clear":
		if err := m.deps.Session.Replace([]json.RawMessage{}); err != nil {
			m.log.Add(components.LogError, uxerror.Humanize(err).Render())
		}
		m.log.Add(components.LogSuccess, "Canvas cleared.")
	case "/redraw":
		if err := m.deps.Session.Redraw(); err != nil {
			m.log.Add(components.LogError, uxerror.Humanize(err).Render())
		} else {
			m.log.Add(components.LogInfo, "Redrawn.")
		}
	case "/load":
		if arg == "" {
			m.log.Add(components.LogError, "Usage: /load <path>")
			return
		}
		n, err := loadJSON(m.deps.Session, arg)
		if err != nil {
			m.log.Add(components.LogError, "Load failed: "+err.Error())
		} else {
			m.log.Add(components.LogSuccess, fmt.Sprintf("Loaded %d object(s) from %s", n, arg))
		}
	}
	m.refreshCanvas()
}

// cancelRequest abandons the in-flight prompt. The bumped gen makes its
// completion stale.
func (m *Model) cancelRequest(reason string) {
	if m.cancelFn != nil {
		m.cancelFn()
		m.cancelFn = nil
	}
	m.gen++
	m.settle()
	m.log.Add(components.LogInfo, reason)
}

// settle returns the UI to the idle state.
func (m *Model) settle() {
	m.waiting = false
	m.canvas.Busy = false
	m.input.Reset()
	m.input.SetEnabled(true)
	m.statusBar.Extra = ""
	m.statusBar.Hints = defaultHints()
}

func (m *Model) toggleHelp() {
	m.help.Toggle()
	if m.help.Visible {
		m.statusBar.Hints = helpHints()
	} else if m.waiting {
		m.statusBar.Hints = waitingHints()
	} else {
		m.statusBar.Hints = defaultHints()
	}
}

func (m Model) logger() *slog.Logger {
	if m.deps.Logger != nil {
		return m.deps.Logger
	}
	return slog.Default()
}

func defaultHints() []components.KeyHint {
	return []components.KeyHint{
		{Key: "Enter", Desc: "Draw"},
		{Key: "F1", Desc: "Help"},
		{Key: "Ctrl+L", Desc: "Clear"},
		{Key: "Ctrl+C", Desc: "Quit"},
	}
}

func waitingHints() []components.KeyHint {
	return []components.KeyHint{
		{Key: "Ctrl+C", Desc: "Cancel"},
		{Key: "PgUp/PgDn", Desc: "Scroll"},
	}
}

func helpHints() []components.KeyHint {
	return []components.KeyHint{
		{Key: "Esc", Desc: "Close"},
		{Key: "PgUp/PgDn", Desc: "Scroll"},
	}
}
