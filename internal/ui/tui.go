// Package ui provides the terminal frontend for the task API.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/nibzard/tasks-go/internal/client"
	"github.com/nibzard/tasks-go/internal/logging"
	"github.com/nibzard/tasks-go/internal/task"
)

// DefaultTickInterval is how often the TUI pings the server.
const DefaultTickInterval = 2 * time.Second

const storageFaultToast = "El archivo de tareas no está disponible"

// Pinger reports whether the server is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures the TUI.
type Options struct {
	Logger       *log.Logger
	ServerURL    string
	TickInterval time.Duration
}

// RunTUI starts the interactive program and blocks until the user quits or
// ctx is cancelled.
func RunTUI(ctx context.Context, mirror *client.Mirror, pinger Pinger, opts Options) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	model := newTUIModel(ctx, mirror, pinger, opts)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
	modeConfirm
)

type tuiModel struct {
	ctx          context.Context
	mirror       *client.Mirror
	pinger       Pinger
	logger       *log.Logger
	serverURL    string
	tickInterval time.Duration
	now          func() time.Time

	mode          mode
	input         textinput.Model
	editCompleted bool
	confirmPrompt string
	cursor        int
	showHelp      bool
	storageFault  bool
}

type tickMsg time.Time

type pingMsg struct {
	err error
}

type opDoneMsg struct {
	op  string
	err error
}

func newTUIModel(ctx context.Context, mirror *client.Mirror, pinger Pinger, opts Options) *tuiModel {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}

	ti := textinput.New()
	ti.CharLimit = 200
	ti.Width = 60
	ti.Prompt = "> "
	ti.Cursor.SetMode(cursor.CursorStatic)

	return &tuiModel{
		ctx:          ctx,
		mirror:       mirror,
		pinger:       pinger,
		logger:       opts.Logger,
		serverURL:    opts.ServerURL,
		tickInterval: opts.TickInterval,
		now:          time.Now,
		input:        ti,
	}
}

func (m *tuiModel) Init() tea.Cmd {
	return tea.Batch(m.run("load", m.mirror.Load), tickCmd(m.tickInterval))
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.input.Width = max(msg.Width-6, 10)
		return m, nil
	case tickMsg:
		return m, tea.Batch(m.pingCmd(), tickCmd(m.tickInterval))
	case pingMsg:
		m.handlePing(msg.err)
		return m, nil
	case opDoneMsg:
		if msg.err != nil {
			m.logger.Warn("request failed", "op", msg.op, "err", msg.err)
		}
		m.clampCursor()
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeAdd, modeEdit:
			return m.updateInput(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m *tuiModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "?", "h":
		m.showHelp = !m.showHelp
	case "j", "down":
		m.cursor++
		m.clampCursor()
	case "k", "up":
		m.cursor--
		m.clampCursor()
	case "r", "f5":
		return m, m.run("load", m.mirror.Load)
	case "0":
		m.setFilter(task.FilterAll)
	case "1":
		m.setFilter(task.FilterPending)
	case "2":
		m.setFilter(task.FilterCompleted)
	case "a":
		m.mode = modeAdd
		m.input.Placeholder = "¿Qué necesitas hacer?"
		m.input.SetValue("")
		m.input.Focus()
	case " ", "space", "x":
		if t, ok := m.selected(); ok {
			id := t.ID
			return m, m.run("toggle", func(ctx context.Context) error {
				return m.mirror.Toggle(ctx, id)
			})
		}
	case "e":
		if t, ok := m.selected(); ok {
			current, ok := m.mirror.BeginEdit(t.ID)
			if !ok {
				return m, nil
			}
			m.mode = modeEdit
			m.editCompleted = current.Completed
			m.input.Placeholder = ""
			m.input.SetValue(current.Title)
			m.input.CursorEnd()
			m.input.Focus()
		}
	case "d":
		if t, ok := m.selected(); ok {
			prompt, ok := m.mirror.RequestDelete(t.ID)
			if ok {
				m.mode = modeConfirm
				m.confirmPrompt = prompt
			}
		}
	}
	return m, nil
}

func (m *tuiModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.mode == modeEdit {
			m.mirror.CancelEdit()
		}
		m.leaveInput()
		return m, nil
	case "tab":
		if m.mode == modeEdit {
			m.editCompleted = !m.editCompleted
		}
		return m, nil
	case "enter":
		title := m.input.Value()
		if m.mode == modeAdd {
			m.leaveInput()
			return m, m.run("create", func(ctx context.Context) error {
				return m.mirror.Create(ctx, title)
			})
		}
		if strings.TrimSpace(title) == "" {
			// Rejected locally; the mirror shows the toast and the edit stays open.
			_ = m.mirror.SubmitEdit(m.ctx, title, m.editCompleted)
			return m, nil
		}
		completed := m.editCompleted
		m.leaveInput()
		return m, m.run("edit", func(ctx context.Context) error {
			return m.mirror.SubmitEdit(ctx, title, completed)
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *tuiModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		m.mode = modeList
		m.confirmPrompt = ""
		return m, m.run("delete", m.mirror.ConfirmDelete)
	case "n", "esc":
		m.mirror.CancelDelete()
		m.mode = modeList
		m.confirmPrompt = ""
	}
	return m, nil
}

func (m *tuiModel) leaveInput() {
	m.mode = modeList
	m.input.Blur()
	m.input.SetValue("")
	m.editCompleted = false
}

func (m *tuiModel) setFilter(f task.Filter) {
	m.mirror.SetFilter(f)
	m.cursor = 0
}

func (m *tuiModel) selected() (task.Task, bool) {
	visible := m.mirror.Visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return task.Task{}, false
	}
	return visible[m.cursor], true
}

func (m *tuiModel) clampCursor() {
	n := len(m.mirror.Visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *tuiModel) run(op string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(m.ctx)}
	}
}

// handlePing reports a server that answers but cannot read its tasks file
// once per episode, separately from connectivity.
func (m *tuiModel) handlePing(err error) {
	var apiErr *client.APIError
	switch {
	case err == nil:
		m.storageFault = false
	case errors.As(err, &apiErr):
		m.logger.Warn("server unhealthy", "err", err)
		if !m.storageFault {
			msg := apiErr.Message
			if msg == "" {
				msg = storageFaultToast
			}
			m.mirror.Notify(msg, client.ToastError)
		}
		m.storageFault = true
	default:
		m.logger.Debug("ping failed", "err", err)
	}
}

func (m *tuiModel) pingCmd() tea.Cmd {
	return func() tea.Msg {
		err := m.pinger.Ping(m.ctx)
		if setErr := m.mirror.SetOnline(m.ctx, reachable(err)); setErr != nil {
			m.logger.Warn("reload after reconnect failed", "err", setErr)
		}
		return pingMsg{err: err}
	}
}

// reachable treats any API response, healthy or not, as a live server.
func reachable(err error) bool {
	var apiErr *client.APIError
	return err == nil || errors.As(err, &apiErr)
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b, m.serverURL, m.mirror.Online())

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b)
		return b.String()
	}

	writeStats(&b, m.mirror.Stats())
	writeFilters(&b, m.mirror.Filter())

	if m.mirror.Loading() {
		b.WriteString(mutedStyle.Render("  Cargando tareas...") + "\n\n")
	} else {
		writeTasks(&b, m.mirror.Visible(), m.cursor, m.now())
	}

	switch m.mode {
	case modeAdd:
		b.WriteString(sectionStyle.Render("Nueva tarea") + "\n")
		b.WriteString("  " + m.input.View() + "\n")
		b.WriteString(mutedStyle.Render("  enter guardar · esc cancelar") + "\n\n")
	case modeEdit:
		check := "[ ]"
		if m.editCompleted {
			check = "[x]"
		}
		b.WriteString(sectionStyle.Render("Editar tarea") + "\n")
		b.WriteString("  " + m.input.View() + "\n")
		b.WriteString(fmt.Sprintf("  %s Completada\n", check))
		b.WriteString(mutedStyle.Render("  enter guardar · tab completada · esc cancelar") + "\n\n")
	case modeConfirm:
		b.WriteString(sectionStyle.Render("Confirmar") + "\n")
		b.WriteString("  " + m.confirmPrompt + "\n")
		b.WriteString(mutedStyle.Render("  y eliminar · n cancelar") + "\n\n")
	}

	if toast, ok := m.mirror.Toast(); ok {
		style := successStyle
		if toast.Kind == client.ToastError {
			style = errorStyle
		}
		b.WriteString(style.Render(toast.Message) + "\n\n")
	}

	writeFooter(&b)
	return b.String()
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
