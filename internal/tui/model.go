package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/duetchat/duet/internal/chat"
	"github.com/duetchat/duet/internal/events"
	"github.com/duetchat/duet/internal/orchestrator"
)

// Runner executes a single turn. Satisfied by *orchestrator.TurnRunner.
type Runner interface {
	RunTurn(ctx context.Context, transcript *chat.Transcript, input string) (orchestrator.TurnResult, error)
}

// ModelConfig wires the chat model to the rest of the application.
type ModelConfig struct {
	Runner     Runner
	Transcript *chat.Transcript
	Bus        *events.Bus

	// Settings is the starting state of the settings overlay.
	Settings Settings
	// ApplySettings propagates overlay changes to the backends. May be
	// nil, in which case only the display settings take effect.
	ApplySettings func(Settings) error
}

// turnDoneMsg carries the outcome of an in-flight turn back into the
// update loop.
type turnDoneMsg struct {
	result orchestrator.TurnResult
	err    error
}

// Model is the root Bubble Tea model for the chat TUI.
type Model struct {
	cfg      ModelConfig
	settings Settings

	log      viewport.Model
	input    textinput.Model
	spin     spinner.Model
	overlay  SettingsPaneModel
	eventSub <-chan events.Event

	lines       []string
	status      string
	processing  bool
	showOverlay bool
	quitting    bool
	width       int
	height      int
}

// New creates the chat model. It subscribes to the event bus for live
// stage status while a turn is in flight.
func New(cfg ModelConfig) Model {
	ti := textinput.New()
	ti.Placeholder = "Say something (type 'exit' to quit)"
	ti.Prompt = "you> "
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = StyleStatusWorking

	m := Model{
		cfg:      cfg,
		settings: cfg.Settings,
		log:      viewport.New(0, 0),
		input:    ti,
		spin:     sp,
	}
	m.overlay = NewSettingsPaneModel(cfg.Settings, m.applySettings())
	if cfg.Bus != nil {
		m.eventSub = cfg.Bus.Subscribe(256)
	}
	return m
}

// applySettings builds the overlay callback: forward to the app-level
// hook, then keep the display flags locally.
func (m *Model) applySettings() func(Settings) error {
	return func(s Settings) error {
		if m.cfg.ApplySettings != nil {
			if err := m.cfg.ApplySettings(s); err != nil {
				return err
			}
		}
		return nil
	}
}

// Init initializes the model and returns the initial command.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.eventSub != nil {
		cmds = append(cmds, waitForEvent(m.eventSub))
	}
	return tea.Batch(cmds...)
}

// waitForEvent returns a command that waits for the next event from the
// event bus.
func waitForEvent(sub <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-sub
		if !ok {
			return nil // bus closed
		}
		return event
	}
}

// runTurn returns a command executing one turn against the backends.
func runTurn(runner Runner, transcript *chat.Transcript, input string) tea.Cmd {
	return func() tea.Msg {
		result, err := runner.RunTurn(context.Background(), transcript, input)
		return turnDoneMsg{result: result, err: err}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// If the settings overlay is open, route all keys to it (modal
		// behavior). Settings changes are ignored while a turn is in
		// flight, so the overlay only opens when idle.
		if m.showOverlay {
			switch msg.String() {
			case KeySettings, KeyEsc:
				m.showOverlay = false
				m.overlay.SetVisible(false)
			default:
				var cmd tea.Cmd
				m.overlay, cmd = m.overlay.Update(msg)
				cmds = append(cmds, cmd)

				if !m.overlay.IsVisible() {
					m.showOverlay = false
					m.settings = m.overlay.values()
				}
			}
			return m, tea.Batch(cmds...)
		}

		switch msg.String() {
		case KeyCtrlC, KeyCtrlD, KeyEsc:
			m.quitting = true
			return m, tea.Quit

		case KeySettings:
			if m.processing {
				break
			}
			m.showOverlay = true
			m.overlay.SetVisible(true)
			cmds = append(cmds, m.overlay.Init())

		case KeyEnter:
			if m.processing {
				break
			}
			line := strings.TrimSpace(m.input.Value())
			if line == "" {
				break
			}
			if strings.EqualFold(line, "exit") {
				m.quitting = true
				return m, tea.Quit
			}

			m.input.Reset()
			m.appendLine(StyleUserLabel.Render("you") + "  " + line)
			m.processing = true
			m.status = "🧠 drafting..."
			cmds = append(cmds,
				runTurn(m.cfg.Runner, m.cfg.Transcript, line),
				m.spin.Tick,
			)

		case KeyPgUp, KeyPgDown:
			var cmd tea.Cmd
			m.log, cmd = m.log.Update(msg)
			cmds = append(cmds, cmd)

		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.computeLayout()
		m.overlay.SetSize(msg.Width, msg.Height)

	case spinner.TickMsg:
		if m.processing {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			cmds = append(cmds, cmd)
		}

	case turnDoneMsg:
		m.processing = false
		m.status = ""
		if msg.err != nil {
			m.appendLine(StyleStatusError.Render("⚠ " + turnErrorLine(msg.err)))
		} else {
			if m.settings.ShowReasoning && msg.result.Draft.Answer != "" {
				m.appendLine(StyleDraft.Render("[draft] " + msg.result.Draft.Answer))
			}
			m.appendLine(StylePiLabel.Render("pi") + "   " + msg.result.Reply)
		}

	case events.StageStartedEvent:
		switch msg.Stage {
		case events.StageReason:
			m.status = "🧠 drafting..."
		case events.StageRestyle:
			m.status = "🎨 restyling..."
		}
		cmds = append(cmds, waitForEvent(m.eventSub))

	case events.StageCompletedEvent, events.TurnStartedEvent, events.TurnCompletedEvent, events.TurnFailedEvent:
		// Terminal turn state is handled via turnDoneMsg; consume and
		// keep listening.
		cmds = append(cmds, waitForEvent(m.eventSub))
	}

	return m, tea.Batch(cmds...)
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	if m.showOverlay {
		return m.overlay.View()
	}

	title := StyleTitle.Render(fmt.Sprintf("Duet — Pi %s", m.settings.PiVersion))

	logView := StyleFocusedBorder.
		Width(m.width - 2).
		Height(m.log.Height).
		Render(m.log.View())

	statusLine := ""
	if m.processing {
		statusLine = m.spin.View() + " " + StyleStatusWorking.Render(m.status)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		logView,
		statusLine,
		m.input.View(),
		HelpView(),
	)
}

// appendLine adds a rendered line to the chat log and scrolls to it.
func (m *Model) appendLine(line string) {
	m.lines = append(m.lines, line)
	m.log.SetContent(strings.Join(m.lines, "\n\n"))
	m.log.GotoBottom()
}

// computeLayout sizes the chat log around the fixed chrome lines.
func (m *Model) computeLayout() {
	// title + status + input + help, plus the log border
	logHeight := m.height - 6
	if logHeight < 3 {
		logHeight = 3
	}
	m.log.Width = m.width - 4
	m.log.Height = logHeight
	m.log.SetContent(strings.Join(m.lines, "\n\n"))
}

// turnErrorLine maps a turn failure to a short log line.
func turnErrorLine(err error) string {
	return fmt.Sprintf("turn failed; nothing was recorded (%v)", err)
}
