package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/duetchat/duet/internal/config"
)

// Settings holds the values adjustable at runtime from the settings
// overlay. Applied through the ApplySettings callback so the backends
// pick them up on the next turn.
type Settings struct {
	PiVersion     string
	FoldStrategy  string
	ShowReasoning bool
}

// SettingsPaneModel manages the settings form overlay.
type SettingsPaneModel struct {
	form    *huh.Form
	apply   func(Settings) error
	width   int
	height  int
	visible bool
	saved   bool
	err     error

	// Form field bindings (strings for Huh)
	piVersion     string
	foldStrategy  string
	showReasoning bool
}

// NewSettingsPaneModel creates a new settings pane.
func NewSettingsPaneModel(current Settings, apply func(Settings) error) SettingsPaneModel {
	m := SettingsPaneModel{
		apply:   apply,
		visible: false,
		saved:   false,

		piVersion:     current.PiVersion,
		foldStrategy:  current.FoldStrategy,
		showReasoning: current.ShowReasoning,
	}

	m.buildForm()
	return m
}

// buildForm constructs the Huh form with all settings fields.
func (m *SettingsPaneModel) buildForm() {
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("piVersion").
				Title("Pi Version").
				Options(
					huh.NewOption("Pi 3.1 (api.inflection.ai/v1)", config.PiVersion31),
					huh.NewOption("Inflection 3 Pi (external gateway)", config.PiVersionInflection),
				).
				Value(&m.piVersion),

			huh.NewSelect[string]().
				Key("foldStrategy").
				Title("Draft Folding").
				Options(
					huh.NewOption("User message (draft quoted in the user turn)", config.FoldUser),
					huh.NewOption("System hint (draft as a system message)", config.FoldSystem),
				).
				Value(&m.foldStrategy),

			huh.NewConfirm().
				Key("showReasoning").
				Title("Show Analytical Draft").
				Affirmative("Show").
				Negative("Hide").
				Value(&m.showReasoning),
		).Title("Session Settings"),
	)
}

// Init initializes the settings pane.
func (m SettingsPaneModel) Init() tea.Cmd {
	return m.form.Init()
}

// Update handles messages for the settings pane.
func (m SettingsPaneModel) Update(msg tea.Msg) (SettingsPaneModel, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case KeyEsc:
			// Cancel without applying
			m.visible = false
			m.saved = false
			return m, nil
		}
	}

	// Delegate to form
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	// Check if form is completed
	if m.form.State == huh.StateCompleted {
		if err := m.apply(m.values()); err != nil {
			m.err = err
			m.saved = false
		} else {
			m.saved = true
			m.err = nil
		}

		// Hide form after a successful apply
		if m.saved {
			m.visible = false
		}
	}

	return m, cmd
}

// values returns the current form field values as a Settings.
func (m *SettingsPaneModel) values() Settings {
	return Settings{
		PiVersion:     m.piVersion,
		FoldStrategy:  m.foldStrategy,
		ShowReasoning: m.showReasoning,
	}
}

// View renders the settings pane.
func (m SettingsPaneModel) View() string {
	if !m.visible {
		return ""
	}

	var content string

	if m.err != nil {
		content = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true).
			Render(fmt.Sprintf("✗ Error applying: %v", m.err))
	} else {
		content = m.form.View()
	}

	// Wrap in styled border
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2).
		Width(m.width - 4)

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("62")).
		Render("⚙ Settings")

	body := style.Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, title, body)
}

// SetSize updates the dimensions of the settings pane.
func (m *SettingsPaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	if m.form != nil {
		m.form.WithWidth(w - 8).WithHeight(h - 8)
	}
}

// SetVisible shows or hides the settings pane.
func (m *SettingsPaneModel) SetVisible(v bool) {
	m.visible = v
	m.saved = false
	m.err = nil

	// Reset form state when showing
	if v {
		m.buildForm()
	}
}

// IsVisible returns whether the settings pane is currently visible.
func (m SettingsPaneModel) IsVisible() bool {
	return m.visible
}
