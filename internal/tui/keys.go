package tui

// Keybinding constants
const (
	KeyCtrlC    = "ctrl+c"
	KeyCtrlD    = "ctrl+d"
	KeyEsc      = "esc"
	KeyEnter    = "enter"
	KeySettings = "ctrl+s"
	KeyPgUp     = "pgup"
	KeyPgDown   = "pgdown"
)

// HelpView returns a one-line help bar with common keybindings.
func HelpView() string {
	return StyleHelp.Render("Enter: send | PgUp/PgDn: scroll | Ctrl+S: settings | Esc/Ctrl+C: quit")
}
