// Where: internal/interaction/interaction.go
// What: Interactive primitives for CLI prompts and TTY detection.
// Why: Centralize user interaction to keep command handlers focused on orchestration.
package interaction

import (
	"os"

	"github.com/mattn/go-isatty"
)

// Prompter defines the interface for interactive user input.
type Prompter interface {
	Input(title, value string) (string, error)
	Secret(title string) (string, error)
	Select(title string, options []string, value string) (string, error)
}

// IsTerminal reports whether the file refers to a terminal device.
var IsTerminal = func(file *os.File) bool {
	if file == nil {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Interactive reports whether both stdin and stdout are terminals.
func Interactive() bool {
	return IsTerminal(os.Stdin) && IsTerminal(os.Stdout)
}
