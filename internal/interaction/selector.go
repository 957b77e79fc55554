// Where: internal/interaction/selector.go
// What: Interactive prompt helpers using the huh library.
// Why: Provide keyboard-based input for settings the operator must supply.
package interaction

import (
	"github.com/charmbracelet/huh"
)

// HuhPrompter implements the Prompter interface using the huh TUI library.
type HuhPrompter struct{}

func (p HuhPrompter) Input(title, value string) (string, error) {
	input := value
	err := huh.NewInput().
		Title(title).
		Value(&input).
		Run()
	if err != nil {
		return "", err
	}
	return input, nil
}

func (p HuhPrompter) Secret(title string) (string, error) {
	var input string
	err := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(&input).
		Run()
	if err != nil {
		return "", err
	}
	return input, nil
}

func (p HuhPrompter) Select(title string, options []string, value string) (string, error) {
	selected := value
	huhOptions := make([]huh.Option[string], len(options))
	for i, opt := range options {
		huhOptions[i] = huh.NewOption(opt, opt)
	}

	err := huh.NewSelect[string]().
		Title(title).
		Options(huhOptions...).
		Value(&selected).
		Run()
	if err != nil {
		return "", err
	}
	return selected, nil
}
