// Where: internal/ui/console.go
// What: Console output helpers for consistent CLI UX.
// Why: Standardize emojis, indentation, and structure across commands.
package ui

import (
	"fmt"
	"io"
	"strings"
)

// Console provides helper methods for formatted output.
type Console struct {
	Out          io.Writer
	EmojiEnabled bool
}

// New creates a new Console writing to the provided writer.
func New(out io.Writer) *Console {
	return &Console{Out: out, EmojiEnabled: true}
}

// Header prints a section header with an emoji.
// Example: 🔭 New Relic settings
func (c *Console) Header(emoji, title string) {
	fmt.Fprintf(c.Out, "%s%s\n", c.emojiPrefix(emoji), title)
}

// Item prints a key-value item with indentation.
// Example:    NEWRELIC_REGION_CODE:    EU
func (c *Console) Item(key string, value any) {
	fmt.Fprintf(c.Out, "   %-32s %v\n", key+":", value)
}

// ItemPlain prints a generic indented line.
func (c *Console) ItemPlain(msg string) {
	fmt.Fprintf(c.Out, "   %s\n", msg)
}

// Success prints a success message with a checkmark.
func (c *Console) Success(msg string) {
	prefix := c.emojiPrefix("✅")
	if prefix == "" {
		prefix = "[ok] "
	}
	fmt.Fprintf(c.Out, "%s%s\n", prefix, msg)
}

// Info prints an info message.
func (c *Console) Info(msg string) {
	fmt.Fprintf(c.Out, "%s\n", msg)
}

// Warn prints a warning message with an emoji.
func (c *Console) Warn(msg string) {
	prefix := c.emojiPrefix("⚠️")
	if prefix == "" {
		prefix = "[warn] "
	}
	fmt.Fprintf(c.Out, "%s%s\n", prefix, msg)
}

// Error prints an error message with a cross mark.
func (c *Console) Error(err error) {
	prefix := c.emojiPrefix("✗")
	if prefix == "" {
		prefix = "[error] "
	}
	fmt.Fprintf(c.Out, "%s%v\n", prefix, err)
}

func (c *Console) emojiPrefix(emoji string) string {
	if !c.EmojiEnabled || strings.TrimSpace(emoji) == "" {
		return ""
	}
	return emoji + " "
}
