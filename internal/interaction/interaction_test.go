// Where: internal/interaction/interaction_test.go
// What: Tests for TTY detection helpers.
// Why: Ensure non-terminal streams never trigger prompts.
package interaction

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsTerminalFalseForNilAndFiles(t *testing.T) {
	if IsTerminal(nil) {
		t.Fatalf("nil file must not be a terminal")
	}
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if IsTerminal(f) {
		t.Fatalf("regular file must not be a terminal")
	}
}

func TestInteractiveUsesIsTerminal(t *testing.T) {
	orig := IsTerminal
	t.Cleanup(func() { IsTerminal = orig })

	IsTerminal = func(*os.File) bool { return true }
	if !Interactive() {
		t.Fatalf("expected interactive")
	}
	IsTerminal = func(file *os.File) bool { return file == os.Stdin }
	if Interactive() {
		t.Fatalf("expected non-interactive when stdout is not a terminal")
	}
}
