// Where: cmd/tutor-newrelic/main.go
// What: CLI entrypoint.
// Why: Execute commands with the New Relic plugin registered.
package main

import (
	"fmt"
	"os"

	"github.com/poruru-code/tutor-newrelic/internal/app"
)

func main() {
	deps, closer, err := buildDependencies()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	code := app.Run(os.Args[1:], deps)
	if closer != nil {
		_ = closer.Close()
	}
	os.Exit(code)
}
