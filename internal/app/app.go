// Where: internal/app/app.go
// What: CLI entrypoint logic.
// Why: Provide a testable command dispatcher that merges plugin command groups.
package app

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/poruru-code/tutor-newrelic/internal/compose"
	"github.com/poruru-code/tutor-newrelic/internal/config"
	"github.com/poruru-code/tutor-newrelic/internal/hooks"
	"github.com/poruru-code/tutor-newrelic/internal/interaction"
	xlog "github.com/poruru-code/tutor-newrelic/internal/log"
	"github.com/poruru-code/tutor-newrelic/internal/meta"
	"github.com/poruru-code/tutor-newrelic/internal/ui"
)

// Dependencies holds all injected dependencies required for CLI command execution.
// This structure enables dependency injection for testing and allows swapping
// implementations of various subsystems.
type Dependencies struct {
	Out       io.Writer
	Registry  *hooks.Registry
	Prompter  interaction.Prompter
	Runner    compose.CommandRunner
	NewDocker func() (compose.DockerClient, error)
	Environ   func() []string
	// NewRelicEndpoint overrides the region-derived NerdGraph URL.
	NewRelicEndpoint string
}

// CLI defines the command-line interface structure parsed by Kong.
// Plugin command groups are merged through the embedded Plugins.
type CLI struct {
	Root    string `help:"Project root directory." env:"TUTOR_ROOT" type:"path"`
	EnvFile string `name:"env-file" help:"Path to .env file"`
	Verbose bool   `short:"v" help:"Enable debug logging on stderr"`

	Config  ConfigCmd  `cmd:"" help:"Manage the project configuration"`
	Env     EnvCmd     `cmd:"" help:"Manage the rendered environment"`
	Images  ImagesCmd  `cmd:"" help:"Build, pull, and push plugin images"`
	Do      DoCmd      `cmd:"" help:"Run one-off jobs"`
	Hooks   PluginsCmd `cmd:"" name:"plugins" help:"Inspect plugin registrations"`
	Version VersionCmd `cmd:"" help:"Show version information"`

	kong.Plugins
}

// Run is the main entry point for CLI command execution.
// It parses the command-line arguments, builds the command context,
// and dispatches to the selected command. Returns 0 on success, 1 on error.
func Run(args []string, deps Dependencies) int {
	out := deps.Out
	if out == nil {
		out = os.Stdout
	}
	console := ui.New(out)
	if deps.Registry == nil {
		deps.Registry = hooks.New()
	}

	// Handle no arguments: show usage hint
	if len(args) == 0 {
		return runNoArgs(console)
	}

	cli := CLI{}
	cli.Plugins = kong.Plugins(deps.Registry.Commands.Items())
	parser, err := kong.New(&cli,
		kong.Name(meta.AppName),
		kong.Description("Open edX deployment tooling with New Relic observability."),
		kong.Writers(out, out),
		kong.UsageOnError(),
	)
	if err != nil {
		return exitWithError(console, err)
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return exitWithError(console, err)
	}

	// Load environment file if provided or if .env exists in current directory
	if cli.EnvFile != "" {
		if err := godotenv.Load(cli.EnvFile); err != nil {
			console.Warn(fmt.Sprintf("failed to load env file %s: %v", cli.EnvFile, err))
		}
	} else if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			console.Warn(fmt.Sprintf("failed to load .env: %v", err))
		}
	}

	if cli.Verbose {
		xlog.Configure(xlog.Config{Level: "debug"})
	}

	root := cli.Root
	if root == "" {
		if root, err = config.DefaultRoot(); err != nil {
			return exitWithError(console, err)
		}
	}

	rt := newContext(root, out, deps)
	if err := kctx.Run(rt); err != nil {
		return exitWithError(console, err)
	}
	return 0
}

// runNoArgs handles the case when the CLI is invoked without arguments.
func runNoArgs(console *ui.Console) int {
	console.Info("Usage:")
	console.Info("  " + meta.AppName + " config save [--set KEY=VALUE]...")
	console.Info("  " + meta.AppName + " " + meta.PluginName + " --help")
	console.Info("")
	console.Info("Try: " + meta.AppName + " --help")
	return 0
}

func exitWithError(console *ui.Console, err error) int {
	console.Error(err)
	return 1
}
