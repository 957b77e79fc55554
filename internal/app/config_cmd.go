// Where: internal/app/config_cmd.go
// What: config save/printvalue/printroot commands.
// Why: Persist user settings and expose resolved values to scripts.
package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/poruru-code/tutor-newrelic/internal/config"
	"github.com/poruru-code/tutor-newrelic/internal/interaction"
)

type ConfigCmd struct {
	Save       ConfigSaveCmd       `cmd:"" help:"Save settings and render the environment"`
	Printvalue ConfigPrintValueCmd `cmd:"" name:"printvalue" help:"Print a resolved setting"`
	Printroot  ConfigPrintRootCmd  `cmd:"" name:"printroot" help:"Print the project root"`
}

type ConfigSaveCmd struct {
	Set         []string `short:"s" name:"set" sep:"none" help:"Set KEY=VALUE (value parsed as YAML)"`
	Unset       []string `short:"U" name:"unset" sep:"none" help:"Remove KEY from the user config"`
	Interactive bool     `short:"i" help:"Prompt for plugin settings"`
}

func (c *ConfigSaveCmd) Run(rt *Context) error {
	user, err := config.LoadUserWithUnique(rt.Root, rt.Registry)
	if err != nil {
		return err
	}
	if err := config.ApplyAssignments(user, c.Set, c.Unset); err != nil {
		return err
	}
	if c.Interactive {
		if !interaction.Interactive() {
			return errors.New("--interactive requires a terminal")
		}
		if err := askQuestions(rt, user); err != nil {
			return err
		}
	}
	if err := config.SaveUser(rt.Root, user); err != nil {
		return err
	}
	cfg, err := config.Resolve(config.Defaults(rt.Registry), user, rt.Environ())
	if err != nil {
		return err
	}
	if err := rt.SaveEnv(cfg); err != nil {
		return err
	}
	rt.Console.Success("Configuration saved to " + config.Path(rt.Root))
	return nil
}

// askQuestions prompts for every string or boolean setting contributed through
// CONFIG_DEFAULTS. Secrets are read without echo.
func askQuestions(rt *Context, user config.Config) error {
	for _, setting := range rt.Registry.ConfigDefaults.Items() {
		current, ok := user[setting.Name]
		if !ok {
			current = setting.Value
		}
		if flag, isBool := current.(bool); isBool {
			answer, err := rt.Prompter.Select(setting.Name, []string{"true", "false"}, strconv.FormatBool(flag))
			if err != nil {
				return fmt.Errorf("prompt %s: %w", setting.Name, err)
			}
			if answer != strconv.FormatBool(flag) || ok {
				user[setting.Name] = answer == "true"
			}
			continue
		}
		value, isString := current.(string)
		if !isString || strings.HasSuffix(setting.Name, "_VERSION") {
			continue
		}
		var (
			answer string
			err    error
		)
		if strings.Contains(setting.Name, "API_KEY") {
			answer, err = rt.Prompter.Secret(setting.Name)
			if err == nil && answer == "" {
				answer = value
			}
		} else {
			answer, err = rt.Prompter.Input(setting.Name, value)
		}
		if err != nil {
			return fmt.Errorf("prompt %s: %w", setting.Name, err)
		}
		if answer != value || ok {
			user[setting.Name] = answer
		}
	}
	return nil
}

type ConfigPrintValueCmd struct {
	Key string `arg:"" help:"Setting name"`
}

func (c *ConfigPrintValueCmd) Run(rt *Context) error {
	cfg, err := rt.Config()
	if err != nil {
		return err
	}
	value, err := cfg.Get(c.Key)
	if err != nil {
		return err
	}
	if s, ok := value.(string); ok {
		_, err = fmt.Fprintln(rt.Out, s)
		return err
	}
	data, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.Key, err)
	}
	_, err = fmt.Fprint(rt.Out, string(data))
	return err
}

type ConfigPrintRootCmd struct{}

func (c *ConfigPrintRootCmd) Run(rt *Context) error {
	_, err := fmt.Fprintln(rt.Out, rt.Root)
	return err
}
