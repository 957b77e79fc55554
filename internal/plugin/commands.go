// Where: internal/plugin/commands.go
// What: The "newrelic" command group.
// Why: Inspect settings and reconcile synthetic monitors and notification destinations.
package plugin

import (
	"errors"
	"fmt"
	"strings"

	"github.com/poruru-code/tutor-newrelic/internal/app"
	"github.com/poruru-code/tutor-newrelic/internal/config"
	"github.com/poruru-code/tutor-newrelic/internal/meta"
	"github.com/poruru-code/tutor-newrelic/internal/newrelic"
)

// ErrInvalidSettings is returned when NEWRELIC_ settings fail schema validation.
var ErrInvalidSettings = errors.New("invalid New Relic settings")

// Commands is merged into the host CLI through CLI_COMMANDS.
type Commands struct {
	Newrelic GroupCmd `cmd:"" help:"New Relic observability commands"`
}

type GroupCmd struct {
	Settings     SettingsCmd     `cmd:"" help:"Show New Relic settings"`
	Validate     ValidateCmd     `cmd:"" help:"Validate New Relic settings"`
	Synthetics   SyntheticsCmd   `cmd:"" help:"Manage synthetic monitors"`
	Destinations DestinationsCmd `cmd:"" help:"Manage notification destinations"`
}

type SettingsCmd struct{}

func (c *SettingsCmd) Run(rt *app.Context) error {
	cfg, err := rt.Config()
	if err != nil {
		return err
	}
	s, err := newrelic.SettingsFrom(cfg)
	if err != nil {
		return err
	}
	rt.Console.Header("🔭", "New Relic settings")
	plugin := cfg.WithPrefix(meta.SettingPrefix)
	for _, key := range plugin.Keys() {
		switch key {
		case newrelic.KeyAPIKey:
			rt.Console.Item(key, newrelic.MaskKey(s.APIKey))
		case newrelic.KeySyntheticsMonitors:
			rt.Console.Item(key, fmt.Sprintf("%d monitor(s)", len(s.Monitors)))
			for _, m := range s.Monitors {
				rt.Console.ItemPlain(fmt.Sprintf("  - %s: %s", m.Recipient, strings.Join(m.URLs, ", ")))
			}
		default:
			rt.Console.Item(key, plugin.String(key))
		}
	}
	return nil
}

type ValidateCmd struct{}

func (c *ValidateCmd) Run(rt *app.Context) error {
	cfg, err := rt.Config()
	if err != nil {
		return err
	}
	if err := validate(rt, cfg); err != nil {
		return err
	}
	rt.Console.Success("New Relic settings are valid")
	return nil
}

type SyntheticsCmd struct {
	List SyntheticsListCmd `cmd:"" help:"List synthetic monitors of the account"`
	Sync SyntheticsSyncCmd `cmd:"" help:"Create missing monitors for configured URLs"`
}

type SyntheticsListCmd struct{}

func (c *SyntheticsListCmd) Run(rt *app.Context) error {
	_, client, err := connect(rt)
	if err != nil {
		return err
	}
	monitors, err := client.ListMonitors(rt.Ctx)
	if err != nil {
		return err
	}
	rt.Console.Header("🩺", fmt.Sprintf("Synthetic monitors (%d)", len(monitors)))
	for _, m := range monitors {
		rt.Console.Item(m.Name, fmt.Sprintf("%s %s %s", m.URI, m.Period, m.Status))
	}
	return nil
}

type SyntheticsSyncCmd struct {
	DryRun bool `name:"dry-run" help:"Show monitors that would be created"`
}

func (c *SyntheticsSyncCmd) Run(rt *app.Context) error {
	s, client, err := connect(rt)
	if err != nil {
		return err
	}
	existing, err := client.ListMonitors(rt.Ctx)
	if err != nil {
		return err
	}
	plan := newrelic.PlanMonitors(s, existing)
	if len(plan) == 0 {
		rt.Console.Info("Synthetic monitors are up to date")
		return nil
	}
	for _, in := range plan {
		if c.DryRun {
			rt.Console.ItemPlain("would create " + in.Name)
			continue
		}
		created, err := client.CreateSimpleMonitor(rt.Ctx, in)
		if err != nil {
			return err
		}
		rt.Logger.Debug().Str("guid", created.GUID).Str("name", created.Name).Msg("monitor created")
		rt.Console.ItemPlain("created " + created.Name)
	}
	if !c.DryRun {
		rt.Console.Success(fmt.Sprintf("%d monitor(s) created", len(plan)))
	}
	return nil
}

type DestinationsCmd struct {
	Sync DestinationsSyncCmd `cmd:"" help:"Create missing email destinations for monitor recipients"`
}

type DestinationsSyncCmd struct {
	DryRun bool `name:"dry-run" help:"Show destinations that would be created"`
}

func (c *DestinationsSyncCmd) Run(rt *app.Context) error {
	s, client, err := connect(rt)
	if err != nil {
		return err
	}
	existing, err := client.ListEmailDestinations(rt.Ctx)
	if err != nil {
		return err
	}
	plan := newrelic.PlanDestinations(s, existing)
	if len(plan) == 0 {
		rt.Console.Info("Notification destinations are up to date")
		return nil
	}
	for _, d := range plan {
		if c.DryRun {
			rt.Console.ItemPlain("would create " + d.Name)
			continue
		}
		created, err := client.CreateEmailDestination(rt.Ctx, d.Name, d.Email)
		if err != nil {
			return err
		}
		rt.Logger.Debug().Str("id", created.ID).Str("name", created.Name).Msg("destination created")
		rt.Console.ItemPlain("created " + created.Name)
	}
	if !c.DryRun {
		rt.Console.Success(fmt.Sprintf("%d destination(s) created", len(plan)))
	}
	return nil
}

// connect validates settings and builds a NerdGraph client for them.
func connect(rt *app.Context) (newrelic.Settings, *newrelic.Client, error) {
	cfg, err := rt.Config()
	if err != nil {
		return newrelic.Settings{}, nil, err
	}
	if err := validate(rt, cfg); err != nil {
		return newrelic.Settings{}, nil, err
	}
	s, err := newrelic.SettingsFrom(cfg)
	if err != nil {
		return newrelic.Settings{}, nil, err
	}
	client, err := newrelic.NewClient(newrelic.Options{
		APIKey:    s.APIKey,
		AccountID: s.AccountID,
		Region:    s.RegionCode,
		Endpoint:  rt.NewRelicEndpoint,
	})
	if err != nil {
		return newrelic.Settings{}, nil, err
	}
	return s, client, nil
}

func validate(rt *app.Context, cfg config.Config) error {
	violations, err := ValidateSettings(cfg)
	if err != nil {
		return err
	}
	if len(violations) == 0 {
		return nil
	}
	for _, v := range violations {
		rt.Console.Warn(fmt.Sprintf("%s: %s", v.Location, v.Message))
	}
	return fmt.Errorf("%w: %d problem(s)", ErrInvalidSettings, len(violations))
}
