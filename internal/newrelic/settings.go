// Where: internal/newrelic/settings.go
// What: NEWRELIC_ setting names and their typed view.
// Why: Read plugin settings from the resolved configuration in one place.
package newrelic

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Setting names.
const (
	KeyVersion            = "NEWRELIC_VERSION"
	KeyName               = "NEWRELIC_NAME"
	KeyAPIKey             = "NEWRELIC_API_KEY"
	KeyAccountID          = "NEWRELIC_ACCOUNT_ID"
	KeyRegionCode         = "NEWRELIC_REGION_CODE"
	KeyMonitoringPeriod   = "NEWRELIC_MONITORING_PERIOD"
	KeyMonitoringLocation = "NEWRELIC_MONITORING_LOCATION"
	KeySyntheticsMonitors = "NEWRELIC_SYNTHETICS_MONITORS"
)

// MonitorSpec is one entry of NEWRELIC_SYNTHETICS_MONITORS.
type MonitorSpec struct {
	Recipient string   `json:"recipient"`
	URLs      []string `json:"urls"`
}

// Settings is the typed view of the NEWRELIC_ configuration.
type Settings struct {
	Name       string
	APIKey     string
	AccountID  string
	RegionCode string
	Period     string
	Location   string
	Monitors   []MonitorSpec
}

// SettingsFrom extracts plugin settings from a resolved configuration.
func SettingsFrom(cfg map[string]any) (Settings, error) {
	s := Settings{
		Name:       text(cfg[KeyName]),
		APIKey:     text(cfg[KeyAPIKey]),
		AccountID:  text(cfg[KeyAccountID]),
		RegionCode: strings.ToUpper(text(cfg[KeyRegionCode])),
		Period:     text(cfg[KeyMonitoringPeriod]),
		Location:   text(cfg[KeyMonitoringLocation]),
	}
	monitors, err := ParseMonitors(cfg[KeySyntheticsMonitors])
	if err != nil {
		return Settings{}, err
	}
	s.Monitors = monitors
	return s, nil
}

// ParseMonitors decodes the NEWRELIC_SYNTHETICS_MONITORS value. nil yields no monitors.
func ParseMonitors(value any) ([]MonitorSpec, error) {
	if value == nil {
		return nil, nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KeySyntheticsMonitors, err)
	}
	var monitors []MonitorSpec
	if err := json.Unmarshal(payload, &monitors); err != nil {
		return nil, fmt.Errorf("%s: expected a list of {recipient, urls}: %w", KeySyntheticsMonitors, err)
	}
	return monitors, nil
}

// Recipients returns the distinct recipients in first-seen order.
func (s Settings) Recipients() []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range s.Monitors {
		r := strings.TrimSpace(m.Recipient)
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

// MaskKey hides all but the last four characters of an API key.
func MaskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

func text(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(value))
}
