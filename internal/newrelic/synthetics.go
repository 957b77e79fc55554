// Where: internal/newrelic/synthetics.go
// What: Synthetic monitor queries, mutations, and sync planning.
// Why: Keep configured heartbeat URLs monitored without creating duplicates.
package newrelic

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

const monitorSearchQuery = `query($query: String!, $cursor: String) {
  actor {
    entitySearch(query: $query) {
      results(cursor: $cursor) {
        nextCursor
        entities {
          guid
          name
          ... on SyntheticMonitorEntityOutline {
            monitoredUrl
            monitorType
            period
            monitorSummary {
              status
            }
          }
        }
      }
    }
  }
}`

const createSimpleMonitorMutation = `mutation($accountId: Int!, $monitor: SyntheticsCreateSimpleMonitorInput!) {
  syntheticsCreateSimpleMonitor(accountId: $accountId, monitor: $monitor) {
    errors {
      description
      type
    }
    monitor {
      guid
      name
      uri
      period
      status
    }
  }
}`

// Monitor is a synthetic monitor as reported by NerdGraph.
type Monitor struct {
	GUID   string `json:"guid"`
	Name   string `json:"name"`
	URI    string `json:"uri"`
	Period string `json:"period"`
	Status string `json:"status"`
}

// MonitorInput describes a simple (ping) monitor to create.
type MonitorInput struct {
	Name     string
	URI      string
	Period   string
	Location string
}

type monitorSearchData struct {
	Actor struct {
		EntitySearch struct {
			Results struct {
				NextCursor *string `json:"nextCursor"`
				Entities   []struct {
					GUID         string   `json:"guid"`
					Name         string   `json:"name"`
					MonitoredURL string   `json:"monitoredUrl"`
					Period       *float64 `json:"period"`
					Summary      *struct {
						Status string `json:"status"`
					} `json:"monitorSummary"`
				} `json:"entities"`
			} `json:"results"`
		} `json:"entitySearch"`
	} `json:"actor"`
}

type createMonitorData struct {
	Result struct {
		Errors []struct {
			Description string `json:"description"`
			Type        string `json:"type"`
		} `json:"errors"`
		Monitor *Monitor `json:"monitor"`
	} `json:"syntheticsCreateSimpleMonitor"`
}

// periodNames maps the entity outline's period in minutes to the enum used by
// the create mutation.
var periodNames = map[float64]string{
	1:    "EVERY_MINUTE",
	5:    "EVERY_5_MINUTES",
	10:   "EVERY_10_MINUTES",
	15:   "EVERY_15_MINUTES",
	30:   "EVERY_30_MINUTES",
	60:   "EVERY_HOUR",
	360:  "EVERY_6_HOURS",
	720:  "EVERY_12_HOURS",
	1440: "EVERY_DAY",
}

func periodName(minutes *float64) string {
	if minutes == nil {
		return ""
	}
	if name, ok := periodNames[*minutes]; ok {
		return name
	}
	return strconv.FormatFloat(*minutes, 'f', -1, 64) + "m"
}

// ListMonitors returns every synthetic monitor in the client's account.
func (c *Client) ListMonitors(ctx context.Context) ([]Monitor, error) {
	var monitors []Monitor
	var cursor *string
	search := fmt.Sprintf("domain = 'SYNTH' AND type = 'MONITOR' AND accountId = %d", c.accountID)
	for {
		data, err := execute[monitorSearchData](ctx, c, monitorSearchQuery, map[string]any{
			"query":  search,
			"cursor": cursor,
		})
		if err != nil {
			return nil, err
		}
		results := data.Actor.EntitySearch.Results
		for _, e := range results.Entities {
			m := Monitor{GUID: e.GUID, Name: e.Name, URI: e.MonitoredURL, Period: periodName(e.Period)}
			if e.Summary != nil {
				m.Status = e.Summary.Status
			}
			monitors = append(monitors, m)
		}
		if results.NextCursor == nil || *results.NextCursor == "" {
			return monitors, nil
		}
		cursor = results.NextCursor
	}
}

// CreateSimpleMonitor creates an enabled ping monitor from one public location.
func (c *Client) CreateSimpleMonitor(ctx context.Context, in MonitorInput) (Monitor, error) {
	variables := map[string]any{
		"accountId": c.accountID,
		"monitor": map[string]any{
			"name":      in.Name,
			"uri":       in.URI,
			"period":    in.Period,
			"status":    "ENABLED",
			"locations": map[string]any{"public": []string{Location(in.Location)}},
		},
	}
	data, err := execute[createMonitorData](ctx, c, createSimpleMonitorMutation, variables)
	if err != nil {
		return Monitor{}, err
	}
	if errs := data.Result.Errors; len(errs) > 0 {
		descriptions := make([]string, 0, len(errs))
		for _, e := range errs {
			descriptions = append(descriptions, fmt.Sprintf("%s: %s", e.Type, e.Description))
		}
		return Monitor{}, fmt.Errorf("create monitor %q: %s", in.Name, strings.Join(descriptions, "; "))
	}
	if data.Result.Monitor == nil {
		return Monitor{}, fmt.Errorf("create monitor %q: empty response", in.Name)
	}
	return *data.Result.Monitor, nil
}

// Location converts a configured location such as US_EAST_1 into the NerdGraph
// public location name AWS_US_EAST_1.
func Location(loc string) string {
	loc = strings.ToUpper(strings.TrimSpace(loc))
	if loc == "" || strings.HasPrefix(loc, "AWS_") {
		return loc
	}
	return "AWS_" + loc
}

// MonitorName names the monitor for url within a deployment.
func MonitorName(deployment, url string) string {
	return strings.TrimSpace(deployment + " " + url)
}

// PlanMonitors lists the monitors missing from existing, one per distinct URL.
func PlanMonitors(s Settings, existing []Monitor) []MonitorInput {
	have := map[string]bool{}
	for _, m := range existing {
		have[m.Name] = true
	}
	var plan []MonitorInput
	for _, spec := range s.Monitors {
		for _, url := range spec.URLs {
			url = strings.TrimSpace(url)
			name := MonitorName(s.Name, url)
			if url == "" || have[name] {
				continue
			}
			have[name] = true
			plan = append(plan, MonitorInput{Name: name, URI: url, Period: s.Period, Location: s.Location})
		}
	}
	return plan
}
