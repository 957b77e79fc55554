// Where: internal/newrelic/destinations.go
// What: Email notification destinations for monitor recipients.
// Why: Give each NEWRELIC_SYNTHETICS_MONITORS recipient a place to receive alerts.
package newrelic

import (
	"context"
	"fmt"
	"strings"
)

const destinationsQuery = `query($accountId: Int!, $cursor: String) {
  actor {
    account(id: $accountId) {
      aiNotifications {
        destinations(cursor: $cursor, filters: {type: EMAIL}) {
          nextCursor
          entities {
            id
            name
            properties {
              key
              value
            }
          }
        }
      }
    }
  }
}`

const createDestinationMutation = `mutation($accountId: Int!, $destination: AiNotificationsDestinationInput!) {
  aiNotificationsCreateDestination(accountId: $accountId, destination: $destination) {
    destination {
      id
      name
    }
    error {
      ... on AiNotificationsResponseError {
        description
      }
    }
  }
}`

// Destination is an EMAIL notification destination.
type Destination struct {
	ID    string
	Name  string
	Email string
}

type destinationsData struct {
	Actor struct {
		Account struct {
			AINotifications struct {
				Destinations struct {
					NextCursor *string `json:"nextCursor"`
					Entities   []struct {
						ID         string `json:"id"`
						Name       string `json:"name"`
						Properties []struct {
							Key   string `json:"key"`
							Value string `json:"value"`
						} `json:"properties"`
					} `json:"entities"`
				} `json:"destinations"`
			} `json:"aiNotifications"`
		} `json:"account"`
	} `json:"actor"`
}

type createDestinationData struct {
	Result struct {
		Destination *struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"destination"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"aiNotificationsCreateDestination"`
}

// ListEmailDestinations returns the account's EMAIL destinations.
func (c *Client) ListEmailDestinations(ctx context.Context) ([]Destination, error) {
	var out []Destination
	var cursor *string
	for {
		data, err := execute[destinationsData](ctx, c, destinationsQuery, map[string]any{
			"accountId": c.accountID,
			"cursor":    cursor,
		})
		if err != nil {
			return nil, err
		}
		page := data.Actor.Account.AINotifications.Destinations
		for _, e := range page.Entities {
			d := Destination{ID: e.ID, Name: e.Name}
			for _, p := range e.Properties {
				if p.Key == "email" {
					d.Email = p.Value
				}
			}
			out = append(out, d)
		}
		if page.NextCursor == nil || *page.NextCursor == "" {
			return out, nil
		}
		cursor = page.NextCursor
	}
}

// CreateEmailDestination creates an EMAIL destination delivering to email.
func (c *Client) CreateEmailDestination(ctx context.Context, name, email string) (Destination, error) {
	variables := map[string]any{
		"accountId": c.accountID,
		"destination": map[string]any{
			"type": "EMAIL",
			"name": name,
			"properties": []map[string]string{
				{"key": "email", "value": email},
			},
		},
	}
	data, err := execute[createDestinationData](ctx, c, createDestinationMutation, variables)
	if err != nil {
		return Destination{}, err
	}
	if e := data.Result.Error; e != nil && e.Description != "" {
		return Destination{}, fmt.Errorf("create destination %q: %s", name, e.Description)
	}
	if data.Result.Destination == nil {
		return Destination{}, fmt.Errorf("create destination %q: empty response", name)
	}
	return Destination{ID: data.Result.Destination.ID, Name: data.Result.Destination.Name, Email: email}, nil
}

// DestinationName names the destination for a recipient within a deployment.
func DestinationName(deployment, recipient string) string {
	return strings.TrimSpace(deployment + " " + recipient)
}

// PlanDestinations lists recipients with no destination of the expected name.
func PlanDestinations(s Settings, existing []Destination) []Destination {
	have := map[string]bool{}
	for _, d := range existing {
		have[d.Name] = true
	}
	var plan []Destination
	for _, recipient := range s.Recipients() {
		name := DestinationName(s.Name, recipient)
		if have[name] {
			continue
		}
		plan = append(plan, Destination{Name: name, Email: recipient})
	}
	return plan
}
