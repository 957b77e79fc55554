// Where: internal/newrelic/client.go
// What: NerdGraph (GraphQL) client for New Relic.
// Why: Create and inspect synthetic monitors and notification destinations.
package newrelic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	xlog "github.com/poruru-code/tutor-newrelic/internal/log"
	"github.com/poruru-code/tutor-newrelic/internal/meta"
)

const (
	endpointUS = "https://api.newrelic.com/graphql"
	endpointEU = "https://api.eu.newrelic.com/graphql"
)

var (
	// ErrMissingAPIKey is returned when NEWRELIC_API_KEY is empty.
	ErrMissingAPIKey = errors.New("NEWRELIC_API_KEY is not set")
	// ErrMissingAccountID is returned when NEWRELIC_ACCOUNT_ID is empty or not numeric.
	ErrMissingAccountID = errors.New("NEWRELIC_ACCOUNT_ID must be a numeric account id")
)

// Options configures a Client.
type Options struct {
	APIKey    string
	AccountID string
	Region    string
	// Endpoint overrides the region-derived NerdGraph URL.
	Endpoint string
	Timeout  time.Duration
}

// Client talks to NerdGraph for a single account. Queries are retried on
// transport errors, 429 and 5xx; mutations are sent once.
type Client struct {
	queries   *resty.Client
	mutations *resty.Client
	endpoint  string
	accountID int
}

const queryRetries = 3

// Endpoint returns the NerdGraph URL for a region code.
func Endpoint(region string) string {
	if strings.EqualFold(strings.TrimSpace(region), "EU") {
		return endpointEU
	}
	return endpointUS
}

// NewClient validates credentials and builds a client. No request is sent.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	accountID, err := strconv.Atoi(strings.TrimSpace(opts.AccountID))
	if err != nil || accountID <= 0 {
		return nil, ErrMissingAccountID
	}
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = Endpoint(opts.Region)
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	logger := restyLogger{xlog.WithComponent("newrelic")}
	newHTTP := func() *resty.Client {
		return resty.New().
			SetLogger(logger).
			SetTimeout(timeout).
			SetHeader("API-Key", opts.APIKey).
			SetHeader("Content-Type", "application/json").
			SetHeader("User-Agent", meta.AppName+"/"+meta.Version)
	}
	queries := newHTTP().
		SetRetryCount(queryRetries).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(10 * time.Second).
		AddRetryCondition(retryable)

	return &Client{
		queries:   queries,
		mutations: newHTTP().SetRetryCount(0),
		endpoint:  endpoint,
		accountID: accountID,
	}, nil
}

func retryable(resp *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if resp == nil {
		return false
	}
	code := resp.StatusCode()
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// AccountID returns the numeric account the client operates on.
func (c *Client) AccountID() int {
	return c.accountID
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse[T any] struct {
	Data   T              `json:"data"`
	Errors []graphQLError `json:"errors"`
}

func execute[T any](ctx context.Context, c *Client, query string, variables map[string]any) (T, error) {
	var out graphQLResponse[T]
	client := c.queries
	if strings.HasPrefix(strings.TrimSpace(query), "mutation") {
		client = c.mutations
	}
	resp, err := client.R().
		SetContext(ctx).
		SetBody(graphQLRequest{Query: query, Variables: variables}).
		SetResult(&out).
		Post(c.endpoint)
	if err != nil {
		return out.Data, fmt.Errorf("nerdgraph request: %w", err)
	}
	if resp.IsError() {
		return out.Data, fmt.Errorf("nerdgraph request: %s: %s", resp.Status(), strings.TrimSpace(resp.String()))
	}
	if len(out.Errors) > 0 {
		messages := make([]string, 0, len(out.Errors))
		for _, e := range out.Errors {
			messages = append(messages, e.Message)
		}
		return out.Data, fmt.Errorf("nerdgraph: %s", strings.Join(messages, "; "))
	}
	return out.Data, nil
}
