// Where: internal/newrelic/client_test.go
// What: Tests for the NerdGraph client against a fake endpoint.
// Why: Verify headers, variables, pagination, and error surfacing without the real API.
package newrelic

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type recordedRequest struct {
	APIKey    string
	Query     string
	Variables map[string]any
}

func newFakeNerdGraph(t *testing.T, responses ...string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		var payload struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Errorf("decode body: %v", err)
		}
		requests = append(requests, recordedRequest{
			APIKey:    r.Header.Get("API-Key"),
			Query:     payload.Query,
			Variables: payload.Variables,
		})
		idx := len(requests) - 1
		if idx >= len(responses) {
			t.Errorf("unexpected request #%d", idx+1)
			http.Error(w, "unexpected", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, responses[idx])
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func newTestClient(t *testing.T, endpoint string) *Client {
	t.Helper()
	client, err := NewClient(Options{APIKey: "NRAK-TEST", AccountID: "1234", Endpoint: endpoint})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewClientValidatesCredentials(t *testing.T) {
	if _, err := NewClient(Options{AccountID: "1"}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if _, err := NewClient(Options{APIKey: "k", AccountID: "abc"}); !errors.Is(err, ErrMissingAccountID) {
		t.Fatalf("expected ErrMissingAccountID, got %v", err)
	}
	if _, err := NewClient(Options{APIKey: "k"}); !errors.Is(err, ErrMissingAccountID) {
		t.Fatalf("expected ErrMissingAccountID for empty id, got %v", err)
	}
}

func TestEndpointByRegion(t *testing.T) {
	if got := Endpoint("eu"); got != endpointEU {
		t.Fatalf("unexpected EU endpoint: %s", got)
	}
	if got := Endpoint(""); got != endpointUS {
		t.Fatalf("unexpected default endpoint: %s", got)
	}
}

func TestListMonitorsFollowsCursor(t *testing.T) {
	server, requests := newFakeNerdGraph(t,
		`{"data":{"actor":{"entitySearch":{"results":{"nextCursor":"page2","entities":[{"guid":"g1","name":"openedx https://a","monitoredUrl":"https://a","period":5,"monitorSummary":{"status":"ENABLED"}}]}}}}}`,
		`{"data":{"actor":{"entitySearch":{"results":{"nextCursor":null,"entities":[{"guid":"g2","name":"other","monitoredUrl":"https://b"}]}}}}}`,
	)

	monitors, err := newTestClient(t, server.URL).ListMonitors(context.Background())
	if err != nil {
		t.Fatalf("list monitors: %v", err)
	}
	want := []Monitor{
		{GUID: "g1", Name: "openedx https://a", URI: "https://a", Period: "EVERY_5_MINUTES", Status: "ENABLED"},
		{GUID: "g2", Name: "other", URI: "https://b"},
	}
	if diff := cmp.Diff(want, monitors); diff != "" {
		t.Fatalf("monitors mismatch (-want +got):\n%s", diff)
	}
	if len(*requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(*requests))
	}
	if (*requests)[0].APIKey != "NRAK-TEST" {
		t.Fatalf("missing API-Key header")
	}
	if (*requests)[1].Variables["cursor"] != "page2" {
		t.Fatalf("expected cursor on second page, got %v", (*requests)[1].Variables)
	}
	for i, req := range *requests {
		search, _ := req.Variables["query"].(string)
		if !strings.Contains(search, "accountId = 1234") {
			t.Fatalf("request %d not scoped to the account: %q", i, search)
		}
	}
}

func TestPeriodName(t *testing.T) {
	minutes := func(v float64) *float64 { return &v }
	cases := []struct {
		in   *float64
		want string
	}{
		{nil, ""},
		{minutes(1), "EVERY_MINUTE"},
		{minutes(60), "EVERY_HOUR"},
		{minutes(1440), "EVERY_DAY"},
		{minutes(7), "7m"},
	}
	for _, tc := range cases {
		if got := periodName(tc.in); got != tc.want {
			t.Fatalf("periodName(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCreateSimpleMonitorSendsInput(t *testing.T) {
	server, requests := newFakeNerdGraph(t,
		`{"data":{"syntheticsCreateSimpleMonitor":{"errors":[],"monitor":{"guid":"g","name":"openedx https://a","uri":"https://a","period":"EVERY_5_MINUTES","status":"ENABLED"}}}}`,
	)

	monitor, err := newTestClient(t, server.URL).CreateSimpleMonitor(context.Background(), MonitorInput{
		Name: "openedx https://a", URI: "https://a", Period: "EVERY_5_MINUTES", Location: "US_EAST_1",
	})
	if err != nil {
		t.Fatalf("create monitor: %v", err)
	}
	if monitor.GUID != "g" || monitor.Status != "ENABLED" {
		t.Fatalf("unexpected monitor: %+v", monitor)
	}

	req := (*requests)[0]
	if !strings.Contains(req.Query, "syntheticsCreateSimpleMonitor") {
		t.Fatalf("unexpected query: %s", req.Query)
	}
	if req.Variables["accountId"] != float64(1234) {
		t.Fatalf("unexpected account id: %v", req.Variables["accountId"])
	}
	input := req.Variables["monitor"].(map[string]any)
	locations := input["locations"].(map[string]any)["public"].([]any)
	if len(locations) != 1 || locations[0] != "AWS_US_EAST_1" {
		t.Fatalf("unexpected locations: %v", locations)
	}
}

func TestCreateSimpleMonitorSurfacesMutationErrors(t *testing.T) {
	server, _ := newFakeNerdGraph(t,
		`{"data":{"syntheticsCreateSimpleMonitor":{"errors":[{"description":"bad uri","type":"BAD_REQUEST"}],"monitor":null}}}`,
	)
	_, err := newTestClient(t, server.URL).CreateSimpleMonitor(context.Background(), MonitorInput{Name: "x", URI: "nope"})
	if err == nil || !strings.Contains(err.Error(), "bad uri") {
		t.Fatalf("expected mutation error, got %v", err)
	}
}

func TestGraphQLErrorsAreReturned(t *testing.T) {
	server, _ := newFakeNerdGraph(t, `{"data":null,"errors":[{"message":"Invalid API key"}]}`)
	_, err := newTestClient(t, server.URL).ListMonitors(context.Background())
	if err == nil || !strings.Contains(err.Error(), "Invalid API key") {
		t.Fatalf("expected graphql error, got %v", err)
	}
}

func TestHTTPErrorStatusIsReturned(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	_, err := newTestClient(t, server.URL).ListMonitors(context.Background())
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected http status error, got %v", err)
	}
}

func TestDestinationsListAndCreate(t *testing.T) {
	server, requests := newFakeNerdGraph(t,
		`{"data":{"actor":{"account":{"aiNotifications":{"destinations":{"nextCursor":null,"entities":[{"id":"d1","name":"openedx ops@example.com","properties":[{"key":"email","value":"ops@example.com"}]}]}}}}}}`,
		`{"data":{"aiNotificationsCreateDestination":{"destination":{"id":"d2","name":"openedx dev@example.com"},"error":null}}}`,
	)
	client := newTestClient(t, server.URL)

	existing, err := client.ListEmailDestinations(context.Background())
	if err != nil {
		t.Fatalf("list destinations: %v", err)
	}
	if diff := cmp.Diff([]Destination{{ID: "d1", Name: "openedx ops@example.com", Email: "ops@example.com"}}, existing); diff != "" {
		t.Fatalf("destinations mismatch (-want +got):\n%s", diff)
	}

	created, err := client.CreateEmailDestination(context.Background(), "openedx dev@example.com", "dev@example.com")
	if err != nil {
		t.Fatalf("create destination: %v", err)
	}
	if created.ID != "d2" || created.Email != "dev@example.com" {
		t.Fatalf("unexpected destination: %+v", created)
	}
	destination := (*requests)[1].Variables["destination"].(map[string]any)
	if destination["type"] != "EMAIL" {
		t.Fatalf("unexpected destination input: %v", destination)
	}
}

func newSlowServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-release:
		case <-r.Context().Done():
		case <-time.After(500 * time.Millisecond):
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":{}}`)
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})
	return server
}

func TestMutationsAreNotRetriedAfterTimeout(t *testing.T) {
	var hits atomic.Int32
	server := newSlowServer(t, &hits)
	client, err := NewClient(Options{APIKey: "NRAK-TEST", AccountID: "1234", Endpoint: server.URL, Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if _, err := client.CreateSimpleMonitor(context.Background(), MonitorInput{Name: "x", URI: "https://a"}); err == nil {
		t.Fatalf("expected timeout creating monitor")
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("monitor mutation sent %d times, want 1", got)
	}

	hits.Store(0)
	if _, err := client.CreateEmailDestination(context.Background(), "openedx a@example.com", "a@example.com"); err == nil {
		t.Fatalf("expected timeout creating destination")
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("destination mutation sent %d times, want 1", got)
	}
}

func TestQueriesRetryOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":{"actor":{"entitySearch":{"results":{"nextCursor":null,"entities":[]}}}}}`)
	}))
	t.Cleanup(server.Close)

	if _, err := newTestClient(t, server.URL).ListMonitors(context.Background()); err != nil {
		t.Fatalf("list monitors: %v", err)
	}
	if got := hits.Load(); got != 2 {
		t.Fatalf("expected one retry, got %d requests", got)
	}
}
