package fixtures

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matchday-bet/matchday/internal/metrics"
	"github.com/matchday-bet/matchday/internal/util"
	log "github.com/sirupsen/logrus"
)

// Upstream API methods.
const (
	methodFixtures  = "Fixtures"
	methodLivescore = "Livescore"
)

// apiResponse is the upstream envelope.
type apiResponse struct {
	Success int             `json:"success"`
	Result  json.RawMessage `json:"result"`
}

// Client calls the allsportsapi football endpoints.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// NewClient builds a client with the given request timeout.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if apiKey == "" {
		log.Warn("fixtures: no api key configured, upstream requests will be rejected")
	} else {
		log.Debugf("fixtures: using api key %s", util.HideSecret(apiKey))
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Fixtures returns fixtures between from and to (YYYY-MM-DD, inclusive).
func (c *Client) Fixtures(ctx context.Context, from, to string) ([]Fixture, error) {
	return c.get(ctx, methodFixtures, url.Values{"from": {from}, "to": {to}})
}

// Livescore returns the fixtures currently in play.
func (c *Client) Livescore(ctx context.Context) ([]Fixture, error) {
	return c.get(ctx, methodLivescore, nil)
}

// Fixture returns a single fixture by event key, or nil when the upstream has none.
func (c *Client) Fixture(ctx context.Context, matchID string) (*Fixture, error) {
	list, err := c.get(ctx, methodFixtures, url.Values{"matchId": {matchID}})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

func (c *Client) get(ctx context.Context, method string, params url.Values) ([]Fixture, error) {
	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("met", method)
	query.Set("APIkey", c.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("fixtures: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		metrics.FixtureRequests.WithLabelValues(method, "error").Inc()
		return nil, fmt.Errorf("fixtures: %s: %w", method, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode >= 300 {
		metrics.FixtureRequests.WithLabelValues(method, "error").Inc()
		_, _ = io.Copy(io.Discard, res.Body)
		return nil, fmt.Errorf("fixtures: %s: http %d", method, res.StatusCode)
	}

	var envelope apiResponse
	if errDecode := json.NewDecoder(res.Body).Decode(&envelope); errDecode != nil {
		metrics.FixtureRequests.WithLabelValues(method, "error").Inc()
		return nil, fmt.Errorf("fixtures: %s: decode: %w", method, errDecode)
	}
	metrics.FixtureRequests.WithLabelValues(method, "ok").Inc()

	// The upstream answers "no fixtures" with success=0 or an empty/non-array result.
	if envelope.Success != 1 || len(envelope.Result) == 0 || envelope.Result[0] != '[' {
		return []Fixture{}, nil
	}
	var list []Fixture
	if errDecode := json.Unmarshal(envelope.Result, &list); errDecode != nil {
		return nil, fmt.Errorf("fixtures: %s: decode result: %w", method, errDecode)
	}
	return list, nil
}
