// Package github queries the GitHub GraphQL API for contribution calendars.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/8ria/pulse/internal/contract"
	"github.com/8ria/pulse/schema"
)

// DefaultEndpoint is the public GraphQL API.
const DefaultEndpoint = "https://api.github.com/graphql"

const userAgent = "pulse"

// ErrUserNotFound is returned when the login does not resolve to a user.
var ErrUserNotFound = errors.New("user not found")

const contributionsQuery = `query($login: String!, $from: DateTime!, $to: DateTime!) {
  user(login: $login) {
    contributionsCollection(from: $from, to: $to) {
      contributionCalendar {
        totalContributions
        weeks {
          contributionDays {
            date
            contributionCount
          }
        }
      }
    }
  }
}`

// Client talks to the GraphQL endpoint with a bearer token.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

var _ contract.ContributionSource = &Client{} // Compile-time check

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithEndpoint points the client at another GraphQL URL.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// NewClient creates a client authenticating with token.
func NewClient(token string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, contract.ErrMissingCredential
	}
	c := &Client{
		endpoint:   DefaultEndpoint,
		token:      token,
		httpClient: &http.Client{Timeout: contract.DefaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type contributionsResponse struct {
	Data *struct {
		User *struct {
			ContributionsCollection *struct {
				ContributionCalendar *struct {
					TotalContributions *int `json:"totalContributions"`
					Weeks              []struct {
						ContributionDays []struct {
							Date              string `json:"date"`
							ContributionCount int    `json:"contributionCount"`
						} `json:"contributionDays"`
					} `json:"weeks"`
				} `json:"contributionCalendar"`
			} `json:"contributionsCollection"`
		} `json:"user"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

// FetchContributions returns the contribution total and daily calendar of login
// between from and to.
func (c *Client) FetchContributions(ctx context.Context, login string, from, to time.Time) (schema.ContributionSummary, error) {
	body, err := json.Marshal(graphQLRequest{
		Query: contributionsQuery,
		Variables: map[string]any{
			"login": login,
			"from":  from.UTC().Format(time.RFC3339),
			"to":    to.UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return schema.ContributionSummary{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return schema.ContributionSummary{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return schema.ContributionSummary{}, fmt.Errorf("graphql request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return schema.ContributionSummary{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return schema.ContributionSummary{}, fmt.Errorf("graphql api error: status=%d message=%s",
			resp.StatusCode, contract.TruncateText(strings.TrimSpace(string(data)), 200))
	}

	var parsed contributionsResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return schema.ContributionSummary{}, fmt.Errorf("decode response: %w", err)
	}
	return summarize(login, from, to, parsed)
}

// summarize checks the response shape and flattens the calendar weeks into days.
func summarize(login string, from, to time.Time, resp contributionsResponse) (schema.ContributionSummary, error) {
	if len(resp.Errors) > 0 {
		msgs := make([]string, len(resp.Errors))
		for i, e := range resp.Errors {
			msgs[i] = e.Message
		}
		return schema.ContributionSummary{}, fmt.Errorf("graphql errors: %s", strings.Join(msgs, "; "))
	}
	if resp.Data == nil {
		return schema.ContributionSummary{}, fmt.Errorf("graphql response missing data")
	}
	if resp.Data.User == nil {
		return schema.ContributionSummary{}, fmt.Errorf("%w: %s", ErrUserNotFound, login)
	}
	coll := resp.Data.User.ContributionsCollection
	if coll == nil || coll.ContributionCalendar == nil || coll.ContributionCalendar.TotalContributions == nil {
		return schema.ContributionSummary{}, fmt.Errorf("graphql response missing totalContributions")
	}

	cal := coll.ContributionCalendar
	summary := schema.ContributionSummary{
		Login: login,
		From:  from.UTC(),
		To:    to.UTC(),
		Total: *cal.TotalContributions,
	}
	for _, week := range cal.Weeks {
		for _, day := range week.ContributionDays {
			summary.Days = append(summary.Days, schema.ContributionDay{Date: day.Date, Count: day.ContributionCount})
		}
	}
	return summary, nil
}
