// Package jira talks to the Jira REST API (v2) to find, create, link and reopen
// the tickets that track unreported upstream follow-ups.
package jira

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	snifferrors "sniffer.dev/regression-sniffer/internal/errors"
)

// DefaultURL is the Jira instance tickets are filed in
const DefaultURL = "https://issues.redhat.com"

// DefaultProject is the project key tickets are filed in
const DefaultProject = "RHEL"

const retryMaxElapsed = 30 * time.Second

// Logger receives dry-run output and warnings
type Logger interface {
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Debug(format string, args ...interface{})
}

// Client provides HTTP access to a Jira instance.
type Client struct {
	URL        string
	APIToken   string
	Project    string
	HTTPClient *http.Client

	// Dry logs every mutating call instead of performing it
	Dry bool
	Log Logger

	// NewBackOff returns the retry policy for one request. Defaults to an
	// exponential backoff capped at 30s.
	NewBackOff func() backoff.BackOff
}

// NewClient creates a new Jira client authenticated with a personal access token.
func NewClient(baseURL, apiToken string, dry bool, log Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		URL:      strings.TrimSuffix(baseURL, "/"),
		APIToken: apiToken,
		Project:  DefaultProject,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		Dry: dry,
		Log: log,
	}
}

// BrowseURL returns the web URL of an issue
func (c *Client) BrowseURL(key string) string {
	return c.URL + "/browse/" + key
}

func (c *Client) newBackOff() backoff.BackOff {
	if c.NewBackOff != nil {
		return c.NewBackOff()
	}
	// BackOff implementations are stateful; always return a fresh instance.
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = retryMaxElapsed
	return bo
}

// doRequest executes an authenticated HTTP request, retrying transient failures,
// and returns the response body.
func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	if c.APIToken == "" {
		return nil, fmt.Errorf("jira API token not configured")
	}

	var respBody []byte
	err := backoff.Retry(func() error {
		var err error
		respBody, err = c.doRequestOnce(ctx, method, path, body)
		if err == nil {
			return nil
		}
		if isRetryable(ctx, err) {
			c.debug("Retrying %s %s: %v", method, path, err)
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(c.newBackOff(), ctx))
	return respBody, err
}

func (c *Client) doRequestOnce(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	apiURL := c.URL + path
	req, err := http.NewRequestWithContext(ctx, method, apiURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.APIToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "regression-sniffer")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &snifferrors.HTTPError{
			Service:    "jira",
			Method:     method,
			URL:        apiURL,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	return respBody, nil
}

func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var httpErr *snifferrors.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Temporary()
	}
	// transport failures
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

func (c *Client) info(format string, args ...interface{}) {
	if c.Log != nil {
		c.Log.Info(format, args...)
	}
}

func (c *Client) warn(format string, args ...interface{}) {
	if c.Log != nil {
		c.Log.Warn(format, args...)
	}
}

func (c *Client) debug(format string, args ...interface{}) {
	if c.Log != nil {
		c.Log.Debug(format, args...)
	}
}
