// Package github looks up the downstream pull requests that introduced backport
// commits and reads the waiver markers left on them.
package github

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
)

// DefaultHostname is the public GitHub host
const DefaultHostname = "github.com"

// Client queries one repository's pull requests
type Client struct {
	gh    *github.Client
	owner string
	repo  string
}

// NewClient creates an authenticated client for owner/repo on hostname
func NewClient(ctx context.Context, hostname, token, owner, repo string) (*Client, error) {
	gh, err := createGitHubClient(ctx, hostname, token)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}
	return NewClientWith(gh, owner, repo), nil
}

// NewClientWith wraps an existing go-github client
func NewClientWith(gh *github.Client, owner, repo string) *Client {
	return &Client{gh: gh, owner: owner, repo: repo}
}

func createGitHubClient(ctx context.Context, hostname, token string) (*github.Client, error) {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	client := github.NewClient(tc)

	// Configure for GitHub Enterprise if not github.com
	if hostname != "" && hostname != DefaultHostname {
		// REST API: https://hostname/api/v3/
		// Upload API: https://hostname/api/uploads/
		baseURL, err := url.Parse(fmt.Sprintf("https://%s/api/v3/", hostname))
		if err != nil {
			return nil, fmt.Errorf("failed to parse base URL for hostname %s: %w", hostname, err)
		}
		uploadURL, err := url.Parse(fmt.Sprintf("https://%s/api/uploads/", hostname))
		if err != nil {
			return nil, fmt.Errorf("failed to parse upload URL for hostname %s: %w", hostname, err)
		}

		client.BaseURL = baseURL
		client.UploadURL = uploadURL
	}

	return client, nil
}
