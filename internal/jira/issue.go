package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"sniffer.dev/regression-sniffer/internal/model"
)

// DryRunKey is the ticket key reported for issues that were not created
const DryRunKey = "DRY-007"

const (
	defaultRelease = 10
	minRelease     = 8
	maxRelease     = 10

	securityLevelID   = "11694"
	securityLevelName = "Red Hat Engineering Authorized"

	toolURL  = "https://github.com/redhat-plumbers-in-action/regression-sniffer-cli"
	iconURL  = "https://github.githubassets.com/favicon.ico"
	iconName = "GitHub"
)

// IssueRequest describes a ticket to file for one backport commit
type IssueRequest struct {
	Release   string
	Component string
	Epic      string
	Label     string
	Commit    *model.Commit
}

// ReleaseVersion maps a release number to the affected version name. Anything
// outside 8..10 falls back to 10.
func ReleaseVersion(release string) string {
	n, err := strconv.Atoi(release)
	if err != nil || n < minRelease || n > maxRelease {
		n = defaultRelease
	}
	return fmt.Sprintf("CentOS Stream %d", n)
}

// IssueSummary is the summary of the ticket filed for commit
func IssueSummary(commit *model.Commit) string {
	return "[follow-up to] - " + commit.Headline()
}

func issueDescription(commit *model.Commit) string {
	return fmt.Sprintf("Commit [%s|%s] has follow-ups in the upstream project.\n"+
		"Please check follow-up commits and if they are relevant to the RHEL project, please backport them.\n"+
		"Otherwise, please close this issue.\n\n"+
		"[regression-sniffer-cli|%s] was used to create this issue.", commit.SHA, commit.URL, toolURL)
}

// CreateIssue files a Bug for the commit and attaches backport, cherry-pick,
// follow-up and revert links. A link that cannot be attached is logged; the
// ticket is still returned since it exists.
func (c *Client) CreateIssue(ctx context.Context, req IssueRequest) (*model.Tracker, error) {
	commit := req.Commit
	summary := IssueSummary(commit)
	version := ReleaseVersion(req.Release)

	tracker := &model.Tracker{
		Type:           "Bug",
		Status:         "New",
		StatusCategory: model.StatusToDo,
		Versions:       []string{version},
		Summary:        summary,
	}

	if c.Dry {
		c.info("Would create issue:")
		c.info("Title: %s", summary)
		c.info("Description: %s", issueDescription(commit))
		c.info("Labels: %s", req.Label)
		c.info("Version: %s", version)
		tracker.ID = DryRunKey
		tracker.URL = c.BrowseURL(DryRunKey)
	} else {
		fields := map[string]interface{}{
			"project":     map[string]string{"key": c.Project},
			"summary":     summary,
			"description": issueDescription(commit),
			"issuetype":   map[string]string{"name": "Bug"},
			"labels":      []string{req.Label},
			"components":  []map[string]string{{"name": req.Component}},
			"versions":    []map[string]string{{"name": version}},
			"security":    map[string]string{"id": securityLevelID, "name": securityLevelName},
			EpicField:     map[string]string{"value": req.Epic},
		}
		data, err := json.Marshal(map[string]interface{}{"fields": fields})
		if err != nil {
			return nil, fmt.Errorf("marshal create request: %w", err)
		}

		body, err := c.doRequest(ctx, "POST", "/rest/api/2/issue", data)
		if err != nil {
			return nil, fmt.Errorf("create issue: %w", err)
		}

		var created createdIssue
		if err := json.Unmarshal(body, &created); err != nil || created.Key == "" {
			return nil, fmt.Errorf("parse create response: %s", body)
		}
		tracker.ID = created.Key
		tracker.URL = c.BrowseURL(created.Key)
	}

	for _, link := range issueLinks(commit) {
		if err := c.CreateExternalLink(ctx, tracker.ID, link.kind, link.title, link.url); err != nil {
			c.warn("Unable to link %s to %s: %v", link.url, tracker.ID, err)
		}
	}
	return tracker, nil
}

type pendingLink struct {
	kind  model.LinkKind
	title string
	url   string
}

func issueLinks(commit *model.Commit) []pendingLink {
	headline := commit.Headline()
	links := []pendingLink{{model.LinkBackport, headline, commit.URL}}
	for _, cp := range commit.CherryPicks {
		links = append(links, pendingLink{model.LinkCherryPick, headline, cp.URL})
	}
	for _, ref := range commit.FollowUps {
		links = append(links, pendingLink{model.LinkFollowUp, ref.Message, ref.URL})
	}
	for _, ref := range commit.Reverts {
		links = append(links, pendingLink{model.LinkRevert, ref.Message, ref.URL})
	}
	return links
}

// CreateExternalLink attaches a "[kind] - title" remote link pointing at linkURL
func (c *Client) CreateExternalLink(ctx context.Context, key string, kind model.LinkKind, title, linkURL string) error {
	if _, err := model.ParseURL(linkURL); err != nil {
		return fmt.Errorf("invalid link url: %w", err)
	}
	link := RemoteLink{Object: RemoteLinkObject{
		Title: LinkTitle(kind, title),
		URL:   linkURL,
		Icon:  &RemoteLinkIcon{Title: iconName, URL16x16: iconURL},
	}}

	if c.Dry {
		c.info("Would create external link: %s - %s", link.Object.Title, linkURL)
		return nil
	}

	data, err := json.Marshal(link)
	if err != nil {
		return fmt.Errorf("marshal remote link: %w", err)
	}
	if _, err := c.doRequest(ctx, "POST", "/rest/api/2/issue/"+url.PathEscape(key)+"/remotelink", data); err != nil {
		return fmt.Errorf("create remote link on %s: %w", key, err)
	}
	return nil
}

// GetTransitions lists the workflow transitions available on an issue
func (c *Client) GetTransitions(ctx context.Context, key string) ([]Transition, error) {
	body, err := c.doRequest(ctx, "GET", "/rest/api/2/issue/"+url.PathEscape(key)+"/transitions", nil)
	if err != nil {
		return nil, fmt.Errorf("get transitions of %s: %w", key, err)
	}
	var resp transitionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse transitions of %s: %w", key, err)
	}
	return resp.Transitions, nil
}

// TransitionIssue moves an issue to status, matching either the transition
// name or its target status name
func (c *Client) TransitionIssue(ctx context.Context, key, status string) error {
	if c.Dry {
		c.info("Would transition issue %s to %s", key, status)
		return nil
	}

	transitions, err := c.GetTransitions(ctx, key)
	if err != nil {
		return err
	}

	var id string
	for _, t := range transitions {
		if t.Name == status || t.To.Name == status {
			id = t.ID
			break
		}
	}
	if id == "" {
		return fmt.Errorf("no transition to %q available on %s", status, key)
	}

	data, err := json.Marshal(map[string]interface{}{"transition": map[string]string{"id": id}})
	if err != nil {
		return fmt.Errorf("marshal transition: %w", err)
	}
	if _, err := c.doRequest(ctx, "POST", "/rest/api/2/issue/"+url.PathEscape(key)+"/transitions", data); err != nil {
		return fmt.Errorf("transition %s to %s: %w", key, status, err)
	}
	return nil
}
