package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	snifferrors "sniffer.dev/regression-sniffer/internal/errors"
	"sniffer.dev/regression-sniffer/internal/model"
)

const searchPageSize = 100

var linkTitleRegexp = regexp.MustCompile(`^\[(follow-up|revert|cherry-pick|backport)\] - (.+)$`)

// LinkTitle renders the title of an external link of the given kind
func LinkTitle(kind model.LinkKind, title string) string {
	return fmt.Sprintf("[%s] - %s", kind, model.Headline(title))
}

// ParseLinkTitle splits a "[kind] - title" link title. ok is false for titles
// without a known kind tag.
func ParseLinkTitle(title string) (kind model.LinkKind, text string, ok bool) {
	match := linkTitleRegexp.FindStringSubmatch(title)
	if match == nil {
		return "", title, false
	}
	return model.LinkKind(match[1]), match[2], true
}

// TrackedIssuesJQL is the query selecting the tickets previously filed for a component
func (c *Client) TrackedIssuesJQL(component, label string) string {
	return fmt.Sprintf("project = %s AND component = %s AND labels in (%s) ORDER BY created DESC",
		c.Project, component, label)
}

// SearchIssues queries Jira using JQL and returns all matching issues, handling pagination.
func (c *Client) SearchIssues(ctx context.Context, jql string) ([]Issue, error) {
	var allIssues []Issue
	startAt := 0

	for {
		data, err := json.Marshal(SearchRequest{
			JQL:        jql,
			StartAt:    startAt,
			MaxResults: searchPageSize,
			Fields:     searchFields,
		})
		if err != nil {
			return nil, fmt.Errorf("marshal search request: %w", err)
		}

		body, err := c.doRequest(ctx, "POST", "/rest/api/2/search", data)
		if err != nil {
			return nil, fmt.Errorf("search issues: %w", err)
		}

		var result SearchResult
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("%w: parse search response: %v", snifferrors.ErrInvalidResponse, err)
		}

		allIssues = append(allIssues, result.Issues...)

		if len(result.Issues) == 0 || startAt+len(result.Issues) >= result.Total {
			break
		}
		startAt += len(result.Issues)
	}

	return allIssues, nil
}

// GetRemoteLinks returns the external links attached to an issue
func (c *Client) GetRemoteLinks(ctx context.Context, key string) ([]RemoteLink, error) {
	body, err := c.doRequest(ctx, "GET", "/rest/api/2/issue/"+url.PathEscape(key)+"/remotelink", nil)
	if err != nil {
		return nil, fmt.Errorf("get remote links of %s: %w", key, err)
	}

	var links []RemoteLink
	if err := json.Unmarshal(body, &links); err != nil {
		return nil, fmt.Errorf("%w: parse remote links of %s: %v", snifferrors.ErrInvalidResponse, key, err)
	}
	return links, nil
}

// SearchTrackedIssues rebuilds the commits already reported for component from
// the tickets carrying label. Each ticket's remote links describe the backport,
// its cherry-picks, follow-ups and reverts. Tickets without a backport link are
// skipped. Malformed ticket data yields an error wrapping ErrInvalidResponse.
func (c *Client) SearchTrackedIssues(ctx context.Context, component, label string) ([]model.Commit, error) {
	issues, err := c.SearchIssues(ctx, c.TrackedIssuesJQL(component, label))
	if err != nil {
		return nil, err
	}

	commits := make([]model.Commit, 0, len(issues))
	for _, issue := range issues {
		links, err := c.GetRemoteLinks(ctx, issue.Key)
		if err != nil {
			return nil, err
		}

		commit, err := c.issueToCommit(issue, links)
		if err != nil {
			return nil, err
		}
		if commit.SHA == "" {
			c.warn("Issue %s has no backport link, skipping", issue.Key)
			continue
		}
		commits = append(commits, commit)
	}
	return commits, nil
}

func (c *Client) issueToCommit(issue Issue, links []RemoteLink) (model.Commit, error) {
	tracker, err := c.issueToTracker(issue)
	if err != nil {
		return model.Commit{}, err
	}

	commit := model.Commit{
		CherryPicks: []model.CherryPick{},
		FollowUps:   []model.Reference{},
		Reverts:     []model.Reference{},
		Tracker:     tracker,
	}

	for i, link := range links {
		if _, err := model.ParseURL(link.Object.URL); err != nil {
			return model.Commit{}, snifferrors.NewResponseError(
				fmt.Sprintf("%s.links[%d].url", issue.Key, i), err.Error())
		}

		kind, title, ok := ParseLinkTitle(link.Object.Title)
		if !ok {
			continue
		}
		sha := lastSegment(link.Object.URL)

		switch kind {
		case model.LinkBackport:
			if commit.SHA == "" {
				commit.SHA = sha
				commit.URL = link.Object.URL
				commit.Message = title
			}
		case model.LinkCherryPick:
			commit.CherryPicks = append(commit.CherryPicks, model.CherryPick{SHA: sha, URL: link.Object.URL})
		case model.LinkFollowUp:
			commit.FollowUps = append(commit.FollowUps, model.Reference{SHA: sha, URL: link.Object.URL, Message: title})
		case model.LinkRevert:
			commit.Reverts = append(commit.Reverts, model.Reference{SHA: sha, URL: link.Object.URL, Message: title})
		}
	}
	return commit, nil
}

func (c *Client) issueToTracker(issue Issue) (*model.Tracker, error) {
	if issue.Key == "" {
		return nil, snifferrors.NewResponseError("key", "must not be empty")
	}
	fields := issue.Fields
	if fields.Status == nil || fields.Status.StatusCategory == nil {
		return nil, snifferrors.NewResponseError(issue.Key+".status", "missing status category")
	}
	category := model.StatusCategory(fields.Status.StatusCategory.Name)
	if !category.Valid() {
		return nil, snifferrors.NewResponseError(issue.Key+".status.statusCategory",
			fmt.Sprintf("unknown status category %q", category))
	}

	tracker := &model.Tracker{
		ID:             issue.Key,
		URL:            c.BrowseURL(issue.Key),
		Status:         fields.Status.Name,
		StatusCategory: category,
		Versions:       []string{},
		Summary:        fields.Summary,
	}
	if fields.IssueType != nil {
		tracker.Type = fields.IssueType.Name
	}
	for _, version := range fields.Versions {
		tracker.Versions = append(tracker.Versions, version.Name)
	}
	return tracker, nil
}

func lastSegment(rawURL string) string {
	trimmed := strings.TrimSuffix(rawURL, "/")
	return trimmed[strings.LastIndex(trimmed, "/")+1:]
}
