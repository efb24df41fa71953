package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"

	"github.com/google/go-github/v62/github"

	"sniffer.dev/regression-sniffer/internal/model"
)

// WaiverLabel marks a pull request whose reported follow-ups were reviewed and waived
const WaiverLabel = "follow-up-waived"

var (
	commentIDRegexp    = regexp.MustCompile(`<!-- issue-commentator = {.*"comment-id":"(\d+)".*} -->`)
	reportedSHAsRegexp = regexp.MustCompile(`<!-- regression-sniffer = (.*) -->`)
)

// PullRequestInfo contains information about a pull request
// This is a simplified struct to avoid coupling to go-github library
type PullRequestInfo struct {
	Number  int
	HTMLURL string
	Body    string
	Labels  []string
	// Comment is the body of the issue comment referenced by the PR body marker
	Comment string
	// ReportedSHAs are the follow-up SHAs listed in Comment
	ReportedSHAs []string
}

// HasLabel reports whether the pull request carries the label
func (p *PullRequestInfo) HasLabel(name string) bool {
	for _, label := range p.Labels {
		if label == name {
			return true
		}
	}
	return false
}

// Waived reports whether the pull request carries the waiver label
func (p *PullRequestInfo) Waived() bool {
	return p.HasLabel(WaiverLabel)
}

// IsReferenceWaived reports whether sha was reported on the pull request and the
// report was waived
func (p *PullRequestInfo) IsReferenceWaived(sha string) bool {
	if p == nil || !p.Waived() {
		return false
	}
	for _, reported := range p.ReportedSHAs {
		if reported == sha {
			return true
		}
	}
	return false
}

// Summary returns the persisted form of the pull request
func (p *PullRequestInfo) Summary() *model.PullRequest {
	return &model.PullRequest{
		Number: p.Number,
		URL:    p.HTMLURL,
		Waived: model.Bool(p.Waived()),
	}
}

// CommentID extracts the issue comment id from the marker in a pull request body
func CommentID(body string) (int64, bool) {
	match := commentIDRegexp.FindStringSubmatch(body)
	if match == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// ReportedSHAs parses the JSON list of SHAs from the marker in a comment body.
// A missing or malformed marker yields nil.
func ReportedSHAs(comment string) []string {
	match := reportedSHAsRegexp.FindStringSubmatch(comment)
	if match == nil {
		return nil
	}
	var shas []string
	if err := json.Unmarshal([]byte(match[1]), &shas); err != nil {
		return nil
	}
	return shas
}

// FindPullRequestForCommit returns the first pull request associated with sha,
// or nil when there is none. The waiver comment, if referenced, is fetched too.
func (c *Client) FindPullRequestForCommit(ctx context.Context, sha string) (*PullRequestInfo, error) {
	prs, _, err := c.gh.PullRequests.ListPullRequestsWithCommit(ctx, c.owner, c.repo, sha, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list pull requests for %s: %w", sha, err)
	}
	if len(prs) == 0 {
		return nil, nil
	}

	info := toPullRequestInfo(prs[0])
	if id, ok := CommentID(info.Body); ok {
		comment, _, err := c.gh.Issues.GetComment(ctx, c.owner, c.repo, id)
		if err != nil {
			return info, fmt.Errorf("failed to get comment %d on #%d: %w", id, info.Number, err)
		}
		info.Comment = comment.GetBody()
		info.ReportedSHAs = ReportedSHAs(info.Comment)
	}
	return info, nil
}

func isNotFound(err error) bool {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode == http.StatusNotFound ||
			ghErr.Response.StatusCode == http.StatusUnprocessableEntity
	}
	return false
}

// toPullRequestInfo converts a github.PullRequest to PullRequestInfo
func toPullRequestInfo(pr *github.PullRequest) *PullRequestInfo {
	info := &PullRequestInfo{
		Number:  pr.GetNumber(),
		HTMLURL: pr.GetHTMLURL(),
		Body:    pr.GetBody(),
	}
	for _, label := range pr.Labels {
		info.Labels = append(info.Labels, label.GetName())
	}
	return info
}
