package testhelpers

import (
	"fmt"

	"github.com/google/go-github/v62/github"
)

// SamplePRData provides common PR data for testing
type SamplePRData struct {
	Number    int
	Title     string
	Body      string
	HTMLURL   string
	Labels    []string
	CommentID int64
}

// NewSamplePullRequest creates a github.PullRequest from sample data. A non-zero
// CommentID appends the issue-commentator marker to the body.
func NewSamplePullRequest(data SamplePRData) *github.PullRequest {
	body := data.Body
	if data.CommentID != 0 {
		body += "\n" + CommentatorMarker(data.CommentID)
	}

	pr := &github.PullRequest{
		Number:  github.Int(data.Number),
		Title:   github.String(data.Title),
		Body:    github.String(body),
		HTMLURL: github.String(data.HTMLURL),
		State:   github.String("closed"),
	}
	for _, label := range data.Labels {
		pr.Labels = append(pr.Labels, &github.Label{Name: github.String(label)})
	}
	return pr
}

// DefaultPRData returns a default PR data structure for testing
func DefaultPRData() SamplePRData {
	return SamplePRData{
		Number:  123,
		Title:   "Backport fixes",
		Body:    "Backports from upstream",
		HTMLURL: "https://github.com/owner/repo/pull/123",
	}
}

// WaivedPRData returns PR data carrying the waiver label and a marker pointing at commentID
func WaivedPRData(commentID int64) SamplePRData {
	data := DefaultPRData()
	data.Labels = []string{"follow-up-waived"}
	data.CommentID = commentID
	return data
}

// CommentatorMarker renders the hidden marker a PR body uses to reference its report comment
func CommentatorMarker(commentID int64) string {
	return fmt.Sprintf(`<!-- issue-commentator = {"tracker-id":"1","comment-id":"%d"} -->`, commentID)
}

// ReportComment renders a report comment listing shas in the hidden marker
func ReportComment(shas ...string) string {
	list := "["
	for i, sha := range shas {
		if i > 0 {
			list += ","
		}
		list += fmt.Sprintf("%q", sha)
	}
	list += "]"
	return "Follow-ups detected.\n<!-- regression-sniffer = " + list + " -->"
}
