package testhelpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-github/v62/github"
)

// MockGitHubServerConfig configures the behavior of a mock GitHub server
type MockGitHubServerConfig struct {
	// CommitPRs maps commit SHAs to the pull requests that contain them
	CommitPRs map[string][]*github.PullRequest
	// Comments maps issue comment ids to their bodies
	Comments map[int64]string
	// StatusOverrides maps request paths to an HTTP status to answer with
	StatusOverrides map[string]int
	// Owner and Repo for the mock server
	Owner string
	Repo  string

	mu       sync.Mutex
	requests []string
}

// NewMockGitHubServerConfig creates a new mock server config with defaults
func NewMockGitHubServerConfig() *MockGitHubServerConfig {
	return &MockGitHubServerConfig{
		CommitPRs:       make(map[string][]*github.PullRequest),
		Comments:        make(map[int64]string),
		StatusOverrides: make(map[string]int),
		Owner:           "owner",
		Repo:            "repo",
	}
}

// Requests returns the paths requested so far
func (c *MockGitHubServerConfig) Requests() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.requests...)
}

// NewMockGitHubServer creates an httptest server that mocks the GitHub endpoints
// used to find pull requests and their waiver comments
func NewMockGitHubServer(t *testing.T, config *MockGitHubServerConfig) *httptest.Server {
	if config == nil {
		config = NewMockGitHubServerConfig()
	}

	repoPath := "/repos/" + config.Owner + "/" + config.Repo
	commitsPath := repoPath + "/commits/"
	commentsPath := repoPath + "/issues/comments/"

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		config.mu.Lock()
		config.requests = append(config.requests, path)
		config.mu.Unlock()

		if status, ok := config.StatusOverrides[path]; ok {
			writeJSON(w, status, map[string]string{"message": http.StatusText(status)})
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		switch {
		case strings.HasPrefix(path, commitsPath) && strings.HasSuffix(path, "/pulls"):
			sha := strings.TrimSuffix(strings.TrimPrefix(path, commitsPath), "/pulls")
			prs := config.CommitPRs[sha]
			if prs == nil {
				prs = []*github.PullRequest{}
			}
			writeJSON(w, http.StatusOK, prs)
		case strings.HasPrefix(path, commentsPath):
			id, err := strconv.ParseInt(strings.TrimPrefix(path, commentsPath), 10, 64)
			if err != nil {
				http.Error(w, "bad comment id", http.StatusBadRequest)
				return
			}
			body, ok := config.Comments[id]
			if !ok {
				writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
				return
			}
			writeJSON(w, http.StatusOK, &github.IssueComment{ID: github.Int64(id), Body: github.String(body)})
		default:
			http.Error(w, fmt.Sprintf("Unhandled path: %s (method: %s)", path, r.Method), http.StatusNotFound)
		}
	})

	server := httptest.NewServer(mux)
	t.Cleanup(func() { server.Close() })
	return server
}

// NewMockGitHubClient creates a GitHub client configured to use a mock server
func NewMockGitHubClient(t *testing.T, config *MockGitHubServerConfig) (*github.Client, string, string) {
	server := NewMockGitHubServer(t, config)
	client := github.NewClient(nil)
	baseURL, _ := url.Parse(server.URL + "/")
	client.BaseURL = baseURL
	client.UploadURL = baseURL

	return client, config.Owner, config.Repo
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
