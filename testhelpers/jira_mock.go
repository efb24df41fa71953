package testhelpers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// MockJiraIssue is an issue held by the mock Jira server
type MockJiraIssue struct {
	Key            string
	Summary        string
	Status         string
	StatusCategory string
	Versions       []string
	Links          []MockJiraLink
	Fields         map[string]interface{}
}

// MockJiraLink is a remote link on a mock issue
type MockJiraLink struct {
	Title string
	URL   string
}

// MockJiraRequest records one request received by the mock server
type MockJiraRequest struct {
	Method string
	Path   string
	Body   string
}

// MockJiraServerConfig configures the behavior of a mock Jira server
type MockJiraServerConfig struct {
	// Issues returned by searches, in order
	Issues []*MockJiraIssue
	// PageSize caps the number of issues per search page
	PageSize int
	// FailStatus maps "METHOD path" to a status code answered instead
	FailStatus map[string]int
	// FailTimes limits how many times a FailStatus entry fires; zero means always
	FailTimes map[string]int
	// RawResponses maps "METHOD path" to a literal body answered with 200
	RawResponses map[string]string

	mu       sync.Mutex
	requests []MockJiraRequest
	nextID   int
}

// NewMockJiraServerConfig creates a new mock server config with defaults
func NewMockJiraServerConfig() *MockJiraServerConfig {
	return &MockJiraServerConfig{
		PageSize:     50,
		FailStatus:   make(map[string]int),
		FailTimes:    make(map[string]int),
		RawResponses: make(map[string]string),
		nextID:       100,
	}
}

// Requests returns the requests received so far
func (c *MockJiraServerConfig) Requests() []MockJiraRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]MockJiraRequest(nil), c.requests...)
}

// MutatingRequests returns the received requests that were not GETs or searches
func (c *MockJiraServerConfig) MutatingRequests() []MockJiraRequest {
	var out []MockJiraRequest
	for _, req := range c.Requests() {
		if req.Method != http.MethodGet && req.Path != "/rest/api/2/search" {
			out = append(out, req)
		}
	}
	return out
}

// Issue returns the mock issue with key, or nil
func (c *MockJiraServerConfig) Issue(key string) *MockJiraIssue {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.issue(key)
}

func (c *MockJiraServerConfig) issue(key string) *MockJiraIssue {
	for _, issue := range c.Issues {
		if issue.Key == key {
			return issue
		}
	}
	return nil
}

// NewMockJiraServer creates an httptest server mocking the Jira REST v2 endpoints
// used for searching, creating, linking and transitioning issues
func NewMockJiraServer(t *testing.T, config *MockJiraServerConfig) *httptest.Server {
	if config == nil {
		config = NewMockJiraServerConfig()
	}

	handler := func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		path := r.URL.Path
		route := r.Method + " " + path

		config.mu.Lock()
		defer config.mu.Unlock()
		config.requests = append(config.requests, MockJiraRequest{Method: r.Method, Path: path, Body: string(body)})

		if status, ok := config.FailStatus[route]; ok {
			remaining, limited := config.FailTimes[route]
			if !limited || remaining > 0 {
				if limited {
					config.FailTimes[route] = remaining - 1
				}
				writeJSON(w, status, map[string]interface{}{"errorMessages": []string{http.StatusText(status)}})
				return
			}
		}
		if raw, ok := config.RawResponses[route]; ok {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, raw)
			return
		}

		if r.Header.Get("Authorization") == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"errorMessages": []string{"no auth"}})
			return
		}

		const issuePrefix = "/rest/api/2/issue/"
		switch {
		case route == "POST /rest/api/2/search":
			config.search(w, body)
		case route == "POST /rest/api/2/issue":
			config.create(w, body)
		case strings.HasPrefix(path, issuePrefix) && strings.HasSuffix(path, "/remotelink"):
			key := strings.TrimSuffix(strings.TrimPrefix(path, issuePrefix), "/remotelink")
			config.remoteLinks(w, r.Method, key, body)
		case strings.HasPrefix(path, issuePrefix) && strings.HasSuffix(path, "/transitions"):
			key := strings.TrimSuffix(strings.TrimPrefix(path, issuePrefix), "/transitions")
			config.transitions(w, r.Method, key, body)
		default:
			http.Error(w, fmt.Sprintf("Unhandled path: %s (method: %s)", path, r.Method), http.StatusNotFound)
		}
	}

	server := httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(func() { server.Close() })
	return server
}

func (c *MockJiraServerConfig) search(w http.ResponseWriter, body []byte) {
	var req struct {
		StartAt    int `json:"startAt"`
		MaxResults int `json:"maxResults"`
	}
	_ = json.Unmarshal(body, &req)

	end := req.StartAt + c.PageSize
	if end > len(c.Issues) {
		end = len(c.Issues)
	}
	issues := []map[string]interface{}{}
	if req.StartAt < len(c.Issues) {
		for _, issue := range c.Issues[req.StartAt:end] {
			issues = append(issues, issue.wire())
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"startAt":    req.StartAt,
		"maxResults": c.PageSize,
		"total":      len(c.Issues),
		"issues":     issues,
	})
}

func (c *MockJiraServerConfig) create(w http.ResponseWriter, body []byte) {
	var req struct {
		Fields map[string]interface{} `json:"fields"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c.nextID++
	key := fmt.Sprintf("RHEL-%d", c.nextID)
	summary, _ := req.Fields["summary"].(string)
	c.Issues = append(c.Issues, &MockJiraIssue{
		Key:            key,
		Summary:        summary,
		Status:         "New",
		StatusCategory: "To Do",
		Fields:         req.Fields,
	})
	writeJSON(w, http.StatusCreated, map[string]string{
		"id":   fmt.Sprint(c.nextID),
		"key":  key,
		"self": "https://jira.example.com/rest/api/2/issue/" + key,
	})
}

func (c *MockJiraServerConfig) remoteLinks(w http.ResponseWriter, method, key string, body []byte) {
	issue := c.issue(key)
	if issue == nil {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"errorMessages": []string{"Issue Does Not Exist"}})
		return
	}

	if method == http.MethodPost {
		var link struct {
			Object struct {
				Title string `json:"title"`
				URL   string `json:"url"`
			} `json:"object"`
		}
		if err := json.Unmarshal(body, &link); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		issue.Links = append(issue.Links, MockJiraLink{Title: link.Object.Title, URL: link.Object.URL})
		writeJSON(w, http.StatusCreated, map[string]interface{}{"id": len(issue.Links)})
		return
	}

	links := []map[string]interface{}{}
	for i, link := range issue.Links {
		links = append(links, map[string]interface{}{
			"id":     i + 1,
			"object": map[string]string{"title": link.Title, "url": link.URL},
		})
	}
	writeJSON(w, http.StatusOK, links)
}

func (c *MockJiraServerConfig) transitions(w http.ResponseWriter, method, key string, body []byte) {
	issue := c.issue(key)
	if issue == nil {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"errorMessages": []string{"Issue Does Not Exist"}})
		return
	}

	available := []map[string]interface{}{
		{"id": "11", "name": "New", "to": map[string]string{"name": "New"}},
		{"id": "21", "name": "Start Progress", "to": map[string]string{"name": "In Progress"}},
		{"id": "31", "name": "Close", "to": map[string]string{"name": "Closed"}},
	}

	if method == http.MethodGet {
		writeJSON(w, http.StatusOK, map[string]interface{}{"transitions": available})
		return
	}

	var req struct {
		Transition struct {
			ID string `json:"id"`
		} `json:"transition"`
	}
	_ = json.Unmarshal(body, &req)
	switch req.Transition.ID {
	case "11":
		issue.Status, issue.StatusCategory = "New", "To Do"
	case "21":
		issue.Status, issue.StatusCategory = "In Progress", "In Progress"
	case "31":
		issue.Status, issue.StatusCategory = "Closed", "Done"
	default:
		http.Error(w, "unknown transition", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (i *MockJiraIssue) wire() map[string]interface{} {
	versions := []map[string]string{}
	for _, v := range i.Versions {
		versions = append(versions, map[string]string{"name": v})
	}
	return map[string]interface{}{
		"id":  strings.TrimPrefix(i.Key, "RHEL-"),
		"key": i.Key,
		"fields": map[string]interface{}{
			"summary":   i.Summary,
			"issuetype": map[string]string{"name": "Bug"},
			"status": map[string]interface{}{
				"name":           i.Status,
				"statusCategory": map[string]string{"name": i.StatusCategory},
			},
			"labels":   []string{},
			"versions": versions,
		},
	}
}
