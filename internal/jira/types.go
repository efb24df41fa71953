package jira

// EpicField is the custom field holding the epic name
const EpicField = "customfield_12311140"

// searchFields is the set of fields requested by JQL searches
var searchFields = []string{"issuetype", "status", "summary", "labels", "versions", EpicField}

// Issue represents a Jira issue from the REST API.
type Issue struct {
	ID     string      `json:"id"`
	Key    string      `json:"key"`
	Self   string      `json:"self"`
	Fields IssueFields `json:"fields"`
}

// IssueFields contains the fields of a Jira issue that are read back.
type IssueFields struct {
	Summary   string       `json:"summary"`
	Status    *StatusField `json:"status"`
	IssueType *NamedField  `json:"issuetype"`
	Labels    []string     `json:"labels"`
	Versions  []NamedField `json:"versions"`
	Epic      *OptionField `json:"customfield_12311140"`
}

// StatusField represents a Jira issue status.
type StatusField struct {
	Name           string      `json:"name"`
	StatusCategory *NamedField `json:"statusCategory"`
}

// NamedField is any Jira object identified by name
type NamedField struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// OptionField is a select-list custom field value
type OptionField struct {
	Value string `json:"value"`
}

// SearchRequest is the body of a JQL search
type SearchRequest struct {
	JQL        string   `json:"jql"`
	StartAt    int      `json:"startAt"`
	MaxResults int      `json:"maxResults"`
	Fields     []string `json:"fields"`
}

// SearchResult represents a Jira JQL search response.
type SearchResult struct {
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`
	Total      int     `json:"total"`
	Issues     []Issue `json:"issues"`
}

// RemoteLink is an external link attached to an issue
type RemoteLink struct {
	ID     int              `json:"id,omitempty"`
	Object RemoteLinkObject `json:"object"`
}

// RemoteLinkObject is the linked resource
type RemoteLinkObject struct {
	Title string          `json:"title"`
	URL   string          `json:"url"`
	Icon  *RemoteLinkIcon `json:"icon,omitempty"`
}

// RemoteLinkIcon decorates a remote link
type RemoteLinkIcon struct {
	Title    string `json:"title"`
	URL16x16 string `json:"url16x16"`
}

// Transition is one workflow transition available on an issue
type Transition struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	To   NamedField `json:"to"`
}

type transitionsResponse struct {
	Transitions []Transition `json:"transitions"`
}

type createdIssue struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Self string `json:"self"`
}
