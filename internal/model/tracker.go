package model

import (
	"fmt"

	snifferrors "sniffer.dev/regression-sniffer/internal/errors"
)

// StatusCategory is the coarse lifecycle bucket of a ticket
type StatusCategory string

// Known status categories
const (
	StatusToDo       StatusCategory = "To Do"
	StatusInProgress StatusCategory = "In Progress"
	StatusDone       StatusCategory = "Done"
)

// Valid reports whether the category is one of the known values
func (s StatusCategory) Valid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// LinkKind tags an external link on a ticket
type LinkKind string

// External link kinds
const (
	LinkFollowUp   LinkKind = "follow-up"
	LinkRevert     LinkKind = "revert"
	LinkCherryPick LinkKind = "cherry-pick"
	LinkBackport   LinkKind = "backport"
)

// Tracker mirrors the external lifecycle state of one ticket
type Tracker struct {
	ID             string         `json:"id"`
	Type           string         `json:"type"`
	URL            string         `json:"url"`
	Status         string         `json:"status"`
	StatusCategory StatusCategory `json:"statusCategory"`
	Versions       []string       `json:"versions"`
	Summary        string         `json:"summary"`
}

// IsDone reports whether the ticket has been resolved
func (t *Tracker) IsDone() bool { return t.StatusCategory == StatusDone }

// Validate checks the tracker fields
func (t *Tracker) Validate() error {
	if t.ID == "" {
		return snifferrors.NewStateError("tracker.id", "must not be empty")
	}
	if _, err := ParseURL(t.URL); err != nil {
		return snifferrors.NewStateError("tracker.url", err.Error())
	}
	if !t.StatusCategory.Valid() {
		return snifferrors.NewStateError("tracker.statusCategory",
			fmt.Sprintf("unknown status category %q", t.StatusCategory))
	}
	return nil
}
