package reconcile

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMissingKeyColumns is returned when the master dataset lacks the key columns.
	// It aborts the run.
	ErrMissingKeyColumns = errors.New("master dataset is missing key columns")

	// ErrLogNotFound is returned by a LogStore when no log has the requested name.
	ErrLogNotFound = errors.New("event log not found")

	// ErrNoMatchingLog is returned when neither the revision-qualified nor the plain log exists.
	ErrNoMatchingLog = errors.New("no matching event log")

	// ErrNoIdentifier is returned with ErrNoMatchingLog for an item with a blank identifier.
	ErrNoIdentifier = errors.New("item has no log identifier")

	// ErrLogUnreadable is returned when a selected log cannot be opened or read.
	ErrLogUnreadable = errors.New("event log unreadable")

	// ErrLogMalformed is returned when a selected log lacks the expected columns.
	ErrLogMalformed = errors.New("event log malformed")
)

// ResolutionError records a per-record event log failure.
type ResolutionError struct {
	Row        int
	Identifier string
	Revision   string
	Err        error
}

func (e ResolutionError) Error() string {
	if e.Revision != "" {
		return fmt.Sprintf("row %d (%s rev %s): %v", e.Row, e.Identifier, e.Revision, e.Err)
	}
	return fmt.Sprintf("row %d (%s): %v", e.Row, e.Identifier, e.Err)
}

func (e ResolutionError) Unwrap() error {
	return e.Err
}

// MarshalJSON renders the wrapped error as its message.
func (e ResolutionError) MarshalJSON() ([]byte, error) {
	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return json.Marshal(struct {
		Row        int    `json:"row"`
		Identifier string `json:"identifier"`
		Revision   string `json:"revision,omitempty"`
		Error      string `json:"error"`
	}{e.Row, e.Identifier, e.Revision, msg})
}
