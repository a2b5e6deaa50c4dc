// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// OutcomeStatus is the result of handling one topic.
type OutcomeStatus string

const (
	StatusWritten OutcomeStatus = "written"
	StatusRenamed OutcomeStatus = "renamed"
	StatusSkipped OutcomeStatus = "skipped"
	StatusFailed  OutcomeStatus = "failed"
)

// Outcome records what happened to one outline entry.
type Outcome struct {
	Index  int
	Topic  string
	Path   string
	Status OutcomeStatus
	Err    error
}

// Run describes one pages invocation in the journal.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Kind       string
	Mode       ConcurrencyMode
	Model      string
}

// RunEntry is a journaled outcome read back from storage.
type RunEntry struct {
	Index      int
	Topic      string
	Status     OutcomeStatus
	Path       string
	Error      string
	RecordedAt time.Time
}
