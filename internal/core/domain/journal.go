package domain

import "time"

// AttemptRecord is one worker invocation as written to the run journal.
type AttemptRecord struct {
	RunID    string
	Attempt  int
	ExitCode int
	Outcome  Outcome
	Duration time.Duration
	At       time.Time
}

// RotationRecord is one completed rotation as written to the run journal.
type RotationRecord struct {
	RunID       string
	OldHostname string
	NewHostname string
	Location    string
	Attempts    int
	Escalated   bool
	At          time.Time
}
