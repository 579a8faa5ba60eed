package model

import "time"

// ScorecardCheck is one per-check detail row within a Scorecard.
type ScorecardCheck struct {
	Name   string
	Score  int
	Reason string
}

// Scorecard is a security scorecard for a source repository.
type Scorecard struct {
	Score   float64 // in [0, 10]
	Checks  []ScorecardCheck
	AsOf    time.Time
}
