package model

import "time"

// Summary holds alert counts per severity.
type Summary struct {
	Critical int
	High     int
	Medium   int
	Low      int
}

// Total returns the sum of all severity counts.
func (s Summary) Total() int {
	return s.Critical + s.High + s.Medium + s.Low
}

// ScanMetadata describes the run that produced a Report.
type ScanMetadata struct {
	Root      string
	FileCount int
	Duration  time.Duration
	Timestamp time.Time

	// LanguageCounts breaks the scanned file count down by language tag.
	LanguageCounts map[Language]int

	// TestFileCount is the number of scanned files classified as tests.
	TestFileCount int

	// ResolvedConfig is an opaque snapshot of the configuration used for
	// this run (left as interface{} here; the coordinator stores the
	// concrete *config.Config it was given).
	ResolvedConfig interface{}
}

// Report is the final output of a single pipeline run.
type Report struct {
	Summary Summary
	Alerts  []Alert
	Scan    ScanMetadata

	// Score is in [0, 100]: a logarithmic penalty per severity tier,
	// subtracted from 100.
	Score float64
}
