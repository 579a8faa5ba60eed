// Package aegis is the library entry point for the static analyzer core.
// It has no CLI, no dashboard, and no report formatter of its own — those
// are external collaborators that consume the Report this package
// produces.
package aegis

import (
	"context"

	"aegis/internal/config"
	"aegis/internal/coordinator"
	"aegis/internal/model"
)

// Config is the resolved, immutable configuration the core consumes.
// Loading and validating a config file from disk is out of scope;
// construct one starting from DefaultConfig.
type Config = config.Config

// Report is the coordinator's output: deduplicated, filtered alerts plus
// a summary and score.
type Report = model.Report

// Alert is a single finding.
type Alert = model.Alert

// DefaultConfig returns the stock configuration: every module and
// detector enabled, default thresholds.
func DefaultConfig() *Config {
	return config.Default()
}

// Analyze runs the full pipeline — file discovery, manifest parsing,
// syntax-tree parsing, import graph construction, the five rule modules,
// and report assembly — against root and returns the resulting Report. A
// nil cfg falls back to DefaultConfig(). The supplied ctx governs
// cancellation: canceling it stops outstanding file and network work and
// discards partially computed alerts.
//
// Analyze constructs a fresh Coordinator (and therefore fresh, empty
// Registry/Scorecard caches) for this single call. A caller running many
// analyses against the same process and wanting the 5-minute/1-hour
// Registry/Scorecard caches to carry over between them should construct
// one *coordinator.Coordinator via coordinator.New() and call Analyze on
// it directly instead.
func Analyze(ctx context.Context, root string, cfg *Config) (*Report, error) {
	return coordinator.New().Analyze(ctx, root, cfg)
}
