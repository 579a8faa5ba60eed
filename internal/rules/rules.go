// Package rules defines the shared contract the five analysis modules
// implement, and the per-run context the coordinator builds once
// and passes to each of them.
package rules

import (
	"context"

	"aegis/internal/config"
	"aegis/internal/ignore"
	"aegis/internal/model"
	"aegis/internal/registry"
	"aegis/internal/scorecard"
	"aegis/internal/syntax"
)

// FileContent pairs a scanned File record with its decoded text and, for
// script languages the syntax facade supports, its parsed tree. Files that
// could not be read are absent from Context.Contents entirely.
type FileContent struct {
	File model.File
	Text string
	Tree syntax.Tree
}

// Context is the read-only view every rule module's Analyze receives. It
// is built once per run by the coordinator and never
// mutated afterward.
type Context struct {
	Ctx    context.Context
	Root   string
	Config *config.Config

	// Files is the full scanned file list, in path order.
	Files []model.File

	// Contents holds decoded text (and, where applicable, a parsed tree)
	// keyed by absolute path, for every file that was readable.
	Contents map[string]FileContent

	// Graph is the constructed Import Graph, built before any module runs
	// and read by the architecture module's cross-file checks. Built from
	// the same Contents the per-file checks see.
	Graph *model.ImportGraph

	Facade    *syntax.Facade
	Registry  *registry.Client
	Scorecard *scorecard.Client
	Ignore    *ignore.Matcher
}

// SourceFiles returns every scanned File marked is-source.
func (rc *Context) SourceFiles() []model.File {
	var out []model.File
	for _, f := range rc.Files {
		if f.IsSource {
			out = append(out, f)
		}
	}
	return out
}

// ManifestFiles returns every scanned File marked is-dependency-manifest.
func (rc *Context) ManifestFiles() []model.File {
	var out []model.File
	for _, f := range rc.Files {
		if f.IsDependencyManifest {
			out = append(out, f)
		}
	}
	return out
}

// Module is the capability set a rule module exposes to the coordinator.
// No dynamic dispatch beyond this small variant tag is required.
type Module interface {
	// Name is the module name recorded on every Alert it emits.
	Name() string

	// IsEnabled reports whether this module should run at all for cfg.
	IsEnabled(cfg *config.Config) bool

	// Analyze runs every check this module owns and returns the alerts it
	// emits. A module must never panic across this boundary; a per-file
	// failure inside a module is the module's own responsibility to
	// isolate.
	Analyze(rc *Context) []model.Alert
}

// Emit suppresses ruleID for file via rc.Ignore before returning the
// alert, used by every module so rule suppression is not repeated at
// every call site.
func Emit(rc *Context, alert model.Alert) (model.Alert, bool) {
	if rc.Ignore != nil && rc.Ignore.Ignored(alert.RuleID, alert.File) {
		return model.Alert{}, false
	}
	return alert, true
}
