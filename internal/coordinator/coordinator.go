// Package coordinator implements the Coordinator: it drives file
// discovery, content loading, the import graph, and the five rule
// modules in registration order, then merges, filters, deduplicates, and
// scores the resulting alerts into a Report.
package coordinator

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"aegis/internal/config"
	"aegis/internal/graph"
	"aegis/internal/ignore"
	"aegis/internal/logging"
	"aegis/internal/model"
	"aegis/internal/registry"
	"aegis/internal/rules"
	"aegis/internal/rules/architecture"
	"aegis/internal/rules/cost"
	"aegis/internal/rules/hallucination"
	"aegis/internal/rules/laziness"
	"aegis/internal/rules/security"
	"aegis/internal/scan"
	"aegis/internal/scorecard"
	"aegis/internal/syntax"
)

// maxConcurrentFileReads bounds the errgroup fan-out reading and parsing
// file contents; CPU-bound parsing runs concurrently, bounded.
const maxConcurrentFileReads = 16

// Coordinator owns the long-lived collaborators whose caches are meant to
// survive across runs within one process: the Registry and Scorecard
// caches outlive a run but not the process.
type Coordinator struct {
	registry  *registry.Client
	scorecard *scorecard.Client
	facade    *syntax.Facade

	// modules is fixed at registration order: hallucination,
	// laziness, security, architecture, cost.
	modules []rules.Module
}

// New returns a Coordinator with fresh Registry/Scorecard clients and a
// syntax facade, and all five rule modules registered in their fixed
// run order.
func New() *Coordinator {
	return &Coordinator{
		registry:  registry.New(),
		scorecard: scorecard.New(),
		facade:    syntax.NewFacade(),
		modules: []rules.Module{
			hallucination.New(),
			laziness.New(),
			security.New(),
			architecture.New(),
			cost.New(),
		},
	}
}

// Analyze runs the full pipeline against root and returns a Report.
// A nil cfg uses config.Default(). Canceling ctx stops outstanding file
// and network work and returns the cancellation error; partially
// computed alerts are discarded, never returned as a Report.
func (c *Coordinator) Analyze(ctx context.Context, root string, cfg *config.Config) (*model.Report, error) {
	start := time.Now()
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	// Logging degrades to a silent no-op when root carries no logging
	// config, so a failure here never blocks the run.
	_ = logging.Initialize(root)

	timer := logging.StartTimer(logging.CategoryCoordinator, "Analyze")
	defer timer.Stop()

	files, err := scan.New(cfg.Scanning).Scan(ctx, root)
	if err != nil {
		return nil, err
	}

	contents, err := readContents(ctx, c.facade, files)
	if err != nil {
		return nil, err
	}

	importGraph := buildGraph(root, files, contents)

	rc := &rules.Context{
		Ctx:       ctx,
		Root:      root,
		Config:    cfg,
		Files:     files,
		Contents:  contents,
		Graph:     importGraph,
		Facade:    c.facade,
		Registry:  c.registry,
		Scorecard: c.scorecard,
		Ignore:    ignore.New(root, cfg.IgnoreRules),
	}

	var all []model.Alert
	for _, module := range c.modules {
		if ctx.Err() != nil {
			break
		}
		if !module.IsEnabled(cfg) {
			continue
		}
		logging.CoordinatorDebug("running module %s", module.Name())
		alerts := safeAnalyze(module, rc)
		all = append(all, alerts...)
	}
	if err := ctx.Err(); err != nil {
		// A cancel mid-run discards whatever alerts accumulated.
		return nil, err
	}

	filtered := filterBySeverity(all, cfg)
	deduped := dedupe(filtered)
	sortAlerts(deduped)

	summary := summarize(deduped)
	languageCounts, testFileCount := fileStats(files)

	report := &model.Report{
		Summary: summary,
		Alerts:  deduped,
		Score:   score(summary),
		Scan: model.ScanMetadata{
			Root:           root,
			FileCount:      len(files),
			Duration:       time.Since(start),
			Timestamp:      start,
			LanguageCounts: languageCounts,
			TestFileCount:  testFileCount,
			ResolvedConfig: cfg,
		},
	}
	return report, nil
}

// safeAnalyze isolates a module failure (panic) so one misbehaving
// module never aborts the pipeline.
func safeAnalyze(module rules.Module, rc *rules.Context) (alerts []model.Alert) {
	defer func() {
		if r := recover(); r != nil {
			logging.CoordinatorWarn("module %s panicked: %v", module.Name(), r)
			alerts = nil
		}
	}()
	return module.Analyze(rc)
}

// readContents reads and decodes every scanned file concurrently,
// parsing script-language source through the syntax facade. A file that
// cannot be read is simply absent from the result, with a warning. A
// canceled ctx returns its error and no contents.
func readContents(ctx context.Context, facade *syntax.Facade, files []model.File) (map[string]rules.FileContent, error) {
	type result struct {
		path    string
		content rules.FileContent
		ok      bool
	}

	results := make([]result, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFileReads)

	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text, err := readFile(f.Path)
			if err != nil {
				logging.ScanWarn("unreadable file %s: %v", f.Path, err)
				return nil
			}

			fc := rules.FileContent{File: f, Text: text}
			parseLang := f.Language
			parseText := text
			if f.Language == model.LangVue || f.Language == model.LangSvelte {
				if block, lang, ok := syntax.ExtractScriptBlock([]byte(text)); ok {
					parseText = string(block)
					parseLang = lang
				} else {
					parseLang = model.LangUnknown
				}
			}
			if parseLang.IsScriptLanguage() {
				fc.Tree = facade.Parse(gctx, parseLang, []byte(parseText))
			}
			results[i] = result{path: f.Path, content: fc, ok: true}
			return nil
		})
	}
	// Errors from individual reads are already recovered inside the
	// goroutine; Wait only surfaces a context cancellation.
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[string]rules.FileContent, len(files))
	for _, r := range results {
		if r.ok {
			out[r.path] = r.content
		}
	}
	return out, nil
}

func readFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// buildGraph constructs the Import Graph from every readable source file,
// in input order. It passes each file's full text; SourceFilesFromModel
// extracts the script block of Vue/Svelte SFCs.
func buildGraph(root string, files []model.File, contents map[string]rules.FileContent) *model.ImportGraph {
	reads := make([]graph.FileRead, 0, len(files))
	for _, f := range files {
		if !f.IsSource {
			continue
		}
		fc, ok := contents[f.Path]
		if !ok {
			continue
		}
		reads = append(reads, graph.FileRead{Path: f.Path, Lang: f.Language, Text: fc.Text})
	}
	sources := graph.SourceFilesFromModel(root, reads)
	return graph.Build(sources)
}

func filterBySeverity(alerts []model.Alert, cfg *config.Config) []model.Alert {
	var out []model.Alert
	for _, a := range alerts {
		if cfg.SeverityAllowed(a.Severity) {
			out = append(out, a)
		}
	}
	return out
}

// dedupe collapses alerts sharing a (file, line, rule-id, message) key,
// keeping the first occurrence.
func dedupe(alerts []model.Alert) []model.Alert {
	seen := make(map[model.DedupKey]bool, len(alerts))
	var out []model.Alert
	for _, a := range alerts {
		key := a.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}

// sortAlerts orders the final list by (file path, line, rule-id, message)
// for run-to-run determinism.
func sortAlerts(alerts []model.Alert) {
	sort.Slice(alerts, func(i, j int) bool {
		a, b := alerts[i], alerts[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.RuleID != b.RuleID {
			return a.RuleID < b.RuleID
		}
		return a.Message < b.Message
	})
}

func summarize(alerts []model.Alert) model.Summary {
	var s model.Summary
	for _, a := range alerts {
		switch a.Severity {
		case model.SeverityCritical:
			s.Critical++
		case model.SeverityHigh:
			s.High++
		case model.SeverityMedium:
			s.Medium++
		case model.SeverityLow:
			s.Low++
		}
	}
	return s
}

// score computes the [0, 100] score: a logarithmic penalty per
// severity tier, clamped at zero.
func score(s model.Summary) float64 {
	penalty := 20*math.Log10(1+5*float64(s.Critical)) +
		10*math.Log10(1+5*float64(s.High)) +
		5*math.Log10(1+float64(s.Medium)) +
		2*math.Log10(1+float64(s.Low))
	v := 100 - penalty
	if v < 0 {
		return 0
	}
	return v
}

func fileStats(files []model.File) (map[model.Language]int, int) {
	counts := make(map[model.Language]int)
	testFiles := 0
	for _, f := range files {
		counts[f.Language]++
		if isTestFile(f.Path) {
			testFiles++
		}
	}
	return counts, testFiles
}

func isTestFile(path string) bool {
	base := filepath.Base(path)
	patterns := []string{"*.test.*", "*.spec.*", "test_*", "*_test.py", "*_test.go"}
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, base); ok {
			return true
		}
	}
	return false
}
