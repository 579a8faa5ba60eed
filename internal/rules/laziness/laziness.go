// Package laziness implements the Laziness module: regex checks
// over raw source text plus AST checks over the parsed tree for hollow
// functions, mock implementations, and unlogged error handlers.
package laziness

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/google/uuid"

	"aegis/internal/config"
	"aegis/internal/model"
	"aegis/internal/rules"
	"aegis/internal/rules/textscan"
	"aegis/internal/syntax"
)

// Module implements rules.Module.
type Module struct{}

// New returns a Laziness module.
func New() *Module { return &Module{} }

func (m *Module) Name() string { return "laziness" }

func (m *Module) IsEnabled(cfg *config.Config) bool { return cfg.Laziness.Enabled }

var aiPreamblePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)as an ai language model`),
	regexp.MustCompile(`(?i)here is the updated code`),
	regexp.MustCompile(`(?i)i've updated the code`),
	regexp.MustCompile(`(?i)below is the implementation`),
	regexp.MustCompile(`(?i)here's how you can`),
}

var testBasenamePatterns = []string{"*.test.*", "*.spec.*", "test_*", "*_test.py"}

func isTestBasename(path string) bool {
	base := filepath.Base(path)
	for _, p := range testBasenamePatterns {
		if ok, _ := filepath.Match(p, base); ok {
			return true
		}
	}
	return false
}

func (m *Module) Analyze(rc *rules.Context) []model.Alert {
	cfg := rc.Config.Laziness
	placeholderPatterns := compilePatterns(cfg.Patterns)

	var alerts []model.Alert
	for _, f := range rc.SourceFiles() {
		content, ok := rc.Contents[f.Path]
		if !ok {
			continue
		}
		alerts = append(alerts, m.analyzeFile(rc, f, content, cfg, placeholderPatterns)...)
	}
	return alerts
}

func compilePatterns(patterns []string) []*regexp.Regexp {
	var out []*regexp.Regexp
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			continue
		}
		out = append(out, re)
	}
	return out
}

func (m *Module) analyzeFile(rc *rules.Context, f model.File, content rules.FileContent, cfg config.Laziness, placeholderPatterns []*regexp.Regexp) []model.Alert {
	var alerts []model.Alert
	lines := textscan.Lines(content.Text)

	if cfg.DetectAIPreambles {
		for i, line := range lines {
			for _, re := range aiPreamblePatterns {
				if re.MatchString(line) {
					if a, ok := rules.Emit(rc, model.Alert{
						ID: uuid.NewString(), Severity: model.SeverityMedium, RuleID: "ai-preamble",
						Module: m.Name(), Message: "line resembles an AI assistant's conversational preamble rather than code",
						File: f.Path, Line: i + 1,
					}); ok {
						alerts = append(alerts, a)
					}
					break
				}
			}
		}
	}

	if cfg.DetectPlaceholderComments {
		for i, line := range lines {
			for _, re := range placeholderPatterns {
				if re.MatchString(line) {
					if a, ok := rules.Emit(rc, model.Alert{
						ID: uuid.NewString(), Severity: model.SeverityHigh, RuleID: "placeholder-comment",
						Module: m.Name(), Message: "placeholder comment suggests the implementation was left incomplete",
						File: f.Path, Line: i + 1,
					}); ok {
						alerts = append(alerts, a)
					}
					break
				}
			}
		}
	}

	if cfg.DetectOverCommenting {
		if a, ok := m.checkOverCommenting(rc, f, lines, cfg); ok {
			alerts = append(alerts, a)
		}
	}

	if f.Language.IsScriptLanguage() && content.Tree.Ok {
		if cfg.DetectHollowFunctions {
			alerts = append(alerts, m.checkHollowFunctions(rc, f, content)...)
		}
		if cfg.DetectMockImplementations {
			alerts = append(alerts, m.checkMockImplementations(rc, f, content)...)
		}
		if cfg.DetectUnloggedErrors {
			alerts = append(alerts, m.checkUnloggedErrors(rc, f, content)...)
		}
	}

	return alerts
}

func (m *Module) checkOverCommenting(rc *rules.Context, f model.File, lines []string, cfg config.Laziness) (model.Alert, bool) {
	isTest := isTestBasename(f.Path)
	threshold := cfg.CommentDensityThreshold
	if threshold <= 0 {
		threshold = 0.20
	}
	if isTest {
		threshold = 0.40
	}

	var nonBlank, comment int
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nonBlank++
		if isTest && textscan.IsPythonDocstringDelimiter(trimmed) {
			continue
		}
		if textscan.IsCommentLine(trimmed) {
			comment++
		}
	}
	if nonBlank < 5 {
		return model.Alert{}, false
	}
	density := float64(comment) / float64(nonBlank)
	if density <= threshold {
		return model.Alert{}, false
	}
	return rules.Emit(rc, model.Alert{
		ID: uuid.NewString(), Severity: model.SeverityLow, RuleID: "over-commenting",
		Module: m.Name(), Message: fmt.Sprintf("comment density %.0f%% exceeds threshold %.0f%%", density*100, threshold*100),
		File: f.Path,
	})
}

// functionQueries maps a script language to the tree-sitter patterns that
// find every function-like construct whose body we must inspect for
// hollowness and mock sleeps: function declarations, arrow functions,
// and function expressions for JS/TS; function definitions for Python.
var functionQueries = map[model.Language][]string{
	model.LangJavaScript: {
		`(function_declaration) @func`,
		`(function_expression) @func`,
		`(arrow_function) @func`,
	},
	model.LangTypeScript: {
		`(function_declaration) @func`,
		`(function_expression) @func`,
		`(arrow_function) @func`,
	},
	model.LangPython: {
		`(function_definition) @func`,
	},
}

func (m *Module) eachFunction(f model.File, content rules.FileContent, facade *syntax.Facade, fn func(funcNode, nameNode, bodyNode *sitter.Node)) {
	for _, q := range functionQueries[f.Language] {
		for _, cap := range facade.Query(f.Language, content.Tree, q) {
			if cap.Name != "func" {
				continue
			}
			node := cap.Node
			name := node.ChildByFieldName("name")
			body := node.ChildByFieldName("body")
			fn(node, name, body)
		}
	}
}

func (m *Module) checkHollowFunctions(rc *rules.Context, f model.File, content rules.FileContent) []model.Alert {
	var alerts []model.Alert
	m.eachFunction(f, content, rc.Facade, func(funcNode, nameNode, bodyNode *sitter.Node) {
		if bodyNode == nil {
			return
		}
		if !isBlockBody(bodyNode) {
			return
		}
		if !isHollow(bodyNode, content.Tree.Source, f.Language) {
			return
		}
		line := int(funcNode.StartPoint().Row) + 1
		if a, ok := rules.Emit(rc, model.Alert{
			ID: uuid.NewString(), Severity: model.SeverityHigh, RuleID: "hollow-function",
			Module: m.Name(), Message: "function body has no semantically meaningful statement",
			File: f.Path, Line: line,
		}); ok {
			alerts = append(alerts, a)
		}
	})
	return alerts
}

func isBlockBody(body *sitter.Node) bool {
	switch body.Type() {
	case "statement_block", "block":
		return true
	}
	return false
}

func isHollow(body *sitter.Node, source []byte, lang model.Language) bool {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		t := child.Type()
		if t == "comment" {
			continue
		}
		if lang == model.LangPython {
			if t == "pass_statement" {
				continue
			}
			if t == "expression_statement" && child.NamedChildCount() == 1 && child.NamedChild(0).Type() == "string" {
				continue // docstring-only statement
			}
		} else {
			if t == "return_statement" {
				if child.NamedChildCount() == 0 {
					continue // bare return
				}
				val := strings.TrimSpace(child.NamedChild(0).Content(source))
				if val == "null" || val == "undefined" {
					continue
				}
			}
		}
		return false
	}
	return true
}

var mockNameRe = regexp.MustCompile(`(?i)^(calculate|process)`)

func (m *Module) checkMockImplementations(rc *rules.Context, f model.File, content rules.FileContent) []model.Alert {
	var alerts []model.Alert
	m.eachFunction(f, content, rc.Facade, func(funcNode, nameNode, bodyNode *sitter.Node) {
		if nameNode == nil || bodyNode == nil {
			return
		}
		name := nameNode.Content(content.Tree.Source)
		if !mockNameRe.MatchString(name) {
			return
		}
		body := strings.ToLower(bodyNode.Content(content.Tree.Source))
		hasSleep := strings.Contains(body, "settimeout(") ||
			strings.Contains(body, "sleep(") ||
			strings.Contains(body, "time.sleep(")
		if !hasSleep {
			return
		}
		line := int(funcNode.StartPoint().Row) + 1
		if a, ok := rules.Emit(rc, model.Alert{
			ID: uuid.NewString(), Severity: model.SeverityHigh, RuleID: "mock-implementation",
			Module: m.Name(), Message: fmt.Sprintf("function %q appears to simulate work with a sleep/timeout instead of a real implementation", name),
			File: f.Path, Line: line,
		}); ok {
			alerts = append(alerts, a)
		}
	})
	return alerts
}

var errorHandlerQueries = map[model.Language]string{
	model.LangJavaScript: `(catch_clause) @handler`,
	model.LangTypeScript: `(catch_clause) @handler`,
	model.LangPython:     `(except_clause) @handler`,
}

var loggingSubstrings = []string{
	"console.log", "console.error", "console.warn", "logger.", "log.",
	"logging.", "sentry.", "logrocket.", "bugsnag.", "rollbar.", "print(",
	".error(", ".warn(", ".info(", ".debug(",
}

func (m *Module) checkUnloggedErrors(rc *rules.Context, f model.File, content rules.FileContent) []model.Alert {
	q, ok := errorHandlerQueries[f.Language]
	if !ok {
		return nil
	}
	var alerts []model.Alert
	for _, cap := range rc.Facade.Query(f.Language, content.Tree, q) {
		if cap.Name != "handler" {
			continue
		}
		body := strings.ToLower(cap.Node.Content(content.Tree.Source))
		logged := false
		for _, s := range loggingSubstrings {
			if strings.Contains(body, s) {
				logged = true
				break
			}
		}
		if logged {
			continue
		}
		line := int(cap.Node.StartPoint().Row) + 1
		if a, ok := rules.Emit(rc, model.Alert{
			ID: uuid.NewString(), Severity: model.SeverityMedium, RuleID: "unlogged-error",
			Module: m.Name(), Message: "caught error is never logged or reported",
			File: f.Path, Line: line,
		}); ok {
			alerts = append(alerts, a)
		}
	}
	return alerts
}
