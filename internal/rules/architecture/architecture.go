// Package architecture implements the Architecture module:
// god functions, mixed naming, magic numbers, circular dependencies, and
// unused exports.
package architecture

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"aegis/internal/config"
	"aegis/internal/graph"
	"aegis/internal/model"
	"aegis/internal/rules"
	"aegis/internal/rules/textscan"
)

// Module implements rules.Module.
type Module struct{}

// New returns an Architecture module.
func New() *Module { return &Module{} }

func (m *Module) Name() string { return "architecture" }

func (m *Module) IsEnabled(cfg *config.Config) bool { return cfg.Architecture.Enabled }

func (m *Module) Analyze(rc *rules.Context) []model.Alert {
	cfg := rc.Config.Architecture

	var alerts []model.Alert
	for _, f := range rc.SourceFiles() {
		content, ok := rc.Contents[f.Path]
		if !ok {
			continue
		}
		alerts = append(alerts, m.analyzeFile(rc, f, content.Text, cfg)...)
	}

	if cfg.DetectCircularDependencies {
		alerts = append(alerts, m.checkCircularDependencies(rc)...)
	}
	if cfg.DetectUnusedExports {
		alerts = append(alerts, m.checkUnusedExports(rc)...)
	}
	return alerts
}

func (m *Module) analyzeFile(rc *rules.Context, f model.File, text string, cfg config.Architecture) []model.Alert {
	var alerts []model.Alert
	lines := textscan.Lines(text)

	alerts = append(alerts, m.checkGodFunctions(rc, f, lines, cfg)...)
	if cfg.DetectMixedNaming && (f.Language == model.LangJavaScript || f.Language == model.LangTypeScript) {
		alerts = append(alerts, m.checkMixedNaming(rc, f, lines)...)
	}
	if cfg.DetectMagicNumbers {
		alerts = append(alerts, m.checkMagicNumbers(rc, f, lines)...)
	}
	return alerts
}

// --- god-function --------------------------------------------------------

// functionHeadPatterns is deliberately imprecise and can match
// non-functions; it must keep working on files the parser cannot handle,
// so the false positives are accepted rather than switching to an AST
// query.
var functionHeadPatterns = map[model.Language]*regexp.Regexp{
	model.LangJavaScript: regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s+\w+\s*\(|^\s*(?:export\s+)?(?:const|let|var)\s+\w+\s*=\s*(?:async\s*)?\([^)]*\)\s*=>`),
	model.LangTypeScript: regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s+\w+\s*\(|^\s*(?:export\s+)?(?:const|let|var)\s+\w+\s*=\s*(?:async\s*)?\([^)]*\)\s*=>`),
	model.LangPython:     regexp.MustCompile(`^(\s*)def\s+\w+\s*\(`),
	model.LangGo:         regexp.MustCompile(`^func\s+(?:\([^)]*\)\s*)?\w+\s*\(`),
	model.LangRust:       regexp.MustCompile(`^\s*(?:pub\s+)?(?:async\s+)?fn\s+\w+\s*\(`),
}

var decisionTokenRe = regexp.MustCompile(`\b(if|else|elif|while|for|do|switch|case|catch|try)\b|\?\s*[^:]+:|\|\||&&`)

func (m *Module) checkGodFunctions(rc *rules.Context, f model.File, lines []string, cfg config.Architecture) []model.Alert {
	headRe, ok := functionHeadPatterns[f.Language]
	if !ok {
		return nil
	}

	complexityThreshold := cfg.CyclomaticComplexityThreshold
	if complexityThreshold <= 0 {
		complexityThreshold = 25
	}
	locThreshold := cfg.LinesOfCodeThreshold
	if locThreshold <= 0 {
		locThreshold = 100
	}

	var alerts []model.Alert
	for i := 0; i < len(lines); i++ {
		if !headRe.MatchString(lines[i]) {
			continue
		}
		end := functionEnd(lines, i, f.Language)
		body := strings.Join(lines[i:end+1], "\n")

		loc := end - i + 1
		complexity := 1 + len(decisionTokenRe.FindAllString(body, -1))

		if complexity > complexityThreshold && loc > locThreshold {
			alerts = appendIfEmitted(alerts, rc, model.Alert{
				ID: uuid.NewString(), Severity: model.SeverityHigh, RuleID: "god-function",
				Module:  m.Name(),
				Message: fmt.Sprintf("function spans %d lines with cyclomatic complexity %d", loc, complexity),
				File:    f.Path, Line: i + 1,
			})
		}
		i = end
	}
	return alerts
}

// functionEnd finds the line closing the function body opened at
// startLine: brace-balanced for curly-brace languages, indentation-based
// for Python.
func functionEnd(lines []string, startLine int, lang model.Language) int {
	if lang == model.LangPython {
		indent := leadingWhitespace(lines[startLine])
		for i := startLine + 1; i < len(lines); i++ {
			trimmed := strings.TrimSpace(lines[i])
			if trimmed == "" {
				continue
			}
			if len(leadingWhitespace(lines[i])) <= len(indent) {
				return i - 1
			}
		}
		return len(lines) - 1
	}

	depth := 0
	seenOpen := false
	for i := startLine; i < len(lines); i++ {
		for _, c := range lines[i] {
			switch c {
			case '{':
				depth++
				seenOpen = true
			case '}':
				depth--
			}
		}
		if seenOpen && depth <= 0 {
			return i
		}
	}
	return len(lines) - 1
}

func leadingWhitespace(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

// --- mixed-naming ---------------------------------------------------------

var (
	interfaceOpenRe  = regexp.MustCompile(`\binterface\s+\w+.*\{`)
	typeAliasLineRe  = regexp.MustCompile(`^\s*(?:export\s+)?type\s+\w+\s*=`)
	camelCaseTokenRe = regexp.MustCompile(`\b[a-z][a-z0-9]*[A-Z]\w*\b`)
	snakeCaseTokenRe = regexp.MustCompile(`\b[a-z][a-z0-9]*_[a-z0-9_]+\b`)
)

func (m *Module) checkMixedNaming(rc *rules.Context, f model.File, lines []string) []model.Alert {
	var alerts []model.Alert
	inInterface := false
	interfaceDepth := 0

	for i, line := range lines {
		if !inInterface && interfaceOpenRe.MatchString(line) {
			interfaceDepth = strings.Count(line, "{") - strings.Count(line, "}")
			// A one-line interface opens and closes here; don't swallow
			// the next line.
			inInterface = interfaceDepth > 0
			continue
		}
		if inInterface {
			interfaceDepth += strings.Count(line, "{") - strings.Count(line, "}")
			if interfaceDepth <= 0 {
				inInterface = false
			}
			continue
		}
		if typeAliasLineRe.MatchString(line) {
			continue
		}

		masked := textscan.MaskStrings(line)
		if camelCaseTokenRe.MatchString(masked) && snakeCaseTokenRe.MatchString(masked) {
			alerts = appendIfEmitted(alerts, rc, model.Alert{
				ID: uuid.NewString(), Severity: model.SeverityMedium, RuleID: "mixed-naming",
				Module: m.Name(), Message: "line mixes camelCase and snake_case identifiers", File: f.Path, Line: i + 1,
			})
		}
	}
	return alerts
}

// --- magic-number -----------------------------------------------------

var (
	numberLiteralRe  = regexp.MustCompile(`-?\b\d+(?:\.\d+)?\b`)
	declarationLineRe = regexp.MustCompile(`^\s*(?:export\s+)?(?:const|let|var|final|static|readonly)\b`)
	goConstBlockRe    = regexp.MustCompile(`^\s*(?:const|var)\s*\(`)
	pythonAllCapsRe   = regexp.MustCompile(`^\s*[A-Z][A-Z0-9_]*\s*=`)
	octalModeRe       = regexp.MustCompile(`^0[0-7]{2,4}$`)
	importLineRe      = regexp.MustCompile(`^\s*(?:import|from)\b`)
)

func (m *Module) checkMagicNumbers(rc *rules.Context, f model.File, lines []string) []model.Alert {
	var alerts []model.Alert
	inConstBlock := false
	// Mask the whole file at once so backtick strings spanning several
	// lines stay masked on their continuation lines.
	maskedLines := textscan.Lines(textscan.MaskStrings(strings.Join(lines, "\n")))

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || loweredIsComment(line) {
			continue
		}
		if importLineRe.MatchString(line) {
			continue
		}
		if goConstBlockRe.MatchString(line) {
			inConstBlock = true
			continue
		}
		if inConstBlock {
			if trimmed == ")" {
				inConstBlock = false
			}
			continue
		}
		if declarationLineRe.MatchString(line) {
			continue
		}
		if f.Language == model.LangPython && pythonAllCapsRe.MatchString(line) {
			continue
		}

		masked := maskedLines[i]
		for _, numStr := range numberLiteralRe.FindAllString(masked, -1) {
			if config.MagicNumberSafeSet[numStr] {
				continue
			}
			if f.Language == model.LangGo && octalModeRe.MatchString(numStr) {
				continue
			}
			alerts = appendIfEmitted(alerts, rc, model.Alert{
				ID: uuid.NewString(), Severity: model.SeverityLow, RuleID: "magic-number",
				Module:  m.Name(),
				Message: fmt.Sprintf("unexplained numeric literal %q outside the safe set", numStr),
				File:    f.Path, Line: i + 1,
			})
		}
	}
	return alerts
}

func loweredIsComment(line string) bool {
	return textscan.IsCommentLine(strings.TrimSpace(line))
}

func appendIfEmitted(alerts []model.Alert, rc *rules.Context, alert model.Alert) []model.Alert {
	if a, ok := rules.Emit(rc, alert); ok {
		return append(alerts, a)
	}
	return alerts
}

// --- circular-dependency ---------------------------------------------

func (m *Module) checkCircularDependencies(rc *rules.Context) []model.Alert {
	if rc.Graph == nil {
		return nil
	}
	edges := graph.ResolvedEdges(rc.Root, rc.Graph)
	cycles := graph.Cycles(rc.Graph.Files(), edges)

	var alerts []model.Alert
	for _, cycle := range cycles {
		anchor := cycle[0]
		alerts = appendIfEmitted(alerts, rc, model.Alert{
			ID: uuid.NewString(), Severity: model.SeverityHigh, RuleID: "circular-dependency",
			Module:  m.Name(),
			Message: fmt.Sprintf("circular import dependency: %s", strings.Join(cycle, " -> ")),
			File:    toAbsolute(rc.Root, anchor),
		})
	}
	return alerts
}

// toAbsolute joins a scan-root-relative graph vertex path back to the
// absolute path every other alert's File field carries.
func toAbsolute(root, relPath string) string {
	return filepath.Join(root, filepath.FromSlash(relPath))
}

// --- unused-export -----------------------------------------------------

func (m *Module) checkUnusedExports(rc *rules.Context) []model.Alert {
	if rc.Graph == nil {
		return nil
	}
	used := graph.UsedExports(rc.Root, rc.Graph)

	var alerts []model.Alert
	for _, path := range rc.Graph.Files() {
		if config.EntryPointBasenames[baseName(path)] {
			continue
		}
		node, _ := rc.Graph.Node(path)
		usedHere := used[path]
		namespaceUsed := usedHere != nil && usedHere[model.StarSymbol]
		for _, export := range node.Exports {
			if namespaceUsed {
				continue
			}
			if usedHere != nil && usedHere[export] {
				continue
			}
			alerts = appendIfEmitted(alerts, rc, model.Alert{
				ID: uuid.NewString(), Severity: model.SeverityLow, RuleID: "unused-export",
				Module:  m.Name(),
				Message: fmt.Sprintf("exported symbol %q is never imported elsewhere in the project", export),
				File:    toAbsolute(rc.Root, path),
			})
		}
	}
	return alerts
}

func baseName(p string) string {
	if idx := strings.LastIndexByte(p, '/'); idx >= 0 {
		return p[idx+1:]
	}
	return p
}
