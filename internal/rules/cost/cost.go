// Package cost implements the Cost module: expensive vendor API
// calls running inside loops without rate limiting, and expensive calls
// with no caching.
package cost

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"aegis/internal/config"
	"aegis/internal/model"
	"aegis/internal/rules"
)

// Module implements rules.Module.
type Module struct{}

// New returns a Cost module.
func New() *Module { return &Module{} }

func (m *Module) Name() string { return "cost" }

func (m *Module) IsEnabled(cfg *config.Config) bool { return cfg.Cost.Enabled }

func (m *Module) Analyze(rc *rules.Context) []model.Alert {
	var alerts []model.Alert
	for _, f := range rc.SourceFiles() {
		if !f.Language.IsScriptLanguage() {
			continue
		}
		content, ok := rc.Contents[f.Path]
		if !ok || !content.Tree.Ok {
			continue
		}
		alerts = append(alerts, m.checkExpensiveAPIInLoop(rc, f, content)...)
		alerts = append(alerts, m.checkMissingCache(rc, f, content)...)
	}
	return alerts
}

var loopQueries = map[model.Language][]string{
	model.LangJavaScript: {`(for_statement) @loop`, `(for_in_statement) @loop`, `(while_statement) @loop`, `(do_statement) @loop`},
	model.LangTypeScript: {`(for_statement) @loop`, `(for_in_statement) @loop`, `(while_statement) @loop`, `(do_statement) @loop`},
	model.LangPython:     {`(for_statement) @loop`, `(while_statement) @loop`},
}

var functionQueries = map[model.Language][]string{
	model.LangJavaScript: {`(function_declaration) @func`, `(function_expression) @func`, `(arrow_function) @func`},
	model.LangTypeScript: {`(function_declaration) @func`, `(function_expression) @func`, `(arrow_function) @func`},
	model.LangPython:     {`(function_definition) @func`},
}

func (m *Module) checkExpensiveAPIInLoop(rc *rules.Context, f model.File, content rules.FileContent) []model.Alert {
	var alerts []model.Alert
	for _, q := range loopQueries[f.Language] {
		for _, cap := range rc.Facade.Query(f.Language, content.Tree, q) {
			if cap.Name != "loop" {
				continue
			}
			body := strings.ToLower(cap.Node.Content(content.Tree.Source))
			name, hit := findFirst(body, config.ExpensiveAPIs)
			if !hit {
				continue
			}
			if _, limited := findFirst(body, config.RateLimitMarkers); limited {
				continue
			}
			line := int(cap.Node.StartPoint().Row) + 1
			if a, ok := rules.Emit(rc, model.Alert{
				ID: uuid.NewString(), Severity: model.SeverityHigh, RuleID: "expensive-api-in-loop",
				Module:      m.Name(),
				Message:     fmt.Sprintf("loop body calls %q without any visible rate limiting", name),
				File:        f.Path, Line: line,
				Remediation: "batch the calls or gate them behind a rate limiter/backoff",
			}); ok {
				alerts = append(alerts, a)
			}
		}
	}
	return alerts
}

func (m *Module) checkMissingCache(rc *rules.Context, f model.File, content rules.FileContent) []model.Alert {
	var alerts []model.Alert
	for _, q := range functionQueries[f.Language] {
		for _, cap := range rc.Facade.Query(f.Language, content.Tree, q) {
			if cap.Name != "func" {
				continue
			}
			node := cap.Node
			// Python decorators live on the enclosing decorated_definition,
			// and @cache/@functools.lru_cache count as cache markers.
			if parent := node.Parent(); parent != nil && parent.Type() == "decorated_definition" {
				node = parent
			}
			body := strings.ToLower(node.Content(content.Tree.Source))
			name, hit := findFirst(body, config.ExpensiveAPIs)
			if !hit {
				continue
			}
			if _, cached := findFirst(body, config.CacheMarkers); cached {
				continue
			}
			line := int(cap.Node.StartPoint().Row) + 1
			if a, ok := rules.Emit(rc, model.Alert{
				ID: uuid.NewString(), Severity: model.SeverityMedium, RuleID: "missing-cache-for-expensive-call",
				Module:      m.Name(),
				Message:     fmt.Sprintf("function calls %q with no visible cache check", name),
				File:        f.Path, Line: line,
				Remediation: "cache the result keyed on its input, or memoize the call",
			}); ok {
				alerts = append(alerts, a)
			}
		}
	}
	return alerts
}

func findFirst(lowerText string, candidates []string) (string, bool) {
	for _, c := range candidates {
		if strings.Contains(lowerText, c) {
			return c, true
		}
	}
	return "", false
}
