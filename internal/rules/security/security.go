// Package security implements the Security module: hardcoded
// secrets, insecure deserialization, the react2shell server-action check,
// JWT misuse, unguarded destructive operations, hardcoded production
// URLs, and scorecard-based supply-chain scoring.
package security

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"aegis/internal/config"
	"aegis/internal/manifest"
	"aegis/internal/model"
	"aegis/internal/rules"
	"aegis/internal/rules/textscan"
)

// Module implements rules.Module.
type Module struct{}

// New returns a Security module.
func New() *Module { return &Module{} }

func (m *Module) Name() string { return "security" }

func (m *Module) IsEnabled(cfg *config.Config) bool { return cfg.Security.Enabled }

func (m *Module) Analyze(rc *rules.Context) []model.Alert {
	cfg := rc.Config.Security

	var alerts []model.Alert
	for _, f := range rc.SourceFiles() {
		content, ok := rc.Contents[f.Path]
		if !ok {
			continue
		}
		alerts = append(alerts, m.analyzeFile(rc, f, content.Text, cfg)...)
	}
	alerts = append(alerts, m.checkScorecards(rc)...)
	return alerts
}

func (m *Module) analyzeFile(rc *rules.Context, f model.File, text string, cfg config.Security) []model.Alert {
	var alerts []model.Alert
	lines := textscan.Lines(text)

	if cfg.DetectHardcodedSecrets {
		alerts = append(alerts, m.checkHardcodedSecrets(rc, f, lines)...)
	}
	if cfg.DetectInsecureDeserialization {
		alerts = append(alerts, m.checkInsecureDeserialization(rc, f, lines)...)
	}
	if cfg.DetectReact2Shell && (f.Language == model.LangJavaScript || f.Language == model.LangTypeScript) {
		alerts = append(alerts, m.checkReact2Shell(rc, f, lines)...)
	}
	if cfg.DetectInsecureJWT {
		alerts = append(alerts, m.checkJWT(rc, f, lines)...)
	}
	if cfg.DetectMissingEnvCheck {
		alerts = append(alerts, m.checkMissingEnvCheck(rc, f, lines)...)
	}
	if cfg.DetectHardcodedProductionURL {
		alerts = append(alerts, m.checkProductionURL(rc, f, lines)...)
	}
	return alerts
}

// --- hardcoded-secret ------------------------------------------------

var (
	apiKeyAssignmentRe = regexp.MustCompile(`(?i)(api[_-]?key|secret|token|passwd|password|pwd|access[_-]?key)\s*[:=]\s*['"]([A-Za-z0-9]{20,})['"]`)
	jwtShapeRe          = regexp.MustCompile(`eyJ[A-Za-z0-9_\-]{5,}\.eyJ[A-Za-z0-9_\-]{5,}\.[A-Za-z0-9_\-]+`)
	awsKeyAssignmentRe  = regexp.MustCompile(`(?i)aws_?(access_?key_?id|secret_?access_?key)\s*[:=]\s*['"]?(AKIA[0-9A-Z]{16}|[A-Za-z0-9/+=]{40})['"]?`)
	connectionURLRe     = regexp.MustCompile(`(?i)(postgres(?:ql)?|mysql|mongodb(?:\+srv)?|redis|amqp|sqlserver)://[^:\s'"]+:[^@\s'"]+@[^\s'"]+`)
	catchAllQuotedRe    = regexp.MustCompile(`['"]([A-Za-z0-9]{32,})['"]`)
)

func (m *Module) checkHardcodedSecrets(rc *rules.Context, f model.File, lines []string) []model.Alert {
	var alerts []model.Alert
	for i, line := range lines {
		if loweredIsComment(line) {
			continue
		}
		// Each pattern family is checked independently; a line matching
		// more than one emits once per family.
		if apiKeyAssignmentRe.MatchString(line) {
			alerts = appendIfEmitted(alerts, rc, secretAlert(m.Name(), f.Path, i+1, "line assigns a key-like identifier a long opaque literal, resembling a hardcoded API key or secret"))
		}
		if jwtShapeRe.MatchString(line) {
			alerts = appendIfEmitted(alerts, rc, secretAlert(m.Name(), f.Path, i+1, "line contains a literal JWT token"))
		}
		if awsKeyAssignmentRe.MatchString(line) {
			alerts = appendIfEmitted(alerts, rc, secretAlert(m.Name(), f.Path, i+1, "line assigns a literal AWS credential"))
		}
		if connectionURLRe.MatchString(line) {
			alerts = appendIfEmitted(alerts, rc, secretAlert(m.Name(), f.Path, i+1, "line embeds credentials in a connection URL"))
		}
		for _, match := range catchAllQuotedRe.FindAllStringSubmatch(line, -1) {
			if textscan.ShannonEntropy(match[1]) > rc.Config.Security.SecretEntropyThreshold {
				alerts = appendIfEmitted(alerts, rc, secretAlert(m.Name(), f.Path, i+1, fmt.Sprintf("line contains a high-entropy quoted literal (%.1f bits/char) that may be a hardcoded secret", textscan.ShannonEntropy(match[1]))))
				break
			}
		}
	}
	return alerts
}

func secretAlert(module, file string, line int, message string) model.Alert {
	return model.Alert{
		ID: uuid.NewString(), Severity: model.SeverityCritical, RuleID: "hardcoded-secret",
		Module: module, Message: message, File: file, Line: line,
	}
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

// --- insecure-deserialization -----------------------------------------

var (
	pythonPickleRe = regexp.MustCompile(`\b(import pickle|pickle\.loads?\()`)
	jsEvalRe       = regexp.MustCompile(`\b(eval|Function|new Function)\s*\(`)
)

func (m *Module) checkInsecureDeserialization(rc *rules.Context, f model.File, lines []string) []model.Alert {
	var alerts []model.Alert
	for i, line := range lines {
		if loweredIsComment(line) {
			continue
		}
		switch f.Language {
		case model.LangPython:
			if pythonPickleRe.MatchString(line) {
				alerts = appendIfEmitted(alerts, rc, model.Alert{
					ID: uuid.NewString(), Severity: model.SeverityCritical, RuleID: "insecure-deserialization",
					Module: m.Name(), Message: "unpickling untrusted data can execute arbitrary code", File: f.Path, Line: i + 1,
				})
			}
		case model.LangJavaScript, model.LangTypeScript, model.LangVue, model.LangSvelte:
			if jsEvalRe.MatchString(line) {
				alerts = appendIfEmitted(alerts, rc, model.Alert{
					ID: uuid.NewString(), Severity: model.SeverityHigh, RuleID: "insecure-deserialization",
					Module: m.Name(), Message: "eval/Function construction of code from a string is an injection risk", File: f.Path, Line: i + 1,
				})
			}
		}
	}
	return alerts
}

// --- react2shell --------------------------------------------------------

var (
	useServerRe       = regexp.MustCompile(`^\s*["']use server["'];?\s*$`)
	exportedAsyncFnRe = regexp.MustCompile(`^\s*export\s+(?:default\s+)?async\s+function\s+(\w+)`)
	exportedAsyncArrowRe = regexp.MustCompile(`^\s*export\s+(?:default\s+)?const\s+(\w+)\s*=\s*async`)
)

var validationMarkers = []string{
	"zod.", "yup.", "joi.", "validator.", ".parse(", ".validate(", ".validatesync(", "instanceof ",
}

var typeofEqualsRe = regexp.MustCompile(`typeof\s+\w+\s*===`)

// checkReact2Shell looks for a top-of-file "use server" directive; every
// exported async function declared after it that lacks a validation
// marker in its (brace-matched) body is flagged.
func (m *Module) checkReact2Shell(rc *rules.Context, f model.File, lines []string) []model.Alert {
	serverDirectiveLine := -1
	// "top-of-file": scan only the leading non-blank lines before any
	// other statement establishes this isn't a directive position.
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if useServerRe.MatchString(line) {
			serverDirectiveLine = i
		}
		break
	}
	if serverDirectiveLine < 0 {
		return nil
	}

	var alerts []model.Alert
	for i := serverDirectiveLine + 1; i < len(lines); i++ {
		name := ""
		if m2 := exportedAsyncFnRe.FindStringSubmatch(lines[i]); m2 != nil {
			name = m2[1]
		} else if m2 := exportedAsyncArrowRe.FindStringSubmatch(lines[i]); m2 != nil {
			name = m2[1]
		} else {
			continue
		}

		bodyEnd := findBraceMatchEnd(lines, i)
		body := strings.ToLower(strings.Join(lines[i:bodyEnd+1], "\n"))
		if hasValidationMarker(body) {
			continue
		}
		alerts = appendIfEmitted(alerts, rc, model.Alert{
			ID: uuid.NewString(), Severity: model.SeverityCritical, RuleID: "react2shell",
			Module: m.Name(),
			Message: fmt.Sprintf("exported server action %q has no visible input validation", name),
			File:    f.Path, Line: i + 1,
		})
	}
	return alerts
}

func hasValidationMarker(lowerBody string) bool {
	for _, marker := range validationMarkers {
		if strings.Contains(lowerBody, marker) {
			return true
		}
	}
	return typeofEqualsRe.MatchString(lowerBody)
}

// findBraceMatchEnd returns the index of the line that closes the brace
// first opened on/after startLine, or the last line if braces never
// balance, tolerating partial or broken files.
func findBraceMatchEnd(lines []string, startLine int) int {
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

// --- JWT -----------------------------------------------------------------

var (
	jwtDecodeRe = regexp.MustCompile(`\bjwt\.decode\(`)
	jwtNoneRe   = regexp.MustCompile(`(?i)(alg|algorithm)\s*[:=]\s*['"]none['"]`)
)

func (m *Module) checkJWT(rc *rules.Context, f model.File, lines []string) []model.Alert {
	var alerts []model.Alert
	for i, line := range lines {
		if loweredIsComment(line) {
			continue
		}
		if jwtDecodeRe.MatchString(line) {
			alerts = appendIfEmitted(alerts, rc, model.Alert{
				ID: uuid.NewString(), Severity: model.SeverityHigh, RuleID: "insecure-jwt",
				Module: m.Name(), Message: "jwt.decode without verifying the signature accepts forged tokens", File: f.Path, Line: i + 1,
			})
		}
		if jwtNoneRe.MatchString(line) {
			alerts = appendIfEmitted(alerts, rc, model.Alert{
				ID: uuid.NewString(), Severity: model.SeverityCritical, RuleID: "insecure-jwt-none",
				Module: m.Name(), Message: "algorithm \"none\" accepts unsigned tokens as valid", File: f.Path, Line: i + 1,
			})
		}
	}
	return alerts
}

// --- missing-env-check ---------------------------------------------------

var destructiveOpPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\.deleteMany\(`),
	regexp.MustCompile(`\.drop\(`),
	regexp.MustCompile(`\.truncate\(`),
	regexp.MustCompile(`\.destroy\(\s*\{[^}]*force\s*:\s*true`),
	regexp.MustCompile(`(?i)DROP TABLE`),
	regexp.MustCompile(`(?i)TRUNCATE TABLE`),
	regexp.MustCompile(`(?i)DELETE FROM\s+\S+\s+WHERE\s+1\s*=\s*1`),
}

var envMarkerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`process\.env\.NODE_ENV`),
	regexp.MustCompile(`NODE_ENV\s*!=\s*['"]production['"]`),
	regexp.MustCompile(`if\s*\(\s*!production`),
	regexp.MustCompile(`process\.env\.`),
	regexp.MustCompile(`import\.meta\.env`),
}

func (m *Module) checkMissingEnvCheck(rc *rules.Context, f model.File, lines []string) []model.Alert {
	var alerts []model.Alert
	for i, line := range lines {
		matched := false
		for _, p := range destructiveOpPatterns {
			if p.MatchString(line) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		if hasEnvMarkerInWindow(lines, i) {
			continue
		}
		alerts = appendIfEmitted(alerts, rc, model.Alert{
			ID: uuid.NewString(), Severity: model.SeverityMedium, RuleID: "missing-env-check",
			Module: m.Name(), Message: "destructive operation runs without a visible environment guard", File: f.Path, Line: i + 1,
		})
	}
	return alerts
}

func hasEnvMarkerInWindow(lines []string, line int) bool {
	start := line - 9
	if start < 0 {
		start = 0
	}
	for i := start; i <= line; i++ {
		for _, p := range envMarkerPatterns {
			if p.MatchString(lines[i]) {
				return true
			}
		}
	}
	return false
}

// --- hardcoded-production-url -------------------------------------------

var productionURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`https?://api\.[A-Za-z0-9.\-]+\.com`),
	regexp.MustCompile(`https?://[A-Za-z0-9.\-]*\.herokuapp\.com`),
	regexp.MustCompile(`https?://[A-Za-z0-9.\-]*\.vercel\.app`),
	regexp.MustCompile(`https?://[A-Za-z0-9.\-]*\.netlify\.app`),
	regexp.MustCompile(`https?://[A-Za-z0-9.\-]*\.railway\.app`),
	regexp.MustCompile(`https?://prod\.[A-Za-z0-9.\-]+`),
	regexp.MustCompile(`https?://production\.[A-Za-z0-9.\-]+`),
}

func (m *Module) checkProductionURL(rc *rules.Context, f model.File, lines []string) []model.Alert {
	var alerts []model.Alert
	for i, line := range lines {
		if loweredIsComment(line) {
			continue
		}
		matched := false
		for _, p := range productionURLPatterns {
			if p.MatchString(line) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		if strings.Contains(line, "process.env.") || strings.Contains(line, "import.meta.env") {
			continue
		}
		alerts = appendIfEmitted(alerts, rc, model.Alert{
			ID: uuid.NewString(), Severity: model.SeverityHigh, RuleID: "hardcoded-production-url",
			Module: m.Name(), Message: "production URL is hardcoded rather than read from configuration", File: f.Path, Line: i + 1,
		})
	}
	return alerts
}

// --- low-scorecard-score -------------------------------------------------

func (m *Module) checkScorecards(rc *rules.Context) []model.Alert {
	if !rc.Config.SupplyChain.CheckScorecard || rc.Scorecard == nil {
		return nil
	}
	minScore := rc.Config.SupplyChain.MinScorecardScore
	if minScore <= 0 {
		minScore = 5.0
	}

	var alerts []model.Alert
	seen := make(map[string]bool)
	for _, f := range rc.ManifestFiles() {
		content, ok := rc.Contents[f.Path]
		if !ok {
			continue
		}
		for _, dep := range manifest.Parse(f.Path, []byte(content.Text)) {
			info, err := rc.Registry.Info(rc.Ctx, dep.Name, dep.Registry)
			if err != nil || info == nil || info.RepositoryURL == "" {
				continue
			}
			if seen[info.RepositoryURL] {
				continue
			}
			seen[info.RepositoryURL] = true

			card, err := rc.Scorecard.Lookup(rc.Ctx, info.RepositoryURL)
			if err != nil || card == nil {
				continue
			}
			if card.Score < minScore {
				alerts = appendIfEmitted(alerts, rc, model.Alert{
					ID: uuid.NewString(), Severity: model.SeverityMedium, RuleID: "low-scorecard-score",
					Module:  m.Name(),
					Message: fmt.Sprintf("dependency %q's repository has a security scorecard of %s, below threshold %s", dep.Name, strconv.FormatFloat(card.Score, 'f', 1, 64), strconv.FormatFloat(minScore, 'f', 1, 64)),
					File:    dep.ManifestPath,
				})
			}
		}
	}
	return alerts
}
