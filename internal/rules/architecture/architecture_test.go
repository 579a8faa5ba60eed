package architecture

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aegis/internal/config"
	"aegis/internal/graph"
	"aegis/internal/model"
	"aegis/internal/rules"
	"aegis/internal/syntax"
)

type sourceSpec struct {
	rel  string
	lang model.Language
	text string
}

func newContext(t *testing.T, cfg *config.Config, specs ...sourceSpec) *rules.Context {
	t.Helper()
	rc := &rules.Context{
		Ctx:      context.Background(),
		Root:     "/proj",
		Config:   cfg,
		Contents: map[string]rules.FileContent{},
		Facade:   syntax.NewFacade(),
	}
	var sources []graph.SourceFile
	for _, s := range specs {
		abs := "/proj/" + s.rel
		f := model.File{Path: abs, Language: s.lang, IsSource: true}
		rc.Files = append(rc.Files, f)
		rc.Contents[abs] = rules.FileContent{File: f, Text: s.text}
		sources = append(sources, graph.SourceFile{RelPath: s.rel, Lang: s.lang, Text: s.text})
	}
	rc.Graph = graph.Build(sources)
	return rc
}

func byRule(alerts []model.Alert, ruleID string) []model.Alert {
	var out []model.Alert
	for _, a := range alerts {
		if a.RuleID == ruleID {
			out = append(out, a)
		}
	}
	return out
}

func TestMagicNumber_InsideSQLStringNotReported(t *testing.T) {
	src := "query := `SELECT * FROM users WHERE age > 18 AND status = 1`\nval := 999\n"
	rc := newContext(t, config.Default(), sourceSpec{"q.go", model.LangGo, src})

	alerts := byRule(New().Analyze(rc), "magic-number")
	require.Len(t, alerts, 1)
	assert.Contains(t, alerts[0].Message, "999")
	assert.Equal(t, 2, alerts[0].Line)
	assert.Equal(t, model.SeverityLow, alerts[0].Severity)
}

func TestMagicNumber_SafeSetAndDeclarations(t *testing.T) {
	src := strings.Join([]string{
		"const LIMIT = 9999;",        // constant declaration, skipped
		"let retries = 777;",         // declaration, skipped
		"counter = counter + 2;",     // 2 is in the safe set
		"timeout = 3500;",            // reported
	}, "\n")
	rc := newContext(t, config.Default(), sourceSpec{"a.js", model.LangJavaScript, src})

	alerts := byRule(New().Analyze(rc), "magic-number")
	require.Len(t, alerts, 1)
	assert.Contains(t, alerts[0].Message, "3500")
}

func TestMagicNumber_PythonAllCapsConstantSkipped(t *testing.T) {
	src := "MAX_RETRIES = 17\nattempts = 17\n"
	rc := newContext(t, config.Default(), sourceSpec{"a.py", model.LangPython, src})

	alerts := byRule(New().Analyze(rc), "magic-number")
	require.Len(t, alerts, 1)
	assert.Equal(t, 2, alerts[0].Line)
}

func TestMagicNumber_GoConstBlockSkipped(t *testing.T) {
	src := "const (\n\tmaxRetries = 17\n\tbackoffMs  = 350\n)\nn := 42\n"
	rc := newContext(t, config.Default(), sourceSpec{"a.go", model.LangGo, src})

	alerts := byRule(New().Analyze(rc), "magic-number")
	require.Len(t, alerts, 1)
	assert.Contains(t, alerts[0].Message, "42")
}

func TestMixedNaming_SkippedInsideInterface(t *testing.T) {
	src := "export interface BackendResponse { user_id: string; created_at: string; }\nfunction run() { const validCamelCase = \"ok\"; }\n"
	rc := newContext(t, config.Default(), sourceSpec{"types.ts", model.LangTypeScript, src})

	assert.Empty(t, byRule(New().Analyze(rc), "mixed-naming"))
}

func TestMixedNaming_Flagged(t *testing.T) {
	src := "const userName = payload.user_name;\n"
	rc := newContext(t, config.Default(), sourceSpec{"a.ts", model.LangTypeScript, src})

	alerts := byRule(New().Analyze(rc), "mixed-naming")
	require.Len(t, alerts, 1)
	assert.Equal(t, model.SeverityMedium, alerts[0].Severity)
	assert.Equal(t, 1, alerts[0].Line)
}

func TestMixedNaming_TypeAliasSkipped(t *testing.T) {
	src := "type ApiUser = { user_id: string, displayName: string };\n"
	rc := newContext(t, config.Default(), sourceSpec{"a.ts", model.LangTypeScript, src})
	assert.Empty(t, byRule(New().Analyze(rc), "mixed-naming"))
}

func TestMixedNaming_StringContentIgnored(t *testing.T) {
	src := "const query = \"SELECT user_id FROM t\"; doThing(query);\n"
	rc := newContext(t, config.Default(), sourceSpec{"a.ts", model.LangTypeScript, src})
	assert.Empty(t, byRule(New().Analyze(rc), "mixed-naming"))
}

func godFunctionSource() string {
	var b strings.Builder
	b.WriteString("function dispatch(x) {\n")
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, "  if (x === %d) { handle%d(); }\n", i+1000, i)
	}
	for i := 0; i < 75; i++ {
		b.WriteString("  step();\n")
	}
	b.WriteString("}\n")
	return b.String()
}

func TestGodFunction(t *testing.T) {
	rc := newContext(t, config.Default(), sourceSpec{"big.js", model.LangJavaScript, godFunctionSource()})

	alerts := byRule(New().Analyze(rc), "god-function")
	require.Len(t, alerts, 1)
	assert.Equal(t, model.SeverityHigh, alerts[0].Severity)
	assert.Equal(t, 1, alerts[0].Line)
}

func TestGodFunction_BothThresholdsRequired(t *testing.T) {
	// High complexity but short: 30 branches over ~32 lines.
	var b strings.Builder
	b.WriteString("function branchy(x) {\n")
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, "  if (x === %d) { handle%d(); }\n", i+1000, i)
	}
	b.WriteString("}\n")
	rc := newContext(t, config.Default(), sourceSpec{"a.js", model.LangJavaScript, b.String()})
	assert.Empty(t, byRule(New().Analyze(rc), "god-function"))

	// Long but linear: 120 plain statements, complexity 1.
	b.Reset()
	b.WriteString("function longButSimple() {\n")
	for i := 0; i < 120; i++ {
		b.WriteString("  step();\n")
	}
	b.WriteString("}\n")
	rc = newContext(t, config.Default(), sourceSpec{"b.js", model.LangJavaScript, b.String()})
	assert.Empty(t, byRule(New().Analyze(rc), "god-function"))
}

func TestCircularDependency(t *testing.T) {
	a := "import { b } from './b';\nexport const a = b + 1;\n"
	bSrc := "import { a } from './a';\nexport const b = 2;\n"
	rc := newContext(t, config.Default(),
		sourceSpec{"a.ts", model.LangTypeScript, a},
		sourceSpec{"b.ts", model.LangTypeScript, bSrc},
	)

	alerts := byRule(New().Analyze(rc), "circular-dependency")
	require.Len(t, alerts, 1)
	assert.Equal(t, model.SeverityHigh, alerts[0].Severity)
	assert.Equal(t, "/proj/a.ts", alerts[0].File)
	assert.Contains(t, alerts[0].Message, "a.ts")
	assert.Contains(t, alerts[0].Message, "b.ts")
}

func TestCircularDependency_AcyclicGraphClean(t *testing.T) {
	a := "import { b } from './b';\nexport const a = b + 1;\n"
	bSrc := "export const b = 2;\n"
	rc := newContext(t, config.Default(),
		sourceSpec{"a.ts", model.LangTypeScript, a},
		sourceSpec{"b.ts", model.LangTypeScript, bSrc},
	)
	assert.Empty(t, byRule(New().Analyze(rc), "circular-dependency"))
}

func TestUnusedExport(t *testing.T) {
	util := "export const used = 1;\nexport const orphan = 2;\n"
	app := "import { used } from './util';\nconsole.log(used);\n"
	rc := newContext(t, config.Default(),
		sourceSpec{"util.ts", model.LangTypeScript, util},
		sourceSpec{"app.ts", model.LangTypeScript, app},
	)

	alerts := byRule(New().Analyze(rc), "unused-export")
	messages := make([]string, 0, len(alerts))
	for _, a := range alerts {
		messages = append(messages, a.Message)
	}
	require.Len(t, alerts, 1, "only the orphan export should be flagged: %v", messages)
	assert.Contains(t, alerts[0].Message, "orphan")
	assert.Equal(t, "/proj/util.ts", alerts[0].File)
}

func TestUnusedExport_NamespaceImportMarksAllUsed(t *testing.T) {
	util := "export const one = 1;\nexport const two = 2;\n"
	app := "import * as util from './util';\nconsole.log(util.one);\n"
	rc := newContext(t, config.Default(),
		sourceSpec{"util.ts", model.LangTypeScript, util},
		sourceSpec{"app.ts", model.LangTypeScript, app},
	)
	assert.Empty(t, byRule(New().Analyze(rc), "unused-export"))
}

func TestUnusedExport_EntryPointExempt(t *testing.T) {
	rc := newContext(t, config.Default(),
		sourceSpec{"index.ts", model.LangTypeScript, "export const boot = 1;\n"},
	)
	assert.Empty(t, byRule(New().Analyze(rc), "unused-export"))
}
