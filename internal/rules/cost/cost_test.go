package cost

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aegis/internal/config"
	"aegis/internal/model"
	"aegis/internal/rules"
	"aegis/internal/syntax"
)

func newContext(t *testing.T, path string, lang model.Language, text string) *rules.Context {
	t.Helper()
	facade := syntax.NewFacade()
	f := model.File{Path: path, Language: lang, IsSource: true}
	fc := rules.FileContent{File: f, Text: text}
	if lang.IsScriptLanguage() {
		fc.Tree = facade.Parse(context.Background(), lang, []byte(text))
	}
	return &rules.Context{
		Ctx:      context.Background(),
		Root:     "/proj",
		Config:   config.Default(),
		Files:    []model.File{f},
		Contents: map[string]rules.FileContent{path: fc},
		Facade:   facade,
	}
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

func TestExpensiveAPIInLoop(t *testing.T) {
	src := `async function embedAll(texts) {
  for (let i = 0; i < texts.length; i++) {
    await openai.embeddings.create({ input: texts[i] });
  }
}
`
	rc := newContext(t, "/proj/embed.js", model.LangJavaScript, src)

	alerts := byRule(New().Analyze(rc), "expensive-api-in-loop")
	require.Len(t, alerts, 1)
	assert.Equal(t, model.SeverityHigh, alerts[0].Severity)
	assert.Equal(t, 2, alerts[0].Line)
	assert.Contains(t, alerts[0].Message, "openai.embeddings.create")
}

func TestExpensiveAPIInLoop_ForOf(t *testing.T) {
	src := `async function describeAll(images) {
  for (const img of images) {
    await anthropic.messages.create({ input: img });
  }
}
`
	rc := newContext(t, "/proj/describe.js", model.LangJavaScript, src)
	assert.Len(t, byRule(New().Analyze(rc), "expensive-api-in-loop"), 1)
}

func TestExpensiveAPIInLoop_RateLimitedNotFlagged(t *testing.T) {
	src := `async function embedAll(texts) {
  for (let i = 0; i < texts.length; i++) {
    await openai.embeddings.create({ input: texts[i] });
    await sleep(200);
  }
}
`
	rc := newContext(t, "/proj/embed.js", model.LangJavaScript, src)
	assert.Empty(t, byRule(New().Analyze(rc), "expensive-api-in-loop"))
}

func TestExpensiveAPIInLoop_Python(t *testing.T) {
	src := "def summarize(chunks):\n    for chunk in chunks:\n        anthropic.messages.create(prompt=chunk)\n"
	rc := newContext(t, "/proj/sum.py", model.LangPython, src)

	alerts := byRule(New().Analyze(rc), "expensive-api-in-loop")
	require.Len(t, alerts, 1)
	assert.Equal(t, 2, alerts[0].Line)
}

func TestExpensiveAPIInLoop_PythonTimeSleepNotFlagged(t *testing.T) {
	src := "def summarize(chunks):\n    for chunk in chunks:\n        anthropic.messages.create(prompt=chunk)\n        time.sleep(1)\n"
	rc := newContext(t, "/proj/sum.py", model.LangPython, src)
	assert.Empty(t, byRule(New().Analyze(rc), "expensive-api-in-loop"))
}

func TestMissingCacheForExpensiveCall(t *testing.T) {
	src := `async function describe(image) {
  return openai.chat.completions.create({ input: image });
}
`
	rc := newContext(t, "/proj/describe.js", model.LangJavaScript, src)

	alerts := byRule(New().Analyze(rc), "missing-cache-for-expensive-call")
	require.Len(t, alerts, 1)
	assert.Equal(t, model.SeverityMedium, alerts[0].Severity)
	assert.Equal(t, 1, alerts[0].Line)
}

func TestMissingCache_CachedCallNotFlagged(t *testing.T) {
	src := `async function describe(image) {
  const hit = cache.get(image);
  if (hit) return hit;
  const out = await openai.chat.completions.create({ input: image });
  cache.set(image, out);
  return out;
}
`
	rc := newContext(t, "/proj/describe.js", model.LangJavaScript, src)
	assert.Empty(t, byRule(New().Analyze(rc), "missing-cache-for-expensive-call"))
}

func TestMissingCache_PythonLRUDecoratorNotFlagged(t *testing.T) {
	src := "@functools.lru_cache\ndef describe(image):\n    return openai.chat.completions.create(input=image)\n"
	rc := newContext(t, "/proj/describe.py", model.LangPython, src)
	assert.Empty(t, byRule(New().Analyze(rc), "missing-cache-for-expensive-call"))
}

func TestMissingCache_PythonUncachedFlagged(t *testing.T) {
	src := "def describe(image):\n    return openai.chat.completions.create(input=image)\n"
	rc := newContext(t, "/proj/describe.py", model.LangPython, src)
	assert.Len(t, byRule(New().Analyze(rc), "missing-cache-for-expensive-call"), 1)
}

func TestNonScriptLanguageSkipped(t *testing.T) {
	src := "func main() {\n\tfor {\n\t\topenai.chat.completions.create()\n\t}\n}\n"
	rc := newContext(t, "/proj/main.go", model.LangGo, src)
	assert.Empty(t, New().Analyze(rc))
}
