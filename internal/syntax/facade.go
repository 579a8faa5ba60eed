// Package syntax wraps tree-sitter behind a single facade so rule modules
// query syntax trees instead of walking raw node structure.
package syntax

import (
	"context"
	"regexp"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"aegis/internal/logging"
	"aegis/internal/model"
)

// Tree is a parsed syntax tree together with the source it was parsed
// from. A Tree from a failed parse is empty: Root is nil and Ok is false.
// Callers must tolerate this rather than treat it as an error. The tree
// keeps its underlying sitter.Tree alive until Close is called; Root
// becomes invalid once closed.
type Tree struct {
	tree   *sitter.Tree
	Root   *sitter.Node
	Source []byte
	Ok     bool
}

// Close releases the underlying tree-sitter tree. Safe to call on a tree
// that failed to parse.
func (t Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
	}
}

// Facade parses source text into Trees for the supported languages and
// pools sitter.Parser instances per language, since each parser is not
// safe for concurrent use.
type Facade struct {
	pools map[model.Language]*sync.Pool
}

// NewFacade returns a Facade with a parser pool for every script language.
func NewFacade() *Facade {
	f := &Facade{pools: make(map[model.Language]*sync.Pool)}
	f.pools[model.LangJavaScript] = newPool(javascript.GetLanguage)
	f.pools[model.LangTypeScript] = newPool(typescript.GetLanguage)
	f.pools[model.LangPython] = newPool(python.GetLanguage)
	return f
}

func newPool(lang func() *sitter.Language) *sync.Pool {
	return &sync.Pool{
		New: func() interface{} {
			p := sitter.NewParser()
			p.SetLanguage(lang())
			return p
		},
	}
}

// Parse parses text as the given language. A parser error or an
// unsupported language returns an empty Tree, never an error.
func (f *Facade) Parse(ctx context.Context, lang model.Language, text []byte) Tree {
	pool, ok := f.pools[lang]
	if !ok {
		logging.SyntaxDebug("no parser registered for language %s", lang)
		return Tree{Source: text}
	}

	parser := pool.Get().(*sitter.Parser)
	defer pool.Put(parser)

	tree, err := parser.ParseCtx(ctx, nil, text)
	if err != nil {
		logging.SyntaxWarn("parse failed: %v", err)
		return Tree{Source: text}
	}

	root := tree.RootNode()
	return Tree{tree: tree, Root: root, Source: text, Ok: true}
}

// Capture is a single named match produced by a pattern query.
type Capture struct {
	Name string
	Node *sitter.Node
	Text string
}

// Query runs a tree-sitter pattern query over tree and returns every
// capture across every match. A query syntax error or an empty tree
// yields no captures.
func (f *Facade) Query(lang model.Language, tree Tree, pattern string) []Capture {
	if !tree.Ok || tree.Root == nil {
		return nil
	}
	var tsLang *sitter.Language
	switch lang {
	case model.LangJavaScript:
		tsLang = javascript.GetLanguage()
	case model.LangTypeScript:
		tsLang = typescript.GetLanguage()
	case model.LangPython:
		tsLang = python.GetLanguage()
	default:
		return nil
	}

	q, err := sitter.NewQuery([]byte(pattern), tsLang)
	if err != nil {
		logging.SyntaxWarn("invalid query pattern: %v", err)
		return nil
	}
	defer q.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(q, tree.Root)

	var captures []Capture
	for {
		m, ok := cursor.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			captures = append(captures, Capture{
				Name: q.CaptureNameForId(c.Index),
				Node: c.Node,
				Text: c.Node.Content(tree.Source),
			})
		}
	}
	return captures
}

// scriptBlockRe extracts the text and lang attribute of the first top-level
// <script> element of a Vue or Svelte single-file component.
var scriptBlockRe = regexp.MustCompile(`(?is)<script([^>]*)>(.*?)</script>`)
var scriptLangAttrRe = regexp.MustCompile(`(?i)lang\s*=\s*["']([a-z]+)["']`)

// ExtractScriptBlock pulls the text of the first <script> block out of an
// SFC and classifies it javascript or typescript from the lang attribute.
func ExtractScriptBlock(source []byte) ([]byte, model.Language, bool) {
	m := scriptBlockRe.FindSubmatch(source)
	if m == nil {
		return nil, model.LangUnknown, false
	}
	lang := model.LangJavaScript
	if attr := scriptLangAttrRe.FindSubmatch(m[1]); attr != nil {
		switch string(attr[1]) {
		case "ts", "typescript":
			lang = model.LangTypeScript
		}
	}
	return m[2], lang, true
}
