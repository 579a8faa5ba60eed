package graph

import (
	"path"
	"strings"

	"aegis/internal/model"
	"aegis/internal/syntax"
)

// SourceFile pairs a relative file path and language with its text, the
// unit ExtractJSTS/ExtractPython and Build operate on.
type SourceFile struct {
	RelPath string
	Lang    model.Language
	Text    string
}

// Build constructs the Import Graph for files in input order, so
// construction is deterministic. Vue/Svelte script blocks must already be
// extracted into Text/Lang by the caller.
func Build(files []SourceFile) *model.ImportGraph {
	g := model.NewImportGraph()
	for _, f := range files {
		var node model.ImportNode
		switch f.Lang {
		case model.LangJavaScript, model.LangTypeScript, model.LangVue, model.LangSvelte:
			node = ExtractJSTS(f.RelPath, f.Text)
		case model.LangPython:
			node = ExtractPython(f.RelPath, f.Text)
		default:
			node = model.ImportNode{File: f.RelPath}
		}
		g.AddNode(node)
	}
	return g
}

// SourceFilesFromModel converts scanned/read file contents into the
// SourceFile shape Build expects, extracting SFC script blocks as needed.
func SourceFilesFromModel(projectRoot string, reads []FileRead) []SourceFile {
	out := make([]SourceFile, 0, len(reads))
	for _, r := range reads {
		rel := toProjectRelative(projectRoot, r.Path)
		lang := r.Lang
		text := r.Text
		if lang == model.LangVue || lang == model.LangSvelte {
			if block, scriptLang, ok := syntax.ExtractScriptBlock([]byte(r.Text)); ok {
				text = string(block)
				lang = scriptLang
			}
		}
		out = append(out, SourceFile{RelPath: rel, Lang: lang, Text: text})
	}
	return out
}

// FileRead is the raw input to SourceFilesFromModel: an absolute path, its
// classified language, and its decoded text.
type FileRead struct {
	Path string
	Lang model.Language
	Text string
}

func toProjectRelative(root, abs string) string {
	rel := strings.TrimPrefix(strings.TrimPrefix(abs, root), "/")
	return path.Clean(rel)
}

// ResolvedEdges resolves every vertex's raw import paths to concrete
// vertices, for use by Cycles and unused-export analysis.
func ResolvedEdges(projectRoot string, g *model.ImportGraph) map[string][]string {
	files := make(map[string]bool, g.Len())
	for _, f := range g.Files() {
		files[f] = true
	}

	edges := make(map[string][]string, g.Len())
	for _, f := range g.Files() {
		node, _ := g.Node(f)
		for _, raw := range node.Imports {
			if target, ok := Resolve(projectRoot, f, raw, files); ok {
				edges[f] = append(edges[f], target)
			}
		}
	}
	return edges
}

// UsedExports returns, for every resolved target vertex, the set of symbol
// names imported from it across the whole graph. A target imported with
// the namespace symbol "*" has every export marked used.
func UsedExports(projectRoot string, g *model.ImportGraph) map[string]map[string]bool {
	files := make(map[string]bool, g.Len())
	for _, f := range g.Files() {
		files[f] = true
	}

	used := make(map[string]map[string]bool)
	for _, f := range g.Files() {
		node, _ := g.Node(f)
		for raw, symbols := range node.Symbols {
			target, ok := Resolve(projectRoot, f, raw, files)
			if !ok {
				continue
			}
			if used[target] == nil {
				used[target] = make(map[string]bool)
			}
			for sym := range symbols {
				used[target][sym] = true
			}
		}
	}
	return used
}
