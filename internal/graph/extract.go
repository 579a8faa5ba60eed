// Package graph builds and analyzes the Import Graph: best-effort
// regex extraction of imports/exports, path resolution for unused-export
// analysis, and cycle detection for circular-dependency detection.
package graph

import (
	"regexp"
	"strings"

	"aegis/internal/model"
)

var (
	importFromRe = regexp.MustCompile("import\\s+(.+?)\\s+from\\s+['\"`]([^'\"`]+)['\"`]")
	requireRe    = regexp.MustCompile(`\brequire\(\s*['"` + "`" + `]([^'"` + "`" + `]+)['"` + "`" + `]\s*\)`)
	dynImportRe  = regexp.MustCompile(`\bimport\(\s*['"` + "`" + `]([^'"` + "`" + `]+)['"` + "`" + `]\s*\)`)
	exportRe     = regexp.MustCompile(`\bexport\s+(?:default\s+)?(?:function|class|const|let|var|type|interface)\s+([A-Za-z_$][A-Za-z0-9_$]*)`)

	pyImportRe = regexp.MustCompile(`^\s*from\s+([.\w]+)\s+import\s+(.+)$`)
)

// ExtractJSTS builds the ImportNode for a JavaScript/TypeScript source file
// (or the extracted script block of an SFC).
func ExtractJSTS(path string, text string) model.ImportNode {
	node := model.ImportNode{File: path, Symbols: make(map[string]map[string]bool)}
	seenImport := make(map[string]bool)

	addImport := func(rawPath string) {
		if !seenImport[rawPath] {
			seenImport[rawPath] = true
			node.Imports = append(node.Imports, rawPath)
		}
	}
	addSymbol := func(rawPath, symbol string) {
		if node.Symbols[rawPath] == nil {
			node.Symbols[rawPath] = make(map[string]bool)
		}
		node.Symbols[rawPath][symbol] = true
	}

	for _, line := range strings.Split(text, "\n") {
		if m := importFromRe.FindStringSubmatch(line); m != nil {
			clause, rawPath := strings.TrimSpace(m[1]), m[2]
			if !isRecordableJSPath(rawPath) {
				continue
			}
			addImport(rawPath)
			for _, sym := range classifyClause(clause) {
				addSymbol(rawPath, sym)
			}
			continue
		}
		if m := requireRe.FindStringSubmatch(line); m != nil {
			addImport(m[1])
			addSymbol(m[1], model.StarSymbol)
		}
		if m := dynImportRe.FindStringSubmatch(line); m != nil {
			addImport(m[1])
			addSymbol(m[1], model.StarSymbol)
		}
		if m := exportRe.FindStringSubmatch(line); m != nil {
			node.Exports = append(node.Exports, m[1])
		}
	}
	return node
}

func isRecordableJSPath(rawPath string) bool {
	return strings.HasPrefix(rawPath, ".") || strings.HasPrefix(rawPath, "@/")
}

// classifyClause classifies an `import <clause> from ...` clause into the
// symbol set it binds.
func classifyClause(clause string) []string {
	clause = strings.TrimSpace(clause)
	switch {
	case strings.HasPrefix(clause, "*"):
		return []string{model.StarSymbol}
	case strings.HasPrefix(clause, "{") && strings.HasSuffix(clause, "}"):
		inner := strings.TrimSuffix(strings.TrimPrefix(clause, "{"), "}")
		var names []string
		for _, part := range strings.Split(inner, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			part = strings.TrimPrefix(part, "type ")
			part = strings.TrimSpace(part)
			if idx := strings.Index(part, " as "); idx >= 0 {
				part = strings.TrimSpace(part[:idx])
			}
			if part != "" {
				names = append(names, part)
			}
		}
		return names
	default:
		return []string{model.DefaultSymbol}
	}
}

// ExtractPython builds the ImportNode for a Python source file, recording
// only relative `from X import ...` edges.
func ExtractPython(path string, text string) model.ImportNode {
	node := model.ImportNode{File: path, Symbols: make(map[string]map[string]bool)}
	seenImport := make(map[string]bool)

	for _, line := range strings.Split(text, "\n") {
		m := pyImportRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		rawPath := m[1]
		if !strings.HasPrefix(rawPath, ".") {
			continue
		}
		if !seenImport[rawPath] {
			seenImport[rawPath] = true
			node.Imports = append(node.Imports, rawPath)
		}
		if node.Symbols[rawPath] == nil {
			node.Symbols[rawPath] = make(map[string]bool)
		}
		for _, part := range strings.Split(m[2], ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if idx := strings.Index(part, " as "); idx >= 0 {
				part = strings.TrimSpace(part[:idx])
			}
			node.Symbols[rawPath][part] = true
		}
	}
	return node
}
