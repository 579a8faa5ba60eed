package graph

import (
	"path"
	"strings"
)

// candidateExtensions lists the suffixes Resolve tries, in order.
// "" matches a raw path that already names an existing file exactly.
var candidateExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".d.ts", ""}

var knownSourceSuffixes = []string{".d.ts", ".tsx", ".ts", ".jsx", ".js"}

// Resolve maps a raw import edge to a concrete vertex path in files, or
// returns ok=false if no candidate exists. Used only for unused-export
// analysis; files is the set of known vertex paths (forward-slash,
// relative to projectRoot), so an "@/" path resolves under the
// root-relative "src" directory.
func Resolve(projectRoot, fromFile, rawPath string, files map[string]bool) (string, bool) {
	var dir string
	if strings.HasPrefix(rawPath, "@/") {
		dir = "src"
		rawPath = strings.TrimPrefix(rawPath, "@/")
	} else if strings.HasPrefix(rawPath, ".") {
		dir = path.Dir(fromFile)
	} else {
		return "", false
	}

	base := path.Join(dir, rawPath)
	stem := stripKnownSuffix(base)

	for _, ext := range candidateExtensions {
		candidate := stem + ext
		if files[candidate] {
			return candidate, true
		}
	}
	for _, ext := range candidateExtensions {
		candidate := path.Join(stem, "index"+ext)
		if files[candidate] {
			return candidate, true
		}
	}
	return "", false
}

func stripKnownSuffix(p string) string {
	for _, suf := range knownSourceSuffixes {
		if strings.HasSuffix(p, suf) {
			return strings.TrimSuffix(p, suf)
		}
	}
	return p
}
