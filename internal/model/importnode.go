package model

// StarSymbol is the literal symbol denoting a namespace import ("import *").
const StarSymbol = "*"

// DefaultSymbol is the literal symbol denoting a default export/import binding.
const DefaultSymbol = "default"

// ImportNode is the per-file record the Import Graph is built from.
type ImportNode struct {
	File string

	// Imports lists the raw import path strings as written in the source,
	// in file order. An edge in the Import Graph is only added for a path
	// present here.
	Imports []string

	// Symbols maps a raw imported path to the set of symbols imported from
	// it. The literal "*" denotes the whole namespace; "default" denotes
	// the default binding.
	Symbols map[string]map[string]bool

	// Exports lists the exported symbol names declared by this file.
	Exports []string
}

// ImportsSymbol reports whether path is imported with the given symbol name.
func (n ImportNode) ImportsSymbol(path, symbol string) bool {
	syms, ok := n.Symbols[path]
	if !ok {
		return false
	}
	return syms[symbol]
}

// ImportsNamespace reports whether path is imported as a whole namespace.
func (n ImportNode) ImportsNamespace(path string) bool {
	return n.ImportsSymbol(path, StarSymbol)
}
