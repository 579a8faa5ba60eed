package model

// ImportGraph is a directed graph whose vertices are file paths and whose
// edges are raw-import strings. Resolution of a raw edge to
// another vertex is lazy and is the consumer's responsibility — a raw path
// with no resolvable target (e.g. a third-party package) simply yields no
// vertex when resolved.
type ImportGraph struct {
	// nodes indexes every file's ImportNode by path. Insertion order is
	// preserved for deterministic iteration; order holds the insertion
	// sequence.
	nodes map[string]ImportNode
	order []string
}

// NewImportGraph returns an empty graph.
func NewImportGraph() *ImportGraph {
	return &ImportGraph{nodes: make(map[string]ImportNode)}
}

// AddNode inserts (or replaces) a vertex's ImportNode. Nodes must be added
// before edges from that file are queried; AddNode is idempotent per path
// (the graph never holds duplicate vertices).
func (g *ImportGraph) AddNode(node ImportNode) {
	if _, exists := g.nodes[node.File]; !exists {
		g.order = append(g.order, node.File)
	}
	g.nodes[node.File] = node
}

// Node returns the ImportNode for path and whether it exists.
func (g *ImportGraph) Node(path string) (ImportNode, bool) {
	n, ok := g.nodes[path]
	return n, ok
}

// Files returns every vertex path in insertion order.
func (g *ImportGraph) Files() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Edges returns the raw outgoing import-path labels for a vertex,
// which is always exactly that node's own Imports list.
func (g *ImportGraph) Edges(path string) []string {
	n, ok := g.nodes[path]
	if !ok {
		return nil
	}
	return n.Imports
}

// Len returns the number of vertices.
func (g *ImportGraph) Len() int {
	return len(g.nodes)
}
