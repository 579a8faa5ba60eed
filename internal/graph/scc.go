package graph

import "sort"

// tarjanState runs Tarjan's algorithm (strongConnect) to find the strongly
// connected components of the graph described by edges (vertex -> resolved
// neighbor vertices). Components are returned in
// no particular order; each is the set of vertices in one cycle-capable
// subgraph. Singleton components (no self-loop) are omitted by Cycles.
type tarjanState struct {
	edges   map[string][]string
	index   map[string]int
	low     map[string]int
	onStack map[string]bool
	stack   []string
	counter int
	result  [][]string
}

func newTarjanState(edges map[string][]string) *tarjanState {
	return &tarjanState{
		edges:   edges,
		index:   make(map[string]int),
		low:     make(map[string]int),
		onStack: make(map[string]bool),
	}
}

func (s *tarjanState) strongConnect(v string) {
	s.index[v] = s.counter
	s.low[v] = s.counter
	s.counter++
	s.stack = append(s.stack, v)
	s.onStack[v] = true

	neighbors := append([]string{}, s.edges[v]...)
	sort.Strings(neighbors)
	for _, w := range neighbors {
		if _, ok := s.index[w]; !ok {
			s.strongConnect(w)
			if s.low[w] < s.low[v] {
				s.low[v] = s.low[w]
			}
		} else if s.onStack[w] {
			if s.index[w] < s.low[v] {
				s.low[v] = s.index[w]
			}
		}
	}

	if s.low[v] == s.index[v] {
		var component []string
		for {
			n := len(s.stack) - 1
			w := s.stack[n]
			s.stack = s.stack[:n]
			s.onStack[w] = false
			component = append(component, w)
			if w == v {
				break
			}
		}
		s.result = append(s.result, component)
	}
}

// Cycles computes strongly connected components of the resolved import
// graph with more than one vertex, or a single vertex with a self-loop.
// vertices must be processed in a deterministic order for deterministic
// output.
func Cycles(vertices []string, edges map[string][]string) [][]string {
	state := newTarjanState(edges)
	for _, v := range vertices {
		if _, ok := state.index[v]; !ok {
			state.strongConnect(v)
		}
	}

	var cycles [][]string
	for _, component := range state.result {
		if len(component) >= 2 {
			sort.Strings(component)
			cycles = append(cycles, component)
			continue
		}
		v := component[0]
		for _, w := range edges[v] {
			if w == v {
				cycles = append(cycles, component)
				break
			}
		}
	}
	return cycles
}
