package compiler

import (
	"slices"

	"github.com/roach88/semmeta/internal/ir"
)

// parentGraph maps tag id to its parent id (at most one edge per node).
type parentGraph map[string][]string

// AnalyzeParentCycles finds tags whose parent chain loops back on itself.
//
// The algorithm:
//  1. Build tag -> parent edges for declared, non-root tags
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or a self-parent as a cycle path
//
// Each returned path starts and ends at the same tag, e.g. [A B A].
// Results are ordered by the first tag's declaration order.
func AnalyzeParentCycles(specs []ir.TagSpec) [][]string {
	graph := make(parentGraph)
	order := make(map[string]int)
	for i, spec := range specs {
		if spec.ID == "" || ir.IsCategory(spec.ID) {
			continue
		}
		if _, seen := order[spec.ID]; seen {
			continue
		}
		order[spec.ID] = i
		graph[spec.ID] = nil
		if spec.Parent != "" && !ir.IsCategory(spec.Parent) {
			graph[spec.ID] = []string{spec.Parent}
		}
	}

	var cycles [][]string
	for _, scc := range tarjanSCC(graph, specs) {
		if len(scc) == 1 && !slices.Contains(graph[scc[0]], scc[0]) {
			continue
		}
		// Start the path at the earliest declared member.
		start := scc[0]
		for _, id := range scc[1:] {
			if order[id] < order[start] {
				start = id
			}
		}
		cycles = append(cycles, followParents(start, graph))
	}

	slices.SortFunc(cycles, func(a, b []string) int {
		return order[a[0]] - order[b[0]]
	})
	return cycles
}

// followParents walks parent edges from start until it returns to start.
func followParents(start string, graph parentGraph) []string {
	path := []string{start}
	current := start
	for {
		next := graph[current]
		if len(next) == 0 {
			return path
		}
		path = append(path, next[0])
		if next[0] == start || len(path) > len(graph)+1 {
			return path
		}
		current = next[0]
	}
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
//
// Nodes are visited in spec declaration order so results are deterministic.
func tarjanSCC(graph parentGraph, specs []ir.TagSpec) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, ok := graph[w]; !ok {
				// Unknown parent, reported separately.
				continue
			}
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, spec := range specs {
		if _, ok := graph[spec.ID]; !ok {
			continue
		}
		if _, visited := indices[spec.ID]; !visited {
			strongConnect(spec.ID)
		}
	}

	return sccs
}
