package dag

// BackEdges returns the edges that close a directed cycle, as [from, to]
// pairs, found by depth-first search from the sources and then from every
// remaining node in insertion order. The graph is acyclic iff the result is
// empty.
func (d *DAG) BackEdges() [][2]string {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(d.nodes))
	var backEdges [][2]string

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		for _, child := range d.outgoing[node] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				backEdges = append(backEdges, [2]string{node, child})
			}
		}
		color[node] = black
	}

	for _, n := range d.Sources() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}
	for _, id := range d.order {
		if color[id] == white {
			dfs(id)
		}
	}
	return backEdges
}

// IsAcyclic reports whether the graph contains no directed cycle.
func (d *DAG) IsAcyclic() bool { return len(d.BackEdges()) == 0 }
