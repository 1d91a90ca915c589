package graph

// DegreeCentrality returns, for every node, its degree normalized by the
// total node count minus one.
func (g *Graph) DegreeCentrality() map[Node]float64 {
	out := make(map[Node]float64, len(g.adj))
	denom := float64(len(g.adj) - 1)
	for n, m := range g.adj {
		if denom <= 0 {
			out[n] = 0
			continue
		}
		out[n] = float64(len(m)) / denom
	}
	return out
}

// BetweennessCentrality computes shortest-path betweenness for every node
// with Brandes' algorithm over unweighted BFS, normalized for an undirected
// graph by 2/((n-1)(n-2)).
func (g *Graph) BetweennessCentrality() map[Node]float64 {
	nodes := g.Nodes()
	cb := make(map[Node]float64, len(nodes))
	for _, n := range nodes {
		cb[n] = 0
	}

	for _, s := range nodes {
		// Single-source shortest paths.
		var stack []Node
		preds := make(map[Node][]Node, len(nodes))
		sigma := map[Node]float64{s: 1}
		dist := map[Node]int{s: 0}

		queue := []Node{s}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			stack = append(stack, v)
			for _, w := range g.Neighbors(v) {
				if _, seen := dist[w]; !seen {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					preds[w] = append(preds[w], v)
				}
			}
		}

		// Dependency accumulation in reverse BFS order.
		delta := make(map[Node]float64, len(stack))
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range preds[w] {
				delta[v] += sigma[v] / sigma[w] * (1 + delta[w])
			}
			if w != s {
				cb[w] += delta[w]
			}
		}
	}

	// Each undirected pair was counted from both endpoints.
	n := float64(len(nodes))
	scale := 0.0
	if n > 2 {
		scale = 1.0 / ((n - 1) * (n - 2))
	}
	for v := range cb {
		cb[v] *= scale
	}
	return cb
}
