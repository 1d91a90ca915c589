package graph

import (
	"sort"

	"ueba-service/internal/model"
)

// Node identifies an entity in one of the three disjoint namespaces.
type Node struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

func UserNode(id string) Node   { return Node{Kind: model.NodeKindUser, ID: id} }
func FileNode(id string) Node   { return Node{Kind: model.NodeKindFile, ID: id} }
func DeviceNode(id string) Node { return Node{Kind: model.NodeKindDevice, ID: id} }

// Edge is one undirected typed edge. Endpoints are stored in canonical
// (lesser-first) order so an edge has a single representation.
type Edge struct {
	A    Node   `json:"a"`
	B    Node   `json:"b"`
	Kind string `json:"kind"`
}

// Graph is an undirected multi-relation adjacency-map graph over users,
// files and devices. Edge multiplicity is collapsed to presence: adding the
// same edge twice is a no-op. A node exists only while it participates in at
// least one edge, so the graph never holds isolated nodes.
type Graph struct {
	adj map[Node]map[Node]string
}

func New() *Graph {
	return &Graph{adj: make(map[Node]map[Node]string)}
}

// FromEvents builds the entity graph the way the detection pipeline sees it:
// file accesses become access edges, USB windows become usb edges.
func FromEvents(logs *model.EventLogs) *Graph {
	g := New()
	for _, fa := range logs.FileAccesses {
		g.AddEdge(UserNode(fa.User), FileNode(fa.File), model.EdgeKindAccess)
	}
	for _, u := range logs.UsbUses {
		g.AddEdge(UserNode(u.User), DeviceNode(u.Device), model.EdgeKindUsb)
	}
	return g
}

// AddEdge inserts the undirected edge {u, v} with the given relation kind.
// Self-loops are ignored; repeated insertions keep the first kind.
func (g *Graph) AddEdge(u, v Node, kind string) {
	if u == v {
		return
	}
	g.addHalf(u, v, kind)
	g.addHalf(v, u, kind)
}

func (g *Graph) addHalf(from, to Node, kind string) {
	m, ok := g.adj[from]
	if !ok {
		m = make(map[Node]string)
		g.adj[from] = m
	}
	if _, exists := m[to]; !exists {
		m[to] = kind
	}
}

func (g *Graph) HasNode(n Node) bool {
	_, ok := g.adj[n]
	return ok
}

func (g *Graph) NodeCount() int {
	return len(g.adj)
}

func (g *Graph) Degree(n Node) int {
	return len(g.adj[n])
}

// Nodes returns all nodes sorted by kind then ID.
func (g *Graph) Nodes() []Node {
	nodes := make([]Node, 0, len(g.adj))
	for n := range g.adj {
		nodes = append(nodes, n)
	}
	sortNodes(nodes)
	return nodes
}

// Neighbors returns the direct neighbors of n, sorted.
func (g *Graph) Neighbors(n Node) []Node {
	m := g.adj[n]
	out := make([]Node, 0, len(m))
	for nb := range m {
		out = append(out, nb)
	}
	sortNodes(out)
	return out
}

// EdgeKind returns the relation kind between u and v, if the edge exists.
func (g *Graph) EdgeKind(u, v Node) (string, bool) {
	kind, ok := g.adj[u][v]
	return kind, ok
}

// Edges returns every edge exactly once, in canonical sorted order.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for u, m := range g.adj {
		for v, kind := range m {
			if nodeLess(u, v) {
				edges = append(edges, Edge{A: u, B: v, Kind: kind})
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].A != edges[j].A {
			return nodeLess(edges[i].A, edges[j].A)
		}
		return nodeLess(edges[i].B, edges[j].B)
	})
	return edges
}

// InducedSubgraph returns the subgraph over the given node set: the nodes of
// the set that exist in g, and every g edge with both endpoints in the set.
// Nodes that end up isolated are dropped, preserving the no-isolated-nodes
// invariant.
func (g *Graph) InducedSubgraph(keep map[Node]bool) *Graph {
	sub := New()
	for u := range keep {
		m, ok := g.adj[u]
		if !ok {
			continue
		}
		for v, kind := range m {
			if keep[v] {
				sub.AddEdge(u, v, kind)
			}
		}
	}
	return sub
}

func nodeLess(a, b Node) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	return a.ID < b.ID
}

func sortNodes(nodes []Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodeLess(nodes[i], nodes[j]) })
}
