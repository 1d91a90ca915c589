package features

import (
	"sort"

	"ueba-service/internal/graph"
	"ueba-service/internal/model"
)

// ExtractGraph computes centrality features over the entity graph,
// restricted to user-kind nodes. Users with no file or USB activity have no
// node and therefore no row; the merger treats those gaps as zero.
func ExtractGraph(g *graph.Graph) []model.GraphFeatureRow {
	degree := g.DegreeCentrality()
	betweenness := g.BetweennessCentrality()

	var rows []model.GraphFeatureRow
	for _, n := range g.Nodes() {
		if n.Kind != model.NodeKindUser {
			continue
		}
		rows = append(rows, model.GraphFeatureRow{
			User:                  n.ID,
			DegreeCentrality:      degree[n],
			BetweennessCentrality: betweenness[n],
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].User < rows[j].User })
	return rows
}
