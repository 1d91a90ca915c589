package risk

import (
	"ueba-service/internal/graph"
	"ueba-service/internal/model"
	"ueba-service/internal/util"
)

// Build produces the bounded investigation subgraph: every user whose
// max-over-detectors score exceeds the threshold, or who carries a red-team
// label, plus all of their direct neighbors. Depth is fixed at exactly one
// hop to keep the analyst view small. The result is always an induced
// subgraph of the entity graph; users with no graph activity cannot
// contribute nodes, flagged or not.
func Build(g *graph.Graph, scores []model.ScoreRow, threshold float64) *model.RiskSubgraph {
	byUser := make(map[string]model.ScoreRow, len(scores))
	keep := make(map[graph.Node]bool)
	flagged := 0

	for _, s := range scores {
		byUser[s.User] = s
		if s.MaxScore() <= threshold && !s.IsRedTeam {
			continue
		}
		flagged++
		n := graph.UserNode(s.User)
		if !g.HasNode(n) {
			continue
		}
		keep[n] = true
		for _, nb := range g.Neighbors(n) {
			keep[nb] = true
		}
	}

	sub := g.InducedSubgraph(keep)

	out := &model.RiskSubgraph{Threshold: threshold}
	for _, n := range sub.Nodes() {
		node := model.RiskNode{ID: n.ID, Kind: n.Kind}
		if n.Kind == model.NodeKindUser {
			if s, ok := byUser[n.ID]; ok {
				node.AnomalyScore = s.MaxScore()
				node.IsRedTeam = s.IsRedTeam
				node.HighRisk = s.MaxScore() > threshold || s.IsRedTeam
			}
		}
		out.Nodes = append(out.Nodes, node)
	}
	for _, e := range sub.Edges() {
		out.Edges = append(out.Edges, model.RiskEdge{
			Source: e.A.ID,
			Target: e.B.ID,
			Kind:   e.Kind,
		})
	}

	util.Info("risk subgraph built",
		util.Float64("threshold", threshold),
		util.Int("flagged_users", flagged),
		util.Int("nodes", len(out.Nodes)),
		util.Int("edges", len(out.Edges)),
	)
	return out
}
