package alert

import (
	"context"
	"fmt"
	"time"

	"ueba-service/internal/client"
	"ueba-service/internal/model"
	"ueba-service/internal/util"
)

// riskDocument is the investigation view indexed per run: the flagged users
// and their one-hop neighborhood, searchable by analysts.
type riskDocument struct {
	RunID     string              `json:"run_id"`
	Threshold float64             `json:"threshold"`
	Nodes     []model.RiskNode    `json:"nodes"`
	Edges     []model.RiskEdge    `json:"edges"`
	Users     []model.RiskNode    `json:"high_risk_users"`
	IndexedAt time.Time           `json:"indexed_at"`
}

// RiskIndexer writes the risk subgraph of each run into Elasticsearch.
type RiskIndexer struct {
	es    *client.ESClient
	index string
}

func NewRiskIndexer(esClient *client.ESClient, index string) *RiskIndexer {
	return &RiskIndexer{
		es:    esClient,
		index: index,
	}
}

// IndexRisk stores the subgraph under the run ID, replacing any earlier
// document for the same run.
func (r *RiskIndexer) IndexRisk(ctx context.Context, runID string, sub *model.RiskSubgraph) error {
	doc := riskDocument{
		RunID:     runID,
		Threshold: sub.Threshold,
		Nodes:     sub.Nodes,
		Edges:     sub.Edges,
		IndexedAt: time.Now().UTC(),
	}
	for _, n := range sub.Nodes {
		if n.Kind == model.NodeKindUser && n.HighRisk {
			doc.Users = append(doc.Users, n)
		}
	}

	if err := r.es.IndexDocument(ctx, r.index, runID, doc); err != nil {
		return fmt.Errorf("failed to index risk subgraph: %w", err)
	}

	util.Info("risk subgraph indexed",
		util.String("run_id", runID),
		util.String("index", r.index),
		util.Int("nodes", len(doc.Nodes)),
		util.Int("high_risk_users", len(doc.Users)),
	)
	return nil
}
