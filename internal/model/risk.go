package model

// -------------------- RISK SUBGRAPH MODELS --------------------

// Node kinds and edge kinds mirror the entity graph namespaces.
const (
	NodeKindUser   = "user"
	NodeKindFile   = "file"
	NodeKindDevice = "device"

	EdgeKindAccess = "access"
	EdgeKindUsb    = "usb"
)

// RiskNode is one node of the investigation subgraph. Anomaly attributes are
// populated for user-kind nodes only.
type RiskNode struct {
	ID           string  `json:"id"`
	Kind         string  `json:"kind"`
	AnomalyScore float64 `json:"anomaly_score,omitempty"`
	IsRedTeam    bool    `json:"is_red_team,omitempty"`
	HighRisk     bool    `json:"high_risk,omitempty"`
}

// RiskEdge is one typed edge of the investigation subgraph.
type RiskEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Kind   string `json:"kind"`
}

// RiskSubgraph is the induced one-hop neighborhood of all high-risk users.
// It is always a strict subset of the entity graph: no synthesized nodes or
// edges, and no node further than one hop from a high-risk user.
type RiskSubgraph struct {
	Threshold float64    `json:"threshold"`
	Nodes     []RiskNode `json:"nodes"`
	Edges     []RiskEdge `json:"edges"`
}
