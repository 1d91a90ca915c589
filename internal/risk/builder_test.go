package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ueba-service/internal/graph"
	"ueba-service/internal/model"
)

func buildGraph() *graph.Graph {
	g := graph.New()
	g.AddEdge(graph.UserNode("user_a"), graph.FileNode("file_7"), model.EdgeKindAccess)
	g.AddEdge(graph.UserNode("user_b"), graph.FileNode("file_1"), model.EdgeKindAccess)
	g.AddEdge(graph.UserNode("user_b"), graph.DeviceNode("usb_1"), model.EdgeKindUsb)
	// file_1 also touched by user_c, two hops from user_b's devices.
	g.AddEdge(graph.UserNode("user_c"), graph.FileNode("file_1"), model.EdgeKindAccess)
	return g
}

func TestBuildThresholdScenario(t *testing.T) {
	// user_a scores 1.2 against threshold 1.0 and its only edge is to
	// file_7; nothing else may leak into the subgraph.
	g := buildGraph()
	scores := []model.ScoreRow{
		{User: "user_a", IsolationScore: 1.2},
		{User: "user_b", IsolationScore: 0.1},
		{User: "user_c", IsolationScore: 0.2},
	}

	sub := Build(g, scores, 1.0)
	require.Len(t, sub.Nodes, 2)
	require.Len(t, sub.Edges, 1)

	assert.Equal(t, model.NodeKindFile, sub.Nodes[0].Kind)
	assert.Equal(t, "file_7", sub.Nodes[0].ID)
	assert.Equal(t, model.NodeKindUser, sub.Nodes[1].Kind)
	assert.Equal(t, "user_a", sub.Nodes[1].ID)
	assert.True(t, sub.Nodes[1].HighRisk)
	assert.InDelta(t, 1.2, sub.Nodes[1].AnomalyScore, 1e-12)

	assert.Equal(t, model.EdgeKindAccess, sub.Edges[0].Kind)
}

func TestBuildRedTeamFlagging(t *testing.T) {
	g := buildGraph()
	scores := []model.ScoreRow{
		{User: "user_b", IsolationScore: 0.1, IsRedTeam: true},
	}

	sub := Build(g, scores, 1.0)

	ids := make(map[string]bool)
	for _, n := range sub.Nodes {
		ids[n.Kind+":"+n.ID] = true
	}
	assert.True(t, ids["user:user_b"])
	assert.True(t, ids["file:file_1"])
	assert.True(t, ids["device:usb_1"])
	// user_c is two hops from user_b; one-hop expansion must exclude it.
	assert.False(t, ids["user:user_c"])
}

func TestBuildOneHopOnly(t *testing.T) {
	g := buildGraph()
	scores := []model.ScoreRow{
		{User: "user_c", IsolationScore: 2.0},
	}

	sub := Build(g, scores, 1.0)
	for _, n := range sub.Nodes {
		assert.NotEqual(t, "usb_1", n.ID, "usb_1 is two hops from user_c")
		assert.NotEqual(t, "user_a", n.ID)
	}
	// user_b shares file_1 with user_c but is itself two hops away.
	for _, n := range sub.Nodes {
		assert.NotEqual(t, "user_b", n.ID)
	}
}

func TestBuildSubsetOfEntityGraph(t *testing.T) {
	g := buildGraph()
	scores := []model.ScoreRow{
		{User: "user_a", IsolationScore: 9.9},
		{User: "user_b", IsolationScore: 9.9},
		{User: "user_c", IsolationScore: 9.9},
		// user_d is flagged but has no graph activity at all.
		{User: "user_d", IsolationScore: 9.9},
	}

	sub := Build(g, scores, 1.0)
	for _, n := range sub.Nodes {
		assert.True(t, g.HasNode(graph.Node{Kind: n.Kind, ID: n.ID}),
			"node %s/%s must exist in the entity graph", n.Kind, n.ID)
	}
	for _, n := range sub.Nodes {
		assert.NotEqual(t, "user_d", n.ID)
	}
}

func TestBuildEmptyWhenNothingFlagged(t *testing.T) {
	g := buildGraph()
	scores := []model.ScoreRow{
		{User: "user_a", IsolationScore: 0.5},
	}

	sub := Build(g, scores, 1.0)
	assert.Empty(t, sub.Nodes)
	assert.Empty(t, sub.Edges)
}
