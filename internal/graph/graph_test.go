package graph

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ueba-service/internal/model"
)

func TestAddEdgeCollapsesMultiplicity(t *testing.T) {
	g := New()
	g.AddEdge(UserNode("user_1"), FileNode("file_1"), model.EdgeKindAccess)
	g.AddEdge(UserNode("user_1"), FileNode("file_1"), model.EdgeKindAccess)
	g.AddEdge(FileNode("file_1"), UserNode("user_1"), model.EdgeKindAccess)

	assert.Len(t, g.Edges(), 1)
	assert.Equal(t, 1, g.Degree(UserNode("user_1")))
	assert.Equal(t, 1, g.Degree(FileNode("file_1")))
}

func TestNoIsolatedNodes(t *testing.T) {
	g := New()
	assert.Equal(t, 0, g.NodeCount())

	g.AddEdge(UserNode("user_1"), UserNode("user_1"), model.EdgeKindAccess)
	assert.Equal(t, 0, g.NodeCount(), "self-loop must not create a node")

	g.AddEdge(UserNode("user_1"), DeviceNode("usb_1"), model.EdgeKindUsb)
	assert.Equal(t, 2, g.NodeCount())
}

func TestDisjointNamespaces(t *testing.T) {
	g := New()
	g.AddEdge(UserNode("x"), FileNode("x"), model.EdgeKindAccess)

	assert.True(t, g.HasNode(UserNode("x")))
	assert.True(t, g.HasNode(FileNode("x")))
	assert.False(t, g.HasNode(DeviceNode("x")))
	assert.Equal(t, 2, g.NodeCount())
}

func TestFromEvents(t *testing.T) {
	now := time.Now()
	logs := &model.EventLogs{
		FileAccesses: []model.FileAccessEvent{
			{User: "user_1", File: "file_1", AccessTime: now},
			{User: "user_1", File: "file_1", AccessTime: now.Add(time.Hour)},
			{User: "user_2", File: "file_1", AccessTime: now},
		},
		UsbUses: []model.UsbEvent{
			{User: "user_1", Device: "usb_1", PlugTime: now, UnplugTime: now.Add(time.Minute)},
		},
	}

	g := FromEvents(logs)
	require.Equal(t, 4, g.NodeCount())
	assert.Len(t, g.Edges(), 3)

	kind, ok := g.EdgeKind(UserNode("user_1"), DeviceNode("usb_1"))
	require.True(t, ok)
	assert.Equal(t, model.EdgeKindUsb, kind)
}

func TestNeighborsSorted(t *testing.T) {
	g := New()
	g.AddEdge(UserNode("user_1"), FileNode("file_2"), model.EdgeKindAccess)
	g.AddEdge(UserNode("user_1"), FileNode("file_1"), model.EdgeKindAccess)
	g.AddEdge(UserNode("user_1"), DeviceNode("usb_1"), model.EdgeKindUsb)

	nbs := g.Neighbors(UserNode("user_1"))
	require.Len(t, nbs, 3)
	assert.Equal(t, DeviceNode("usb_1"), nbs[0])
	assert.Equal(t, FileNode("file_1"), nbs[1])
	assert.Equal(t, FileNode("file_2"), nbs[2])
}

func TestInducedSubgraph(t *testing.T) {
	g := New()
	g.AddEdge(UserNode("a"), FileNode("f1"), model.EdgeKindAccess)
	g.AddEdge(UserNode("b"), FileNode("f1"), model.EdgeKindAccess)
	g.AddEdge(UserNode("b"), FileNode("f2"), model.EdgeKindAccess)

	keep := map[Node]bool{
		UserNode("a"):  true,
		FileNode("f1"): true,
		// f2 and b excluded; "ghost" is not in g at all
		UserNode("ghost"): true,
	}
	sub := g.InducedSubgraph(keep)

	assert.Equal(t, 2, sub.NodeCount())
	assert.Len(t, sub.Edges(), 1)
	assert.False(t, sub.HasNode(UserNode("ghost")))
	assert.False(t, sub.HasNode(UserNode("b")))
}

func TestDegreeCentrality(t *testing.T) {
	// Path: a - f - b  (n=3, denominator 2)
	g := New()
	g.AddEdge(UserNode("a"), FileNode("f"), model.EdgeKindAccess)
	g.AddEdge(UserNode("b"), FileNode("f"), model.EdgeKindAccess)

	dc := g.DegreeCentrality()
	assert.InDelta(t, 0.5, dc[UserNode("a")], 1e-12)
	assert.InDelta(t, 0.5, dc[UserNode("b")], 1e-12)
	assert.InDelta(t, 1.0, dc[FileNode("f")], 1e-12)
}

func TestBetweennessCentralityPath(t *testing.T) {
	// Path a - f - b: only f lies on a shortest path between other nodes.
	g := New()
	g.AddEdge(UserNode("a"), FileNode("f"), model.EdgeKindAccess)
	g.AddEdge(UserNode("b"), FileNode("f"), model.EdgeKindAccess)

	bc := g.BetweennessCentrality()
	assert.InDelta(t, 1.0, bc[FileNode("f")], 1e-12)
	assert.InDelta(t, 0.0, bc[UserNode("a")], 1e-12)
	assert.InDelta(t, 0.0, bc[UserNode("b")], 1e-12)
}

func TestBetweennessCentralityStar(t *testing.T) {
	// Star with center c and 3 leaves: center carries every leaf pair.
	g := New()
	for _, leaf := range []string{"u1", "u2", "u3"} {
		g.AddEdge(UserNode(leaf), FileNode("c"), model.EdgeKindAccess)
	}

	bc := g.BetweennessCentrality()
	assert.InDelta(t, 1.0, bc[FileNode("c")], 1e-12)
	for _, leaf := range []string{"u1", "u2", "u3"} {
		assert.InDelta(t, 0.0, bc[UserNode(leaf)], 1e-12)
	}
}

func TestBetweennessCentralitySquare(t *testing.T) {
	// Cycle u1-f1-u2-f2-u1: two equal shortest paths between opposite
	// corners, each midpoint carries half of each of the two crossing pairs.
	g := New()
	g.AddEdge(UserNode("u1"), FileNode("f1"), model.EdgeKindAccess)
	g.AddEdge(FileNode("f1"), UserNode("u2"), model.EdgeKindAccess)
	g.AddEdge(UserNode("u2"), FileNode("f2"), model.EdgeKindAccess)
	g.AddEdge(FileNode("f2"), UserNode("u1"), model.EdgeKindAccess)

	bc := g.BetweennessCentrality()
	for n, want := range map[Node]float64{
		UserNode("u1"): 1.0 / 6.0,
		UserNode("u2"): 1.0 / 6.0,
		FileNode("f1"): 1.0 / 6.0,
		FileNode("f2"): 1.0 / 6.0,
	} {
		assert.InDelta(t, want, bc[n], 1e-12, n.ID)
	}
}
