package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ueba-service/internal/graph"
	"ueba-service/internal/model"
)

func TestExtractGraphUserRowsOnly(t *testing.T) {
	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	logs := &model.EventLogs{
		FileAccesses: []model.FileAccessEvent{
			{User: "u1", File: "shared", AccessTime: at},
			{User: "u2", File: "shared", AccessTime: at},
		},
		UsbUses: []model.UsbEvent{
			{User: "u2", Device: "usb_1", PlugTime: at, UnplugTime: at.Add(time.Minute)},
		},
	}

	rows := ExtractGraph(graph.FromEvents(logs))
	require.Len(t, rows, 2, "files and devices never get rows")

	assert.Equal(t, "u1", rows[0].User)
	assert.Equal(t, "u2", rows[1].User)

	// u2 touches two entities in a 4-node graph, u1 one.
	assert.InDelta(t, 2.0/3.0, rows[1].DegreeCentrality, 1e-12)
	assert.InDelta(t, 1.0/3.0, rows[0].DegreeCentrality, 1e-12)

	// Every shortest path between u1 and usb_1 runs through both the
	// shared file and u2.
	assert.Greater(t, rows[1].BetweennessCentrality, 0.0)
	assert.Zero(t, rows[0].BetweennessCentrality)
}

func TestExtractGraphEmptyLogs(t *testing.T) {
	rows := ExtractGraph(graph.FromEvents(&model.EventLogs{}))
	assert.Empty(t, rows)
}
