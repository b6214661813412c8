package bench

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_AddPreservesOrderAndUniqueness(t *testing.T) {
	r := NewReport("sqlite", DefaultConfig())
	r.Add(StageLoad, 1.5)
	r.Add(StageMerge, 0.5)
	r.Add(StageLoad, 2.0) // re-recording replaces, never duplicates

	require.Len(t, r.Stages, 2)
	assert.Equal(t, StageLoad, r.Stages[0].Name)
	assert.Equal(t, 2.0, r.Stages[0].Seconds)
	assert.Equal(t, StageMerge, r.Stages[1].Name)

	seconds, ok := r.Seconds(StageMerge)
	require.True(t, ok)
	assert.Equal(t, 0.5, seconds)

	_, ok = r.Seconds(StageCorrelate)
	assert.False(t, ok)

	assert.InDelta(t, 2.5, r.Total(), 1e-12)
	assert.False(t, r.Complete())
}

func TestReport_JSONKeepsStageOrder(t *testing.T) {
	r := NewReport("duckdb", Config{Rows: 10, Cols: 2, Bins: 5, Seed: 1})
	for i, name := range StageOrder {
		r.Add(name, float64(i))
	}

	raw, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded struct {
		Engine string        `json:"engine"`
		Stages []StageResult `json:"stages"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "duckdb", decoded.Engine)
	require.Len(t, decoded.Stages, len(StageOrder))
	for i, stage := range decoded.Stages {
		assert.Equal(t, StageOrder[i], stage.Name)
	}
}
