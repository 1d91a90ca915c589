package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ueba-service/internal/model"
)

func TestMergeKeepsBaseRowSet(t *testing.T) {
	base := []model.FeatureRow{
		{User: "user_1", MeanLoginHour: 9},
		{User: "user_2", MeanLoginHour: 22},
	}
	graphRows := []model.GraphFeatureRow{
		{User: "user_1", DegreeCentrality: 0.5, BetweennessCentrality: 0.1},
		// user_3 has graph activity but never logged in; the left join
		// must not resurrect it.
		{User: "user_3", DegreeCentrality: 0.9},
	}
	contentRows := []model.ContentFeatureRow{
		{User: "user_1", KeywordFlag: 1, SubjectLen: 12},
	}

	merged := Merge(base, graphRows, contentRows, map[string]bool{"user_2": true})
	require.Len(t, merged, len(base))

	assert.Equal(t, "user_1", merged[0].User)
	assert.InDelta(t, 0.5, merged[0].DegreeCentrality, 1e-12)
	assert.InDelta(t, 1.0, merged[0].KeywordFlag, 1e-12)
	assert.False(t, merged[0].IsRedTeam)

	// user_2 had no graph or content activity: zero-filled, never NaN.
	assert.Zero(t, merged[1].DegreeCentrality)
	assert.Zero(t, merged[1].BetweennessCentrality)
	assert.Zero(t, merged[1].KeywordFlag)
	assert.Zero(t, merged[1].SubjectLen)
	assert.Zero(t, merged[1].Sentiment)
	assert.True(t, merged[1].IsRedTeam)
}

func TestMergeVectorMatchesColumnOrder(t *testing.T) {
	row := model.MergedFeatureRow{
		MeanLoginHour:         1,
		MeanLogoutHour:        2,
		FilesPerDay:           3,
		UsbPerDay:             4,
		EmailsPerDay:          5,
		OutOfSessionAccess:    6,
		DegreeCentrality:      7,
		BetweennessCentrality: 8,
		KeywordFlag:           9,
		SubjectLen:            10,
		Sentiment:             11,
	}

	vec := row.Vector()
	require.Len(t, vec, len(model.MergedFeatureColumns))
	for i, v := range vec {
		assert.InDelta(t, float64(i+1), v, 1e-12, model.MergedFeatureColumns[i])
	}
}
