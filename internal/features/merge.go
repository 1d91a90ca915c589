package features

import (
	"ueba-service/internal/model"
)

// Merge left-joins graph and content features onto the behavioral table.
// The behavioral table is the authoritative user universe: the merge never
// drops or duplicates one of its rows, and users missing from the joined
// sets get zeros, not gaps. The red-team label set is attached for
// evaluation and risk flagging; detectors never see it.
func Merge(
	base []model.FeatureRow,
	graphRows []model.GraphFeatureRow,
	contentRows []model.ContentFeatureRow,
	redTeam map[string]bool,
) []model.MergedFeatureRow {
	graphByUser := make(map[string]model.GraphFeatureRow, len(graphRows))
	for _, r := range graphRows {
		graphByUser[r.User] = r
	}
	contentByUser := make(map[string]model.ContentFeatureRow, len(contentRows))
	for _, r := range contentRows {
		contentByUser[r.User] = r
	}

	merged := make([]model.MergedFeatureRow, 0, len(base))
	for _, b := range base {
		row := model.MergedFeatureRow{
			User:               b.User,
			MeanLoginHour:      b.MeanLoginHour,
			MeanLogoutHour:     b.MeanLogoutHour,
			FilesPerDay:        b.FilesPerDay,
			UsbPerDay:          b.UsbPerDay,
			EmailsPerDay:       b.EmailsPerDay,
			OutOfSessionAccess: b.OutOfSessionAccess,
			IsRedTeam:          redTeam[b.User],
		}
		if g, ok := graphByUser[b.User]; ok {
			row.DegreeCentrality = g.DegreeCentrality
			row.BetweennessCentrality = g.BetweennessCentrality
		}
		if c, ok := contentByUser[b.User]; ok {
			row.KeywordFlag = c.KeywordFlag
			row.SubjectLen = c.SubjectLen
			row.Sentiment = c.Sentiment
		}
		merged = append(merged, row)
	}
	return merged
}
