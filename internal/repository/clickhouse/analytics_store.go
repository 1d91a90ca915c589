package clickhouse

import (
	"context"
	"fmt"
	"time"

	"ueba-service/internal/client"
	"ueba-service/internal/model"
	"ueba-service/internal/util"
)

// AnalyticsStore persists derived tables to ClickHouse for offline
// analytics. Implements model.AnalyticsStore.
type AnalyticsStore struct {
	clickhouse *client.ClickHouseClient
}

func NewAnalyticsStore(clickhouseClient *client.ClickHouseClient) *AnalyticsStore {
	return &AnalyticsStore{clickhouse: clickhouseClient}
}

const insertMergedFeaturesQuery = `
	INSERT INTO merged_features (
		run_id, user_id, mean_login_hour, mean_logout_hour, files_per_day,
		usb_per_day, emails_per_day, out_of_session_access, degree_centrality,
		betweenness_centrality, keyword_flag, subject_len, sentiment,
		is_red_team, created_at
	)`

const insertScoresQuery = `
	INSERT INTO anomaly_scores (
		run_id, user_id, is_red_team, isolation_score, boundary_score,
		reconstruction_score, created_at
	)`

// SaveMergedFeatures batch-inserts the feature matrix for one run.
func (s *AnalyticsStore) SaveMergedFeatures(ctx context.Context, runID string, rows []model.MergedFeatureRow) error {
	if len(rows) == 0 {
		return nil
	}

	now := time.Now().UTC()
	data := make([][]interface{}, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		data = append(data, []interface{}{
			runID, r.User, r.MeanLoginHour, r.MeanLogoutHour, r.FilesPerDay,
			r.UsbPerDay, r.EmailsPerDay, r.OutOfSessionAccess, r.DegreeCentrality,
			r.BetweennessCentrality, r.KeywordFlag, r.SubjectLen, r.Sentiment,
			r.IsRedTeam, now,
		})
	}

	if err := s.clickhouse.BatchInsert(ctx, insertMergedFeaturesQuery, data); err != nil {
		return fmt.Errorf("failed to insert merged features: %w", err)
	}

	util.Info("merged features persisted to clickhouse",
		util.String("run_id", runID),
		util.Int("rows", len(rows)),
	)
	return nil
}

// SaveScores batch-inserts per-detector anomaly scores for one run.
func (s *AnalyticsStore) SaveScores(ctx context.Context, runID string, rows []model.ScoreRow) error {
	if len(rows) == 0 {
		return nil
	}

	now := time.Now().UTC()
	data := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		data = append(data, []interface{}{
			runID, r.User, r.IsRedTeam, r.IsolationScore, r.BoundaryScore,
			r.ReconstructionScore, now,
		})
	}

	if err := s.clickhouse.BatchInsert(ctx, insertScoresQuery, data); err != nil {
		return fmt.Errorf("failed to insert anomaly scores: %w", err)
	}

	util.Info("anomaly scores persisted to clickhouse",
		util.String("run_id", runID),
		util.Int("rows", len(rows)),
	)
	return nil
}
