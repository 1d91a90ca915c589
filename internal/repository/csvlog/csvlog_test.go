package csvlog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ueba-service/internal/config"
	"ueba-service/internal/model"
)

func writeLogs(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
}

func fullLogDir(t *testing.T) string {
	dir := t.TempDir()
	writeLogs(t, dir, map[string]string{
		"logins.csv": "user,login,logout\n" +
			"u1,2024-01-01 09:00:00,2024-01-01 17:00:00\n" +
			"u2,2024-01-01 08:30:00,2024-01-01 16:00:00\n",
		"file_access.csv": "user,file,access_time\n" +
			"u1,file_7,2024-01-01 10:00:00\n",
		"usb_usage.csv": "user,device,plug_time,unplug_time\n" +
			"u2,usb_3,2024-01-01 09:00:00,2024-01-01 09:30:00\n",
		"emails.csv": "sender,recipient,time,subject\n" +
			"u1@company.com,u2@company.com,2024-01-01 11:00:00,quarterly numbers\n",
		"red_team_users.csv": "user\nu2\n",
	})
	return dir
}

func readerFor(dir string) *Reader {
	return NewReader(&config.Config{Data: config.DataConfig{LogDir: dir}})
}

func TestLoadEvents(t *testing.T) {
	logs, err := readerFor(fullLogDir(t)).LoadEvents(context.Background())
	require.NoError(t, err)

	require.Len(t, logs.Logins, 2)
	assert.Equal(t, "u1", logs.Logins[0].User)
	assert.Equal(t, 9, logs.Logins[0].Login.Hour())
	assert.Equal(t, 17, logs.Logins[0].Logout.Hour())

	require.Len(t, logs.FileAccesses, 1)
	assert.Equal(t, "file_7", logs.FileAccesses[0].File)

	require.Len(t, logs.UsbUses, 1)
	assert.Equal(t, "usb_3", logs.UsbUses[0].Device)

	require.Len(t, logs.Emails, 1)
	assert.Equal(t, "u1@company.com", logs.Emails[0].Sender)
	assert.Equal(t, "quarterly numbers", logs.Emails[0].Subject)

	assert.True(t, logs.IsRedTeam("u2"))
	assert.False(t, logs.IsRedTeam("u1"))
}

func TestLoadEventsMissingMandatoryFile(t *testing.T) {
	dir := fullLogDir(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "emails.csv")))

	_, err := readerFor(dir).LoadEvents(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrDataSource)
	assert.Contains(t, err.Error(), "emails.csv")
}

func TestLoadEventsMissingRedTeamFileIsOptional(t *testing.T) {
	dir := fullLogDir(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "red_team_users.csv")))

	logs, err := readerFor(dir).LoadEvents(context.Background())
	require.NoError(t, err)
	assert.Empty(t, logs.RedTeam)
}

func TestLoadEventsBadHeader(t *testing.T) {
	dir := fullLogDir(t)
	writeLogs(t, dir, map[string]string{
		"logins.csv": "user,start,end\nu1,2024-01-01 09:00:00,2024-01-01 17:00:00\n",
	})

	_, err := readerFor(dir).LoadEvents(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrSchema)
	assert.Contains(t, err.Error(), "logins.csv")
}

func TestLoadEventsBadTimestamp(t *testing.T) {
	dir := fullLogDir(t)
	writeLogs(t, dir, map[string]string{
		"file_access.csv": "user,file,access_time\nu1,file_7,not-a-time\n",
	})

	_, err := readerFor(dir).LoadEvents(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrSchema)
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoadEventsAcceptsRFC3339(t *testing.T) {
	dir := fullLogDir(t)
	writeLogs(t, dir, map[string]string{
		"logins.csv": "user,login,logout\nu1,2024-01-01T09:00:00Z,2024-01-01T17:00:00Z\n",
	})

	logs, err := readerFor(dir).LoadEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, logs.Logins, 1)
	assert.Equal(t, 9, logs.Logins[0].Login.Hour())
}

func TestWriterRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(&config.Config{Data: config.DataConfig{OutputDir: dir}})

	require.NoError(t, w.WriteFeatures([]model.FeatureRow{
		{User: "u1", MeanLoginHour: 9.5, FilesPerDay: 3},
	}))
	require.NoError(t, w.WriteMergedFeatures([]model.MergedFeatureRow{
		{User: "u1", MeanLoginHour: 9.5, IsRedTeam: true},
	}))
	require.NoError(t, w.WriteScores([]model.ScoreRow{
		{User: "u1", IsolationScore: 0.7, BoundaryScore: -0.2, ReconstructionScore: 0.01},
	}))

	features, err := os.ReadFile(filepath.Join(dir, "features.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(features), "user,mean_login_hour")
	assert.Contains(t, string(features), "u1,9.5")

	merged, err := os.ReadFile(filepath.Join(dir, "merged_features.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(merged), "is_red_team")
	assert.Contains(t, string(merged), "true")

	scores, err := os.ReadFile(filepath.Join(dir, "anomaly_scores.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(scores), "isolation_score,boundary_score,reconstruction_score")
	assert.Contains(t, string(scores), "-0.2")
}
