package features

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ueba-service/internal/bucketing"
	"ueba-service/internal/config"
	"ueba-service/internal/model"
)

func testPartitioner(workers int) *bucketing.Manager {
	return bucketing.NewManager(&config.Config{
		Bucketing: config.BucketingConfig{
			UserBuckets:  16,
			EventBuckets: 64,
			Workers:      workers,
		},
	})
}

func ts(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestExtractOnlyLoginUsersGetRows(t *testing.T) {
	logs := &model.EventLogs{
		Logins: []model.LoginEvent{
			{User: "user_1", Login: ts("2024-03-01 08:00"), Logout: ts("2024-03-01 16:00")},
		},
		FileAccesses: []model.FileAccessEvent{
			// user_2 never logs in, so it gets no feature row at all.
			{User: "user_2", File: "file_1", AccessTime: ts("2024-03-01 10:00")},
		},
	}

	rows, err := NewBehavioralExtractor(testPartitioner(4)).Extract(context.Background(), logs)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "user_1", rows[0].User)
}

func TestExtractZeroRatesForAbsentSignals(t *testing.T) {
	logs := &model.EventLogs{
		Logins: []model.LoginEvent{
			{User: "user_1", Login: ts("2024-03-01 09:00"), Logout: ts("2024-03-01 17:00")},
			{User: "user_1", Login: ts("2024-03-02 11:00"), Logout: ts("2024-03-02 19:00")},
		},
	}

	rows, err := NewBehavioralExtractor(testPartitioner(2)).Extract(context.Background(), logs)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.InDelta(t, 10.0, row.MeanLoginHour, 1e-12)
	assert.InDelta(t, 18.0, row.MeanLogoutHour, 1e-12)
	assert.Zero(t, row.FilesPerDay)
	assert.Zero(t, row.UsbPerDay)
	assert.Zero(t, row.EmailsPerDay)
	assert.Zero(t, row.OutOfSessionAccess)
}

func TestExtractPerDayRates(t *testing.T) {
	logs := &model.EventLogs{
		Logins: []model.LoginEvent{
			{User: "user_1", Login: ts("2024-03-01 00:00"), Logout: ts("2024-03-05 23:00")},
		},
		FileAccesses: []model.FileAccessEvent{
			// 3 accesses on day one, 1 on day two: mean over observed dates.
			{User: "user_1", File: "file_1", AccessTime: ts("2024-03-01 10:00")},
			{User: "user_1", File: "file_2", AccessTime: ts("2024-03-01 11:00")},
			{User: "user_1", File: "file_3", AccessTime: ts("2024-03-01 12:00")},
			{User: "user_1", File: "file_1", AccessTime: ts("2024-03-02 10:00")},
		},
		UsbUses: []model.UsbEvent{
			{User: "user_1", Device: "usb_1", PlugTime: ts("2024-03-01 13:00"), UnplugTime: ts("2024-03-01 13:30")},
		},
		Emails: []model.EmailEvent{
			{Sender: "user_1@company.com", Recipient: "user_9@company.com", Time: ts("2024-03-01 14:00"), Subject: "hello"},
			{Sender: "user_1@company.com", Recipient: "user_9@company.com", Time: ts("2024-03-03 14:00"), Subject: "again"},
		},
	}

	rows, err := NewBehavioralExtractor(testPartitioner(1)).Extract(context.Background(), logs)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.InDelta(t, 2.0, row.FilesPerDay, 1e-12)
	assert.InDelta(t, 1.0, row.UsbPerDay, 1e-12)
	assert.InDelta(t, 1.0, row.EmailsPerDay, 1e-12)
}

func TestOutOfSessionAccess(t *testing.T) {
	// One session [08:00, 16:00], one access at 02:00 (outside) and one
	// at 10:00 (inside).
	logs := &model.EventLogs{
		Logins: []model.LoginEvent{
			{User: "user_a", Login: ts("2024-03-01 08:00"), Logout: ts("2024-03-01 16:00")},
		},
		FileAccesses: []model.FileAccessEvent{
			{User: "user_a", File: "file_7", AccessTime: ts("2024-03-01 02:00")},
			{User: "user_a", File: "file_7", AccessTime: ts("2024-03-01 10:00")},
		},
	}

	rows, err := NewBehavioralExtractor(testPartitioner(1)).Extract(context.Background(), logs)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.InDelta(t, 1.0, rows[0].OutOfSessionAccess, 1e-12)
}

func TestOutOfSessionClosedInterval(t *testing.T) {
	logs := &model.EventLogs{
		Logins: []model.LoginEvent{
			{User: "user_a", Login: ts("2024-03-01 08:00"), Logout: ts("2024-03-01 16:00")},
		},
		FileAccesses: []model.FileAccessEvent{
			{User: "user_a", File: "f", AccessTime: ts("2024-03-01 08:00")},
			{User: "user_a", File: "f", AccessTime: ts("2024-03-01 16:00")},
		},
	}

	rows, err := NewBehavioralExtractor(testPartitioner(1)).Extract(context.Background(), logs)
	require.NoError(t, err)
	assert.Zero(t, rows[0].OutOfSessionAccess, "boundary accesses are in session")
}

func TestOutOfSessionMonotonicity(t *testing.T) {
	base := &model.EventLogs{
		Logins: []model.LoginEvent{
			{User: "user_a", Login: ts("2024-03-01 08:00"), Logout: ts("2024-03-01 16:00")},
		},
		FileAccesses: []model.FileAccessEvent{
			{User: "user_a", File: "f", AccessTime: ts("2024-03-01 02:00")},
		},
	}
	ex := NewBehavioralExtractor(testPartitioner(1))

	rows, err := ex.Extract(context.Background(), base)
	require.NoError(t, err)
	before := rows[0].OutOfSessionAccess

	// Adding an in-session access leaves the count unchanged.
	inSession := *base
	inSession.FileAccesses = append([]model.FileAccessEvent{}, base.FileAccesses...)
	inSession.FileAccesses = append(inSession.FileAccesses,
		model.FileAccessEvent{User: "user_a", File: "f", AccessTime: ts("2024-03-01 12:00")})
	rows, err = ex.Extract(context.Background(), &inSession)
	require.NoError(t, err)
	assert.Equal(t, before, rows[0].OutOfSessionAccess)

	// Adding an out-of-session access increases it.
	outSession := inSession
	outSession.FileAccesses = append([]model.FileAccessEvent{}, inSession.FileAccesses...)
	outSession.FileAccesses = append(outSession.FileAccesses,
		model.FileAccessEvent{User: "user_a", File: "f", AccessTime: ts("2024-03-01 23:00")})
	rows, err = ex.Extract(context.Background(), &outSession)
	require.NoError(t, err)
	assert.Equal(t, before+1, rows[0].OutOfSessionAccess)
}

func TestExtractDeterministicAcrossWorkerCounts(t *testing.T) {
	logs := &model.EventLogs{}
	for _, u := range []string{"user_3", "user_1", "user_2", "user_9", "user_5"} {
		logs.Logins = append(logs.Logins, model.LoginEvent{
			User: u, Login: ts("2024-03-01 09:00"), Logout: ts("2024-03-01 17:00"),
		})
	}

	serial, err := NewBehavioralExtractor(testPartitioner(1)).Extract(context.Background(), logs)
	require.NoError(t, err)
	parallel, err := NewBehavioralExtractor(testPartitioner(8)).Extract(context.Background(), logs)
	require.NoError(t, err)

	assert.Equal(t, serial, parallel)
	for i := 1; i < len(serial); i++ {
		assert.Less(t, serial[i-1].User, serial[i].User)
	}
}
