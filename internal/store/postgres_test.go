package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khamari/khamari-api/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_GetFarm_NotOwned(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, owner_id, name, type, district, upazila, created_at FROM farms`).
		WithArgs("farm-1", "other-user").
		WillReturnError(pgx.ErrNoRows)

	farm, err := s.GetFarm(context.Background(), "farm-1", "other-user")
	require.NoError(t, err)
	assert.Nil(t, farm)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetFarm_Found(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	created := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, owner_id, name, type, district, upazila, created_at FROM farms`).
		WithArgs("farm-1", "user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "name", "type", "district", "upazila", "created_at"}).
			AddRow("farm-1", "user-1", "আমার খামার", "mixed", "রাজশাহী", "পবা", created))

	farm, err := s.GetFarm(context.Background(), "farm-1", "user-1")
	require.NoError(t, err)
	require.NotNil(t, farm)
	assert.Equal(t, "রাজশাহী", farm.District)
	assert.Equal(t, "user-1", farm.OwnerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListAlertsCreatedSince(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	since := time.Now().Add(-24 * time.Hour)
	created := time.Now().Add(-2 * time.Hour)
	mock.ExpectQuery(`SELECT id, user_id, farm_id, type, severity, title, message, read, created_at[\s]+FROM alerts`).
		WithArgs("user-1", "farm-1", since).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "farm_id", "type", "severity", "title", "message", "read", "created_at"}).
			AddRow("a-1", "user-1", "farm-1", "weather", "high", "অতিরিক্ত আর্দ্রতা", "ছত্রাক রোগের ঝুঁকি", false, created))

	alerts, err := s.ListAlertsCreatedSince(context.Background(), "user-1", "farm-1", since)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "অতিরিক্ত আর্দ্রতা", alerts[0].Title)
	assert.Equal(t, model.SeverityHigh, alerts[0].Severity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertAlerts_AssignsIDs(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO alerts`).
		WithArgs(pgxmock.AnyArg(), "user-1", "farm-1", "weather", "high",
			"ঝড়ের সতর্কতা", "প্রবল বাতাস আসছে", false, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	n, err := s.InsertAlerts(context.Background(), []model.Alert{{
		UserID:   "user-1",
		FarmID:   "farm-1",
		Type:     "weather",
		Severity: model.SeverityHigh,
		Title:    "ঝড়ের সতর্কতা",
		Message:  "প্রবল বাতাস আসছে",
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertTasks_Bulk(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectCopyFrom(pgx.Identifier{"farm_tasks"},
		[]string{"id", "farm_id", "title", "title_bn", "due_date", "priority", "task_type", "description", "source", "created_at"}).
		WillReturnResult(2)

	due := time.Now().Add(48 * time.Hour)
	n, err := s.InsertTasks(context.Background(), []model.FarmTask{
		{FarmID: "farm-1", Title: "Irrigate rice field", TitleBn: "ধান ক্ষেতে সেচ দিন", DueDate: due, Priority: model.PriorityHigh, TaskType: model.TaskIrrigation, Source: model.TaskSourceAI},
		{FarmID: "farm-1", Title: "Apply urea", TitleBn: "ইউরিয়া প্রয়োগ করুন", DueDate: due, Priority: model.PriorityMedium, TaskType: model.TaskFertilizer, Source: model.TaskSourceAI},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LatestWeatherLog_Empty(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, farm_id, temperature, humidity, wind_kmh, condition, created_at[\s]+FROM weather_logs`).
		WithArgs("farm-1").
		WillReturnError(pgx.ErrNoRows)

	wl, err := s.LatestWeatherLog(context.Background(), "farm-1")
	require.NoError(t, err)
	assert.Nil(t, wl)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CountRecentOTPs(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	since := time.Now().Add(-60 * time.Second)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM email_otps`).
		WithArgs("farmer@example.com", since).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

	count, err := s.CountRecentOTPs(context.Background(), "farmer@example.com", since)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetActiveOTP_ExpiredOrMissing(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	now := time.Now()
	mock.ExpectQuery(`SELECT id, email, code, expires_at, used, created_at[\s]+FROM email_otps`).
		WithArgs("farmer@example.com", "123456", now).
		WillReturnError(pgx.ErrNoRows)

	otp, err := s.GetActiveOTP(context.Background(), "farmer@example.com", "123456", now)
	require.NoError(t, err)
	assert.Nil(t, otp)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_MarkOTPUsed_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE email_otps SET used = true`).
		WithArgs("missing-otp").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.MarkOTPUsed(context.Background(), "missing-otp")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "otp not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeletePricesBefore(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	cutoff := time.Now().AddDate(0, 0, -7)
	mock.ExpectExec(`DELETE FROM market_prices WHERE price_date`).
		WithArgs(cutoff.Format("2006-01-02")).
		WillReturnResult(pgxmock.NewResult("DELETE", 12))

	n, err := s.DeletePricesBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
