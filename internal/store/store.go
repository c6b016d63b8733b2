package store

import (
	"context"
	"time"

	"github.com/khamari/khamari-api/internal/model"
)

// Store defines the persistence interface for the advisory pipeline and its
// companion endpoints. Reads feed the context builder; writes are the
// pipeline's derived records (alerts, tasks, reports, logs).
type Store interface {
	// Farm data reads. GetFarm checks ownership: it returns (nil, nil) when
	// no farm matches both the farm id and the user id.
	GetFarm(ctx context.Context, farmID, userID string) (*model.Farm, error)
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	ListCrops(ctx context.Context, farmID string) ([]model.Crop, error)
	ListLivestock(ctx context.Context, farmID string) ([]model.Livestock, error)
	ListFishPonds(ctx context.Context, farmID string) ([]model.FishPond, error)
	ListTransactions(ctx context.Context, farmID string, limit int) ([]model.FinanceTransaction, error)

	// Alerts
	ListAlertsCreatedSince(ctx context.Context, userID, farmID string, since time.Time) ([]model.Alert, error)
	InsertAlerts(ctx context.Context, alerts []model.Alert) (int, error)

	// Tasks (bulk, no dedup by design)
	InsertTasks(ctx context.Context, tasks []model.FarmTask) (int, error)

	// Reports
	InsertReport(ctx context.Context, report model.AIReport) error

	// Weather log (at most one row per farm per rolling hour)
	LatestWeatherLog(ctx context.Context, farmID string) (*model.WeatherLog, error)
	InsertWeatherLog(ctx context.Context, wl model.WeatherLog) error

	// Images
	InsertImage(ctx context.Context, img model.ImageRecord) error

	// Market prices
	ListPricesForDate(ctx context.Context, day time.Time) ([]model.MarketPrice, error)
	InsertPrices(ctx context.Context, prices []model.MarketPrice) (int, error)
	DeletePricesBefore(ctx context.Context, cutoff time.Time) (int, error)

	// OTP
	CountRecentOTPs(ctx context.Context, email string, since time.Time) (int, error)
	InsertOTP(ctx context.Context, otp model.OTP) error
	GetActiveOTP(ctx context.Context, email, code string, now time.Time) (*model.OTP, error)
	MarkOTPUsed(ctx context.Context, id string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
