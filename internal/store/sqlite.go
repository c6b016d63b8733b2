package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/khamari/khamari-api/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. It exists for local
// development and tests; production runs against Postgres.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS farms (
	id         TEXT PRIMARY KEY,
	owner_id   TEXT NOT NULL,
	name       TEXT NOT NULL,
	type       TEXT NOT NULL DEFAULT '',
	district   TEXT NOT NULL DEFAULT '',
	upazila    TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS profiles (
	user_id   TEXT PRIMARY KEY,
	full_name TEXT NOT NULL DEFAULT '',
	phone     TEXT NOT NULL DEFAULT '',
	district  TEXT NOT NULL DEFAULT '',
	upazila   TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS crops (
	id              TEXT PRIMARY KEY,
	farm_id         TEXT NOT NULL REFERENCES farms(id),
	name            TEXT NOT NULL,
	variety         TEXT NOT NULL DEFAULT '',
	growth_stage    TEXT NOT NULL DEFAULT '',
	land_size       REAL NOT NULL DEFAULT 0,
	land_unit       TEXT NOT NULL DEFAULT '',
	planting_date   DATETIME,
	harvest_date    DATETIME,
	irrigation_date DATETIME,
	fertilizer_date DATETIME,
	soil_type       TEXT NOT NULL DEFAULT '',
	health_status   TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS livestock (
	id                TEXT PRIMARY KEY,
	farm_id           TEXT NOT NULL REFERENCES farms(id),
	animal_type       TEXT NOT NULL,
	breed             TEXT NOT NULL DEFAULT '',
	count             INTEGER NOT NULL DEFAULT 0,
	age_group         TEXT NOT NULL DEFAULT '',
	feed_cost         REAL NOT NULL DEFAULT 0,
	medicine_cost     REAL NOT NULL DEFAULT 0,
	daily_production  REAL NOT NULL DEFAULT 0,
	production_unit   TEXT NOT NULL DEFAULT '',
	last_illness_date DATETIME,
	vaccinations      TEXT
);

CREATE TABLE IF NOT EXISTS fish_ponds (
	id                 TEXT PRIMARY KEY,
	farm_id            TEXT NOT NULL REFERENCES farms(id),
	pond_number        INTEGER NOT NULL DEFAULT 1,
	area               REAL NOT NULL DEFAULT 0,
	depth              REAL NOT NULL DEFAULT 0,
	water_source       TEXT NOT NULL DEFAULT '',
	species            TEXT,
	fingerling_count   INTEGER NOT NULL DEFAULT 0,
	fingerling_cost    REAL NOT NULL DEFAULT 0,
	feed_amount        REAL NOT NULL DEFAULT 0,
	feed_cost          REAL NOT NULL DEFAULT 0,
	average_weight     REAL NOT NULL DEFAULT 0,
	expected_sale_date DATETIME
);

CREATE TABLE IF NOT EXISTS finance_transactions (
	id          TEXT PRIMARY KEY,
	farm_id     TEXT NOT NULL REFERENCES farms(id),
	type        TEXT NOT NULL,
	category    TEXT NOT NULL DEFAULT '',
	amount      REAL NOT NULL DEFAULT 0,
	date        DATETIME NOT NULL,
	description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS alerts (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	farm_id    TEXT NOT NULL,
	type       TEXT NOT NULL,
	severity   TEXT NOT NULL,
	title      TEXT NOT NULL,
	message    TEXT NOT NULL,
	read       INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS farm_tasks (
	id          TEXT PRIMARY KEY,
	farm_id     TEXT NOT NULL,
	title       TEXT NOT NULL,
	title_bn    TEXT NOT NULL DEFAULT '',
	due_date    DATETIME NOT NULL,
	priority    TEXT NOT NULL DEFAULT 'medium',
	task_type   TEXT NOT NULL DEFAULT 'other',
	description TEXT NOT NULL DEFAULT '',
	source      TEXT NOT NULL DEFAULT 'manual',
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS ai_reports (
	id              TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL,
	farm_id         TEXT NOT NULL,
	recommendations TEXT NOT NULL,
	top_urgency     TEXT NOT NULL DEFAULT '',
	top_confidence  REAL NOT NULL DEFAULT 0,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS weather_logs (
	id          TEXT PRIMARY KEY,
	farm_id     TEXT NOT NULL,
	temperature REAL NOT NULL,
	humidity    REAL NOT NULL,
	wind_kmh    REAL NOT NULL,
	condition   TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS images (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL,
	farm_id      TEXT NOT NULL,
	kind         TEXT NOT NULL,
	storage_path TEXT NOT NULL DEFAULT '',
	diagnosis    TEXT NOT NULL,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS market_prices (
	id         TEXT PRIMARY KEY,
	item       TEXT NOT NULL,
	item_bn    TEXT NOT NULL DEFAULT '',
	unit       TEXT NOT NULL DEFAULT '',
	min_price  REAL NOT NULL DEFAULT 0,
	max_price  REAL NOT NULL DEFAULT 0,
	market     TEXT NOT NULL DEFAULT '',
	price_date TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS email_otps (
	id         TEXT PRIMARY KEY,
	email      TEXT NOT NULL,
	code       TEXT NOT NULL,
	expires_at DATETIME NOT NULL,
	used       INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_crops_farm_id ON crops(farm_id);
CREATE INDEX IF NOT EXISTS idx_livestock_farm_id ON livestock(farm_id);
CREATE INDEX IF NOT EXISTS idx_fish_ponds_farm_id ON fish_ponds(farm_id);
CREATE INDEX IF NOT EXISTS idx_tx_farm_date ON finance_transactions(farm_id, date DESC);
CREATE INDEX IF NOT EXISTS idx_alerts_user_farm_created ON alerts(user_id, farm_id, created_at);
CREATE INDEX IF NOT EXISTS idx_otps_email_created ON email_otps(email, created_at DESC);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetFarm(ctx context.Context, farmID, userID string) (*model.Farm, error) {
	var f model.Farm
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, type, district, upazila, created_at FROM farms WHERE id = ? AND owner_id = ?`,
		farmID, userID,
	).Scan(&f.ID, &f.OwnerID, &f.Name, &f.Type, &f.District, &f.Upazila, &f.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get farm %s", farmID)
	}
	return &f, nil
}

func (s *SQLiteStore) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	var p model.Profile
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, full_name, phone, district, upazila FROM profiles WHERE user_id = ?`,
		userID,
	).Scan(&p.UserID, &p.FullName, &p.Phone, &p.District, &p.Upazila)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get profile")
	}
	return &p, nil
}

func (s *SQLiteStore) ListCrops(ctx context.Context, farmID string) ([]model.Crop, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, farm_id, name, variety, growth_stage, land_size, land_unit,
		        planting_date, harvest_date, irrigation_date, fertilizer_date, soil_type, health_status
		 FROM crops WHERE farm_id = ? ORDER BY name`,
		farmID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list crops")
	}
	defer rows.Close()

	var crops []model.Crop
	for rows.Next() {
		var c model.Crop
		if err := rows.Scan(&c.ID, &c.FarmID, &c.Name, &c.Variety, &c.GrowthStage,
			&c.LandSize, &c.LandUnit, &c.PlantingDate, &c.HarvestDate,
			&c.IrrigationDate, &c.FertilizerDate, &c.SoilType, &c.HealthStatus); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan crop")
		}
		crops = append(crops, c)
	}
	return crops, eris.Wrap(rows.Err(), "sqlite: list crops iterate")
}

func (s *SQLiteStore) ListLivestock(ctx context.Context, farmID string) ([]model.Livestock, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, farm_id, animal_type, breed, count, age_group, feed_cost, medicine_cost,
		        daily_production, production_unit, last_illness_date, vaccinations
		 FROM livestock WHERE farm_id = ? ORDER BY animal_type`,
		farmID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list livestock")
	}
	defer rows.Close()

	var herds []model.Livestock
	for rows.Next() {
		var l model.Livestock
		var vaccJSON sql.NullString
		if err := rows.Scan(&l.ID, &l.FarmID, &l.AnimalType, &l.Breed, &l.Count, &l.AgeGroup,
			&l.FeedCost, &l.MedicineCost, &l.DailyProduction, &l.ProductionUnit,
			&l.LastIllnessDate, &vaccJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan livestock")
		}
		if vaccJSON.Valid && vaccJSON.String != "" {
			if err := json.Unmarshal([]byte(vaccJSON.String), &l.Vaccinations); err != nil {
				return nil, eris.Wrap(err, "sqlite: unmarshal vaccinations")
			}
		}
		herds = append(herds, l)
	}
	return herds, eris.Wrap(rows.Err(), "sqlite: list livestock iterate")
}

func (s *SQLiteStore) ListFishPonds(ctx context.Context, farmID string) ([]model.FishPond, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, farm_id, pond_number, area, depth, water_source, species, fingerling_count,
		        fingerling_cost, feed_amount, feed_cost, average_weight, expected_sale_date
		 FROM fish_ponds WHERE farm_id = ? ORDER BY pond_number`,
		farmID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list fish ponds")
	}
	defer rows.Close()

	var ponds []model.FishPond
	for rows.Next() {
		var p model.FishPond
		var speciesJSON sql.NullString
		if err := rows.Scan(&p.ID, &p.FarmID, &p.PondNumber, &p.Area, &p.Depth, &p.WaterSource,
			&speciesJSON, &p.FingerlingCount, &p.FingerlingCost, &p.FeedAmount,
			&p.FeedCost, &p.AverageWeight, &p.ExpectedSaleDate); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan fish pond")
		}
		if speciesJSON.Valid && speciesJSON.String != "" {
			if err := json.Unmarshal([]byte(speciesJSON.String), &p.Species); err != nil {
				return nil, eris.Wrap(err, "sqlite: unmarshal species")
			}
		}
		ponds = append(ponds, p)
	}
	return ponds, eris.Wrap(rows.Err(), "sqlite: list fish ponds iterate")
}

func (s *SQLiteStore) ListTransactions(ctx context.Context, farmID string, limit int) ([]model.FinanceTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, farm_id, type, category, amount, date, description
		 FROM finance_transactions WHERE farm_id = ? ORDER BY date DESC LIMIT ?`,
		farmID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list transactions")
	}
	defer rows.Close()

	var txs []model.FinanceTransaction
	for rows.Next() {
		var t model.FinanceTransaction
		if err := rows.Scan(&t.ID, &t.FarmID, &t.Type, &t.Category, &t.Amount, &t.Date, &t.Description); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan transaction")
		}
		txs = append(txs, t)
	}
	return txs, eris.Wrap(rows.Err(), "sqlite: list transactions iterate")
}

func (s *SQLiteStore) ListAlertsCreatedSince(ctx context.Context, userID, farmID string, since time.Time) ([]model.Alert, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, farm_id, type, severity, title, message, read, created_at
		 FROM alerts WHERE user_id = ? AND farm_id = ? AND created_at >= ? ORDER BY created_at ASC`,
		userID, farmID, since,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list alerts since")
	}
	defer rows.Close()

	var alerts []model.Alert
	for rows.Next() {
		var a model.Alert
		if err := rows.Scan(&a.ID, &a.UserID, &a.FarmID, &a.Type, &a.Severity,
			&a.Title, &a.Message, &a.Read, &a.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan alert")
		}
		alerts = append(alerts, a)
	}
	return alerts, eris.Wrap(rows.Err(), "sqlite: list alerts iterate")
}

func (s *SQLiteStore) InsertAlerts(ctx context.Context, alerts []model.Alert) (int, error) {
	inserted := 0
	for _, a := range alerts {
		if a.ID == "" {
			a.ID = uuid.New().String()
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = time.Now().UTC()
		}
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO alerts (id, user_id, farm_id, type, severity, title, message, read, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.UserID, a.FarmID, a.Type, string(a.Severity), a.Title, a.Message, a.Read, a.CreatedAt,
		)
		if err != nil {
			return inserted, eris.Wrap(err, "sqlite: insert alert")
		}
		inserted++
	}
	return inserted, nil
}

func (s *SQLiteStore) InsertTasks(ctx context.Context, tasks []model.FarmTask) (int, error) {
	inserted := 0
	now := time.Now().UTC()
	for _, t := range tasks {
		if t.ID == "" {
			t.ID = uuid.New().String()
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO farm_tasks (id, farm_id, title, title_bn, due_date, priority, task_type, description, source, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.FarmID, t.Title, t.TitleBn, t.DueDate,
			string(t.Priority), string(t.TaskType), t.Description, string(t.Source), t.CreatedAt,
		)
		if err != nil {
			return inserted, eris.Wrap(err, "sqlite: insert task")
		}
		inserted++
	}
	return inserted, nil
}

func (s *SQLiteStore) InsertReport(ctx context.Context, report model.AIReport) error {
	if report.ID == "" {
		report.ID = uuid.New().String()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ai_reports (id, user_id, farm_id, recommendations, top_urgency, top_confidence, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.ID, report.UserID, report.FarmID, report.Recommendations,
		string(report.TopUrgency), report.TopConfidence, report.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert report")
}

func (s *SQLiteStore) LatestWeatherLog(ctx context.Context, farmID string) (*model.WeatherLog, error) {
	var wl model.WeatherLog
	err := s.db.QueryRowContext(ctx,
		`SELECT id, farm_id, temperature, humidity, wind_kmh, condition, created_at
		 FROM weather_logs WHERE farm_id = ? ORDER BY created_at DESC LIMIT 1`,
		farmID,
	).Scan(&wl.ID, &wl.FarmID, &wl.Temperature, &wl.Humidity, &wl.WindKmh, &wl.Condition, &wl.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: latest weather log")
	}
	return &wl, nil
}

func (s *SQLiteStore) InsertWeatherLog(ctx context.Context, wl model.WeatherLog) error {
	if wl.ID == "" {
		wl.ID = uuid.New().String()
	}
	if wl.CreatedAt.IsZero() {
		wl.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO weather_logs (id, farm_id, temperature, humidity, wind_kmh, condition, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		wl.ID, wl.FarmID, wl.Temperature, wl.Humidity, wl.WindKmh, wl.Condition, wl.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert weather log")
}

func (s *SQLiteStore) InsertImage(ctx context.Context, img model.ImageRecord) error {
	if img.ID == "" {
		img.ID = uuid.New().String()
	}
	if img.CreatedAt.IsZero() {
		img.CreatedAt = time.Now().UTC()
	}
	diagJSON, err := json.Marshal(img.Diagnosis)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal diagnosis")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO images (id, user_id, farm_id, kind, storage_path, diagnosis, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		img.ID, img.UserID, img.FarmID, img.Kind, img.StoragePath, string(diagJSON), img.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert image")
}

func (s *SQLiteStore) ListPricesForDate(ctx context.Context, day time.Time) ([]model.MarketPrice, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, item, item_bn, unit, min_price, max_price, market, price_date, created_at
		 FROM market_prices WHERE price_date = ? ORDER BY item`,
		day.Format("2006-01-02"),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list prices")
	}
	defer rows.Close()

	var prices []model.MarketPrice
	for rows.Next() {
		var p model.MarketPrice
		var dateStr string
		if err := rows.Scan(&p.ID, &p.Item, &p.ItemBn, &p.Unit, &p.MinPrice, &p.MaxPrice,
			&p.Market, &dateStr, &p.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan price")
		}
		if d, err := time.Parse("2006-01-02", dateStr); err == nil {
			p.PriceDate = d
		}
		prices = append(prices, p)
	}
	return prices, eris.Wrap(rows.Err(), "sqlite: list prices iterate")
}

func (s *SQLiteStore) InsertPrices(ctx context.Context, prices []model.MarketPrice) (int, error) {
	inserted := 0
	now := time.Now().UTC()
	for _, p := range prices {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO market_prices (id, item, item_bn, unit, min_price, max_price, market, price_date, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Item, p.ItemBn, p.Unit, p.MinPrice, p.MaxPrice, p.Market,
			p.PriceDate.Format("2006-01-02"), p.CreatedAt,
		)
		if err != nil {
			return inserted, eris.Wrap(err, "sqlite: insert price")
		}
		inserted++
	}
	return inserted, nil
}

func (s *SQLiteStore) DeletePricesBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM market_prices WHERE price_date < ?`,
		cutoff.Format("2006-01-02"),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete old prices")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

func (s *SQLiteStore) CountRecentOTPs(ctx context.Context, email string, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM email_otps WHERE email = ? AND created_at >= ?`,
		email, since,
	).Scan(&count)
	return count, eris.Wrap(err, "sqlite: count recent otps")
}

func (s *SQLiteStore) InsertOTP(ctx context.Context, otp model.OTP) error {
	if otp.ID == "" {
		otp.ID = uuid.New().String()
	}
	if otp.CreatedAt.IsZero() {
		otp.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO email_otps (id, email, code, expires_at, used, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		otp.ID, otp.Email, otp.Code, otp.ExpiresAt, otp.Used, otp.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert otp")
}

func (s *SQLiteStore) GetActiveOTP(ctx context.Context, email, code string, now time.Time) (*model.OTP, error) {
	var o model.OTP
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, code, expires_at, used, created_at
		 FROM email_otps
		 WHERE email = ? AND code = ? AND used = 0 AND expires_at > ?
		 ORDER BY created_at DESC LIMIT 1`,
		email, code, now,
	).Scan(&o.ID, &o.Email, &o.Code, &o.ExpiresAt, &o.Used, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get active otp")
	}
	return &o, nil
}

func (s *SQLiteStore) MarkOTPUsed(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE email_otps SET used = 1 WHERE id = ?`,
		id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: mark otp used %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("otp not found: %s", id)
	}
	return nil
}
