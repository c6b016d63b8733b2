package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/khamari/khamari-api/internal/config"
	"github.com/khamari/khamari-api/internal/db"
	"github.com/khamari/khamari-api/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the hottest store operations.
var preparedStatements = map[string]string{
	"get_farm":          `SELECT id, owner_id, name, type, district, upazila, created_at FROM farms WHERE id = $1 AND owner_id = $2`,
	"list_alerts_since": `SELECT id, user_id, farm_id, type, severity, title, message, read, created_at FROM alerts WHERE user_id = $1 AND farm_id = $2 AND created_at >= $3 ORDER BY created_at ASC`,
	"insert_alert":      `INSERT INTO alerts (id, user_id, farm_id, type, severity, title, message, read, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
	"latest_weather":    `SELECT id, farm_id, temperature, humidity, wind_kmh, condition, created_at FROM weather_logs WHERE farm_id = $1 ORDER BY created_at DESC LIMIT 1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *config.PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS farms (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	owner_id   TEXT NOT NULL,
	name       TEXT NOT NULL,
	type       TEXT NOT NULL DEFAULT '',
	district   TEXT NOT NULL DEFAULT '',
	upazila    TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS profiles (
	user_id   TEXT PRIMARY KEY,
	full_name TEXT NOT NULL DEFAULT '',
	phone     TEXT NOT NULL DEFAULT '',
	district  TEXT NOT NULL DEFAULT '',
	upazila   TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS crops (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	farm_id         TEXT NOT NULL REFERENCES farms(id),
	name            TEXT NOT NULL,
	variety         TEXT NOT NULL DEFAULT '',
	growth_stage    TEXT NOT NULL DEFAULT '',
	land_size       DOUBLE PRECISION NOT NULL DEFAULT 0,
	land_unit       TEXT NOT NULL DEFAULT '',
	planting_date   TIMESTAMPTZ,
	harvest_date    TIMESTAMPTZ,
	irrigation_date TIMESTAMPTZ,
	fertilizer_date TIMESTAMPTZ,
	soil_type       TEXT NOT NULL DEFAULT '',
	health_status   TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS livestock (
	id                TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	farm_id           TEXT NOT NULL REFERENCES farms(id),
	animal_type       TEXT NOT NULL,
	breed             TEXT NOT NULL DEFAULT '',
	count             INTEGER NOT NULL DEFAULT 0,
	age_group         TEXT NOT NULL DEFAULT '',
	feed_cost         DOUBLE PRECISION NOT NULL DEFAULT 0,
	medicine_cost     DOUBLE PRECISION NOT NULL DEFAULT 0,
	daily_production  DOUBLE PRECISION NOT NULL DEFAULT 0,
	production_unit   TEXT NOT NULL DEFAULT '',
	last_illness_date TIMESTAMPTZ,
	vaccinations      JSONB
);

CREATE TABLE IF NOT EXISTS fish_ponds (
	id                 TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	farm_id            TEXT NOT NULL REFERENCES farms(id),
	pond_number        INTEGER NOT NULL DEFAULT 1,
	area               DOUBLE PRECISION NOT NULL DEFAULT 0,
	depth              DOUBLE PRECISION NOT NULL DEFAULT 0,
	water_source       TEXT NOT NULL DEFAULT '',
	species            JSONB,
	fingerling_count   INTEGER NOT NULL DEFAULT 0,
	fingerling_cost    DOUBLE PRECISION NOT NULL DEFAULT 0,
	feed_amount        DOUBLE PRECISION NOT NULL DEFAULT 0,
	feed_cost          DOUBLE PRECISION NOT NULL DEFAULT 0,
	average_weight     DOUBLE PRECISION NOT NULL DEFAULT 0,
	expected_sale_date TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS finance_transactions (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	farm_id     TEXT NOT NULL REFERENCES farms(id),
	type        TEXT NOT NULL,
	category    TEXT NOT NULL DEFAULT '',
	amount      DOUBLE PRECISION NOT NULL DEFAULT 0,
	date        TIMESTAMPTZ NOT NULL,
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
	read       BOOLEAN NOT NULL DEFAULT false,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS farm_tasks (
	id          TEXT PRIMARY KEY,
	farm_id     TEXT NOT NULL,
	title       TEXT NOT NULL,
	title_bn    TEXT NOT NULL DEFAULT '',
	due_date    TIMESTAMPTZ NOT NULL,
	priority    TEXT NOT NULL DEFAULT 'medium',
	task_type   TEXT NOT NULL DEFAULT 'other',
	description TEXT NOT NULL DEFAULT '',
	source      TEXT NOT NULL DEFAULT 'manual',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS ai_reports (
	id              TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL,
	farm_id         TEXT NOT NULL,
	recommendations TEXT NOT NULL,
	top_urgency     TEXT NOT NULL DEFAULT '',
	top_confidence  DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS weather_logs (
	id          TEXT PRIMARY KEY,
	farm_id     TEXT NOT NULL,
	temperature DOUBLE PRECISION NOT NULL,
	humidity    DOUBLE PRECISION NOT NULL,
	wind_kmh    DOUBLE PRECISION NOT NULL,
	condition   TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS images (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL,
	farm_id      TEXT NOT NULL,
	kind         TEXT NOT NULL,
	storage_path TEXT NOT NULL DEFAULT '',
	diagnosis    JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS market_prices (
	id         TEXT PRIMARY KEY,
	item       TEXT NOT NULL,
	item_bn    TEXT NOT NULL DEFAULT '',
	unit       TEXT NOT NULL DEFAULT '',
	min_price  DOUBLE PRECISION NOT NULL DEFAULT 0,
	max_price  DOUBLE PRECISION NOT NULL DEFAULT 0,
	market     TEXT NOT NULL DEFAULT '',
	price_date DATE NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS email_otps (
	id         TEXT PRIMARY KEY,
	email      TEXT NOT NULL,
	code       TEXT NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	used       BOOLEAN NOT NULL DEFAULT false,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_crops_farm_id ON crops(farm_id);
CREATE INDEX IF NOT EXISTS idx_livestock_farm_id ON livestock(farm_id);
CREATE INDEX IF NOT EXISTS idx_fish_ponds_farm_id ON fish_ponds(farm_id);
CREATE INDEX IF NOT EXISTS idx_tx_farm_date ON finance_transactions(farm_id, date DESC);
CREATE INDEX IF NOT EXISTS idx_alerts_user_farm_created ON alerts(user_id, farm_id, created_at);
CREATE INDEX IF NOT EXISTS idx_tasks_farm_due ON farm_tasks(farm_id, due_date);
CREATE INDEX IF NOT EXISTS idx_weather_logs_farm_created ON weather_logs(farm_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_market_prices_date ON market_prices(price_date);
CREATE INDEX IF NOT EXISTS idx_otps_email_created ON email_otps(email, created_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) GetFarm(ctx context.Context, farmID, userID string) (*model.Farm, error) {
	var f model.Farm
	err := s.pool.QueryRow(ctx,
		`SELECT id, owner_id, name, type, district, upazila, created_at FROM farms WHERE id = $1 AND owner_id = $2`,
		farmID, userID,
	).Scan(&f.ID, &f.OwnerID, &f.Name, &f.Type, &f.District, &f.Upazila, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get farm %s", farmID)
	}
	return &f, nil
}

func (s *PostgresStore) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	var p model.Profile
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, full_name, phone, district, upazila FROM profiles WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &p.FullName, &p.Phone, &p.District, &p.Upazila)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: get profile")
	}
	return &p, nil
}

func (s *PostgresStore) ListCrops(ctx context.Context, farmID string) ([]model.Crop, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, farm_id, name, variety, growth_stage, land_size, land_unit,
		        planting_date, harvest_date, irrigation_date, fertilizer_date, soil_type, health_status
		 FROM crops WHERE farm_id = $1 ORDER BY name`,
		farmID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list crops")
	}
	defer rows.Close()

	var crops []model.Crop
	for rows.Next() {
		var c model.Crop
		if err := rows.Scan(&c.ID, &c.FarmID, &c.Name, &c.Variety, &c.GrowthStage,
			&c.LandSize, &c.LandUnit, &c.PlantingDate, &c.HarvestDate,
			&c.IrrigationDate, &c.FertilizerDate, &c.SoilType, &c.HealthStatus); err != nil {
			return nil, eris.Wrap(err, "postgres: scan crop")
		}
		crops = append(crops, c)
	}
	return crops, eris.Wrap(rows.Err(), "postgres: list crops iterate")
}

func (s *PostgresStore) ListLivestock(ctx context.Context, farmID string) ([]model.Livestock, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, farm_id, animal_type, breed, count, age_group, feed_cost, medicine_cost,
		        daily_production, production_unit, last_illness_date, vaccinations
		 FROM livestock WHERE farm_id = $1 ORDER BY animal_type`,
		farmID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list livestock")
	}
	defer rows.Close()

	var herds []model.Livestock
	for rows.Next() {
		var l model.Livestock
		var vaccJSON []byte
		if err := rows.Scan(&l.ID, &l.FarmID, &l.AnimalType, &l.Breed, &l.Count, &l.AgeGroup,
			&l.FeedCost, &l.MedicineCost, &l.DailyProduction, &l.ProductionUnit,
			&l.LastIllnessDate, &vaccJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan livestock")
		}
		if len(vaccJSON) > 0 {
			if err := json.Unmarshal(vaccJSON, &l.Vaccinations); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal vaccinations")
			}
		}
		herds = append(herds, l)
	}
	return herds, eris.Wrap(rows.Err(), "postgres: list livestock iterate")
}

func (s *PostgresStore) ListFishPonds(ctx context.Context, farmID string) ([]model.FishPond, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, farm_id, pond_number, area, depth, water_source, species, fingerling_count,
		        fingerling_cost, feed_amount, feed_cost, average_weight, expected_sale_date
		 FROM fish_ponds WHERE farm_id = $1 ORDER BY pond_number`,
		farmID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list fish ponds")
	}
	defer rows.Close()

	var ponds []model.FishPond
	for rows.Next() {
		var p model.FishPond
		var speciesJSON []byte
		if err := rows.Scan(&p.ID, &p.FarmID, &p.PondNumber, &p.Area, &p.Depth, &p.WaterSource,
			&speciesJSON, &p.FingerlingCount, &p.FingerlingCost, &p.FeedAmount,
			&p.FeedCost, &p.AverageWeight, &p.ExpectedSaleDate); err != nil {
			return nil, eris.Wrap(err, "postgres: scan fish pond")
		}
		if len(speciesJSON) > 0 {
			if err := json.Unmarshal(speciesJSON, &p.Species); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal species")
			}
		}
		ponds = append(ponds, p)
	}
	return ponds, eris.Wrap(rows.Err(), "postgres: list fish ponds iterate")
}

func (s *PostgresStore) ListTransactions(ctx context.Context, farmID string, limit int) ([]model.FinanceTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, farm_id, type, category, amount, date, description
		 FROM finance_transactions WHERE farm_id = $1 ORDER BY date DESC LIMIT $2`,
		farmID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list transactions")
	}
	defer rows.Close()

	var txs []model.FinanceTransaction
	for rows.Next() {
		var t model.FinanceTransaction
		if err := rows.Scan(&t.ID, &t.FarmID, &t.Type, &t.Category, &t.Amount, &t.Date, &t.Description); err != nil {
			return nil, eris.Wrap(err, "postgres: scan transaction")
		}
		txs = append(txs, t)
	}
	return txs, eris.Wrap(rows.Err(), "postgres: list transactions iterate")
}

func (s *PostgresStore) ListAlertsCreatedSince(ctx context.Context, userID, farmID string, since time.Time) ([]model.Alert, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, farm_id, type, severity, title, message, read, created_at
		 FROM alerts WHERE user_id = $1 AND farm_id = $2 AND created_at >= $3 ORDER BY created_at ASC`,
		userID, farmID, since,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list alerts since")
	}
	defer rows.Close()

	var alerts []model.Alert
	for rows.Next() {
		var a model.Alert
		if err := rows.Scan(&a.ID, &a.UserID, &a.FarmID, &a.Type, &a.Severity,
			&a.Title, &a.Message, &a.Read, &a.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan alert")
		}
		alerts = append(alerts, a)
	}
	return alerts, eris.Wrap(rows.Err(), "postgres: list alerts iterate")
}

func (s *PostgresStore) InsertAlerts(ctx context.Context, alerts []model.Alert) (int, error) {
	inserted := 0
	for _, a := range alerts {
		if a.ID == "" {
			a.ID = uuid.New().String()
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = time.Now().UTC()
		}
		_, err := s.pool.Exec(ctx,
			`INSERT INTO alerts (id, user_id, farm_id, type, severity, title, message, read, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			a.ID, a.UserID, a.FarmID, a.Type, string(a.Severity), a.Title, a.Message, a.Read, a.CreatedAt,
		)
		if err != nil {
			return inserted, eris.Wrap(err, "postgres: insert alert")
		}
		inserted++
	}
	return inserted, nil
}

func (s *PostgresStore) InsertTasks(ctx context.Context, tasks []model.FarmTask) (int, error) {
	rows := make([][]any, 0, len(tasks))
	now := time.Now().UTC()
	for _, t := range tasks {
		id := t.ID
		if id == "" {
			id = uuid.New().String()
		}
		createdAt := t.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		rows = append(rows, []any{
			id, t.FarmID, t.Title, t.TitleBn, t.DueDate,
			string(t.Priority), string(t.TaskType), t.Description, string(t.Source), createdAt,
		})
	}

	n, err := db.CopyFrom(ctx, s.pool, "farm_tasks",
		[]string{"id", "farm_id", "title", "title_bn", "due_date", "priority", "task_type", "description", "source", "created_at"},
		rows,
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: insert tasks")
	}
	return int(n), nil
}

func (s *PostgresStore) InsertReport(ctx context.Context, report model.AIReport) error {
	if report.ID == "" {
		report.ID = uuid.New().String()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO ai_reports (id, user_id, farm_id, recommendations, top_urgency, top_confidence, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		report.ID, report.UserID, report.FarmID, report.Recommendations,
		string(report.TopUrgency), report.TopConfidence, report.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert report")
}

func (s *PostgresStore) LatestWeatherLog(ctx context.Context, farmID string) (*model.WeatherLog, error) {
	var wl model.WeatherLog
	err := s.pool.QueryRow(ctx,
		`SELECT id, farm_id, temperature, humidity, wind_kmh, condition, created_at
		 FROM weather_logs WHERE farm_id = $1 ORDER BY created_at DESC LIMIT 1`,
		farmID,
	).Scan(&wl.ID, &wl.FarmID, &wl.Temperature, &wl.Humidity, &wl.WindKmh, &wl.Condition, &wl.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: latest weather log")
	}
	return &wl, nil
}

func (s *PostgresStore) InsertWeatherLog(ctx context.Context, wl model.WeatherLog) error {
	if wl.ID == "" {
		wl.ID = uuid.New().String()
	}
	if wl.CreatedAt.IsZero() {
		wl.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO weather_logs (id, farm_id, temperature, humidity, wind_kmh, condition, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		wl.ID, wl.FarmID, wl.Temperature, wl.Humidity, wl.WindKmh, wl.Condition, wl.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert weather log")
}

func (s *PostgresStore) InsertImage(ctx context.Context, img model.ImageRecord) error {
	if img.ID == "" {
		img.ID = uuid.New().String()
	}
	if img.CreatedAt.IsZero() {
		img.CreatedAt = time.Now().UTC()
	}
	diagJSON, err := json.Marshal(img.Diagnosis)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal diagnosis")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO images (id, user_id, farm_id, kind, storage_path, diagnosis, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		img.ID, img.UserID, img.FarmID, img.Kind, img.StoragePath, diagJSON, img.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert image")
}

func (s *PostgresStore) ListPricesForDate(ctx context.Context, day time.Time) ([]model.MarketPrice, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, item, item_bn, unit, min_price, max_price, market, price_date, created_at
		 FROM market_prices WHERE price_date = $1 ORDER BY item`,
		day.Format("2006-01-02"),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list prices")
	}
	defer rows.Close()

	var prices []model.MarketPrice
	for rows.Next() {
		var p model.MarketPrice
		if err := rows.Scan(&p.ID, &p.Item, &p.ItemBn, &p.Unit, &p.MinPrice, &p.MaxPrice,
			&p.Market, &p.PriceDate, &p.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan price")
		}
		prices = append(prices, p)
	}
	return prices, eris.Wrap(rows.Err(), "postgres: list prices iterate")
}

func (s *PostgresStore) InsertPrices(ctx context.Context, prices []model.MarketPrice) (int, error) {
	inserted := 0
	now := time.Now().UTC()
	for _, p := range prices {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		_, err := s.pool.Exec(ctx,
			`INSERT INTO market_prices (id, item, item_bn, unit, min_price, max_price, market, price_date, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			p.ID, p.Item, p.ItemBn, p.Unit, p.MinPrice, p.MaxPrice, p.Market,
			p.PriceDate.Format("2006-01-02"), p.CreatedAt,
		)
		if err != nil {
			return inserted, eris.Wrap(err, "postgres: insert price")
		}
		inserted++
	}
	return inserted, nil
}

func (s *PostgresStore) DeletePricesBefore(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM market_prices WHERE price_date < $1`,
		cutoff.Format("2006-01-02"),
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete old prices")
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) CountRecentOTPs(ctx context.Context, email string, since time.Time) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM email_otps WHERE email = $1 AND created_at >= $2`,
		email, since,
	).Scan(&count)
	return count, eris.Wrap(err, "postgres: count recent otps")
}

func (s *PostgresStore) InsertOTP(ctx context.Context, otp model.OTP) error {
	if otp.ID == "" {
		otp.ID = uuid.New().String()
	}
	if otp.CreatedAt.IsZero() {
		otp.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO email_otps (id, email, code, expires_at, used, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		otp.ID, otp.Email, otp.Code, otp.ExpiresAt, otp.Used, otp.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert otp")
}

func (s *PostgresStore) GetActiveOTP(ctx context.Context, email, code string, now time.Time) (*model.OTP, error) {
	var o model.OTP
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, code, expires_at, used, created_at
		 FROM email_otps
		 WHERE email = $1 AND code = $2 AND used = false AND expires_at > $3
		 ORDER BY created_at DESC LIMIT 1`,
		email, code, now,
	).Scan(&o.ID, &o.Email, &o.Code, &o.ExpiresAt, &o.Used, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: get active otp")
	}
	return &o, nil
}

func (s *PostgresStore) MarkOTPUsed(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE email_otps SET used = true WHERE id = $1`,
		id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: mark otp used %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("otp not found: %s", id)
	}
	return nil
}
