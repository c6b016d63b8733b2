// Package weather resolves locations, fetches conditions from the provider,
// and derives deterministic threshold alerts.
package weather

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/khamari/khamari-api/internal/config"
	"github.com/khamari/khamari-api/internal/model"
	"github.com/khamari/khamari-api/internal/store"
)

// Provider is the subset of the weather client the engine needs.
type Provider interface {
	Geocoder
	Current(ctx context.Context, lat, lon float64) (*Conditions, error)
	Forecast(ctx context.Context, lat, lon float64) ([]ForecastDay, error)
}

// Request is one weather-engine invocation.
type Request struct {
	District string `json:"district,omitempty"`
	Upazila  string `json:"upazila,omitempty"`
	FarmID   string `json:"farmId,omitempty"`
}

// Result is the weather-engine response payload.
type Result struct {
	Location Location      `json:"location"`
	Current  *Conditions   `json:"current"`
	Forecast []ForecastDay `json:"forecast"`
	Alerts   []model.Alert `json:"alerts"`
}

// Engine runs the full weather flow: resolve, fetch in parallel, derive
// alerts, and optionally persist per-farm side effects.
type Engine struct {
	provider    Provider
	resolver    *Resolver
	store       store.Store
	logInterval time.Duration
	titleCap    int
	now         func() time.Time
}

// NewEngine wires the weather engine.
func NewEngine(provider Provider, st store.Store, weatherCfg config.WeatherConfig, titleCap int) *Engine {
	return &Engine{
		provider:    provider,
		resolver:    NewResolver(provider, weatherCfg.DefaultDistrict, weatherCfg.DefaultLat, weatherCfg.DefaultLon),
		store:       st,
		logInterval: weatherCfg.LogInterval(),
		titleCap:    titleCap,
		now:         time.Now,
	}
}

// Snapshot fetches conditions for the resolved location without side
// effects. Current and forecast are fetched in parallel; a forecast failure
// degrades to an empty list while a current-conditions failure fails the
// call.
func (e *Engine) Snapshot(ctx context.Context, district, upazila string) (*Result, error) {
	loc := e.resolver.Resolve(ctx, district, upazila)

	var (
		current  *Conditions
		forecast []ForecastDay
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = e.provider.Current(gctx, loc.Lat, loc.Lon)
		return err
	})
	g.Go(func() error {
		days, err := e.provider.Forecast(gctx, loc.Lat, loc.Lon)
		if err != nil {
			zap.L().Warn("forecast fetch failed, degrading to empty",
				zap.String("location", loc.Name),
				zap.Error(err),
			)
			return nil
		}
		forecast = days
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Result{
		Location: loc,
		Current:  current,
		Forecast: forecast,
		Alerts:   RuleAlerts(current, forecast),
	}, nil
}

// Run executes a weather-engine request for a user. When the request names
// a farm the user owns, derived alerts pass through the daily dedup policy
// and a WeatherLog row is written at most once per rolling hour. Side-effect
// failures are logged, never surfaced; the fetched weather is still good.
func (e *Engine) Run(ctx context.Context, userID string, req Request) (*Result, error) {
	result, err := e.Snapshot(ctx, req.District, req.Upazila)
	if err != nil {
		return nil, err
	}

	if req.FarmID != "" {
		e.recordForFarm(ctx, userID, req.FarmID, result)
	}
	return result, nil
}

func (e *Engine) recordForFarm(ctx context.Context, userID, farmID string, result *Result) {
	farm, err := e.store.GetFarm(ctx, farmID, userID)
	if err != nil {
		zap.L().Warn("farm lookup failed, skipping weather side effects",
			zap.String("farm_id", farmID), zap.Error(err))
		return
	}
	if farm == nil {
		zap.L().Debug("farm not owned by caller, skipping weather side effects",
			zap.String("farm_id", farmID))
		return
	}

	now := e.now().UTC()

	if len(result.Alerts) > 0 {
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		existing, err := e.store.ListAlertsCreatedSince(ctx, userID, farmID, dayStart)
		if err != nil {
			zap.L().Warn("alert dedup read failed, skipping alert write",
				zap.String("farm_id", farmID), zap.Error(err))
		} else {
			candidates := make([]model.Alert, len(result.Alerts))
			copy(candidates, result.Alerts)
			for i := range candidates {
				candidates[i].UserID = userID
				candidates[i].FarmID = farmID
			}
			fresh := store.FilterNewAlerts(existing, candidates, e.titleCap)
			if len(fresh) > 0 {
				if _, err := e.store.InsertAlerts(ctx, fresh); err != nil {
					zap.L().Warn("alert write failed",
						zap.String("farm_id", farmID), zap.Error(err))
				}
			}
		}
	}

	latest, err := e.store.LatestWeatherLog(ctx, farmID)
	if err != nil {
		zap.L().Warn("weather log read failed",
			zap.String("farm_id", farmID), zap.Error(err))
		return
	}
	if latest != nil && now.Sub(latest.CreatedAt) < e.logInterval {
		return
	}
	wl := model.WeatherLog{
		FarmID:      farmID,
		Temperature: result.Current.Temperature,
		Humidity:    result.Current.Humidity,
		WindKmh:     result.Current.WindKmh,
		Condition:   result.Current.Condition,
		CreatedAt:   now,
	}
	if err := e.store.InsertWeatherLog(ctx, wl); err != nil {
		zap.L().Warn("weather log write failed",
			zap.String("farm_id", farmID), zap.Error(err))
	}
}
