// Package briefing assembles a farm's data into the Bengali context block
// the advisory prompts are built from.
package briefing

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/khamari/khamari-api/internal/model"
	"github.com/khamari/khamari-api/internal/store"
	"github.com/khamari/khamari-api/internal/weather"
)

// Snapshotter is the weather dependency of the builder.
type Snapshotter interface {
	Snapshot(ctx context.Context, district, upazila string) (*weather.Result, error)
}

// FarmContext holds everything fetched for one advisory invocation.
type FarmContext struct {
	Farm         *model.Farm
	Profile      *model.Profile
	Crops        []model.Crop
	Livestock    []model.Livestock
	Ponds        []model.FishPond
	Transactions []model.FinanceTransaction
	Weather      *weather.Result
	Text         string
}

// Builder fetches farm data and renders the context block.
type Builder struct {
	store   store.Store
	weather Snapshotter
	txLimit int
}

// NewBuilder wires a context builder. txLimit bounds the finance
// transaction read (most recent first).
func NewBuilder(st store.Store, snap Snapshotter, txLimit int) *Builder {
	if txLimit <= 0 {
		txLimit = 50
	}
	return &Builder{store: st, weather: snap, txLimit: txLimit}
}

// Build fetches profile, crops, livestock, ponds, and recent transactions
// in parallel, plus a weather snapshot for the farm's district. A database
// failure fails the build; a weather failure degrades to a context without
// weather, logged only.
func (b *Builder) Build(ctx context.Context, userID string, farm *model.Farm) (*FarmContext, error) {
	fc := &FarmContext{Farm: farm}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fc.Profile, err = b.store.GetProfile(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		fc.Crops, err = b.store.ListCrops(gctx, farm.ID)
		return err
	})
	g.Go(func() error {
		var err error
		fc.Livestock, err = b.store.ListLivestock(gctx, farm.ID)
		return err
	})
	g.Go(func() error {
		var err error
		fc.Ponds, err = b.store.ListFishPonds(gctx, farm.ID)
		return err
	})
	g.Go(func() error {
		var err error
		fc.Transactions, err = b.store.ListTransactions(gctx, farm.ID, b.txLimit)
		return err
	})
	g.Go(func() error {
		snap, err := b.weather.Snapshot(gctx, farm.District, farm.Upazila)
		if err != nil {
			zap.L().Warn("weather snapshot failed, building context without it",
				zap.String("farm_id", farm.ID),
				zap.Error(err),
			)
			return nil
		}
		fc.Weather = snap
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fc.Text = Render(fc)
	return fc, nil
}
