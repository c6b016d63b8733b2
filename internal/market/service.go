// Package market serves the daily market price list: cached rows when
// today's already exist, a fresh model generation otherwise.
package market

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/khamari/khamari-api/internal/model"
	"github.com/khamari/khamari-api/internal/store"
	"github.com/khamari/khamari-api/pkg/llm"
)

// Service generates and caches market prices.
type Service struct {
	store      store.Store
	llm        llm.Client
	model      string
	maxTokens  int64
	retainDays int
	now        func() time.Time
}

// NewService wires the market price service.
func NewService(st store.Store, client llm.Client, modelID string, maxTokens int64, retainDays int) *Service {
	if retainDays <= 0 {
		retainDays = 7
	}
	return &Service{
		store:      st,
		llm:        client,
		model:      modelID,
		maxTokens:  maxTokens,
		retainDays: retainDays,
		now:        time.Now,
	}
}

func pricesTool() llm.Tool {
	return llm.Tool{
		Name:        "generate_market_prices",
		Description: "Generate today's typical wholesale market price ranges for common Bangladeshi agricultural products, in BDT.",
		InputSchema: map[string]any{
			"prices": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"item":      map[string]any{"type": "string"},
						"item_bn":   map[string]any{"type": "string"},
						"unit":      map[string]any{"type": "string"},
						"min_price": map[string]any{"type": "number"},
						"max_price": map[string]any{"type": "number"},
						"market":    map[string]any{"type": "string"},
					},
					"required": []string{"item", "item_bn", "unit", "min_price", "max_price"},
				},
			},
		},
		Required: []string{"prices"},
	}
}

const pricesPrompt = `আজকের বাংলাদেশের পাইকারি বাজারে সাধারণ কৃষিপণ্যের (ধান, চাল, গম, আলু, পেঁয়াজ, ডিম, দুধ, গরুর মাংস, মুরগি, রুই মাছ, তেলাপিয়া ইত্যাদি, অন্তত ১৫টি পণ্য) দামের পরিসর generate_market_prices টুল দিয়ে দিন। টাকায়, বাস্তবসম্মত পরিসরে।`

// Today returns today's price list. Cached rows win; otherwise a fresh
// generation is persisted and rows older than the retention window are
// pruned. A parse failure returns an empty list without caching it.
func (s *Service) Today(ctx context.Context) ([]model.MarketPrice, error) {
	today := s.now().UTC()

	cached, err := s.store.ListPricesForDate(ctx, today)
	if err != nil {
		return nil, err
	}
	if len(cached) > 0 {
		return cached, nil
	}

	raw, usage, err := s.llm.CreateToolCall(ctx, llm.MessageRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		Messages:  []llm.Message{{Role: "user", Content: pricesPrompt}},
	}, pricesTool())
	if err != nil {
		return nil, err
	}
	if usage != nil {
		usage.LogCost(s.model, "market_prices")
	}

	var payload struct {
		Prices []model.MarketPrice `json:"prices"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		zap.L().Warn("market price payload failed to decode, degrading to empty", zap.Error(err))
		return []model.MarketPrice{}, nil
	}
	for i := range payload.Prices {
		payload.Prices[i].PriceDate = today
	}

	if len(payload.Prices) > 0 {
		if _, err := s.store.InsertPrices(ctx, payload.Prices); err != nil {
			zap.L().Warn("market price write failed", zap.Error(err))
		}
		cutoff := today.AddDate(0, 0, -s.retainDays)
		if n, err := s.store.DeletePricesBefore(ctx, cutoff); err != nil {
			zap.L().Warn("market price prune failed", zap.Error(err))
		} else if n > 0 {
			zap.L().Debug("pruned old market prices", zap.Int("rows", n))
		}
	}
	return payload.Prices, nil
}
