// Package advisory runs the AI advisory pipeline: build the farm context,
// call the model, parse the structured result, and persist derived records.
package advisory

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/khamari/khamari-api/internal/briefing"
	"github.com/khamari/khamari-api/internal/config"
	"github.com/khamari/khamari-api/internal/model"
	"github.com/khamari/khamari-api/internal/store"
	"github.com/khamari/khamari-api/internal/weather"
	"github.com/khamari/khamari-api/pkg/llm"
)

// ErrFarmNotOwned is returned when the farm id is missing or does not
// belong to the caller. The HTTP layer maps it to 401 before any model
// call happens.
var ErrFarmNotOwned = errors.New("advisory: farm not found for user")

// Service dispatches advisory requests.
type Service struct {
	store     store.Store
	llm       llm.Client
	builder   *briefing.Builder
	model     string
	maxTokens int64
	titleCap  int
	now       func() time.Time
}

// NewService wires the advisory dispatcher.
func NewService(st store.Store, client llm.Client, builder *briefing.Builder, anthropicCfg config.AnthropicConfig, titleCap int) *Service {
	return &Service{
		store:     st,
		llm:       client,
		builder:   builder,
		model:     anthropicCfg.Model,
		maxTokens: anthropicCfg.MaxTokens,
		titleCap:  titleCap,
		now:       time.Now,
	}
}

// ownedFarm loads the farm and checks ownership. Missing id and unowned
// farm are the same failure to the caller.
func (s *Service) ownedFarm(ctx context.Context, userID, farmID string) (*model.Farm, error) {
	if farmID == "" {
		return nil, ErrFarmNotOwned
	}
	farm, err := s.store.GetFarm(ctx, farmID, userID)
	if err != nil {
		return nil, err
	}
	if farm == nil {
		return nil, ErrFarmNotOwned
	}
	return farm, nil
}

// RecommendResult is the recommendations-mode response payload.
type RecommendResult struct {
	Recommendations []model.Recommendation `json:"recommendations"`
	Weather         *weather.Result        `json:"weather,omitempty"`
}

// Recommend runs the recommendations mode: context, forced tool call,
// tolerant parse, then persistence. A parse failure returns an empty list;
// persistence failures are logged but never fail a request that already has
// advice to return.
func (s *Service) Recommend(ctx context.Context, userID, farmID string) (*RecommendResult, error) {
	farm, err := s.ownedFarm(ctx, userID, farmID)
	if err != nil {
		return nil, err
	}
	fc, err := s.builder.Build(ctx, userID, farm)
	if err != nil {
		return nil, err
	}

	raw, usage, err := s.llm.CreateToolCall(ctx, llm.MessageRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		System:    advisorySystemPrompt,
		Messages:  []llm.Message{{Role: "user", Content: recommendationsPrompt(fc.Text)}},
	}, recommendationsTool())
	if err != nil {
		return nil, err
	}
	if usage != nil {
		usage.LogCost(s.model, "recommendations")
	}

	recs := ParseRecommendations(raw)
	s.persistRecommendations(ctx, userID, farmID, recs)

	if recs == nil {
		recs = []model.Recommendation{}
	}
	return &RecommendResult{Recommendations: recs, Weather: fc.Weather}, nil
}

// persistRecommendations writes the audit report and turns urgent
// recommendations into alert candidates run through the daily dedup policy.
func (s *Service) persistRecommendations(ctx context.Context, userID, farmID string, recs []model.Recommendation) {
	report := model.AIReport{
		UserID: userID,
		FarmID: farmID,
	}
	if data, err := json.Marshal(recs); err == nil {
		report.Recommendations = string(data)
	}
	if len(recs) > 0 {
		report.TopUrgency = recs[0].Urgency
		report.TopConfidence = recs[0].Confidence
	}
	if err := s.store.InsertReport(ctx, report); err != nil {
		zap.L().Warn("ai report write failed", zap.String("farm_id", farmID), zap.Error(err))
	}

	var candidates []model.Alert
	for _, r := range recs {
		if r.Urgency != model.UrgencyUrgent {
			continue
		}
		title := r.TitleBn
		if title == "" {
			title = r.Title
		}
		message := r.DescriptionBn
		if message == "" {
			message = r.Description
		}
		candidates = append(candidates, model.Alert{
			UserID:   userID,
			FarmID:   farmID,
			Type:     string(r.Type),
			Severity: model.SeverityHigh,
			Title:    title,
			Message:  message,
		})
	}
	if len(candidates) == 0 {
		return
	}

	now := s.now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	existing, err := s.store.ListAlertsCreatedSince(ctx, userID, farmID, dayStart)
	if err != nil {
		zap.L().Warn("alert dedup read failed, skipping alert write",
			zap.String("farm_id", farmID), zap.Error(err))
		return
	}
	fresh := store.FilterNewAlerts(existing, candidates, s.titleCap)
	if len(fresh) == 0 {
		return
	}
	if _, err := s.store.InsertAlerts(ctx, fresh); err != nil {
		zap.L().Warn("alert write failed", zap.String("farm_id", farmID), zap.Error(err))
	}
}

// ScheduleResult is the smart_schedule response payload.
type ScheduleResult struct {
	Tasks []model.FarmTask `json:"tasks"`
	Saved int              `json:"saved"`
}

// Schedule runs the smart_schedule mode. Generated tasks are inserted
// unconditionally; repeated invocations accumulate rows.
func (s *Service) Schedule(ctx context.Context, userID, farmID string) (*ScheduleResult, error) {
	farm, err := s.ownedFarm(ctx, userID, farmID)
	if err != nil {
		return nil, err
	}
	fc, err := s.builder.Build(ctx, userID, farm)
	if err != nil {
		return nil, err
	}

	raw, usage, err := s.llm.CreateToolCall(ctx, llm.MessageRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		System:    advisorySystemPrompt,
		Messages:  []llm.Message{{Role: "user", Content: schedulePrompt(fc.Text)}},
	}, scheduleTool())
	if err != nil {
		return nil, err
	}
	if usage != nil {
		usage.LogCost(s.model, "smart_schedule")
	}

	tasks := ParseTasks(raw, farmID)
	saved := 0
	if len(tasks) > 0 {
		saved, err = s.store.InsertTasks(ctx, tasks)
		if err != nil {
			return nil, err
		}
	}
	if tasks == nil {
		tasks = []model.FarmTask{}
	}
	return &ScheduleResult{Tasks: tasks, Saved: saved}, nil
}

// FinanceStream runs the finance_analysis mode, forwarding text deltas to
// onDelta as they arrive. Cancellation of ctx stops the upstream read loop.
func (s *Service) FinanceStream(ctx context.Context, userID, farmID string, onDelta func(text string) error) error {
	farm, err := s.ownedFarm(ctx, userID, farmID)
	if err != nil {
		return err
	}
	fc, err := s.builder.Build(ctx, userID, farm)
	if err != nil {
		return err
	}

	return s.llm.StreamMessage(ctx, llm.MessageRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		System:    advisorySystemPrompt,
		Messages:  []llm.Message{{Role: "user", Content: financePrompt(fc.Text)}},
	}, onDelta)
}
