// Package suggest produces short care suggestions for a single farm item.
package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/khamari/khamari-api/internal/briefing"
	"github.com/khamari/khamari-api/internal/weather"
	"github.com/khamari/khamari-api/pkg/llm"
)

// ErrInvalidItem is returned when the item name is missing or fails the
// free-text character class. Maps to 400.
var ErrInvalidItem = errors.New("suggest: invalid item input")

// Request is one farm-item-suggestions invocation. Free-text fields are
// truncated to maxLen runes and must pass the shared character class.
type Request struct {
	ItemType    string `json:"itemType"` // "crop", "livestock", "fish"
	ItemName    string `json:"itemName"`
	GrowthStage string `json:"growthStage,omitempty"`
	SoilType    string `json:"soilType,omitempty"`
	Breed       string `json:"breed,omitempty"`
	AnimalType  string `json:"animalType,omitempty"`
	Language    string `json:"language,omitempty"`
}

// Service generates item suggestions.
type Service struct {
	llm       llm.Client
	model     string
	maxTokens int64
	maxLen    int
}

// NewService wires the suggestion service. maxLen bounds each free-text field.
func NewService(client llm.Client, modelID string, maxTokens int64, maxLen int) *Service {
	if maxLen <= 0 {
		maxLen = 100
	}
	return &Service{llm: client, model: modelID, maxTokens: maxTokens, maxLen: maxLen}
}

func suggestionsTool() llm.Tool {
	return llm.Tool{
		Name:        "generate_suggestions",
		Description: "Generate short practical care suggestions in Bengali for the given farm item.",
		InputSchema: map[string]any{
			"suggestions": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		Required: []string{"suggestions"},
	}
}

// truncate limits a string to n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// sanitize truncates and normalizes one free-text field, rejecting values
// that fail the character class.
func (s *Service) sanitize(value string) (string, error) {
	value = truncate(strings.TrimSpace(value), s.maxLen)
	if !weather.ValidFreeText(value) {
		return "", ErrInvalidItem
	}
	return value, nil
}

// Suggest validates the request and runs the forced tool call. A malformed
// payload degrades to an empty list.
func (s *Service) Suggest(ctx context.Context, req Request) ([]string, error) {
	name, err := s.sanitize(req.ItemName)
	if err != nil || name == "" {
		return nil, ErrInvalidItem
	}
	name = briefing.Canonical(name)

	fields := []struct {
		label string
		value string
	}{
		{"বৃদ্ধির পর্যায়", req.GrowthStage},
		{"মাটির ধরন", req.SoilType},
		{"জাত", req.Breed},
		{"পশুর ধরন", req.AnimalType},
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("পণ্য: %s (%s)\n", name, req.ItemType))
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		clean, err := s.sanitize(f.value)
		if err != nil {
			return nil, err
		}
		sb.WriteString(fmt.Sprintf("%s: %s\n", f.label, briefing.Canonical(clean)))
	}
	sb.WriteString("\nএই তথ্যের ভিত্তিতে generate_suggestions টুল দিয়ে ৩-৫টি ব্যবহারিক পরিচর্যার পরামর্শ বাংলায় দিন।")

	raw, usage, err := s.llm.CreateToolCall(ctx, llm.MessageRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		Messages:  []llm.Message{{Role: "user", Content: sb.String()}},
	}, suggestionsTool())
	if err != nil {
		return nil, err
	}
	if usage != nil {
		usage.LogCost(s.model, "farm_item_suggestions")
	}

	var payload struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		zap.L().Warn("suggestions payload failed to decode, degrading to empty", zap.Error(err))
		return []string{}, nil
	}
	if payload.Suggestions == nil {
		payload.Suggestions = []string{}
	}
	return payload.Suggestions, nil
}
