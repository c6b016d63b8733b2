// Package analysis produces yield and profit analyses from caller-supplied
// harvest and livestock records.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/khamari/khamari-api/internal/briefing"
	"github.com/khamari/khamari-api/internal/model"
	"github.com/khamari/khamari-api/internal/weather"
	"github.com/khamari/khamari-api/pkg/llm"
)

// Request is one production-analysis invocation. Both arrays are truncated
// to the configured cap and every free-text field is bounded and validated
// before any prompt is built.
type Request struct {
	HarvestRecords []model.HarvestRecord `json:"harvestRecords"`
	LivestockLogs  []model.LivestockLog  `json:"livestockLogs"`
	Language       string                `json:"language,omitempty"`
}

// Result is the structured analysis payload.
type Result struct {
	SummaryBn       string   `json:"summary_bn"`
	TotalRevenue    float64  `json:"total_revenue"`
	TotalCost       float64  `json:"total_cost"`
	Profit          float64  `json:"profit"`
	YieldInsightsBn []string `json:"yield_insights_bn,omitempty"`
	SuggestionsBn   []string `json:"suggestions_bn,omitempty"`
}

// Service runs the production analysis.
type Service struct {
	llm       llm.Client
	model     string
	maxTokens int64
	listCap   int
}

// NewService wires the analysis service. listCap bounds both input arrays.
func NewService(client llm.Client, modelID string, maxTokens int64, listCap int) *Service {
	if listCap <= 0 {
		listCap = 100
	}
	return &Service{llm: client, model: modelID, maxTokens: maxTokens, listCap: listCap}
}

func analysisTool() llm.Tool {
	return llm.Tool{
		Name:        "report_production_analysis",
		Description: "Report a yield and profit analysis of the supplied farm production records.",
		InputSchema: map[string]any{
			"summary_bn":    map[string]any{"type": "string"},
			"total_revenue": map[string]any{"type": "number"},
			"total_cost":    map[string]any{"type": "number"},
			"profit":        map[string]any{"type": "number"},
			"yield_insights_bn": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"suggestions_bn": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		Required: []string{"summary_bn", "total_revenue", "total_cost", "profit"},
	}
}

const fieldMaxLen = 100

// truncate limits a string to n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// cleanField trims, truncates, and canonicalizes one free-text field.
// Fields that fail the shared character class report false.
func cleanField(s string) (string, bool) {
	s = truncate(strings.TrimSpace(s), fieldMaxLen)
	if !weather.ValidFreeText(s) {
		return "", false
	}
	return briefing.Canonical(s), true
}

// sanitizeInputs bounds every free-text field before it reaches a prompt.
// Records whose names fail the character class are dropped; a bad unit is
// blanked rather than dropping the row.
func sanitizeInputs(req *Request) {
	dropped := 0

	harvest := make([]model.HarvestRecord, 0, len(req.HarvestRecords))
	for _, h := range req.HarvestRecords {
		crop, ok := cleanField(h.Crop)
		if !ok {
			dropped++
			continue
		}
		h.Crop = crop
		h.Unit, _ = cleanField(h.Unit)
		harvest = append(harvest, h)
	}

	logs := make([]model.LivestockLog, 0, len(req.LivestockLogs))
	for _, l := range req.LivestockLogs {
		animal, ok := cleanField(l.AnimalType)
		if !ok {
			dropped++
			continue
		}
		l.AnimalType = animal
		l.Unit, _ = cleanField(l.Unit)
		logs = append(logs, l)
	}

	if dropped > 0 {
		zap.L().Warn("dropped production records with invalid text fields",
			zap.Int("records", dropped))
	}
	req.HarvestRecords = harvest
	req.LivestockLogs = logs
}

// Analyze truncates and sanitizes the inputs, renders the prompt, and runs
// the forced tool call. A malformed payload degrades to an empty result.
func (s *Service) Analyze(ctx context.Context, req Request) (*Result, error) {
	if len(req.HarvestRecords) > s.listCap {
		req.HarvestRecords = req.HarvestRecords[:s.listCap]
	}
	if len(req.LivestockLogs) > s.listCap {
		req.LivestockLogs = req.LivestockLogs[:s.listCap]
	}
	sanitizeInputs(&req)

	raw, usage, err := s.llm.CreateToolCall(ctx, llm.MessageRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		Messages:  []llm.Message{{Role: "user", Content: s.prompt(req)}},
	}, analysisTool())
	if err != nil {
		return nil, err
	}
	if usage != nil {
		usage.LogCost(s.model, "production_analysis")
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		zap.L().Warn("analysis payload failed to decode, degrading to empty", zap.Error(err))
		result = Result{}
	}
	return &result, nil
}

func (s *Service) prompt(req Request) string {
	var sb strings.Builder
	sb.WriteString("নিচের উৎপাদন রেকর্ড বিশ্লেষণ করে report_production_analysis টুল দিয়ে ফলন ও লাভের বিশ্লেষণ দিন।\n\nফসল সংগ্রহ:\n")
	if len(req.HarvestRecords) == 0 {
		sb.WriteString("কোনো তথ্য নেই\n")
	}
	for _, h := range req.HarvestRecords {
		sb.WriteString(fmt.Sprintf("• %s: %.1f %s", h.Crop, h.Quantity, h.Unit))
		if h.Revenue > 0 {
			sb.WriteString(fmt.Sprintf(", আয় %.0f টাকা", h.Revenue))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\nপশু উৎপাদন:\n")
	if len(req.LivestockLogs) == 0 {
		sb.WriteString("কোনো তথ্য নেই\n")
	}
	for _, l := range req.LivestockLogs {
		sb.WriteString(fmt.Sprintf("• %s: %.1f %s", l.AnimalType, l.Production, l.Unit))
		if l.Cost > 0 {
			sb.WriteString(fmt.Sprintf(", খরচ %.0f টাকা", l.Cost))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
