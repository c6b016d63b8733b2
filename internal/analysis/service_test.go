package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khamari/khamari-api/internal/model"
	"github.com/khamari/khamari-api/pkg/llm"
)

type capturingLLM struct {
	prompt  string
	payload json.RawMessage
}

func (c *capturingLLM) CreateMessage(context.Context, llm.MessageRequest) (*llm.MessageResponse, error) {
	return &llm.MessageResponse{}, nil
}

func (c *capturingLLM) CreateToolCall(_ context.Context, req llm.MessageRequest, _ llm.Tool) (json.RawMessage, *llm.TokenUsage, error) {
	c.prompt = req.Messages[0].Content
	return c.payload, &llm.TokenUsage{}, nil
}

func (c *capturingLLM) StreamMessage(context.Context, llm.MessageRequest, func(string) error) error {
	return nil
}

func TestAnalyze_TruncatesOversizedInputs(t *testing.T) {
	client := &capturingLLM{payload: json.RawMessage(`{"summary_bn":"ঠিক আছে","total_revenue":0,"total_cost":0,"profit":0}`)}
	svc := NewService(client, "claude-sonnet-4-5-20250929", 2048, 100)

	req := Request{}
	for i := 0; i < 150; i++ {
		req.HarvestRecords = append(req.HarvestRecords, model.HarvestRecord{
			Crop: fmt.Sprintf("crop-%d", i), Quantity: 1, Unit: "kg",
		})
	}

	_, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 100, strings.Count(client.prompt, "crop-"), "records beyond the cap are dropped before prompting")
	assert.NotContains(t, client.prompt, "crop-100")
}

func TestAnalyze_BoundsFreeTextFields(t *testing.T) {
	client := &capturingLLM{payload: json.RawMessage(`{"summary_bn":"ঠিক আছে","total_revenue":0,"total_cost":0,"profit":0}`)}
	svc := NewService(client, "claude-sonnet-4-5-20250929", 2048, 100)

	_, err := svc.Analyze(context.Background(), Request{
		HarvestRecords: []model.HarvestRecord{
			{Crop: strings.Repeat("ক", 5000), Quantity: 1, Unit: "kg"},
			{Crop: "rice", Quantity: 2, Unit: "কেজি"},
		},
		LivestockLogs: []model.LivestockLog{
			{AnimalType: strings.Repeat("গ", 500), Production: 3, Unit: "লিটার"},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, client.prompt, strings.Repeat("ক", 100))
	assert.NotContains(t, client.prompt, strings.Repeat("ক", 101), "crop names are cut to 100 runes")
	assert.Contains(t, client.prompt, strings.Repeat("গ", 100))
	assert.NotContains(t, client.prompt, strings.Repeat("গ", 101), "animal types are cut to 100 runes")
	assert.Contains(t, client.prompt, "ধান", "slang spellings are canonicalized")
}

func TestAnalyze_DropsRecordsWithInvalidText(t *testing.T) {
	client := &capturingLLM{payload: json.RawMessage(`{"summary_bn":"ঠিক আছে","total_revenue":0,"total_cost":0,"profit":0}`)}
	svc := NewService(client, "claude-sonnet-4-5-20250929", 2048, 100)

	_, err := svc.Analyze(context.Background(), Request{
		HarvestRecords: []model.HarvestRecord{
			{Crop: "<script>hack</script>", Quantity: 1, Unit: "kg"},
			{Crop: "ধান", Quantity: 2, Unit: "কেজি"},
		},
		LivestockLogs: []model.LivestockLog{
			{AnimalType: "গরু", Production: 3, Unit: "x;y"},
		},
	})
	require.NoError(t, err)
	assert.NotContains(t, client.prompt, "hack", "records failing the character class never reach the prompt")
	assert.Contains(t, client.prompt, "ধান")
	assert.Contains(t, client.prompt, "গরু", "a bad unit blanks the field, not the record")
	assert.NotContains(t, client.prompt, "x;y")
}

func TestAnalyze_ParsesToolPayload(t *testing.T) {
	client := &capturingLLM{payload: json.RawMessage(`{
		"summary_bn": "ভালো ফলন",
		"total_revenue": 52000,
		"total_cost": 31000,
		"profit": 21000,
		"yield_insights_bn": ["ধানের ফলন গড়ের উপরে"],
		"suggestions_bn": ["খরচ কমাতে জৈব সার ব্যবহার করুন"]
	}`)}
	svc := NewService(client, "claude-sonnet-4-5-20250929", 2048, 100)

	got, err := svc.Analyze(context.Background(), Request{
		HarvestRecords: []model.HarvestRecord{{Crop: "ধান", Quantity: 500, Unit: "কেজি", Revenue: 52000}},
		LivestockLogs:  []model.LivestockLog{{AnimalType: "গরু", Production: 12, Unit: "লিটার", Cost: 300}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ভালো ফলন", got.SummaryBn)
	assert.Equal(t, float64(21000), got.Profit)
	assert.Len(t, got.YieldInsightsBn, 1)
	assert.Contains(t, client.prompt, "ধান")
	assert.Contains(t, client.prompt, "গরু")
}

func TestAnalyze_MalformedPayloadDegradesToEmpty(t *testing.T) {
	client := &capturingLLM{payload: json.RawMessage(`not json`)}
	svc := NewService(client, "claude-sonnet-4-5-20250929", 2048, 100)

	got, err := svc.Analyze(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, &Result{}, got)
}
