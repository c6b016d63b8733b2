// Package llm wraps the Anthropic SDK behind an interface so the advisory
// services can be tested without the network.
package llm

import (
	"context"
	"encoding/json"
	"errors"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/khamari/khamari-api/internal/resilience"
)

// Client defines the model operations used by the advisory pipeline.
type Client interface {
	// CreateMessage sends a plain conversation and returns the text response.
	CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error)
	// CreateToolCall forces the named tool and returns its raw JSON input.
	// A response without a matching tool_use block is an error.
	CreateToolCall(ctx context.Context, req MessageRequest, tool Tool) (json.RawMessage, *TokenUsage, error)
	// StreamMessage streams text deltas to onDelta until the response ends,
	// onDelta returns an error, or ctx is canceled.
	StreamMessage(ctx context.Context, req MessageRequest, onDelta func(text string) error) error
}

// MessageRequest is our own request type for model calls.
type MessageRequest struct {
	Model       string
	MaxTokens   int64
	System      string
	Messages    []Message
	Temperature *float64
}

// Message represents a single conversational message. Image, when set, is
// attached before the text as a base64 block.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
	Image   *ImageSource
}

// ImageSource is a base64-encoded inline image.
type ImageSource struct {
	MediaType string // e.g. "image/jpeg"
	Data      string // base64, no data: prefix
}

// Tool describes a tool the model is forced to call.
type Tool struct {
	Name        string
	Description string
	InputSchema map[string]any // JSON Schema "properties" map
	Required    []string
}

// MessageResponse is our own response type from CreateMessage.
type MessageResponse struct {
	ID         string
	Model      string
	Text       string
	StopReason string
	Usage      TokenUsage
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
}

// modelPricing holds per-million-token pricing for known models.
var modelPricing = map[string][2]float64{
	// model → {input $/MTok, output $/MTok}
	"claude-haiku-4-5-20251001":  {0.80, 4.00},
	"claude-sonnet-4-5-20250929": {3.00, 15.00},
}

// EstimateCost computes an estimated cost in USD from a TokenUsage and model ID.
// Returns 0 for unknown models.
func (u TokenUsage) EstimateCost(model string) float64 {
	pricing, ok := modelPricing[model]
	if !ok {
		return 0
	}
	inCost := (float64(u.InputTokens) / 1e6) * pricing[0]
	outCost := (float64(u.OutputTokens) / 1e6) * pricing[1]
	return inCost + outCost
}

// LogCost logs token usage and estimated cost with structured zap fields.
func (u TokenUsage) LogCost(model, phase string) {
	zap.L().Info("cost attribution",
		zap.String("model", model),
		zap.String("phase", phase),
		zap.Int64("input_tokens", u.InputTokens),
		zap.Int64("output_tokens", u.OutputTokens),
		zap.Float64("estimated_cost_usd", u.EstimateCost(model)),
	)
}

// sdkClient implements Client using the official anthropic-sdk-go.
type sdkClient struct {
	client sdk.Client
}

// NewClient creates a new model client backed by the SDK.
func NewClient(apiKey string) Client {
	return &sdkClient{
		client: sdk.NewClient(
			option.WithAPIKey(apiKey),
		),
	}
}

func (c *sdkClient) CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	msg, err := c.client.Messages.New(ctx, toSDKParams(req))
	if err != nil {
		return nil, mapAPIError(err, "llm: create message")
	}
	return fromSDKMessage(msg), nil
}

func (c *sdkClient) CreateToolCall(ctx context.Context, req MessageRequest, tool Tool) (json.RawMessage, *TokenUsage, error) {
	params := toSDKParams(req)
	params.Tools = []sdk.ToolUnionParam{{
		OfTool: &sdk.ToolParam{
			Name:        tool.Name,
			Description: sdk.String(tool.Description),
			InputSchema: sdk.ToolInputSchemaParam{
				Properties: tool.InputSchema,
				Required:   tool.Required,
			},
		},
	}}
	params.ToolChoice = sdk.ToolChoiceUnionParam{
		OfTool: &sdk.ToolChoiceToolParam{Name: tool.Name},
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, nil, mapAPIError(err, "llm: create tool call")
	}

	usage := &TokenUsage{
		InputTokens:  msg.Usage.InputTokens,
		OutputTokens: msg.Usage.OutputTokens,
	}
	for _, block := range msg.Content {
		if block.Type == "tool_use" && block.Name == tool.Name {
			return json.RawMessage(block.Input), usage, nil
		}
	}
	return nil, usage, eris.Errorf("llm: no %s tool_use block in response", tool.Name)
}

func (c *sdkClient) StreamMessage(ctx context.Context, req MessageRequest, onDelta func(text string) error) error {
	stream := c.client.Messages.NewStreaming(ctx, toSDKParams(req))
	defer stream.Close()

	for stream.Next() {
		event := stream.Current()
		if event.Type != "content_block_delta" {
			continue
		}
		if event.Delta.Text == "" {
			continue
		}
		if err := onDelta(event.Delta.Text); err != nil {
			return eris.Wrap(err, "llm: stream consumer")
		}
	}
	if err := stream.Err(); err != nil {
		return mapAPIError(err, "llm: stream message")
	}
	return nil
}

// mapAPIError converts SDK errors into the typed errors the HTTP layer maps
// to status codes. 429 and 402 become sentinels; 5xx is marked transient.
func mapAPIError(err error, op string) error {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		if typed := resilience.ClassifyStatus(apiErr.StatusCode); typed != nil {
			return eris.Wrap(typed, op)
		}
		if resilience.IsTransientHTTPStatus(apiErr.StatusCode) {
			return eris.Wrap(resilience.NewTransientError(err, apiErr.StatusCode), op)
		}
	}
	return eris.Wrap(err, op)
}

// --- SDK type conversion helpers ---

func toSDKParams(req MessageRequest) sdk.MessageNewParams {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(req.Model),
		MaxTokens: req.MaxTokens,
		Messages:  toSDKMessages(req.Messages),
	}
	if req.System != "" {
		params.System = []sdk.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature != nil {
		params.Temperature = sdk.Float(*req.Temperature)
	}
	return params
}

func toSDKMessages(msgs []Message) []sdk.MessageParam {
	out := make([]sdk.MessageParam, len(msgs))
	for i, m := range msgs {
		blocks := make([]sdk.ContentBlockParamUnion, 0, 2)
		if m.Image != nil {
			blocks = append(blocks, sdk.NewImageBlockBase64(m.Image.MediaType, m.Image.Data))
		}
		blocks = append(blocks, sdk.NewTextBlock(m.Content))
		switch m.Role {
		case "assistant":
			out[i] = sdk.NewAssistantMessage(blocks...)
		default:
			out[i] = sdk.NewUserMessage(blocks...)
		}
	}
	return out
}

func fromSDKMessage(msg *sdk.Message) *MessageResponse {
	var text string
	for _, b := range msg.Content {
		if b.Type == "text" {
			text += b.Text
		}
	}
	return &MessageResponse{
		ID:         msg.ID,
		Model:      string(msg.Model),
		Text:       text,
		StopReason: string(msg.StopReason),
		Usage: TokenUsage{
			InputTokens:  msg.Usage.InputTokens,
			OutputTokens: msg.Usage.OutputTokens,
		},
	}
}
