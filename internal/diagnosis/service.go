// Package diagnosis runs image-based crop and livestock diagnosis through
// the model's vision input.
package diagnosis

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/khamari/khamari-api/internal/model"
	"github.com/khamari/khamari-api/internal/store"
	"github.com/khamari/khamari-api/pkg/llm"
)

// ErrInvalidImage is returned for requests whose image field is neither a
// data URL nor an https URL, or whose kind is unknown. Maps to 400.
var ErrInvalidImage = errors.New("diagnosis: invalid image input")

const maxImageBytes = 10 << 20

// Request is one image-diagnosis invocation.
type Request struct {
	Image       string `json:"image"` // data URL or https URL
	Kind        string `json:"type"`  // "crop" or "livestock"
	FarmID      string `json:"farmId"`
	StoragePath string `json:"storagePath,omitempty"`
	Language    string `json:"language,omitempty"`
}

// Service performs diagnosis calls and persists the results.
type Service struct {
	store     store.Store
	llm       llm.Client
	http      *http.Client
	model     string
	maxTokens int64
	titleCap  int
	now       func() time.Time
}

// NewService wires the diagnosis service.
func NewService(st store.Store, client llm.Client, modelID string, maxTokens int64, titleCap int) *Service {
	return &Service{
		store:     st,
		llm:       client,
		http:      &http.Client{Timeout: 20 * time.Second},
		model:     modelID,
		maxTokens: maxTokens,
		titleCap:  titleCap,
		now:       time.Now,
	}
}

func diagnosisTool() llm.Tool {
	return llm.Tool{
		Name:        "report_diagnosis",
		Description: "Report the diagnosis of the crop or livestock shown in the image.",
		InputSchema: map[string]any{
			"condition":    map[string]any{"type": "string", "description": "English name of the condition"},
			"condition_bn": map[string]any{"type": "string", "description": "Bengali name of the condition"},
			"risk_level":   map[string]any{"type": "string", "enum": []string{"high", "medium", "low"}},
			"advice_bn": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"confidence": map[string]any{"type": "number", "minimum": 0, "maximum": 100},
		},
		Required: []string{"condition", "condition_bn", "risk_level", "confidence"},
	}
}

// Diagnose fetches the image, runs the vision call, persists the image
// record, and raises an alert for high-risk findings. A malformed tool
// payload degrades to an empty diagnosis; persistence failures are logged
// only.
func (s *Service) Diagnose(ctx context.Context, userID string, req Request) (*model.Diagnosis, error) {
	if req.Kind != "crop" && req.Kind != "livestock" {
		return nil, ErrInvalidImage
	}
	img, err := s.loadImage(ctx, req.Image)
	if err != nil {
		return nil, err
	}

	subject := "ফসল"
	if req.Kind == "livestock" {
		subject = "পশু"
	}
	prompt := fmt.Sprintf("ছবিতে দেখানো %s পরীক্ষা করুন এবং report_diagnosis টুল দিয়ে রোগ বা সমস্যা শনাক্ত করুন। বাংলায় সহজ ভাষায় পরামর্শ দিন।", subject)

	raw, usage, err := s.llm.CreateToolCall(ctx, llm.MessageRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		Messages: []llm.Message{{
			Role:    "user",
			Content: prompt,
			Image:   img,
		}},
	}, diagnosisTool())
	if err != nil {
		return nil, err
	}
	if usage != nil {
		usage.LogCost(s.model, "image_diagnosis")
	}

	var diag model.Diagnosis
	if err := json.Unmarshal(raw, &diag); err != nil {
		zap.L().Warn("diagnosis payload failed to decode, degrading to empty", zap.Error(err))
		diag = model.Diagnosis{}
	}

	s.persist(ctx, userID, req, diag)
	return &diag, nil
}

func (s *Service) persist(ctx context.Context, userID string, req Request, diag model.Diagnosis) {
	rec := model.ImageRecord{
		UserID:      userID,
		FarmID:      req.FarmID,
		Kind:        req.Kind,
		StoragePath: req.StoragePath,
		Diagnosis:   diag,
	}
	if err := s.store.InsertImage(ctx, rec); err != nil {
		zap.L().Warn("image record write failed", zap.String("farm_id", req.FarmID), zap.Error(err))
	}

	if diag.RiskLevel != model.RiskHigh || req.FarmID == "" {
		return
	}
	farm, err := s.store.GetFarm(ctx, req.FarmID, userID)
	if err != nil || farm == nil {
		return
	}

	title := diag.ConditionBn
	if title == "" {
		title = diag.Condition
	}
	message := "উচ্চ ঝুঁকির সমস্যা শনাক্ত হয়েছে। দ্রুত ব্যবস্থা নিন।"
	if len(diag.AdviceBn) > 0 {
		message = diag.AdviceBn[0]
	}
	candidate := model.Alert{
		UserID:   userID,
		FarmID:   req.FarmID,
		Type:     "diagnosis",
		Severity: model.SeverityHigh,
		Title:    title,
		Message:  message,
	}

	now := s.now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	existing, err := s.store.ListAlertsCreatedSince(ctx, userID, req.FarmID, dayStart)
	if err != nil {
		zap.L().Warn("alert dedup read failed, skipping diagnosis alert", zap.Error(err))
		return
	}
	fresh := store.FilterNewAlerts(existing, []model.Alert{candidate}, s.titleCap)
	if len(fresh) == 0 {
		return
	}
	if _, err := s.store.InsertAlerts(ctx, fresh); err != nil {
		zap.L().Warn("diagnosis alert write failed", zap.Error(err))
	}
}

// loadImage turns the request's image field into an inline base64 source.
// Data URLs are split in place; https URLs are fetched and encoded.
func (s *Service) loadImage(ctx context.Context, image string) (*llm.ImageSource, error) {
	switch {
	case strings.HasPrefix(image, "data:"):
		rest, ok := strings.CutPrefix(image, "data:")
		if !ok {
			return nil, ErrInvalidImage
		}
		meta, data, ok := strings.Cut(rest, ",")
		if !ok || !strings.HasSuffix(meta, ";base64") {
			return nil, ErrInvalidImage
		}
		mediaType := strings.TrimSuffix(meta, ";base64")
		if mediaType == "" {
			mediaType = "image/jpeg"
		}
		return &llm.ImageSource{MediaType: mediaType, Data: data}, nil

	case strings.HasPrefix(image, "https://"):
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, image, nil)
		if err != nil {
			return nil, eris.Wrap(err, "diagnosis: create image request")
		}
		resp, err := s.http.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "diagnosis: fetch image")
		}
		defer resp.Body.Close() //nolint:errcheck
		if resp.StatusCode != http.StatusOK {
			return nil, eris.Errorf("diagnosis: image fetch status %d", resp.StatusCode)
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
		if err != nil {
			return nil, eris.Wrap(err, "diagnosis: read image")
		}
		mediaType := resp.Header.Get("Content-Type")
		if mediaType == "" || !strings.HasPrefix(mediaType, "image/") {
			mediaType = http.DetectContentType(body)
		}
		return &llm.ImageSource{
			MediaType: mediaType,
			Data:      base64.StdEncoding.EncodeToString(body),
		}, nil

	default:
		return nil, ErrInvalidImage
	}
}
