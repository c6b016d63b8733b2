package diagnosis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khamari/khamari-api/internal/model"
	"github.com/khamari/khamari-api/internal/store"
	"github.com/khamari/khamari-api/pkg/llm"
)

const pngDataURL = "data:image/png;base64,iVBORw0KGgo="

type fakeStore struct {
	store.Store
	farm   *model.Farm
	images []model.ImageRecord
	alerts []model.Alert
}

func (f *fakeStore) GetFarm(_ context.Context, farmID, userID string) (*model.Farm, error) {
	if f.farm != nil && f.farm.ID == farmID && f.farm.OwnerID == userID {
		return f.farm, nil
	}
	return nil, nil
}

func (f *fakeStore) InsertImage(_ context.Context, img model.ImageRecord) error {
	f.images = append(f.images, img)
	return nil
}

func (f *fakeStore) ListAlertsCreatedSince(context.Context, string, string, time.Time) ([]model.Alert, error) {
	return f.alerts, nil
}

func (f *fakeStore) InsertAlerts(_ context.Context, alerts []model.Alert) (int, error) {
	f.alerts = append(f.alerts, alerts...)
	return len(alerts), nil
}

type fakeLLM struct {
	payload json.RawMessage
	image   *llm.ImageSource
}

func (f *fakeLLM) CreateMessage(context.Context, llm.MessageRequest) (*llm.MessageResponse, error) {
	return &llm.MessageResponse{}, nil
}

func (f *fakeLLM) CreateToolCall(_ context.Context, req llm.MessageRequest, _ llm.Tool) (json.RawMessage, *llm.TokenUsage, error) {
	f.image = req.Messages[0].Image
	return f.payload, &llm.TokenUsage{}, nil
}

func (f *fakeLLM) StreamMessage(context.Context, llm.MessageRequest, func(string) error) error {
	return nil
}

func TestDiagnose_RejectsBadInput(t *testing.T) {
	svc := NewService(&fakeStore{}, &fakeLLM{}, "claude-sonnet-4-5-20250929", 1024, 2)

	_, err := svc.Diagnose(context.Background(), "user-1", Request{Kind: "tractor", Image: pngDataURL})
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = svc.Diagnose(context.Background(), "user-1", Request{Kind: "crop", Image: "ftp://host/leaf.png"})
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = svc.Diagnose(context.Background(), "user-1", Request{Kind: "crop", Image: "data:image/png,no-base64-marker"})
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestDiagnose_DataURLBecomesImageBlock(t *testing.T) {
	client := &fakeLLM{payload: json.RawMessage(`{"condition":"Leaf blight","condition_bn":"পাতা ঝলসানো","risk_level":"low","confidence":80}`)}
	st := &fakeStore{}
	svc := NewService(st, client, "claude-sonnet-4-5-20250929", 1024, 2)

	diag, err := svc.Diagnose(context.Background(), "user-1", Request{Kind: "crop", Image: pngDataURL})
	require.NoError(t, err)
	require.NotNil(t, client.image)
	assert.Equal(t, "image/png", client.image.MediaType)
	assert.Equal(t, "iVBORw0KGgo=", client.image.Data)
	assert.Equal(t, model.RiskLow, diag.RiskLevel)
	require.Len(t, st.images, 1, "every diagnosis writes an image record")
	assert.Empty(t, st.alerts, "low risk raises no alert")
}

func TestDiagnose_HighRiskOnOwnedFarmRaisesAlertOnce(t *testing.T) {
	client := &fakeLLM{payload: json.RawMessage(`{"condition":"Foot rot","condition_bn":"ক্ষুরা পচা","risk_level":"high","advice_bn":["পশু চিকিৎসকের সাথে যোগাযোগ করুন"],"confidence":92}`)}
	st := &fakeStore{farm: &model.Farm{ID: "farm-1", OwnerID: "user-1"}}
	svc := NewService(st, client, "claude-sonnet-4-5-20250929", 1024, 2)

	req := Request{Kind: "livestock", Image: pngDataURL, FarmID: "farm-1"}
	_, err := svc.Diagnose(context.Background(), "user-1", req)
	require.NoError(t, err)
	require.Len(t, st.alerts, 1)
	assert.Equal(t, "ক্ষুরা পচা", st.alerts[0].Title)
	assert.Equal(t, "পশু চিকিৎসকের সাথে যোগাযোগ করুন", st.alerts[0].Message)

	// Same finding again the same day: the exact pair is skipped.
	_, err = svc.Diagnose(context.Background(), "user-1", req)
	require.NoError(t, err)
	assert.Len(t, st.alerts, 1)
	assert.Len(t, st.images, 2)
}

func TestDiagnose_HighRiskOnUnownedFarmWritesNoAlert(t *testing.T) {
	client := &fakeLLM{payload: json.RawMessage(`{"condition":"Foot rot","condition_bn":"ক্ষুরা পচা","risk_level":"high","confidence":92}`)}
	st := &fakeStore{}
	svc := NewService(st, client, "claude-sonnet-4-5-20250929", 1024, 2)

	_, err := svc.Diagnose(context.Background(), "user-1", Request{Kind: "livestock", Image: pngDataURL, FarmID: "farm-9"})
	require.NoError(t, err)
	assert.Empty(t, st.alerts)
	assert.Len(t, st.images, 1)
}

func TestDiagnose_MalformedPayloadDegradesToEmpty(t *testing.T) {
	client := &fakeLLM{payload: json.RawMessage(`??`)}
	st := &fakeStore{}
	svc := NewService(st, client, "claude-sonnet-4-5-20250929", 1024, 2)

	diag, err := svc.Diagnose(context.Background(), "user-1", Request{Kind: "crop", Image: pngDataURL})
	require.NoError(t, err)
	assert.Equal(t, &model.Diagnosis{}, diag)
	assert.Len(t, st.images, 1)
}
