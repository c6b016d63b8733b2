package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khamari/khamari-api/internal/advisory"
	"github.com/khamari/khamari-api/internal/analysis"
	"github.com/khamari/khamari-api/internal/auth"
	"github.com/khamari/khamari-api/internal/briefing"
	"github.com/khamari/khamari-api/internal/config"
	"github.com/khamari/khamari-api/internal/diagnosis"
	"github.com/khamari/khamari-api/internal/market"
	"github.com/khamari/khamari-api/internal/model"
	"github.com/khamari/khamari-api/internal/otp"
	"github.com/khamari/khamari-api/internal/store"
	"github.com/khamari/khamari-api/internal/suggest"
	"github.com/khamari/khamari-api/internal/weather"
	"github.com/khamari/khamari-api/pkg/llm"
)

type fakeVerifier struct{}

func (fakeVerifier) Verify(token string) (string, error) {
	if token != "good-token" {
		return "", auth.ErrInvalidToken
	}
	return "user-1", nil
}

// fakeStore backs the handler tests with in-memory state.
type fakeStore struct {
	store.Store
	farm    *model.Farm
	pingErr error
	otpRows []model.OTP
	alerts  []model.Alert
	tasks   []model.FarmTask
	reports []model.AIReport
	logs    []model.WeatherLog
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) GetFarm(_ context.Context, farmID, userID string) (*model.Farm, error) {
	if f.farm != nil && f.farm.ID == farmID && f.farm.OwnerID == userID {
		return f.farm, nil
	}
	return nil, nil
}

func (f *fakeStore) GetProfile(context.Context, string) (*model.Profile, error) { return nil, nil }
func (f *fakeStore) ListCrops(context.Context, string) ([]model.Crop, error)   { return nil, nil }
func (f *fakeStore) ListLivestock(context.Context, string) ([]model.Livestock, error) {
	return nil, nil
}
func (f *fakeStore) ListFishPonds(context.Context, string) ([]model.FishPond, error) {
	return nil, nil
}
func (f *fakeStore) ListTransactions(context.Context, string, int) ([]model.FinanceTransaction, error) {
	return nil, nil
}

func (f *fakeStore) ListAlertsCreatedSince(context.Context, string, string, time.Time) ([]model.Alert, error) {
	return f.alerts, nil
}

func (f *fakeStore) InsertAlerts(_ context.Context, alerts []model.Alert) (int, error) {
	f.alerts = append(f.alerts, alerts...)
	return len(alerts), nil
}

func (f *fakeStore) InsertTasks(_ context.Context, tasks []model.FarmTask) (int, error) {
	f.tasks = append(f.tasks, tasks...)
	return len(tasks), nil
}

func (f *fakeStore) InsertReport(_ context.Context, report model.AIReport) error {
	f.reports = append(f.reports, report)
	return nil
}

func (f *fakeStore) LatestWeatherLog(context.Context, string) (*model.WeatherLog, error) {
	return nil, nil
}

func (f *fakeStore) InsertWeatherLog(_ context.Context, wl model.WeatherLog) error {
	f.logs = append(f.logs, wl)
	return nil
}

func (f *fakeStore) CountRecentOTPs(_ context.Context, email string, _ time.Time) (int, error) {
	count := 0
	for _, r := range f.otpRows {
		if r.Email == email {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) InsertOTP(_ context.Context, o model.OTP) error {
	f.otpRows = append(f.otpRows, o)
	return nil
}

type fakeLLM struct {
	payload   json.RawMessage
	deltas    []string
	streamErr error
}

func (f *fakeLLM) CreateMessage(context.Context, llm.MessageRequest) (*llm.MessageResponse, error) {
	return &llm.MessageResponse{}, nil
}

func (f *fakeLLM) CreateToolCall(context.Context, llm.MessageRequest, llm.Tool) (json.RawMessage, *llm.TokenUsage, error) {
	return f.payload, &llm.TokenUsage{}, nil
}

func (f *fakeLLM) StreamMessage(_ context.Context, _ llm.MessageRequest, onDelta func(string) error) error {
	if f.streamErr != nil {
		return f.streamErr
	}
	for _, d := range f.deltas {
		if err := onDelta(d); err != nil {
			return err
		}
	}
	return nil
}

type fakeProvider struct{}

func (fakeProvider) Geocode(context.Context, string) (*weather.GeoResult, error) {
	return nil, eris.New("geocoding disabled in tests")
}

func (fakeProvider) Current(context.Context, float64, float64) (*weather.Conditions, error) {
	return &weather.Conditions{Temperature: 30, Humidity: 70, WindKmh: 10, Condition: "Clear"}, nil
}

func (fakeProvider) Forecast(context.Context, float64, float64) ([]weather.ForecastDay, error) {
	return nil, nil
}

type fakeMailer struct{}

func (fakeMailer) SendOTP(context.Context, string, string) error { return nil }

func newTestServer(st *fakeStore, client *fakeLLM) *Server {
	engine := weather.NewEngine(fakeProvider{}, st, config.WeatherConfig{
		DefaultDistrict: "ঢাকা",
		DefaultLat:      23.8103,
		DefaultLon:      90.4125,
		LogIntervalMins: 60,
	}, 2)
	builder := briefing.NewBuilder(st, engine, 50)
	anthropicCfg := config.AnthropicConfig{Model: "claude-sonnet-4-5-20250929", MaxTokens: 1024}

	return NewServer(
		fakeVerifier{},
		st,
		advisory.NewService(st, client, builder, anthropicCfg, 2),
		engine,
		diagnosis.NewService(st, client, anthropicCfg.Model, anthropicCfg.MaxTokens, 2),
		analysis.NewService(client, anthropicCfg.Model, anthropicCfg.MaxTokens, 100),
		market.NewService(st, client, anthropicCfg.Model, anthropicCfg.MaxTokens, 7),
		suggest.NewService(client, anthropicCfg.Model, anthropicCfg.MaxTokens, 100),
		otp.NewService(st, fakeMailer{}, config.EmailConfig{OTPTTLMins: 10, SendLimit: 3, SendWindowSecs: 60}),
	)
}

func doRequest(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestAuth_MissingOrBadToken(t *testing.T) {
	srv := newTestServer(&fakeStore{}, &fakeLLM{})

	rec := doRequest(t, srv, http.MethodPost, "/functions/v1/market-prices", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, srv, http.MethodPost, "/functions/v1/market-prices", "bad-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealth(t *testing.T) {
	st := &fakeStore{}
	srv := newTestServer(st, &fakeLLM{})

	rec := doRequest(t, srv, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)

	st.pingErr = eris.New("connection refused")
	rec = doRequest(t, srv, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"degraded"`)
}

func TestSmartAdvisory_UnknownType(t *testing.T) {
	srv := newTestServer(&fakeStore{}, &fakeLLM{})

	rec := doRequest(t, srv, http.MethodPost, "/functions/v1/smart-advisory", "good-token",
		map[string]string{"type": "fortune_telling", "farmId": "farm-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSmartAdvisory_UnownedFarmIs401(t *testing.T) {
	srv := newTestServer(&fakeStore{}, &fakeLLM{})

	rec := doRequest(t, srv, http.MethodPost, "/functions/v1/smart-advisory", "good-token",
		map[string]string{"type": "recommendations", "farmId": "farm-1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSmartAdvisory_Recommendations(t *testing.T) {
	st := &fakeStore{farm: &model.Farm{ID: "farm-1", OwnerID: "user-1", District: "ঢাকা"}}
	client := &fakeLLM{payload: json.RawMessage(`{"recommendations":[
		{"type":"crop","title":"Irrigate","title_bn":"সেচ দিন","urgency":"মাঝারি","confidence":0.9}
	]}`)}
	srv := newTestServer(st, client)

	rec := doRequest(t, srv, http.MethodPost, "/functions/v1/smart-advisory", "good-token",
		map[string]string{"type": "recommendations", "farmId": "farm-1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Recommendations []model.Recommendation `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Recommendations, 1)
	assert.Equal(t, "সেচ দিন", body.Recommendations[0].TitleBn)
	assert.Len(t, st.reports, 1, "every invocation writes an audit report")
}

func TestSmartAdvisory_FinanceStreamFraming(t *testing.T) {
	st := &fakeStore{farm: &model.Farm{ID: "farm-1", OwnerID: "user-1", District: "ঢাকা"}}
	client := &fakeLLM{deltas: []string{"আয় বাড়ছে", "খরচ কমান"}}
	srv := newTestServer(st, client)

	rec := doRequest(t, srv, http.MethodPost, "/functions/v1/smart-advisory", "good-token",
		map[string]string{"type": "finance_analysis", "farmId": "farm-1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, `data: {"delta":"আয় বাড়ছে"}`)
	assert.Contains(t, body, `data: {"delta":"খরচ কমান"}`)
	assert.True(t, strings.HasSuffix(body, "data: [DONE]\n\n"))
}

func TestSmartAdvisory_FinanceStreamErrorBeforeFirstDelta(t *testing.T) {
	st := &fakeStore{farm: &model.Farm{ID: "farm-1", OwnerID: "user-1", District: "ঢাকা"}}
	client := &fakeLLM{streamErr: eris.New("upstream unavailable")}
	srv := newTestServer(st, client)

	rec := doRequest(t, srv, http.MethodPost, "/functions/v1/smart-advisory", "good-token",
		map[string]string{"type": "finance_analysis", "farmId": "farm-1"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWeatherEngine_RejectsInvalidFreeText(t *testing.T) {
	srv := newTestServer(&fakeStore{}, &fakeLLM{})

	rec := doRequest(t, srv, http.MethodPost, "/functions/v1/weather-engine", "good-token",
		map[string]string{"district": "ঢাকা; DROP TABLE farms"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid district")

	rec = doRequest(t, srv, http.MethodPost, "/functions/v1/weather-engine", "good-token",
		map[string]string{"district": "ঢাকা", "upazila": strings.Repeat("ক", 101)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid upazila")
}

func TestWeatherEngine_ReturnsSnapshot(t *testing.T) {
	srv := newTestServer(&fakeStore{}, &fakeLLM{})

	rec := doRequest(t, srv, http.MethodPost, "/functions/v1/weather-engine", "good-token",
		map[string]string{"district": "ঢাকা"})
	require.Equal(t, http.StatusOK, rec.Code)

	var result weather.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "ঢাকা", result.Location.Name)
	assert.Equal(t, float64(30), result.Current.Temperature)
}

func TestEmailOTP_SendLimitIs429(t *testing.T) {
	st := &fakeStore{otpRows: []model.OTP{
		{Email: "farmer@example.com"},
		{Email: "farmer@example.com"},
		{Email: "farmer@example.com"},
	}}
	srv := newTestServer(st, &fakeLLM{})

	rec := doRequest(t, srv, http.MethodPost, "/functions/v1/email-otp", "good-token",
		map[string]string{"action": "send", "email": "farmer@example.com"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestEmailOTP_UnknownAction(t *testing.T) {
	srv := newTestServer(&fakeStore{}, &fakeLLM{})

	rec := doRequest(t, srv, http.MethodPost, "/functions/v1/email-otp", "good-token",
		map[string]string{"action": "resend", "email": "farmer@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFarmItemSuggestions_InvalidItemIs400(t *testing.T) {
	srv := newTestServer(&fakeStore{}, &fakeLLM{})

	rec := doRequest(t, srv, http.MethodPost, "/functions/v1/farm-item-suggestions", "good-token",
		map[string]string{"itemType": "crop", "itemName": "<script>"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMalformedBodyIs400(t *testing.T) {
	srv := newTestServer(&fakeStore{}, &fakeLLM{})

	req := httptest.NewRequest(http.MethodPost, "/functions/v1/smart-advisory", strings.NewReader("{not json"))
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
