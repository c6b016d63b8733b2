package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/khamari/khamari-api/internal/analysis"
	"github.com/khamari/khamari-api/internal/diagnosis"
	"github.com/khamari/khamari-api/internal/suggest"
	"github.com/khamari/khamari-api/internal/weather"
)

type advisoryRequest struct {
	Type   string `json:"type"`
	FarmID string `json:"farmId"`
}

func (s *Server) handleSmartAdvisory(w http.ResponseWriter, r *http.Request) {
	var req advisoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "malformed request body")
		return
	}

	uid := userID(r)
	switch req.Type {
	case "recommendations":
		result, err := s.advisory.Recommend(r.Context(), uid, req.FarmID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)

	case "smart_schedule":
		result, err := s.advisory.Schedule(r.Context(), uid, req.FarmID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)

	case "finance_analysis":
		s.streamFinanceAnalysis(w, r, uid, req.FarmID)

	default:
		badRequest(w, "unknown advisory type")
	}
}

// streamFinanceAnalysis pipes model output to the client as server-sent
// events. Client disconnect cancels the request context, which stops the
// upstream read loop.
func (s *Server) streamFinanceAnalysis(w http.ResponseWriter, r *http.Request, uid, farmID string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "streaming unsupported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	started := false
	err := s.advisory.FinanceStream(r.Context(), uid, farmID, func(text string) error {
		if !started {
			w.WriteHeader(http.StatusOK)
			started = true
		}
		data, err := json.Marshal(map[string]string{"delta": text})
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		if !started {
			writeError(w, err)
			return
		}
		// Headers are gone; all we can do is end the stream.
		return
	}
	if !started {
		w.WriteHeader(http.StatusOK)
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

func (s *Server) handleWeatherEngine(w http.ResponseWriter, r *http.Request) {
	var req weather.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "malformed request body")
		return
	}
	if !weather.ValidFreeText(req.District) {
		badRequest(w, "invalid district")
		return
	}
	if !weather.ValidFreeText(req.Upazila) {
		badRequest(w, "invalid upazila")
		return
	}

	result, err := s.weather.Run(r.Context(), userID(r), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleImageDiagnosis(w http.ResponseWriter, r *http.Request) {
	var req diagnosis.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "malformed request body")
		return
	}

	diag, err := s.diagnosis.Diagnose(r.Context(), userID(r), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, diag)
}

func (s *Server) handleProductionAnalysis(w http.ResponseWriter, r *http.Request) {
	var req analysis.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "malformed request body")
		return
	}

	result, err := s.analysis.Analyze(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleMarketPrices(w http.ResponseWriter, r *http.Request) {
	prices, err := s.market.Today(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"prices": prices})
}

func (s *Server) handleFarmItemSuggestions(w http.ResponseWriter, r *http.Request) {
	var req suggest.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "malformed request body")
		return
	}

	suggestions, err := s.suggest.Suggest(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

type otpRequest struct {
	Action  string `json:"action"`
	Email   string `json:"email"`
	OTPCode string `json:"otp_code,omitempty"`
}

func (s *Server) handleEmailOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "malformed request body")
		return
	}

	switch req.Action {
	case "send":
		if err := s.otp.Send(r.Context(), req.Email); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})

	case "verify":
		if err := s.otp.Verify(r.Context(), req.Email, req.OTPCode); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "verified": true})

	default:
		badRequest(w, "unknown action")
	}
}
