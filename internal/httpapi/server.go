// Package httpapi exposes the advisory pipeline and its companion services
// over HTTP.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/khamari/khamari-api/internal/advisory"
	"github.com/khamari/khamari-api/internal/analysis"
	"github.com/khamari/khamari-api/internal/auth"
	"github.com/khamari/khamari-api/internal/diagnosis"
	"github.com/khamari/khamari-api/internal/market"
	"github.com/khamari/khamari-api/internal/otp"
	"github.com/khamari/khamari-api/internal/store"
	"github.com/khamari/khamari-api/internal/suggest"
	"github.com/khamari/khamari-api/internal/weather"
)

// Server bundles the services behind the HTTP surface.
type Server struct {
	verifier  auth.Verifier
	store     store.Store
	advisory  *advisory.Service
	weather   *weather.Engine
	diagnosis *diagnosis.Service
	analysis  *analysis.Service
	market    *market.Service
	suggest   *suggest.Service
	otp       *otp.Service
}

// NewServer wires the HTTP server.
func NewServer(
	verifier auth.Verifier,
	st store.Store,
	advisorySvc *advisory.Service,
	weatherEngine *weather.Engine,
	diagnosisSvc *diagnosis.Service,
	analysisSvc *analysis.Service,
	marketSvc *market.Service,
	suggestSvc *suggest.Service,
	otpSvc *otp.Service,
) *Server {
	return &Server{
		verifier:  verifier,
		store:     st,
		advisory:  advisorySvc,
		weather:   weatherEngine,
		diagnosis: diagnosisSvc,
		analysis:  analysisSvc,
		market:    marketSvc,
		suggest:   suggestSvc,
		otp:       otpSvc,
	}
}

// Router builds the chi router. CORS is open to any origin; everything
// under /functions/v1 requires a bearer token.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(recoverer)
	r.Use(requestLogger)
	r.Use(cors.AllowAll().Handler)

	r.Get("/health", s.handleHealth)

	r.Route("/functions/v1", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/smart-advisory", s.handleSmartAdvisory)
		r.Post("/weather-engine", s.handleWeatherEngine)
		r.Post("/image-diagnosis", s.handleImageDiagnosis)
		r.Post("/production-analysis", s.handleProductionAnalysis)
		r.Post("/market-prices", s.handleMarketPrices)
		r.Post("/farm-item-suggestions", s.handleFarmItemSuggestions)
		r.Post("/email-otp", s.handleEmailOTP)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
