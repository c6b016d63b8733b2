package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/khamari/khamari-api/internal/advisory"
	"github.com/khamari/khamari-api/internal/analysis"
	"github.com/khamari/khamari-api/internal/auth"
	"github.com/khamari/khamari-api/internal/briefing"
	"github.com/khamari/khamari-api/internal/config"
	"github.com/khamari/khamari-api/internal/diagnosis"
	"github.com/khamari/khamari-api/internal/httpapi"
	"github.com/khamari/khamari-api/internal/market"
	"github.com/khamari/khamari-api/internal/otp"
	"github.com/khamari/khamari-api/internal/store"
	"github.com/khamari/khamari-api/internal/suggest"
	"github.com/khamari/khamari-api/internal/weather"
	"github.com/khamari/khamari-api/pkg/llm"
)

// env holds the wired application components for a command invocation.
type env struct {
	Store  store.Store
	Server *httpapi.Server
}

// newStore opens the configured backend.
func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres", "":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &cfg.Store.Pool)
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// initEnv wires every service. Required provider keys are checked here so
// a misconfigured deployment fails at startup, not mid-request.
func initEnv(ctx context.Context, cfg *config.Config) (*env, error) {
	st, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Anthropic.Key == "" {
		st.Close()
		return nil, eris.New("anthropic key not configured")
	}
	if cfg.Weather.Key == "" {
		st.Close()
		return nil, eris.New("weather provider key not configured")
	}
	if cfg.Auth.JWTSecret == "" {
		st.Close()
		return nil, eris.New("jwt secret not configured")
	}

	llmClient := llm.NewClient(cfg.Anthropic.Key)
	weatherClient := weather.NewClient(cfg.Weather)
	engine := weather.NewEngine(weatherClient, st, cfg.Weather, cfg.Advisory.AlertTitleCap)
	builder := briefing.NewBuilder(st, engine, cfg.Advisory.FinanceTxLimit)

	server := httpapi.NewServer(
		auth.NewJWTVerifier(cfg.Auth.JWTSecret),
		st,
		advisory.NewService(st, llmClient, builder, cfg.Anthropic, cfg.Advisory.AlertTitleCap),
		engine,
		diagnosis.NewService(st, llmClient, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens, cfg.Advisory.AlertTitleCap),
		analysis.NewService(llmClient, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens, cfg.Advisory.InputListCap),
		market.NewService(st, llmClient, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens, cfg.Advisory.MarketRetainDays),
		suggest.NewService(llmClient, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens, cfg.Advisory.FreeTextMaxLen),
		otp.NewService(st, otp.NewResendMailer(cfg.Email.ResendKey, cfg.Email.From), cfg.Email),
	)

	return &env{Store: st, Server: server}, nil
}

func (e *env) Close() {
	_ = e.Store.Close()
}
