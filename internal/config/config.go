package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration. Secrets are resolved here
// once at startup; components receive the sections they need and never read
// the environment themselves.
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Weather   WeatherConfig   `yaml:"weather" mapstructure:"weather"`
	Email     EmailConfig     `yaml:"email" mapstructure:"email"`
	Auth      AuthConfig      `yaml:"auth" mapstructure:"auth"`
	Advisory  AdvisoryConfig  `yaml:"advisory" mapstructure:"advisory"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port            int `yaml:"port" mapstructure:"port"`
	RequestTimeoutS int `yaml:"request_timeout_secs" mapstructure:"request_timeout_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string     `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string     `yaml:"database_url" mapstructure:"database_url"`
	Pool        PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// WeatherConfig holds the weather provider settings and the fallback
// coordinates used when no district resolves (the capital).
type WeatherConfig struct {
	Key             string  `yaml:"key" mapstructure:"key"`
	BaseURL         string  `yaml:"base_url" mapstructure:"base_url"`
	GeoBaseURL      string  `yaml:"geo_base_url" mapstructure:"geo_base_url"`
	DefaultDistrict string  `yaml:"default_district" mapstructure:"default_district"`
	DefaultLat      float64 `yaml:"default_lat" mapstructure:"default_lat"`
	DefaultLon      float64 `yaml:"default_lon" mapstructure:"default_lon"`
	LogIntervalMins int     `yaml:"log_interval_mins" mapstructure:"log_interval_mins"`
	RequestsPerSec  float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
}

// LogInterval returns the minimum gap between persisted weather logs per farm.
func (w WeatherConfig) LogInterval() time.Duration {
	return time.Duration(w.LogIntervalMins) * time.Minute
}

// EmailConfig holds the transactional email settings for OTP delivery.
type EmailConfig struct {
	ResendKey      string `yaml:"resend_key" mapstructure:"resend_key"`
	From           string `yaml:"from" mapstructure:"from"`
	OTPTTLMins     int    `yaml:"otp_ttl_mins" mapstructure:"otp_ttl_mins"`
	SendLimit      int    `yaml:"send_limit" mapstructure:"send_limit"`
	SendWindowSecs int    `yaml:"send_window_secs" mapstructure:"send_window_secs"`
}

// OTPTTL returns the passcode lifetime.
func (e EmailConfig) OTPTTL() time.Duration {
	return time.Duration(e.OTPTTLMins) * time.Minute
}

// SendWindow returns the rolling window for the per-email send limit.
func (e EmailConfig) SendWindow() time.Duration {
	return time.Duration(e.SendWindowSecs) * time.Second
}

// AuthConfig holds bearer-token verification settings.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" mapstructure:"jwt_secret"`
}

// AdvisoryConfig configures advisory pipeline behavior. AlertTitleCap is the
// per-title per-day alert cap; it is a policy parameter, not a constant.
type AdvisoryConfig struct {
	FinanceTxLimit   int `yaml:"finance_tx_limit" mapstructure:"finance_tx_limit"`
	AlertTitleCap    int `yaml:"alert_title_cap_per_day" mapstructure:"alert_title_cap_per_day"`
	InputListCap     int `yaml:"input_list_cap" mapstructure:"input_list_cap"`
	FreeTextMaxLen   int `yaml:"free_text_max_len" mapstructure:"free_text_max_len"`
	MarketRetainDays int `yaml:"market_retain_days" mapstructure:"market_retain_days"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("KHAMARI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout_secs", 120)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("weather.base_url", "https://api.openweathermap.org/data/2.5")
	v.SetDefault("weather.geo_base_url", "https://api.openweathermap.org/geo/1.0")
	v.SetDefault("weather.default_district", "ঢাকা")
	v.SetDefault("weather.default_lat", 23.8103)
	v.SetDefault("weather.default_lon", 90.4125)
	v.SetDefault("weather.log_interval_mins", 60)
	v.SetDefault("weather.requests_per_sec", 5)
	v.SetDefault("email.otp_ttl_mins", 10)
	v.SetDefault("email.send_limit", 3)
	v.SetDefault("email.send_window_secs", 60)
	v.SetDefault("advisory.finance_tx_limit", 50)
	v.SetDefault("advisory.alert_title_cap_per_day", 2)
	v.SetDefault("advisory.input_list_cap", 100)
	v.SetDefault("advisory.free_text_max_len", 100)
	v.SetDefault("advisory.market_retain_days", 7)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
