package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Redis      RedisConfig      `mapstructure:"redis"`
	NATS       NATSConfig       `mapstructure:"nats"`
	CORS       CORSConfig       `mapstructure:"cors"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	Logger     LoggerConfig     `mapstructure:"logger"`
	Fusion     FusionConfig     `mapstructure:"fusion"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
	Alerts     AlertsConfig     `mapstructure:"alerts"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
	Debug       bool   `mapstructure:"debug"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	HTTPPort        int           `mapstructure:"http_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type RedisConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type NATSConfig struct {
	Enabled    bool               `mapstructure:"enabled"`
	URL        string             `mapstructure:"url"`
	StreamName string             `mapstructure:"stream_name"`
	Subjects   NATSSubjectsConfig `mapstructure:"subjects"`
}

type NATSSubjectsConfig struct {
	VerdictCreated   string `mapstructure:"verdict_created"`
	CampaignDetected string `mapstructure:"campaign_detected"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	TimeFormat string `mapstructure:"time_format"`
}

// FusionConfig holds the score fusion policy. Weights must sum to 1.
type FusionConfig struct {
	Weights    WeightsConfig `mapstructure:"weights"`
	ModelBlend float64       `mapstructure:"model_blend"`
	UseModel   bool          `mapstructure:"use_model"`
}

// WeightsConfig holds the per-module fusion weights
type WeightsConfig struct {
	Credential    float64 `mapstructure:"credential"`
	AIText        float64 `mapstructure:"ai_text"`
	Malware       float64 `mapstructure:"malware"`
	EmailPhishing float64 `mapstructure:"email_phishing"`
	URL           float64 `mapstructure:"url"`
	Injection     float64 `mapstructure:"injection"`
}

// Sum returns the total of all weights
func (w WeightsConfig) Sum() float64 {
	return w.Credential + w.AIText + w.Malware + w.EmailPhishing + w.URL + w.Injection
}

// Validate checks the fusion policy for internal consistency
func (c FusionConfig) Validate() error {
	if math.Abs(c.Weights.Sum()-1.0) > 1e-6 {
		return fmt.Errorf("fusion weights must sum to 1.0, got %.4f", c.Weights.Sum())
	}
	if c.ModelBlend < 0 || c.ModelBlend > 1 {
		return fmt.Errorf("fusion model_blend must be in [0,1], got %.2f", c.ModelBlend)
	}
	return nil
}

// ExtractionConfig holds the entity extraction policy
type ExtractionConfig struct {
	// TLDs recognised when mining bare domains out of free text
	TextTLDs []string `mapstructure:"text_tlds"`
}

type AlertsConfig struct {
	Capacity int `mapstructure:"capacity"`
}

// Default returns the built-in configuration. The fusion weights mirror the
// documented policy: credential 0.30, ai-text 0.20, malware 0.25,
// email-phishing 0.15, url 0.07, injection 0.03.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:        "signalguard",
			Environment: "development",
			Version:     "1.0.0",
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			HTTPPort:        8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Redis: RedisConfig{
			Host:      "localhost",
			Port:      6379,
			KeyPrefix: "signalguard:",
		},
		NATS: NATSConfig{
			URL:        "nats://localhost:4222",
			StreamName: "SIGNALGUARD_EVENTS",
			Subjects: NATSSubjectsConfig{
				VerdictCreated:   "signalguard.verdict.created",
				CampaignDetected: "signalguard.campaign.detected",
			},
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
			MaxAge:         300,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 120,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "console",
		},
		Fusion: FusionConfig{
			Weights: WeightsConfig{
				Credential:    0.30,
				AIText:        0.20,
				Malware:       0.25,
				EmailPhishing: 0.15,
				URL:           0.07,
				Injection:     0.03,
			},
			ModelBlend: 0.7,
			UseModel:   true,
		},
		Extraction: ExtractionConfig{
			TextTLDs: []string{"com", "net", "org", "xyz", "io", "co", "uk", "info", "biz"},
		},
		Alerts: AlertsConfig{
			Capacity: 200,
		},
	}
}

// Load reads configuration from file and environment variables, layered on
// top of the built-in defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/signalguard")
	}

	v.SetEnvPrefix("SIGNALGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind nested env vars explicitly (viper doesn't auto-bind nested struct fields)
	v.BindEnv("redis.enabled", "SIGNALGUARD_REDIS_ENABLED")
	v.BindEnv("redis.host", "SIGNALGUARD_REDIS_HOST")
	v.BindEnv("redis.port", "SIGNALGUARD_REDIS_PORT")
	v.BindEnv("redis.password", "SIGNALGUARD_REDIS_PASSWORD")
	v.BindEnv("nats.enabled", "SIGNALGUARD_NATS_ENABLED")
	v.BindEnv("nats.url", "SIGNALGUARD_NATS_URL")
	v.BindEnv("app.environment", "SIGNALGUARD_APP_ENVIRONMENT")
	v.BindEnv("server.http_port", "SIGNALGUARD_SERVER_HTTP_PORT")

	// Config file is optional; defaults and env carry a standalone deployment
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Fusion.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fusion config: %w", err)
	}

	return &cfg, nil
}

// LoadDefault loads configuration with the default search path
func LoadDefault() (*Config, error) {
	return Load("")
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("app.name", d.App.Name)
	v.SetDefault("app.environment", d.App.Environment)
	v.SetDefault("app.version", d.App.Version)

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.http_port", d.Server.HTTPPort)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.idle_timeout", d.Server.IdleTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("redis.enabled", d.Redis.Enabled)
	v.SetDefault("redis.host", d.Redis.Host)
	v.SetDefault("redis.port", d.Redis.Port)
	v.SetDefault("redis.key_prefix", d.Redis.KeyPrefix)

	v.SetDefault("nats.enabled", d.NATS.Enabled)
	v.SetDefault("nats.url", d.NATS.URL)
	v.SetDefault("nats.stream_name", d.NATS.StreamName)
	v.SetDefault("nats.subjects.verdict_created", d.NATS.Subjects.VerdictCreated)
	v.SetDefault("nats.subjects.campaign_detected", d.NATS.Subjects.CampaignDetected)

	v.SetDefault("cors.allowed_origins", d.CORS.AllowedOrigins)
	v.SetDefault("cors.allowed_methods", d.CORS.AllowedMethods)
	v.SetDefault("cors.allowed_headers", d.CORS.AllowedHeaders)
	v.SetDefault("cors.max_age", d.CORS.MaxAge)

	v.SetDefault("ratelimit.enabled", d.RateLimit.Enabled)
	v.SetDefault("ratelimit.requests_per_minute", d.RateLimit.RequestsPerMinute)

	v.SetDefault("logger.level", d.Logger.Level)
	v.SetDefault("logger.format", d.Logger.Format)

	v.SetDefault("fusion.weights.credential", d.Fusion.Weights.Credential)
	v.SetDefault("fusion.weights.ai_text", d.Fusion.Weights.AIText)
	v.SetDefault("fusion.weights.malware", d.Fusion.Weights.Malware)
	v.SetDefault("fusion.weights.email_phishing", d.Fusion.Weights.EmailPhishing)
	v.SetDefault("fusion.weights.url", d.Fusion.Weights.URL)
	v.SetDefault("fusion.weights.injection", d.Fusion.Weights.Injection)
	v.SetDefault("fusion.model_blend", d.Fusion.ModelBlend)
	v.SetDefault("fusion.use_model", d.Fusion.UseModel)

	v.SetDefault("extraction.text_tlds", d.Extraction.TextTLDs)

	v.SetDefault("alerts.capacity", d.Alerts.Capacity)
}
