package config

import (
	"fmt"
	"strings"
	"time"

	pkgconfig "github.com/Ponna-create/ai-agent-vs-script-validator/pkg/config"
	"github.com/Ponna-create/ai-agent-vs-script-validator/pkg/logger"
)

// ServiceName is the config file name and the environment variable prefix.
const ServiceName = "analyzer"

type Config struct {
	Service   ServiceConfig   `mapstructure:"service"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       logger.Config   `mapstructure:"log"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Razorpay  RazorpayConfig  `mapstructure:"razorpay"`
	Gateway   GatewayConfig   `mapstructure:"gateway"`
	Product   ProductConfig   `mapstructure:"product"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Email     EmailConfig     `mapstructure:"email"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Worker    WorkerConfig    `mapstructure:"worker"`
}

// LoadConfig reads configs/<APP_ENV>/analyzer.yaml and ANALYZER_* environment variables.
func LoadConfig() (*Config, error) {
	return LoadConfigWith(pkgconfig.Options{})
}

// LoadConfigWith is LoadConfig with explicit loader options.
func LoadConfigWith(opts pkgconfig.Options) (*Config, error) {
	if opts.Defaults == nil {
		opts.Defaults = Defaults()
	}

	loaded, err := pkgconfig.Load(ServiceName, opts)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := loaded.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Gateway.Provider = strings.ToLower(cfg.Gateway.Provider)
	cfg.LLM.Provider = strings.ToLower(cfg.LLM.Provider)

	return &cfg, nil
}

// Defaults registers every key so each one can be set from the environment.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"service.name":        ServiceName,
		"service.environment": "development",
		"service.version":     "dev",
		"service.client_url":  "http://localhost:3000",

		"server.http.host":        "0.0.0.0",
		"server.http.port":        3000,
		"server.read_timeout":     15 * time.Second,
		"server.write_timeout":    60 * time.Second,
		"server.shutdown_timeout": 15 * time.Second,
		"server.body_limit":       "1M",

		"database.host":               "localhost",
		"database.port":               5432,
		"database.name":               "analyzer",
		"database.user":               "postgres",
		"database.password":           "",
		"database.ssl_mode":           "disable",
		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  30 * time.Minute,
		"database.conn_max_idle_time": 5 * time.Minute,
		"database.slow_threshold":     200 * time.Millisecond,

		"log.level":       "info",
		"log.format":      "json",
		"log.output":      "stdout",
		"log.file_path":   "",
		"log.development": false,

		"jwt.secret": "",
		"jwt.issuer": ServiceName,
		"jwt.ttl":    7 * 24 * time.Hour,

		"razorpay.key_id":         "",
		"razorpay.key_secret":     "",
		"razorpay.webhook_secret": "",
		"razorpay.base_url":       "https://api.razorpay.com/v1",
		"razorpay.timeout":        10 * time.Second,
		"razorpay.fetch_retries":  3,
		"razorpay.retry_backoff":  200 * time.Millisecond,

		"gateway.provider": "razorpay",

		"product.name":     "Project analysis",
		"product.amount":   19900,
		"product.currency": "INR",
		"product.credits":  1,

		"llm.provider":    "openai",
		"llm.api_key":     "",
		"llm.base_url":    "",
		"llm.model":       "gpt-4",
		"llm.temperature": 0.7,
		"llm.max_tokens":  2000,
		"llm.timeout":     30 * time.Second,

		"analysis.min_words":       50,
		"analysis.max_words":       5000,
		"analysis.reservation_ttl": 2 * time.Minute,
		"analysis.refund_window":   24 * time.Hour,

		"redis.enabled":          false,
		"redis.addr":             "localhost:6379",
		"redis.password":         "",
		"redis.db":               0,
		"redis.credit_cache_ttl": 24 * time.Hour,
		"redis.event_channel":    "analyzer.payment_events",

		"email.enabled":   false,
		"email.smtp_host": "",
		"email.smtp_port": 587,
		"email.username":  "",
		"email.password":  "",
		"email.from":      "",

		"rate_limit.enabled":         true,
		"rate_limit.api.requests":    100,
		"rate_limit.api.window":      15 * time.Minute,
		"rate_limit.login.requests":  5,
		"rate_limit.login.window":    time.Hour,
		"rate_limit.verify.requests": 10,
		"rate_limit.verify.window":   15 * time.Minute,
		"rate_limit.refund.requests": 3,
		"rate_limit.refund.window":   24 * time.Hour,

		"worker.webhook_retry_interval": time.Minute,
		"worker.webhook_max_attempts":   5,
		"worker.webhook_batch_size":     20,
		"worker.sweep_interval":         time.Minute,
	}
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Service.Environment, "production")
}

// Validate lists settings that must be provisioned before serving traffic.
// In production the mock gateway and mock LLM are refused.
func (c *Config) Validate() error {
	var missing []string
	if c.JWT.Secret == "" {
		missing = append(missing, "jwt.secret")
	}
	if c.Gateway.Provider == GatewayRazorpay {
		if c.Razorpay.KeyID == "" {
			missing = append(missing, "razorpay.key_id")
		}
		if c.Razorpay.KeySecret == "" {
			missing = append(missing, "razorpay.key_secret")
		}
	}
	if c.Razorpay.WebhookSecret == "" {
		missing = append(missing, "razorpay.webhook_secret")
	}
	if c.LLM.Provider == LLMOpenAI && c.LLM.APIKey == "" {
		missing = append(missing, "llm.api_key")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}

	if c.IsProduction() && (c.Gateway.Provider == GatewayMock || c.LLM.Provider == LLMMock) {
		return fmt.Errorf("mock providers are not allowed in production")
	}
	return nil
}
