package config

import "time"

type ServiceConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
	ClientURL   string `mapstructure:"client_url"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"ttl"`
}

const (
	GatewayRazorpay = "razorpay"
	GatewayMock     = "mock"

	LLMOpenAI = "openai"
	LLMMock   = "mock"
)

// RazorpayConfig holds gateway credentials. KeySecret signs checkout callbacks,
// WebhookSecret signs webhook deliveries; they are distinct secrets.
type RazorpayConfig struct {
	KeyID         string        `mapstructure:"key_id"`
	KeySecret     string        `mapstructure:"key_secret"`
	WebhookSecret string        `mapstructure:"webhook_secret"`
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	FetchRetries  int           `mapstructure:"fetch_retries"`
	RetryBackoff  time.Duration `mapstructure:"retry_backoff"`
}

type GatewayConfig struct {
	// Provider is razorpay or mock.
	Provider string `mapstructure:"provider"`
}

// ProductConfig describes the single SKU: a bundle of analysis credits.
type ProductConfig struct {
	Name     string `mapstructure:"name"`
	Amount   int64  `mapstructure:"amount"`
	Currency string `mapstructure:"currency"`
	Credits  int    `mapstructure:"credits"`
}

type LLMConfig struct {
	// Provider is openai or mock.
	Provider    string        `mapstructure:"provider"`
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int64         `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type AnalysisConfig struct {
	MinWords       int           `mapstructure:"min_words"`
	MaxWords       int           `mapstructure:"max_words"`
	ReservationTTL time.Duration `mapstructure:"reservation_ttl"`
	RefundWindow   time.Duration `mapstructure:"refund_window"`
}

type RedisConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Addr           string        `mapstructure:"addr"`
	Password       string        `mapstructure:"password"`
	DB             int           `mapstructure:"db"`
	CreditCacheTTL time.Duration `mapstructure:"credit_cache_ttl"`
	EventChannel   string        `mapstructure:"event_channel"`
}

type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type RateLimitConfig struct {
	Enabled bool        `mapstructure:"enabled"`
	API     LimitConfig `mapstructure:"api"`
	Login   LimitConfig `mapstructure:"login"`
	Verify  LimitConfig `mapstructure:"verify"`
	Refund  LimitConfig `mapstructure:"refund"`
}

// LimitConfig allows Requests per Window for one client IP.
type LimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type WorkerConfig struct {
	WebhookRetryInterval time.Duration `mapstructure:"webhook_retry_interval"`
	WebhookMaxAttempts   int           `mapstructure:"webhook_max_attempts"`
	WebhookBatchSize     int           `mapstructure:"webhook_batch_size"`
	SweepInterval        time.Duration `mapstructure:"sweep_interval"`
}
