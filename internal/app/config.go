package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (IMUNOFAN_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (IMUNOFAN_DATABASE_URL or DATABASE_URL)" flag:"database-url"`

	Stripe    StripeConfig
	Econt     EcontConfig
	OpenAI    OpenAIConfig
	Admin     AdminConfig
	Session   SessionConfig
	Seo       SeoConfig
	Sender    SenderConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// StripeConfig holds payment processor credentials.
type StripeConfig struct {
	SecretKey     string `usage:"Stripe secret key (IMUNOFAN_STRIPE_SECRET_KEY)" flag:"stripe-secret-key"`
	WebhookSecret string `usage:"Stripe webhook signing secret" flag:"stripe-webhook-secret"`
}

// EcontConfig holds carrier API connection settings. The demo defaults are
// development-only.
type EcontConfig struct {
	APIURL   string `default:"https://demo.econt.com/ee/services" usage:"Econt API endpoint"`
	Username string `default:"iasp-dev" usage:"Econt API username"`
	Password string `default:"1Asp-dev" usage:"Econt API password"`
}

// OpenAIConfig holds the content generation API key.
type OpenAIConfig struct {
	APIKey string `usage:"OpenAI API key (IMUNOFAN_OPENAI_API_KEY)" flag:"openai-api-key"`
}

// AdminConfig controls the startup admin seed.
type AdminConfig struct {
	Username string `default:"admin" usage:"Seed admin username"`
	Password string `default:"admin123" usage:"Seed admin password; change in production" flag:"admin-password"`
}

// SessionConfig controls admin session lifetime and sweeping.
type SessionConfig struct {
	TTL           time.Duration `default:"24h" usage:"Admin session lifetime"`
	SweepInterval time.Duration `default:"1h" usage:"How often expired sessions are deleted" flag:"session-sweep-interval"`
}

// SeoConfig controls page generation.
type SeoConfig struct {
	DailyPageLimit int32 `default:"10" usage:"Generated pages allowed per day" flag:"seo-daily-limit"`
}

// SenderConfig identifies the shop as the shipment sender.
type SenderConfig struct {
	Name    string `default:"Имунофан България" usage:"Shipment sender name"`
	City    string `default:"София" usage:"Shipment sender city"`
	Address string `default:"бул. България 1" usage:"Shipment sender address"`
	Phone   string `default:"+359 2 000 0000" usage:"Shipment sender phone"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"true" usage:"Allow credentials (session cookie)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "IMUNOFAN",
		Files:     []string{"config.yaml", "/etc/imunofan/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set IMUNOFAN_DATABASE_URL or DATABASE_URL")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables
// (Railway, Render, etc.) that use standard names like DATABASE_URL and PORT
// onto the prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
	if c.Stripe.SecretKey == "" {
		if v := os.Getenv("STRIPE_SECRET_KEY"); v != "" {
			c.Stripe.SecretKey = v
		}
	}
	if c.OpenAI.APIKey == "" {
		if v := os.Getenv("OPENAI_API_KEY"); v != "" {
			c.OpenAI.APIKey = v
		}
	}
}
