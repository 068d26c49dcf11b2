package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port            string
	SupabaseURL     string
	SupabaseAnonKey string
	MongoDBURI      string
	MongoDBPassword string
	Environment     string
	LogLevel        string

	// Optional infrastructure. Empty means the feature runs in-process or is off.
	RedisAddr       string
	RedisPassword   string
	RabbitMQURL     string
	StripeSecretKey string
	Currency        string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	BookingCoolDown time.Duration
	RateLimitRPM    int
	RateLimitBurst  int
	CORSOrigins     []string

	// AllowUnverifiedTokens skips JWKS signature checks. Development only.
	AllowUnverifiedTokens bool
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:            getEnvWithDefault("PORT", "8080"),
		SupabaseURL:     os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey: os.Getenv("SUPABASE_URL_ANON_KEY"),
		MongoDBURI:      os.Getenv("MONGODB_URI"),
		MongoDBPassword: os.Getenv("MONGODB_PASSWORD"),
		Environment:     getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:        getEnvWithDefault("LOG_LEVEL", "info"),

		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RabbitMQURL:     os.Getenv("RABBITMQ_URL"),
		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		Currency:        getEnvWithDefault("PAYMENT_CURRENCY", "usd"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),

		CORSOrigins: splitList(getEnvWithDefault("CORS_ORIGINS", "http://localhost:3000")),
	}

	var err error
	if cfg.SMTPPort, err = getIntWithDefault("SMTP_PORT", 587); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPM, err = getIntWithDefault("RATE_LIMIT_RPM", 120); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getIntWithDefault("RATE_LIMIT_BURST", 20); err != nil {
		return nil, err
	}
	cfg.BookingCoolDown = 2 * time.Second
	if raw := os.Getenv("BOOKING_COOLDOWN"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("BOOKING_COOLDOWN must be a positive duration, got %q", raw)
		}
		cfg.BookingCoolDown = d
	}
	cfg.AllowUnverifiedTokens = os.Getenv("ALLOW_UNVERIFIED_TOKENS") == "true" && !cfg.IsProduction()

	// Validate required fields
	if cfg.SupabaseURL == "" {
		return nil, fmt.Errorf("SUPABASE_URL is required")
	}
	if cfg.SupabaseAnonKey == "" {
		return nil, fmt.Errorf("SUPABASE_URL_ANON_KEY is required")
	}
	if cfg.MongoDBURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}
	if cfg.MongoDBPassword == "" {
		return nil, fmt.Errorf("MONGODB_PASSWORD is required")
	}

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntWithDefault(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, raw)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) EmailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}
