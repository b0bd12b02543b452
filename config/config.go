package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"clanwallet/database"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string `envconfig:"DATABASE_URL" required:"true"`
	DatabaseName string `envconfig:"DATABASE_NAME"`

	// HTTP server
	Port            string        `envconfig:"PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// Auth
	JWTSecret      string `envconfig:"JWT_SECRET" required:"true"`
	ServiceRoleKey string `envconfig:"SERVICE_ROLE_KEY" required:"true"`

	// Paystack
	PaystackSecretKey string        `envconfig:"PAYSTACK_SECRET_KEY" required:"true"`
	PaystackBaseURL   string        `envconfig:"PAYSTACK_BASE_URL" default:"https://api.paystack.co"`
	PaystackTimeout   time.Duration `envconfig:"PAYSTACK_TIMEOUT" default:"30s"`

	// Redis (redeem cooldown, rate limiting)
	RedisAddr         string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword     string        `envconfig:"REDIS_PASSWORD"`
	RedisDB           int           `envconfig:"REDIS_DB" default:"0"`
	RedeemCooldown    time.Duration `envconfig:"REDEEM_COOLDOWN" default:"600s"`
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"20"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// NATS
	NATSEnabled bool   `envconfig:"NATS_ENABLED" default:"false"`
	NATSServers string `envconfig:"NATS_SERVERS" default:"nats://localhost:4222"`

	// Discord announcements for public giveaways
	DiscordWebhookID    string `envconfig:"DISCORD_WEBHOOK_ID"`
	DiscordWebhookToken string `envconfig:"DISCORD_WEBHOOK_TOKEN"`

	// Scheduler
	SchedulerEnabled  bool          `envconfig:"SCHEDULER_ENABLED" default:"true"`
	SchedulerTimezone string        `envconfig:"SCHEDULER_TIMEZONE" default:"Africa/Lagos"`
	MonthlyTaxEnabled bool          `envconfig:"MONTHLY_TAX_ENABLED" default:"false"`
	TaxCron           string        `envconfig:"TAX_CRON" default:"0 0 1 * *"`
	RefundCron        string        `envconfig:"REFUND_CRON" default:"@hourly"`
	ReconcileCron     string        `envconfig:"RECONCILE_CRON" default:"*/10 * * * *"`
	ReconcileGrace    time.Duration `envconfig:"RECONCILE_GRACE" default:"5m"`

	// OpenTelemetry
	OTelEnabled              bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTelExporterType         string `envconfig:"OTEL_EXPORTER_TYPE" default:"console"`
	OTelOTLPEndpoint         string `envconfig:"OTEL_OTLP_ENDPOINT" default:"localhost:4317"`
	OTelServiceName          string `envconfig:"OTEL_SERVICE_NAME" default:"clanwallet"`
	OTelExportIntervalMillis int    `envconfig:"OTEL_EXPORT_INTERVAL_MS" default:"30000"`

	// Environment
	Environment string `envconfig:"ENVIRONMENT" default:"development"` // "development", "production" or "test"
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate checks cross-field constraints envconfig cannot express
func (c *Config) Validate() error {
	switch c.Environment {
	case "development", "production", "test":
	default:
		return fmt.Errorf("ENVIRONMENT must be development, production or test, got %q", c.Environment)
	}
	if c.RedeemCooldown < 0 {
		return fmt.Errorf("REDEEM_COOLDOWN must not be negative")
	}
	if c.RateLimitRequests <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be > 0")
	}
	if (c.DiscordWebhookID == "") != (c.DiscordWebhookToken == "") {
		return fmt.Errorf("DISCORD_WEBHOOK_ID and DISCORD_WEBHOOK_TOKEN must be set together")
	}
	switch c.OTelExporterType {
	case "console", "otlp", "none":
	default:
		return fmt.Errorf("unknown OTEL_EXPORTER_TYPE: %s", c.OTelExporterType)
	}
	if _, err := time.LoadLocation(c.SchedulerTimezone); err != nil {
		return fmt.Errorf("invalid SCHEDULER_TIMEZONE %q: %w", c.SchedulerTimezone, err)
	}
	return nil
}

// load loads configuration from environment variables
func load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	cfg.PaystackBaseURL = strings.TrimRight(cfg.PaystackBaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Port:                     "0",
		ShutdownTimeout:          time.Second,
		JWTSecret:                "test-jwt-secret",
		ServiceRoleKey:           "test-service-role-key",
		PaystackSecretKey:        "sk_test_secret",
		PaystackBaseURL:          "http://localhost",
		PaystackTimeout:          5 * time.Second,
		RedeemCooldown:           600 * time.Second,
		RateLimitRequests:        100,
		RateLimitWindow:          time.Minute,
		SchedulerTimezone:        "UTC",
		TaxCron:                  "0 0 1 * *",
		RefundCron:               "@hourly",
		ReconcileCron:            "*/10 * * * *",
		ReconcileGrace:           5 * time.Minute,
		OTelExporterType:         "none",
		OTelServiceName:          "clanwallet-test",
		OTelExportIntervalMillis: 1000,
		Environment:              "test",
		LogLevel:                 "debug",
	}
}
