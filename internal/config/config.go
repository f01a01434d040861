package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Development bool
	// API configuration
	APIPort int
	// Redis configuration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// Payment processor configuration
	ProcessorBaseURL          string
	ProcessorTransactionsPath string
	ProcessorAPIKey           string
	ProcessorAPISecret        string
	ProcessorAPIVersion       string
	// Cookie configuration
	CookieSecret string
	// Game balance
	EarnCooldown    time.Duration
	EarnAmount      int64
	PayoutThreshold int64
	UnitsPerCoin    int64
	Currency        string
	PayoutMemo      string
	// Store retention
	EarnRecordTTL time.Duration
	BalanceTTL    time.Duration

	// Operator notification configuration
	TelegramBotToken string
	TelegramChatID   string

	// SMTP configuration
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPSender   string
	AlertEmail   string
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Development: getEnvAsBool("DEVELOPMENT", false),

		APIPort: getEnvAsInt("API_PORT", 8080),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		ProcessorBaseURL:          getEnv("PROCESSOR_BASE_URL", "https://api.sandbox.coinbase.com"),
		ProcessorTransactionsPath: getEnv("PROCESSOR_TRANSACTIONS_PATH", ""),
		ProcessorAPIKey:           getEnv("PROCESSOR_API_KEY", ""),
		ProcessorAPISecret:        getEnv("PROCESSOR_API_SECRET", ""),
		ProcessorAPIVersion:       getEnv("PROCESSOR_API_VERSION", "2016-01-27"),

		CookieSecret: getEnv("COOKIE_SECRET", ""),

		EarnCooldown:    getEnvAsDuration("EARN_COOLDOWN", time.Minute),
		EarnAmount:      getEnvAsInt64("EARN_AMOUNT_BITS", 1),
		PayoutThreshold: getEnvAsInt64("PAYOUT_THRESHOLD_BITS", 100),
		UnitsPerCoin:    getEnvAsInt64("UNITS_PER_COIN", 1000000),
		Currency:        getEnv("CURRENCY", "BTC"),
		PayoutMemo:      getEnv("PAYOUT_MEMO", "Your free Bitcoins - enjoy!"),

		EarnRecordTTL: getEnvAsDuration("EARN_RECORD_TTL", 24*time.Hour),
		BalanceTTL:    getEnvAsDuration("BALANCE_TTL", 30*24*time.Hour),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),

		SMTPHost:     getEnv("SMTP_HOST", "smtp.example.com"),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPSender:   getEnv("SMTP_SENDER", ""),
		AlertEmail:   getEnv("ALERT_EMAIL", ""),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are properly set
func (c *Config) Validate() error {
	if c.CookieSecret == "" {
		return fmt.Errorf("COOKIE_SECRET is required")
	}

	if c.ProcessorBaseURL == "" {
		return fmt.Errorf("PROCESSOR_BASE_URL is required")
	}

	if c.ProcessorTransactionsPath == "" {
		return fmt.Errorf("PROCESSOR_TRANSACTIONS_PATH is required")
	}

	if c.ProcessorAPIKey == "" {
		return fmt.Errorf("PROCESSOR_API_KEY is required")
	}

	if c.ProcessorAPISecret == "" {
		return fmt.Errorf("PROCESSOR_API_SECRET is required")
	}

	if c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}

	if c.EarnCooldown <= 0 {
		return fmt.Errorf("EARN_COOLDOWN must be positive")
	}

	if c.EarnAmount <= 0 {
		return fmt.Errorf("EARN_AMOUNT_BITS must be positive")
	}

	if c.PayoutThreshold <= 0 {
		return fmt.Errorf("PAYOUT_THRESHOLD_BITS must be positive")
	}

	if c.UnitsPerCoin <= 0 {
		return fmt.Errorf("UNITS_PER_COIN must be positive")
	}

	// The earn record must outlive the cooldown, otherwise the stored gate
	// expires before the cooldown ends and only the cookie enforces it.
	if c.EarnRecordTTL < c.EarnCooldown {
		return fmt.Errorf("EARN_RECORD_TTL must be at least EARN_COOLDOWN")
	}

	return nil
}

// Helper functions to read environment variables
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsInt64(name string, defaultValue int64) int64 {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsDuration(name string, defaultValue time.Duration) time.Duration {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := time.ParseDuration(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}
