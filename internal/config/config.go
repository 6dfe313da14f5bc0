// Package config loads runtime settings from the environment, with a
// .env file picked up in development.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"tally/internal/money"

	"github.com/joho/godotenv"
)

// Config carries every runtime setting the binaries need.
type Config struct {
	Env  string
	Port string

	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string
	DBSSLMode         string
	DBMaxIdleConns    int
	DBMaxOpenConns    int
	DBConnMaxLifetime time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	JWTSecret string
	TokenTTL  time.Duration

	DefaultCurrency     string
	SupportedCurrencies []string
	ExchangeRates       map[string]float64

	MaxTransactionAmount money.Money
	MaxCreditLimit       money.Money
	InterestRate         float64
	BatchSize            int
	PendingTTL           time.Duration
}

// Load reads the environment into a Config. Missing variables fall
// back to development defaults.
func Load() *Config {
	LoadEnv()
	return &Config{
		Env:  GetEnv("ENV", "development"),
		Port: GetEnv("PORT", "8080"),

		DBHost:            GetEnv("DB_HOST", "localhost"),
		DBPort:            GetEnv("DB_PORT", "5432"),
		DBUser:            GetEnv("DB_USER", "postgres"),
		DBPassword:        GetEnv("DB_PASSWORD", "postgres"),
		DBName:            GetEnv("DB_NAME", "tally"),
		DBSSLMode:         GetEnv("DB_SSLMODE", "disable"),
		DBMaxIdleConns:    GetIntEnv("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns:    GetIntEnv("DB_MAX_OPEN_CONNS", 100),
		DBConnMaxLifetime: GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),

		RedisAddr:     GetEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),
		RedisDB:       GetIntEnv("REDIS_DB", 0),
		CacheTTL:      GetDurationEnv("CACHE_TTL", 5*time.Minute),

		JWTSecret: GetEnv("JWT_SECRET", "dev-secret"),
		TokenTTL:  GetDurationEnv("TOKEN_TTL", 15*time.Minute),

		DefaultCurrency:     GetEnv("DEFAULT_CURRENCY", "USD"),
		SupportedCurrencies: splitList(GetEnv("SUPPORTED_CURRENCIES", "USD,EUR")),
		ExchangeRates:       parseRates(GetEnv("EXCHANGE_RATES", "USD/EUR=0.95,EUR/USD=1.05")),

		MaxTransactionAmount: GetMoneyEnv("MAX_TRANSACTION_AMOUNT", "0"),
		MaxCreditLimit:       GetMoneyEnv("MAX_CREDIT_LIMIT", "0"),
		InterestRate:         GetFloatEnv("INTEREST_RATE", 0.01),
		BatchSize:            GetIntEnv("BATCH_SIZE", 100),
		PendingTTL:           GetDurationEnv("PENDING_TTL", 72*time.Hour),
	}
}

// DatabaseDSN builds the postgres connection string.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// IsProduction checks if the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetFloatEnv returns a float environment variable or a default value.
func GetFloatEnv(key string, defaultVal float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// GetDurationEnv returns a duration environment variable or a default
// value. Values use Go duration syntax ("30s", "72h").
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// GetMoneyEnv returns a decimal money environment variable or a default
// value. "0" means unlimited for limit settings.
func GetMoneyEnv(key, defaultVal string) money.Money {
	val := GetEnv(key, defaultVal)
	m, err := money.FromDecimal(val)
	if err != nil {
		log.Printf("invalid amount in %s: %v", key, err)
		return money.Zero
	}
	return m
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseRates reads "USD/EUR=0.95,EUR/USD=1.05" into a rate map.
// Malformed entries are skipped with a log line.
func parseRates(val string) map[string]float64 {
	rates := make(map[string]float64)
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part == "" {
			continue
		}
		pair, rateStr, ok := strings.Cut(part, "=")
		if !ok {
			log.Printf("skipping malformed exchange rate %q", part)
			continue
		}
		rate, err := strconv.ParseFloat(rateStr, 64)
		if err != nil || rate <= 0 {
			log.Printf("skipping malformed exchange rate %q", part)
			continue
		}
		rates[strings.TrimSpace(pair)] = rate
	}
	return rates
}
