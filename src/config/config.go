package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	LogLevel string

	// Rate source settings. The proxy values are read here, once, and threaded
	// into the HTTP client at construction; nothing reads the environment
	// mid-lookup.
	RateAPIBaseURL      string
	RateMaxLookbackDays int
	RateRequestInterval time.Duration
	HTTPClientTimeout   time.Duration
	HTTPProxy           string
	HTTPSProxy          string

	// Statement extraction settings.
	DividendTicker        string
	MaxStatementSizeBytes int64

	// Reporting settings.
	DefaultResidence       string
	DividendTaxRatePercent int
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	maxStatementSizeBytesStr := getEnv("MAX_STATEMENT_SIZE_BYTES", "10485760")
	maxStatementSizeBytes, err := strconv.ParseInt(maxStatementSizeBytesStr, 10, 64)
	if err != nil {
		log.Printf("WARNING: Invalid MAX_STATEMENT_SIZE_BYTES format '%s'. Using default 10MB. Error: %v", maxStatementSizeBytesStr, err)
		maxStatementSizeBytes = 10 * 1024 * 1024
	}

	taxRatePercent := getEnvAsInt("DIVIDEND_TAX_RATE_PERCENT", 19)
	if taxRatePercent < 0 || taxRatePercent > 100 {
		log.Printf("WARNING: DIVIDEND_TAX_RATE_PERCENT out of range (%d). Using default 19.", taxRatePercent)
		taxRatePercent = 19
	}

	lookbackDays := getEnvAsInt("RATE_MAX_LOOKBACK_DAYS", 10)
	if lookbackDays < 1 {
		log.Printf("WARNING: RATE_MAX_LOOKBACK_DAYS must be at least 1, got %d. Using default 10.", lookbackDays)
		lookbackDays = 10
	}

	Cfg = &AppConfig{
		LogLevel: getEnv("LOG_LEVEL", "info"),

		RateAPIBaseURL:      getEnv("RATE_API_BASE_URL", "https://api.nbp.pl/api/exchangerates/rates/a"),
		RateMaxLookbackDays: lookbackDays,
		RateRequestInterval: getEnvAsDuration("RATE_REQUEST_INTERVAL", 250*time.Millisecond),
		HTTPClientTimeout:   getEnvAsDuration("HTTP_CLIENT_TIMEOUT", 20*time.Second),
		HTTPProxy:           getProxyEnv("HTTP_PROXY", "http_proxy"),
		HTTPSProxy:          getProxyEnv("HTTPS_PROXY", "https_proxy"),

		DividendTicker:        getEnv("DIVIDEND_TICKER", "INTC"),
		MaxStatementSizeBytes: maxStatementSizeBytes,

		DefaultResidence:       getEnv("DEFAULT_RESIDENCE", "pl"),
		DividendTaxRatePercent: taxRatePercent,
	}

	log.Printf("Configuration loaded: LogLevel=%s, RateAPI=%s, LookbackDays=%d, Ticker=%s",
		Cfg.LogLevel, Cfg.RateAPIBaseURL, Cfg.RateMaxLookbackDays, Cfg.DividendTicker)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

// getProxyEnv honors both spellings of the proxy variables; the uppercase one wins.
func getProxyEnv(upper, lower string) string {
	if value, exists := os.LookupEnv(upper); exists {
		return value
	}
	if value, exists := os.LookupEnv(lower); exists {
		return value
	}
	return ""
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Integer value for %s not set or empty, using default: %d", key, fallback)
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Duration value for %s not set or empty, using default: %s", key, fallback.String())
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
