package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears a variable for the test. Setenv registers the restore; an
// empty value still reads as set, so it has to be unset for real afterwards.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"RATE_API_BASE_URL", "RATE_MAX_LOOKBACK_DAYS", "RATE_REQUEST_INTERVAL",
		"HTTP_CLIENT_TIMEOUT", "DIVIDEND_TICKER", "MAX_STATEMENT_SIZE_BYTES",
		"DEFAULT_RESIDENCE", "DIVIDEND_TAX_RATE_PERCENT",
	} {
		unsetEnv(t, key)
	}

	LoadConfig()

	assert.Equal(t, "https://api.nbp.pl/api/exchangerates/rates/a", Cfg.RateAPIBaseURL)
	assert.Equal(t, 10, Cfg.RateMaxLookbackDays)
	assert.Equal(t, 250*time.Millisecond, Cfg.RateRequestInterval)
	assert.Equal(t, 20*time.Second, Cfg.HTTPClientTimeout)
	assert.Equal(t, "INTC", Cfg.DividendTicker)
	assert.Equal(t, int64(10*1024*1024), Cfg.MaxStatementSizeBytes)
	assert.Equal(t, "pl", Cfg.DefaultResidence)
	assert.Equal(t, 19, Cfg.DividendTaxRatePercent)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("RATE_API_BASE_URL", "http://localhost:8080/rates/a")
	t.Setenv("RATE_MAX_LOOKBACK_DAYS", "5")
	t.Setenv("RATE_REQUEST_INTERVAL", "1s")
	t.Setenv("HTTP_CLIENT_TIMEOUT", "3s")
	t.Setenv("DIVIDEND_TICKER", "AAPL")
	t.Setenv("MAX_STATEMENT_SIZE_BYTES", "2048")
	t.Setenv("DEFAULT_RESIDENCE", "pt")
	t.Setenv("DIVIDEND_TAX_RATE_PERCENT", "28")

	LoadConfig()

	assert.Equal(t, "http://localhost:8080/rates/a", Cfg.RateAPIBaseURL)
	assert.Equal(t, 5, Cfg.RateMaxLookbackDays)
	assert.Equal(t, time.Second, Cfg.RateRequestInterval)
	assert.Equal(t, 3*time.Second, Cfg.HTTPClientTimeout)
	assert.Equal(t, "AAPL", Cfg.DividendTicker)
	assert.Equal(t, int64(2048), Cfg.MaxStatementSizeBytes)
	assert.Equal(t, "pt", Cfg.DefaultResidence)
	assert.Equal(t, 28, Cfg.DividendTaxRatePercent)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv("RATE_MAX_LOOKBACK_DAYS", "0")
	t.Setenv("DIVIDEND_TAX_RATE_PERCENT", "120")
	t.Setenv("MAX_STATEMENT_SIZE_BYTES", "lots")
	t.Setenv("RATE_REQUEST_INTERVAL", "soon")

	LoadConfig()

	assert.Equal(t, 10, Cfg.RateMaxLookbackDays)
	assert.Equal(t, 19, Cfg.DividendTaxRatePercent)
	assert.Equal(t, int64(10*1024*1024), Cfg.MaxStatementSizeBytes)
	assert.Equal(t, 250*time.Millisecond, Cfg.RateRequestInterval)
}

func TestGetProxyEnvPrefersUppercase(t *testing.T) {
	t.Setenv("HTTP_PROXY", "http://upper:3128")
	t.Setenv("http_proxy", "http://lower:3128")
	assert.Equal(t, "http://upper:3128", getProxyEnv("HTTP_PROXY", "http_proxy"))

	unsetEnv(t, "HTTP_PROXY")
	assert.Equal(t, "http://lower:3128", getProxyEnv("HTTP_PROXY", "http_proxy"))
}
