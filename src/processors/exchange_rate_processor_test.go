package processors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func nbpBody(date, mid string) string {
	return fmt.Sprintf(`{"table":"A","currency":"dolar amerykański","code":"USD","rates":[{"no":"039/A/NBP/2021","effectiveDate":%q,"mid":%s}]}`, date, mid)
}

// rateSource fakes the NBP table A endpoint: it serves the rates it was given
// and answers 404 for every other date, recording each request it sees.
type rateSource struct {
	mu       sync.Mutex
	requests []string
	rates    map[string]string // ISO date -> mid
	server   *httptest.Server
}

func newRateSource(t *testing.T, rates map[string]string) *rateSource {
	t.Helper()
	src := &rateSource{rates: rates}
	src.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		src.mu.Lock()
		src.requests = append(src.requests, r.URL.RequestURI())
		src.mu.Unlock()

		segments := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(segments) != 2 {
			http.Error(w, "400 BadRequest", http.StatusBadRequest)
			return
		}
		mid, ok := src.rates[segments[1]]
		if !ok {
			http.Error(w, "404 NotFound - Not Found - Brak danych", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, nbpBody(segments[1], mid))
	}))
	t.Cleanup(src.server.Close)
	return src
}

func (s *rateSource) seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func newResolver(baseURL string, lookbackDays int) ExchangeRateResolver {
	return NewExchangeRateResolver(ResolverConfig{
		BaseURL:         baseURL,
		MaxLookbackDays: lookbackDays,
		Timeout:         5 * time.Second,
	}, discardLogger())
}

func date(t *testing.T, iso string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", iso)
	require.NoError(t, err)
	return parsed
}

func TestResolveWalksBackToLatestPublishedRate(t *testing.T) {
	// a rate dated the transaction day itself must not be used
	src := newRateSource(t, map[string]string{
		"2021-03-01": "3.9000",
		"2021-02-26": "3.7247",
	})
	resolver := newResolver(src.server.URL, 10)

	quote, err := resolver.Resolve(context.Background(), "USD", date(t, "2021-03-01"))
	require.NoError(t, err)
	assert.Equal(t, "USD", quote.CurrencyCode)
	assert.Equal(t, "2021-02-26", quote.EffectiveDate)
	assert.Equal(t, "3.7247", quote.Mid.String())

	assert.Equal(t, []string{
		"/usd/2021-02-28/?format=json",
		"/usd/2021-02-27/?format=json",
		"/usd/2021-02-26/?format=json",
	}, src.seen())
}

func TestResolveExhaustsLookback(t *testing.T) {
	src := newRateSource(t, nil)
	resolver := newResolver(src.server.URL, 5)

	_, err := resolver.Resolve(context.Background(), "USD", date(t, "2021-03-01"))
	require.ErrorIs(t, err, ErrRateUnavailable)
	assert.Contains(t, err.Error(), "USD")
	assert.Contains(t, err.Error(), "2021-03-01")

	requests := src.seen()
	require.Len(t, requests, 5)
	assert.Equal(t, "/usd/2021-02-24/?format=json", requests[4])
}

func TestResolveSkipsEmptyRatesArray(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		if calls == 1 {
			fmt.Fprint(w, `{"table":"A","currency":"dolar amerykański","code":"USD","rates":[]}`)
			return
		}
		fmt.Fprint(w, nbpBody("2021-02-27", "3.7100"))
	}))
	defer server.Close()
	resolver := newResolver(server.URL, 10)

	quote, err := resolver.Resolve(context.Background(), "USD", date(t, "2021-03-01"))
	require.NoError(t, err)
	assert.Equal(t, "2021-02-27", quote.EffectiveDate)
	assert.Equal(t, 2, calls)
}

func TestResolveTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()
	resolver := newResolver(baseURL, 10)

	_, err := resolver.Resolve(context.Background(), "USD", date(t, "2021-03-01"))
	require.ErrorIs(t, err, ErrLookupFailed)
}

func TestResolveMalformedResponse(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, "<html>maintenance</html>")
	}))
	defer server.Close()
	resolver := newResolver(server.URL, 10)

	_, err := resolver.Resolve(context.Background(), "USD", date(t, "2021-03-01"))
	require.ErrorIs(t, err, ErrLookupFailed)
	assert.Equal(t, 1, calls, "a decoding failure must stop the walk")
}

func TestResolveFillsMissingEffectiveDate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"table":"A","currency":"dolar amerykański","code":"USD","rates":[{"no":"039/A/NBP/2021","mid":3.7247}]}`)
	}))
	defer server.Close()
	resolver := newResolver(server.URL, 10)

	quote, err := resolver.Resolve(context.Background(), "USD", date(t, "2021-03-01"))
	require.NoError(t, err)
	assert.Equal(t, "2021-02-28", quote.EffectiveDate)
}

func TestResolveCancelledContext(t *testing.T) {
	src := newRateSource(t, nil)
	resolver := newResolver(src.server.URL, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := resolver.Resolve(ctx, "USD", date(t, "2021-03-01"))
	require.ErrorIs(t, err, ErrLookupFailed)
	assert.Empty(t, src.seen())
}

func TestResolveStatementDate(t *testing.T) {
	src := newRateSource(t, map[string]string{"2021-02-26": "3.7247"})
	resolver := newResolver(src.server.URL, 10)

	quote, err := resolver.ResolveStatementDate(context.Background(), "USD", "03/01/21")
	require.NoError(t, err)
	assert.Equal(t, "2021-02-26", quote.EffectiveDate)
	assert.Equal(t, "3.7247", quote.Mid.String())
}

func TestResolveStatementDateRejectsBadInput(t *testing.T) {
	src := newRateSource(t, map[string]string{"2021-02-26": "3.7247"})
	resolver := newResolver(src.server.URL, 10)

	for _, raw := range []string{"", "Dividend", "2021-03-01", "13/01/21"} {
		_, err := resolver.ResolveStatementDate(context.Background(), "USD", raw)
		assert.ErrorIs(t, err, ErrInvalidDate, "input %q", raw)
	}
	assert.Empty(t, src.seen(), "no lookup may happen for an unparseable date")
}
