package processors

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/username/dividendtax/src/models"
	"github.com/username/dividendtax/src/utils"
)

// ResolverConfig carries the network and search settings for the NBP-backed
// resolver. Proxy values come from configuration loaded at startup; nothing
// reads the environment during a lookup.
type ResolverConfig struct {
	BaseURL         string
	MaxLookbackDays int
	RequestInterval time.Duration
	Timeout         time.Duration
	HTTPProxy       string
	HTTPSProxy      string
}

type exchangeRateResolverImpl struct {
	client          *resty.Client
	maxLookbackDays int
	limiter         *rate.Limiter
	log             *slog.Logger
}

// NewExchangeRateResolver builds a resolver backed by the NBP web API. The
// client is configured here, once for the whole run: base URL, per-call
// timeout and proxy. Lookups are never cached; repeated dates re-query.
func NewExchangeRateResolver(cfg ResolverConfig, log *slog.Logger) ExchangeRateResolver {
	if log == nil {
		log = slog.Default()
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	if cfg.HTTPSProxy != "" {
		client.SetProxy(cfg.HTTPSProxy)
	} else if cfg.HTTPProxy != "" {
		client.SetProxy(cfg.HTTPProxy)
	}

	maxLookbackDays := cfg.MaxLookbackDays
	if maxLookbackDays < 1 {
		maxLookbackDays = 1
	}

	return &exchangeRateResolverImpl{
		client:          client,
		maxLookbackDays: maxLookbackDays,
		// rate.Every treats a non-positive interval as no limit
		limiter: rate.NewLimiter(rate.Every(cfg.RequestInterval), 1),
		log:     log,
	}
}

// Resolve walks backward one day at a time until the source publishes a rate.
// The rate for a given day is only published after that day closes, so the
// walk decrements before the first query and never touches onOrBefore itself.
func (r *exchangeRateResolverImpl) Resolve(ctx context.Context, currency string, onOrBefore time.Time) (models.ExchangeRate, error) {
	day := onOrBefore
	for step := 0; step < r.maxLookbackDays; step++ {
		day = day.AddDate(0, 0, -1)
		if err := r.limiter.Wait(ctx); err != nil {
			return models.ExchangeRate{}, fmt.Errorf("%w: %v", ErrLookupFailed, err)
		}
		quote, found, err := r.queryRate(ctx, currency, day)
		if err != nil {
			return models.ExchangeRate{}, err
		}
		if !found {
			r.log.Debug("no rate published, stepping back",
				"currency", currency, "date", utils.FormatISODate(day))
			continue
		}
		return quote, nil
	}
	r.log.Warn("exchange rate search exhausted",
		"currency", currency,
		"onOrBefore", utils.FormatISODate(onOrBefore),
		"lookbackDays", r.maxLookbackDays)
	return models.ExchangeRate{}, fmt.Errorf("%w: no %s rate within %d days before %s",
		ErrRateUnavailable, currency, r.maxLookbackDays, utils.FormatISODate(onOrBefore))
}

func (r *exchangeRateResolverImpl) ResolveStatementDate(ctx context.Context, currency, rawDate string) (models.ExchangeRate, error) {
	parsed, err := utils.ParseStatementDate(rawDate)
	if err != nil {
		return models.ExchangeRate{}, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	return r.Resolve(ctx, currency, parsed)
}

// queryRate asks the source for the rate of one exact date. A non-success
// status or an empty rates array means no rate is published for that date;
// transport and decoding failures are ErrLookupFailed.
func (r *exchangeRateResolverImpl) queryRate(ctx context.Context, currency string, day time.Time) (models.ExchangeRate, bool, error) {
	dateStr := utils.FormatISODate(day)
	resp, err := r.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"code": strings.ToLower(currency),
			"date": dateStr,
		}).
		SetQueryParam("format", "json").
		Get("/{code}/{date}/")
	if err != nil {
		return models.ExchangeRate{}, false, fmt.Errorf("%w: querying %s rate for %s: %v",
			ErrLookupFailed, currency, dateStr, err)
	}
	if !resp.IsSuccess() {
		return models.ExchangeRate{}, false, nil
	}

	var nbp models.NBPResponse
	if err := json.Unmarshal(resp.Body(), &nbp); err != nil {
		return models.ExchangeRate{}, false, fmt.Errorf("%w: decoding rate response for %s: %v",
			ErrLookupFailed, dateStr, err)
	}
	if len(nbp.Rates) == 0 {
		return models.ExchangeRate{}, false, nil
	}

	quote := nbp.Rates[0]
	effectiveDate := quote.EffectiveDate
	if effectiveDate == "" {
		effectiveDate = dateStr
	}
	r.log.Debug("exchange rate resolved",
		"currency", currency, "effectiveDate", effectiveDate, "mid", quote.Mid)
	return models.ExchangeRate{
		CurrencyCode:  strings.ToUpper(currency),
		EffectiveDate: effectiveDate,
		Mid:           quote.Mid,
	}, true, nil
}
