package processors

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/username/dividendtax/src/models"
)

var (
	// ErrInvalidDate means a transaction date could not be parsed.
	ErrInvalidDate = errors.New("invalid transaction date")
	// ErrLookupFailed means the rate source could not be reached or returned
	// a body that does not decode. It aborts the current walk only; other
	// transactions keep their own lookups.
	ErrLookupFailed = errors.New("exchange rate lookup failed")
	// ErrRateUnavailable means the backward search ran out of lookback days
	// without finding a published rate.
	ErrRateUnavailable = errors.New("exchange rate unavailable")
)

// ExchangeRateResolver finds the most recent rate published strictly before
// a date.
type ExchangeRateResolver interface {
	// Resolve walks backward from onOrBefore, one calendar day at a time,
	// and returns the first published rate it finds. The effective date of
	// the result is always earlier than onOrBefore.
	Resolve(ctx context.Context, currency string, onOrBefore time.Time) (models.ExchangeRate, error)
	// ResolveStatementDate parses a raw statement date and resolves it.
	ResolveStatementDate(ctx context.Context, currency, rawDate string) (models.ExchangeRate, error)
}

// TaxProcessor folds resolved transactions into home-currency totals.
type TaxProcessor interface {
	// Aggregate converts every transaction at its own exchange rate and sums
	// the gross and withheld series independently. Pure; order of the input
	// does not matter; empty input yields two zeros.
	Aggregate(transactions []models.Transaction) (grossTotal, taxTotal decimal.Decimal)
	// CalculateTaxDue is the top-up owed at the flat rate after foreign
	// withholding is credited.
	CalculateTaxDue(grossTotal, taxTotal decimal.Decimal) decimal.Decimal
}
