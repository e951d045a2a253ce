package models

import (
	"github.com/shopspring/decimal"
)

// ExchangeRate is one published quote from the rate source.
type ExchangeRate struct {
	CurrencyCode  string          `json:"currency_code"`
	EffectiveDate string          `json:"effective_date"` // ISO 2006-01-02
	Mid           decimal.Decimal `json:"mid"`
}

// NBPResponse is the top-level structure of the NBP web API response for a
// single-table, single-date query, e.g.
// GET /api/exchangerates/rates/a/usd/2021-02-26/?format=json
type NBPResponse struct {
	Table    string    `json:"table"`
	Currency string    `json:"currency"`
	Code     string    `json:"code"`
	Rates    []NBPRate `json:"rates"`
}

// NBPRate is one entry of the rates array. The API returns at most one entry
// for an exact-date query.
type NBPRate struct {
	No            string          `json:"no"`
	EffectiveDate string          `json:"effectiveDate"`
	Mid           decimal.Decimal `json:"mid"`
}
