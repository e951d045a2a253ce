package models

import (
	"github.com/shopspring/decimal"
)

// DividendRecord is one dividend event extracted from a brokerage statement.
// All three fields come out of a single scan pass and the record is never
// mutated after the scanner emits it. Amounts are in the statement currency
// (USD) and are non-negative with two-decimal precision.
type DividendRecord struct {
	TransactionDate string          `json:"transaction_date"` // raw statement format, e.g. "03/01/21"
	GrossAmount     decimal.Decimal `json:"gross_amount"`
	TaxWithheld     decimal.Decimal `json:"tax_withheld"`
}

// Transaction is the join of a DividendRecord and the exchange rate resolved
// for its transaction date. Constructed once both halves are known; never
// mutated afterwards.
type Transaction struct {
	TransactionDate  string          `json:"transaction_date"`
	GrossAmount      decimal.Decimal `json:"gross_amount"`
	TaxWithheld      decimal.Decimal `json:"tax_withheld"`
	ExchangeRateDate string          `json:"exchange_rate_date"` // ISO, always earlier than TransactionDate
	ExchangeRate     decimal.Decimal `json:"exchange_rate"`
}
