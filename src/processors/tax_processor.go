package processors

import (
	"github.com/shopspring/decimal"

	"github.com/username/dividendtax/src/models"
)

// taxProcessorImpl implements the TaxProcessor interface.
type taxProcessorImpl struct {
	flatRate decimal.Decimal // e.g. 0.19 for the Polish flat dividend rate
}

// NewTaxProcessor creates a tax processor for a flat rate given in percent,
// e.g. 19.
func NewTaxProcessor(ratePercent int64) TaxProcessor {
	return &taxProcessorImpl{
		flatRate: decimal.NewFromInt(ratePercent).Div(decimal.NewFromInt(100)),
	}
}

func (p *taxProcessorImpl) Aggregate(transactions []models.Transaction) (grossTotal, taxTotal decimal.Decimal) {
	grossTotal = decimal.Zero
	taxTotal = decimal.Zero
	for _, t := range transactions {
		grossTotal = grossTotal.Add(t.GrossAmount.Mul(t.ExchangeRate))
		taxTotal = taxTotal.Add(t.TaxWithheld.Mul(t.ExchangeRate))
	}
	return grossTotal, taxTotal
}

func (p *taxProcessorImpl) CalculateTaxDue(grossTotal, taxTotal decimal.Decimal) decimal.Decimal {
	return grossTotal.Mul(p.flatRate).Sub(taxTotal)
}
