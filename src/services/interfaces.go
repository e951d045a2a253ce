package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/username/dividendtax/src/models"
)

var (
	// ErrParsingFailed wraps document and scanner errors surfaced for one
	// statement.
	ErrParsingFailed = errors.New("statement parsing failed")
	// ErrRateResolutionFailed wraps resolver errors surfaced for one
	// statement.
	ErrRateResolutionFailed = errors.New("exchange rate resolution failed")
)

// DocumentOutcome records how one statement fared: its resolved transactions
// on success, or the failure that stopped it. A failed document never stops
// the run.
type DocumentOutcome struct {
	Path         string               `json:"path"`
	Transactions []models.Transaction `json:"transactions,omitempty"`
	Error        string               `json:"error,omitempty"`
}

// Failed reports whether the document was dropped from aggregation.
func (o DocumentOutcome) Failed() bool {
	return o.Error != ""
}

// RunReport aggregates a whole invocation. Totals cover only the documents
// that succeeded end to end.
type RunReport struct {
	RunID         string            `json:"run_id"`
	Residence     string            `json:"residence"`
	Documents     []DocumentOutcome `json:"documents"`
	GrossTotalPLN decimal.Decimal   `json:"gross_total_pln"`
	TaxPaidPLN    decimal.Decimal   `json:"tax_paid_pln"`
	TaxDuePLN     decimal.Decimal   `json:"tax_due_pln"`
	FailedCount   int               `json:"failed_count"`
}

// StatementService runs the scan, resolve and aggregate pipeline.
type StatementService interface {
	// ProcessStatement handles one document: validation, extraction and a
	// rate lookup per dividend entry.
	ProcessStatement(ctx context.Context, path string) ([]models.Transaction, error)
	// ProcessRun handles every document sequentially, skipping failed ones,
	// and folds the survivors into the report totals. The returned error
	// collects the per-document failures; the report is valid either way.
	ProcessRun(ctx context.Context, paths []string) (*RunReport, error)
}
