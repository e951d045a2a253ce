// src/services/statement_service.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/username/dividendtax/src/models"
	"github.com/username/dividendtax/src/parsers"
	"github.com/username/dividendtax/src/pdf"
	"github.com/username/dividendtax/src/processors"
	"github.com/username/dividendtax/src/security/validation"
)

// statementCurrency is the only currency E-Trade statements settle dividends
// in; multi-currency statements are out of scope.
const statementCurrency = "USD"

type statementServiceImpl struct {
	parser                parsers.StatementParser
	rateResolver          processors.ExchangeRateResolver
	taxProcessor          processors.TaxProcessor
	maxStatementSizeBytes int64
	residence             string
	log                   *slog.Logger
}

// NewStatementService wires the pipeline together.
func NewStatementService(
	parser parsers.StatementParser,
	rateResolver processors.ExchangeRateResolver,
	taxProcessor processors.TaxProcessor,
	maxStatementSizeBytes int64,
	residence string,
	log *slog.Logger,
) StatementService {
	if log == nil {
		log = slog.Default()
	}
	return &statementServiceImpl{
		parser:                parser,
		rateResolver:          rateResolver,
		taxProcessor:          taxProcessor,
		maxStatementSizeBytes: maxStatementSizeBytes,
		residence:             residence,
		log:                   log,
	}
}

func (s *statementServiceImpl) ProcessStatement(ctx context.Context, path string) ([]models.Transaction, error) {
	startTime := time.Now()
	s.log.Info("processing statement", "path", path)

	if err := validation.ValidateStatementFile(path, s.maxStatementSizeBytes); err != nil {
		return nil, err
	}

	doc, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}
	defer doc.Close()

	ops, err := doc.Operations()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	records, err := s.parser.Parse(path, ops)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	transactions := make([]models.Transaction, 0, len(records))
	for _, record := range records {
		quote, err := s.rateResolver.ResolveStatementDate(ctx, statementCurrency, record.TransactionDate)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRateResolutionFailed, err)
		}
		transactions = append(transactions, models.Transaction{
			TransactionDate:  record.TransactionDate,
			GrossAmount:      record.GrossAmount,
			TaxWithheld:      record.TaxWithheld,
			ExchangeRateDate: quote.EffectiveDate,
			ExchangeRate:     quote.Mid,
		})
	}

	s.log.Info("statement processed", "path", path, "dividends", len(transactions), "duration", time.Since(startTime))
	return transactions, nil
}

func (s *statementServiceImpl) ProcessRun(ctx context.Context, paths []string) (*RunReport, error) {
	runID := uuid.NewString()
	log := s.log.With("runID", runID)
	log.Info("run started", "documents", len(paths))

	report := &RunReport{
		RunID:     runID,
		Residence: s.residence,
	}
	var resolved []models.Transaction
	var runErr *multierror.Error

	for _, path := range paths {
		transactions, err := s.ProcessStatement(ctx, path)
		if err != nil {
			log.Error("statement failed, continuing with the rest", "path", path, "error", err)
			report.Documents = append(report.Documents, DocumentOutcome{Path: path, Error: err.Error()})
			report.FailedCount++
			runErr = multierror.Append(runErr, fmt.Errorf("%s: %w", path, err))
			continue
		}
		report.Documents = append(report.Documents, DocumentOutcome{Path: path, Transactions: transactions})
		resolved = append(resolved, transactions...)
	}

	grossTotal, taxTotal := s.taxProcessor.Aggregate(resolved)
	report.GrossTotalPLN = grossTotal.Round(2)
	report.TaxPaidPLN = taxTotal.Round(2)
	report.TaxDuePLN = s.taxProcessor.CalculateTaxDue(grossTotal, taxTotal).Round(2)

	log.Info("run finished",
		"processed", len(paths)-report.FailedCount,
		"failed", report.FailedCount,
		"grossTotalPLN", report.GrossTotalPLN,
		"taxDuePLN", report.TaxDuePLN)
	return report, runErr.ErrorOrNil()
}
