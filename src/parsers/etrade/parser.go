// src/parsers/etrade/parser.go
package etrade

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/username/dividendtax/src/models"
	"github.com/username/dividendtax/src/pdf"
)

// DefaultTicker is the symbol whose dividend lines are extracted when the
// caller does not pick one.
const DefaultTicker = "INTC"

// dividendMarker is the literal that opens every dividend line on an E-Trade
// brokerage statement.
const dividendMarker = "Dividend"

// textShowOperator draws an array of strings and kerning adjustments.
// Statement text is emitted exclusively through this operator, so everything
// else in the content stream is layout noise.
const textShowOperator = "TJ"

var (
	// ErrIncompleteStatement means the token stream ended before a dividend
	// sequence completed.
	ErrIncompleteStatement = errors.New("incomplete dividend entry")
	// ErrMalformedAmount means a token that should carry an amount did not
	// parse as a decimal number.
	ErrMalformedAmount = errors.New("malformed amount")
	// ErrNoDividendFound means the document scanned cleanly but held no
	// dividend entry at all.
	ErrNoDividendFound = errors.New("no dividend entry found")
)

// scanState is the position of the extraction state machine within one
// dividend sequence.
type scanState int

const (
	searchingDividend scanState = iota
	searchingTicker
	searchingTax
	searchingGross
)

func (s scanState) String() string {
	switch s {
	case searchingDividend:
		return "searching for the dividend marker"
	case searchingTicker:
		return "searching for the ticker"
	case searchingTax:
		return "searching for the tax amount"
	case searchingGross:
		return "searching for the gross amount"
	}
	return "unknown state"
}

// Scanner walks a statement's content operations and extracts dividend
// entries one at a time. Statements render each dividend as the sequence
// date ... "Dividend", ticker, tax withheld, gross amount; the last string
// seen before the marker is the transaction date. Next returns io.EOF once
// the stream is exhausted.
type Scanner struct {
	docID  string
	ops    []pdf.Operation
	pos    int
	ticker string
	log    *slog.Logger
}

// NewScanner returns a scanner positioned at the start of ops.
func NewScanner(docID string, ops []pdf.Operation, ticker string, log *slog.Logger) *Scanner {
	if ticker == "" {
		ticker = DefaultTicker
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scanner{docID: docID, ops: ops, ticker: ticker, log: log}
}

// Next extracts the next dividend record from the stream. A sequence left
// hanging at end of stream is an ErrIncompleteStatement; a clean end of
// stream is io.EOF.
func (s *Scanner) Next() (models.DividendRecord, error) {
	state := searchingDividend
	var transactionDate string
	var taxWithheld decimal.Decimal

	for ; s.pos < len(s.ops); s.pos++ {
		op := s.ops[s.pos]
		if op.Operator != textShowOperator {
			continue
		}
		text, ok := op.FirstString()
		if !ok {
			continue
		}

		switch state {
		case searchingDividend:
			if text == dividendMarker {
				state = searchingTicker
				break
			}
			// only the last string before the marker survives as the date
			transactionDate = text
		case searchingTicker:
			if text == s.ticker {
				state = searchingTax
			}
		case searchingTax:
			amount, err := parseAmount(text)
			if err != nil {
				return models.DividendRecord{}, fmt.Errorf("%w: tax withheld %q in %s", ErrMalformedAmount, text, s.docID)
			}
			taxWithheld = amount
			state = searchingGross
		case searchingGross:
			amount, err := parseAmount(text)
			if err != nil {
				return models.DividendRecord{}, fmt.Errorf("%w: gross amount %q in %s", ErrMalformedAmount, text, s.docID)
			}
			s.pos++
			record := models.DividendRecord{
				TransactionDate: transactionDate,
				GrossAmount:     amount,
				TaxWithheld:     taxWithheld,
			}
			s.log.Debug("dividend entry extracted",
				"document", s.docID,
				"date", record.TransactionDate,
				"gross", record.GrossAmount,
				"taxWithheld", record.TaxWithheld)
			return record, nil
		}
	}

	if state != searchingDividend {
		return models.DividendRecord{}, fmt.Errorf("%w: document %s ended while %s", ErrIncompleteStatement, s.docID, state)
	}
	return models.DividendRecord{}, io.EOF
}

// parseAmount parses a statement amount exactly as printed, e.g. "574.42".
func parseAmount(text string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(text))
}

// Parser extracts dividend records from E-Trade brokerage statements.
type Parser struct {
	ticker string
	log    *slog.Logger
}

// NewParser returns a parser for the given ticker; empty falls back to
// DefaultTicker.
func NewParser(ticker string, log *slog.Logger) *Parser {
	if ticker == "" {
		ticker = DefaultTicker
	}
	if log == nil {
		log = slog.Default()
	}
	return &Parser{ticker: ticker, log: log}
}

// Parse runs the scanner over the whole document and collects every dividend
// record it yields. A document without a single complete dividend entry is
// an error.
func (p *Parser) Parse(docID string, ops []pdf.Operation) ([]models.DividendRecord, error) {
	scanner := NewScanner(docID, ops, p.ticker, p.log)
	var records []models.DividendRecord
	for {
		record, err := scanner.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoDividendFound, docID)
	}
	p.log.Info("statement scanned", "document", docID, "dividends", len(records))
	return records, nil
}

// ScanFirst extracts only the first dividend record of a document. Callers
// that know their statements carry a single entry can skip the full drain.
func ScanFirst(docID string, ops []pdf.Operation, ticker string, log *slog.Logger) (models.DividendRecord, error) {
	record, err := NewScanner(docID, ops, ticker, log).Next()
	if errors.Is(err, io.EOF) {
		return models.DividendRecord{}, fmt.Errorf("%w in %s", ErrNoDividendFound, docID)
	}
	return record, err
}
