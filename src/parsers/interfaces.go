package parsers

import (
	"github.com/username/dividendtax/src/models"
	"github.com/username/dividendtax/src/pdf"
)

// StatementParser extracts dividend records from a statement's content
// operations. Implementations are broker specific; docID names the document
// in diagnostics.
type StatementParser interface {
	Parse(docID string, ops []pdf.Operation) ([]models.DividendRecord, error)
}
