// src/parsers/factory.go
package parsers

import (
	"fmt"
	"log/slog"

	"github.com/username/dividendtax/src/parsers/etrade"
)

// GetParser returns the parser for a statement source. The ticker selects
// which symbol's dividend lines are extracted; empty means the source's
// default.
func GetParser(source, ticker string, log *slog.Logger) (StatementParser, error) {
	switch source {
	case "etrade":
		return etrade.NewParser(ticker, log), nil
	default:
		return nil, fmt.Errorf("no parser available for source: %s", source)
	}
}
