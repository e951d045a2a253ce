package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/username/dividendtax/src/logger"
)

// ErrValidationFailed marks statement files rejected before parsing.
var ErrValidationFailed = errors.New("statement validation failed")

// pdfSignature opens every well-formed PDF file.
var pdfSignature = []byte("%PDF-")

// ValidateStatementFile checks a statement path before the parser touches it:
// the file must exist, carry the .pdf extension, stay under maxSizeBytes and
// start with the PDF signature (magic bytes).
func ValidateStatementFile(path string, maxSizeBytes int64) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrValidationFailed, path)
	}
	if maxSizeBytes > 0 && info.Size() > maxSizeBytes {
		logger.L.Warn("Statement file too large", "path", path, "sizeBytes", info.Size(), "limit", maxSizeBytes)
		return fmt.Errorf("%w: %s exceeds the %d byte limit", ErrValidationFailed, path, maxSizeBytes)
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return fmt.Errorf("%w: %s does not have a .pdf extension", ErrValidationFailed, path)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	defer file.Close()

	header := make([]byte, len(pdfSignature))
	if _, err := io.ReadFull(file, header); err != nil {
		return fmt.Errorf("%w: reading header of %s: %v", ErrValidationFailed, path, err)
	}
	if !bytes.Equal(header, pdfSignature) {
		logger.L.Warn("Statement file is not a PDF (magic bytes)", "path", path)
		return fmt.Errorf("%w: %s is not a PDF file", ErrValidationFailed, path)
	}

	logger.L.Debug("Statement file validated", "path", path, "sizeBytes", info.Size())
	return nil
}
