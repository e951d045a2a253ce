package pdf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildStatementPDF assembles a minimal single-page PDF whose content stream
// draws each token as one text-show operation, the way statement generators
// lay out their text.
func buildStatementPDF(tokens []string) []byte {
	var content strings.Builder
	content.WriteString("BT /F1 10 Tf\n")
	for _, token := range tokens {
		fmt.Fprintf(&content, "[(%s)] TJ\n", escapeLiteral(token))
	}
	content.WriteString("ET")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", content.Len(), content.String()),
	}

	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects)+1)
	for i, object := range objects {
		offsets[i+1] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n%s\nendobj\n", i+1, object)
	}
	xrefOffset := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n", len(objects)+1)
	out.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objects); i++ {
		fmt.Fprintf(&out, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefOffset)
	return out.Bytes()
}

func escapeLiteral(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`)
	return replacer.Replace(s)
}

func writeStatementPDF(t *testing.T, tokens []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "statement.pdf")
	require.NoError(t, os.WriteFile(path, buildStatementPDF(tokens), 0o600))
	return path
}

func TestDocumentOperations(t *testing.T) {
	tokens := []string{"03/01/21", "Dividend", "INTC", "86.16", "574.42"}
	path := writeStatementPDF(t, tokens)

	doc, err := Open(path)
	require.NoError(t, err)
	defer doc.Close()

	assert.Equal(t, path, doc.Path())

	ops, err := doc.Operations()
	require.NoError(t, err)

	var texts []string
	for _, op := range ops {
		if op.Operator != "TJ" {
			continue
		}
		if text, ok := op.FirstString(); ok {
			texts = append(texts, text)
		}
	}
	assert.Equal(t, tokens, texts)
}

func TestOpenRejectsNonPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-statement.pdf")
	require.NoError(t, os.WriteFile(path, []byte("plain text, no cross reference table"), 0o600))

	_, err := Open(path)
	require.Error(t, err)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
}
