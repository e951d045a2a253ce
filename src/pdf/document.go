package pdf

import (
	"bytes"
	"fmt"
	"io"
	"os"

	pdflib "github.com/ledongthuc/pdf"
)

// Document is an open brokerage statement file.
type Document struct {
	path   string
	file   *os.File
	reader *pdflib.Reader
}

// Open opens the statement at path. The underlying reader panics on some
// malformed files rather than returning errors, so panics are converted here.
func Open(path string) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("opening document %s: %v", path, r)
		}
	}()
	file, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening document %s: %w", path, err)
	}
	return &Document{path: path, file: file, reader: reader}, nil
}

// Path returns the file path the document was opened from.
func (d *Document) Path() string {
	return d.path
}

// Close releases the underlying file handle.
func (d *Document) Close() error {
	return d.file.Close()
}

// Operations returns the content operations of every page, in page order.
func (d *Document) Operations() (ops []Operation, err error) {
	defer func() {
		if r := recover(); r != nil {
			ops = nil
			err = fmt.Errorf("reading content of %s: %v", d.path, r)
		}
	}()
	for pageNum := 1; pageNum <= d.reader.NumPage(); pageNum++ {
		page := d.reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		data, pageErr := pageContent(page)
		if pageErr != nil {
			return nil, fmt.Errorf("page %d of %s: %w", pageNum, d.path, pageErr)
		}
		pageOps, parseErr := ParseContent(data)
		if parseErr != nil {
			return nil, fmt.Errorf("page %d of %s: %w", pageNum, d.path, parseErr)
		}
		ops = append(ops, pageOps...)
	}
	return ops, nil
}

// pageContent decodes a page's content, which is either a single stream or an
// array of streams that concatenate into one.
func pageContent(page pdflib.Page) ([]byte, error) {
	contents := page.V.Key("Contents")
	switch contents.Kind() {
	case pdflib.Stream:
		return io.ReadAll(contents.Reader())
	case pdflib.Array:
		var buf bytes.Buffer
		for i := 0; i < contents.Len(); i++ {
			part, err := io.ReadAll(contents.Index(i).Reader())
			if err != nil {
				return nil, err
			}
			buf.Write(part)
			// parts of a split content stream are joined by whitespace
			buf.WriteByte('\n')
		}
		return buf.Bytes(), nil
	case pdflib.Null:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported Contents kind %d", contents.Kind())
	}
}
