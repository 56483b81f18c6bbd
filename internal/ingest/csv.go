package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"qa-dashboard/internal/metrics"
)

// Document is a parsed CSV: the trimmed header row and every non-blank data row.
type Document struct {
	Header []string
	Rows   []metrics.RawRecord
}

// First returns the first data row, the only one the dashboard consults.
func (d *Document) First() (metrics.RawRecord, bool) {
	if d == nil || len(d.Rows) == 0 {
		return nil, false
	}
	return d.Rows[0], true
}

// Parse reads a CSV document whose first non-blank row names the columns.
// Headers are trimmed (including a leading UTF-8 BOM), cells are dynamically
// typed, blank lines are skipped and rows may be ragged. An empty document
// parses to a Document with no rows.
func Parse(r io.Reader) (*Document, error) {
	cr := csv.NewReader(skipBOM(r))
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	doc := &Document{}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return doc, nil
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &ParseError{Line: pe.Line, Err: pe.Err}
			}
			return nil, &ParseError{Err: err}
		}
		if blank(record) {
			continue
		}
		if doc.Header == nil {
			doc.Header = header(record)
			continue
		}
		doc.Rows = append(doc.Rows, row(doc.Header, record))
	}
}

func header(record []string) []string {
	h := make([]string, len(record))
	for i, name := range record {
		h[i] = strings.TrimSpace(name)
	}
	return h
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// skipBOM drops the byte-order mark spreadsheet exports put before the header.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(b, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

func row(header, record []string) metrics.RawRecord {
	rec := make(metrics.RawRecord, len(header))
	for i, name := range header {
		if name == "" {
			continue
		}
		if _, dup := rec[name]; dup {
			continue
		}
		if i >= len(record) {
			rec[name] = metrics.Value{}
			continue
		}
		rec[name] = metrics.Infer(record[i])
	}
	return rec
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
