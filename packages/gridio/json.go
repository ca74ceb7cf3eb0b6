// Package gridio moves grid documents in and out of files: JSON for
// saving work, CSV and xlsx for exchange with other spreadsheet tools.
package gridio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vogtb/go-gridsheet/packages/gridsheet"
	"go.alis.build/alog"
)

// ErrUnsupportedEncoding is returned for CSV encodings without a charmap.
var ErrUnsupportedEncoding = errors.New("unsupported encoding")

// ErrEmptyWorkbook is returned when an xlsx file has no sheets to import.
var ErrEmptyWorkbook = errors.New("workbook has no sheets")

// EncodeJSON writes a document as indented JSON
func EncodeJSON(w io.Writer, doc gridsheet.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return nil
}

// DecodeJSON reads a document written by EncodeJSON
func DecodeJSON(r io.Reader) (gridsheet.Document, error) {
	var doc gridsheet.Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return gridsheet.Document{}, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

// SaveJSON writes a document to path, replacing any existing file
func SaveJSON(ctx context.Context, path string, doc gridsheet.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := EncodeJSON(f, doc); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	rows, cols := doc.Dimensions()
	alog.Debugf(ctx, "saved document %s (%dx%d) to %s", doc.ID, rows, cols, path)
	return nil
}

// LoadJSON reads a document from path
func LoadJSON(ctx context.Context, path string) (gridsheet.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return gridsheet.Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := DecodeJSON(f)
	if err != nil {
		return gridsheet.Document{}, fmt.Errorf("%s: %w", path, err)
	}
	alog.Debugf(ctx, "loaded document %s from %s", doc.ID, path)
	return doc, nil
}
