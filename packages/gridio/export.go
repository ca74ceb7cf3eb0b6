package gridio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vogtb/go-gridsheet/packages/gridsheet"
	"go.alis.build/alog"
	"golang.org/x/sync/errgroup"
)

// Format names an output file format
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Target is one file to export a document to. Encoding applies to CSV only.
type Target struct {
	Format   Format
	Path     string
	Encoding string
}

// FormatFromPath guesses the format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); Format(ext) {
	case FormatJSON, FormatCSV, FormatXLSX:
		return Format(ext), nil
	default:
		return "", fmt.Errorf("unknown export format %q for %s", ext, path)
	}
}

// Export writes the document to every target concurrently. the first
// failure cancels the rest; files already written are left in place.
func Export(ctx context.Context, doc gridsheet.Document, targets ...Target) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, t := range targets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := exportOne(ctx, doc, t); err != nil {
				return fmt.Errorf("export %s: %w", t.Path, err)
			}
			alog.Infof(ctx, "exported %s as %s", t.Path, t.Format)
			return nil
		})
	}
	return g.Wait()
}

func exportOne(ctx context.Context, doc gridsheet.Document, t Target) error {
	if t.Format == FormatJSON {
		return SaveJSON(ctx, t.Path, doc)
	}

	f, err := os.Create(t.Path)
	if err != nil {
		return err
	}
	switch t.Format {
	case FormatCSV:
		err = WriteCSV(f, doc, t.Encoding)
	case FormatXLSX:
		err = WriteXLSX(ctx, f, doc)
	default:
		err = fmt.Errorf("unknown export format %q", t.Format)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// ImportXLSX reads the first sheet of the workbook at path
func ImportXLSX(ctx context.Context, path string) (gridsheet.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return gridsheet.Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := ReadXLSX(ctx, f)
	if err != nil {
		return gridsheet.Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
