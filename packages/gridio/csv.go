package gridio

import (
	"fmt"
	"io"
	"strings"

	"github.com/vogtb/go-gridsheet/packages/gridsheet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// DefaultEncoding is the CSV output encoding used when none is given
const DefaultEncoding = "utf-8"

var csvEncodings = map[string]*charmap.Charmap{
	"latin1":       charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
}

// lookupEncoding returns nil for utf-8
func lookupEncoding(name string) (*encoding.Encoder, error) {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "", "utf-8", "utf8":
		return nil, nil
	default:
		cm, ok := csvEncodings[n]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, name)
		}
		// runes outside the code page become its substitute byte
		return encoding.ReplaceUnsupported(cm.NewEncoder()), nil
	}
}

// FormatCSV renders what every cell displays, each field quoted with
// embedded quotes doubled, rows separated by newlines.
func FormatCSV(doc gridsheet.Document) string {
	var b strings.Builder
	for r, row := range doc.Rows {
		if r > 0 {
			b.WriteByte('\n')
		}
		for c, rec := range row {
			if c > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(rec.Display(), `"`, `""`))
			b.WriteByte('"')
		}
	}
	return b.String()
}

// WriteCSV writes FormatCSV output in the named encoding (utf-8, latin1 or
// windows-1252).
func WriteCSV(w io.Writer, doc gridsheet.Document, encodingName string) error {
	enc, err := lookupEncoding(encodingName)
	if err != nil {
		return err
	}

	out := FormatCSV(doc)
	if enc != nil {
		if out, err = enc.String(out); err != nil {
			return fmt.Errorf("encode csv as %s: %w", encodingName, err)
		}
	}
	if _, err := io.WriteString(w, out); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
