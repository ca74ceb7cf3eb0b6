package gridsheet

import (
	"strings"
)

// Assignment is one value parsed from clipboard text
type Assignment struct {
	Coord Coord
	Raw   string
}

// Serialize renders a range as text: cells joined by tabs, rows by
// newlines. missing cells render as empty strings.
func Serialize(r Range, s Snapshot) string {
	var b strings.Builder
	for row := r.Start.Row; row <= r.End.Row; row++ {
		if row > r.Start.Row {
			b.WriteByte('\n')
		}
		for col := r.Start.Col; col <= r.End.Col; col++ {
			if col > r.Start.Col {
				b.WriteByte('\t')
			}
			if content, ok := s.Content(Coord{Row: row, Col: col}); ok {
				b.WriteString(content)
			}
		}
	}
	return b.String()
}

// Deserialize splits clipboard text into assignments anchored at target.
// values that would land outside a rows x cols grid are dropped. CRLF line
// endings are accepted. a trailing line break starts one more row, since
// Serialize ends that way when the last row is empty.
func Deserialize(text string, target Coord, rows, cols int) []Assignment {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var out []Assignment
	for rowOffset, line := range strings.Split(text, "\n") {
		for colOffset, raw := range strings.Split(line, "\t") {
			c := target.Offset(rowOffset, colOffset)
			if c.Row < 0 || c.Col < 0 || c.Row >= rows || c.Col >= cols {
				continue
			}
			out = append(out, Assignment{Coord: c, Raw: raw})
		}
	}
	return out
}
