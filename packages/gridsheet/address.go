package gridsheet

import (
	"fmt"
	"strconv"

	"google.golang.org/grpc/codes"
)

// Coord is a zero-based (row, column) position in the grid
type Coord struct {
	Row int
	Col int
}

// String returns the label form, e.g. "B3"
func (c Coord) String() string {
	return ToLabel(c)
}

// Offset returns c moved by the given row and column deltas.
func (c Coord) Offset(rows, cols int) Coord {
	return Coord{Row: c.Row + rows, Col: c.Col + cols}
}

// ToLabel renders a coordinate as column letters followed by the 1-based row.
func ToLabel(c Coord) string {
	return ColumnLabel(c.Col) + strconv.Itoa(c.Row+1)
}

// ColumnLabel converts a zero-based column index to letters. the letters are
// a base-26 numeral with no zero digit: 0 -> A, 25 -> Z, 26 -> AA.
func ColumnLabel(col int) string {
	if col < 0 {
		return ""
	}
	var buf [16]byte
	i := len(buf)
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		i--
		buf[i] = byte('A' + (n-1)%26)
	}
	return string(buf[i:])
}

// ColumnIndex converts uppercase column letters back to a zero-based index.
func ColumnIndex(letters string) (int, error) {
	if letters == "" {
		return 0, invalidAddress(letters)
	}
	col := 0
	for i := 0; i < len(letters); i++ {
		ch := letters[i]
		if ch < 'A' || ch > 'Z' {
			return 0, invalidAddress(letters)
		}
		col = col*26 + int(ch-'A'+1)
		if col > maxColumnIndex {
			return 0, invalidAddress(letters)
		}
	}
	return col - 1, nil
}

// maxColumnIndex keeps column arithmetic far away from int overflow.
const maxColumnIndex = 1 << 30

// FromLabel parses "A1"-style labels. only uppercase letters are accepted.
func FromLabel(label string) (Coord, error) {
	letterEnd := 0
	for letterEnd < len(label) && label[letterEnd] >= 'A' && label[letterEnd] <= 'Z' {
		letterEnd++
	}
	if letterEnd == 0 || letterEnd == len(label) {
		return Coord{}, invalidAddress(label)
	}
	for i := letterEnd; i < len(label); i++ {
		if label[i] < '0' || label[i] > '9' {
			return Coord{}, invalidAddress(label)
		}
	}

	col, err := ColumnIndex(label[:letterEnd])
	if err != nil {
		return Coord{}, invalidAddress(label)
	}
	row, err := strconv.Atoi(label[letterEnd:])
	if err != nil || row < 1 {
		return Coord{}, invalidAddress(label)
	}
	return Coord{Row: row - 1, Col: col}, nil
}

func invalidAddress(label string) error {
	return NewApplicationError(codes.InvalidArgument, ErrInvalidAddress,
		fmt.Sprintf("invalid address: %q", label))
}
