package gridsheet

import (
	"fmt"
	"iter"
	"strings"

	"google.golang.org/grpc/codes"
)

// Range is an inclusive rectangle. Start holds the minimum row and column,
// End the maximum; use Normalize to build one from arbitrary corners.
type Range struct {
	Start Coord
	End   Coord
}

// Normalize builds a range from two arbitrary corners
func Normalize(anchor, focus Coord) Range {
	return Range{
		Start: Coord{Row: min(anchor.Row, focus.Row), Col: min(anchor.Col, focus.Col)},
		End:   Coord{Row: max(anchor.Row, focus.Row), Col: max(anchor.Col, focus.Col)},
	}
}

// Contains is an inclusive bounds check
func (r Range) Contains(c Coord) bool {
	return c.Row >= r.Start.Row && c.Row <= r.End.Row &&
		c.Col >= r.Start.Col && c.Col <= r.End.Col
}

// Rows is the number of rows covered
func (r Range) Rows() int {
	return r.End.Row - r.Start.Row + 1
}

// Cols is the number of columns covered
func (r Range) Cols() int {
	return r.End.Col - r.Start.Col + 1
}

// Coords iterates the range in ascending row, then column order.
func (r Range) Coords() iter.Seq[Coord] {
	return func(yield func(Coord) bool) {
		for row := r.Start.Row; row <= r.End.Row; row++ {
			for col := r.Start.Col; col <= r.End.Col; col++ {
				if !yield(Coord{Row: row, Col: col}) {
					return
				}
			}
		}
	}
}

// clip intersects the range with a rows x cols grid. ok is false when
// nothing remains.
func (r Range) clip(rows, cols int) (Range, bool) {
	out := Range{
		Start: Coord{Row: max(r.Start.Row, 0), Col: max(r.Start.Col, 0)},
		End:   Coord{Row: min(r.End.Row, rows-1), Col: min(r.End.Col, cols-1)},
	}
	if out.Start.Row > out.End.Row || out.Start.Col > out.End.Col {
		return Range{}, false
	}
	return out, true
}

func (r Range) String() string {
	if r.Start == r.End {
		return ToLabel(r.Start)
	}
	return ToLabel(r.Start) + ":" + ToLabel(r.End)
}

// ParseRange parses "A1:C3" (corners in any order) or a single label.
func ParseRange(text string) (Range, error) {
	parts := strings.Split(text, ":")
	switch len(parts) {
	case 1:
		c, err := FromLabel(parts[0])
		if err != nil {
			return Range{}, err
		}
		return Range{Start: c, End: c}, nil
	case 2:
		a, err := FromLabel(parts[0])
		if err != nil {
			return Range{}, err
		}
		b, err := FromLabel(parts[1])
		if err != nil {
			return Range{}, err
		}
		return Normalize(a, b), nil
	default:
		return Range{}, NewApplicationError(codes.InvalidArgument, ErrInvalidRange,
			fmt.Sprintf("invalid range: %q", text))
	}
}

// SelectionState is the pointer-driven selection lifecycle
type SelectionState uint8

const (
	SelectionIdle SelectionState = iota
	SelectionAnchored
	SelectionDragging
)

func (s SelectionState) String() string {
	switch s {
	case SelectionAnchored:
		return "anchored"
	case SelectionDragging:
		return "dragging"
	default:
		return "idle"
	}
}

// Selector tracks a selection as the pointer goes down, moves and is
// released. the zero value is idle with no selection.
type Selector struct {
	state  SelectionState
	anchor Coord
	focus  Coord
	has    bool
}

// Start anchors a new selection at c, discarding any previous one.
func (s *Selector) Start(c Coord) Range {
	s.state = SelectionAnchored
	s.anchor = c
	s.focus = c
	s.has = true
	return s.Range()
}

// Move drags the focus corner. ignored while idle.
func (s *Selector) Move(c Coord) Range {
	if s.state == SelectionIdle {
		return s.Range()
	}
	s.state = SelectionDragging
	s.focus = c
	return s.Range()
}

// Release ends the drag; the last range stays selected.
func (s *Selector) Release() Range {
	s.state = SelectionIdle
	return s.Range()
}

// Clear drops the selection entirely.
func (s *Selector) Clear() {
	*s = Selector{}
}

func (s *Selector) State() SelectionState {
	return s.state
}

// Range is the current normalized selection.
func (s *Selector) Range() Range {
	return Normalize(s.anchor, s.focus)
}

// Selection returns the current range and whether one exists.
func (s *Selector) Selection() (Range, bool) {
	return s.Range(), s.has
}
