package gridsheet

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestNormalize(t *testing.T) {
	r := Normalize(Coord{Row: 5, Col: 1}, Coord{Row: 2, Col: 3})
	assert.Equal(t, Coord{Row: 2, Col: 1}, r.Start)
	assert.Equal(t, Coord{Row: 5, Col: 3}, r.End)
	assert.Equal(t, 4, r.Rows())
	assert.Equal(t, 3, r.Cols())

	// normalizing twice changes nothing
	assert.Equal(t, r, Normalize(r.End, r.Start))
	assert.Equal(t, r, Normalize(r.Start, r.End))
}

func TestRangeContains(t *testing.T) {
	r := Normalize(Coord{Row: 1, Col: 1}, Coord{Row: 3, Col: 2})
	assert.True(t, r.Contains(Coord{Row: 1, Col: 1}))
	assert.True(t, r.Contains(Coord{Row: 3, Col: 2}))
	assert.True(t, r.Contains(Coord{Row: 2, Col: 2}))
	assert.False(t, r.Contains(Coord{Row: 0, Col: 1}))
	assert.False(t, r.Contains(Coord{Row: 4, Col: 1}))
	assert.False(t, r.Contains(Coord{Row: 2, Col: 3}))
}

func TestRangeCoords(t *testing.T) {
	r := Normalize(Coord{Row: 1, Col: 1}, Coord{Row: 0, Col: 0})
	assert.Equal(t, []Coord{{0, 0}, {0, 1}, {1, 0}, {1, 1}}, slices.Collect(r.Coords()))

	var first []Coord
	for c := range r.Coords() {
		first = append(first, c)
		break
	}
	assert.Equal(t, []Coord{{0, 0}}, first)
}

func TestRangeClip(t *testing.T) {
	r, ok := Normalize(Coord{Row: -2, Col: 3}, Coord{Row: 20, Col: 8}).clip(10, 5)
	require.True(t, ok)
	assert.Equal(t, Range{Start: Coord{Row: 0, Col: 3}, End: Coord{Row: 9, Col: 4}}, r)

	_, ok = Normalize(Coord{Row: 12, Col: 0}, Coord{Row: 15, Col: 0}).clip(10, 5)
	assert.False(t, ok)
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("C3:A1")
	require.NoError(t, err)
	assert.Equal(t, "A1:C3", r.String())

	r, err = ParseRange("B2")
	require.NoError(t, err)
	assert.Equal(t, Range{Start: Coord{Row: 1, Col: 1}, End: Coord{Row: 1, Col: 1}}, r)
	assert.Equal(t, "B2", r.String())

	for _, text := range []string{"", "A1:", ":B2", "A1:B2:C3", "a1:b2"} {
		_, err := ParseRange(text)
		assert.Error(t, err, text)
		assert.Equal(t, codes.InvalidArgument, status.Code(err), text)
	}

	_, err = ParseRange("A1:B2:C3")
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestSelector(t *testing.T) {
	var s Selector
	assert.Equal(t, SelectionIdle, s.State())
	_, ok := s.Selection()
	assert.False(t, ok)

	// moving while idle is ignored
	s.Move(Coord{Row: 4, Col: 4})
	assert.Equal(t, SelectionIdle, s.State())
	_, ok = s.Selection()
	assert.False(t, ok)

	r := s.Start(Coord{Row: 3, Col: 3})
	assert.Equal(t, SelectionAnchored, s.State())
	assert.Equal(t, Range{Start: Coord{Row: 3, Col: 3}, End: Coord{Row: 3, Col: 3}}, r)

	r = s.Move(Coord{Row: 1, Col: 5})
	assert.Equal(t, SelectionDragging, s.State())
	assert.Equal(t, Range{Start: Coord{Row: 1, Col: 3}, End: Coord{Row: 3, Col: 5}}, r)

	r = s.Move(Coord{Row: 4, Col: 0})
	assert.Equal(t, Range{Start: Coord{Row: 3, Col: 0}, End: Coord{Row: 4, Col: 3}}, r)

	r = s.Release()
	assert.Equal(t, SelectionIdle, s.State())
	assert.Equal(t, "A4:D5", r.String())

	// the released range stays selected
	selected, ok := s.Selection()
	require.True(t, ok)
	assert.Equal(t, r, selected)

	s.Move(Coord{Row: 9, Col: 9})
	selected, _ = s.Selection()
	assert.Equal(t, r, selected)

	s.Clear()
	_, ok = s.Selection()
	assert.False(t, ok)
	assert.Equal(t, "idle", s.State().String())
}
