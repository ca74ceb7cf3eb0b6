package gridsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSerialize(t *testing.T) {
	snapshot := newMapSnapshot(t, 5, 5, map[string]string{
		"A1": "1",
		"B1": "two",
		"A2": "3",
		"C2": "#ERROR!",
	})

	r := Normalize(Coord{Row: 1, Col: 2}, Coord{Row: 0, Col: 0})
	assert.Equal(t, "1\ttwo\t\n3\t\t#ERROR!", Serialize(r, snapshot))

	single := Range{Start: Coord{Row: 0, Col: 1}, End: Coord{Row: 0, Col: 1}}
	assert.Equal(t, "two", Serialize(single, snapshot))
}

func TestDeserialize(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		target Coord
		want   []Assignment
	}{
		{
			name:   "single value",
			text:   "x",
			target: Coord{Row: 2, Col: 2},
			want:   []Assignment{{Coord{Row: 2, Col: 2}, "x"}},
		},
		{
			name:   "block",
			text:   "1\t2\n3\t4",
			target: Coord{Row: 0, Col: 1},
			want: []Assignment{
				{Coord{Row: 0, Col: 1}, "1"},
				{Coord{Row: 0, Col: 2}, "2"},
				{Coord{Row: 1, Col: 1}, "3"},
				{Coord{Row: 1, Col: 2}, "4"},
			},
		},
		{
			name:   "crlf",
			text:   "a\tb\r\nc\td",
			target: Coord{},
			want: []Assignment{
				{Coord{Row: 0, Col: 0}, "a"},
				{Coord{Row: 0, Col: 1}, "b"},
				{Coord{Row: 1, Col: 0}, "c"},
				{Coord{Row: 1, Col: 1}, "d"},
			},
		},
		{
			name:   "trailing newline is an empty row",
			text:   "a\n",
			target: Coord{Row: 1, Col: 2},
			want: []Assignment{
				{Coord{Row: 1, Col: 2}, "a"},
				{Coord{Row: 2, Col: 2}, ""},
			},
		},
		{
			name:   "empty fields are kept",
			text:   "a\t\tc",
			target: Coord{},
			want: []Assignment{
				{Coord{Row: 0, Col: 0}, "a"},
				{Coord{Row: 0, Col: 1}, ""},
				{Coord{Row: 0, Col: 2}, "c"},
			},
		},
		{
			name:   "truncated at the edge",
			text:   "1\t2\t3\n4\t5\t6\n7\t8\t9",
			target: Coord{Row: 3, Col: 3},
			want: []Assignment{
				{Coord{Row: 3, Col: 3}, "1"},
				{Coord{Row: 3, Col: 4}, "2"},
				{Coord{Row: 4, Col: 3}, "4"},
				{Coord{Row: 4, Col: 4}, "5"},
			},
		},
		{
			name:   "formulas pass through",
			text:   "=A1+1",
			target: Coord{Row: 1, Col: 0},
			want:   []Assignment{{Coord{Row: 1, Col: 0}, "=A1+1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Deserialize(tt.text, tt.target, 5, 5))
		})
	}
}

func TestClipboardRoundTrip(t *testing.T) {
	snapshot := newMapSnapshot(t, 4, 4, map[string]string{
		"A1": "a",
		"B1": "b",
		"B2": "12.5",
		"A3": "last",
	})
	r := Normalize(Coord{}, Coord{Row: 2, Col: 1})

	assignments := Deserialize(Serialize(r, snapshot), Coord{}, 4, 4)
	assert.Len(t, assignments, r.Rows()*r.Cols())

	copied := make(map[Coord]string)
	for _, a := range assignments {
		if a.Raw != "" {
			copied[a.Coord] = a.Raw
		}
	}
	assert.Equal(t, snapshot.cells, copied)

	// an empty last row in a single column still round trips as a row
	column := Normalize(Coord{}, Coord{Row: 1})
	text := Serialize(column, snapshot)
	assert.Equal(t, "a\n", text)
	assert.Equal(t, []Assignment{
		{Coord{Row: 0, Col: 2}, "a"},
		{Coord{Row: 1, Col: 2}, ""},
	}, Deserialize(text, Coord{Col: 2}, 4, 4))
}
