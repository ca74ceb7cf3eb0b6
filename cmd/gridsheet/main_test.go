package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vogtb/go-gridsheet/packages/gridio"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, "", args...)
	require.NoError(t, err, out)
	return out
}

func TestEditSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.json")

	out := mustExecute(t, "new", path, "--rows", "5", "--cols", "3", "--name", "Plan")
	assert.Equal(t, "created Plan (5 x 3)\n", out)

	mustExecute(t, "set", path, "A1", "2")
	out = mustExecute(t, "set", path, "B1", "=A1*3")
	assert.Equal(t, "B1 = 6\n", out)

	out = mustExecute(t, "get", path, "B1")
	assert.Contains(t, out, "B1 = 6 (formula)")
	assert.Contains(t, out, "formula: =A1*3")

	out = mustExecute(t, "get", path, "C5")
	assert.Equal(t, "C5 is empty\n", out)

	mustExecute(t, "style", path, "A1", "fontWeight=bold", "fontSize=14")
	doc, err := gridio.LoadJSON(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "bold", doc.Rows[0][0].Style["fontWeight"])
	assert.Equal(t, 14.0, doc.Rows[0][0].Style["fontSize"])

	out = mustExecute(t, "insert-row", path, "1")
	assert.Equal(t, "grid is now 6 x 3\n", out)
	out = mustExecute(t, "delete-col", path, "C")
	assert.Equal(t, "grid is now 6 x 2\n", out)

	out = mustExecute(t, "show", path)
	assert.Contains(t, out, "Plan")
	assert.Contains(t, out, "2")
}

func TestCopyPaste(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.json")
	mustExecute(t, "new", path)

	out, err := execute(t, "a\tb\nc\td\n", "paste", path, "B2")
	require.NoError(t, err)
	assert.Equal(t, "pasted 4 cells\n", out)

	out = mustExecute(t, "copy", path, "B2:C3")
	assert.Equal(t, "a\tb\nc\td\n", out)

	// B4 is empty, so the copied column ends in an empty row
	out = mustExecute(t, "copy", path, "B3:B4")
	assert.Equal(t, "c\n\n", out)
	mustExecute(t, "set", path, "E4", "x")
	_, err = execute(t, out, "paste", path, "E3")
	require.NoError(t, err)

	out = mustExecute(t, "get", path, "E4")
	assert.Equal(t, "E4 is empty\n", out)
}

func TestDedupeAndReplace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.json")
	mustExecute(t, "new", path)
	_, err := execute(t, "x\ny\nx", "paste", path, "A1")
	require.NoError(t, err)

	out := mustExecute(t, "dedupe", path, "A1:A3")
	assert.Equal(t, "removed 1 duplicate rows\n", out)

	out = mustExecute(t, "replace", path, "A1:A2", "y", "z")
	assert.Equal(t, "replaced in 1 cells\n", out)

	doc, err := gridio.LoadJSON(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "x", doc.Rows[0][0].Content)
	assert.Equal(t, "z", doc.Rows[1][0].Content)
}

func TestExportImport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grid.json")
	mustExecute(t, "new", path, "--rows", "2", "--cols", "2")
	mustExecute(t, "set", path, "A1", "1")
	mustExecute(t, "set", path, "B1", "=A1+1")

	csvPath := filepath.Join(dir, "out.csv")
	xlsxPath := filepath.Join(dir, "out.xlsx")
	mustExecute(t, "export", path, "--csv", csvPath, "--xlsx", xlsxPath)

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, "\"1\",\"2\"\n\"\",\"\"", string(data))

	imported := filepath.Join(dir, "imported.json")
	out := mustExecute(t, "import", xlsxPath, imported)
	assert.Contains(t, out, "(2 x 2, 2 cells)")

	out = mustExecute(t, "get", imported, "B1")
	assert.Contains(t, out, "B1 = 2 (formula)")

	_, err = execute(t, "", "export", path)
	assert.Error(t, err)
}

func TestParseIndex(t *testing.T) {
	tests := []struct {
		name    string
		axis    axis
		arg     string
		want    int
		wantErr bool
	}{
		{"row number", axisRow, "3", 2, false},
		{"row letters", axisRow, "C", 0, true},
		{"row zero", axisRow, "0", 0, true},
		{"column letters", axisColumn, "c", 2, false},
		{"column number", axisColumn, "27", 26, false},
		{"column AA", axisColumn, "AA", 26, false},
		{"column junk", axisColumn, "A1", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIndex(tt.axis, tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStyle(t *testing.T) {
	style, err := parseStyle([]string{"color=#ff0000", "fontSize=12"})
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", style["color"])
	assert.Equal(t, 12.0, style["fontSize"])

	_, err = parseStyle([]string{"bold"})
	assert.Error(t, err)
}
