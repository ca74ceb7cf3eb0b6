package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"github.com/vogtb/go-gridsheet/packages/gridio"
	"github.com/vogtb/go-gridsheet/packages/gridsheet"
	"go.alis.build/alog"
)

type axis int

const (
	axisRow axis = iota
	axisColumn
)

func loadGrid(ctx context.Context, path string) (*gridsheet.Grid, error) {
	doc, err := gridio.LoadJSON(ctx, path)
	if err != nil {
		return nil, err
	}
	return gridsheet.FromDocument(doc), nil
}

func saveGrid(ctx context.Context, path string, g *gridsheet.Grid) error {
	return gridio.SaveJSON(ctx, path, g.Document())
}

// editGrid loads the document, applies fn and saves the result
func editGrid(ctx context.Context, path string, fn func(*gridsheet.Grid) error) error {
	g, err := loadGrid(ctx, path)
	if err != nil {
		return err
	}
	if err := fn(g); err != nil {
		return err
	}
	return saveGrid(ctx, path, g)
}

// parseIndex reads a zero-based index from a 1-based row number, or from
// column letters or a 1-based column number.
func parseIndex(a axis, arg string) (int, error) {
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 {
			return 0, fmt.Errorf("index must be at least 1, got %d", n)
		}
		return n - 1, nil
	}
	if a == axisRow {
		return 0, fmt.Errorf("invalid row %q", arg)
	}
	col, err := gridsheet.ColumnIndex(strings.ToUpper(arg))
	if err != nil {
		return 0, fmt.Errorf("invalid column %q: %w", arg, err)
	}
	return col, nil
}

func runNew(cmd *cobra.Command, args []string) error {
	var opts []gridsheet.Option
	if gridRows > 0 {
		opts = append(opts, gridsheet.WithRows(gridRows))
	}
	if gridCols > 0 {
		opts = append(opts, gridsheet.WithColumns(gridCols))
	}
	if gridName != "" {
		opts = append(opts, gridsheet.WithName(gridName))
	}
	g := gridsheet.NewGrid(opts...)
	if err := saveGrid(cmd.Context(), args[0], g); err != nil {
		return err
	}
	rows, cols := g.Bounds()
	fmt.Fprintf(cmd.OutOrStdout(), "created %s (%d x %d)\n", g.Name(), rows, cols)
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	doc, err := gridio.LoadJSON(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return writeTable(cmd.OutOrStdout(), doc)
}

// writeTable prints the rows that hold content, under column letters
func writeTable(w io.Writer, doc gridsheet.Document) error {
	_, cols := doc.Dimensions()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "%s\n", doc.Name)
	header := make([]string, cols+1)
	for c := 0; c < cols; c++ {
		header[c+1] = gridsheet.ColumnLabel(c)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for r, row := range doc.Rows {
		fields := make([]string, cols+1)
		fields[0] = strconv.Itoa(r + 1)
		var filled bool
		for c, rec := range row {
			fields[c+1] = rec.Display()
			filled = filled || fields[c+1] != ""
		}
		if filled {
			fmt.Fprintln(tw, strings.Join(fields, "\t"))
		}
	}
	return tw.Flush()
}

func runSet(cmd *cobra.Command, args []string) error {
	return editGrid(cmd.Context(), args[0], func(g *gridsheet.Grid) error {
		view, err := g.Set(args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[1], view.Content)
		return nil
	})
}

func runGet(cmd *cobra.Command, args []string) error {
	g, err := loadGrid(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	view, ok, err := g.Get(args[1])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !ok {
		fmt.Fprintf(out, "%s is empty\n", args[1])
		return nil
	}

	fmt.Fprintf(out, "%s = %s (%s)\n", args[1], view.Content, view.DataType)
	if view.HasFormula() {
		fmt.Fprintf(out, "formula: %s\n", view.Formula)
	}
	if view.Error != nil {
		fmt.Fprintf(out, "error: %v\n", view.Error)
	}
	for k, v := range view.Style {
		fmt.Fprintf(out, "style %s=%v\n", k, v)
	}
	return nil
}

// parseStyle turns KEY=VALUE pairs into a style; numeric values are stored
// as numbers
func parseStyle(pairs []string) (gridsheet.Style, error) {
	style := gridsheet.Style{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid style %q, want KEY=VALUE", pair)
		}
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			style[key] = f
			continue
		}
		style[key] = value
	}
	return style, nil
}

func runStyle(cmd *cobra.Command, args []string) error {
	style, err := parseStyle(args[2:])
	if err != nil {
		return err
	}
	return editGrid(cmd.Context(), args[0], func(g *gridsheet.Grid) error {
		c, err := gridsheet.FromLabel(args[1])
		if err != nil {
			return err
		}
		_, err = g.SetStyle(c, style)
		return err
	})
}

func structural(a axis, insert bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		index, err := parseIndex(a, args[1])
		if err != nil {
			return err
		}
		return editGrid(cmd.Context(), args[0], func(g *gridsheet.Grid) error {
			var changed bool
			switch {
			case a == axisRow && insert:
				changed = g.InsertRow(index)
			case a == axisRow:
				changed = g.DeleteRow(index)
			case insert:
				changed = g.InsertColumn(index)
			default:
				changed = g.DeleteColumn(index)
			}
			if !changed {
				alog.Warnf(cmd.Context(), "%s: nothing changed at %s", cmd.Name(), args[1])
			}
			rows, cols := g.Bounds()
			fmt.Fprintf(cmd.OutOrStdout(), "grid is now %d x %d\n", rows, cols)
			return nil
		})
	}
}

func runDedupe(cmd *cobra.Command, args []string) error {
	r, err := gridsheet.ParseRange(args[1])
	if err != nil {
		return err
	}
	return editGrid(cmd.Context(), args[0], func(g *gridsheet.Grid) error {
		removed := g.RemoveDuplicateRows(r)
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d duplicate rows\n", len(removed))
		return nil
	})
}

func runReplace(cmd *cobra.Command, args []string) error {
	r, err := gridsheet.ParseRange(args[1])
	if err != nil {
		return err
	}
	return editGrid(cmd.Context(), args[0], func(g *gridsheet.Grid) error {
		changed := g.FindAndReplace(r, args[2], args[3])
		fmt.Fprintf(cmd.OutOrStdout(), "replaced in %d cells\n", len(changed))
		return nil
	})
}

func runCopy(cmd *cobra.Command, args []string) error {
	g, err := loadGrid(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	r, err := gridsheet.ParseRange(args[1])
	if err != nil {
		return err
	}
	text := g.Copy(r)
	if useSystem {
		if err := clipboard.WriteAll(text); err != nil {
			return fmt.Errorf("write clipboard: %w", err)
		}
		alog.Debugf(cmd.Context(), "copied %s to the system clipboard", r)
		return nil
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}

func runPaste(cmd *cobra.Command, args []string) error {
	target, err := gridsheet.FromLabel(args[1])
	if err != nil {
		return err
	}

	var text string
	if useSystem {
		if text, err = clipboard.ReadAll(); err != nil {
			return fmt.Errorf("read clipboard: %w", err)
		}
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		// copy ends its output with a newline
		text = strings.TrimSuffix(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	}

	return editGrid(cmd.Context(), args[0], func(g *gridsheet.Grid) error {
		written := g.Paste(text, target)
		fmt.Fprintf(cmd.OutOrStdout(), "pasted %d cells\n", len(written))
		return nil
	})
}

func runExport(cmd *cobra.Command, args []string) error {
	var targets []gridio.Target
	if csvPath != "" {
		targets = append(targets, gridio.Target{Format: gridio.FormatCSV, Path: csvPath, Encoding: csvCharset})
	}
	if xlsxPath != "" {
		targets = append(targets, gridio.Target{Format: gridio.FormatXLSX, Path: xlsxPath})
	}
	if jsonPath != "" {
		targets = append(targets, gridio.Target{Format: gridio.FormatJSON, Path: jsonPath})
	}
	if len(targets) == 0 {
		return fmt.Errorf("nothing to export: pass --csv, --xlsx or --json")
	}

	// a loaded grid re-evaluates formulas, so exported values are current
	g, err := loadGrid(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return gridio.Export(cmd.Context(), g.Document(), targets...)
}

func runImport(cmd *cobra.Command, args []string) error {
	doc, err := gridio.ImportXLSX(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	g := gridsheet.FromDocument(doc)
	if err := saveGrid(cmd.Context(), args[1], g); err != nil {
		return err
	}
	rows, cols := g.Bounds()
	fmt.Fprintf(cmd.OutOrStdout(), "imported %s (%d x %d, %d cells)\n", g.Name(), rows, cols, g.Len())
	return nil
}
