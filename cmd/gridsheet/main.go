// Package main provides the gridsheet command line: a grid document kept
// as JSON on disk, edited one operation per invocation.
package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.alis.build/alog"
)

var (
	verbose    bool
	useSystem  bool
	csvPath    string
	xlsxPath   string
	jsonPath   string
	csvCharset string
	gridRows   int
	gridCols   int
	gridName   string
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gridsheet",
		Short: "Edit spreadsheet grids from the command line",
		Long: `gridsheet keeps a spreadsheet grid in a JSON document and applies one
edit per invocation: set cells, restructure rows and columns, copy and paste,
and export to CSV or xlsx.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				alog.SetLevel(alog.LevelDebug)
			} else {
				alog.SetLevel(alog.LevelWarning)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	newCmd := &cobra.Command{
		Use:   "new FILE",
		Short: "Create an empty grid document",
		Args:  cobra.ExactArgs(1),
		RunE:  runNew,
	}
	newCmd.Flags().IntVar(&gridRows, "rows", 0, "Row count (default 100)")
	newCmd.Flags().IntVar(&gridCols, "cols", 0, "Column count (default 26)")
	newCmd.Flags().StringVar(&gridName, "name", "", "Grid name")

	copyCmd := &cobra.Command{
		Use:   "copy FILE RANGE",
		Short: "Copy a range as tab-separated text to stdout",
		Args:  cobra.ExactArgs(2),
		RunE:  runCopy,
	}
	copyCmd.Flags().BoolVar(&useSystem, "system", false, "Use the system clipboard instead of stdout")

	pasteCmd := &cobra.Command{
		Use:   "paste FILE LABEL",
		Short: "Paste tab-separated text from stdin at LABEL",
		Args:  cobra.ExactArgs(2),
		RunE:  runPaste,
	}
	pasteCmd.Flags().BoolVar(&useSystem, "system", false, "Use the system clipboard instead of stdin")

	exportCmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Export a grid document to CSV, xlsx or JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport,
	}
	exportCmd.Flags().StringVar(&csvPath, "csv", "", "CSV output path")
	exportCmd.Flags().StringVar(&xlsxPath, "xlsx", "", "xlsx output path")
	exportCmd.Flags().StringVar(&jsonPath, "json", "", "JSON output path")
	exportCmd.Flags().StringVar(&csvCharset, "encoding", "utf-8", "CSV encoding: utf-8, latin1, windows-1252")

	rootCmd.AddCommand(
		newCmd,
		&cobra.Command{
			Use:   "show FILE",
			Short: "Print the grid as a table",
			Args:  cobra.ExactArgs(1),
			RunE:  runShow,
		},
		&cobra.Command{
			Use:   "set FILE LABEL CONTENT",
			Short: "Set the content of one cell",
			Args:  cobra.ExactArgs(3),
			RunE:  runSet,
		},
		&cobra.Command{
			Use:   "get FILE LABEL",
			Short: "Print one cell",
			Args:  cobra.ExactArgs(2),
			RunE:  runGet,
		},
		&cobra.Command{
			Use:   "style FILE LABEL KEY=VALUE...",
			Short: "Merge style attributes into one cell",
			Args:  cobra.MinimumNArgs(3),
			RunE:  runStyle,
		},
		&cobra.Command{
			Use:   "insert-row FILE ROW",
			Short: "Insert an empty row before ROW (1-based)",
			Args:  cobra.ExactArgs(2),
			RunE:  structural(axisRow, true),
		},
		&cobra.Command{
			Use:   "insert-col FILE COLUMN",
			Short: "Insert an empty column before COLUMN (letters or 1-based)",
			Args:  cobra.ExactArgs(2),
			RunE:  structural(axisColumn, true),
		},
		&cobra.Command{
			Use:   "delete-row FILE ROW",
			Short: "Delete ROW (1-based)",
			Args:  cobra.ExactArgs(2),
			RunE:  structural(axisRow, false),
		},
		&cobra.Command{
			Use:   "delete-col FILE COLUMN",
			Short: "Delete COLUMN (letters or 1-based)",
			Args:  cobra.ExactArgs(2),
			RunE:  structural(axisColumn, false),
		},
		&cobra.Command{
			Use:   "dedupe FILE RANGE",
			Short: "Remove rows that repeat an earlier row within RANGE",
			Args:  cobra.ExactArgs(2),
			RunE:  runDedupe,
		},
		&cobra.Command{
			Use:   "replace FILE RANGE FIND REPLACE",
			Short: "Replace text in the non-formula cells of RANGE",
			Args:  cobra.ExactArgs(4),
			RunE:  runReplace,
		},
		copyCmd,
		pasteCmd,
		exportCmd,
		&cobra.Command{
			Use:   "import XLSX FILE",
			Short: "Import the first sheet of an xlsx workbook into a grid document",
			Args:  cobra.ExactArgs(2),
			RunE:  runImport,
		},
	)
	return rootCmd
}
