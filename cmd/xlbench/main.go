// Package main provides xlbench, a command line driver for the xl writer:
// it runs the large-sheet benchmark, writes the example workbook and checks
// generated files with an independent reader.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/adnsv/go-xlw/xl"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
	"go.alis.build/alog"
)

var (
	verbose       bool
	rows          uint32
	cols          uint32
	benchOutput   string
	exampleOutput string
	compression   int
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "xlbench",
		Short: "Benchmark and exercise the xlsx writer",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				alog.SetLevel(alog.LevelDebug)
			}
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log save progress")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "Write a rows x cols sheet of mixed cells and report timings",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}
	benchCmd.Flags().Uint32Var(&rows, "rows", 100_000, "Number of rows")
	benchCmd.Flags().Uint32Var(&cols, "cols", 10, "Number of columns")
	benchCmd.Flags().StringVarP(&benchOutput, "output", "o", "benchmark.xlsx", "Output file path")
	benchCmd.Flags().IntVar(&compression, "compression", xl.DefaultConfig().CompressionLevel, "Deflate level (1-9)")

	exampleCmd := &cobra.Command{
		Use:   "example",
		Short: "Write a small example workbook",
		Args:  cobra.NoArgs,
		RunE:  runExample,
	}
	exampleCmd.Flags().StringVarP(&exampleOutput, "output", "o", "example.xlsx", "Output file path")

	verifyCmd := &cobra.Command{
		Use:   "verify [file.xlsx]",
		Short: "Open a workbook with an independent reader and list its sheets",
		Args:  cobra.ExactArgs(1),
		RunE:  runVerify,
	}

	rootCmd.AddCommand(benchCmd, exampleCmd, verifyCmd)
	return rootCmd
}

func runBench(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	total := uint64(rows) * uint64(cols)
	alog.Infof(ctx, "benchmark: writing %d rows x %d columns (%d cells)", rows, cols, total)

	start := time.Now()
	wb := xl.NewWorkbook(xl.WithCompressionLevel(compression))
	sheet, err := wb.AddWorksheet("Data")
	if err != nil {
		return err
	}
	if err := fillBenchSheet(sheet, rows, cols); err != nil {
		return err
	}
	writeTime := time.Since(start)

	alog.Infof(ctx, "write time:  %.2f ms", ms(writeTime))
	if writeTime > 0 {
		alog.Infof(ctx, "write rate:  %.0f cells/sec", float64(total)/writeTime.Seconds())
	}

	start = time.Now()
	if err := wb.SaveContext(ctx, benchOutput); err != nil {
		return fmt.Errorf("save failed: %w", err)
	}
	saveTime := time.Since(start)

	alog.Infof(ctx, "save time:   %.2f ms", ms(saveTime))
	alog.Infof(ctx, "total time:  %.2f ms", ms(writeTime+saveTime))

	if st, err := os.Stat(benchOutput); err == nil {
		alog.Infof(ctx, "file size:   %s", humanSize(st.Size()))
	}
	return nil
}

// fillBenchSheet writes the benchmark pattern: text, number and boolean
// cells rotating by column.
func fillBenchSheet(sheet *xl.Worksheet, rows, cols uint32) error {
	for r := uint32(0); r < rows; r++ {
		for c := uint32(0); c < cols; c++ {
			var v xl.CellValue
			switch c % 3 {
			case 0:
				v = xl.Text(fmt.Sprintf("Cell %d-%d", r, c))
			case 1:
				v = xl.Number(float64(r)*float64(c) + 0.5)
			default:
				v = xl.Bool(r%2 == 0)
			}
			if err := sheet.Write(r, c, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func runExample(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	wb := xl.NewWorkbook()
	sheet, err := wb.AddWorksheet("Sheet1")
	if err != nil {
		return err
	}
	if err := fillExampleSheet(sheet); err != nil {
		return err
	}

	alog.Infof(ctx, "created worksheet: %s", sheet.Name())
	alog.Infof(ctx, "total worksheets: %d", wb.WorksheetCount())

	if err := wb.SaveContext(ctx, exampleOutput); err != nil {
		return fmt.Errorf("save failed: %w", err)
	}
	alog.Infof(ctx, "saved to %s", exampleOutput)
	return nil
}

func fillExampleSheet(sheet *xl.Worksheet) error {
	data := [][]xl.CellValue{
		{xl.Text("Name"), xl.Text("Age"), xl.Text("Active")},
		{xl.Text("Alice"), xl.Int(30), xl.Bool(true)},
		{xl.Text("Bob"), xl.Int(25), xl.Bool(false)},
		{xl.Text("Charlie"), xl.Int(35), xl.Bool(true)},
	}
	for r, row := range data {
		for c, v := range row {
			if err := sheet.Write(uint32(r), uint32(c), v); err != nil {
				return err
			}
		}
	}
	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	f, err := excelize.OpenFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer f.Close()

	for _, name := range f.GetSheetList() {
		dim, err := f.GetSheetDimension(name)
		if err != nil {
			return fmt.Errorf("failed to read sheet %s: %w", name, err)
		}
		rows, err := f.GetRows(name)
		if err != nil {
			return fmt.Errorf("failed to read sheet %s: %w", name, err)
		}
		alog.Infof(ctx, "sheet %q: dimension %s, %d rows", name, dim, len(rows))
	}
	return nil
}

func ms(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

func humanSize(n int64) string {
	const mb = 1024 * 1024
	if n < mb {
		return fmt.Sprintf("%.2f KB", float64(n)/1024)
	}
	return fmt.Sprintf("%.2f MB", float64(n)/mb)
}
