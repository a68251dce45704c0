// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/crime-extract/internal/dataset"
	"github.com/pdiddy/crime-extract/internal/export"
	"github.com/pdiddy/crime-extract/internal/extract"
)

const sampleRows = 3

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract fields from every narrative in an input table",
	Long: `Extract reads a .csv or .xlsx table with crime code and narrative columns,
resolves each crime code against the lookup table, extracts method of entry,
suspects and vehicle details, and writes the input columns plus the result
columns to the output file. The output extension selects the format: .xlsx
(with a .csv copy), .csv, .json, .yaml, or .db for SQLite.`,
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	codes, err := dataset.LoadCrimeCodes(cfg.Input.CrimeCodesFile, logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Loaded %d crime code mappings from %s\n", len(codes), cfg.Input.CrimeCodesFile)

	tbl, err := dataset.LoadTable(cfg.Input.File, cfg.Input)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Loaded %d crime reports from %s\n", len(tbl.Records), cfg.Input.File)

	orch, err := newOrchestrator(cfg, codes, logger)
	if err != nil {
		return err
	}

	results, stats := extract.Run(ctx, orch, tbl.Records, out)

	artifact, err := export.NewTable(tbl.Header, tbl.Rows, results)
	if err != nil {
		return err
	}
	written, err := export.Write(ctx, cfg.Output.File, artifact, export.Options{CSVCopy: cfg.Output.CSVCopy})
	if err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	for _, path := range written {
		fmt.Fprintf(out, "Saved %d rows to %s\n", len(results), path)
	}

	fmt.Fprintln(out)
	stats.WriteSummary(out)

	fmt.Fprintf(out, "\nSample results (first %d rows):\n", min(sampleRows, len(results)))
	for i := 0; i < len(results) && i < sampleRows; i++ {
		fmt.Fprintf(out, "row %d (crime code %s): %s\n", i+1, tbl.Records[i].CrimeCode, truncate(tbl.Records[i].Narrative, 80))
		printExtraction(out, results[i])
	}

	logger.Info("extraction complete",
		zap.Int("records", stats.Total),
		zap.Int("llm_success", stats.Successful()),
		zap.Int("fallback", stats.Failed()),
		zap.Int("remote_calls", stats.RemoteCalls))
	return nil
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}

func init() {
	extractCmd.Flags().StringP("input", "i", "", "input .csv or .xlsx file (default input/crime_data.xlsx)")
	extractCmd.Flags().StringP("output", "o", "", "output file (default output/crime_data_extracted.xlsx)")
	extractCmd.Flags().StringP("crime-codes", "c", "", "crime code lookup CSV (default input/crime_codes.csv)")
	extractCmd.Flags().Int("max-retries", 0, "language model attempts per record (default 3)")
	extractCmd.Flags().String("model", "", "language model identifier (default deepseek-chat)")
	extractCmd.Flags().Bool("no-csv-copy", false, "do not write a .csv copy next to .xlsx output")

	_ = viper.BindPFlag("input.file", extractCmd.Flags().Lookup("input"))
	_ = viper.BindPFlag("output.file", extractCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("input.crime_codes_file", extractCmd.Flags().Lookup("crime-codes"))
	_ = viper.BindPFlag("ai.max_retries", extractCmd.Flags().Lookup("max-retries"))
	_ = viper.BindPFlag("ai.model", extractCmd.Flags().Lookup("model"))

	extractCmd.PreRun = func(cmd *cobra.Command, args []string) {
		if noCopy, _ := cmd.Flags().GetBool("no-csv-copy"); noCopy {
			cfg.Output.CSVCopy = false
		}
	}

	rootCmd.AddCommand(extractCmd)
}
