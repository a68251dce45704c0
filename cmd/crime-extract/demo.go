package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/crime-extract/internal/dataset"
	"github.com/pdiddy/crime-extract/pkg/types"
)

// demoRecords are built-in narratives covering window entry, a stolen
// vehicle with plate, and two described suspects with a getaway car.
var demoRecords = []types.Record{
	{
		CrimeCode: "220",
		Narrative: "Residential burglary at 1456 Elm Street. Unknown suspects broke rear window to gain entry between 0800-1700 hours. Missing: laptop ($1,200), jewelry ($800), cash ($300). No witnesses.",
	},
	{
		CrimeCode: "510",
		Narrative: "2019 Honda Civic (silver) stolen from 789 Oak Ave parking lot. Last seen 2200 hours 10/15. Plate: ABC1234. Vehicle locked, keys not inside.",
	},
	{
		CrimeCode: "220",
		Narrative: `S1 (male, 6ft, black hoodie) pried front door, stole electronics. S2 (female, 5'5", blonde) was lookout. Fled in red Toyota Camry northbound on Main St.`,
	},
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the extractor on three built-in sample narratives",
	Long: `Demo processes three sample narratives and prints the fields extracted
from each, along with how they were produced. Use --regex-only to see the
pattern matcher on its own.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		codes, err := dataset.LoadCrimeCodes(cfg.Input.CrimeCodesFile, logger)
		if err != nil {
			return err
		}
		orch, err := newOrchestrator(cfg, codes, logger)
		if err != nil {
			return err
		}

		mode := "off (pattern matching only)"
		if orch.RemoteEnabled() {
			mode = "on"
		}
		fmt.Fprintf(out, "Language model: %s\n", mode)

		for i, rec := range demoRecords {
			fmt.Fprintf(out, "\nSample %d (crime code %s)\n", i+1, rec.CrimeCode)
			fmt.Fprintf(out, "  narrative: %s\n", rec.Narrative)

			rep := orch.Process(cmd.Context(), rec)
			fmt.Fprintf(out, "  outcome:         %s (%d remote call(s))\n", rep.Outcome, rep.Attempts)
			printExtraction(out, rep.Extraction)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}
