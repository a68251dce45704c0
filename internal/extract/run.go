package extract

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/pdiddy/crime-extract/pkg/types"
)

// Run processes records sequentially and returns one Extraction per record
// in input order, plus run statistics. Progress lines go to w.
func Run(ctx context.Context, o *Orchestrator, records []types.Record, w io.Writer) ([]types.Extraction, Stats) {
	results := make([]types.Extraction, 0, len(records))
	stats := NewStats()
	skipRemote := false

	for i, rec := range records {
		fmt.Fprintf(w, "processing %d/%d (crime code %s)\n", i+1, len(records), rec.CrimeCode)

		rep := o.process(ctx, rec, skipRemote)
		results = append(results, rep.Extraction)
		stats.Add(rep)

		switch rep.Outcome {
		case OutcomeLLMSuccess:
			fmt.Fprintf(w, "  %s (%d attempt(s))\n", rep.Outcome, rep.Attempts)
		case OutcomeFallback:
			if rep.Err != nil {
				fmt.Fprintf(w, "  %s after %d attempt(s): %v\n", rep.Outcome, rep.Attempts, rep.Err)
			} else {
				fmt.Fprintf(w, "  %s\n", rep.Outcome)
			}
		default:
			fmt.Fprintf(w, "  %s\n", rep.Outcome)
		}

		if o.stickyAuth && !skipRemote && rep.AuthFailed() {
			skipRemote = true
			o.logger.Warn("credential rejected; remaining records use pattern matching only",
				zap.Int("remaining", len(records)-i-1), zap.Error(rep.Err))
		}
	}

	return results, stats
}
