package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/crime-extract/internal/extract"
	"github.com/pdiddy/crime-extract/internal/heuristic"
	"github.com/pdiddy/crime-extract/internal/httputil"
	"github.com/pdiddy/crime-extract/internal/llm"
	"github.com/pdiddy/crime-extract/pkg/types"
)

// newOrchestrator wires the heuristic extractor and, when a credential is
// available and regex-only mode is off, the remote client.
func newOrchestrator(c types.ExtractionConfig, codes types.CrimeCodes, log *zap.Logger) (*extract.Orchestrator, error) {
	h, err := heuristic.NewExtractor(c.EntryRules...)
	if err != nil {
		return nil, fmt.Errorf("invalid entry_rules: %w", err)
	}

	opts := []extract.Option{
		extract.WithMaxRetries(c.AI.MaxRetries),
		extract.WithRetryDelay(c.AI.RetryDelay),
		extract.WithStickyAuthFailure(c.StickyAuthFailure),
		extract.WithLogger(log),
	}

	switch {
	case c.RegexOnly:
		log.Info("regex-only mode requested; the language model will not be called")
	default:
		client, err := llm.New(c.AI, httputil.NewClient(c.AI.Timeout, c.AI.UserAgent), llm.WithCrimeCodes(codes))
		switch {
		case errors.Is(err, llm.ErrNoCredential):
			log.Warn("no API key found; using pattern matching only",
				zap.String("hint", "set DEEPSEEK_API_KEY or write .secrets/deepseek-api-key"))
		case err != nil:
			return nil, fmt.Errorf("creating model client: %w", err)
		default:
			log.Info("language model enabled", zap.Stringer("client", client), zap.String("base_url", c.AI.BaseURL))
			opts = append(opts, extract.WithRemote(client))
		}
	}

	return extract.New(h, codes, opts...), nil
}

// printExtraction writes one extraction in the human-readable demo layout.
func printExtraction(w io.Writer, e types.Extraction) {
	fmt.Fprintf(w, "  crime type:      %s\n", orNone(e.CrimeType))
	fmt.Fprintf(w, "  method of entry: %s\n", orNone(e.MethodOfEntry))
	if len(e.Suspects) == 0 {
		fmt.Fprintf(w, "  suspects:        none found\n")
	}
	for i, s := range e.Suspects {
		fmt.Fprintf(w, "  suspect %d:       %s\n", i+1, s)
	}
	if e.Vehicle.IsEmpty() {
		fmt.Fprintf(w, "  vehicle:         none found\n")
		return
	}
	var parts []string
	for _, kv := range [][2]string{
		{"make", e.Vehicle.Make},
		{"model", e.Vehicle.Model},
		{"color", e.Vehicle.Color},
		{"plate", e.Vehicle.Plate},
	} {
		if kv[1] != types.NoMatch {
			parts = append(parts, kv[0]+"="+kv[1])
		}
	}
	fmt.Fprintf(w, "  vehicle:         %s\n", strings.Join(parts, " "))
}

func orNone(s string) string {
	if s == types.NoMatch {
		return "(none)"
	}
	return s
}
