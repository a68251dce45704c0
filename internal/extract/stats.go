// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"io"

	"github.com/pdiddy/crime-extract/pkg/types"
)

// Stats holds counts from an extraction run.
type Stats struct {
	Total       int
	ByOutcome   map[Outcome]int
	RemoteCalls int

	MethodFound   int
	SuspectsFound int
	VehicleFound  int
}

// NewStats returns an empty accumulator.
func NewStats() Stats {
	return Stats{ByOutcome: make(map[Outcome]int, len(Outcomes))}
}

// Add folds one report into the counts.
func (s *Stats) Add(r Report) {
	if s.ByOutcome == nil {
		s.ByOutcome = make(map[Outcome]int, len(Outcomes))
	}
	s.Total++
	s.ByOutcome[r.Outcome]++
	s.RemoteCalls += r.Attempts

	e := r.Extraction
	if e.MethodOfEntry != types.NoMatch {
		s.MethodFound++
	}
	if len(e.Suspects) > 0 {
		s.SuspectsFound++
	}
	if !e.Vehicle.IsEmpty() {
		s.VehicleFound++
	}
}

// Successful returns the number of records resolved by the remote path.
func (s Stats) Successful() int {
	return s.ByOutcome[OutcomeLLMSuccess]
}

// Failed returns the number of records whose remote attempts all failed.
func (s Stats) Failed() int {
	return s.ByOutcome[OutcomeFallback]
}

// HasFailures reports whether any record fell back after a remote failure.
func (s Stats) HasFailures() bool {
	return s.Failed() > 0
}

// WriteSummary prints the counts with percentages of Total.
func (s Stats) WriteSummary(w io.Writer) {
	fmt.Fprintf(w, "Extraction summary\n")
	fmt.Fprintf(w, "  total records:      %d\n", s.Total)
	for _, o := range Outcomes {
		fmt.Fprintf(w, "  %-26s %s\n", string(o)+":", s.count(s.ByOutcome[o]))
	}
	fmt.Fprintf(w, "  remote calls:       %d\n", s.RemoteCalls)
	fmt.Fprintf(w, "  method of entry:    %s\n", s.count(s.MethodFound))
	fmt.Fprintf(w, "  suspects found:     %s\n", s.count(s.SuspectsFound))
	fmt.Fprintf(w, "  vehicles found:     %s\n", s.count(s.VehicleFound))
}

func (s Stats) count(n int) string {
	if s.Total == 0 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%d (%.1f%%)", n, 100*float64(n)/float64(s.Total))
}
