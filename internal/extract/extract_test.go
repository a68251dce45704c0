package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/crime-extract/internal/heuristic"
	"github.com/pdiddy/crime-extract/pkg/types"
)

// --- fakes ---

// authError mimics a remote credential failure.
type authError struct{}

func (authError) Error() string   { return "401 unauthorized" }
func (authError) Retryable() bool { return false }

// scriptedRemote returns errs[i] on call i, then resp.
type scriptedRemote struct {
	errs  []error
	resp  types.Fields
	calls int
	seen  []string
}

func (s *scriptedRemote) Extract(_ context.Context, crimeCode, narrative string) (types.Fields, error) {
	s.calls++
	s.seen = append(s.seen, crimeCode)
	if s.calls <= len(s.errs) {
		return types.Fields{}, s.errs[s.calls-1]
	}
	return s.resp, nil
}

// alwaysFail fails every call with err.
type alwaysFail struct {
	err   error
	calls int
}

func (a *alwaysFail) Extract(context.Context, string, string) (types.Fields, error) {
	a.calls++
	return types.Fields{}, a.err
}

// countingHeuristic wraps the real extractor and counts invocations.
type countingHeuristic struct {
	inner *heuristic.Extractor
	calls int
}

func (c *countingHeuristic) Extract(narrative string) types.Fields {
	c.calls++
	return c.inner.Extract(narrative)
}

func newCounting() *countingHeuristic {
	return &countingHeuristic{inner: heuristic.Default()}
}

var sleeps []time.Duration

func TestMain(m *testing.M) {
	// Record backoff waits instead of sleeping.
	sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return ctx.Err()
	}
	os.Exit(m.Run())
}

var testCodes = types.CrimeCodes{"220": "Burglary", "459": "Commercial Burglary"}

const sampleNarrative = "S1 (male, 6ft, black hoodie) pried front door, stole electronics. Fled in red Toyota Camry."

// --- Process ---

func TestProcess_RemoteSuccessIsNormalized(t *testing.T) {
	remote := &scriptedRemote{resp: types.Fields{
		MethodOfEntry: "Door Pry",
		Suspects:      []string{" male, 6ft ", "null", "female", "third"},
		Vehicle:       types.Vehicle{Make: " Toyota ", Model: "Camry", Color: "red", Plate: "abc-1234"},
	}}
	h := newCounting()
	o := New(h, testCodes, WithRemote(remote))

	rep := o.Process(context.Background(), types.Record{CrimeCode: "220", Narrative: sampleNarrative})

	if rep.Outcome != OutcomeLLMSuccess {
		t.Fatalf("outcome = %s, want %s", rep.Outcome, OutcomeLLMSuccess)
	}
	if rep.Attempts != 1 || h.calls != 0 {
		t.Errorf("attempts = %d, heuristic calls = %d; want 1 and 0", rep.Attempts, h.calls)
	}
	want := types.Extraction{
		CrimeType: "Burglary",
		Fields: types.Fields{
			MethodOfEntry: heuristic.MethodDoorPry,
			Suspects:      []string{"male, 6ft", "female"},
			Vehicle:       types.Vehicle{Make: "Toyota", Model: "Camry", Color: "red", Plate: "ABC1234"},
		},
	}
	if fmt.Sprint(rep.Extraction) != fmt.Sprint(want) {
		t.Errorf("extraction = %+v, want %+v", rep.Extraction, want)
	}
}

func TestProcess_RegexOnlyMakesNoRemoteCalls(t *testing.T) {
	h := newCounting()
	o := New(h, testCodes)

	rep := o.Process(context.Background(), types.Record{CrimeCode: "220", Narrative: sampleNarrative})

	if rep.Outcome != OutcomeRegexOnly {
		t.Errorf("outcome = %s, want %s", rep.Outcome, OutcomeRegexOnly)
	}
	if rep.Attempts != 0 {
		t.Errorf("attempts = %d, want 0", rep.Attempts)
	}
	if h.calls != 1 {
		t.Errorf("heuristic calls = %d, want 1", h.calls)
	}
	if rep.Extraction.MethodOfEntry != heuristic.MethodDoorPry {
		t.Errorf("method = %q, want %q", rep.Extraction.MethodOfEntry, heuristic.MethodDoorPry)
	}
	if rep.Extraction.CrimeType != "Burglary" {
		t.Errorf("crime type = %q, want Burglary", rep.Extraction.CrimeType)
	}
}

func TestProcess_RetryBound(t *testing.T) {
	sleeps = nil
	remote := &alwaysFail{err: errors.New("connection reset")}
	h := newCounting()
	o := New(h, testCodes, WithRemote(remote), WithRetryDelay(time.Second))

	rep := o.Process(context.Background(), types.Record{CrimeCode: "220", Narrative: sampleNarrative})

	if remote.calls != 3 {
		t.Errorf("remote calls = %d, want exactly 3", remote.calls)
	}
	if rep.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", rep.Attempts)
	}
	if rep.Outcome != OutcomeFallback {
		t.Errorf("outcome = %s, want %s", rep.Outcome, OutcomeFallback)
	}
	if h.calls != 1 {
		t.Errorf("heuristic calls = %d, want 1", h.calls)
	}
	want := []time.Duration{time.Second, 2 * time.Second}
	if fmt.Sprint(sleeps) != fmt.Sprint(want) {
		t.Errorf("backoff = %v, want %v", sleeps, want)
	}
	if rep.Err == nil {
		t.Error("expected last error on report")
	}
}

func TestProcess_CustomMaxRetries(t *testing.T) {
	remote := &alwaysFail{err: errors.New("timeout")}
	o := New(newCounting(), testCodes, WithRemote(remote), WithMaxRetries(5), WithRetryDelay(0))

	o.Process(context.Background(), types.Record{CrimeCode: "220", Narrative: "Entry via pried door."})

	if remote.calls != 5 {
		t.Errorf("remote calls = %d, want 5", remote.calls)
	}
}

func TestProcess_AuthErrorDoesNotRetry(t *testing.T) {
	sleeps = nil
	remote := &alwaysFail{err: fmt.Errorf("calling remote: %w", authError{})}
	o := New(newCounting(), testCodes, WithRemote(remote))

	rep := o.Process(context.Background(), types.Record{CrimeCode: "220", Narrative: sampleNarrative})

	if remote.calls != 1 {
		t.Errorf("remote calls = %d, want 1", remote.calls)
	}
	if len(sleeps) != 0 {
		t.Errorf("slept %v, want no backoff", sleeps)
	}
	if rep.Outcome != OutcomeFallback {
		t.Errorf("outcome = %s, want %s", rep.Outcome, OutcomeFallback)
	}
	if !rep.AuthFailed() {
		t.Error("AuthFailed() = false, want true")
	}
}

func TestProcess_SucceedsAfterTransientFailures(t *testing.T) {
	remote := &scriptedRemote{
		errs: []error{errors.New("502"), errors.New("bad json")},
		resp: types.Fields{MethodOfEntry: "window_smash"},
	}
	h := newCounting()
	o := New(h, testCodes, WithRemote(remote))

	rep := o.Process(context.Background(), types.Record{CrimeCode: "459", Narrative: "Rear window smashed."})

	if rep.Outcome != OutcomeLLMSuccess || rep.Attempts != 3 {
		t.Errorf("outcome = %s after %d attempts, want %s after 3", rep.Outcome, rep.Attempts, OutcomeLLMSuccess)
	}
	if h.calls != 0 {
		t.Errorf("heuristic calls = %d, want 0", h.calls)
	}
	if rep.Extraction.CrimeType != "Commercial Burglary" {
		t.Errorf("crime type = %q", rep.Extraction.CrimeType)
	}
}

func TestProcess_EmptyNarrative(t *testing.T) {
	for _, narrative := range []string{"", "   \n\t"} {
		remote := &alwaysFail{err: errors.New("should not be called")}
		h := newCounting()
		o := New(h, testCodes, WithRemote(remote))

		rep := o.Process(context.Background(), types.Record{CrimeCode: "220", Narrative: narrative})

		if rep.Outcome != OutcomeEmptyNarrative {
			t.Errorf("outcome = %s, want %s", rep.Outcome, OutcomeEmptyNarrative)
		}
		if remote.calls != 0 || h.calls != 0 {
			t.Errorf("remote calls = %d, heuristic calls = %d; want 0 and 0", remote.calls, h.calls)
		}
		e := rep.Extraction
		if e.MethodOfEntry != types.NoMatch || len(e.Suspects) != 0 || !e.Vehicle.IsEmpty() {
			t.Errorf("fields = %+v, want all no-match", e.Fields)
		}
		if e.CrimeType != "Burglary" {
			t.Errorf("crime type = %q, want Burglary", e.CrimeType)
		}
	}
}

func TestProcess_UnknownCrimeCode(t *testing.T) {
	o := New(newCounting(), testCodes)
	rep := o.Process(context.Background(), types.Record{CrimeCode: "999", Narrative: "Entry via pried door."})
	if rep.Extraction.CrimeType != types.UnknownCrimeType {
		t.Errorf("crime type = %q, want %q", rep.Extraction.CrimeType, types.UnknownCrimeType)
	}
}

func TestProcess_CancelledContextFallsBack(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	remote := &alwaysFail{err: errors.New("unused")}
	h := newCounting()
	o := New(h, testCodes, WithRemote(remote))

	rep := o.Process(ctx, types.Record{CrimeCode: "220", Narrative: sampleNarrative})

	if remote.calls != 0 {
		t.Errorf("remote calls = %d, want 0", remote.calls)
	}
	if rep.Outcome != OutcomeFallback || h.calls != 1 {
		t.Errorf("outcome = %s, heuristic calls = %d", rep.Outcome, h.calls)
	}
	if !errors.Is(rep.Err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", rep.Err)
	}
}

func TestProcess_LogsFallback(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	remote := &alwaysFail{err: errors.New("boom")}
	o := New(newCounting(), testCodes, WithRemote(remote), WithMaxRetries(2), WithLogger(zap.New(core)))

	o.Process(context.Background(), types.Record{CrimeCode: "220", Narrative: sampleNarrative})

	if n := logs.FilterMessage("remote attempt failed").Len(); n != 2 {
		t.Errorf("attempt failure logs = %d, want 2", n)
	}
	if n := logs.FilterMessage("falling back to pattern matching").Len(); n != 1 {
		t.Errorf("fallback logs = %d, want 1", n)
	}
}

// --- Run ---

func TestRun_CompletenessAndOrder(t *testing.T) {
	records := []types.Record{
		{CrimeCode: "220", Narrative: "Suspect broke rear window to gain entry."},
		{CrimeCode: "459", Narrative: ""},
		{CrimeCode: "999", Narrative: "Victim left unlocked rear door."},
		{CrimeCode: "220", Narrative: "Suspect forced entry through rear."},
	}
	var buf bytes.Buffer

	results, stats := Run(context.Background(), New(newCounting(), testCodes), records, &buf)

	if len(results) != len(records) {
		t.Fatalf("got %d results, want %d", len(results), len(records))
	}
	wantMethods := []string{heuristic.MethodWindowSmash, types.NoMatch, heuristic.MethodUnlocked, heuristic.MethodForcedEntry}
	wantTypes := []string{"Burglary", "Commercial Burglary", types.UnknownCrimeType, "Burglary"}
	for i, r := range results {
		if r.MethodOfEntry != wantMethods[i] {
			t.Errorf("results[%d].MethodOfEntry = %q, want %q", i, r.MethodOfEntry, wantMethods[i])
		}
		if r.CrimeType != wantTypes[i] {
			t.Errorf("results[%d].CrimeType = %q, want %q", i, r.CrimeType, wantTypes[i])
		}
	}

	if stats.Total != 4 || stats.ByOutcome[OutcomeRegexOnly] != 3 || stats.ByOutcome[OutcomeEmptyNarrative] != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.MethodFound != 3 {
		t.Errorf("MethodFound = %d, want 3", stats.MethodFound)
	}
	if !strings.Contains(buf.String(), "processing 4/4") {
		t.Errorf("progress output missing final record:\n%s", buf.String())
	}
}

func TestRun_DegradedModeIsDeterministic(t *testing.T) {
	records := []types.Record{
		{CrimeCode: "220", Narrative: sampleNarrative},
		{CrimeCode: "459", Narrative: "Victim reported stolen 2020 Honda Civic, silver color, license plate ABC1234."},
	}
	first, _ := Run(context.Background(), New(heuristic.Default(), testCodes), records, &bytes.Buffer{})
	second, _ := Run(context.Background(), New(heuristic.Default(), testCodes), records, &bytes.Buffer{})

	if fmt.Sprint(first) != fmt.Sprint(second) {
		t.Errorf("runs differ:\n%+v\n%+v", first, second)
	}
}

func TestRun_StickyAuthFailure(t *testing.T) {
	records := []types.Record{
		{CrimeCode: "220", Narrative: sampleNarrative},
		{CrimeCode: "220", Narrative: "Entry via pried door."},
		{CrimeCode: "220", Narrative: "Rear window smashed."},
	}

	tests := []struct {
		name      string
		sticky    bool
		wantCalls int
	}{
		{"sticky skips remaining records", true, 1},
		{"non-sticky keeps trying", false, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := &alwaysFail{err: authError{}}
			o := New(newCounting(), testCodes, WithRemote(remote), WithStickyAuthFailure(tt.sticky))

			results, stats := Run(context.Background(), o, records, &bytes.Buffer{})

			if remote.calls != tt.wantCalls {
				t.Errorf("remote calls = %d, want %d", remote.calls, tt.wantCalls)
			}
			if len(results) != len(records) {
				t.Errorf("got %d results, want %d", len(results), len(records))
			}
			if stats.Failed() != len(records) {
				t.Errorf("Failed() = %d, want %d", stats.Failed(), len(records))
			}
			if results[2].MethodOfEntry != heuristic.MethodWindowSmash {
				t.Errorf("fallback method = %q", results[2].MethodOfEntry)
			}
		})
	}
}

// --- normalize ---

func TestNormalizeMethod(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"door_pry", heuristic.MethodDoorPry},
		{"Window Smash", heuristic.MethodWindowSmash},
		{"lock-pick", heuristic.MethodLockPick},
		{"unknown", heuristic.MethodUnknown},
		{"suspect pried the rear door", heuristic.MethodDoorPry},
		{"climbed through chimney", heuristic.MethodOther},
		{"not specified", types.NoMatch},
		{"null", types.NoMatch},
		{"  ", types.NoMatch},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := normalizeMethod(tt.in); got != tt.want {
				t.Errorf("normalizeMethod(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeSuspects(t *testing.T) {
	long := strings.Repeat("x", 150)
	got := normalizeSuspects([]string{"none", long, " short ", "extra"})
	if len(got) != 2 {
		t.Fatalf("got %d suspects, want 2", len(got))
	}
	if len(got[0]) != heuristic.MaxDescriptorLen || got[1] != "short" {
		t.Errorf("got %q", got)
	}
	if got := normalizeSuspects(nil); len(got) != 0 {
		t.Errorf("normalizeSuspects(nil) = %q", got)
	}
}

func TestNormalizeVehicle(t *testing.T) {
	got := normalize(types.Fields{Vehicle: types.Vehicle{Make: "N/A", Model: " Civic ", Color: "dark BLUE", Plate: " 7xyz 123 "}})
	want := types.Vehicle{Model: "Civic", Color: "dark blue", Plate: "7XYZ123"}
	if got.Vehicle != want {
		t.Errorf("vehicle = %+v, want %+v", got.Vehicle, want)
	}

	// Makes from the model get the same spelling the pattern matcher uses.
	got = normalize(types.Fields{Vehicle: types.Vehicle{Make: " toyota "}})
	if got.Vehicle.Make != "Toyota" {
		t.Errorf("make = %q, want Toyota", got.Vehicle.Make)
	}
	got = normalize(types.Fields{Vehicle: types.Vehicle{Make: " Rivian "}})
	if got.Vehicle.Make != "Rivian" {
		t.Errorf("unknown make = %q, want Rivian", got.Vehicle.Make)
	}
}

func TestRemoteEnabled(t *testing.T) {
	if New(heuristic.Default(), testCodes).RemoteEnabled() {
		t.Error("RemoteEnabled() = true without a remote")
	}
	if !New(heuristic.Default(), testCodes, WithRemote(&alwaysFail{})).RemoteEnabled() {
		t.Error("RemoteEnabled() = false with a remote")
	}
}

// --- Stats ---

func TestStatsSummary(t *testing.T) {
	s := NewStats()
	s.Add(Report{Outcome: OutcomeLLMSuccess, Attempts: 1, Extraction: types.Extraction{Fields: types.Fields{
		MethodOfEntry: "door_pry",
		Suspects:      []string{"male"},
		Vehicle:       types.Vehicle{Make: "Toyota"},
	}}})
	s.Add(Report{Outcome: OutcomeFallback, Attempts: 3})
	s.Add(Report{Outcome: OutcomeEmptyNarrative})
	s.Add(Report{Outcome: OutcomeRegexOnly, Extraction: types.Extraction{Fields: types.Fields{MethodOfEntry: "unlocked"}}})

	if s.Total != 4 || s.Successful() != 1 || s.Failed() != 1 || s.RemoteCalls != 4 {
		t.Errorf("stats = %+v", s)
	}
	if !s.HasFailures() {
		t.Error("HasFailures() = false, want true")
	}

	var buf bytes.Buffer
	s.WriteSummary(&buf)
	out := buf.String()
	for _, want := range []string{"total records:      4", "LLM_SUCCESS:", "1 (25.0%)", "method of entry:    2 (50.0%)", "remote calls:       4"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestStatsZeroValueAdd(t *testing.T) {
	var s Stats
	s.Add(Report{Outcome: OutcomeRegexOnly})
	if s.ByOutcome[OutcomeRegexOnly] != 1 {
		t.Errorf("ByOutcome = %v", s.ByOutcome)
	}
	var buf bytes.Buffer
	Stats{}.WriteSummary(&buf)
	if !strings.Contains(buf.String(), "total records:      0") {
		t.Errorf("empty summary:\n%s", buf.String())
	}
}
