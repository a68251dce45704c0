// Package extract turns crime records into extractions. The Orchestrator
// tries the remote extractor a bounded number of times and falls back to
// pattern matching, so every record yields exactly one Extraction.
package extract

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/crime-extract/pkg/types"
)

// Remote abstracts the hosted model so tests can supply a fake. Each call
// is a single attempt.
type Remote interface {
	Extract(ctx context.Context, crimeCode, narrative string) (types.Fields, error)
}

// Heuristic is the local pattern extractor. It cannot fail.
type Heuristic interface {
	Extract(narrative string) types.Fields
}

// Outcome tags how an Extraction was produced.
type Outcome string

const (
	OutcomeLLMSuccess     Outcome = "LLM_SUCCESS"
	OutcomeFallback       Outcome = "LLM_FAILED_FALLBACK_REGEX"
	OutcomeRegexOnly      Outcome = "REGEX_ONLY"
	OutcomeEmptyNarrative Outcome = "EMPTY_NARRATIVE"
)

// Outcomes lists every Outcome in reporting order.
var Outcomes = []Outcome{OutcomeLLMSuccess, OutcomeFallback, OutcomeRegexOnly, OutcomeEmptyNarrative}

// Report is the full result of processing one record.
type Report struct {
	Extraction types.Extraction
	Outcome    Outcome

	// Attempts is the number of remote calls made for the record.
	Attempts int

	// Err is the last remote error, if any. It is informational; Process
	// never fails.
	Err error
}

// AuthFailed reports whether the remote path stopped on a credential error.
func (r Report) AuthFailed() bool {
	return r.Err != nil && !isRetryable(r.Err)
}

// retryable is implemented by remote errors that know whether another
// attempt can help.
type retryable interface {
	Retryable() bool
}

func isRetryable(err error) bool {
	var r retryable
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return true
}

// Orchestrator runs the per-record retry and fallback policy.
type Orchestrator struct {
	remote     Remote
	heuristic  Heuristic
	codes      types.CrimeCodes
	maxRetries int
	retryDelay time.Duration
	stickyAuth bool
	logger     *zap.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRemote enables the remote path. Pass an untyped nil, not a nil
// pointer, to leave it disabled.
func WithRemote(r Remote) Option {
	return func(o *Orchestrator) { o.remote = r }
}

// WithMaxRetries sets the number of remote attempts per record. Values
// below 1 keep the default.
func WithMaxRetries(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxRetries = n
		}
	}
}

// WithRetryDelay sets the base backoff. The wait before attempt n+1 is
// d·2^(n-1).
func WithRetryDelay(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d >= 0 {
			o.retryDelay = d
		}
	}
}

// WithStickyAuthFailure makes Run skip the remote path for the remaining
// records once a credential error is seen.
func WithStickyAuthFailure(on bool) Option {
	return func(o *Orchestrator) { o.stickyAuth = on }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// New builds an Orchestrator. Without WithRemote every record is resolved
// by h and tagged OutcomeRegexOnly.
func New(h Heuristic, codes types.CrimeCodes, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		heuristic:  h,
		codes:      codes,
		maxRetries: types.DefaultMaxRetries,
		retryDelay: types.DefaultRetryDelay,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RemoteEnabled reports whether a remote extractor is configured.
func (o *Orchestrator) RemoteEnabled() bool {
	return o.remote != nil
}

// state is a step of the per-record state machine.
type state int

const (
	stateStart state = iota
	stateAttempt
	stateRetry
	stateFallback
	stateDoneLLM
	stateDoneRegex
)

// sleep waits for d or until ctx is done. Tests replace it to avoid real
// waits and to record the backoff schedule.
var sleep = func(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// backoff returns the wait after the n-th failed attempt (n starts at 1).
func (o *Orchestrator) backoff(n int) time.Duration {
	return o.retryDelay * time.Duration(1<<uint(n-1))
}

// Process resolves one record. It never returns an error: remote failures
// end in the heuristic path and are recorded on the Report.
func (o *Orchestrator) Process(ctx context.Context, rec types.Record) Report {
	return o.process(ctx, rec, false)
}

func (o *Orchestrator) process(ctx context.Context, rec types.Record, skipRemote bool) Report {
	var (
		st       = stateStart
		attempt  int
		calls    int
		fields   types.Fields
		outcome  Outcome
		lastErr  error
		log      = o.logger.With(zap.String("crime_code", rec.CrimeCode))
		finished bool
	)

	for !finished {
		switch st {
		case stateStart:
			switch {
			case strings.TrimSpace(rec.Narrative) == "":
				outcome = OutcomeEmptyNarrative
				st = stateDoneRegex
			case o.remote == nil:
				outcome = OutcomeRegexOnly
				st = stateFallback
			case skipRemote:
				outcome = OutcomeFallback
				st = stateFallback
			default:
				attempt = 1
				st = stateAttempt
			}

		case stateAttempt:
			if err := ctx.Err(); err != nil {
				lastErr = err
				outcome = OutcomeFallback
				st = stateFallback
				break
			}
			got, err := o.remote.Extract(ctx, rec.CrimeCode, rec.Narrative)
			calls++
			if err == nil {
				fields = normalize(got)
				outcome = OutcomeLLMSuccess
				st = stateDoneLLM
				break
			}
			lastErr = err
			log.Debug("remote attempt failed", zap.Int("attempt", attempt), zap.Error(err))
			switch {
			case !isRetryable(err):
				outcome = OutcomeFallback
				st = stateFallback
			case attempt < o.maxRetries:
				st = stateRetry
			default:
				outcome = OutcomeFallback
				st = stateFallback
			}

		case stateRetry:
			if err := sleep(ctx, o.backoff(attempt)); err != nil {
				lastErr = err
				outcome = OutcomeFallback
				st = stateFallback
				break
			}
			attempt++
			st = stateAttempt

		case stateFallback:
			if outcome == OutcomeFallback && lastErr != nil {
				log.Warn("falling back to pattern matching", zap.Int("attempts", calls), zap.Error(lastErr))
			}
			fields = o.heuristic.Extract(rec.Narrative)
			st = stateDoneRegex

		case stateDoneLLM, stateDoneRegex:
			finished = true
		}
	}

	return Report{
		Extraction: types.Extraction{
			CrimeType: o.codes.Lookup(rec.CrimeCode),
			Fields:    fields,
		},
		Outcome:  outcome,
		Attempts: calls,
		Err:      lastErr,
	}
}
