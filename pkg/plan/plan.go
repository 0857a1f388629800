package plan

import (
	"errors"
	"fmt"

	"github.com/getmockd/httpspy/pkg/exchange"
	"github.com/getmockd/httpspy/pkg/expect"
)

// ErrInvalidPlan is returned when a plan cannot be constructed.
var ErrInvalidPlan = errors.New("invalid plan")

// Plan decides the response for each request and verifies recorded traffic.
type Plan interface {
	// Resolve records req and returns the response to send. It never returns nil.
	Resolve(req *exchange.Request) *exchange.Response
	// Verify returns nil when the recorded traffic satisfies the plan,
	// otherwise a *VerificationError describing every problem found.
	Verify() error
	// Reset clears all recorded interactions.
	Reset()
	// Multithreaded reports whether Resolve tolerates concurrent callers.
	Multithreaded() bool
}

// OutcomeResolver is implemented by plans that report how each request was
// resolved alongside the response.
type OutcomeResolver interface {
	ResolveOutcome(req *exchange.Request) (*exchange.Response, Outcome)
}

// Recorder is implemented by plans that expose their interaction log.
type Recorder interface {
	Interactions() []Interaction
}

// Entry pairs an expectation with the response returned for it.
type Entry struct {
	Expectation expect.Request
	Response    *exchange.Response
}

// OutcomeKind classifies how a request was resolved.
type OutcomeKind int

const (
	// OutcomePositional means a Sequence returned the response at Index.
	OutcomePositional OutcomeKind = iota
	// OutcomeExhausted means a Sequence had no response left.
	OutcomeExhausted
	// OutcomeMatched means a Stub matched expectation Index.
	OutcomeMatched
	// OutcomeUnmatched means a Stub matched nothing.
	OutcomeUnmatched
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomePositional:
		return "positional"
	case OutcomeExhausted:
		return "exhausted"
	case OutcomeMatched:
		return "matched"
	case OutcomeUnmatched:
		return "unmatched"
	}
	return fmt.Sprintf("OutcomeKind(%d)", int(k))
}

// Outcome is the resolution of one request.
type Outcome struct {
	Kind  OutcomeKind
	Index int
}

func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeExhausted, OutcomeUnmatched:
		return o.Kind.String()
	}
	return fmt.Sprintf("%s #%d", o.Kind, o.Index)
}

// Interaction is one recorded request with its outcome.
type Interaction struct {
	Request *exchange.Request
	Outcome Outcome
}

func validateEntries(entries []Entry) error {
	if len(entries) == 0 {
		return fmt.Errorf("%w: at least one expectation is required", ErrInvalidPlan)
	}
	for i, e := range entries {
		if e.Response == nil {
			return fmt.Errorf("%w: entry #%d has no response", ErrInvalidPlan, i)
		}
		if err := e.Expectation.Err(); err != nil {
			return fmt.Errorf("%w: entry #%d: %w", ErrInvalidPlan, i, err)
		}
	}
	return nil
}

func diagnostic(body string) *exchange.Response {
	return exchange.MustResponse(
		exchange.WithStatus(500),
		exchange.WithBody(body),
		exchange.WithHeader("Content-Type", "text/plain; charset=utf-8"),
	)
}
